package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	AppointmentScheduled = "scheduled"
	AppointmentCompleted = "completed"
	AppointmentCancelled = "cancelled"
)

type Appointment struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PatientID    string    `gorm:"size:36;not null;index" json:"patient_id"`
	DoctorID     string    `gorm:"size:36;index" json:"doctor_id"`
	ScheduledFor time.Time `gorm:"not null;index" json:"scheduled_for"`
	Status       string    `gorm:"size:20;not null;default:'scheduled'" json:"status"`
	Notes        string    `gorm:"type:text" json:"notes"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
