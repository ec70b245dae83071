package models

import (
	"time"

	"github.com/google/uuid"
)

type MedicalRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PatientID string    `gorm:"size:36;not null;index" json:"patient_id"`
	DoctorID  string    `gorm:"size:36;index" json:"doctor_id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Notes     string    `gorm:"type:text" json:"notes"`
	FileURL   string    `gorm:"size:1024" json:"file_url"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
