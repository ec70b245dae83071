package models

import (
	"time"

	"github.com/google/uuid"
)

// Test request lifecycle.
const (
	TestStatusPending   = "pending"
	TestStatusCompleted = "completed"
	TestStatusCancelled = "cancelled"
)

// TestRequest is a lab test ordered for a patient. It stays pending until a
// lab owner uploads the matching result, which stamps CompletedAt.
type TestRequest struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PatientID   string     `gorm:"size:36;not null;index" json:"patient_id"`
	LabID       string     `gorm:"size:36;index" json:"lab_id"`
	TestType    string     `gorm:"size:100;not null" json:"test_type"`
	Status      string     `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Notes       string     `gorm:"type:text" json:"notes"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
