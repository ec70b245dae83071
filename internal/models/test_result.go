package models

import (
	"time"

	"github.com/google/uuid"
)

// TestResult references an uploaded result file for a patient. RequestID is
// nil when a result arrives without a matching pending request.
type TestResult struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RequestID  *uuid.UUID `gorm:"type:uuid;index" json:"request_id"`
	PatientID  string     `gorm:"size:36;not null;index" json:"patient_id"`
	UploadedBy string     `gorm:"size:36;not null" json:"uploaded_by"`
	FileName   string     `gorm:"size:255;not null" json:"file_name"`
	FileType   string     `gorm:"size:20" json:"file_type"`
	FileURL    string     `gorm:"size:1024;not null" json:"file_url"`
	CreatedAt  time.Time  `json:"created_at"`
}
