package models

import (
	"time"

	"github.com/google/uuid"
)

// StoredFile mirrors every object written to the bucket so uploads remain
// listable per uploader even when the linked record insert later fails.
type StoredFile struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UploadedBy string    `gorm:"size:36;not null;index" json:"uploaded_by"`
	Path       string    `gorm:"size:512;not null" json:"path"`
	FileName   string    `gorm:"size:255;not null" json:"file_name"`
	FileType   string    `gorm:"size:20" json:"file_type"`
	PublicURL  string    `gorm:"size:1024" json:"public_url"`
	CreatedAt  time.Time `json:"created_at"`
}

func (StoredFile) TableName() string { return "medical_files" }
