package models

import (
	"time"
)

// Profile is the display/role row for an account, keyed by the identity
// provider's opaque id. It is written once at signup and read by the profile
// resolver; credentials live on Identity, never here. Legacy rows may carry
// hand-seeded non-UUID ids, hence the plain string key.
type Profile struct {
	ID          string    `gorm:"size:36;primaryKey" json:"id"`
	Email       string    `gorm:"size:255;not null;index" json:"email"`
	Role        string    `gorm:"size:20;not null" json:"role"`
	Name        string    `gorm:"size:255" json:"name"`
	Phone       string    `gorm:"size:20" json:"phone"`
	FriendlyUID string    `gorm:"column:user_friendly_uid;size:12;index" json:"user_friendly_uid"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Profile) TableName() string { return "users" }
