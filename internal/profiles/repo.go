// Package profiles owns the profile table reads and the resolution of an
// authenticated session into a role-bearing session user.
package profiles

import (
	"context"
	"errors"

	"github.com/vortexmedx/medconnect-backend/internal/models"
	"gorm.io/gorm"
)

// Lookup is the explicit result of a profile read. Found distinguishes "row
// absent" from a returned zero value, so fallback precedence never rests on
// optimistic field access.
type Lookup struct {
	Found  bool
	Record models.Profile
}

// Repository is the typed read/write surface over the users table.
type Repository interface {
	ByID(ctx context.Context, id string) (Lookup, error)
	ByEmail(ctx context.Context, email string) (Lookup, error)
	ByFriendlyUID(ctx context.Context, friendlyUID string) (Lookup, error)
	Create(ctx context.Context, profile *models.Profile) error
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) ByID(ctx context.Context, id string) (Lookup, error) {
	return r.one(ctx, "id = ?", id)
}

func (r *gormRepository) ByEmail(ctx context.Context, email string) (Lookup, error) {
	return r.one(ctx, "email = ?", email)
}

func (r *gormRepository) ByFriendlyUID(ctx context.Context, friendlyUID string) (Lookup, error) {
	return r.one(ctx, "user_friendly_uid = ?", friendlyUID)
}

func (r *gormRepository) Create(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *gormRepository) one(ctx context.Context, query string, arg string) (Lookup, error) {
	var record models.Profile
	err := r.db.WithContext(ctx).Where(query, arg).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Lookup{}, nil
	}
	if err != nil {
		return Lookup{}, err
	}
	return Lookup{Found: true, Record: record}, nil
}
