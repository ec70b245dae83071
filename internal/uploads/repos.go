package uploads

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/vortexmedx/medconnect-backend/internal/models"
	"github.com/vortexmedx/medconnect-backend/internal/roles"
	"gorm.io/gorm"
)

type gormRequests struct {
	db *gorm.DB
}

func NewRequestStore(db *gorm.DB) RequestStore {
	return &gormRequests{db: db}
}

func (r *gormRequests) OpenForPatient(ctx context.Context, patientID string) (*models.TestRequest, error) {
	var request models.TestRequest
	err := r.db.WithContext(ctx).
		Scopes(roles.ForPatient(patientID), roles.Pending()).
		Order("created_at ASC").
		First(&request).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *gormRequests) Complete(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.TestRequest{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       models.TestStatusCompleted,
			"completed_at": at,
		}).Error
}

type gormResults struct {
	db *gorm.DB
}

func NewResultStore(db *gorm.DB) ResultStore {
	return &gormResults{db: db}
}

func (r *gormResults) Insert(ctx context.Context, result *models.TestResult) error {
	return r.db.WithContext(ctx).Create(result).Error
}

type gormFiles struct {
	db *gorm.DB
}

func NewFileStore(db *gorm.DB) FileStore {
	return &gormFiles{db: db}
}

func (r *gormFiles) Insert(ctx context.Context, file *models.StoredFile) error {
	return r.db.WithContext(ctx).Create(file).Error
}
