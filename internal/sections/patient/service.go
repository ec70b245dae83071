package patient

import (
	"context"
	"fmt"

	"github.com/vortexmedx/medconnect-backend/internal/models"
	"github.com/vortexmedx/medconnect-backend/internal/profiles"
	"github.com/vortexmedx/medconnect-backend/internal/roles"
	"gorm.io/gorm"
)

type PatientService struct {
	db       *gorm.DB
	profiles profiles.Repository
}

func NewPatientService(db *gorm.DB, profileRepo profiles.Repository) *PatientService {
	return &PatientService{db: db, profiles: profileRepo}
}

func (s *PatientService) Profile(ctx context.Context, subjectID string) (*models.Profile, error) {
	lookup, err := s.profiles.ByID(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if !lookup.Found {
		return nil, gorm.ErrRecordNotFound
	}
	return &lookup.Record, nil
}

// MedicalHistory returns the patient's records newest-first.
func (s *PatientService) MedicalHistory(ctx context.Context, patientID string) ([]models.MedicalRecord, error) {
	var records []models.MedicalRecord
	err := s.db.WithContext(ctx).
		Scopes(roles.ForPatient(patientID)).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list medical records: %w", err)
	}
	return records, nil
}

func (s *PatientService) TestRequests(ctx context.Context, patientID string) ([]models.TestRequest, error) {
	var requests []models.TestRequest
	err := s.db.WithContext(ctx).
		Scopes(roles.ForPatient(patientID)).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list test requests: %w", err)
	}
	return requests, nil
}

func (s *PatientService) TestResults(ctx context.Context, patientID string) ([]models.TestResult, error) {
	var results []models.TestResult
	err := s.db.WithContext(ctx).
		Scopes(roles.ForPatient(patientID)).
		Order("created_at DESC").
		Find(&results).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list test results: %w", err)
	}
	return results, nil
}

func (s *PatientService) Appointments(ctx context.Context, patientID string) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := s.db.WithContext(ctx).
		Scopes(roles.ForPatient(patientID)).
		Order("scheduled_for ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

// RecordUpload mirrors a stored bucket object into medical_files.
func (s *PatientService) RecordUpload(ctx context.Context, file *models.StoredFile) error {
	return s.db.WithContext(ctx).Create(file).Error
}

// Uploads lists files the patient has uploaded themselves.
func (s *PatientService) Uploads(ctx context.Context, subjectID string) ([]models.StoredFile, error) {
	var files []models.StoredFile
	err := s.db.WithContext(ctx).
		Where("uploaded_by = ?", subjectID).
		Order("created_at DESC").
		Find(&files).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}
	return files, nil
}
