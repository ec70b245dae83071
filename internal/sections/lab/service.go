package lab

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vortexmedx/medconnect-backend/internal/models"
	"github.com/vortexmedx/medconnect-backend/internal/profiles"
	"github.com/vortexmedx/medconnect-backend/internal/roles"
	"gorm.io/gorm"
)

var (
	ErrPatientNotFound = errors.New("patient not found")
	ErrPastSchedule    = errors.New("scheduled time must be in the future")
)

type LabService struct {
	db       *gorm.DB
	profiles profiles.Repository
}

func NewLabService(db *gorm.DB, profileRepo profiles.Repository) *LabService {
	return &LabService{db: db, profiles: profileRepo}
}

func (s *LabService) FindPatient(ctx context.Context, friendlyID string) (*models.Profile, error) {
	lookup, err := s.profiles.ByFriendlyUID(ctx, friendlyID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up patient: %w", err)
	}
	if !lookup.Found || lookup.Record.Role != string(roles.Patient) {
		return nil, ErrPatientNotFound
	}
	return &lookup.Record, nil
}

// PendingRequests returns this lab's queue, oldest first, so results get
// matched against the request that has waited longest.
func (s *LabService) PendingRequests(ctx context.Context, labID string) ([]models.TestRequest, error) {
	var requests []models.TestRequest
	err := s.db.WithContext(ctx).
		Scopes(roles.ForLab(labID), roles.Pending()).
		Order("created_at ASC").
		Find(&requests).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}
	return requests, nil
}

// ScheduleTest opens a test request and books the matching appointment in
// one transaction. Either both rows exist afterwards or neither does.
func (s *LabService) ScheduleTest(ctx context.Context, labID string, patientID string, testType string, scheduledFor time.Time, notes string) (*models.TestRequest, error) {
	if !scheduledFor.After(time.Now()) {
		return nil, ErrPastSchedule
	}

	request := models.TestRequest{
		PatientID: patientID,
		LabID:     labID,
		TestType:  testType,
		Status:    models.TestStatusPending,
		Notes:     notes,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&request).Error; err != nil {
			return err
		}

		// Reuse the patient's slot if one is already booked for this time,
		// rather than double-booking the same visit.
		var appointment models.Appointment
		err := tx.Scopes(roles.ForPatient(patientID)).
			Where("scheduled_for = ? AND status = ?", scheduledFor, models.AppointmentScheduled).
			First(&appointment).Error
		if err == nil {
			appointment.Notes = fmt.Sprintf("Lab test: %s", testType)
			return tx.Save(&appointment).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		appointment = models.Appointment{
			PatientID:    patientID,
			ScheduledFor: scheduledFor,
			Status:       models.AppointmentScheduled,
			Notes:        fmt.Sprintf("Lab test: %s", testType),
		}
		return tx.Create(&appointment).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to schedule test: %w", err)
	}
	return &request, nil
}

func (s *LabService) MyResults(ctx context.Context, labID string) ([]models.TestResult, error) {
	var results []models.TestResult
	err := s.db.WithContext(ctx).
		Where("uploaded_by = ?", labID).
		Order("created_at DESC").
		Find(&results).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	return results, nil
}
