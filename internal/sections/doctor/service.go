package doctor

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vortexmedx/medconnect-backend/internal/models"
	"github.com/vortexmedx/medconnect-backend/internal/profiles"
	"github.com/vortexmedx/medconnect-backend/internal/roles"
	"gorm.io/gorm"
)

var (
	ErrPatientNotFound     = errors.New("patient not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrInvalidStatus       = errors.New("invalid appointment status")
)

type DoctorService struct {
	db       *gorm.DB
	profiles profiles.Repository
}

func NewDoctorService(db *gorm.DB, profileRepo profiles.Repository) *DoctorService {
	return &DoctorService{db: db, profiles: profileRepo}
}

// FindPatient resolves a patient profile from the friendly id shown on their
// card, e.g. PT4830012345.
func (s *DoctorService) FindPatient(ctx context.Context, friendlyID string) (*models.Profile, error) {
	lookup, err := s.profiles.ByFriendlyUID(ctx, friendlyID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up patient: %w", err)
	}
	if !lookup.Found || lookup.Record.Role != string(roles.Patient) {
		return nil, ErrPatientNotFound
	}
	return &lookup.Record, nil
}

func (s *DoctorService) PatientRecords(ctx context.Context, patientID string) ([]models.MedicalRecord, error) {
	var records []models.MedicalRecord
	err := s.db.WithContext(ctx).
		Scopes(roles.ForPatient(patientID)).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list patient records: %w", err)
	}
	return records, nil
}

func (s *DoctorService) CreateRecord(ctx context.Context, record *models.MedicalRecord) error {
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to create medical record: %w", err)
	}
	return nil
}

func (s *DoctorService) MyRecords(ctx context.Context, doctorID string) ([]models.MedicalRecord, error) {
	var records []models.MedicalRecord
	err := s.db.WithContext(ctx).
		Scopes(roles.ForDoctor(doctorID)).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return records, nil
}

func (s *DoctorService) Appointments(ctx context.Context, doctorID string) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := s.db.WithContext(ctx).
		Scopes(roles.ForDoctor(doctorID)).
		Order("scheduled_for ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

// UpdateAppointment moves one of the doctor's appointments to a new status.
func (s *DoctorService) UpdateAppointment(ctx context.Context, doctorID string, id uuid.UUID, status string) (*models.Appointment, error) {
	if status != models.AppointmentCompleted && status != models.AppointmentCancelled {
		return nil, ErrInvalidStatus
	}

	var appointment models.Appointment
	err := s.db.WithContext(ctx).
		Scopes(roles.ForDoctor(doctorID)).
		First(&appointment, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load appointment: %w", err)
	}

	appointment.Status = status
	if err := s.db.WithContext(ctx).Save(&appointment).Error; err != nil {
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}
	return &appointment, nil
}
