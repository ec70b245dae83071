package roles

import (
	"github.com/vortexmedx/medconnect-backend/internal/models"
	"gorm.io/gorm"
)

// ForPatient returns a GORM scope filtering rows by patient_id.
func ForPatient(patientID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("patient_id = ?", patientID)
	}
}

// ForDoctor returns a GORM scope filtering rows by doctor_id.
func ForDoctor(doctorID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("doctor_id = ?", doctorID)
	}
}

// ForLab returns a GORM scope filtering rows by lab_id.
func ForLab(labID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("lab_id = ?", labID)
	}
}

// Pending returns a GORM scope selecting rows still awaiting completion.
func Pending() func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("status = ?", models.TestStatusPending)
	}
}
