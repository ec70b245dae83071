package patient

import (
	"github.com/gofiber/fiber/v2"
	"github.com/vortexmedx/medconnect-backend/internal/models"
	"github.com/vortexmedx/medconnect-backend/internal/sections"
	"github.com/vortexmedx/medconnect-backend/internal/session"
)

type PatientSection struct{}

func New() *PatientSection {
	return &PatientSection{}
}

func (s *PatientSection) ID() session.Section { return session.SectionPatient }

func (s *PatientSection) Models() []interface{} {
	return []interface{}{
		&models.MedicalRecord{},
	}
}

func (s *PatientSection) RegisterRoutes(router fiber.Router, deps sections.Deps) {
	svc := NewPatientService(deps.DB, deps.Profiles)
	handler := NewPatientHandler(svc, deps.Store)

	router.Get("/profile", handler.GetProfile)
	router.Get("/records", handler.GetMedicalHistory)
	router.Get("/tests", handler.GetTestRequests)
	router.Get("/results", handler.GetTestResults)
	router.Get("/appointments", handler.GetAppointments)
	router.Post("/uploads", handler.UploadDocument)
	router.Get("/uploads", handler.GetUploads)
}
