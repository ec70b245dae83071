package doctor

import (
	"github.com/gofiber/fiber/v2"
	"github.com/vortexmedx/medconnect-backend/internal/models"
	"github.com/vortexmedx/medconnect-backend/internal/sections"
	"github.com/vortexmedx/medconnect-backend/internal/session"
)

type DoctorSection struct{}

func New() *DoctorSection {
	return &DoctorSection{}
}

func (s *DoctorSection) ID() session.Section { return session.SectionDoctor }

func (s *DoctorSection) Models() []interface{} {
	return []interface{}{
		&models.Appointment{},
	}
}

func (s *DoctorSection) RegisterRoutes(router fiber.Router, deps sections.Deps) {
	svc := NewDoctorService(deps.DB, deps.Profiles)
	handler := NewDoctorHandler(svc, deps.Store)

	router.Get("/patients/:friendlyId", handler.LookupPatient)
	router.Get("/patients/:friendlyId/records", handler.GetPatientRecords)
	router.Post("/records", handler.CreateRecord)
	router.Get("/records", handler.GetMyRecords)
	router.Get("/appointments", handler.GetAppointments)
	router.Patch("/appointments/:id", handler.UpdateAppointment)
}
