package lab

import (
	"github.com/gofiber/fiber/v2"
	"github.com/vortexmedx/medconnect-backend/internal/models"
	"github.com/vortexmedx/medconnect-backend/internal/sections"
	"github.com/vortexmedx/medconnect-backend/internal/session"
)

type LabSection struct{}

func New() *LabSection {
	return &LabSection{}
}

func (s *LabSection) ID() session.Section { return session.SectionLabOwner }

func (s *LabSection) Models() []interface{} {
	return []interface{}{
		&models.TestRequest{},
		&models.TestResult{},
	}
}

func (s *LabSection) RegisterRoutes(router fiber.Router, deps sections.Deps) {
	svc := NewLabService(deps.DB, deps.Profiles)
	handler := NewLabHandler(svc, deps.Uploader)

	router.Get("/requests", handler.GetPendingRequests)
	router.Post("/tests", handler.ScheduleTest)
	router.Post("/results", handler.UploadResult)
	router.Get("/results", handler.GetMyResults)
}
