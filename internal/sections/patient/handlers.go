package patient

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/vortexmedx/medconnect-backend/internal/dto"
	"github.com/vortexmedx/medconnect-backend/internal/models"
	"github.com/vortexmedx/medconnect-backend/internal/roles"
	"github.com/vortexmedx/medconnect-backend/internal/storage"
	"gorm.io/gorm"
)

const maxUploadSize = 10 * 1024 * 1024

type PatientHandler struct {
	service *PatientService
	store   storage.ObjectStore
}

func NewPatientHandler(service *PatientService, store storage.ObjectStore) *PatientHandler {
	return &PatientHandler{service: service, store: store}
}

func (h *PatientHandler) GetProfile(c *fiber.Ctx) error {
	subjectID, err := roles.SubjectID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	profile, err := h.service.Profile(c.Context(), subjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Profile not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load profile",
		})
	}

	return c.JSON(profile)
}

func (h *PatientHandler) GetMedicalHistory(c *fiber.Ctx) error {
	subjectID, err := roles.SubjectID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	records, err := h.service.MedicalHistory(c.Context(), subjectID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load medical history",
		})
	}

	return c.JSON(fiber.Map{"records": records})
}

func (h *PatientHandler) GetTestRequests(c *fiber.Ctx) error {
	subjectID, err := roles.SubjectID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	requests, err := h.service.TestRequests(c.Context(), subjectID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load test requests",
		})
	}

	return c.JSON(fiber.Map{"requests": requests})
}

func (h *PatientHandler) GetTestResults(c *fiber.Ctx) error {
	subjectID, err := roles.SubjectID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	results, err := h.service.TestResults(c.Context(), subjectID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load test results",
		})
	}

	return c.JSON(fiber.Map{"results": results})
}

func (h *PatientHandler) GetAppointments(c *fiber.Ctx) error {
	subjectID, err := roles.SubjectID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	appointments, err := h.service.Appointments(c.Context(), subjectID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load appointments",
		})
	}

	return c.JSON(fiber.Map{"appointments": appointments})
}

// UploadDocument handles POST /uploads - a patient storing their own document.
func (h *PatientHandler) UploadDocument(c *fiber.Ctx) error {
	subjectID, err := roles.SubjectID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "File is required",
		})
	}
	if file.Size > maxUploadSize {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "File size must be less than 10MB",
		})
	}

	src, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to read file",
		})
	}
	defer src.Close()

	path := storage.ObjectPath("Patient Document", subjectID, file.Filename)
	contentType := file.Header.Get("Content-Type")
	fileURL, err := h.store.Upload(c.Context(), path, src, contentType)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to store file",
		})
	}

	stored := models.StoredFile{
		UploadedBy: subjectID,
		Path:       path,
		FileName:   file.Filename,
		FileType:   strings.ToLower(strings.TrimPrefix(filepath.Ext(file.Filename), ".")),
		PublicURL:  fileURL,
	}
	if err := h.service.RecordUpload(c.Context(), &stored); err != nil {
		// Keep the bucket consistent with the table.
		_ = h.store.Delete(c.Context(), path)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to record upload",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(stored)
}

func (h *PatientHandler) GetUploads(c *fiber.Ctx) error {
	subjectID, err := roles.SubjectID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	files, err := h.service.Uploads(c.Context(), subjectID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load uploads",
		})
	}

	return c.JSON(fiber.Map{"files": files})
}
