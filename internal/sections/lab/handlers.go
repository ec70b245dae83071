package lab

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/vortexmedx/medconnect-backend/internal/dto"
	"github.com/vortexmedx/medconnect-backend/internal/roles"
	"github.com/vortexmedx/medconnect-backend/internal/storage"
	"github.com/vortexmedx/medconnect-backend/internal/uploads"
)

const maxResultSize = 10 * 1024 * 1024

type LabHandler struct {
	service  *LabService
	uploader *uploads.Coordinator
}

func NewLabHandler(service *LabService, uploader *uploads.Coordinator) *LabHandler {
	return &LabHandler{service: service, uploader: uploader}
}

func (h *LabHandler) GetPendingRequests(c *fiber.Ctx) error {
	labID, err := roles.SubjectID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	requests, err := h.service.PendingRequests(c.Context(), labID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load pending requests",
		})
	}

	return c.JSON(fiber.Map{"requests": requests})
}

// ScheduleTest handles POST /tests - opens a request and books the visit.
func (h *LabHandler) ScheduleTest(c *fiber.Ctx) error {
	labID, err := roles.SubjectID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.ScheduleTestRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if req.PatientFriendlyID == "" || req.TestType == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "patient_friendly_id and test_type are required",
		})
	}

	patient, err := h.service.FindPatient(c.Context(), req.PatientFriendlyID)
	if err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Patient not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to look up patient",
		})
	}

	request, err := h.service.ScheduleTest(c.Context(), labID, patient.ID, req.TestType, req.ScheduledFor, req.Notes)
	if err != nil {
		if errors.Is(err, ErrPastSchedule) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to schedule test",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(request)
}

// UploadResult handles POST /results - multipart/form-data with the result
// file and the patient's friendly id. The upload completes the patient's
// oldest pending request when one exists.
func (h *LabHandler) UploadResult(c *fiber.Ctx) error {
	labID, err := roles.SubjectID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	friendlyID := c.FormValue("patient_friendly_id")
	if friendlyID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "patient_friendly_id is required",
		})
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "File is required",
		})
	}
	if file.Size > maxResultSize {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "File size must be less than 10MB",
		})
	}

	patient, err := h.service.FindPatient(c.Context(), friendlyID)
	if err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Patient not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to look up patient",
		})
	}

	src, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to read file",
		})
	}
	defer src.Close()

	resultID, err := h.uploader.UploadAndLink(c.Context(), uploads.Input{
		SubjectID:   patient.ID,
		UploadedBy:  labID,
		FileName:    file.Filename,
		Category:    "Test Result",
		ContentType: file.Header.Get("Content-Type"),
		Content:     src,
	})
	if err != nil {
		if errors.Is(err, storage.ErrMissingFileName) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to upload result",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(dto.UploadResponse{
		ResultID: resultID.String(),
		Message:  "Test result uploaded successfully",
	})
}

func (h *LabHandler) GetMyResults(c *fiber.Ctx) error {
	labID, err := roles.SubjectID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	results, err := h.service.MyResults(c.Context(), labID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load results",
		})
	}

	return c.JSON(fiber.Map{"results": results})
}
