package doctor

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/vortexmedx/medconnect-backend/internal/dto"
	"github.com/vortexmedx/medconnect-backend/internal/models"
	"github.com/vortexmedx/medconnect-backend/internal/roles"
	"github.com/vortexmedx/medconnect-backend/internal/storage"
)

type DoctorHandler struct {
	service *DoctorService
	store   storage.ObjectStore
}

func NewDoctorHandler(service *DoctorService, store storage.ObjectStore) *DoctorHandler {
	return &DoctorHandler{service: service, store: store}
}

// LookupPatient handles GET /patients/:friendlyId - resolves the card id a
// patient hands over at the desk.
func (h *DoctorHandler) LookupPatient(c *fiber.Ctx) error {
	patient, err := h.service.FindPatient(c.Context(), c.Params("friendlyId"))
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

	return c.JSON(patient)
}

func (h *DoctorHandler) GetPatientRecords(c *fiber.Ctx) error {
	patient, err := h.service.FindPatient(c.Context(), c.Params("friendlyId"))
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

	records, err := h.service.PatientRecords(c.Context(), patient.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load patient records",
		})
	}

	return c.JSON(fiber.Map{"patient": patient, "records": records})
}

// CreateRecord handles POST /records - multipart/form-data with the record
// fields and an optional attachment.
func (h *DoctorHandler) CreateRecord(c *fiber.Ctx) error {
	doctorID, err := roles.SubjectID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	req := dto.CreateRecordRequest{
		PatientFriendlyID: c.FormValue("patient_friendly_id"),
		Title:             c.FormValue("title"),
		Notes:             c.FormValue("notes"),
	}
	if req.PatientFriendlyID == "" || req.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "patient_friendly_id and title are required",
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

	record := models.MedicalRecord{
		PatientID: patient.ID,
		DoctorID:  doctorID,
		Title:     req.Title,
		Notes:     req.Notes,
	}

	var attachmentPath string
	if file, ferr := c.FormFile("file"); ferr == nil {
		src, err := file.Open()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to read file",
			})
		}
		defer src.Close()

		attachmentPath = storage.ObjectPath("Medical Record", patient.ID, file.Filename)
		fileURL, err := h.store.Upload(c.Context(), attachmentPath, src, file.Header.Get("Content-Type"))
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to store attachment",
			})
		}
		record.FileURL = fileURL
	}

	if err := h.service.CreateRecord(c.Context(), &record); err != nil {
		if attachmentPath != "" {
			_ = h.store.Delete(c.Context(), attachmentPath)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to create medical record",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(record)
}

func (h *DoctorHandler) GetMyRecords(c *fiber.Ctx) error {
	doctorID, err := roles.SubjectID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	records, err := h.service.MyRecords(c.Context(), doctorID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load records",
		})
	}

	return c.JSON(fiber.Map{"records": records})
}

func (h *DoctorHandler) GetAppointments(c *fiber.Ctx) error {
	doctorID, err := roles.SubjectID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	appointments, err := h.service.Appointments(c.Context(), doctorID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load appointments",
		})
	}

	return c.JSON(fiber.Map{"appointments": appointments})
}

// UpdateAppointment handles PATCH /appointments/:id with {"status": "..."}.
func (h *DoctorHandler) UpdateAppointment(c *fiber.Ctx) error {
	doctorID, err := roles.SubjectID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid appointment id",
		})
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	appointment, err := h.service.UpdateAppointment(c.Context(), doctorID, id, body.Status)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidStatus):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, ErrAppointmentNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Appointment not found",
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to update appointment",
			})
		}
	}

	return c.JSON(appointment)
}
