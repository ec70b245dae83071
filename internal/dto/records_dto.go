package dto

import "time"

type ScheduleTestRequest struct {
	PatientFriendlyID string    `json:"patient_friendly_id"`
	TestType          string    `json:"test_type"`
	ScheduledFor      time.Time `json:"scheduled_for"`
	Notes             string    `json:"notes"`
}

type CreateRecordRequest struct {
	PatientFriendlyID string `json:"patient_friendly_id"`
	Title             string `json:"title"`
	Notes             string `json:"notes"`
}

type UploadResponse struct {
	ResultID string `json:"result_id"`
	Message  string `json:"message"`
}
