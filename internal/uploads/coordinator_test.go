package uploads

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/vortexmedx/medconnect-backend/internal/models"
	"github.com/vortexmedx/medconnect-backend/internal/storage"
)

type fakeRequests struct {
	pending   []models.TestRequest
	completed map[uuid.UUID]time.Time
	openErr   error
}

func (f *fakeRequests) OpenForPatient(_ context.Context, patientID string) (*models.TestRequest, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	for i := range f.pending {
		if f.pending[i].PatientID == patientID && f.pending[i].Status == models.TestStatusPending {
			return &f.pending[i], nil
		}
	}
	return nil, nil
}

func (f *fakeRequests) Complete(_ context.Context, id uuid.UUID, at time.Time) error {
	if f.completed == nil {
		f.completed = make(map[uuid.UUID]time.Time)
	}
	f.completed[id] = at
	for i := range f.pending {
		if f.pending[i].ID == id {
			f.pending[i].Status = models.TestStatusCompleted
		}
	}
	return nil
}

type fakeResults struct {
	rows      []models.TestResult
	insertErr error
}

func (f *fakeResults) Insert(_ context.Context, result *models.TestResult) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.rows = append(f.rows, *result)
	return nil
}

type fakeFiles struct {
	rows []models.StoredFile
}

func (f *fakeFiles) Insert(_ context.Context, file *models.StoredFile) error {
	f.rows = append(f.rows, *file)
	return nil
}

func resultInput(patientID string) Input {
	return Input{
		SubjectID:   patientID,
		UploadedBy:  "lab-1",
		FileName:    "blood-panel.PDF",
		Category:    "Test Result",
		ContentType: "application/pdf",
		Content:     strings.NewReader("pdf-bytes"),
	}
}

func TestUploadAndLink_CompletesPendingRequest(t *testing.T) {
	store := storage.NewMemoryStore()
	request := models.TestRequest{ID: uuid.New(), PatientID: "patient-1", Status: models.TestStatusPending}
	requests := &fakeRequests{pending: []models.TestRequest{request}}
	results := &fakeResults{}
	files := &fakeFiles{}

	coord := NewCoordinator(store, requests, results, files)
	resultID, err := coord.UploadAndLink(context.Background(), resultInput("patient-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resultID == uuid.Nil {
		t.Fatal("expected a result id")
	}

	if _, ok := requests.completed[request.ID]; !ok {
		t.Error("pending request was not completed")
	}
	if len(results.rows) != 1 {
		t.Fatalf("result rows = %d, want exactly 1", len(results.rows))
	}
	row := results.rows[0]
	if row.RequestID == nil || *row.RequestID != request.ID {
		t.Errorf("result row request id = %v, want %s", row.RequestID, request.ID)
	}
	if row.FileType != "pdf" {
		t.Errorf("file type = %q, want pdf from extension", row.FileType)
	}
	if !strings.Contains(row.FileURL, "Test Result/patient-1/blood-panel.PDF") {
		t.Errorf("file url = %q, want namespaced path", row.FileURL)
	}
	if len(files.rows) != 1 {
		t.Errorf("stored file rows = %d, want 1", len(files.rows))
	}
}

func TestUploadAndLink_NoPendingRequest(t *testing.T) {
	store := storage.NewMemoryStore()
	results := &fakeResults{}

	coord := NewCoordinator(store, &fakeRequests{}, results, &fakeFiles{})
	_, err := coord.UploadAndLink(context.Background(), resultInput("patient-2"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results.rows) != 1 {
		t.Fatalf("result rows = %d, want 1", len(results.rows))
	}
	if results.rows[0].RequestID != nil {
		t.Error("result must stay unlinked when no request is pending")
	}
}

func TestUploadAndLink_ResultFailureDeletesBlob(t *testing.T) {
	store := storage.NewMemoryStore()
	results := &fakeResults{insertErr: errors.New("insert failed")}

	coord := NewCoordinator(store, &fakeRequests{}, results, &fakeFiles{})
	_, err := coord.UploadAndLink(context.Background(), resultInput("patient-3"))
	if err == nil {
		t.Fatal("expected the insert failure to surface")
	}

	if store.Len() != 0 {
		t.Errorf("bucket holds %d objects, want 0 after compensation", store.Len())
	}
}

func TestUploadAndLink_RequestLookupFailureAborts(t *testing.T) {
	store := storage.NewMemoryStore()
	requests := &fakeRequests{openErr: errors.New("connection refused")}
	results := &fakeResults{}

	coord := NewCoordinator(store, requests, results, &fakeFiles{})
	_, err := coord.UploadAndLink(context.Background(), resultInput("patient-4"))
	if err == nil {
		t.Fatal("expected the lookup failure to surface")
	}
	if len(results.rows) != 0 {
		t.Error("no result row may be written after an aborted step")
	}
	if store.Len() != 0 {
		t.Error("uploaded blob must be compensated after an aborted step")
	}
}

func TestUploadAndLink_MissingFileName(t *testing.T) {
	coord := NewCoordinator(storage.NewMemoryStore(), &fakeRequests{}, &fakeResults{}, &fakeFiles{})

	in := resultInput("patient-5")
	in.FileName = ""
	if _, err := coord.UploadAndLink(context.Background(), in); !errors.Is(err, storage.ErrMissingFileName) {
		t.Errorf("err = %v, want ErrMissingFileName", err)
	}
}
