package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestObjectPath(t *testing.T) {
	got := ObjectPath("Test Result", "PT1234567890", "blood-panel.pdf")
	want := "Test Result/PT1234567890/blood-panel.pdf"
	if got != want {
		t.Errorf("ObjectPath = %q, want %q", got, want)
	}
}

func TestMemoryStore_UploadAndDelete(t *testing.T) {
	store := NewMemoryStore()

	url, err := store.Upload(context.Background(), "uploads/u1/scan.png", strings.NewReader("bytes"), "image/png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(url, "/uploads/u1/scan.png") {
		t.Errorf("url = %q, want path suffix", url)
	}

	data, ok := store.Object("uploads/u1/scan.png")
	if !ok || string(data) != "bytes" {
		t.Errorf("stored object = %q, found=%v", data, ok)
	}

	if err := store.Delete(context.Background(), "uploads/u1/scan.png"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := store.Delete(context.Background(), "uploads/u1/scan.png"); !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("second delete err = %v, want ErrObjectNotFound", err)
	}
}

func TestMemoryStore_RejectsEmptyFileName(t *testing.T) {
	store := NewMemoryStore()
	if _, err := store.Upload(context.Background(), "uploads/u1/", strings.NewReader("x"), ""); !errors.Is(err, ErrMissingFileName) {
		t.Errorf("err = %v, want ErrMissingFileName", err)
	}
}

func bucketTestClient(t *testing.T, handler http.HandlerFunc) (*BucketClient, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := &BucketClient{
		baseURL:    server.URL,
		bucket:     "medical-files",
		apiKey:     "test-key",
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
	return client, server
}

func TestBucketClient_Upload(t *testing.T) {
	var gotPath, gotAuth, gotBody string
	client, _ := bucketTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// EscapedPath is the path as sent on the wire; Path is decoded.
		gotPath = r.URL.EscapedPath()
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	})

	url, err := client.Upload(context.Background(), "Test Result/p1/result.pdf", strings.NewReader("pdf-bytes"), "application/pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/storage/v1/object/medical-files/Test%20Result/p1/result.pdf" {
		t.Errorf("request path = %q", gotPath)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if gotBody != "pdf-bytes" {
		t.Errorf("body = %q", gotBody)
	}
	if !strings.Contains(url, "/storage/v1/object/public/medical-files/") {
		t.Errorf("public url = %q", url)
	}
}

func TestBucketClient_UploadErrorStatus(t *testing.T) {
	client, _ := bucketTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bucket quota exceeded", http.StatusForbidden)
	})

	if _, err := client.Upload(context.Background(), "a/b/c.txt", strings.NewReader("x"), ""); err == nil {
		t.Fatal("expected an error for non-2xx status")
	}
}

func TestBucketClient_DeleteNotFound(t *testing.T) {
	client, _ := bucketTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	if err := client.Delete(context.Background(), "a/b/c.txt"); !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("err = %v, want ErrObjectNotFound", err)
	}
}
