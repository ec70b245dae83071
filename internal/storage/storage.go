// Package storage provides the object-store port used for medical file
// uploads. Objects live under {category}/{subjectID}/{fileName}; the bucket
// hands back publicly resolvable URLs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

var (
	ErrObjectNotFound  = errors.New("object not found")
	ErrMissingFileName = errors.New("file name is required")
)

// ObjectStore is the storage backend contract.
type ObjectStore interface {
	// Upload stores content at path and returns its public URL.
	Upload(ctx context.Context, path string, content io.Reader, contentType string) (string, error)

	// PublicURL returns the publicly resolvable URL for path.
	PublicURL(path string) string

	// Delete removes the object at path. Used as the compensating action
	// when a linked record write fails after the bytes landed.
	Delete(ctx context.Context, path string) error
}

// ObjectPath builds the canonical bucket path for an upload.
func ObjectPath(category, subjectID, fileName string) string {
	return fmt.Sprintf("%s/%s/%s", category, subjectID, fileName)
}

// MemoryStore is an in-memory ObjectStore for tests and development.
type MemoryStore struct {
	baseURL string

	mu      sync.RWMutex
	objects map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		baseURL: "memory://medical-files",
		objects: make(map[string][]byte),
	}
}

func (m *MemoryStore) Upload(_ context.Context, path string, content io.Reader, _ string) (string, error) {
	if strings.HasSuffix(path, "/") || path == "" {
		return "", ErrMissingFileName
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	m.objects[path] = data
	m.mu.Unlock()

	return m.PublicURL(path), nil
}

func (m *MemoryStore) PublicURL(path string) string {
	return m.baseURL + "/" + path
}

func (m *MemoryStore) Delete(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[path]; !ok {
		return ErrObjectNotFound
	}
	delete(m.objects, path)
	return nil
}

// Object returns the stored bytes for path, for test assertions.
func (m *MemoryStore) Object(path string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[path]
	return data, ok
}

// Len reports the number of stored objects.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
