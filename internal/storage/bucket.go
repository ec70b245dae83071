package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/vortexmedx/medconnect-backend/internal/config"
)

// BucketClient talks to a Supabase-compatible storage REST API:
// POST /storage/v1/object/{bucket}/{path} to upload, public URLs under
// /storage/v1/object/public/{bucket}/{path}, DELETE to remove.
type BucketClient struct {
	baseURL    string
	bucket     string
	apiKey     string
	httpClient *http.Client
}

func NewBucketClient(cfg *config.Config) *BucketClient {
	return &BucketClient{
		baseURL:    strings.TrimRight(cfg.StorageURL, "/"),
		bucket:     cfg.StorageBucket,
		apiKey:     cfg.StorageKey,
		httpClient: &http.Client{Timeout: cfg.StorageTimeout},
	}
}

func (c *BucketClient) Upload(ctx context.Context, path string, content io.Reader, contentType string) (string, error) {
	if path == "" || strings.HasSuffix(path, "/") {
		return "", ErrMissingFileName
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.objectURL(path), content)
	if err != nil {
		return "", fmt.Errorf("failed to build upload request: %w", err)
	}
	c.authorize(req)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Cache-Control", "3600")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("bucket returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return c.PublicURL(path), nil
}

func (c *BucketClient) PublicURL(path string) string {
	return c.baseURL + "/storage/v1/object/public/" + c.bucket + "/" + escapePath(path)
}

func (c *BucketClient) Delete(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.objectURL(path), nil)
	if err != nil {
		return fmt.Errorf("failed to build delete request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrObjectNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("bucket returned status %d", resp.StatusCode)
	}
	return nil
}

func (c *BucketClient) objectURL(path string) string {
	return c.baseURL + "/storage/v1/object/" + c.bucket + "/" + escapePath(path)
}

func (c *BucketClient) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("apikey", c.apiKey)
}

// escapePath escapes each segment while keeping the separators.
func escapePath(path string) string {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
