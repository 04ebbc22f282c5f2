// Package supabase implements the resumable chunked upload protocol of
// Supabase Storage (tus), used to stage media for the Swiftink backend.
package supabase

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/skillsenselab/scribe/resilience"
	"github.com/skillsenselab/scribe/storage"
)

const (
	// ChunkSize is the fixed size of each resumable upload chunk.
	ChunkSize = 6 * 1024 * 1024

	tusVersion  = "1.0.0"
	contentType = "application/octet-stream"
)

// RetryDelays is the per-chunk retry schedule for transient upload failures.
var RetryDelays = []time.Duration{0, 3 * time.Second, 5 * time.Second, 10 * time.Second, 20 * time.Second}

// Config holds Supabase-specific configuration.
type Config struct {
	// URL is the Supabase project URL (e.g., https://xyz.supabase.co).
	URL string

	// Bucket is the storage bucket name.
	Bucket string

	// AccessToken is the session token used as Bearer token.
	AccessToken string

	// ChunkSize overrides the upload chunk size. Zero means ChunkSize.
	ChunkSize int64

	// RetryDelays overrides the per-chunk retry schedule. Nil means RetryDelays.
	RetryDelays []time.Duration
}

// Storage implements storage.Uploader against the Supabase Storage
// resumable upload endpoint.
type Storage struct {
	baseURL     string
	bucket      string
	accessToken string
	chunkSize   int64
	retryDelays []time.Duration
	httpClient  *http.Client
}

// New creates a new Supabase resumable upload client.
func New(cfg Config) *Storage {
	chunk := cfg.ChunkSize
	if chunk <= 0 {
		chunk = ChunkSize
	}
	delays := cfg.RetryDelays
	if delays == nil {
		delays = RetryDelays
	}
	return &Storage{
		baseURL:     strings.TrimRight(cfg.URL, "/") + "/storage/v1",
		bucket:      cfg.Bucket,
		accessToken: cfg.AccessToken,
		chunkSize:   chunk,
		retryDelays: delays,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

// Upload stages data under path using the resumable protocol: one creation
// request establishing the upload resource, then fixed-size chunks PATCHed
// in order. Each chunk retries on transient failures per the retry schedule.
// It returns the public URL of the stored object.
func (s *Storage) Upload(ctx context.Context, path string, data []byte, progress storage.ProgressFunc) (string, error) {
	total := int64(len(data))
	if progress != nil {
		progress(0, total)
	}

	location, err := s.createUpload(ctx, path, total)
	if err != nil {
		return "", fmt.Errorf("storage: supabase create upload: %w", err)
	}

	var offset int64
	for offset < total {
		end := offset + s.chunkSize
		if end > total {
			end = total
		}
		chunk := data[offset:end]

		err := resilience.RetrySchedule(ctx, s.retryDelays, func() error {
			return s.patchChunk(ctx, location, offset, chunk)
		})
		if err != nil {
			return "", fmt.Errorf("storage: supabase upload chunk at %d: %w", offset, err)
		}

		offset = end
		if progress != nil {
			progress(offset, total)
		}
	}

	return s.PublicURL(path), nil
}

// PublicURL returns the public URL for the object at the given path.
func (s *Storage) PublicURL(path string) string {
	return fmt.Sprintf("%s/object/public/%s/%s", s.baseURL, s.bucket, path)
}

// createUpload establishes the upload resource and returns its location.
func (s *Storage) createUpload(ctx context.Context, path string, total int64) (string, error) {
	u := s.baseURL + "/upload/resumable"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, nil)
	if err != nil {
		return "", err
	}
	s.setHeaders(req)
	req.Header.Set("Upload-Length", strconv.FormatInt(total, 10))
	req.Header.Set("Upload-Metadata", encodeMetadata(map[string]string{
		"bucketName":  s.bucket,
		"objectName":  path,
		"contentType": contentType,
	}))

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("creation failed (status %d): %s", resp.StatusCode, string(body))
	}

	location := resp.Header.Get("Location")
	if location == "" {
		return "", fmt.Errorf("creation response carries no Location header")
	}
	if strings.HasPrefix(location, "/") {
		location = strings.TrimSuffix(s.baseURL, "/storage/v1") + location
	}
	return location, nil
}

// patchChunk sends one chunk at the given offset. Client-side errors are
// permanent; transport errors and 5xx responses are retried by the caller.
func (s *Storage) patchChunk(ctx context.Context, location string, offset int64, chunk []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, location, bytes.NewReader(chunk))
	if err != nil {
		return resilience.Permanent(err)
	}
	s.setHeaders(req)
	req.Header.Set("Content-Type", "application/offset+octet-stream")
	req.Header.Set("Upload-Offset", strconv.FormatInt(offset, 10))

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("chunk rejected (status %d): %s", resp.StatusCode, string(body))
	}
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return resilience.Permanent(fmt.Errorf("chunk rejected (status %d): %s", resp.StatusCode, string(body)))
	}
	return nil
}

func (s *Storage) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.accessToken))
	req.Header.Set("Tus-Resumable", tusVersion)
	req.Header.Set("x-upsert", "true")
}

// encodeMetadata renders tus Upload-Metadata: comma-separated key/value
// pairs with base64-encoded values, keys in fixed order.
func encodeMetadata(meta map[string]string) string {
	keys := []string{"bucketName", "objectName", "contentType"}
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		if v, ok := meta[k]; ok {
			pairs = append(pairs, k+" "+base64.StdEncoding.EncodeToString([]byte(v)))
		}
	}
	return strings.Join(pairs, ",")
}

// compile-time check
var _ storage.Uploader = (*Storage)(nil)
