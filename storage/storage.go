// Package storage defines the upload contract the transcription backends use
// to stage media before a remote job is created.
package storage

import (
	"context"
	"regexp"
	"strings"
)

// ProgressFunc receives incremental upload progress. It is called with the
// running byte count and the total size, total included on every call.
type ProgressFunc func(bytesUploaded, totalBytes int64)

// Uploader stages a media object and returns its publicly reachable URL.
type Uploader interface {
	// Upload writes data under path and reports progress. It returns the
	// public URL of the stored object.
	Upload(ctx context.Context, path string, data []byte, progress ProgressFunc) (string, error)
}

var objectNameSanitizer = regexp.MustCompile(`[^A-Za-z0-9.]`)

// SanitizeObjectName replaces every character outside [A-Za-z0-9.] with a
// dash, so arbitrary file names become valid object names.
func SanitizeObjectName(name string) string {
	return objectNameSanitizer.ReplaceAllString(strings.TrimSpace(name), "-")
}
