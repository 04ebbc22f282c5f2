package transcription

import (
	"context"

	"github.com/skillsenselab/scribe/provider"
)

// Request holds the media for one transcription job. The content is read
// once, up front, so providers can re-send it across protocol stages.
type Request struct {
	// FileName is the original media file name.
	FileName string
	// Data is the raw media content.
	Data []byte
	// Language is the expected audio language code, or "auto" to let the
	// provider detect it.
	Language string
}

// Provider is the interface transcription backends must implement.
type Provider interface {
	provider.Provider // embeds Name() and IsAvailable()

	// Transcribe submits media and blocks until the remote job reaches a
	// terminal state, returning the formatted transcript document.
	Transcribe(ctx context.Context, req Request) (string, error)
}

// Registry holds the configured transcription providers by name.
type Registry = provider.Registry[Provider]

// NewRegistry creates a new provider registry for transcription providers.
func NewRegistry() *Registry {
	return provider.NewRegistry[Provider]()
}
