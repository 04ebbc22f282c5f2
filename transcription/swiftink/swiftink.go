// Package swiftink implements the Swiftink transcription backend: media is
// staged in cloud storage via a resumable upload, a transcript resource is
// created against the REST API, and the resource is polled to completion.
package swiftink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/skillsenselab/scribe/auth"
	"github.com/skillsenselab/scribe/errors"
	"github.com/skillsenselab/scribe/logger"
	"github.com/skillsenselab/scribe/provider"
	"github.com/skillsenselab/scribe/storage"
	"github.com/skillsenselab/scribe/storage/supabase"
	"github.com/skillsenselab/scribe/transcript"
	"github.com/skillsenselab/scribe/transcription"
)

const (
	// ProviderName is the registered name for this provider.
	ProviderName = "swiftink"

	// DefaultBucket is the storage bucket transcription media is staged in.
	DefaultBucket = "swiftink-upload"

	statusComplete         = "complete"
	statusTranscribed      = "transcribed"
	statusFailed           = "failed"
	statusValidationFailed = "validation_failed"

	defaultPollInterval    = 3 * time.Second
	defaultMaxPollAttempts = 100
	defaultTimeout         = 60 * time.Second
)

// Config holds configuration for the Swiftink provider.
type Config struct {
	// APIURL is the transcription API root (e.g. https://api.swiftink.io/v1).
	APIURL string
	// StorageURL is the storage project URL media is uploaded to.
	StorageURL string
	// Bucket is the staging bucket. Empty means DefaultBucket.
	Bucket string
	// Language is the audio language code; "auto" omits the override and
	// lets the service detect it.
	Language string
	// Format controls the assembly of the final document.
	Format transcript.FormatOptions
	// PollInterval is the delay between transcript poll rounds.
	PollInterval time.Duration
	// MaxPollAttempts caps the poll loop.
	MaxPollAttempts int
	// Timeout bounds a single API round trip.
	Timeout time.Duration
}

// Notifier receives user-visible progress updates for one job. A single
// notice exists per job: it is created on the first update and refreshed by
// every later one.
type Notifier interface {
	Update(message string)
}

type nopNotifier struct{}

func (nopNotifier) Update(string) {}

// Provider implements transcription.Provider against the Swiftink API.
type Provider struct {
	cfg      Config
	sessions auth.Source
	notifier Notifier
	client   *http.Client
	log      *logger.Logger

	// newUploader builds the storage client for a session token.
	// Swapped in tests.
	newUploader func(token string) storage.Uploader
}

// Option configures optional Provider collaborators.
type Option func(*Provider)

// WithNotifier installs a progress notifier.
func WithNotifier(n Notifier) Option {
	return func(p *Provider) { p.notifier = n }
}

// NewProvider creates a new Swiftink provider backed by the given session
// source.
func NewProvider(cfg Config, sessions auth.Source, opts ...Option) *Provider {
	if cfg.Bucket == "" {
		cfg.Bucket = DefaultBucket
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.MaxPollAttempts <= 0 {
		cfg.MaxPollAttempts = defaultMaxPollAttempts
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	p := &Provider{
		cfg:      cfg,
		sessions: sessions,
		notifier: nopNotifier{},
		client:   &http.Client{Timeout: cfg.Timeout},
		log:      logger.Get(ProviderName),
	}
	p.newUploader = func(token string) storage.Uploader {
		return supabase.New(supabase.Config{
			URL:         cfg.StorageURL,
			Bucket:      cfg.Bucket,
			AccessToken: token,
		})
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Factory returns a provider.Factory that creates Provider instances from a
// generic config map. Every instance shares the given session source.
func Factory(sessions auth.Source, opts ...Option) provider.Factory[transcription.Provider] {
	return func(cfg map[string]any) (transcription.Provider, error) {
		c := Config{}
		if v, ok := cfg["api_url"].(string); ok {
			c.APIURL = v
		}
		if v, ok := cfg["storage_url"].(string); ok {
			c.StorageURL = v
		}
		if v, ok := cfg["bucket"].(string); ok {
			c.Bucket = v
		}
		if v, ok := cfg["language"].(string); ok {
			c.Language = v
		}
		if v, ok := cfg["format"].(transcript.FormatOptions); ok {
			c.Format = v
		}
		if v, ok := cfg["poll_interval"].(time.Duration); ok {
			c.PollInterval = v
		}
		if v, ok := cfg["max_poll_attempts"].(int); ok {
			c.MaxPollAttempts = v
		}
		if c.APIURL == "" {
			return nil, errors.MissingField("api_url")
		}
		return NewProvider(c, sessions, opts...), nil
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable reports whether a usable session exists.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	_, err := p.sessions.Session(ctx)
	return err == nil
}

// Transcribe stages the media, creates the transcript resource, and polls it
// to a terminal state. The session is resolved first; without one, no
// network call is attempted.
func (p *Provider) Transcribe(ctx context.Context, req transcription.Request) (string, error) {
	sess, err := p.sessions.Session(ctx)
	if err != nil {
		return "", err
	}
	userID, err := sess.UserID()
	if err != nil {
		return "", err
	}

	objectPath := userID + "/" + storage.SanitizeObjectName(req.FileName)
	uploader := p.newUploader(sess.AccessToken)

	fileURL, err := uploader.Upload(ctx, objectPath, req.Data, func(done, total int64) {
		if total > 0 {
			p.notifier.Update(fmt.Sprintf("Uploading %s: %d%%", req.FileName, done*100/total))
		}
	})
	if err != nil {
		return "", errors.UploadFailed(err)
	}

	p.log.Debug("media staged", logger.Fields(logger.FieldFile, objectPath))

	created, err := p.createTranscript(ctx, sess, req, fileURL)
	if err != nil {
		return "", err
	}

	return p.awaitTranscript(ctx, sess, created.ID)
}

// transcriptResource mirrors the transcript representation of the API.
type transcriptResource struct {
	ID              string               `json:"id"`
	Status          string               `json:"status"`
	Text            string               `json:"text"`
	TextSegments    []transcript.Segment `json:"text_segments"`
	Summary         string               `json:"summary"`
	HeadingSegments []transcript.Segment `json:"heading_segments"`
	Keywords        []string             `json:"keywords"`
}

func (p *Provider) createTranscript(ctx context.Context, sess *auth.Session, req transcription.Request, fileURL string) (*transcriptResource, error) {
	body := map[string]string{
		"name": req.FileName,
		"url":  fileURL,
	}
	lang := req.Language
	if lang == "" {
		lang = p.cfg.Language
	}
	if lang != "" && lang != "auto" {
		body["language"] = lang
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Internal(err)
	}

	u := strings.TrimRight(p.cfg.APIURL, "/") + "/transcripts/"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Internal(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+sess.AccessToken)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, errors.ConnectionFailed(ProviderName, err)
	}
	defer resp.Body.Close()

	created, err := decodeTranscript(resp)
	if err != nil {
		return nil, err
	}
	if created.ID == "" {
		return nil, errors.ProviderRejected(ProviderName, "transcript creation returned no id")
	}
	return created, nil
}

// awaitTranscript polls the transcript resource on a fixed cadence until a
// terminal condition: a completed status, a failure status, or the attempt
// cap. The cap counts non-terminal rounds, so one more round fires after it
// is reached and its status is still honored before the timeout.
func (p *Provider) awaitTranscript(ctx context.Context, sess *auth.Session, id string) (string, error) {
	ticker := time.NewTicker(p.cfg.PollInterval)
	defer ticker.Stop()

	for attempt := 1; attempt <= p.cfg.MaxPollAttempts+1; attempt++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}

		tr, err := p.getTranscript(ctx, sess, id)
		if err != nil {
			return "", err
		}

		switch {
		case p.isComplete(tr.Status):
			return transcript.Format(toResult(tr), p.cfg.Format), nil
		case tr.Status == statusFailed:
			return "", errors.ProviderRejected(ProviderName, "transcription failed")
		case tr.Status == statusValidationFailed:
			return "", errors.ProviderRejected(ProviderName, "the file could not be validated for transcription")
		}

		p.notifier.Update("Transcribing...")
		p.log.Debug("transcript pending", logger.Fields(
			logger.FieldTaskID, id,
			logger.FieldStatus, tr.Status,
			logger.FieldAttempt, attempt,
		))
	}

	return "", errors.Timeout("swiftink poll").WithDetail("max_attempts", p.cfg.MaxPollAttempts)
}

// isComplete applies the status-set narrowing: summary, outline, and
// keyword fields only populate at full completion, so requesting any of
// them means "transcribed" is not terminal yet.
func (p *Provider) isComplete(status string) bool {
	if p.cfg.Format.EmbedSummary || p.cfg.Format.EmbedOutline || p.cfg.Format.EmbedKeywords {
		return status == statusComplete
	}
	return status == statusComplete || status == statusTranscribed
}

func (p *Provider) getTranscript(ctx context.Context, sess *auth.Session, id string) (*transcriptResource, error) {
	u := strings.TrimRight(p.cfg.APIURL, "/") + "/transcripts/" + id
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Internal(err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+sess.AccessToken)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, errors.ConnectionFailed(ProviderName, err)
	}
	defer resp.Body.Close()

	return decodeTranscript(resp)
}

func decodeTranscript(resp *http.Response) (*transcriptResource, error) {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return nil, errors.ProviderRejected(ProviderName,
			fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)))
	}
	tr := &transcriptResource{}
	if err := json.NewDecoder(resp.Body).Decode(tr); err != nil {
		return nil, errors.Parse(err)
	}
	return tr, nil
}

func toResult(tr *transcriptResource) *transcript.Result {
	return &transcript.Result{
		ID:              tr.ID,
		Text:            tr.Text,
		Segments:        tr.TextSegments,
		Summary:         tr.Summary,
		HeadingSegments: tr.HeadingSegments,
		Keywords:        tr.Keywords,
	}
}

// compile-time check
var _ transcription.Provider = (*Provider)(nil)
