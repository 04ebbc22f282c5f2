// Package whisperasr implements the queue-style transcription service:
// one multipart create request, then a poll loop against the query endpoint
// keyed by task id.
package whisperasr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/skillsenselab/scribe/errors"
	"github.com/skillsenselab/scribe/logger"
	"github.com/skillsenselab/scribe/provider"
	"github.com/skillsenselab/scribe/transcription"
)

const (
	// ProviderName is the registered name for this provider.
	ProviderName = "whisper_asr"

	// codeSuccess is the sentinel the service returns for an accepted
	// create request and for a finished query.
	codeSuccess = 10000
	// codeRunning is the query sentinel for a job still processing.
	codeRunning = 20001

	defaultPollInterval    = 3 * time.Second
	defaultMaxPollAttempts = 100
	defaultTimeout         = 60 * time.Second
)

// Config holds configuration for the provider.
type Config struct {
	// BaseURL is the service endpoint root.
	BaseURL string
	// APIKey is the combined "keyId:keySecret" credential pair.
	APIKey string
	// Language is the target language code sent with the create request.
	Language string
	// ResultType selects the result payload variant on the query endpoint.
	ResultType int
	// PollInterval is the delay between query rounds.
	PollInterval time.Duration
	// MaxPollAttempts caps the poll loop. The reference service imposes no
	// cap of its own, so the bound lives here.
	MaxPollAttempts int
	// Timeout bounds a single HTTP round trip.
	Timeout time.Duration
}

// Provider implements transcription.Provider against the queue-style API.
type Provider struct {
	cfg       Config
	keyID     string
	keySecret string
	client    *http.Client
	log       *logger.Logger
}

// NewProvider creates a new provider. The API key must be a "keyId:keySecret"
// pair; anything else is rejected up front.
func NewProvider(cfg Config) (*Provider, error) {
	keyID, keySecret, ok := strings.Cut(cfg.APIKey, ":")
	if !ok || keyID == "" || keySecret == "" {
		return nil, errors.InvalidInput("api_key", "expected a keyId:keySecret pair")
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
	return &Provider{
		cfg:       cfg,
		keyID:     keyID,
		keySecret: keySecret,
		client:    &http.Client{Timeout: cfg.Timeout},
		log:       logger.Get(ProviderName),
	}, nil
}

// Factory returns a provider.Factory that creates Provider instances from a
// generic config map.
func Factory() provider.Factory[transcription.Provider] {
	return func(cfg map[string]any) (transcription.Provider, error) {
		c := Config{}
		if v, ok := cfg["base_url"].(string); ok {
			c.BaseURL = v
		}
		if v, ok := cfg["api_key"].(string); ok {
			c.APIKey = v
		}
		if v, ok := cfg["language"].(string); ok {
			c.Language = v
		}
		if v, ok := cfg["result_type"].(int); ok {
			c.ResultType = v
		}
		if v, ok := cfg["poll_interval"].(time.Duration); ok {
			c.PollInterval = v
		}
		if v, ok := cfg["max_poll_attempts"].(int); ok {
			c.MaxPollAttempts = v
		}
		if v, ok := cfg["timeout"].(time.Duration); ok {
			c.Timeout = v
		}
		return NewProvider(c)
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable reports whether the provider is configured. The service
// exposes no health endpoint to probe.
func (p *Provider) IsAvailable(_ context.Context) bool {
	return p.cfg.BaseURL != "" && p.keyID != ""
}

// Transcribe submits the media, then polls the query endpoint until the
// task reaches a terminal state or the attempt cap is exhausted. The cap
// counts non-terminal rounds, so one more round fires after it is reached
// and its result is still honored before the timeout.
func (p *Provider) Transcribe(ctx context.Context, req transcription.Request) (string, error) {
	taskID, err := p.createTask(ctx, req)
	if err != nil {
		return "", err
	}

	p.log.Debug("task created", logger.Fields(logger.FieldTaskID, taskID))

	ticker := time.NewTicker(p.cfg.PollInterval)
	defer ticker.Stop()

	for attempt := 1; attempt <= p.cfg.MaxPollAttempts+1; attempt++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}

		text, done, err := p.queryTask(ctx, taskID)
		if err != nil {
			return "", err
		}
		if done {
			return text, nil
		}

		p.log.Debug("task still processing", logger.Fields(
			logger.FieldTaskID, taskID,
			logger.FieldAttempt, attempt,
		))
	}

	return "", errors.Timeout("whisper_asr poll").WithDetail("max_attempts", p.cfg.MaxPollAttempts)
}

type createResponse struct {
	Code   int    `json:"code"`
	TaskID string `json:"taskId"`
	Msg    string `json:"msg"`
}

// createTask uploads the media as a single-part multipart body and returns
// the provider task id.
func (p *Provider) createTask(ctx context.Context, req transcription.Request) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, req.FileName))
	header.Set("Content-Type", "application/octet-stream")
	part, err := w.CreatePart(header)
	if err != nil {
		return "", errors.Internal(err)
	}
	if _, err := part.Write(req.Data); err != nil {
		return "", errors.Internal(err)
	}
	if err := w.Close(); err != nil {
		return "", errors.Internal(err)
	}

	lang := req.Language
	if lang == "" {
		lang = p.cfg.Language
	}
	u := fmt.Sprintf("%s/create?lang=%s", strings.TrimRight(p.cfg.BaseURL, "/"), url.QueryEscape(lang))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, &buf)
	if err != nil {
		return "", errors.Internal(err)
	}
	httpReq.Header.Set("Content-Type", w.FormDataContentType())
	p.setCredentials(httpReq)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", errors.ConnectionFailed(ProviderName, err)
	}
	defer resp.Body.Close()

	var created createResponse
	if err := decodeBody(resp, &created); err != nil {
		return "", err
	}
	if created.Code != codeSuccess || created.TaskID == "" {
		return "", errors.ProviderRejected(ProviderName, created.Msg).WithDetail("code", created.Code)
	}
	return created.TaskID, nil
}

type queryResponse struct {
	Code   int    `json:"code"`
	Result string `json:"result"`
	Msg    string `json:"msg"`
}

type queryResult struct {
	Sentences []struct {
		Text string `json:"s"`
	} `json:"sentences"`
}

// queryTask performs one poll round. done is true with the joined sentence
// text once the task finished; a non-running, non-success code is terminal.
func (p *Provider) queryTask(ctx context.Context, taskID string) (text string, done bool, err error) {
	u := fmt.Sprintf("%s/query?taskId=%s&resultType=%s",
		strings.TrimRight(p.cfg.BaseURL, "/"),
		url.QueryEscape(taskID),
		strconv.Itoa(p.cfg.ResultType))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", false, errors.Internal(err)
	}
	p.setCredentials(httpReq)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", false, errors.ConnectionFailed(ProviderName, err)
	}
	defer resp.Body.Close()

	var status queryResponse
	if err := decodeBody(resp, &status); err != nil {
		return "", false, err
	}

	switch status.Code {
	case codeSuccess:
		var result queryResult
		if err := json.Unmarshal([]byte(status.Result), &result); err != nil {
			return "", false, errors.Parse(err)
		}
		parts := make([]string, 0, len(result.Sentences))
		for _, s := range result.Sentences {
			parts = append(parts, s.Text)
		}
		return strings.Join(parts, " "), true, nil
	case codeRunning:
		return "", false, nil
	default:
		return "", false, errors.ProviderRejected(ProviderName, status.Msg).WithDetail("code", status.Code)
	}
}

func (p *Provider) setCredentials(req *http.Request) {
	req.Header.Set("keyId", p.keyID)
	req.Header.Set("keySecret", p.keySecret)
}

func decodeBody(resp *http.Response, v any) error {
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return errors.ProviderRejected(ProviderName,
			fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return errors.Parse(err)
	}
	return nil
}

// compile-time check
var _ transcription.Provider = (*Provider)(nil)
