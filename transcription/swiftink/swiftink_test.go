package swiftink

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/skillsenselab/scribe/auth"
	"github.com/skillsenselab/scribe/errors"
	"github.com/skillsenselab/scribe/storage"
	"github.com/skillsenselab/scribe/transcript"
	"github.com/skillsenselab/scribe/transcription"
)

func sessionToken(t *testing.T, sub string) string {
	t.Helper()
	tok := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.MapClaims{"sub": sub})
	signed, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return signed
}

type fakeUploader struct {
	mu    sync.Mutex
	calls int
	path  string
	data  []byte
	url   string
	err   error
}

func (f *fakeUploader) Upload(ctx context.Context, path string, data []byte, progress storage.ProgressFunc) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.path = path
	f.data = data
	if f.err != nil {
		return "", f.err
	}
	total := int64(len(data))
	if progress != nil {
		progress(0, total)
		progress(total, total)
	}
	return f.url, nil
}

type recordNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordNotifier) Update(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
}

// fakeAPI serves the transcript endpoints. Each poll consumes the next
// status from the sequence; the last one repeats.
type fakeAPI struct {
	mu         sync.Mutex
	creates    int
	gets       int
	createBody map[string]string
	statuses   []string
	resource   transcriptResource
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /transcripts/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.creates++
		if err := json.NewDecoder(r.Body).Decode(&f.createBody); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(transcriptResource{ID: f.resource.ID, Status: "pending"})
	})
	mux.HandleFunc("GET /transcripts/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		idx := f.gets
		f.gets++
		if idx >= len(f.statuses) {
			idx = len(f.statuses) - 1
		}
		res := f.resource
		res.Status = f.statuses[idx]
		json.NewEncoder(w).Encode(res)
	})
	return mux
}

func newTestProvider(t *testing.T, api *fakeAPI, up *fakeUploader, cfg Config) (*Provider, *recordNotifier) {
	t.Helper()
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)

	cfg.APIURL = srv.URL
	if cfg.PollInterval == 0 {
		cfg.PollInterval = time.Millisecond
	}
	notifier := &recordNotifier{}
	sessions := &auth.StaticSource{AccessToken: sessionToken(t, "user-1")}
	p := NewProvider(cfg, sessions, WithNotifier(notifier))
	p.newUploader = func(token string) storage.Uploader { return up }
	return p, notifier
}

func TestTranscribeSuccess(t *testing.T) {
	api := &fakeAPI{
		statuses: []string{"pending", "processing", "transcribed"},
		resource: transcriptResource{ID: "tr-1", Text: "hello world"},
	}
	up := &fakeUploader{url: "https://files.example.com/user-1/team-sync.mp3"}
	p, notifier := newTestProvider(t, api, up, Config{Language: "auto"})

	out, err := p.Transcribe(context.Background(), transcription.Request{
		FileName: "team sync.mp3",
		Data:     []byte("audio-bytes"),
	})
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}

	if up.calls != 1 {
		t.Fatalf("upload calls = %d, want 1", up.calls)
	}
	if up.path != "user-1/team-sync.mp3" {
		t.Errorf("object path = %q, want %q", up.path, "user-1/team-sync.mp3")
	}
	if api.createBody["name"] != "team sync.mp3" {
		t.Errorf("create name = %q, want original file name", api.createBody["name"])
	}
	if api.createBody["url"] != up.url {
		t.Errorf("create url = %q, want %q", api.createBody["url"], up.url)
	}
	if _, ok := api.createBody["language"]; ok {
		t.Error(`create body includes language despite "auto"`)
	}
	if api.gets != 3 {
		t.Errorf("poll rounds = %d, want 3", api.gets)
	}
	if !strings.Contains(out, "# Transcript") || !strings.Contains(out, "hello world") {
		t.Errorf("unexpected document:\n%s", out)
	}

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	if len(notifier.messages) == 0 {
		t.Error("no progress notices recorded")
	}
}

func TestTranscribeLanguageForwarded(t *testing.T) {
	api := &fakeAPI{
		statuses: []string{"transcribed"},
		resource: transcriptResource{ID: "tr-2", Text: "bonjour"},
	}
	p, _ := newTestProvider(t, api, &fakeUploader{url: "https://files.example.com/f"}, Config{Language: "fr"})

	if _, err := p.Transcribe(context.Background(), transcription.Request{FileName: "a.mp3", Data: []byte("x")}); err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if api.createBody["language"] != "fr" {
		t.Errorf("create language = %q, want %q", api.createBody["language"], "fr")
	}
}

func TestTranscribeNoSession(t *testing.T) {
	p := NewProvider(Config{APIURL: "http://unused"}, &auth.StaticSource{})
	up := &fakeUploader{}
	p.newUploader = func(string) storage.Uploader { return up }

	_, err := p.Transcribe(context.Background(), transcription.Request{FileName: "a.mp3"})
	if !errors.HasCode(err, errors.ErrCodeUnauthorized) {
		t.Fatalf("error = %v, want code %s", err, errors.ErrCodeUnauthorized)
	}
	if up.calls != 0 {
		t.Errorf("upload calls = %d, want 0", up.calls)
	}
}

func TestTranscribeUploadFailure(t *testing.T) {
	api := &fakeAPI{statuses: []string{"transcribed"}, resource: transcriptResource{ID: "tr-3"}}
	up := &fakeUploader{err: errors.ConnectionFailed("storage", nil)}
	p, _ := newTestProvider(t, api, up, Config{})

	_, err := p.Transcribe(context.Background(), transcription.Request{FileName: "a.mp3", Data: []byte("x")})
	if !errors.HasCode(err, errors.ErrCodeUploadFailed) {
		t.Fatalf("error = %v, want code %s", err, errors.ErrCodeUploadFailed)
	}
	if api.creates != 0 {
		t.Errorf("creates = %d, want 0 after failed upload", api.creates)
	}
}

// Requesting an embedded section narrows completion to "complete":
// "transcribed" must be polled past, since the extra fields are not
// populated yet at that point.
func TestTranscribeStatusNarrowing(t *testing.T) {
	api := &fakeAPI{
		statuses: []string{"transcribed", "transcribed", "complete"},
		resource: transcriptResource{
			ID:      "tr-4",
			Text:    "the transcript",
			Summary: "the summary",
		},
	}
	p, _ := newTestProvider(t, api, &fakeUploader{url: "u"}, Config{
		Format: transcript.FormatOptions{EmbedSummary: true},
	})

	out, err := p.Transcribe(context.Background(), transcription.Request{FileName: "a.mp3", Data: []byte("x")})
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if api.gets != 3 {
		t.Errorf("poll rounds = %d, want 3", api.gets)
	}
	if !strings.Contains(out, "# Summary") || !strings.Contains(out, "the summary") {
		t.Errorf("summary missing from document:\n%s", out)
	}
}

func TestTranscribeTranscribedCompletesWithoutEmbeds(t *testing.T) {
	api := &fakeAPI{
		statuses: []string{"transcribed"},
		resource: transcriptResource{ID: "tr-5", Text: "plain"},
	}
	p, _ := newTestProvider(t, api, &fakeUploader{url: "u"}, Config{})

	if _, err := p.Transcribe(context.Background(), transcription.Request{FileName: "a.mp3", Data: []byte("x")}); err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if api.gets != 1 {
		t.Errorf("poll rounds = %d, want 1", api.gets)
	}
}

func TestTranscribeTerminalFailure(t *testing.T) {
	for _, status := range []string{"failed", "validation_failed"} {
		t.Run(status, func(t *testing.T) {
			api := &fakeAPI{
				statuses: []string{"processing", status, "complete"},
				resource: transcriptResource{ID: "tr-6"},
			}
			p, _ := newTestProvider(t, api, &fakeUploader{url: "u"}, Config{})

			_, err := p.Transcribe(context.Background(), transcription.Request{FileName: "a.mp3", Data: []byte("x")})
			if !errors.HasCode(err, errors.ErrCodeProviderRejected) {
				t.Fatalf("error = %v, want code %s", err, errors.ErrCodeProviderRejected)
			}
			if api.gets != 2 {
				t.Errorf("poll rounds = %d, want 2 (stop at terminal status)", api.gets)
			}
		})
	}
}

// The cap counts non-terminal rounds: a job whose status flips to
// "complete" on the round after the cap still resolves.
func TestTranscribeCompletesOnFinalAttempt(t *testing.T) {
	nonTerminal := make([]string, 5)
	for i := range nonTerminal {
		nonTerminal[i] = "processing"
	}
	api := &fakeAPI{
		statuses: append(nonTerminal, "complete"),
		resource: transcriptResource{ID: "tr-8", Text: "just in time"},
	}
	p, _ := newTestProvider(t, api, &fakeUploader{url: "u"}, Config{MaxPollAttempts: 5})

	out, err := p.Transcribe(context.Background(), transcription.Request{FileName: "a.mp3", Data: []byte("x")})
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if api.gets != 6 {
		t.Errorf("poll rounds = %d, want 6", api.gets)
	}
	if !strings.Contains(out, "just in time") {
		t.Errorf("unexpected document:\n%s", out)
	}
}

func TestTranscribePollCap(t *testing.T) {
	api := &fakeAPI{
		statuses: []string{"processing"},
		resource: transcriptResource{ID: "tr-7"},
	}
	p, _ := newTestProvider(t, api, &fakeUploader{url: "u"}, Config{MaxPollAttempts: 5})

	_, err := p.Transcribe(context.Background(), transcription.Request{FileName: "a.mp3", Data: []byte("x")})
	if !errors.HasCode(err, errors.ErrCodeTimeout) {
		t.Fatalf("error = %v, want code %s", err, errors.ErrCodeTimeout)
	}
	if api.gets != 6 {
		t.Errorf("poll rounds = %d, want 6 (5 under the cap plus the final round)", api.gets)
	}
}

func TestFactoryBuildsProviderFromConfigMap(t *testing.T) {
	f := Factory(&auth.StaticSource{})
	p, err := f(map[string]any{
		"api_url":           "https://api.swiftink.test/v1",
		"storage_url":       "https://storage.swiftink.test",
		"bucket":            "media",
		"language":          "fr",
		"format":            transcript.FormatOptions{EmbedSummary: true},
		"poll_interval":     time.Millisecond,
		"max_poll_attempts": 3,
	})
	if err != nil {
		t.Fatalf("factory error: %v", err)
	}
	if p.Name() != ProviderName {
		t.Errorf("Name() = %q, want %q", p.Name(), ProviderName)
	}
}

func TestFactoryRequiresAPIURL(t *testing.T) {
	_, err := Factory(&auth.StaticSource{})(map[string]any{"bucket": "media"})
	if !errors.HasCode(err, errors.ErrCodeMissingField) {
		t.Fatalf("error = %v, want code %s", err, errors.ErrCodeMissingField)
	}
}
