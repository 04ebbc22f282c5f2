// Package config loads and validates service configuration from a YAML file,
// an optional .env file, and SCRIBE_-prefixed environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/skillsenselab/scribe/logger"
	"github.com/skillsenselab/scribe/observability"
	"github.com/skillsenselab/scribe/validation"
)

// Config is the root service configuration.
type Config struct {
	Name        string `yaml:"name" mapstructure:"name"`
	Environment string `yaml:"environment" mapstructure:"environment" validate:"omitempty,oneof=development staging production"`
	Version     string `yaml:"version" mapstructure:"version"`
	Debug       bool   `yaml:"debug" mapstructure:"debug"`

	Logging       logger.Config        `yaml:"logging" mapstructure:"logging"`
	Server        ServerConfig         `yaml:"server" mapstructure:"server"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
	Transcription TranscriptionConfig  `yaml:"transcription" mapstructure:"transcription"`
}

// ServerConfig configures the HTTP API surface.
type ServerConfig struct {
	Host            string        `yaml:"host" mapstructure:"host"`
	Port            int           `yaml:"port" mapstructure:"port" validate:"min=0,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
	// MaxUploadBytes caps the size of an uploaded media file.
	MaxUploadBytes int64 `yaml:"max_upload_bytes" mapstructure:"max_upload_bytes"`
}

// TranscriptionConfig selects the active provider and the shape of the
// rendered output document.
type TranscriptionConfig struct {
	// Provider names the backend jobs run against.
	Provider string `yaml:"provider" mapstructure:"provider" validate:"required,oneof=whisper_asr swiftink"`
	// Language is the audio language code, or "auto" for detection.
	Language string `yaml:"language" mapstructure:"language"`

	// Timestamps prefixes transcript lines with segment time ranges.
	Timestamps bool `yaml:"timestamps" mapstructure:"timestamps"`
	// TimestampFormat is a layout pattern such as "mm:ss", or "auto".
	TimestampFormat string `yaml:"timestamp_format" mapstructure:"timestamp_format"`
	// GroupInterval merges timestamped segments into buckets of this many
	// seconds. Zero keeps one line per segment.
	GroupInterval float64 `yaml:"group_interval" mapstructure:"group_interval" validate:"min=0"`

	EmbedSummary  bool `yaml:"embed_summary" mapstructure:"embed_summary"`
	EmbedOutline  bool `yaml:"embed_outline" mapstructure:"embed_outline"`
	EmbedKeywords bool `yaml:"embed_keywords" mapstructure:"embed_keywords"`
	EmbedLink     bool `yaml:"embed_link" mapstructure:"embed_link"`

	PollInterval    time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`
	MaxPollAttempts int           `yaml:"max_poll_attempts" mapstructure:"max_poll_attempts" validate:"min=0"`

	WhisperASR WhisperASRConfig `yaml:"whisper_asr" mapstructure:"whisper_asr"`
	Swiftink   SwiftinkConfig   `yaml:"swiftink" mapstructure:"swiftink"`
}

// WhisperASRConfig configures the queue-style backend.
type WhisperASRConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url" validate:"omitempty,url"`
	// APIKey is the combined keyId:keySecret credential pair.
	APIKey     string `yaml:"api_key" mapstructure:"api_key"`
	ResultType int    `yaml:"result_type" mapstructure:"result_type"`
}

// SwiftinkConfig configures the session-gated backend.
type SwiftinkConfig struct {
	APIURL      string `yaml:"api_url" mapstructure:"api_url" validate:"omitempty,url"`
	StorageURL  string `yaml:"storage_url" mapstructure:"storage_url" validate:"omitempty,url"`
	Bucket      string `yaml:"bucket" mapstructure:"bucket"`
	AccessToken string `yaml:"access_token" mapstructure:"access_token"`
}

// ApplyDefaults fills unset fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "scribe"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	// The debug flag lowers the log level unless one was chosen explicitly.
	if c.Debug && c.Logging.Level == "" {
		c.Logging.Level = "debug"
	}
	c.Logging.ApplyDefaults()
	c.Observability.ApplyDefaults()

	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 30 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10 * time.Minute
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Server.MaxUploadBytes == 0 {
		c.Server.MaxUploadBytes = 512 << 20
	}

	if c.Transcription.Provider == "" {
		c.Transcription.Provider = "whisper_asr"
	}
	if c.Transcription.Language == "" {
		c.Transcription.Language = "auto"
	}
	if c.Transcription.TimestampFormat == "" {
		c.Transcription.TimestampFormat = "auto"
	}
	if c.Transcription.PollInterval == 0 {
		c.Transcription.PollInterval = 3 * time.Second
	}
	if c.Transcription.MaxPollAttempts == 0 {
		c.Transcription.MaxPollAttempts = 100
	}
}

// Validate checks the configuration for structural and semantic errors.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	if err := c.Observability.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch c.Transcription.Provider {
	case "whisper_asr":
		if c.Transcription.WhisperASR.APIKey == "" {
			return fmt.Errorf("config.transcription.whisper_asr.api_key is required for provider whisper_asr")
		}
	case "swiftink":
		if c.Transcription.Swiftink.APIURL == "" {
			return fmt.Errorf("config.transcription.swiftink.api_url is required for provider swiftink")
		}
	}
	return nil
}
