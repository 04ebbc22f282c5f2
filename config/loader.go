package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// LoaderOption customizes Load.
type LoaderOption func(*loaderConfig)

type loaderConfig struct {
	configFile string
	envFile    string
}

// WithConfigFile sets an explicit config file path instead of searching.
func WithConfigFile(path string) LoaderOption {
	return func(lc *loaderConfig) { lc.configFile = path }
}

// WithEnvFile sets an explicit .env file path instead of searching.
func WithEnvFile(path string) LoaderOption {
	return func(lc *loaderConfig) { lc.envFile = path }
}

// Load reads configuration in precedence order: defaults, then the YAML
// config file, then the .env file, then SCRIBE_-prefixed environment
// variables. The result is validated before being returned.
func Load(opts ...LoaderOption) (*Config, error) {
	var lc loaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.configFile == "" {
		lc.configFile = findFile(configSearchPaths)
	}
	if lc.envFile == "" {
		lc.envFile = findFile(envSearchPaths)
	}

	if lc.envFile != "" {
		if err := godotenv.Load(lc.envFile); err != nil {
			return nil, fmt.Errorf("config: loading env file %s: %w", lc.envFile, err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix("SCRIBE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindKeys(v)

	if lc.configFile != "" {
		v.SetConfigFile(lc.configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", lc.configFile, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	// Debug defaults to on in development, but an explicit debug: false
	// must survive; only derive it when the key was never set.
	if !v.IsSet("debug") && (cfg.Environment == "" || cfg.Environment == "development") {
		cfg.Debug = true
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var configSearchPaths = []string{
	"./config.yml",
	"./config/config.yml",
	"./cmd/scribed/config.yml",
}

var envSearchPaths = []string{
	"./.env",
	"./config/.env",
}

func findFile(paths []string) string {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// bindKeys registers every config key with viper so AutomaticEnv can see
// keys that appear in no config file. Viper only consults the environment
// for keys it knows about.
func bindKeys(v *viper.Viper) {
	keys := []string{
		"name", "environment", "version", "debug",
		"logging.level", "logging.format", "logging.output",
		"server.host", "server.port", "server.read_timeout",
		"server.write_timeout", "server.shutdown_timeout", "server.max_upload_bytes",
		"observability.enabled", "observability.endpoint", "observability.insecure",
		"observability.sample_rate", "observability.interval",
		"transcription.provider", "transcription.language",
		"transcription.timestamps", "transcription.timestamp_format",
		"transcription.group_interval",
		"transcription.embed_summary", "transcription.embed_outline",
		"transcription.embed_keywords", "transcription.embed_link",
		"transcription.poll_interval", "transcription.max_poll_attempts",
		"transcription.whisper_asr.base_url", "transcription.whisper_asr.api_key",
		"transcription.whisper_asr.result_type",
		"transcription.swiftink.api_url", "transcription.swiftink.storage_url",
		"transcription.swiftink.bucket", "transcription.swiftink.access_token",
	}
	for _, key := range keys {
		// BindEnv with one argument derives SCRIBE_SECTION_KEY from the
		// prefix and replacer.
		_ = v.BindEnv(key)
	}
}
