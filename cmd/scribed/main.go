// Command scribed runs the transcription HTTP service.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/skillsenselab/scribe/auth"
	"github.com/skillsenselab/scribe/config"
	"github.com/skillsenselab/scribe/logger"
	"github.com/skillsenselab/scribe/observability"
	"github.com/skillsenselab/scribe/server"
	"github.com/skillsenselab/scribe/transcript"
	"github.com/skillsenselab/scribe/transcription"
	"github.com/skillsenselab/scribe/transcription/swiftink"
	"github.com/skillsenselab/scribe/transcription/whisperasr"
	"github.com/skillsenselab/scribe/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "scribed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger.Init(cfg.Logging)
	log := logger.WithComponent("scribed")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Observability.Enabled {
		shutdown, err := observability.Init(ctx, cfg.Observability, observability.Service{
			Name:        cfg.Name,
			Version:     version.Get().Version,
			Environment: cfg.Environment,
		})
		if err != nil {
			return fmt.Errorf("initializing telemetry: %w", err)
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(flushCtx); err != nil {
				log.Warn("telemetry shutdown", logger.ErrorFields("shutdown", err))
			}
		}()
	}

	registry := transcription.NewRegistry()
	if err := registerProviders(registry, cfg); err != nil {
		return err
	}
	service := transcription.NewService(registry, cfg.Transcription.Provider)

	srv := server.New(server.Config{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		MaxUploadBytes:  cfg.Server.MaxUploadBytes,
	}, log)
	server.NewTranscriptHandler(service, cfg.Server.MaxUploadBytes).Register(srv.Engine())

	if err := srv.Start(ctx); err != nil {
		return err
	}
	log.Info("scribed ready", map[string]interface{}{
		"version":   version.Get().String(),
		"provider":  cfg.Transcription.Provider,
		"available": registry.List(),
		"addr":      srv.Addr(),
	})

	<-ctx.Done()
	return srv.Stop(context.Background())
}

// registerProviders wires the backend factories into the registry, then
// instantiates every configured one. The active provider is selected by
// name at request time.
func registerProviders(registry *transcription.Registry, cfg *config.Config) error {
	tc := cfg.Transcription

	registry.RegisterFactory(whisperasr.ProviderName, whisperasr.Factory())
	registry.RegisterFactory(swiftink.ProviderName,
		swiftink.Factory(&auth.StaticSource{AccessToken: tc.Swiftink.AccessToken}))

	if tc.WhisperASR.APIKey != "" {
		p, err := registry.Create(whisperasr.ProviderName, map[string]any{
			"base_url":          tc.WhisperASR.BaseURL,
			"api_key":           tc.WhisperASR.APIKey,
			"language":          tc.Language,
			"result_type":       tc.WhisperASR.ResultType,
			"poll_interval":     tc.PollInterval,
			"max_poll_attempts": tc.MaxPollAttempts,
		})
		if err != nil {
			return err
		}
		registry.Set(whisperasr.ProviderName, p)
	}

	if tc.Swiftink.APIURL != "" {
		p, err := registry.Create(swiftink.ProviderName, map[string]any{
			"api_url":     tc.Swiftink.APIURL,
			"storage_url": tc.Swiftink.StorageURL,
			"bucket":      tc.Swiftink.Bucket,
			"language":    tc.Language,
			"format": transcript.FormatOptions{
				Timestamps:      tc.Timestamps,
				TimestampFormat: tc.TimestampFormat,
				GroupInterval:   tc.GroupInterval,
				EmbedSummary:    tc.EmbedSummary,
				EmbedOutline:    tc.EmbedOutline,
				EmbedKeywords:   tc.EmbedKeywords,
				EmbedLink:       tc.EmbedLink,
			},
			"poll_interval":     tc.PollInterval,
			"max_poll_attempts": tc.MaxPollAttempts,
		})
		if err != nil {
			return err
		}
		registry.Set(swiftink.ProviderName, p)
	}

	return nil
}
