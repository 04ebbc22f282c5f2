package transcription

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/skillsenselab/scribe/errors"
	"github.com/skillsenselab/scribe/logger"
	"github.com/skillsenselab/scribe/provider"
)

const instrumentationName = "github.com/skillsenselab/scribe/transcription"

// Service selects the configured backend and drives one job through it.
// Instrumentation uses the global OpenTelemetry providers, so it is a no-op
// until the embedding application installs an SDK.
type Service struct {
	registry     *provider.Registry[Provider]
	providerName string
	log          *logger.Logger
	tracer       trace.Tracer
	duration     metric.Float64Histogram
}

// NewService creates a Service dispatching to the named provider.
func NewService(registry *provider.Registry[Provider], providerName string) *Service {
	meter := otel.Meter(instrumentationName)
	duration, _ := meter.Float64Histogram(
		"scribe.transcription.duration",
		metric.WithUnit("s"),
		metric.WithDescription("Wall-clock duration of one transcription job."),
	)
	return &Service{
		registry:     registry,
		providerName: providerName,
		log:          logger.Get("transcription"),
		tracer:       otel.Tracer(instrumentationName),
		duration:     duration,
	}
}

// Transcribe runs the job on the configured provider and returns its
// formatted transcript. Errors pass through from the provider unmodified;
// no cross-provider retry is attempted.
func (s *Service) Transcribe(ctx context.Context, req Request) (string, error) {
	p, ok := s.registry.Get(s.providerName)
	if !ok {
		return "", errors.InvalidInput("provider", "unknown transcription provider "+s.providerName)
	}

	jobID := uuid.NewString()
	ctx, span := s.tracer.Start(ctx, "transcription.Transcribe", trace.WithAttributes(
		attribute.String("transcription.provider", p.Name()),
		attribute.String("transcription.job_id", jobID),
	))
	defer span.End()

	s.log.Info("transcription started", logger.Fields(
		logger.FieldProvider, p.Name(),
		logger.FieldFile, req.FileName,
		logger.FieldTaskID, jobID,
	))

	start := time.Now()
	text, err := p.Transcribe(ctx, req)
	elapsed := time.Since(start)

	s.duration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(
		attribute.String("transcription.provider", p.Name()),
		attribute.Bool("transcription.failed", err != nil),
	))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.log.WithError(err).Error("transcription failed", logger.Fields(
			logger.FieldProvider, p.Name(),
			logger.FieldTaskID, jobID,
			logger.FieldDuration, elapsed.Milliseconds(),
		))
		return "", err
	}

	s.log.Info("transcription finished", logger.DurationFields("transcribe", elapsed))
	return text, nil
}
