package service

import (
	"context"
	"errors"
	"fmt"
	"imagestudio/internal/core/domain"
	"imagestudio/internal/core/port"
	"imagestudio/internal/metrics"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Submitter produces exactly one result per submission.
type Submitter interface {
	Submit(ctx context.Context, prompt string, modelID domain.ModelID) domain.Result
}

// Orchestrator resolves a model, calls the upstream generator once, validates
// its output and records successful generations for identified callers.
type Orchestrator struct {
	generator port.ImageGenerator
	history   port.HistoryStore
	identity  port.IdentityProvider
	now       func() time.Time
}

// NewOrchestrator builds an orchestrator. history and identity may be nil, in
// which case nothing is ever persisted.
func NewOrchestrator(generator port.ImageGenerator,
	history port.HistoryStore,
	identity port.IdentityProvider,
	now func() time.Time) *Orchestrator {
	if now == nil {
		now = time.Now
	}

	return &Orchestrator{
		generator: generator,
		history:   history,
		identity:  identity,
		now:       now,
	}
}

var tracer = otel.Tracer("imagestudio/orchestrator")

func (o *Orchestrator) Submit(ctx context.Context, prompt string, modelID domain.ModelID) domain.Result {
	l := log.With().
		Str("model", string(modelID)).
		Int("promptLength", len(prompt)).
		Logger()

	ctx, span := tracer.Start(ctx, "generation.submit")
	span.SetAttributes(attribute.String("model", string(modelID)))
	defer span.End()

	result := o.generate(ctx, prompt, modelID)

	outcome := outcomeLabel(result)
	metrics.GenerationsTotal.WithLabelValues(string(modelID), outcome).Inc()
	span.SetAttributes(attribute.String("outcome", outcome))

	if !result.OK() {
		l.Warn().Err(result.Err).Str("outcome", outcome).Msg("generation failed")
		span.SetStatus(codes.Error, result.Message())
		return result
	}

	l.Info().Str("imageURL", result.ImageURL).Msg("generation succeeded")

	result.PersistErr = o.persist(ctx, prompt, modelID, result.ImageURL)
	if result.PersistErr != nil {
		metrics.HistoryPersistFailuresTotal.Inc()
		span.RecordError(result.PersistErr)
		l.Error().Err(result.PersistErr).Msg("generated image was not saved")
	}

	return result
}

func (o *Orchestrator) generate(ctx context.Context, prompt string, modelID domain.ModelID) domain.Result {
	if strings.TrimSpace(prompt) == "" {
		return domain.Failure(domain.ErrInvalidRequest)
	}

	descriptor, err := domain.Resolve(modelID)
	if err != nil {
		return domain.Failure(err)
	}

	input := descriptor.Parameters.Input(prompt)

	log.Debug().Str("upstream", descriptor.UpstreamName).Interface("input", input).Msg("calling upstream")

	start := o.now()
	output, err := o.generator.Run(ctx, descriptor.UpstreamName, input)
	metrics.GenerationLatencySeconds.WithLabelValues(string(modelID)).Observe(o.now().Sub(start).Seconds())
	if err != nil {
		if strings.TrimSpace(err.Error()) == "" {
			return domain.Failure(domain.ErrUpstreamFailure)
		}
		return domain.Failure(fmt.Errorf("%w: %w", domain.ErrUpstreamFailure, err))
	}

	log.Debug().Interface("output", output).Msg("upstream response")

	imageURL, err := domain.ImageURLFromOutput(output)
	if err != nil {
		log.Error().Err(err).Interface("output", output).Msg("invalid image URL")
		return domain.Failure(domain.ErrInvalidUpstreamResponse)
	}

	return domain.Success(imageURL)
}

func (o *Orchestrator) persist(ctx context.Context, prompt string, modelID domain.ModelID, imageURL string) error {
	if o.history == nil || o.identity == nil {
		return nil
	}

	identity, ok := o.identity.Identity(ctx)
	if !ok {
		log.Debug().Msg("no identity, skipping history")
		return nil
	}

	record := domain.HistoryRecord{
		ImageURL:  imageURL,
		Prompt:    prompt,
		Model:     modelID,
		CreatedAt: o.now().UnixMilli(),
	}

	id, err := o.history.Append(ctx, domain.HistoryPath(identity), record)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistenceFailure, err)
	}

	log.Debug().Str("identity", identity).Str("recordId", id).Msg("saved to history")

	return nil
}

func outcomeLabel(r domain.Result) string {
	switch kind := r.Kind(); {
	case r.OK():
		return "success"
	case errors.Is(kind, domain.ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(kind, domain.ErrInvalidModel):
		return "invalid_model"
	case errors.Is(kind, domain.ErrInvalidUpstreamResponse):
		return "invalid_upstream_response"
	default:
		return "upstream_failure"
	}
}
