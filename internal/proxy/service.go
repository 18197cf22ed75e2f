// Package proxy forwards chat questions to the question-answering service,
// retrying once against a fallback endpoint on gateway-class failures.
package proxy

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/bizmatters/agent-builder/number-advisor/internal/config"
	"github.com/bizmatters/agent-builder/number-advisor/internal/logger"
	"github.com/bizmatters/agent-builder/number-advisor/internal/metrics"
	"github.com/bizmatters/agent-builder/number-advisor/internal/models"
	"github.com/bizmatters/agent-builder/number-advisor/internal/prompt"
	"github.com/bizmatters/agent-builder/number-advisor/internal/upstream"
)

const bearerPrefix = "Bearer "

// Service handles question proxying
type Service struct {
	upstream upstream.Caller
	cfg      config.UpstreamConfig
	metrics  *metrics.ProxyMetrics
	tracer   trace.Tracer
	log      zerolog.Logger
}

// NewService creates a new proxy service. metrics may be nil.
func NewService(caller upstream.Caller, cfg config.UpstreamConfig, m *metrics.ProxyMetrics, log zerolog.Logger) *Service {
	return &Service{
		upstream: caller,
		cfg:      cfg,
		metrics:  m,
		tracer:   otel.Tracer("qa-proxy"),
		log:      log,
	}
}

// Configured reports whether requests can be proxied at all
func (s *Service) Configured() bool {
	return s.cfg.Validate() == nil
}

// Ask validates the inquiry, calls the upstream service and shapes its answer.
// Errors are ErrInvalidQuestion, config.ErrNotConfigured or *UpstreamError.
func (s *Service) Ask(ctx context.Context, v Variant, inq models.Inquiry) (*models.RecommendationResult, error) {
	ctx, span := s.tracer.Start(ctx, "qa_proxy.ask")
	defer span.End()

	span.SetAttributes(attribute.String("route", v.Name))

	start := time.Now()
	result, err := s.ask(ctx, v, inq)
	s.metrics.RecordRequest(ctx, v.Name, outcomeOf(err), time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return result, err
}

func (s *Service) ask(ctx context.Context, v Variant, inq models.Inquiry) (*models.RecommendationResult, error) {
	if inq.Question == "" {
		return nil, ErrInvalidQuestion
	}
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx, s.log).With().Str("component", "proxy").Str("route", v.Name).Logger()
	question := prompt.Compose(inq)
	log.Debug().
		Int("question_chars", len(question)).
		Int("history_turns", len(inq.History)).
		Bool("details", inq.Details != nil).
		Msg("Composed upstream question")

	primaryURL := s.cfg.PrimaryURL
	attempt := s.call(ctx, v, metrics.AttemptPrimary, primaryURL, bearerPrefix+s.cfg.Bearer, question)

	// Some deployments expect the raw token instead of the Bearer scheme
	if v.RetryUnauthorized && attempt.StatusCode == http.StatusUnauthorized {
		log.Info().Msg("Primary returned 401, retrying with raw credential")
		attempt = s.call(ctx, v, metrics.AttemptUnauthorizedRetry, primaryURL, s.cfg.Bearer, question)
	}

	if attempt.OK() {
		return resultFrom(attempt), nil
	}

	if !attempt.GatewayFailure() || !s.cfg.HasFallback() {
		return nil, &UpstreamError{
			Tried:  []string{primaryURL},
			Status: firstStatus(attempt.StatusCode),
			Body:   attempt.ErrorBody(),
		}
	}

	fallbackURL := s.cfg.FallbackURL
	log.Info().Int("primary_status", attempt.StatusCode).Msg("Primary failed with gateway-class error, trying fallback")
	second := s.call(ctx, v, metrics.AttemptFallback, fallbackURL, bearerPrefix+s.cfg.Bearer, question)
	if second.OK() {
		return resultFrom(second), nil
	}

	return nil, &UpstreamError{
		Tried:  []string{primaryURL, fallbackURL},
		Status: firstStatus(second.StatusCode, attempt.StatusCode),
		Body:   preferredBody(second, attempt),
	}
}

func (s *Service) call(ctx context.Context, v Variant, kind, url, authorization, question string) upstream.Outcome {
	out := s.upstream.Call(ctx, upstream.Request{
		URL:           url,
		Authorization: authorization,
		Question:      question,
		Timeout:       v.Timeout,
	})
	s.metrics.RecordAttempt(ctx, v.Name, kind, out.StatusCode)
	return out
}

// firstStatus returns the first non-zero status, or 502 when nothing responded
func firstStatus(statuses ...int) int {
	for _, st := range statuses {
		if st != 0 {
			return st
		}
	}
	return http.StatusBadGateway
}

// preferredBody picks the most informative error body: parsed JSON first, then text,
// from the fallback before the primary
func preferredBody(fallback, primary upstream.Outcome) interface{} {
	if fallback.Body.Kind == upstream.PayloadJSON {
		return fallback.Body.Value
	}
	if fallback.Text != "" {
		return fallback.Text
	}
	return primary.ErrorBody()
}

func outcomeOf(err error) string {
	var upstreamErr *UpstreamError
	switch {
	case err == nil:
		return metrics.OutcomeAnswered
	case errors.Is(err, ErrInvalidQuestion):
		return metrics.OutcomeInvalid
	case errors.Is(err, config.ErrNotConfigured):
		return metrics.OutcomeNotConfigured
	case errors.As(err, &upstreamErr):
		return metrics.OutcomeUpstreamError
	default:
		return metrics.OutcomeInternal
	}
}
