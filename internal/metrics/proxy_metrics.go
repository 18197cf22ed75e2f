package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("number-advisor")

// Attempt kinds
const (
	AttemptPrimary           = "primary"
	AttemptUnauthorizedRetry = "unauthorized_retry"
	AttemptFallback          = "fallback"
)

// Request outcomes
const (
	OutcomeAnswered      = "answered"
	OutcomeInvalid       = "invalid"
	OutcomeNotConfigured = "not_configured"
	OutcomeUpstreamError = "upstream_error"
	OutcomeInternal      = "internal_error"
)

// ProxyMetrics provides metrics collection for proxied questions
type ProxyMetrics struct {
	requestsCounter   metric.Int64Counter
	attemptsCounter   metric.Int64Counter
	fallbacksCounter  metric.Int64Counter
	durationHistogram metric.Float64Histogram
}

// NewProxyMetrics creates a new proxy metrics collector
func NewProxyMetrics() (*ProxyMetrics, error) {
	requestsCounter, err := meter.Int64Counter(
		"number_advisor.qa.requests",
		metric.WithDescription("Total number of questions handled, by route and outcome"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	attemptsCounter, err := meter.Int64Counter(
		"number_advisor.qa.upstream_attempts",
		metric.WithDescription("Total number of upstream attempts, by kind and status"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}

	fallbacksCounter, err := meter.Int64Counter(
		"number_advisor.qa.fallbacks",
		metric.WithDescription("Total number of times the fallback endpoint was used"),
		metric.WithUnit("{fallback}"),
	)
	if err != nil {
		return nil, err
	}

	durationHistogram, err := meter.Float64Histogram(
		"number_advisor.qa.duration",
		metric.WithDescription("Duration of proxied questions in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &ProxyMetrics{
		requestsCounter:   requestsCounter,
		attemptsCounter:   attemptsCounter,
		fallbacksCounter:  fallbacksCounter,
		durationHistogram: durationHistogram,
	}, nil
}

// RecordAttempt records one upstream attempt. Status 0 means no response.
func (pm *ProxyMetrics) RecordAttempt(ctx context.Context, route, kind string, status int) {
	if pm == nil {
		return
	}
	pm.attemptsCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("route", route),
			attribute.String("attempt.kind", kind),
			attribute.Int("http.status_code", status),
		),
	)
	if kind == AttemptFallback {
		pm.fallbacksCounter.Add(ctx, 1,
			metric.WithAttributes(attribute.String("route", route)),
		)
	}
}

// RecordRequest records a finished question with its outcome
func (pm *ProxyMetrics) RecordRequest(ctx context.Context, route, outcome string, duration time.Duration) {
	if pm == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("route", route),
		attribute.String("outcome", outcome),
	)
	pm.requestsCounter.Add(ctx, 1, attrs)
	pm.durationHistogram.Record(ctx, duration.Seconds(), attrs)
}
