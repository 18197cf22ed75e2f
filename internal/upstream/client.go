// Package upstream performs single POST attempts against the question-answering service.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/bizmatters/agent-builder/number-advisor/internal/logger"
	"github.com/bizmatters/agent-builder/number-advisor/internal/models"
)

const (
	// DefaultTimeout applies to requests that carry no timeout of their own
	DefaultTimeout = 10 * time.Second
	maxBodyBytes   = 10 << 20
)

var errGatewayFailure = errors.New("upstream gateway failure")

// Caller is the contract the proxy depends on; tests substitute their own
type Caller interface {
	Call(ctx context.Context, req Request) Outcome
}

// Request describes one attempt. Authorization is the full header value.
type Request struct {
	URL           string
	Authorization string
	Question      string
	Timeout       time.Duration
}

// BreakerSettings configures the optional per-URL circuit breaker
type BreakerSettings struct {
	MaxConsecutiveFailures uint32
	OpenTimeout            time.Duration
}

// Client handles communication with the question-answering service
type Client struct {
	httpClient *http.Client
	tracer     trace.Tracer
	log        zerolog.Logger

	maxBodyBytes int64

	breakerSettings *BreakerSettings
	mu              sync.Mutex
	breakers        map[string]*gobreaker.CircuitBreaker
}

// Option customises a Client
type Option func(*Client)

// WithLogger sets the logger used when no request logger is in the context
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithBreaker enables a circuit breaker per upstream URL
func WithBreaker(s BreakerSettings) Option {
	return func(c *Client) { c.breakerSettings = &s }
}

// NewClient creates a new upstream client
func NewClient(opts ...Option) *Client {
	c := &Client{
		// per-attempt deadlines come from the request context
		httpClient:   &http.Client{},
		tracer:       otel.Tracer("qa-upstream-client"),
		log:          logger.Nop(),
		maxBodyBytes: maxBodyBytes,
		breakers:     make(map[string]*gobreaker.CircuitBreaker),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Call issues one POST to req.URL. It never returns an error: transport failures,
// timeouts and open breakers come back as an Outcome without a status code.
func (c *Client) Call(ctx context.Context, req Request) Outcome {
	ctx, span := c.tracer.Start(ctx, "qa_upstream.call")
	defer span.End()

	span.SetAttributes(attribute.String("upstream.url", req.URL))

	start := time.Now()
	var out Outcome
	if b := c.breakerFor(req.URL); b != nil {
		out = c.callThroughBreaker(ctx, b, req)
	} else {
		out = c.do(ctx, req)
	}
	elapsed := time.Since(start)

	span.SetAttributes(
		attribute.Int("http.status_code", out.StatusCode),
		attribute.String("upstream.payload", out.Body.Kind.String()),
	)
	if out.Err != nil {
		span.RecordError(out.Err)
		span.SetStatus(codes.Error, "upstream call failed")
	}

	log := logger.FromContext(ctx, c.log)
	event := log.Debug()
	if !out.OK() {
		event = log.Warn()
	}
	event.
		Str("component", "upstream").
		Str("url", req.URL).
		Int("status", out.StatusCode).
		Dur("duration_ms", elapsed).
		Int("body_bytes", len(out.Text)).
		Str("payload", out.Body.Kind.String()).
		AnErr("error", out.Err).
		Msg("Upstream attempt finished")

	return out
}

func (c *Client) callThroughBreaker(ctx context.Context, b *gobreaker.CircuitBreaker, req Request) Outcome {
	var out Outcome
	_, err := b.Execute(func() (interface{}, error) {
		out = c.do(ctx, req)
		if out.GatewayFailure() {
			return nil, errGatewayFailure
		}
		return nil, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return failedOutcome(req.URL, fmt.Errorf("circuit breaker rejected call: %w", err))
	}
	return out
}

func (c *Client) do(ctx context.Context, req Request) Outcome {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	payload, err := json.Marshal(models.UpstreamQuestion{Question: req.Question})
	if err != nil {
		return failedOutcome(req.URL, fmt.Errorf("failed to marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.URL, bytes.NewReader(payload))
	if err != nil {
		return failedOutcome(req.URL, fmt.Errorf("failed to create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", req.Authorization)

	// Inject trace context
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return failedOutcome(req.URL, describe(ctx, err, timeout))
	}
	defer resp.Body.Close()

	// one extra byte tells an oversized body apart from one exactly at the limit
	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes+1))
	if err != nil {
		return failedOutcome(req.URL, describe(ctx, fmt.Errorf("failed to read response body: %w", err), timeout))
	}
	if int64(len(data)) > c.maxBodyBytes {
		return failedOutcome(req.URL, fmt.Errorf("upstream response with status %d exceeds %d bytes", resp.StatusCode, c.maxBodyBytes))
	}

	text := string(data)
	return Outcome{
		URL:        req.URL,
		StatusCode: resp.StatusCode,
		Text:       text,
		Body:       parsePayload(text),
	}
}

func describe(ctx context.Context, err error, timeout time.Duration) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("upstream timed out after %s: %w", timeout, err)
	}
	return err
}

func (c *Client) breakerFor(url string) *gobreaker.CircuitBreaker {
	if c.breakerSettings == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if b, ok := c.breakers[url]; ok {
		return b
	}

	maxFailures := c.breakerSettings.MaxConsecutiveFailures
	if maxFailures == 0 {
		maxFailures = 1
	}
	settings := gobreaker.Settings{
		Name:        url,
		MaxRequests: 1,
		Timeout:     c.breakerSettings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			c.log.Warn().
				Str("component", "upstream").
				Str("url", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker changed state")
		},
	}
	b := gobreaker.NewCircuitBreaker(settings)
	c.breakers[url] = b
	return b
}

// BreakerStates reports the state of every breaker created so far, keyed by URL
func (c *Client) BreakerStates() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()

	states := make(map[string]string, len(c.breakers))
	for url, b := range c.breakers {
		states[url] = b.State().String()
	}
	return states
}
