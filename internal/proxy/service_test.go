package proxy

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizmatters/agent-builder/number-advisor/internal/config"
	"github.com/bizmatters/agent-builder/number-advisor/internal/logger"
	"github.com/bizmatters/agent-builder/number-advisor/internal/metrics"
	"github.com/bizmatters/agent-builder/number-advisor/internal/models"
	"github.com/bizmatters/agent-builder/number-advisor/internal/prompt"
	"github.com/bizmatters/agent-builder/number-advisor/internal/upstream"
)

const (
	primaryURL  = "https://qa.example.com/ask"
	fallbackURL = "https://qa-backup.example.com/ask"
	token       = "test-token"
)

// MockCaller returns scripted outcomes in order and records every request
type MockCaller struct {
	mu        sync.Mutex
	responses []upstream.Outcome
	requests  []upstream.Request
}

func (m *MockCaller) Call(ctx context.Context, req upstream.Request) upstream.Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)
	if len(m.responses) == 0 {
		panic("unexpected upstream call to " + req.URL)
	}
	out := m.responses[0]
	m.responses = m.responses[1:]
	out.URL = req.URL
	return out
}

func respond(status int, body string) upstream.Outcome {
	return upstream.Outcome{StatusCode: status, Text: body, Body: parse(body)}
}

func networkFailure(msg string) upstream.Outcome {
	return upstream.Outcome{Text: msg, Err: assert.AnError}
}

func parse(body string) upstream.Payload {
	var v interface{}
	if body == "" {
		return upstream.Payload{Kind: upstream.PayloadNone}
	}
	if err := json.Unmarshal([]byte(body), &v); err != nil || v == nil {
		return upstream.Payload{Kind: upstream.PayloadText}
	}
	return upstream.Payload{Kind: upstream.PayloadJSON, Value: v}
}

func fullConfig() config.UpstreamConfig {
	return config.UpstreamConfig{PrimaryURL: primaryURL, FallbackURL: fallbackURL, Bearer: token}
}

var (
	qaVariant     = Variant{Name: "qa", Timeout: 10 * time.Second}
	simpleVariant = Variant{Name: "qa_simple", Timeout: 30 * time.Second, RetryUnauthorized: true, IncludeRecommendations: true}
)

func newService(t *testing.T, caller upstream.Caller, cfg config.UpstreamConfig) *Service {
	m, err := metrics.NewProxyMetrics()
	require.NoError(t, err)
	return NewService(caller, cfg, m, logger.Nop())
}

func TestService_Ask_Validation(t *testing.T) {
	tests := []struct {
		name    string
		inquiry models.Inquiry
		cfg     config.UpstreamConfig
		wantErr error
	}{
		{
			name:    "missing_question",
			inquiry: models.Inquiry{Details: &models.Details{SMSType: "2-way"}},
			cfg:     fullConfig(),
			wantErr: ErrInvalidQuestion,
		},
		{
			name:    "missing_question_wins_over_missing_config",
			inquiry: models.Inquiry{},
			cfg:     config.UpstreamConfig{},
			wantErr: ErrInvalidQuestion,
		},
		{
			name:    "missing_primary_url",
			inquiry: models.Inquiry{Question: "Need a number"},
			cfg:     config.UpstreamConfig{Bearer: token},
			wantErr: config.ErrNotConfigured,
		},
		{
			name:    "missing_credential",
			inquiry: models.Inquiry{Question: "Need a number"},
			cfg:     config.UpstreamConfig{PrimaryURL: primaryURL, FallbackURL: fallbackURL},
			wantErr: config.ErrNotConfigured,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caller := &MockCaller{}
			svc := newService(t, caller, tt.cfg)

			result, err := svc.Ask(context.Background(), simpleVariant, tt.inquiry)

			assert.Nil(t, result)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, caller.requests, "no upstream call expected")
		})
	}
}

func TestService_Ask_PrimarySuccess(t *testing.T) {
	inquiry := models.Inquiry{
		Question: "Need a number",
		Details:  &models.Details{SMSType: "2-way", SelectedCountries: []string{"US"}},
	}
	body := `{"answer":"X","recommendedNumbers":[{"geo":"US","type":"local","smsEnabled":true,"voiceEnabled":false,"considerations":"c","restrictions":"r"}]}`
	caller := &MockCaller{responses: []upstream.Outcome{respond(200, body)}}
	svc := newService(t, caller, fullConfig())

	result, err := svc.Ask(context.Background(), simpleVariant, inquiry)
	require.NoError(t, err)

	require.Len(t, caller.requests, 1)
	req := caller.requests[0]
	assert.Equal(t, primaryURL, req.URL)
	assert.Equal(t, "Bearer "+token, req.Authorization)
	assert.Equal(t, prompt.Compose(inquiry), req.Question)
	assert.Equal(t, 30*time.Second, req.Timeout)

	assert.Equal(t, "X", result.Answer)
	assert.Equal(t, []models.RecommendedNumber{{
		Geo: "US", Type: "local", SMSEnabled: true, VoiceEnabled: false, Considerations: "c", Restrictions: "r",
	}}, result.RecommendedNumbers)

	// shaped output matches the upstream body field for field
	shaped, err := json.Marshal(simpleVariant.Shape(result))
	require.NoError(t, err)
	assert.JSONEq(t, body, string(shaped))
}

func TestService_Ask_MissingFieldsDefault(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty_object", body: `{}`},
		{name: "non_json_success", body: `plain text answer`},
		{name: "mistyped_fields", body: `{"answer":42,"recommendedNumbers":"none"}`},
		{name: "array_body", body: `["a"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caller := &MockCaller{responses: []upstream.Outcome{respond(200, tt.body)}}
			svc := newService(t, caller, fullConfig())

			result, err := svc.Ask(context.Background(), simpleVariant, models.Inquiry{Question: "q"})
			require.NoError(t, err)
			assert.Equal(t, "", result.Answer)
			assert.NotNil(t, result.RecommendedNumbers)
			assert.Empty(t, result.RecommendedNumbers)
		})
	}
}

func TestService_Ask_UnauthorizedRetry(t *testing.T) {
	t.Run("retries_once_with_raw_credential", func(t *testing.T) {
		caller := &MockCaller{responses: []upstream.Outcome{
			respond(401, `{"error":"unauthorized"}`),
			respond(200, `{"answer":"ok"}`),
		}}
		svc := newService(t, caller, fullConfig())

		result, err := svc.Ask(context.Background(), simpleVariant, models.Inquiry{Question: "q"})
		require.NoError(t, err)
		assert.Equal(t, "ok", result.Answer)

		require.Len(t, caller.requests, 2)
		assert.Equal(t, primaryURL, caller.requests[1].URL)
		assert.Equal(t, "Bearer "+token, caller.requests[0].Authorization)
		assert.Equal(t, token, caller.requests[1].Authorization)
	})

	t.Run("second_401_is_returned_without_fallback", func(t *testing.T) {
		caller := &MockCaller{responses: []upstream.Outcome{
			respond(401, `{"error":"unauthorized"}`),
			respond(401, `{"error":"still unauthorized"}`),
		}}
		svc := newService(t, caller, fullConfig())

		_, err := svc.Ask(context.Background(), simpleVariant, models.Inquiry{Question: "q"})

		var upstreamErr *UpstreamError
		require.ErrorAs(t, err, &upstreamErr)
		assert.Equal(t, 401, upstreamErr.Status)
		assert.Equal(t, []string{primaryURL}, upstreamErr.Tried)
		assert.Equal(t, map[string]interface{}{"error": "still unauthorized"}, upstreamErr.Body)
		assert.Len(t, caller.requests, 2)
	})

	t.Run("retry_gateway_failure_falls_back", func(t *testing.T) {
		caller := &MockCaller{responses: []upstream.Outcome{
			respond(401, ``),
			respond(503, `unavailable`),
			respond(200, `{"answer":"from fallback"}`),
		}}
		svc := newService(t, caller, fullConfig())

		result, err := svc.Ask(context.Background(), simpleVariant, models.Inquiry{Question: "q"})
		require.NoError(t, err)
		assert.Equal(t, "from fallback", result.Answer)

		require.Len(t, caller.requests, 3)
		assert.Equal(t, fallbackURL, caller.requests[2].URL)
		assert.Equal(t, "Bearer "+token, caller.requests[2].Authorization)
	})

	t.Run("disabled_variant_does_not_retry", func(t *testing.T) {
		caller := &MockCaller{responses: []upstream.Outcome{respond(401, `denied`)}}
		svc := newService(t, caller, fullConfig())

		_, err := svc.Ask(context.Background(), qaVariant, models.Inquiry{Question: "q"})

		var upstreamErr *UpstreamError
		require.ErrorAs(t, err, &upstreamErr)
		assert.Equal(t, 401, upstreamErr.Status)
		assert.Equal(t, "denied", upstreamErr.Body)
		assert.Len(t, caller.requests, 1)
	})
}

func TestService_Ask_Fallback(t *testing.T) {
	tests := []struct {
		name          string
		cfg           config.UpstreamConfig
		responses     []upstream.Outcome
		expectedCalls []string
		expectedErr   *UpstreamError
		expectedReply string
	}{
		{
			name:          "gateway_503_then_fallback_success",
			cfg:           fullConfig(),
			responses:     []upstream.Outcome{respond(503, `busy`), respond(200, `{"answer":"fb"}`)},
			expectedCalls: []string{primaryURL, fallbackURL},
			expectedReply: "fb",
		},
		{
			name:          "network_failure_then_fallback_success",
			cfg:           fullConfig(),
			responses:     []upstream.Outcome{networkFailure("connection refused"), respond(200, `{"answer":"fb"}`)},
			expectedCalls: []string{primaryURL, fallbackURL},
			expectedReply: "fb",
		},
		{
			name:          "both_fail_uses_fallback_status_and_body",
			cfg:           fullConfig(),
			responses:     []upstream.Outcome{respond(502, `{"e":"primary"}`), respond(504, `{"e":"fallback"}`)},
			expectedCalls: []string{primaryURL, fallbackURL},
			expectedErr: &UpstreamError{
				Tried:  []string{primaryURL, fallbackURL},
				Status: 504,
				Body:   map[string]interface{}{"e": "fallback"},
			},
		},
		{
			name:          "fallback_network_failure_uses_primary_status",
			cfg:           fullConfig(),
			responses:     []upstream.Outcome{respond(502, `{"e":"primary"}`), networkFailure("dial tcp: refused")},
			expectedCalls: []string{primaryURL, fallbackURL},
			expectedErr: &UpstreamError{
				Tried:  []string{primaryURL, fallbackURL},
				Status: 502,
				Body:   "dial tcp: refused",
			},
		},
		{
			name:          "both_network_failures_default_to_502",
			cfg:           fullConfig(),
			responses:     []upstream.Outcome{networkFailure("timeout"), networkFailure("refused")},
			expectedCalls: []string{primaryURL, fallbackURL},
			expectedErr: &UpstreamError{
				Tried:  []string{primaryURL, fallbackURL},
				Status: 502,
				Body:   "refused",
			},
		},
		{
			name:          "empty_fallback_body_uses_primary_body",
			cfg:           fullConfig(),
			responses:     []upstream.Outcome{respond(503, `{"e":"primary"}`), respond(503, ``)},
			expectedCalls: []string{primaryURL, fallbackURL},
			expectedErr: &UpstreamError{
				Tried:  []string{primaryURL, fallbackURL},
				Status: 503,
				Body:   map[string]interface{}{"e": "primary"},
			},
		},
		{
			name:          "non_gateway_status_skips_fallback",
			cfg:           fullConfig(),
			responses:     []upstream.Outcome{respond(500, `{"e":"boom"}`)},
			expectedCalls: []string{primaryURL},
			expectedErr: &UpstreamError{
				Tried:  []string{primaryURL},
				Status: 500,
				Body:   map[string]interface{}{"e": "boom"},
			},
		},
		{
			name:          "client_error_skips_fallback",
			cfg:           fullConfig(),
			responses:     []upstream.Outcome{respond(403, `forbidden`)},
			expectedCalls: []string{primaryURL},
			expectedErr: &UpstreamError{
				Tried:  []string{primaryURL},
				Status: 403,
				Body:   "forbidden",
			},
		},
		{
			name:          "no_fallback_configured",
			cfg:           config.UpstreamConfig{PrimaryURL: primaryURL, Bearer: token},
			responses:     []upstream.Outcome{respond(503, `busy`)},
			expectedCalls: []string{primaryURL},
			expectedErr: &UpstreamError{
				Tried:  []string{primaryURL},
				Status: 503,
				Body:   "busy",
			},
		},
		{
			name:          "fallback_equal_to_primary",
			cfg:           config.UpstreamConfig{PrimaryURL: primaryURL, FallbackURL: primaryURL, Bearer: token},
			responses:     []upstream.Outcome{networkFailure("refused")},
			expectedCalls: []string{primaryURL},
			expectedErr: &UpstreamError{
				Tried:  []string{primaryURL},
				Status: 502,
				Body:   "refused",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caller := &MockCaller{responses: tt.responses}
			svc := newService(t, caller, tt.cfg)

			result, err := svc.Ask(context.Background(), qaVariant, models.Inquiry{Question: "q"})

			var urls []string
			for _, req := range caller.requests {
				urls = append(urls, req.URL)
			}
			assert.Equal(t, tt.expectedCalls, urls)

			if tt.expectedErr != nil {
				assert.Nil(t, result)
				var upstreamErr *UpstreamError
				require.ErrorAs(t, err, &upstreamErr)
				assert.Equal(t, tt.expectedErr, upstreamErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedReply, result.Answer)
		})
	}
}

func TestService_Ask_Idempotent(t *testing.T) {
	inquiry := models.Inquiry{
		Question: "Need a number",
		Details:  &models.Details{SMSType: "2-way", SelectedCountries: []string{"US", "GB"}},
	}
	body := `{"answer":"Try a US local number","recommendedNumbers":[]}`
	caller := &MockCaller{responses: []upstream.Outcome{respond(200, body), respond(200, body)}}
	svc := newService(t, caller, fullConfig())

	first, err := svc.Ask(context.Background(), simpleVariant, inquiry)
	require.NoError(t, err)
	second, err := svc.Ask(context.Background(), simpleVariant, inquiry)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	require.Len(t, caller.requests, 2)
	assert.Equal(t, caller.requests[0].Question, caller.requests[1].Question)
}

func TestService_Ask_ScenarioAgainstHTTPStubs(t *testing.T) {
	var primaryHits, fallbackHits int
	var received models.UpstreamQuestion

	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		primaryHits++
		assert.Equal(t, "Bearer "+token, r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer primary.Close()

	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fallbackHits++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"answer":"Try a US local number","recommendedNumbers":[]}`))
	}))
	defer fallback.Close()

	svc := newService(t, upstream.NewClient(), config.UpstreamConfig{
		PrimaryURL:  primary.URL,
		FallbackURL: fallback.URL,
		Bearer:      token,
	})

	inquiry := models.Inquiry{
		Question: "Need a number",
		Details:  &models.Details{SMSType: "2-way", SelectedCountries: []string{"US"}},
	}
	result, err := svc.Ask(context.Background(), simpleVariant, inquiry)
	require.NoError(t, err)

	assert.Equal(t, 1, primaryHits)
	assert.Equal(t, 1, fallbackHits)
	assert.Equal(t, prompt.Compose(inquiry), received.Question)

	shaped, err := json.Marshal(simpleVariant.Shape(result))
	require.NoError(t, err)
	assert.JSONEq(t, `{"answer":"Try a US local number","recommendedNumbers":[]}`, string(shaped))
}

func TestService_Ask_TimeoutFallsBack(t *testing.T) {
	release := make(chan struct{})
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer primary.Close()
	defer close(release)

	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"answer":"fallback after timeout"}`))
	}))
	defer fallback.Close()

	svc := newService(t, upstream.NewClient(), config.UpstreamConfig{
		PrimaryURL:  primary.URL,
		FallbackURL: fallback.URL,
		Bearer:      token,
	})

	variant := Variant{Name: "qa", Timeout: 50 * time.Millisecond}
	result, err := svc.Ask(context.Background(), variant, models.Inquiry{Question: "q"})
	require.NoError(t, err)
	assert.Equal(t, "fallback after timeout", result.Answer)
}

func TestVariant_Shape(t *testing.T) {
	result := &models.RecommendationResult{
		Answer:             "a",
		RecommendedNumbers: []models.RecommendedNumber{{Geo: "US", Type: "toll-free"}},
	}

	trimmed, err := json.Marshal(qaVariant.Shape(result))
	require.NoError(t, err)
	assert.JSONEq(t, `{"answer":"a"}`, string(trimmed))

	full, err := json.Marshal(simpleVariant.Shape(result))
	require.NoError(t, err)
	assert.JSONEq(t, `{"answer":"a","recommendedNumbers":[{"geo":"US","type":"toll-free","smsEnabled":false,"voiceEnabled":false,"considerations":"","restrictions":""}]}`, string(full))
}

func TestVariantFromConfig(t *testing.T) {
	cfg := config.Default()
	v := VariantFromConfig("qa_simple", cfg.Routes.QASimple)

	assert.Equal(t, "qa_simple", v.Name)
	assert.Equal(t, 30*time.Second, v.Timeout)
	assert.True(t, v.RetryUnauthorized)
	assert.True(t, v.IncludeRecommendations)
}

func TestUpstreamError_Message(t *testing.T) {
	err := &UpstreamError{Tried: []string{primaryURL, fallbackURL}, Status: 503}
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "2 endpoint(s)")
}
