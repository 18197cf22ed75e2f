// Package config loads the service configuration from defaults, an optional
// YAML file, an optional .env file and the process environment, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/bizmatters/agent-builder/number-advisor/internal/logger"
)

// ErrNotConfigured is returned when the primary upstream URL or the credential is missing
var ErrNotConfigured = errors.New("upstream not configured: QA_API_URL and QA_API_BEARER are required")

const (
	MinTimeout = 1 * time.Second
	MaxTimeout = 60 * time.Second

	// writeMargin leaves room to render the error body after the last attempt
	writeMargin = 10 * time.Second
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Routes   RoutesConfig   `yaml:"routes"`
	Breaker  BreakerConfig  `yaml:"breaker"`
	Log      LogConfig      `yaml:"log"`
	Tracing  TracingConfig  `yaml:"tracing"`
}

type ServerConfig struct {
	Port         string        `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// UpstreamConfig names the question-answering service. Bearer is a secret.
type UpstreamConfig struct {
	PrimaryURL  string `yaml:"primary_url"`
	FallbackURL string `yaml:"fallback_url"`
	Bearer      string `yaml:"bearer"`
}

// RouteConfig selects the proxy behaviour for one inbound route
type RouteConfig struct {
	Timeout                time.Duration `yaml:"timeout"`
	RetryUnauthorized      bool          `yaml:"retry_unauthorized"`
	IncludeRecommendations bool          `yaml:"include_recommendations"`
}

type RoutesConfig struct {
	QA       RouteConfig `yaml:"qa"`
	QASimple RouteConfig `yaml:"qa_simple"`
}

type BreakerConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxFailures uint32        `yaml:"max_failures"`
	OpenTimeout time.Duration `yaml:"open_timeout"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

type TracingConfig struct {
	Enabled bool `yaml:"enabled"`
	Pretty  bool `yaml:"pretty"`
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 90 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Routes: RoutesConfig{
			QA: RouteConfig{
				Timeout: 10 * time.Second,
			},
			QASimple: RouteConfig{
				Timeout:                30 * time.Second,
				RetryUnauthorized:      true,
				IncludeRecommendations: true,
			},
		},
		Breaker: BreakerConfig{
			MaxFailures: 5,
			OpenTimeout: 30 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration. A missing .env or config file is not an error.
func Load() (*Config, error) {
	cfg := Default()

	// .env only fills variables that are not already set
	_ = godotenv.Load()

	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = "config.yaml"
	}
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	cfg.normalize()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("QA_API_URL", &c.Upstream.PrimaryURL)
	str("QA_API_URL_FALLBACK", &c.Upstream.FallbackURL)
	str("QA_API_BEARER", &c.Upstream.Bearer)
	str("PORT", &c.Server.Port)
	str("LOG_LEVEL", &c.Log.Level)

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"QA_TIMEOUT", &c.Routes.QA.Timeout},
		{"QA_SIMPLE_TIMEOUT", &c.Routes.QASimple.Timeout},
		{"UPSTREAM_BREAKER_OPEN_TIMEOUT", &c.Breaker.OpenTimeout},
	}
	for _, d := range durations {
		v, ok := lookup(d.key)
		if !ok || v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", d.key, err)
		}
		*d.dst = parsed
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{"QA_RETRY_UNAUTHORIZED", &c.Routes.QASimple.RetryUnauthorized},
		{"UPSTREAM_BREAKER_ENABLED", &c.Breaker.Enabled},
		{"LOG_PRETTY", &c.Log.Pretty},
		{"TRACING_ENABLED", &c.Tracing.Enabled},
	}
	for _, b := range bools {
		v, ok := lookup(b.key)
		if !ok || v == "" {
			continue
		}
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", b.key, err)
		}
		*b.dst = parsed
	}

	if v, ok := lookup("UPSTREAM_BREAKER_MAX_FAILURES"); ok && v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid UPSTREAM_BREAKER_MAX_FAILURES: %w", err)
		}
		c.Breaker.MaxFailures = uint32(n)
	}

	return nil
}

func (c *Config) normalize() {
	c.Upstream.PrimaryURL = strings.TrimSpace(c.Upstream.PrimaryURL)
	c.Upstream.FallbackURL = strings.TrimSpace(c.Upstream.FallbackURL)
	c.Upstream.Bearer = strings.TrimSpace(c.Upstream.Bearer)

	defaults := Default()
	c.Routes.QA.Timeout = ClampTimeout(c.Routes.QA.Timeout, defaults.Routes.QA.Timeout)
	c.Routes.QASimple.Timeout = ClampTimeout(c.Routes.QASimple.Timeout, defaults.Routes.QASimple.Timeout)
	if c.Breaker.MaxFailures == 0 {
		c.Breaker.MaxFailures = defaults.Breaker.MaxFailures
	}

	// The response must still be writable after the slowest retry and fallback chain
	if minWrite := c.Routes.LongestChain() + writeMargin; c.Server.WriteTimeout < minWrite {
		c.Server.WriteTimeout = minWrite
	}
}

// LongestChain is the worst-case time spent on upstream attempts by any route:
// the primary call, the optional 401 retry and one fallback call.
func (r RoutesConfig) LongestChain() time.Duration {
	longest := time.Duration(0)
	for _, rc := range []RouteConfig{r.QA, r.QASimple} {
		attempts := 2
		if rc.RetryUnauthorized {
			attempts++
		}
		if chain := time.Duration(attempts) * rc.Timeout; chain > longest {
			longest = chain
		}
	}
	return longest
}

// ClampTimeout bounds d to [MinTimeout, MaxTimeout]; zero or negative yields def
func ClampTimeout(d, def time.Duration) time.Duration {
	switch {
	case d <= 0:
		return def
	case d < MinTimeout:
		return MinTimeout
	case d > MaxTimeout:
		return MaxTimeout
	}
	return d
}

// Validate reports ErrNotConfigured when a request cannot be proxied
func (u UpstreamConfig) Validate() error {
	if u.PrimaryURL == "" || u.Bearer == "" {
		return ErrNotConfigured
	}
	return nil
}

// HasFallback is true when a fallback distinct from the primary is configured
func (u UpstreamConfig) HasFallback() bool {
	return u.FallbackURL != "" && u.FallbackURL != u.PrimaryURL
}

// String never includes the credential
func (u UpstreamConfig) String() string {
	bearer := logger.MaskSecret(u.Bearer)
	if bearer == "" {
		bearer = "unset"
	}
	return fmt.Sprintf("primary=%q fallback=%q bearer=%s", u.PrimaryURL, u.FallbackURL, bearer)
}
