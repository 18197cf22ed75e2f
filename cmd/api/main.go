package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/trace"

	_ "github.com/bizmatters/agent-builder/number-advisor/docs" // swagger docs
	"github.com/bizmatters/agent-builder/number-advisor/internal/config"
	"github.com/bizmatters/agent-builder/number-advisor/internal/gateway"
	"github.com/bizmatters/agent-builder/number-advisor/internal/logger"
	"github.com/bizmatters/agent-builder/number-advisor/internal/metrics"
	"github.com/bizmatters/agent-builder/number-advisor/internal/proxy"
	"github.com/bizmatters/agent-builder/number-advisor/internal/upstream"
)

// @title Number Advisor API
// @version 1.0
// @description Question answering proxy for SMS and phone number recommendations
// @description
// @description Questions are enriched with requirement details and chat history, sent to the primary
// @description QA service, and retried once against the fallback when the primary gateway fails.

// @contact.name API Support
// @contact.email support@bizmatters.dev

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})

	if cfg.Tracing.Enabled {
		tp, err := initTracer(cfg.Tracing.Pretty)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize tracer")
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(ctx); err != nil {
				log.Error().Err(err).Msg("Failed to flush traces")
			}
		}()
	}

	// Initialize upstream client
	clientOpts := []upstream.Option{upstream.WithLogger(log)}
	if cfg.Breaker.Enabled {
		clientOpts = append(clientOpts, upstream.WithBreaker(upstream.BreakerSettings{
			MaxConsecutiveFailures: cfg.Breaker.MaxFailures,
			OpenTimeout:            cfg.Breaker.OpenTimeout,
		}))
	}
	client := upstream.NewClient(clientOpts...)

	proxyMetrics, err := metrics.NewProxyMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize proxy metrics")
	}

	proxyService := proxy.NewService(client, cfg.Upstream, proxyMetrics, log)
	if !proxyService.Configured() {
		// Requests still get served; each one answers with the not-configured error
		log.Warn().Str("upstream", cfg.Upstream.String()).Msg("Upstream is not configured")
	} else {
		log.Info().Str("upstream", cfg.Upstream.String()).Msg("Upstream configured")
	}

	routes := gateway.Routes{
		QA:       proxy.VariantFromConfig("qa", cfg.Routes.QA),
		QASimple: proxy.VariantFromConfig("qa_simple", cfg.Routes.QASimple),
	}

	if !cfg.Log.Pretty {
		gin.SetMode(gin.ReleaseMode)
	}
	gatewayHandler := gateway.NewHandler(proxyService, routes, client, log)
	router := gateway.NewRouter(gatewayHandler, metrics.NewHTTPMetrics(), log)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Starting Number Advisor API server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	waitForShutdown(server, log)
}

// waitForShutdown blocks until SIGINT or SIGTERM, then drains in-flight requests
func waitForShutdown(server *http.Server, log zerolog.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
		return
	}

	log.Info().Msg("Server exited")
}

// initTracer installs a stdout trace exporter and the W3C propagators
func initTracer(pretty bool) (*trace.TracerProvider, error) {
	var opts []stdouttrace.Option
	if pretty {
		opts = append(opts, stdouttrace.WithPrettyPrint())
	}
	exporter, err := stdouttrace.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout exporter: %w", err)
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp, nil
}
