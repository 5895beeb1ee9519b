package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel"

	"gallery-portal/internal/config"
	"gallery-portal/internal/observability"
	"gallery-portal/internal/platform/server"
	"gallery-portal/internal/services"
	"gallery-portal/internal/web/handlers"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	obsCfg := observability.LoadConfig()
	if cfg.Logging != nil {
		obsCfg.LogLevel = cfg.Logging.Level
		obsCfg.LogFormat = cfg.Logging.Format
	}
	logger := observability.NewLogger(obsCfg)
	otel.SetErrorHandler(otel.ErrorHandlerFunc(logger.OTELErrorHandler()))

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	provider, err := observability.NewProvider(ctx, obsCfg)
	if err != nil {
		logger.Fatal(ctx).Err(err).Msg("Failed to initialize OpenTelemetry")
	}

	httpMetrics, err := observability.NewHTTPMetrics(provider.Meter(observability.InstrumentationName))
	if err != nil {
		logger.Fatal(ctx).Err(err).Msg("Failed to create HTTP metrics")
	}

	container, err := services.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Fatal(ctx).Err(err).Msg("Failed to initialize services container")
	}
	defer container.Close()

	go container.Maintain(ctx, cfg.Session.PurgeInterval)

	handler := handlers.NewWithContainer(container,
		handlers.WithTracer(provider.Tracer(observability.InstrumentationName)),
		handlers.WithMetrics(httpMetrics),
		handlers.WithVersion(obsCfg.ServiceVersion),
	)
	srv := server.New(cfg, handler.Routes())

	go func() {
		logger.Info(ctx).
			Str("addr", srv.Addr).
			Str("api_base_url", cfg.API.BaseURL).
			Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(ctx).Err(err).Msg("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info(ctx).Msg("Server shutting down...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(shutdownCtx).Err(err).Msg("Server forced to shutdown")
	}
	if err := provider.Shutdown(shutdownCtx); err != nil {
		logger.Error(shutdownCtx).Err(err).Msg("Failed to shutdown OpenTelemetry")
	}

	logger.Info(shutdownCtx).Msg("Server exited")
}
