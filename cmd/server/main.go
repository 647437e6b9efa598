package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/asterview/asterview/internal/api"
	"github.com/asterview/asterview/internal/auth"
	"github.com/asterview/asterview/internal/config"
	"github.com/asterview/asterview/internal/mailer"
	"github.com/asterview/asterview/internal/metrics"
	"github.com/asterview/asterview/internal/notify"
	"github.com/asterview/asterview/internal/report"
	"github.com/asterview/asterview/internal/settings"
	"github.com/asterview/asterview/internal/store"
	"github.com/asterview/asterview/pkg/middleware"
)

func main() {
	// Configure logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Set log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("invalid log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("port", cfg.Port).
		Str("db_driver", cfg.DBDriver).
		Str("query_shape", cfg.StoreQueryShape).
		Str("log_level", cfg.LogLevel).
		Msg("starting asterview server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect the event store
	eventStore, err := store.OpenSQL(ctx, store.SQLConfig{
		Driver:       cfg.DBDriver,
		DSN:          cfg.DBDSN,
		Shape:        store.QueryShape(cfg.StoreQueryShape),
		MaxOpenConns: cfg.DBMaxOpenConns,
	}, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open event store")
	}
	defer eventStore.Close()

	// Settings persistence (DynamoDB or noop)
	settingsStore, err := settings.NewStore(ctx, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize settings store")
	}

	// Report pipeline
	reportService := report.NewService(eventStore, report.Config{
		MinNumberLength:     cfg.MinNumberLength,
		SLAThresholdSeconds: cfg.SLAThresholdSeconds,
		CallbackWindow:      cfg.CallbackWindow,
		BatchChunkSize:      cfg.BatchChunkSize,
	}, log.Logger)

	// Report-completed notifications (optional)
	var publisher notify.Publisher
	if cfg.MQTTBroker != "" {
		publisher, err = notify.NewMQTTPublisher(notify.MQTTOptions{
			Broker:   cfg.MQTTBroker,
			ClientID: cfg.MQTTClientID,
			QoS:      1,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect MQTT broker")
		}
		defer publisher.Close()
	}
	notifier := notify.NewNotifier(publisher, cfg.MQTTTopic, log.Logger)

	reportMailer := mailer.NewSMTPMailer(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		From:     cfg.SMTPFrom,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPass,
	}, log.Logger)

	reportHandler := api.NewReportHandler(reportService, notifier, reportMailer, log.Logger)
	settingsHandler := api.NewSettingsHandler(settingsStore, log.Logger)

	// Create router
	r := chi.NewRouter()

	// Add middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Register public routes (no auth required)
	r.Get("/health", healthHandler)
	r.Handle("/metrics", metrics.Handler())

	// Protected report routes
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware)
		r.Get("/api/calls", reportHandler.HandleCalls)
		r.Get("/api/stats", reportHandler.HandleStats)
		r.Get("/api/export.csv", reportHandler.HandleExport)
		r.Post("/api/reports/email", reportHandler.HandleEmailReport)
		r.Get("/api/settings", settingsHandler.HandleGet)
		r.Put("/api/settings", settingsHandler.HandlePut)
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Msgf("server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	cancel()

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// healthHandler handles health check requests
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","service":"asterview"}`)
}
