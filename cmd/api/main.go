package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/payfirst/internal/config"
	"github.com/Dan9191/payfirst/internal/handler"
	"github.com/Dan9191/payfirst/internal/insights"
	"github.com/Dan9191/payfirst/internal/integrations/cbr"
	"github.com/Dan9191/payfirst/internal/middleware"
	"github.com/Dan9191/payfirst/internal/repository"
	"github.com/Dan9191/payfirst/internal/scheduler"
	"github.com/Dan9191/payfirst/internal/service"
	"github.com/Dan9191/payfirst/internal/utils/email"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Initialize layers
	repo := repository.NewRepository(db)
	cbrClient := cbr.NewCBRClient(cfg.CBRURL, logger)
	narrator := insights.NewClient(cfg.NarrativeURL, cfg.NarrativeAPIKey, cfg.NarrativeTimeout, logger)
	if cfg.NarrativeURL == "" {
		logger.Warn("NARRATIVE_URL is not set, reports will use the fallback narrative")
	}
	var mailer service.Mailer
	if cfg.SMTPHost != "" {
		mailer = email.NewSender(cfg, logger)
	}

	svc, err := service.NewService(repo, narrator, cbrClient, mailer, logger, cfg)
	if err != nil {
		logger.Fatalf("Failed to initialize service: %v", err)
	}
	h := handler.NewHandler(svc, cbrClient, logger)

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.RequestLogger(logger))
	h.Routes(r, middleware.AuthMiddleware(cfg.JWTSecret))

	// Monthly digest
	jobs := scheduler.New(logger)
	if cfg.DigestSchedule != "" && mailer != nil {
		if err := jobs.AddHealthDigest(cfg.DigestSchedule, svc); err != nil {
			logger.Fatalf("Failed to schedule health digest: %v", err)
		}
		logger.Infof("Health digest scheduled at %q", cfg.DigestSchedule)
	}
	jobs.Start()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server shutdown failed: %v", err)
	}
	jobs.Stop(shutdownCtx)
}
