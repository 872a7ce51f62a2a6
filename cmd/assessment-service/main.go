package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carelink/assessment/pkg/assessment"
	"github.com/carelink/assessment/pkg/catalog"
	"github.com/carelink/assessment/pkg/common/config"
	"github.com/carelink/assessment/pkg/common/database"
	"github.com/carelink/assessment/pkg/common/kafka"
	"github.com/carelink/assessment/pkg/common/logger"
	"github.com/carelink/assessment/pkg/gateway/auth"
	"github.com/carelink/assessment/pkg/gateway/middleware"
	"github.com/carelink/assessment/pkg/observability/metrics"
	"github.com/carelink/assessment/pkg/patients"
	"github.com/gorilla/mux"
)

func main() {
	logger.Init("assessment-service")
	cfg := config.Load()

	db, err := database.GetPostgres(cfg)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to connect to postgres")
	}

	repo := assessment.NewRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("failed to migrate assessment tables")
	}

	directory := patients.NewDirectory(db, database.GetRedis(cfg), cfg.PatientCacheTTL)
	if err := directory.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("failed to migrate patient tables")
	}
	if err := directory.SeedDemoPatient(context.Background()); err != nil {
		logger.Log.WithError(err).Warn("failed to seed demo patient")
	}

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		logger.Log.WithError(err).WithField("path", cfg.CatalogPath).
			Warn("failed to load catalog override, using built-in catalog")
	}

	var backend assessment.Backend
	if cfg.DemoMode() {
		logger.Log.Warn("no LLM credential configured, running in demo mode")
	} else {
		backend = assessment.NewChatBackend(cfg.LLMAPIKey, cfg.LLMBaseURL, cfg.LLMModelName, cfg.LLMRequestTimeout)
	}
	engine := assessment.NewEngine(backend, cat)

	producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer producer.Close()

	sessions, err := auth.NewSessionManager(cfg.SessionSecret, "assessment-service", cfg.SessionTTL)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to initialize session manager")
	}

	service := assessment.NewService(repo, directory, engine, producer)
	handler := assessment.NewHandler(service, cat, sessions, cfg.Environment != "production")

	router := mux.NewRouter()
	router.Use(middleware.Recovery, middleware.Logging)
	router.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)
	router.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready"}`))
	}).Methods(http.MethodGet)
	router.HandleFunc("/metrics", metrics.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	handler.Register(api)

	address := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Log.WithField("addr", address).Info("Assessment service listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("failed to start assessment service")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down assessment service...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Log.WithError(err).Error("Assessment service forced to shutdown")
	}
	if err := database.CloseRedis(); err != nil {
		logger.Log.WithError(err).Error("failed to close redis")
	}
	if err := database.ClosePostgres(); err != nil {
		logger.Log.WithError(err).Error("failed to close postgres")
	}
	logger.Log.Info("Assessment service stopped")
}
