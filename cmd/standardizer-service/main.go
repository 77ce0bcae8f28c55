package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/saudelink/platform/pkg/common/config"
	"github.com/saudelink/platform/pkg/common/database"
	"github.com/saudelink/platform/pkg/common/kafka"
	"github.com/saudelink/platform/pkg/common/logger"
	"github.com/saudelink/platform/pkg/rawrecords"
	"github.com/saudelink/platform/pkg/refdata"
	"github.com/saudelink/platform/pkg/standardized"
)

func main() {
	logger.Init()
	cfg := config.Load()

	db, err := database.GetPostgres()
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to connect to postgres")
	}

	refRepo := refdata.NewRepository(db, database.GetRedis(), cfg.RefLookupCacheTTL)
	if err := refRepo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("failed to migrate reference tables")
	}

	catalog := refdata.DefaultCatalog()
	if cfg.ConditionCatalogPath != "" {
		if catalog, err = refdata.LoadCatalog(cfg.ConditionCatalogPath); err != nil {
			logger.Log.WithError(err).Fatal("failed to load condition catalog")
		}
	}
	if err := refRepo.Seed(context.Background(), catalog); err != nil {
		logger.Log.WithError(err).Fatal("failed to seed reference data")
	}

	repo := standardized.NewRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("failed to migrate standardized tables")
	}
	rawRepo := rawrecords.NewRepository(db)

	producer := kafka.NewProducer(cfg.StandardizedTopic)
	defer producer.Close()

	var dlqProducer *kafka.Producer
	if cfg.PipelineDLQTopic != "" {
		dlqProducer = kafka.NewProducer(cfg.PipelineDLQTopic)
		defer dlqProducer.Close()
	}

	svc := standardized.NewService(standardized.NewValidator(), repo, rawRepo, refRepo, producer, dlqProducer)
	handler := standardized.NewHTTPHandler(svc, cfg.MaxRequestBody)

	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	router.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready"}`))
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	handler.Register(api)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		}).Info("Standardizer Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Standardizer Service...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("server forced to shutdown")
	}
	if err := database.CloseRedis(); err != nil {
		logger.Log.WithError(err).Error("failed to close redis")
	}
	if err := database.ClosePostgres(); err != nil {
		logger.Log.WithError(err).Error("failed to close postgres")
	}

	logger.Log.Info("Standardizer Service stopped")
}
