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
	"github.com/saudelink/platform/pkg/common/faults"
	"github.com/saudelink/platform/pkg/common/kafka"
	"github.com/saudelink/platform/pkg/common/logger"
	"github.com/saudelink/platform/pkg/common/models"
	"github.com/saudelink/platform/pkg/merge"
	"github.com/saudelink/platform/pkg/provenance"
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
	if err := refRepo.Seed(context.Background(), refdata.DefaultCatalog()); err != nil {
		logger.Log.WithError(err).Fatal("failed to seed reference data")
	}

	repo := merge.NewRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("failed to migrate merged tables")
	}
	stdRepo := standardized.NewRepository(db)

	producer := kafka.NewProducer(cfg.MergedTopic)
	defer producer.Close()

	var dlqProducer *kafka.Producer
	if cfg.PipelineDLQTopic != "" {
		dlqProducer = kafka.NewProducer(cfg.PipelineDLQTopic)
		defer dlqProducer.Close()
	}

	engine := merge.NewEngine(repo, refRepo, stdRepo, producer, dlqProducer, cfg.MergeBatchConcurrency)
	handler := merge.NewHTTPHandler(engine, cfg.MaxRequestBody)

	prvRepo := provenance.NewRepository(db)
	prvSvc := provenance.NewService(prvRepo, cfg.ProvenanceDefaultPageSize, cfg.ProvenanceMaxPageSize)
	prvHandler := provenance.NewHTTPHandler(prvSvc)

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
	prvHandler.Register(api)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumer := kafka.NewConsumer(cfg.StandardizedTopic, cfg.KafkaGroupID)
	defer consumer.Close()

	go func() {
		err := consumer.Consume(ctx, func(ctx context.Context, event models.Event) error {
			if entity, _ := event.Data["entity"].(string); entity != "patient-record" {
				return nil
			}
			patientCode, _ := event.Data["patient_code"].(string)
			if patientCode == "" {
				logger.Log.WithField("event_id", event.ID).Warn("standardized event without patient_code, skipping")
				return nil
			}
			_, err := engine.MergeFromStandardized(ctx, patientCode)
			if err != nil && !faults.IsDeadlock(err) {
				// Permanent failures are committed, not redelivered; the
				// record stays visible to the provenance query for replay.
				logger.Log.WithError(err).WithField("patient_code", patientCode).Error("merge from standardized failed")
				return nil
			}
			return err
		})
		if err != nil && ctx.Err() == nil {
			logger.Log.WithError(err).Error("standardized consumer stopped")
		}
	}()

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		}).Info("Merge Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Merge Service...")
	cancel()

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

	logger.Log.Info("Merge Service stopped")
}
