package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/IsmailofficialGithub/rrasheedCRM/internal/config"
	"github.com/IsmailofficialGithub/rrasheedCRM/internal/infra/database"
	"github.com/IsmailofficialGithub/rrasheedCRM/internal/infra/http/handlers"
	"github.com/IsmailofficialGithub/rrasheedCRM/internal/infra/http/middleware"
	"github.com/IsmailofficialGithub/rrasheedCRM/internal/infra/integration/callflow"
	"github.com/IsmailofficialGithub/rrasheedCRM/internal/infra/logger"
	"github.com/IsmailofficialGithub/rrasheedCRM/internal/infra/mail"
	"github.com/IsmailofficialGithub/rrasheedCRM/internal/infra/phone"
	"github.com/IsmailofficialGithub/rrasheedCRM/internal/infra/queue"
	"github.com/IsmailofficialGithub/rrasheedCRM/internal/infra/worker"
	"github.com/IsmailofficialGithub/rrasheedCRM/internal/usecase"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDBConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		log.Fatal("schema bootstrap failed", zap.Error(err))
	}

	go worker.NewListTotalWorker(db, cfg.ListReconcileInterval, log.Named("reconcile")).Start(ctx)

	// 1. Repositories
	listRepo := database.NewContactListRepository(db)
	contactRepo := database.NewContactRepository(db)
	leadRepo := database.NewLeadRepository(db)
	callLogRepo := database.NewCallLogRepository(db)

	// 2. Adapters
	webhook := callflow.NewClient(cfg.CallWebhookURL, cfg.WebhookTimeout)
	if !webhook.Configured() {
		log.Warn("CALL_WEBHOOK_URL not set, dispatch is disabled")
	}
	phones := phone.New(cfg.PhoneMatchMode, cfg.PhoneDefaultRegion)
	recorder := middleware.Recorder{}

	// 3. Use cases
	importUC := usecase.NewImportContactsUseCase(listRepo, contactRepo, cfg.ImportBatchSize, recorder, log.Named("import"))

	dispatchUC := usecase.NewDispatchCallsUseCase(
		contactRepo, listRepo, leadRepo, callLogRepo,
		webhook, phones, cfg.DispatchWorkers, log.Named("dispatch"),
	)
	dispatchUC.Observer = recorder
	dispatchUC.ReportTo = cfg.DispatchReportTo
	if cfg.MailConfigured() {
		dispatchUC.Reports = mail.NewEmailSender(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPassword, cfg.MailFrom)
	}

	// 4. Queue (optional)
	var rabbitState handlers.ConnectionState
	if cfg.RabbitMQURL != "" {
		rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			log.Fatal("rabbitmq connection failed", zap.Error(err))
		}
		defer rabbitMQ.Close()
		rabbitState = rabbitMQ.Conn

		dispatchUC.Queue = queue.NewProducer(rabbitMQ.Ch)

		consumer := queue.NewWorker(rabbitMQ.Ch, dispatchUC, log.Named("worker"))
		go func() {
			if err := consumer.Start(ctx, queue.QueueName); err != nil {
				log.Error("dispatch worker stopped", zap.Error(err))
			}
		}()
	} else {
		log.Info("RABBITMQ_URL not set, async dispatch is disabled")
	}

	// 5. Handlers and router
	router := newRouter(routeDeps{
		Imports:        handlers.NewImportHandler(importUC, cfg.MaxUploadBytes, log.Named("http")),
		Dispatch:       handlers.NewDispatchHandler(dispatchUC, log.Named("http")),
		Health:         handlers.NewHealthHandler(db, rabbitState, webhook.Configured()),
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Log:            log.Named("http"),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
