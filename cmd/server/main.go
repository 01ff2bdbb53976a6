package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"deedflow/internal/config"
	"deedflow/internal/docgen"
	noopemail "deedflow/internal/email/noop"
	sesemail "deedflow/internal/email/ses"
	"deedflow/internal/handler"
	"deedflow/internal/port"
	"deedflow/internal/repository/postgres"
	"deedflow/internal/router"
	"deedflow/internal/service"
	s3storage "deedflow/internal/storage/s3"
	"deedflow/internal/validator"
	"deedflow/internal/workflow"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	userRepo := postgres.NewUserRepo(db)
	formRepo := postgres.NewFormRepo(db)
	auditRepo := postgres.NewFormAuditRepo(db)
	fileRepo := postgres.NewFileMetaRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Initialize notifier
	var notifier port.Notifier
	switch cfg.Email.Provider {
	case "ses":
		notifier, err = sesemail.NewSESNotifier(cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName, cfg.Email.FrontendURL)
		if err != nil {
			return fmt.Errorf("failed to initialize SES notifier: %w", err)
		}
	default:
		notifier = noopemail.NewNoopNotifier()
	}

	// Initialize workflow engine and services
	engine := workflow.NewEngine(cfg.Workflow.EscalationWindow())
	registry := validator.NewDefaultRegistry()
	docGen := docgen.NewNoopGenerator()

	authSvc := service.NewAuthService(userRepo, cfg.JWT)
	formSvc := service.NewFormService(formRepo, auditRepo, userRepo, engine, registry, notifier, docGen)
	fileSvc := service.NewFileService(fileRepo, formRepo, auditRepo, s3Client, &cfg.S3)
	userSvc := service.NewUserService(userRepo)

	// Initialize handlers
	authH := handler.NewAuthHandler(authSvc, userSvc)
	formH := handler.NewFormHandler(formSvc)
	deliveryH := handler.NewDeliveryHandler(formSvc)
	fileH := handler.NewFileHandler(fileSvc)
	userH := handler.NewUserHandler(userSvc)
	reportH := handler.NewReportHandler(formSvc)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(cfg, authSvc, authH, formH, deliveryH, fileH, userH, reportH, healthH)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Delivery escalation sweep
	worker := service.NewEscalationWorker(formRepo, auditRepo, userRepo, notifier, service.EscalationConfig{
		SweepInterval: time.Duration(cfg.Workflow.SweepIntervalSecs) * time.Second,
		Window:        cfg.Workflow.EscalationWindow(),
		BatchSize:     cfg.Workflow.SweepBatchSize,
		Concurrency:   cfg.Workflow.SweepConcurrency,
	})
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.Start(ctx)
	}()

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Printf("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	<-workerDone
	return nil
}
