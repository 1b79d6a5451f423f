package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/clematis-labs/justify-server/internal/application/service"
	"github.com/clematis-labs/justify-server/internal/config"
	"github.com/clematis-labs/justify-server/internal/domain/role"
	"github.com/clematis-labs/justify-server/internal/infrastructure/external/identity"
	"github.com/clematis-labs/justify-server/internal/infrastructure/external/lark"
	"github.com/clematis-labs/justify-server/internal/infrastructure/external/openai"
	"github.com/clematis-labs/justify-server/internal/infrastructure/external/pdftext"
	"github.com/clematis-labs/justify-server/internal/infrastructure/persistence/repository"
	"github.com/clematis-labs/justify-server/internal/infrastructure/persistence/sqlite"
	"github.com/clematis-labs/justify-server/internal/infrastructure/storage"
	"github.com/clematis-labs/justify-server/internal/infrastructure/worker"
	httpserver "github.com/clematis-labs/justify-server/internal/interfaces/http"
	"github.com/clematis-labs/justify-server/pkg/database"
	"github.com/clematis-labs/justify-server/pkg/logging"
)

func main() {
	// Local overrides; absence is fine in production.
	_ = gotenv.Load()

	cfg, err := config.Load(configPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(logging.Config{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting expense justification server",
		zap.Int("port", cfg.Server.Port))

	sqlDB, err := database.Open(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer sqlDB.Close()

	migrator := database.NewMigrator(sqlDB, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	db := sqlite.NewDB(sqlDB, logger)

	orgRepo := repository.NewOrganizationRepository(sqlDB, logger)
	submissionRepo := repository.NewSubmissionRepository(sqlDB, logger)
	fileRepo := repository.NewFileRepository(sqlDB, logger)
	commentRepo := repository.NewCommentRepository(sqlDB, logger)
	notificationRepo := repository.NewNotificationRepository(sqlDB, logger)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	objectStorage, err := storage.NewMinioStorage(rootCtx, storage.Config{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    cfg.Storage.Bucket,
		UseSSL:    cfg.Storage.UseSSL,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize object storage", zap.Error(err))
	}

	identityClient := identity.NewClient(identity.Config{
		BaseURL: cfg.Identity.BaseURL,
		APIKey:  cfg.Identity.APIKey,
		Timeout: cfg.Identity.Timeout,
	}, logger)
	resolver := role.NewResolver(identityClient, logger)

	documentExtractor := openai.NewExtractor(cfg.OpenAI.APIKey, cfg.OpenAI.Model,
		cfg.OpenAI.Temperature, cfg.OpenAI.Timeout, logger)
	textExtractor := pdftext.NewExtractor(logger)

	// Delivery channel is optional; without credentials the feed still works.
	var notificationService service.NotificationService
	if cfg.Lark.AppID != "" && cfg.Lark.AppSecret != "" {
		larkClient := lark.NewClient(lark.Config{
			AppID:     cfg.Lark.AppID,
			AppSecret: cfg.Lark.AppSecret,
		}, logger)
		messenger := lark.NewMessenger(larkClient, logger)
		notificationService = service.NewNotificationService(notificationRepo, messenger, logger)
	} else {
		logger.Warn("Lark credentials absent, notifications are feed-only")
		notificationService = service.NewNotificationService(notificationRepo, nil, logger)
	}

	submissionService := service.NewSubmissionService(submissionRepo, fileRepo, commentRepo,
		orgRepo, identityClient, logger)
	reviewService := service.NewReviewService(submissionRepo, fileRepo, commentRepo, db,
		identityClient, notificationService, logger)
	documentService := service.NewDocumentService(fileRepo, submissionRepo, objectStorage,
		cfg.Upload.MaxSizeBytes, logger)
	reportService := service.NewReportService(submissionRepo, logger)

	workerManager := worker.NewManager(logger)
	workerManager.Register(worker.NewAnalysisWorker(worker.AnalysisWorkerConfig{
		PollInterval:   cfg.Analysis.PollInterval,
		BatchSize:      cfg.Analysis.BatchSize,
		ProcessTimeout: cfg.Analysis.ProcessTimeout,
	}, fileRepo, objectStorage, textExtractor, documentExtractor, logger))

	if err := workerManager.StartAll(rootCtx); err != nil {
		logger.Fatal("Failed to start workers", zap.Error(err))
	}
	defer func() {
		if err := workerManager.StopAll(); err != nil {
			logger.Error("Worker shutdown incomplete", zap.Error(err))
		}
	}()

	server := httpserver.NewServer(httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		JWTSecret:    cfg.Server.JWTSecret,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, submissionService, reviewService, documentService, notificationService,
		reportService, resolver, logger)

	if err := server.Start(rootCtx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}

func configPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return "configs/config.yaml"
}
