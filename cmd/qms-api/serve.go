package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"path"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/salmaanit26/Query-Management-System/api/swagger"
	"github.com/salmaanit26/Query-Management-System/internal/handler"
	internalmiddleware "github.com/salmaanit26/Query-Management-System/internal/middleware"
	"github.com/salmaanit26/Query-Management-System/internal/repository"
	"github.com/salmaanit26/Query-Management-System/internal/service"
	"github.com/salmaanit26/Query-Management-System/pkg/cache"
	"github.com/salmaanit26/Query-Management-System/pkg/config"
	"github.com/salmaanit26/Query-Management-System/pkg/database"
	"github.com/salmaanit26/Query-Management-System/pkg/jobs"
	"github.com/salmaanit26/Query-Management-System/pkg/logger"
	corsmiddleware "github.com/salmaanit26/Query-Management-System/pkg/middleware/cors"
	reqidmiddleware "github.com/salmaanit26/Query-Management-System/pkg/middleware/requestid"
	"github.com/salmaanit26/Query-Management-System/pkg/storage"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Migrations.AutoMigrate {
		if err := database.Migrate(cfg.Database, database.MigrateUp, logr); err != nil {
			return err
		}
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, history cache disabled", zap.Error(err))
		redisClient = nil
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApp(cfg, logr, db, redisClient)
	if err != nil {
		return err
	}
	app.cleanup.Start(ctx)
	defer app.close()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           app.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

// app holds the wired router plus the resources that must be released on exit.
type app struct {
	router  *gin.Engine
	cleanup *jobs.Queue
	cache   *repository.CacheRepository
}

func (a *app) close() {
	a.cleanup.Stop()
	_ = a.cache.Close()
}

func newApp(cfg *config.Config, logr *zap.Logger, db *sqlx.DB, redisClient *redis.Client) (*app, error) {
	metrics := service.NewMetricsService()
	validate := validator.New()

	queryRepo := repository.NewQueryRepository(db)
	historyRepo := repository.NewStatusHistoryRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	identity := service.NewIdentityService(
		repository.NewUserRepository(db),
		repository.NewVenueRepository(db),
		service.IdentityConfig{CacheSize: cfg.Identity.CacheSize, CacheTTL: cfg.Identity.CacheTTL},
		logr,
	)

	store, err := storage.NewLocalStorage(cfg.Uploads.Dir)
	if err != nil {
		return nil, fmt.Errorf("init upload storage: %w", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Uploads.SignedURLSecret, cfg.Uploads.SignedURLTTL)

	var attachments *service.AttachmentService
	cleanup := jobs.NewQueue("attachment-cleanup", func(ctx context.Context, job jobs.Job) error {
		return attachments.HandleCleanupJob(ctx, job)
	}, jobs.QueueConfig{
		Workers:    cfg.Cleanup.Workers,
		MaxRetries: cfg.Cleanup.Retries,
		RetryDelay: cfg.Cleanup.RetryDelay,
		Logger:     logr,
	})
	attachments = service.NewAttachmentService(store, signer, service.AttachmentConfig{
		MaxFileSizeBytes: cfg.Uploads.MaxFileSizeBytes,
		AllowedMIMEs:     cfg.Uploads.AllowedMIMEs,
		DownloadBasePath: path.Join(cfg.APIPrefix, "attachments", "download"),
	},
		service.WithCleanupQueue(cleanup),
		service.WithAttachmentMetrics(metrics),
		service.WithAttachmentLogger(logr),
	)

	historyCache := service.NewCacheService(cacheRepo, metrics, cfg.HistoryCache.TTL, logr, cfg.HistoryCache.Enabled && redisClient != nil)
	lifecycle := service.NewLifecycleService(db, queryRepo, historyRepo, identity, attachments,
		service.WithTransitionPolicy(service.NewTransitionPolicy(cfg.Lifecycle.TransitionPolicy)),
		service.WithHistoryCache(historyCache, cfg.HistoryCache.TTL),
		service.WithLifecycleMetrics(metrics),
		service.WithLifecycleLogger(logr),
		service.WithLifecycleValidator(validate),
	)
	queries := service.NewQueryService(queryRepo, identity, attachments, validate, logr)
	exporter := service.NewHistoryExportService(queries, lifecycle, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics, "/metrics"))

	handler.Register(r, cfg.APIPrefix, handler.Handlers{
		Queries:     handler.NewQueryHandler(queries, attachments),
		Lifecycle:   handler.NewLifecycleHandler(lifecycle, exporter, attachments.MaxFileSize()),
		Attachments: handler.NewAttachmentHandler(attachments),
		Metrics:     handler.NewMetricsHandler(metrics, db).AddCheck("redis", cacheRepo.Ping),
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return &app{router: r, cleanup: cleanup, cache: cacheRepo}, nil
}
