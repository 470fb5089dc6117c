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

	"github.com/SergeiKhy/affiliate-storefront/internal/analytics"
	"github.com/SergeiKhy/affiliate-storefront/internal/auth"
	"github.com/SergeiKhy/affiliate-storefront/internal/config"
	"github.com/SergeiKhy/affiliate-storefront/internal/handler"
	"github.com/SergeiKhy/affiliate-storefront/internal/middleware"
	"github.com/SergeiKhy/affiliate-storefront/internal/repository"
	"github.com/SergeiKhy/affiliate-storefront/internal/service"
	"go.uber.org/zap"
)

func main() {
	// Загрузка конфига
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	ctx := context.Background()

	// Хранилище: postgres, если настроен и доступен, иначе демо-данные
	repos, db := openRepositories(ctx, cfg.DB, logger)
	if db != nil {
		defer db.Close()
	}

	sink := openAnalyticsSink(ctx, cfg, logger)
	dispatcher := analytics.NewDispatcher(sink, logger)
	defer func() {
		if err := dispatcher.Close(); err != nil {
			logger.Warn("Failed to close analytics sink", zap.Error(err))
		}
	}()

	// Инициализация процессора кликов (Worker Pool)
	clickProcessor := service.NewClickProcessor(repos.Clicks, logger)
	clickProcessor.Start()
	defer clickProcessor.Stop()

	authorizer := auth.NewAuthorizer(auth.Config{
		JWTSecret:       cfg.Admin.JWTSecret,
		DevBypass:       cfg.Admin.DevBypass,
		StoreConfigured: !repos.Fixture,
	}, repos.Profiles, logger)

	validator := service.NewValidator(cfg.Affiliate.AllowedDomains)

	catalog := service.NewCatalogService(repos, clickProcessor, logger)
	admin := service.NewAdminService(repos, authorizer, validator, logger)
	pages := service.NewPageService(catalog, admin, repos.Clicks, authorizer, dispatcher, logger)
	tracker := service.NewClickTracker(catalog, dispatcher, analytics.NewUserAgentParser(), logger)

	var blobs service.BlobStore
	if cfg.Upload.Configured() {
		blobs = service.NewLocalBlobStore(cfg.Upload)
	} else {
		logger.Info("Image upload disabled: UPLOAD_DIR or UPLOAD_BASE_URL not set")
	}
	uploads := service.NewUploadService(blobs, authorizer, logger)

	// Инициализация middleware
	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		BurstSize:         cfg.RateLimit.BurstSize,
		CleanupInterval:   time.Minute,
	})
	defer rateLimiter.Stop()

	// Настройка роутера
	router := handler.NewRouter(handler.Services{
		Catalog: catalog,
		Pages:   pages,
		Admin:   admin,
		Tracker: tracker,
		Uploads: uploads,
		Clicks:  clickProcessor,
	}, handler.RouterConfig{
		Demo:        repos.Fixture,
		UploadDir:   cfg.Upload.Dir,
		RateLimiter: rateLimiter,
	}, logger)

	// Запуск сервера
	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Запуск в горутине
	go func() {
		logger.Info("Server starting", zap.String("port", cfg.App.Port), zap.Bool("demo", repos.Fixture))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func openRepositories(ctx context.Context, cfg config.DBConfig, logger *zap.Logger) (*repository.Repositories, *repository.PostgresDB) {
	if !cfg.Configured() {
		logger.Warn("Database not configured, serving demo data")
		return repository.NewFixtureRepositories(logger), nil
	}

	dsn := repository.DSN(cfg)
	db, err := repository.NewPostgresDB(ctx, dsn)
	if err != nil {
		logger.Warn("Database unreachable, serving demo data", zap.Error(err))
		return repository.NewFixtureRepositories(logger), nil
	}
	logger.Info("Connected to PostgreSQL")

	if cfg.AutoMigrate {
		if err := repository.Migrate(ctx, dsn, logger); err != nil {
			db.Close()
			logger.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	return repository.NewRepositories(db), db
}

func openAnalyticsSink(ctx context.Context, cfg *config.Config, logger *zap.Logger) analytics.Sink {
	switch cfg.Analytics.Driver {
	case config.AnalyticsDriverRedis:
		client, err := analytics.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			logger.Warn("Redis unavailable, analytics disabled", zap.Error(err))
			return analytics.NopSink{}
		}
		logger.Info("Analytics events go to Redis stream", zap.String("stream", cfg.Analytics.Stream))
		return analytics.NewRedisSink(client, cfg.Analytics.Stream)
	case config.AnalyticsDriverClickHouse:
		sink, err := analytics.NewClickHouseSink(ctx, cfg.Analytics.ClickHouse)
		if err != nil {
			logger.Warn("ClickHouse unavailable, analytics disabled", zap.Error(err))
			return analytics.NopSink{}
		}
		logger.Info("Analytics events go to ClickHouse")
		return sink
	default:
		return analytics.NopSink{}
	}
}
