package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/makkenzo/content-cms-api/internal/auth"
	"github.com/makkenzo/content-cms-api/internal/config"
	"github.com/makkenzo/content-cms-api/internal/handler"
	"github.com/makkenzo/content-cms-api/internal/handler/middleware"
	"github.com/makkenzo/content-cms-api/internal/service"
	"github.com/makkenzo/content-cms-api/internal/storage/objectstore"
	"github.com/makkenzo/content-cms-api/internal/storage/postgres"
	"github.com/makkenzo/content-cms-api/internal/storage/redis"
	"github.com/makkenzo/content-cms-api/internal/tasks"
	"github.com/makkenzo/content-cms-api/internal/worker"
	"github.com/makkenzo/content-cms-api/pkg/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "./configs/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	appLogger, err := logger.NewZapLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	sugarLogger := appLogger.Sugar()
	sugarLogger.Info("Starting application...")
	sugarLogger.Infof("Log level set to: %s", cfg.Log.Level)

	appCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := postgres.NewPgxPool(appCtx, &cfg.Database, appLogger)
	if err != nil {
		sugarLogger.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer dbPool.Close()

	redisClient, err := redis.NewRedisClient(appCtx, &cfg.Redis, appLogger)
	if err != nil {
		sugarLogger.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	apiKeyRepo := redis.NewCachedAPIKeyRepository(
		postgres.NewAPIKeyRepository(dbPool, appLogger),
		redisClient,
		cfg.APIKey.CacheTTL,
		appLogger,
	)
	schemaRepo := postgres.NewSchemaRepository(dbPool, appLogger)
	collectionRepo := postgres.NewCollectionRepository(dbPool, appLogger)
	popupRepo := postgres.NewPopupRepository(dbPool, appLogger)
	submissionRepo := postgres.NewSubmissionRepository(dbPool, appLogger)
	profileRepo := postgres.NewProfileRepository(dbPool, appLogger)

	authService, err := service.NewAuthService(&cfg.Auth, appLogger)
	if err != nil {
		sugarLogger.Fatalf("Failed to initialize auth service: %v", err)
	}
	profileService := service.NewProfileService(profileRepo, appLogger)
	apiKeyService := service.NewAPIKeyService(apiKeyRepo, appLogger)
	schemaService := service.NewSchemaService(schemaRepo, profileService, appLogger)
	collectionService := service.NewCollectionService(collectionRepo, schemaRepo, profileService, appLogger)
	popupService := service.NewPopupService(popupRepo, appLogger)
	submissionService := service.NewSubmissionService(submissionRepo, appLogger)

	apiKeyGate := auth.NewAPIKeyGate(apiKeyRepo, appLogger)
	sessionGate := auth.NewSessionGate(authService, appLogger)

	asynqClient := asynq.NewClient(redis.AsynqOpts(&cfg.Redis))
	defer asynqClient.Close()

	var usage middleware.UsageRecorder
	if cfg.APIKey.TouchEnabled {
		usage = tasks.NewUsageRecorder(asynqClient, appLogger)
	}

	var publicLimit gin.HandlerFunc
	if cfg.RateLimit.Enabled {
		store, err := middleware.NewRateLimitStore(redisClient)
		if err != nil {
			sugarLogger.Fatalf("Failed to create rate limit store: %v", err)
		}
		publicLimit, err = middleware.RateLimit(store, cfg.RateLimit.PublicRate, appLogger)
		if err != nil {
			sugarLogger.Fatalf("Failed to configure rate limit: %v", err)
		}
	}

	objectStore, err := objectstore.NewClient(&cfg.Storage, appLogger)
	if err != nil {
		sugarLogger.Fatalf("Failed to initialize object storage client: %v", err)
	}

	healthHandler := handler.NewHealthHandler(map[string]handler.Pinger{
		"database": dbPool.Ping,
		"redis": func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		},
	}, appLogger)

	handlers := handler.Handlers{
		APIKeys:     handler.NewAPIKeyHandler(apiKeyService, appLogger),
		Auth:        handler.NewAuthHandler(),
		Schemas:     handler.NewSchemaHandler(schemaService, appLogger),
		Collections: handler.NewCollectionHandler(collectionService, appLogger),
		Popups:      handler.NewPopupHandler(popupService, appLogger),
		Submissions: handler.NewSubmissionHandler(submissionService, appLogger),
		Public:      handler.NewPublicHandler(collectionService, popupService, apiKeyGate, usage, appLogger),
		Uploads:     handler.NewUploadHandler(objectStore, cfg.Storage.MaxUploadBytes, appLogger),
	}

	router := gin.New()
	router.MaxMultipartMemory = cfg.Storage.MaxUploadBytes
	router.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
			param.ClientIP,
			param.TimeStamp.Format(time.RFC1123),
			param.Method,
			param.Path,
			param.Request.Proto,
			param.StatusCode,
			param.Latency,
			param.Request.UserAgent(),
			param.ErrorMessage,
		)
	}))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(middleware.Errors(cfg.Server.ExposeInternalErrors, appLogger)...)

	router.GET("/healthz", healthHandler.Check)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handler.RegisterRoutes(router, handlers, handler.Gates{Session: sessionGate, APIKey: apiKeyGate}, usage, publicLimit, appLogger)

	g, groupCtx := errgroup.WithContext(appCtx)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g.Go(func() error {
		sugarLogger.Infof("HTTP server listening on port %s", cfg.Server.Port)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugarLogger.Errorf("HTTP server ListenAndServe error: %v", err)
			return fmt.Errorf("http server failed: %w", err)
		}
		sugarLogger.Info("HTTP server stopped listening.")
		return nil
	})

	g.Go(func() error {
		<-groupCtx.Done()
		sugarLogger.Info("Shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownPeriod)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			sugarLogger.Errorf("HTTP server graceful shutdown failed: %v", err)
			return fmt.Errorf("http server shutdown error: %w", err)
		}
		sugarLogger.Info("HTTP server shutdown complete.")
		return nil
	})

	g.Go(func() error {
		if err := worker.Run(groupCtx, redis.AsynqOpts(&cfg.Redis), &cfg.Worker, apiKeyService, appLogger); err != nil {
			sugarLogger.Error("Asynq worker failed", zap.Error(err))
			return fmt.Errorf("asynq worker error: %w", err)
		}
		sugarLogger.Info("Asynq workers finished gracefully.")
		return nil
	})

	sugarLogger.Info("Application started. Waiting for interrupt signal (Ctrl+C) or component error...")

	waitErr := g.Wait()

	sugarLogger.Info("Shutdown sequence finished.")

	switch {
	case waitErr == nil:
		sugarLogger.Info("Application shutdown successfully.")
	case errors.Is(waitErr, context.Canceled):
		sugarLogger.Info("Shutdown reason: context canceled.")
	default:
		sugarLogger.Errorf("Application shutdown finished with unexpected error: %v", waitErr)
	}
}
