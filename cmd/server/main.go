package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"audti-backend-go/internal/api"
	"audti-backend-go/internal/config"
	"audti-backend-go/internal/core"
	"audti-backend-go/internal/db"
	"audti-backend-go/internal/firebase"
	"audti-backend-go/internal/metrics"
	"audti-backend-go/internal/middleware"
	"audti-backend-go/internal/notify"
	"audti-backend-go/pkg/cache"
	"audti-backend-go/pkg/messagequeue"
)

func main() {
	release := strings.ToLower(os.Getenv("GIN_MODE")) == "release"
	if !release {
		// .env is optional; the process environment always wins.
		_ = godotenv.Load()
	}

	// --- 1. Initialize Logger (Zap) ---
	var (
		zapLogger *zap.Logger
		err       error
	)
	if release {
		zapLogger, err = zap.NewProduction()
	} else {
		zapLogger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer zapLogger.Sync()

	// --- 2. Load Application Configuration ---
	appConfig, err := config.LoadConfig()
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to load application configuration", zap.Error(err))
	}
	if err := appConfig.ValidateServer(); err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Invalid server configuration", zap.Error(err))
	}
	zapLogger.Info("Application configuration loaded successfully.", zap.String("store", appConfig.StoreDriver))

	// --- 3. Initialize Firebase Admin SDK (identity is always Firebase Auth) ---
	initCtx, cancelInitCtx := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelInitCtx()
	app, err := firebase.NewApp(initCtx, appConfig)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize Firebase Admin SDK", zap.Error(err))
	}
	identity, err := firebase.NewIdentityProvider(initCtx, app)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize Firebase Auth client", zap.Error(err))
	}

	// --- 4. Initialize Repositories ---
	var repos db.Repositories
	switch appConfig.StoreDriver {
	case config.StoreFirestore:
		client, err := db.NewFirestoreClient(initCtx, app)
		if err != nil {
			zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize Firestore client", zap.Error(err))
		}
		defer client.Close()
		repos = db.NewFirestoreRepositories(client)
	default:
		dsn := appConfig.DatabaseURL
		if appConfig.StoreDriver == config.StoreSQLite {
			dsn = appConfig.SQLitePath
		}
		gdb, err := db.OpenGorm(appConfig.StoreDriver, dsn, zapLogger)
		if err != nil {
			zapLogger.Fatal("CRITICAL_ERROR: Failed to open relational store", zap.Error(err))
		}
		if err := db.AutoMigrate(gdb); err != nil {
			zapLogger.Fatal("CRITICAL_ERROR: Failed to migrate relational store", zap.Error(err))
		}
		repos = db.NewGormRepositories(gdb)
	}
	zapLogger.Info("Repositories initialized successfully.")

	// --- 5. Metrics and Cache ---
	m := metrics.New()
	var appCache cache.Cache
	if appConfig.RedisAddress != "" {
		redisCache, err := cache.NewRedisCache(initCtx, cache.NewRedisCacheConfig{
			Address:  appConfig.RedisAddress,
			Password: appConfig.RedisPassword,
			DB:       appConfig.RedisDB,
			Prefix:   "audti",
			TTL:      appConfig.CacheTTL,
			Observer: m,
		})
		if err != nil {
			zapLogger.Fatal("CRITICAL_ERROR: Failed to connect to Redis", zap.Error(err))
		}
		defer redisCache.Close()
		appCache = redisCache
		zapLogger.Info("Redis cache enabled", zap.String("address", appConfig.RedisAddress))
	} else {
		appCache = cache.NewMemoryCache(appConfig.CacheTTL, m)
		zapLogger.Warn("REDIS_ADDRESS is not configured; using an in-process cache.")
	}

	// --- 6. Message Queue (optional) ---
	var (
		publisher core.Publisher
		notifier  core.Notifier
	)
	if appConfig.RabbitMQURL != "" {
		queue, err := messagequeue.NewRabbitMQService(messagequeue.NewRabbitMQServiceConfig{URL: appConfig.RabbitMQURL})
		if err != nil {
			zapLogger.Fatal("CRITICAL_ERROR: Failed to connect to RabbitMQ", zap.Error(err))
		}
		defer queue.Close()
		publisher = queue
		notifier = notify.NewQueueNotifier(queue, appConfig.NotificationQueue)
		zapLogger.Info("RabbitMQ enabled", zap.String("notifications", appConfig.NotificationQueue), zap.String("activity", appConfig.ActivityQueue))
	} else {
		zapLogger.Warn("RABBITMQ_URL is not configured; notifications and activity events are disabled.")
	}

	// --- 7. Initialize Services ---
	activityService := core.NewActivityService(repos, core.ActivityOptions{
		Publisher:    publisher,
		Queue:        appConfig.ActivityQueue,
		DefaultLimit: appConfig.ActivityLogLimit,
	}, zapLogger)
	userService := core.NewUserService(repos, identity, activityService, notifier, appCache, zapLogger)
	services := api.Services{
		Audits:     core.NewAuditService(repos, appCache, zapLogger),
		Checklists: core.NewChecklistService(repos, activityService, appCache, zapLogger),
		Responses:  core.NewResponseService(repos, appCache, zapLogger),
		Users:      userService,
		Activity:   activityService,
		Reports:    core.NewReportService(repos, zapLogger),
	}
	zapLogger.Info("Core services initialized successfully.")

	// --- 8. Setup Gin HTTP Engine ---
	if release {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(middleware.RequestLogger(zapLogger))
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	router.Use(middleware.CORSMiddleware(appConfig))
	router.Use(middleware.Metrics(m))
	router.GET("/metrics", gin.WrapH(m.Handler()))

	// --- 9. Setup API Routes ---
	authMW := middleware.NewAuthMiddleware(identity, userService, zapLogger)
	api.SetupRoutes(router, zapLogger, authMW, services)

	// --- 10. Configure and Start HTTP Server ---
	serverAddr := fmt.Sprintf(":%s", appConfig.Port)
	httpServer := &http.Server{
		Addr:              serverAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	zapLogger.Info("Starting HTTP server...", zap.String("address", serverAddr), zap.String("ginMode", gin.Mode()))
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// --- 11. Graceful Shutdown Handling ---
	quitChannel := make(chan os.Signal, 1)
	signal.Notify(quitChannel, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quitChannel
	zapLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
		return
	}
	zapLogger.Info("Server exiting gracefully.")
}
