package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/lib/pq" // PostgreSQL driver

	"structnotify/internal/broker"
	"structnotify/internal/config"
	"structnotify/internal/constants"
	"structnotify/internal/directory"
	"structnotify/internal/logger"
	"structnotify/internal/notification"
	"structnotify/internal/predicate"
	"structnotify/internal/record"
	"structnotify/pkg/bootstrap"
	"structnotify/pkg/health"
	"structnotify/pkg/metrics"
	"structnotify/pkg/middleware"
	"structnotify/pkg/ratelimit"
	"structnotify/pkg/tracing"
)

type App struct {
	config         *config.Config
	logger         logger.Logger
	dbConnector    *bootstrap.DatabaseConnector
	db             *sql.DB
	redisClient    *redis.Client
	mongoClient    *mongo.Client
	server         *http.Server
	router         *gin.Engine
	tracerProvider *tracing.TracerProvider
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	return &App{
		config:      cfg,
		logger:      log,
		dbConnector: bootstrap.NewDatabaseConnector(cfg, log),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	if err := a.initDatabase(ctx); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := a.initRouter(ctx); err != nil {
		return fmt.Errorf("failed to initialize router: %w", err)
	}

	if err := a.initServer(); err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	tp, err := tracing.Init(a.config.Tracing, "notification-service")
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.tracerProvider = tp

	return nil
}

func (a *App) initDatabase(ctx context.Context) error {
	db, err := a.dbConnector.InitPostgreSQL(ctx)
	if err != nil {
		return err
	}
	a.db = db
	return nil
}

func (a *App) initRouter(ctx context.Context) error {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	if a.config.Tracing.Enabled {
		router.Use(tracing.GinMiddleware("notification-service"))
	}

	router.Use(middleware.RecoveryMiddleware(a.logger))
	router.Use(middleware.LoggerMiddleware(a.logger))
	router.Use(middleware.RequestIDMiddleware())

	if a.config.Admin.RateLimit.Enabled {
		rateLimitConfig := ratelimit.Config{
			RPS:             a.config.Admin.RateLimit.RPS,
			Burst:           a.config.Admin.RateLimit.Burst,
			CleanupInterval: time.Duration(a.config.Admin.RateLimit.CleanupInterval) * time.Second,
			MaxAge:          time.Duration(a.config.Admin.RateLimit.MaxAge) * time.Second,
		}
		router.Use(ratelimit.Middleware(rateLimitConfig))
		a.logger.InfowCtx(ctx, "Rate limiting enabled", "rps", rateLimitConfig.RPS, "burst", rateLimitConfig.Burst)
	}

	repo := predicate.NewRepository(a.db)

	var configEventProducer *predicate.ConfigEventProducer
	if a.config.Broker.Type == "kafka" && a.config.Broker.Kafka.ConfigUpdateTopic != "" {
		producer, err := broker.NewProducer(a.config.Broker, a.logger)
		if err != nil {
			a.logger.WarnwCtx(ctx, "Failed to create config event producer, config events will be disabled", "error", err)
		} else {
			configEventProducer = predicate.NewConfigEventProducer(producer, a.config.Broker.Kafka.ConfigUpdateTopic)
			a.logger.InfowCtx(ctx, "Config event producer initialized")
		}
	}

	opts := []predicate.ServiceOption{}
	if configEventProducer != nil {
		opts = append(opts, predicate.WithConfigEvents(configEventProducer))
	}
	svc := predicate.NewService(repo, a.logger, opts...)

	predicateHandler := predicate.NewHandler(svc, a.logger)
	predicateHandler.RegisterRoutes(router)

	if err := a.initEngineRoutes(ctx, router, repo, svc); err != nil {
		return err
	}

	metrics.RegisterEngineMetrics()
	metrics.RegisterCircuitBreakerMetrics()
	metrics.RegisterAdminMetrics()
	metrics.RegisterBrokerMetrics()

	healthRegistry := health.NewCheckerRegistry()
	healthRegistry.Register(health.NewPostgreSQLChecker(a.db))
	if a.redisClient != nil {
		healthRegistry.Register(health.NewRedisChecker(a.redisClient))
	}
	if a.mongoClient != nil {
		healthRegistry.Register(health.NewMongoDBChecker(a.mongoClient))
	}

	router.GET("/health", func(c *gin.Context) {
		h := healthRegistry.Check(c.Request.Context())
		statusCode := http.StatusOK
		if h.Status == health.StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		c.JSON(statusCode, h)
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	a.router = router
	return nil
}

// initEngineRoutes wires the gather path: record source, directory,
// generator, delivery marking, and the notification endpoints. The record
// source needs MongoDB; without it only the predicate CRUD surface is
// served.
func (a *App) initEngineRoutes(ctx context.Context, router *gin.Engine, repo predicate.Repository, svc predicate.Service) error {
	notifCfg := a.config.Notification.Defaulted()

	if a.config.Database.MongoDB.URI == "" {
		a.logger.WarnwCtx(ctx, "MongoDB not configured, notification gathering disabled")
		return nil
	}

	initCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	mongoClient, err := a.dbConnector.InitMongoDB(initCtx)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	a.mongoClient = mongoClient

	dbName := a.config.Database.MongoDB.Database
	if dbName == "" {
		dbName = constants.DefaultMongoDBName
	}
	mongoDB := mongoClient.Database(dbName)

	if err := record.EnsureIndexes(initCtx, mongoDB, notifCfg.RecordSource.SchemaRegistry); err != nil {
		return fmt.Errorf("failed to ensure record source indexes: %w", err)
	}

	var source record.Source = record.NewMongoSource(mongoDB, notifCfg.RecordSource.SchemaRegistry, a.logger)
	if a.config.CircuitBreaker.Enabled {
		source = record.NewResilientSource(source, a.config.CircuitBreaker, notifCfg.RecordSource.Retry)
	}

	dir, err := a.buildDirectory()
	if err != nil {
		return err
	}

	generator, err := notification.NewGenerator(repo, source, dir, a.logger, notifCfg.GatherConcurrency)
	if err != nil {
		return fmt.Errorf("failed to build generator: %w", err)
	}

	registry := notification.NewRegistry()
	registry.Register(notification.NewEngineSource(generator, svc, bootstrap.PostgresDSN(a.config.Database.Postgres)))

	var marker *notification.DeliveryMarker
	if notifCfg.Dedup.Enabled {
		redisClient, err := a.dbConnector.InitRedis(initCtx)
		if err != nil {
			a.logger.WarnwCtx(ctx, "Redis connection failed, delivered-event marking disabled", "error", err)
		} else {
			a.redisClient = redisClient
			marker = notification.NewDeliveryMarker(redisClient,
				time.Duration(notifCfg.Dedup.TTLSeconds)*time.Second, a.logger)
		}
	}

	notificationHandler := notification.NewHandler(registry, marker, a.logger)
	notificationHandler.RegisterRoutes(router)

	return nil
}

func (a *App) buildDirectory() (directory.Directory, error) {
	switch a.config.Directory.Backend {
	case "", "postgres":
		return directory.NewPostgresDirectory(a.db), nil
	case "static":
		return directory.NewStaticDirectoryFromConfig(a.config.Directory), nil
	default:
		return nil, fmt.Errorf("unsupported directory backend: %s", a.config.Directory.Backend)
	}
}

func (a *App) initServer() error {
	a.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", a.config.Server.Port),
		Handler: a.router,
	}
	return nil
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		a.logger.InfowCtx(ctx, "Server listening", "port", a.config.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		return a.Shutdown(ctx)
	case err := <-errChan:
		return err
	}
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.InfowCtx(ctx, "Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()

	var errs []error

	if a.server != nil {
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
		}
	}

	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown error: %w", err))
		}
	}

	dbErrs := a.dbConnector.ShutdownDatabases(ctx, a.redisClient, a.db, a.mongoClient)
	errs = append(errs, dbErrs...)

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}

	a.logger.InfowCtx(ctx, "Server exited successfully")
	return nil
}
