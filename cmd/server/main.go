package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	businessapp "github.com/evardgh/apdatebookkeeping-REAL/internal/application/business"
	catalogapp "github.com/evardgh/apdatebookkeeping-REAL/internal/application/catalog"
	documentapp "github.com/evardgh/apdatebookkeeping-REAL/internal/application/document"
	financeapp "github.com/evardgh/apdatebookkeeping-REAL/internal/application/finance"
	intakeapp "github.com/evardgh/apdatebookkeeping-REAL/internal/application/intake"
	partnerapp "github.com/evardgh/apdatebookkeeping-REAL/internal/application/partner"
	resolverapp "github.com/evardgh/apdatebookkeeping-REAL/internal/application/resolver"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/finance"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/infrastructure/auth"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/infrastructure/cache"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/infrastructure/config"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/infrastructure/event"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/infrastructure/logger"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/infrastructure/migration"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/infrastructure/persistence"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/infrastructure/scheduler"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/infrastructure/storage"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/infrastructure/telemetry"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/interfaces/http/handler"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/interfaces/http/middleware"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

// coordination holds the lock, sequence and revocation backends, which are
// either all Redis-backed or all in-process
type coordination struct {
	locker      shared.OwnerLocker
	sequence    shared.NumberSequence
	revocations auth.RevocationList
	redis       *redis.Client
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting bookkeeping service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
		zap.String("port", cfg.App.Port),
	)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	// Telemetry
	providers, err := telemetry.Setup(ctx, cfg.Telemetry, version, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		_ = providers.Shutdown(context.Background())
	}()
	meter := providers.Meter(cfg.Telemetry.ServiceName)

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("driver", db.Driver))

	if err := migrateSchema(db, log); err != nil {
		log.Fatal("Failed to migrate schema", zap.Error(err))
	}

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		DBSystem:        dbSystem(db.Driver),
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	// Locks, number sequences and token revocations
	coord, err := newCoordination(ctx, cfg, db, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	if coord.redis != nil {
		defer func() { _ = coord.redis.Close() }()
	}

	// Receipts
	receipts, err := newReceiptStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize receipt storage", zap.Error(err))
	}

	// Events and metrics
	eventBus := event.NewInMemoryEventBus(log)
	metrics, err := telemetry.NewBookkeepingMetrics(meter)
	if err != nil {
		log.Fatal("Failed to register bookkeeping metrics", zap.Error(err))
	}
	eventBus.Subscribe(metrics, metrics.EventTypes()...)
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Repositories
	businessRepo := persistence.NewGormBusinessRepository(db.DB)
	settingsRepo := persistence.NewGormSettingsRepository(db.DB)
	clientRepo := persistence.NewGormClientRepository(db.DB)
	vendorRepo := persistence.NewGormVendorRepository(db.DB)
	itemRepo := persistence.NewGormItemRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	quotationRepo := persistence.NewGormQuotationRepository(db.DB)
	transactionRepo := persistence.NewGormTransactionRepository(db.DB)

	// Application services
	businessService := businessapp.NewService(businessRepo, settingsRepo, log)
	businessService.SetEventPublisher(eventBus)

	clientService := partnerapp.NewClientService(clientRepo, log)
	clientService.SetEventPublisher(eventBus)
	vendorService := partnerapp.NewVendorService(vendorRepo, log)
	vendorService.SetEventPublisher(eventBus)

	catalogService := catalogapp.NewService(itemRepo, categoryRepo)

	financeCfg := financeapp.DefaultConfig()
	if !cfg.Finance.StrictOrderTransitions {
		financeCfg.OrderPolicy = finance.OrderTransitionsFree
	}
	if cfg.Finance.DefaultCategory != "" {
		financeCfg.DefaultCategory = cfg.Finance.DefaultCategory
	}
	if cfg.Storage.MaxReceiptSize > 0 {
		financeCfg.MaxReceiptSize = cfg.Storage.MaxReceiptSize
	}
	transactionService := financeapp.NewTransactionService(
		transactionRepo, businessRepo, clientRepo, vendorRepo, coord.sequence, coord.locker, financeCfg, log)
	transactionService.SetReceiptStorage(receipts)
	transactionService.SetEventPublisher(eventBus)

	resolverService := resolverapp.NewService(clientRepo, vendorRepo, itemRepo, coord.locker, log)
	resolverService.SetRecorder(metrics)
	resolverService.SetEventPublisher(eventBus)

	quotationService := documentapp.NewQuotationService(
		quotationRepo, businessRepo, clientRepo, coord.sequence, coord.locker,
		transactionService, transactionRepo, cfg.Finance.IncomeCategory, log)
	quotationService.SetEventPublisher(eventBus)

	intakeService := intakeapp.NewService(resolverService, transactionService, financeCfg.DefaultCategory, log)

	// Overdue scanner
	overdueScanner, err := scheduler.NewOverdueScanner(scheduler.OverdueScannerConfig{
		Enabled:    cfg.Scheduler.OverdueScanEnabled,
		Schedule:   cfg.Scheduler.OverdueScanCron,
		Limit:      cfg.Scheduler.OverdueScanLimit,
		JobTimeout: cfg.Scheduler.JobTimeout,
	}, transactionRepo, eventBus, metrics, log)
	if err != nil {
		log.Fatal("Failed to create overdue scanner", zap.Error(err))
	}
	if err := overdueScanner.Start(ctx); err != nil {
		log.Fatal("Failed to start overdue scanner", zap.Error(err))
	}

	// HTTP engine
	checks := map[string]handler.Pinger{
		"database": handler.PingerFunc(func(context.Context) error { return db.Ping() }),
	}
	if coord.redis != nil {
		checks["redis"] = handler.PingerFunc(func(ctx context.Context) error {
			return coord.redis.Ping(ctx).Err()
		})
	}

	stopLimiter := make(chan struct{})
	var limiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow, cfg.HTTP.RateLimitBurst)
		go limiter.Run(stopLimiter)
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	engine, err := router.NewEngine(router.EngineConfig{
		Logger:         log,
		ServiceName:    cfg.Telemetry.ServiceName,
		TracingEnabled: providers.Enabled(),
		CORS:           cors,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		Auth: middleware.AuthConfig{
			JWTService:       auth.NewJWTService(cfg.JWT),
			Revocations:      coord.revocations,
			AllowOwnerHeader: cfg.HTTP.AllowOwnerHeader,
			SkipPaths:        []string{router.HealthPath},
			Logger:           log,
		},
		Meter:       meter,
		RateLimiter: limiter,
	}, handler.NewHealthHandler(version, checks), router.Handlers{
		Business:    handler.NewBusinessHandler(businessService),
		Client:      handler.NewClientHandler(clientService),
		Vendor:      handler.NewVendorHandler(vendorService),
		Resolve:     handler.NewResolveHandler(resolverService),
		Catalog:     handler.NewCatalogHandler(catalogService),
		Transaction: handler.NewTransactionHandler(transactionService),
		Quotation:   handler.NewQuotationHandler(quotationService),
		Intake:      handler.NewIntakeHandler(intakeService),
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}
	if cfg.HTTP.AllowOwnerHeader {
		log.Warn("Owner header authentication is enabled; do not use in production")
	}

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	close(stopLimiter)
	if err := overdueScanner.Stop(shutdownCtx); err != nil {
		log.Error("Failed to stop overdue scanner", zap.Error(err))
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Failed to stop event bus", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// migrateSchema applies the embedded migrations on postgres and falls back
// to GORM auto-migration on sqlite
func migrateSchema(db *persistence.Database, log *zap.Logger) error {
	if db.Driver != "postgres" {
		return db.AutoMigrate()
	}
	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	m, err := migration.New(sqlDB, log)
	if err != nil {
		return err
	}
	// Closing the migrator would close the shared connection pool
	return m.Up()
}

func dbSystem(driver string) string {
	if driver == "postgres" {
		return "postgresql"
	}
	return driver
}

// newCoordination picks Redis for locks, numbering and revocations when it
// is enabled. Without Redis, numbers come from the database so they keep
// counting across restarts.
func newCoordination(ctx context.Context, cfg *config.Config, db *persistence.Database, log *zap.Logger) (*coordination, error) {
	if !cfg.Redis.Enabled {
		log.Info("Redis disabled, using in-process locks and database sequences")
		return &coordination{
			locker:      cache.NewInMemoryOwnerLocker(),
			sequence:    persistence.NewGormNumberSequence(db.DB),
			revocations: auth.NewInMemoryRevocationList(),
		}, nil
	}

	client, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	return &coordination{
		locker:      cache.NewRedisOwnerLocker(client, cfg.Redis, log),
		sequence:    cache.NewRedisNumberSequence(client, cfg.Redis.KeyPrefix),
		revocations: auth.NewRedisRevocationList(client, cfg.Redis.KeyPrefix),
		redis:       client,
	}, nil
}

func newReceiptStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (financeapp.ReceiptStorage, error) {
	if !cfg.Storage.Enabled {
		log.Warn("Object storage disabled, receipts are kept in memory")
		return storage.NewMemoryReceiptStorage(), nil
	}
	s3Storage, err := storage.NewS3ReceiptStorage(ctx, &cfg.Storage, storage.WithLogger(log))
	if err != nil {
		return nil, err
	}
	if err := s3Storage.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return s3Storage, nil
}
