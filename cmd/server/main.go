package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	appaccount "github.com/welth/backend/internal/application/account"
	appbudget "github.com/welth/backend/internal/application/budget"
	appidentity "github.com/welth/backend/internal/application/identity"
	appreceipt "github.com/welth/backend/internal/application/receipt"
	apptxn "github.com/welth/backend/internal/application/transaction"
	"github.com/welth/backend/internal/infrastructure/auth"
	"github.com/welth/backend/internal/infrastructure/cache"
	"github.com/welth/backend/internal/infrastructure/config"
	"github.com/welth/backend/internal/infrastructure/event"
	"github.com/welth/backend/internal/infrastructure/logger"
	"github.com/welth/backend/internal/infrastructure/persistence"
	"github.com/welth/backend/internal/infrastructure/ratelimit"
	"github.com/welth/backend/internal/infrastructure/scheduler"
	"github.com/welth/backend/internal/infrastructure/telemetry"
	"github.com/welth/backend/internal/interfaces/http/handler"
	"github.com/welth/backend/internal/interfaces/http/middleware"
	"github.com/welth/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

// bucketEvictInterval is how often idle rate-limit buckets are dropped
const bucketEvictInterval = 10 * time.Minute

//	@title			Welth API
//	@version		1.0
//	@description	Personal finance backend: accounts, transactions, budgets and receipt scanning

//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Identity provider token. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}
	bootLog, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()
	telemetry.ServiceVersion = version

	// The OTLP log bridge needs a logger of its own before the service logger exists.
	logProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize log exporter", zap.Error(err))
	}
	log, err := logger.New(logCfg, logProvider.Core(logger.ParseLevel(cfg.Log.Level)))
	if err != nil {
		bootLog.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Welth backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
		zap.String("timezone", cfg.App.Timezone),
	)
	location := cfg.App.Location()

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	financeMetrics, err := telemetry.NewFinanceMetrics(meterProvider.Meter(cfg.Telemetry.ServiceName))
	if err != nil {
		log.Fatal("Failed to create finance metrics", zap.Error(err))
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Profiling.Enabled,
		ServerAddress:   cfg.Profiling.ServerAddress,
		ApplicationName: cfg.Telemetry.ServiceName,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if cfg.Profiling.Enabled && cfg.Telemetry.Enabled {
		if err := tracerProvider.EnableSpanProfiles(); err != nil {
			log.Warn("Failed to link spans to profiles", zap.Error(err))
		}
	}

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:         true,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
			DBSystem:        "postgresql",
		}, log)
		if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Failed to enable database tracing", zap.Error(err))
		}
	}
	log.Info("Database connected successfully")

	// View cache
	viewCache, err := cache.NewViewCacheFactory(cfg.Redis, cache.WithLogger(log)).CreateCache()
	if err != nil {
		log.Fatal("Failed to create view cache", zap.Error(err))
	}
	defer func() {
		if err := viewCache.Close(); err != nil {
			log.Error("Error closing view cache", zap.Error(err))
		}
	}()

	// Event bus
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(cache.NewViewInvalidationHandler(viewCache, log))
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	accountRepo := persistence.NewGormAccountRepository(db.DB)
	txRepo := persistence.NewGormTransactionRepository(db.DB)
	budgetRepo := persistence.NewGormBudgetRepository(db.DB)

	// Transaction creation is limited inside the service; receipt scans get
	// their own buckets through the middleware.
	limiterCfg := ratelimit.Config{
		Capacity:       cfg.RateLimit.Capacity,
		RefillTokens:   cfg.RateLimit.RefillTokens,
		RefillInterval: cfg.RateLimit.RefillInterval,
		IdleTTL:        cfg.RateLimit.IdleTTL,
	}
	txLimiter := ratelimit.New(limiterCfg, log)
	scanLimiter := ratelimit.New(limiterCfg, log)
	txLimiter.Start(ctx, bucketEvictInterval)
	scanLimiter.Start(ctx, bucketEvictInterval)
	defer txLimiter.Stop()
	defer scanLimiter.Stop()

	// Application services
	userService := appidentity.NewUserService(userRepo, log)
	userService.SetEventPublisher(eventBus)

	accountService := appaccount.NewAccountService(accountRepo, txRepo, persistence.NewGormAccountScope(db.DB), log)
	accountService.SetEventPublisher(eventBus)
	accountService.SetViewCache(viewCache)

	transactionService := apptxn.NewTransactionService(accountRepo, txRepo, persistence.NewGormTransactionScope(db.DB), log)
	transactionService.SetEventPublisher(eventBus)
	transactionService.SetViewCache(viewCache)
	transactionService.SetMetrics(financeMetrics)
	if cfg.RateLimit.Enabled {
		transactionService.SetRateLimiter(txLimiter)
	}

	budgetService := appbudget.NewBudgetService(budgetRepo, txRepo, location, log)
	budgetService.SetEventPublisher(eventBus)

	alertService := appbudget.NewAlertService(budgetRepo, accountRepo, txRepo, userRepo, newMailer(cfg.Email, log),
		appbudget.AlertServiceConfig{
			Threshold: decimal.NewFromFloat(cfg.Budget.AlertThreshold),
			Location:  location,
		}, log)
	alertService.SetMetrics(financeMetrics)

	scanService := appreceipt.NewScanService(newReceiptModel(ctx, cfg.AI, log), newReceiptStore(ctx, cfg.Storage, log), log)
	scanService.SetMetrics(financeMetrics)

	// Background jobs
	if cfg.Scheduler.Enabled {
		jobs, err := scheduler.NewScheduler(scheduler.SchedulerConfig{
			Workers:       cfg.Scheduler.Workers,
			QueueSize:     cfg.Scheduler.QueueSize,
			JobTimeout:    cfg.Scheduler.JobTimeout,
			RetryAttempts: cfg.Scheduler.RetryAttempts,
			RetryDelay:    cfg.Scheduler.RetryDelay,
		}, log)
		if err != nil {
			log.Fatal("Invalid scheduler configuration", zap.Error(err))
		}
		jobs.SetMetrics(financeMetrics)
		jobs.RegisterExecutor(scheduler.JobTypeBudgetAlert, scheduler.NewBudgetAlertExecutor(alertService, log))
		jobs.RegisterExecutor(scheduler.JobTypeRecurringTransactions,
			scheduler.NewRecurringTransactionsExecutor(transactionService, log))
		if err := jobs.Start(ctx); err != nil {
			log.Fatal("Failed to start scheduler", zap.Error(err))
		}
		defer func() {
			if err := jobs.Stop(context.Background()); err != nil {
				log.Error("Error stopping scheduler", zap.Error(err))
			}
		}()

		trigger := scheduler.NewCronTrigger(jobs, location, log)
		if err := trigger.Schedule(cfg.Scheduler.BudgetAlertCron, scheduler.JobTypeBudgetAlert); err != nil {
			log.Fatal("Invalid budget alert schedule", zap.Error(err))
		}
		if err := trigger.Schedule(cfg.Scheduler.RecurringTxnCron, scheduler.JobTypeRecurringTransactions); err != nil {
			log.Fatal("Invalid recurring transaction schedule", zap.Error(err))
		}
		trigger.Start()
		defer func() {
			if err := trigger.Stop(context.Background()); err != nil {
				log.Error("Error stopping cron trigger", zap.Error(err))
			}
		}()
		log.Info("Scheduler started",
			zap.Int("workers", cfg.Scheduler.Workers),
			zap.Time("next_budget_alert", trigger.NextRun(scheduler.JobTypeBudgetAlert)),
			zap.Time("next_recurring_run", trigger.NextRun(scheduler.JobTypeRecurringTransactions)),
		)
	}

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		logger.GinMiddleware(log),
		middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		}),
		middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
			Meter:   meterProvider.Meter(cfg.Telemetry.ServiceName),
			Enabled: cfg.Telemetry.MetricsEnabled,
			Logger:  log,
		}),
		middleware.ProfilingWithConfig(middleware.ProfilingConfig{
			Enabled:   cfg.Profiling.Enabled,
			SkipPaths: []string{"/health", "/api/v1/health"},
		}),
		middleware.CORSWithConfig(corsConfig),
		middleware.Secure(),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
		middleware.Timeout(cfg.HTTP.WriteTimeout),
	)

	healthHandler := handler.NewHealthHandler(db, version)
	engine.GET("/health", healthHandler.Health)
	engine.GET("/api/v1/health", healthHandler.Health)

	jwtConfig := middleware.DefaultJWTConfig(auth.NewJWTService(cfg.JWT))
	jwtConfig.Logger = log

	var scanRateLimit gin.HandlerFunc
	if cfg.RateLimit.Enabled {
		scanRateLimit = middleware.RateLimit(middleware.RateLimitConfig{
			Limiter: scanLimiter,
			Prefix:  "scan-receipt",
			Metrics: financeMetrics,
			Logger:  log,
		})
	}

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(
		middleware.JWTAuthMiddlewareWithConfig(jwtConfig),
		middleware.ResolveUser(userService, log),
		middleware.SpanEnricher(),
	)
	r.Register(router.DomainGroups(router.Handlers{
		Account:     handler.NewAccountHandler(accountService),
		Transaction: handler.NewTransactionHandler(transactionService, scanService),
		Category:    handler.NewCategoryHandler(),
		Dashboard:   handler.NewDashboardHandler(accountService, transactionService, budgetService),
		Budget:      handler.NewBudgetHandler(budgetService),
	}, router.RouteOptions{
		ReceiptRateLimit: scanRateLimit,
		MaxReceiptSize:   cfg.HTTP.MaxReceiptSize,
	})...)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Warn("Error stopping profiler", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down metrics", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down tracing", zap.Error(err))
	}
	if err := logProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down log exporter", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
