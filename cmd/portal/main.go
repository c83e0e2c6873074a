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
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	dispatchapp "github.com/papermill/portal/internal/application/dispatch"
	inventoryapp "github.com/papermill/portal/internal/application/inventory"
	orderapp "github.com/papermill/portal/internal/application/order"
	planningapp "github.com/papermill/portal/internal/application/planning"
	reportapp "github.com/papermill/portal/internal/application/report"
	traceabilityapp "github.com/papermill/portal/internal/application/traceability"
	"github.com/papermill/portal/internal/infrastructure/auth"
	"github.com/papermill/portal/internal/infrastructure/backend"
	"github.com/papermill/portal/internal/infrastructure/cache"
	"github.com/papermill/portal/internal/infrastructure/config"
	"github.com/papermill/portal/internal/infrastructure/logger"
	"github.com/papermill/portal/internal/infrastructure/printing"
	"github.com/papermill/portal/internal/infrastructure/realtime"
	"github.com/papermill/portal/internal/infrastructure/telemetry"
	"github.com/papermill/portal/internal/interfaces/http/handler"
	"github.com/papermill/portal/internal/interfaces/http/middleware"
	"github.com/papermill/portal/internal/interfaces/http/router"
)

// version is stamped at build time with -ldflags "-X main.version=..."
var version = "dev"

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
		_ = logger.Sync(log)
	}()

	rootCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	// Telemetry: traces, metrics and the zap log bridge
	tel, err := telemetry.Setup(rootCtx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := tel.Shutdown(ctx); err != nil {
			log.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()
	log = tel.Logs.Bridge(log, zapcore.InfoLevel)

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Profiling.Enabled,
		ServerAddress:     cfg.Profiling.ServerAddress,
		ApplicationName:   cfg.Telemetry.ServiceName,
		BasicAuthUser:     cfg.Profiling.BasicAuthUser,
		BasicAuthPassword: cfg.Profiling.BasicAuthPass,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	defer func() {
		_ = profiler.Stop()
	}()
	if profiler.IsEnabled() {
		tel.Tracer.EnableSpanProfiles()
	}

	log.Info("Starting paper portal",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("backend", cfg.Backend.BaseURL),
		zap.String("version", version),
	)

	// Document ledger
	db, err := openLedger(cfg, log)
	if err != nil {
		log.Fatal("Failed to open document ledger", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	// Reference cache and submit de-duplication
	stores, err := cache.NewFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.Cache.FallbackToMemory),
	).Create(rootCtx)
	if err != nil {
		log.Fatal("Failed to initialize cache", zap.Error(err))
	}
	defer func() {
		_ = stores.Close()
	}()
	log.Info("Cache ready", zap.String("backend", stores.Backend))

	// ERP backend client
	erp, err := backend.New(backend.Config{
		BaseURL:            cfg.Backend.BaseURL,
		Timeout:            cfg.Backend.Timeout,
		SkipBrowserWarning: cfg.Backend.SkipBrowserWarning,
		UserAgent:          cfg.Backend.UserAgent,
		MaxResponseBytes:   cfg.Backend.MaxResponseBytes,
	}, backend.WithLogger(log), backend.WithRecorder(tel.Metrics))
	if err != nil {
		log.Fatal("Invalid backend configuration", zap.Error(err))
	}

	// Live updates
	hub := realtime.NewHub(log, cfg.HTTP.CORSAllowOrigins)
	defer hub.Close()

	// Application services
	refTTL := cfg.Cache.ReferenceTTL
	orderService := orderapp.NewService(erp, stores.Reference, refTTL, hub, log)
	planningService := planningapp.NewService(erp, hub, log)
	traceService := traceabilityapp.NewService(erp, log)
	inventoryService := inventoryapp.NewService(erp, stores.Reference, refTTL, hub, log)
	dispatchService := dispatchapp.NewService(erp, hub, log)
	reportService := reportapp.NewService(erp, log)

	documentService, closeDocuments, err := newDocumentService(rootCtx, cfg, erp, db, tel.Metrics, log)
	if err != nil {
		log.Fatal("Failed to initialize document generation", zap.Error(err))
	}
	defer closeDocuments()
	go documentService.RunCleanup(rootCtx, 6*time.Hour)

	// Sessions
	sessions, err := auth.NewSessionService(cfg.Session, auth.NewCacheRevoker(stores.Reference))
	if err != nil {
		log.Fatal("Invalid session configuration", zap.Error(err))
	}

	// Handlers
	authHandler := handler.NewAuthHandler(erp, sessions, cfg.Session.CookieName, cfg.Cookie)
	orderHandler := handler.NewOrderHandler(orderService)
	dispatchHandler := handler.NewDispatchHandler(dispatchService)
	reportHandler := handler.NewReportHandler(reportService)
	inventoryHandler := handler.NewInventoryHandler(inventoryService)
	documentHandler := handler.NewDocumentHandler(documentService)
	barcodeHandler := handler.NewBarcodeHandler(traceService)
	handlers := router.Handlers{
		Auth:      authHandler,
		Orders:    orderHandler,
		Planning:  handler.NewPlanningHandler(planningService),
		Barcode:   barcodeHandler,
		Inventory: inventoryHandler,
		Dispatch:  dispatchHandler,
		Reports:   reportHandler,
		Documents: documentHandler,
		System:    handler.NewSystemHandler(cfg.App.Name, version, erp, db),
		Pages: handler.NewPageHandler(authHandler, handler.PageServices{
			Orders:     orderService,
			Plans:      planningService,
			Dispatches: dispatchService,
			Barcodes:   traceService,
			Reports:    reportService,
			Inventory:  inventoryService,
			Documents:  documentService,
		}),
		Realtime: hub,
	}

	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	templateEngine := printing.NewTemplateEngine()
	pages, err := handler.LoadPageTemplates(templateEngine.GetFuncMap())
	if err != nil {
		log.Fatal("Failed to parse page templates", zap.Error(err))
	}
	engine.SetHTMLTemplate(pages)

	httpMetrics, err := middleware.HTTPMetrics(tel.Meter.Meter(telemetry.TracerName))
	if err != nil {
		log.Fatal("Failed to create HTTP metrics", zap.Error(err))
	}

	// Global middleware (order matters)
	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	security := middleware.DefaultSecurityConfig()
	security.HSTSEnabled = cfg.IsProduction()

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log, "/health"))
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
		SkipPaths:   []string{"/health", "/ws"},
	}))
	engine.Use(middleware.SpanEnricher())
	engine.Use(middleware.Profiling(profiler.IsEnabled(), "/health"))
	engine.Use(httpMetrics)
	engine.Use(middleware.SecureWithConfig(security))
	engine.Use(middleware.CORSWithConfig(cors))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(rootCtx, cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(limiter, "all:"))
	}

	// Route guards
	loginLimiter := middleware.NewRateLimiter(rootCtx, cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
	guards := router.Guards{
		APISession: middleware.Session(middleware.SessionConfig{
			Sessions:   sessions,
			CookieName: cfg.Session.CookieName,
			OnError:    middleware.APIAuthError,
			Logger:     log,
		}),
		PageSession: middleware.Session(middleware.SessionConfig{
			Sessions:   sessions,
			CookieName: cfg.Session.CookieName,
			OnError:    middleware.PageAuthRedirect,
			Logger:     log,
		}),
		LoginLimit: middleware.RateLimit(loginLimiter, "login:"),
		Idempotency: middleware.Idempotency(middleware.IdempotencyConfig{
			Store:  stores.Idempotency,
			TTL:    cfg.Cache.IdempotencyTTL,
			Logger: log,
		}),
	}

	router.Mount(engine, handlers, guards)

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
	stopBackground()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// companyInfo maps the configured letterhead onto the print model
func companyInfo(c config.CompanyConfig) printing.CompanyInfo {
	return printing.CompanyInfo{
		Name:        c.Name,
		Address:     c.Address,
		Phone:       c.Phone,
		Email:       c.Email,
		GSTIN:       c.GSTIN,
		StateCode:   c.StateCode,
		StateName:   c.StateName,
		BankName:    c.BankName,
		BankAccount: c.BankAcct,
		BankIFSC:    c.BankIFSC,
	}
}

func challanSettings(d config.DocumentsConfig) printing.ChallanSettings {
	return printing.ChallanSettings{
		HSNCode:          d.HSNCode,
		GSTRatePercent:   decimal.NewFromFloat(d.GSTRatePercent),
		CompanyStateCode: d.Company.StateCode,
	}
}
