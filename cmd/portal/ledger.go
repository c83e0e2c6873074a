package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	printingapp "github.com/papermill/portal/internal/application/printing"
	"github.com/papermill/portal/internal/infrastructure/backend"
	"github.com/papermill/portal/internal/infrastructure/config"
	"github.com/papermill/portal/internal/infrastructure/logger"
	"github.com/papermill/portal/internal/infrastructure/migration"
	"github.com/papermill/portal/internal/infrastructure/persistence"
	"github.com/papermill/portal/internal/infrastructure/printing"
	"github.com/papermill/portal/internal/infrastructure/printing/providers"
	"github.com/papermill/portal/internal/infrastructure/storage"
	"github.com/papermill/portal/internal/infrastructure/telemetry"
)

// openLedger connects the print job database and brings its schema up to
// date. Postgres runs the versioned migrations; sqlite is auto-migrated.
func openLedger(cfg *config.Config, log *zap.Logger) (*persistence.Database, error) {
	opts := []persistence.Option{
		persistence.WithLogger(log, logger.MapGormLogLevel(cfg.Log.Level)),
	}
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		opts = append(opts, persistence.WithPlugins(telemetry.NewDBTracing(telemetry.DBTracingConfig{
			Enabled:         true,
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: 200 * time.Millisecond,
			DBSystem:        cfg.Database.Driver,
		}, log)))
	}

	db, err := persistence.NewDatabase(&cfg.Database, opts...)
	if err != nil {
		return nil, err
	}

	if db.Driver != persistence.DriverPostgres {
		if err := db.AutoMigrate(); err != nil {
			_ = db.Close()
			return nil, err
		}
		log.Info("Document ledger ready", zap.String("driver", db.Driver))
		return db, nil
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	m, err := migration.New(sqlDB, "", log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	// the migrator shares sqlDB; closing it would close the pool
	if err := m.Up(); err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Info("Document ledger ready", zap.String("driver", db.Driver))
	return db, nil
}

// newDocumentService assembles PDF rendering, archive storage and the job
// ledger. The returned func releases the browser.
func newDocumentService(
	ctx context.Context,
	cfg *config.Config,
	erp *backend.Client,
	db *persistence.Database,
	recorder printingapp.RenderRecorder,
	log *zap.Logger,
) (*printingapp.DocumentService, func(), error) {
	templates, err := printing.NewTemplateStore(&printing.TemplateStoreConfig{
		ExternalDir: cfg.Documents.TemplateDir,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load print templates: %w", err)
	}

	pdfStorage, err := newPDFStorage(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}

	renderer, err := printing.NewChromedpRenderer(&printing.ChromedpConfig{
		DefaultTimeout: cfg.Documents.RenderTimeout,
		ExecPath:       cfg.Chrome.ExecPath,
		RemoteURL:      cfg.Chrome.RemoteURL,
		NoSandbox:      cfg.Chrome.NoSandbox,
		MaxParallel:    cfg.Chrome.MaxParallel,
		Logger:         log,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create PDF renderer: %w", err)
	}

	registry := providers.NewDefaultRegistry(erp, companyInfo(cfg.Documents.Company), challanSettings(cfg.Documents))

	svc := printingapp.NewDocumentService(
		registry,
		templates,
		printing.NewTemplateEngine(),
		renderer,
		pdfStorage,
		persistence.NewGormPrintJobRepository(db.DB),
		printingapp.Config{
			RenderTimeout: cfg.Documents.RenderTimeout,
			Retention:     time.Duration(cfg.Documents.RetentionDays) * 24 * time.Hour,
			LinkTTL:       cfg.Storage.S3.PresignExpiry,
		},
		printingapp.WithRecorder(recorder),
		printingapp.WithLogger(log),
	)
	closeFn := func() {
		if err := renderer.Close(); err != nil {
			log.Warn("Error closing PDF renderer", zap.Error(err))
		}
	}
	return svc, closeFn, nil
}

func newPDFStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (printing.PDFStorage, error) {
	if cfg.Storage.Type != "s3" {
		return printing.NewFileSystemStorage(&printing.FileSystemStorageConfig{
			BasePath: cfg.Documents.OutputDir,
			Logger:   log,
		})
	}

	store, err := storage.NewS3ObjectStorage(ctx, &cfg.Storage.S3,
		storage.WithLogger(log),
		storage.WithPresignExpiration(cfg.Storage.S3.PresignExpiry),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 storage: %w", err)
	}
	if err := store.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	log.Info("Archiving documents to S3", zap.String("bucket", store.GetBucket()))
	return printing.NewS3PDFStorage(store, "documents", log), nil
}
