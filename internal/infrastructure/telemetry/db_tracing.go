package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for ledger database tracing.
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool // include bound values in spans; development only
	SlowQueryThresh time.Duration
	DBSystem        string
}

// DBTracing is a gorm plugin that installs otelgorm and flags slow queries
// on the active span.
type DBTracing struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracing creates the plugin. Zero thresholds default to 200ms.
func NewDBTracing(cfg DBTracingConfig, logger *zap.Logger) *DBTracing {
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}
	if cfg.DBSystem == "" {
		cfg.DBSystem = "postgresql"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DBTracing{config: cfg, logger: logger}
}

// Name implements gorm.Plugin
func (p *DBTracing) Name() string {
	return "portal:db_tracing"
}

// Initialize implements gorm.Plugin
func (p *DBTracing) Initialize(db *gorm.DB) error {
	if !p.config.Enabled {
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(p.config.DBSystem)}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	cb := db.Callback()
	if err := errors.Join(
		cb.Create().Before("gorm:create").Register("portal_timing:before_create", p.before),
		cb.Query().Before("gorm:query").Register("portal_timing:before_query", p.before),
		cb.Update().Before("gorm:update").Register("portal_timing:before_update", p.before),
		cb.Delete().Before("gorm:delete").Register("portal_timing:before_delete", p.before),
		cb.Raw().Before("gorm:raw").Register("portal_timing:before_raw", p.before),
		cb.Create().After("gorm:create").Register("portal_timing:after_create", p.after),
		cb.Query().After("gorm:query").Register("portal_timing:after_query", p.after),
		cb.Update().After("gorm:update").Register("portal_timing:after_update", p.after),
		cb.Delete().After("gorm:delete").Register("portal_timing:after_delete", p.after),
		cb.Raw().After("gorm:raw").Register("portal_timing:after_raw", p.after),
	); err != nil {
		return err
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
	)
	return nil
}

type queryStartKey struct{}

func (p *DBTracing) before(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey{}, time.Now())
	}
}

func (p *DBTracing) after(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok {
		return
	}
	elapsed := time.Since(start)
	if elapsed <= p.config.SlowQueryThresh {
		return
	}

	p.logger.Warn("Slow ledger query",
		zap.String("table", db.Statement.Table),
		zap.Duration("elapsed", elapsed),
	)
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.SetAttributes(
		attribute.Bool("db.slow_query", true),
		attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
	)
}
