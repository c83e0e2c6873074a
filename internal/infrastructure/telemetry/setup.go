package telemetry

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Providers bundles the signal providers so main can shut them down together
type Providers struct {
	Tracer  *TracerProvider
	Meter   *MeterProvider
	Logs    *LoggerProvider
	Metrics *PortalMetrics
}

// Setup initialises tracing, metrics, the log pipeline and the portal's
// instruments. Disabled telemetry yields working no-op providers.
func Setup(ctx context.Context, cfg Config, logger *zap.Logger) (*Providers, error) {
	tp, err := NewTracerProvider(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	mp, err := NewMeterProvider(ctx, cfg, 30*time.Second, logger)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, err
	}
	lp, err := NewLoggerProvider(ctx, cfg, logger)
	if err != nil {
		_ = errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
		return nil, err
	}
	pm, err := NewPortalMetrics(mp.Meter(TracerName))
	if err != nil {
		_ = errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx), lp.Shutdown(ctx))
		return nil, err
	}
	return &Providers{Tracer: tp, Meter: mp, Logs: lp, Metrics: pm}, nil
}

// Shutdown flushes every provider
func (p *Providers) Shutdown(ctx context.Context) error {
	return errors.Join(p.Tracer.Shutdown(ctx), p.Meter.Shutdown(ctx), p.Logs.Shutdown(ctx))
}
