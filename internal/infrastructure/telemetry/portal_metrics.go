package telemetry

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
var (
	AttrKeyMethod  = attribute.Key("http.request.method")
	AttrKeyRoute   = attribute.Key("backend.route")
	AttrKeyStatus  = attribute.Key("http.response.status_code")
	AttrKeyClass   = attribute.Key("error.class")
	AttrKeyDocType = attribute.Key("document.type")
	AttrKeyOutcome = attribute.Key("outcome")
)

// PortalMetrics holds the portal's own instruments: backend call latency
// and failures, and generated documents.
type PortalMetrics struct {
	backendDuration   metric.Float64Histogram
	backendErrors     metric.Int64Counter
	documentsRendered metric.Int64Counter
	renderDuration    metric.Float64Histogram
}

// NewPortalMetrics creates the instruments on meter
func NewPortalMetrics(meter metric.Meter) (*PortalMetrics, error) {
	m := &PortalMetrics{}
	var err error

	m.backendDuration, err = meter.Float64Histogram("portal.backend.request.duration",
		metric.WithDescription("Latency of ERP backend calls"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30),
	)
	if err != nil {
		return nil, err
	}

	m.backendErrors, err = meter.Int64Counter("portal.backend.request.errors",
		metric.WithDescription("ERP backend calls that failed or returned an error status"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	m.documentsRendered, err = meter.Int64Counter("portal.documents.rendered",
		metric.WithDescription("Documents rendered to PDF"),
		metric.WithUnit("{document}"),
	)
	if err != nil {
		return nil, err
	}

	m.renderDuration, err = meter.Float64Histogram("portal.documents.render.duration",
		metric.WithDescription("Time to render a document to PDF"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// RecordBackendCall implements backend.CallRecorder. Status zero means
// the request never got a response.
func (m *PortalMetrics) RecordBackendCall(ctx context.Context, method, route string, status int, d time.Duration) {
	attrs := metric.WithAttributes(
		AttrKeyMethod.String(method),
		AttrKeyRoute.String(route),
		AttrKeyStatus.Int(status),
	)
	m.backendDuration.Record(ctx, d.Seconds(), attrs)

	class := errorClass(status)
	if class == "" {
		return
	}
	m.backendErrors.Add(ctx, 1, metric.WithAttributes(
		AttrKeyMethod.String(method),
		AttrKeyRoute.String(route),
		AttrKeyClass.String(class),
	))
}

// RecordDocumentRendered counts one document generation attempt
func (m *PortalMetrics) RecordDocumentRendered(ctx context.Context, docType string, d time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	attrs := metric.WithAttributes(AttrKeyDocType.String(docType), AttrKeyOutcome.String(outcome))
	m.documentsRendered.Add(ctx, 1, attrs)
	m.renderDuration.Record(ctx, d.Seconds(), attrs)
}

func errorClass(status int) string {
	switch {
	case status == 0:
		return "transport"
	case status >= 500:
		return "5xx"
	case status >= 400:
		return strconv.Itoa(status)
	}
	return ""
}
