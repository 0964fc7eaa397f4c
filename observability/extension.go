package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/djoldoshevv/Turniti/ext"
	"github.com/djoldoshevv/Turniti/job"
)

// meterName is the instrumentation scope name for relay metrics.
const meterName = "github.com/djoldoshevv/Turniti"

// Compile-time interface checks.
var (
	_ ext.Extension      = (*MetricsExtension)(nil)
	_ ext.JobAdmitted    = (*MetricsExtension)(nil)
	_ ext.JobCompleted   = (*MetricsExtension)(nil)
	_ ext.JobRejected    = (*MetricsExtension)(nil)
	_ ext.JobFailed      = (*MetricsExtension)(nil)
	_ ext.AccessDenied   = (*MetricsExtension)(nil)
	_ ext.DeliveryFailed = (*MetricsExtension)(nil)
)

// MetricsExtension records lifecycle counters. Register it as a relay
// extension to track admission rates, completion counts, rejection and
// denial rates, and delivery failures.
type MetricsExtension struct {
	admitted       metric.Int64Counter
	completed      metric.Int64Counter
	rejected       metric.Int64Counter
	failed         metric.Int64Counter
	denied         metric.Int64Counter
	deliveryFailed metric.Int64Counter
}

// NewMetricsExtension creates a MetricsExtension using the global OTel
// MeterProvider. Without a configured provider all instruments are
// noops.
func NewMetricsExtension() *MetricsExtension {
	return NewMetricsExtensionWithMeter(otel.Meter(meterName))
}

// NewMetricsExtensionWithMeter creates a MetricsExtension with the
// provided meter. This variant allows injecting a specific
// MeterProvider for testing.
func NewMetricsExtensionWithMeter(meter metric.Meter) *MetricsExtension {
	counter := func(name, desc string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit("{job}"))
		_ = err // noop fallback guaranteed by OTel API contract
		return c
	}
	return &MetricsExtension{
		admitted:       counter("turniti.job.admitted", "Jobs handed to a runner"),
		completed:      counter("turniti.job.completed", "Jobs that produced and delivered an artifact"),
		rejected:       counter("turniti.job.rejected", "Jobs rejected for unsupported input format"),
		failed:         counter("turniti.job.failed", "Jobs that failed or timed out during processing"),
		denied:         counter("turniti.access.denied", "Jobs denied for lack of subscription or credits"),
		deliveryFailed: counter("turniti.delivery.failed", "Produced artifacts that could not be delivered"),
	}
}

// Name implements ext.Extension.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnJobAdmitted implements ext.JobAdmitted.
func (m *MetricsExtension) OnJobAdmitted(ctx context.Context, _ *job.Job) error {
	m.admitted.Add(ctx, 1)
	return nil
}

// OnJobCompleted implements ext.JobCompleted.
func (m *MetricsExtension) OnJobCompleted(ctx context.Context, _ *job.Job, _ time.Duration) error {
	m.completed.Add(ctx, 1)
	return nil
}

// OnJobRejected implements ext.JobRejected.
func (m *MetricsExtension) OnJobRejected(ctx context.Context, _ *job.Job) error {
	m.rejected.Add(ctx, 1)
	return nil
}

// OnJobFailed implements ext.JobFailed.
func (m *MetricsExtension) OnJobFailed(ctx context.Context, _ *job.Job, _ error) error {
	m.failed.Add(ctx, 1)
	return nil
}

// OnAccessDenied implements ext.AccessDenied.
func (m *MetricsExtension) OnAccessDenied(ctx context.Context, _ *job.Job) error {
	m.denied.Add(ctx, 1)
	return nil
}

// OnDeliveryFailed implements ext.DeliveryFailed.
func (m *MetricsExtension) OnDeliveryFailed(ctx context.Context, _ *job.Job, _ error) error {
	m.deliveryFailed.Add(ctx, 1)
	return nil
}
