// Package observability wires the OpenTelemetry metric SDK to the Prometheus
// exporter and records match-run level instruments.
package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

type Observability struct {
	meterProvider *metric.MeterProvider
	meter         otelmetric.Meter
	jobCounter    otelmetric.Int64Counter
	jobDuration   otelmetric.Float64Histogram
	matchRuns     otelmetric.Int64Counter
	matchDuration otelmetric.Float64Histogram
	matchReturned otelmetric.Int64Histogram
}

// New registers a Prometheus exporter on the default registry and installs the
// provider globally.
func New(serviceName string) (*Observability, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	o, err := NewWithReader(serviceName, exporter)
	if err != nil {
		return nil, err
	}
	otel.SetMeterProvider(o.meterProvider)
	return o, nil
}

// NewWithReader builds the instruments on a provider backed by reader.
func NewWithReader(serviceName string, reader metric.Reader) (*Observability, error) {
	provider := metric.NewMeterProvider(metric.WithReader(reader))
	meter := provider.Meter(serviceName)

	o := &Observability{meterProvider: provider, meter: meter}

	var err error
	if o.jobCounter, err = meter.Int64Counter(
		"jobs.processed",
		otelmetric.WithDescription("Number of jobs processed"),
	); err != nil {
		return nil, err
	}

	if o.jobDuration, err = meter.Float64Histogram(
		"jobs.duration",
		otelmetric.WithDescription("Job processing duration"),
		otelmetric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}

	if o.matchRuns, err = meter.Int64Counter(
		"matching.runs",
		otelmetric.WithDescription("Number of match runs by outcome"),
	); err != nil {
		return nil, err
	}

	if o.matchDuration, err = meter.Float64Histogram(
		"matching.duration",
		otelmetric.WithDescription("Match run duration"),
		otelmetric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}

	if o.matchReturned, err = meter.Int64Histogram(
		"matching.returned",
		otelmetric.WithDescription("Matches returned per run after truncation"),
	); err != nil {
		return nil, err
	}

	return o, nil
}

func (o *Observability) RecordJobProcessed(ctx context.Context, taskType, status string) {
	if o == nil || o.jobCounter == nil {
		return
	}
	o.jobCounter.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("task_type", taskType),
		attribute.String("status", status),
	))
}

func (o *Observability) RecordJobDuration(ctx context.Context, taskType string, duration time.Duration, status string) {
	if o == nil || o.jobDuration == nil {
		return
	}
	o.jobDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
		attribute.String("task_type", taskType),
		attribute.String("status", status),
	))
}

// RecordMatchRun records one engine invocation. returned is ignored for
// failed runs.
func (o *Observability) RecordMatchRun(ctx context.Context, status string, returned int, duration time.Duration) {
	if o == nil || o.matchRuns == nil {
		return
	}
	attrs := otelmetric.WithAttributes(attribute.String("status", status))
	o.matchRuns.Add(ctx, 1, attrs)
	o.matchDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	if status == "success" {
		o.matchReturned.Record(ctx, int64(returned))
	}
}

func (o *Observability) Shutdown(ctx context.Context) error {
	if o == nil || o.meterProvider == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return o.meterProvider.Shutdown(ctx)
}
