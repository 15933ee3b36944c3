package otel

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	replayMetrics     *ReplayMetrics
	replayMetricsOnce sync.Once
)

// ReplayMetrics holds the metrics instruments for event stream replay
type ReplayMetrics struct {
	// Latency metrics
	eventLatency metric.Float64Histogram

	// Traffic metrics
	eventsTotal metric.Int64Counter

	// Error metrics
	errorsTotal metric.Int64Counter
}

// NewReplayMetrics creates a new ReplayMetrics instance
func NewReplayMetrics(meter metric.Meter) (*ReplayMetrics, error) {
	eventLatency, err := meter.Float64Histogram(
		"replay.event.duration",
		metric.WithDescription("Time spent applying one event (seconds)"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	eventsTotal, err := meter.Int64Counter(
		"replay.events.total",
		metric.WithDescription("Total number of events applied"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, err
	}

	errorsTotal, err := meter.Int64Counter(
		"replay.errors.total",
		metric.WithDescription("Total number of events that failed"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	return &ReplayMetrics{
		eventLatency: eventLatency,
		eventsTotal:  eventsTotal,
		errorsTotal:  errorsTotal,
	}, nil
}

// GetReplayMetrics returns a singleton instance of ReplayMetrics bound to the
// global meter provider
func GetReplayMetrics() *ReplayMetrics {
	replayMetricsOnce.Do(func() {
		m, err := NewReplayMetrics(otel.GetMeterProvider().Meter(instrumentationName))
		if err != nil {
			m = &ReplayMetrics{}
		}
		replayMetrics = m
	})
	return replayMetrics
}

// RecordEvent records the latency and outcome of one applied event
func (m *ReplayMetrics) RecordEvent(ctx context.Context, kind string, duration time.Duration, err error) {
	if m == nil || m.eventsTotal == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String("event.kind", kind))
	m.eventsTotal.Add(ctx, 1, attrs)
	m.eventLatency.Record(ctx, duration.Seconds(), attrs)
	if err != nil {
		m.errorsTotal.Add(ctx, 1, attrs)
	}
}
