// Package observe holds the OpenTelemetry instruments of hanserve and the
// Prometheus bridge that exposes them.
//
// Tests should build their own [Metrics] with [NewMetrics] over a manual
// reader; [DefaultMetrics] binds to the global meter provider.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/bastiangx/hanserve"

// Request outcome values for the status attribute.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Metrics holds every instrument. The OTel types synchronize themselves.
type Metrics struct {
	// Requests counts IPC requests by op and status.
	Requests metric.Int64Counter

	// RequestDuration tracks request handling time by op.
	RequestDuration metric.Float64Histogram

	// Results tracks how many candidates a lookup returned, by op.
	Results metric.Int64Histogram

	// DictEntries counts entries read from dictionaries, by dictionary and
	// whether they were new to the index.
	DictEntries metric.Int64Counter
}

// lookups are expected in the tens of microseconds
var latencyBuckets = []float64{
	0.00001, 0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.05,
}

var resultBuckets = []float64{0, 1, 5, 10, 25, 50, 100}

// NewMetrics creates the instruments on mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.Requests, err = m.Int64Counter("hanserve.requests",
		metric.WithDescription("IPC requests by op and status."),
	); err != nil {
		return nil, err
	}
	if met.RequestDuration, err = m.Float64Histogram("hanserve.request.duration",
		metric.WithDescription("Time spent handling one IPC request."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.Results, err = m.Int64Histogram("hanserve.results",
		metric.WithDescription("Candidates returned per lookup."),
		metric.WithExplicitBucketBoundaries(resultBuckets...),
	); err != nil {
		return nil, err
	}
	if met.DictEntries, err = m.Int64Counter("hanserve.dict.entries",
		metric.WithDescription("Dictionary entries read at load time."),
	); err != nil {
		return nil, err
	}
	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level instance bound to the global
// meter provider. Install the provider with InitProvider before the first
// call, or the instruments stay no-ops.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordRequest records one handled request.
func (m *Metrics) RecordRequest(ctx context.Context, op, status string, elapsed time.Duration) {
	opAttr := attribute.String("op", op)
	m.Requests.Add(ctx, 1, metric.WithAttributes(opAttr, attribute.String("status", status)))
	m.RequestDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(opAttr))
}

// RecordResults records the size of a lookup result.
func (m *Metrics) RecordResults(ctx context.Context, op string, n int) {
	m.Results.Record(ctx, int64(n), metric.WithAttributes(attribute.String("op", op)))
}

// RecordDictionary records what one dictionary contributed.
func (m *Metrics) RecordDictionary(ctx context.Context, name string, entries, inserted int) {
	dict := attribute.String("dict", name)
	m.DictEntries.Add(ctx, int64(inserted), metric.WithAttributes(dict, attribute.Bool("new", true)))
	if dup := entries - inserted; dup > 0 {
		m.DictEntries.Add(ctx, int64(dup), metric.WithAttributes(dict, attribute.Bool("new", false)))
	}
}
