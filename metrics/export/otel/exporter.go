package otel

import (
	"context"
	"errors"
	"fmt"

	authkit "github.com/Hydrex75/authkit"
	"github.com/Hydrex75/authkit/metrics/export/internaldefs"
	"go.opentelemetry.io/otel/metric"
)

var (
	ErrNilMeter  = errors.New("nil meter")
	ErrNilSource = errors.New("nil metrics source")
)

// latencyBucketLabels names the authenticate-latency buckets by their
// upper bound in milliseconds, matching the fixed 5ms..500ms layout.
var latencyBucketLabels = [8]string{"5ms", "10ms", "25ms", "50ms", "100ms", "250ms", "500ms", "inf"}

type metricsSource interface {
	MetricsSnapshot() authkit.MetricsSnapshot
	AuditDropped() uint64
}

// OTelExporter bridges the service's counters and its authenticate-latency
// histogram onto observable OpenTelemetry instruments. Collection is
// pull-based: every reader collect takes one snapshot inside a single
// callback, so counter and bucket values stay mutually consistent.
type OTelExporter struct {
	source         metricsSource
	registration   metric.Registration
	counters       map[authkit.MetricID]metric.Int64ObservableCounter
	latencyBuckets [8]metric.Int64ObservableGauge
	latencyCount   metric.Int64ObservableGauge
	auditDropped   metric.Int64ObservableCounter
}

func NewOTelExporter(meter metric.Meter, svc *authkit.Service) (*OTelExporter, error) {
	return NewOTelExporterFromSource(meter, svc)
}

func NewOTelExporterFromSource(meter metric.Meter, source metricsSource) (*OTelExporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	exporter := &OTelExporter{
		source:   source,
		counters: make(map[authkit.MetricID]metric.Int64ObservableCounter, len(internaldefs.CounterDefs)),
	}

	observables := make([]metric.Observable, 0, len(internaldefs.CounterDefs)+len(latencyBucketLabels)+2)

	for _, def := range internaldefs.CounterDefs {
		ins, err := meter.Int64ObservableCounter(def.Name, metric.WithDescription(def.Help))
		if err != nil {
			return nil, fmt.Errorf("create observable counter %s: %w", def.Name, err)
		}
		exporter.counters[def.ID] = ins
		observables = append(observables, ins)
	}

	for i, label := range latencyBucketLabels {
		name := "authkit_authenticate_latency_le_" + label
		ins, err := meter.Int64ObservableGauge(name,
			metric.WithDescription("Cumulative count of authenticate calls finishing within the named bound."))
		if err != nil {
			return nil, fmt.Errorf("create latency bucket gauge %s: %w", name, err)
		}
		exporter.latencyBuckets[i] = ins
		observables = append(observables, ins)
	}

	latencyCount, err := meter.Int64ObservableGauge("authkit_authenticate_latency_count",
		metric.WithDescription("Total authenticate latency samples."))
	if err != nil {
		return nil, fmt.Errorf("create latency count gauge: %w", err)
	}
	exporter.latencyCount = latencyCount
	observables = append(observables, latencyCount)

	auditDropped, err := meter.Int64ObservableCounter(
		"authkit_audit_dropped_total",
		metric.WithDescription("Dropped audit events due to dispatcher backpressure."),
	)
	if err != nil {
		return nil, fmt.Errorf("create audit dropped counter: %w", err)
	}
	exporter.auditDropped = auditDropped
	observables = append(observables, auditDropped)

	registration, err := meter.RegisterCallback(exporter.observe, observables...)
	if err != nil {
		return nil, fmt.Errorf("register callback: %w", err)
	}

	exporter.registration = registration
	return exporter, nil
}

func (e *OTelExporter) observe(_ context.Context, observer metric.Observer) error {
	snapshot := e.source.MetricsSnapshot()
	for id, ins := range e.counters {
		observer.ObserveInt64(ins, int64(snapshot.Counters[id]))
	}

	cumulative := internaldefs.CumulativeBuckets(
		internaldefs.NormalizeBuckets(snapshot.Histograms[authkit.MetricAuthenticateLatency]))
	for i := range e.latencyBuckets {
		observer.ObserveInt64(e.latencyBuckets[i], int64(cumulative[i]))
	}
	observer.ObserveInt64(e.latencyCount, int64(cumulative[len(cumulative)-1]))
	observer.ObserveInt64(e.auditDropped, int64(e.source.AuditDropped()))
	return nil
}

func (e *OTelExporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
