package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Outcomes of a consistency pass
const (
	OutcomeOK           = "ok"
	OutcomeViolation    = "violation"
	OutcomeInvalidField = "invalid_field"
	OutcomeError        = "error"
)

// ErrMeterNil is returned when no meter is supplied
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// ScopeMetrics counts consistency passes, the violations they report and
// how long they take.
type ScopeMetrics struct {
	checks     *Counter
	violations *Counter
	duration   *Histogram
}

// NewScopeMetrics registers the checker instruments on meter
func NewScopeMetrics(meter metric.Meter) (*ScopeMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	checks, err := NewCounter(meter, "scope_checks_total", "Number of operating unit consistency passes", "{check}")
	if err != nil {
		return nil, err
	}
	violations, err := NewCounter(meter, "scope_violations_total", "Number of incompatible references found", "{violation}")
	if err != nil {
		return nil, err
	}
	duration, err := NewHistogram(meter, HistogramOpts{
		Name:        "scope_check_duration_seconds",
		Description: "Duration of an operating unit consistency pass",
		Unit:        "s",
		Boundaries:  CheckDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	return &ScopeMetrics{checks: checks, violations: violations, duration: duration}, nil
}

// RecordCheck records one pass over model. A nil receiver is a no-op.
func (m *ScopeMetrics) RecordCheck(ctx context.Context, operation, model, outcome string, violations int, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{AttrOperation.String(operation), AttrModel.String(model)}
	m.checks.Inc(ctx, append(attrs, AttrOutcome.String(outcome))...)
	if violations > 0 {
		m.violations.Add(ctx, int64(violations), attrs...)
	}
	m.duration.RecordDuration(ctx, elapsed, attrs...)
}
