package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "photo-mentor"

// Metrics holds all OTEL metric instruments for photo-mentor.
// All instruments are safe for concurrent use. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	// LLM token counters (partitioned by provider + model via attributes)
	InputTokens  metric.Int64Counter
	OutputTokens metric.Int64Counter

	// Analysis counters (partitioned by mode + outcome)
	Analyses         metric.Int64Counter
	AnalysisDuration metric.Float64Histogram

	// Session transitions (partitioned by event + resulting phase)
	Transitions metric.Int64Counter
}

// NewMetrics creates all metric instruments. Returns no-op instruments
// when no MeterProvider is registered (safe to call unconditionally).
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.InputTokens, err = meter.Int64Counter("llm.tokens.input",
		metric.WithDescription("Total LLM input tokens consumed"),
		metric.WithUnit("{token}"))
	if err != nil {
		return nil, err
	}

	m.OutputTokens, err = meter.Int64Counter("llm.tokens.output",
		metric.WithDescription("Total LLM output tokens consumed"),
		metric.WithUnit("{token}"))
	if err != nil {
		return nil, err
	}

	m.Analyses, err = meter.Int64Counter("analyses.total",
		metric.WithDescription("Photo analyses partitioned by mode and outcome (success, input, provider, schema)"))
	if err != nil {
		return nil, err
	}

	m.AnalysisDuration, err = meter.Float64Histogram("analyses.duration",
		metric.WithDescription("Wall-clock time of one photo analysis including the provider call"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	m.Transitions, err = meter.Int64Counter("session.transitions",
		metric.WithDescription("Presentation state transitions partitioned by event and resulting phase"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordTokens records LLM token usage on the metric counters.
func (m *Metrics) RecordTokens(ctx context.Context, provider, model string, input, output int64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("llm.provider", provider),
		attribute.String("llm.model", model),
	)
	m.InputTokens.Add(ctx, input, attrs)
	m.OutputTokens.Add(ctx, output, attrs)
}

// RecordAnalysis records one finished analysis.
func (m *Metrics) RecordAnalysis(ctx context.Context, mode, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("analysis.mode", mode),
		attribute.String("analysis.outcome", outcome),
	)
	m.Analyses.Add(ctx, 1, attrs)
	m.AnalysisDuration.Record(ctx, d.Seconds(), attrs)
}

// RecordTransition records a state change of a presentation session.
func (m *Metrics) RecordTransition(ctx context.Context, event, phase string) {
	if m == nil {
		return
	}
	m.Transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("session.event", event),
		attribute.String("session.phase", phase),
	))
}
