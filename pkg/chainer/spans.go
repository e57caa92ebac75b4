package chainer

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for chaining operations.
var (
	tracer = otel.Tracer("gokanproof.chainer")
	meter  = otel.Meter("gokanproof.chainer")
)

var (
	searchTotal   metric.Int64Counter
	searchResults metric.Int64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		searchTotal, err = meter.Int64Counter(
			"chainer_search_total",
			metric.WithDescription("Total number of chaining searches"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		searchResults, err = meter.Int64Histogram(
			"chainer_search_results",
			metric.WithDescription("Number of judgments yielded per search"),
		)
		if err != nil {
			metricsErr = err
		}
	})
	return metricsErr
}

// startSearchSpan creates a span covering one lazy enumeration.
func startSearchSpan(ctx context.Context, op string, depth int, query Judgment) (context.Context, trace.Span) {
	return tracer.Start(ctx, "chainer."+op,
		trace.WithAttributes(
			attribute.Int("chainer.depth", depth),
			attribute.String("chainer.query", query.String()),
		),
	)
}

// endSearchSpan records the result count and closes the span.
func endSearchSpan(ctx context.Context, span trace.Span, op string, results int) {
	span.SetAttributes(attribute.Int("chainer.results", results))
	span.End()

	if err := initMetrics(); err != nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("op", op))
	searchTotal.Add(ctx, 1, attrs)
	searchResults.Record(ctx, int64(results), attrs)
}
