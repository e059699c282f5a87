// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package blast

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for blast-radius traversal.
var (
	tracer = otel.Tracer("aleutian.impact.blast")
	meter  = otel.Meter("aleutian.impact.blast")
)

// Metrics for blast-radius traversal.
var (
	traversalLatency metric.Float64Histogram
	traversalTotal   metric.Int64Counter
	unionSizes       metric.Int64Histogram
	partialFailures  metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		traversalLatency, err = meter.Float64Histogram(
			"blast_traversal_duration_seconds",
			metric.WithDescription("Duration of blast-radius traversals"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		traversalTotal, err = meter.Int64Counter(
			"blast_traversal_total",
			metric.WithDescription("Total number of blast-radius traversals"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		unionSizes, err = meter.Int64Histogram(
			"blast_union_nodes",
			metric.WithDescription("Number of nodes in the merged blast radius"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		partialFailures, err = meter.Int64Counter(
			"blast_partial_failures_total",
			metric.WithDescription("Seed traversals annotated with a query failure"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// startTraversalSpan creates a span for a blast-radius analysis.
func startTraversalSpan(ctx context.Context, artifacts int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Engine.Analyze",
		trace.WithAttributes(
			attribute.Int("blast.artifacts", artifacts),
		),
	)
}

// setTraversalSpanResult sets the result attributes on a traversal span.
func setTraversalSpanResult(span trace.Span, unionNodes, partial int) {
	span.SetAttributes(
		attribute.Int("blast.union_nodes", unionNodes),
		attribute.Int("blast.partial_failures", partial),
	)
}

// recordTraversalMetrics records metrics for one blast-radius analysis.
func recordTraversalMetrics(ctx context.Context, duration time.Duration, unionNodes, partial int) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.Bool("partial", partial > 0),
	)

	traversalLatency.Record(ctx, duration.Seconds(), attrs)
	traversalTotal.Add(ctx, 1, attrs)
	unionSizes.Record(ctx, int64(unionNodes))
	if partial > 0 {
		partialFailures.Add(ctx, int64(partial))
	}
}
