// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package graph

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for graph construction.
var (
	tracer = otel.Tracer("aleutian.navigator.graph")
	meter  = otel.Meter("aleutian.navigator.graph")
)

// Metrics for graph builds.
var (
	buildLatency metric.Float64Histogram
	buildTotal   metric.Int64Counter
	nodesCreated metric.Int64Histogram
	edgesCreated metric.Int64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		buildLatency, err = meter.Float64Histogram(
			"navigator_graph_build_duration_seconds",
			metric.WithDescription("Duration of graph build operations"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		buildTotal, err = meter.Int64Counter(
			"navigator_graph_build_total",
			metric.WithDescription("Total number of graph builds"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		nodesCreated, err = meter.Int64Histogram(
			"navigator_graph_nodes_created",
			metric.WithDescription("Nodes created per graph build"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		edgesCreated, err = meter.Int64Histogram(
			"navigator_graph_edges_created",
			metric.WithDescription("Edges created per graph build"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordBuildMetrics records metrics for one graph build.
func recordBuildMetrics(ctx context.Context, family string, duration time.Duration, nodes, edges int, success bool) {
	if err := initMetrics(); err != nil {
		return // Silently skip if metrics init failed
	}

	attrs := metric.WithAttributes(
		attribute.String("family", family),
		attribute.Bool("success", success),
	)

	buildLatency.Record(ctx, duration.Seconds(), attrs)
	buildTotal.Add(ctx, 1, attrs)
	if success {
		nodesCreated.Record(ctx, int64(nodes), attrs)
		edgesCreated.Record(ctx, int64(edges), attrs)
	}
}

// startBuildSpan starts a tracing span for a graph build.
func startBuildSpan(ctx context.Context, family string, inputCount int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "navigator.graph.build",
		trace.WithAttributes(
			attribute.String("family", family),
			attribute.Int("inputs", inputCount),
		))
}

// setBuildSpanResult records the build outcome on the span.
func setBuildSpanResult(span trace.Span, nodes, edges int) {
	span.SetAttributes(
		attribute.Int("nodes", nodes),
		attribute.Int("edges", edges),
	)
}
