// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ast

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for syntax extraction.
var (
	tracer = otel.Tracer("aleutian.navigator.ast")
	meter  = otel.Meter("aleutian.navigator.ast")
)

// Metrics for extraction operations.
var (
	extractLatency metric.Float64Histogram
	extractTotal   metric.Int64Counter
	nodesExtracted metric.Int64Histogram
	fallbackTotal  metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		extractLatency, err = meter.Float64Histogram(
			"navigator_extract_duration_seconds",
			metric.WithDescription("Duration of syntax extraction operations"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		extractTotal, err = meter.Int64Counter(
			"navigator_extract_total",
			metric.WithDescription("Total number of extraction operations"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		nodesExtracted, err = meter.Int64Histogram(
			"navigator_extract_nodes",
			metric.WithDescription("Number of syntax nodes extracted per file"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		fallbackTotal, err = meter.Int64Counter(
			"navigator_extract_fallback_total",
			metric.WithDescription("Extractions handled by the line-heuristic fallback"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordExtractMetrics records metrics for one extraction operation.
func recordExtractMetrics(ctx context.Context, language string, duration time.Duration, nodeCount int, success bool) {
	if err := initMetrics(); err != nil {
		return // Silently skip if metrics init failed
	}

	attrs := metric.WithAttributes(
		attribute.String("language", language),
		attribute.Bool("success", success),
	)

	extractLatency.Record(ctx, duration.Seconds(), attrs)
	extractTotal.Add(ctx, 1, attrs)
	if success {
		nodesExtracted.Record(ctx, int64(nodeCount), attrs)
	}
}

// recordFallback counts an extraction routed to the fallback extractor.
func recordFallback(ctx context.Context, extension string) {
	if err := initMetrics(); err != nil {
		return
	}
	fallbackTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("extension", extension),
	))
}

// startExtractSpan starts a tracing span for an extraction operation.
func startExtractSpan(ctx context.Context, language, filePath string, contentSize int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "navigator.extract",
		trace.WithAttributes(
			attribute.String("language", language),
			attribute.String("file", filePath),
			attribute.Int("content_bytes", contentSize),
		))
}

// setExtractSpanResult records the extraction outcome on the span.
func setExtractSpanResult(span trace.Span, nodeCount int, degraded bool) {
	span.SetAttributes(
		attribute.Int("nodes", nodeCount),
		attribute.Bool("degraded", degraded),
	)
}
