// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package navigator

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for the analysis orchestrator.
var (
	tracer = otel.Tracer("aleutian.navigator")
	meter  = otel.Meter("aleutian.navigator")
)

// Metrics for analysis sessions.
var (
	sessionLatency metric.Float64Histogram
	sessionTotal   metric.Int64Counter
	filesAnalyzed  metric.Int64Histogram
	unitsAnalyzed  metric.Int64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		sessionLatency, err = meter.Float64Histogram(
			"navigator_session_duration_seconds",
			metric.WithDescription("Duration of full analysis sessions"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		sessionTotal, err = meter.Int64Counter(
			"navigator_session_total",
			metric.WithDescription("Total number of analysis sessions"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		filesAnalyzed, err = meter.Int64Histogram(
			"navigator_session_files",
			metric.WithDescription("Files analyzed per session"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		unitsAnalyzed, err = meter.Int64Histogram(
			"navigator_session_units",
			metric.WithDescription("Functions and methods analyzed per session"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordSessionMetrics records metrics for one analysis session.
func recordSessionMetrics(ctx context.Context, duration time.Duration, files, units int, success bool) {
	if err := initMetrics(); err != nil {
		return // Silently skip if metrics init failed
	}

	attrs := metric.WithAttributes(attribute.Bool("success", success))

	sessionLatency.Record(ctx, duration.Seconds(), attrs)
	sessionTotal.Add(ctx, 1, attrs)
	if success {
		filesAnalyzed.Record(ctx, int64(files), attrs)
		unitsAnalyzed.Record(ctx, int64(units), attrs)
	}
}

// startSessionSpan starts a tracing span for an analysis session.
func startSessionSpan(ctx context.Context, source, sessionID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "navigator.analyze",
		trace.WithAttributes(
			attribute.String("source", source),
			attribute.String("session_id", sessionID),
		))
}

// setSessionSpanResult records the session outcome on the span.
func setSessionSpanResult(span trace.Span, files, units int) {
	span.SetAttributes(
		attribute.Int("files", files),
		attribute.Int("units", units),
	)
}
