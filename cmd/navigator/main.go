// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command navigator starts the Aleutian Navigator API server.
//
// Aleutian Navigator provides structural code analysis:
//   - Hierarchical containment graphs over a whole repository
//   - Per-function control-flow and dependency graphs
//   - Name-based unit search over the analyzed code
//
// Usage:
//
//	go run ./cmd/navigator
//	go run ./cmd/navigator -port 9090 -config navigator.yaml
//
// Example requests:
//
//	# Health check
//	curl http://localhost:8090/v1/navigator/health
//
//	# Analyze a repository
//	curl -X POST http://localhost:8090/v1/navigator/analyze \
//	  -H "Content-Type: application/json" \
//	  -d '{"source": "/path/to/repo"}'
//
//	# Fetch the containment graph
//	curl http://localhost:8090/v1/navigator/graph/containment | jq
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/AleutianAI/navigator/services/navigator"
	"github.com/AleutianAI/navigator/services/navigator/config"
)

func main() {
	port := flag.Int("port", 0, "Port to listen on (overrides config)")
	configPath := flag.String("config", "", "Path to YAML config file")
	debug := flag.Bool("debug", false, "Enable debug mode")
	flag.Parse()

	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	if *debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// W3C TraceContext propagation so trace IDs flow from callers through
	// every handler.
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	// Export OTel metrics through the Prometheus registry served at /metrics.
	exporter, err := otelprom.New()
	if err != nil {
		slog.Error("Failed to create Prometheus exporter", slog.String("error", err.Error()))
		os.Exit(1)
	}
	otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter)))

	svc := navigator.NewService(cfg)
	defer svc.Close()
	handlers := navigator.NewHandlers(svc)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("aleutian-navigator"))
	if *debug {
		router.Use(gin.Logger())
	}

	v1 := router.Group("/v1")
	navigator.RegisterRoutes(v1, handlers)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
	}

	printBanner(cfg.Server.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		slog.Info("Shutting down Aleutian Navigator server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Warn("Forced shutdown", slog.String("error", err.Error()))
		}
	}()

	slog.Info("Starting Aleutian Navigator server", slog.String("address", addr))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("Failed to start server", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// printBanner prints the startup banner.
func printBanner(port int) {
	fmt.Printf(`
  Aleutian Navigator
  ------------------
  Listening on : http://localhost:%d
  API base     : /v1/navigator
  Metrics      : /metrics

`, port)
}
