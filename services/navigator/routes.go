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
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all Navigator routes with the router.
//
// Description:
//
//	Registers all /v1/navigator/* endpoints with the given Gin router
//	group. The router group should already have any required middleware
//	applied.
//
// Inputs:
//
//	rg - Gin router group (typically /v1)
//	handlers - The handlers instance
//
// Endpoints:
//
//	POST /v1/navigator/analyze - Run a full analysis session
//	GET  /v1/navigator/status - Session state and staleness
//	GET  /v1/navigator/report - Most recent session report
//	POST /v1/navigator/clear - Drop all published results
//
//	GET  /v1/navigator/graph/containment - Repository containment graph
//	GET  /v1/navigator/graph/flow?unit_id= - Per-unit control-flow graph
//	GET  /v1/navigator/graph/dependency?unit_id= - Per-unit dependency graph
//
//	GET  /v1/navigator/units/search?q= - Find units by name
//
//	GET  /v1/navigator/health - Health check
//	GET  /v1/navigator/ready - Readiness check
//
// Example:
//
//	svc := navigator.NewService(cfg)
//	handlers := navigator.NewHandlers(svc)
//
//	v1 := router.Group("/v1")
//	navigator.RegisterRoutes(v1, handlers)
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	nav := rg.Group("/navigator")
	{
		// Analysis lifecycle
		nav.POST("/analyze", handlers.HandleAnalyze)
		nav.GET("/status", handlers.HandleStatus)
		nav.GET("/report", handlers.HandleReport)
		nav.POST("/clear", handlers.HandleClear)

		// Graph queries
		graphs := nav.Group("/graph")
		{
			graphs.GET("/containment", handlers.HandleContainmentGraph)
			graphs.GET("/flow", handlers.HandleFlowGraph)
			graphs.GET("/dependency", handlers.HandleDependencyGraph)
		}

		// Unit queries
		nav.GET("/units/search", handlers.HandleSearchUnits)

		// Health checks
		nav.GET("/health", handlers.HandleHealth)
		nav.GET("/ready", handlers.HandleReady)
	}
}
