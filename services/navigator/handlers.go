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
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AleutianAI/navigator/services/navigator/graph"
	"github.com/AleutianAI/navigator/services/navigator/repo"
)

// ErrorResponse is the JSON error body for all endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// AnalyzeRequest is the body for POST /v1/navigator/analyze.
type AnalyzeRequest struct {
	// Source is a local directory path or remote git URL.
	Source string `json:"source" binding:"required"`

	// Output optionally names a file to save the report to on the server.
	Output string `json:"output,omitempty"`
}

// SearchResult is one unit match from the search endpoint.
type SearchResult struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	FilePath  string `json:"file_path"`
	LineStart int    `json:"line_start"`
	LineEnd   int    `json:"line_end"`
}

// SearchResponse is the body for GET /v1/navigator/units/search.
type SearchResponse struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
}

// StatusResponse extends Status with service-level staleness.
type StatusResponse struct {
	Status
	Stale bool `json:"stale"`
}

// Handlers holds the HTTP handlers for the Navigator service.
//
// Thread Safety: Safe for concurrent use; all state lives in Service.
type Handlers struct {
	service *Service
}

// NewHandlers creates Handlers backed by the given service.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// getOrCreateRequestID returns the request's X-Request-ID, minting one
// when absent.
func getOrCreateRequestID(c *gin.Context) string {
	if id := c.GetHeader("X-Request-ID"); id != "" {
		return id
	}
	return uuid.NewString()
}

// HandleAnalyze handles POST /v1/navigator/analyze.
//
// Description:
//
//	Runs a full analysis session against the requested source and
//	returns the session report. Optionally saves the report server-side.
//
// Response:
//
//	200 OK: AnalysisReport
//	400 Bad Request: empty repository or nothing parseable
//	404 Not Found: source does not exist
//	409 Conflict: a session is already running
//	429 Too Many Requests: rate limited
func (h *Handlers) HandleAnalyze(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleAnalyze")

	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "source is required",
			Code:  "MISSING_PARAMETER",
		})
		return
	}

	report, err := h.service.Analyze(c.Request.Context(), req.Source)
	if err != nil {
		status, code := analyzeErrorStatus(err)
		logger.Warn("analysis failed",
			slog.String("source", req.Source),
			slog.String("error", err.Error()))
		c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
		return
	}

	if req.Output != "" {
		if saveErr := report.Save(req.Output); saveErr != nil {
			logger.Warn("report save failed",
				slog.String("output", req.Output),
				slog.String("error", saveErr.Error()))
		}
	}

	logger.Info("analysis complete",
		slog.String("source", req.Source),
		slog.Int("files", report.RepositoryAnalysis.TotalFiles))
	c.JSON(http.StatusOK, report)
}

// analyzeErrorStatus maps analysis errors to HTTP status and error code.
func analyzeErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ErrEmptyInput):
		return http.StatusBadRequest, "EMPTY_INPUT"
	case errors.Is(err, ErrNoParseableContent):
		return http.StatusBadRequest, "NO_PARSEABLE_CONTENT"
	case errors.Is(err, repo.ErrRepoNotFound):
		return http.StatusNotFound, "SOURCE_NOT_FOUND"
	case errors.Is(err, repo.ErrInvalidSource):
		return http.StatusBadRequest, "INVALID_SOURCE"
	case errors.Is(err, ErrAnalysisInProgress):
		return http.StatusConflict, "ANALYSIS_IN_PROGRESS"
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, "RATE_LIMITED"
	default:
		return http.StatusInternalServerError, "ANALYSIS_FAILED"
	}
}

// HandleStatus handles GET /v1/navigator/status.
func (h *Handlers) HandleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, StatusResponse{
		Status: h.service.Navigator().Status(),
		Stale:  h.service.Stale(),
	})
}

// HandleReport handles GET /v1/navigator/report.
//
// Response:
//
//	200 OK: AnalysisReport
//	404 Not Found: no analysis has completed
func (h *Handlers) HandleReport(c *gin.Context) {
	report, err := h.service.Navigator().Report()
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "NO_ANALYSIS"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// HandleClear handles POST /v1/navigator/clear.
func (h *Handlers) HandleClear(c *gin.Context) {
	h.service.Navigator().Clear()
	c.JSON(http.StatusOK, gin.H{"cleared": true})
}

// HandleContainmentGraph handles GET /v1/navigator/graph/containment.
//
// Response:
//
//	200 OK: SerializableGraph
//	404 Not Found: no analysis has completed
func (h *Handlers) HandleContainmentGraph(c *gin.Context) {
	g, err := h.service.Navigator().Containment()
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "NO_ANALYSIS"})
		return
	}
	c.JSON(http.StatusOK, g.ToSerializable())
}

// HandleFlowGraph handles GET /v1/navigator/graph/flow.
//
// Query Parameters:
//
//	unit_id: the function or method ID (required). IDs contain colons
//	and path separators, so they travel as a query parameter.
//
// Response:
//
//	200 OK: SerializableGraph
//	400 Bad Request: missing unit_id
//	404 Not Found: unknown unit or no analysis
func (h *Handlers) HandleFlowGraph(c *gin.Context) {
	h.handleUnitGraph(c, h.service.Navigator().FlowGraph)
}

// HandleDependencyGraph handles GET /v1/navigator/graph/dependency.
// Same contract as HandleFlowGraph.
func (h *Handlers) HandleDependencyGraph(c *gin.Context) {
	h.handleUnitGraph(c, h.service.Navigator().DependencyGraph)
}

// handleUnitGraph is the shared lookup for per-unit graph endpoints.
func (h *Handlers) handleUnitGraph(c *gin.Context, lookup func(string) (*graph.Graph, error)) {
	unitID := c.Query("unit_id")
	if unitID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "unit_id parameter is required",
			Code:  "MISSING_PARAMETER",
		})
		return
	}

	g, err := lookup(unitID)
	if err != nil {
		code := "UNIT_NOT_FOUND"
		if errors.Is(err, ErrNoAnalysis) {
			code = "NO_ANALYSIS"
		}
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: code})
		return
	}
	c.JSON(http.StatusOK, g.ToSerializable())
}

// HandleSearchUnits handles GET /v1/navigator/units/search.
//
// Query Parameters:
//
//	q: the name query (required)
//	limit: maximum results, default 20
//
// Response:
//
//	200 OK: SearchResponse
//	400 Bad Request: missing q
//	404 Not Found: no analysis has completed
func (h *Handlers) HandleSearchUnits(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "q parameter is required",
			Code:  "MISSING_PARAMETER",
		})
		return
	}

	limit := 20
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	units, err := h.service.Navigator().Search(query, limit)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "NO_ANALYSIS"})
		return
	}

	resp := SearchResponse{Query: query, Results: make([]SearchResult, 0, len(units))}
	for _, unit := range units {
		resp.Results = append(resp.Results, SearchResult{
			ID:        unit.ID,
			Name:      unit.Name,
			Kind:      unit.Kind.String(),
			FilePath:  unit.FilePath,
			LineStart: unit.StartLine,
			LineEnd:   unit.EndLine,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// HandleHealth handles GET /v1/navigator/health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// HandleReady handles GET /v1/navigator/ready. The service is ready as
// soon as it is up; analysis state is reported, not gated on.
func (h *Handlers) HandleReady(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ready",
		"analyzed": h.service.Navigator().Status().Analyzed,
	})
}
