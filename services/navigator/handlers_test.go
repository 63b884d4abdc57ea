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
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/navigator/services/navigator/config"
)

// newTestRouter builds a gin engine with the navigator routes mounted
// under /v1, backed by a fresh service. The rate limit is raised so tests
// can analyze repeatedly.
func newTestRouter(t *testing.T) (*gin.Engine, *Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	cfg.Limits.AnalyzeRatePerMinute = 600

	svc := NewService(cfg)
	t.Cleanup(svc.Close)

	router := gin.New()
	RegisterRoutes(router.Group("/v1"), NewHandlers(svc))
	return router, svc
}

// doJSON performs one request and decodes the response body into out when
// out is non-nil.
func doJSON(t *testing.T, router *gin.Engine, method, path, body string, out any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if out != nil {
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			t.Fatalf("decoding response %q: %v", w.Body.String(), err)
		}
	}
	return w
}

func TestHandleAnalyze_MissingSource(t *testing.T) {
	router, _ := newTestRouter(t)

	var resp ErrorResponse
	w := doJSON(t, router, http.MethodPost, "/v1/navigator/analyze", `{}`, &resp)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if resp.Code != "MISSING_PARAMETER" {
		t.Errorf("code = %q, want MISSING_PARAMETER", resp.Code)
	}
}

func TestHandleAnalyze_SourceNotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	missing := filepath.Join(t.TempDir(), "ghost")
	body := fmt.Sprintf(`{"source": %q}`, missing)

	var resp ErrorResponse
	w := doJSON(t, router, http.MethodPost, "/v1/navigator/analyze", body, &resp)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	if resp.Code != "SOURCE_NOT_FOUND" {
		t.Errorf("code = %q, want SOURCE_NOT_FOUND", resp.Code)
	}
}

func TestHandleAnalyze_EmptyRepository(t *testing.T) {
	router, _ := newTestRouter(t)

	body := fmt.Sprintf(`{"source": %q}`, t.TempDir())
	var resp ErrorResponse
	w := doJSON(t, router, http.MethodPost, "/v1/navigator/analyze", body, &resp)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if resp.Code != "EMPTY_INPUT" {
		t.Errorf("code = %q, want EMPTY_INPUT", resp.Code)
	}
}

func TestHandleAnalyze_Success(t *testing.T) {
	router, _ := newTestRouter(t)
	dir := writeRepo(t, map[string]string{
		"a.py": "def f():\n    x = 1\n    y = 2\n",
	})

	body := fmt.Sprintf(`{"source": %q}`, dir)
	var report AnalysisReport
	w := doJSON(t, router, http.MethodPost, "/v1/navigator/analyze", body, &report)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if report.RepositoryAnalysis.TotalFiles != 1 {
		t.Errorf("total_files = %d, want 1", report.RepositoryAnalysis.TotalFiles)
	}
	if report.RepositoryAnalysis.TotalFunctions != 1 {
		t.Errorf("total_functions = %d, want 1", report.RepositoryAnalysis.TotalFunctions)
	}
}

func TestHandleAnalyze_RateLimited(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	cfg.Limits.AnalyzeRatePerMinute = 1

	svc := NewService(cfg)
	t.Cleanup(svc.Close)
	router := gin.New()
	RegisterRoutes(router.Group("/v1"), NewHandlers(svc))

	body := fmt.Sprintf(`{"source": %q}`, t.TempDir())
	// First call consumes the only token (and fails on the empty dir).
	doJSON(t, router, http.MethodPost, "/v1/navigator/analyze", body, nil)

	var resp ErrorResponse
	w := doJSON(t, router, http.MethodPost, "/v1/navigator/analyze", body, &resp)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", w.Code)
	}
	if resp.Code != "RATE_LIMITED" {
		t.Errorf("code = %q, want RATE_LIMITED", resp.Code)
	}
}

func TestHandleStatus(t *testing.T) {
	router, _ := newTestRouter(t)

	var status StatusResponse
	w := doJSON(t, router, http.MethodGet, "/v1/navigator/status", "", &status)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if status.Analyzed || status.Stale {
		t.Errorf("fresh service status = %+v, want unanalyzed and not stale", status)
	}
}

func TestHandleReport_NoAnalysis(t *testing.T) {
	router, _ := newTestRouter(t)

	var resp ErrorResponse
	w := doJSON(t, router, http.MethodGet, "/v1/navigator/report", "", &resp)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	if resp.Code != "NO_ANALYSIS" {
		t.Errorf("code = %q, want NO_ANALYSIS", resp.Code)
	}
}

func TestHandleGraphEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)
	dir := writeRepo(t, map[string]string{
		"a.py": "def f():\n    x = 1\n    y = 2\n",
	})

	body := fmt.Sprintf(`{"source": %q}`, dir)
	if w := doJSON(t, router, http.MethodPost, "/v1/navigator/analyze", body, nil); w.Code != http.StatusOK {
		t.Fatalf("analyze failed: %d %s", w.Code, w.Body.String())
	}

	// Containment graph: file node plus function node.
	var containment struct {
		Nodes []map[string]any `json:"nodes"`
		Edges []map[string]any `json:"edges"`
	}
	w := doJSON(t, router, http.MethodGet, "/v1/navigator/graph/containment", "", &containment)
	if w.Code != http.StatusOK {
		t.Fatalf("containment status = %d, want 200", w.Code)
	}
	if len(containment.Nodes) != 2 || len(containment.Edges) != 1 {
		t.Errorf("containment = %d nodes / %d edges, want 2 / 1",
			len(containment.Nodes), len(containment.Edges))
	}

	// Missing unit_id.
	var resp ErrorResponse
	w = doJSON(t, router, http.MethodGet, "/v1/navigator/graph/flow", "", &resp)
	if w.Code != http.StatusBadRequest || resp.Code != "MISSING_PARAMETER" {
		t.Errorf("flow without unit_id = %d %q, want 400 MISSING_PARAMETER", w.Code, resp.Code)
	}

	// Unknown unit.
	w = doJSON(t, router, http.MethodGet, "/v1/navigator/graph/flow?unit_id=nope%3A1%3Ag", "", &resp)
	if w.Code != http.StatusNotFound || resp.Code != "UNIT_NOT_FOUND" {
		t.Errorf("flow for unknown unit = %d %q, want 404 UNIT_NOT_FOUND", w.Code, resp.Code)
	}

	// Known unit, both families.
	unitID := filepath.Join(dir, "a.py") + ":1:f"
	for _, family := range []string{"flow", "dependency"} {
		path := "/v1/navigator/graph/" + family + "?unit_id=" + url.QueryEscape(unitID)
		var g struct {
			Nodes []map[string]any `json:"nodes"`
			Edges []map[string]any `json:"edges"`
		}
		w = doJSON(t, router, http.MethodGet, path, "", &g)
		if w.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200: %s", family, w.Code, w.Body.String())
			continue
		}
		if len(g.Nodes) != 2 || len(g.Edges) != 1 {
			t.Errorf("%s graph = %d nodes / %d edges, want 2 / 1", family, len(g.Nodes), len(g.Edges))
		}
	}
}

func TestHandleSearchUnits(t *testing.T) {
	router, _ := newTestRouter(t)
	dir := writeRepo(t, map[string]string{
		"a.py": "def process():\n    pass\n\ndef process_all():\n    pass\n",
	})

	body := fmt.Sprintf(`{"source": %q}`, dir)
	if w := doJSON(t, router, http.MethodPost, "/v1/navigator/analyze", body, nil); w.Code != http.StatusOK {
		t.Fatalf("analyze failed: %d %s", w.Code, w.Body.String())
	}

	// Missing q.
	var errResp ErrorResponse
	w := doJSON(t, router, http.MethodGet, "/v1/navigator/units/search", "", &errResp)
	if w.Code != http.StatusBadRequest || errResp.Code != "MISSING_PARAMETER" {
		t.Errorf("search without q = %d %q, want 400 MISSING_PARAMETER", w.Code, errResp.Code)
	}

	var resp SearchResponse
	w = doJSON(t, router, http.MethodGet, "/v1/navigator/units/search?q=process", "", &resp)
	if w.Code != http.StatusOK {
		t.Fatalf("search status = %d, want 200", w.Code)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("search returned %d results, want 2", len(resp.Results))
	}
	if resp.Results[0].Name != "process" || resp.Results[0].Kind != "function" {
		t.Errorf("results[0] = %+v, want exact function match first", resp.Results[0])
	}

	// Limit caps results.
	w = doJSON(t, router, http.MethodGet, "/v1/navigator/units/search?q=process&limit=1", "", &resp)
	if w.Code != http.StatusOK || len(resp.Results) != 1 {
		t.Errorf("limited search = %d with %d results, want 200 with 1", w.Code, len(resp.Results))
	}
}

func TestHandleClear(t *testing.T) {
	router, _ := newTestRouter(t)
	dir := writeRepo(t, map[string]string{"a.py": "def f():\n    pass\n"})

	body := fmt.Sprintf(`{"source": %q}`, dir)
	if w := doJSON(t, router, http.MethodPost, "/v1/navigator/analyze", body, nil); w.Code != http.StatusOK {
		t.Fatalf("analyze failed: %d %s", w.Code, w.Body.String())
	}

	if w := doJSON(t, router, http.MethodPost, "/v1/navigator/clear", "", nil); w.Code != http.StatusOK {
		t.Errorf("clear status = %d, want 200", w.Code)
	}

	var resp ErrorResponse
	w := doJSON(t, router, http.MethodGet, "/v1/navigator/report", "", &resp)
	if w.Code != http.StatusNotFound {
		t.Errorf("report after clear = %d, want 404", w.Code)
	}
}

func TestHandleHealthAndReady(t *testing.T) {
	router, _ := newTestRouter(t)

	var health map[string]any
	if w := doJSON(t, router, http.MethodGet, "/v1/navigator/health", "", &health); w.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200", w.Code)
	}
	if health["status"] != "healthy" {
		t.Errorf("health body = %v, want status healthy", health)
	}

	var ready map[string]any
	if w := doJSON(t, router, http.MethodGet, "/v1/navigator/ready", "", &ready); w.Code != http.StatusOK {
		t.Errorf("ready status = %d, want 200", w.Code)
	}
	if ready["analyzed"] != false {
		t.Errorf("ready body = %v, want analyzed false", ready)
	}
}
