// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package navigator orchestrates repository analysis: file ingestion,
// syntax extraction, and construction of the containment, control-flow,
// and dependency graphs.
package navigator

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AleutianAI/navigator/services/navigator/ast"
	"github.com/AleutianAI/navigator/services/navigator/graph"
	"github.com/AleutianAI/navigator/services/navigator/index"
	"github.com/AleutianAI/navigator/services/navigator/ingest"
	"github.com/AleutianAI/navigator/services/navigator/repo"
)

// Option is a functional option for configuring a Navigator.
type Option func(*Navigator)

// WithWorkers sets the ingestion worker count.
func WithWorkers(n int) Option {
	return func(nav *Navigator) {
		if n > 0 {
			nav.workers = n
		}
	}
}

// WithExtensions sets the source extensions discovery accepts.
func WithExtensions(exts []string) Option {
	return func(nav *Navigator) {
		if len(exts) > 0 {
			nav.extensions = exts
		}
	}
}

// WithMaxFileSize sets the per-file size ceiling for extraction.
func WithMaxFileSize(n int) Option {
	return func(nav *Navigator) {
		if n > 0 {
			nav.maxFileSize = n
		}
	}
}

// WithCacheSize sets the extraction cache entry count.
func WithCacheSize(n int) Option {
	return func(nav *Navigator) {
		if n > 0 {
			nav.cacheSize = n
		}
	}
}

// WithMaxFiles caps discovery per repository.
func WithMaxFiles(n int) Option {
	return func(nav *Navigator) {
		if n > 0 {
			nav.maxFiles = n
		}
	}
}

// WithReadFunc overrides the file read function; used by tests.
func WithReadFunc(fn ingest.ReadFunc) Option {
	return func(nav *Navigator) {
		if fn != nil {
			nav.readFunc = fn
		}
	}
}

// Status reports the orchestrator's current state.
type Status struct {
	// SessionID identifies the most recent analysis session, empty if
	// none has run.
	SessionID string `json:"session_id"`

	// Analyzed is true once a session has completed successfully.
	Analyzed bool `json:"analyzed"`

	// InProgress is true while a session is running.
	InProgress bool `json:"in_progress"`

	// Source is the repository source of the most recent session.
	Source string `json:"source,omitempty"`

	// Files, Units, CFGs and PDGs size the current results.
	Files int `json:"files"`
	Units int `json:"units"`
	CFGs  int `json:"cfgs"`
	PDGs  int `json:"pdgs"`

	// CompletedAt is when the most recent session finished, RFC 3339.
	CompletedAt string `json:"completed_at,omitempty"`
}

// Navigator is the analysis orchestrator.
//
// Description:
//
//	One Navigator serves one repository at a time. Analyze runs the full
//	pipeline and replaces all cached results; concurrent Analyze calls
//	are rejected with ErrAnalysisInProgress rather than queued. Read
//	operations (Containment, FlowGraph, DependencyGraph, Report, Search)
//	serve the most recent completed session and are safe during analysis:
//	results are swapped in atomically only on success.
//
// Thread Safety:
//
//	Safe for concurrent use. sessionMu serializes Analyze; stateMu guards
//	the published results.
type Navigator struct {
	workers     int
	extensions  []string
	maxFileSize int
	maxFiles    int
	cacheSize   int
	readFunc    ingest.ReadFunc

	acquirer *repo.Acquirer
	registry *ast.Registry

	containment *graph.ContainmentBuilder
	flow        *graph.FlowBuilder
	dependency  *graph.DependencyBuilder

	// sessionMu serializes analysis sessions. TryLock gives the
	// rejection semantics.
	sessionMu  sync.Mutex
	inProgress sync.Mutex // guards the inProgressFlag bool below
	running    bool

	// stateMu guards everything below.
	stateMu      sync.RWMutex
	sessionID    string
	source       string
	completedAt  time.Time
	fileContents map[string]string
	trees        map[string]*ast.SyntaxNode
	hpg          *graph.Graph
	cfgs         map[string]*graph.Graph
	pdgs         map[string]*graph.Graph
	unitIndex    *index.UnitIndex
	report       *AnalysisReport
}

// New creates a Navigator with the given options.
//
// Example:
//
//	nav := navigator.New(navigator.WithWorkers(8))
//	report, err := nav.Analyze(ctx, "/path/to/repo")
func New(opts ...Option) *Navigator {
	nav := &Navigator{
		workers:     ingest.DefaultWorkerCount,
		extensions:  repo.DefaultExtensions,
		maxFileSize: ast.DefaultMaxFileSize,
		maxFiles:    repo.DefaultMaxFiles,
		cacheSize:   ast.DefaultCacheSize,
		acquirer:    repo.NewAcquirer(),
		containment: graph.NewContainmentBuilder(),
		flow:        graph.NewFlowBuilder(),
		dependency:  graph.NewDependencyBuilder(),
		unitIndex:   index.NewUnitIndex(),
	}
	for _, opt := range opts {
		opt(nav)
	}

	nav.registry = ast.NewRegistry(
		ast.WithCacheSize(nav.cacheSize),
		ast.WithMaxFileSize(int64(nav.maxFileSize)),
	)
	return nav
}

// Analyze runs the full pipeline against source (local path or git URL)
// and publishes the results.
//
// Description:
//
//	Pipeline stages: acquire, discover, ingest through a fresh dedup
//	queue and worker pool, extract per file in sorted-path order, build
//	the containment graph over the whole forest, then one control-flow
//	and one dependency graph per function or method. Prior results stay
//	visible until the new session succeeds.
//
// Errors:
//
//	ErrAnalysisInProgress if a session is running, ErrEmptyInput if
//	discovery finds nothing, ErrNoParseableContent if nothing could be
//	read, or an acquisition/build error.
func (nav *Navigator) Analyze(ctx context.Context, source string) (*AnalysisReport, error) {
	if !nav.sessionMu.TryLock() {
		return nil, ErrAnalysisInProgress
	}
	defer nav.sessionMu.Unlock()

	nav.setRunning(true)
	defer nav.setRunning(false)

	sessionID := uuid.NewString()
	ctx, span := startSessionSpan(ctx, source, sessionID)
	defer span.End()

	start := time.Now()
	result, err := nav.runSession(ctx, source, sessionID)
	if err != nil {
		recordSessionMetrics(ctx, time.Since(start), 0, 0, false)
		span.RecordError(err)
		return nil, err
	}

	nav.publish(result)

	units := len(result.cfgs)
	recordSessionMetrics(ctx, time.Since(start), len(result.trees), units, true)
	setSessionSpanResult(span, len(result.trees), units)

	slog.Info("analysis session complete",
		slog.String("session_id", sessionID),
		slog.String("source", source),
		slog.Int("files", len(result.trees)),
		slog.Int("units", units),
		slog.Duration("elapsed", time.Since(start)))

	return result.report, nil
}

// sessionResult holds one session's outputs before publication.
type sessionResult struct {
	sessionID    string
	source       string
	completedAt  time.Time
	fileContents map[string]string
	trees        map[string]*ast.SyntaxNode
	hpg          *graph.Graph
	cfgs         map[string]*graph.Graph
	pdgs         map[string]*graph.Graph
	unitIndex    *index.UnitIndex
	report       *AnalysisReport
}

// runSession executes the pipeline without touching published state.
func (nav *Navigator) runSession(ctx context.Context, source, sessionID string) (*sessionResult, error) {
	root, err := nav.acquirer.Acquire(ctx, source)
	if err != nil {
		return nil, err
	}

	discoverer := repo.NewDiscoverer(
		repo.WithExtensions(nav.extensions),
		repo.WithMaxFiles(nav.maxFiles),
	)
	paths, err := discoverer.Discover(ctx, root)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, ErrEmptyInput
	}

	// Fresh queue per session: dedup state never leaks across sessions.
	queue := ingest.NewQueue()
	for _, path := range paths {
		if _, err := queue.Enqueue(path); err != nil {
			return nil, err
		}
	}
	queue.Seal()

	poolOpts := []ingest.PoolOption{ingest.WithWorkers(nav.workers)}
	if nav.readFunc != nil {
		poolOpts = append(poolOpts, ingest.WithReadFunc(nav.readFunc))
	}
	contents, err := ingest.NewPool(poolOpts...).Run(ctx, queue)
	if err != nil {
		return nil, err
	}
	if len(contents) == 0 {
		return nil, ErrNoParseableContent
	}

	// Extract in sorted-path order so graph node insertion, and therefore
	// every serialized artifact, is deterministic.
	sortedPaths := make([]string, 0, len(contents))
	for path := range contents {
		sortedPaths = append(sortedPaths, path)
	}
	sort.Strings(sortedPaths)

	trees := make(map[string]*ast.SyntaxNode, len(contents))
	forest := make([]*ast.SyntaxNode, 0, len(contents))
	unitIndex := index.NewUnitIndex()
	for _, path := range sortedPaths {
		tree, extractErr := nav.registry.ExtractFile(ctx, []byte(contents[path]), path)
		if extractErr != nil {
			return nil, extractErr
		}
		if tree == nil {
			continue
		}
		trees[path] = tree
		forest = append(forest, tree)
		if idxErr := unitIndex.AddTree(tree); idxErr != nil {
			return nil, idxErr
		}
	}
	if len(forest) == 0 {
		return nil, ErrNoParseableContent
	}

	hpg, err := nav.containment.Build(ctx, forest)
	if err != nil {
		return nil, err
	}

	cfgs := make(map[string]*graph.Graph)
	pdgs := make(map[string]*graph.Graph)
	for _, path := range sortedPaths {
		tree, ok := trees[path]
		if !ok {
			continue
		}
		source := contents[path]
		for _, unit := range tree.AnalyzableUnits() {
			cfgs[unit.ID] = nav.flow.Build(unit, source)
			pdgs[unit.ID] = nav.dependency.Build(unit, source)
		}
	}

	completedAt := time.Now()
	return &sessionResult{
		sessionID:    sessionID,
		source:       source,
		completedAt:  completedAt,
		fileContents: contents,
		trees:        trees,
		hpg:          hpg,
		cfgs:         cfgs,
		pdgs:         pdgs,
		unitIndex:    unitIndex,
		report:       buildReport(trees, hpg, cfgs, pdgs, completedAt),
	}, nil
}

// publish atomically swaps in a session's results.
func (nav *Navigator) publish(result *sessionResult) {
	nav.stateMu.Lock()
	defer nav.stateMu.Unlock()

	nav.sessionID = result.sessionID
	nav.source = result.source
	nav.completedAt = result.completedAt
	nav.fileContents = result.fileContents
	nav.trees = result.trees
	nav.hpg = result.hpg
	nav.cfgs = result.cfgs
	nav.pdgs = result.pdgs
	nav.unitIndex = result.unitIndex
	nav.report = result.report
}

// setRunning flips the in-progress flag used by Status.
func (nav *Navigator) setRunning(v bool) {
	nav.inProgress.Lock()
	nav.running = v
	nav.inProgress.Unlock()
}

// isRunning reads the in-progress flag.
func (nav *Navigator) isRunning() bool {
	nav.inProgress.Lock()
	defer nav.inProgress.Unlock()
	return nav.running
}

// Status returns the orchestrator's current state.
func (nav *Navigator) Status() Status {
	nav.stateMu.RLock()
	defer nav.stateMu.RUnlock()

	s := Status{
		SessionID:  nav.sessionID,
		Analyzed:   nav.report != nil,
		InProgress: nav.isRunning(),
		Source:     nav.source,
		Files:      len(nav.trees),
		Units:      len(nav.cfgs),
		CFGs:       len(nav.cfgs),
		PDGs:       len(nav.pdgs),
	}
	if !nav.completedAt.IsZero() {
		s.CompletedAt = nav.completedAt.UTC().Format(time.RFC3339)
	}
	return s
}

// Report returns the most recent session's report.
//
// Errors: ErrNoAnalysis before the first successful session.
func (nav *Navigator) Report() (*AnalysisReport, error) {
	nav.stateMu.RLock()
	defer nav.stateMu.RUnlock()

	if nav.report == nil {
		return nil, ErrNoAnalysis
	}
	return nav.report, nil
}

// Containment returns the current containment graph.
//
// Errors: ErrNoAnalysis before the first successful session.
func (nav *Navigator) Containment() (*graph.Graph, error) {
	nav.stateMu.RLock()
	defer nav.stateMu.RUnlock()

	if nav.hpg == nil {
		return nil, ErrNoAnalysis
	}
	return nav.hpg, nil
}

// FlowGraph returns the control-flow graph for one unit ID.
//
// Errors: ErrNoAnalysis before the first session, ErrUnitNotFound for an
// unknown ID.
func (nav *Navigator) FlowGraph(unitID string) (*graph.Graph, error) {
	nav.stateMu.RLock()
	defer nav.stateMu.RUnlock()

	if nav.report == nil {
		return nil, ErrNoAnalysis
	}
	g, ok := nav.cfgs[unitID]
	if !ok {
		return nil, ErrUnitNotFound
	}
	return g, nil
}

// DependencyGraph returns the dependency graph for one unit ID.
//
// Errors: ErrNoAnalysis before the first session, ErrUnitNotFound for an
// unknown ID.
func (nav *Navigator) DependencyGraph(unitID string) (*graph.Graph, error) {
	nav.stateMu.RLock()
	defer nav.stateMu.RUnlock()

	if nav.report == nil {
		return nil, ErrNoAnalysis
	}
	g, ok := nav.pdgs[unitID]
	if !ok {
		return nil, ErrUnitNotFound
	}
	return g, nil
}

// Search finds units by name: exact, then case-insensitive, then prefix.
//
// Errors: ErrNoAnalysis before the first successful session.
func (nav *Navigator) Search(query string, limit int) ([]*ast.SyntaxNode, error) {
	nav.stateMu.RLock()
	defer nav.stateMu.RUnlock()

	if nav.report == nil {
		return nil, ErrNoAnalysis
	}
	return nav.unitIndex.Search(query, limit), nil
}

// Clear drops all published results, returning the Navigator to its
// pre-analysis state. The extraction cache survives; it is keyed by
// content hash and stays valid across sessions.
func (nav *Navigator) Clear() {
	nav.stateMu.Lock()
	defer nav.stateMu.Unlock()

	nav.sessionID = ""
	nav.source = ""
	nav.completedAt = time.Time{}
	nav.fileContents = nil
	nav.trees = nil
	nav.hpg = nil
	nav.cfgs = nil
	nav.pdgs = nil
	nav.unitIndex = index.NewUnitIndex()
	nav.report = nil
}
