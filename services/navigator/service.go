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
	"errors"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/AleutianAI/navigator/services/navigator/config"
)

// ErrRateLimited indicates an analysis request was rejected by the
// per-service rate limiter.
var ErrRateLimited = errors.New("analysis rate limit exceeded")

// Service wraps a Navigator with service-level policy: analysis rate
// limiting and staleness tracking for local sources.
//
// Description:
//
//	Analysis is expensive, so new sessions are rate limited. After a
//	successful analysis of a local directory, the service watches that
//	directory and flags the published results as stale when files
//	change; clients decide when to re-analyze.
//
// Thread Safety:
//
//	Service is safe for concurrent use.
type Service struct {
	nav     *Navigator
	limiter *rate.Limiter

	watchMu     sync.Mutex
	watcher     *fsnotify.Watcher
	watchCancel context.CancelFunc

	staleMu sync.RWMutex
	stale   bool
}

// NewService creates a Service from the configuration.
//
// Example:
//
//	cfg, _ := config.Load("")
//	svc := navigator.NewService(cfg)
//	defer svc.Close()
func NewService(cfg *config.Config) *Service {
	return &Service{
		nav: New(
			WithWorkers(cfg.Analysis.Workers),
			WithExtensions(cfg.Analysis.Extensions),
			WithMaxFileSize(cfg.Analysis.MaxFileSizeBytes),
			WithMaxFiles(cfg.Analysis.MaxFiles),
			WithCacheSize(cfg.Cache.ExtractionSize),
		),
		limiter: rate.NewLimiter(
			rate.Every(time.Minute/time.Duration(cfg.Limits.AnalyzeRatePerMinute)), 1),
	}
}

// Navigator exposes the underlying orchestrator for read operations.
func (s *Service) Navigator() *Navigator {
	return s.nav
}

// Analyze runs one rate-limited analysis session.
//
// Errors:
//
//	ErrRateLimited, plus every error Navigator.Analyze can return.
func (s *Service) Analyze(ctx context.Context, source string) (*AnalysisReport, error) {
	if !s.limiter.Allow() {
		return nil, ErrRateLimited
	}

	report, err := s.nav.Analyze(ctx, source)
	if err != nil {
		return nil, err
	}

	s.setStale(false)
	s.watchSource(source)
	return report, nil
}

// Stale reports whether the analyzed source has changed on disk since
// the last session. Always false for remote sources.
func (s *Service) Stale() bool {
	s.staleMu.RLock()
	defer s.staleMu.RUnlock()
	return s.stale
}

func (s *Service) setStale(v bool) {
	s.staleMu.Lock()
	s.stale = v
	s.staleMu.Unlock()
}

// watchSource replaces the staleness watcher with one on the given local
// directory. Remote sources and watch setup failures degrade to no
// staleness tracking.
func (s *Service) watchSource(source string) {
	info, err := os.Stat(source)
	if err != nil || !info.IsDir() {
		s.stopWatcher()
		return
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Warn("staleness watcher unavailable", slog.String("error", err.Error()))
		s.stopWatcher()
		return
	}
	if err := watcher.Add(source); err != nil {
		slog.Warn("cannot watch source directory",
			slog.String("dir", source),
			slog.String("error", err.Error()))
		_ = watcher.Close()
		s.stopWatcher()
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	s.watchMu.Lock()
	if s.watchCancel != nil {
		s.watchCancel()
		_ = s.watcher.Close()
	}
	s.watcher = watcher
	s.watchCancel = cancel
	s.watchMu.Unlock()

	go s.watchLoop(ctx, watcher, source)
}

// watchLoop marks results stale on the first relevant event, then exits.
func (s *Service) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, dir string) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				slog.Info("analyzed source changed, results stale",
					slog.String("dir", dir),
					slog.String("path", event.Name))
				s.setStale(true)
				return
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("staleness watcher error", slog.String("error", err.Error()))
		}
	}
}

// stopWatcher tears down any active staleness watcher.
func (s *Service) stopWatcher() {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()

	if s.watchCancel != nil {
		s.watchCancel()
		s.watchCancel = nil
	}
	if s.watcher != nil {
		_ = s.watcher.Close()
		s.watcher = nil
	}
}

// Close releases the service's background resources.
func (s *Service) Close() {
	s.stopWatcher()
}
