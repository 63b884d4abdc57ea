// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package repo discovers and acquires source repositories for analysis.
package repo

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultExtensions is the set of source file extensions considered for
// analysis when none are configured.
var DefaultExtensions = []string{".py", ".pyi", ".js", ".ts", ".java", ".cpp", ".c"}

// DiscoverOption is a functional option for configuring discovery.
type DiscoverOption func(*Discoverer)

// WithExtensions sets the file extensions accepted by discovery.
// Extensions must include the leading dot.
func WithExtensions(exts []string) DiscoverOption {
	return func(d *Discoverer) {
		if len(exts) > 0 {
			d.extensions = make(map[string]struct{}, len(exts))
			for _, ext := range exts {
				d.extensions[strings.ToLower(ext)] = struct{}{}
			}
		}
	}
}

// WithMaxFiles caps the number of files discovery may return.
func WithMaxFiles(n int) DiscoverOption {
	return func(d *Discoverer) {
		if n > 0 {
			d.maxFiles = n
		}
	}
}

// DefaultMaxFiles caps a single discovery walk.
const DefaultMaxFiles = 100_000

// Discoverer walks a repository tree and collects analyzable source files.
//
// Description:
//
//	The walk is recursive, skips hidden directories (".git", ".venv" and
//	anything else starting with a dot) plus common dependency directories,
//	and keeps regular files whose extension matches the configured set.
//	Results are absolute paths in sorted order so the downstream pipeline
//	is deterministic regardless of filesystem iteration order.
//
// Thread Safety:
//
//	Discoverer is safe for concurrent use after construction.
type Discoverer struct {
	extensions map[string]struct{}
	maxFiles   int
}

// skipDirs are dependency and build-output directories never worth walking.
var skipDirs = map[string]struct{}{
	"node_modules": {},
	"__pycache__":  {},
	"venv":         {},
	"vendor":       {},
	"build":        {},
	"dist":         {},
	"target":       {},
}

// NewDiscoverer creates a Discoverer with the given options.
//
// Example:
//
//	d := repo.NewDiscoverer(repo.WithExtensions([]string{".py"}))
//	paths, err := d.Discover(ctx, "/tmp/checkout")
func NewDiscoverer(opts ...DiscoverOption) *Discoverer {
	d := &Discoverer{
		extensions: make(map[string]struct{}, len(DefaultExtensions)),
		maxFiles:   DefaultMaxFiles,
	}
	for _, ext := range DefaultExtensions {
		d.extensions[ext] = struct{}{}
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Discover walks root and returns the sorted absolute paths of all
// matching source files.
//
// Inputs:
//
//	ctx - Context for cancellation, checked once per directory entry.
//	root - Directory to walk. Relative paths are made absolute.
//
// Errors:
//
//	ErrRepoNotFound if root does not exist or is not a directory, the
//	context's error on cancellation, or a wrapped walk error.
func (d *Discoverer) Discover(ctx context.Context, root string) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root %q: %w", root, err)
	}

	var paths []string
	walkErr := filepath.WalkDir(absRoot, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if path == absRoot {
				return fmt.Errorf("%w: %v", ErrRepoNotFound, err)
			}
			// Unreadable subtree: log and keep walking.
			slog.Warn("skipping unreadable path", slog.String("path", path), slog.String("error", err.Error()))
			if entry != nil && entry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		name := entry.Name()
		if entry.IsDir() {
			if path == absRoot {
				return nil
			}
			if strings.HasPrefix(name, ".") {
				return fs.SkipDir
			}
			if _, skip := skipDirs[name]; skip {
				return fs.SkipDir
			}
			return nil
		}

		if !entry.Type().IsRegular() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(name))
		if _, ok := d.extensions[ext]; !ok {
			return nil
		}
		if len(paths) >= d.maxFiles {
			return ErrTooManyFiles
		}
		paths = append(paths, path)
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	sort.Strings(paths)
	return paths, nil
}
