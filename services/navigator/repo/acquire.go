// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package repo

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
)

// AcquireOption is a functional option for configuring an Acquirer.
type AcquireOption func(*Acquirer)

// WithWorkDir sets the directory under which remote clones are placed.
func WithWorkDir(dir string) AcquireOption {
	return func(a *Acquirer) {
		if dir != "" {
			a.workDir = dir
		}
	}
}

// WithCloneDepth sets the clone depth for remote repositories. Zero means
// a full clone.
func WithCloneDepth(depth int) AcquireOption {
	return func(a *Acquirer) {
		if depth >= 0 {
			a.cloneDepth = depth
		}
	}
}

// DefaultCloneDepth is the shallow-clone depth used for remote sources.
// Analysis only needs the working tree, not history.
const DefaultCloneDepth = 1

// Acquirer resolves a repository source (local path or remote git URL)
// to a local directory ready for discovery.
//
// Description:
//
//	A source that exists on disk is used in place. A source that looks
//	like a git URL (scheme prefix or scp-like git@ form) is shallow-cloned
//	into the work directory; an existing clone of the same URL is reused
//	after a fetch-free open check.
//
// Thread Safety:
//
//	Acquirer is safe for concurrent use on distinct sources. Concurrent
//	acquisition of the same remote URL is not coordinated.
type Acquirer struct {
	workDir    string
	cloneDepth int
}

// NewAcquirer creates an Acquirer with the given options.
func NewAcquirer(opts ...AcquireOption) *Acquirer {
	a := &Acquirer{
		workDir:    filepath.Join(os.TempDir(), "navigator-repos"),
		cloneDepth: DefaultCloneDepth,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Acquire resolves source to a local directory.
//
// Inputs:
//
//	ctx - Context for cancellation; clone operations respect it.
//	source - Local directory path or remote git URL.
//
// Outputs:
//
//	string - Local directory containing the repository working tree.
//	error - ErrRepoNotFound, ErrCloneFailed, or ErrInvalidSource.
func (a *Acquirer) Acquire(ctx context.Context, source string) (string, error) {
	if source == "" {
		return "", ErrInvalidSource
	}

	if isRemoteURL(source) {
		return a.clone(ctx, source)
	}

	info, err := os.Stat(source)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRepoNotFound, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrInvalidSource, source)
	}
	return filepath.Abs(source)
}

// clone shallow-clones url into a deterministic directory under workDir,
// reusing an existing clone when present.
func (a *Acquirer) clone(ctx context.Context, url string) (string, error) {
	dir := filepath.Join(a.workDir, cloneDirName(url))

	if _, err := git.PlainOpen(dir); err == nil {
		slog.Info("reusing existing clone",
			slog.String("url", url),
			slog.String("dir", dir))
		return dir, nil
	}

	if err := os.MkdirAll(a.workDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: creating work dir: %v", ErrCloneFailed, err)
	}

	slog.Info("cloning repository",
		slog.String("url", url),
		slog.String("dir", dir),
		slog.Int("depth", a.cloneDepth))

	_, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:          url,
		Depth:        a.cloneDepth,
		SingleBranch: true,
	})
	if err != nil {
		// Leave no half-finished checkout behind.
		_ = os.RemoveAll(dir)
		return "", fmt.Errorf("%w: %v", ErrCloneFailed, err)
	}
	return dir, nil
}

// isRemoteURL reports whether source looks like a remote git location.
func isRemoteURL(source string) bool {
	for _, prefix := range []string{"http://", "https://", "git://", "ssh://"} {
		if strings.HasPrefix(source, prefix) {
			return true
		}
	}
	return strings.HasPrefix(source, "git@")
}

// cloneDirName derives a filesystem-safe directory name from a git URL.
func cloneDirName(url string) string {
	name := strings.TrimSuffix(url, ".git")
	if i := strings.LastIndexAny(name, "/:"); i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		name = "repo"
	}
	sanitized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '-'
		}
	}, name)
	return sanitized
}
