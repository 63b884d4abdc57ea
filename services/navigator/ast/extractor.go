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
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the default capacity of the extraction result cache.
const DefaultCacheSize = 4096

// Extractor defines the contract for turning source text into a typed
// syntax tree.
//
// Description:
//
//	Extractor implementations produce one SyntaxNode tree per file, rooted
//	at a KindFile node spanning the whole file. Implementations are
//	degradation-first: malformed input yields a bare file node with no
//	children rather than an error.
//
// Thread Safety:
//
//	Implementations must be safe for concurrent use. Multiple goroutines
//	may call Extract simultaneously with different content.
type Extractor interface {
	// Extract parses content and returns the file's syntax tree.
	//
	// Returns (nil, nil) when content is empty. Returns a non-nil error
	// only for context cancellation; every other failure degrades to a
	// childless file root.
	Extract(ctx context.Context, content []byte, filePath string) (*SyntaxNode, error)

	// Language returns the canonical lowercase language name.
	Language() string

	// Extensions returns the file extensions this extractor handles,
	// including the leading dot, lowercase.
	Extensions() []string
}

// Registry selects the extractor for a file and caches extraction results
// by content hash.
//
// Description:
//
//	Files whose extension has a registered exact extractor are parsed
//	precisely; every other file goes through the line-heuristic fallback.
//	Results are cached in a bounded LRU keyed by (path, sha256(content)),
//	so re-analysis of unchanged files skips the parse. The cache is
//	content-addressed and therefore safe to keep across analysis sessions.
//
// Thread Safety:
//
//	Registry is safe for concurrent use.
type Registry struct {
	mu sync.RWMutex

	// byExtension maps file extensions to exact extractors.
	byExtension map[string]Extractor

	// fallback handles extensions with no exact extractor.
	fallback Extractor

	// cache maps cacheKey(path, content) to extracted trees.
	cache *lru.Cache[string, *SyntaxNode]
}

// RegistryOption is a functional option for configuring Registry.
type RegistryOption func(*registryOptions)

type registryOptions struct {
	cacheSize   int
	maxFileSize int64
}

// WithCacheSize sets the capacity of the extraction result cache.
func WithCacheSize(n int) RegistryOption {
	return func(o *registryOptions) {
		if n > 0 {
			o.cacheSize = n
		}
	}
}

// WithMaxFileSize sets the per-file size ceiling passed to the exact
// extractors. Oversized files degrade to a childless file root.
func WithMaxFileSize(bytes int64) RegistryOption {
	return func(o *registryOptions) {
		if bytes > 0 {
			o.maxFileSize = bytes
		}
	}
}

// NewRegistry creates a Registry with the standard extractor set: the
// tree-sitter Python extractor plus the line-heuristic fallback.
//
// Example:
//
//	reg := NewRegistry()
//	tree, err := reg.ExtractFile(ctx, []byte("def f():\n    pass\n"), "a.py")
func NewRegistry(opts ...RegistryOption) *Registry {
	options := registryOptions{cacheSize: DefaultCacheSize}
	for _, opt := range opts {
		opt(&options)
	}

	// lru.New only fails for non-positive sizes, which the option guards.
	cache, _ := lru.New[string, *SyntaxNode](options.cacheSize)

	r := &Registry{
		byExtension: make(map[string]Extractor),
		fallback:    NewFallbackExtractor(),
		cache:       cache,
	}

	var pythonOpts []PythonExtractorOption
	if options.maxFileSize > 0 {
		pythonOpts = append(pythonOpts, WithPythonMaxFileSize(options.maxFileSize))
	}
	r.Register(NewPythonExtractor(pythonOpts...))
	return r
}

// Register adds an exact extractor for each of its extensions. Existing
// registrations for the same extension are overwritten.
func (r *Registry) Register(e Extractor) {
	if e == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ext := range e.Extensions() {
		r.byExtension[ext] = e
	}
}

// ForFile returns the extractor that will handle the given path and
// whether it is an exact (grammar-backed) extractor.
func (r *Registry) ForFile(filePath string) (Extractor, bool) {
	ext := strings.ToLower(filepath.Ext(filePath))
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.byExtension[ext]; ok {
		return e, true
	}
	return r.fallback, false
}

// ExtractFile extracts the syntax tree for one file, consulting the cache.
//
// Inputs:
//
//	ctx - Context for cancellation.
//	content - Raw file content. Empty content yields (nil, nil).
//	filePath - Path used for ID generation and extractor selection.
//
// Outputs:
//
//	*SyntaxNode - The file tree, or nil for empty content.
//	error - Non-nil only for context cancellation.
func (r *Registry) ExtractFile(ctx context.Context, content []byte, filePath string) (*SyntaxNode, error) {
	if len(content) == 0 {
		return nil, nil
	}

	key := cacheKey(filePath, content)
	if tree, ok := r.cache.Get(key); ok {
		return tree, nil
	}

	extractor, exact := r.ForFile(filePath)
	if !exact {
		recordFallback(ctx, strings.ToLower(filepath.Ext(filePath)))
	}

	tree, err := extractor.Extract(ctx, content, filePath)
	if err != nil {
		return nil, err
	}
	if tree != nil {
		r.cache.Add(key, tree)
	}
	return tree, nil
}

// CacheLen returns the number of cached extraction results.
func (r *Registry) CacheLen() int {
	return r.cache.Len()
}

// cacheKey derives the cache key for a (path, content) pair. The path is
// part of the key because node IDs embed it.
func cacheKey(filePath string, content []byte) string {
	sum := sha256.Sum256(content)
	return filePath + ":" + hex.EncodeToString(sum[:])
}
