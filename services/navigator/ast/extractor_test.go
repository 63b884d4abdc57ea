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
	"testing"
)

func TestRegistry_ForFile(t *testing.T) {
	reg := NewRegistry()

	e, exact := reg.ForFile("src/mod.py")
	if !exact {
		t.Error("expected exact extractor for .py")
	}
	if e.Language() != "python" {
		t.Errorf("extractor language = %q, want python", e.Language())
	}

	e, exact = reg.ForFile("src/MOD.PY")
	if !exact || e.Language() != "python" {
		t.Error("extension matching must be case-insensitive")
	}

	e, exact = reg.ForFile("src/app.js")
	if exact {
		t.Error("expected fallback for .js")
	}
	if e.Language() != "generic" {
		t.Errorf("fallback language = %q, want generic", e.Language())
	}
}

func TestRegistry_ExtractFile(t *testing.T) {
	reg := NewRegistry()
	tree, err := reg.ExtractFile(context.Background(), []byte("def f():\n    pass\n"), "a.py")
	if err != nil {
		t.Fatalf("ExtractFile failed: %v", err)
	}
	if tree == nil || len(tree.Children) != 1 || tree.Children[0].Name != "f" {
		t.Errorf("unexpected tree: %+v", tree)
	}
}

func TestRegistry_CacheHit(t *testing.T) {
	reg := NewRegistry()
	content := []byte("def f():\n    pass\n")

	first, err := reg.ExtractFile(context.Background(), content, "a.py")
	if err != nil {
		t.Fatalf("first ExtractFile failed: %v", err)
	}
	if reg.CacheLen() != 1 {
		t.Fatalf("CacheLen() = %d after first extraction, want 1", reg.CacheLen())
	}

	second, err := reg.ExtractFile(context.Background(), content, "a.py")
	if err != nil {
		t.Fatalf("second ExtractFile failed: %v", err)
	}
	if first != second {
		t.Error("cache miss on identical (path, content) pair")
	}
}

func TestRegistry_CacheKeyedByPathAndContent(t *testing.T) {
	reg := NewRegistry()
	content := []byte("def f():\n    pass\n")

	a, _ := reg.ExtractFile(context.Background(), content, "a.py")
	b, _ := reg.ExtractFile(context.Background(), content, "b.py")
	if a == b {
		t.Error("same content under different paths must not share a cache entry")
	}
	if a.ID == b.ID {
		t.Error("node IDs must embed the file path")
	}

	changed, _ := reg.ExtractFile(context.Background(), []byte("def g():\n    pass\n"), "a.py")
	if changed == a {
		t.Error("changed content must miss the cache")
	}
}

func TestRegistry_EmptyContent(t *testing.T) {
	reg := NewRegistry()
	tree, err := reg.ExtractFile(context.Background(), nil, "a.py")
	if err != nil || tree != nil {
		t.Errorf("empty content = (%v, %v), want (nil, nil)", tree, err)
	}
	if reg.CacheLen() != 0 {
		t.Error("empty content must not be cached")
	}
}

func TestRegistry_MaxFileSizeDegrades(t *testing.T) {
	reg := NewRegistry(WithMaxFileSize(8))
	tree, err := reg.ExtractFile(context.Background(), []byte("def f():\n    pass\n"), "a.py")
	if err != nil {
		t.Fatalf("ExtractFile failed: %v", err)
	}
	if tree == nil || len(tree.Children) != 0 {
		t.Errorf("oversized file must degrade to a childless root, got %+v", tree)
	}
}

func TestRegistry_CacheEviction(t *testing.T) {
	reg := NewRegistry(WithCacheSize(2))
	ctx := context.Background()

	reg.ExtractFile(ctx, []byte("def a():\n    pass\n"), "a.py")
	reg.ExtractFile(ctx, []byte("def b():\n    pass\n"), "b.py")
	reg.ExtractFile(ctx, []byte("def c():\n    pass\n"), "c.py")

	if reg.CacheLen() != 2 {
		t.Errorf("CacheLen() = %d, want LRU capped at 2", reg.CacheLen())
	}
}
