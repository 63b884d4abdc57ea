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
	"strings"
	"testing"
)

func TestFallbackExtractor_JavaScriptFunction(t *testing.T) {
	source := "function handler(req, res) {\n  res.end();\n}\n"
	root, err := NewFallbackExtractor().Extract(context.Background(), []byte(source), "s.js")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if len(root.Children) != 1 {
		t.Fatalf("root has %d children, want 1", len(root.Children))
	}
	fn := root.Children[0]
	if fn.Kind != KindFunction || fn.Name != "handler" {
		t.Errorf("child = %s %q, want function handler", fn.Kind, fn.Name)
	}
	if fn.StartLine != 1 {
		t.Errorf("start = %d, want 1", fn.StartLine)
	}
	// Window estimate clamped to the 3-line file.
	if fn.EndLine != 3 {
		t.Errorf("end = %d, want clamped 3", fn.EndLine)
	}
}

func TestFallbackExtractor_WindowEstimate(t *testing.T) {
	// A long file: the estimate is startLine + window.
	var b strings.Builder
	b.WriteString("def f():\n")
	for i := 0; i < 30; i++ {
		b.WriteString("    pass\n")
	}
	root, err := NewFallbackExtractor().Extract(context.Background(), []byte(b.String()), "long.unknown")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	fn := root.Children[0]
	if fn.EndLine != 1+FallbackFunctionWindow {
		t.Errorf("function end = %d, want %d", fn.EndLine, 1+FallbackFunctionWindow)
	}
}

func TestFallbackExtractor_ClassWindow(t *testing.T) {
	var b strings.Builder
	b.WriteString("class Widget {\n")
	for i := 0; i < 40; i++ {
		b.WriteString("  x;\n")
	}
	root, err := NewFallbackExtractor().Extract(context.Background(), []byte(b.String()), "w.ts")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	class := root.Children[0]
	if class.Kind != KindClass || class.Name != "Widget" {
		t.Fatalf("child = %s %q, want class Widget", class.Kind, class.Name)
	}
	if class.EndLine != 1+FallbackClassWindow {
		t.Errorf("class end = %d, want %d", class.EndLine, 1+FallbackClassWindow)
	}
}

func TestFallbackExtractor_FlatChildren(t *testing.T) {
	// The heuristic has no nesting: the method lands beside the class,
	// both as direct children of the file root.
	source := "class A:\n    def m(self):\n        pass\n"
	root, err := NewFallbackExtractor().Extract(context.Background(), []byte(source), "a.unknown")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if len(root.Children) != 2 {
		t.Fatalf("root has %d children, want 2 flat", len(root.Children))
	}
	for _, child := range root.Children {
		if len(child.Children) != 0 {
			t.Errorf("fallback child %q has nested children", child.Name)
		}
	}
}

func TestFallbackExtractor_HeaderName(t *testing.T) {
	cases := []struct {
		line    string
		keyword string
		want    string
	}{
		{"def f():", "def ", "f"},
		{"def f(a, b):", "def ", "f"},
		{"class Widget(Base):", "class ", "Widget"},
		{"class Map<K, V> {", "class ", "Map"},
		{"function go() {", "function ", "go"},
		{"def :", "def ", ""},
	}
	for _, tc := range cases {
		if got := headerName(tc.line, tc.keyword); got != tc.want {
			t.Errorf("headerName(%q) = %q, want %q", tc.line, got, tc.want)
		}
	}
}

func TestFallbackExtractor_IgnoresNonHeaders(t *testing.T) {
	source := "let def = 1;\nclassic();\nundefined = define();\n"
	root, err := NewFallbackExtractor().Extract(context.Background(), []byte(source), "x.js")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(root.Children) != 0 {
		t.Errorf("root has %d children, want 0", len(root.Children))
	}
}

func TestFallbackExtractor_EmptyContent(t *testing.T) {
	root, err := NewFallbackExtractor().Extract(context.Background(), nil, "e.js")
	if err != nil || root != nil {
		t.Errorf("empty content = (%v, %v), want (nil, nil)", root, err)
	}
}
