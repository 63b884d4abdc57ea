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

import "testing"

func TestGenerateID(t *testing.T) {
	cases := []struct {
		filePath string
		line     int
		name     string
		want     string
	}{
		{"a.py", 1, "f", "a.py:1:f"},
		{"src/pkg/mod.py", 42, "Handler", "src/pkg/mod.py:42:Handler"},
		{"/abs/path.py", 7, "run", "/abs/path.py:7:run"},
	}
	for _, tc := range cases {
		if got := GenerateID(tc.filePath, tc.line, tc.name); got != tc.want {
			t.Errorf("GenerateID(%q, %d, %q) = %q, want %q", tc.filePath, tc.line, tc.name, got, tc.want)
		}
	}
}

func TestNodeKind_String(t *testing.T) {
	cases := map[NodeKind]string{
		KindFile:      "file",
		KindClass:     "class",
		KindFunction:  "function",
		KindMethod:    "method",
		KindUnknown:   "unknown",
		NodeKind(404): "unknown",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("NodeKind(%d).String() = %q, want %q", k, got, want)
		}
	}
}

func TestNodeKind_IsAnalyzableUnit(t *testing.T) {
	if !KindFunction.IsAnalyzableUnit() {
		t.Error("function should be analyzable")
	}
	if !KindMethod.IsAnalyzableUnit() {
		t.Error("method should be analyzable")
	}
	for _, k := range []NodeKind{KindFile, KindClass, KindVariable, KindImport, KindCall, KindUnknown} {
		if k.IsAnalyzableUnit() {
			t.Errorf("%s should not be analyzable", k)
		}
	}
}

func sampleTree() *SyntaxNode {
	method := &SyntaxNode{ID: "a.py:3:run", Kind: KindMethod, Name: "run", FilePath: "a.py", StartLine: 3, EndLine: 5}
	class := &SyntaxNode{
		ID: "a.py:2:W", Kind: KindClass, Name: "W", FilePath: "a.py", StartLine: 2, EndLine: 5,
		Children: []*SyntaxNode{method},
	}
	fn := &SyntaxNode{ID: "a.py:7:f", Kind: KindFunction, Name: "f", FilePath: "a.py", StartLine: 7, EndLine: 9}
	return &SyntaxNode{
		ID: "a.py:1:a.py", Kind: KindFile, Name: "a.py", FilePath: "a.py", StartLine: 1, EndLine: 9,
		Children: []*SyntaxNode{class, fn},
	}
}

func TestSyntaxNode_Walk(t *testing.T) {
	var order []string
	sampleTree().Walk(func(n *SyntaxNode) bool {
		order = append(order, n.Name)
		return true
	})
	want := []string{"a.py", "W", "run", "f"}
	if len(order) != len(want) {
		t.Fatalf("visited %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("visit order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestSyntaxNode_WalkPrune(t *testing.T) {
	var visited []string
	sampleTree().Walk(func(n *SyntaxNode) bool {
		visited = append(visited, n.Name)
		return n.Kind != KindClass // prune class subtree
	})
	for _, name := range visited {
		if name == "run" {
			t.Error("pruned subtree was visited")
		}
	}
	// Siblings of the pruned node are still visited.
	found := false
	for _, name := range visited {
		if name == "f" {
			found = true
		}
	}
	if !found {
		t.Error("sibling of pruned subtree not visited")
	}
}

func TestSyntaxNode_AnalyzableUnits(t *testing.T) {
	units := sampleTree().AnalyzableUnits()
	if len(units) != 2 {
		t.Fatalf("AnalyzableUnits() returned %d units, want 2", len(units))
	}
	if units[0].Name != "run" || units[1].Name != "f" {
		t.Errorf("units = [%s, %s], want [run, f]", units[0].Name, units[1].Name)
	}
}

func TestSyntaxNode_Validate(t *testing.T) {
	if err := sampleTree().Validate(); err != nil {
		t.Errorf("valid tree failed validation: %v", err)
	}

	noID := sampleTree()
	noID.Children[0].ID = ""
	if err := noID.Validate(); err == nil {
		t.Error("tree with empty child ID passed validation")
	}

	badRange := sampleTree()
	badRange.Children[1].EndLine = 1 // before StartLine 7
	if err := badRange.Validate(); err == nil {
		t.Error("tree with inverted line range passed validation")
	}
}

func TestCountLines(t *testing.T) {
	cases := []struct {
		content string
		want    int
	}{
		{"", 0},
		{"x", 1},
		{"x\n", 1},
		{"x\ny", 2},
		{"x\ny\n", 2},
		{"\n\n\n", 3},
	}
	for _, tc := range cases {
		if got := CountLines(tc.content); got != tc.want {
			t.Errorf("CountLines(%q) = %d, want %d", tc.content, got, tc.want)
		}
	}
}
