// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package graph

import (
	"encoding/json"
	"sort"
	"testing"

	"github.com/AleutianAI/navigator/services/navigator/ast"
)

func TestToSerializable_NodesSortedByID(t *testing.T) {
	g := New()
	for _, id := range []string{"c", "a", "b"} {
		g.AddNode(id, ContainmentAttrs{Kind: ast.KindFile, Name: id})
	}
	g.Freeze()

	s := g.ToSerializable()
	if len(s.Nodes) != 3 {
		t.Fatalf("len(Nodes) = %d, want 3", len(s.Nodes))
	}
	ids := make([]string, len(s.Nodes))
	for i, n := range s.Nodes {
		ids[i] = n["id"].(string)
	}
	if !sort.StringsAreSorted(ids) {
		t.Errorf("node IDs not sorted: %v", ids)
	}
}

func TestToSerializable_NodeShape(t *testing.T) {
	g := New()
	g.AddNode("a.py:1:f", ContainmentAttrs{
		Kind: ast.KindFunction, Name: "f", FilePath: "a.py",
		LineStart: 1, LineEnd: 3,
	})
	g.Freeze()

	s := g.ToSerializable()
	node := s.Nodes[0]

	if node["id"] != "a.py:1:f" {
		t.Errorf("id = %v, want a.py:1:f", node["id"])
	}
	if node["type"] != "function" {
		t.Errorf("type = %v, want function", node["type"])
	}
	if node["name"] != "f" {
		t.Errorf("name = %v, want f", node["name"])
	}
	if node["file_path"] != "a.py" {
		t.Errorf("file_path = %v, want a.py", node["file_path"])
	}
	if node["line_start"] != 1 || node["line_end"] != 3 {
		t.Errorf("lines = %v..%v, want 1..3", node["line_start"], node["line_end"])
	}
}

func TestToSerializable_IDKeyWinsCollision(t *testing.T) {
	g := New()
	g.AddNode("real-id", ContainmentAttrs{
		Kind: ast.KindFile, Name: "x",
		Extra: map[string]string{"id": "stray-attribute"},
	})
	g.Freeze()

	node := g.ToSerializable().Nodes[0]
	if node["id"] != "real-id" {
		t.Errorf("id = %v, want real-id (attribute collision must lose)", node["id"])
	}
}

func TestToSerializable_EdgesSorted(t *testing.T) {
	g := New()
	for _, id := range []string{"a", "b", "c"} {
		g.AddNode(id, nil)
	}
	g.AddEdge("c", "a", EdgeTypeContains)
	g.AddEdge("a", "b", EdgeTypeContains)
	g.AddEdge("a", "c", EdgeTypeContains)
	g.Freeze()

	edges := g.ToSerializable().Edges
	want := []SerializableEdge{
		{Source: "a", Target: "b", Type: "contains"},
		{Source: "a", Target: "c", Type: "contains"},
		{Source: "c", Target: "a", Type: "contains"},
	}
	for i, e := range edges {
		if e != want[i] {
			t.Errorf("Edges[%d] = %+v, want %+v", i, e, want[i])
		}
	}
}

func TestToSerializable_NilGraph(t *testing.T) {
	var g *Graph
	s := g.ToSerializable()
	if s == nil {
		t.Fatal("ToSerializable on nil graph returned nil")
	}
	if len(s.Nodes) != 0 || len(s.Edges) != 0 {
		t.Errorf("nil graph serialization not empty: %+v", s)
	}

	// Empty lists must encode as [], not null.
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != `{"nodes":[],"edges":[]}` {
		t.Errorf("JSON = %s, want empty arrays", data)
	}
}

func TestHash_TopologySensitive(t *testing.T) {
	build := func(withEdge bool) *Graph {
		g := New()
		g.AddNode("a", nil)
		g.AddNode("b", nil)
		if withEdge {
			g.AddEdge("a", "b", EdgeTypeNormal)
		}
		g.Freeze()
		return g
	}

	if build(true).Hash() != build(true).Hash() {
		t.Error("identical graphs hash differently")
	}
	if build(true).Hash() == build(false).Hash() {
		t.Error("different topologies hash identically")
	}
}
