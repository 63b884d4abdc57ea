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
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
)

// SerializableGraph is the JSON representation clients consume:
// {nodes: [{...attributes, id}], edges: [{source, target, type}]}.
//
// Nodes are sorted by ID and edges by (source, target, type) for
// deterministic output, enabling reliable diffing and content hashing.
//
// Thread Safety: SerializableGraph is a value type with no internal state.
type SerializableGraph struct {
	// Nodes contains one flattened attribute map per node, including the
	// "id" key, sorted by ID.
	Nodes []map[string]any `json:"nodes"`

	// Edges contains all edges.
	Edges []SerializableEdge `json:"edges"`
}

// SerializableEdge is the JSON representation of an Edge.
type SerializableEdge struct {
	// Source is the ID of the source node.
	Source string `json:"source"`

	// Target is the ID of the target node.
	Target string `json:"target"`

	// Type is the edge type name (e.g. "contains", "normal", "data_flow").
	Type string `json:"type"`
}

// ToSerializable converts the graph to its JSON representation.
//
// Outputs:
//
//	*SerializableGraph - The serializable representation. Never nil; a
//	nil graph yields empty node and edge lists.
//
// Complexity:
//
//	O(V log V + E log E); sorting dominates.
//
// Thread Safety:
//
//	Safe for concurrent use on frozen graphs.
func (g *Graph) ToSerializable() *SerializableGraph {
	if g == nil {
		return &SerializableGraph{
			Nodes: []map[string]any{},
			Edges: []SerializableEdge{},
		}
	}

	nodeIDs := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		nodeIDs = append(nodeIDs, id)
	}
	sort.Strings(nodeIDs)

	nodes := make([]map[string]any, 0, len(nodeIDs))
	for _, id := range nodeIDs {
		node := g.nodes[id]
		m := map[string]any{"id": id}
		if node.Attrs != nil {
			for k, v := range node.Attrs.AttrMap() {
				m[k] = v
			}
		}
		// The id key always wins over a colliding attribute key.
		m["id"] = id
		nodes = append(nodes, m)
	}

	edges := make([]SerializableEdge, 0, len(g.edges))
	for _, edge := range g.edges {
		edges = append(edges, SerializableEdge{
			Source: edge.SourceID,
			Target: edge.TargetID,
			Type:   edge.Type.String(),
		})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Source != edges[j].Source {
			return edges[i].Source < edges[j].Source
		}
		if edges[i].Target != edges[j].Target {
			return edges[i].Target < edges[j].Target
		}
		return edges[i].Type < edges[j].Type
	})

	return &SerializableGraph{Nodes: nodes, Edges: edges}
}

// Hash returns a deterministic hash of the graph structure: node IDs and
// edges in sorted order. Attribute values do not contribute; two graphs
// with the same topology hash identically.
func (g *Graph) Hash() string {
	if g == nil {
		return ""
	}

	nodeIDs := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		nodeIDs = append(nodeIDs, id)
	}
	sort.Strings(nodeIDs)

	edgeKeys := make([]string, 0, len(g.edges))
	for _, e := range g.edges {
		edgeKeys = append(edgeKeys, fmt.Sprintf("%s\x00%s\x00%d", e.SourceID, e.TargetID, e.Type))
	}
	sort.Strings(edgeKeys)

	h := sha256.New()
	for _, id := range nodeIDs {
		h.Write([]byte(id))
		h.Write([]byte{0})
	}
	h.Write([]byte{1})
	for _, k := range edgeKeys {
		h.Write([]byte(k))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
