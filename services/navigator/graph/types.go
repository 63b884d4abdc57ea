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
	"time"

	"github.com/AleutianAI/navigator/services/navigator/ast"
)

// Default configuration values.
const (
	// DefaultMaxNodes is the default maximum number of nodes a graph can hold.
	DefaultMaxNodes = 1_000_000

	// DefaultMaxEdges is the default maximum number of edges a graph can hold.
	DefaultMaxEdges = 10_000_000
)

// State represents the lifecycle state of a graph.
type State int

const (
	// StateBuilding indicates the graph is accepting AddNode/AddEdge calls.
	StateBuilding State = iota

	// StateReadOnly indicates the graph is frozen and read-only.
	StateReadOnly
)

// String returns the string representation of the State.
func (s State) String() string {
	switch s {
	case StateBuilding:
		return "building"
	case StateReadOnly:
		return "readonly"
	default:
		return "unknown"
	}
}

// EdgeType defines the type of relationship between graph nodes.
type EdgeType int

const (
	// EdgeTypeUnknown indicates an unrecognized relationship type.
	EdgeTypeUnknown EdgeType = iota

	// EdgeTypeContains links a containment-graph parent to a direct child.
	EdgeTypeContains

	// EdgeTypeNormal is unconditional control flow.
	EdgeTypeNormal

	// EdgeTypeTrue is the taken branch of a condition. Reserved; the
	// current flow builder never emits it.
	EdgeTypeTrue

	// EdgeTypeFalse is the not-taken branch of a condition. Reserved.
	EdgeTypeFalse

	// EdgeTypeLoop is a loop back-edge. Reserved.
	EdgeTypeLoop

	// EdgeTypeDataFlow links consecutive assignments in a dependency graph.
	EdgeTypeDataFlow

	// NumEdgeTypes is the total number of edge types (for array sizing).
	NumEdgeTypes
)

// edgeTypeNames maps EdgeType values to their serialized names.
var edgeTypeNames = map[EdgeType]string{
	EdgeTypeUnknown:  "unknown",
	EdgeTypeContains: "contains",
	EdgeTypeNormal:   "normal",
	EdgeTypeTrue:     "true",
	EdgeTypeFalse:    "false",
	EdgeTypeLoop:     "loop",
	EdgeTypeDataFlow: "data_flow",
}

// String returns the serialized name of the EdgeType.
func (t EdgeType) String() string {
	if name, ok := edgeTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// FlowKind identifies the role of a control-flow node.
type FlowKind int

const (
	// FlowKindEntry is the unit's entry node.
	FlowKindEntry FlowKind = iota

	// FlowKindExit is the unit's exit node.
	FlowKindExit

	// FlowKindStatement is a plain statement node. Reserved; the current
	// builder emits only entry and exit.
	FlowKindStatement

	// FlowKindCondition is a branching condition node. Reserved.
	FlowKindCondition

	// FlowKindLoop is a loop header node. Reserved.
	FlowKindLoop
)

// flowKindNames maps FlowKind values to their serialized names.
var flowKindNames = map[FlowKind]string{
	FlowKindEntry:     "entry",
	FlowKindExit:      "exit",
	FlowKindStatement: "statement",
	FlowKindCondition: "condition",
	FlowKindLoop:      "loop",
}

// String returns the serialized name of the FlowKind.
func (k FlowKind) String() string {
	if name, ok := flowKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Attributes is the closed per-kind payload a graph node carries. Each of
// the three graph families has its own concrete type; the open extension
// map lives only on ContainmentAttrs.
type Attributes interface {
	// AttrMap returns the attribute fields as a string-keyed map, used by
	// serialization to produce the {...attributes, id} node shape.
	AttrMap() map[string]any
}

// ContainmentAttrs are the attributes of a containment-graph node, copied
// verbatim from the originating SyntaxNode.
type ContainmentAttrs struct {
	// Kind is the syntax node kind (file, class, function, method, ...).
	Kind ast.NodeKind

	// Name is the declared name.
	Name string

	// FilePath is the originating file.
	FilePath string

	// LineStart is the 1-based first line.
	LineStart int

	// LineEnd is the 1-based last line, inclusive.
	LineEnd int

	// Extra carries attributes not yet modeled by a dedicated field.
	// Usually nil.
	Extra map[string]string
}

// AttrMap implements Attributes.
func (a ContainmentAttrs) AttrMap() map[string]any {
	m := map[string]any{
		"type":       a.Kind.String(),
		"name":       a.Name,
		"file_path":  a.FilePath,
		"line_start": a.LineStart,
		"line_end":   a.LineEnd,
	}
	for k, v := range a.Extra {
		m[k] = v
	}
	return m
}

// FlowAttrs are the attributes of a control-flow node.
type FlowAttrs struct {
	// Kind is the flow node role (entry, exit, ...).
	Kind FlowKind

	// UnitID is the ID of the owning analyzable unit's SyntaxNode.
	UnitID string

	// LineNumber is the 1-based source line of the node.
	LineNumber int

	// CodeSnippet is the source line text, or "" when out of range.
	CodeSnippet string
}

// AttrMap implements Attributes.
func (a FlowAttrs) AttrMap() map[string]any {
	return map[string]any{
		"type":         a.Kind.String(),
		"ast_node_id":  a.UnitID,
		"line_number":  a.LineNumber,
		"code_snippet": a.CodeSnippet,
	}
}

// DependencyAttrs are the attributes of a dependency-graph node: one
// simple assignment statement inside an analyzable unit.
type DependencyAttrs struct {
	// Variable is the trimmed left-hand side of the assignment.
	Variable string

	// LineNumber is the 1-based source line of the assignment.
	LineNumber int

	// Scope is the owning unit's name.
	Scope string
}

// AttrMap implements Attributes.
func (a DependencyAttrs) AttrMap() map[string]any {
	return map[string]any{
		"variable":    a.Variable,
		"line_number": a.LineNumber,
		"scope":       a.Scope,
	}
}

// Node is one node of a directed graph.
type Node struct {
	// ID is the unique node identifier within its graph.
	ID string

	// Attrs is the closed per-kind payload.
	Attrs Attributes

	// Outgoing contains edges where this node is the source.
	Outgoing []*Edge

	// Incoming contains edges where this node is the target.
	Incoming []*Edge
}

// Edge is a directed, typed edge between two nodes.
type Edge struct {
	// SourceID is the ID of the source node.
	SourceID string

	// TargetID is the ID of the target node.
	TargetID string

	// Type is the relationship type.
	Type EdgeType
}

// Options configures graph capacity limits.
type Options struct {
	// MaxNodes is the maximum number of nodes the graph can hold.
	// Default: 1,000,000
	MaxNodes int

	// MaxEdges is the maximum number of edges the graph can hold.
	// Default: 10,000,000
	MaxEdges int
}

// DefaultOptions returns sensible defaults for graph configuration.
func DefaultOptions() Options {
	return Options{
		MaxNodes: DefaultMaxNodes,
		MaxEdges: DefaultMaxEdges,
	}
}

// Option is a functional option for configuring a Graph.
type Option func(*Options)

// WithMaxNodes sets the maximum number of nodes the graph can hold.
func WithMaxNodes(n int) Option {
	return func(o *Options) {
		o.MaxNodes = n
	}
}

// WithMaxEdges sets the maximum number of edges the graph can hold.
func WithMaxEdges(n int) Option {
	return func(o *Options) {
		o.MaxEdges = n
	}
}

// Graph is a directed attribute graph.
//
// Thread Safety:
//
//	Graph is NOT safe for concurrent use during building. It is designed
//	for single-writer access during build, then read-only after Freeze().
//	After Freeze() the graph can be read from multiple goroutines.
//
// Lifecycle:
//
//  1. Create with New()
//  2. Build with AddNode() and AddEdge() calls
//  3. Call Freeze() to finalize
//  4. Query with NodeByID(), Nodes(), Edges()
type Graph struct {
	// nodes maps node ID to Node.
	nodes map[string]*Node

	// order holds node IDs in insertion order.
	order []string

	// edges contains all edges in insertion order.
	edges []*Edge

	// state is the current lifecycle state.
	state State

	// options contains capacity configuration.
	options Options

	// BuiltAtMilli is the Unix timestamp in milliseconds when Freeze()
	// was called. Zero if the graph has not been frozen.
	BuiltAtMilli int64
}

// New creates an empty graph in the Building state.
//
// Example:
//
//	g := graph.New(graph.WithMaxNodes(100_000))
func New(opts ...Option) *Graph {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	return &Graph{
		nodes:   make(map[string]*Node),
		edges:   make([]*Edge, 0),
		state:   StateBuilding,
		options: options,
	}
}

// State returns the current lifecycle state of the graph.
func (g *Graph) State() State {
	return g.state
}

// IsFrozen returns true if the graph is read-only.
func (g *Graph) IsFrozen() bool {
	return g.state == StateReadOnly
}

// Freeze finalizes the graph, making it read-only. Idempotent.
func (g *Graph) Freeze() {
	if g.state == StateReadOnly {
		return
	}
	g.state = StateReadOnly
	g.BuiltAtMilli = time.Now().UnixMilli()
}

// AddNode adds a node with the given ID and attributes.
//
// Errors:
//
//	ErrGraphFrozen if the graph is read-only, ErrDuplicateNode if the ID
//	already exists, ErrMaxNodesExceeded at capacity.
func (g *Graph) AddNode(id string, attrs Attributes) (*Node, error) {
	if g.state != StateBuilding {
		return nil, ErrGraphFrozen
	}
	if id == "" {
		return nil, ErrEmptyNodeID
	}
	if _, exists := g.nodes[id]; exists {
		return nil, ErrDuplicateNode
	}
	if len(g.nodes) >= g.options.MaxNodes {
		return nil, ErrMaxNodesExceeded
	}

	node := &Node{ID: id, Attrs: attrs}
	g.nodes[id] = node
	g.order = append(g.order, id)
	return node, nil
}

// AddEdge adds a directed edge between two existing nodes.
//
// Errors:
//
//	ErrGraphFrozen if the graph is read-only, ErrUnknownNode if either
//	endpoint is missing, ErrMaxEdgesExceeded at capacity.
func (g *Graph) AddEdge(sourceID, targetID string, edgeType EdgeType) error {
	if g.state != StateBuilding {
		return ErrGraphFrozen
	}
	source, ok := g.nodes[sourceID]
	if !ok {
		return ErrUnknownNode
	}
	target, ok := g.nodes[targetID]
	if !ok {
		return ErrUnknownNode
	}
	if len(g.edges) >= g.options.MaxEdges {
		return ErrMaxEdgesExceeded
	}

	edge := &Edge{SourceID: sourceID, TargetID: targetID, Type: edgeType}
	g.edges = append(g.edges, edge)
	source.Outgoing = append(source.Outgoing, edge)
	target.Incoming = append(target.Incoming, edge)
	return nil
}

// NodeByID returns the node with the given ID, or (nil, false).
func (g *Graph) NodeByID(id string) (*Node, bool) {
	node, ok := g.nodes[id]
	return node, ok
}

// Nodes returns all nodes in insertion order. The slice is freshly
// allocated; the nodes themselves are shared.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		nodes = append(nodes, g.nodes[id])
	}
	return nodes
}

// Edges returns all edges in insertion order. The slice is freshly
// allocated; the edges themselves are shared.
func (g *Graph) Edges() []*Edge {
	edges := make([]*Edge, len(g.edges))
	copy(edges, g.edges)
	return edges
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}
