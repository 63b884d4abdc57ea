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
	"fmt"
	"strings"
)

// Default extractor configuration values.
const (
	// DefaultMaxFileSize is the maximum file size extractors accept (10MB).
	DefaultMaxFileSize = 10 * 1024 * 1024

	// WarnFileSize is the threshold above which a warning is logged (1MB).
	WarnFileSize = 1 * 1024 * 1024

	// FallbackFunctionWindow is how many lines past the header the fallback
	// extractor assumes a function body spans. The resulting end line is an
	// estimate clamped to the file length, not a structural bound.
	FallbackFunctionWindow = 9

	// FallbackClassWindow is the fallback body-span estimate for classes.
	FallbackClassWindow = 19
)

// NodeKind identifies the kind of construct a SyntaxNode represents.
type NodeKind int

const (
	// KindUnknown indicates an unrecognized construct.
	KindUnknown NodeKind = iota

	// KindFile is the root node of a single source file.
	KindFile

	// KindClass is a class definition.
	KindClass

	// KindFunction is a free (module-level or nested) function definition.
	KindFunction

	// KindMethod is a function defined directly inside a class body.
	KindMethod

	// KindVariable is a variable declaration or assignment.
	KindVariable

	// KindImport is an import statement.
	KindImport

	// KindCall is a call expression.
	KindCall
)

// nodeKindNames maps NodeKind values to their string representations.
// These strings are part of the serialization contract.
var nodeKindNames = map[NodeKind]string{
	KindUnknown:  "unknown",
	KindFile:     "file",
	KindClass:    "class",
	KindFunction: "function",
	KindMethod:   "method",
	KindVariable: "variable",
	KindImport:   "import",
	KindCall:     "call",
}

// String returns the string representation of the NodeKind.
func (k NodeKind) String() string {
	if name, ok := nodeKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// IsAnalyzableUnit reports whether nodes of this kind are eligible for
// control-flow and dependency graph construction.
func (k NodeKind) IsAnalyzableUnit() bool {
	return k == KindFunction || k == KindMethod
}

// SyntaxNode is one node of the typed syntax tree extracted from a source
// file. Each file yields one tree rooted at a KindFile node.
//
// Ownership:
//
//	Trees are owned by the analysis session that extracted them. They are
//	treated as immutable once returned by an Extractor; graph builders
//	never mutate them.
//
// Invariants:
//
//	StartLine <= EndLine (both 1-based, inclusive). A child's line range
//	lies within its direct parent's range for exact parses; the fallback
//	extractor estimates EndLine and does not guarantee containment.
type SyntaxNode struct {
	// ID is globally unique, derived from the file path, start line, and
	// qualifying name. See GenerateID.
	ID string `json:"id"`

	// Kind is the construct kind (file, class, function, method, ...).
	Kind NodeKind `json:"kind"`

	// Name is the declared name; the file base name for KindFile roots.
	Name string `json:"name"`

	// FilePath is the path of the file this node was extracted from.
	FilePath string `json:"file_path"`

	// StartLine is the 1-based first line of the construct.
	StartLine int `json:"line_start"`

	// EndLine is the 1-based last line of the construct, inclusive.
	EndLine int `json:"line_end"`

	// Children are the directly contained nodes, in source order.
	Children []*SyntaxNode `json:"children,omitempty"`

	// Attributes is an open extension map for facts not yet modeled by a
	// dedicated field (e.g. "decorated": "true"). Usually empty.
	Attributes map[string]string `json:"attributes,omitempty"`
}

// GenerateID creates a unique node ID from a file path, line, and name.
//
// The format is "path:line:name", matching the ID scheme used across the
// graph builders and the unit index. Path separators are preserved; IDs
// are compared as opaque strings.
func GenerateID(filePath string, line int, name string) string {
	return fmt.Sprintf("%s:%d:%s", filePath, line, name)
}

// Validate checks the structural invariants of the tree rooted at n.
//
// Outputs:
//
//	error - Non-nil if any node has a missing ID, an unknown kind, or an
//	        inverted line range. The first violation found is returned.
func (n *SyntaxNode) Validate() error {
	if n == nil {
		return fmt.Errorf("syntax node must not be nil")
	}
	if n.ID == "" {
		return fmt.Errorf("%s: node %q has empty ID", n.FilePath, n.Name)
	}
	if n.StartLine < 1 || n.EndLine < n.StartLine {
		return fmt.Errorf("%s: node %q has invalid line range [%d,%d]",
			n.FilePath, n.Name, n.StartLine, n.EndLine)
	}
	for _, child := range n.Children {
		if err := child.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Walk visits n and every descendant in depth-first, children-order.
// The visit function is called for each node; returning false stops the
// walk of that node's subtree (siblings are still visited).
func (n *SyntaxNode) Walk(visit func(node *SyntaxNode) bool) {
	if n == nil {
		return
	}
	if !visit(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(visit)
	}
}

// AnalyzableUnits returns every Function and Method node in the tree
// rooted at n, in depth-first order.
func (n *SyntaxNode) AnalyzableUnits() []*SyntaxNode {
	var units []*SyntaxNode
	n.Walk(func(node *SyntaxNode) bool {
		if node.Kind.IsAnalyzableUnit() {
			units = append(units, node)
		}
		return true
	})
	return units
}

// CountLines returns the number of lines in content, counting a trailing
// partial line. Empty content has zero lines.
func CountLines(content string) int {
	if content == "" {
		return 0
	}
	n := strings.Count(content, "\n")
	if !strings.HasSuffix(content, "\n") {
		n++
	}
	return n
}
