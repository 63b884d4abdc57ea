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
	"fmt"
	"strings"

	"github.com/AleutianAI/navigator/services/navigator/ast"
)

// commentMarkers are line prefixes that disqualify a line from assignment
// candidacy.
var commentMarkers = []string{"#", "//"}

// DependencyBuilder constructs per-unit dependency graphs.
//
// Description:
//
//	The builder records simple assignment statements inside the unit's
//	line range in lexical order and links consecutive ones with
//	"data_flow" edges. This is a purely positional chain, not a computed
//	def-use relationship; reaching-definition analysis is an explicit
//	non-goal.
//
// Thread Safety:
//
//	DependencyBuilder is stateless and safe for concurrent use.
type DependencyBuilder struct{}

// NewDependencyBuilder creates a DependencyBuilder.
func NewDependencyBuilder() *DependencyBuilder {
	return &DependencyBuilder{}
}

// assignment is one candidate assignment found during the scan.
type assignment struct {
	variable string
	line     int
}

// Build constructs the dependency graph for one analyzable unit.
//
// Inputs:
//
//	unit - A Function or Method SyntaxNode.
//	source - Full content of the unit's file.
//
// Outputs:
//
//	*Graph - A frozen graph with one node per candidate assignment in
//	         scan order and max(k-1, 0) data_flow edges chaining them.
func (b *DependencyBuilder) Build(unit *ast.SyntaxNode, source string) *Graph {
	candidates := b.scanAssignments(source, unit.StartLine, unit.EndLine)

	g := New(WithMaxNodes(len(candidates)+1), WithMaxEdges(len(candidates)+1))

	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = fmt.Sprintf("var_%s_%d", unit.ID, i)
		// Cannot fail: fresh building graph, unique IDs, sized capacity.
		g.AddNode(ids[i], DependencyAttrs{
			Variable:   c.variable,
			LineNumber: c.line,
			Scope:      unit.Name,
		})
	}
	for i := 0; i+1 < len(ids); i++ {
		g.AddEdge(ids[i], ids[i+1], EdgeTypeDataFlow)
	}

	g.Freeze()
	return g
}

// scanAssignments scans source lines [startLine, endLine] in order for
// candidate assignments.
//
// A trimmed line is a candidate when it contains an assignment operator
// and does not start with a comment marker. The trimmed text before the
// first "=" becomes the variable name; empty names are skipped.
func (b *DependencyBuilder) scanAssignments(source string, startLine, endLine int) []assignment {
	lines := strings.Split(source, "\n")

	var candidates []assignment
	for lineNo := startLine; lineNo <= endLine && lineNo <= len(lines); lineNo++ {
		if lineNo < 1 {
			continue
		}
		line := strings.TrimSpace(lines[lineNo-1])
		if line == "" || isComment(line) {
			continue
		}
		eq := strings.Index(line, "=")
		if eq < 0 {
			continue
		}
		variable := strings.TrimSpace(line[:eq])
		if variable == "" {
			continue
		}
		candidates = append(candidates, assignment{variable: variable, line: lineNo})
	}
	return candidates
}

// isComment reports whether a trimmed line starts with a comment marker.
func isComment(line string) bool {
	for _, marker := range commentMarkers {
		if strings.HasPrefix(line, marker) {
			return true
		}
	}
	return false
}
