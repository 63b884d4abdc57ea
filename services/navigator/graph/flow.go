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
	"strings"

	"github.com/AleutianAI/navigator/services/navigator/ast"
)

// FlowBuilder constructs per-unit control-flow graphs.
//
// Description:
//
//	The flow model is deliberately reduced to a single entry/exit pair
//	joined by one "normal" edge. Branch, loop, and exception modeling is
//	an explicit non-goal; the statement/condition/loop node kinds exist
//	in the vocabulary but are never emitted.
//
// Thread Safety:
//
//	FlowBuilder is stateless and safe for concurrent use.
type FlowBuilder struct{}

// NewFlowBuilder creates a FlowBuilder.
func NewFlowBuilder() *FlowBuilder {
	return &FlowBuilder{}
}

// Build constructs the control-flow graph for one analyzable unit.
//
// Inputs:
//
//	unit - A Function or Method SyntaxNode.
//	source - Full content of the unit's file, for line snippets.
//
// Outputs:
//
//	*Graph - A frozen graph with exactly two nodes (entry at the unit's
//	         first line, exit at its last) and one normal edge. The entry
//	         and exit snippets are the source line text when the line is
//	         in range, else "".
func (b *FlowBuilder) Build(unit *ast.SyntaxNode, source string) *Graph {
	g := New(WithMaxNodes(2), WithMaxEdges(1))
	lines := strings.Split(source, "\n")

	entryID := "entry_" + unit.ID
	exitID := "exit_" + unit.ID

	// AddNode/AddEdge cannot fail here: the graph is fresh, in building
	// state, and the two IDs are distinct.
	g.AddNode(entryID, FlowAttrs{
		Kind:        FlowKindEntry,
		UnitID:      unit.ID,
		LineNumber:  unit.StartLine,
		CodeSnippet: lineAt(lines, unit.StartLine),
	})
	g.AddNode(exitID, FlowAttrs{
		Kind:        FlowKindExit,
		UnitID:      unit.ID,
		LineNumber:  unit.EndLine,
		CodeSnippet: lineAt(lines, unit.EndLine),
	})
	g.AddEdge(entryID, exitID, EdgeTypeNormal)

	g.Freeze()
	return g
}

// lineAt returns the 1-based line from lines, or "" when out of range.
func lineAt(lines []string, lineNumber int) string {
	if lineNumber < 1 || lineNumber > len(lines) {
		return ""
	}
	return lines[lineNumber-1]
}
