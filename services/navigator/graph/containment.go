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
	"context"
	"fmt"
	"time"

	"github.com/AleutianAI/navigator/services/navigator/ast"
)

// ContainmentBuilder folds per-file syntax trees into a single directed
// containment graph (the hierarchical program graph).
//
// Description:
//
//	Every SyntaxNode across every tree becomes one graph node keyed by its
//	ID with attributes copied verbatim; every tree edge becomes one
//	"contains" edge from parent to direct child, in children order. The
//	result is a forest embedded in one graph object.
//
//	The builder never mutates its input and is idempotent for a given
//	forest. A malformed tree simply yields a malformed graph; there is no
//	partial or aggregate failure mode.
//
// Thread Safety:
//
//	ContainmentBuilder is stateless and safe for concurrent use. Each
//	Build() call creates a new graph.
type ContainmentBuilder struct {
	options Options
}

// NewContainmentBuilder creates a ContainmentBuilder with the given
// capacity options.
func NewContainmentBuilder(opts ...Option) *ContainmentBuilder {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return &ContainmentBuilder{options: options}
}

// Build constructs the containment graph over the given forest.
//
// Inputs:
//
//	ctx - Context for cancellation, checked between roots.
//	forest - One root SyntaxNode per file. Nil roots are skipped.
//
// Outputs:
//
//	*Graph - The frozen containment graph.
//	error - Non-nil for context cancellation or capacity overflow.
func (b *ContainmentBuilder) Build(ctx context.Context, forest []*ast.SyntaxNode) (*Graph, error) {
	ctx, span := startBuildSpan(ctx, "containment", len(forest))
	defer span.End()

	start := time.Now()

	g := New(WithMaxNodes(b.options.MaxNodes), WithMaxEdges(b.options.MaxEdges))

	for _, root := range forest {
		if root == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			recordBuildMetrics(ctx, "containment", time.Since(start), g.NodeCount(), g.EdgeCount(), false)
			return nil, fmt.Errorf("containment build canceled: %w", err)
		}
		if err := b.addSubtree(g, root, ""); err != nil {
			recordBuildMetrics(ctx, "containment", time.Since(start), g.NodeCount(), g.EdgeCount(), false)
			return nil, fmt.Errorf("containment build: %w", err)
		}
	}

	g.Freeze()
	setBuildSpanResult(span, g.NodeCount(), g.EdgeCount())
	recordBuildMetrics(ctx, "containment", time.Since(start), g.NodeCount(), g.EdgeCount(), true)
	return g, nil
}

// addSubtree inserts node and its descendants depth-first, linking each
// node to its direct parent with a contains edge.
func (b *ContainmentBuilder) addSubtree(g *Graph, node *ast.SyntaxNode, parentID string) error {
	attrs := ContainmentAttrs{
		Kind:      node.Kind,
		Name:      node.Name,
		FilePath:  node.FilePath,
		LineStart: node.StartLine,
		LineEnd:   node.EndLine,
	}
	if len(node.Attributes) > 0 {
		extra := make(map[string]string, len(node.Attributes))
		for k, v := range node.Attributes {
			extra[k] = v
		}
		attrs.Extra = extra
	}

	if _, err := g.AddNode(node.ID, attrs); err != nil {
		return fmt.Errorf("add node %s: %w", node.ID, err)
	}
	if parentID != "" {
		if err := g.AddEdge(parentID, node.ID, EdgeTypeContains); err != nil {
			return fmt.Errorf("add edge %s -> %s: %w", parentID, node.ID, err)
		}
	}

	for _, child := range node.Children {
		if child == nil {
			continue
		}
		if err := b.addSubtree(g, child, node.ID); err != nil {
			return err
		}
	}
	return nil
}
