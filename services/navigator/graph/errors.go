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

import "errors"

// Sentinel errors for graph construction, checked via errors.Is().
var (
	// ErrGraphFrozen indicates a mutation was attempted on a read-only graph.
	ErrGraphFrozen = errors.New("graph is frozen")

	// ErrEmptyNodeID indicates AddNode was called with an empty ID.
	ErrEmptyNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNode indicates a node with the same ID already exists.
	ErrDuplicateNode = errors.New("duplicate node ID")

	// ErrUnknownNode indicates an edge endpoint does not exist in the graph.
	ErrUnknownNode = errors.New("unknown node ID")

	// ErrMaxNodesExceeded indicates the node capacity limit was reached.
	ErrMaxNodesExceeded = errors.New("max nodes exceeded")

	// ErrMaxEdgesExceeded indicates the edge capacity limit was reached.
	ErrMaxEdgesExceeded = errors.New("max edges exceeded")
)
