// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package index

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/AleutianAI/navigator/services/navigator/ast"
)

// DefaultMaxUnits is the default maximum number of units the index can hold.
const DefaultMaxUnits = 1_000_000

// ErrMaxUnitsExceeded indicates the index capacity limit was reached.
var ErrMaxUnitsExceeded = errors.New("max units exceeded")

// UnitIndexOption is a functional option for configuring UnitIndex.
type UnitIndexOption func(*UnitIndex)

// WithMaxUnits sets the maximum number of units the index can hold.
func WithMaxUnits(n int) UnitIndexOption {
	return func(idx *UnitIndex) {
		if n > 0 {
			idx.maxUnits = n
		}
	}
}

// Stats contains statistics about the unit index.
type Stats struct {
	// TotalUnits is the total number of units in the index.
	TotalUnits int

	// ByKind maps each NodeKind to the count of units of that kind.
	ByKind map[ast.NodeKind]int

	// FileCount is the number of unique files with units in the index.
	FileCount int
}

// UnitIndex provides fast lookups of analyzable units (functions and
// methods) by ID or name.
//
// Description:
//
//	The orchestrator rebuilds the index each analysis session. Clients
//	use it to resolve a function name to its unit IDs and fetch the
//	unit's flow or dependency graph without knowing the ID scheme.
//
// Thread Safety:
//
//	UnitIndex is safe for concurrent use.
//
// Ownership:
//
//	The index stores pointers to SyntaxNodes but does NOT own them.
//	Nodes must not be mutated after being added.
type UnitIndex struct {
	mu sync.RWMutex

	// byID is the primary index: ID → unit.
	byID map[string]*ast.SyntaxNode

	// byName maps declared name to units with that name (multiple units
	// can share a name across files and classes).
	byName map[string][]*ast.SyntaxNode

	// byFile maps file path to units defined in that file.
	byFile map[string][]*ast.SyntaxNode

	kindCounts map[ast.NodeKind]int
	maxUnits   int
}

// NewUnitIndex creates an empty unit index.
//
// Example:
//
//	idx := index.NewUnitIndex()
//	idx.AddTree(fileTree)
//	units := idx.ByName("process_repository")
func NewUnitIndex(opts ...UnitIndexOption) *UnitIndex {
	idx := &UnitIndex{
		byID:       make(map[string]*ast.SyntaxNode),
		byName:     make(map[string][]*ast.SyntaxNode),
		byFile:     make(map[string][]*ast.SyntaxNode),
		kindCounts: make(map[ast.NodeKind]int),
		maxUnits:   DefaultMaxUnits,
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// AddTree indexes every analyzable unit in the tree rooted at root.
//
// Errors:
//
//	ErrMaxUnitsExceeded once the capacity limit is hit; units added
//	before the limit remain indexed.
func (idx *UnitIndex) AddTree(root *ast.SyntaxNode) error {
	if root == nil {
		return nil
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	for _, unit := range root.AnalyzableUnits() {
		if len(idx.byID) >= idx.maxUnits {
			return ErrMaxUnitsExceeded
		}
		if _, exists := idx.byID[unit.ID]; exists {
			continue
		}
		idx.byID[unit.ID] = unit
		idx.byName[unit.Name] = append(idx.byName[unit.Name], unit)
		idx.byFile[unit.FilePath] = append(idx.byFile[unit.FilePath], unit)
		idx.kindCounts[unit.Kind]++
	}
	return nil
}

// ByID returns the unit with the given ID, or (nil, false).
func (idx *UnitIndex) ByID(id string) (*ast.SyntaxNode, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	unit, ok := idx.byID[id]
	return unit, ok
}

// ByName returns all units with exactly the given name.
func (idx *UnitIndex) ByName(name string) []*ast.SyntaxNode {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return append([]*ast.SyntaxNode(nil), idx.byName[name]...)
}

// ByFile returns all units defined in the given file.
func (idx *UnitIndex) ByFile(filePath string) []*ast.SyntaxNode {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return append([]*ast.SyntaxNode(nil), idx.byFile[filePath]...)
}

// Search returns units whose name matches the query: exact matches first,
// then case-insensitive matches, then prefix matches. Results are sorted
// by (file path, start line) within each tier and capped at limit.
func (idx *UnitIndex) Search(query string, limit int) []*ast.SyntaxNode {
	if query == "" || limit <= 0 {
		return nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	lowered := strings.ToLower(query)
	var exact, insensitive, prefix []*ast.SyntaxNode

	for name, units := range idx.byName {
		switch {
		case name == query:
			exact = append(exact, units...)
		case strings.ToLower(name) == lowered:
			insensitive = append(insensitive, units...)
		case strings.HasPrefix(strings.ToLower(name), lowered):
			prefix = append(prefix, units...)
		}
	}

	for _, tier := range [][]*ast.SyntaxNode{exact, insensitive, prefix} {
		sort.Slice(tier, func(i, j int) bool {
			if tier[i].FilePath != tier[j].FilePath {
				return tier[i].FilePath < tier[j].FilePath
			}
			return tier[i].StartLine < tier[j].StartLine
		})
	}

	results := make([]*ast.SyntaxNode, 0, limit)
	for _, tier := range [][]*ast.SyntaxNode{exact, insensitive, prefix} {
		for _, unit := range tier {
			if len(results) == limit {
				return results
			}
			results = append(results, unit)
		}
	}
	return results
}

// Stats returns index statistics.
func (idx *UnitIndex) Stats() Stats {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	byKind := make(map[ast.NodeKind]int, len(idx.kindCounts))
	for k, v := range idx.kindCounts {
		byKind[k] = v
	}
	return Stats{
		TotalUnits: len(idx.byID),
		ByKind:     byKind,
		FileCount:  len(idx.byFile),
	}
}

// Clear removes all units from the index.
func (idx *UnitIndex) Clear() {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.byID = make(map[string]*ast.SyntaxNode)
	idx.byName = make(map[string][]*ast.SyntaxNode)
	idx.byFile = make(map[string][]*ast.SyntaxNode)
	idx.kindCounts = make(map[ast.NodeKind]int)
}
