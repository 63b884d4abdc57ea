// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package navigator

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/AleutianAI/navigator/services/navigator/ast"
	"github.com/AleutianAI/navigator/services/navigator/graph"
)

// RepositoryAnalysis summarizes one analysis session.
type RepositoryAnalysis struct {
	// TotalFiles is the number of files with extracted trees.
	TotalFiles int `json:"total_files"`

	// TotalFunctions counts top-level functions across all files.
	TotalFunctions int `json:"total_functions"`

	// TotalClasses counts top-level classes across all files.
	TotalClasses int `json:"total_classes"`

	// HPGNodes and HPGEdges size the containment graph.
	HPGNodes int `json:"hpg_nodes"`
	HPGEdges int `json:"hpg_edges"`

	// CFGsBuilt and PDGsBuilt count per-unit graphs.
	CFGsBuilt int `json:"cfgs_built"`
	PDGsBuilt int `json:"pdgs_built"`

	// AnalysisTimestamp is when the session completed, RFC 3339.
	AnalysisTimestamp string `json:"analysis_timestamp"`
}

// FileBreakdown lists the top-level declarations of one file.
type FileBreakdown struct {
	// FilePath is the file's path as analyzed.
	FilePath string `json:"file_path"`

	// Functions are the names of the file's top-level functions.
	Functions []string `json:"functions"`

	// Classes are the names of the file's top-level classes.
	Classes []string `json:"classes"`
}

// AnalysisReport is the session summary returned by Analyze and exposed
// over the report endpoint.
type AnalysisReport struct {
	RepositoryAnalysis RepositoryAnalysis `json:"repository_analysis"`
	FileBreakdown      []FileBreakdown    `json:"file_breakdown"`
}

// buildReport assembles the report from the session's trees and graphs.
// Top-level means a direct child of the file node; nested declarations
// appear in the containment graph but not in the breakdown.
func buildReport(trees map[string]*ast.SyntaxNode, hpg *graph.Graph, cfgs, pdgs map[string]*graph.Graph, completedAt time.Time) *AnalysisReport {
	report := &AnalysisReport{
		RepositoryAnalysis: RepositoryAnalysis{
			TotalFiles:        len(trees),
			CFGsBuilt:         len(cfgs),
			PDGsBuilt:         len(pdgs),
			AnalysisTimestamp: completedAt.UTC().Format(time.RFC3339),
		},
	}
	if hpg != nil {
		report.RepositoryAnalysis.HPGNodes = hpg.NodeCount()
		report.RepositoryAnalysis.HPGEdges = hpg.EdgeCount()
	}

	paths := make([]string, 0, len(trees))
	for path := range trees {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		root := trees[path]
		breakdown := FileBreakdown{
			FilePath:  path,
			Functions: []string{},
			Classes:   []string{},
		}
		for _, child := range root.Children {
			switch child.Kind {
			case ast.KindFunction, ast.KindMethod:
				breakdown.Functions = append(breakdown.Functions, child.Name)
			case ast.KindClass:
				breakdown.Classes = append(breakdown.Classes, child.Name)
			}
		}
		report.RepositoryAnalysis.TotalFunctions += len(breakdown.Functions)
		report.RepositoryAnalysis.TotalClasses += len(breakdown.Classes)
		report.FileBreakdown = append(report.FileBreakdown, breakdown)
	}

	return report
}

// Save writes the report to path as indented JSON.
func (r *AnalysisReport) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("report: encoding: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("report: writing %s: %w", path, err)
	}
	return nil
}
