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
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// findFixtureDir returns the absolute path to the checked-in
// test/fixtures/sample-python-project directory.
func findFixtureDir(t *testing.T) string {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot locate source file")
	}
	// services/navigator/fixture_test.go -> repository root.
	root := filepath.Dir(filepath.Dir(filepath.Dir(thisFile)))
	fixtureDir := filepath.Join(root, "test", "fixtures", "sample-python-project")
	if _, err := os.Stat(fixtureDir); err != nil {
		t.Fatalf("fixture directory not found at %s: %v", fixtureDir, err)
	}
	return fixtureDir
}

func TestNavigator_SampleProjectFixture(t *testing.T) {
	nav := New()
	report, err := nav.Analyze(context.Background(), findFixtureDir(t))
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	ra := report.RepositoryAnalysis
	// main.py, models.py, util.js; the README is skipped by discovery.
	if ra.TotalFiles != 3 {
		t.Errorf("total_files = %d, want 3", ra.TotalFiles)
	}
	// main, parse, run from main.py plus formatName from util.js. The two
	// methods nest under User and do not count as top-level functions.
	if ra.TotalFunctions != 4 {
		t.Errorf("total_functions = %d, want 4", ra.TotalFunctions)
	}
	if ra.TotalClasses != 1 {
		t.Errorf("total_classes = %d, want 1", ra.TotalClasses)
	}
	// Every function and method gets one graph of each family.
	if ra.CFGsBuilt != 6 || ra.PDGsBuilt != 6 {
		t.Errorf("built %d cfgs / %d pdgs, want 6 / 6", ra.CFGsBuilt, ra.PDGsBuilt)
	}
	// 3 file roots, 4 functions, 1 class, 2 methods.
	if ra.HPGNodes != 10 || ra.HPGEdges != 7 {
		t.Errorf("hpg = %d nodes / %d edges, want 10 / 7", ra.HPGNodes, ra.HPGEdges)
	}

	if len(report.FileBreakdown) != 3 {
		t.Fatalf("file_breakdown has %d entries, want 3", len(report.FileBreakdown))
	}

	results, err := nav.Search("display", 5)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 || results[0].Name != "display" {
		t.Errorf("Search(display) = %v, want the User method", results)
	}
}
