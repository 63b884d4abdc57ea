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

import "errors"

// Sentinel errors for the analysis orchestrator, checked via errors.Is().
var (
	// ErrEmptyInput indicates an analysis request with no candidate files:
	// the repository contained nothing matching the configured extensions.
	ErrEmptyInput = errors.New("no candidate files to analyze")

	// ErrNoParseableContent indicates that files were discovered but none
	// could be read with non-empty content.
	ErrNoParseableContent = errors.New("no parseable content in repository")

	// ErrAnalysisInProgress indicates another analysis session holds the
	// orchestrator. Sessions are serialized; callers should retry later.
	ErrAnalysisInProgress = errors.New("analysis already in progress")

	// ErrNoAnalysis indicates a read operation before any successful
	// analysis session.
	ErrNoAnalysis = errors.New("no analysis has completed")

	// ErrUnitNotFound indicates the requested unit ID is not in the
	// current session's results.
	ErrUnitNotFound = errors.New("unit not found")
)
