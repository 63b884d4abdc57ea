// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package repo

import "errors"

// Sentinel errors for repository acquisition and discovery, checked via
// errors.Is().
var (
	// ErrRepoNotFound indicates the repository root does not exist or is
	// not readable.
	ErrRepoNotFound = errors.New("repository not found")

	// ErrTooManyFiles indicates discovery hit the configured file cap.
	ErrTooManyFiles = errors.New("too many files in repository")

	// ErrCloneFailed indicates a remote repository could not be cloned.
	ErrCloneFailed = errors.New("repository clone failed")

	// ErrInvalidSource indicates the source string is neither a local
	// directory nor a recognizable remote URL.
	ErrInvalidSource = errors.New("invalid repository source")
)
