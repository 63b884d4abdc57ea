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
	"errors"
	"fmt"
)

// Sentinel errors for extraction failure conditions.
//
// Extraction is deliberately degradation-first: malformed source never
// fails a file; the extractor returns a bare file node instead. These
// sentinels cover the few conditions that are surfaced to the caller.
var (
	// ErrFileTooLarge indicates the content exceeds the configured maximum
	// file size and was not parsed.
	ErrFileTooLarge = errors.New("file too large")

	// ErrInvalidContent indicates the content could not be processed at
	// all (e.g. not valid UTF-8).
	ErrInvalidContent = errors.New("invalid content")

	// ErrUnsupportedExtension indicates no extractor is registered for the
	// file's extension. The registry falls back to the line-heuristic
	// extractor instead of returning this from Extract; it is only seen
	// from explicit registry lookups.
	ErrUnsupportedExtension = errors.New("unsupported file extension")
)

// ExtractError wraps an extraction failure with file context.
//
// Example:
//
//	var extractErr *ExtractError
//	if errors.As(err, &extractErr) {
//	    slog.Warn("extract failed", "file", extractErr.FilePath)
//	}
type ExtractError struct {
	// FilePath is the path of the file being extracted.
	FilePath string

	// Message describes the failure in human-readable form.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

// Error returns the formatted message including the file path.
func (e *ExtractError) Error() string {
	return fmt.Sprintf("%s: %s", e.FilePath, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *ExtractError) Unwrap() error {
	return e.Cause
}

// NewExtractError creates an ExtractError wrapping cause. Cause may be nil.
func NewExtractError(filePath, message string, cause error) *ExtractError {
	return &ExtractError{FilePath: filePath, Message: message, Cause: cause}
}
