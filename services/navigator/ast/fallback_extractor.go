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
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// FallbackExtractor is the line-heuristic extractor for files without an
// exact grammar.
//
// Description:
//
//	A trimmed line that starts with a function-definition keyword and ends
//	with block-opening punctuation is treated as a function header; the
//	same applies to class-definition lines. Every match becomes a direct
//	child of the file root (the heuristic has no notion of nesting).
//	End lines are estimated as a fixed window past the header, clamped to
//	the file length. This is a known-imprecise estimate, not a structural
//	bound.
//
// Thread Safety:
//
//	FallbackExtractor is stateless and safe for concurrent use.
type FallbackExtractor struct{}

// NewFallbackExtractor creates a FallbackExtractor.
func NewFallbackExtractor() *FallbackExtractor {
	return &FallbackExtractor{}
}

// Language returns "generic".
func (e *FallbackExtractor) Language() string {
	return "generic"
}

// Extensions returns nil; the fallback is selected by the registry for any
// extension with no exact extractor, never by extension lookup.
func (e *FallbackExtractor) Extensions() []string {
	return nil
}

// headerRule describes one recognized definition-header shape.
type headerRule struct {
	keyword string   // leading keyword including trailing space
	openers []string // accepted block-opening suffixes
	kind    NodeKind
	window  int // estimated body span in lines past the header
}

// headerRules covers Python-style and brace-style definition headers.
var headerRules = []headerRule{
	{keyword: "def ", openers: []string{":"}, kind: KindFunction, window: FallbackFunctionWindow},
	{keyword: "function ", openers: []string{"{"}, kind: KindFunction, window: FallbackFunctionWindow},
	{keyword: "class ", openers: []string{":", "{"}, kind: KindClass, window: FallbackClassWindow},
}

// Extract scans content line by line for definition headers.
//
// Empty content yields (nil, nil); non-UTF-8 content degrades to a
// childless file root. Only context cancellation is returned as an error.
func (e *FallbackExtractor) Extract(ctx context.Context, content []byte, filePath string) (*SyntaxNode, error) {
	ctx, span := startExtractSpan(ctx, "generic", filePath, len(content))
	defer span.End()

	start := time.Now()

	if len(content) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		recordExtractMetrics(ctx, "generic", time.Since(start), 0, false)
		return nil, fmt.Errorf("extract canceled before start: %w", err)
	}

	text := string(content)
	root := newFileRoot(filePath, text)

	if !utf8.ValidString(text) {
		setExtractSpanResult(span, 0, true)
		recordExtractMetrics(ctx, "generic", time.Since(start), 0, false)
		return root, nil
	}

	lines := strings.Split(text, "\n")
	lineCount := CountLines(text)

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		for _, rule := range headerRules {
			if !strings.HasPrefix(line, rule.keyword) {
				continue
			}
			if !endsWithAny(line, rule.openers) {
				continue
			}
			name := headerName(line, rule.keyword)
			if name == "" {
				continue
			}

			startLine := i + 1
			endLine := startLine + rule.window
			if endLine > lineCount {
				endLine = lineCount
			}

			root.Children = append(root.Children, &SyntaxNode{
				ID:        GenerateID(filePath, startLine, name),
				Kind:      rule.kind,
				Name:      name,
				FilePath:  filePath,
				StartLine: startLine,
				EndLine:   endLine,
			})
			break
		}
	}

	nodeCount := 1 + len(root.Children)
	setExtractSpanResult(span, nodeCount, false)
	recordExtractMetrics(ctx, "generic", time.Since(start), nodeCount, true)

	return root, nil
}

// endsWithAny reports whether line ends with one of the suffixes.
func endsWithAny(line string, suffixes []string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(line, s) {
			return true
		}
	}
	return false
}

// headerName extracts the declared name from a definition header line:
// the text after the keyword, cut at the parameter list or at inheritance
// or type-parameter punctuation, whichever comes first.
func headerName(line, keyword string) string {
	rest := strings.TrimSpace(strings.TrimPrefix(line, keyword))
	if cut := strings.IndexAny(rest, "(:<{ "); cut >= 0 {
		rest = rest[:cut]
	}
	return strings.TrimSpace(rest)
}
