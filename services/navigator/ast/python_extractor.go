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
	"log/slog"
	"path/filepath"
	"time"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// PythonExtractorOption configures a PythonExtractor instance.
type PythonExtractorOption func(*PythonExtractor)

// WithPythonMaxFileSize sets the maximum file size the extractor will
// accept. Larger files degrade to a childless file node.
func WithPythonMaxFileSize(bytes int64) PythonExtractorOption {
	return func(e *PythonExtractor) {
		if bytes > 0 {
			e.maxFileSize = bytes
		}
	}
}

// PythonExtractor implements Extractor for Python source using tree-sitter.
//
// Description:
//
//	PythonExtractor walks the concrete syntax tree, creating Function,
//	Method, and Class nodes with 1-based inclusive line spans taken from
//	the construct's source span. Class bodies are walked with the class
//	as parent, so methods attach to their class; function bodies are
//	walked with the function as parent, so nested definitions attach to
//	their enclosing function. This is the documented nesting policy.
//
// Thread Safety:
//
//	PythonExtractor is safe for concurrent use. Each Extract call creates
//	its own tree-sitter parser instance.
type PythonExtractor struct {
	maxFileSize int64
}

// NewPythonExtractor creates a PythonExtractor with the given options.
//
// Example:
//
//	e := NewPythonExtractor(WithPythonMaxFileSize(5 * 1024 * 1024))
func NewPythonExtractor(opts ...PythonExtractorOption) *PythonExtractor {
	e := &PythonExtractor{
		maxFileSize: DefaultMaxFileSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Language returns "python".
func (e *PythonExtractor) Language() string {
	return "python"
}

// Extensions returns the Python source and stub extensions.
func (e *PythonExtractor) Extensions() []string {
	return []string{".py", ".pyi"}
}

// Extract parses Python source and returns the file's syntax tree.
//
// Description:
//
//	Empty content yields (nil, nil). Oversized, non-UTF-8, or unparseable
//	content degrades to a childless file root; only context cancellation
//	is returned as an error.
func (e *PythonExtractor) Extract(ctx context.Context, content []byte, filePath string) (*SyntaxNode, error) {
	ctx, span := startExtractSpan(ctx, "python", filePath, len(content))
	defer span.End()

	start := time.Now()

	if len(content) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		recordExtractMetrics(ctx, "python", time.Since(start), 0, false)
		return nil, fmt.Errorf("extract canceled before start: %w", err)
	}

	root := newFileRoot(filePath, string(content))

	if int64(len(content)) > e.maxFileSize {
		slog.Warn("file exceeds size limit, degrading to empty file node",
			slog.String("file", filePath),
			slog.Int("size_bytes", len(content)))
		setExtractSpanResult(span, 0, true)
		recordExtractMetrics(ctx, "python", time.Since(start), 0, false)
		return root, nil
	}

	if !utf8.Valid(content) {
		slog.Warn("content is not valid UTF-8, degrading to empty file node",
			slog.String("file", filePath))
		setExtractSpanResult(span, 0, true)
		recordExtractMetrics(ctx, "python", time.Since(start), 0, false)
		return root, nil
	}

	if len(content) > WarnFileSize {
		slog.Warn("extracting large file",
			slog.String("file", filePath),
			slog.Int("size_bytes", len(content)))
	}

	// New parser instance per call for thread safety.
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			recordExtractMetrics(ctx, "python", time.Since(start), 0, false)
			return nil, fmt.Errorf("extract canceled during parse: %w", ctxErr)
		}
		slog.Warn("tree-sitter parse failed, degrading to empty file node",
			slog.String("file", filePath),
			slog.String("error", err.Error()))
		setExtractSpanResult(span, 0, true)
		recordExtractMetrics(ctx, "python", time.Since(start), 0, false)
		return root, nil
	}
	defer tree.Close()

	if err := ctx.Err(); err != nil {
		recordExtractMetrics(ctx, "python", time.Since(start), 0, false)
		return nil, fmt.Errorf("extract canceled after parse: %w", err)
	}

	treeRoot := tree.RootNode()
	if treeRoot == nil {
		setExtractSpanResult(span, 0, true)
		recordExtractMetrics(ctx, "python", time.Since(start), 0, false)
		return root, nil
	}
	if treeRoot.HasError() {
		// Partial extraction still proceeds; tree-sitter is error-tolerant.
		slog.Debug("source contains syntax errors",
			slog.String("file", filePath))
	}

	e.walkDefinitions(treeRoot, content, filePath, root)

	nodeCount := 0
	root.Walk(func(*SyntaxNode) bool { nodeCount++; return true })

	setExtractSpanResult(span, nodeCount, false)
	recordExtractMetrics(ctx, "python", time.Since(start), nodeCount, true)

	return root, nil
}

// walkDefinitions recursively extracts function and class definitions from
// node's children, attaching them to parent per the nesting policy.
func (e *PythonExtractor) walkDefinitions(node *sitter.Node, content []byte, filePath string, parent *SyntaxNode) {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "function_definition":
			e.processFunction(child, content, filePath, parent, false)
		case "class_definition":
			e.processClass(child, content, filePath, parent, false)
		case "decorated_definition":
			e.processDecorated(child, content, filePath, parent)
		default:
			// Recurse through blocks, if/try bodies, etc. with the same
			// parent scope.
			e.walkDefinitions(child, content, filePath, parent)
		}
	}
}

// processFunction extracts one function_definition node.
//
// Functions directly inside a class body become KindMethod children of the
// class; everywhere else they are KindFunction. The function's own body is
// walked with the function as parent.
func (e *PythonExtractor) processFunction(node *sitter.Node, content []byte, filePath string, parent *SyntaxNode, decorated bool) {
	name := firstIdentifier(node, content)
	if name == "" {
		return
	}

	kind := KindFunction
	if parent.Kind == KindClass {
		kind = KindMethod
	}

	startLine := int(node.StartPoint().Row + 1)
	fn := &SyntaxNode{
		ID:        GenerateID(filePath, startLine, name),
		Kind:      kind,
		Name:      name,
		FilePath:  filePath,
		StartLine: startLine,
		EndLine:   int(node.EndPoint().Row + 1),
	}
	if decorated {
		fn.Attributes = map[string]string{"decorated": "true"}
	}
	parent.Children = append(parent.Children, fn)

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child != nil && child.Type() == "block" {
			e.walkDefinitions(child, content, filePath, fn)
		}
	}
}

// processClass extracts one class_definition node and walks its body with
// the class as parent, so methods attach to the class.
func (e *PythonExtractor) processClass(node *sitter.Node, content []byte, filePath string, parent *SyntaxNode, decorated bool) {
	name := firstIdentifier(node, content)
	if name == "" {
		return
	}

	startLine := int(node.StartPoint().Row + 1)
	class := &SyntaxNode{
		ID:        GenerateID(filePath, startLine, name),
		Kind:      KindClass,
		Name:      name,
		FilePath:  filePath,
		StartLine: startLine,
		EndLine:   int(node.EndPoint().Row + 1),
	}
	if decorated {
		class.Attributes = map[string]string{"decorated": "true"}
	}
	parent.Children = append(parent.Children, class)

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child != nil && child.Type() == "block" {
			e.walkDefinitions(child, content, filePath, class)
		}
	}
}

// processDecorated unwraps a decorated_definition to its inner function or
// class. Line spans are taken from the inner definition, not the decorator.
func (e *PythonExtractor) processDecorated(node *sitter.Node, content []byte, filePath string, parent *SyntaxNode) {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "function_definition":
			e.processFunction(child, content, filePath, parent, true)
		case "class_definition":
			e.processClass(child, content, filePath, parent, true)
		}
	}
}

// firstIdentifier returns the text of the first identifier child of node.
func firstIdentifier(node *sitter.Node, content []byte) string {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child != nil && child.Type() == "identifier" {
			return string(content[child.StartByte():child.EndByte()])
		}
	}
	return ""
}

// newFileRoot creates the KindFile root node spanning the whole file.
func newFileRoot(filePath, content string) *SyntaxNode {
	lineCount := CountLines(content)
	if lineCount < 1 {
		lineCount = 1
	}
	return &SyntaxNode{
		ID:        GenerateID(filePath, 1, filepath.Base(filePath)),
		Kind:      KindFile,
		Name:      filepath.Base(filePath),
		FilePath:  filePath,
		StartLine: 1,
		EndLine:   lineCount,
	}
}
