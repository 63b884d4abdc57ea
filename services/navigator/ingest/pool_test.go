// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// mapRead returns a ReadFunc serving from an in-memory map; missing paths
// fail with ErrReadFailed.
func mapRead(files map[string]string) ReadFunc {
	return func(_ context.Context, path string) ([]byte, error) {
		content, ok := files[path]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrReadFailed, path)
		}
		return []byte(content), nil
	}
}

func sealedQueue(paths ...string) *Queue {
	q := NewQueue()
	for _, p := range paths {
		q.Enqueue(p)
	}
	q.Seal()
	return q
}

func TestPool_Run(t *testing.T) {
	files := map[string]string{
		"a.py": "def a():\n    pass\n",
		"b.py": "def b():\n    pass\n",
	}
	pool := NewPool(WithWorkers(2), WithReadFunc(mapRead(files)))

	contents, err := pool.Run(context.Background(), sealedQueue("a.py", "b.py"))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(contents) != 2 {
		t.Fatalf("len(contents) = %d, want 2", len(contents))
	}
	if contents["a.py"] != files["a.py"] {
		t.Errorf("a.py content = %q, want %q", contents["a.py"], files["a.py"])
	}
}

func TestPool_SkipsUnreadableFiles(t *testing.T) {
	files := map[string]string{"good.py": "def g():\n    pass\n"}
	pool := NewPool(WithWorkers(2), WithReadFunc(mapRead(files)))

	q := sealedQueue("good.py", "missing.py")
	contents, err := pool.Run(context.Background(), q)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("len(contents) = %d, want 1 (unreadable file skipped)", len(contents))
	}
	if _, ok := contents["missing.py"]; ok {
		t.Error("unreadable file present in content map")
	}
	// The failed read still counts toward drainage.
	if q.Outstanding() != 0 {
		t.Errorf("Outstanding() = %d, want 0", q.Outstanding())
	}
}

func TestPool_OmitsEmptyFiles(t *testing.T) {
	files := map[string]string{"empty.py": "", "full.py": "x = 1\n"}
	pool := NewPool(WithReadFunc(mapRead(files)))

	contents, err := pool.Run(context.Background(), sealedQueue("empty.py", "full.py"))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if _, ok := contents["empty.py"]; ok {
		t.Error("empty file present in content map")
	}
	if len(contents) != 1 {
		t.Errorf("len(contents) = %d, want 1", len(contents))
	}
}

func TestPool_EmptyQueue(t *testing.T) {
	pool := NewPool(WithReadFunc(mapRead(nil)))
	contents, err := pool.Run(context.Background(), sealedQueue())
	if err != nil {
		t.Fatalf("Run on empty queue failed: %v", err)
	}
	if len(contents) != 0 {
		t.Errorf("len(contents) = %d, want 0", len(contents))
	}
}

func TestPool_UnsealedQueue(t *testing.T) {
	q := NewQueue()
	q.Enqueue("a.py")

	if _, err := poolRunNoSeal(q); err == nil {
		t.Error("Run on unsealed queue succeeded, want protocol error")
	}
}

func poolRunNoSeal(q *Queue) (map[string]string, error) {
	pool := NewPool(WithReadFunc(mapRead(nil)))
	return pool.Run(context.Background(), q)
}

func TestPool_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pool := NewPool(WithReadFunc(mapRead(map[string]string{"a.py": "x = 1\n"})))
	contents, err := pool.Run(ctx, sealedQueue("a.py"))
	if err == nil {
		t.Error("Run with canceled ctx succeeded, want error")
	}
	if contents != nil {
		t.Error("canceled Run returned a partial content map")
	}
}

func TestPool_ManyFilesManyWorkers(t *testing.T) {
	files := make(map[string]string, 200)
	paths := make([]string, 0, 200)
	for i := 0; i < 200; i++ {
		p := fmt.Sprintf("f%03d.py", i)
		files[p] = fmt.Sprintf("x = %d\n", i)
		paths = append(paths, p)
	}
	pool := NewPool(WithWorkers(8), WithReadFunc(mapRead(files)))

	contents, err := pool.Run(context.Background(), sealedQueue(paths...))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(contents) != 200 {
		t.Errorf("len(contents) = %d, want 200", len(contents))
	}
}

func TestPool_DefaultReadFromDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "real.py")
	if err := os.WriteFile(path, []byte("def r():\n    pass\n"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	pool := NewPool()
	contents, err := pool.Run(context.Background(), sealedQueue(path))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if contents[path] != "def r():\n    pass\n" {
		t.Errorf("disk read content = %q", contents[path])
	}
}
