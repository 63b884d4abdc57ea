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
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DefaultWorkerCount is the default size of the ingestion worker pool.
const DefaultWorkerCount = 4

// ReadFunc reads one file's content. Supplied by the repository
// collaborator; the default reads from the local filesystem.
type ReadFunc func(ctx context.Context, path string) ([]byte, error)

// PoolOption is a functional option for configuring a Pool.
type PoolOption func(*Pool)

// WithWorkers sets the number of concurrent workers.
func WithWorkers(n int) PoolOption {
	return func(p *Pool) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithReadFunc sets the file read function.
func WithReadFunc(fn ReadFunc) PoolOption {
	return func(p *Pool) {
		if fn != nil {
			p.read = fn
		}
	}
}

// Pool is the fixed-size worker pool that drains a sealed Queue into an
// in-memory content map.
//
// Description:
//
//	Each worker loops: dequeue, read the file, record non-empty content
//	keyed by path, mark the task done. A failed or empty read is logged
//	and the file is omitted; the task is still marked done so drainage
//	completes. Workers exit when the queue is exhausted or the context
//	is canceled.
//
//	No ordering is guaranteed on read completion; the content map's
//	insertion order is nondeterministic across runs. Later pipeline
//	stages iterate it in sorted-path order for deterministic output.
//
// Thread Safety:
//
//	Pool is safe for concurrent use; each Run call is independent.
type Pool struct {
	workers int
	read    ReadFunc
}

// NewPool creates a Pool with the given options.
//
// Example:
//
//	pool := ingest.NewPool(ingest.WithWorkers(8))
//	contents, err := pool.Run(ctx, queue)
func NewPool(opts ...PoolOption) *Pool {
	p := &Pool{
		workers: DefaultWorkerCount,
		read:    defaultRead,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run drains the sealed queue with the pool's workers and returns the
// content map.
//
// Inputs:
//
//	ctx - Context for cancellation. Canceling mid-ingestion stops all
//	      workers; no partial content map is returned.
//	queue - A sealed Queue. The full path set must be enqueued first.
//
// Outputs:
//
//	map[string]string - Path to non-empty file content, for every path
//	                    that read successfully.
//	error - Non-nil for cancellation or protocol misuse (unsealed queue).
func (p *Pool) Run(ctx context.Context, queue *Queue) (map[string]string, error) {
	contents := make(map[string]string)
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < p.workers; i++ {
		g.Go(func() error {
			return p.worker(ctx, queue, contents, &mu)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("ingestion: %w", err)
	}

	// Authoritative completion signal: every enqueued task dequeued and
	// marked done. With all workers exited this returns immediately.
	if err := queue.AwaitDrained(ctx); err != nil {
		return nil, fmt.Errorf("ingestion drainage: %w", err)
	}

	return contents, nil
}

// worker is one pool worker's loop.
func (p *Pool) worker(ctx context.Context, queue *Queue, contents map[string]string, mu *sync.Mutex) error {
	for {
		task, err := queue.Dequeue(ctx)
		if errors.Is(err, ErrQueueDrained) {
			return nil
		}
		if err != nil {
			return err
		}

		data, readErr := p.read(ctx, task.Path)
		if readErr != nil {
			// Non-fatal: omit the file, keep the pipeline going.
			slog.Warn("file read failed, skipping",
				slog.String("file", task.Path),
				slog.String("error", readErr.Error()))
		} else if len(data) > 0 {
			mu.Lock()
			contents[task.Path] = string(data)
			mu.Unlock()
		}

		queue.MarkDone()
	}
}

// defaultRead reads from the local filesystem, wrapping failures in
// ErrReadFailed.
func defaultRead(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}
	return data, nil
}
