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
	"sync"
)

// FileTask is one unit of ingestion work: a file path to load. Tasks are
// ephemeral; they are produced by discovery and consumed exactly once by
// a worker.
type FileTask struct {
	// Path is the file path to read.
	Path string
}

// Queue is the bounded-concurrency dedup queue feeding the worker pool.
//
// Description:
//
//	The queue operates in two phases. During the enqueue phase, Enqueue
//	accepts paths, deduplicating by path (not content): a path seen
//	before in this queue's lifetime is silently dropped. Seal() closes
//	the enqueue phase and publishes all staged tasks to consumers in
//	FIFO order over a multi-producer multi-consumer channel.
//
//	Completion is detected by an explicit outstanding count, not by
//	timeout: every dequeued task must be acknowledged with MarkDone(),
//	and AwaitDrained() unblocks exactly when the done count equals the
//	enqueue count. Workers observe exhaustion as ErrQueueDrained from
//	Dequeue and exit; no idle-timeout race exists.
//
//	The seen-set is cleared by Reset(), which reopens the queue for a new
//	enqueue phase. Callers that construct a fresh Queue per analysis
//	session get the same effect.
//
// Thread Safety:
//
//	Queue is safe for concurrent use. Enqueue/Seal/Reset are expected
//	from a single producer; Dequeue/MarkDone from any number of workers.
type Queue struct {
	mu sync.Mutex

	// seen records every path enqueued in this queue's lifetime.
	seen map[string]struct{}

	// staged holds tasks accepted before Seal, in FIFO order.
	staged []FileTask

	// tasks is the MPMC channel published by Seal. Closed after filling,
	// so Dequeue observes exhaustion as a channel close.
	tasks chan FileTask

	// sealed is true once Seal has been called.
	sealed bool

	// outstanding counts enqueued tasks not yet marked done.
	outstanding int

	// drained is closed when outstanding reaches zero after Seal.
	drained chan struct{}

	// drainedClosed guards against double close of drained.
	drainedClosed bool
}

// NewQueue creates an empty queue in the enqueue phase.
func NewQueue() *Queue {
	return &Queue{
		seen:    make(map[string]struct{}),
		drained: make(chan struct{}),
	}
}

// Enqueue stages a task for the given path.
//
// Outputs:
//
//	bool - True if the path was accepted; false if it was already seen
//	       (idempotent no-op).
//	error - ErrQueueSealed if called after Seal.
func (q *Queue) Enqueue(path string) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.sealed {
		return false, ErrQueueSealed
	}
	if _, dup := q.seen[path]; dup {
		return false, nil
	}
	q.seen[path] = struct{}{}
	q.staged = append(q.staged, FileTask{Path: path})
	return true, nil
}

// Seal closes the enqueue phase and publishes all staged tasks to
// consumers. Idempotent. A queue sealed with zero tasks is immediately
// drained.
func (q *Queue) Seal() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.sealed {
		return
	}
	q.sealed = true
	q.outstanding = len(q.staged)

	q.tasks = make(chan FileTask, len(q.staged))
	for _, task := range q.staged {
		q.tasks <- task
	}
	close(q.tasks)
	q.staged = nil

	if q.outstanding == 0 {
		q.closeDrainedLocked()
	}
}

// Dequeue pops the next task, blocking until one is available, the queue
// is exhausted, or ctx is done.
//
// Errors:
//
//	ErrQueueNotSealed before Seal, ErrQueueDrained when no tasks remain,
//	or the context's error.
func (q *Queue) Dequeue(ctx context.Context) (FileTask, error) {
	q.mu.Lock()
	tasks := q.tasks
	q.mu.Unlock()

	if tasks == nil {
		return FileTask{}, ErrQueueNotSealed
	}

	// An already-canceled context wins deterministically; the select
	// below picks at random when both cases are ready.
	if err := ctx.Err(); err != nil {
		return FileTask{}, err
	}

	select {
	case <-ctx.Done():
		return FileTask{}, ctx.Err()
	case task, ok := <-tasks:
		if !ok {
			return FileTask{}, ErrQueueDrained
		}
		return task, nil
	}
}

// MarkDone acknowledges one previously dequeued task. When the done count
// reaches the enqueue count, AwaitDrained unblocks. Extra calls beyond
// the enqueue count are ignored.
func (q *Queue) MarkDone() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.outstanding == 0 {
		return
	}
	q.outstanding--
	if q.sealed && q.outstanding == 0 {
		q.closeDrainedLocked()
	}
}

// AwaitDrained blocks until every enqueued task has been dequeued and
// marked done, or ctx is done.
//
// Errors:
//
//	ErrQueueNotSealed before Seal, or the context's error.
func (q *Queue) AwaitDrained(ctx context.Context) error {
	q.mu.Lock()
	sealed := q.sealed
	drained := q.drained
	q.mu.Unlock()

	if !sealed {
		return ErrQueueNotSealed
	}

	// An already-drained queue wins over a done context: callers often
	// arrive here with a context that was canceled after the last worker
	// exited, and drainage is still the fact worth reporting.
	select {
	case <-drained:
		return nil
	default:
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-drained:
		return nil
	}
}

// Reset clears the seen-set and all queue state, reopening the enqueue
// phase. Any in-flight consumers of the previous phase observe it as
// drained.
func (q *Queue) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.seen = make(map[string]struct{})
	q.staged = nil
	q.tasks = nil
	q.sealed = false
	q.outstanding = 0
	if !q.drainedClosed {
		close(q.drained)
	}
	q.drained = make(chan struct{})
	q.drainedClosed = false
}

// Outstanding returns the number of enqueued tasks not yet marked done.
func (q *Queue) Outstanding() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.outstanding
}

// Seen returns the number of distinct paths accepted in this lifetime.
func (q *Queue) Seen() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.seen)
}

// closeDrainedLocked closes the drained channel once. Callers hold q.mu.
func (q *Queue) closeDrainedLocked() {
	if !q.drainedClosed {
		close(q.drained)
		q.drainedClosed = true
	}
}
