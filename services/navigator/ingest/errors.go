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

import "errors"

// Sentinel errors for the ingestion queue and worker pool, checked via
// errors.Is().
var (
	// ErrQueueSealed indicates Enqueue was called after Seal.
	ErrQueueSealed = errors.New("queue is sealed")

	// ErrQueueNotSealed indicates Dequeue or AwaitDrained was called
	// before Seal. The protocol enqueues the full path set first.
	ErrQueueNotSealed = errors.New("queue is not sealed")

	// ErrQueueDrained indicates the sealed queue has no tasks left.
	// Workers treat this as their normal exit signal.
	ErrQueueDrained = errors.New("queue drained")

	// ErrReadFailed indicates a single file could not be read. Non-fatal:
	// the file is omitted from the content map and the pipeline continues.
	ErrReadFailed = errors.New("file read failed")
)
