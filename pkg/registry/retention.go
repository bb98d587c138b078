/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package registry

import "time"

// ring is a bounded append-only buffer. Appends are expected in
// nondecreasing timestamp order; once full, each append overwrites the
// oldest entry. Age-based trimming drops entries older than a cutoff.
type ring[T any] struct {
	entries []T
	head    int // index of the oldest entry
	size    int
	at      func(T) time.Time
}

func newRing[T any](capacity int, at func(T) time.Time) *ring[T] {
	if capacity <= 0 {
		capacity = 1
	}

	return &ring[T]{
		entries: make([]T, capacity),
		at:      at,
	}
}

// Append adds an entry, evicting the oldest when the buffer is full.
func (r *ring[T]) Append(entry T) {
	idx := (r.head + r.size) % len(r.entries)
	r.entries[idx] = entry

	if r.size < len(r.entries) {
		r.size++
		return
	}

	r.head = (r.head + 1) % len(r.entries)
}

// TrimOlderThan drops entries with a timestamp before cutoff.
func (r *ring[T]) TrimOlderThan(cutoff time.Time) {
	for r.size > 0 {
		oldest := r.entries[r.head]
		if !r.at(oldest).Before(cutoff) {
			return
		}

		var zero T

		r.entries[r.head] = zero
		r.head = (r.head + 1) % len(r.entries)
		r.size--
	}
}

// Len returns the number of retained entries.
func (r *ring[T]) Len() int {
	return r.size
}

// Newest returns the most recently appended entry.
func (r *ring[T]) Newest() (T, bool) {
	var zero T

	if r.size == 0 {
		return zero, false
	}

	return r.entries[(r.head+r.size-1)%len(r.entries)], true
}

// Snapshot returns up to limit entries, newest first. A non-positive
// limit returns everything retained.
func (r *ring[T]) Snapshot(limit int) []T {
	n := r.size
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]T, 0, n)

	for i := 0; i < n; i++ {
		idx := (r.head + r.size - 1 - i) % len(r.entries)
		out = append(out, r.entries[idx])
	}

	return out
}
