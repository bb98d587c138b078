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

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stamped struct {
	seq int
	ts  time.Time
}

func stampedTime(s stamped) time.Time { return s.ts }

func TestRingAppendBelowCapacity(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	r := newRing(4, stampedTime)

	for i := 0; i < 3; i++ {
		r.Append(stamped{seq: i, ts: base.Add(time.Duration(i) * time.Second)})
	}

	assert.Equal(t, 3, r.Len())

	snap := r.Snapshot(0)
	require.Len(t, snap, 3)
	// Newest first.
	assert.Equal(t, 2, snap[0].seq)
	assert.Equal(t, 0, snap[2].seq)
}

func TestRingOverwritesOldestWhenFull(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	r := newRing(3, stampedTime)

	for i := 0; i < 5; i++ {
		r.Append(stamped{seq: i, ts: base.Add(time.Duration(i) * time.Second)})
	}

	assert.Equal(t, 3, r.Len())

	snap := r.Snapshot(0)
	require.Len(t, snap, 3)
	assert.Equal(t, 4, snap[0].seq)
	assert.Equal(t, 2, snap[2].seq)
}

func TestRingSnapshotLimit(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	r := newRing(10, stampedTime)

	for i := 0; i < 10; i++ {
		r.Append(stamped{seq: i, ts: base.Add(time.Duration(i) * time.Second)})
	}

	snap := r.Snapshot(2)
	require.Len(t, snap, 2)
	assert.Equal(t, 9, snap[0].seq)
	assert.Equal(t, 8, snap[1].seq)
}

func TestRingTrimOlderThan(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	r := newRing(10, stampedTime)

	for i := 0; i < 6; i++ {
		r.Append(stamped{seq: i, ts: base.Add(time.Duration(i) * time.Hour)})
	}

	// Drop everything strictly older than hour 3.
	r.TrimOlderThan(base.Add(3 * time.Hour))

	snap := r.Snapshot(0)
	require.Len(t, snap, 3)
	assert.Equal(t, 5, snap[0].seq)
	assert.Equal(t, 3, snap[2].seq)
}

func TestRingNewest(t *testing.T) {
	r := newRing(3, stampedTime)

	_, ok := r.Newest()
	assert.False(t, ok)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	r.Append(stamped{seq: 1, ts: base})
	r.Append(stamped{seq: 2, ts: base.Add(time.Second)})

	newest, ok := r.Newest()
	require.True(t, ok)
	assert.Equal(t, 2, newest.seq)
}

func TestRingMinimumCapacity(t *testing.T) {
	r := newRing[stamped](0, stampedTime)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	r.Append(stamped{seq: 1, ts: base})
	r.Append(stamped{seq: 2, ts: base.Add(time.Second)})

	assert.Equal(t, 1, r.Len())

	newest, ok := r.Newest()
	require.True(t, ok)
	assert.Equal(t, 2, newest.seq)
}
