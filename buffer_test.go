// Copyright 2026 The slat Authors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package slat

import "testing"

func TestGrowCapacityMonotonic(t *testing.T) {
	requests := []uint64{10, 5000, 24 * 1024, 100, 60 * 1024, 60 * 1024, 1}
	capacity := uint64(vertexBufferStartCapacity)
	var maxSeen uint64
	for _, req := range requests {
		prev := capacity
		capacity = growCapacity(capacity, req)
		maxSeen = max(maxSeen, req)
		if capacity < prev {
			t.Fatalf("capacity shrank from %d to %d", prev, capacity)
		}
		if capacity < maxSeen {
			t.Fatalf("capacity %d below largest requirement %d", capacity, maxSeen)
		}
		if capacity != prev && capacity < prev*2 {
			t.Fatalf("growth from %d to %d is less than doubling", prev, capacity)
		}
	}
}

func TestGrowCapacityExactFit(t *testing.T) {
	// A requirement beyond double jumps straight to the requirement.
	if got := growCapacity(uint64(100), 1000); got != 1000 {
		t.Fatalf("growCapacity(100, 1000) = %d, want 1000", got)
	}
	// Fits: untouched.
	if got := growCapacity(uint64(100), 100); got != 100 {
		t.Fatalf("growCapacity(100, 100) = %d, want 100", got)
	}
	// Small overflow: doubled.
	if got := growCapacity(uint64(100), 101); got != 200 {
		t.Fatalf("growCapacity(100, 101) = %d, want 200", got)
	}
}

func TestLayoutSpans(t *testing.T) {
	payloads := [][]byte{
		make([]byte, 96),
		make([]byte, 24),
		nil,
		make([]byte, 744),
	}
	spans, total := layoutSpans(nil, payloads)
	if total != 96+24+744 {
		t.Fatalf("total = %d, want %d", total, 96+24+744)
	}
	if len(spans) != len(payloads) {
		t.Fatalf("got %d spans for %d payloads", len(spans), len(payloads))
	}
	var prevEnd uint64
	for i, s := range spans {
		if s.start != prevEnd {
			t.Fatalf("span %d starts at %d, want %d (contiguous)", i, s.start, prevEnd)
		}
		if s.len() != uint64(len(payloads[i])) {
			t.Fatalf("span %d has length %d, want %d", i, s.len(), len(payloads[i]))
		}
		prevEnd = s.end
	}
	if spans[0].start != 0 {
		t.Fatal("first span must start at offset 0")
	}
}

func TestLayoutSpansEmpty(t *testing.T) {
	spans, total := layoutSpans(nil, nil)
	if len(spans) != 0 || total != 0 {
		t.Fatalf("layoutSpans(nil, nil) = %v, %d", spans, total)
	}
}
