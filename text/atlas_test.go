// Copyright 2026 The slat Authors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package text

import "testing"

func TestAtlasPackNoOverlap(t *testing.T) {
	a := newAtlas(64)
	type region struct{ x, y, w, h int }
	var packed []region
	sizes := []struct{ w, h int }{
		{10, 12}, {20, 8}, {16, 12}, {30, 30}, {5, 5}, {12, 12}, {31, 10},
	}
	for _, s := range sizes {
		x, y, ok := a.pack(s.w, s.h)
		if !ok {
			t.Fatalf("pack(%d, %d) failed with space left", s.w, s.h)
		}
		if x < 0 || y < 0 || x+s.w > 64 || y+s.h > 64 {
			t.Fatalf("region (%d,%d %dx%d) outside the atlas", x, y, s.w, s.h)
		}
		packed = append(packed, region{x, y, s.w, s.h})
	}
	for i, p := range packed {
		for j, q := range packed[:i] {
			if p.x < q.x+q.w && q.x < p.x+p.w && p.y < q.y+q.h && q.y < p.y+p.h {
				t.Fatalf("regions %d and %d overlap: %+v %+v", i, j, p, q)
			}
		}
	}
}

func TestAtlasPackRejectsOversized(t *testing.T) {
	a := newAtlas(32)
	if _, _, ok := a.pack(33, 4); ok {
		t.Fatal("pack accepted a region wider than the atlas")
	}
	if _, _, ok := a.pack(4, 33); ok {
		t.Fatal("pack accepted a region taller than the atlas")
	}
}

func TestAtlasPackFillsThenFails(t *testing.T) {
	a := newAtlas(16)
	if _, _, ok := a.pack(16, 16); !ok {
		t.Fatal("full-size region must fit an empty atlas")
	}
	if _, _, ok := a.pack(1, 1); ok {
		t.Fatal("pack succeeded on a full atlas")
	}
	a.reset()
	if _, _, ok := a.pack(1, 1); !ok {
		t.Fatal("pack failed after reset")
	}
}
