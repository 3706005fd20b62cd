// Copyright 2026 The slat Authors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package mem

import "testing"

func TestSliceRoundTrip(t *testing.T) {
	a := NewArena()
	s := MakeSlice(a, []uint32{1, 2, 3})
	if len(s) != 3 || s[0] != 1 || s[2] != 3 {
		t.Fatalf("MakeSlice produced %v", s)
	}
	s = Append(a, s, 4, 5)
	if len(s) != 5 || s[4] != 5 {
		t.Fatalf("Append produced %v", s)
	}
}

func TestNewSliceZeroed(t *testing.T) {
	a := NewArena()
	for round := 0; round < 3; round++ {
		b := NewSlice[[]byte](a, 4096, 4096)
		for i, v := range b {
			if v != 0 {
				t.Fatalf("round %d: byte %d not zeroed: %d", round, i, v)
			}
		}
		for i := range b {
			b[i] = 0xff
		}
		a.Reset()
	}
}

func TestMakeValue(t *testing.T) {
	type pair struct{ x, y int }
	a := NewArena()
	p := Make(a, pair{1, 2})
	q := Make(a, pair{3, 4})
	if *p != (pair{1, 2}) || *q != (pair{3, 4}) {
		t.Fatalf("Make clobbered values: %v %v", *p, *q)
	}
}

func TestOversizedAllocation(t *testing.T) {
	a := NewArena()
	n := slabSize + 4096
	b := NewSlice[[]byte](a, n, n)
	if len(b) != n {
		t.Fatalf("got %d bytes, want %d", len(b), n)
	}
	// Writing the full extent must stay inside the backing slab.
	for i := range b {
		b[i] = 0xab
	}
	if b[0] != 0xab || b[n-1] != 0xab {
		t.Fatal("oversized slice lost writes")
	}
	// The arena must still serve ordinary allocations afterwards.
	s := MakeSlice(a, []uint32{1, 2, 3})
	if len(s) != 3 || s[2] != 3 {
		t.Fatalf("small allocation after oversized one produced %v", s)
	}
}

func TestOversizedTypedAllocation(t *testing.T) {
	a := NewArena()
	x := 7
	// Pointerful element type forces the typed-slab branch; more elements
	// than fit one slab.
	n := slabSize
	s := NewSlice[[]*int](a, n, n)
	if len(s) != n {
		t.Fatalf("got %d elements, want %d", len(s), n)
	}
	s[0] = &x
	s[n-1] = &x
	if *s[0] != 7 || *s[n-1] != 7 {
		t.Fatal("oversized typed slice lost writes")
	}
}

func TestResetReusesSlabs(t *testing.T) {
	a := NewArena()
	first := NewSlice[[]byte](a, 16, 16)
	a.Reset()
	second := NewSlice[[]byte](a, 16, 16)
	if &first[0] != &second[0] {
		t.Fatal("Reset did not rewind the slab offset")
	}
}
