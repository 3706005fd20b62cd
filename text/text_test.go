// Copyright 2026 The slat Authors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package text

import (
	"runtime"
	"testing"

	"github.com/slatgfx/slat/gfx"
)

func TestTextReshapeOnContentChange(t *testing.T) {
	sh := &countingShaper{}
	txt, err := NewText(sh, "09:00", 5, 10, gfx.RGB(255, 255, 255), FontDefault(), Metrics{Size: 16, LineHeight: 20})
	if err != nil {
		t.Fatal(err)
	}
	if sh.calls != 1 {
		t.Fatalf("NewText invoked the shaper %d times, want 1", sh.calls)
	}
	if txt.Dirty() {
		t.Fatal("fresh text must not be dirty")
	}

	// Reshape is a no-op while the text is clean.
	if err := txt.Reshape(sh); err != nil {
		t.Fatal(err)
	}
	if sh.calls != 1 {
		t.Fatal("Reshape on clean text must not shape")
	}

	txt.SetContent("09:01")
	if !txt.Dirty() {
		t.Fatal("SetContent must mark the text dirty")
	}
	if err := txt.Reshape(sh); err != nil {
		t.Fatal(err)
	}
	if txt.Dirty() || sh.calls != 2 {
		t.Fatalf("Reshape: dirty=%v calls=%d, want clean and 2", txt.Dirty(), sh.calls)
	}

	// Setting identical content changes nothing.
	txt.SetContent("09:01")
	if txt.Dirty() {
		t.Fatal("identical content must not mark the text dirty")
	}
}

func TestTextBoundsFollowPosition(t *testing.T) {
	sh := &countingShaper{}
	txt, err := NewText(sh, "abcd", 0, 0, gfx.Color{}, FontDefault(), Metrics{Size: 10, LineHeight: 12})
	if err != nil {
		t.Fatal(err)
	}
	// countingShaper reports width len*size/2 = 20 and height 12.
	want := Bounds{Left: 0, Top: 0, Right: 20, Bottom: 12}
	if txt.Bounds != want {
		t.Fatalf("bounds %+v, want %+v", txt.Bounds, want)
	}
	txt.SetPos(100, 50)
	want = Bounds{Left: 100, Top: 50, Right: 120, Bottom: 62}
	if txt.Bounds != want {
		t.Fatalf("bounds after SetPos %+v, want %+v", txt.Bounds, want)
	}
	if sh.calls != 1 {
		t.Fatal("SetPos must not reshape")
	}
}

func TestManagedResolveWhileOwned(t *testing.T) {
	sh := &countingShaper{}
	txt, err := NewText(sh, "held", 0, 0, gfx.Color{}, FontDefault(), Metrics{Size: 10})
	if err != nil {
		t.Fatal(err)
	}
	m := NewManaged(txt)
	runtime.GC()
	if m.Resolve() == nil {
		t.Fatal("managed text with a live owner must resolve")
	}
	runtime.KeepAlive(txt)
}

func TestManagedSkipAfterOwnerDrop(t *testing.T) {
	sh := &countingShaper{}
	m := func() Managed {
		txt, err := NewText(sh, "dropped", 0, 0, gfx.Color{}, FontDefault(), Metrics{Size: 10})
		if err != nil {
			t.Fatal(err)
		}
		return NewManaged(txt)
	}()

	// The owner is gone; after a collection the handle must stop resolving.
	for i := 0; i < 10; i++ {
		runtime.GC()
		if m.Resolve() == nil {
			return
		}
	}
	t.Fatal("managed text still resolves after its owner was dropped")
}
