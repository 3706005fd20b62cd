// Copyright 2026 The slat Authors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package slat

import (
	"errors"
	"runtime"
	"testing"

	"github.com/slatgfx/slat/gfx"
	"github.com/slatgfx/slat/mem"
	"github.com/slatgfx/slat/text"
)

// stubShaper produces synthetic layouts without a real font.
type stubShaper struct{}

func (stubShaper) Shape(content string, f text.Font, m text.Metrics, maxW, maxH float32) (*text.Layout, error) {
	return &text.Layout{
		Size:   m.Size,
		Width:  float32(len(content)) * m.Size / 2,
		Height: m.Size,
	}, nil
}

func TestResizeZeroIsNoOp(t *testing.T) {
	s := &State{}
	s.config.Width = 800
	s.config.Height = 32

	s.Resize(0, 100)
	if s.config.Width != 800 || s.config.Height != 32 {
		t.Fatalf("config changed to %dx%d on zero-width resize", s.config.Width, s.config.Height)
	}
	s.Resize(100, 0)
	if s.config.Width != 800 || s.config.Height != 32 {
		t.Fatalf("config changed to %dx%d on zero-height resize", s.config.Width, s.config.Height)
	}
}

func TestGatherMeshesOrder(t *testing.T) {
	arena := mem.NewArena()
	p := NewPainter()
	p.Add(gfx.Rect{Width: 1, Height: 1}, gfx.Color{})
	p.Add(gfx.Rect{Width: 2, Height: 2}, gfx.Color{})
	transient := []PlacedMesh{
		{Mesh: gfx.Rect{Width: 3, Height: 3}.Tessellate()},
		{Mesh: gfx.Rect{Width: 4, Height: 4}.Tessellate()},
	}

	meshes := gatherMeshes(arena, p, transient)
	if len(meshes) != 4 {
		t.Fatalf("got %d meshes, want 4", len(meshes))
	}
	widths := []float32{1, 2, 3, 4}
	for i, pm := range meshes {
		if got := pm.Mesh.Vertices[2].Position[0]; got != widths[i] {
			t.Fatalf("mesh %d has width %v, want %v (registry must precede transients)", i, got, widths[i])
		}
	}
}

func TestGatherMeshesEmpty(t *testing.T) {
	arena := mem.NewArena()
	if got := gatherMeshes(arena, NewPainter(), nil); len(got) != 0 {
		t.Fatalf("gathered %d meshes from an empty frame", len(got))
	}
}

// Text draw order is submission order, with cached and managed draws
// interleaved exactly as enqueued.
func TestTextDrawSubmissionOrder(t *testing.T) {
	sh := stubShaper{}
	s := &State{
		shaper:      sh,
		cache:       text.NewLayoutCache(),
		log:         Logger(),
		scaleFactor: 1,
	}
	s.config.Width = 800
	s.config.Height = 32

	t1, err := text.NewText(sh, "a", 1, 0, gfx.Color{}, text.FontDefault(), text.Metrics{Size: 10})
	if err != nil {
		t.Fatal(err)
	}
	t2, err := text.NewText(sh, "c", 3, 0, gfx.Color{}, text.FontDefault(), text.Metrics{Size: 10})
	if err != nil {
		t.Fatal(err)
	}

	s.DrawTextAbsolute(t1)
	if err := s.DrawTextAbsoluteCached("b", 2, 0, gfx.Color{}, 10); err != nil {
		t.Fatal(err)
	}
	s.DrawTextAbsoluteOffset(t2, 7)
	if err := s.DrawTextAbsoluteCached("d", 4, 0, gfx.Color{}, 10); err != nil {
		t.Fatal(err)
	}

	draws := resolveTextDraws(s.log, s.shaper, s.pending, nil)
	if len(draws) != 4 {
		t.Fatalf("got %d draws, want 4", len(draws))
	}
	xs := []float32{1, 2, 3, 4}
	for i, d := range draws {
		if d.X != xs[i] {
			t.Fatalf("draw %d at x=%v, want %v (submission order violated)", i, d.X, xs[i])
		}
	}
	if draws[2].Offset != 7 {
		t.Fatalf("managed draw offset %v, want 7", draws[2].Offset)
	}
	runtime.KeepAlive(t1)
	runtime.KeepAlive(t2)
}

func TestClassifyDeviceError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"lost", errors.New("Surface was Lost"), ErrSurfaceLost},
		{"outdated", errors.New("the underlying surface is outdated"), ErrSurfaceOutdated},
		{"oom", errors.New("Device Out of Memory"), ErrOutOfMemory},
		{"timeout", errors.New("surface acquire timed out"), ErrTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyDeviceError("op", tt.err)
			if !errors.Is(got, tt.want) {
				t.Fatalf("classifyDeviceError(%q) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}

	other := errors.New("validation error")
	got := classifyDeviceError("op", other)
	if !errors.Is(got, other) {
		t.Fatal("unclassified errors must wrap the original")
	}
	if RecoverableByResize(got) || isFatal(got) {
		t.Fatal("unclassified errors are neither recoverable-by-resize nor fatal")
	}
	if classifyDeviceError("op", nil) != nil {
		t.Fatal("nil must classify to nil")
	}
}

func TestSetLoggerNilRestoresDefault(t *testing.T) {
	SetLogger(nil)
	l := Logger()
	if l == nil {
		t.Fatal("Logger() returned nil after SetLogger(nil)")
	}
	// The default must swallow records without formatting them.
	if l.Enabled(nil, 0) {
		t.Fatal("default logger must be disabled at all levels")
	}
}

func TestRecoverableByResize(t *testing.T) {
	if !RecoverableByResize(ErrSurfaceLost) || !RecoverableByResize(ErrSurfaceOutdated) {
		t.Fatal("lost and outdated must be recoverable by resize")
	}
	if RecoverableByResize(ErrOutOfMemory) || RecoverableByResize(ErrTimeout) {
		t.Fatal("out-of-memory and timeout are not recoverable by resize")
	}
}
