// Copyright 2026 The slat Authors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package slat

import "github.com/slatgfx/slat/gfx"

// MeshHandle identifies one registry entry. Handles are opaque, unique for
// the registry's lifetime, and never reused after removal.
type MeshHandle uint64

// PlacedMesh is a mesh with its horizontal draw offset, as consumed by the
// frame updater.
type PlacedMesh struct {
	Mesh   gfx.Mesh
	Offset float32
}

// Painter is the persistent mesh registry. Entries survive across frames
// until removed and are drawn before the frame's transient meshes, in
// insertion order. Painter may be mutated by any collaborator, but only
// between frames.
type Painter struct {
	next    MeshHandle
	order   []MeshHandle
	entries map[MeshHandle]*PlacedMesh
}

func NewPainter() *Painter {
	return &Painter{
		next:    1,
		entries: make(map[MeshHandle]*PlacedMesh),
	}
}

// Add tessellates the shape, paints every vertex with color, and inserts the
// mesh under a fresh handle.
func (p *Painter) Add(shape gfx.Shape, color gfx.Color) MeshHandle {
	mesh := shape.Tessellate()
	c := color.RGBFloats()
	for i := range mesh.Vertices {
		mesh.Vertices[i].Color = c
	}
	h := p.next
	p.next++
	p.order = append(p.order, h)
	p.entries[h] = &PlacedMesh{Mesh: mesh}
	return h
}

// Remove deletes the entry and returns its mesh. A stale or unknown handle
// is a defined no-op, not an error.
func (p *Painter) Remove(h MeshHandle) (gfx.Mesh, bool) {
	e, ok := p.entries[h]
	if !ok {
		return gfx.Mesh{}, false
	}
	delete(p.entries, h)
	for i, other := range p.order {
		if other == h {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
	return e.Mesh, true
}

// SetOffset sets the horizontal draw offset of an entry. Unknown handles are
// ignored.
func (p *Painter) SetOffset(h MeshHandle, offset float32) {
	if e, ok := p.entries[h]; ok {
		e.Offset = offset
	}
}

// Len returns the number of live entries.
func (p *Painter) Len() int {
	return len(p.entries)
}

// All returns the live entries in insertion order.
func (p *Painter) All() []PlacedMesh {
	out := make([]PlacedMesh, 0, len(p.order))
	for _, h := range p.order {
		out = append(out, *p.entries[h])
	}
	return out
}
