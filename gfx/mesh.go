// Copyright 2026 The slat Authors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package gfx

import (
	"fmt"
	"unsafe"
)

// Vertex is one triangle-list vertex as uploaded to the GPU: a position in
// logical pixel units (z reserved for layering, normally 0) and an RGB color.
type Vertex struct {
	Position [3]float32
	Color    [3]float32
}

// VertexSize is the byte stride of a Vertex in the vertex buffer.
const VertexSize = int(unsafe.Sizeof(Vertex{}))

// IndexSize is the byte size of one index buffer element.
const IndexSize = 4

// Mesh is triangle-list geometry: a vertex list plus indices consumed in
// groups of three. Meshes are plain CPU data; they carry no GPU state.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
}

func (m *Mesh) VertexBytes() int {
	return len(m.Vertices) * VertexSize
}

func (m *Mesh) IndexBytes() int {
	return len(m.Indices) * IndexSize
}

// Validate checks the structural invariants of a mesh: the index count is a
// multiple of three and every index refers to an existing vertex.
func (m *Mesh) Validate() error {
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("gfx: index count %d is not a multiple of 3", len(m.Indices))
	}
	n := uint32(len(m.Vertices))
	for _, idx := range m.Indices {
		if idx >= n {
			return fmt.Errorf("gfx: index %d out of range for %d vertices", idx, n)
		}
	}
	return nil
}

// Translate shifts all vertices horizontally in place.
func (m *Mesh) Translate(dx float32) {
	for i := range m.Vertices {
		m.Vertices[i].Position[0] += dx
	}
}
