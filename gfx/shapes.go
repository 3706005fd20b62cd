// Copyright 2026 The slat Authors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package gfx

import "math"

// DefaultCircleSegments is the fan resolution used by Circle.Tessellate.
const DefaultCircleSegments = 30

// Shape is a closed set of drawable primitives. All coordinates are logical
// (pre-scale) pixel units. Tessellation is pure: the same shape always
// produces the same mesh.
type Shape interface {
	Tessellate() Mesh
}

type Rect struct {
	X, Y          float32
	Width, Height float32
	Color         Color
}

type Triangle struct {
	A, B, C [2]float32
	Color   Color
}

type Circle struct {
	X, Y   float32
	Radius float32
	Color  Color
}

func (r Rect) Tessellate() Mesh {
	c := r.Color.RGBFloats()
	return Mesh{
		Vertices: []Vertex{
			{Position: [3]float32{r.X, r.Y, 0}, Color: c},
			{Position: [3]float32{r.X, r.Y + r.Height, 0}, Color: c},
			{Position: [3]float32{r.X + r.Width, r.Y + r.Height, 0}, Color: c},
			{Position: [3]float32{r.X + r.Width, r.Y, 0}, Color: c},
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
}

func (t Triangle) Tessellate() Mesh {
	c := t.Color.RGBFloats()
	return Mesh{
		Vertices: []Vertex{
			{Position: [3]float32{t.A[0], t.A[1], 0}, Color: c},
			{Position: [3]float32{t.B[0], t.B[1], 0}, Color: c},
			{Position: [3]float32{t.C[0], t.C[1], 0}, Color: c},
		},
		Indices: []uint32{0, 1, 2},
	}
}

func (c Circle) Tessellate() Mesh {
	return c.TessellateN(DefaultCircleSegments)
}

// TessellateN builds a triangle fan with n segments around a center vertex,
// producing n+1 vertices and 3n indices.
func (c Circle) TessellateN(n int) Mesh {
	col := c.Color.RGBFloats()
	verts := make([]Vertex, 0, n+1)
	verts = append(verts, Vertex{Position: [3]float32{c.X, c.Y, 0}, Color: col})
	for i := 0; i < n; i++ {
		angle := 2 * math.Pi * float64(i) / float64(n)
		x := c.X + c.Radius*float32(math.Cos(angle))
		y := c.Y + c.Radius*float32(math.Sin(angle))
		verts = append(verts, Vertex{Position: [3]float32{x, y, 0}, Color: col})
	}
	indices := make([]uint32, 0, 3*n)
	for i := 1; i <= n; i++ {
		next := uint32(i%n + 1)
		indices = append(indices, 0, uint32(i), next)
	}
	return Mesh{Vertices: verts, Indices: indices}
}
