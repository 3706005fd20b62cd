// Copyright 2026 The slat Authors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package gfx

import "testing"

func TestRectTessellate(t *testing.T) {
	red := RGB(255, 0, 0)
	m := Rect{X: 0, Y: 0, Width: 20, Height: 20, Color: red}.Tessellate()

	if got := len(m.Vertices); got != 4 {
		t.Fatalf("got %d vertices, want 4", got)
	}
	if got := len(m.Indices); got != 6 {
		t.Fatalf("got %d indices, want 6", got)
	}
	want := [][3]float32{{0, 0, 0}, {0, 20, 0}, {20, 20, 0}, {20, 0, 0}}
	for i, v := range m.Vertices {
		if v.Position != want[i] {
			t.Errorf("vertex %d at %v, want %v", i, v.Position, want[i])
		}
		if v.Color != ([3]float32{1, 0, 0}) {
			t.Errorf("vertex %d color %v, want red", i, v.Color)
		}
	}
	if err := m.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestCircleTessellate(t *testing.T) {
	m := Circle{X: 10, Y: 10, Radius: 5, Color: RGB(0, 255, 0)}.Tessellate()

	if got := len(m.Vertices); got != 31 {
		t.Fatalf("got %d vertices, want 31", got)
	}
	if got := len(m.Indices); got != 90 {
		t.Fatalf("got %d indices, want 90", got)
	}
	for i, idx := range m.Indices {
		if idx >= 31 {
			t.Fatalf("index %d is %d, out of range", i, idx)
		}
	}
	// Every triangle includes the center vertex.
	for i := 0; i < len(m.Indices); i += 3 {
		if m.Indices[i] != 0 {
			t.Fatalf("triangle %d does not start at the center vertex", i/3)
		}
	}
	if err := m.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestTriangleTessellate(t *testing.T) {
	m := Triangle{A: [2]float32{0, 0}, B: [2]float32{10, 0}, C: [2]float32{5, 10}}.Tessellate()
	if len(m.Vertices) != 3 || len(m.Indices) != 3 {
		t.Fatalf("got %d vertices / %d indices, want 3 / 3", len(m.Vertices), len(m.Indices))
	}
	if err := m.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestMeshValidate(t *testing.T) {
	tests := []struct {
		name    string
		mesh    Mesh
		wantErr bool
	}{
		{"empty", Mesh{}, false},
		{"valid", Mesh{Vertices: make([]Vertex, 3), Indices: []uint32{0, 1, 2}}, false},
		{"not a triangle list", Mesh{Vertices: make([]Vertex, 3), Indices: []uint32{0, 1}}, true},
		{"index out of range", Mesh{Vertices: make([]Vertex, 3), Indices: []uint32{0, 1, 3}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mesh.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMeshTranslate(t *testing.T) {
	m := Rect{X: 0, Y: 0, Width: 4, Height: 4}.Tessellate()
	m.Translate(7)
	if m.Vertices[0].Position[0] != 7 || m.Vertices[2].Position[0] != 11 {
		t.Fatalf("translate did not shift x: %v", m.Vertices)
	}
	if m.Vertices[0].Position[1] != 0 {
		t.Fatal("translate must not touch y")
	}
}
