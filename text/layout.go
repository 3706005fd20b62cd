// Copyright 2026 The slat Authors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package text

import "github.com/go-text/typesetting/font"

// Glyph is one positioned glyph in a shaped layout. X and Y are pen-relative
// offsets in logical pixels; Y runs downward from the first baseline.
type Glyph struct {
	GID  font.GID
	X, Y float32
}

// Layout is the result of shaping one request: positioned glyphs plus the
// measured extent. Layouts are immutable once produced; the shaping cache
// hands out the same *Layout for repeated identical requests.
type Layout struct {
	// Face is the concrete face the glyphs were shaped against. Nil layouts
	// without a face (empty content) draw nothing.
	Face *font.Face
	// Size is the font size the layout was shaped at, in logical pixels.
	Size   float32
	Glyphs []Glyph

	Width  float32
	Height float32
	// Ascent is the distance from the top of the layout box to the first
	// baseline.
	Ascent float32
}

// Shaper is the opaque shaping service boundary. It converts content plus
// font metrics into a positioned glyph layout with a measured extent.
// maxWidth and maxHeight bound the layout box; zero means unbounded.
type Shaper interface {
	Shape(content string, font Font, metrics Metrics, maxWidth, maxHeight float32) (*Layout, error)
}
