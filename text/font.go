// Copyright 2026 The slat Authors
// SPDX-License-Identifier: Apache-2.0 OR MIT

// Package text turns strings into positioned glyph layouts and rasterized
// screen pixels. Shaping goes through the Shaper service; shaped layouts are
// content-addressed by CacheKey; rasterized glyph masks live in a shared
// atlas texture drawn by Renderer.
package text

// Family selects a font family without naming a concrete file.
type Family uint8

const (
	FamilySansSerif Family = iota
	FamilyMonospace
	FamilyNamed
)

// Font is a comparable font descriptor. It is part of the shaping cache key,
// so two fonts that differ in any field address distinct cache entries.
type Font struct {
	Family Family
	// Name is the concrete family name, set only for FamilyNamed.
	Name   string
	Weight uint16
	Italic bool
}

const WeightNormal = 400

func FontDefault() Font {
	return Font{Family: FamilySansSerif, Weight: WeightNormal}
}

func FontMonospace() Font {
	return Font{Family: FamilyMonospace, Weight: WeightNormal}
}

func FontWithName(name string) Font {
	return Font{Family: FamilyNamed, Name: name, Weight: WeightNormal}
}

// Metrics are the size parameters of a shaping request, in logical pixels.
type Metrics struct {
	Size       float32
	LineHeight float32
}

// Bounds is the integer pixel region a text draw is clipped to.
type Bounds struct {
	Left, Top     int32
	Right, Bottom int32
}

func (b Bounds) Width() int32  { return b.Right - b.Left }
func (b Bounds) Height() int32 { return b.Bottom - b.Top }

// Shaping selects the shaping effort for a request.
type Shaping uint8

const (
	// ShapingBasic positions glyphs by advance only.
	ShapingBasic Shaping = iota
	// ShapingAdvanced applies full OpenType shaping (kerning, ligatures,
	// complex scripts).
	ShapingAdvanced
)
