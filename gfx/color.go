// Copyright 2026 The slat Authors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package gfx

// Color is an 8-bit RGBA color. Channels are normalized to floats only at
// the point of conversion into vertex data.
type Color struct {
	R, G, B, A uint8
}

func RGB(r, g, b uint8) Color {
	return Color{r, g, b, 0xff}
}

func RGBA(r, g, b, a uint8) Color {
	return Color{r, g, b, a}
}

// RGBFloats returns the color channels normalized to [0, 1], dropping alpha.
// This is the form consumed by mesh vertices.
func (c Color) RGBFloats() [3]float32 {
	return [3]float32{
		float32(c.R) / 255,
		float32(c.G) / 255,
		float32(c.B) / 255,
	}
}

func (c Color) RGBAFloats() [4]float32 {
	return [4]float32{
		float32(c.R) / 255,
		float32(c.G) / 255,
		float32(c.B) / 255,
		float32(c.A) / 255,
	}
}
