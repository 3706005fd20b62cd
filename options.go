// Copyright 2026 The slat Authors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package slat

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/slatgfx/slat/gfx"
	"github.com/slatgfx/slat/text"
)

// Options configures a State. The zero value selects sensible defaults.
type Options struct {
	// ScaleFactor is the display scale mapping logical pixels to physical
	// pixels. Zero means 1.
	ScaleFactor float64
	// PresentMode selects the surface presentation strategy. The default is
	// Fifo, which every surface supports.
	PresentMode wgpu.PresentMode
	// ClearColor is the background color of each frame.
	ClearColor gfx.Color
	// Shaper overrides the text shaping service. The default is a
	// GoTextShaper using system fonts.
	Shaper text.Shaper
}

func (o *Options) scaleFactor() float64 {
	if o == nil || o.ScaleFactor == 0 {
		return 1
	}
	return o.ScaleFactor
}

// preferredFormat picks the surface format: 8-bit unorm RGBA or BGRA when
// offered, else whatever the surface lists first.
func preferredFormat(formats []wgpu.TextureFormat) (wgpu.TextureFormat, bool) {
	for _, f := range formats {
		if f == wgpu.TextureFormatRGBA8Unorm || f == wgpu.TextureFormatBGRA8Unorm {
			return f, true
		}
	}
	if len(formats) > 0 {
		return formats[0], true
	}
	return 0, false
}
