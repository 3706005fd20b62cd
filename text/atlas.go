// Copyright 2026 The slat Authors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package text

import (
	"image"
	"image/draw"
	"math"

	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/font/opentype"
	"golang.org/x/image/vector"
)

// atlasPad is the empty border around each packed glyph, keeping linear
// sampling from bleeding between neighbors.
const atlasPad = 1

type glyphKey struct {
	face     *font.Face
	gid      font.GID
	sizeBits uint32
}

type atlasEntry struct {
	x, y, w, h int
	// bearingX and bearingY position the mask relative to the pen: left edge
	// offset and height of the top edge above the baseline.
	bearingX, bearingY float32
	lastUsed           uint64
}

type shelf struct {
	y, height, x int
}

// atlas packs rasterized glyph masks into one A8 pixel grid using shelf
// packing. The grid is fixed-size; when it fills up, it is reset wholesale
// and glyphs re-enter on demand. The caller uploads pix to the GPU whenever
// dirty is set.
type atlas struct {
	size    int
	pix     []byte
	shelves []shelf
	entries map[glyphKey]*atlasEntry
	used    int
	frame   uint64
	dirty   bool
	ras     vector.Rasterizer
}

func newAtlas(size int) *atlas {
	return &atlas{
		size:    size,
		pix:     make([]byte, size*size),
		entries: make(map[glyphKey]*atlasEntry),
	}
}

// entry returns the packed entry for the glyph, rasterizing and inserting it
// on first use. It returns (nil, false) for glyphs with no renderable
// outline and (nil, true) when the atlas had to be reset to make room, in
// which case the caller must rebuild all entry references for the frame.
func (a *atlas) entry(face *font.Face, gid font.GID, size float32) (*atlasEntry, bool) {
	key := glyphKey{face: face, gid: gid, sizeBits: math.Float32bits(size)}
	if e, ok := a.entries[key]; ok {
		e.lastUsed = a.frame
		return e, false
	}

	mask, bearingX, bearingY := rasterizeGlyph(&a.ras, face, gid, size)
	if mask == nil {
		return nil, false
	}
	w := mask.Rect.Dx()
	h := mask.Rect.Dy()

	x, y, ok := a.pack(w+2*atlasPad, h+2*atlasPad)
	if !ok {
		a.reset()
		x, y, ok = a.pack(w+2*atlasPad, h+2*atlasPad)
		if !ok {
			// Glyph larger than the atlas itself.
			return nil, true
		}
		a.place(key, mask, x, y, bearingX, bearingY)
		return nil, true
	}
	return a.place(key, mask, x, y, bearingX, bearingY), false
}

func (a *atlas) place(key glyphKey, mask *image.Alpha, x, y int, bearingX, bearingY float32) *atlasEntry {
	w := mask.Rect.Dx()
	h := mask.Rect.Dy()
	for row := 0; row < h; row++ {
		dst := a.pix[(y+atlasPad+row)*a.size+x+atlasPad:]
		src := mask.Pix[row*mask.Stride:]
		copy(dst[:w], src[:w])
	}
	e := &atlasEntry{
		x: x + atlasPad, y: y + atlasPad, w: w, h: h,
		bearingX: bearingX, bearingY: bearingY,
		lastUsed: a.frame,
	}
	a.entries[key] = e
	a.used += (w + 2*atlasPad) * (h + 2*atlasPad)
	a.dirty = true
	return e
}

// pack finds a shelf position for a w by h region.
func (a *atlas) pack(w, h int) (x, y int, ok bool) {
	if w > a.size || h > a.size {
		return 0, 0, false
	}
	for i := range a.shelves {
		s := &a.shelves[i]
		if h <= s.height && a.size-s.x >= w {
			x = s.x
			s.x += w
			return x, s.y, true
		}
	}
	top := 0
	if n := len(a.shelves); n > 0 {
		top = a.shelves[n-1].y + a.shelves[n-1].height
	}
	if a.size-top < h {
		return 0, 0, false
	}
	a.shelves = append(a.shelves, shelf{y: top, height: h, x: w})
	return 0, top, true
}

func (a *atlas) reset() {
	clear(a.pix)
	a.shelves = a.shelves[:0]
	a.entries = make(map[glyphKey]*atlasEntry)
	a.used = 0
	a.dirty = true
}

// Trim advances the frame stamp and drops the packed glyph set when most of
// it went unused this frame while the atlas is nearly full. Shaped layouts
// are unaffected; evicted glyphs re-rasterize on their next draw.
func (a *atlas) Trim() {
	if a.used*4 > a.size*a.size*3 {
		stale := 0
		for _, e := range a.entries {
			if e.lastUsed != a.frame {
				stale++
			}
		}
		if stale*2 > len(a.entries) {
			a.reset()
		}
	}
	a.frame++
}

// rasterizeGlyph renders the glyph's outline into a tight alpha mask.
// Returns nil for glyphs without an outline (whitespace, bitmap-only fonts).
func rasterizeGlyph(ras *vector.Rasterizer, face *font.Face, gid font.GID, size float32) (mask *image.Alpha, bearingX, bearingY float32) {
	data := face.GlyphData(gid)
	outline, ok := data.(font.GlyphOutline)
	if !ok || len(outline.Segments) == 0 {
		return nil, 0, 0
	}
	scale := size / float32(face.Upem())

	// Control points bound their curves, so the min/max over all args is a
	// valid (conservative) pixel box.
	minX := float32(math.Inf(1))
	minY := float32(math.Inf(1))
	maxX := float32(math.Inf(-1))
	maxY := float32(math.Inf(-1))
	for _, s := range outline.Segments {
		for _, p := range s.Args[:segArgs(s.Op)] {
			x := p.X * scale
			y := p.Y * scale
			minX = min(minX, x)
			minY = min(minY, y)
			maxX = max(maxX, x)
			maxY = max(maxY, y)
		}
	}
	w := int(math.Ceil(float64(maxX - minX)))
	h := int(math.Ceil(float64(maxY - minY)))
	if w <= 0 || h <= 0 {
		return nil, 0, 0
	}

	// Outline coordinates are y-up around the baseline; the mask is y-down
	// with its origin at the top-left of the bounding box.
	ty := func(y float32) float32 { return maxY - y*scale }

	ras.Reset(w, h)
	ras.DrawOp = draw.Src
	started := false
	for _, s := range outline.Segments {
		switch s.Op {
		case opentype.SegmentOpMoveTo:
			if started {
				ras.ClosePath()
			}
			ras.MoveTo(s.Args[0].X*scale-minX, ty(s.Args[0].Y))
			started = true
		case opentype.SegmentOpLineTo:
			ras.LineTo(s.Args[0].X*scale-minX, ty(s.Args[0].Y))
		case opentype.SegmentOpQuadTo:
			ras.QuadTo(
				s.Args[0].X*scale-minX, ty(s.Args[0].Y),
				s.Args[1].X*scale-minX, ty(s.Args[1].Y),
			)
		case opentype.SegmentOpCubeTo:
			ras.CubeTo(
				s.Args[0].X*scale-minX, ty(s.Args[0].Y),
				s.Args[1].X*scale-minX, ty(s.Args[1].Y),
				s.Args[2].X*scale-minX, ty(s.Args[2].Y),
			)
		}
	}
	if started {
		ras.ClosePath()
	}
	mask = image.NewAlpha(image.Rect(0, 0, w, h))
	ras.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	return mask, minX, maxY
}

func segArgs(op opentype.SegmentOp) int {
	switch op {
	case opentype.SegmentOpQuadTo:
		return 2
	case opentype.SegmentOpCubeTo:
		return 3
	default:
		return 1
	}
}
