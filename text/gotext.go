// Copyright 2026 The slat Authors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package text

import (
	"bytes"
	"fmt"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/fontscan"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
)

// GoTextShaper is the go-text/typesetting implementation of Shaper. Faces
// are resolved from explicitly registered TTF data or, failing that, from
// the system font index.
//
// GoTextShaper is not safe for concurrent use; the engine drives it from the
// render thread only.
type GoTextShaper struct {
	hb    shaping.HarfbuzzShaper
	faces map[Font]*font.Face
	// fontMap indexes system fonts, built lazily on the first lookup that
	// misses the registered faces.
	fontMap *fontscan.FontMap
}

func NewGoTextShaper() *GoTextShaper {
	return &GoTextShaper{
		faces: make(map[Font]*font.Face),
	}
}

// RegisterFont parses TTF or OTF data and binds it to the descriptor,
// bypassing system font lookup for that descriptor.
func (s *GoTextShaper) RegisterFont(f Font, data []byte) error {
	face, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("text: parsing font for %v: %w", f, err)
	}
	s.faces[f] = face
	return nil
}

func (s *GoTextShaper) Shape(content string, f Font, metrics Metrics, maxWidth, maxHeight float32) (*Layout, error) {
	face, err := s.face(f)
	if err != nil {
		return nil, err
	}
	lineHeight := metrics.LineHeight
	if lineHeight == 0 {
		lineHeight = metrics.Size
	}
	if content == "" {
		return &Layout{Face: face, Size: metrics.Size, Height: lineHeight}, nil
	}

	runes := []rune(content)
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      face,
		Size:      fixed.Int26_6(metrics.Size * 64),
		Script:    detectScript(runes),
		Language:  language.NewLanguage("en"),
	}
	out := s.hb.Shape(input)

	ascent := fixedToFloat(out.LineBounds.Ascent)
	glyphs := make([]Glyph, 0, len(out.Glyphs))
	var pen float32
	for _, g := range out.Glyphs {
		adv := fixedToFloat(g.Advance)
		if maxWidth > 0 && pen+adv > maxWidth {
			break
		}
		glyphs = append(glyphs, Glyph{
			GID: g.GlyphID,
			X:   pen + fixedToFloat(g.XOffset),
			Y:   ascent - fixedToFloat(g.YOffset),
		})
		pen += adv
	}

	height := lineHeight
	if maxHeight > 0 && height > maxHeight {
		height = maxHeight
	}
	return &Layout{
		Face:   face,
		Size:   metrics.Size,
		Glyphs: glyphs,
		Width:  pen,
		Height: height,
		Ascent: ascent,
	}, nil
}

func (s *GoTextShaper) face(f Font) (*font.Face, error) {
	if face, ok := s.faces[f]; ok {
		return face, nil
	}
	if s.fontMap == nil {
		m := fontscan.NewFontMap(nil)
		if err := m.UseSystemFonts(""); err != nil {
			return nil, fmt.Errorf("text: indexing system fonts: %w", err)
		}
		s.fontMap = m
	}
	q := fontscan.Query{Families: []string{familyName(f)}}
	if f.Italic {
		q.Aspect.Style = font.StyleItalic
	}
	if f.Weight != 0 {
		q.Aspect.Weight = font.Weight(f.Weight)
	}
	s.fontMap.SetQuery(q)
	face := s.fontMap.ResolveFace(' ')
	if face == nil {
		return nil, fmt.Errorf("text: no face found for %v", f)
	}
	s.faces[f] = face
	return face, nil
}

func familyName(f Font) string {
	switch f.Family {
	case FamilyMonospace:
		return fontscan.Monospace
	case FamilyNamed:
		return f.Name
	default:
		return fontscan.SansSerif
	}
}

// detectScript returns the script of the first non-space rune.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		switch r {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

func fixedToFloat(v fixed.Int26_6) float32 {
	return float32(v) / 64
}
