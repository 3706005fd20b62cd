// Copyright 2026 The slat Authors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package text

import (
	"fmt"

	"github.com/slatgfx/slat/gfx"
)

// Text is caller-owned text state. The owner creates it, mutates it between
// frames via the setters, and simply drops it when done; the engine observes
// it through a Managed handle and never takes ownership.
//
// Text is not safe for concurrent use; owners mutate it only between frames,
// per the frame contract.
type Text struct {
	X, Y    float32
	Color   gfx.Color
	Bounds  Bounds
	Layout  *Layout
	content string
	font    Font
	metrics Metrics
	dirty   bool
}

// NewText shapes content immediately and sizes the bounds to the measured
// extent at the given position.
func NewText(s Shaper, content string, x, y float32, color gfx.Color, font Font, metrics Metrics) (*Text, error) {
	t := &Text{
		X:       x,
		Y:       y,
		Color:   color,
		content: content,
		font:    font,
		metrics: metrics,
	}
	if err := t.shape(s); err != nil {
		return nil, fmt.Errorf("text: shaping %q: %w", content, err)
	}
	return t, nil
}

func (t *Text) Content() string { return t.content }
func (t *Text) Font() Font      { return t.font }
func (t *Text) Metrics() Metrics { return t.metrics }

// SetContent replaces the text and marks the layout stale. The engine
// reshapes stale texts in place during the next update, so owners never
// reallocate for a content change.
func (t *Text) SetContent(content string) {
	if content == t.content {
		return
	}
	t.content = content
	t.dirty = true
}

// SetPos moves the text. Bounds follow the position; no reshape is needed.
func (t *Text) SetPos(x, y float32) {
	t.X = x
	t.Y = y
	t.updateBounds()
}

// Dirty reports whether the layout is stale relative to the content.
func (t *Text) Dirty() bool { return t.dirty }

// Reshape re-shapes a stale text in place and refreshes its measured bounds.
// Called by the engine during update; a no-op when the text is clean.
func (t *Text) Reshape(s Shaper) error {
	if !t.dirty {
		return nil
	}
	if err := t.shape(s); err != nil {
		return fmt.Errorf("text: reshaping %q: %w", t.content, err)
	}
	return nil
}

func (t *Text) shape(s Shaper) error {
	l, err := s.Shape(t.content, t.font, t.metrics, 0, 0)
	if err != nil {
		return err
	}
	t.Layout = l
	t.dirty = false
	t.updateBounds()
	return nil
}

func (t *Text) updateBounds() {
	var w, h float32
	if t.Layout != nil {
		w = t.Layout.Width
		h = t.Layout.Height
	}
	t.Bounds = Bounds{
		Left:   int32(t.X),
		Top:    int32(t.Y),
		Right:  int32(t.X + w),
		Bottom: int32(t.Y + h),
	}
}
