// Copyright 2026 The slat Authors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package text

import "math"

// CacheKey canonically identifies one shaping request. It is comparable and
// used directly as a map key; sizes are stored as float bit patterns so that
// key equality stays total and deterministic regardless of the float values.
//
// Two requests that differ in any field are distinct cache entries, even if
// they would render identically.
type CacheKey struct {
	Content        string
	SizeBits       uint32
	LineHeightBits uint32
	Font           Font
	Bounds         Bounds
	Shaping        Shaping
}

func NewCacheKey(content string, font Font, metrics Metrics, bounds Bounds, shaping Shaping) CacheKey {
	return CacheKey{
		Content:        content,
		SizeBits:       math.Float32bits(metrics.Size),
		LineHeightBits: math.Float32bits(metrics.LineHeight),
		Font:           font,
		Bounds:         bounds,
		Shaping:        shaping,
	}
}

// Metrics recovers the size parameters encoded in the key.
func (k CacheKey) Metrics() Metrics {
	return Metrics{
		Size:       math.Float32frombits(k.SizeBits),
		LineHeight: math.Float32frombits(k.LineHeightBits),
	}
}
