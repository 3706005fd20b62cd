// Copyright 2026 The slat Authors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package text

// LayoutCache content-addresses shaped layouts. A hit returns the stored
// layout instance without consulting the shaper; a miss shapes exactly once
// and stores the result. The cache never evicts: shaped layouts are small
// compared to the rasterized glyphs they reference, and the set of distinct
// strings a status surface renders is effectively bounded by its widgets.
type LayoutCache struct {
	entries map[CacheKey]*Layout
}

func NewLayoutCache() *LayoutCache {
	return &LayoutCache{
		entries: make(map[CacheKey]*Layout),
	}
}

// Resolve returns the layout for key, shaping it via s on a miss. The bounds
// recorded in the key cap the layout box.
func (c *LayoutCache) Resolve(s Shaper, key CacheKey) (*Layout, error) {
	if l, ok := c.entries[key]; ok {
		return l, nil
	}
	l, err := s.Shape(key.Content, key.Font, key.Metrics(), float32(key.Bounds.Width()), float32(key.Bounds.Height()))
	if err != nil {
		return nil, err
	}
	c.entries[key] = l
	return l, nil
}

func (c *LayoutCache) Len() int {
	return len(c.entries)
}
