// Copyright 2026 The slat Authors
// SPDX-License-Identifier: Apache-2.0 OR MIT

// Package slat is a 2D GPU frame composition engine for desktop status
// surfaces. It batches colored geometry and shaped text into shared
// vertex/index buffers, drawing each frame with a handful of indexed draw
// calls over one pipeline per content kind.
//
// The frame contract is two-phase: collaborators enqueue draws between
// frames through [State.DrawShapeAbsolute], [State.Painter],
// [State.DrawTextAbsolute] and [State.DrawTextAbsoluteCached]; then
// [State.Update] resolves caches and weak references and rewrites the GPU
// buffers, and [State.Render] issues the draw calls and presents.
//
// Geometry lives in [github.com/slatgfx/slat/gfx], text shaping and the
// glyph atlas in [github.com/slatgfx/slat/text].
package slat
