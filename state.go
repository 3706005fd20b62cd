// Copyright 2026 The slat Authors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package slat

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/slatgfx/slat/gfx"
	"github.com/slatgfx/slat/mem"
	"github.com/slatgfx/slat/text"
)

// State is the frame composition engine. Collaborators enqueue shapes and
// text between frames; Update resolves caches and weak references and writes
// the GPU buffers; Render issues the draw calls and presents.
//
// State is single-threaded: all methods must be called from the thread
// driving the render loop, and Painter mutation is only allowed between
// frames. Update must be called before Render each frame; a failed frame
// leaves the previously presented image on screen.
type State struct {
	instance *wgpu.Instance
	surface  *wgpu.Surface
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	config   wgpu.SurfaceConfiguration

	scaleFactor float64
	clearColor  gfx.Color
	log         *slog.Logger

	arena   *mem.Arena
	meshes  *meshRenderer
	painter *Painter

	shaper text.Shaper
	cache  *text.LayoutCache
	texts  *text.Renderer

	// Per-frame pending work, consumed by Update.
	transient    []PlacedMesh
	pending      []pendingText
	preparedText []text.Draw
}

// pendingText is one enqueued text draw, cached or managed, in submission
// order. Cached slots carry a complete draw; managed slots resolve their
// weak reference during update.
type pendingText struct {
	handle  text.Managed
	managed bool
	draw    text.Draw
}

// New creates a State rendering to the surface described by sd, sized in
// physical pixels.
func New(sd *wgpu.SurfaceDescriptor, width, height uint32, opts *Options) (*State, error) {
	s := &State{
		scaleFactor: 1,
		log:         Logger(),
		arena:       mem.NewArena(),
		painter:     NewPainter(),
		cache:       text.NewLayoutCache(),
		shaper:      text.NewGoTextShaper(),
	}
	if opts != nil {
		s.scaleFactor = opts.scaleFactor()
		s.clearColor = opts.ClearColor
		if opts.Shaper != nil {
			s.shaper = opts.Shaper
		}
	}

	s.instance = wgpu.CreateInstance(nil)
	surface := s.instance.CreateSurface(sd)
	if surface == nil {
		s.Release()
		return nil, fmt.Errorf("slat: creating surface failed")
	}
	s.surface = surface

	adapter, err := s.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: surface,
	})
	if err != nil {
		s.Release()
		return nil, classifyDeviceError("requesting adapter", err)
	}
	s.adapter = adapter

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "slat device",
	})
	if err != nil {
		s.Release()
		return nil, classifyDeviceError("requesting device", err)
	}
	s.device = device
	s.queue = device.GetQueue()

	caps := surface.GetCapabilities(adapter)
	format, ok := preferredFormat(caps.Formats)
	if !ok {
		s.Release()
		return nil, fmt.Errorf("slat: surface offers no texture formats")
	}
	s.log.Debug("surface format selected", "format", format)

	presentMode := wgpu.PresentModeFifo
	if opts != nil && opts.PresentMode != 0 {
		presentMode = opts.PresentMode
	}
	alphaMode := wgpu.CompositeAlphaModeAuto
	if len(caps.AlphaModes) > 0 {
		alphaMode = caps.AlphaModes[0]
	}
	s.config = wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      format,
		Width:       width,
		Height:      height,
		PresentMode: presentMode,
		AlphaMode:   alphaMode,
	}
	surface.Configure(adapter, device, &s.config)

	s.meshes, err = newMeshRenderer(device, format)
	if err != nil {
		s.Release()
		return nil, err
	}
	s.texts = text.NewRenderer(format, s.log)
	return s, nil
}

// Painter returns the persistent mesh registry.
func (s *State) Painter() *Painter {
	return s.painter
}

// ClearBackground sets the color the frame is cleared with.
func (s *State) ClearBackground(c gfx.Color) {
	s.clearColor = c
}

// DrawShapeAbsolute enqueues a transient mesh for this frame only. Positions
// are absolute logical pixels.
func (s *State) DrawShapeAbsolute(shape gfx.Shape) {
	s.transient = append(s.transient, PlacedMesh{Mesh: shape.Tessellate()})
}

// DrawMeshAbsolute enqueues an already tessellated transient mesh with a
// horizontal draw offset.
func (s *State) DrawMeshAbsolute(m gfx.Mesh, offset float32) {
	s.transient = append(s.transient, PlacedMesh{Mesh: m, Offset: offset})
}

// DrawTextAbsolute enqueues caller-owned text for this frame. The engine
// keeps only a weak reference; if the owner drops the text before Update,
// the slot is skipped silently.
func (s *State) DrawTextAbsolute(t *text.Text) {
	s.pending = append(s.pending, pendingText{handle: text.NewManaged(t), managed: true})
}

// DrawTextAbsoluteOffset is DrawTextAbsolute with a horizontal draw offset.
func (s *State) DrawTextAbsoluteOffset(t *text.Text, offset float32) {
	s.pending = append(s.pending, pendingText{
		handle:  text.NewManaged(t),
		managed: true,
		draw:    text.Draw{Offset: offset},
	})
}

// DrawTextAbsoluteCached enqueues text shaped through the content-addressed
// cache. Repeated calls with identical content and metrics reuse the shaped
// layout without consulting the shaper.
func (s *State) DrawTextAbsoluteCached(content string, x, y float32, color gfx.Color, size float32) error {
	metrics := text.Metrics{Size: size, LineHeight: size}
	bounds := text.Bounds{
		Left:   int32(x),
		Top:    int32(y),
		Right:  int32(x) + int32(s.logicalWidth()),
		Bottom: int32(y) + int32(size*2),
	}
	key := text.NewCacheKey(content, text.FontDefault(), metrics, bounds, text.ShapingAdvanced)
	layout, err := s.cache.Resolve(s.shaper, key)
	if err != nil {
		return fmt.Errorf("slat: shaping cached text: %w", err)
	}
	s.pending = append(s.pending, pendingText{
		draw: text.Draw{Layout: layout, X: x, Y: y, Color: color},
	})
	return nil
}

// MeasureText shapes content without touching the frame or the cache and
// returns the measured extent in logical pixels.
func (s *State) MeasureText(content string, metrics text.Metrics) (width, height float32, err error) {
	layout, err := s.shaper.Shape(content, text.FontDefault(), metrics, 0, 0)
	if err != nil {
		return 0, 0, fmt.Errorf("slat: measuring text: %w", err)
	}
	return layout.Width, layout.Height, nil
}

// Update is the first half of the frame contract: it gathers the frame's
// meshes (registry entries first, then transients, insertion order within
// each), rewrites the geometry buffers, resolves managed text, and prepares
// the glyph atlas. The pending transient lists are consumed.
func (s *State) Update() error {
	s.arena.Reset()

	meshes := gatherMeshes(s.arena, s.painter, s.transient)
	s.transient = s.transient[:0]

	if err := s.meshes.updateBuffers(s.device, s.queue, s.arena, meshes); err != nil {
		if RecoverableByResize(err) || isFatal(err) {
			return err
		}
		s.log.Warn("skipping frame after device error", "err", err)
		return nil
	}
	s.meshes.writeUniform(s.queue, s.logicalWidth(), s.logicalHeight())

	s.preparedText = resolveTextDraws(s.log, s.shaper, s.pending, s.preparedText[:0])
	s.pending = s.pending[:0]

	err := s.texts.Prepare(s.device, s.queue, s.logicalWidth(), s.logicalHeight(), s.preparedText)
	if err != nil {
		if RecoverableByResize(err) || isFatal(err) {
			return err
		}
		s.log.Warn("skipping frame after text prepare error", "err", err)
		s.preparedText = s.preparedText[:0]
	}
	return nil
}

// Render is the second half of the frame contract: acquire the surface
// texture, clear, draw meshes then text, submit, present. Afterwards the
// glyph atlas is trimmed.
func (s *State) Render() error {
	surfaceTex, err := s.surface.GetCurrentTexture()
	if err != nil {
		return classifyDeviceError("acquiring surface texture", err)
	}
	defer surfaceTex.Release()
	view, err := surfaceTex.CreateView(nil)
	if err != nil {
		return classifyDeviceError("creating surface view", err)
	}
	defer view.Release()

	encoder, err := s.device.CreateCommandEncoder(nil)
	if err != nil {
		return classifyDeviceError("creating command encoder", err)
	}
	defer encoder.Release()

	cc := s.clearColor.RGBAFloats()
	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "slat frame",
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:    view,
				LoadOp:  wgpu.LoadOpClear,
				StoreOp: wgpu.StoreOpStore,
				ClearValue: wgpu.Color{
					R: float64(cc[0]),
					G: float64(cc[1]),
					B: float64(cc[2]),
					A: float64(cc[3]),
				},
			},
		},
	})
	s.meshes.render(pass)
	s.texts.Render(pass)
	pass.End()
	pass.Release()

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return classifyDeviceError("finishing command encoder", err)
	}
	defer cmd.Release()

	s.queue.Submit(cmd)
	s.surface.Present()
	s.texts.Trim()
	return nil
}

// Resize reconfigures the surface and viewport for new physical dimensions.
// A zero width or height is a no-op.
func (s *State) Resize(width, height uint32) {
	if width == 0 || height == 0 {
		return
	}
	s.config.Width = width
	s.config.Height = height
	s.surface.Configure(s.adapter, s.device, &s.config)
}

// Release frees all GPU resources. The State must not be used afterwards.
func (s *State) Release() {
	if s.texts != nil {
		s.texts.Release()
		s.texts = nil
	}
	if s.meshes != nil {
		s.meshes.release()
		s.meshes = nil
	}
	s.queue = nil
	if s.device != nil {
		s.device.Release()
		s.device = nil
	}
	if s.adapter != nil {
		s.adapter.Release()
		s.adapter = nil
	}
	if s.surface != nil {
		s.surface.Release()
		s.surface = nil
	}
	if s.instance != nil {
		s.instance.Release()
		s.instance = nil
	}
}

// gatherMeshes builds the frame's mesh list: registry entries first, then
// transients, insertion order within each. List order is draw order, so
// later meshes overdraw earlier ones.
func gatherMeshes(arena *mem.Arena, painter *Painter, transient []PlacedMesh) []PlacedMesh {
	meshes := mem.NewSlice[[]PlacedMesh](arena, 0, painter.Len()+len(transient))
	for _, pm := range painter.All() {
		meshes = mem.Append(arena, meshes, pm)
	}
	for _, pm := range transient {
		meshes = mem.Append(arena, meshes, pm)
	}
	return meshes
}

// resolveTextDraws turns the frame's pending text slots into draws,
// preserving submission order across cached and managed slots. Managed
// slots whose owner disappeared are skipped; dirty managed texts are
// reshaped in place first.
func resolveTextDraws(log *slog.Logger, shaper text.Shaper, pending []pendingText, dst []text.Draw) []text.Draw {
	for _, p := range pending {
		if !p.managed {
			dst = append(dst, p.draw)
			continue
		}
		t := p.handle.Resolve()
		if t == nil {
			// Owner dropped the text; nothing to draw, nothing to report.
			continue
		}
		if t.Dirty() {
			if err := t.Reshape(shaper); err != nil {
				log.Warn("reshaping managed text failed", "err", err)
				continue
			}
		}
		dst = append(dst, text.Draw{
			Layout: t.Layout,
			X:      t.X,
			Y:      t.Y,
			Offset: p.draw.Offset,
			Color:  t.Color,
		})
	}
	return dst
}

func (s *State) logicalWidth() float32 {
	return float32(float64(s.config.Width) / s.scaleFactor)
}

func (s *State) logicalHeight() float32 {
	return float32(float64(s.config.Height) / s.scaleFactor)
}

func isFatal(err error) bool {
	return errors.Is(err, ErrOutOfMemory)
}
