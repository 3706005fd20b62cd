// Copyright 2026 The slat Authors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package text

import (
	"fmt"
	"log/slog"

	"github.com/cogentcore/webgpu/wgpu"
	"honnef.co/go/safeish"

	"github.com/slatgfx/slat/gfx"
)

const glyphShaderSource = `
struct Uniforms {
	screen_size: vec2<f32>,
	_pad: vec2<u32>,
}

@group(0) @binding(0) var<uniform> uniforms: Uniforms;
@group(0) @binding(1) var atlas_texture: texture_2d<f32>;
@group(0) @binding(2) var atlas_sampler: sampler;

struct VertexInput {
	@location(0) position: vec2<f32>,
	@location(1) uv: vec2<f32>,
	@location(2) color: vec4<f32>,
}

struct VertexOutput {
	@builtin(position) position: vec4<f32>,
	@location(0) uv: vec2<f32>,
	@location(1) color: vec4<f32>,
}

@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
	var out: VertexOutput;
	let ndc = vec2<f32>(
		in.position.x / uniforms.screen_size.x * 2.0 - 1.0,
		1.0 - in.position.y / uniforms.screen_size.y * 2.0,
	);
	out.position = vec4<f32>(ndc, 0.0, 1.0);
	out.uv = in.uv;
	out.color = in.color;
	return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
	let mask = textureSample(atlas_texture, atlas_sampler, in.uv).r;
	return vec4<f32>(in.color.rgb, in.color.a * mask);
}
`

// glyphVertex matches the vertex layout of glyphShaderSource.
type glyphVertex struct {
	Pos   [2]float32
	UV    [2]float32
	Color [4]float32
}

const glyphVertexSize = 32

const defaultAtlasSize = 1024

// Draw is one text draw request for the current frame.
type Draw struct {
	Layout *Layout
	X, Y   float32
	// Offset shifts the draw horizontally, matching the per-mesh draw
	// offsets of the geometry path.
	Offset float32
	Color  gfx.Color
}

// Renderer rasterizes layouts into the glyph atlas and draws them as
// textured quads in a single indexed draw per frame.
type Renderer struct {
	format wgpu.TextureFormat
	log    *slog.Logger

	atlas *atlas

	pipeline  *wgpu.RenderPipeline
	bindGroup *wgpu.BindGroup
	sampler   *wgpu.Sampler
	uniform   *wgpu.Buffer
	texture   *wgpu.Texture
	view      *wgpu.TextureView

	vtxBuf *wgpu.Buffer
	vtxCap uint64
	idxBuf *wgpu.Buffer
	idxCap uint64

	vtxLen     uint64
	idxLen     uint64
	indexCount uint32
}

// NewRenderer creates a text renderer targeting the given surface format.
// GPU objects are created lazily on the first Prepare.
func NewRenderer(format wgpu.TextureFormat, log *slog.Logger) *Renderer {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Renderer{
		format: format,
		log:    log,
		atlas:  newAtlas(defaultAtlasSize),
	}
}

// Prepare rasterizes any new glyphs, uploads the atlas and quad buffers, and
// records the index count for Render. Glyphs that cannot be rasterized are
// skipped. screenW and screenH are in logical pixels.
func (r *Renderer) Prepare(dev *wgpu.Device, queue *wgpu.Queue, screenW, screenH float32, draws []Draw) error {
	r.indexCount = 0
	if err := r.ensurePipeline(dev); err != nil {
		return err
	}

	queue.WriteBuffer(r.uniform, 0, safeish.AsBytes(&[4]float32{screenW, screenH, 0, 0}))

	if len(draws) == 0 {
		return nil
	}

	// First pass: make sure every glyph is packed. An atlas reset mid-pass
	// invalidates previously fetched entries, so restart until stable.
	for attempt := 0; ; attempt++ {
		resetHappened := false
		for _, d := range draws {
			if d.Layout == nil || d.Layout.Face == nil {
				continue
			}
			for _, g := range d.Layout.Glyphs {
				if _, reset := r.atlas.entry(d.Layout.Face, g.GID, d.Layout.Size); reset {
					resetHappened = true
				}
			}
		}
		if !resetHappened {
			break
		}
		if attempt == 1 {
			// One frame's glyphs exceed the whole atlas; draw what fits.
			r.log.Warn("glyph atlas capacity exceeded within a single frame")
			break
		}
	}

	var verts []glyphVertex
	var indices []uint32
	texel := 1 / float32(r.atlas.size)
	for _, d := range draws {
		if d.Layout == nil || d.Layout.Face == nil {
			continue
		}
		color := d.Color.RGBAFloats()
		for _, g := range d.Layout.Glyphs {
			e, _ := r.atlas.entry(d.Layout.Face, g.GID, d.Layout.Size)
			if e == nil {
				continue
			}
			x0 := d.X + d.Offset + g.X + e.bearingX
			y0 := d.Y + g.Y - e.bearingY
			x1 := x0 + float32(e.w)
			y1 := y0 + float32(e.h)
			u0 := float32(e.x) * texel
			v0 := float32(e.y) * texel
			u1 := float32(e.x+e.w) * texel
			v1 := float32(e.y+e.h) * texel

			base := uint32(len(verts))
			verts = append(verts,
				glyphVertex{Pos: [2]float32{x0, y0}, UV: [2]float32{u0, v0}, Color: color},
				glyphVertex{Pos: [2]float32{x0, y1}, UV: [2]float32{u0, v1}, Color: color},
				glyphVertex{Pos: [2]float32{x1, y1}, UV: [2]float32{u1, v1}, Color: color},
				glyphVertex{Pos: [2]float32{x1, y0}, UV: [2]float32{u1, v0}, Color: color},
			)
			indices = append(indices, base, base+1, base+2, base, base+2, base+3)
		}
	}
	if len(indices) == 0 {
		return nil
	}

	if r.atlas.dirty {
		queue.WriteTexture(
			&wgpu.ImageCopyTexture{
				Texture:  r.texture,
				MipLevel: 0,
				Origin:   wgpu.Origin3D{},
				Aspect:   wgpu.TextureAspectAll,
			},
			r.atlas.pix,
			&wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  uint32(r.atlas.size),
				RowsPerImage: uint32(r.atlas.size),
			},
			&wgpu.Extent3D{
				Width:              uint32(r.atlas.size),
				Height:             uint32(r.atlas.size),
				DepthOrArrayLayers: 1,
			},
		)
		r.atlas.dirty = false
	}

	vtxBytes := safeish.SliceCast[[]byte](verts)
	idxBytes := safeish.SliceCast[[]byte](indices)
	var err error
	r.vtxBuf, r.vtxCap, err = ensureBuffer(dev, r.vtxBuf, r.vtxCap, uint64(len(vtxBytes)),
		wgpu.BufferUsageVertex|wgpu.BufferUsageCopyDst, "slat text vertices")
	if err != nil {
		return err
	}
	r.idxBuf, r.idxCap, err = ensureBuffer(dev, r.idxBuf, r.idxCap, uint64(len(idxBytes)),
		wgpu.BufferUsageIndex|wgpu.BufferUsageCopyDst, "slat text indices")
	if err != nil {
		return err
	}
	queue.WriteBuffer(r.vtxBuf, 0, vtxBytes)
	queue.WriteBuffer(r.idxBuf, 0, idxBytes)
	r.vtxLen = uint64(len(vtxBytes))
	r.idxLen = uint64(len(idxBytes))
	r.indexCount = uint32(len(indices))
	return nil
}

// Render draws the quads prepared for this frame. A frame with no text
// issues no draw calls.
func (r *Renderer) Render(pass *wgpu.RenderPassEncoder) {
	if r.indexCount == 0 {
		return
	}
	pass.SetPipeline(r.pipeline)
	pass.SetBindGroup(0, r.bindGroup, nil)
	pass.SetVertexBuffer(0, r.vtxBuf, 0, r.vtxLen)
	pass.SetIndexBuffer(r.idxBuf, wgpu.IndexFormatUint32, 0, r.idxLen)
	pass.DrawIndexed(r.indexCount, 1, 0, 0, 0)
}

// Trim forwards frame-end accounting to the glyph atlas, bounding growth of
// rasterized glyph resources.
func (r *Renderer) Trim() {
	r.atlas.Trim()
}

// Release frees all GPU objects. The renderer must not be used afterwards.
func (r *Renderer) Release() {
	if r.pipeline != nil {
		r.pipeline.Release()
	}
	if r.bindGroup != nil {
		r.bindGroup.Release()
	}
	if r.sampler != nil {
		r.sampler.Release()
	}
	if r.uniform != nil {
		r.uniform.Release()
	}
	if r.view != nil {
		r.view.Release()
	}
	if r.texture != nil {
		r.texture.Release()
	}
	if r.vtxBuf != nil {
		r.vtxBuf.Release()
	}
	if r.idxBuf != nil {
		r.idxBuf.Release()
	}
}

func (r *Renderer) ensurePipeline(dev *wgpu.Device) error {
	if r.pipeline != nil {
		return nil
	}

	shader, err := dev.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "slat text shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: glyphShaderSource},
	})
	if err != nil {
		return fmt.Errorf("text: creating shader module: %w", err)
	}
	defer shader.Release()

	r.uniform, err = dev.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "slat text uniforms",
		Size:  16,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("text: creating uniform buffer: %w", err)
	}

	r.texture, err = dev.CreateTexture(&wgpu.TextureDescriptor{
		Label: "slat glyph atlas",
		Size: wgpu.Extent3D{
			Width:              uint32(r.atlas.size),
			Height:             uint32(r.atlas.size),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatR8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("text: creating atlas texture: %w", err)
	}
	r.view, err = r.texture.CreateView(nil)
	if err != nil {
		return fmt.Errorf("text: creating atlas view: %w", err)
	}

	r.sampler, err = dev.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "slat glyph sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return fmt.Errorf("text: creating sampler: %w", err)
	}

	bgLayout, err := dev.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "slat text bind group layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type: wgpu.BufferBindingTypeUniform,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: wgpu.ShaderStageFragment,
				Sampler: wgpu.SamplerBindingLayout{
					Type: wgpu.SamplerBindingTypeFiltering,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("text: creating bind group layout: %w", err)
	}
	defer bgLayout.Release()

	r.bindGroup, err = dev.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "slat text bind group",
		Layout: bgLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: r.uniform, Offset: 0, Size: 16},
			{Binding: 1, TextureView: r.view},
			{Binding: 2, Sampler: r.sampler},
		},
	})
	if err != nil {
		return fmt.Errorf("text: creating bind group: %w", err)
	}

	pipeLayout, err := dev.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "slat text pipeline layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{bgLayout},
	})
	if err != nil {
		return fmt.Errorf("text: creating pipeline layout: %w", err)
	}
	defer pipeLayout.Release()

	alphaBlend := wgpu.BlendState{
		Color: wgpu.BlendComponent{
			Operation: wgpu.BlendOperationAdd,
			SrcFactor: wgpu.BlendFactorSrcAlpha,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		},
		Alpha: wgpu.BlendComponent{
			Operation: wgpu.BlendOperationAdd,
			SrcFactor: wgpu.BlendFactorOne,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		},
	}
	r.pipeline, err = dev.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "slat text pipeline",
		Layout: pipeLayout,
		Vertex: wgpu.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{
				{
					ArrayStride: glyphVertexSize,
					StepMode:    wgpu.VertexStepModeVertex,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
						{Format: wgpu.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
						{Format: wgpu.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 2},
					},
				},
			},
		},
		Fragment: &wgpu.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    r.format,
					Blend:     &alphaBlend,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("text: creating render pipeline: %w", err)
	}
	return nil
}

// ensureBuffer recreates buf with at least the doubled capacity when
// required exceeds the current one. Contents are not copied; text buffers
// are fully rewritten every frame.
func ensureBuffer(dev *wgpu.Device, buf *wgpu.Buffer, capacity, required uint64, usage wgpu.BufferUsage, label string) (*wgpu.Buffer, uint64, error) {
	if buf != nil && required <= capacity {
		return buf, capacity, nil
	}
	newCap := max(capacity*2, required)
	if buf != nil {
		buf.Release()
	}
	newBuf, err := dev.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  newCap,
		Usage: usage,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("text: creating %s buffer: %w", label, err)
	}
	return newBuf, newCap, nil
}
