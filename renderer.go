// Copyright 2026 The slat Authors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package slat

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"honnef.co/go/safeish"

	"github.com/slatgfx/slat/gfx"
	"github.com/slatgfx/slat/mem"
)

const meshShaderSource = `
struct Uniforms {
	screen_size: vec2<f32>,
	_pad: vec2<u32>,
}

@group(0) @binding(0) var<uniform> uniforms: Uniforms;

struct VertexInput {
	@location(0) position: vec3<f32>,
	@location(1) color: vec3<f32>,
}

struct VertexOutput {
	@builtin(position) position: vec4<f32>,
	@location(0) color: vec3<f32>,
}

@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
	var out: VertexOutput;
	let ndc = vec2<f32>(
		in.position.x / uniforms.screen_size.x * 2.0 - 1.0,
		1.0 - in.position.y / uniforms.screen_size.y * 2.0,
	);
	out.position = vec4<f32>(ndc, in.position.z, 1.0);
	out.color = in.color;
	return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
	return vec4<f32>(in.color, 1.0);
}
`

// meshRenderer owns the shared geometry pipeline and the two growable
// buffers all meshes of a frame are packed into.
type meshRenderer struct {
	pipeline  *wgpu.RenderPipeline
	bindGroup *wgpu.BindGroup
	uniform   *wgpu.Buffer
	vertices  *slicedBuffer
	indices   *slicedBuffer
}

func newMeshRenderer(dev *wgpu.Device, format wgpu.TextureFormat) (*meshRenderer, error) {
	shader, err := dev.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "slat mesh shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: meshShaderSource},
	})
	if err != nil {
		return nil, classifyDeviceError("creating mesh shader", err)
	}
	defer shader.Release()

	r := &meshRenderer{}
	ok := false
	defer func() {
		if !ok {
			r.release()
		}
	}()

	r.uniform, err = dev.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "slat mesh uniforms",
		Size:  16,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, classifyDeviceError("creating mesh uniforms", err)
	}
	r.vertices, err = newSlicedBuffer(dev, vertexBufferStartCapacity, wgpu.BufferUsageVertex, "slat mesh vertices")
	if err != nil {
		return nil, err
	}
	r.indices, err = newSlicedBuffer(dev, indexBufferStartCapacity, wgpu.BufferUsageIndex, "slat mesh indices")
	if err != nil {
		return nil, err
	}

	bgLayout, err := dev.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "slat mesh bind group layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type: wgpu.BufferBindingTypeUniform,
				},
			},
		},
	})
	if err != nil {
		return nil, classifyDeviceError("creating mesh bind group layout", err)
	}
	defer bgLayout.Release()

	r.bindGroup, err = dev.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "slat mesh bind group",
		Layout: bgLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: r.uniform, Offset: 0, Size: 16},
		},
	})
	if err != nil {
		return nil, classifyDeviceError("creating mesh bind group", err)
	}

	pipeLayout, err := dev.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "slat mesh pipeline layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{bgLayout},
	})
	if err != nil {
		return nil, classifyDeviceError("creating mesh pipeline layout", err)
	}
	defer pipeLayout.Release()

	r.pipeline, err = dev.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "slat mesh pipeline",
		Layout: pipeLayout,
		Vertex: wgpu.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{
				{
					ArrayStride: uint64(gfx.VertexSize),
					StepMode:    wgpu.VertexStepModeVertex,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
						{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
					},
				},
			},
		},
		Fragment: &wgpu.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    format,
					Blend:     &wgpu.BlendStateReplace,
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
		return nil, classifyDeviceError("creating mesh pipeline", err)
	}
	ok = true
	return r, nil
}

// updateBuffers packs the frame's meshes into the vertex and index buffers:
// grow each buffer to the frame's byte totals, then write every mesh
// contiguously in list order, one slice pair per mesh. Offsets shift each
// mesh horizontally as its vertices are staged; the source meshes stay
// untouched. With zero meshes the GPU buffers are left alone and the slice
// lists are cleared.
func (r *meshRenderer) updateBuffers(dev *wgpu.Device, queue *wgpu.Queue, arena *mem.Arena, meshes []PlacedMesh) error {
	// Cleared before anything can fail: a frame that errors out mid-update
	// must leave no spans behind, or render would draw stale slices out of
	// a regrown, unwritten buffer.
	r.vertices.spans = r.vertices.spans[:0]
	r.indices.spans = r.indices.spans[:0]
	if len(meshes) == 0 {
		return nil
	}

	var vertexTotal, indexTotal uint64
	for i := range meshes {
		vertexTotal += uint64(meshes[i].Mesh.VertexBytes())
		indexTotal += uint64(meshes[i].Mesh.IndexBytes())
	}
	if err := r.vertices.ensureCapacity(dev, vertexTotal); err != nil {
		return err
	}
	if err := r.indices.ensureCapacity(dev, indexTotal); err != nil {
		return err
	}

	vertexPayloads := mem.NewSlice[[][]byte](arena, 0, len(meshes))
	indexPayloads := mem.NewSlice[[][]byte](arena, 0, len(meshes))
	for i := range meshes {
		verts := stageVertices(arena, &meshes[i])
		vertexPayloads = mem.Append(arena, vertexPayloads, safeish.SliceCast[[]byte](verts))
		indexPayloads = mem.Append(arena, indexPayloads, safeish.SliceCast[[]byte](meshes[i].Mesh.Indices))
	}
	r.vertices.write(queue, arena, vertexPayloads)
	r.indices.write(queue, arena, indexPayloads)
	return nil
}

// stageVertices copies a mesh's vertices into the frame arena with the draw
// offset applied. The source mesh stays untouched.
func stageVertices(arena *mem.Arena, pm *PlacedMesh) []gfx.Vertex {
	verts := mem.MakeSlice(arena, pm.Mesh.Vertices)
	if pm.Offset != 0 {
		for i := range verts {
			verts[i].Position[0] += pm.Offset
		}
	}
	return verts
}

func (r *meshRenderer) writeUniform(queue *wgpu.Queue, width, height float32) {
	queue.WriteBuffer(r.uniform, 0, safeish.AsBytes(&[4]float32{width, height, 0, 0}))
}

// render issues one indexed draw per recorded slice pair, in slice order.
// Slice order is mesh order, so later meshes overdraw earlier ones.
func (r *meshRenderer) render(pass *wgpu.RenderPassEncoder) {
	if len(r.vertices.spans) == 0 {
		return
	}
	pass.SetPipeline(r.pipeline)
	pass.SetBindGroup(0, r.bindGroup, nil)
	for i, vs := range r.vertices.spans {
		is := r.indices.spans[i]
		indexCount := uint32(is.len() / gfx.IndexSize)
		if indexCount == 0 || indexCount%3 != 0 {
			panic(fmt.Sprintf("slat: slice %d has index count %d, not a positive multiple of 3", i, indexCount))
		}
		pass.SetVertexBuffer(0, r.vertices.buf, vs.start, vs.len())
		pass.SetIndexBuffer(r.indices.buf, wgpu.IndexFormatUint32, is.start, is.len())
		pass.DrawIndexed(indexCount, 1, 0, 0, 0)
	}
}

func (r *meshRenderer) release() {
	if r.pipeline != nil {
		r.pipeline.Release()
	}
	if r.bindGroup != nil {
		r.bindGroup.Release()
	}
	if r.uniform != nil {
		r.uniform.Release()
	}
	if r.vertices != nil {
		r.vertices.release()
	}
	if r.indices != nil {
		r.indices.release()
	}
}
