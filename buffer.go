// Copyright 2026 The slat Authors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package slat

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"golang.org/x/exp/constraints"

	"github.com/slatgfx/slat/mem"
)

// Initial capacities sized for a typical status bar frame so that the first
// frames don't immediately regrow.
const (
	vertexBufferStartCapacity = 24 * 1024
	indexBufferStartCapacity  = 4 * 1024 * 3
)

// span is a half-open byte range [start, end) inside a slicedBuffer,
// attributed to one mesh for one frame.
type span struct {
	start, end uint64
}

func (s span) len() uint64 { return s.end - s.start }

// slicedBuffer is a growable GPU buffer shared by many per-frame meshes.
// Each frame fully rewrites the buffer and records one span per payload;
// spans are a per-frame index, not persistent state.
type slicedBuffer struct {
	buf      *wgpu.Buffer
	capacity uint64
	usage    wgpu.BufferUsage
	label    string
	spans    []span
}

func newSlicedBuffer(dev *wgpu.Device, capacity uint64, usage wgpu.BufferUsage, label string) (*slicedBuffer, error) {
	buf, err := dev.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  capacity,
		Usage: usage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, classifyDeviceError(fmt.Sprintf("creating %s", label), err)
	}
	return &slicedBuffer{
		buf:      buf,
		capacity: capacity,
		usage:    usage | wgpu.BufferUsageCopyDst,
		label:    label,
	}, nil
}

// growCapacity is the growth policy: unchanged while required fits, else at
// least doubled. Capacity never shrinks.
func growCapacity[T constraints.Unsigned](capacity, required T) T {
	if required <= capacity {
		return capacity
	}
	return max(capacity*2, required)
}

// ensureCapacity regrows the underlying GPU resource if required exceeds the
// current capacity. The old resource is released, not copied from; callers
// rewrite the buffer in full afterwards.
func (b *slicedBuffer) ensureCapacity(dev *wgpu.Device, required uint64) error {
	newCap := growCapacity(b.capacity, required)
	if newCap == b.capacity {
		return nil
	}
	newBuf, err := dev.CreateBuffer(&wgpu.BufferDescriptor{
		Label: b.label,
		Size:  newCap,
		Usage: b.usage,
	})
	if err != nil {
		return classifyDeviceError(fmt.Sprintf("growing %s to %d bytes", b.label, newCap), err)
	}
	b.buf.Release()
	b.buf = newBuf
	b.capacity = newCap
	return nil
}

// write stages all payloads into one contiguous arena slab and uploads it at
// offset 0 with a single queue write, recording one span per payload in
// submission order. The prior frame's spans are replaced.
func (b *slicedBuffer) write(queue *wgpu.Queue, arena *mem.Arena, payloads [][]byte) {
	var total uint64
	b.spans, total = layoutSpans(b.spans[:0], payloads)
	if total == 0 {
		return
	}
	slab := mem.NewSlice[[]byte](arena, int(total), int(total))
	for i, p := range payloads {
		copy(slab[b.spans[i].start:], p)
	}
	queue.WriteBuffer(b.buf, 0, slab)
}

// layoutSpans appends one contiguous half-open byte range per payload, in
// payload order starting at offset 0, and returns the total byte count.
func layoutSpans(dst []span, payloads [][]byte) ([]span, uint64) {
	var total uint64
	for _, p := range payloads {
		dst = append(dst, span{start: total, end: total + uint64(len(p))})
		total += uint64(len(p))
	}
	return dst, total
}

func (b *slicedBuffer) release() {
	if b.buf != nil {
		b.buf.Release()
		b.buf = nil
	}
}
