// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/directbuf/internal/shaders"
)

// ErrNoGPUAccess is returned when a target has neither a texture view nor
// CPU pixels.
var ErrNoGPUAccess = errors.New("render: target has no texture view or pixels")

// DrawCall describes one instanced draw recorded by the GPURenderer.
// Each primitive is one instance.
type DrawCall struct {
	Label         string
	Topology      gputypes.PrimitiveTopology
	VertexCount   uint32
	InstanceCount uint32
}

// GPURenderer draws batches with the GPU device provided by the host
// application.
//
// Batch streams are uploaded into storage buffers (coordinates, colors)
// plus a small uniform block, and drawn as one instanced draw per batch
// with the shared batch shader. Buffers are kept per batch label and
// reused across frames while the stream sizes do not change.
//
// Stroke weights are not honored on the GPU path: lines and points are
// rasterized one pixel wide by the hardware.
//
// Targets without a texture view but with CPU pixels are drawn by the
// software fallback.
//
// Example:
//
//	renderer, err := render.NewGPURenderer(provider)
//	if err != nil {
//	    return err
//	}
//	defer renderer.Destroy()
//	_ = renderer.DrawBatch(surfaceTarget, batch)
//	_ = renderer.Flush()
type GPURenderer struct {
	// handle is the GPU device handle from the host application.
	handle DeviceHandle
	device hal.Device
	queue  hal.Queue

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipelines  map[pipelineKey]hal.RenderPipeline

	buffers map[string]*batchBuffers
	pending []pendingDraw
	frame   []DrawCall

	// softwareFallback draws into CPU-only targets.
	softwareFallback *SoftwareRenderer

	// weightsWarned is set once a batch with a weight stream was drawn.
	weightsWarned bool

	log *slog.Logger
}

type pipelineKey struct {
	topology gputypes.PrimitiveTopology
	format   gputypes.TextureFormat
}

// batchBuffers are the GPU copies of one batch's streams.
type batchBuffers struct {
	coords, colors, params hal.Buffer
	coordSize, colorSize   uint64
}

type pendingDraw struct {
	view      hal.TextureView
	pipeline  hal.RenderPipeline
	bindGroup hal.BindGroup
	call      DrawCall
}

// NewGPURenderer creates a renderer on the host's device.
//
// The DeviceHandle must expose a wgpu/hal device and queue. The renderer
// does NOT create its own GPU device. The batch shader is compiled with
// naga and loaded as SPIR-V.
func NewGPURenderer(handle DeviceHandle) (*GPURenderer, error) {
	device, queue, err := halDevice(handle)
	if err != nil {
		return nil, err
	}

	r := &GPURenderer{
		handle:           handle,
		device:           device,
		queue:            queue,
		pipelines:        make(map[pipelineKey]hal.RenderPipeline),
		buffers:          make(map[string]*batchBuffers),
		softwareFallback: NewSoftwareRenderer(),
		log:              nopLogger(),
	}
	if err := r.createLayouts(); err != nil {
		r.Destroy()
		return nil, err
	}
	return r, nil
}

func (r *GPURenderer) createLayouts() error {
	spirv, err := shaders.BatchSPIRV()
	if err != nil {
		return err
	}
	r.shader, err = r.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "batch_shader",
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return fmt.Errorf("render: create batch shader: %w", err)
	}

	r.bindLayout, err = r.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "batch_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    shaders.BindingParams,
				Visibility: gputypes.ShaderStageVertex,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    shaders.BindingCoords,
				Visibility: gputypes.ShaderStageVertex,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage},
			},
			{
				Binding:    shaders.BindingColors,
				Visibility: gputypes.ShaderStageVertex,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("render: create bind group layout: %w", err)
	}

	r.pipeLayout, err = r.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "batch_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{r.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("render: create pipeline layout: %w", err)
	}
	return nil
}

// SetLogger sets the logger for the renderer and its software fallback.
func (r *GPURenderer) SetLogger(l *slog.Logger) {
	if l == nil {
		l = nopLogger()
	}
	r.log = l
	r.softwareFallback.SetLogger(l)
}

// DrawBatch uploads the batch streams and queues one instanced draw.
// The draw is encoded and submitted by Flush.
func (r *GPURenderer) DrawBatch(target RenderTarget, batch *Batch) error {
	if target == nil {
		return ErrNilTarget
	}
	view, _ := target.TextureView().(hal.TextureView)
	if view == nil {
		if target.Pixels() != nil {
			return r.softwareFallback.DrawBatch(target, batch)
		}
		return ErrNoGPUAccess
	}
	if err := batch.Validate(); err != nil {
		return err
	}
	if batch.Count == 0 {
		return nil
	}
	if batch.Weights != nil && !r.weightsWarned {
		r.weightsWarned = true
		r.log.Warn("gpu: stroke weights are not supported, drawing one pixel wide",
			"label", batch.Label)
	}

	bufs, err := r.upload(target, batch)
	if err != nil {
		return err
	}
	pipeline, err := r.pipeline(batch.Topology, target.Format())
	if err != nil {
		return err
	}
	bindGroup, err := r.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  batch.Label + "_bind",
		Layout: r.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: shaders.BindingParams, Resource: gputypes.BufferBinding{
				Buffer: bufs.params.NativeHandle(), Size: shaders.ParamsSize,
			}},
			{Binding: shaders.BindingCoords, Resource: gputypes.BufferBinding{
				Buffer: bufs.coords.NativeHandle(), Size: bufs.coordSize,
			}},
			{Binding: shaders.BindingColors, Resource: gputypes.BufferBinding{
				Buffer: bufs.colors.NativeHandle(), Size: bufs.colorSize,
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("render: create bind group for %s: %w", batch.Label, err)
	}

	call := DrawCall{
		Label:         batch.Label,
		Topology:      batch.Topology,
		VertexCount:   uint32(batch.VertexCount()), //nolint:gosec // bounded by stride
		InstanceCount: uint32(batch.Count),         //nolint:gosec // bounded by arena size
	}
	r.pending = append(r.pending, pendingDraw{
		view:      view,
		pipeline:  pipeline,
		bindGroup: bindGroup,
		call:      call,
	})
	return nil
}

// upload writes the batch streams into the label's buffers, recreating
// them when the sizes changed.
func (r *GPURenderer) upload(target RenderTarget, batch *Batch) (*batchBuffers, error) {
	coordSize := uint64(len(batch.Coords)) * 4
	colorSize := uint64(4)
	if batch.Colors != nil {
		colorSize = uint64(len(batch.Colors)) * 4
	}

	bufs := r.buffers[batch.Label]
	if bufs != nil && (bufs.coordSize != coordSize || bufs.colorSize != colorSize) {
		r.destroyBuffers(bufs)
		bufs = nil
	}
	if bufs == nil {
		var err error
		bufs, err = r.createBuffers(batch.Label, coordSize, colorSize)
		if err != nil {
			return nil, err
		}
		r.buffers[batch.Label] = bufs
		r.log.Debug("gpu: buffers created", "label", batch.Label, "coord_bytes", coordSize, "color_bytes", colorSize)
	}

	if err := r.queue.WriteBuffer(bufs.coords, 0, batch.CoordBytes()); err != nil {
		return nil, fmt.Errorf("render: upload %s coords: %w", batch.Label, err)
	}
	if batch.Colors != nil {
		if err := r.queue.WriteBuffer(bufs.colors, 0, batch.ColorBytes()); err != nil {
			return nil, fmt.Errorf("render: upload %s colors: %w", batch.Label, err)
		}
	}

	params := shaders.Params{
		ViewportWidth:  float32(target.Width()),
		ViewportHeight: float32(target.Height()),
		Stride:         uint32(batch.Stride),     //nolint:gosec // validated
		Dim:            uint32(batch.Dim),        //nolint:gosec // 2 or 3
		Vertices:       uint32(batch.Vertices()), //nolint:gosec // validated
		HasColors:      batch.Colors != nil,
		DefaultColor:   uint32(batch.DefaultColor),
	}
	if err := r.queue.WriteBuffer(bufs.params, 0, params.Bytes()); err != nil {
		return nil, fmt.Errorf("render: upload %s params: %w", batch.Label, err)
	}
	return bufs, nil
}

func (r *GPURenderer) createBuffers(label string, coordSize, colorSize uint64) (*batchBuffers, error) {
	bufs := &batchBuffers{coordSize: coordSize, colorSize: colorSize}
	specs := []struct {
		dst   *hal.Buffer
		label string
		size  uint64
		usage gputypes.BufferUsage
	}{
		{&bufs.coords, label + "_coords", coordSize, gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst},
		{&bufs.colors, label + "_colors", colorSize, gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst},
		{&bufs.params, label + "_params", shaders.ParamsSize, gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst},
	}
	for _, s := range specs {
		buf, err := r.device.CreateBuffer(&hal.BufferDescriptor{
			Label: s.label,
			Size:  s.size,
			Usage: s.usage,
		})
		if err != nil {
			r.destroyBuffers(bufs)
			return nil, fmt.Errorf("render: create %s: %w", s.label, err)
		}
		*s.dst = buf
	}
	return bufs, nil
}

func (r *GPURenderer) destroyBuffers(bufs *batchBuffers) {
	for _, b := range []hal.Buffer{bufs.coords, bufs.colors, bufs.params} {
		if b != nil {
			r.device.DestroyBuffer(b)
		}
	}
	bufs.coords, bufs.colors, bufs.params = nil, nil, nil
}

// pipeline returns the render pipeline for a topology and target format,
// creating it on first use.
func (r *GPURenderer) pipeline(topology gputypes.PrimitiveTopology, format gputypes.TextureFormat) (hal.RenderPipeline, error) {
	key := pipelineKey{topology: topology, format: format}
	if p, ok := r.pipelines[key]; ok {
		return p, nil
	}

	blend := gputypes.BlendStateAlpha()
	p, err := r.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "batch_pipeline_" + topology.String(),
		Layout: r.pipeLayout,
		Vertex: hal.VertexState{
			Module:     r.shader,
			EntryPoint: shaders.VertexEntry,
		},
		Fragment: &hal.FragmentState{
			Module:     r.shader,
			EntryPoint: shaders.FragmentEntry,
			Targets: []gputypes.ColorTargetState{
				{
					Format:    format,
					Blend:     &blend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: topology,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.DefaultMultisampleState(),
	})
	if err != nil {
		return nil, fmt.Errorf("render: create %s pipeline: %w", topology, err)
	}
	r.pipelines[key] = p
	return p, nil
}

// Flush encodes every queued draw into render passes (one per target
// view, loading existing contents), submits them and waits for the GPU.
func (r *GPURenderer) Flush() error {
	draws := r.pending
	r.pending = nil
	defer func() {
		for _, d := range draws {
			r.device.DestroyBindGroup(d.bindGroup)
		}
	}()

	r.frame = r.frame[:0]
	if len(draws) == 0 {
		return nil
	}

	encoder, err := r.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "batch_encoder"})
	if err != nil {
		return fmt.Errorf("render: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("batch_frame"); err != nil {
		return fmt.Errorf("render: begin encoding: %w", err)
	}

	for start := 0; start < len(draws); {
		view := draws[start].view
		end := start
		for end < len(draws) && draws[end].view == view {
			end++
		}

		rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
			Label: "batch_pass",
			ColorAttachments: []hal.RenderPassColorAttachment{{
				View:    view,
				LoadOp:  gputypes.LoadOpLoad,
				StoreOp: gputypes.StoreOpStore,
			}},
		})
		for _, d := range draws[start:end] {
			rp.SetPipeline(d.pipeline)
			rp.SetBindGroup(0, d.bindGroup, nil)
			rp.Draw(d.call.VertexCount, d.call.InstanceCount, 0, 0)
			r.frame = append(r.frame, d.call)
		}
		rp.End()
		start = end
	}

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("render: end encoding: %w", err)
	}
	defer r.device.FreeCommandBuffer(cmdBuf)

	if _, err := r.queue.Submit([]hal.CommandBuffer{cmdBuf}); err != nil {
		return fmt.Errorf("render: submit: %w", err)
	}
	if err := r.device.WaitIdle(); err != nil {
		return fmt.Errorf("render: wait for GPU: %w", err)
	}
	r.log.Debug("gpu: frame submitted", "draws", len(r.frame))
	return nil
}

// DiscardFrame drops the draws queued since the last Flush and destroys
// their bind groups.
func (r *GPURenderer) DiscardFrame() {
	for _, d := range r.pending {
		r.device.DestroyBindGroup(d.bindGroup)
	}
	r.pending = nil
}

// LastFrame returns the draw calls submitted by the most recent Flush,
// in submission order.
func (r *GPURenderer) LastFrame() []DrawCall {
	out := make([]DrawCall, len(r.frame))
	copy(out, r.frame)
	return out
}

// ReleaseBatch destroys the GPU buffers held for label. Queued draws that
// bind those buffers are dropped with them.
func (r *GPURenderer) ReleaseBatch(label string) {
	r.pending = slices.DeleteFunc(r.pending, func(d pendingDraw) bool {
		if d.call.Label != label {
			return false
		}
		r.device.DestroyBindGroup(d.bindGroup)
		return true
	})
	bufs, ok := r.buffers[label]
	if !ok {
		return
	}
	r.destroyBuffers(bufs)
	delete(r.buffers, label)
	r.log.Debug("gpu: buffers released", "label", label)
}

// BufferLabels returns the labels that currently hold GPU buffers.
func (r *GPURenderer) BufferLabels() []string {
	labels := make([]string, 0, len(r.buffers))
	for l := range r.buffers {
		labels = append(labels, l)
	}
	return labels
}

// Capabilities returns the renderer's capabilities.
func (r *GPURenderer) Capabilities() RendererCapabilities {
	return RendererCapabilities{
		IsGPU:                 true,
		SupportsAntialiasing:  false,
		SupportsStrokeWeights: false,
		Supports3D:            true,
	}
}

// DeviceHandle returns the underlying device handle.
func (r *GPURenderer) DeviceHandle() DeviceHandle {
	return r.handle
}

// Destroy releases every GPU resource owned by the renderer. Safe to call
// on a partially constructed renderer.
func (r *GPURenderer) Destroy() {
	if r.device == nil {
		return
	}
	r.DiscardFrame()
	for label := range r.buffers {
		r.ReleaseBatch(label)
	}
	for key, p := range r.pipelines {
		r.device.DestroyRenderPipeline(p)
		delete(r.pipelines, key)
	}
	if r.pipeLayout != nil {
		r.device.DestroyPipelineLayout(r.pipeLayout)
		r.pipeLayout = nil
	}
	if r.bindLayout != nil {
		r.device.DestroyBindGroupLayout(r.bindLayout)
		r.bindLayout = nil
	}
	if r.shader != nil {
		r.device.DestroyShaderModule(r.shader)
		r.shader = nil
	}
}

// Ensure GPURenderer implements the renderer interfaces.
var (
	_ Renderer        = (*GPURenderer)(nil)
	_ CapableRenderer = (*GPURenderer)(nil)
	_ BatchReleaser   = (*GPURenderer)(nil)
	_ LoggerSetter    = (*GPURenderer)(nil)
	_ FrameDiscarder  = (*GPURenderer)(nil)
)
