package vklite

import vk "github.com/vulkan-go/vulkan"

// Commands is a set of up to MaxCommandBuffersPerSet primary command
// buffers allocated from one of the Gpu's per-queue-family pools,
// generalizing the teacher's PerFrame.pool/command (one buffer per frame)
// into the canvas's one-buffer-per-swapchain-image refill model (§4.8
// step 3: refill completeness, P7).
type Commands struct {
	gpu     *Gpu
	pool    *commandPool
	buffers []vk.CommandBuffer
}

// NewCommands allocates count primary command buffers from the pool
// backing family.
func NewCommands(gpu *Gpu, family uint32, count int) (*Commands, error) {
	if count > MaxCommandBuffersPerSet {
		return nil, errorf(ErrCapacityExceeded, "%d command buffers exceeds max %d", count, MaxCommandBuffersPerSet)
	}
	pool := gpu.commandPool(family)
	if pool == nil {
		return nil, errorf(ErrNotConfigured, "no command pool for queue family %d", family)
	}
	buffers := make([]vk.CommandBuffer, count)
	ret := vk.AllocateCommandBuffers(gpu.handle, &vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool.handle,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: uint32(count),
	}, buffers)
	if err := checkResult(ret, "allocate command buffers"); err != nil {
		return nil, err
	}
	return &Commands{gpu: gpu, pool: pool, buffers: buffers}, nil
}

// Len reports how many command buffers this set holds.
func (c *Commands) Len() int { return len(c.buffers) }

// Handle returns command buffer i.
func (c *Commands) Handle(i int) vk.CommandBuffer { return c.buffers[i] }

// Begin starts recording into buffer i, resetting it first (the pool was
// created with reset-command-buffer, per the teacher's CorePool).
func (c *Commands) Begin(i int) error {
	vk.ResetCommandBuffer(c.buffers[i], vk.CommandBufferResetFlags(0))
	ret := vk.BeginCommandBuffer(c.buffers[i], &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
	})
	return checkResult(ret, "begin command buffer")
}

// BeginRenderPass starts rp against framebuffer fb, clearing to clearColor
// and depth 1.0/stencil 0, mirroring setup_command's clear-value setup.
func (c *Commands) BeginRenderPass(i int, rp *Renderpass, fb vk.Framebuffer, extent vk.Extent2D, clearColor [4]float32) {
	clears := []vk.ClearValue{
		vk.NewClearValue([]float32{clearColor[0], clearColor[1], clearColor[2], clearColor[3]}),
		vk.NewClearDepthStencil(1.0, 0),
	}
	vk.CmdBeginRenderPass(c.buffers[i], &vk.RenderPassBeginInfo{
		SType:           vk.StructureTypeRenderPassBeginInfo,
		RenderPass:      rp.Handle(),
		Framebuffer:     fb,
		RenderArea:      vk.Rect2D{Extent: extent},
		ClearValueCount: uint32(len(clears)),
		PClearValues:    clears,
	}, vk.SubpassContentsInline)
	vk.CmdSetViewport(c.buffers[i], 0, 1, []vk.Viewport{{
		Width: float32(extent.Width), Height: float32(extent.Height), MaxDepth: 1.0,
	}})
	vk.CmdSetScissor(c.buffers[i], 0, 1, []vk.Rect2D{{Extent: extent}})
}

// EndRenderPass ends the current render pass on buffer i.
func (c *Commands) EndRenderPass(i int) { vk.CmdEndRenderPass(c.buffers[i]) }

// BindPipeline binds p into buffer i.
func (c *Commands) BindPipeline(i int, p *Pipeline) {
	vk.CmdBindPipeline(c.buffers[i], p.bindPoint, p.handle)
}

// BindDescriptorSet binds the descriptor set b allocated at setIdx (§4.6
// bind_graphics(pipe, bindings, set_idx)) for p's layout.
func (c *Commands) BindDescriptorSet(i int, p *Pipeline, b *Bindings, setIdx int) {
	vk.CmdBindDescriptorSets(c.buffers[i], p.bindPoint, p.layout, 0, 1, []vk.DescriptorSet{b.Set(setIdx)}, 0, nil)
}

// BindVertexBuffer binds region as vertex buffer binding 0.
func (c *Commands) BindVertexBuffer(i int, region BufferRegion) {
	vk.CmdBindVertexBuffers(c.buffers[i], 0, 1, []vk.Buffer{region.Buffer.handle}, []vk.DeviceSize{vk.DeviceSize(region.Offset)})
}

// BindIndexBuffer binds region as the uint32 index buffer.
func (c *Commands) BindIndexBuffer(i int, region BufferRegion) {
	vk.CmdBindIndexBuffer(c.buffers[i], region.Buffer.handle, vk.DeviceSize(region.Offset), vk.IndexTypeUint32)
}

// Draw issues a non-indexed draw.
func (c *Commands) Draw(i int, vertexCount, instanceCount int) {
	vk.CmdDraw(c.buffers[i], uint32(vertexCount), uint32(instanceCount), 0, 0)
}

// DrawIndexed issues an indexed draw.
func (c *Commands) DrawIndexed(i int, indexCount, instanceCount int) {
	vk.CmdDrawIndexed(c.buffers[i], uint32(indexCount), uint32(instanceCount), 0, 0, 0)
}

// Barrier records b into buffer i.
func (c *Commands) Barrier(i int, b Barrier) { b.record(c.buffers[i]) }

// Dispatch issues a compute dispatch.
func (c *Commands) Dispatch(i int, x, y, z uint32) {
	vk.CmdDispatch(c.buffers[i], x, y, z)
}

// End finishes recording into buffer i.
func (c *Commands) End(i int) error {
	return checkResult(vk.EndCommandBuffer(c.buffers[i]), "end command buffer")
}

// Reset resets every command buffer this set holds, the refill
// entry point the canvas calls on resize (§4.7 step 3: refill all S
// command buffers).
func (c *Commands) Reset() {
	vk.ResetCommandPool(c.gpu.handle, c.pool.handle, vk.CommandPoolResetFlags(0))
}

// Free returns the command buffers to the pool.
func (c *Commands) Free() {
	vk.FreeCommandBuffers(c.gpu.handle, c.pool.handle, uint32(len(c.buffers)), c.buffers)
	c.buffers = nil
}

// RunOnce records fn into a one-shot command buffer on family, submits it
// to that family's queue, and blocks until it completes, mirroring the
// teacher's flushInitCmd (a single submit+wait+free around whatever
// pipeline barriers a prepare step generated). Nothing in this module calls
// it; NewImages leaves its images in the undefined layout.
func RunOnce(gpu *Gpu, family uint32, queue vk.Queue, fn func(cmd vk.CommandBuffer)) error {
	cmds, err := NewCommands(gpu, family, 1)
	if err != nil {
		return err
	}
	defer cmds.Free()

	if err := cmds.Begin(0); err != nil {
		return err
	}
	fn(cmds.Handle(0))
	if err := cmds.End(0); err != nil {
		return err
	}

	var fence vk.Fence
	ret := vk.CreateFence(gpu.handle, &vk.FenceCreateInfo{SType: vk.StructureTypeFenceCreateInfo}, nil, &fence)
	if err := checkResult(ret, "create one-shot fence"); err != nil {
		return err
	}
	defer vk.DestroyFence(gpu.handle, fence, nil)

	ret = vk.QueueSubmit(queue, 1, []vk.SubmitInfo{{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{cmds.Handle(0)},
	}}, fence)
	if err := checkResult(ret, "submit one-shot command"); err != nil {
		return err
	}
	return checkResult(vk.WaitForFences(gpu.handle, 1, []vk.Fence{fence}, vk.True, vk.MaxUint64), "wait one-shot fence")
}
