package vklite

import vk "github.com/vulkan-go/vulkan"

// Submit describes one queue submission: which command buffer, which
// semaphore to wait on before running and which to signal on completion,
// and the fence to set once the GPU finishes — mirrors submit_pipeline's
// wait-image-available/signal-render-finished/fence triple (§4.8 step 4,
// §8 P4: pipelined ordering via semaphore).
type Submit struct {
	Queue          vk.Queue
	CommandBuffer  vk.CommandBuffer
	WaitSemaphore  vk.Semaphore
	WaitStage      vk.PipelineStageFlagBits
	SignalSemaphore vk.Semaphore
	Fence          vk.Fence
}

// Do issues the submission.
func (s Submit) Do() error {
	waitStages := []vk.PipelineStageFlags{vk.PipelineStageFlags(s.WaitStage)}
	info := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{s.CommandBuffer},
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{s.WaitSemaphore},
		PWaitDstStageMask:    waitStages,
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{s.SignalSemaphore},
	}
	return checkResult(vk.QueueSubmit(s.Queue, 1, []vk.SubmitInfo{info}, s.Fence), "queue submit")
}

// Present issues a present of image on swapchain through queue, waiting
// on wait (the submission's signal semaphore), mirroring present_image.
// Returns vk.Suboptimal/vk.ErrorOutOfDate (wrapped ErrTransient) to signal
// the canvas it must recreate the swapchain (§4.7 step 1).
func Present(queue vk.Queue, swapchain vk.Swapchain, image uint32, wait vk.Semaphore) error {
	ret := vk.QueuePresent(queue, &vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{wait},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{swapchain},
		PImageIndices:      []uint32{image},
	})
	if ret == vk.Suboptimal {
		return errorf(ErrTransient, "queue present: suboptimal swapchain")
	}
	return checkResult(ret, "queue present")
}
