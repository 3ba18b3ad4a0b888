package vklite

import vk "github.com/vulkan-go/vulkan"

// FrameSync holds the per-frame-in-flight synchronization primitives from
// the teacher's PerFrame: one fence (signaled, so the first acquire never
// blocks) and two semaphores (image-acquired, queue-complete). Exported so
// the canvas package, which owns the frame loop, can allocate and wait on
// them directly.
type FrameSync struct {
	Fence         vk.Fence
	ImageAcquired vk.Semaphore
	QueueComplete vk.Semaphore
}

// NewFrameSync creates one FrameSync against gpu's device.
func NewFrameSync(gpu *Gpu) (FrameSync, error) {
	device := gpu.Device()
	var fs FrameSync
	ret := vk.CreateFence(device, &vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
		Flags: vk.FenceCreateFlags(vk.FenceCreateSignaledBit),
	}, nil, &fs.Fence)
	if err := checkResult(ret, "create frame fence"); err != nil {
		return fs, err
	}
	ret = vk.CreateSemaphore(device, &vk.SemaphoreCreateInfo{SType: vk.StructureTypeSemaphoreCreateInfo}, nil, &fs.ImageAcquired)
	if err := checkResult(ret, "create image-acquired semaphore"); err != nil {
		return fs, err
	}
	ret = vk.CreateSemaphore(device, &vk.SemaphoreCreateInfo{SType: vk.StructureTypeSemaphoreCreateInfo}, nil, &fs.QueueComplete)
	if err := checkResult(ret, "create queue-complete semaphore"); err != nil {
		return fs, err
	}
	return fs, nil
}

// Wait blocks until fs.Fence signals, the §4.8 step 3 idiom ("wait
// fence[cur_frame]"), without resetting it.
func (fs *FrameSync) Wait(gpu *Gpu) error {
	ret := vk.WaitForFences(gpu.Device(), 1, []vk.Fence{fs.Fence}, vk.True, vk.MaxUint64)
	return checkResult(ret, "wait frame fence")
}

// Reset clears fs.Fence to unsignaled; §4.8 step 7 does this immediately
// before the submission that will re-signal it.
func (fs *FrameSync) Reset(gpu *Gpu) error {
	return checkResult(vk.ResetFences(gpu.Device(), 1, []vk.Fence{fs.Fence}), "reset frame fence")
}

// Destroy releases fs's fence and semaphores.
func (fs *FrameSync) Destroy(gpu *Gpu) {
	device := gpu.Device()
	if fs.Fence != vk.NullFence {
		vk.DestroyFence(device, fs.Fence, nil)
	}
	if fs.ImageAcquired != vk.NullSemaphore {
		vk.DestroySemaphore(device, fs.ImageAcquired, nil)
	}
	if fs.QueueComplete != vk.NullSemaphore {
		vk.DestroySemaphore(device, fs.QueueComplete, nil)
	}
}

// BackFences is the per-swapchain-image fence table (SUPPLEMENTED
// FEATURES: back-fence table), sized to S rather than F so that when
// F < S a frame never reuses an image whose prior occupant's fence hasn't
// signaled yet (§4.8 step 5, §8 P5).
type BackFences struct {
	fences [MaxSwapchainImages]vk.Fence
}

// Bind records that fence now owns swapchain image imgIdx, returning the
// previously-bound fence (if any) so the caller can wait on it first.
func (bf *BackFences) Bind(imgIdx int, fence vk.Fence) vk.Fence {
	prev := bf.fences[imgIdx]
	bf.fences[imgIdx] = fence
	return prev
}

// WaitIfBound blocks on whatever fence currently owns imgIdx, if any; the
// registration is left in place until the next Bind replaces it. This is
// the defensive back-fence wait §4.8
// step 5 calls for when F < S and an image still in flight is reacquired.
func (bf *BackFences) WaitIfBound(gpu *Gpu, imgIdx int) error {
	fence := bf.fences[imgIdx]
	if fence == vk.NullFence {
		return nil
	}
	return checkResult(vk.WaitForFences(gpu.Device(), 1, []vk.Fence{fence}, vk.True, vk.MaxUint64), "wait back-fence")
}
