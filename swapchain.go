package vklite

import vk "github.com/vulkan-go/vulkan"

// Swapchain negotiates surface capabilities/format/present mode against a
// Window and owns the resulting image/image-view arrays, grounded on the
// teacher's CoreSwapchain. Image count S is capped at MaxSwapchainImages;
// Recreate implements the resize protocol of §4.7 (device-idle wait is the
// caller's responsibility — Canvas.Resize does it before calling Recreate).
type Swapchain struct {
	Lifecycle

	gpu    *Gpu
	window *Window

	handle vk.Swapchain
	format vk.SurfaceFormat
	extent vk.Extent2D

	images     []vk.Image
	imageViews []vk.ImageView
}

// NewSwapchain creates a swapchain requesting desiredImages images
// (clamped to the surface's min/max and to MaxSwapchainImages), using
// presentMode when supported and falling back to FIFO (always guaranteed
// by the spec, per the teacher's comment).
func NewSwapchain(gpu *Gpu, window *Window, desiredImages int, presentMode vk.PresentMode) (*Swapchain, error) {
	s := &Swapchain{gpu: gpu, window: window}
	if err := s.create(desiredImages, presentMode, vk.NullSwapchain); err != nil {
		return nil, err
	}
	s.MustTransition(StatusCreated)
	return s, nil
}

func (s *Swapchain) create(desiredImages int, presentMode vk.PresentMode, old vk.Swapchain) error {
	surface := s.window.Surface()
	pd := s.gpu.pd

	var caps vk.SurfaceCapabilities
	ret := vk.GetPhysicalDeviceSurfaceCapabilities(pd, surface, &caps)
	if err := checkResult(ret, "get surface capabilities"); err != nil {
		return err
	}
	caps.Deref()
	caps.CurrentExtent.Deref()

	var formatCount uint32
	vk.GetPhysicalDeviceSurfaceFormats(pd, surface, &formatCount, nil)
	formats := make([]vk.SurfaceFormat, formatCount)
	vk.GetPhysicalDeviceSurfaceFormats(pd, surface, &formatCount, formats)
	if formatCount == 0 {
		return errorf(ErrUnsupported, "surface exposes no color formats")
	}
	formats[0].Deref()
	format := formats[0]
	if format.Format == vk.FormatUndefined {
		format.Format = vk.FormatB8g8r8a8Srgb
	}
	s.format = format

	var presentModeCount uint32
	vk.GetPhysicalDeviceSurfacePresentModes(pd, surface, &presentModeCount, nil)
	modes := make([]vk.PresentMode, presentModeCount)
	vk.GetPhysicalDeviceSurfacePresentModes(pd, surface, &presentModeCount, modes)
	chosen := vk.PresentModeFifo
	for _, m := range modes {
		if m == presentMode {
			chosen = presentMode
			break
		}
	}

	extent := caps.CurrentExtent
	if extent.Width == vk.MaxUint32 {
		w, h := s.window.Size()
		extent = vk.Extent2D{Width: uint32(w), Height: uint32(h)}
	}
	s.extent = extent

	count := uint32(desiredImages)
	if count > MaxSwapchainImages {
		count = MaxSwapchainImages
	}
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	if count < caps.MinImageCount {
		count = caps.MinImageCount
	}

	preTransform := caps.CurrentTransform
	if vk.SurfaceTransformFlagBits(caps.SupportedTransforms)&vk.SurfaceTransformIdentityBit != 0 {
		preTransform = vk.SurfaceTransformIdentityBit
	}

	compositeAlpha := vk.CompositeAlphaOpaqueBit
	for _, c := range []vk.CompositeAlphaFlagBits{
		vk.CompositeAlphaOpaqueBit, vk.CompositeAlphaPreMultipliedBit,
		vk.CompositeAlphaPostMultipliedBit, vk.CompositeAlphaInheritBit,
	} {
		if caps.SupportedCompositeAlpha&vk.CompositeAlphaFlags(c) != 0 {
			compositeAlpha = c
			break
		}
	}

	var handle vk.Swapchain
	ret = vk.CreateSwapchain(s.gpu.handle, &vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          surface,
		MinImageCount:    count,
		ImageFormat:      format.Format,
		ImageColorSpace:  format.ColorSpace,
		ImageExtent:      extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode: vk.SharingModeExclusive,
		PreTransform:     preTransform,
		CompositeAlpha:   compositeAlpha,
		PresentMode:      chosen,
		Clipped:          vk.True,
		OldSwapchain:     old,
	}, nil, &handle)
	if err := checkResult(ret, "create swapchain"); err != nil {
		return err
	}
	if old != vk.NullSwapchain {
		vk.DestroySwapchain(s.gpu.handle, old, nil)
	}
	s.handle = handle

	var imageCount uint32
	vk.GetSwapchainImages(s.gpu.handle, handle, &imageCount, nil)
	s.images = make([]vk.Image, imageCount)
	vk.GetSwapchainImages(s.gpu.handle, handle, &imageCount, s.images)

	s.imageViews = make([]vk.ImageView, imageCount)
	for i, img := range s.images {
		var view vk.ImageView
		ret := vk.CreateImageView(s.gpu.handle, &vk.ImageViewCreateInfo{
			SType:    vk.StructureTypeImageViewCreateInfo,
			Image:    img,
			ViewType: vk.ImageViewType2d,
			Format:   format.Format,
			Components: vk.ComponentMapping{
				R: vk.ComponentSwizzleIdentity, G: vk.ComponentSwizzleIdentity,
				B: vk.ComponentSwizzleIdentity, A: vk.ComponentSwizzleIdentity,
			},
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
				LevelCount: 1,
				LayerCount: 1,
			},
		}, nil, &view)
		if err := checkResult(ret, "create swapchain image view"); err != nil {
			return err
		}
		s.imageViews[i] = view
	}
	return nil
}

// Handle returns the underlying vk.Swapchain, for Present and diagnostics.
func (s *Swapchain) Handle() vk.Swapchain { return s.handle }

// AcquireNextImage acquires the next presentable image, signaling
// semaphore when it's ready. needsRecreate reports vk.ErrorOutOfDate
// (the swapchain must be rebuilt before this frame can proceed);
// suboptimal reports vk.Suboptimal (still usable this frame, but a
// recreate should happen before the next one), per §4.7 step 1/§4.8 step 4.
func (s *Swapchain) AcquireNextImage(semaphore vk.Semaphore) (imageIndex uint32, suboptimal bool, needsRecreate bool, err error) {
	ret := vk.AcquireNextImage(s.gpu.handle, s.handle, vk.MaxUint64, semaphore, vk.NullFence, &imageIndex)
	switch ret {
	case vk.Success:
		return imageIndex, false, false, nil
	case vk.Suboptimal:
		return imageIndex, true, false, nil
	case vk.ErrorOutOfDate:
		return 0, false, true, nil
	default:
		return 0, false, false, checkResult(ret, "acquire next image")
	}
}

// ImageCount returns S, the negotiated swapchain image count.
func (s *Swapchain) ImageCount() int { return len(s.images) }

// Extent returns the negotiated swapchain extent.
func (s *Swapchain) Extent() vk.Extent2D { return s.extent }

// Format returns the negotiated surface format.
func (s *Swapchain) Format() vk.SurfaceFormat { return s.format }

// Recreate rebuilds the swapchain in place against its own prior handle
// (Vulkan's OldSwapchain retirement path), per §4.7 step 2-3. It destroys
// the old image views first; framebuffers and depth images built on them
// are not touched here, and Canvas.Resize rebuilds them afterwards with
// Renderpass.RecreateFramebuffers. The caller waits the device idle first.
func (s *Swapchain) Recreate(desiredImages int, presentMode vk.PresentMode) error {
	s.destroyViews()
	old := s.handle
	if err := s.create(desiredImages, presentMode, old); err != nil {
		return err
	}
	s.MustTransition(StatusNeedUpdate)
	s.MustTransition(StatusCreated)
	return nil
}

func (s *Swapchain) destroyViews() {
	for _, v := range s.imageViews {
		vk.DestroyImageView(s.gpu.handle, v, nil)
	}
	s.imageViews = nil
}

// Destroy destroys the image views and the swapchain itself.
func (s *Swapchain) Destroy() {
	if s.Status() == StatusDestroyed {
		return
	}
	s.destroyViews()
	if s.handle != vk.NullSwapchain {
		vk.DestroySwapchain(s.gpu.handle, s.handle, nil)
	}
	s.MustTransition(StatusDestroyed)
}
