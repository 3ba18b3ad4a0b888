package vklite

import vk "github.com/vulkan-go/vulkan"

// Renderpass is a single-subpass color+depth render pass plus the depth
// image and per-swapchain-image framebuffers bound to it, grounded on the
// teacher's CoreRenderPass.CreateRenderPass and CoreSwapchain.CreateFrameBuffer.
type Renderpass struct {
	Lifecycle

	gpu    *Gpu
	handle vk.RenderPass

	depthFormat vk.Format
	depthImage  vk.Image
	depthMemory vk.DeviceMemory
	depthView   vk.ImageView

	framebuffers []vk.Framebuffer
}

// NewRenderpass creates the render pass and its depth attachment/
// framebuffers against sc's current image views and extent. Called once at
// canvas creation; on resize the canvas keeps this render pass and calls
// RecreateFramebuffers instead (§4.7 step 3).
func NewRenderpass(gpu *Gpu, sc *Swapchain, depthFormat vk.Format) (*Renderpass, error) {
	rp := &Renderpass{gpu: gpu, depthFormat: depthFormat}
	if err := rp.createPass(sc.Format().Format); err != nil {
		return nil, err
	}
	if err := rp.createFramebuffers(sc); err != nil {
		vk.DestroyRenderPass(gpu.handle, rp.handle, nil)
		return nil, err
	}
	rp.MustTransition(StatusCreated)
	return rp, nil
}

func (rp *Renderpass) createPass(colorFormat vk.Format) error {
	attachments := []vk.AttachmentDescription{
		{
			Format:         colorFormat,
			Samples:        vk.SampleCount1Bit,
			LoadOp:         vk.AttachmentLoadOpClear,
			StoreOp:        vk.AttachmentStoreOpStore,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  vk.ImageLayoutUndefined,
			FinalLayout:    vk.ImageLayoutPresentSrc,
		},
		{
			Format:         rp.depthFormat,
			Samples:        vk.SampleCount1Bit,
			LoadOp:         vk.AttachmentLoadOpClear,
			StoreOp:        vk.AttachmentStoreOpDontCare,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  vk.ImageLayoutUndefined,
			FinalLayout:    vk.ImageLayoutDepthStencilAttachmentOptimal,
		},
	}
	colorRef := []vk.AttachmentReference{{Attachment: 0, Layout: vk.ImageLayoutColorAttachmentOptimal}}
	depthRef := vk.AttachmentReference{Attachment: 1, Layout: vk.ImageLayoutDepthStencilAttachmentOptimal}
	subpass := vk.SubpassDescription{
		PipelineBindPoint:       vk.PipelineBindPointGraphics,
		ColorAttachmentCount:    1,
		PColorAttachments:       colorRef,
		PDepthStencilAttachment: &depthRef,
	}
	deps := []vk.SubpassDependency{
		{
			SrcSubpass:    vk.MaxUint32,
			DstSubpass:    0,
			SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageBottomOfPipeBit),
			DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
			SrcAccessMask: vk.AccessFlags(vk.AccessMemoryReadBit),
			DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentReadBit | vk.AccessColorAttachmentWriteBit),
		},
		{
			SrcSubpass:    0,
			DstSubpass:    vk.MaxUint32,
			SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
			DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageBottomOfPipeBit),
			SrcAccessMask: vk.AccessFlags(vk.AccessColorAttachmentReadBit | vk.AccessColorAttachmentWriteBit),
			DstAccessMask: vk.AccessFlags(vk.AccessMemoryReadBit),
		},
	}
	var handle vk.RenderPass
	ret := vk.CreateRenderPass(rp.gpu.handle, &vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: uint32(len(deps)),
		PDependencies:   deps,
	}, nil, &handle)
	if err := checkResult(ret, "create render pass"); err != nil {
		return err
	}
	rp.handle = handle
	return nil
}

func (rp *Renderpass) createFramebuffers(sc *Swapchain) error {
	extent := sc.Extent()
	if err := rp.createDepth(extent); err != nil {
		return err
	}
	rp.framebuffers = make([]vk.Framebuffer, sc.ImageCount())
	for i, view := range sc.imageViews {
		views := []vk.ImageView{view, rp.depthView}
		var fb vk.Framebuffer
		ret := vk.CreateFramebuffer(rp.gpu.handle, &vk.FramebufferCreateInfo{
			SType:           vk.StructureTypeFramebufferCreateInfo,
			RenderPass:      rp.handle,
			AttachmentCount: uint32(len(views)),
			PAttachments:    views,
			Width:           extent.Width,
			Height:          extent.Height,
			Layers:          1,
		}, nil, &fb)
		if err := checkResult(ret, "create framebuffer"); err != nil {
			return err
		}
		rp.framebuffers[i] = fb
	}
	return nil
}

func (rp *Renderpass) createDepth(extent vk.Extent2D) error {
	var image vk.Image
	ret := vk.CreateImage(rp.gpu.handle, &vk.ImageCreateInfo{
		SType:       vk.StructureTypeImageCreateInfo,
		ImageType:   vk.ImageType2d,
		Format:      rp.depthFormat,
		Extent:      vk.Extent3D{Width: extent.Width, Height: extent.Height, Depth: 1},
		MipLevels:   1,
		ArrayLayers: 1,
		Samples:     vk.SampleCount1Bit,
		Tiling:      vk.ImageTilingOptimal,
		Usage:       vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit),
		SharingMode: vk.SharingModeExclusive,
	}, nil, &image)
	if err := checkResult(ret, "create depth image"); err != nil {
		return err
	}
	rp.depthImage = image

	var req vk.MemoryRequirements
	vk.GetImageMemoryRequirements(rp.gpu.handle, image, &req)
	req.Deref()
	memType, ok := findMemoryType(rp.gpu.memProps, req.MemoryTypeBits, vk.MemoryPropertyDeviceLocalBit)
	if !ok {
		return errorf(ErrBackendFailure, "no device-local memory type for depth image")
	}
	var mem vk.DeviceMemory
	ret = vk.AllocateMemory(rp.gpu.handle, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  req.Size,
		MemoryTypeIndex: memType,
	}, nil, &mem)
	if err := checkResult(ret, "allocate depth memory"); err != nil {
		return err
	}
	rp.depthMemory = mem
	vk.BindImageMemory(rp.gpu.handle, image, mem, 0)

	var view vk.ImageView
	ret = vk.CreateImageView(rp.gpu.handle, &vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    image,
		ViewType: vk.ImageViewType2d,
		Format:   rp.depthFormat,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectDepthBit),
			LevelCount: 1,
			LayerCount: 1,
		},
	}, nil, &view)
	if err := checkResult(ret, "create depth image view"); err != nil {
		return err
	}
	rp.depthView = view
	return nil
}

// Handle returns the underlying vk.RenderPass.
func (rp *Renderpass) Handle() vk.RenderPass { return rp.handle }

// Framebuffer returns the framebuffer bound to swapchain image index i.
func (rp *Renderpass) Framebuffer(i int) vk.Framebuffer { return rp.framebuffers[i] }

func (rp *Renderpass) destroyFramebuffers() {
	for _, fb := range rp.framebuffers {
		vk.DestroyFramebuffer(rp.gpu.handle, fb, nil)
	}
	rp.framebuffers = nil
	if rp.depthView != vk.NullImageView {
		vk.DestroyImageView(rp.gpu.handle, rp.depthView, nil)
	}
	if rp.depthImage != vk.NullImage {
		vk.DestroyImage(rp.gpu.handle, rp.depthImage, nil)
	}
	if rp.depthMemory != vk.NullDeviceMemory {
		vk.FreeMemory(rp.gpu.handle, rp.depthMemory, nil)
	}
}

// RecreateFramebuffers rebuilds the depth image and framebuffers against
// sc's new extent/views, per §4.7 step 3. The render pass itself is
// format-independent of extent and is not recreated.
func (rp *Renderpass) RecreateFramebuffers(sc *Swapchain) error {
	rp.destroyFramebuffers()
	return rp.createFramebuffers(sc)
}

// Destroy destroys the framebuffers, depth attachment and render pass.
func (rp *Renderpass) Destroy() {
	if rp.Status() == StatusDestroyed {
		return
	}
	rp.destroyFramebuffers()
	if rp.handle != vk.NullRenderPass {
		vk.DestroyRenderPass(rp.gpu.handle, rp.handle, nil)
	}
	rp.MustTransition(StatusDestroyed)
}
