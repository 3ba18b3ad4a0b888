package vklite

import vk "github.com/vulkan-go/vulkan"

// Images is a single GPU texture image plus its view and backing memory,
// generalizing the teacher's CoreImage (a trio of name-keyed maps) into
// one owned object per image, the way Buffer generalizes CoreBuffer.
type Images struct {
	Lifecycle

	gpu    *Gpu
	handle vk.Image
	memory vk.DeviceMemory
	view   vk.ImageView
	format vk.Format
	extent vk.Extent3D
	usage  vk.ImageUsageFlagBits
}

// NewImages allocates a 2D image of the given format/extent/usage and a
// full-mip/full-layer view over it. Depth attachments are created inline
// by Renderpass instead, since they never need a Sampler.
func NewImages(gpu *Gpu, format vk.Format, width, height uint32, usage vk.ImageUsageFlagBits, aspect vk.ImageAspectFlagBits) (*Images, error) {
	im := &Images{gpu: gpu, format: format, extent: vk.Extent3D{Width: width, Height: height, Depth: 1}, usage: usage}

	var handle vk.Image
	ret := vk.CreateImage(gpu.handle, &vk.ImageCreateInfo{
		SType:       vk.StructureTypeImageCreateInfo,
		ImageType:   vk.ImageType2d,
		Format:      format,
		Extent:      im.extent,
		MipLevels:   1,
		ArrayLayers: 1,
		Samples:     vk.SampleCount1Bit,
		Tiling:      vk.ImageTilingOptimal,
		Usage:       vk.ImageUsageFlags(usage),
		SharingMode: vk.SharingModeExclusive,
	}, nil, &handle)
	if err := checkResult(ret, "create image"); err != nil {
		return nil, err
	}
	im.handle = handle

	var req vk.MemoryRequirements
	vk.GetImageMemoryRequirements(gpu.handle, handle, &req)
	req.Deref()
	memType, ok := findMemoryType(gpu.memProps, req.MemoryTypeBits, vk.MemoryPropertyDeviceLocalBit)
	if !ok {
		vk.DestroyImage(gpu.handle, handle, nil)
		return nil, errorf(ErrBackendFailure, "no device-local memory type for image")
	}
	var mem vk.DeviceMemory
	ret = vk.AllocateMemory(gpu.handle, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  req.Size,
		MemoryTypeIndex: memType,
	}, nil, &mem)
	if err := checkResult(ret, "allocate image memory"); err != nil {
		vk.DestroyImage(gpu.handle, handle, nil)
		return nil, err
	}
	im.memory = mem
	vk.BindImageMemory(gpu.handle, handle, mem, 0)

	var view vk.ImageView
	ret = vk.CreateImageView(gpu.handle, &vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    handle,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(aspect),
			LevelCount: 1,
			LayerCount: 1,
		},
	}, nil, &view)
	if err := checkResult(ret, "create image view"); err != nil {
		vk.FreeMemory(gpu.handle, mem, nil)
		vk.DestroyImage(gpu.handle, handle, nil)
		return nil, err
	}
	im.view = view

	im.MustTransition(StatusCreated)
	return im, nil
}

// Handle returns the underlying vk.Image.
func (im *Images) Handle() vk.Image { return im.handle }

// View returns the image's default view.
func (im *Images) View() vk.ImageView { return im.view }

// Destroy destroys the view, image and backing memory.
func (im *Images) Destroy() {
	if im.Status() == StatusDestroyed {
		return
	}
	if im.view != vk.NullImageView {
		vk.DestroyImageView(im.gpu.handle, im.view, nil)
	}
	if im.handle != vk.NullImage {
		vk.DestroyImage(im.gpu.handle, im.handle, nil)
	}
	if im.memory != vk.NullDeviceMemory {
		vk.FreeMemory(im.gpu.handle, im.memory, nil)
	}
	im.MustTransition(StatusDestroyed)
}

// Sampler is a reusable vk.Sampler, configured independently of any
// particular Images so one sampler can serve many textures (a common
// mirroring of the teacher's decision to key textures by name rather than
// pairing a sampler 1:1 with each texture).
type Sampler struct {
	gpu    *Gpu
	handle vk.Sampler
}

// NewSampler creates a sampler with the given filter/address mode applied
// uniformly on all three axes.
func NewSampler(gpu *Gpu, filter vk.Filter, addressMode vk.SamplerAddressMode) (*Sampler, error) {
	var handle vk.Sampler
	ret := vk.CreateSampler(gpu.handle, &vk.SamplerCreateInfo{
		SType:        vk.StructureTypeSamplerCreateInfo,
		MagFilter:    filter,
		MinFilter:    filter,
		AddressModeU: addressMode,
		AddressModeV: addressMode,
		AddressModeW: addressMode,
		MaxLod:       0.25,
	}, nil, &handle)
	if err := checkResult(ret, "create sampler"); err != nil {
		return nil, err
	}
	return &Sampler{gpu: gpu, handle: handle}, nil
}

func (s *Sampler) Destroy() {
	if s.handle != vk.NullSampler {
		vk.DestroySampler(s.gpu.handle, s.handle, nil)
		s.handle = vk.NullSampler
	}
}
