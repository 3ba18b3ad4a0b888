package vklite

import vk "github.com/vulkan-go/vulkan"

// BindingKind names what a descriptor set slot binds, generalizing the
// teacher's single hardcoded uniform-buffer layout (buffers.go's
// NewCoreUniformBuffer) into the small fixed vocabulary spec §4.3 needs.
type BindingKind int

const (
	BindingUniformBuffer BindingKind = iota
	BindingStorageBuffer
	BindingCombinedImageSampler
)

func (k BindingKind) vk() vk.DescriptorType {
	switch k {
	case BindingUniformBuffer:
		return vk.DescriptorTypeUniformBuffer
	case BindingStorageBuffer:
		return vk.DescriptorTypeStorageBuffer
	case BindingCombinedImageSampler:
		return vk.DescriptorTypeCombinedImageSampler
	default:
		return vk.DescriptorTypeUniformBuffer
	}
}

// BindingSlot describes one binding point in a descriptor set layout.
type BindingSlot struct {
	Binding uint32
	Kind    BindingKind
	Stages  vk.ShaderStageFlagBits
	Count   uint32
}

// Bindings owns a descriptor set layout and dsetCount descriptor sets
// allocated from it against the Gpu's shared pool (§3 Bindings, §4.6
// create(dset_count)), generalizing NewCoreUniformBuffer's inline
// single-set layout so a Visual can hold one set per frame-in-flight (or
// per swapchain image) and never overwrite a set still read by an
// in-flight frame (§5, P10).
//
// Writes staged through UpdateBuffer/UpdateImage do not hit the device
// immediately; they accumulate until Update flushes them in one batched
// vk.UpdateDescriptorSets call, mirroring the need-update/update() split
// spec.md's Bindings names.
type Bindings struct {
	gpu    *Gpu
	layout vk.DescriptorSetLayout
	sets   []vk.DescriptorSet
	slots  []BindingSlot

	pending    []vk.WriteDescriptorSet
	needUpdate bool
}

// NewBindings creates a descriptor set layout from slots and allocates
// dsetCount descriptor sets for it from gpu's pool.
func NewBindings(gpu *Gpu, slots []BindingSlot, dsetCount int) (*Bindings, error) {
	if len(slots) > MaxBindingsSize {
		return nil, errorf(ErrCapacityExceeded, "%d binding slots exceeds max %d", len(slots), MaxBindingsSize)
	}
	if dsetCount <= 0 {
		return nil, errorf(ErrNotConfigured, "dset_count must be positive, got %d", dsetCount)
	}
	lbs := make([]vk.DescriptorSetLayoutBinding, len(slots))
	for i, s := range slots {
		count := s.Count
		if count == 0 {
			count = 1
		}
		lbs[i] = vk.DescriptorSetLayoutBinding{
			Binding:         s.Binding,
			DescriptorType:  s.Kind.vk(),
			DescriptorCount: count,
			StageFlags:      vk.ShaderStageFlags(s.Stages),
		}
	}
	var layout vk.DescriptorSetLayout
	ret := vk.CreateDescriptorSetLayout(gpu.handle, &vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(lbs)),
		PBindings:    lbs,
	}, nil, &layout)
	if err := checkResult(ret, "create descriptor set layout"); err != nil {
		return nil, err
	}

	layouts := make([]vk.DescriptorSetLayout, dsetCount)
	for i := range layouts {
		layouts[i] = layout
	}
	sets := make([]vk.DescriptorSet, dsetCount)
	ret = vk.AllocateDescriptorSets(gpu.handle, &vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     gpu.descPool,
		DescriptorSetCount: uint32(dsetCount),
		PSetLayouts:        layouts,
	}, sets)
	if err := checkResult(ret, "allocate descriptor sets"); err != nil {
		vk.DestroyDescriptorSetLayout(gpu.handle, layout, nil)
		return nil, err
	}

	return &Bindings{gpu: gpu, layout: layout, sets: sets, slots: slots}, nil
}

// Layout returns the descriptor set layout, needed by PipelineLayout creation.
func (b *Bindings) Layout() vk.DescriptorSetLayout { return b.layout }

// DsetCount reports how many descriptor sets this Bindings allocated.
func (b *Bindings) DsetCount() int { return len(b.sets) }

// Set returns the descriptor set allocated at dsetIdx.
func (b *Bindings) Set(dsetIdx int) vk.DescriptorSet { return b.sets[dsetIdx] }

// NeedsUpdate reports whether any writes are staged but not yet flushed
// via Update.
func (b *Bindings) NeedsUpdate() bool { return b.needUpdate }

func (b *Bindings) slotKind(binding uint32) (BindingKind, bool) {
	for _, s := range b.slots {
		if s.Binding == binding {
			return s.Kind, true
		}
	}
	return 0, false
}

// UpdateBuffer stages a write of region into the descriptor at binding
// within the set at dsetIdx; the write only reaches the device once
// Update is called, completing P10 (descriptor update correctness) by
// batching every staged write rather than hitting the device per-call.
func (b *Bindings) UpdateBuffer(dsetIdx int, binding uint32, region BufferRegion) error {
	if dsetIdx < 0 || dsetIdx >= len(b.sets) {
		return errorf(ErrInvalidIndex, "dset index %d out of range [0,%d)", dsetIdx, len(b.sets))
	}
	kind, found := b.slotKind(binding)
	if !found {
		return errorf(ErrInvalidIndex, "no binding slot %d in this layout", binding)
	}
	length := region.Length
	if length == 0 {
		length = region.Buffer.Size() - region.Offset
	}
	b.pending = append(b.pending, vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          b.sets[dsetIdx],
		DstBinding:      binding,
		DescriptorCount: 1,
		DescriptorType:  kind.vk(),
		PBufferInfo: []vk.DescriptorBufferInfo{{
			Buffer: region.Buffer.handle,
			Offset: vk.DeviceSize(region.Offset),
			Range:  vk.DeviceSize(length),
		}},
	})
	b.needUpdate = true
	return nil
}

// UpdateImage stages a write of an image+sampler pair into the descriptor
// at binding within the set at dsetIdx; see UpdateBuffer for the
// need-update/Update staging this participates in.
func (b *Bindings) UpdateImage(dsetIdx int, binding uint32, img *Images, sampler *Sampler, layout vk.ImageLayout) error {
	if dsetIdx < 0 || dsetIdx >= len(b.sets) {
		return errorf(ErrInvalidIndex, "dset index %d out of range [0,%d)", dsetIdx, len(b.sets))
	}
	b.pending = append(b.pending, vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          b.sets[dsetIdx],
		DstBinding:      binding,
		DescriptorCount: 1,
		DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
		PImageInfo: []vk.DescriptorImageInfo{{
			Sampler:     sampler.handle,
			ImageView:   img.view,
			ImageLayout: layout,
		}},
	})
	b.needUpdate = true
	return nil
}

// Update flushes every staged write in one batched vk.UpdateDescriptorSets
// call. A no-op when NeedsUpdate is false.
func (b *Bindings) Update() error {
	if !b.needUpdate {
		return nil
	}
	vk.UpdateDescriptorSets(b.gpu.handle, uint32(len(b.pending)), b.pending, 0, nil)
	b.pending = b.pending[:0]
	b.needUpdate = false
	return nil
}

// Destroy frees the descriptor sets back to the pool and destroys the layout.
func (b *Bindings) Destroy() {
	if len(b.sets) > 0 {
		vk.FreeDescriptorSets(b.gpu.handle, b.gpu.descPool, uint32(len(b.sets)), b.sets)
	}
	if b.layout != vk.NullDescriptorSetLayout {
		vk.DestroyDescriptorSetLayout(b.gpu.handle, b.layout, nil)
	}
}
