package vklite

import vk "github.com/vulkan-go/vulkan"

// Barrier describes an image or buffer memory barrier to record into a
// command buffer, generalizing the teacher's commented-out
// image_ownership_barrier (a queue-family-ownership transfer C reference
// never wired up) into a reusable recording helper covering both image
// layout transitions and plain buffer barriers.
type Barrier struct {
	SrcStage vk.PipelineStageFlagBits
	DstStage vk.PipelineStageFlagBits

	Image         vk.Image
	OldLayout     vk.ImageLayout
	NewLayout     vk.ImageLayout
	SrcAccess     vk.AccessFlagBits
	DstAccess     vk.AccessFlagBits
	Aspect        vk.ImageAspectFlagBits
	SrcQueueFamily uint32
	DstQueueFamily uint32

	Buffer     vk.Buffer
	BufferSize vk.DeviceSize
}

// sameFamily is used when a barrier does not transfer queue-family
// ownership; vk.QueueFamilyIgnored would also work, but the spec's queue
// ownership transfers (§4.2) are explicit, so this makes "no transfer"
// unambiguous at call sites.
const sameFamily = vk.QueueFamilyIgnored

// NewImageBarrier builds a Barrier transitioning image's layout without a
// queue-family ownership transfer.
func NewImageBarrier(image vk.Image, aspect vk.ImageAspectFlagBits, old, new_ vk.ImageLayout, srcAccess, dstAccess vk.AccessFlagBits, srcStage, dstStage vk.PipelineStageFlagBits) Barrier {
	return Barrier{
		SrcStage: srcStage, DstStage: dstStage,
		Image: image, OldLayout: old, NewLayout: new_,
		SrcAccess: srcAccess, DstAccess: dstAccess, Aspect: aspect,
		SrcQueueFamily: sameFamily, DstQueueFamily: sameFamily,
	}
}

// NewQueueTransferBarrier builds an image Barrier transferring ownership
// from srcFamily to dstFamily without changing layout, mirroring the
// graphics-to-present ownership transfer the teacher left commented out.
func NewQueueTransferBarrier(image vk.Image, aspect vk.ImageAspectFlagBits, layout vk.ImageLayout, srcFamily, dstFamily uint32) Barrier {
	return Barrier{
		SrcStage: vk.PipelineStageColorAttachmentOutputBit,
		DstStage: vk.PipelineStageColorAttachmentOutputBit,
		Image:    image, OldLayout: layout, NewLayout: layout,
		DstAccess: vk.AccessColorAttachmentWriteBit, Aspect: aspect,
		SrcQueueFamily: srcFamily, DstQueueFamily: dstFamily,
	}
}

// record issues the barrier into cmd via vkCmdPipelineBarrier.
func (b Barrier) record(cmd vk.CommandBuffer) {
	if b.Buffer != vk.NullBuffer {
		barrier := vk.BufferMemoryBarrier{
			SType:               vk.StructureTypeBufferMemoryBarrier,
			SrcAccessMask:       vk.AccessFlags(b.SrcAccess),
			DstAccessMask:       vk.AccessFlags(b.DstAccess),
			SrcQueueFamilyIndex: sameFamily,
			DstQueueFamilyIndex: sameFamily,
			Buffer:              b.Buffer,
			Size:                b.BufferSize,
		}
		vk.CmdPipelineBarrier(cmd, vk.PipelineStageFlags(b.SrcStage), vk.PipelineStageFlags(b.DstStage),
			0, 0, nil, 1, []vk.BufferMemoryBarrier{barrier}, 0, nil)
		return
	}
	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		SrcAccessMask:       vk.AccessFlags(b.SrcAccess),
		DstAccessMask:       vk.AccessFlags(b.DstAccess),
		OldLayout:           b.OldLayout,
		NewLayout:           b.NewLayout,
		SrcQueueFamilyIndex: b.SrcQueueFamily,
		DstQueueFamilyIndex: b.DstQueueFamily,
		Image:               b.Image,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(b.Aspect),
			LevelCount: 1,
			LayerCount: 1,
		},
	}
	vk.CmdPipelineBarrier(cmd, vk.PipelineStageFlags(b.SrcStage), vk.PipelineStageFlags(b.DstStage),
		0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{barrier})
}
