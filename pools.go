package vklite

import vk "github.com/vulkan-go/vulkan"

// commandPool wraps a per-queue-family vk.CommandPool created with the
// reset-command-buffer flag (mirrors the teacher's CorePool), so command
// buffers allocated from it can be Reset individually rather than only en
// masse.
type commandPool struct {
	device vk.Device
	handle vk.CommandPool
	family uint32
}

func newCommandPool(device vk.Device, family uint32) (*commandPool, error) {
	var handle vk.CommandPool
	ret := vk.CreateCommandPool(device, &vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: family,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}, nil, &handle)
	if err := checkResult(ret, "create command pool"); err != nil {
		return nil, err
	}
	return &commandPool{device: device, handle: handle, family: family}, nil
}

func (p *commandPool) destroy() {
	vk.DestroyCommandPool(p.device, p.handle, nil)
}
