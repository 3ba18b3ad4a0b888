package vklite

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// Buffer is a GPU buffer plus its backing device memory, generalizing the
// teacher's CreateBuffer (extensions.go) and CoreBuffer (buffers.go) from a
// single hardcoded uniform-buffer layout into any usage. Descriptor
// bindings address it through BufferRegion values; the Buffer keeps no
// table of its regions and does not limit their number.
type Buffer struct {
	Lifecycle

	gpu    *Gpu
	handle vk.Buffer
	memory vk.DeviceMemory
	size   vk.DeviceSize
	usage  vk.BufferUsageFlagBits
	hostVisible bool
	mapped unsafe.Pointer
}

// NewBuffer allocates a buffer of size bytes for usage. hostVisible
// requests a host-visible/coherent memory type (for CPU upload/download);
// otherwise device-local memory is preferred.
func NewBuffer(gpu *Gpu, size int, usage vk.BufferUsageFlagBits, hostVisible bool) (*Buffer, error) {
	b := &Buffer{gpu: gpu, size: vk.DeviceSize(size), usage: usage, hostVisible: hostVisible}

	var handle vk.Buffer
	ret := vk.CreateBuffer(gpu.handle, &vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        b.size,
		Usage:       vk.BufferUsageFlags(usage),
		SharingMode: vk.SharingModeExclusive,
	}, nil, &handle)
	if err := checkResult(ret, "create buffer"); err != nil {
		return nil, err
	}
	b.handle = handle

	var req vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(gpu.handle, handle, &req)
	req.Deref()

	want := vk.MemoryPropertyDeviceLocalBit
	if hostVisible {
		want = vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit
	}
	memType, ok := findMemoryType(gpu.memProps, req.MemoryTypeBits, want)
	if !ok {
		vk.DestroyBuffer(gpu.handle, handle, nil)
		return nil, errorf(ErrBackendFailure, "no memory type satisfies buffer requirements")
	}

	var mem vk.DeviceMemory
	ret = vk.AllocateMemory(gpu.handle, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  req.Size,
		MemoryTypeIndex: memType,
	}, nil, &mem)
	if err := checkResult(ret, "allocate buffer memory"); err != nil {
		vk.DestroyBuffer(gpu.handle, handle, nil)
		return nil, err
	}
	b.memory = mem
	vk.BindBufferMemory(gpu.handle, handle, mem, 0)

	b.MustTransition(StatusCreated)
	return b, nil
}

// Handle returns the underlying vk.Buffer.
func (b *Buffer) Handle() vk.Buffer { return b.handle }

// Size returns the buffer's byte size.
func (b *Buffer) Size() int { return int(b.size) }

// Upload copies data into the buffer at byteOffset via map/memcpy/unmap;
// it is only valid for host-visible buffers (P2: buffer round-trip).
func (b *Buffer) Upload(byteOffset int, data []byte) error {
	if !b.hostVisible {
		return errorf(ErrUnsupported, "buffer is not host-visible, use a staging buffer instead")
	}
	if vk.DeviceSize(byteOffset+len(data)) > b.size {
		return errorf(ErrInvalidIndex, "upload range [%d,%d) exceeds buffer size %d", byteOffset, byteOffset+len(data), b.size)
	}
	var ptr unsafe.Pointer
	ret := vk.MapMemory(b.gpu.handle, b.memory, vk.DeviceSize(byteOffset), vk.DeviceSize(len(data)), 0, &ptr)
	if err := checkResult(ret, "map buffer memory"); err != nil {
		return err
	}
	n := vk.Memcopy(ptr, data)
	vk.UnmapMemory(b.gpu.handle, b.memory)
	if n != len(data) {
		return errorf(ErrBackendFailure, "short copy into mapped buffer: wrote %d of %d bytes", n, len(data))
	}
	return nil
}

// Download reads byteLen bytes back from the buffer at byteOffset via
// map/memcpy/unmap, completing the round trip P2 exercises.
func (b *Buffer) Download(byteOffset, byteLen int) ([]byte, error) {
	if !b.hostVisible {
		return nil, errorf(ErrUnsupported, "buffer is not host-visible, use a staging buffer instead")
	}
	if vk.DeviceSize(byteOffset+byteLen) > b.size {
		return nil, errorf(ErrInvalidIndex, "download range [%d,%d) exceeds buffer size %d", byteOffset, byteOffset+byteLen, b.size)
	}
	var ptr unsafe.Pointer
	ret := vk.MapMemory(b.gpu.handle, b.memory, vk.DeviceSize(byteOffset), vk.DeviceSize(byteLen), 0, &ptr)
	if err := checkResult(ret, "map buffer memory"); err != nil {
		return nil, err
	}
	out := make([]byte, byteLen)
	src := (*[1 << 30]byte)(ptr)[:byteLen:byteLen]
	copy(out, src)
	vk.UnmapMemory(b.gpu.handle, b.memory)
	return out, nil
}

// Destroy frees the buffer's device memory and the buffer object.
func (b *Buffer) Destroy() {
	if b.Status() == StatusDestroyed {
		return
	}
	if b.memory != vk.NullDeviceMemory {
		vk.FreeMemory(b.gpu.handle, b.memory, nil)
	}
	if b.handle != vk.NullBuffer {
		vk.DestroyBuffer(b.gpu.handle, b.handle, nil)
	}
	b.MustTransition(StatusDestroyed)
}

// BufferRegion addresses a byte range of a Buffer, the unit bindings.go
// binds into a descriptor set. It is a plain value; nothing counts how
// many regions a set holds.
type BufferRegion struct {
	Buffer *Buffer
	Offset int
	Length int
}
