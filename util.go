package vklite

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// InstanceExtensions lists the instance extensions available on the platform.
func InstanceExtensions() ([]string, error) {
	var count uint32
	ret := vk.EnumerateInstanceExtensionProperties("", &count, nil)
	if err := checkResult(ret, "enumerate instance extensions"); err != nil {
		return nil, err
	}
	list := make([]vk.ExtensionProperties, count)
	ret = vk.EnumerateInstanceExtensionProperties("", &count, list)
	if err := checkResult(ret, "enumerate instance extensions"); err != nil {
		return nil, err
	}
	names := make([]string, 0, count)
	for _, ext := range list {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names, nil
}

// DeviceExtensions lists the extensions available on the given physical device.
func DeviceExtensions(gpu vk.PhysicalDevice) ([]string, error) {
	var count uint32
	ret := vk.EnumerateDeviceExtensionProperties(gpu, "", &count, nil)
	if err := checkResult(ret, "enumerate device extensions"); err != nil {
		return nil, err
	}
	list := make([]vk.ExtensionProperties, count)
	ret = vk.EnumerateDeviceExtensionProperties(gpu, "", &count, list)
	if err := checkResult(ret, "enumerate device extensions"); err != nil {
		return nil, err
	}
	names := make([]string, 0, count)
	for _, ext := range list {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names, nil
}

// ValidationLayers lists the validation layers available on the platform.
func ValidationLayers() ([]string, error) {
	var count uint32
	ret := vk.EnumerateInstanceLayerProperties(&count, nil)
	if err := checkResult(ret, "enumerate instance layers"); err != nil {
		return nil, err
	}
	list := make([]vk.LayerProperties, count)
	ret = vk.EnumerateInstanceLayerProperties(&count, list)
	if err := checkResult(ret, "enumerate instance layers"); err != nil {
		return nil, err
	}
	names := make([]string, 0, count)
	for _, layer := range list {
		layer.Deref()
		names = append(names, vk.ToString(layer.LayerName[:]))
	}
	return names, nil
}

// hasAll reports whether every entry in required is present in available.
func hasAll(available, required []string) (bool, []string) {
	set := make(map[string]bool, len(available))
	for _, a := range available {
		set[a] = true
	}
	var missing []string
	for _, r := range required {
		if !set[r] {
			missing = append(missing, r)
		}
	}
	return len(missing) == 0, missing
}

// findMemoryType searches the device's memory types for one satisfying both
// the type-bits mask reported by a resource's memory requirements and the
// requested property flags, falling back to a type-bits-only match when no
// type carries every requested property (mirrors the teacher's two-tier
// FindRequiredMemoryType / FindRequiredMemoryTypeFallback).
func findMemoryType(props vk.PhysicalDeviceMemoryProperties, typeBits uint32, want vk.MemoryPropertyFlagBits) (uint32, bool) {
	if i, ok := findMemoryTypeStrict(props, typeBits, want); ok {
		return i, true
	}
	if want != 0 {
		return findMemoryTypeStrict(props, typeBits, 0)
	}
	return 0, false
}

func findMemoryTypeStrict(props vk.PhysicalDeviceMemoryProperties, typeBits uint32, want vk.MemoryPropertyFlagBits) (uint32, bool) {
	for i := uint32(0); i < vk.MaxMemoryTypes; i++ {
		if typeBits&(1<<i) == 0 {
			continue
		}
		props.MemoryTypes[i].Deref()
		if props.MemoryTypes[i].PropertyFlags&vk.MemoryPropertyFlags(want) == vk.MemoryPropertyFlags(want) {
			return i, true
		}
	}
	return 0, false
}

// sliceUint32 reinterprets a byte slice holding SPIR-V bytecode as the
// uint32 words vk.ShaderModuleCreateInfo.PCode expects, without a copy.
func sliceUint32(data []byte) []uint32 {
	if len(data) == 0 {
		return nil
	}
	return (*[1 << 30]uint32)(unsafe.Pointer(&data[0]))[: len(data)/4 : len(data)/4]
}
