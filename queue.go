package vklite

import vk "github.com/vulkan-go/vulkan"

// queueFamilies enumerates and classifies the queue families exposed by a
// physical device, generalizing the teacher's CoreQueue from a single
// bound-graphics-queue finder to the typed request_queue(kind) operation
// spec §4.2 names (graphics, compute, transfer, present).
type queueFamilies struct {
	props []vk.QueueFamilyProperties
	bound []bool
}

// QueueKind is the typed queue request spec.md's Gpu.request_queue takes.
type QueueKind int

const (
	QueueGraphics QueueKind = iota
	QueueCompute
	QueuePresent
	QueueTransfer
)

func enumerateQueueFamilies(pd vk.PhysicalDevice) queueFamilies {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &count, nil)
	props := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &count, props)
	for i := range props {
		props[i].Deref()
	}
	return queueFamilies{props: props, bound: make([]bool, count)}
}

func (q *queueFamilies) flagsFor(kind QueueKind) vk.QueueFlagBits {
	switch kind {
	case QueueGraphics:
		return vk.QueueGraphicsBit
	case QueueCompute:
		return vk.QueueComputeBit
	case QueueTransfer:
		return vk.QueueTransferBit
	default:
		return 0
	}
}

// find returns the first family index matching kind, preferring one not
// yet bound to another request (mirrors FindSuitableUnboundQueue, falling
// back to FindSuitableQueue when every matching family is already bound —
// a GPU with fewer families than requested queue kinds must still work).
func (q *queueFamilies) find(kind QueueKind, surfaceSupport func(family uint32) bool) (int, bool) {
	if kind == QueuePresent {
		for i := range q.props {
			if surfaceSupport != nil && surfaceSupport(uint32(i)) && !q.bound[i] {
				return i, true
			}
		}
		for i := range q.props {
			if surfaceSupport != nil && surfaceSupport(uint32(i)) {
				return i, true
			}
		}
		return 0, false
	}
	want := vk.QueueFlags(q.flagsFor(kind))
	for i, p := range q.props {
		if p.QueueFlags&want == want && !q.bound[i] {
			return i, true
		}
	}
	for i, p := range q.props {
		if p.QueueFlags&want == want {
			return i, true
		}
	}
	return 0, false
}

func (q *queueFamilies) bind(family int) { q.bound[family] = true }

// deviceQueueCreateInfos builds one DeviceQueueCreateInfo per distinct
// requested family, each with a single queue at 1.0 priority (extend here
// if a workload ever needs more than one queue per family).
func deviceQueueCreateInfos(families []uint32) []vk.DeviceQueueCreateInfo {
	seen := map[uint32]bool{}
	var infos []vk.DeviceQueueCreateInfo
	priority := []float32{1.0}
	for _, f := range families {
		if seen[f] {
			continue
		}
		seen[f] = true
		infos = append(infos, vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: f,
			QueueCount:       1,
			PQueuePriorities: priority,
		})
	}
	return infos
}
