package vklite

import (
	vk "github.com/vulkan-go/vulkan"
)

// boundQueue is a queue handle bound to a family, returned by Gpu.Queue.
type boundQueue struct {
	handle vk.Queue
	family uint32
}

// Gpu is a logical device plus its queues, descriptor pool and per-family
// command pools, grounded on the teacher's CoreDevice + the device-
// selection/creation half of CoreRenderInstance.Init. Buffers, images and
// pipelines created against it are not recorded in the Gpu, and Destroy
// does not destroy them.
//
// Construction is two-phase, per §4.1: RequestQueue appends a queue
// request while the Gpu is still in StatusInit, and Create finalizes the
// logical device against every request made so far. A request_queue call
// after Create fails with AlreadyCreated; Create with zero queues
// requested fails rather than silently defaulting to one.
type Gpu struct {
	Lifecycle

	app    *App
	pd     vk.PhysicalDevice
	handle vk.Device

	requestedQueues []QueueKind
	deviceExts      []string
	features        vk.PhysicalDeviceFeatures

	props      vk.PhysicalDeviceProperties
	memProps   vk.PhysicalDeviceMemoryProperties
	families   queueFamilies
	queues     map[QueueKind]boundQueue
	descPool   vk.DescriptorPool

	pools [MaxQueueFamilies]*commandPool

	buffers    []*Buffer
	images     []*Images
	renderpass []*Renderpass
	pipelines  []*Pipeline
}

// newGpu configures a Gpu against physical device pd without creating the
// logical device yet; callers must RequestQueue at least once and then
// call Create.
func newGpu(app *App, pd vk.PhysicalDevice) *Gpu {
	g := &Gpu{app: app, pd: pd}
	vk.GetPhysicalDeviceProperties(pd, &g.props)
	g.props.Deref()
	vk.GetPhysicalDeviceMemoryProperties(pd, &g.memProps)
	g.memProps.Deref()
	return g
}

// RequestQueue appends a queue request of kind at idx, which must equal
// the number of requests already made (mirrors spec.md's
// request_queue(idx, type) signature). Fails with AlreadyCreated once
// Create has run.
func (g *Gpu) RequestQueue(idx int, kind QueueKind) error {
	if g.Status() != StatusInit {
		return errorf(ErrAlreadyCreated, "cannot request a queue after the gpu is created")
	}
	if idx != len(g.requestedQueues) {
		return errorf(ErrInvalidIndex, "queue request index %d must equal current request count %d", idx, len(g.requestedQueues))
	}
	g.requestedQueues = append(g.requestedQueues, kind)
	return nil
}

// SetDeviceExtensions records the device extensions Create will enable.
// Fails with AlreadyCreated once Create has run.
func (g *Gpu) SetDeviceExtensions(exts []string) error {
	if g.Status() != StatusInit {
		return errorf(ErrAlreadyCreated, "cannot configure device extensions after the gpu is created")
	}
	g.deviceExts = exts
	return nil
}

// SetFeatures records the physical device features Create will enable.
// Fails with AlreadyCreated once Create has run.
func (g *Gpu) SetFeatures(features vk.PhysicalDeviceFeatures) error {
	if g.Status() != StatusInit {
		return errorf(ErrAlreadyCreated, "cannot configure features after the gpu is created")
	}
	g.features = features
	return nil
}

// Create selects queue families satisfying every requested queue kind,
// deduplicates families into one command pool each, allocates the device
// queues and a descriptor pool. surface, when not vk.NullSurface, is used
// to resolve QueuePresent against actual surface support (§4.1); a
// QueuePresent request with no surface given fails outright rather than
// silently falling back to the graphics queue.
func (g *Gpu) Create(surface vk.Surface) error {
	if g.Status() != StatusInit {
		return errorf(ErrAlreadyCreated, "gpu already created")
	}
	if len(g.requestedQueues) == 0 {
		return errorf(ErrNotConfigured, "gpu.create called with no requested queues")
	}

	families := enumerateQueueFamilies(g.pd)
	if len(families.props) == 0 {
		return errorf(ErrUnsupported, "physical device exposes no queue families")
	}

	var surfaceSupport func(family uint32) bool
	if surface != vk.NullSurface {
		pd := g.pd
		surfaceSupport = func(family uint32) bool {
			var supported vk.Bool32
			vk.GetPhysicalDeviceSurfaceSupport(pd, family, surface, &supported)
			return supported != 0
		}
	}

	kinds := g.requestedQueues
	familyOf := make(map[QueueKind]uint32, len(kinds))
	var createFamilies []uint32
	for _, k := range kinds {
		var predicate func(uint32) bool
		if k == QueuePresent {
			if surfaceSupport == nil {
				return errorf(ErrNotConfigured, "queue present requested but create was given no surface")
			}
			predicate = surfaceSupport
		}
		idx, ok := families.find(k, predicate)
		if !ok {
			return errorf(ErrUnsupported, "no queue family satisfies requested kind %d", k)
		}
		families.bind(idx)
		familyOf[k] = uint32(idx)
		createFamilies = append(createFamilies, uint32(idx))
	}
	g.families = families

	avail, err := DeviceExtensions(g.pd)
	if err != nil {
		return err
	}
	if ok, missing := hasAll(avail, g.deviceExts); !ok {
		return errorf(ErrUnsupported, "missing required device extensions: %v", missing)
	}

	queueInfos := deviceQueueCreateInfos(createFamilies)
	var device vk.Device
	ret := vk.CreateDevice(g.pd, &vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(g.deviceExts)),
		PpEnabledExtensionNames: g.deviceExts,
		PEnabledFeatures:        &g.features,
	}, nil, &device)
	if err := checkResult(ret, "create device"); err != nil {
		return err
	}
	g.handle = device

	g.queues = make(map[QueueKind]boundQueue, len(kinds))
	for _, k := range kinds {
		family := familyOf[k]
		var q vk.Queue
		vk.GetDeviceQueue(device, family, 0, &q)
		g.queues[k] = boundQueue{handle: q, family: family}
	}

	poolSeen := map[uint32]bool{}
	for _, k := range kinds {
		family := familyOf[k]
		if poolSeen[family] {
			continue
		}
		poolSeen[family] = true
		pool, err := newCommandPool(device, family)
		if err != nil {
			vk.DestroyDevice(device, nil)
			return err
		}
		g.pools[family] = pool
	}

	if err := g.createDescriptorPool(); err != nil {
		vk.DestroyDevice(device, nil)
		return err
	}

	g.MustTransition(StatusCreated)
	return nil
}

// createDescriptorPool sizes a single pool able to satisfy
// MaxBufferRegionsPerSet-worth of uniform/storage bindings across
// MaxBindingsSize sets, generous enough for the bindings.go allocator to
// never need a second pool per Gpu.
func (g *Gpu) createDescriptorPool() error {
	sizes := []vk.DescriptorPoolSize{
		{Type: vk.DescriptorTypeUniformBuffer, DescriptorCount: MaxBindingsSize * MaxBufferRegionsPerSet},
		{Type: vk.DescriptorTypeStorageBuffer, DescriptorCount: MaxBindingsSize * MaxBufferRegionsPerSet},
		{Type: vk.DescriptorTypeCombinedImageSampler, DescriptorCount: MaxBindingsSize * MaxBufferRegionsPerSet},
	}
	var pool vk.DescriptorPool
	ret := vk.CreateDescriptorPool(g.handle, &vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		Flags:         vk.DescriptorPoolCreateFlags(vk.DescriptorPoolCreateFreeDescriptorSetBit),
		MaxSets:       MaxBindingsSize,
		PoolSizeCount: uint32(len(sizes)),
		PPoolSizes:    sizes,
	}, nil, &pool)
	if err := checkResult(ret, "create descriptor pool"); err != nil {
		return err
	}
	g.descPool = pool
	return nil
}

// Device returns the underlying vk.Device, for callers (canvas) that need
// to create their own synchronization primitives against it.
func (g *Gpu) Device() vk.Device { return g.handle }

// MemoryProperties exposes the physical device's memory properties for
// callers outside this package that allocate their own images/buffers.
func (g *Gpu) MemoryProperties() vk.PhysicalDeviceMemoryProperties { return g.memProps }

// Queue returns the queue bound for kind, or ok=false if it wasn't requested.
func (g *Gpu) Queue(kind QueueKind) (vk.Queue, uint32, bool) {
	q, ok := g.queues[kind]
	return q.handle, q.family, ok
}

func (g *Gpu) commandPool(family uint32) *commandPool {
	return g.pools[family]
}

// WaitIdle blocks until every queue on the device has drained, the
// precondition the swapchain recreation protocol requires (§4.7) before
// destroying in-flight resources.
func (g *Gpu) WaitIdle() error {
	return checkResult(vk.DeviceWaitIdle(g.handle), "device wait idle")
}

// Destroy releases the descriptor pool, command pools and logical device.
// Owned buffers/images/pipelines must already be destroyed by the caller;
// Gpu does not cascade into per-resource Destroy to avoid double-freeing
// resources a Canvas also tracks.
func (g *Gpu) Destroy() {
	if g.Status() == StatusDestroyed {
		return
	}
	if g.descPool != vk.NullDescriptorPool {
		vk.DestroyDescriptorPool(g.handle, g.descPool, nil)
	}
	for _, p := range g.pools {
		if p != nil {
			p.destroy()
		}
	}
	if g.handle != nil {
		vk.DestroyDevice(g.handle, nil)
	}
	g.MustTransition(StatusDestroyed)
}
