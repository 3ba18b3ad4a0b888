package vklite

// Fixed capacities from the public API contract (spec §6). MaxGPUs,
// MaxWindows, MaxBindingsSize, MaxCommandBuffersPerSet and
// MaxEventCallbacks are checked when an object is added, and exceeding
// them returns ErrCapacityExceeded. MaxSwapchainImages and
// MaxFramesInFlight are clamps, MaxQueueFamilies sizes the command-pool
// array, MaxFIFOCapacity bounds the public event FIFO (which drops its
// oldest event when full), and MaxBufferRegionsPerSet only sizes the
// descriptor pool. MaxQueues is not checked anywhere.
const (
	MaxGPUs                  = 8
	MaxWindows                = 8
	MaxSwapchainImages        = 8
	MaxFramesInFlight         = 2
	MaxQueues                 = 16
	MaxQueueFamilies          = 8
	MaxBindingsSize           = 16
	MaxBufferRegionsPerSet    = 16
	MaxCommandBuffersPerSet   = 16
	MaxEventCallbacks         = 32
	MaxFIFOCapacity           = 256
)
