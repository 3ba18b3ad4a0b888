package vklite

import (
	"fmt"
	"log"
	"os"

	vk "github.com/vulkan-go/vulkan"
)

// App is the top-level object owning the Vulkan instance, the
// fixed-capacity tables of GPUs and Windows opened against it, and an
// unbounded list of the Canvases registered with it. It mirrors the
// teacher's BaseCore, trading its name-keyed maps for fixed-capacity,
// stable-identity tables (§9: a GPU/Window index, once handed out, stays
// valid for the table's lifetime).
type App struct {
	Lifecycle

	name     string
	instance vk.Instance
	layers   []string
	exts     []string

	infoLog *log.Logger
	warnLog *log.Logger
	errLog  *log.Logger

	physicalDevices []vk.PhysicalDevice

	gpus    [MaxGPUs]*Gpu
	gpuN    int
	windows [MaxWindows]*Window
	windowN int
	canvases []Destroyable

	cfg Config
}

// Destroyable is any object whose lifetime the App cascades into on
// Destroy; the canvas package's Canvas satisfies this without vklite
// needing to import it (canvas already imports vklite).
type Destroyable interface {
	Destroy()
}

// RegisterCanvas tracks c so App.Destroy tears it down before its Gpu and
// Window. Canvas constructors call this themselves.
func (a *App) RegisterCanvas(c Destroyable) {
	a.canvases = append(a.canvases, c)
}

// Config carries process-wide toggles, grounded on the teacher's Usage
// string/bool prop maps but narrowed to the handful spec.md actually names.
type Config struct {
	Validation  bool
	PresentMode vk.PresentMode
	FPS         int
}

// DefaultConfig returns a Config with validation off, FIFO presentation and
// FPS 60; a positive integer in VKL_FPS replaces FPS, read once, at this
// call. NewApp uses only Validation from its Config: nothing in this module
// reads FPS or PresentMode back, and a canvas takes its present mode from
// canvas.Config.
func DefaultConfig() Config {
	cfg := Config{
		Validation:  false,
		PresentMode: vk.PresentModeFifo,
		FPS:         60,
	}
	if v := os.Getenv("VKL_FPS"); v != "" {
		var fps int
		if _, err := fmt.Sscanf(v, "%d", &fps); err == nil && fps > 0 {
			cfg.FPS = fps
		}
	}
	return cfg
}

// NewApp creates the Vulkan instance for name, enabling validation layers
// per cfg.Validation, and enumerates the available physical devices. The
// Backend supplies the windowing system's required instance extensions
// (§6); it may be nil for headless/compute-only use.
func NewApp(name string, cfg Config, backend Backend) (*App, error) {
	a := &App{name: name, cfg: cfg}

	a.infoLog = log.New(os.Stdout, "vklite: INFO: ", log.Ldate|log.Ltime)
	a.warnLog = log.New(os.Stdout, "vklite: WARN: ", log.Ldate|log.Ltime)
	a.errLog = log.New(os.Stderr, "vklite: ERROR: ", log.Ldate|log.Ltime)

	required, err := ValidationLayers()
	if err != nil {
		return nil, err
	}
	wanted := []string{"VK_LAYER_KHRONOS_validation"}
	if cfg.Validation {
		if ok, missing := hasAll(required, wanted); ok {
			a.layers = wanted
		} else {
			a.warnLog.Printf("requested validation layers unavailable: %v", missing)
		}
	}

	avail, err := InstanceExtensions()
	if err != nil {
		return nil, err
	}
	exts := []string{}
	if backend != nil {
		exts = append(exts, backend.RequiredInstanceExtensions()...)
	}
	if ok, missing := hasAll(avail, exts); !ok {
		return nil, errorf(ErrUnsupported, "missing required instance extensions: %v", missing)
	}
	a.exts = exts

	var instance vk.Instance
	ret := vk.CreateInstance(&vk.InstanceCreateInfo{
		SType: vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: &vk.ApplicationInfo{
			SType:              vk.StructureTypeApplicationInfo,
			ApiVersion:         uint32(vk.MakeVersion(1, 1, 0)),
			ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
			PApplicationName:   name + "\x00",
			PEngineName:        "vklite\x00",
		},
		EnabledExtensionCount:   uint32(len(exts)),
		PpEnabledExtensionNames: exts,
		EnabledLayerCount:       uint32(len(a.layers)),
		PpEnabledLayerNames:     a.layers,
	}, nil, &instance)
	if err := checkResult(ret, "create instance"); err != nil {
		return nil, err
	}
	a.instance = instance

	if err := vk.InitInstance(instance); err != nil {
		vk.DestroyInstance(instance, nil)
		return nil, wrapf(ErrBackendFailure, err, "init instance function pointers")
	}

	var count uint32
	ret = vk.EnumeratePhysicalDevices(instance, &count, nil)
	if err := checkResult(ret, "enumerate physical devices"); err != nil {
		vk.DestroyInstance(instance, nil)
		return nil, err
	}
	if count == 0 {
		vk.DestroyInstance(instance, nil)
		return nil, errorf(ErrUnsupported, "no compatible physical device")
	}
	devices := make([]vk.PhysicalDevice, count)
	ret = vk.EnumeratePhysicalDevices(instance, &count, devices)
	if err := checkResult(ret, "enumerate physical devices"); err != nil {
		vk.DestroyInstance(instance, nil)
		return nil, err
	}
	a.physicalDevices = devices

	a.MustTransition(StatusCreated)
	return a, nil
}

// PhysicalDeviceCount reports how many physical devices the instance saw.
func (a *App) PhysicalDeviceCount() int { return len(a.physicalDevices) }

// NewGpu reserves a GPU table slot against the physical device at index
// idx, appending it to the App's fixed-capacity GPU table. The returned
// index is stable for the life of the App (§9). Construction is two-phase
// (§4.1): the returned Gpu still needs RequestQueue and Create before it
// has a logical device.
func (a *App) NewGpu(idx int) (*Gpu, int, error) {
	if idx < 0 || idx >= len(a.physicalDevices) {
		return nil, -1, errorf(ErrInvalidIndex, "physical device index %d out of range [0,%d)", idx, len(a.physicalDevices))
	}
	if a.gpuN >= MaxGPUs {
		return nil, -1, errorf(ErrCapacityExceeded, "app already holds %d gpus (max %d)", a.gpuN, MaxGPUs)
	}
	gpu := newGpu(a, a.physicalDevices[idx])
	slot := a.gpuN
	a.gpus[slot] = gpu
	a.gpuN++
	return gpu, slot, nil
}

// Gpu returns the GPU previously created at slot, or nil if out of range.
func (a *App) Gpu(slot int) *Gpu {
	if slot < 0 || slot >= a.gpuN {
		return nil
	}
	return a.gpus[slot]
}

// NewWindow opens a platform window through backend and appends it to the
// App's fixed-capacity window table.
func (a *App) NewWindow(backend Backend, width, height int, title string) (*Window, int, error) {
	if a.windowN >= MaxWindows {
		return nil, -1, errorf(ErrCapacityExceeded, "app already holds %d windows (max %d)", a.windowN, MaxWindows)
	}
	w, err := newWindow(a, backend, width, height, title)
	if err != nil {
		return nil, -1, err
	}
	slot := a.windowN
	a.windows[slot] = w
	a.windowN++
	return w, slot, nil
}

// Window returns the window previously created at slot, or nil if out of range.
func (a *App) Window(slot int) *Window {
	if slot < 0 || slot >= a.windowN {
		return nil
	}
	return a.windows[slot]
}

// Destroy tears down every owned canvas, window and gpu, then the
// instance itself, in reverse-dependency order (mirrors the teacher's
// cascading release in instance.go).
func (a *App) Destroy() {
	if a.Status() == StatusDestroyed {
		return
	}
	for _, c := range a.canvases {
		c.Destroy()
	}
	for i := 0; i < a.windowN; i++ {
		a.windows[i].Destroy()
	}
	for i := 0; i < a.gpuN; i++ {
		a.gpus[i].Destroy()
	}
	if a.instance != nil {
		vk.DestroyInstance(a.instance, nil)
	}
	a.MustTransition(StatusDestroyed)
}
