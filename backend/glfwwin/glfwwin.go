// Package glfwwin implements vklite.Backend over GLFW, grounded on the
// teacher's CoreDisplay (window/surface pairing) and platform.go's
// instance-extension-discovery idiom, generalized from asche's single
// implicit window into vklite's multi-window WindowHandle table.
package glfwwin

import (
	"sync"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"

	"github.com/vklite/vklite"
)

// Backend is a vklite.Backend and vklite.InputSource backed by GLFW.
// GLFW requires every windowing call to happen on the thread that called
// glfw.Init, so New must be called from main() after runtime.LockOSThread
// (the teacher's asche.Application does the same via glfw's own
// main-thread requirement).
type Backend struct {
	mu      sync.Mutex
	windows map[*glfw.Window]*trackedWindow
}

type trackedWindow struct {
	win    *glfw.Window
	mu     sync.Mutex
	input  []vklite.InputEvent
	mouseX float64
	mouseY float64
}

// New initializes GLFW. Call Terminate when the application shuts down.
func New() (*Backend, error) {
	if err := glfw.Init(); err != nil {
		return nil, vklite.NewError(vklite.ErrBackendFailure, "glfw init: %v", err)
	}
	return &Backend{windows: map[*glfw.Window]*trackedWindow{}}, nil
}

// Terminate releases every GLFW resource. No Backend method may be called
// afterward.
func (b *Backend) Terminate() { glfw.Terminate() }

// RequiredInstanceExtensions returns GLFW's required Vulkan instance
// extensions (VK_KHR_surface plus the platform's surface extension).
func (b *Backend) RequiredInstanceExtensions() []string {
	return glfw.GetRequiredInstanceExtensions()
}

// OpenWindow creates a GLFW window configured for Vulkan (no GL context)
// and registers its input callbacks.
func (b *Backend) OpenWindow(width, height int, title string) (vklite.WindowHandle, error) {
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		return nil, vklite.NewError(vklite.ErrBackendFailure, "glfw create window: %v", err)
	}
	tw := &trackedWindow{win: win}
	b.mu.Lock()
	b.windows[win] = tw
	b.mu.Unlock()

	win.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		tw.mu.Lock()
		tw.mouseX, tw.mouseY = x, y
		tw.input = append(tw.input, vklite.InputEvent{Kind: vklite.InputMouseMove, X: x, Y: y})
		tw.mu.Unlock()
	})
	win.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		tw.mu.Lock()
		tw.input = append(tw.input, vklite.InputEvent{
			Kind: vklite.InputMouseButton, X: tw.mouseX, Y: tw.mouseY,
			Button: glfwButtonIndex(button), Pressed: action == glfw.Press,
		})
		tw.mu.Unlock()
	})
	win.SetScrollCallback(func(_ *glfw.Window, xoff, yoff float64) {
		tw.mu.Lock()
		tw.input = append(tw.input, vklite.InputEvent{Kind: vklite.InputMouseWheel, WheelY: yoff})
		tw.mu.Unlock()
	})
	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action == glfw.Repeat {
			return
		}
		tw.mu.Lock()
		tw.input = append(tw.input, vklite.InputEvent{
			Kind: vklite.InputKey, Key: int(key), Pressed: action == glfw.Press,
			Mods: glfwModsMask(mods),
		})
		tw.mu.Unlock()
	})
	return win, nil
}

func glfwButtonIndex(b glfw.MouseButton) int {
	switch b {
	case glfw.MouseButtonMiddle:
		return 1 // middle
	case glfw.MouseButtonLeft:
		return 0 // left
	default:
		return 2 // right and anything else
	}
}

func glfwModsMask(m glfw.ModifierKey) int {
	mask := 0
	if m&glfw.ModShift != 0 {
		mask |= 1
	}
	if m&glfw.ModControl != 0 {
		mask |= 2
	}
	if m&glfw.ModAlt != 0 {
		mask |= 4
	}
	if m&glfw.ModSuper != 0 {
		mask |= 8
	}
	return mask
}

// CreateSurface creates the vk.Surface for handle's GLFW window, mirroring
// CoreDisplay.GetVulkanSurface.
func (b *Backend) CreateSurface(instance vk.Instance, handle vklite.WindowHandle) (vk.Surface, error) {
	win := handle.(*glfw.Window)
	surfacePtr, err := win.CreateWindowSurface(instance, nil)
	if err != nil {
		return vk.NullSurface, vklite.NewError(vklite.ErrBackendFailure, "glfw create surface: %v", err)
	}
	return vk.SurfaceFromPointer(surfacePtr), nil
}

// Size reports the window's current framebuffer size in pixels.
func (b *Backend) Size(handle vklite.WindowHandle) (int, int) {
	return handle.(*glfw.Window).GetFramebufferSize()
}

// ShouldClose reports whether GLFW has flagged the window for closing.
func (b *Backend) ShouldClose(handle vklite.WindowHandle) bool {
	return handle.(*glfw.Window).ShouldClose()
}

// PollEvents pumps GLFW's platform event queue; must run on the main thread.
func (b *Backend) PollEvents() { glfw.PollEvents() }

// PollInput drains input buffered by this window's callbacks since the
// last call, satisfying vklite.InputSource.
func (b *Backend) PollInput(handle vklite.WindowHandle) []vklite.InputEvent {
	win, ok := handle.(*glfw.Window)
	if !ok {
		return nil
	}
	b.mu.Lock()
	tw := b.windows[win]
	b.mu.Unlock()
	if tw == nil {
		return nil
	}
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if len(tw.input) == 0 {
		return nil
	}
	out := tw.input
	tw.input = nil
	return out
}

// CloseWindow destroys the GLFW window and drops it from the tracking table.
func (b *Backend) CloseWindow(handle vklite.WindowHandle) {
	win, ok := handle.(*glfw.Window)
	if !ok {
		return
	}
	b.mu.Lock()
	delete(b.windows, win)
	b.mu.Unlock()
	win.Destroy()
}
