package vklite

import vk "github.com/vulkan-go/vulkan"

// Backend is the windowing collaborator spec §6 specifies by interface
// only: vklite never imports a window toolkit directly, so it can run
// headless (compute-only Gpus) or against any concrete implementation —
// backend/glfwwin is the one shipped here, grounded on the teacher's
// CoreDisplay/Platform. NewApp calls RequiredInstanceExtensions once,
// before the instance exists; every other method needs a live vk.Instance
// and is called afterward.
type Backend interface {
	// RequiredInstanceExtensions lists the instance extensions the
	// windowing system needs enabled (e.g. VK_KHR_surface and its
	// platform sibling), queried before instance creation.
	RequiredInstanceExtensions() []string

	// OpenWindow creates a native window of the given size and title,
	// returning an opaque handle passed back into CreateSurface/Size/
	// ShouldClose/PollEvents/CloseWindow.
	OpenWindow(width, height int, title string) (WindowHandle, error)

	// CreateSurface creates the vk.Surface for handle against instance.
	CreateSurface(instance vk.Instance, handle WindowHandle) (vk.Surface, error)

	// Size reports the window's current framebuffer size in pixels.
	Size(handle WindowHandle) (width, height int)

	// ShouldClose reports whether the platform has requested the window close.
	ShouldClose(handle WindowHandle) bool

	// PollEvents pumps the platform's event queue; it must be called from
	// the same thread OpenWindow was called on (GLFW's threading rule).
	PollEvents()

	// CloseWindow destroys the native window.
	CloseWindow(handle WindowHandle)
}

// WindowHandle is an opaque reference into a Backend's own window table.
type WindowHandle interface{}

// InputEventKind tags the union held in InputEvent.
type InputEventKind int

const (
	InputMouseMove InputEventKind = iota
	InputMouseButton
	InputMouseWheel
	InputKey
)

// InputEvent is one raw input notification a Backend buffers between
// PollEvents calls and hands back through PollInput; canvas translates
// these into its own mouse/keyboard state machines. Kept as plain
// primitives (not canvas's Button/Key types) so this package never
// imports canvas.
type InputEvent struct {
	Kind InputEventKind

	X, Y float64 // MouseMove, MouseButton: cursor position

	Button  int  // MouseButton: 0=left, 1=middle, 2=right
	Pressed bool // MouseButton, Key: true=press, false=release

	WheelY float64 // MouseWheel: vertical scroll delta

	Key  int // Key: backend-native keycode
	Mods int // Key: bitmask, bit0=shift bit1=ctrl bit2=alt bit3=super
}

// InputSource is implemented by a Backend that also wants to feed the
// canvas event system; PollInput drains whatever input happened since
// the last call, in order. A Backend that leaves this unimplemented
// simply produces no public mouse/key events.
type InputSource interface {
	PollInput(handle WindowHandle) []InputEvent
}
