package vklite

import vk "github.com/vulkan-go/vulkan"

// Window pairs a Backend's native window handle with the vk.Surface
// created against it, grounded on the teacher's CoreDisplay.
type Window struct {
	Lifecycle

	app     *App
	backend Backend
	handle  WindowHandle
	surface vk.Surface
}

func newWindow(app *App, backend Backend, width, height int, title string) (*Window, error) {
	if backend == nil {
		return nil, errorf(ErrNotConfigured, "window requires a Backend")
	}
	handle, err := backend.OpenWindow(width, height, title)
	if err != nil {
		return nil, wrapf(ErrBackendFailure, err, "open window")
	}
	surface, err := backend.CreateSurface(app.instance, handle)
	if err != nil {
		backend.CloseWindow(handle)
		return nil, wrapf(ErrBackendFailure, err, "create surface")
	}
	w := &Window{app: app, backend: backend, handle: handle, surface: surface}
	w.MustTransition(StatusCreated)
	return w, nil
}

// Size reports the window's current framebuffer size in pixels.
func (w *Window) Size() (int, int) { return w.backend.Size(w.handle) }

// ShouldClose reports whether the platform wants this window closed.
func (w *Window) ShouldClose() bool { return w.backend.ShouldClose(w.handle) }

// Surface returns the vk.Surface created against this window.
func (w *Window) Surface() vk.Surface { return w.surface }

// Handle returns the backend's native window handle, for callers (canvas)
// that need to pass it back into Backend methods like InputSource.PollInput.
func (w *Window) Handle() WindowHandle { return w.handle }

// Destroy destroys the vk.Surface and the native window.
func (w *Window) Destroy() {
	if w.Status() == StatusDestroyed {
		return
	}
	if w.surface != vk.NullSurface {
		vk.DestroySurface(w.app.instance, w.surface, nil)
	}
	w.backend.CloseWindow(w.handle)
	w.MustTransition(StatusDestroyed)
}
