//go:build gpu

package vklite_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"

	"github.com/vklite/vklite"
	"github.com/vklite/vklite/backend/glfwwin"
	"github.com/vklite/vklite/canvas"
)

// TestCanvasFrameLoopAgainstRealDevice drives App/Gpu/Window/Canvas end to
// end against a real GLFW window and Vulkan instance, clearing every frame
// with no draw calls recorded. Requires an attached GPU and display, so it
// only runs when built with -tags gpu.
func TestCanvasFrameLoopAgainstRealDevice(t *testing.T) {
	gw, err := glfwwin.New()
	require.NoError(t, err)
	defer gw.Terminate()

	app, err := vklite.NewApp("canvas-gpu-test", vklite.DefaultConfig(), gw)
	require.NoError(t, err)
	defer app.Destroy()
	require.Greater(t, app.PhysicalDeviceCount(), 0)

	window, _, err := app.NewWindow(gw, 320, 240, "vklite gpu test")
	require.NoError(t, err)

	gpu, _, err := app.NewGpu(0)
	require.NoError(t, err)
	require.NoError(t, gpu.RequestQueue(0, vklite.QueueGraphics))
	require.NoError(t, gpu.RequestQueue(1, vklite.QueuePresent))
	require.NoError(t, gpu.Create(window.Surface()))

	noop := func(c *canvas.Canvas, i int) error { return nil }

	cv, err := canvas.NewCanvas(app, gpu, window, gw, canvas.Config{
		ClearColor: [4]float32{0.1, 0.1, 0.1, 1.0},
		Refill:     noop,
	})
	require.NoError(t, err)
	require.Equal(t, canvas.StatusCreated, cv.Status())

	var frames int
	require.NoError(t, cv.On(canvas.PrivateFrame, 0, func(canvas.PrivateEventKind, interface{}) {
		frames++
	}))

	deadline := time.Now().Add(2 * time.Second)
	for frames < 5 && time.Now().Before(deadline) {
		require.NoError(t, cv.Step())
	}
	require.GreaterOrEqual(t, frames, 5)

	require.Equal(t, vk.Extent2D{Width: 320, Height: 240}, cv.Extent())
}
