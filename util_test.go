package vklite

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasAll(t *testing.T) {
	available := []string{"VK_KHR_surface", "VK_KHR_swapchain", "VK_EXT_debug_report"}

	ok, missing := hasAll(available, []string{"VK_KHR_surface"})
	assert.True(t, ok)
	assert.Empty(t, missing)

	ok, missing = hasAll(available, []string{"VK_KHR_surface", "VK_KHR_ray_tracing"})
	assert.False(t, ok)
	assert.Equal(t, []string{"VK_KHR_ray_tracing"}, missing)
}

func TestHasAllEmptyRequired(t *testing.T) {
	ok, missing := hasAll(nil, nil)
	assert.True(t, ok)
	assert.Empty(t, missing)
}

func TestSliceUint32RoundTrip(t *testing.T) {
	data := []byte{1, 0, 0, 0, 2, 0, 0, 0}
	words := sliceUint32(data)
	assert.Equal(t, []uint32{1, 2}, words)
}
