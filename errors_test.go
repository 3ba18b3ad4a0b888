package vklite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	vk "github.com/vulkan-go/vulkan"
)

func TestCheckResultSuccess(t *testing.T) {
	assert.NoError(t, checkResult(vk.Success, "op"))
}

func TestCheckResultMapsDeviceLost(t *testing.T) {
	err := checkResult(vk.ErrorDeviceLost, "submit")
	assert.Error(t, err)
	assert.True(t, IsKind(err, ErrDeviceLost))
}

func TestCheckResultMapsOutOfDateToTransient(t *testing.T) {
	err := checkResult(vk.ErrorOutOfDate, "acquire")
	assert.Error(t, err)
	assert.True(t, IsKind(err, ErrTransient))
}

func TestCheckResultDefaultsToBackendFailure(t *testing.T) {
	err := checkResult(vk.ErrorInitializationFailed, "create instance")
	assert.Error(t, err)
	assert.True(t, IsKind(err, ErrBackendFailure))
}

func TestIsKindFalseForPlainError(t *testing.T) {
	assert.False(t, IsKind(assert.AnError, ErrBackendFailure))
}
