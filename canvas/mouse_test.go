package canvas

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMousePressReleaseResolvesToClick(t *testing.T) {
	m := newMouse()
	t0 := time.Now()
	m.press(MouseLeft, Pos{10, 10}, t0)
	resolved := m.release(t0.Add(50 * time.Millisecond))
	assert.Equal(t, MouseClick, resolved)
}

func TestMouseReleaseAfterClickThresholdIsInactive(t *testing.T) {
	m := newMouse()
	t0 := time.Now()
	m.press(MouseLeft, Pos{10, 10}, t0)
	resolved := m.release(t0.Add(clickT + time.Millisecond))
	assert.Equal(t, MouseInactive, resolved)
}

func TestMouseDoubleClickWithinThreshold(t *testing.T) {
	m := newMouse()
	t0 := time.Now()

	m.press(MouseLeft, Pos{10, 10}, t0)
	first := m.release(t0.Add(10 * time.Millisecond))
	assert.Equal(t, MouseClick, first)

	t1 := t0.Add(100 * time.Millisecond)
	m.press(MouseLeft, Pos{10, 10}, t1)
	second := m.release(t1.Add(10 * time.Millisecond))
	assert.Equal(t, MouseDoubleClick, second)
}

func TestMouseSecondClickOutsideThresholdIsPlainClick(t *testing.T) {
	m := newMouse()
	t0 := time.Now()

	m.press(MouseLeft, Pos{10, 10}, t0)
	m.release(t0.Add(10 * time.Millisecond))

	t1 := t0.Add(dblClickT + time.Millisecond)
	m.press(MouseLeft, Pos{10, 10}, t1)
	second := m.release(t1.Add(10 * time.Millisecond))
	assert.Equal(t, MouseClick, second)
}

func TestMouseMoveBeyondDragThresholdStartsDrag(t *testing.T) {
	m := newMouse()
	t0 := time.Now()
	m.press(MouseLeft, Pos{0, 0}, t0)

	_, dragBegin := m.move(Pos{0, 0}, t0)
	assert.False(t, dragBegin)

	_, dragBegin = m.move(Pos{100, 0}, t0)
	assert.True(t, dragBegin)

	resolved := m.release(t0.Add(time.Millisecond))
	assert.Equal(t, MouseDrag, resolved)
}

func TestMouseCaptureOverridesGestureResolution(t *testing.T) {
	m := newMouse()
	m.setCapture(true)
	t0 := time.Now()
	m.press(MouseLeft, Pos{0, 0}, t0)
	resolved := m.release(t0.Add(time.Millisecond))
	assert.Equal(t, MouseCapture, resolved)
}

func TestMouseWheelIsOneShot(t *testing.T) {
	m := newMouse()
	m.pos = Pos{5, 5}
	state := m.wheel(-1.5)
	assert.Equal(t, MouseWheel, state.Kind)
	assert.Equal(t, -1.5, state.WheelDy)
	assert.Equal(t, Pos{5, 5}, state.Pos)
}
