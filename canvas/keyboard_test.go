package canvas

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyboardStateTracksHeldKeys(t *testing.T) {
	k := newKeyboard()
	assert.Equal(t, KeyboardInactive, k.state())

	k.event(Key('a'), KeyPress, 0)
	assert.Equal(t, KeyboardActive, k.state())

	k.event(Key('a'), KeyRelease, 0)
	assert.Equal(t, KeyboardInactive, k.state())
}

func TestKeyboardEventCarriesCaptureFlag(t *testing.T) {
	k := newKeyboard()
	k.setCapture(true)
	ev := k.event(Key('b'), KeyPress, ModShift)
	assert.True(t, ev.Captured)
	assert.Equal(t, ModShift, ev.Mods)
	assert.Equal(t, KeyPress, ev.Action)
}

func TestKeyboardMultipleKeysHeldConcurrently(t *testing.T) {
	k := newKeyboard()
	k.event(Key('a'), KeyPress, 0)
	k.event(Key('b'), KeyPress, 0)
	assert.Equal(t, KeyboardActive, k.state())

	k.event(Key('a'), KeyRelease, 0)
	assert.Equal(t, KeyboardActive, k.state())

	k.event(Key('b'), KeyRelease, 0)
	assert.Equal(t, KeyboardInactive, k.state())
}
