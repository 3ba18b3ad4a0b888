package canvas

// Key identifies a keyboard key; the backend maps its native keycodes
// into this space (kept intentionally small: callers needing more than
// action/mod bits wire that behavior at the backend layer).
type Key int

// KeyAction is whether a Key event is a press or a release; there is no
// repeat event, matching the two-state model §4.9 describes.
type KeyAction int

const (
	KeyRelease KeyAction = iota
	KeyPress
)

// KeyMod is a bitmask of held modifier keys at the time of the event.
type KeyMod int

const (
	ModShift KeyMod = 1 << iota
	ModControl
	ModAlt
	ModSuper
)

// KeyEvent is the public payload attached to EventKey (§4.9).
type KeyEvent struct {
	Key      Key
	Action   KeyAction
	Mods     KeyMod
	Captured bool
}

// KeyboardStateKind is the two-state model §4.9 names for keyboards,
// plus the same capture overlay mouse has.
type KeyboardStateKind int

const (
	KeyboardInactive KeyboardStateKind = iota
	KeyboardActive
)

// keyboard tracks which keys are currently held and the capture overlay.
// Like mouse, it is only ever touched from the loop thread.
type keyboard struct {
	held     map[Key]bool
	captured bool
}

func newKeyboard() *keyboard { return &keyboard{held: map[Key]bool{}} }

// state reports whether any key is currently held.
func (k *keyboard) state() KeyboardStateKind {
	if len(k.held) > 0 {
		return KeyboardActive
	}
	return KeyboardInactive
}

// event records a press/release and returns the KeyEvent to emit.
func (k *keyboard) event(key Key, action KeyAction, mods KeyMod) KeyEvent {
	switch action {
	case KeyPress:
		k.held[key] = true
	case KeyRelease:
		delete(k.held, key)
	}
	return KeyEvent{Key: key, Action: action, Mods: mods, Captured: k.captured}
}

func (k *keyboard) setCapture(on bool) { k.captured = on }
