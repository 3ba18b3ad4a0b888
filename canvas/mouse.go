package canvas

import "time"

// MouseButton identifies which physical button a mouse event concerns.
type MouseButton int

const (
	MouseLeft MouseButton = iota
	MouseMiddle
	MouseRight
)

// MouseStateKind is one of the six states §4.9's mouse state machine
// names: inactive is the resting state, drag/wheel/click/double_click are
// transient interaction states, and capture is an overlay a UI component
// can force to keep receiving events regardless of the underlying state.
type MouseStateKind int

const (
	MouseInactive MouseStateKind = iota
	MouseDrag
	MouseWheel
	MouseClick
	MouseDoubleClick
	MouseCapture
)

// Mouse thresholds named in §4.9: a press/release closer together than
// clickT and with less movement than dragT is a click; two clicks within
// dblClickT of each other collapse into a double-click; movement beyond
// dragT while the button is held starts a drag instead.
const (
	dragT      = 5.0 // pixels
	clickT     = 250 * time.Millisecond
	dblClickT  = 350 * time.Millisecond
)

// Pos is a 2D cursor position in window coordinates.
type Pos struct{ X, Y float64 }

func (p Pos) sub(o Pos) Pos { return Pos{p.X - o.X, p.Y - o.Y} }
func (p Pos) len() float64 {
	return p.X*p.X + p.Y*p.Y // squared length is enough for threshold comparisons
}

// MouseState is the public payload attached to mouse events (§4.9,
// "MouseState" glossary entry).
type MouseState struct {
	Kind      MouseStateKind
	Button    MouseButton
	Pos       Pos
	PressPos  Pos
	WheelDy   float64
	Captured  bool
}

// mouse tracks the interaction state machine for one Canvas. It is only
// ever touched from the loop thread (poll happens there), so it needs no
// locking of its own.
type mouse struct {
	state    MouseStateKind
	button   MouseButton
	pos      Pos
	pressPos Pos
	pressAt  time.Time
	lastClickAt time.Time
	captured bool
}

func newMouse() *mouse { return &mouse{state: MouseInactive} }

// move updates the tracked cursor position and, once the cursor has moved
// dragT or more from the press position during a click, transitions
// click → drag and reports a drag_begin; an inactive mouse never drags.
func (m *mouse) move(p Pos, now time.Time) (emitMove bool, dragBegin bool) {
	m.pos = p
	if m.captured {
		return true, false
	}
	switch m.state {
	case MouseInactive:
		return true, false
	default:
		if m.state != MouseDrag && p.sub(m.pressPos).len() >= dragT*dragT {
			m.state = MouseDrag
			return true, true
		}
		return true, false
	}
}

// press begins tracking a new button-down as a provisional click.
// Double-click detection happens in release, which compares only the time
// since the previous click; the press positions of the two clicks are not
// compared.
func (m *mouse) press(b MouseButton, p Pos, now time.Time) {
	m.button = b
	m.pressPos = p
	m.pos = p
	m.pressAt = now
	if m.captured {
		return
	}
	m.state = MouseClick // provisional; move() may escalate to drag
}

// release ends the current press and returns the resolved terminal state
// for this gesture: MouseClick, MouseDoubleClick, or MouseDrag (caller
// emits drag_end), MouseCapture while the mouse is captured, or
// MouseInactive if nothing resolved (e.g. a press held longer than clickT).
func (m *mouse) release(now time.Time) MouseStateKind {
	if m.captured {
		return MouseCapture
	}
	resolved := m.state
	switch resolved {
	case MouseDrag:
		m.state = MouseInactive
		return MouseDrag
	case MouseClick:
		elapsed := now.Sub(m.pressAt)
		if elapsed > clickT {
			m.state = MouseInactive
			return MouseInactive
		}
		if !m.lastClickAt.IsZero() && now.Sub(m.lastClickAt) <= dblClickT {
			m.lastClickAt = time.Time{}
			m.state = MouseInactive
			return MouseDoubleClick
		}
		m.lastClickAt = now
		m.state = MouseInactive
		return MouseClick
	default:
		m.state = MouseInactive
		return MouseInactive
	}
}

// wheel is a one-shot state: it never persists across polls.
func (m *mouse) wheel(dy float64) MouseState {
	return MouseState{Kind: MouseWheel, Pos: m.pos, WheelDy: dy, Captured: m.captured}
}

// setCapture forces (or releases) the capture overlay, e.g. while a UI
// widget owns the pointer.
func (m *mouse) setCapture(on bool) { m.captured = on }
