package vklite

// Status is the lifecycle tag every core object carries, per the object
// status model: init -> created -> need-update -> destroyed, with an
// intermediate need-destroy used by the canvas. A created object has all
// backend handles non-null; need-update means host-side descriptor state
// has diverged from device state; destroyed objects must never be reused.
type Status int

const (
	StatusInit Status = iota
	StatusCreated
	StatusNeedUpdate
	StatusNeedDestroy
	StatusDestroyed
)

func (s Status) String() string {
	switch s {
	case StatusInit:
		return "init"
	case StatusCreated:
		return "created"
	case StatusNeedUpdate:
		return "need-update"
	case StatusNeedDestroy:
		return "need-destroy"
	case StatusDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// transitions encodes the legal status edges (P1: lifecycle monotonicity).
// destroyed has no outgoing edges; need-update only returns to created.
var transitions = map[Status]map[Status]bool{
	StatusInit:       {StatusCreated: true, StatusNeedDestroy: true, StatusDestroyed: true},
	StatusCreated:    {StatusNeedUpdate: true, StatusNeedDestroy: true, StatusDestroyed: true},
	StatusNeedUpdate: {StatusCreated: true, StatusNeedDestroy: true, StatusDestroyed: true},
	StatusNeedDestroy: {StatusDestroyed: true},
	StatusDestroyed:  {},
}

// CanTransition reports whether the move from cur to next is legal.
func CanTransition(cur, next Status) bool {
	if cur == next {
		return true
	}
	edges, ok := transitions[cur]
	if !ok {
		return false
	}
	return edges[next]
}

// Lifecycle is embedded by every core object to track and guard its status.
type Lifecycle struct {
	status Status
}

// Status returns the current lifecycle status.
func (l *Lifecycle) Status() Status {
	return l.status
}

// Transition moves the lifecycle to next, returning ErrInvalidTransition
// if the move violates the monotonic status graph.
func (l *Lifecycle) Transition(next Status) error {
	if !CanTransition(l.status, next) {
		return errorf(ErrInvalidTransition, "cannot move from %s to %s", l.status, next)
	}
	l.status = next
	return nil
}

// MustTransition is Transition but panics on violation; used internally
// where the caller has already validated the edge is legal.
func (l *Lifecycle) MustTransition(next Status) {
	if err := l.Transition(next); err != nil {
		panic(err)
	}
}
