package canvas

import (
	"sync"
	"time"

	"github.com/vklite/vklite"
)

// PublicEventKind enumerates the public event types §4.9 names; these are
// the ones dispatched off the loop thread to the consumer event thread.
type PublicEventKind int

const (
	EventInit PublicEventKind = iota
	EventMouseButton
	EventMouseMove
	EventMouseWheel
	EventMouseDragBegin
	EventMouseDragEnd
	EventMouseClick
	EventMouseDoubleClick
	EventKey
	EventFrame
	EventScreencast
)

// PublicEvent is one enqueued public event; Data carries the kind-specific
// payload (MouseState, KeyEvent, frame index, …).
type PublicEvent struct {
	Kind    PublicEventKind
	Data    interface{}
	queued  time.Time
}

// PublicHandler is a user callback registered for a public event kind.
type PublicHandler func(PublicEvent)

// maxPendingDuration is the §4.9 shedding threshold: an event older than
// this when a same-kind event arrives gets dropped to keep FIFO latency
// bounded, per the SUPPLEMENTED "Event FIFO shedding" feature.
const maxPendingDuration = 500 * time.Millisecond

// publicFIFO is the bounded, lock-protected producer/consumer queue
// between the loop thread and the event thread (§5: "the event FIFO is
// the only intentionally shared mutable structure").
type publicFIFO struct {
	mu       sync.Mutex
	cond     *sync.Cond
	items    []PublicEvent
	capacity int
	closed   bool
}

func newPublicFIFO(capacity int) *publicFIFO {
	f := &publicFIFO{capacity: capacity}
	f.cond = sync.NewCond(&f.mu)
	return f
}

// push enqueues ev without blocking the producer. It first sheds the
// oldest same-kind event older than maxPendingDuration, if any; if the
// queue is still full it drops the oldest event outright rather than
// block the loop thread (§5: "the producer never does").
func (f *publicFIFO) push(ev PublicEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	ev.queued = time.Now()
	shed := f.shedLocked(ev.Kind)
	if !shed && len(f.items) >= f.capacity {
		f.items = f.items[1:]
	}
	f.items = append(f.items, ev)
	f.cond.Signal()
}

func (f *publicFIFO) shedLocked(kind PublicEventKind) bool {
	now := time.Now()
	for i, it := range f.items {
		if it.Kind == kind && now.Sub(it.queued) > maxPendingDuration {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return true
		}
	}
	return false
}

// dequeue blocks until an event is available or the FIFO is closed.
func (f *publicFIFO) dequeue() (PublicEvent, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for len(f.items) == 0 && !f.closed {
		f.cond.Wait()
	}
	if len(f.items) == 0 {
		return PublicEvent{}, false
	}
	ev := f.items[0]
	f.items = f.items[1:]
	return ev, true
}

func (f *publicFIFO) close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	f.cond.Broadcast()
}

// PrivateEventKind enumerates the private event types §4.9 names,
// dispatched synchronously on the loop thread.
type PrivateEventKind int

const (
	PrivateInit PrivateEventKind = iota
	PrivateRefill
	PrivateInteract
	PrivateFrame
	PrivateImgui
	PrivateTimer
	PrivateResize
	PrivatePreSend
	PrivatePostSend
	PrivateDestroy
)

// PrivateHandler is a loop-thread callback; Priority > 0 handlers fire in
// a second pass, strictly after every Priority == 0 handler of the same
// event kind (§4.9, SUPPLEMENTED "Event priority two-pass dispatch").
type PrivateHandler struct {
	Fn       func(kind PrivateEventKind, data interface{})
	Priority int
}

// privateDispatcher holds the registered private handlers, synchronous and
// single-threaded (the loop thread owns it; no locking needed).
type privateDispatcher struct {
	handlers map[PrivateEventKind][]PrivateHandler
}

func newPrivateDispatcher() *privateDispatcher {
	return &privateDispatcher{handlers: map[PrivateEventKind][]PrivateHandler{}}
}

// on registers h for kind; if len(handlers) would exceed MaxEventCallbacks
// across all kinds combined, it errors (§6 fixed maxima).
func (d *privateDispatcher) on(kind PrivateEventKind, h PrivateHandler) error {
	total := 0
	for _, hs := range d.handlers {
		total += len(hs)
	}
	if total >= vklite.MaxEventCallbacks {
		return vklite.NewError(vklite.ErrCapacityExceeded, "%d registered event callbacks exceeds max %d", total, vklite.MaxEventCallbacks)
	}
	d.handlers[kind] = append(d.handlers[kind], h)
	return nil
}

// emit runs every zero-priority handler registered for kind, in
// registration order, then every positive-priority handler, also in
// registration order (§4.9's two-pass rule).
func (d *privateDispatcher) emit(kind PrivateEventKind, data interface{}) {
	hs := d.handlers[kind]
	if len(hs) == 0 {
		return
	}
	for _, h := range hs {
		if h.Priority == 0 {
			h.Fn(kind, data)
		}
	}
	for _, h := range hs {
		if h.Priority > 0 {
			h.Fn(kind, data)
		}
	}
}
