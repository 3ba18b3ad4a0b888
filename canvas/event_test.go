package canvas

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicFIFOPreservesOrder(t *testing.T) {
	f := newPublicFIFO(8)
	f.push(PublicEvent{Kind: EventFrame, Data: 1})
	f.push(PublicEvent{Kind: EventFrame, Data: 2})
	f.push(PublicEvent{Kind: EventFrame, Data: 3})

	ev, ok := f.dequeue()
	require.True(t, ok)
	assert.Equal(t, 1, ev.Data)

	ev, ok = f.dequeue()
	require.True(t, ok)
	assert.Equal(t, 2, ev.Data)
}

func TestPublicFIFODropsOldestWhenFullAndNothingSheddable(t *testing.T) {
	f := newPublicFIFO(2)
	f.push(PublicEvent{Kind: EventFrame, Data: 1})
	f.push(PublicEvent{Kind: EventFrame, Data: 2})
	f.push(PublicEvent{Kind: EventFrame, Data: 3})

	ev, ok := f.dequeue()
	require.True(t, ok)
	assert.Equal(t, 2, ev.Data, "oldest entry should have been dropped to admit the new one")

	ev, ok = f.dequeue()
	require.True(t, ok)
	assert.Equal(t, 3, ev.Data)
}

func TestPublicFIFOShedsStaleSameKindEventBeforeDroppingOldest(t *testing.T) {
	f := newPublicFIFO(2)
	f.items = append(f.items, PublicEvent{Kind: EventMouseMove, Data: "stale", queued: time.Now().Add(-time.Second)})
	f.items = append(f.items, PublicEvent{Kind: EventFrame, Data: "keep"})

	f.push(PublicEvent{Kind: EventMouseMove, Data: "fresh"})

	require.Len(t, f.items, 2)
	assert.Equal(t, "keep", f.items[0].Data)
	assert.Equal(t, "fresh", f.items[1].Data)
}

func TestPublicFIFODequeueUnblocksOnClose(t *testing.T) {
	f := newPublicFIFO(2)
	done := make(chan bool, 1)
	go func() {
		_, ok := f.dequeue()
		done <- ok
	}()
	time.Sleep(10 * time.Millisecond)
	f.close()
	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("dequeue did not unblock after close")
	}
}

func TestPrivateDispatcherTwoPassPriorityOrder(t *testing.T) {
	d := newPrivateDispatcher()
	var order []string

	require.NoError(t, d.on(PrivateFrame, PrivateHandler{Priority: 1, Fn: func(PrivateEventKind, interface{}) {
		order = append(order, "late-a")
	}}))
	require.NoError(t, d.on(PrivateFrame, PrivateHandler{Priority: 0, Fn: func(PrivateEventKind, interface{}) {
		order = append(order, "early-a")
	}}))
	require.NoError(t, d.on(PrivateFrame, PrivateHandler{Priority: 0, Fn: func(PrivateEventKind, interface{}) {
		order = append(order, "early-b")
	}}))
	require.NoError(t, d.on(PrivateFrame, PrivateHandler{Priority: 2, Fn: func(PrivateEventKind, interface{}) {
		order = append(order, "late-b")
	}}))

	d.emit(PrivateFrame, nil)

	assert.Equal(t, []string{"early-a", "early-b", "late-a", "late-b"}, order)
}

func TestPrivateDispatcherOnlyFiresRegisteredKind(t *testing.T) {
	d := newPrivateDispatcher()
	fired := false
	require.NoError(t, d.on(PrivateRefill, PrivateHandler{Fn: func(PrivateEventKind, interface{}) {
		fired = true
	}}))

	d.emit(PrivateFrame, nil)
	assert.False(t, fired)

	d.emit(PrivateRefill, nil)
	assert.True(t, fired)
}
