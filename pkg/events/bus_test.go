package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribeEmit_OrderPreserved(t *testing.T) {
	b := New(nil)
	var order []int
	b.Subscribe(func(Payload) { order = append(order, 1) })
	b.Subscribe(func(Payload) { order = append(order, 2) })
	b.Subscribe(func(Payload) { order = append(order, 3) })

	b.Emit(ItemsSet, nil)
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestEmit_PassesPayload(t *testing.T) {
	b := New(nil)
	var got Payload
	b.Subscribe(func(p Payload) { got = p })
	b.Emit(RangeLoaded, 42)
	assert.Equal(t, RangeLoaded, got.Event)
	assert.Equal(t, 42, got.Data)
	assert.False(t, got.Timestamp.IsZero())
}

func TestUnsubscribe_StopsFutureDelivery(t *testing.T) {
	b := New(nil)
	count := 0
	unsub := b.Subscribe(func(Payload) { count++ })
	b.Emit(ItemsSet, nil)
	unsub()
	b.Emit(ItemsSet, nil)
	assert.Equal(t, 1, count)
}

func TestPanickingListener_DoesNotAbortOthers(t *testing.T) {
	b := New(nil)
	var secondCalled bool
	b.Subscribe(func(Payload) { panic("boom") })
	b.Subscribe(func(Payload) { secondCalled = true })

	require.NotPanics(t, func() { b.Emit(ItemsSet, nil) })
	assert.True(t, secondCalled)
}

func TestPanickingListener_ReportedViaPanicReporter(t *testing.T) {
	var reportedEvent Name
	var reportedVal any
	b := New(func(event Name, recovered any) {
		reportedEvent = event
		reportedVal = recovered
	})
	b.Subscribe(func(Payload) { panic("boom") })
	b.Emit(RangeFailed, nil)

	assert.Equal(t, RangeFailed, reportedEvent)
	assert.Equal(t, "boom", reportedVal)
}

func TestClose_MakesSubscribeAndEmitNoOps(t *testing.T) {
	b := New(nil)
	called := false
	b.Subscribe(func(Payload) { called = true })
	b.Close()

	b.Emit(ItemsSet, nil)
	assert.False(t, called)

	unsub := b.Subscribe(func(Payload) { called = true })
	b.Emit(ItemsSet, nil)
	unsub()
	assert.False(t, called)
}
