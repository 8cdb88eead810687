package event

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/postflow/pkg/postflow"
)

// TestBus_PublishToSubscriber tests basic delivery.
func TestBus_PublishToSubscriber(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ch, cancel := bus.Subscribe("run-1")
	defer cancel()

	bus.Publish(Progress{RunID: "run-1", Stage: "research", Status: "started"})

	select {
	case got := <-ch:
		assert.Equal(t, "run-1", got.RunID)
		assert.Equal(t, "research", got.Stage)
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}
}

// TestBus_RunIsolation tests events route by run ID.
func TestBus_RunIsolation(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	chA, cancelA := bus.Subscribe("run-a")
	defer cancelA()
	chB, cancelB := bus.Subscribe("run-b")
	defer cancelB()

	bus.Publish(Progress{RunID: "run-a", Stage: "content"})

	require.Len(t, chA, 1)
	assert.Len(t, chB, 0)
}

// TestBus_MultipleSubscribersSameRun tests fan-out.
func TestBus_MultipleSubscribersSameRun(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ch1, cancel1 := bus.Subscribe("run-1")
	defer cancel1()
	ch2, cancel2 := bus.Subscribe("run-1")
	defer cancel2()

	bus.Publish(Progress{RunID: "run-1"})

	assert.Len(t, ch1, 1)
	assert.Len(t, ch2, 1)
}

// TestBus_SlowSubscriberDropsEvents tests publishing never blocks.
func TestBus_SlowSubscriberDropsEvents(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ch, cancel := bus.Subscribe("run-1")
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < DefaultBuffer*2; i++ {
			bus.Publish(Progress{RunID: "run-1"})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
	assert.Len(t, ch, DefaultBuffer)
}

// TestBus_CancelIdempotent tests double cancel is safe.
func TestBus_CancelIdempotent(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ch, cancel := bus.Subscribe("run-1")
	cancel()
	assert.NotPanics(t, cancel)

	_, open := <-ch
	assert.False(t, open, "channel should be closed after cancel")

	// Publishing after cancel must not panic on the closed channel.
	assert.NotPanics(t, func() {
		bus.Publish(Progress{RunID: "run-1"})
	})
}

// TestBus_CloseClosesSubscribers tests shutdown semantics.
func TestBus_CloseClosesSubscribers(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe("run-1")
	defer cancel()

	bus.Close()

	_, open := <-ch
	assert.False(t, open)

	// Subscribe after close returns an already-closed channel.
	ch2, cancel2 := bus.Subscribe("run-2")
	defer cancel2()
	_, open = <-ch2
	assert.False(t, open)
}

// TestNewNotifier_PublishesProgress tests the pipeline adapter.
func TestNewNotifier_PublishesProgress(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ch, cancel := bus.Subscribe("run-1")
	defer cancel()

	n := NewNotifier(bus, "run-1")
	n.Notify(context.Background(), postflow.StageImage, postflow.StatusFailed, 1500*time.Millisecond)

	select {
	case got := <-ch:
		assert.Equal(t, "image", got.Stage)
		assert.Equal(t, "failed", got.Status)
		assert.InDelta(t, 1.5, got.ElapsedSeconds, 0.001)
		assert.False(t, got.Timestamp.IsZero())
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}
}
