// Package event distributes pipeline progress to push transports.
//
// The pipeline publishes one Progress event per stage transition through
// a Notifier adapter; WebSocket or SSE handlers subscribe per run and
// forward events to their own connections. Demultiplexing across
// connections is the transport's job, not the pipeline's.
package event

import (
	"context"
	"sync"
	"time"

	"github.com/randalmurphal/postflow/pkg/postflow"
)

// Progress is one stage transition of one run.
type Progress struct {
	RunID          string    `json:"run_id"`
	Stage          string    `json:"stage"`
	Status         string    `json:"status"`
	ElapsedSeconds float64   `json:"elapsed_seconds"`
	Timestamp      time.Time `json:"timestamp"`
}

// DefaultBuffer is the per-subscription channel buffer.
const DefaultBuffer = 16

// Bus fans progress events out to per-run subscribers. Publishing never
// blocks: events for a slow subscriber are dropped rather than stalling
// the pipeline.
type Bus struct {
	mu     sync.RWMutex
	subs   map[string]map[int]chan Progress // run ID -> subscriber ID -> channel
	nextID int
	closed bool
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[string]map[int]chan Progress)}
}

// Subscribe registers interest in one run's progress. The returned
// cancel function is idempotent and must be called to release the
// subscription.
func (b *Bus) Subscribe(runID string) (<-chan Progress, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Progress, DefaultBuffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	b.nextID++
	id := b.nextID
	if b.subs[runID] == nil {
		b.subs[runID] = make(map[int]chan Progress)
	}
	b.subs[runID][id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if subs, ok := b.subs[runID]; ok {
				if ch, ok := subs[id]; ok {
					delete(subs, id)
					close(ch)
				}
				if len(subs) == 0 {
					delete(b.subs, runID)
				}
			}
		})
	}
	return ch, cancel
}

// Publish delivers one event to the run's subscribers. Non-blocking:
// full buffers drop the event.
func (b *Bus) Publish(evt Progress) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}
	for _, ch := range b.subs[evt.RunID] {
		select {
		case ch <- evt:
		default:
		}
	}
}

// Close shuts the bus down and closes all subscriber channels.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for runID, subs := range b.subs {
		for id, ch := range subs {
			delete(subs, id)
			close(ch)
		}
		delete(b.subs, runID)
	}
}

// busNotifier adapts the bus to the pipeline's Notifier interface.
type busNotifier struct {
	bus   *Bus
	runID string
}

// NewNotifier returns a Notifier that publishes one Progress event per
// stage transition of the given run.
func NewNotifier(bus *Bus, runID string) postflow.Notifier {
	return &busNotifier{bus: bus, runID: runID}
}

// Notify implements postflow.Notifier.
func (n *busNotifier) Notify(_ context.Context, stage postflow.Stage, status postflow.Status, elapsed time.Duration) {
	n.bus.Publish(Progress{
		RunID:          n.runID,
		Stage:          string(stage),
		Status:         string(status),
		ElapsedSeconds: elapsed.Seconds(),
		Timestamp:      time.Now().UTC(),
	})
}
