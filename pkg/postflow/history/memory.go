package history

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/randalmurphal/postflow/pkg/postflow"
)

// MemoryStore keeps snapshots in memory. Suitable for tests and
// ephemeral deployments; contents are lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]memoryRecord
	order   []string // run IDs, oldest first
	closed  bool
}

type memoryRecord struct {
	summary  Summary
	snapshot []byte
}

// Compile-time interface check.
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]memoryRecord)}
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, st *postflow.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("serialize snapshot: %w", err)
	}
	if _, exists := s.records[st.RunID]; !exists {
		s.order = append(s.order, st.RunID)
	}
	s.records[st.RunID] = memoryRecord{
		summary: Summary{
			RunID:     st.RunID,
			Topic:     st.Topic,
			Platform:  string(st.Platform),
			Tone:      string(st.Tone),
			Outcome:   string(st.Outcome()),
			CreatedAt: time.Now().UTC(),
		},
		snapshot: data,
	}
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, runID string) (*postflow.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	rec, ok := s.records[runID]
	if !ok {
		return nil, ErrNotFound
	}
	var st postflow.State
	if err := json.Unmarshal(rec.snapshot, &st); err != nil {
		return nil, fmt.Errorf("deserialize snapshot: %w", err)
	}
	return &st, nil
}

// List implements Store.
func (s *MemoryStore) List(_ context.Context, limit int) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	out := make([]Summary, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, s.records[s.order[i]].summary)
	}
	return out, nil
}

// Prune implements Store.
func (s *MemoryStore) Prune(_ context.Context, keep int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrStoreClosed
	}
	if keep < 0 {
		keep = 0
	}
	if len(s.order) <= keep {
		return 0, nil
	}
	drop := len(s.order) - keep
	for _, id := range s.order[:drop] {
		delete(s.records, id)
	}
	s.order = append([]string(nil), s.order[drop:]...)
	return drop, nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	s.closed = true
	s.records = nil
	s.order = nil
	return nil
}
