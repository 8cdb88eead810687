package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/postflow/pkg/postflow"
)

// newStores returns a constructor per implementation so every test runs
// against both.
func newStores(t *testing.T) map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store {
			return NewMemoryStore()
		},
		"sqlite": func(t *testing.T) Store {
			store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "runs.db"))
			require.NoError(t, err)
			return store
		},
	}
}

// doneState builds a terminal snapshot for tests.
func doneState(runID, topic string) *postflow.State {
	return &postflow.State{
		RunID:    runID,
		Topic:    topic,
		Platform: postflow.PlatformTwitter,
		Tone:     postflow.ToneEngaging,
		Phase:    postflow.PhaseDone,
		Research: &postflow.ResearchResult{
			Topic:        topic,
			BulletPoints: []string{"a", "b", "c", "d", "e"},
		},
		Content: &postflow.ContentResult{
			Text:      "short post",
			Platform:  postflow.PlatformTwitter,
			WordCount: 2,
		},
		Image: &postflow.ImageResult{
			Path: "static/images/x.png",
			Size: "1024x1024",
		},
		StartedAt: time.Now().UTC(),
		Elapsed:   3 * time.Second,
	}
}

// TestStore_SaveAndGet tests snapshot round trips.
func TestStore_SaveAndGet(t *testing.T) {
	for name, newStore := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			store := newStore(t)
			defer store.Close()
			ctx := context.Background()

			st := doneState("run-1", "renewable energy")
			require.NoError(t, store.Save(ctx, st))

			got, err := store.Get(ctx, "run-1")
			require.NoError(t, err)
			assert.Equal(t, st.RunID, got.RunID)
			assert.Equal(t, st.Topic, got.Topic)
			assert.Equal(t, postflow.PhaseDone, got.Phase)
			assert.Equal(t, postflow.OutcomeFull, got.Outcome())
			require.NotNil(t, got.Content)
			assert.Equal(t, "short post", got.Content.Text)
		})
	}
}

// TestStore_GetUnknownRun tests the not-found sentinel.
func TestStore_GetUnknownRun(t *testing.T) {
	for name, newStore := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			store := newStore(t)
			defer store.Close()

			_, err := store.Get(context.Background(), "no-such-run")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

// TestStore_SaveOverwrites tests re-saving the same run ID.
func TestStore_SaveOverwrites(t *testing.T) {
	for name, newStore := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			store := newStore(t)
			defer store.Close()
			ctx := context.Background()

			st := doneState("run-1", "first")
			require.NoError(t, store.Save(ctx, st))

			st.Topic = "second"
			require.NoError(t, store.Save(ctx, st))

			got, err := store.Get(ctx, "run-1")
			require.NoError(t, err)
			assert.Equal(t, "second", got.Topic)

			runs, err := store.List(ctx, 0)
			require.NoError(t, err)
			assert.Len(t, runs, 1)
		})
	}
}

// TestStore_ListNewestFirst tests listing order and limits.
func TestStore_ListNewestFirst(t *testing.T) {
	for name, newStore := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			store := newStore(t)
			defer store.Close()
			ctx := context.Background()

			for _, id := range []string{"run-1", "run-2", "run-3"} {
				require.NoError(t, store.Save(ctx, doneState(id, "topic "+id)))
				// Keep created_at strictly increasing for ordering.
				time.Sleep(2 * time.Millisecond)
			}

			runs, err := store.List(ctx, 0)
			require.NoError(t, err)
			require.Len(t, runs, 3)
			assert.Equal(t, "run-3", runs[0].RunID)
			assert.Equal(t, "run-1", runs[2].RunID)
			assert.Equal(t, string(postflow.OutcomeFull), runs[0].Outcome)

			limited, err := store.List(ctx, 2)
			require.NoError(t, err)
			require.Len(t, limited, 2)
			assert.Equal(t, "run-3", limited[0].RunID)
		})
	}
}

// TestStore_Prune tests dropping the oldest runs past a retention count.
func TestStore_Prune(t *testing.T) {
	for name, newStore := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			store := newStore(t)
			defer store.Close()
			ctx := context.Background()

			for _, id := range []string{"run-1", "run-2", "run-3", "run-4"} {
				require.NoError(t, store.Save(ctx, doneState(id, "topic "+id)))
				// Keep created_at strictly increasing for ordering.
				time.Sleep(2 * time.Millisecond)
			}

			removed, err := store.Prune(ctx, 2)
			require.NoError(t, err)
			assert.Equal(t, 2, removed)

			runs, err := store.List(ctx, 0)
			require.NoError(t, err)
			require.Len(t, runs, 2)
			assert.Equal(t, "run-4", runs[0].RunID)
			assert.Equal(t, "run-3", runs[1].RunID)

			_, err = store.Get(ctx, "run-1")
			assert.ErrorIs(t, err, ErrNotFound)

			// Nothing left over the retention count.
			removed, err = store.Prune(ctx, 2)
			require.NoError(t, err)
			assert.Zero(t, removed)

			// keep <= 0 clears the store.
			removed, err = store.Prune(ctx, 0)
			require.NoError(t, err)
			assert.Equal(t, 2, removed)
			runs, err = store.List(ctx, 0)
			require.NoError(t, err)
			assert.Empty(t, runs)
		})
	}
}

// TestStore_ClosedOperations tests the closed sentinel on every method.
func TestStore_ClosedOperations(t *testing.T) {
	for name, newStore := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			store := newStore(t)
			require.NoError(t, store.Close())

			assert.ErrorIs(t, store.Save(context.Background(), doneState("r", "t")), ErrStoreClosed)
			_, err := store.Get(context.Background(), "r")
			assert.ErrorIs(t, err, ErrStoreClosed)
			_, err = store.List(context.Background(), 0)
			assert.ErrorIs(t, err, ErrStoreClosed)
			_, err = store.Prune(context.Background(), 1)
			assert.ErrorIs(t, err, ErrStoreClosed)
			assert.ErrorIs(t, store.Close(), ErrStoreClosed)
		})
	}
}

// TestSQLiteStore_InMemory tests the :memory: path used in examples.
func TestSQLiteStore_InMemory(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save(context.Background(), doneState("run-1", "t")))
	got, err := store.Get(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", got.RunID)
}
