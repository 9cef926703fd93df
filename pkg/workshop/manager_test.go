package workshop_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/eventstorm/pkg/adapters/memory"
	"github.com/aretw0/eventstorm/pkg/domain"
	"github.com/aretw0/eventstorm/pkg/graph"
	"github.com/aretw0/eventstorm/pkg/ids"
	"github.com/aretw0/eventstorm/pkg/ports"
	"github.com/aretw0/eventstorm/pkg/workshop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// SlowStore simulates latency to provoke race conditions if locking is missing.
type SlowStore struct {
	ports.WorkshopStore
}

func (s *SlowStore) Load(ctx context.Context, id string) (*domain.Document, error) {
	time.Sleep(2 * time.Millisecond)
	return s.WorkshopStore.Load(ctx, id)
}

func (s *SlowStore) Save(ctx context.Context, doc *domain.Document) error {
	time.Sleep(2 * time.Millisecond)
	return s.WorkshopStore.Save(ctx, doc)
}

func newManager(t *testing.T, store ports.WorkshopStore, opts ...workshop.Option) *workshop.Manager {
	t.Helper()
	clock := base
	var mu sync.Mutex
	opts = append([]workshop.Option{
		workshop.WithIDs(ids.NewSequential("el")),
		workshop.WithClock(func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			clock = clock.Add(time.Second)
			return clock
		}),
	}, opts...)
	m := workshop.NewManager(store, opts...)
	require.NoError(t, m.Create(context.Background(), domain.NewDocument("w1", "Orders", base)))
	return m
}

func TestManager_UpdateCommits(t *testing.T) {
	store := memory.NewStore()
	m := newManager(t, store)
	ctx := context.Background()

	doc, err := m.Update(ctx, "w1", func(g *graph.Graph) error {
		_, err := g.CreateElement(graph.ElementInput{Type: "event", Name: "Order Placed"})
		return err
	})
	require.NoError(t, err)
	require.Len(t, doc.Elements, 1)
	assert.Equal(t, "el-1", doc.Elements[0].ID)
	assert.True(t, doc.Metadata.UpdatedAt.After(base))

	stored, err := store.Load(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, doc, stored)
}

func TestManager_FailedMutationSkipsSave(t *testing.T) {
	store := memory.NewStore()
	m := newManager(t, store)
	ctx := context.Background()

	before, err := store.Load(ctx, "w1")
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = m.Update(ctx, "w1", func(g *graph.Graph) error {
		if _, err := g.CreateElement(graph.ElementInput{Type: "event", Name: "Half Done"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	after, err := store.Load(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestManager_UpdateMissingWorkshop(t *testing.T) {
	m := newManager(t, memory.NewStore())
	_, err := m.Update(context.Background(), "ghost", func(*graph.Graph) error { return nil })
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestManager_ConcurrentUpdatesAreSerialized(t *testing.T) {
	m := newManager(t, &SlowStore{WorkshopStore: memory.NewStore()})
	ctx := context.Background()

	var wg sync.WaitGroup
	writers := 10
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Update(ctx, "w1", func(g *graph.Graph) error {
				_, err := g.CreateElement(graph.ElementInput{Type: "command", Name: "Do"})
				return err
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// Without serialization read-modify-write cycles would lose elements.
	var n int
	require.NoError(t, m.View(ctx, "w1", func(g *graph.Graph) error {
		n = g.Len()
		return nil
	}))
	assert.Equal(t, writers, n)
}

func TestManager_ViewDoesNotPersist(t *testing.T) {
	store := memory.NewStore()
	m := newManager(t, store)
	ctx := context.Background()

	require.NoError(t, m.View(ctx, "w1", func(g *graph.Graph) error {
		_, err := g.CreateElement(graph.ElementInput{Type: "event", Name: "Scratch"})
		return err
	}))

	doc, err := store.Load(ctx, "w1")
	require.NoError(t, err)
	assert.Empty(t, doc.Elements)
}

func TestManager_CreateRejectsInvalid(t *testing.T) {
	m := newManager(t, memory.NewStore())
	err := m.Create(context.Background(), domain.NewDocument("w2", "", base))
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
}

func TestManager_DeleteAndList(t *testing.T) {
	m := newManager(t, memory.NewStore())
	ctx := context.Background()

	list, err := m.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "w1", list[0].ID)

	require.NoError(t, m.Delete(ctx, "w1"))
	assert.ErrorIs(t, m.Delete(ctx, "w1"), domain.ErrNotFound)

	list, err = m.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

type fakeLocker struct {
	mu      sync.Mutex
	locked  []string
	unlocks int
	err     error
}

func (f *fakeLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	f.locked = append(f.locked, key)
	f.mu.Unlock()
	return func(context.Context) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.unlocks++
		return nil
	}, nil
}

func TestManager_DistributedLocker(t *testing.T) {
	locker := &fakeLocker{}
	m := newManager(t, memory.NewStore(), workshop.WithLocker(locker))
	ctx := context.Background()

	_, err := m.Update(ctx, "w1", func(*graph.Graph) error { return nil })
	require.NoError(t, err)

	// Create in newManager plus the update.
	assert.Equal(t, []string{"w1", "w1"}, locker.locked)
	assert.Equal(t, 2, locker.unlocks)

	locker.err = errors.New("redis down")
	_, err = m.Update(ctx, "w1", func(*graph.Graph) error { return nil })
	assert.ErrorIs(t, err, domain.ErrStorageFailure)
}
