package workshop

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/eventstorm/internal/logging"
	"github.com/aretw0/eventstorm/pkg/domain"
	"github.com/aretw0/eventstorm/pkg/graph"
	"github.com/aretw0/eventstorm/pkg/ids"
	"github.com/aretw0/eventstorm/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed lock survives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates workshop access, ensuring safe concurrent operations.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.WorkshopStore

	mu    sync.Mutex            // guards locks
	locks map[string]*lockEntry // active locks by workshop ID

	locker  ports.DistributedLocker // optional
	lockTTL time.Duration
	logger  *slog.Logger
	ids     ids.Generator
	clock   func() time.Time
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the lease of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithIDs sets the allocator for new element and context IDs.
func WithIDs(gen ids.Generator) Option {
	return func(m *Manager) {
		m.ids = gen
	}
}

// WithClock sets the time source for element and workshop timestamps.
func WithClock(clock func() time.Time) Option {
	return func(m *Manager) {
		m.clock = clock
	}
}

// NewManager creates a Manager on top of the given store.
func NewManager(store ports.WorkshopStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
		ids:     ids.UUID(),
		clock:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock entry.mu, and then call release(id) after unlocking.
func (m *Manager) acquire(id string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

// GraphOptions returns the graph options derived from the Manager's
// allocator and clock.
func (m *Manager) GraphOptions() []graph.Option {
	return []graph.Option{graph.WithIDs(m.ids), graph.WithClock(m.clock)}
}

// Create persists a new workshop document. An existing document with the
// same ID is replaced.
func (m *Manager) Create(ctx context.Context, doc *domain.Document) error {
	if err := graph.Validate(doc); err != nil {
		return err
	}
	return m.WithLock(ctx, doc.Metadata.ID, func(ctx context.Context) error {
		return m.store.Save(ctx, doc)
	})
}

// View loads the workshop, rebuilds its graph and passes it to fn.
// Changes fn makes to the graph are not persisted.
func (m *Manager) View(ctx context.Context, id string, fn func(*graph.Graph) error) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		g, err := m.loadGraph(ctx, id)
		if err != nil {
			return err
		}
		return fn(g)
	})
}

// Update runs fn against a working copy of the workshop graph and saves the
// result only when fn succeeds. It returns the committed document.
func (m *Manager) Update(ctx context.Context, id string, fn func(*graph.Graph) error) (*domain.Document, error) {
	var committed *domain.Document
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		g, err := m.loadGraph(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(g); err != nil {
			m.logger.Debug("Mutation rejected, workshop left unchanged", "workshop_id", id, "err", err)
			return err
		}

		g.SetUpdatedAt(m.clock())
		doc := g.Document()
		if err := m.store.Save(ctx, doc); err != nil {
			return err
		}
		committed = doc
		return nil
	})
	return committed, err
}

// Delete removes the workshop from the store.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		return m.store.Delete(ctx, id)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]domain.Summary, error) {
	return m.store.List(ctx)
}

func (m *Manager) loadGraph(ctx context.Context, id string) (*graph.Graph, error) {
	doc, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	g, err := graph.FromDocument(doc, m.GraphOptions()...)
	if err != nil {
		return nil, fmt.Errorf("stored workshop %s is inconsistent: %w", id, err)
	}
	return g, nil
}

// WithLock executes a function while holding the lock for the workshop.
func (m *Manager) WithLock(ctx context.Context, id string, fn func(context.Context) error) error {
	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, id, m.lockTTL)
		if err != nil {
			return domain.Storage("lock", fmt.Errorf("failed to acquire distributed lock: %w", err))
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"workshop_id", id,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
