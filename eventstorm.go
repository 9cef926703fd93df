package eventstorm

import (
	"errors"
	"log/slog"
	"time"

	"github.com/aretw0/eventstorm/internal/logging"
	"github.com/aretw0/eventstorm/pkg/adapters/file"
	"github.com/aretw0/eventstorm/pkg/domain"
	"github.com/aretw0/eventstorm/pkg/flow"
	"github.com/aretw0/eventstorm/pkg/ids"
	"github.com/aretw0/eventstorm/pkg/observability"
	"github.com/aretw0/eventstorm/pkg/ports"
	"github.com/aretw0/eventstorm/pkg/query"
	"github.com/aretw0/eventstorm/pkg/workshop"
)

// Engine is the high-level entry point of the library.
// It wraps the workshop Manager and the query, flow and codec packages
// behind the fixed set of workshop operations.
type Engine struct {
	store   ports.WorkshopStore
	manager *workshop.Manager
	locker  ports.DistributedLocker
	logger  *slog.Logger
	metrics *observability.Metrics
	ids     ids.Generator
	clock   func() time.Time

	balanceFactor float64
	flowDefaults  flow.Options
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithStore sets the workshop store. The default is the file store in
// ~/.eventstorming_workshops.
func WithStore(store ports.WorkshopStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithLocker enables cross-process locking of workshops.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = locker
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMetrics records every operation on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithIDs sets the identifier allocator for workshops, elements and contexts.
func WithIDs(gen ids.Generator) Option {
	return func(e *Engine) {
		e.ids = gen
	}
}

// WithClock sets the time source for every timestamp the engine writes.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

// WithBalanceFactor sets the factor of the context balance signal.
func WithBalanceFactor(factor float64) Option {
	return func(e *Engine) {
		e.balanceFactor = factor
	}
}

// WithFlowDefaults sets the limits used when VisualizeFlow is called
// without explicit ones.
func WithFlowDefaults(maxDepth, maxElements int) Option {
	return func(e *Engine) {
		e.flowDefaults.MaxDepth = maxDepth
		e.flowDefaults.MaxElements = maxElements
	}
}

// New initializes an Engine.
func New(opts ...Option) (*Engine, error) {
	eng := &Engine{
		ids:           ids.UUID(),
		clock:         func() time.Time { return time.Now().UTC() },
		balanceFactor: query.DefaultBalanceFactor,
	}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.store == nil {
		eng.store = file.New("")
	}
	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.balanceFactor <= 1 {
		return nil, errors.New("balance factor must be greater than 1")
	}
	if _, err := (flow.Options{MaxDepth: eng.flowDefaults.MaxDepth, MaxElements: eng.flowDefaults.MaxElements}).Normalize(); err != nil {
		return nil, err
	}

	managerOpts := []workshop.Option{
		workshop.WithLogger(eng.logger),
		workshop.WithIDs(eng.ids),
		workshop.WithClock(eng.clock),
	}
	if eng.locker != nil {
		managerOpts = append(managerOpts, workshop.WithLocker(eng.locker))
	}
	eng.manager = workshop.NewManager(eng.store, managerOpts...)
	return eng, nil
}

// Store returns the underlying workshop store.
func (e *Engine) Store() ports.WorkshopStore {
	return e.store
}

// Metrics returns the metrics the engine records on, or nil.
func (e *Engine) Metrics() *observability.Metrics {
	return e.metrics
}

// Close releases the store.
func (e *Engine) Close() error {
	return e.store.Close()
}

// track records the outcome of one operation in the metrics and the log.
func (e *Engine) track(op, workshopID string, start time.Time, err error) {
	e.metrics.Observe(op, start, err)

	attrs := []any{"op", op, "duration", time.Since(start)}
	if workshopID != "" {
		attrs = append(attrs, "workshop_id", workshopID)
	}
	switch kind := domain.KindOf(err); {
	case err == nil:
		e.logger.Debug("Operation completed", attrs...)
	case kind == nil || kind == domain.ErrStorageFailure:
		e.logger.Error("Operation failed", append(attrs, "err", err)...)
	default:
		e.logger.Warn("Operation rejected", append(attrs, "kind", domain.KindName(err), "err", err)...)
	}
}
