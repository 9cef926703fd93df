package ports

import (
	"context"

	"github.com/aretw0/eventstorm/pkg/domain"
)

// WorkshopStore persists exactly one document per workshop, keyed by its ID.
//
// Save must be atomic from a reader's point of view: a concurrent Load never
// observes a half-written document.
type WorkshopStore interface {
	// List returns the summaries of every stored workshop, most recently
	// updated first, without building their graphs.
	List(ctx context.Context) ([]domain.Summary, error)

	// Load retrieves a workshop document.
	// Returns domain.ErrNotFound if the workshop does not exist.
	Load(ctx context.Context, id string) (*domain.Document, error)

	// Save creates or replaces the document under doc.Metadata.ID.
	Save(ctx context.Context, doc *domain.Document) error

	// Delete removes a workshop.
	// Returns domain.ErrNotFound if the workshop does not exist.
	Delete(ctx context.Context, id string) error

	// Close releases any resource held by the store.
	Close() error
}
