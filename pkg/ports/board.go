package ports

import (
	"context"

	"github.com/aretw0/eventstorm/pkg/domain"
)

// Card is one sticky note of a board export.
type Card struct {
	ID       string
	Workshop string
	Type     domain.ElementType
	Name     string
	Position int
	Context  string
	Triggers []string
	Body     string
}

// Board writes a workshop as a set of cards to an external medium
// (a markdown vault, for instance) and reads them back.
type Board interface {
	WriteCards(ctx context.Context, doc *domain.Document) (int, error)
	ListCards(ctx context.Context, workshopID string) ([]Card, error)
}
