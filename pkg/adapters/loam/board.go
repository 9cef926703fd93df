// Package loam exports workshops as markdown card boards using the Loam
// document library. Every element becomes one card file under a directory
// named after the workshop; the YAML front matter carries the graph fields
// and the body carries the free text.
package loam

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/eventstorm/pkg/domain"
	"github.com/aretw0/eventstorm/pkg/ports"
	"github.com/aretw0/loam"
)

// Board implements ports.Board on a Loam repository.
type Board struct {
	Dir  string
	Repo *loam.TypedRepository[CardMetadata]
}

// New initializes a Loam repository rooted at dir. Versioning is disabled:
// the board is a plain file export.
func New(dir string) (*Board, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve board dir: %w", err)
	}
	if err := os.MkdirAll(absPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create board dir: %w", err)
	}
	repo, err := loam.Init(absPath, loam.WithVersioning(false))
	if err != nil {
		return nil, fmt.Errorf("failed to init loam repo: %w", err)
	}
	return &Board{
		Dir:  absPath,
		Repo: loam.NewTypedRepository[CardMetadata](repo),
	}, nil
}

// WriteCards replaces the cards of the workshop with one card per element.
func (b *Board) WriteCards(ctx context.Context, doc *domain.Document) (int, error) {
	workshopID := doc.Metadata.ID
	if !validSegment(workshopID) {
		return 0, domain.Validation("invalid workshop id %q for a board", workshopID)
	}

	dir := filepath.Join(b.Dir, workshopID)
	if err := os.RemoveAll(dir); err != nil {
		return 0, domain.Storage("board", fmt.Errorf("failed to clear %s: %w", dir, err))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, domain.Storage("board", fmt.Errorf("failed to create %s: %w", dir, err))
	}

	for i, el := range doc.Elements {
		if !validSegment(el.ID) {
			return i, domain.Validation("invalid element id %q for a card", el.ID)
		}
		meta := CardMetadata{
			ID:       el.ID,
			Workshop: workshopID,
			Type:     string(el.Type),
			Name:     el.Name,
			Position: el.Position,
			Color:    el.Type.Color(),
			Context:  el.BoundedContextID,
			Triggers: slices.Clone(el.Triggers),
		}
		if meta.Triggers == nil {
			meta.Triggers = []string{}
		}
		err := b.Repo.Save(ctx, &loam.DocumentModel[CardMetadata]{
			ID:      path.Join(workshopID, el.ID),
			Content: cardBody(el),
			Data:    meta,
		})
		if err != nil {
			return i, domain.Storage("board", fmt.Errorf("loam save failed for %s: %w", el.ID, err))
		}
	}
	return len(doc.Elements), nil
}

// ListCards reads back the cards of one workshop ordered by position.
func (b *Board) ListCards(ctx context.Context, workshopID string) ([]ports.Card, error) {
	docs, err := b.Repo.List(ctx)
	if err != nil {
		return nil, domain.Storage("board", fmt.Errorf("loam list failed: %w", err))
	}

	cards := []ports.Card{}
	for _, doc := range docs {
		if doc.Data.Workshop != workshopID {
			continue
		}
		id := doc.Data.ID
		if id == "" {
			id = path.Base(trimExtension(doc.ID))
		}
		// List carries front matter only; the body needs a full read.
		full, err := b.Repo.Get(ctx, path.Join(workshopID, id))
		if err != nil {
			return nil, domain.Storage("board", fmt.Errorf("loam get failed for %s: %w", id, err))
		}
		cards = append(cards, ports.Card{
			ID:       id,
			Workshop: workshopID,
			Type:     domain.ElementType(doc.Data.Type),
			Name:     doc.Data.Name,
			Position: doc.Data.Position,
			Context:  doc.Data.Context,
			Triggers: doc.Data.Triggers,
			Body:     strings.TrimSpace(full.Content),
		})
	}
	slices.SortFunc(cards, func(a, b ports.Card) int {
		return cmp.Or(cmp.Compare(a.Position, b.Position), cmp.Compare(a.ID, b.ID))
	})
	return cards, nil
}

func cardBody(el domain.Element) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n", el.Name)
	if el.Description != "" {
		fmt.Fprintf(&sb, "\n%s\n", el.Description)
	}
	if el.Notes != "" {
		fmt.Fprintf(&sb, "\n> %s\n", el.Notes)
	}
	return sb.String()
}

// validSegment reports whether id can be used as a single path segment.
func validSegment(id string) bool {
	return id != "" && id != "." && id != ".." && !strings.ContainsAny(id, `/\`)
}

func trimExtension(id string) string {
	return filepath.ToSlash(strings.TrimSuffix(id, filepath.Ext(id)))
}
