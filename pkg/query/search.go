package query

import (
	"cmp"
	"slices"
	"strings"

	"github.com/aretw0/eventstorm/pkg/domain"
	"github.com/aretw0/eventstorm/pkg/graph"
)

// Filter narrows search and timeline results. Zero values match everything.
type Filter struct {
	Type      domain.ElementType
	ContextID string
}

func (f Filter) match(el domain.Element) bool {
	if f.Type != "" && el.Type != f.Type {
		return false
	}
	if f.ContextID != "" && el.BoundedContextID != f.ContextID {
		return false
	}
	return true
}

// Search returns the elements whose name, description or notes contain term,
// ignoring case, ordered by position and then ID.
func Search(g *graph.Graph, term string, f Filter) []domain.Element {
	needle := strings.ToLower(strings.TrimSpace(term))
	var matches []domain.Element
	for _, el := range g.Elements() {
		if !f.match(el) {
			continue
		}
		if strings.Contains(strings.ToLower(el.Name), needle) ||
			strings.Contains(strings.ToLower(el.Description), needle) ||
			strings.Contains(strings.ToLower(el.Notes), needle) {
			matches = append(matches, el)
		}
	}
	slices.SortStableFunc(matches, func(a, b domain.Element) int {
		return cmp.Or(cmp.Compare(a.Position, b.Position), cmp.Compare(a.ID, b.ID))
	})
	return matches
}

// Timeline returns the matching elements ordered by position, then creation
// time, then ID. Positions are never modified.
func Timeline(g *graph.Graph, f Filter) []domain.Element {
	var out []domain.Element
	for _, el := range g.Elements() {
		if f.match(el) {
			out = append(out, el)
		}
	}
	SortTimeline(out)
	return out
}

// SortTimeline sorts elements in place in timeline order.
func SortTimeline(els []domain.Element) {
	slices.SortStableFunc(els, compareTimeline)
}

func compareTimeline(a, b domain.Element) int {
	return cmp.Or(
		cmp.Compare(a.Position, b.Position),
		a.CreatedAt.Compare(b.CreatedAt),
		cmp.Compare(a.ID, b.ID),
	)
}
