package graph

import (
	"slices"
	"time"

	"github.com/aretw0/eventstorm/pkg/domain"
	"github.com/aretw0/eventstorm/pkg/ids"
)

// Edge is a directed trigger relationship: From causes To.
type Edge struct {
	From string
	To   string
}

// Graph is the in-memory model of a single workshop.
//
// The out map is the only record of trigger edges; the triggers and
// triggered_by lists of an element are derived from it when the graph is
// materialized. Context membership is recorded once in memberOf and
// mirrored into each context's ordered member list by attach and detach.
type Graph struct {
	meta domain.Metadata

	order    []string                   // element IDs in document order
	elements map[string]*domain.Element // edge and context fields are not authoritative here
	out      map[string][]string        // canonical edge set: source -> ordered targets

	ctxOrder []string
	contexts map[string]*domain.BoundedContext
	memberOf map[string]string // element ID -> context ID

	ids   ids.Generator
	clock func() time.Time
}

// Option configures a Graph.
type Option func(*Graph)

// WithIDs sets the identifier allocator used for new elements and contexts.
func WithIDs(gen ids.Generator) Option {
	return func(g *Graph) {
		g.ids = gen
	}
}

// WithClock sets the time source used for element timestamps.
func WithClock(clock func() time.Time) Option {
	return func(g *Graph) {
		g.clock = clock
	}
}

func newGraph(meta domain.Metadata, opts ...Option) *Graph {
	g := &Graph{
		meta:     meta,
		elements: make(map[string]*domain.Element),
		out:      make(map[string][]string),
		contexts: make(map[string]*domain.BoundedContext),
		memberOf: make(map[string]string),
		ids:      ids.UUID(),
		clock:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(g)
	}
	g.meta.Facilitators = slices.Clone(meta.Facilitators)
	if g.meta.Facilitators == nil {
		g.meta.Facilitators = []string{}
	}
	if g.meta.SchemaVersion == "" {
		g.meta.SchemaVersion = domain.SchemaVersion
	}
	return g
}

// New creates an empty workshop graph.
func New(meta domain.Metadata, opts ...Option) *Graph {
	return newGraph(meta, opts...)
}

// FromDocument validates doc and builds a graph from it.
// The first inconsistency found is returned as ErrValidationFailed.
func FromDocument(doc *domain.Document, opts ...Option) (*Graph, error) {
	if err := Validate(doc); err != nil {
		return nil, err
	}

	g := newGraph(doc.Metadata, opts...)
	for _, e := range doc.Elements {
		el := e
		el.Triggers = nil
		el.TriggeredBy = nil
		el.BoundedContextID = ""
		g.elements[el.ID] = &el
		g.order = append(g.order, el.ID)
	}
	for _, e := range doc.Elements {
		if len(e.Triggers) > 0 {
			g.out[e.ID] = slices.Clone(e.Triggers)
		}
	}
	for _, c := range doc.BoundedContexts {
		bc := c
		bc.ElementIDs = nil
		g.contexts[bc.ID] = &bc
		g.ctxOrder = append(g.ctxOrder, bc.ID)
		for _, id := range c.ElementIDs {
			g.attach(id, bc.ID)
		}
	}
	return g, nil
}

// Document materializes the graph into its persisted form, deriving both
// edge views from the canonical edge set.
func (g *Graph) Document() *domain.Document {
	doc := &domain.Document{
		Metadata:        g.meta,
		Elements:        g.Elements(),
		BoundedContexts: g.Contexts(),
	}
	doc.Metadata.Facilitators = slices.Clone(g.meta.Facilitators)
	doc.Normalize()
	return doc
}

// Metadata returns the workshop metadata.
func (g *Graph) Metadata() domain.Metadata {
	m := g.meta
	m.Facilitators = slices.Clone(g.meta.Facilitators)
	return m
}

// SetUpdatedAt stamps the workshop modification time.
func (g *Graph) SetUpdatedAt(t time.Time) {
	g.meta.UpdatedAt = t
}

// Len returns the number of elements.
func (g *Graph) Len() int {
	return len(g.order)
}

// Has reports whether an element with the given ID exists.
func (g *Graph) Has(id string) bool {
	_, ok := g.elements[id]
	return ok
}

// Elements returns every element in document order with derived edge views.
func (g *Graph) Elements() []domain.Element {
	incoming := g.incomingIndex()
	out := make([]domain.Element, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.materialize(id, incoming))
	}
	return out
}

// Element returns a single materialized element.
func (g *Graph) Element(id string) (domain.Element, bool) {
	if _, ok := g.elements[id]; !ok {
		return domain.Element{}, false
	}
	return g.materialize(id, nil), true
}

// Contexts returns every bounded context in document order.
func (g *Graph) Contexts() []domain.BoundedContext {
	out := make([]domain.BoundedContext, 0, len(g.ctxOrder))
	for _, id := range g.ctxOrder {
		c := *g.contexts[id]
		c.ElementIDs = slices.Clone(c.ElementIDs)
		if c.ElementIDs == nil {
			c.ElementIDs = []string{}
		}
		out = append(out, c)
	}
	return out
}

// Context returns a single bounded context.
func (g *Graph) Context(id string) (domain.BoundedContext, bool) {
	c, ok := g.contexts[id]
	if !ok {
		return domain.BoundedContext{}, false
	}
	bc := *c
	bc.ElementIDs = slices.Clone(c.ElementIDs)
	if bc.ElementIDs == nil {
		bc.ElementIDs = []string{}
	}
	return bc, true
}

// Edges returns the canonical edge set, ordered by source document order
// and then by target insertion order.
func (g *Graph) Edges() []Edge {
	var edges []Edge
	for _, from := range g.order {
		for _, to := range g.out[from] {
			edges = append(edges, Edge{From: from, To: to})
		}
	}
	return edges
}

// EdgeCount returns the size of the edge set.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, targets := range g.out {
		n += len(targets)
	}
	return n
}

// Triggers returns the ordered targets of id.
func (g *Graph) Triggers(id string) []string {
	return slices.Clone(g.out[id])
}

// TriggeredBy returns the sources of id in document order.
func (g *Graph) TriggeredBy(id string) []string {
	var sources []string
	for _, from := range g.order {
		if slices.Contains(g.out[from], id) {
			sources = append(sources, from)
		}
	}
	return sources
}

// ContextOf returns the context the element belongs to, or "".
func (g *Graph) ContextOf(id string) string {
	return g.memberOf[id]
}

func (g *Graph) materialize(id string, incoming map[string][]string) domain.Element {
	el := *g.elements[id]
	el.Triggers = slices.Clone(g.out[id])
	if el.Triggers == nil {
		el.Triggers = []string{}
	}
	if incoming != nil {
		el.TriggeredBy = slices.Clone(incoming[id])
	} else {
		el.TriggeredBy = g.TriggeredBy(id)
	}
	if el.TriggeredBy == nil {
		el.TriggeredBy = []string{}
	}
	el.BoundedContextID = g.memberOf[id]
	return el
}

// incomingIndex derives the triggered_by view for every element in one pass.
func (g *Graph) incomingIndex() map[string][]string {
	in := make(map[string][]string, len(g.order))
	for _, from := range g.order {
		for _, to := range g.out[from] {
			in[to] = append(in[to], from)
		}
	}
	return in
}

// attach records id as a member of ctxID, leaving any previous context.
func (g *Graph) attach(id, ctxID string) {
	if g.memberOf[id] == ctxID {
		return
	}
	g.detach(id)
	g.memberOf[id] = ctxID
	c := g.contexts[ctxID]
	c.ElementIDs = append(c.ElementIDs, id)
}

// detach removes id from whichever context holds it.
func (g *Graph) detach(id string) {
	ctxID, ok := g.memberOf[id]
	if !ok {
		return
	}
	delete(g.memberOf, id)
	if c, ok := g.contexts[ctxID]; ok {
		c.ElementIDs = slices.DeleteFunc(c.ElementIDs, func(m string) bool { return m == id })
	}
}
