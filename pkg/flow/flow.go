// Package flow reconstructs causal chains from the trigger edges of a workshop.
//
// Trace runs a depth-bounded depth-first traversal along triggers edges.
// Cycles are closed with a stub node instead of being followed, children
// past the depth limit are emitted as truncated stubs, and elements that no
// root can reach are reported as orphans, so every element shows up
// somewhere in the report.
package flow

import (
	"github.com/aretw0/eventstorm/pkg/domain"
	"github.com/aretw0/eventstorm/pkg/graph"
	"github.com/aretw0/eventstorm/pkg/query"
)

// Traversal limits.
const (
	DefaultMaxDepth    = 5
	MaxDepthLimit      = 20
	DefaultMaxElements = 100
	MaxElementsLimit   = 500
)

// Options configures a traversal. Zero values select the defaults.
type Options struct {
	StartID     string // Trace from this element only; empty means every root
	MaxDepth    int
	MaxElements int
}

// Normalize fills in defaults and rejects out-of-range limits.
func (o Options) Normalize() (Options, error) {
	if o.MaxDepth == 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.MaxElements == 0 {
		o.MaxElements = DefaultMaxElements
	}
	if o.MaxDepth < 1 || o.MaxDepth > MaxDepthLimit {
		return o, domain.Validation("max_depth must be between 1 and %d, got %d", MaxDepthLimit, o.MaxDepth)
	}
	if o.MaxElements < 1 || o.MaxElements > MaxElementsLimit {
		return o, domain.Validation("max_elements must be between 1 and %d, got %d", MaxElementsLimit, o.MaxElements)
	}
	return o, nil
}

// Node is one element occurrence in a flow tree.
type Node struct {
	ID        string             `json:"id"`
	Type      domain.ElementType `json:"type"`
	Name      string             `json:"name"`
	Notes     string             `json:"notes,omitempty"`
	Depth     int                `json:"depth"`
	Cycle     bool               `json:"cycle,omitempty"`     // already on the active path; not expanded
	Truncated bool               `json:"truncated,omitempty"` // beyond the depth limit; not expanded
	Children  []*Node            `json:"children,omitempty"`
}

// Report is the result of a traversal.
type Report struct {
	Workshop    string           `json:"workshop"`
	StartID     string           `json:"start_id,omitempty"`
	MaxDepth    int              `json:"max_depth"`
	MaxElements int              `json:"max_elements"`
	Trees       []*Node          `json:"trees"`
	Orphans     []domain.Element `json:"orphans"`
	Emitted     int              `json:"emitted"`
	Limited     bool             `json:"limited"` // stopped after MaxElements nodes
}

type tracer struct {
	g       *graph.Graph
	opts    Options
	emitted int
	limited bool
	path    map[string]bool
}

// Trace builds the flow forest of g.
func Trace(g *graph.Graph, opts Options) (Report, error) {
	opts, err := opts.Normalize()
	if err != nil {
		return Report{}, err
	}
	rep := Report{
		Workshop:    g.Metadata().Name,
		StartID:     opts.StartID,
		MaxDepth:    opts.MaxDepth,
		MaxElements: opts.MaxElements,
		Trees:       []*Node{},
		Orphans:     []domain.Element{},
	}
	t := &tracer{g: g, opts: opts, path: make(map[string]bool)}

	if opts.StartID != "" {
		if !g.Has(opts.StartID) {
			return Report{}, domain.NotFound("element", opts.StartID)
		}
		rep.Trees = append(rep.Trees, t.walk(opts.StartID, 0))
	} else {
		roots := Roots(g)
		for _, root := range roots {
			if t.emitted >= opts.MaxElements {
				t.limited = true
				break
			}
			rep.Trees = append(rep.Trees, t.walk(root.ID, 0))
		}
		rep.Orphans = Orphans(g, roots)
	}

	rep.Emitted = t.emitted
	rep.Limited = t.limited
	return rep, nil
}

func (t *tracer) walk(id string, depth int) *Node {
	n := t.node(id, depth)
	t.path[id] = true
	defer delete(t.path, id)

	for _, child := range t.g.Triggers(id) {
		if t.emitted >= t.opts.MaxElements {
			t.limited = true
			break
		}
		switch {
		case t.path[child]:
			stub := t.node(child, depth+1)
			stub.Cycle = true
			n.Children = append(n.Children, stub)
		case depth+1 >= t.opts.MaxDepth:
			stub := t.node(child, depth+1)
			stub.Truncated = true
			n.Children = append(n.Children, stub)
		default:
			n.Children = append(n.Children, t.walk(child, depth+1))
		}
	}
	return n
}

func (t *tracer) node(id string, depth int) *Node {
	t.emitted++
	el, _ := t.g.Element(id)
	return &Node{ID: el.ID, Type: el.Type, Name: el.Name, Notes: el.Notes, Depth: depth}
}

// Roots returns the elements without incoming triggers, in timeline order.
func Roots(g *graph.Graph) []domain.Element {
	var roots []domain.Element
	for _, el := range g.Elements() {
		if len(el.TriggeredBy) == 0 {
			roots = append(roots, el)
		}
	}
	query.SortTimeline(roots)
	return roots
}

// Orphans returns the elements that no root can reach, in timeline order.
// These are the members of cycles without an acyclic entry point.
func Orphans(g *graph.Graph, roots []domain.Element) []domain.Element {
	seen := make(map[string]bool, g.Len())
	queue := make([]string, 0, len(roots))
	for _, r := range roots {
		seen[r.ID] = true
		queue = append(queue, r.ID)
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, next := range g.Triggers(id) {
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}

	orphans := []domain.Element{}
	for _, el := range g.Elements() {
		if !seen[el.ID] {
			orphans = append(orphans, el)
		}
	}
	query.SortTimeline(orphans)
	return orphans
}

// Walk visits every node of the forest depth-first.
func (r Report) Walk(fn func(*Node)) {
	var visit func(*Node)
	visit = func(n *Node) {
		fn(n)
		for _, c := range n.Children {
			visit(c)
		}
	}
	for _, tree := range r.Trees {
		visit(tree)
	}
}
