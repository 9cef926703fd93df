package eventstorm

import (
	"context"
	"strings"
	"time"

	"github.com/aretw0/eventstorm/pkg/codec"
	"github.com/aretw0/eventstorm/pkg/domain"
	"github.com/aretw0/eventstorm/pkg/flow"
	"github.com/aretw0/eventstorm/pkg/graph"
	"github.com/aretw0/eventstorm/pkg/query"
)

// CreateWorkshopInput holds the attributes of a new workshop.
type CreateWorkshopInput struct {
	Name         string
	Description  string
	Domain       string
	Facilitators []string
}

// CreateWorkshop creates and persists an empty workshop.
func (e *Engine) CreateWorkshop(ctx context.Context, in CreateWorkshopInput) (doc *domain.Document, err error) {
	id := e.ids.NewID()
	defer func(start time.Time) { e.track("create_workshop", id, start, err) }(time.Now())

	doc = domain.NewDocument(id, strings.TrimSpace(in.Name), e.clock())
	doc.Metadata.Description = in.Description
	doc.Metadata.Domain = in.Domain
	for _, f := range in.Facilitators {
		if f = strings.TrimSpace(f); f != "" {
			doc.Metadata.Facilitators = append(doc.Metadata.Facilitators, f)
		}
	}
	if err = e.manager.Create(ctx, doc); err != nil {
		return nil, err
	}
	e.metrics.SetElements(0)
	return doc, nil
}

// ListWorkshops returns the summaries of every stored workshop, most
// recently updated first.
func (e *Engine) ListWorkshops(ctx context.Context) (list []domain.Summary, err error) {
	defer func(start time.Time) { e.track("list_workshops", "", start, err) }(time.Now())
	return e.manager.List(ctx)
}

// LoadWorkshop returns the full document of a workshop.
func (e *Engine) LoadWorkshop(ctx context.Context, id string) (doc *domain.Document, err error) {
	defer func(start time.Time) { e.track("load_workshop", id, start, err) }(time.Now())
	err = e.manager.View(ctx, id, func(g *graph.Graph) error {
		doc = g.Document()
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.metrics.SetElements(len(doc.Elements))
	return doc, nil
}

// DeleteWorkshop removes a workshop.
func (e *Engine) DeleteWorkshop(ctx context.Context, id string) (err error) {
	defer func(start time.Time) { e.track("delete_workshop", id, start, err) }(time.Now())
	return e.manager.Delete(ctx, id)
}

// AddElement creates an element in the workshop.
func (e *Engine) AddElement(ctx context.Context, workshopID string, in graph.ElementInput) (el domain.Element, err error) {
	defer func(start time.Time) { e.track("add_element", workshopID, start, err) }(time.Now())
	err = e.mutate(ctx, workshopID, func(g *graph.Graph) error {
		el, err = g.CreateElement(in)
		return err
	})
	return el, err
}

// UpdateElement merges patch into an element and returns the element and
// the names of the fields that were set.
func (e *Engine) UpdateElement(ctx context.Context, workshopID, elementID string, patch graph.ElementPatch) (el domain.Element, fields []string, err error) {
	defer func(start time.Time) { e.track("update_element", workshopID, start, err) }(time.Now())
	err = e.mutate(ctx, workshopID, func(g *graph.Graph) error {
		el, fields, err = g.UpdateElement(elementID, patch)
		return err
	})
	return el, fields, err
}

// DeleteElement removes an element and every reference to it.
func (e *Engine) DeleteElement(ctx context.Context, workshopID, elementID string) (el domain.Element, err error) {
	defer func(start time.Time) { e.track("delete_element", workshopID, start, err) }(time.Now())
	err = e.mutate(ctx, workshopID, func(g *graph.Graph) error {
		el, err = g.DeleteElement(elementID)
		return err
	})
	return el, err
}

// CreateContext creates a bounded context in the workshop.
func (e *Engine) CreateContext(ctx context.Context, workshopID string, in graph.ContextInput) (bc domain.BoundedContext, err error) {
	defer func(start time.Time) { e.track("create_context", workshopID, start, err) }(time.Now())
	err = e.mutate(ctx, workshopID, func(g *graph.Graph) error {
		bc, err = g.CreateContext(in)
		return err
	})
	return bc, err
}

// DeleteContext removes a bounded context and unassigns its members.
func (e *Engine) DeleteContext(ctx context.Context, workshopID, contextID string) (bc domain.BoundedContext, err error) {
	defer func(start time.Time) { e.track("delete_context", workshopID, start, err) }(time.Now())
	err = e.mutate(ctx, workshopID, func(g *graph.Graph) error {
		bc, err = g.DeleteContext(contextID)
		return err
	})
	return bc, err
}

// AssignToContext moves the listed elements into a bounded context.
// Unknown element IDs are reported in the result instead of failing.
func (e *Engine) AssignToContext(ctx context.Context, workshopID, contextID string, elementIDs []string) (res graph.AssignmentResult, err error) {
	defer func(start time.Time) { e.track("assign_to_context", workshopID, start, err) }(time.Now())
	err = e.mutate(ctx, workshopID, func(g *graph.Graph) error {
		res, err = g.AssignToContext(contextID, elementIDs)
		return err
	})
	return res, err
}

// Search returns the elements whose name, description or notes contain term.
func (e *Engine) Search(ctx context.Context, workshopID, term string, f query.Filter) (els []domain.Element, err error) {
	defer func(start time.Time) { e.track("search", workshopID, start, err) }(time.Now())
	if strings.TrimSpace(term) == "" {
		return nil, domain.Validation("search query must not be empty")
	}
	if f, err = normalizeFilter(f); err != nil {
		return nil, err
	}
	err = e.view(ctx, workshopID, func(g *graph.Graph) error {
		els = query.Search(g, term, f)
		return nil
	})
	return els, err
}

// Timeline returns the elements in timeline order.
func (e *Engine) Timeline(ctx context.Context, workshopID string, f query.Filter) (els []domain.Element, err error) {
	defer func(start time.Time) { e.track("timeline", workshopID, start, err) }(time.Now())
	if f, err = normalizeFilter(f); err != nil {
		return nil, err
	}
	err = e.view(ctx, workshopID, func(g *graph.Graph) error {
		els = query.Timeline(g, f)
		return nil
	})
	return els, err
}

// Statistics aggregates counts, relationships and coverage of a workshop.
func (e *Engine) Statistics(ctx context.Context, workshopID string) (st query.Statistics, err error) {
	defer func(start time.Time) { e.track("statistics", workshopID, start, err) }(time.Now())
	err = e.view(ctx, workshopID, func(g *graph.Graph) error {
		st = query.ComputeStatistics(g)
		return nil
	})
	return st, err
}

// ContextOverview reports every bounded context, or only contextID when set.
func (e *Engine) ContextOverview(ctx context.Context, workshopID, contextID string) (ov query.Overview, err error) {
	defer func(start time.Time) { e.track("context_overview", workshopID, start, err) }(time.Now())
	err = e.view(ctx, workshopID, func(g *graph.Graph) error {
		ov, err = query.ContextOverview(g, contextID, e.balanceFactor)
		return err
	})
	return ov, err
}

// VisualizeFlow traces the causal chains of a workshop. Zero limits in opts
// fall back to the engine defaults.
func (e *Engine) VisualizeFlow(ctx context.Context, workshopID string, opts flow.Options) (rep flow.Report, err error) {
	defer func(start time.Time) { e.track("visualize_flow", workshopID, start, err) }(time.Now())
	if opts.MaxDepth == 0 {
		opts.MaxDepth = e.flowDefaults.MaxDepth
	}
	if opts.MaxElements == 0 {
		opts.MaxElements = e.flowDefaults.MaxElements
	}
	err = e.view(ctx, workshopID, func(g *graph.Graph) error {
		rep, err = flow.Trace(g, opts)
		return err
	})
	return rep, err
}

// Inspect returns a detached graph of the workshop for rendering.
// Changes to it are never persisted.
func (e *Engine) Inspect(ctx context.Context, workshopID string) (g *graph.Graph, err error) {
	defer func(start time.Time) { e.track("inspect", workshopID, start, err) }(time.Now())
	err = e.view(ctx, workshopID, func(loaded *graph.Graph) error {
		g = loaded
		return nil
	})
	return g, err
}

// Export wraps the workshop in an export envelope.
func (e *Engine) Export(ctx context.Context, workshopID string, includeMetadata bool) (exp codec.Export, err error) {
	defer func(start time.Time) { e.track("export", workshopID, start, err) }(time.Now())
	err = e.view(ctx, workshopID, func(g *graph.Graph) error {
		exp = codec.NewExport(g.Document(), includeMetadata, ExportFormatVersion, e.clock())
		return nil
	})
	return exp, err
}

// Import adopts an exported document as a workshop. The document is fully
// re-validated; nothing is stored when it is inconsistent.
func (e *Engine) Import(ctx context.Context, data []byte, format codec.Format, opts codec.ImportOptions) (doc *domain.Document, err error) {
	var id string
	defer func(start time.Time) { e.track("import", id, start, err) }(time.Now())

	doc, err = codec.Import(data, format, opts, e.ids, e.clock())
	if err != nil {
		return nil, err
	}
	id = doc.Metadata.ID
	if err = e.manager.Create(ctx, doc); err != nil {
		return nil, err
	}
	e.metrics.SetElements(len(doc.Elements))
	return doc, nil
}

func (e *Engine) mutate(ctx context.Context, workshopID string, fn func(*graph.Graph) error) error {
	doc, err := e.manager.Update(ctx, workshopID, fn)
	if err != nil {
		return err
	}
	e.metrics.SetElements(len(doc.Elements))
	return nil
}

func (e *Engine) view(ctx context.Context, workshopID string, fn func(*graph.Graph) error) error {
	return e.manager.View(ctx, workshopID, func(g *graph.Graph) error {
		e.metrics.SetElements(g.Len())
		return fn(g)
	})
}

func normalizeFilter(f query.Filter) (query.Filter, error) {
	if f.Type == "" {
		return f, nil
	}
	t, err := domain.ParseElementType(string(f.Type))
	if err != nil {
		return f, err
	}
	f.Type = t
	return f, nil
}
