package graph

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/aretw0/eventstorm/pkg/domain"
)

// ElementInput carries the attributes of a new element.
type ElementInput struct {
	Type             string
	Name             string
	Description      string
	Position         *int // nil means "after the existing elements of the same type"
	Notes            string
	CreatedBy        string
	Triggers         []string
	TriggeredBy      []string
	BoundedContextID string
}

// ElementPatch carries a partial update. Nil fields are left untouched.
type ElementPatch struct {
	Name             *string
	Description      *string
	Position         *int
	Notes            *string
	Triggers         *[]string
	TriggeredBy      *[]string
	BoundedContextID *string // empty string clears the assignment
}

// ContextInput carries the attributes of a new bounded context.
type ContextInput struct {
	Name        string
	Description string
	Color       string
}

// AssignmentResult reports the outcome of a batch assignment.
type AssignmentResult struct {
	ContextID   string   `json:"context_id"`
	ContextName string   `json:"context_name"`
	Assigned    []string `json:"assigned"`
	Skipped     []string `json:"skipped"`
}

// CreateElement validates in and adds a new element with its edges.
func (g *Graph) CreateElement(in ElementInput) (domain.Element, error) {
	typ, err := domain.ParseElementType(in.Type)
	if err != nil {
		return domain.Element{}, err
	}
	name := strings.TrimSpace(in.Name)
	if err := checkName("element name", name, domain.MaxNameLength); err != nil {
		return domain.Element{}, err
	}
	if in.Position != nil && *in.Position < 0 {
		return domain.Element{}, domain.Validation("position must be >= 0, got %d", *in.Position)
	}
	triggers := dedupe(in.Triggers)
	triggeredBy := dedupe(in.TriggeredBy)
	if err := g.checkRefs("triggers", triggers); err != nil {
		return domain.Element{}, err
	}
	if err := g.checkRefs("triggered_by", triggeredBy); err != nil {
		return domain.Element{}, err
	}
	if in.BoundedContextID != "" {
		if _, ok := g.contexts[in.BoundedContextID]; !ok {
			return domain.Element{}, domain.InvalidReference("bounded context %q does not exist", in.BoundedContextID)
		}
	}

	position := g.countType(typ)
	if in.Position != nil {
		position = *in.Position
	}

	now := g.clock()
	el := &domain.Element{
		ID:          g.newID(),
		Type:        typ,
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Position:    position,
		Notes:       strings.TrimSpace(in.Notes),
		CreatedBy:   strings.TrimSpace(in.CreatedBy),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	g.elements[el.ID] = el
	g.order = append(g.order, el.ID)
	if len(triggers) > 0 {
		g.out[el.ID] = triggers
	}
	for _, src := range triggeredBy {
		g.addEdge(src, el.ID)
	}
	if in.BoundedContextID != "" {
		g.attach(el.ID, in.BoundedContextID)
	}
	return g.materialize(el.ID, nil), nil
}

// UpdateElement merges patch into the element and returns it with the names
// of the fields that were present in the patch.
func (g *Graph) UpdateElement(id string, patch ElementPatch) (domain.Element, []string, error) {
	el, ok := g.elements[id]
	if !ok {
		return domain.Element{}, nil, domain.NotFound("element", id)
	}

	// Validate every field before touching anything.
	var name string
	if patch.Name != nil {
		name = strings.TrimSpace(*patch.Name)
		if err := checkName("element name", name, domain.MaxNameLength); err != nil {
			return domain.Element{}, nil, err
		}
	}
	if patch.Position != nil && *patch.Position < 0 {
		return domain.Element{}, nil, domain.Validation("position must be >= 0, got %d", *patch.Position)
	}
	var triggers, triggeredBy []string
	if patch.Triggers != nil {
		triggers = dedupe(*patch.Triggers)
		if err := g.checkRefs("triggers", triggers); err != nil {
			return domain.Element{}, nil, err
		}
	}
	if patch.TriggeredBy != nil {
		triggeredBy = dedupe(*patch.TriggeredBy)
		if err := g.checkRefs("triggered_by", triggeredBy); err != nil {
			return domain.Element{}, nil, err
		}
	}
	if patch.Triggers != nil && patch.TriggeredBy != nil &&
		slices.Contains(triggers, id) != slices.Contains(triggeredBy, id) {
		return domain.Element{}, nil, domain.Validation("element %q must list itself in both triggers and triggered_by, or in neither", id)
	}
	if patch.BoundedContextID != nil && *patch.BoundedContextID != "" {
		if _, ok := g.contexts[*patch.BoundedContextID]; !ok {
			return domain.Element{}, nil, domain.InvalidReference("bounded context %q does not exist", *patch.BoundedContextID)
		}
	}

	var updated []string
	if patch.Name != nil {
		el.Name = name
		updated = append(updated, "name")
	}
	if patch.Description != nil {
		el.Description = strings.TrimSpace(*patch.Description)
		updated = append(updated, "description")
	}
	if patch.Position != nil {
		el.Position = *patch.Position
		updated = append(updated, "position")
	}
	if patch.Notes != nil {
		el.Notes = strings.TrimSpace(*patch.Notes)
		updated = append(updated, "notes")
	}
	if patch.Triggers != nil {
		g.setOutgoing(id, triggers)
		updated = append(updated, "triggers")
	}
	if patch.TriggeredBy != nil {
		g.setIncoming(id, triggeredBy)
		updated = append(updated, "triggered_by")
	}
	if patch.BoundedContextID != nil {
		if *patch.BoundedContextID == "" {
			g.detach(id)
		} else {
			g.attach(id, *patch.BoundedContextID)
		}
		updated = append(updated, "bounded_context_id")
	}
	el.UpdatedAt = g.clock()
	return g.materialize(id, nil), updated, nil
}

// DeleteElement removes the element, every edge touching it and its context membership.
func (g *Graph) DeleteElement(id string) (domain.Element, error) {
	if _, ok := g.elements[id]; !ok {
		return domain.Element{}, domain.NotFound("element", id)
	}
	removed := g.materialize(id, nil)

	delete(g.out, id)
	for from, targets := range g.out {
		g.out[from] = slices.DeleteFunc(targets, func(to string) bool { return to == id })
		if len(g.out[from]) == 0 {
			delete(g.out, from)
		}
	}
	g.detach(id)
	delete(g.elements, id)
	g.order = slices.DeleteFunc(g.order, func(e string) bool { return e == id })
	return removed, nil
}

// CreateContext adds a new, empty bounded context.
func (g *Graph) CreateContext(in ContextInput) (domain.BoundedContext, error) {
	name := strings.TrimSpace(in.Name)
	if err := checkName("context name", name, domain.MaxContextNameLength); err != nil {
		return domain.BoundedContext{}, err
	}
	bc := &domain.BoundedContext{
		ID:          g.newID(),
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Color:       strings.TrimSpace(in.Color),
	}
	g.contexts[bc.ID] = bc
	g.ctxOrder = append(g.ctxOrder, bc.ID)
	out, _ := g.Context(bc.ID)
	return out, nil
}

// DeleteContext removes a bounded context and unassigns its members.
func (g *Graph) DeleteContext(id string) (domain.BoundedContext, error) {
	c, ok := g.Context(id)
	if !ok {
		return domain.BoundedContext{}, domain.NotFound("bounded context", id)
	}
	for _, member := range c.ElementIDs {
		g.detach(member)
		if el, ok := g.elements[member]; ok {
			el.UpdatedAt = g.clock()
		}
	}
	delete(g.contexts, id)
	g.ctxOrder = slices.DeleteFunc(g.ctxOrder, func(c string) bool { return c == id })
	return c, nil
}

// AssignToContext moves every known element in elementIDs into the context.
// Unknown element IDs are reported in Skipped instead of failing the batch.
func (g *Graph) AssignToContext(contextID string, elementIDs []string) (AssignmentResult, error) {
	c, ok := g.contexts[contextID]
	if !ok {
		return AssignmentResult{}, domain.InvalidReference("bounded context %q does not exist", contextID)
	}
	res := AssignmentResult{ContextID: contextID, ContextName: c.Name, Assigned: []string{}, Skipped: []string{}}
	now := g.clock()
	for _, id := range dedupe(elementIDs) {
		el, ok := g.elements[id]
		if !ok {
			res.Skipped = append(res.Skipped, id)
			continue
		}
		g.attach(id, contextID)
		el.UpdatedAt = now
		res.Assigned = append(res.Assigned, id)
	}
	return res, nil
}

func (g *Graph) newID() string {
	for {
		id := g.ids.NewID()
		_, isElement := g.elements[id]
		_, isContext := g.contexts[id]
		if !isElement && !isContext {
			return id
		}
	}
}

func (g *Graph) countType(t domain.ElementType) int {
	n := 0
	for _, el := range g.elements {
		if el.Type == t {
			n++
		}
	}
	return n
}

func (g *Graph) checkRefs(field string, refs []string) error {
	for _, ref := range refs {
		if _, ok := g.elements[ref]; !ok {
			return domain.InvalidReference("%s references unknown element %q", field, ref)
		}
	}
	return nil
}

func (g *Graph) addEdge(from, to string) {
	if slices.Contains(g.out[from], to) {
		return
	}
	g.out[from] = append(g.out[from], to)
}

// setOutgoing replaces every edge leaving id.
func (g *Graph) setOutgoing(id string, targets []string) {
	if len(targets) == 0 {
		delete(g.out, id)
		return
	}
	g.out[id] = slices.Clone(targets)
}

// setIncoming replaces every edge entering id.
func (g *Graph) setIncoming(id string, sources []string) {
	for from, targets := range g.out {
		if slices.Contains(sources, from) {
			continue
		}
		g.out[from] = slices.DeleteFunc(targets, func(to string) bool { return to == id })
		if len(g.out[from]) == 0 {
			delete(g.out, from)
		}
	}
	for _, from := range sources {
		g.addEdge(from, id)
	}
}

func checkName(field, name string, max int) error {
	if name == "" {
		return domain.Validation("%s must not be empty", field)
	}
	if n := utf8.RuneCountInString(name); n > max {
		return domain.Validation("%s must be at most %d characters, got %d", field, max, n)
	}
	return nil
}

// dedupe drops empty and repeated IDs, keeping first occurrences in order.
func dedupe(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, id := range in {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
