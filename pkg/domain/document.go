package domain

import (
	"cmp"
	"slices"
	"time"
)

// SchemaVersion is the only document layout this engine reads and writes.
const SchemaVersion = "2.0"

// Document is the persisted and exported form of a workshop.
// Field names and nesting are the interchange contract and must round-trip exactly.
type Document struct {
	Metadata        Metadata         `json:"metadata" yaml:"metadata"`
	Elements        []Element        `json:"elements" yaml:"elements"`
	BoundedContexts []BoundedContext `json:"bounded_contexts" yaml:"bounded_contexts"`
}

// Metadata describes the workshop itself.
type Metadata struct {
	ID            string    `json:"id" yaml:"id"`
	Name          string    `json:"name" yaml:"name"`
	Description   string    `json:"description" yaml:"description"`
	Domain        string    `json:"domain" yaml:"domain"`
	CreatedAt     time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" yaml:"updated_at"`
	Facilitators  []string  `json:"facilitators" yaml:"facilitators"`
	SchemaVersion string    `json:"schema_version" yaml:"schema_version"`
}

// Element is a typed node of the workshop graph.
//
// Triggers and TriggeredBy are two views over one edge set; they are
// derived by the graph package and must never be edited independently.
type Element struct {
	ID               string      `json:"id" yaml:"id"`
	Type             ElementType `json:"type" yaml:"type"`
	Name             string      `json:"name" yaml:"name"`
	Description      string      `json:"description" yaml:"description"`
	Position         int         `json:"position" yaml:"position"`
	Notes            string      `json:"notes" yaml:"notes"`
	CreatedBy        string      `json:"created_by" yaml:"created_by"`
	CreatedAt        time.Time   `json:"created_at" yaml:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at" yaml:"updated_at"`
	Triggers         []string    `json:"triggers" yaml:"triggers"`
	TriggeredBy      []string    `json:"triggered_by" yaml:"triggered_by"`
	BoundedContextID string      `json:"bounded_context_id,omitempty" yaml:"bounded_context_id,omitempty"`
}

// BoundedContext is a named grouping of elements.
type BoundedContext struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Color       string   `json:"color,omitempty" yaml:"color,omitempty"`
	ElementIDs  []string `json:"element_ids" yaml:"element_ids"`
}

// Summary is the listing record of a workshop, produced without a full graph load.
type Summary struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Domain       string    `json:"domain"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	ElementCount int       `json:"element_count"`
	ContextCount int       `json:"context_count"`
}

// NewDocument creates an empty workshop document.
func NewDocument(id, name string, now time.Time) *Document {
	return &Document{
		Metadata: Metadata{
			ID:            id,
			Name:          name,
			CreatedAt:     now,
			UpdatedAt:     now,
			Facilitators:  []string{},
			SchemaVersion: SchemaVersion,
		},
		Elements:        []Element{},
		BoundedContexts: []BoundedContext{},
	}
}

// Summarize returns the listing record of the document.
func (d *Document) Summarize() Summary {
	return Summary{
		ID:           d.Metadata.ID,
		Name:         d.Metadata.Name,
		Domain:       d.Metadata.Domain,
		CreatedAt:    d.Metadata.CreatedAt,
		UpdatedAt:    d.Metadata.UpdatedAt,
		ElementCount: len(d.Elements),
		ContextCount: len(d.BoundedContexts),
	}
}

// SortSummaries orders summaries most recently updated first, then by ID.
func SortSummaries(s []Summary) {
	slices.SortFunc(s, func(a, b Summary) int {
		return cmp.Or(b.UpdatedAt.Compare(a.UpdatedAt), cmp.Compare(a.ID, b.ID))
	})
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := &Document{
		Metadata:        d.Metadata,
		Elements:        make([]Element, len(d.Elements)),
		BoundedContexts: make([]BoundedContext, len(d.BoundedContexts)),
	}
	out.Metadata.Facilitators = cloneStrings(d.Metadata.Facilitators)
	for i, e := range d.Elements {
		out.Elements[i] = e.Clone()
	}
	for i, c := range d.BoundedContexts {
		c.ElementIDs = cloneStrings(c.ElementIDs)
		out.BoundedContexts[i] = c
	}
	return out
}

// Clone returns a copy of the element with its own edge slices.
func (e Element) Clone() Element {
	e.Triggers = cloneStrings(e.Triggers)
	e.TriggeredBy = cloneStrings(e.TriggeredBy)
	return e
}

// Normalize replaces nil slices with empty ones so the document encodes
// arrays instead of nulls.
func (d *Document) Normalize() {
	if d.Metadata.Facilitators == nil {
		d.Metadata.Facilitators = []string{}
	}
	if d.Elements == nil {
		d.Elements = []Element{}
	}
	if d.BoundedContexts == nil {
		d.BoundedContexts = []BoundedContext{}
	}
	for i := range d.Elements {
		if d.Elements[i].Triggers == nil {
			d.Elements[i].Triggers = []string{}
		}
		if d.Elements[i].TriggeredBy == nil {
			d.Elements[i].TriggeredBy = []string{}
		}
	}
	for i := range d.BoundedContexts {
		if d.BoundedContexts[i].ElementIDs == nil {
			d.BoundedContexts[i].ElementIDs = []string{}
		}
	}
}

func cloneStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return slices.Clone(in)
}
