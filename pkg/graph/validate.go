package graph

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/aretw0/eventstorm/pkg/domain"
)

// Validate checks every workshop invariant against doc and returns the
// first inconsistency found as ErrValidationFailed.
func Validate(doc *domain.Document) error {
	if doc == nil {
		return domain.Validation("document is empty")
	}
	if err := validateMetadata(doc.Metadata); err != nil {
		return err
	}

	elements := make(map[string]*domain.Element, len(doc.Elements))
	for i := range doc.Elements {
		el := &doc.Elements[i]
		if el.ID == "" {
			return domain.Validation("element #%d has no id", i)
		}
		if _, dup := elements[el.ID]; dup {
			return domain.Validation("duplicate element id %q", el.ID)
		}
		if !el.Type.Valid() {
			_, cause := domain.ParseElementType(string(el.Type))
			return &domain.Error{Kind: domain.ErrValidationFailed, ID: el.ID, Msg: "element has an unknown type", Err: cause}
		}
		if err := checkStoredName(fmt.Sprintf("element %q name", el.ID), el.Name, domain.MaxNameLength); err != nil {
			return err
		}
		if el.Position < 0 {
			return domain.Validation("element %q has negative position %d", el.ID, el.Position)
		}
		elements[el.ID] = el
	}

	if err := validateEdges(doc.Elements, elements); err != nil {
		return err
	}
	return validateContexts(doc, elements)
}

func validateMetadata(m domain.Metadata) error {
	if m.SchemaVersion != "" && m.SchemaVersion != domain.SchemaVersion {
		return domain.Validation("unsupported schema version %q (expected %q)", m.SchemaVersion, domain.SchemaVersion)
	}
	if err := checkStoredName("workshop name", m.Name, domain.MaxNameLength); err != nil {
		return err
	}
	if len(m.Facilitators) > domain.MaxFacilitators {
		return domain.Validation("workshop has %d facilitators, at most %d allowed", len(m.Facilitators), domain.MaxFacilitators)
	}
	return nil
}

func validateEdges(list []domain.Element, elements map[string]*domain.Element) error {
	type edge struct{ from, to string }
	forward := make(map[edge]struct{})
	backward := make(map[edge]struct{})

	for _, el := range list {
		for _, to := range el.Triggers {
			if _, ok := elements[to]; !ok {
				return domain.Validation("element %q triggers unknown element %q", el.ID, to)
			}
			e := edge{el.ID, to}
			if _, dup := forward[e]; dup {
				return domain.Validation("element %q lists trigger %q twice", el.ID, to)
			}
			forward[e] = struct{}{}
		}
		for _, from := range el.TriggeredBy {
			if _, ok := elements[from]; !ok {
				return domain.Validation("element %q is triggered by unknown element %q", el.ID, from)
			}
			e := edge{from, el.ID}
			if _, dup := backward[e]; dup {
				return domain.Validation("element %q lists triggered_by %q twice", el.ID, from)
			}
			backward[e] = struct{}{}
		}
	}

	// Walk in document order so the reported inconsistency is deterministic.
	for _, el := range list {
		for _, to := range el.Triggers {
			if _, ok := backward[edge{el.ID, to}]; !ok {
				return domain.Validation("element %q triggers %q but %q does not list it in triggered_by", el.ID, to, to)
			}
		}
		for _, from := range el.TriggeredBy {
			if _, ok := forward[edge{from, el.ID}]; !ok {
				return domain.Validation("element %q is triggered by %q but %q does not list it in triggers", el.ID, from, from)
			}
		}
	}
	return nil
}

func validateContexts(doc *domain.Document, elements map[string]*domain.Element) error {
	contexts := make(map[string]struct{}, len(doc.BoundedContexts))
	memberOf := make(map[string]string)

	for i, c := range doc.BoundedContexts {
		if c.ID == "" {
			return domain.Validation("bounded context #%d has no id", i)
		}
		if _, dup := contexts[c.ID]; dup {
			return domain.Validation("duplicate bounded context id %q", c.ID)
		}
		if _, clash := elements[c.ID]; clash {
			return domain.Validation("bounded context id %q is already used by an element", c.ID)
		}
		if err := checkStoredName(fmt.Sprintf("bounded context %q name", c.ID), c.Name, domain.MaxContextNameLength); err != nil {
			return err
		}
		contexts[c.ID] = struct{}{}

		for _, id := range c.ElementIDs {
			el, ok := elements[id]
			if !ok {
				return domain.Validation("bounded context %q lists unknown element %q", c.ID, id)
			}
			if prev, taken := memberOf[id]; taken {
				if prev == c.ID {
					return domain.Validation("bounded context %q lists element %q twice", c.ID, id)
				}
				return domain.Validation("element %q is listed by both bounded contexts %q and %q", id, prev, c.ID)
			}
			if el.BoundedContextID != c.ID {
				return domain.Validation("bounded context %q lists element %q whose bounded_context_id is %q", c.ID, id, el.BoundedContextID)
			}
			memberOf[id] = c.ID
		}
	}

	for _, el := range doc.Elements {
		if el.BoundedContextID == "" {
			continue
		}
		if _, ok := contexts[el.BoundedContextID]; !ok {
			return domain.Validation("element %q references unknown bounded context %q", el.ID, el.BoundedContextID)
		}
		if memberOf[el.ID] != el.BoundedContextID {
			return domain.Validation("element %q claims bounded context %q which does not list it", el.ID, el.BoundedContextID)
		}
	}
	return nil
}

func checkStoredName(field, name string, max int) error {
	if strings.TrimSpace(name) == "" {
		return domain.Validation("%s must not be empty", field)
	}
	if n := utf8.RuneCountInString(name); n > max {
		return domain.Validation("%s must be at most %d characters, got %d", field, max, n)
	}
	return nil
}
