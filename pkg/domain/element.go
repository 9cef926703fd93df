package domain

import (
	"fmt"
	"strings"
)

// ElementType is the closed set of sticky-note kinds an element can be.
type ElementType string

// ElementType constants define the eight recognized kinds.
const (
	// TypeEvent is a domain event, something that happened (orange).
	TypeEvent ElementType = "event"
	// TypeCommand is an intention or request that causes events (blue).
	TypeCommand ElementType = "command"
	// TypeActor is a person or role issuing commands (yellow).
	TypeActor ElementType = "actor"
	// TypeAggregate is the consistency boundary handling commands (pale yellow).
	TypeAggregate ElementType = "aggregate"
	// TypePolicy is a reactive rule: "whenever X, then Y" (lilac).
	TypePolicy ElementType = "policy"
	// TypeReadModel is information needed to take a decision (green).
	TypeReadModel ElementType = "read_model"
	// TypeExternalSystem is a third party the domain talks to (pink).
	TypeExternalSystem ElementType = "external_system"
	// TypeHotspot marks an unresolved problem or open question (red).
	TypeHotspot ElementType = "hotspot"
)

// ElementTypes lists every kind in canonical order.
var ElementTypes = []ElementType{
	TypeEvent,
	TypeCommand,
	TypeActor,
	TypeAggregate,
	TypePolicy,
	TypeReadModel,
	TypeExternalSystem,
	TypeHotspot,
}

// TypeDescriptor holds the fixed presentation attributes of a kind.
type TypeDescriptor struct {
	Color string // Classic sticky-note color
	Label string // Human-readable label
	Shape string // Mermaid node shape: "rect", "round", "stadium", "hexagon", "subroutine", "rhombus", "circle", "asym"
}

var descriptors = map[ElementType]TypeDescriptor{
	TypeEvent:          {Color: "orange", Label: "Domain Event", Shape: "rect"},
	TypeCommand:        {Color: "blue", Label: "Command", Shape: "round"},
	TypeActor:          {Color: "yellow", Label: "Actor", Shape: "circle"},
	TypeAggregate:      {Color: "pale_yellow", Label: "Aggregate", Shape: "subroutine"},
	TypePolicy:         {Color: "lilac", Label: "Policy", Shape: "hexagon"},
	TypeReadModel:      {Color: "green", Label: "Read Model", Shape: "stadium"},
	TypeExternalSystem: {Color: "pink", Label: "External System", Shape: "asym"},
	TypeHotspot:        {Color: "red", Label: "Hotspot", Shape: "rhombus"},
}

// ParseElementType converts a raw kind into an ElementType.
// Matching is case-insensitive and surrounding whitespace is ignored.
func ParseElementType(raw string) (ElementType, error) {
	t := ElementType(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := descriptors[t]; !ok {
		return "", &Error{Kind: ErrInvalidType, Msg: fmt.Sprintf("%q is not one of %s", raw, typeList())}
	}
	return t, nil
}

// Valid reports whether t is one of the eight recognized kinds.
func (t ElementType) Valid() bool {
	_, ok := descriptors[t]
	return ok
}

// Descriptor returns the presentation attributes of the kind.
func (t ElementType) Descriptor() TypeDescriptor {
	if d, ok := descriptors[t]; ok {
		return d
	}
	return TypeDescriptor{Color: "gray", Label: string(t), Shape: "rect"}
}

// Color returns the classic sticky-note color of the kind.
func (t ElementType) Color() string {
	return t.Descriptor().Color
}

func (t ElementType) String() string {
	return string(t)
}

// TypeNames returns the string form of every kind, useful for enums in tool schemas.
func TypeNames() []string {
	names := make([]string, len(ElementTypes))
	for i, t := range ElementTypes {
		names[i] = string(t)
	}
	return names
}

func typeList() string {
	return strings.Join(TypeNames(), ", ")
}
