package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/eventstorm/pkg/domain"
	"github.com/aretw0/eventstorm/pkg/flow"
)

// Overlay highlights part of the workshop on the chart.
type Overlay struct {
	Path  []string // Elements on a traced flow
	Focus string   // The element the flow starts from
}

// FlowOverlay highlights every element reached by a traced flow and marks
// its start element as the focus.
func FlowOverlay(rep flow.Report) *Overlay {
	o := &Overlay{Focus: rep.StartID}
	rep.Walk(func(n *flow.Node) {
		o.Path = append(o.Path, n.ID)
	})
	return o
}

// fills maps the sticky-note color of each kind to a fill.
var fills = map[string]string{
	"orange":      "#ffb74d",
	"blue":        "#64b5f6",
	"yellow":      "#fff176",
	"pale_yellow": "#fff9c4",
	"lilac":       "#ce93d8",
	"green":       "#81c784",
	"pink":        "#f48fb1",
	"red":         "#e57373",
}

// GenerateMermaid produces a Mermaid flowchart of the workshop.
// Node shapes follow the element kind:
// - event: [Rectangle]
// - command: (Rounded)
// - actor: ((Circle))
// - aggregate: [[Subroutine]]
// - policy: {{Hexagon}}
// - read model: ([Stadium])
// - external system: >Asymmetric]
// - hotspot: {Rhombus}
// Members of a bounded context are drawn inside its subgraph. Trigger edges
// that cross a context boundary are dotted.
func GenerateMermaid(doc *domain.Document, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	members := make(map[string][]domain.Element)
	var loose []domain.Element
	for _, el := range doc.Elements {
		if el.BoundedContextID == "" {
			loose = append(loose, el)
			continue
		}
		members[el.BoundedContextID] = append(members[el.BoundedContextID], el)
	}

	for _, c := range doc.BoundedContexts {
		fmt.Fprintf(&sb, "    subgraph %s[\"%s\"]\n", sanitizeMermaidID(c.ID), escapeLabel(c.Name))
		for _, el := range members[c.ID] {
			sb.WriteString("        " + nodeDecl(el) + "\n")
		}
		sb.WriteString("    end\n")
	}
	for _, el := range loose {
		sb.WriteString("    " + nodeDecl(el) + "\n")
	}

	contextOf := make(map[string]string, len(doc.Elements))
	for _, el := range doc.Elements {
		contextOf[el.ID] = el.BoundedContextID
	}
	for _, el := range doc.Elements {
		for _, to := range el.Triggers {
			arrow := "-->"
			if contextOf[el.ID] != contextOf[to] {
				arrow = "-.->"
			}
			fmt.Fprintf(&sb, "    %s %s %s\n", sanitizeMermaidID(el.ID), arrow, sanitizeMermaidID(to))
		}
	}

	byType := make(map[domain.ElementType][]string)
	for _, el := range doc.Elements {
		byType[el.Type] = append(byType[el.Type], sanitizeMermaidID(el.ID))
	}
	if len(byType) > 0 {
		sb.WriteString("\n")
	}
	for _, t := range domain.ElementTypes {
		ids, ok := byType[t]
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, "    classDef %s fill:%s,stroke:#333,color:#000;\n", t, fills[t.Color()])
		fmt.Fprintf(&sb, "    class %s %s;\n", strings.Join(ids, ","), t)
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef path stroke:#01579b,stroke-width:3px;\n")
		sb.WriteString("    classDef focus stroke:#d50000,stroke-width:4px;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.Path {
			safeID := sanitizeMermaidID(id)
			if !seen[safeID] && safeID != "" {
				seen[safeID] = true
				fmt.Fprintf(&sb, "    class %s path;\n", safeID)
			}
		}
		if overlay.Focus != "" {
			fmt.Fprintf(&sb, "    class %s focus;\n", sanitizeMermaidID(overlay.Focus))
		}
	}

	return sb.String()
}

func nodeDecl(el domain.Element) string {
	opener, closer := shape(el.Type.Descriptor().Shape)
	return fmt.Sprintf("%s%s\"%s\"%s", sanitizeMermaidID(el.ID), opener, escapeLabel(el.Name), closer)
}

func shape(name string) (string, string) {
	switch name {
	case "round":
		return "(", ")"
	case "circle":
		return "((", "))"
	case "subroutine":
		return "[[", "]]"
	case "hexagon":
		return "{{", "}}"
	case "stadium":
		return "([", "])"
	case "asym":
		return ">", "]"
	case "rhombus":
		return "{", "}"
	default:
		return "[", "]"
	}
}

// escapeLabel keeps labels inside their double quotes.
func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
