// Package markdown renders engine reports as markdown for MCP responses and
// the CLI.
package markdown

import (
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aretw0/eventstorm/pkg/domain"
	"github.com/aretw0/eventstorm/pkg/flow"
	"github.com/aretw0/eventstorm/pkg/query"
)

// DefaultCharacterLimit caps the size of a rendered response.
const DefaultCharacterLimit = 25000

// shortNotes is the longest note shown inline in a flow tree.
const shortNotes = 100

// Detail selects how much of each element is rendered.
type Detail string

// Detail levels.
const (
	DetailSummary Detail = "summary"
	DetailFull    Detail = "full"
)

// ParseDetail converts raw into a Detail. Empty input selects DetailSummary.
func ParseDetail(raw string) (Detail, error) {
	switch d := Detail(strings.ToLower(strings.TrimSpace(raw))); d {
	case "":
		return DetailSummary, nil
	case DetailSummary, DetailFull:
		return d, nil
	default:
		return "", domain.Validation("detail_level must be summary or full, got %q", raw)
	}
}

// ElementSummary renders el as a single list item.
func ElementSummary(el domain.Element) string {
	return fmt.Sprintf("- [%s] **%s** (pos: %d, id: `%s`)", el.Type, el.Name, el.Position, el.ID)
}

// Element renders every attribute of el.
func Element(el domain.Element) string {
	lines := []string{
		fmt.Sprintf("**[%s]** %s `%s` (%s)", strings.ToUpper(string(el.Type)), el.Name, el.ID, el.Type.Color()),
		fmt.Sprintf("  Position: %d", el.Position),
	}
	if el.Notes != "" {
		lines = append(lines, "  Notes: "+el.Notes)
	}
	if el.BoundedContextID != "" {
		lines = append(lines, "  Context: "+el.BoundedContextID)
	}
	if len(el.TriggeredBy) > 0 {
		lines = append(lines, "  Triggered by: "+strings.Join(el.TriggeredBy, ", "))
	}
	if len(el.Triggers) > 0 {
		lines = append(lines, "  Triggers: "+strings.Join(el.Triggers, ", "))
	}
	return strings.Join(lines, "\n")
}

// Pagination renders the page header with navigation hints.
func Pagination(p query.PageInfo) string {
	line := fmt.Sprintf("**Page %d of %d** (showing %d of %d items)", p.Page, p.TotalPages, p.Shown(), p.TotalItems)
	var hints []string
	if p.HasNext {
		hints = append(hints, fmt.Sprintf("Use `page=%d` for next page", p.Page+1))
	}
	if p.HasPrev {
		hints = append(hints, fmt.Sprintf("Use `page=%d` for previous page", p.Page-1))
	}
	if len(hints) == 0 {
		return line
	}
	return line + "\n💡 " + strings.Join(hints, " | ")
}

// Truncate cuts content to limit characters and appends a notice with an
// optional suggestion. Content within the limit is returned unchanged.
func Truncate(content string, limit int, suggestion string) string {
	if limit <= 0 {
		limit = DefaultCharacterLimit
	}
	total := utf8.RuneCountInString(content)
	if total <= limit {
		return content
	}
	cut := content[:byteOffset(content, limit)]
	notice := fmt.Sprintf("\n\n⚠️ Response truncated (showing ~%d/%d characters)", limit, total)
	if suggestion != "" {
		notice += "\n💡 " + suggestion
	}
	return cut + notice
}

func byteOffset(s string, runes int) int {
	n := 0
	for i := range s {
		if n == runes {
			return i
		}
		n++
	}
	return len(s)
}

// Workshop renders a workshop document.
func Workshop(doc *domain.Document, detail Detail) string {
	m := doc.Metadata
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Workshop: %s\n", m.Name)
	fmt.Fprintf(&sb, "**ID**: `%s`\n", m.ID)
	fmt.Fprintf(&sb, "**Domain**: %s\n", orUnspecified(m.Domain))
	fmt.Fprintf(&sb, "**Created**: %s\n", stamp(m.CreatedAt))
	fmt.Fprintf(&sb, "**Updated**: %s\n\n", stamp(m.UpdatedAt))
	if m.Description != "" {
		fmt.Fprintf(&sb, "**Description**: %s\n\n", m.Description)
	}
	if len(m.Facilitators) > 0 {
		fmt.Fprintf(&sb, "**Facilitators**: %s\n\n", strings.Join(m.Facilitators, ", "))
	}

	sb.WriteString("## Statistics\n")
	fmt.Fprintf(&sb, "- Total Elements: %d\n", len(doc.Elements))
	fmt.Fprintf(&sb, "- Bounded Contexts: %d\n\n", len(doc.BoundedContexts))

	counts := make(map[domain.ElementType]int)
	for _, el := range doc.Elements {
		counts[el.Type]++
	}
	if len(counts) > 0 {
		sb.WriteString("### Elements by Type\n")
		for _, t := range domain.ElementTypes {
			if n := counts[t]; n > 0 {
				fmt.Fprintf(&sb, "- %s: %d\n", t, n)
			}
		}
		sb.WriteString("\n")
	}

	if len(doc.BoundedContexts) > 0 {
		sb.WriteString("## Bounded Contexts\n")
		for _, c := range doc.BoundedContexts {
			fmt.Fprintf(&sb, "- **%s** (`%s`): %d elements\n", c.Name, c.ID, len(c.ElementIDs))
		}
		sb.WriteString("\n")
	}

	if len(doc.Elements) == 0 {
		return strings.TrimRight(sb.String(), "\n")
	}
	els := slices.Clone(doc.Elements)
	if detail == DetailFull {
		query.SortTimeline(els)
		sb.WriteString("## Elements\n")
		for _, el := range els {
			sb.WriteString(Element(el))
			sb.WriteString("\n\n")
		}
		return strings.TrimRight(sb.String(), "\n")
	}

	slices.SortStableFunc(els, func(a, b domain.Element) int {
		if c := strings.Compare(string(a.Type), string(b.Type)); c != 0 {
			return c
		}
		return a.Position - b.Position
	})
	sb.WriteString("## Elements (Summary)\n")
	for _, el := range els {
		sb.WriteString(ElementSummary(el))
		sb.WriteString("\n")
	}
	sb.WriteString("\n💡 Use `detail_level=full` to see all element details")
	return sb.String()
}

// Search renders one page of search results.
func Search(term string, page []domain.Element, info query.PageInfo, detail Detail) string {
	lines := []string{
		fmt.Sprintf("# Search Results: '%s'", term),
		fmt.Sprintf("Found %d matching element(s)", info.TotalItems),
		"",
		Pagination(info),
		"",
	}
	if len(page) == 0 {
		lines = append(lines, "No matching elements found on this page.")
	}
	lines = append(lines, elementLines(page, detail)...)
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

// TimelineHeader names the workshop and the filters a timeline was built with.
type TimelineHeader struct {
	Workshop string
	Type     domain.ElementType
	Context  string // Context name, not ID
}

// Timeline renders one page of the timeline. Full detail groups elements
// under a heading per position.
func Timeline(h TimelineHeader, page []domain.Element, info query.PageInfo, detail Detail) string {
	lines := []string{"# Timeline: " + h.Workshop, ""}
	if h.Type != "" {
		lines = append(lines, "Filter: "+string(h.Type))
	}
	if h.Context != "" {
		lines = append(lines, "Context: "+h.Context)
	}
	lines = append(lines, "", Pagination(info), "")

	if len(page) == 0 {
		lines = append(lines, "No elements found on this page.")
		return strings.Join(lines, "\n")
	}
	if detail != DetailFull {
		return strings.Join(append(lines, elementLines(page, detail)...), "\n")
	}
	current := -1
	for _, el := range page {
		if el.Position != current {
			current = el.Position
			lines = append(lines, fmt.Sprintf("\n## Position %d", current))
		}
		lines = append(lines, Element(el), "")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

// Statistics renders the aggregate report of a workshop.
func Statistics(st query.Statistics) string {
	lines := []string{
		"# Workshop Statistics: " + st.Workshop.Name,
		"",
		"## Overview",
		"- **Domain**: " + orUnspecified(st.Workshop.Domain),
		"- **Created**: " + stamp(st.Workshop.CreatedAt),
		"- **Last Updated**: " + stamp(st.Workshop.UpdatedAt),
		fmt.Sprintf("- **Total Elements**: %d", st.Totals.Elements),
		fmt.Sprintf("- **Bounded Contexts**: %d", st.Totals.BoundedContexts),
		"",
		"## Elements by Type",
	}
	for _, t := range domain.ElementTypes {
		if n := st.ByType[string(t)]; n > 0 {
			lines = append(lines, fmt.Sprintf("- **%s**: %d", t, n))
		}
	}
	if len(st.ByContext) > 0 {
		lines = append(lines, "", "## Elements by Bounded Context")
		for _, c := range st.ByContext {
			lines = append(lines, fmt.Sprintf("- **%s**: %d", c.Name, c.Count))
		}
	}
	lines = append(lines,
		"",
		"## Relationships",
		fmt.Sprintf("- Elements with outgoing triggers: %d", st.Relationships.ElementsWithTriggers),
		fmt.Sprintf("- Elements with incoming triggers: %d", st.Relationships.ElementsWithTriggeredBy),
		fmt.Sprintf("- Total trigger links: %d", st.Relationships.TotalTriggerEdges),
	)
	if len(st.SelfTriggering) > 0 {
		lines = append(lines, "- Self-triggering elements: "+strings.Join(st.SelfTriggering, ", "))
	}
	lines = append(lines,
		"",
		"## Context Coverage",
		fmt.Sprintf("- Elements assigned to contexts: %d", st.Coverage.Assigned),
		fmt.Sprintf("- Elements without context: %d", st.Coverage.Unassigned),
	)
	if st.Totals.Elements > 0 {
		lines = append(lines, fmt.Sprintf("- **Coverage**: %.1f%% of elements are contextualized", st.Coverage.Percentage))
	}
	return strings.Join(lines, "\n")
}

// Overview renders the bounded context report. Members of every context are
// paginated independently with the same page parameters.
func Overview(ov query.Overview, page, pageSize int, detail Detail) string {
	lines := []string{"# Bounded Contexts: " + ov.Workshop, ""}
	if len(ov.Contexts) == 0 {
		return strings.Join(append(lines, "No bounded contexts defined."), "\n")
	}

	for _, r := range ov.Contexts {
		lines = append(lines, "## "+r.Context.Name, fmt.Sprintf("**ID**: `%s`", r.Context.ID))
		if r.Context.Description != "" {
			lines = append(lines, "**Description**: "+r.Context.Description)
		}
		if r.Context.Color != "" {
			lines = append(lines, "**Color**: "+r.Context.Color)
		}
		lines = append(lines,
			fmt.Sprintf("**Total Elements**: %d", r.ElementCount),
			fmt.Sprintf("**Balance**: %s", r.Balance),
		)

		if r.ElementCount > 0 {
			lines = append(lines, "\n### Element Breakdown")
			for _, t := range domain.ElementTypes {
				if n := r.TypeBreakdown[string(t)]; n > 0 {
					lines = append(lines, fmt.Sprintf("- %s: %d", t, n))
				}
			}
			members, info := query.Paginate(r.Elements, page, pageSize)
			lines = append(lines, "", "### Elements", Pagination(info), "")
			lines = append(lines, elementLines(members, detail)...)
		}
		lines = append(lines, "")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

// Flow renders a traversal report as an indented tree. Cycle closures are
// marked with ↻ and nodes past the depth limit with …
func Flow(rep flow.Report) string {
	lines := []string{"# Event Flow Visualization: " + rep.Workshop, ""}

	switch {
	case rep.StartID != "" && len(rep.Trees) > 0:
		lines = append(lines, "## Flow from: "+rep.Trees[0].Name, "")
		lines = appendTree(lines, rep.Trees[0], 0)
	case len(rep.Trees) == 0 && len(rep.Orphans) == 0:
		lines = append(lines, "No elements to trace.")
	case len(rep.Trees) == 0:
		lines = append(lines,
			"No root elements found (all elements are triggered by something).",
			"This might indicate circular dependencies or incomplete modeling.",
		)
	default:
		lines = append(lines, fmt.Sprintf("Found %d root element(s)", len(rep.Trees)), "")
		for _, root := range rep.Trees {
			lines = append(lines, "## Flow from: "+root.Name)
			lines = appendTree(lines, root, 0)
			lines = append(lines, "")
		}
	}

	if len(rep.Orphans) > 0 {
		lines = append(lines, "", "## Unreachable from any root")
		for _, el := range rep.Orphans {
			lines = append(lines, ElementSummary(el))
		}
	}
	if rep.Limited {
		lines = append(lines, "", fmt.Sprintf(
			"⚠️ Display limit reached (%d elements). Use start_element_id to focus on specific flows.", rep.MaxElements))
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

func appendTree(lines []string, n *flow.Node, indent int) []string {
	prefix := strings.Repeat("  ", indent)
	marker, suffix := "→", ""
	switch {
	case n.Cycle:
		marker, suffix = "↻", " (cycle)"
	case n.Truncated:
		marker, suffix = "…", " (depth limit)"
	}
	lines = append(lines, fmt.Sprintf("%s%s [%s] **%s** `%s`%s", prefix, marker, n.Type, n.Name, n.ID, suffix))
	if n.Notes != "" && utf8.RuneCountInString(n.Notes) < shortNotes && !n.Cycle && !n.Truncated {
		lines = append(lines, fmt.Sprintf("%s  _%s_", prefix, n.Notes))
	}
	for _, c := range n.Children {
		lines = appendTree(lines, c, indent+1)
	}
	return lines
}

func elementLines(els []domain.Element, detail Detail) []string {
	lines := make([]string, 0, len(els))
	for _, el := range els {
		if detail == DetailFull {
			lines = append(lines, Element(el), "")
			continue
		}
		lines = append(lines, ElementSummary(el))
	}
	return lines
}

func orUnspecified(s string) string {
	if s == "" {
		return "Not specified"
	}
	return s
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.Format(time.RFC3339)
}
