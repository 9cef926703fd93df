package mcp

import (
	"encoding/json"
	"errors"

	"github.com/aretw0/eventstorm/internal/presentation/markdown"
	"github.com/aretw0/eventstorm/internal/validator"
	"github.com/aretw0/eventstorm/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mitchellh/mapstructure"
)

const formatJSON = "json"

type sanitizer interface {
	sanitize() error
}

// decodeArgs decodes the tool arguments into out, cleans its free-text
// fields and validates it. Unknown argument names are rejected.
func decodeArgs(req mcp.CallToolRequest, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "mapstructure",
		Result:      out,
		ErrorUnused: true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(req.GetArguments()); err != nil {
		return domain.Validation("invalid arguments: %v", err)
	}
	if s, ok := out.(sanitizer); ok {
		if err := s.sanitize(); err != nil {
			return err
		}
	}
	return validator.Struct(out)
}

// toolError reports err as a tool-level error carrying its kind, so the
// calling model can react without the protocol call failing.
func (s *Server) toolError(tool string, err error) *mcp.CallToolResult {
	kind := domain.KindName(err)
	s.logger.Debug("Tool call failed", "tool", tool, "kind", kind, "err", err)

	body := map[string]string{"error": err.Error(), "kind": kind}
	if hint := suggestion(err); hint != "" {
		body["suggestion"] = hint
	}
	b, mErr := json.MarshalIndent(body, "", "  ")
	if mErr != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultError(string(b))
}

func suggestion(err error) string {
	var de *domain.Error
	if !errors.As(err, &de) {
		return ""
	}
	switch {
	case de.Kind == domain.ErrNotFound && de.Msg == "workshop":
		return "Use eventstorming_list_workshops to see available workshops"
	case de.Kind == domain.ErrNotFound && de.Msg == "element":
		return "Use eventstorming_search_elements or eventstorming_get_timeline to find element IDs"
	case de.Kind == domain.ErrInvalidType:
		return "Valid types: " + joinTypes()
	default:
		return ""
	}
}

func joinTypes() string {
	b, _ := json.Marshal(domain.TypeNames())
	return string(b)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(b)), nil
}

func (s *Server) markdownResult(content, hint string) *mcp.CallToolResult {
	return mcp.NewToolResultText(markdown.Truncate(content, s.charLimit, hint))
}

func (s *Server) page(p pageOptions) (int, int) {
	page, size := p.Page, p.PageSize
	if page == 0 {
		page = 1
	}
	if size == 0 {
		size = s.pageSize
	}
	return page, size
}

// elementSummary carries the essential fields of an element.
type elementSummary struct {
	ID               string             `json:"id"`
	Type             domain.ElementType `json:"type"`
	Name             string             `json:"name"`
	Position         int                `json:"position"`
	BoundedContextID string             `json:"bounded_context_id"`
}

func summarize(els []domain.Element) []elementSummary {
	out := make([]elementSummary, 0, len(els))
	for _, el := range els {
		out = append(out, elementSummary{
			ID:               el.ID,
			Type:             el.Type,
			Name:             el.Name,
			Position:         el.Position,
			BoundedContextID: el.BoundedContextID,
		})
	}
	return out
}

// elementsFor renders a page of elements at the requested detail level.
func elementsFor(els []domain.Element, detail markdown.Detail) any {
	if detail == markdown.DetailFull {
		if els == nil {
			return []domain.Element{}
		}
		return els
	}
	return summarize(els)
}

func workshopList(list []domain.Summary) map[string]any {
	if list == nil {
		list = []domain.Summary{}
	}
	return map[string]any{"workshops": list, "total": len(list)}
}
