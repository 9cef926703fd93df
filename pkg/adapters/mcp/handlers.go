package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/eventstorm"
	"github.com/aretw0/eventstorm/internal/presentation/markdown"
	"github.com/aretw0/eventstorm/pkg/codec"
	"github.com/aretw0/eventstorm/pkg/domain"
	"github.com/aretw0/eventstorm/pkg/flow"
	"github.com/aretw0/eventstorm/pkg/graph"
	"github.com/aretw0/eventstorm/pkg/query"
	"github.com/mark3labs/mcp-go/mcp"
)

// MaxImportSize bounds the workshop_data argument of an import.
const MaxImportSize = 10 << 20

func (s *Server) handleCreateWorkshop(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in createWorkshopInput
	if err := decodeArgs(req, &in); err != nil {
		return s.toolError(ToolCreateWorkshop, err), nil
	}
	doc, err := s.engine.CreateWorkshop(ctx, eventstorm.CreateWorkshopInput{
		Name:         in.Name,
		Description:  in.Description,
		Domain:       in.Domain,
		Facilitators: in.Facilitators,
	})
	if err != nil {
		return s.toolError(ToolCreateWorkshop, err), nil
	}
	return jsonResult(map[string]any{
		"success":     true,
		"workshop_id": doc.Metadata.ID,
		"name":        doc.Metadata.Name,
		"message":     fmt.Sprintf("Workshop '%s' created successfully", doc.Metadata.Name),
	})
}

func (s *Server) handleListWorkshops(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in struct{}
	if err := decodeArgs(req, &in); err != nil {
		return s.toolError(ToolListWorkshops, err), nil
	}
	list, err := s.engine.ListWorkshops(ctx)
	if err != nil {
		return s.toolError(ToolListWorkshops, err), nil
	}
	return jsonResult(workshopList(list))
}

func (s *Server) handleLoadWorkshop(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in loadWorkshopInput
	if err := decodeArgs(req, &in); err != nil {
		return s.toolError(ToolLoadWorkshop, err), nil
	}
	doc, err := s.engine.LoadWorkshop(ctx, in.WorkshopID)
	if err != nil {
		return s.toolError(ToolLoadWorkshop, err), nil
	}
	detail, _ := markdown.ParseDetail(in.DetailLevel)

	if in.ResponseFormat == formatJSON {
		if detail == markdown.DetailFull {
			return jsonResult(doc)
		}
		contexts := make([]map[string]any, 0, len(doc.BoundedContexts))
		for _, c := range doc.BoundedContexts {
			contexts = append(contexts, map[string]any{"id": c.ID, "name": c.Name, "element_count": len(c.ElementIDs)})
		}
		return jsonResult(map[string]any{
			"metadata":         doc.Metadata,
			"elements":         summarize(doc.Elements),
			"bounded_contexts": contexts,
			"statistics": map[string]int{
				"total_elements": len(doc.Elements),
				"total_contexts": len(doc.BoundedContexts),
			},
		})
	}
	return s.markdownResult(markdown.Workshop(doc, detail), "Use specific queries to explore elements and contexts"), nil
}

func (s *Server) handleDeleteWorkshop(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in workshopRef
	if err := decodeArgs(req, &in); err != nil {
		return s.toolError(ToolDeleteWorkshop, err), nil
	}
	if err := s.engine.DeleteWorkshop(ctx, in.WorkshopID); err != nil {
		return s.toolError(ToolDeleteWorkshop, err), nil
	}
	return jsonResult(map[string]any{
		"success":     true,
		"workshop_id": in.WorkshopID,
		"message":     fmt.Sprintf("Workshop '%s' deleted successfully", in.WorkshopID),
	})
}

func (s *Server) handleAddElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in addElementInput
	if err := decodeArgs(req, &in); err != nil {
		return s.toolError(ToolAddElement, err), nil
	}
	el, err := s.engine.AddElement(ctx, in.WorkshopID, graph.ElementInput{
		Type:             in.Type,
		Name:             in.Name,
		Description:      in.Description,
		Position:         in.Position,
		Notes:            in.Notes,
		CreatedBy:        in.CreatedBy,
		Triggers:         in.Triggers,
		TriggeredBy:      in.TriggeredBy,
		BoundedContextID: in.BoundedContextID,
	})
	if err != nil {
		return s.toolError(ToolAddElement, err), nil
	}
	return jsonResult(map[string]any{
		"success":    true,
		"element_id": el.ID,
		"type":       el.Type,
		"name":       el.Name,
		"position":   el.Position,
		"message":    fmt.Sprintf("%s '%s' added successfully", el.Type.Descriptor().Label, el.Name),
	})
}

func (s *Server) handleUpdateElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in updateElementInput
	if err := decodeArgs(req, &in); err != nil {
		return s.toolError(ToolUpdateElement, err), nil
	}
	el, fields, err := s.engine.UpdateElement(ctx, in.WorkshopID, in.ElementID, graph.ElementPatch{
		Name:             in.Name,
		Description:      in.Description,
		Position:         in.Position,
		Notes:            in.Notes,
		Triggers:         in.Triggers,
		TriggeredBy:      in.TriggeredBy,
		BoundedContextID: in.BoundedContextID,
	})
	if err != nil {
		return s.toolError(ToolUpdateElement, err), nil
	}
	if fields == nil {
		fields = []string{}
	}
	return jsonResult(map[string]any{
		"success":        true,
		"element_id":     el.ID,
		"updated_fields": fields,
		"message":        "Element updated successfully",
	})
}

func (s *Server) handleDeleteElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in elementRef
	if err := decodeArgs(req, &in); err != nil {
		return s.toolError(ToolDeleteElement, err), nil
	}
	el, err := s.engine.DeleteElement(ctx, in.WorkshopID, in.ElementID)
	if err != nil {
		return s.toolError(ToolDeleteElement, err), nil
	}
	return jsonResult(map[string]any{
		"success": true,
		"deleted_element": map[string]any{
			"id":   el.ID,
			"name": el.Name,
			"type": el.Type,
		},
		"message": fmt.Sprintf("%s '%s' deleted successfully", el.Type.Descriptor().Label, el.Name),
	})
}

func (s *Server) handleCreateContext(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in createContextInput
	if err := decodeArgs(req, &in); err != nil {
		return s.toolError(ToolCreateContext, err), nil
	}
	bc, err := s.engine.CreateContext(ctx, in.WorkshopID, graph.ContextInput{
		Name:        in.Name,
		Description: in.Description,
		Color:       in.Color,
	})
	if err != nil {
		return s.toolError(ToolCreateContext, err), nil
	}
	return jsonResult(map[string]any{
		"success":    true,
		"context_id": bc.ID,
		"name":       bc.Name,
		"message":    fmt.Sprintf("Bounded context '%s' created successfully", bc.Name),
	})
}

func (s *Server) handleDeleteContext(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in contextRef
	if err := decodeArgs(req, &in); err != nil {
		return s.toolError(ToolDeleteContext, err), nil
	}
	bc, err := s.engine.DeleteContext(ctx, in.WorkshopID, in.ContextID)
	if err != nil {
		return s.toolError(ToolDeleteContext, err), nil
	}
	return jsonResult(map[string]any{
		"success":          true,
		"deleted_context":  map[string]any{"id": bc.ID, "name": bc.Name},
		"unassigned_count": len(bc.ElementIDs),
		"message":          fmt.Sprintf("Bounded context '%s' deleted successfully", bc.Name),
	})
}

func (s *Server) handleAssign(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in assignInput
	if err := decodeArgs(req, &in); err != nil {
		return s.toolError(ToolAssign, err), nil
	}
	res, err := s.engine.AssignToContext(ctx, in.WorkshopID, in.ContextID, in.ElementIDs)
	if err != nil {
		return s.toolError(ToolAssign, err), nil
	}
	body := map[string]any{
		"success":           true,
		"context_name":      res.ContextName,
		"assigned_count":    len(res.Assigned),
		"assigned_elements": res.Assigned,
	}
	if len(res.Skipped) > 0 {
		body["warnings"] = "Elements not found: " + strings.Join(res.Skipped, ", ")
	}
	return jsonResult(body)
}

func (s *Server) handleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in searchInput
	if err := decodeArgs(req, &in); err != nil {
		return s.toolError(ToolSearch, err), nil
	}
	els, err := s.engine.Search(ctx, in.WorkshopID, in.Query, query.Filter{
		Type:      domain.ElementType(in.ElementType),
		ContextID: in.BoundedContextID,
	})
	if err != nil {
		return s.toolError(ToolSearch, err), nil
	}
	page, size := s.page(in.pageOptions)
	matches, info := query.Paginate(els, page, size)
	detail, _ := markdown.ParseDetail(in.DetailLevel)

	if in.ResponseFormat == formatJSON {
		return jsonResult(map[string]any{
			"query":      in.Query,
			"matches":    elementsFor(matches, detail),
			"pagination": info,
		})
	}
	return s.markdownResult(markdown.Search(in.Query, matches, info, detail), "Use a narrower query or a smaller page_size"), nil
}

func (s *Server) handleTimeline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in timelineInput
	if err := decodeArgs(req, &in); err != nil {
		return s.toolError(ToolTimeline, err), nil
	}
	els, err := s.engine.Timeline(ctx, in.WorkshopID, query.Filter{
		Type:      domain.ElementType(in.ElementType),
		ContextID: in.BoundedContextID,
	})
	if err != nil {
		return s.toolError(ToolTimeline, err), nil
	}
	page, size := s.page(in.pageOptions)
	items, info := query.Paginate(els, page, size)
	detail, _ := markdown.ParseDetail(in.DetailLevel)

	if in.ResponseFormat == formatJSON {
		return jsonResult(map[string]any{
			"timeline":   elementsFor(items, detail),
			"pagination": info,
		})
	}

	g, err := s.engine.Inspect(ctx, in.WorkshopID)
	if err != nil {
		return s.toolError(ToolTimeline, err), nil
	}
	header := markdown.TimelineHeader{Workshop: g.Metadata().Name}
	if in.ElementType != "" {
		header.Type, _ = domain.ParseElementType(in.ElementType)
	}
	if c, ok := g.Context(in.BoundedContextID); ok {
		header.Context = c.Name
	}
	return s.markdownResult(markdown.Timeline(header, items, info, detail), "Filter by element_type or bounded_context_id, or use a smaller page_size"), nil
}

func (s *Server) handleOverview(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in overviewInput
	if err := decodeArgs(req, &in); err != nil {
		return s.toolError(ToolOverview, err), nil
	}
	ov, err := s.engine.ContextOverview(ctx, in.WorkshopID, in.ContextID)
	if err != nil {
		return s.toolError(ToolOverview, err), nil
	}
	page, size := s.page(in.pageOptions)
	detail, _ := markdown.ParseDetail(in.DetailLevel)

	if in.ResponseFormat == formatJSON {
		contexts := make([]map[string]any, 0, len(ov.Contexts))
		for _, r := range ov.Contexts {
			members, info := query.Paginate(r.Elements, page, size)
			contexts = append(contexts, map[string]any{
				"context":        r.Context,
				"element_count":  r.ElementCount,
				"type_breakdown": r.TypeBreakdown,
				"balance":        r.Balance,
				"elements":       elementsFor(members, detail),
				"pagination":     info,
			})
		}
		return jsonResult(map[string]any{
			"workshop":        ov.Workshop,
			"average_members": ov.AverageMembers,
			"balance_factor":  ov.BalanceFactor,
			"contexts":        contexts,
		})
	}
	return s.markdownResult(markdown.Overview(ov, page, size, detail), "Use context_id to focus on a single context"), nil
}

func (s *Server) handleStatistics(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in statisticsInput
	if err := decodeArgs(req, &in); err != nil {
		return s.toolError(ToolStatistics, err), nil
	}
	st, err := s.engine.Statistics(ctx, in.WorkshopID)
	if err != nil {
		return s.toolError(ToolStatistics, err), nil
	}
	if in.ResponseFormat == formatJSON {
		return jsonResult(st)
	}
	return s.markdownResult(markdown.Statistics(st), ""), nil
}

func (s *Server) handleFlow(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in flowInput
	if err := decodeArgs(req, &in); err != nil {
		return s.toolError(ToolFlow, err), nil
	}
	rep, err := s.engine.VisualizeFlow(ctx, in.WorkshopID, flow.Options{
		StartID:     in.StartElementID,
		MaxDepth:    in.MaxDepth,
		MaxElements: in.MaxElements,
	})
	if err != nil {
		return s.toolError(ToolFlow, err), nil
	}
	if in.ResponseFormat == formatJSON {
		return jsonResult(rep)
	}
	return s.markdownResult(markdown.Flow(rep), "Use start_element_id or a lower max_depth to narrow the flow"), nil
}

func (s *Server) handleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in exportInput
	if err := decodeArgs(req, &in); err != nil {
		return s.toolError(ToolExport, err), nil
	}
	format, err := codec.ParseFormat(in.Format)
	if err != nil {
		return s.toolError(ToolExport, err), nil
	}
	includeMetadata := in.IncludeMetadata == nil || *in.IncludeMetadata

	exp, err := s.engine.Export(ctx, in.WorkshopID, includeMetadata)
	if err != nil {
		return s.toolError(ToolExport, err), nil
	}
	data, err := codec.Encode(exp, format)
	if err != nil {
		return s.toolError(ToolExport, err), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in importInput
	if err := decodeArgs(req, &in); err != nil {
		return s.toolError(ToolImport, err), nil
	}
	if len(in.WorkshopData) > MaxImportSize {
		return s.toolError(ToolImport, domain.Validation("workshop_data is %d bytes, at most %d allowed", len(in.WorkshopData), MaxImportSize)), nil
	}
	format, err := codec.ParseFormat(in.Format)
	if err != nil {
		return s.toolError(ToolImport, err), nil
	}
	doc, err := s.engine.Import(ctx, []byte(in.WorkshopData), format, codec.ImportOptions{
		NewName:    in.NewName,
		PreserveID: in.PreserveID,
	})
	if err != nil {
		return s.toolError(ToolImport, err), nil
	}
	return jsonResult(map[string]any{
		"success":     true,
		"workshop_id": doc.Metadata.ID,
		"name":        doc.Metadata.Name,
		"message":     "Workshop imported successfully",
		"statistics": map[string]int{
			"elements":         len(doc.Elements),
			"bounded_contexts": len(doc.BoundedContexts),
		},
	})
}
