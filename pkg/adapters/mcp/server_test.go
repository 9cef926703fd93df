package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/aretw0/eventstorm"
	"github.com/aretw0/eventstorm/pkg/adapters/memory"
	"github.com/aretw0/eventstorm/pkg/ids"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type toolHandler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	eng, err := eventstorm.New(
		eventstorm.WithStore(memory.NewStore()),
		eventstorm.WithIDs(ids.NewSequential("id")),
	)
	require.NoError(t, err)
	return NewServer(eng, opts...)
}

func call(t *testing.T, h toolHandler, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	res, err := h(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	return res
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return tc.Text
}

func object(t *testing.T, res *mcp.CallToolResult) map[string]any {
	t.Helper()
	require.False(t, res.IsError, text(t, res))
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &out))
	return out
}

func failure(t *testing.T, res *mcp.CallToolResult) map[string]string {
	t.Helper()
	require.True(t, res.IsError, "expected a tool error")
	var out map[string]string
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &out))
	return out
}

func createWorkshop(t *testing.T, s *Server, name string) string {
	t.Helper()
	out := object(t, call(t, s.handleCreateWorkshop, map[string]any{"name": name}))
	return out["workshop_id"].(string)
}

func addElement(t *testing.T, s *Server, args map[string]any) string {
	t.Helper()
	out := object(t, call(t, s.handleAddElement, args))
	return out["element_id"].(string)
}

func rpc(t *testing.T, s *Server, payload string, out any) {
	t.Helper()
	resp := s.MCPServer().HandleMessage(context.Background(), json.RawMessage(payload))
	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out), string(raw))
}

func TestServer_ListsEveryTool(t *testing.T) {
	s := newTestServer(t)

	var resp struct {
		Result struct {
			Tools []struct {
				Name        string `json:"name"`
				Annotations struct {
					ReadOnlyHint *bool `json:"readOnlyHint"`
				} `json:"annotations"`
			} `json:"tools"`
		} `json:"result"`
	}
	rpc(t, s, `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`, &resp)

	names := make(map[string]bool)
	for _, tool := range resp.Result.Tools {
		names[tool.Name] = true
		if tool.Name == ToolStatistics {
			require.NotNil(t, tool.Annotations.ReadOnlyHint)
			assert.True(t, *tool.Annotations.ReadOnlyHint)
		}
	}
	for _, want := range []string{
		ToolCreateWorkshop, ToolListWorkshops, ToolLoadWorkshop, ToolDeleteWorkshop,
		ToolAddElement, ToolUpdateElement, ToolDeleteElement,
		ToolCreateContext, ToolDeleteContext, ToolAssign,
		ToolSearch, ToolTimeline, ToolOverview, ToolStatistics, ToolFlow,
		ToolExport, ToolImport,
	} {
		assert.True(t, names[want], "missing tool %s", want)
	}
}

func TestServer_OrderScenario(t *testing.T) {
	s := newTestServer(t)
	wid := createWorkshop(t, s, "W")

	placed := addElement(t, s, map[string]any{"workshop_id": wid, "type": "event", "name": "Order Placed", "position": float64(0)})
	place := addElement(t, s, map[string]any{
		"workshop_id": wid, "type": "command", "name": "Place Order", "position": float64(0),
		"triggers": []any{placed},
	})

	ctxOut := object(t, call(t, s.handleCreateContext, map[string]any{"workshop_id": wid, "name": "Order Mgmt"}))
	ctxID := ctxOut["context_id"].(string)

	assigned := object(t, call(t, s.handleAssign, map[string]any{
		"workshop_id": wid, "context_id": ctxID, "element_ids": []any{placed, place, "ghost"},
	}))
	assert.Equal(t, "Order Mgmt", assigned["context_name"])
	assert.Equal(t, float64(2), assigned["assigned_count"])
	assert.Equal(t, "Elements not found: ghost", assigned["warnings"])

	stats := object(t, call(t, s.handleStatistics, map[string]any{"workshop_id": wid, "response_format": "json"}))
	assert.Equal(t, float64(2), stats["totals"].(map[string]any)["elements"])
	assert.Equal(t, float64(1), stats["relationships"].(map[string]any)["total_trigger_edges"])
	assert.Equal(t, float64(100), stats["coverage"].(map[string]any)["percentage"])

	flowText := text(t, call(t, s.handleFlow, map[string]any{"workshop_id": wid, "start_element_id": place}))
	assert.Contains(t, flowText, "→ [command] **Place Order** `"+place+"`\n  → [event] **Order Placed** `"+placed+"`")

	deleted := object(t, call(t, s.handleDeleteElement, map[string]any{"workshop_id": wid, "element_id": placed}))
	assert.Equal(t, "Order Placed", deleted["deleted_element"].(map[string]any)["name"])

	loaded := object(t, call(t, s.handleLoadWorkshop, map[string]any{"workshop_id": wid, "response_format": "json", "detail_level": "full"}))
	elements := loaded["elements"].([]any)
	require.Len(t, elements, 1)
	assert.Empty(t, elements[0].(map[string]any)["triggers"])
	contexts := loaded["bounded_contexts"].([]any)
	assert.Equal(t, []any{place}, contexts[0].(map[string]any)["element_ids"])
}

func TestServer_RejectsUnknownArguments(t *testing.T) {
	s := newTestServer(t)
	wid := createWorkshop(t, s, "W")

	out := failure(t, call(t, s.handleAddElement, map[string]any{
		"workshop_id": wid, "type": "event", "name": "X", "colour": "red",
	}))
	assert.Equal(t, "validation_failed", out["kind"])
	assert.Contains(t, out["error"], "colour")

	out = failure(t, call(t, s.handleListWorkshops, map[string]any{"verbose": true}))
	assert.Equal(t, "validation_failed", out["kind"])
}

func TestServer_FieldValidation(t *testing.T) {
	s := newTestServer(t)
	wid := createWorkshop(t, s, "W")

	tests := []struct {
		name    string
		handler toolHandler
		args    map[string]any
		want    string
	}{
		{"missing name", s.handleCreateWorkshop, map[string]any{"name": "   "}, "name is required"},
		{"long name", s.handleAddElement, map[string]any{"workshop_id": wid, "type": "event", "name": strings.Repeat("x", 201)}, "name must be at most 200 characters"},
		{"too many triggers", s.handleAddElement, map[string]any{"workshop_id": wid, "type": "event", "name": "X", "triggers": make([]any, 21)}, "triggers must contain at most 20 items"},
		{"negative position", s.handleAddElement, map[string]any{"workshop_id": wid, "type": "event", "name": "X", "position": float64(-1)}, "position must be greater than or equal to 0"},
		{"page size", s.handleSearch, map[string]any{"workshop_id": wid, "query": "x", "page_size": float64(500)}, "page_size must be less than or equal to 200"},
		{"depth", s.handleFlow, map[string]any{"workshop_id": wid, "max_depth": float64(21)}, "max_depth must be less than or equal to 20"},
		{"format", s.handleStatistics, map[string]any{"workshop_id": wid, "response_format": "xml"}, "response_format must be one of: markdown json"},
		{"empty assignment", s.handleAssign, map[string]any{"workshop_id": wid, "context_id": "c", "element_ids": []any{}}, "element_ids"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := failure(t, call(t, tt.handler, tt.args))
			assert.Equal(t, "validation_failed", out["kind"])
			assert.Contains(t, out["error"], tt.want)
		})
	}
}

func TestServer_ErrorKinds(t *testing.T) {
	s := newTestServer(t)
	wid := createWorkshop(t, s, "W")

	out := failure(t, call(t, s.handleLoadWorkshop, map[string]any{"workshop_id": "nope"}))
	assert.Equal(t, "not_found", out["kind"])
	assert.Contains(t, out["suggestion"], ToolListWorkshops)

	out = failure(t, call(t, s.handleAddElement, map[string]any{"workshop_id": wid, "type": "sticky", "name": "X"}))
	assert.Equal(t, "invalid_type", out["kind"])
	assert.Contains(t, out["suggestion"], "read_model")

	out = failure(t, call(t, s.handleAddElement, map[string]any{"workshop_id": wid, "type": "event", "name": "X", "triggers": []any{"ghost"}}))
	assert.Equal(t, "invalid_reference", out["kind"])

	out = failure(t, call(t, s.handleAssign, map[string]any{"workshop_id": wid, "context_id": "nope", "element_ids": []any{"a"}}))
	assert.Equal(t, "invalid_reference", out["kind"])
}

func TestServer_UpdateElement(t *testing.T) {
	s := newTestServer(t)
	wid := createWorkshop(t, s, "W")
	ctxID := object(t, call(t, s.handleCreateContext, map[string]any{"workshop_id": wid, "name": "Sales"}))["context_id"].(string)
	el := addElement(t, s, map[string]any{"workshop_id": wid, "type": "aggregate", "name": "Cart", "bounded_context_id": ctxID})

	out := object(t, call(t, s.handleUpdateElement, map[string]any{
		"workshop_id": wid, "element_id": el, "name": "Basket", "bounded_context_id": "",
	}))
	assert.Equal(t, []any{"name", "bounded_context_id"}, out["updated_fields"])

	overview := object(t, call(t, s.handleOverview, map[string]any{"workshop_id": wid, "response_format": "json"}))
	ctx := overview["contexts"].([]any)[0].(map[string]any)
	assert.Equal(t, float64(0), ctx["element_count"])
	assert.Equal(t, "empty", ctx["balance"])
}

func TestServer_SearchPagination(t *testing.T) {
	s := newTestServer(t)
	wid := createWorkshop(t, s, "W")
	addElement(t, s, map[string]any{"workshop_id": wid, "type": "event", "name": "Order Placed"})
	addElement(t, s, map[string]any{"workshop_id": wid, "type": "event", "name": "Order Shipped"})

	md := text(t, call(t, s.handleSearch, map[string]any{"workshop_id": wid, "query": "order", "page_size": float64(1)}))
	assert.Contains(t, md, "Found 2 matching element(s)")
	assert.Contains(t, md, "**Page 1 of 2** (showing 1 of 2 items)")
	assert.Contains(t, md, "Use `page=2` for next page")

	out := object(t, call(t, s.handleSearch, map[string]any{
		"workshop_id": wid, "query": "order", "page": float64(2), "page_size": float64(1), "response_format": "json",
	}))
	matches := out["matches"].([]any)
	require.Len(t, matches, 1)
	assert.Equal(t, "Order Shipped", matches[0].(map[string]any)["name"])
	assert.NotContains(t, matches[0].(map[string]any), "notes")

	timeline := text(t, call(t, s.handleTimeline, map[string]any{"workshop_id": wid, "element_type": "event", "detail_level": "full"}))
	assert.Contains(t, timeline, "# Timeline: W")
	assert.Contains(t, timeline, "Filter: event")
	assert.Contains(t, timeline, "**[EVENT]** Order Placed")
}

func TestServer_TruncatesMarkdown(t *testing.T) {
	s := newTestServer(t, WithCharacterLimit(1000))
	wid := createWorkshop(t, s, "W")
	for i := 0; i < 30; i++ {
		addElement(t, s, map[string]any{"workshop_id": wid, "type": "event", "name": strings.Repeat("Event ", 5)})
	}

	md := text(t, call(t, s.handleLoadWorkshop, map[string]any{"workshop_id": wid}))
	assert.Contains(t, md, "⚠️ Response truncated (showing ~1000/")
	assert.Contains(t, md, "💡 Use specific queries to explore elements and contexts")
}

func TestServer_ExportImport(t *testing.T) {
	s := newTestServer(t)
	wid := createWorkshop(t, s, "Source")
	a := addElement(t, s, map[string]any{"workshop_id": wid, "type": "command", "name": "A"})
	addElement(t, s, map[string]any{"workshop_id": wid, "type": "event", "name": "B", "triggered_by": []any{a}})

	exported := text(t, call(t, s.handleExport, map[string]any{"workshop_id": wid, "format": "yaml"}))
	assert.Contains(t, exported, "export_info:")
	assert.Contains(t, exported, "tool: eventstorming_mcp")

	out := object(t, call(t, s.handleImport, map[string]any{"workshop_data": exported, "format": "yaml", "new_name": "Copy"}))
	assert.NotEqual(t, wid, out["workshop_id"])
	assert.Equal(t, "Copy", out["name"])
	assert.Equal(t, float64(2), out["statistics"].(map[string]any)["elements"])

	brief := object(t, call(t, s.handleExport, map[string]any{"workshop_id": wid, "include_metadata": false}))
	assert.NotContains(t, brief["metadata"].(map[string]any), "id")

	bad := failure(t, call(t, s.handleImport, map[string]any{"workshop_data": "{not json"}))
	assert.Equal(t, "validation_failed", bad["kind"])

	list := object(t, call(t, s.handleListWorkshops, nil))
	assert.Equal(t, float64(2), list["total"])
}

func TestServer_DeleteWorkshopAndResource(t *testing.T) {
	s := newTestServer(t)
	keep := createWorkshop(t, s, "Keep")
	drop := createWorkshop(t, s, "Drop")

	object(t, call(t, s.handleDeleteWorkshop, map[string]any{"workshop_id": drop}))
	out := failure(t, call(t, s.handleDeleteWorkshop, map[string]any{"workshop_id": drop}))
	assert.Equal(t, "not_found", out["kind"])

	var resp struct {
		Result struct {
			Contents []struct {
				URI  string `json:"uri"`
				Text string `json:"text"`
			} `json:"contents"`
		} `json:"result"`
	}
	rpc(t, s, `{"jsonrpc":"2.0","id":2,"method":"resources/read","params":{"uri":"eventstorm://workshops"}}`, &resp)
	require.Len(t, resp.Result.Contents, 1)
	assert.Equal(t, WorkshopsURI, resp.Result.Contents[0].URI)

	var list struct {
		Workshops []struct {
			ID string `json:"id"`
		} `json:"workshops"`
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal([]byte(resp.Result.Contents[0].Text), &list))
	assert.Equal(t, 1, list.Total)
	assert.Equal(t, keep, list.Workshops[0].ID)
}
