package codec_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/aretw0/eventstorm/pkg/codec"
	"github.com/aretw0/eventstorm/pkg/domain"
	"github.com/aretw0/eventstorm/pkg/graph"
	"github.com/aretw0/eventstorm/pkg/ids"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	created  = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	exported = time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
)

func sampleDoc(t *testing.T) *domain.Document {
	t.Helper()
	meta := domain.NewDocument("w1", "Orders", created).Metadata
	meta.Domain = "E-commerce"
	meta.Description = "Order lifecycle"
	meta.Facilitators = []string{"alice"}
	g := graph.New(meta,
		graph.WithIDs(ids.NewSequential("id")),
		graph.WithClock(func() time.Time { return created }),
	)
	placed, err := g.CreateElement(graph.ElementInput{Type: "event", Name: "Order Placed"})
	require.NoError(t, err)
	place, err := g.CreateElement(graph.ElementInput{Type: "command", Name: "Place Order", Triggers: []string{placed.ID}})
	require.NoError(t, err)
	ctx, err := g.CreateContext(graph.ContextInput{Name: "Order Mgmt", Color: "#FF5733"})
	require.NoError(t, err)
	_, err = g.AssignToContext(ctx.ID, []string{placed.ID, place.ID})
	require.NoError(t, err)
	return g.Document()
}

func TestParseFormat(t *testing.T) {
	f, err := codec.ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, codec.FormatJSON, f)

	f, err = codec.ParseFormat("YML")
	require.NoError(t, err)
	assert.Equal(t, codec.FormatYAML, f)

	_, err = codec.ParseFormat("xml")
	assert.ErrorIs(t, err, domain.ErrValidationFailed)

	assert.Equal(t, codec.FormatYAML, codec.FormatFromPath("board.yaml"))
	assert.Equal(t, codec.FormatJSON, codec.FormatFromPath("board.json"))
}

func TestExport_Envelope(t *testing.T) {
	doc := sampleDoc(t)

	data, err := codec.Encode(codec.NewExport(doc, true, "0.1.0", exported), codec.FormatJSON)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "export_info")

	var info codec.ExportInfo
	require.NoError(t, json.Unmarshal(raw["export_info"], &info))
	assert.Equal(t, codec.ExportInfo{ExportedAt: exported, Version: "0.1.0", Tool: domain.Tool}, info)

	var meta map[string]any
	require.NoError(t, json.Unmarshal(raw["metadata"], &meta))
	assert.Equal(t, "w1", meta["id"])
}

func TestExport_WithoutMetadataKeepsGraph(t *testing.T) {
	doc := sampleDoc(t)

	data, err := codec.Encode(codec.NewExport(doc, false, "0.1.0", exported), codec.FormatJSON)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	var meta map[string]any
	require.NoError(t, json.Unmarshal(raw["metadata"], &meta))
	assert.Equal(t, map[string]any{"name": "Orders", "domain": "E-commerce", "description": "Order lifecycle"}, meta)

	imported, err := codec.Import(data, codec.FormatJSON, codec.ImportOptions{}, ids.NewSequential("ws"), exported)
	require.NoError(t, err)
	assert.Equal(t, "ws-1", imported.Metadata.ID)
	assert.Equal(t, doc.Elements, imported.Elements)
	assert.Equal(t, doc.BoundedContexts, imported.BoundedContexts)
	assert.Equal(t, domain.SchemaVersion, imported.Metadata.SchemaVersion)
}

func TestRoundTrip(t *testing.T) {
	for _, f := range []codec.Format{codec.FormatJSON, codec.FormatYAML} {
		t.Run(string(f), func(t *testing.T) {
			doc := sampleDoc(t)
			data, err := codec.Encode(codec.NewExport(doc, true, "0.1.0", exported), f)
			require.NoError(t, err)

			imported, err := codec.Import(data, f, codec.ImportOptions{NewName: "Copy"}, ids.NewSequential("ws"), exported)
			require.NoError(t, err)

			assert.Equal(t, "ws-1", imported.Metadata.ID, "import allocates a fresh id")
			assert.Equal(t, "Copy", imported.Metadata.Name)
			assert.Equal(t, exported, imported.Metadata.CreatedAt)
			assert.Equal(t, exported, imported.Metadata.UpdatedAt)
			assert.Equal(t, doc.Metadata.Facilitators, imported.Metadata.Facilitators)
			assert.Equal(t, doc.Elements, imported.Elements)
			assert.Equal(t, doc.BoundedContexts, imported.BoundedContexts)
		})
	}
}

func TestImport_PreserveID(t *testing.T) {
	doc := sampleDoc(t)
	data, err := codec.EncodeDocument(doc, codec.FormatJSON)
	require.NoError(t, err)

	imported, err := codec.Import(data, codec.FormatJSON, codec.ImportOptions{PreserveID: true}, ids.NewSequential("ws"), exported)
	require.NoError(t, err)
	assert.Equal(t, "w1", imported.Metadata.ID)
}

func TestImport_RejectsInconsistentDocuments(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantMsg string
	}{
		{
			name:    "syntax",
			data:    `{"metadata": `,
			wantMsg: "invalid json document",
		},
		{
			name:    "no metadata",
			data:    `{"elements": []}`,
			wantMsg: "no metadata",
		},
		{
			name: "dangling edge",
			data: `{"metadata": {"name": "W"}, "elements": [
				{"id": "a", "type": "event", "name": "A", "triggers": ["ghost"], "triggered_by": []}
			], "bounded_contexts": []}`,
			wantMsg: `element "a" triggers unknown element "ghost"`,
		},
		{
			name: "unknown type",
			data: `{"metadata": {"name": "W"}, "elements": [
				{"id": "a", "type": "sticky", "name": "A"}
			]}`,
			wantMsg: "unknown type",
		},
		{
			name:    "future schema",
			data:    `{"metadata": {"name": "W", "schema_version": "3.0"}, "elements": []}`,
			wantMsg: "unsupported schema version",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Import([]byte(tt.data), codec.FormatJSON, codec.ImportOptions{}, ids.NewSequential("ws"), exported)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrValidationFailed)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestDecodeDocument_NullContext(t *testing.T) {
	data := `{"metadata": {"id": "w", "name": "W", "schema_version": "2.0"}, "elements": [
		{"id": "a", "type": "event", "name": "A", "bounded_context_id": null, "triggers": [], "triggered_by": []}
	], "bounded_contexts": [{"id": "c", "name": "C", "color": null, "element_ids": []}]}`

	doc, err := codec.DecodeDocument([]byte(data), codec.FormatJSON)
	require.NoError(t, err)
	assert.Empty(t, doc.Elements[0].BoundedContextID)
	assert.Empty(t, doc.BoundedContexts[0].Color)
	require.NoError(t, graph.Validate(doc))
}
