package graph_test

import (
	"math/rand"
	"slices"
	"testing"
	"time"

	"github.com/aretw0/eventstorm/pkg/domain"
	"github.com/aretw0/eventstorm/pkg/graph"
	"github.com/aretw0/eventstorm/pkg/ids"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestGraph(t *testing.T) *graph.Graph {
	t.Helper()
	meta := domain.NewDocument("w1", "Orders", fixedNow).Metadata
	return graph.New(meta,
		graph.WithIDs(ids.NewSequential("id")),
		graph.WithClock(func() time.Time { return fixedNow }),
	)
}

func mustAdd(t *testing.T, g *graph.Graph, in graph.ElementInput) domain.Element {
	t.Helper()
	el, err := g.CreateElement(in)
	require.NoError(t, err)
	return el
}

func assertConsistent(t *testing.T, g *graph.Graph) {
	t.Helper()
	doc := g.Document()
	require.NoError(t, graph.Validate(doc))

	byID := make(map[string]domain.Element)
	for _, el := range doc.Elements {
		byID[el.ID] = el
	}
	for _, a := range doc.Elements {
		for _, b := range doc.Elements {
			fwd := slices.Contains(a.Triggers, b.ID)
			back := slices.Contains(byID[b.ID].TriggeredBy, a.ID)
			assert.Equal(t, fwd, back, "symmetry broken for %s -> %s", a.ID, b.ID)
		}
	}
}

func TestCreateElement(t *testing.T) {
	g := newTestGraph(t)

	placed := mustAdd(t, g, graph.ElementInput{Type: "event", Name: " Order Placed "})
	assert.Equal(t, "id-1", placed.ID)
	assert.Equal(t, "Order Placed", placed.Name)
	assert.Equal(t, 0, placed.Position)
	assert.Equal(t, fixedNow, placed.CreatedAt)

	shipped := mustAdd(t, g, graph.ElementInput{Type: "event", Name: "Order Shipped"})
	assert.Equal(t, 1, shipped.Position, "position defaults to count of same type")

	cmd := mustAdd(t, g, graph.ElementInput{
		Type:     "command",
		Name:     "Place Order",
		Triggers: []string{placed.ID, placed.ID, ""},
	})
	assert.Equal(t, 0, cmd.Position)
	assert.Equal(t, []string{placed.ID}, cmd.Triggers, "duplicate edge input collapses")

	got, ok := g.Element(placed.ID)
	require.True(t, ok)
	assert.Equal(t, []string{cmd.ID}, got.TriggeredBy)
	assert.Equal(t, 1, g.EdgeCount())
	assertConsistent(t, g)
}

func TestCreateElement_Errors(t *testing.T) {
	g := newTestGraph(t)
	mustAdd(t, g, graph.ElementInput{Type: "event", Name: "A"})
	neg := -1

	tests := []struct {
		name string
		in   graph.ElementInput
		kind error
	}{
		{"unknown type", graph.ElementInput{Type: "sticky", Name: "X"}, domain.ErrInvalidType},
		{"empty name", graph.ElementInput{Type: "event", Name: "  "}, domain.ErrValidationFailed},
		{"negative position", graph.ElementInput{Type: "event", Name: "X", Position: &neg}, domain.ErrValidationFailed},
		{"dangling trigger", graph.ElementInput{Type: "event", Name: "X", Triggers: []string{"missing"}}, domain.ErrInvalidReference},
		{"dangling triggered_by", graph.ElementInput{Type: "event", Name: "X", TriggeredBy: []string{"missing"}}, domain.ErrInvalidReference},
		{"unknown context", graph.ElementInput{Type: "event", Name: "X", BoundedContextID: "nope"}, domain.ErrInvalidReference},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.CreateElement(tt.in)
			assert.ErrorIs(t, err, tt.kind)
			assert.Equal(t, 1, g.Len(), "rejected create must not change the graph")
		})
	}
}

func TestUpdateElement(t *testing.T) {
	g := newTestGraph(t)
	a := mustAdd(t, g, graph.ElementInput{Type: "command", Name: "A"})
	b := mustAdd(t, g, graph.ElementInput{Type: "event", Name: "B", TriggeredBy: []string{a.ID}})
	c := mustAdd(t, g, graph.ElementInput{Type: "policy", Name: "C"})
	bc, err := g.CreateContext(graph.ContextInput{Name: "Sales"})
	require.NoError(t, err)

	name := "B renamed"
	pos := 7
	triggers := []string{c.ID}
	triggeredBy := []string{c.ID}
	ctxID := bc.ID

	el, fields, err := g.UpdateElement(b.ID, graph.ElementPatch{
		Name:             &name,
		Position:         &pos,
		Triggers:         &triggers,
		TriggeredBy:      &triggeredBy,
		BoundedContextID: &ctxID,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "position", "triggers", "triggered_by", "bounded_context_id"}, fields)
	assert.Equal(t, "B renamed", el.Name)
	assert.Equal(t, 7, el.Position)
	assert.Equal(t, []string{c.ID}, el.Triggers)
	assert.Equal(t, []string{c.ID}, el.TriggeredBy, "incoming edges are replaced")
	assert.Equal(t, bc.ID, el.BoundedContextID)

	gotA, _ := g.Element(a.ID)
	assert.Empty(t, gotA.Triggers, "A lost its edge to B")

	cleared := ""
	el, _, err = g.UpdateElement(b.ID, graph.ElementPatch{BoundedContextID: &cleared})
	require.NoError(t, err)
	assert.Empty(t, el.BoundedContextID)
	ctx, _ := g.Context(bc.ID)
	assert.Empty(t, ctx.ElementIDs)

	assertConsistent(t, g)
}

func TestUpdateElement_Errors(t *testing.T) {
	g := newTestGraph(t)
	a := mustAdd(t, g, graph.ElementInput{Type: "event", Name: "A"})

	_, _, err := g.UpdateElement("missing", graph.ElementPatch{})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	bad := []string{"missing"}
	name := "changed"
	_, _, err = g.UpdateElement(a.ID, graph.ElementPatch{Name: &name, Triggers: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidReference)

	got, _ := g.Element(a.ID)
	assert.Equal(t, "A", got.Name, "rejected patch applies nothing")

	ctx := "missing"
	_, _, err = g.UpdateElement(a.ID, graph.ElementPatch{BoundedContextID: &ctx})
	assert.ErrorIs(t, err, domain.ErrInvalidReference)
}

func TestSelfLoopAllowed(t *testing.T) {
	g := newTestGraph(t)
	a := mustAdd(t, g, graph.ElementInput{Type: "policy", Name: "Retry"})
	self := []string{a.ID}

	el, _, err := g.UpdateElement(a.ID, graph.ElementPatch{Triggers: &self})
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID}, el.Triggers)
	assert.Equal(t, []string{a.ID}, el.TriggeredBy)
	assertConsistent(t, g)
}

func TestUpdateElement_ContradictorySelfLoop(t *testing.T) {
	g := newTestGraph(t)
	a := mustAdd(t, g, graph.ElementInput{Type: "policy", Name: "Retry"})
	b := mustAdd(t, g, graph.ElementInput{Type: "event", Name: "Failed"})
	self := []string{a.ID}
	other := []string{b.ID}
	none := []string{}

	_, _, err := g.UpdateElement(a.ID, graph.ElementPatch{Triggers: &self, TriggeredBy: &none})
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
	_, _, err = g.UpdateElement(a.ID, graph.ElementPatch{Triggers: &other, TriggeredBy: &self})
	assert.ErrorIs(t, err, domain.ErrValidationFailed)

	got, _ := g.Element(a.ID)
	assert.Empty(t, got.Triggers)
	assert.Empty(t, got.TriggeredBy)

	both := []string{a.ID, b.ID}
	el, fields, err := g.UpdateElement(a.ID, graph.ElementPatch{Triggers: &both, TriggeredBy: &self})
	require.NoError(t, err)
	assert.Equal(t, []string{"triggers", "triggered_by"}, fields)
	assert.ElementsMatch(t, []string{a.ID, b.ID}, el.Triggers)
	assert.Equal(t, []string{a.ID}, el.TriggeredBy)
	assertConsistent(t, g)
}

func TestDeleteElement_Cascades(t *testing.T) {
	g := newTestGraph(t)
	a := mustAdd(t, g, graph.ElementInput{Type: "command", Name: "A"})
	b := mustAdd(t, g, graph.ElementInput{Type: "event", Name: "B", TriggeredBy: []string{a.ID}})
	c := mustAdd(t, g, graph.ElementInput{Type: "policy", Name: "C", TriggeredBy: []string{b.ID}, Triggers: []string{a.ID}})
	bc, err := g.CreateContext(graph.ContextInput{Name: "Sales"})
	require.NoError(t, err)
	_, err = g.AssignToContext(bc.ID, []string{a.ID, b.ID, c.ID})
	require.NoError(t, err)

	removed, err := g.DeleteElement(b.ID)
	require.NoError(t, err)
	assert.Equal(t, "B", removed.Name)

	doc := g.Document()
	for _, el := range doc.Elements {
		assert.NotContains(t, el.Triggers, b.ID)
		assert.NotContains(t, el.TriggeredBy, b.ID)
	}
	ctx, _ := g.Context(bc.ID)
	assert.Equal(t, []string{a.ID, c.ID}, ctx.ElementIDs)
	assert.Equal(t, 1, g.EdgeCount(), "only C -> A survives")
	assertConsistent(t, g)

	_, err = g.DeleteElement(b.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAssignToContext(t *testing.T) {
	g := newTestGraph(t)
	a := mustAdd(t, g, graph.ElementInput{Type: "event", Name: "A"})
	b := mustAdd(t, g, graph.ElementInput{Type: "event", Name: "B"})
	sales, _ := g.CreateContext(graph.ContextInput{Name: "Sales"})
	billing, _ := g.CreateContext(graph.ContextInput{Name: "Billing", Color: "#FF5733"})

	res, err := g.AssignToContext(sales.ID, []string{a.ID, "ghost", a.ID, b.ID, "ghost"})
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID, b.ID}, res.Assigned)
	assert.Equal(t, []string{"ghost"}, res.Skipped)

	res, err = g.AssignToContext(billing.ID, []string{b.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, res.Assigned)

	s, _ := g.Context(sales.ID)
	bl, _ := g.Context(billing.ID)
	assert.Equal(t, []string{a.ID}, s.ElementIDs, "b moved out of its previous context")
	assert.Equal(t, []string{b.ID}, bl.ElementIDs)
	assert.Equal(t, "#FF5733", bl.Color)

	_, err = g.AssignToContext("missing", []string{a.ID})
	assert.ErrorIs(t, err, domain.ErrInvalidReference)
	assertConsistent(t, g)
}

func TestDeleteContext(t *testing.T) {
	g := newTestGraph(t)
	a := mustAdd(t, g, graph.ElementInput{Type: "event", Name: "A"})
	sales, _ := g.CreateContext(graph.ContextInput{Name: "Sales"})
	_, err := g.AssignToContext(sales.ID, []string{a.ID})
	require.NoError(t, err)

	_, err = g.DeleteContext(sales.ID)
	require.NoError(t, err)
	el, _ := g.Element(a.ID)
	assert.Empty(t, el.BoundedContextID)
	assert.Empty(t, g.Contexts())

	_, err = g.DeleteContext(sales.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateContext_Validation(t *testing.T) {
	g := newTestGraph(t)
	_, err := g.CreateContext(graph.ContextInput{Name: ""})
	assert.ErrorIs(t, err, domain.ErrValidationFailed)

	long := make([]byte, 101)
	for i := range long {
		long[i] = 'x'
	}
	_, err = g.CreateContext(graph.ContextInput{Name: string(long)})
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
}

func TestEdgeSymmetry_RandomOperations(t *testing.T) {
	g := newTestGraph(t)
	rng := rand.New(rand.NewSource(42))
	types := domain.TypeNames()
	ctx, _ := g.CreateContext(graph.ContextInput{Name: "Core"})

	pick := func(n int) []string {
		els := g.Elements()
		var out []string
		for i := 0; i < n && len(els) > 0; i++ {
			out = append(out, els[rng.Intn(len(els))].ID)
		}
		return out
	}

	for i := 0; i < 300; i++ {
		switch op := rng.Intn(5); op {
		case 0, 1:
			_, err := g.CreateElement(graph.ElementInput{
				Type:        types[rng.Intn(len(types))],
				Name:        "el",
				Triggers:    pick(rng.Intn(3)),
				TriggeredBy: pick(rng.Intn(3)),
			})
			require.NoError(t, err)
		case 2:
			if ids := pick(1); len(ids) == 1 {
				triggers := pick(rng.Intn(4))
				incoming := pick(rng.Intn(2))
				_, _, err := g.UpdateElement(ids[0], graph.ElementPatch{Triggers: &triggers, TriggeredBy: &incoming})
				require.NoError(t, err)
			}
		case 3:
			if ids := pick(1); len(ids) == 1 {
				_, err := g.DeleteElement(ids[0])
				require.NoError(t, err)
			}
		case 4:
			_, err := g.AssignToContext(ctx.ID, pick(2))
			require.NoError(t, err)
		}
		assertConsistent(t, g)
	}
}

func TestFromDocument_RoundTrip(t *testing.T) {
	g := newTestGraph(t)
	a := mustAdd(t, g, graph.ElementInput{Type: "command", Name: "A"})
	b := mustAdd(t, g, graph.ElementInput{Type: "event", Name: "B", TriggeredBy: []string{a.ID}})
	mustAdd(t, g, graph.ElementInput{Type: "policy", Name: "C", TriggeredBy: []string{b.ID}, Triggers: []string{a.ID}})
	sales, _ := g.CreateContext(graph.ContextInput{Name: "Sales"})
	_, err := g.AssignToContext(sales.ID, []string{b.ID, a.ID})
	require.NoError(t, err)

	doc := g.Document()
	rebuilt, err := graph.FromDocument(doc)
	require.NoError(t, err)
	assert.Equal(t, doc, rebuilt.Document())
	assert.Equal(t, g.Edges(), rebuilt.Edges())
}
