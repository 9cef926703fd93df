package flow_test

import (
	"testing"
	"time"

	"github.com/aretw0/eventstorm/pkg/domain"
	"github.com/aretw0/eventstorm/pkg/flow"
	"github.com/aretw0/eventstorm/pkg/graph"
	"github.com/aretw0/eventstorm/pkg/ids"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGraph(t *testing.T) *graph.Graph {
	t.Helper()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return graph.New(domain.NewDocument("w1", "Orders", now).Metadata,
		graph.WithIDs(ids.NewSequential("id")),
		graph.WithClock(func() time.Time { return now }),
	)
}

func add(t *testing.T, g *graph.Graph, typ, name string, triggeredBy ...string) string {
	t.Helper()
	el, err := g.CreateElement(graph.ElementInput{Type: typ, Name: name, TriggeredBy: triggeredBy})
	require.NoError(t, err)
	return el.ID
}

func link(t *testing.T, g *graph.Graph, from string, to ...string) {
	t.Helper()
	_, _, err := g.UpdateElement(from, graph.ElementPatch{Triggers: &to})
	require.NoError(t, err)
}

func TestTrace_FromStart(t *testing.T) {
	g := newGraph(t)
	placed := add(t, g, "event", "Order Placed")
	place := add(t, g, "command", "Place Order")
	link(t, g, place, placed)

	rep, err := flow.Trace(g, flow.Options{StartID: place})
	require.NoError(t, err)
	require.Len(t, rep.Trees, 1)

	root := rep.Trees[0]
	assert.Equal(t, "Place Order", root.Name)
	require.Len(t, root.Children, 1)
	assert.Equal(t, "Order Placed", root.Children[0].Name)
	assert.Equal(t, 1, root.Children[0].Depth)
	assert.Empty(t, rep.Orphans, "explicit start reports no orphans")
	assert.Equal(t, 2, rep.Emitted)
	assert.False(t, rep.Limited)
	assert.Equal(t, flow.DefaultMaxDepth, rep.MaxDepth)
}

func TestTrace_CycleTerminates(t *testing.T) {
	g := newGraph(t)
	a := add(t, g, "event", "A")
	b := add(t, g, "policy", "B", a)
	link(t, g, b, a)

	for depth := 1; depth <= flow.MaxDepthLimit; depth++ {
		rep, err := flow.Trace(g, flow.Options{StartID: a, MaxDepth: depth})
		require.NoError(t, err)
		cycles := 0
		rep.Walk(func(n *flow.Node) {
			if n.Cycle {
				cycles++
			}
		})
		if depth >= 2 {
			assert.Equal(t, 1, cycles, "depth %d", depth)
		}
	}

	rep, err := flow.Trace(g, flow.Options{StartID: a})
	require.NoError(t, err)
	root := rep.Trees[0]
	require.Len(t, root.Children, 1)
	require.Len(t, root.Children[0].Children, 1)
	closure := root.Children[0].Children[0]
	assert.Equal(t, a, closure.ID)
	assert.True(t, closure.Cycle)
	assert.Empty(t, closure.Children)
}

func TestTrace_Truncation(t *testing.T) {
	g := newGraph(t)
	prev := add(t, g, "event", "E0")
	first := prev
	for i := 1; i < 6; i++ {
		prev = add(t, g, "event", "E", prev)
	}

	rep, err := flow.Trace(g, flow.Options{StartID: first, MaxDepth: 2})
	require.NoError(t, err)

	var depths []int
	var truncated []string
	rep.Walk(func(n *flow.Node) {
		depths = append(depths, n.Depth)
		if n.Truncated {
			truncated = append(truncated, n.ID)
		}
	})
	assert.Equal(t, []int{0, 1, 2}, depths)
	assert.Len(t, truncated, 1, "the node past the limit is reported, not dropped")
}

func TestTrace_Forest(t *testing.T) {
	g := newGraph(t)
	r1 := add(t, g, "actor", "Customer")
	cmd := add(t, g, "command", "Place Order", r1)
	add(t, g, "event", "Order Placed", cmd)
	r2 := add(t, g, "external_system", "Payment Gateway")
	add(t, g, "event", "Payment Received", r2)

	// An entry-less cycle: x -> y -> x.
	x := add(t, g, "policy", "X")
	y := add(t, g, "policy", "Y", x)
	link(t, g, y, x)

	rep, err := flow.Trace(g, flow.Options{})
	require.NoError(t, err)
	require.Len(t, rep.Trees, 2)
	assert.Equal(t, r1, rep.Trees[0].ID)
	assert.Equal(t, r2, rep.Trees[1].ID)

	require.Len(t, rep.Orphans, 2)
	assert.Equal(t, x, rep.Orphans[0].ID)
	assert.Equal(t, y, rep.Orphans[1].ID)
}

func TestTrace_MaxElements(t *testing.T) {
	g := newGraph(t)
	root := add(t, g, "command", "Root")
	for i := 0; i < 10; i++ {
		add(t, g, "event", "Child", root)
	}

	rep, err := flow.Trace(g, flow.Options{MaxElements: 4})
	require.NoError(t, err)
	assert.True(t, rep.Limited)
	assert.Equal(t, 4, rep.Emitted)
	assert.Len(t, rep.Trees[0].Children, 3)
}

func TestTrace_Errors(t *testing.T) {
	g := newGraph(t)
	add(t, g, "event", "A")

	_, err := flow.Trace(g, flow.Options{StartID: "missing"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = flow.Trace(g, flow.Options{MaxDepth: 21})
	assert.ErrorIs(t, err, domain.ErrValidationFailed)

	_, err = flow.Trace(g, flow.Options{MaxElements: 501})
	assert.ErrorIs(t, err, domain.ErrValidationFailed)

	_, err = flow.Trace(g, flow.Options{MaxDepth: -1})
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
}

func TestTrace_AllRootsCyclic(t *testing.T) {
	g := newGraph(t)
	a := add(t, g, "event", "A")
	link(t, g, a, a)

	rep, err := flow.Trace(g, flow.Options{})
	require.NoError(t, err)
	assert.Empty(t, rep.Trees)
	require.Len(t, rep.Orphans, 1)
	assert.Equal(t, a, rep.Orphans[0].ID)
}
