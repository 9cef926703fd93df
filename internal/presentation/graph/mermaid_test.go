package graph_test

import (
	"strings"
	"testing"
	"time"

	"github.com/aretw0/eventstorm/internal/presentation/graph"
	"github.com/aretw0/eventstorm/pkg/domain"
	"github.com/aretw0/eventstorm/pkg/flow"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
)

func orderFlow() *domain.Document {
	doc := domain.NewDocument("w1", "Orders", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	doc.Elements = []domain.Element{
		{ID: "customer", Type: domain.TypeActor, Name: "Customer", Triggers: []string{"place-order"}},
		{ID: "place-order", Type: domain.TypeCommand, Name: "Place Order", Triggers: []string{"order-placed"}, TriggeredBy: []string{"customer"}, BoundedContextID: "ctx-sales"},
		{ID: "order-placed", Type: domain.TypeEvent, Name: "Order Placed", Triggers: []string{"email"}, TriggeredBy: []string{"place-order"}, BoundedContextID: "ctx-sales"},
		{ID: "email", Type: domain.TypePolicy, Name: `Send "Email"`, TriggeredBy: []string{"order-placed"}},
	}
	doc.BoundedContexts = []domain.BoundedContext{
		{ID: "ctx-sales", Name: "Sales", ElementIDs: []string{"place-order", "order-placed"}},
	}
	return doc
}

func TestGenerateMermaid_Golden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	g.Assert(t, "order_flow", []byte(graph.GenerateMermaid(orderFlow(), nil)))
	g.Assert(t, "order_flow_overlay", []byte(graph.GenerateMermaid(orderFlow(), &graph.Overlay{
		Path:  []string{"customer", "place-order", "customer"},
		Focus: "customer",
	})))
}

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		elements []domain.Element
		contains []string
	}{
		{
			name: "Shapes By Type",
			elements: []domain.Element{
				{ID: "e", Type: domain.TypeEvent, Name: "E"},
				{ID: "c", Type: domain.TypeCommand, Name: "C"},
				{ID: "a", Type: domain.TypeActor, Name: "A"},
				{ID: "g", Type: domain.TypeAggregate, Name: "G"},
				{ID: "p", Type: domain.TypePolicy, Name: "P"},
				{ID: "r", Type: domain.TypeReadModel, Name: "R"},
				{ID: "x", Type: domain.TypeExternalSystem, Name: "X"},
				{ID: "h", Type: domain.TypeHotspot, Name: "H"},
			},
			contains: []string{
				`e["E"]`,
				`c("C")`,
				`a(("A"))`,
				`g[["G"]]`,
				`p{{"P"}}`,
				`r(["R"])`,
				`x>"X"]`,
				`h{"H"}`,
			},
		},
		{
			name: "ID Sanitization",
			elements: []domain.Element{
				{ID: "path/to/file.md", Type: domain.TypeEvent, Name: "File"},
				{ID: "hyphen-ated", Type: domain.TypeEvent, Name: "Hyphen"},
			},
			contains: []string{
				`path_to_file_md["File"]`,
				`hyphen_ated["Hyphen"]`,
			},
		},
		{
			name: "Self Loop",
			elements: []domain.Element{
				{ID: "loop", Type: domain.TypePolicy, Name: "Retry", Triggers: []string{"loop"}, TriggeredBy: []string{"loop"}},
			},
			contains: []string{
				"loop --> loop",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := domain.NewDocument("w", "W", time.Now())
			doc.Elements = tt.elements
			got := graph.GenerateMermaid(doc, nil)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
				}
			}
		})
	}
}

func TestGenerateMermaid_Empty(t *testing.T) {
	got := graph.GenerateMermaid(domain.NewDocument("w", "W", time.Now()), nil)
	if got != "graph LR\n" {
		t.Errorf("GenerateMermaid() = %q, want bare header", got)
	}
}

func TestFlowOverlay(t *testing.T) {
	rep := flow.Report{
		StartID: "place-order",
		Trees: []*flow.Node{{
			ID: "place-order",
			Children: []*flow.Node{
				{ID: "order-placed", Depth: 1, Children: []*flow.Node{{ID: "email", Depth: 2}}},
			},
		}},
	}

	o := graph.FlowOverlay(rep)
	assert.Equal(t, "place-order", o.Focus)
	assert.Equal(t, []string{"place-order", "order-placed", "email"}, o.Path)
}
