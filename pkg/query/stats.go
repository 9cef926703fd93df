package query

import (
	"math"
	"slices"
	"time"

	"github.com/aretw0/eventstorm/pkg/domain"
	"github.com/aretw0/eventstorm/pkg/graph"
)

// Statistics is the aggregate report of a workshop.
type Statistics struct {
	Workshop       WorkshopInfo   `json:"workshop"`
	Totals         Totals         `json:"totals"`
	ByType         map[string]int `json:"by_type"`
	ByContext      []ContextCount `json:"by_context"`
	Relationships  Relationships  `json:"relationships"`
	Coverage       Coverage       `json:"coverage"`
	SelfTriggering []string       `json:"self_triggering"`
}

// WorkshopInfo identifies the workshop a report was computed for.
type WorkshopInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Domain    string    `json:"domain"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Totals counts the top-level entities.
type Totals struct {
	Elements        int `json:"elements"`
	BoundedContexts int `json:"bounded_contexts"`
}

// ContextCount is the member count of one bounded context.
type ContextCount struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Relationships summarizes the trigger edge set.
type Relationships struct {
	ElementsWithTriggers    int `json:"elements_with_triggers"`
	ElementsWithTriggeredBy int `json:"elements_with_triggered_by"`
	TotalTriggerEdges       int `json:"total_trigger_edges"`
}

// Coverage is the share of elements assigned to a bounded context.
type Coverage struct {
	Assigned      int      `json:"assigned"`
	Unassigned    int      `json:"unassigned"`
	Fraction      float64  `json:"fraction"`
	Percentage    float64  `json:"percentage"`
	UnassignedIDs []string `json:"unassigned_ids"`
}

// ComputeStatistics aggregates counts, relationship metrics and context
// coverage over the whole workshop.
func ComputeStatistics(g *graph.Graph) Statistics {
	meta := g.Metadata()
	elements := g.Elements()
	contexts := g.Contexts()

	st := Statistics{
		Workshop: WorkshopInfo{
			ID:        meta.ID,
			Name:      meta.Name,
			Domain:    meta.Domain,
			CreatedAt: meta.CreatedAt,
			UpdatedAt: meta.UpdatedAt,
		},
		Totals:         Totals{Elements: len(elements), BoundedContexts: len(contexts)},
		ByType:         make(map[string]int, len(domain.ElementTypes)),
		ByContext:      make([]ContextCount, 0, len(contexts)),
		SelfTriggering: []string{},
	}
	for _, t := range domain.ElementTypes {
		st.ByType[string(t)] = 0
	}
	for _, c := range contexts {
		st.ByContext = append(st.ByContext, ContextCount{ID: c.ID, Name: c.Name, Count: len(c.ElementIDs)})
	}

	unassigned := []string{}
	for _, el := range elements {
		st.ByType[string(el.Type)]++
		if len(el.Triggers) > 0 {
			st.Relationships.ElementsWithTriggers++
		}
		if len(el.TriggeredBy) > 0 {
			st.Relationships.ElementsWithTriggeredBy++
		}
		if slices.Contains(el.Triggers, el.ID) {
			st.SelfTriggering = append(st.SelfTriggering, el.ID)
		}
		if el.BoundedContextID == "" {
			unassigned = append(unassigned, el.ID)
		}
	}
	st.Relationships.TotalTriggerEdges = g.EdgeCount()
	st.Coverage = coverage(len(elements), unassigned)
	return st
}

func coverage(total int, unassigned []string) Coverage {
	c := Coverage{
		Assigned:      total - len(unassigned),
		Unassigned:    len(unassigned),
		UnassignedIDs: unassigned,
	}
	if total > 0 {
		c.Fraction = float64(c.Assigned) / float64(total)
		c.Percentage = math.Round(c.Fraction*1000) / 10
	}
	return c
}
