package query

import (
	"github.com/aretw0/eventstorm/pkg/domain"
	"github.com/aretw0/eventstorm/pkg/graph"
)

// DefaultBalanceFactor is how far from the average a context may drift
// before it is flagged.
const DefaultBalanceFactor = 2.0

// Balance is the sizing signal of a bounded context relative to the others.
type Balance string

const (
	// BalanceEmpty marks a context with no members.
	BalanceEmpty Balance = "empty"
	// BalanceBalanced marks a context within the factor of the average size.
	BalanceBalanced Balance = "balanced"
	// BalanceOversized marks a context larger than factor times the average.
	BalanceOversized Balance = "oversized"
	// BalanceUndersized marks a context smaller than the average divided by the factor.
	BalanceUndersized Balance = "undersized"
)

// Overview reports on the bounded contexts of a workshop.
type Overview struct {
	Workshop       string          `json:"workshop"`
	AverageMembers float64         `json:"average_members"`
	BalanceFactor  float64         `json:"balance_factor"`
	Contexts       []ContextReport `json:"contexts"`
}

// ContextReport describes a single bounded context.
type ContextReport struct {
	Context       domain.BoundedContext `json:"context"`
	ElementCount  int                   `json:"element_count"`
	TypeBreakdown map[string]int        `json:"type_breakdown"`
	Elements      []domain.Element      `json:"elements"`
	Balance       Balance               `json:"balance"`
}

// ContextOverview builds a report for every context, or only for contextID
// when it is non-empty. The balance signal is always relative to the
// average over all contexts of the workshop.
func ContextOverview(g *graph.Graph, contextID string, factor float64) (Overview, error) {
	if factor <= 1 {
		factor = DefaultBalanceFactor
	}
	contexts := g.Contexts()
	if contextID != "" {
		if _, ok := g.Context(contextID); !ok {
			return Overview{}, domain.NotFound("bounded context", contextID)
		}
	}

	members := 0
	for _, c := range contexts {
		members += len(c.ElementIDs)
	}
	avg := 0.0
	if len(contexts) > 0 {
		avg = float64(members) / float64(len(contexts))
	}

	ov := Overview{
		Workshop:       g.Metadata().Name,
		AverageMembers: avg,
		BalanceFactor:  factor,
		Contexts:       []ContextReport{},
	}
	for _, c := range contexts {
		if contextID != "" && c.ID != contextID {
			continue
		}
		ov.Contexts = append(ov.Contexts, report(g, c, avg, factor, len(contexts)))
	}
	return ov, nil
}

func report(g *graph.Graph, c domain.BoundedContext, avg, factor float64, contextCount int) ContextReport {
	r := ContextReport{
		Context:       c,
		ElementCount:  len(c.ElementIDs),
		TypeBreakdown: make(map[string]int, len(domain.ElementTypes)),
		Elements:      make([]domain.Element, 0, len(c.ElementIDs)),
	}
	for _, t := range domain.ElementTypes {
		r.TypeBreakdown[string(t)] = 0
	}
	for _, id := range c.ElementIDs {
		el, ok := g.Element(id)
		if !ok {
			continue
		}
		r.TypeBreakdown[string(el.Type)]++
		r.Elements = append(r.Elements, el)
	}
	SortTimeline(r.Elements)
	r.Balance = balance(r.ElementCount, avg, factor, contextCount)
	return r
}

func balance(n int, avg, factor float64, contextCount int) Balance {
	if n == 0 {
		return BalanceEmpty
	}
	if contextCount < 2 {
		return BalanceBalanced
	}
	switch size := float64(n); {
	case size > avg*factor:
		return BalanceOversized
	case size < avg/factor:
		return BalanceUndersized
	default:
		return BalanceBalanced
	}
}
