/*
Package eventstorm is an engine for Event Storming workshops.

A workshop is a persisted directed graph of typed sticky notes (domain
events, commands, actors, aggregates, policies, read models, external
systems and hotspots) connected by causal "triggers" edges and optionally
grouped into bounded contexts. The Engine exposes a fixed set of operations
over that graph and guarantees that every committed workshop satisfies its
invariants: IDs are unique, the triggers and triggered_by views are
symmetric, no edge dangles and context membership is recorded on both sides.

# Usage

	eng, err := eventstorm.New(
		eventstorm.WithStore(file.New("")),
		eventstorm.WithLogger(logger),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer eng.Close()

	ctx := context.Background()
	ws, _ := eng.CreateWorkshop(ctx, eventstorm.CreateWorkshopInput{Name: "Orders"})
	placed, _ := eng.AddElement(ctx, ws.Metadata.ID, graph.ElementInput{Type: "event", Name: "Order Placed"})
	_, _ = eng.AddElement(ctx, ws.Metadata.ID, graph.ElementInput{
		Type:     "command",
		Name:     "Place Order",
		Triggers: []string{placed.ID},
	})

	report, _ := eng.VisualizeFlow(ctx, ws.Metadata.ID, flow.Options{})

Every mutation runs as load, mutate a working copy, save. A mutation that
fails leaves the stored workshop untouched. Operations on the same workshop
are serialized in process; WithLocker extends that across processes.

# Adapters

The MCP server (pkg/adapters/mcp), the REST API (pkg/adapters/http) and the
eventstorm CLI (cmd/eventstorm) are thin layers over the Engine. Storage
backends live in pkg/adapters/{file,memory,redis,sqlite}.
*/
package eventstorm
