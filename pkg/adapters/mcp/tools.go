package mcp

import (
	"github.com/aretw0/eventstorm/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
)

// Tool names.
const (
	ToolCreateWorkshop = "eventstorming_create_workshop"
	ToolListWorkshops  = "eventstorming_list_workshops"
	ToolLoadWorkshop   = "eventstorming_load_workshop"
	ToolDeleteWorkshop = "eventstorming_delete_workshop"
	ToolAddElement     = "eventstorming_add_element"
	ToolUpdateElement  = "eventstorming_update_element"
	ToolDeleteElement  = "eventstorming_delete_element"
	ToolCreateContext  = "eventstorming_create_bounded_context"
	ToolDeleteContext  = "eventstorming_delete_bounded_context"
	ToolAssign         = "eventstorming_assign_to_context"
	ToolSearch         = "eventstorming_search_elements"
	ToolTimeline       = "eventstorming_get_timeline"
	ToolOverview       = "eventstorming_get_context_overview"
	ToolStatistics     = "eventstorming_get_statistics"
	ToolFlow           = "eventstorming_visualize_flow"
	ToolExport         = "eventstorming_export_workshop"
	ToolImport         = "eventstorming_import_workshop"
)

func annotate(title string, readOnly, destructive, idempotent bool) []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithTitleAnnotation(title),
		mcp.WithReadOnlyHintAnnotation(readOnly),
		mcp.WithDestructiveHintAnnotation(destructive),
		mcp.WithIdempotentHintAnnotation(idempotent),
		mcp.WithOpenWorldHintAnnotation(false),
	}
}

func workshopParam() mcp.ToolOption {
	return mcp.WithString("workshop_id", mcp.Required(), mcp.Description("Workshop ID"))
}

func stringList(name, desc string) mcp.ToolOption {
	return mcp.WithArray(name, mcp.Description(desc), mcp.Items(map[string]any{"type": "string"}))
}

func formatParam() mcp.ToolOption {
	return mcp.WithString("response_format",
		mcp.Description("Output format: 'markdown' for humans (default) or 'json' for machines"),
		mcp.Enum("markdown", "json"),
	)
}

func readParams() []mcp.ToolOption {
	return []mcp.ToolOption{
		formatParam(),
		mcp.WithString("detail_level",
			mcp.Description("'summary' lists essential fields (default), 'full' includes every attribute"),
			mcp.Enum("summary", "full"),
		),
	}
}

func pageParams() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithNumber("page", mcp.Description("Page number (1-indexed)"), mcp.Min(1)),
		mcp.WithNumber("page_size", mcp.Description("Items per page (max 200)"), mcp.Min(1), mcp.Max(200)),
	}
}

func build(name, description string, groups ...[]mcp.ToolOption) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(description)}
	for _, g := range groups {
		opts = append(opts, g...)
	}
	return mcp.NewTool(name, opts...)
}

func (s *Server) registerTools() {
	types := domain.TypeNames()

	s.mcpServer.AddTool(build(ToolCreateWorkshop,
		"Create a new Event Storming workshop. Returns the workshop ID used by every other tool.",
		annotate("Create Event Storming Workshop", false, false, false),
		[]mcp.ToolOption{
			mcp.WithString("name", mcp.Required(), mcp.Description("Workshop name"), mcp.MaxLength(domain.MaxNameLength)),
			mcp.WithString("description", mcp.Description("Workshop description")),
			mcp.WithString("domain", mcp.Description("Business domain, e.g. 'E-commerce'")),
			stringList("facilitators", "Facilitator names (max 10)"),
		},
	), s.handleCreateWorkshop)

	s.mcpServer.AddTool(build(ToolListWorkshops,
		"List every stored workshop with its element and context counts, most recently updated first.",
		annotate("List Event Storming Workshops", true, false, true),
	), s.handleListWorkshops)

	s.mcpServer.AddTool(build(ToolLoadWorkshop,
		"Load a workshop with its metadata, element summary and bounded contexts.",
		annotate("Load Event Storming Workshop", true, false, true),
		[]mcp.ToolOption{workshopParam()},
		readParams(),
	), s.handleLoadWorkshop)

	s.mcpServer.AddTool(build(ToolDeleteWorkshop,
		"Permanently delete a workshop and everything in it.",
		annotate("Delete Event Storming Workshop", false, true, true),
		[]mcp.ToolOption{workshopParam()},
	), s.handleDeleteWorkshop)

	s.mcpServer.AddTool(build(ToolAddElement,
		"Add a sticky note (event, command, actor, aggregate, policy, read model, external system or hotspot). "+
			"Trigger links are kept symmetric automatically.",
		annotate("Add Event Storming Element", false, false, false),
		[]mcp.ToolOption{
			workshopParam(),
			mcp.WithString("type", mcp.Required(), mcp.Description("Element type"), mcp.Enum(types...)),
			mcp.WithString("name", mcp.Required(), mcp.Description("Element name, e.g. 'Order Placed'"), mcp.MaxLength(domain.MaxNameLength)),
			mcp.WithString("description", mcp.Description("Longer description")),
			mcp.WithNumber("position", mcp.Description("Timeline position (0-based); defaults to the next free slot for the type"), mcp.Min(0)),
			mcp.WithString("notes", mcp.Description("Free-form notes")),
			mcp.WithString("created_by", mcp.Description("Participant who placed the note")),
			stringList("triggers", "IDs of elements this element triggers (max 20)"),
			stringList("triggered_by", "IDs of elements that trigger this element (max 20)"),
			mcp.WithString("bounded_context_id", mcp.Description("Bounded context to place the element in")),
		},
	), s.handleAddElement)

	s.mcpServer.AddTool(build(ToolUpdateElement,
		"Update selected fields of an element. Omitted fields are left untouched; "+
			"an empty bounded_context_id removes the element from its context.",
		annotate("Update Event Storming Element", false, false, true),
		[]mcp.ToolOption{
			workshopParam(),
			mcp.WithString("element_id", mcp.Required(), mcp.Description("Element ID to update")),
			mcp.WithString("name", mcp.Description("New name")),
			mcp.WithString("description", mcp.Description("New description")),
			mcp.WithNumber("position", mcp.Description("New position"), mcp.Min(0)),
			mcp.WithString("notes", mcp.Description("New notes")),
			stringList("triggers", "Replacement list of triggered element IDs"),
			stringList("triggered_by", "Replacement list of triggering element IDs"),
			mcp.WithString("bounded_context_id", mcp.Description("New bounded context, or empty to unassign")),
		},
	), s.handleUpdateElement)

	s.mcpServer.AddTool(build(ToolDeleteElement,
		"Delete an element. Every trigger link and context membership pointing at it is removed too.",
		annotate("Delete Event Storming Element", false, true, true),
		[]mcp.ToolOption{
			workshopParam(),
			mcp.WithString("element_id", mcp.Required(), mcp.Description("Element ID to delete")),
		},
	), s.handleDeleteElement)

	s.mcpServer.AddTool(build(ToolCreateContext,
		"Create a bounded context to group related elements.",
		annotate("Create Bounded Context", false, false, false),
		[]mcp.ToolOption{
			workshopParam(),
			mcp.WithString("name", mcp.Required(), mcp.Description("Context name, e.g. 'Order Management'"), mcp.MaxLength(domain.MaxContextNameLength)),
			mcp.WithString("description", mcp.Description("Context description")),
			mcp.WithString("color", mcp.Description("Visual color code, e.g. '#FF5733'")),
		},
	), s.handleCreateContext)

	s.mcpServer.AddTool(build(ToolDeleteContext,
		"Delete a bounded context. Its elements are kept and become unassigned.",
		annotate("Delete Bounded Context", false, true, true),
		[]mcp.ToolOption{
			workshopParam(),
			mcp.WithString("context_id", mcp.Required(), mcp.Description("Bounded context ID")),
		},
	), s.handleDeleteContext)

	s.mcpServer.AddTool(build(ToolAssign,
		"Assign elements to a bounded context, moving them out of any previous one. Unknown element IDs are reported, not fatal.",
		annotate("Assign Elements to Bounded Context", false, false, true),
		[]mcp.ToolOption{
			workshopParam(),
			mcp.WithString("context_id", mcp.Required(), mcp.Description("Bounded context ID")),
			mcp.WithArray("element_ids", mcp.Required(), mcp.Description("Element IDs to assign (1 to 100)"),
				mcp.Items(map[string]any{"type": "string"})),
		},
	), s.handleAssign)

	s.mcpServer.AddTool(build(ToolSearch,
		"Search elements by case-insensitive text in name, description and notes.",
		annotate("Search Event Storming Elements", true, false, true),
		[]mcp.ToolOption{
			workshopParam(),
			mcp.WithString("query", mcp.Required(), mcp.Description("Text to search for"), mcp.MaxLength(200)),
			mcp.WithString("element_type", mcp.Description("Only match this type"), mcp.Enum(types...)),
			mcp.WithString("bounded_context_id", mcp.Description("Only match elements of this context")),
		},
		pageParams(),
		readParams(),
	), s.handleSearch)

	s.mcpServer.AddTool(build(ToolTimeline,
		"View elements in timeline order (position, then creation time).",
		annotate("Get Event Timeline", true, false, true),
		[]mcp.ToolOption{
			workshopParam(),
			mcp.WithString("element_type", mcp.Description("Only include this type"), mcp.Enum(types...)),
			mcp.WithString("bounded_context_id", mcp.Description("Only include elements of this context")),
		},
		pageParams(),
		readParams(),
	), s.handleTimeline)

	s.mcpServer.AddTool(build(ToolOverview,
		"Overview of bounded contexts with member counts, type breakdown and sizing balance.",
		annotate("Get Bounded Context Overview", true, false, true),
		[]mcp.ToolOption{
			workshopParam(),
			mcp.WithString("context_id", mcp.Description("Report on this context only")),
		},
		pageParams(),
		readParams(),
	), s.handleOverview)

	s.mcpServer.AddTool(build(ToolStatistics,
		"Workshop statistics: counts by type and context, trigger links and context coverage.",
		annotate("Get Workshop Statistics", true, false, true),
		[]mcp.ToolOption{workshopParam(), formatParam()},
	), s.handleStatistics)

	s.mcpServer.AddTool(build(ToolFlow,
		"Trace cause and effect along trigger links as a tree. Cycles and depth cut-offs are marked, never dropped.",
		annotate("Visualize Event Flow", true, false, true),
		[]mcp.ToolOption{
			workshopParam(),
			mcp.WithString("start_element_id", mcp.Description("Trace from this element only; default traces every root")),
			mcp.WithNumber("max_depth", mcp.Description("Maximum depth (1 to 20, default 5)"), mcp.Min(1), mcp.Max(20)),
			mcp.WithNumber("max_elements", mcp.Description("Maximum nodes to emit (1 to 500, default 100)"), mcp.Min(1), mcp.Max(500)),
			formatParam(),
		},
	), s.handleFlow)

	s.mcpServer.AddTool(build(ToolExport,
		"Export a workshop for backup or sharing. The output can be passed to eventstorming_import_workshop.",
		annotate("Export Event Storming Workshop", true, false, true),
		[]mcp.ToolOption{
			workshopParam(),
			mcp.WithBoolean("include_metadata", mcp.Description("Keep IDs, timestamps and facilitators (default true)")),
			mcp.WithString("format", mcp.Description("Encoding (default json)"), mcp.Enum("json", "yaml")),
		},
	), s.handleExport)

	s.mcpServer.AddTool(build(ToolImport,
		"Import a previously exported workshop. The document is fully validated and gets a new ID.",
		annotate("Import Event Storming Workshop", false, false, false),
		[]mcp.ToolOption{
			mcp.WithString("workshop_data", mcp.Required(), mcp.Description("Exported workshop document")),
			mcp.WithString("new_name", mcp.Description("Name for the imported workshop")),
			mcp.WithString("format", mcp.Description("Encoding of workshop_data (default json)"), mcp.Enum("json", "yaml")),
			mcp.WithBoolean("preserve_id", mcp.Description("Keep the exported workshop ID, replacing any workshop with that ID")),
		},
	), s.handleImport)
}
