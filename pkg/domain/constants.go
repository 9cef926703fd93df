package domain

// Field limits shared by the graph and the adapters.
const (
	// MaxNameLength bounds workshop and element names.
	MaxNameLength = 200

	// MaxContextNameLength bounds bounded context names.
	MaxContextNameLength = 100

	// MaxFacilitators bounds the facilitator list of a workshop.
	MaxFacilitators = 10
)

// Tool identifies this engine in export envelopes.
const Tool = "eventstorming_mcp"
