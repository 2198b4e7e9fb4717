package ir

// Version constants for the IR and tool.
const (
	// IRVersion is the IR schema version.
	IRVersion = "1"

	// ToolVersion is the complexc version.
	ToolVersion = "0.1.0"
)
