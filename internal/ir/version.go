package ir

// Version constants for the record format and the tool.
const (
	// RecordVersion is the tagged-record schema version.
	RecordVersion = "1"

	// ToolVersion is the dbnav version.
	ToolVersion = "0.1.0"
)
