package domain

// Badge is a shields.io endpoint payload describing a repository's
// compliance status.
type Badge struct {
	SchemaVersion int    `json:"schemaVersion"`
	Label         string `json:"label"`
	Message       string `json:"message"`
	Color         string `json:"color"`
	IsError       string `json:"isError"`
	Style         string `json:"style"`
}

// Badge defaults.
const (
	BadgeSchemaVersion = 1
	BadgeDefaultLabel  = "MoJ Compliant"
	BadgeStyle         = "for-the-badge"
	BadgeColorPass     = "005ea5"
	BadgeColorFail     = "d4351c"
)
