package mcp

// StatusInput is the input for the mover_status tool.
type StatusInput struct{}

// StatusOutput is the output for the mover_status tool.
type StatusOutput struct {
	Running        bool   `json:"running"`
	Backend        string `json:"backend"`
	Listen         string `json:"listen"`
	TargetClass    string `json:"target_class"`
	TargetFound    bool   `json:"target_found"`
	Placement      string `json:"placement"`
	Blocked        bool   `json:"blocked"`
	Connections    int    `json:"connections"`
	UptimeSeconds  int64  `json:"uptime_seconds"`
	LastStatus     string `json:"last_status,omitempty"`
	LastStatusTime string `json:"last_status_time,omitempty"`
}

// ListMonitorsInput is the input for the list_monitors tool.
type ListMonitorsInput struct{}

// Monitor describes one display.
type Monitor struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Primary bool   `json:"primary"`
}

// ListMonitorsOutput is the output for the list_monitors tool.
type ListMonitorsOutput struct {
	Monitors []Monitor `json:"monitors"`
}

// SetBlockedInput is the input for the set_mover_blocked tool.
type SetBlockedInput struct {
	Blocked bool `json:"blocked" jsonschema:"required,true to ignore page agent requests, false to resume"`
}

// SetBlockedOutput is the output for the set_mover_blocked tool.
type SetBlockedOutput struct {
	Blocked bool `json:"blocked"`
}

// CenterWindowInput is the input for the center_window tool.
type CenterWindowInput struct{}

// CenterWindowOutput is the output for the center_window tool.
type CenterWindowOutput struct {
	Centered bool `json:"centered"`
}

// LookupMovableInput is the input for the lookup_movable tool.
type LookupMovableInput struct {
	Domain string `json:"domain" jsonschema:"required,Site domain, e.g. youtube.com"`
}

// LookupMovableOutput is the output for the lookup_movable tool.
type LookupMovableOutput struct {
	Domain  string   `json:"domain"`
	Classes []string `json:"classes"`
}
