package ipc

import (
	"encoding/json"
	"fmt"
	"time"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload       CommandType = "RELOAD"
	CommandGetStatus    CommandType = "GET_STATUS"
	CommandGetMonitors  CommandType = "GET_MONITORS"
	CommandSetBlocked   CommandType = "SET_BLOCKED"
	CommandCenterWindow CommandType = "CENTER_WINDOW"
	CommandLookup       CommandType = "LOOKUP"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	DaemonRunning  bool      `json:"daemon_running"`
	UptimeSeconds  int64     `json:"uptime_seconds"`
	Backend        string    `json:"backend"`
	Listen         string    `json:"listen"`
	TargetClass    string    `json:"target_class"`
	TargetFound    bool      `json:"target_found"`
	Placement      string    `json:"placement,omitempty"`
	Blocked        bool      `json:"blocked"`
	Connections    int       `json:"connections"`
	LastStatus     string    `json:"last_status,omitempty"`
	LastStatusTime time.Time `json:"last_status_time,omitempty"`
}

// MonitorInfo represents information about a single monitor
type MonitorInfo struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Primary bool   `json:"primary"`
}

// MonitorsData represents the data returned by GET_MONITORS
type MonitorsData struct {
	Monitors []MonitorInfo `json:"monitors"`
}

// SetBlockedPayload is the payload for SET_BLOCKED.
type SetBlockedPayload struct {
	Blocked bool `json:"blocked"`
}

// BlockedData is returned by SET_BLOCKED.
type BlockedData struct {
	Blocked bool `json:"blocked"`
}

// LookupPayload is the payload for LOOKUP.
type LookupPayload struct {
	Domain string `json:"domain"`
}

// LookupData is returned by LOOKUP.
type LookupData struct {
	Domain  string   `json:"domain"`
	Classes []string `json:"classes"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
