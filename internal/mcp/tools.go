package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) handleStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ StatusInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	status, err := s.client.GetStatus()
	if err != nil {
		return nil, StatusOutput{}, err
	}

	out := StatusOutput{
		Running:       status.DaemonRunning,
		Backend:       status.Backend,
		Listen:        status.Listen,
		TargetClass:   status.TargetClass,
		TargetFound:   status.TargetFound,
		Placement:     status.Placement,
		Blocked:       status.Blocked,
		Connections:   status.Connections,
		UptimeSeconds: status.UptimeSeconds,
		LastStatus:    status.LastStatus,
	}
	if !status.LastStatusTime.IsZero() {
		out.LastStatusTime = status.LastStatusTime.Format(time.RFC3339)
	}
	return nil, out, nil
}

func (s *Server) handleListMonitors(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListMonitorsInput) (*mcpsdk.CallToolResult, ListMonitorsOutput, error) {
	data, err := s.client.GetMonitors()
	if err != nil {
		return nil, ListMonitorsOutput{}, err
	}

	monitors := make([]Monitor, 0, len(data.Monitors))
	for _, m := range data.Monitors {
		monitors = append(monitors, Monitor{
			ID:      m.ID,
			Name:    m.Name,
			X:       m.X,
			Y:       m.Y,
			Width:   m.Width,
			Height:  m.Height,
			Primary: m.Primary,
		})
	}
	return nil, ListMonitorsOutput{Monitors: monitors}, nil
}

func (s *Server) handleSetBlocked(_ context.Context, _ *mcpsdk.CallToolRequest, args SetBlockedInput) (*mcpsdk.CallToolResult, SetBlockedOutput, error) {
	data, err := s.client.SetBlocked(args.Blocked)
	if err != nil {
		return nil, SetBlockedOutput{}, err
	}
	return nil, SetBlockedOutput{Blocked: data.Blocked}, nil
}

func (s *Server) handleCenterWindow(_ context.Context, _ *mcpsdk.CallToolRequest, _ CenterWindowInput) (*mcpsdk.CallToolResult, CenterWindowOutput, error) {
	if err := s.client.CenterWindow(); err != nil {
		return nil, CenterWindowOutput{}, err
	}
	return nil, CenterWindowOutput{Centered: true}, nil
}

func (s *Server) handleLookupMovable(_ context.Context, _ *mcpsdk.CallToolRequest, args LookupMovableInput) (*mcpsdk.CallToolResult, LookupMovableOutput, error) {
	domain := strings.TrimSpace(args.Domain)
	if domain == "" {
		return nil, LookupMovableOutput{}, fmt.Errorf("domain is required")
	}

	data, err := s.client.Lookup(domain)
	if err != nil {
		return nil, LookupMovableOutput{}, err
	}
	classes := data.Classes
	if classes == nil {
		classes = []string{}
	}
	return nil, LookupMovableOutput{Domain: domain, Classes: classes}, nil
}
