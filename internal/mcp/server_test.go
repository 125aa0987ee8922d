package mcp

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/1broseidon/zenmover/internal/ipc"
)

type fakeClient struct {
	status    ipc.StatusData
	monitors  []ipc.MonitorInfo
	blocked   bool
	centered  int
	centerErr error
	lookups   []string
	err       error
}

func (f *fakeClient) GetStatus() (*ipc.StatusData, error) {
	if f.err != nil {
		return nil, f.err
	}
	st := f.status
	st.Blocked = f.blocked
	return &st, nil
}

func (f *fakeClient) GetMonitors() (*ipc.MonitorsData, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &ipc.MonitorsData{Monitors: f.monitors}, nil
}

func (f *fakeClient) SetBlocked(blocked bool) (*ipc.BlockedData, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.blocked = blocked
	return &ipc.BlockedData{Blocked: blocked}, nil
}

func (f *fakeClient) CenterWindow() error {
	f.centered++
	return f.centerErr
}

func (f *fakeClient) Lookup(domain string) (*ipc.LookupData, error) {
	f.lookups = append(f.lookups, domain)
	if domain == "youtube.com" {
		return &ipc.LookupData{Domain: domain, Classes: []string{"ytd-masthead"}}, nil
	}
	return &ipc.LookupData{Domain: domain}, nil
}

var _ DaemonClient = (*ipc.Client)(nil)

func TestNewServer_RegistersTools(t *testing.T) {
	s := NewServer(&fakeClient{})
	if s.mcpServer == nil {
		t.Fatal("expected underlying MCP server")
	}
}

func TestHandleStatus(t *testing.T) {
	when := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	client := &fakeClient{
		status: ipc.StatusData{
			DaemonRunning:  true,
			Backend:        "x11",
			TargetClass:    "firefox",
			TargetFound:    true,
			Placement:      "maximized",
			Connections:    1,
			LastStatus:     "Window maximized",
			LastStatusTime: when,
		},
		blocked: true,
	}
	s := NewServer(client)

	_, out, err := s.handleStatus(context.Background(), nil, StatusInput{})
	if err != nil {
		t.Fatalf("handleStatus: %v", err)
	}
	if !out.Running || !out.Blocked || out.Placement != "maximized" || out.Connections != 1 {
		t.Fatalf("unexpected output %+v", out)
	}
	if out.LastStatusTime != "2026-03-01T12:00:00Z" {
		t.Fatalf("LastStatusTime = %q", out.LastStatusTime)
	}
}

func TestHandleStatus_DaemonDown(t *testing.T) {
	s := NewServer(&fakeClient{err: errors.New("is the daemon running?")})
	if _, _, err := s.handleStatus(context.Background(), nil, StatusInput{}); err == nil {
		t.Fatal("expected error when daemon is unreachable")
	}
	if _, _, err := s.handleListMonitors(context.Background(), nil, ListMonitorsInput{}); err == nil {
		t.Fatal("expected error when daemon is unreachable")
	}
}

func TestHandleListMonitors(t *testing.T) {
	s := NewServer(&fakeClient{monitors: []ipc.MonitorInfo{
		{ID: 0, Name: "DP-1", Width: 1920, Height: 1080, Primary: true},
		{ID: 1, Name: "HDMI-1", X: 1920, Width: 1280, Height: 1024},
	}})

	_, out, err := s.handleListMonitors(context.Background(), nil, ListMonitorsInput{})
	if err != nil {
		t.Fatalf("handleListMonitors: %v", err)
	}
	want := []Monitor{
		{ID: 0, Name: "DP-1", Width: 1920, Height: 1080, Primary: true},
		{ID: 1, Name: "HDMI-1", X: 1920, Width: 1280, Height: 1024},
	}
	if !reflect.DeepEqual(out.Monitors, want) {
		t.Fatalf("monitors = %+v", out.Monitors)
	}
}

func TestHandleSetBlockedAndCenter(t *testing.T) {
	client := &fakeClient{}
	s := NewServer(client)

	_, out, err := s.handleSetBlocked(context.Background(), nil, SetBlockedInput{Blocked: true})
	if err != nil || !out.Blocked || !client.blocked {
		t.Fatalf("set blocked: out=%+v err=%v", out, err)
	}

	_, centered, err := s.handleCenterWindow(context.Background(), nil, CenterWindowInput{})
	if err != nil || !centered.Centered {
		t.Fatalf("center: out=%+v err=%v", centered, err)
	}

	client.centerErr = errors.New("target window not found")
	if _, _, err := s.handleCenterWindow(context.Background(), nil, CenterWindowInput{}); err == nil {
		t.Fatal("expected center error to propagate")
	}
	if client.centered != 2 {
		t.Fatalf("centered = %d, want 2", client.centered)
	}
}

func TestHandleLookupMovable(t *testing.T) {
	client := &fakeClient{}
	s := NewServer(client)

	_, out, err := s.handleLookupMovable(context.Background(), nil, LookupMovableInput{Domain: " youtube.com "})
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if out.Domain != "youtube.com" || !reflect.DeepEqual(out.Classes, []string{"ytd-masthead"}) {
		t.Fatalf("unexpected output %+v", out)
	}

	_, out, err = s.handleLookupMovable(context.Background(), nil, LookupMovableInput{Domain: "example.org"})
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if out.Classes == nil || len(out.Classes) != 0 {
		t.Fatalf("expected empty non-nil classes, got %#v", out.Classes)
	}

	if _, _, err := s.handleLookupMovable(context.Background(), nil, LookupMovableInput{}); err == nil {
		t.Fatal("expected error for empty domain")
	}
	if len(client.lookups) != 2 {
		t.Fatalf("lookups = %v", client.lookups)
	}
}
