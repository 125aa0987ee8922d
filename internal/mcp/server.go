package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/zenmover/internal/ipc"
)

const (
	ServerName    = "zenmover"
	ServerVersion = "0.1.0"
)

// DaemonClient is the subset of the IPC client the tools need.
type DaemonClient interface {
	GetStatus() (*ipc.StatusData, error)
	GetMonitors() (*ipc.MonitorsData, error)
	SetBlocked(blocked bool) (*ipc.BlockedData, error)
	CenterWindow() error
	Lookup(domain string) (*ipc.LookupData, error)
}

// Server exposes the running mover daemon as MCP tools.
type Server struct {
	mcpServer *mcpsdk.Server
	client    DaemonClient
}

// NewServer creates a new MCP server talking to the daemon through client.
func NewServer(client DaemonClient) *Server {
	s := &Server{client: client}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "mover_status",
		Description: "Report whether the mover daemon is running, which window it targets, its placement state and the last status message.",
	}, s.handleStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_monitors",
		Description: "List the connected displays with their geometry. The primary display is flagged.",
	}, s.handleListMonitors)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_mover_blocked",
		Description: "Engage or release the mover kill-switch. While blocked, drag and maximize requests from the page agent are ignored.",
	}, s.handleSetBlocked)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "center_window",
		Description: "Center the target window on the primary display, keeping its size.",
	}, s.handleCenterWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "lookup_movable",
		Description: "Return the CSS classes configured as drag handles for a site domain.",
	}, s.handleLookupMovable)
}
