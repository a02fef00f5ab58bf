// Package mcp exposes a running engine to MCP clients over stdio. Every tool
// is a thin wrapper over the inspector socket.
package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/lumen/internal/ipc"
	"github.com/1broseidon/lumen/internal/tracelog"
)

const (
	ServerName    = "lumen"
	ServerVersion = "0.1.0"
)

// Inspector is the engine control surface the tools call. *ipc.Client
// implements it.
type Inspector interface {
	GetStatus() (*ipc.StatusData, error)
	SetVSync(enabled bool) error
	ResizeFramebuffer(width, height uint32) error
	CloseWindow() error
}

var _ Inspector = (*ipc.Client)(nil)

// Server is the MCP server for engine inspection.
type Server struct {
	mcpServer *mcpsdk.Server
	inspector Inspector
	logger    *tracelog.Logger
}

// NewServer creates an MCP server that forwards tool calls to inspector.
// logger may be nil.
func NewServer(inspector Inspector, logger *tracelog.Logger) *Server {
	s := &Server{
		inspector: inspector,
		logger:    logger,
	}

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

// Close releases server resources.
func (s *Server) Close() error {
	if s == nil {
		return nil
	}
	return s.logger.Close()
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Report the running engine: backend, window title and size, vsync state, framebuffer size and attachment ids, frames rendered and uptime.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_vsync",
		Description: "Enable or disable vertical sync on the engine window. Takes effect on the next buffer swap.",
	}, s.handleSetVSync)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "resize_framebuffer",
		Description: "Resize the off-screen framebuffer. Its attachments are reallocated with new ids. Pass 0x0 to make it follow the window size again.",
	}, s.handleResizeFramebuffer)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "close_window",
		Description: "Close the engine window. The frame loop exits after the current frame.",
	}, s.handleCloseWindow)
}
