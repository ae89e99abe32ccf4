package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/Quantumben/devdb-vscode/internal/service"
)

// Server exposes the table-browsing surface to the editor over MCP.
// It only ever talks to the Inspector; engine heterogeneity is invisible
// from here down.
type Server struct {
	mcp       *server.MCPServer
	inspector *service.Inspector
	log       zerolog.Logger
}

// New creates and configures the MCP server with all database tools.
func New(inspector *service.Inspector, log zerolog.Logger) *Server {
	s := &Server{
		inspector: inspector,
		log:       log,
	}

	s.mcp = server.NewMCPServer(
		"devdb",
		"1.0.0",
		server.WithToolCapabilities(true),
	)
	s.registerTools()
	return s
}

// ServeStdio runs the server on stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	s.log.Debug().Msg("serving MCP on stdio")
	return server.ServeStdio(s.mcp)
}
