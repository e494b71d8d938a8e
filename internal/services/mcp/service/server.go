package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/signoria/signoria/internal/platform/branding"
	"github.com/signoria/signoria/internal/services/mcp/domain"
)

// serverVersion identifies the MCP server version.
const serverVersion = "0.1.0"

// serverName identifies this MCP server to clients.
var serverName = branding.AppName + " MCP"

// Config configures the MCP bridge.
type Config struct {
	// APIURL is the governance HTTP API base URL.
	APIURL string
	// GrantToken is the operator grant attached to mutating tools. Empty
	// leaves read-only tools working and mutating tools rejected locally.
	GrantToken string
}

// Server hosts the MCP bridge.
type Server struct {
	mcpServer *mcp.Server
}

// New creates a configured MCP server whose tools call the governance HTTP
// API.
func New(cfg Config) (*Server, error) {
	client, err := domain.NewClient(cfg.APIURL, cfg.GrantToken)
	if err != nil {
		return nil, fmt.Errorf("configure governance API client: %w", err)
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	registerGovernanceTools(mcpServer, client)
	registerSessionTools(mcpServer, client)
	registerLedgerTools(mcpServer, client)
	registerEventTools(mcpServer, client)
	registerGovernanceResources(mcpServer, client)

	return &Server{mcpServer: mcpServer}, nil
}

// Serve starts the MCP server on stdio and blocks until it stops or the
// context ends.
func (s *Server) Serve(ctx context.Context) error {
	return s.serveWithTransport(ctx, &mcp.StdioTransport{})
}

// serveWithTransport starts the MCP server using the provided transport.
// Context cancellation is the normal shutdown path and is not an error.
func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}

// Run is the service entrypoint for the MCP bridge and blocks until context
// cancellation.
func Run(ctx context.Context, cfg Config) error {
	server, err := New(cfg)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}
