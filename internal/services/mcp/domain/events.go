package domain

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// EventsTailInput represents the MCP tool input for reading journal events.
type EventsTailInput struct {
	AfterSeq uint64 `json:"after_seq,omitempty" jsonschema:"return events with a sequence strictly greater than this cursor"`
	PageSize uint64 `json:"page_size,omitempty" jsonschema:"maximum events to return, server-capped"`
}

// EventsTailResult represents the MCP tool output for reading journal events.
type EventsTailResult = EventsPage

// EventsTailTool defines the MCP tool schema for reading journal events.
func EventsTailTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "events_tail",
		Description: "Reads a page of append-only journal events after a sequence cursor. Pass the returned next_after_seq to continue.",
	}
}

// EventsTailHandler reads one page of journal events.
func EventsTailHandler(client *Client) mcp.ToolHandlerFor[EventsTailInput, EventsTailResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input EventsTailInput) (*mcp.CallToolResult, EventsTailResult, error) {
		if client == nil {
			return nil, EventsTailResult{}, fmt.Errorf("governance API client is not configured")
		}

		runCtx, cancel := context.WithTimeout(ctx, apiCallTimeout)
		defer cancel()

		page, err := client.Events(runCtx, input.AfterSeq, input.PageSize)
		if err != nil {
			return nil, EventsTailResult{}, fmt.Errorf("events tail failed: %w", err)
		}
		return nil, page, nil
	}
}
