package domain

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// SessionStatusInput represents the MCP tool input for the pending-session
// report. The tool takes no arguments.
type SessionStatusInput struct{}

// SessionStatusResult represents the MCP tool output for the pending-session
// report.
type SessionStatusResult = CurrentSessionView

// SessionStatusTool defines the MCP tool schema for the pending-session report.
func SessionStatusTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "session_status",
		Description: "Reports the pending voting session with its description and vote tallies, or None when the session slot is free.",
	}
}

// SessionStatusHandler reads the pending-session report.
func SessionStatusHandler(client *Client) mcp.ToolHandlerFor[SessionStatusInput, SessionStatusResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ SessionStatusInput) (*mcp.CallToolResult, SessionStatusResult, error) {
		if client == nil {
			return nil, SessionStatusResult{}, fmt.Errorf("governance API client is not configured")
		}

		runCtx, cancel := context.WithTimeout(ctx, apiCallTimeout)
		defer cancel()

		view, err := client.CurrentSession(runCtx)
		if err != nil {
			return nil, SessionStatusResult{}, fmt.Errorf("session status failed: %w", err)
		}
		return nil, view, nil
	}
}

// VoteInput represents the MCP tool input for casting a vote.
type VoteInput struct {
	Choice string `json:"choice" jsonschema:"vote choice, accept or reject"`
}

// VoteResult represents the MCP tool output for casting a vote.
type VoteResult = VoteView

// VoteTool defines the MCP tool schema for casting a vote.
func VoteTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "vote",
		Description: "Casts the operator's vote on the pending session and reports the outcome, including whether the session resolved and its effect was applied.",
	}
}

// VoteHandler casts a vote on the pending session.
func VoteHandler(client *Client) mcp.ToolHandlerFor[VoteInput, VoteResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input VoteInput) (*mcp.CallToolResult, VoteResult, error) {
		if client == nil {
			return nil, VoteResult{}, fmt.Errorf("governance API client is not configured")
		}
		choice := strings.TrimSpace(input.Choice)
		if choice == "" {
			return nil, VoteResult{}, fmt.Errorf("choice is required")
		}

		runCtx, cancel := context.WithTimeout(ctx, apiCallTimeout)
		defer cancel()

		view, err := client.Vote(runCtx, choice)
		if err != nil {
			return nil, VoteResult{}, fmt.Errorf("vote failed: %w", err)
		}
		return nil, view, nil
	}
}
