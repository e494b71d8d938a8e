package domain

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// AccountBalanceInput represents the MCP tool input for reading a balance.
type AccountBalanceInput struct {
	Address string `json:"address" jsonschema:"account address to read (0x-prefixed hex)"`
}

// AccountBalanceResult represents the MCP tool output for reading a balance.
type AccountBalanceResult = BalanceView

// AccountBalanceTool defines the MCP tool schema for reading a balance.
func AccountBalanceTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "account_balance",
		Description: "Reads the token balance of one ledger account. Accounts that never received tokens report zero.",
	}
}

// AccountBalanceHandler reads one account balance.
func AccountBalanceHandler(client *Client) mcp.ToolHandlerFor[AccountBalanceInput, AccountBalanceResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input AccountBalanceInput) (*mcp.CallToolResult, AccountBalanceResult, error) {
		if client == nil {
			return nil, AccountBalanceResult{}, fmt.Errorf("governance API client is not configured")
		}
		address := strings.TrimSpace(input.Address)
		if address == "" {
			return nil, AccountBalanceResult{}, fmt.Errorf("address is required")
		}

		runCtx, cancel := context.WithTimeout(ctx, apiCallTimeout)
		defer cancel()

		view, err := client.AccountBalance(runCtx, address)
		if err != nil {
			return nil, AccountBalanceResult{}, fmt.Errorf("account balance failed: %w", err)
		}
		return nil, view, nil
	}
}
