package domain

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ProposeResult represents the MCP tool output for every session-creation
// tool. Creating a session never casts a vote for the proposer.
type ProposeResult struct {
	Session SessionView `json:"session" jsonschema:"the created voting session"`
}

// ProposeMintInput represents the MCP tool input for proposing a mint.
type ProposeMintInput struct {
	Beneficiary string `json:"beneficiary" jsonschema:"account address receiving the minted tokens (0x-prefixed hex)"`
	Amount      uint64 `json:"amount" jsonschema:"number of tokens to mint, must be positive"`
}

// ProposeMintTool defines the MCP tool schema for proposing a mint.
func ProposeMintTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "propose_mint",
		Description: "Opens a voting session to mint tokens to a beneficiary account. Requires an operator grant and a free session slot.",
	}
}

// ProposeMintHandler opens a mint session.
func ProposeMintHandler(client *Client) mcp.ToolHandlerFor[ProposeMintInput, ProposeResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ProposeMintInput) (*mcp.CallToolResult, ProposeResult, error) {
		if client == nil {
			return nil, ProposeResult{}, fmt.Errorf("governance API client is not configured")
		}
		beneficiary := strings.TrimSpace(input.Beneficiary)
		if beneficiary == "" {
			return nil, ProposeResult{}, fmt.Errorf("beneficiary is required")
		}

		runCtx, cancel := context.WithTimeout(ctx, apiCallTimeout)
		defer cancel()

		session, err := client.ProposeMint(runCtx, beneficiary, input.Amount)
		if err != nil {
			return nil, ProposeResult{}, fmt.Errorf("propose mint failed: %w", err)
		}
		return nil, ProposeResult{Session: session}, nil
	}
}

// ProposeBurnInput represents the MCP tool input for proposing a burn.
type ProposeBurnInput struct {
	Target string `json:"target" jsonschema:"account address whose tokens are burned (0x-prefixed hex)"`
	Amount uint64 `json:"amount" jsonschema:"number of tokens to burn, must be positive"`
}

// ProposeBurnTool defines the MCP tool schema for proposing a burn.
func ProposeBurnTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "propose_burn",
		Description: "Opens a voting session to burn tokens from a target account.",
	}
}

// ProposeBurnHandler opens a burn session.
func ProposeBurnHandler(client *Client) mcp.ToolHandlerFor[ProposeBurnInput, ProposeResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ProposeBurnInput) (*mcp.CallToolResult, ProposeResult, error) {
		if client == nil {
			return nil, ProposeResult{}, fmt.Errorf("governance API client is not configured")
		}
		target := strings.TrimSpace(input.Target)
		if target == "" {
			return nil, ProposeResult{}, fmt.Errorf("target is required")
		}

		runCtx, cancel := context.WithTimeout(ctx, apiCallTimeout)
		defer cancel()

		session, err := client.ProposeBurn(runCtx, target, input.Amount)
		if err != nil {
			return nil, ProposeResult{}, fmt.Errorf("propose burn failed: %w", err)
		}
		return nil, ProposeResult{Session: session}, nil
	}
}

// ProposeMintFinishedInput represents the MCP tool input for proposing to
// finish minting. The tool takes no arguments.
type ProposeMintFinishedInput struct{}

// ProposeMintFinishedTool defines the MCP tool schema for proposing to finish
// minting.
func ProposeMintFinishedTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "propose_mint_finished",
		Description: "Opens a voting session to permanently finish minting. Once adopted, mint sessions can no longer be created.",
	}
}

// ProposeMintFinishedHandler opens a mint-finished session.
func ProposeMintFinishedHandler(client *Client) mcp.ToolHandlerFor[ProposeMintFinishedInput, ProposeResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ ProposeMintFinishedInput) (*mcp.CallToolResult, ProposeResult, error) {
		if client == nil {
			return nil, ProposeResult{}, fmt.Errorf("governance API client is not configured")
		}

		runCtx, cancel := context.WithTimeout(ctx, apiCallTimeout)
		defer cancel()

		session, err := client.ProposeMintFinished(runCtx)
		if err != nil {
			return nil, ProposeResult{}, fmt.Errorf("propose mint finished failed: %w", err)
		}
		return nil, ProposeResult{Session: session}, nil
	}
}

// ProposeAddAuthorityInput represents the MCP tool input for proposing a new
// authority.
type ProposeAddAuthorityInput struct {
	Target string `json:"target" jsonschema:"account address to register as an authority (0x-prefixed hex)"`
}

// ProposeAddAuthorityTool defines the MCP tool schema for proposing a new
// authority.
func ProposeAddAuthorityTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "propose_add_authority",
		Description: "Opens a voting session to register a new authority.",
	}
}

// ProposeAddAuthorityHandler opens an add-authority session.
func ProposeAddAuthorityHandler(client *Client) mcp.ToolHandlerFor[ProposeAddAuthorityInput, ProposeResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ProposeAddAuthorityInput) (*mcp.CallToolResult, ProposeResult, error) {
		if client == nil {
			return nil, ProposeResult{}, fmt.Errorf("governance API client is not configured")
		}
		target := strings.TrimSpace(input.Target)
		if target == "" {
			return nil, ProposeResult{}, fmt.Errorf("target is required")
		}

		runCtx, cancel := context.WithTimeout(ctx, apiCallTimeout)
		defer cancel()

		session, err := client.ProposeAddAuthority(runCtx, target)
		if err != nil {
			return nil, ProposeResult{}, fmt.Errorf("propose add authority failed: %w", err)
		}
		return nil, ProposeResult{Session: session}, nil
	}
}

// ProposeRemoveAuthorityInput represents the MCP tool input for proposing an
// authority removal.
type ProposeRemoveAuthorityInput struct {
	Target string `json:"target" jsonschema:"authority address to remove (0x-prefixed hex)"`
}

// ProposeRemoveAuthorityTool defines the MCP tool schema for proposing an
// authority removal.
func ProposeRemoveAuthorityTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "propose_remove_authority",
		Description: "Opens a voting session to remove an existing authority. The last authority cannot be removed.",
	}
}

// ProposeRemoveAuthorityHandler opens a remove-authority session.
func ProposeRemoveAuthorityHandler(client *Client) mcp.ToolHandlerFor[ProposeRemoveAuthorityInput, ProposeResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ProposeRemoveAuthorityInput) (*mcp.CallToolResult, ProposeResult, error) {
		if client == nil {
			return nil, ProposeResult{}, fmt.Errorf("governance API client is not configured")
		}
		target := strings.TrimSpace(input.Target)
		if target == "" {
			return nil, ProposeResult{}, fmt.Errorf("target is required")
		}

		runCtx, cancel := context.WithTimeout(ctx, apiCallTimeout)
		defer cancel()

		session, err := client.ProposeRemoveAuthority(runCtx, target)
		if err != nil {
			return nil, ProposeResult{}, fmt.Errorf("propose remove authority failed: %w", err)
		}
		return nil, ProposeResult{Session: session}, nil
	}
}

// ProposeChangeQuorumInput represents the MCP tool input for proposing a
// quorum change.
type ProposeChangeQuorumInput struct {
	Quorum uint64 `json:"quorum" jsonschema:"new approval quorum, between 1 and the authority count"`
}

// ProposeChangeQuorumTool defines the MCP tool schema for proposing a quorum
// change.
func ProposeChangeQuorumTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "propose_change_quorum",
		Description: "Opens a voting session to change the number of accept votes required to adopt a session.",
	}
}

// ProposeChangeQuorumHandler opens a change-quorum session.
func ProposeChangeQuorumHandler(client *Client) mcp.ToolHandlerFor[ProposeChangeQuorumInput, ProposeResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ProposeChangeQuorumInput) (*mcp.CallToolResult, ProposeResult, error) {
		if client == nil {
			return nil, ProposeResult{}, fmt.Errorf("governance API client is not configured")
		}

		runCtx, cancel := context.WithTimeout(ctx, apiCallTimeout)
		defer cancel()

		session, err := client.ProposeChangeQuorum(runCtx, input.Quorum)
		if err != nil {
			return nil, ProposeResult{}, fmt.Errorf("propose change quorum failed: %w", err)
		}
		return nil, ProposeResult{Session: session}, nil
	}
}
