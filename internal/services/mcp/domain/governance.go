package domain

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// GovernanceStatusInput represents the MCP tool input for the governance
// snapshot. The tool takes no arguments.
type GovernanceStatusInput struct{}

// GovernanceStatusResult represents the MCP tool output for the governance
// snapshot.
type GovernanceStatusResult struct {
	RequireAccept   uint64 `json:"require_accept" jsonschema:"accept votes required to adopt a session"`
	AuthorityCount  uint64 `json:"authority_count" jsonschema:"number of registered authorities"`
	MintingFinished bool   `json:"minting_finished" jsonschema:"whether minting has been permanently finished"`
	Height          uint64 `json:"height" jsonschema:"current block height"`
	TotalSupply     uint64 `json:"total_supply" jsonschema:"total minted token supply"`
}

// GovernanceStatusTool defines the MCP tool schema for the governance snapshot.
func GovernanceStatusTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "governance_status",
		Description: "Reports the governance snapshot: approval quorum, authority count, minting-finished flag, block height, and total token supply.",
	}
}

// GovernanceStatusHandler reads the registry snapshot and total supply.
func GovernanceStatusHandler(client *Client) mcp.ToolHandlerFor[GovernanceStatusInput, GovernanceStatusResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ GovernanceStatusInput) (*mcp.CallToolResult, GovernanceStatusResult, error) {
		if client == nil {
			return nil, GovernanceStatusResult{}, fmt.Errorf("governance API client is not configured")
		}

		runCtx, cancel := context.WithTimeout(ctx, apiCallTimeout)
		defer cancel()

		snapshot, err := client.Governance(runCtx)
		if err != nil {
			return nil, GovernanceStatusResult{}, fmt.Errorf("governance status failed: %w", err)
		}
		supply, err := client.TotalSupply(runCtx)
		if err != nil {
			return nil, GovernanceStatusResult{}, fmt.Errorf("total supply failed: %w", err)
		}

		return nil, GovernanceStatusResult{
			RequireAccept:   snapshot.RequireAccept,
			AuthorityCount:  snapshot.AuthorityCount,
			MintingFinished: snapshot.MintingFinished,
			Height:          snapshot.Height,
			TotalSupply:     supply,
		}, nil
	}
}

// AuthorityListInput represents the MCP tool input for listing authorities.
// The tool takes no arguments.
type AuthorityListInput struct{}

// AuthorityListResult represents the MCP tool output for listing authorities.
type AuthorityListResult struct {
	Authorities []AuthorityView `json:"authorities" jsonschema:"registered authorities in registration order"`
}

// AuthorityListTool defines the MCP tool schema for listing authorities.
func AuthorityListTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "authority_list",
		Description: "Lists registered authorities with their last-acted sessions and whether each has voted on the pending session.",
	}
}

// AuthorityListHandler reads the authority registry.
func AuthorityListHandler(client *Client) mcp.ToolHandlerFor[AuthorityListInput, AuthorityListResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ AuthorityListInput) (*mcp.CallToolResult, AuthorityListResult, error) {
		if client == nil {
			return nil, AuthorityListResult{}, fmt.Errorf("governance API client is not configured")
		}

		runCtx, cancel := context.WithTimeout(ctx, apiCallTimeout)
		defer cancel()

		authorities, err := client.Authorities(runCtx)
		if err != nil {
			return nil, AuthorityListResult{}, fmt.Errorf("authority list failed: %w", err)
		}
		return nil, AuthorityListResult{Authorities: authorities}, nil
	}
}

// GovernanceStatusResource defines the readable governance snapshot resource.
func GovernanceStatusResource() *mcp.Resource {
	return &mcp.Resource{
		Name:        "governance_status",
		Title:       "Governance Status",
		Description: "Readable governance snapshot (approval quorum, authority count, minting flag, height, total supply)",
		MIMEType:    "application/json",
		URI:         "governance://status",
	}
}

// GovernanceStatusResourceHandler returns a readable governance snapshot.
func GovernanceStatusResourceHandler(client *Client) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if client == nil {
			return nil, fmt.Errorf("governance API client is not configured")
		}

		uri := GovernanceStatusResource().URI
		if req != nil && req.Params != nil && req.Params.URI != "" {
			uri = req.Params.URI
		}
		if uri != GovernanceStatusResource().URI {
			return nil, fmt.Errorf("invalid URI: expected %s, got %q", GovernanceStatusResource().URI, uri)
		}

		runCtx, cancel := context.WithTimeout(ctx, apiCallTimeout)
		defer cancel()

		snapshot, err := client.Governance(runCtx)
		if err != nil {
			return nil, fmt.Errorf("governance status failed: %w", err)
		}
		supply, err := client.TotalSupply(runCtx)
		if err != nil {
			return nil, fmt.Errorf("total supply failed: %w", err)
		}

		payload := GovernanceStatusResult{
			RequireAccept:   snapshot.RequireAccept,
			AuthorityCount:  snapshot.AuthorityCount,
			MintingFinished: snapshot.MintingFinished,
			Height:          snapshot.Height,
			TotalSupply:     supply,
		}
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal governance status: %w", err)
		}

		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{
					URI:      uri,
					MIMEType: "application/json",
					Text:     string(data),
				},
			},
		}, nil
	}
}

// AuthorityListResource defines the readable authority registry resource.
func AuthorityListResource() *mcp.Resource {
	return &mcp.Resource{
		Name:        "authority_list",
		Title:       "Authorities",
		Description: "Readable listing of registered authorities",
		MIMEType:    "application/json",
		URI:         "governance://authorities",
	}
}

// AuthorityListResourceHandler returns a readable authority listing.
func AuthorityListResourceHandler(client *Client) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if client == nil {
			return nil, fmt.Errorf("governance API client is not configured")
		}

		uri := AuthorityListResource().URI
		if req != nil && req.Params != nil && req.Params.URI != "" {
			uri = req.Params.URI
		}
		if uri != AuthorityListResource().URI {
			return nil, fmt.Errorf("invalid URI: expected %s, got %q", AuthorityListResource().URI, uri)
		}

		runCtx, cancel := context.WithTimeout(ctx, apiCallTimeout)
		defer cancel()

		authorities, err := client.Authorities(runCtx)
		if err != nil {
			return nil, fmt.Errorf("authority list failed: %w", err)
		}

		data, err := json.MarshalIndent(AuthorityListResult{Authorities: authorities}, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal authority list: %w", err)
		}

		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{
					URI:      uri,
					MIMEType: "application/json",
					Text:     string(data),
				},
			},
		}, nil
	}
}
