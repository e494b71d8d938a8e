package service

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/signoria/signoria/internal/services/mcp/domain"
)

func registerGovernanceTools(server *mcp.Server, client *domain.Client) {
	mcp.AddTool(server, domain.GovernanceStatusTool(), domain.GovernanceStatusHandler(client))
	mcp.AddTool(server, domain.AuthorityListTool(), domain.AuthorityListHandler(client))
}

func registerSessionTools(server *mcp.Server, client *domain.Client) {
	mcp.AddTool(server, domain.SessionStatusTool(), domain.SessionStatusHandler(client))
	mcp.AddTool(server, domain.ProposeMintTool(), domain.ProposeMintHandler(client))
	mcp.AddTool(server, domain.ProposeBurnTool(), domain.ProposeBurnHandler(client))
	mcp.AddTool(server, domain.ProposeMintFinishedTool(), domain.ProposeMintFinishedHandler(client))
	mcp.AddTool(server, domain.ProposeAddAuthorityTool(), domain.ProposeAddAuthorityHandler(client))
	mcp.AddTool(server, domain.ProposeRemoveAuthorityTool(), domain.ProposeRemoveAuthorityHandler(client))
	mcp.AddTool(server, domain.ProposeChangeQuorumTool(), domain.ProposeChangeQuorumHandler(client))
	mcp.AddTool(server, domain.VoteTool(), domain.VoteHandler(client))
}

func registerLedgerTools(server *mcp.Server, client *domain.Client) {
	mcp.AddTool(server, domain.AccountBalanceTool(), domain.AccountBalanceHandler(client))
}

func registerEventTools(server *mcp.Server, client *domain.Client) {
	mcp.AddTool(server, domain.EventsTailTool(), domain.EventsTailHandler(client))
}

// registerGovernanceResources registers readable governance MCP resources.
func registerGovernanceResources(server *mcp.Server, client *domain.Client) {
	server.AddResource(domain.GovernanceStatusResource(), domain.GovernanceStatusResourceHandler(client))
	server.AddResource(domain.AuthorityListResource(), domain.AuthorityListResourceHandler(client))
}
