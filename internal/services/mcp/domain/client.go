package domain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/signoria/signoria/internal/platform/timeouts"
)

// apiCallTimeout caps the time for a single governance API call from an MCP
// tool handler.
const apiCallTimeout = timeouts.APIRequest

// maxErrorBodySize caps how much of a rejection body the client reads.
const maxErrorBodySize = 1 << 16

// APIError is a structured rejection from the governance API.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("governance API returned status %d", e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Client calls the governance HTTP API on behalf of MCP tool handlers.
// Mutating calls carry the operator grant as a bearer token; reads are
// anonymous.
type Client struct {
	baseURL    string
	grantToken string
	httpClient *http.Client
}

// NewClient builds a governance API client. The grant token may be empty, in
// which case mutating tools report that no grant is configured instead of
// sending unauthenticated requests.
func NewClient(baseURL, grantToken string) (*Client, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return nil, fmt.Errorf("governance API URL is required")
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse governance API URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("governance API URL %q must include scheme and host", trimmed)
	}
	return &Client{
		baseURL:    strings.TrimRight(trimmed, "/"),
		grantToken: strings.TrimSpace(grantToken),
		httpClient: &http.Client{},
	}, nil
}

// SessionView mirrors one voting session as the governance API reports it.
type SessionView struct {
	SessionID     uint64 `json:"session_id" jsonschema:"session identifier"`
	Topic         string `json:"topic" jsonschema:"session topic (MINT, BURN, MINT_FINISHED, ADD_AUTHORITY, REMOVE_AUTHORITY, CHANGE_REQUIRED_APPROVAL)"`
	CreatedAt     uint64 `json:"created_at" jsonschema:"block height the session was created at"`
	ReferNumber   uint64 `json:"refer_number,omitempty" jsonschema:"token amount or quorum argument, when the topic carries one"`
	ReferAccount  string `json:"refer_account,omitempty" jsonschema:"account argument, when the topic carries one"`
	CountAccept   uint64 `json:"count_accept" jsonschema:"accept votes recorded so far"`
	CountReject   uint64 `json:"count_reject" jsonschema:"reject votes recorded so far"`
	RequireAccept uint64 `json:"require_accept" jsonschema:"accept votes required to adopt the session"`
	ExpiresAt     uint64 `json:"expires_at" jsonschema:"block height at which the session expires"`
}

// VoteView mirrors the governance API response to a cast vote.
type VoteView struct {
	Session          SessionView `json:"session" jsonschema:"the session after the vote was recorded"`
	Outcome          string      `json:"outcome" jsonschema:"session outcome after the vote (PENDING, ACCEPTED, REJECTED)"`
	EffectDispatched bool        `json:"effect_dispatched" jsonschema:"whether the session effect was applied by this vote"`
}

// CurrentSessionView mirrors the pending-session report. When no session is
// pending the name reads None and the per-session fields are zeroed.
type CurrentSessionView struct {
	SessionName  string `json:"session_name" jsonschema:"localized session description, or None when the slot is free"`
	Pending      bool   `json:"pending" jsonschema:"whether a session is currently pending"`
	Outcome      string `json:"outcome" jsonschema:"outcome of the pending session, PENDING while votes are open"`
	SessionID    uint64 `json:"session_id,omitempty" jsonschema:"pending session identifier"`
	Topic        string `json:"topic,omitempty" jsonschema:"pending session topic"`
	ReferAccount string `json:"refer_account,omitempty" jsonschema:"account argument of the pending session"`
	ReferNumber  uint64 `json:"refer_number,omitempty" jsonschema:"amount or quorum argument of the pending session"`
	CountAccept  uint64 `json:"count_accept" jsonschema:"accept votes recorded so far"`
	CountReject  uint64 `json:"count_reject" jsonschema:"reject votes recorded so far"`
	ExpiresAt    uint64 `json:"expires_at,omitempty" jsonschema:"block height at which the pending session expires"`
}

// GovernanceView mirrors the governance registry snapshot.
type GovernanceView struct {
	RequireAccept   uint64 `json:"require_accept"`
	AuthorityCount  uint64 `json:"authority_count"`
	MintingFinished bool   `json:"minting_finished"`
	Height          uint64 `json:"height"`
}

// AuthorityView mirrors one registered authority.
type AuthorityView struct {
	Name         string `json:"name" jsonschema:"resource name, authorities/{address}"`
	Address      string `json:"address" jsonschema:"authority account address"`
	LastActed    uint64 `json:"last_acted" jsonschema:"identifier of the last session this authority acted on"`
	VotedCurrent bool   `json:"voted_current" jsonschema:"whether the authority has voted on the pending session"`
}

// BalanceView mirrors one ledger account balance.
type BalanceView struct {
	Name    string `json:"name" jsonschema:"resource name, accounts/{address}"`
	Address string `json:"address" jsonschema:"account address"`
	Balance uint64 `json:"balance" jsonschema:"token balance"`
}

// EventView mirrors one journal event.
type EventView struct {
	Seq              uint64 `json:"seq" jsonschema:"journal sequence number"`
	Height           uint64 `json:"height" jsonschema:"block height the event was recorded at"`
	RecordedAt       string `json:"recorded_at" jsonschema:"RFC3339 timestamp the event was recorded at"`
	Kind             string `json:"kind" jsonschema:"record kind (session_created, vote_cast, mint_token, ...)"`
	SessionID        uint64 `json:"session_id" jsonschema:"session the event belongs to"`
	Topic            string `json:"topic,omitempty" jsonschema:"session topic, on session_created events"`
	Actor            string `json:"actor,omitempty" jsonschema:"authority that acted"`
	Choice           string `json:"choice,omitempty" jsonschema:"vote choice, on vote_cast events"`
	Account          string `json:"account,omitempty" jsonschema:"account affected by the effect"`
	Amount           uint64 `json:"amount,omitempty" jsonschema:"token amount moved by the effect"`
	OldRequireAccept uint64 `json:"old_require_accept,omitempty" jsonschema:"previous quorum, on required_approval_changed events"`
	NewRequireAccept uint64 `json:"new_require_accept,omitempty" jsonschema:"new quorum, on required_approval_changed events"`
}

// EventsPage is one page of journal events plus the cursor for the next page.
type EventsPage struct {
	Events       []EventView `json:"events" jsonschema:"journal events in sequence order"`
	NextAfterSeq uint64      `json:"next_after_seq" jsonschema:"cursor to pass as after_seq for the next page"`
}

// Governance reads the registry snapshot.
func (c *Client) Governance(ctx context.Context) (GovernanceView, error) {
	var view GovernanceView
	err := c.get(ctx, "/v1/governance", nil, &view)
	return view, err
}

// CurrentSession reads the pending-session report.
func (c *Client) CurrentSession(ctx context.Context) (CurrentSessionView, error) {
	var view CurrentSessionView
	err := c.get(ctx, "/v1/sessions/current", nil, &view)
	return view, err
}

// Authorities lists registered authorities in registration order.
func (c *Client) Authorities(ctx context.Context) ([]AuthorityView, error) {
	var resp struct {
		Authorities []AuthorityView `json:"authorities"`
	}
	err := c.get(ctx, "/v1/authorities", nil, &resp)
	return resp.Authorities, err
}

// AccountBalance reads one account's token balance.
func (c *Client) AccountBalance(ctx context.Context, address string) (BalanceView, error) {
	var view BalanceView
	err := c.get(ctx, "/v1/ledger/accounts/"+url.PathEscape(address), nil, &view)
	return view, err
}

// TotalSupply reads the total minted token supply.
func (c *Client) TotalSupply(ctx context.Context) (uint64, error) {
	var resp struct {
		TotalSupply uint64 `json:"total_supply"`
	}
	err := c.get(ctx, "/v1/ledger/supply", nil, &resp)
	return resp.TotalSupply, err
}

// Events reads a page of journal events after the given cursor.
func (c *Client) Events(ctx context.Context, afterSeq, pageSize uint64) (EventsPage, error) {
	query := url.Values{}
	if afterSeq > 0 {
		query.Set("after_seq", strconv.FormatUint(afterSeq, 10))
	}
	if pageSize > 0 {
		query.Set("page_size", strconv.FormatUint(pageSize, 10))
	}
	var page EventsPage
	err := c.get(ctx, "/v1/events", query, &page)
	return page, err
}

// ProposeMint opens a voting session to mint tokens to a beneficiary.
func (c *Client) ProposeMint(ctx context.Context, beneficiary string, amount uint64) (SessionView, error) {
	body := struct {
		Amount      uint64 `json:"amount"`
		Beneficiary string `json:"beneficiary"`
	}{Amount: amount, Beneficiary: beneficiary}
	return c.propose(ctx, "/v1/sessions/mint", body)
}

// ProposeBurn opens a voting session to burn tokens from a target account.
func (c *Client) ProposeBurn(ctx context.Context, target string, amount uint64) (SessionView, error) {
	body := struct {
		Amount uint64 `json:"amount"`
		Target string `json:"target"`
	}{Amount: amount, Target: target}
	return c.propose(ctx, "/v1/sessions/burn", body)
}

// ProposeMintFinished opens a voting session to permanently finish minting.
func (c *Client) ProposeMintFinished(ctx context.Context) (SessionView, error) {
	return c.propose(ctx, "/v1/sessions/mint-finished", nil)
}

// ProposeAddAuthority opens a voting session to register a new authority.
func (c *Client) ProposeAddAuthority(ctx context.Context, target string) (SessionView, error) {
	body := struct {
		Target string `json:"target"`
	}{Target: target}
	return c.propose(ctx, "/v1/sessions/add-authority", body)
}

// ProposeRemoveAuthority opens a voting session to remove an authority.
func (c *Client) ProposeRemoveAuthority(ctx context.Context, target string) (SessionView, error) {
	body := struct {
		Target string `json:"target"`
	}{Target: target}
	return c.propose(ctx, "/v1/sessions/remove-authority", body)
}

// ProposeChangeQuorum opens a voting session to change the approval quorum.
func (c *Client) ProposeChangeQuorum(ctx context.Context, quorum uint64) (SessionView, error) {
	body := struct {
		Quorum uint64 `json:"quorum"`
	}{Quorum: quorum}
	return c.propose(ctx, "/v1/sessions/change-required-approval", body)
}

// Vote casts the operator's vote on the pending session. Choice must be
// accept or reject.
func (c *Client) Vote(ctx context.Context, choice string) (VoteView, error) {
	switch choice {
	case "accept", "reject":
	default:
		return VoteView{}, fmt.Errorf("choice must be accept or reject, got %q", choice)
	}
	var view VoteView
	err := c.postGranted(ctx, "/v1/sessions/current/"+choice, nil, &view)
	return view, err
}

func (c *Client) propose(ctx context.Context, path string, body any) (SessionView, error) {
	var resp struct {
		Session SessionView `json:"session"`
	}
	err := c.postGranted(ctx, path, body, &resp)
	return resp.Session, err
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out, false)
}

func (c *Client) postGranted(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out, true)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any, granted bool) error {
	if granted && c.grantToken == "" {
		return fmt.Errorf("no operator grant is configured; set SIGNORIA_GRANT_TOKEN to use mutating tools")
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, payload)
	if err != nil {
		return fmt.Errorf("build %s %s request: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if granted {
		req.Header.Set("Authorization", "Bearer "+c.grantToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call governance API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode governance API response: %w", err)
	}
	return nil
}

// decodeAPIError maps a rejection body onto APIError, falling back to the
// bare status when the body is not the expected envelope.
func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxErrorBodySize)).Decode(&envelope); err == nil {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
	}
	return apiErr
}
