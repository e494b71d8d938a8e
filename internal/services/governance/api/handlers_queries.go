package api

import (
	"net/http"
	"strconv"
	"strings"

	"go.einride.tech/aip/resourcename"

	apperrors "github.com/signoria/signoria/internal/platform/errors"
	"github.com/signoria/signoria/internal/services/governance/domain"
	"github.com/signoria/signoria/internal/services/governance/notify"
)

const (
	authorityNamePattern = "authorities/{address}"
	accountNamePattern   = "accounts/{address}"
)

type governanceView struct {
	RequireAccept   uint64 `json:"require_accept"`
	AuthorityCount  uint64 `json:"authority_count"`
	MintingFinished bool   `json:"minting_finished"`
	Height          uint64 `json:"height"`
}

func (s *Server) handleGovernance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	status, err := s.service.Status(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, governanceView{
		RequireAccept:   status.RequireAccept,
		AuthorityCount:  status.AuthorityCount,
		MintingFinished: status.MintingFinished,
		Height:          status.Height,
	})
}

type authorityView struct {
	Name         string `json:"name"`
	Address      string `json:"address"`
	LastActed    uint64 `json:"last_acted"`
	VotedCurrent bool   `json:"voted_current"`
}

func authorityViewFrom(entry domain.AuthorityStatus) authorityView {
	return authorityView{
		Name:         resourcename.Sprint(authorityNamePattern, entry.Address.String()),
		Address:      entry.Address.String(),
		LastActed:    entry.LastActed,
		VotedCurrent: entry.VotedCurrent,
	}
}

func (s *Server) handleAuthorities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	entries, err := s.service.Authorities(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	views := make([]authorityView, 0, len(entries))
	for _, entry := range entries {
		views = append(views, authorityViewFrom(entry))
	}
	writeJSON(w, http.StatusOK, struct {
		Authorities []authorityView `json:"authorities"`
	}{Authorities: views})
}

func (s *Server) handleAuthority(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	account, err := accountFromPath(r.URL.Path, "/v1/", authorityNamePattern)
	if err != nil {
		writeError(w, r, err)
		return
	}
	entry, err := s.service.Authority(r.Context(), account)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, authorityViewFrom(entry))
}

type balanceView struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Balance uint64 `json:"balance"`
}

func (s *Server) handleAccountBalance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	account, err := accountFromPath(r.URL.Path, "/v1/ledger/", accountNamePattern)
	if err != nil {
		writeError(w, r, err)
		return
	}
	balance, err := s.service.Balance(r.Context(), account)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceView{
		Name:    resourcename.Sprint(accountNamePattern, account.String()),
		Address: account.String(),
		Balance: balance,
	})
}

func (s *Server) handleTotalSupply(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	supply, err := s.service.TotalSupply(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		TotalSupply uint64 `json:"total_supply"`
	}{TotalSupply: supply})
}

type eventsResponse struct {
	Events       []notify.Event `json:"events"`
	NextAfterSeq uint64         `json:"next_after_seq"`
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	afterSeq, err := queryUint(r, "after_seq")
	if err != nil {
		writeError(w, r, err)
		return
	}
	pageSize, err := queryUint(r, "page_size")
	if err != nil {
		writeError(w, r, err)
		return
	}

	records, err := s.service.Records(r.Context(), afterSeq, int(pageSize))
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := eventsResponse{Events: make([]notify.Event, 0, len(records)), NextAfterSeq: afterSeq}
	for _, record := range records {
		resp.Events = append(resp.Events, notify.EventFromRecord(record))
		resp.NextAfterSeq = record.Seq
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	if _, err := s.service.TotalSupply(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
	}{Status: "ok"})
}

// accountFromPath parses an address out of a resource-name route such as
// /v1/authorities/0xabc... or /v1/ledger/accounts/0xabc...
func accountFromPath(path, prefix, pattern string) (domain.Address, error) {
	name := strings.TrimPrefix(path, prefix)
	var raw string
	if err := resourcename.Sscan(name, pattern, &raw); err != nil {
		return "", apperrors.WithMetadata(apperrors.CodeInvalidArgument, "resource name is malformed", map[string]string{
			"name": name,
		})
	}
	return domain.ParseAddress(raw)
}

func queryUint(r *http.Request, key string) (uint64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, apperrors.WithMetadata(apperrors.CodeInvalidArgument, "query parameter must be a non-negative integer", map[string]string{
			"parameter": key,
		})
	}
	return value, nil
}
