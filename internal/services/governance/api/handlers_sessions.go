package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/signoria/signoria/internal/services/governance/domain"
	"github.com/signoria/signoria/internal/services/governance/render"
)

// sessionView is the wire form of one session.
type sessionView struct {
	SessionID     uint64 `json:"session_id"`
	Topic         string `json:"topic"`
	CreatedAt     uint64 `json:"created_at"`
	ReferNumber   uint64 `json:"refer_number,omitempty"`
	ReferAccount  string `json:"refer_account,omitempty"`
	CountAccept   uint64 `json:"count_accept"`
	CountReject   uint64 `json:"count_reject"`
	RequireAccept uint64 `json:"require_accept"`
	ExpiresAt     uint64 `json:"expires_at"`
}

func sessionViewFrom(session domain.Session) sessionView {
	view := sessionView{
		SessionID:     session.ID,
		Topic:         session.Topic.String(),
		CreatedAt:     session.CreatedAt,
		ReferNumber:   session.ReferNumber,
		CountAccept:   session.CountAccept,
		CountReject:   session.CountReject,
		RequireAccept: session.RequireAccept,
		ExpiresAt:     session.ExpiresAt(),
	}
	if !session.ReferAccount.IsZero() {
		view.ReferAccount = session.ReferAccount.String()
	}
	return view
}

type proposeResponse struct {
	Session sessionView `json:"session"`
}

type voteResponse struct {
	Session          sessionView `json:"session"`
	Outcome          string      `json:"outcome"`
	EffectDispatched bool        `json:"effect_dispatched"`
}

// parseAccount maps an empty wire value to the null account so topic
// validation reports the missing party instead of a format error.
func parseAccount(raw string) (domain.Address, error) {
	if strings.TrimSpace(raw) == "" {
		return domain.ZeroAddress, nil
	}
	return domain.ParseAddress(raw)
}

func (s *Server) writeProposed(w http.ResponseWriter, session domain.Session) {
	s.metrics.SessionCreated(session.Topic.String())
	writeJSON(w, http.StatusCreated, proposeResponse{Session: sessionViewFrom(session)})
}

func (s *Server) handleProposeMint(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	var req struct {
		Amount      uint64 `json:"amount"`
		Beneficiary string `json:"beneficiary"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	beneficiary, err := parseAccount(req.Beneficiary)
	if err != nil {
		writeError(w, r, err)
		return
	}
	session, err := s.service.ProposeMint(r.Context(), callerFromRequest(r), beneficiary, req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.writeProposed(w, session)
}

func (s *Server) handleProposeMintFinished(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	session, err := s.service.ProposeMintFinished(r.Context(), callerFromRequest(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.writeProposed(w, session)
}

func (s *Server) handleProposeBurn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	var req struct {
		Amount uint64 `json:"amount"`
		Target string `json:"target"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	target, err := parseAccount(req.Target)
	if err != nil {
		writeError(w, r, err)
		return
	}
	session, err := s.service.ProposeBurn(r.Context(), callerFromRequest(r), target, req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.writeProposed(w, session)
}

func (s *Server) handleProposeAddAuthority(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	var req struct {
		Target string `json:"target"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	target, err := parseAccount(req.Target)
	if err != nil {
		writeError(w, r, err)
		return
	}
	session, err := s.service.ProposeAddAuthority(r.Context(), callerFromRequest(r), target)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.writeProposed(w, session)
}

func (s *Server) handleProposeRemoveAuthority(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	var req struct {
		Target string `json:"target"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	target, err := parseAccount(req.Target)
	if err != nil {
		writeError(w, r, err)
		return
	}
	session, err := s.service.ProposeRemoveAuthority(r.Context(), callerFromRequest(r), target)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.writeProposed(w, session)
}

func (s *Server) handleProposeChangeRequiredApproval(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	var req struct {
		Quorum uint64 `json:"quorum"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	session, err := s.service.ProposeChangeRequiredApproval(r.Context(), callerFromRequest(r), req.Quorum)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.writeProposed(w, session)
}

func (s *Server) handleVoteAccept(w http.ResponseWriter, r *http.Request) {
	s.handleVote(w, r, s.service.VoteAccept, domain.ChoiceAccept)
}

func (s *Server) handleVoteReject(w http.ResponseWriter, r *http.Request) {
	s.handleVote(w, r, s.service.VoteReject, domain.ChoiceReject)
}

func (s *Server) handleVote(w http.ResponseWriter, r *http.Request, vote func(ctx context.Context, caller domain.Address) (domain.VoteResult, error), choice domain.VoteChoice) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	result, err := vote(r.Context(), callerFromRequest(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.metrics.VoteCast(string(choice))
	if result.Outcome != domain.OutcomePending {
		s.metrics.SessionResolved(result.Outcome.String())
	}
	writeJSON(w, http.StatusOK, voteResponse{
		Session:          sessionViewFrom(result.Session),
		Outcome:          result.Outcome.String(),
		EffectDispatched: result.EffectDispatched,
	})
}

// currentSessionView reports the pending session, or "None" with zeroed
// fields when the slot is free.
type currentSessionView struct {
	SessionName  string `json:"session_name"`
	Pending      bool   `json:"pending"`
	Outcome      string `json:"outcome"`
	SessionID    uint64 `json:"session_id,omitempty"`
	Topic        string `json:"topic,omitempty"`
	ReferAccount string `json:"refer_account,omitempty"`
	ReferNumber  uint64 `json:"refer_number,omitempty"`
	CountAccept  uint64 `json:"count_accept"`
	CountReject  uint64 `json:"count_reject"`
	ExpiresAt    uint64 `json:"expires_at,omitempty"`
}

func (s *Server) handleCurrentSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	status, err := s.service.Status(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	view := currentSessionView{
		SessionName: status.SessionName,
		Pending:     status.Pending,
		Outcome:     status.Outcome.String(),
	}
	if status.Pending {
		tag := render.Match(r.Header.Get("Accept-Language"))
		view.SessionName = render.Describe(render.Printer(tag), domain.Session{
			Topic:        status.Topic,
			ReferNumber:  status.ReferNumber,
			ReferAccount: status.ReferAccount,
		})
		view.SessionID = status.SessionID
		view.Topic = status.Topic.String()
		view.ReferNumber = status.ReferNumber
		view.CountAccept = status.CountAccept
		view.CountReject = status.CountReject
		view.ExpiresAt = status.ExpiresAt
		if !status.ReferAccount.IsZero() {
			view.ReferAccount = status.ReferAccount.String()
		}
	}
	writeJSON(w, http.StatusOK, view)
}
