// Package api exposes the governance engine over JSON HTTP. Mutating
// routes require an operator grant; read routes are open. Error bodies
// carry the governance error code and map to HTTP status through it.
package api

import (
	"net/http"
	"time"

	"github.com/signoria/signoria/internal/services/governance/domain"
	"github.com/signoria/signoria/internal/services/governance/metrics"
)

// defaultStreamInterval is how often the websocket feed polls the journal.
const defaultStreamInterval = time.Second

// Config carries the server dependencies.
type Config struct {
	Service *domain.Service
	// Grants verifies operator grants on mutating routes. Without it every
	// mutating route reports the server as misconfigured.
	Grants *GrantVerifier
	// Metrics is optional; a nil value records nothing.
	Metrics *metrics.Metrics
	// StreamInterval overrides the websocket poll cadence.
	StreamInterval time.Duration
}

// Server routes governance HTTP traffic to the engine.
type Server struct {
	service        *domain.Service
	grants         *GrantVerifier
	metrics        *metrics.Metrics
	streamInterval time.Duration
	mux            *http.ServeMux
}

// NewServer builds the route table.
func NewServer(cfg Config) *Server {
	s := &Server{
		service:        cfg.Service,
		grants:         cfg.Grants,
		metrics:        cfg.Metrics,
		streamInterval: cfg.StreamInterval,
	}
	if s.streamInterval <= 0 {
		s.streamInterval = defaultStreamInterval
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.Handle("/metrics", cfg.Metrics.Handler())

	mux.HandleFunc("/v1/sessions/mint", s.requireGrant(s.handleProposeMint))
	mux.HandleFunc("/v1/sessions/mint-finished", s.requireGrant(s.handleProposeMintFinished))
	mux.HandleFunc("/v1/sessions/burn", s.requireGrant(s.handleProposeBurn))
	mux.HandleFunc("/v1/sessions/add-authority", s.requireGrant(s.handleProposeAddAuthority))
	mux.HandleFunc("/v1/sessions/remove-authority", s.requireGrant(s.handleProposeRemoveAuthority))
	mux.HandleFunc("/v1/sessions/change-required-approval", s.requireGrant(s.handleProposeChangeRequiredApproval))
	mux.HandleFunc("/v1/sessions/current/accept", s.requireGrant(s.handleVoteAccept))
	mux.HandleFunc("/v1/sessions/current/reject", s.requireGrant(s.handleVoteReject))
	mux.HandleFunc("/v1/sessions/current", s.handleCurrentSession)

	mux.HandleFunc("/v1/governance", s.handleGovernance)
	mux.HandleFunc("/v1/authorities", s.handleAuthorities)
	mux.HandleFunc("/v1/authorities/", s.handleAuthority)
	mux.HandleFunc("/v1/ledger/accounts/", s.handleAccountBalance)
	mux.HandleFunc("/v1/ledger/supply", s.handleTotalSupply)
	mux.HandleFunc("/v1/events/stream", s.handleEventsStream)
	mux.HandleFunc("/v1/events", s.handleEvents)

	s.mux = mux
	return s
}

// ServeHTTP implements http.Handler. Each request runs inside one span so
// engine operations show up in exported traces.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, span := startRequestSpan(r.Context(), r.Method+" "+r.URL.Path)
	defer span.End()
	s.mux.ServeHTTP(w, r.WithContext(ctx))
}
