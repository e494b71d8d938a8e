package domain

import (
	"context"
	"sync"
	"time"
)

// Store is the domain persistence boundary for governance state. Decisions
// commit atomically: session, registry, scalars, ledger movements, and
// journal records land in one transaction or not at all.
type Store interface {
	LoadState(ctx context.Context) (State, error)
	CommitDecision(ctx context.Context, decision Decision) error
	Balance(ctx context.Context, account Address) (uint64, error)
	TotalSupply(ctx context.Context) (uint64, error)
	ListRecords(ctx context.Context, afterSeq uint64, limit int) ([]Record, error)
}

// Describer renders a session as display text. It has no effect on state
// transitions.
type Describer interface {
	Describe(session Session) string
}

// plainDescriber is the fallback used when no renderer is wired.
type plainDescriber struct{}

func (plainDescriber) Describe(s Session) string {
	return s.Topic.String()
}

// Service executes governance operations serially against the latest
// committed state. Guards are evaluated at operation entry; a failed guard
// rejects the whole operation with no state change.
type Service struct {
	store    Store
	describe Describer
	clock    func() time.Time

	mu sync.Mutex
}

// NewService constructs the governance engine.
func NewService(store Store, describe Describer, clock func() time.Time) *Service {
	if describe == nil {
		describe = plainDescriber{}
	}
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		store:    store,
		describe: describe,
		clock:    clock,
	}
}

// newSession allocates the next session id and inherits the current quorum.
func newSession(state State) Session {
	var lastID uint64
	if state.Session != nil {
		lastID = state.Session.ID
	}
	return Session{
		ID:            lastID + 1,
		CreatedAt:     state.Height,
		RequireAccept: state.RequireAccept,
	}
}

// propose runs the shared creation pipeline: authority and free-slot guards,
// topic validation, construction, and a single-transaction commit.
func (s *Service) propose(ctx context.Context, caller Address, validate func(State) error, build func(*Session)) (Session, error) {
	if s == nil || s.store == nil {
		return Session{}, ErrStoreNotConfigured
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.store.LoadState(ctx)
	if err != nil {
		return Session{}, err
	}
	if !state.Registry.Contains(caller) {
		return Session{}, ErrNotAuthorized
	}
	if state.SessionPending() {
		return Session{}, ErrSessionBusy
	}
	if err := validate(state); err != nil {
		return Session{}, err
	}

	next := newSession(state)
	build(&next)

	decision := Decision{
		Session:         next,
		Registry:        state.Registry,
		RequireAccept:   state.RequireAccept,
		MintingFinished: state.MintingFinished,
		Records: []Record{{
			Height:     state.Height,
			RecordedAt: s.clock().UTC(),
			Kind:       RecordSessionCreated,
			SessionID:  next.ID,
			Topic:      next.Topic,
			Actor:      caller,
			Account:    next.ReferAccount,
			Amount:     next.ReferNumber,
		}},
	}
	if err := s.store.CommitDecision(ctx, decision); err != nil {
		return Session{}, err
	}
	return next, nil
}

// ProposeMint opens a session to mint amount new tokens to beneficiary.
func (s *Service) ProposeMint(ctx context.Context, caller Address, beneficiary Address, amount uint64) (Session, error) {
	return s.propose(ctx, caller,
		func(state State) error {
			if state.MintingFinished {
				return ErrMintingFinished
			}
			if amount == 0 {
				return ErrAmountRequired
			}
			if beneficiary.IsZero() {
				return ErrBeneficiaryRequired
			}
			return nil
		},
		func(next *Session) {
			next.Topic = TopicMint
			next.ReferNumber = amount
			next.ReferAccount = beneficiary
		})
}

// ProposeMintFinished opens a session to close the token supply for good.
func (s *Service) ProposeMintFinished(ctx context.Context, caller Address) (Session, error) {
	return s.propose(ctx, caller,
		func(state State) error {
			if state.MintingFinished {
				return ErrMintingFinished
			}
			return nil
		},
		func(next *Session) {
			next.Topic = TopicMintFinished
		})
}

// ProposeBurn opens a session to burn amount tokens held by target, which
// must be a current authority.
func (s *Service) ProposeBurn(ctx context.Context, caller Address, target Address, amount uint64) (Session, error) {
	return s.propose(ctx, caller,
		func(state State) error {
			if amount == 0 {
				return ErrAmountRequired
			}
			if !state.Registry.Contains(target) {
				return ErrTargetNotAuthority
			}
			return nil
		},
		func(next *Session) {
			next.Topic = TopicBurn
			next.ReferNumber = amount
			next.ReferAccount = target
		})
}

// ProposeAddAuthority opens a session to admit target as a new authority.
func (s *Service) ProposeAddAuthority(ctx context.Context, caller Address, target Address) (Session, error) {
	return s.propose(ctx, caller,
		func(state State) error {
			if target.IsZero() {
				return ErrTargetRequired
			}
			if state.Registry.Contains(target) {
				return ErrTargetAlreadyAuthority
			}
			return nil
		},
		func(next *Session) {
			next.Topic = TopicAddAuthority
			next.ReferAccount = target
		})
}

// ProposeRemoveAuthority opens a session to remove target from the registry.
func (s *Service) ProposeRemoveAuthority(ctx context.Context, caller Address, target Address) (Session, error) {
	return s.propose(ctx, caller,
		func(state State) error {
			if !state.Registry.Contains(target) {
				return ErrTargetNotAuthority
			}
			if state.Registry.Size() <= 1 {
				return ErrLastAuthority
			}
			return nil
		},
		func(next *Session) {
			next.Topic = TopicRemoveAuthority
			next.ReferAccount = target
		})
}

// ProposeChangeRequiredApproval opens a session to move the quorum to
// quorum. The value must be at least 1, differ from the current quorum, and
// not exceed the registry size.
func (s *Service) ProposeChangeRequiredApproval(ctx context.Context, caller Address, quorum uint64) (Session, error) {
	return s.propose(ctx, caller,
		func(state State) error {
			if quorum == 0 || quorum > state.Registry.Size() {
				return ErrQuorumOutOfRange
			}
			if quorum == state.RequireAccept {
				return ErrQuorumUnchanged
			}
			return nil
		},
		func(next *Session) {
			next.Topic = TopicChangeRequiredApproval
			next.ReferNumber = quorum
		})
}

// VoteResult reports the session after a committed vote and whether this
// vote tipped the threshold and dispatched the proposal effect.
type VoteResult struct {
	Session          Session
	Outcome          Outcome
	EffectDispatched bool
}

// VoteAccept casts an accept vote for the caller on the pending session.
func (s *Service) VoteAccept(ctx context.Context, caller Address) (VoteResult, error) {
	return s.vote(ctx, caller, ChoiceAccept)
}

// VoteReject casts a reject vote for the caller on the pending session.
func (s *Service) VoteReject(ctx context.Context, caller Address) (VoteResult, error) {
	return s.vote(ctx, caller, ChoiceReject)
}

func (s *Service) vote(ctx context.Context, caller Address, choice VoteChoice) (VoteResult, error) {
	if s == nil || s.store == nil {
		return VoteResult{}, ErrStoreNotConfigured
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.store.LoadState(ctx)
	if err != nil {
		return VoteResult{}, err
	}
	if !state.Registry.Contains(caller) {
		return VoteResult{}, ErrNotAuthorized
	}
	if !state.SessionPending() {
		return VoteResult{}, ErrNoSessionPending
	}
	session := *state.Session
	lastActed, err := state.Registry.Get(caller)
	if err != nil {
		return VoteResult{}, err
	}
	if lastActed == session.ID {
		return VoteResult{}, ErrAlreadyVoted
	}

	registry := state.Registry.Clone()
	registry.Insert(caller, session.ID)
	if choice == ChoiceAccept {
		session.CountAccept++
	} else {
		session.CountReject++
	}

	now := s.clock().UTC()
	decision := Decision{
		Session:         session,
		Registry:        registry,
		RequireAccept:   state.RequireAccept,
		MintingFinished: state.MintingFinished,
		Records: []Record{{
			Height:     state.Height,
			RecordedAt: now,
			Kind:       RecordVoteCast,
			SessionID:  session.ID,
			Actor:      caller,
			Choice:     choice,
		}},
	}

	result := VoteResult{}
	if choice == ChoiceAccept && decision.Session.Accepted() {
		if err := dispatchEffect(state, &decision, now); err != nil {
			return VoteResult{}, err
		}
		result.EffectDispatched = true
	}

	if err := s.store.CommitDecision(ctx, decision); err != nil {
		return VoteResult{}, err
	}
	result.Session = decision.Session
	result.Outcome = decision.Session.Resolve(state.Height, decision.Registry.Size())
	return result, nil
}
