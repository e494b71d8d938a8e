package domain

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/signoria/signoria/internal/platform/errors"
)

var (
	addrX = Address("0x00000000000000000000000000000000000000aa")
	addrY = Address("0x00000000000000000000000000000000000000ab")
	addrZ = Address("0x00000000000000000000000000000000000000ac")
	addrW = Address("0x00000000000000000000000000000000000000ad")
)

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

var testClock = fixedClock(time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC))

// staticDescriber returns a canned display name.
type staticDescriber struct{ name string }

func (d staticDescriber) Describe(Session) string { return d.name }

// fakeStore applies decisions to in-memory state the way the SQLite store
// does: all-or-nothing, ledger ops checked, journal seq assigned on append.
type fakeStore struct {
	t *testing.T

	state    State
	balances map[Address]uint64
	supply   uint64
	records  []Record
	nextSeq  uint64

	commits  int
	failWith error
}

func newFakeStore(t *testing.T, quorum uint64, height uint64, authorities ...Address) *fakeStore {
	t.Helper()
	entries := make([]AuthorityEntry, 0, len(authorities))
	for _, addr := range authorities {
		entries = append(entries, AuthorityEntry{Address: addr})
	}
	return &fakeStore{
		t: t,
		state: State{
			Registry:      NewRegistry(entries...),
			RequireAccept: quorum,
			Height:        height,
		},
		balances: map[Address]uint64{},
		nextSeq:  1,
	}
}

func (f *fakeStore) LoadState(context.Context) (State, error) {
	state := f.state
	state.Registry = f.state.Registry.Clone()
	if f.state.Session != nil {
		session := *f.state.Session
		state.Session = &session
	}
	return state, nil
}

func (f *fakeStore) CommitDecision(_ context.Context, decision Decision) error {
	if f.failWith != nil {
		return f.failWith
	}

	balances := make(map[Address]uint64, len(f.balances))
	for account, balance := range f.balances {
		balances[account] = balance
	}
	supply := f.supply
	for _, op := range decision.Ledger {
		switch op.Kind {
		case LedgerMint:
			if balances[op.Account]+op.Amount < balances[op.Account] || supply+op.Amount < supply {
				return apperrors.New(apperrors.CodeInvariantViolation, "mint overflows")
			}
			balances[op.Account] += op.Amount
			supply += op.Amount
		case LedgerBurn:
			if balances[op.Account] < op.Amount {
				return apperrors.New(apperrors.CodeInvariantViolation, "burn exceeds balance")
			}
			balances[op.Account] -= op.Amount
			supply -= op.Amount
		}
	}

	f.balances = balances
	f.supply = supply
	session := decision.Session
	f.state.Session = &session
	f.state.Registry = decision.Registry.Clone()
	f.state.RequireAccept = decision.RequireAccept
	f.state.MintingFinished = decision.MintingFinished
	for _, record := range decision.Records {
		record.Seq = f.nextSeq
		f.nextSeq++
		f.records = append(f.records, record)
	}
	f.commits++

	// Committed state must always honor the quorum invariant.
	if f.state.RequireAccept > f.state.Registry.Size() {
		f.t.Errorf("committed quorum %d exceeds registry size %d", f.state.RequireAccept, f.state.Registry.Size())
	}
	return nil
}

func (f *fakeStore) Balance(_ context.Context, account Address) (uint64, error) {
	return f.balances[account], nil
}

func (f *fakeStore) TotalSupply(context.Context) (uint64, error) {
	return f.supply, nil
}

func (f *fakeStore) ListRecords(_ context.Context, afterSeq uint64, limit int) ([]Record, error) {
	var out []Record
	for _, record := range f.records {
		if record.Seq > afterSeq {
			out = append(out, record)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeStore) advance(blocks uint64) {
	f.state.Height += blocks
}

func recordKinds(records []Record) []RecordKind {
	kinds := make([]RecordKind, 0, len(records))
	for _, record := range records {
		kinds = append(kinds, record.Kind)
	}
	return kinds
}

func wantKinds(t *testing.T, got []Record, want ...RecordKind) {
	t.Helper()
	kinds := recordKinds(got)
	if len(kinds) != len(want) {
		t.Fatalf("journal kinds = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("journal kinds = %v, want %v", kinds, want)
		}
	}
}

func TestProposeRequiresAuthority(t *testing.T) {
	t.Parallel()

	store := newFakeStore(t, 1, 10, addrX)
	svc := NewService(store, nil, testClock)

	_, err := svc.ProposeMint(context.Background(), addrW, addrY, 100)
	if !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("propose by outsider = %v, want %v", err, ErrNotAuthorized)
	}
	if store.commits != 0 {
		t.Fatal("rejected proposal must not commit")
	}
}

func TestProposeWhilePendingIsBusy(t *testing.T) {
	t.Parallel()

	store := newFakeStore(t, 2, 10, addrX, addrY)
	svc := NewService(store, nil, testClock)
	ctx := context.Background()

	if _, err := svc.ProposeMint(ctx, addrX, addrZ, 100); err != nil {
		t.Fatalf("first proposal: %v", err)
	}
	_, err := svc.ProposeMintFinished(ctx, addrY)
	if !errors.Is(err, ErrSessionBusy) {
		t.Fatalf("second proposal = %v, want %v", err, ErrSessionBusy)
	}
}

func TestProposeMintValidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("zero amount", func(t *testing.T) {
		t.Parallel()
		svc := NewService(newFakeStore(t, 1, 10, addrX), nil, testClock)
		if _, err := svc.ProposeMint(ctx, addrX, addrY, 0); !errors.Is(err, ErrAmountRequired) {
			t.Fatalf("err = %v, want %v", err, ErrAmountRequired)
		}
	})

	t.Run("null beneficiary", func(t *testing.T) {
		t.Parallel()
		svc := NewService(newFakeStore(t, 1, 10, addrX), nil, testClock)
		if _, err := svc.ProposeMint(ctx, addrX, ZeroAddress, 10); !errors.Is(err, ErrBeneficiaryRequired) {
			t.Fatalf("err = %v, want %v", err, ErrBeneficiaryRequired)
		}
	})

	t.Run("after minting finished", func(t *testing.T) {
		t.Parallel()
		store := newFakeStore(t, 1, 10, addrX)
		store.state.MintingFinished = true
		svc := NewService(store, nil, testClock)
		if _, err := svc.ProposeMint(ctx, addrX, addrY, 10); !errors.Is(err, ErrMintingFinished) {
			t.Fatalf("err = %v, want %v", err, ErrMintingFinished)
		}
	})
}

func TestProposeBurnValidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("zero amount", func(t *testing.T) {
		t.Parallel()
		svc := NewService(newFakeStore(t, 1, 10, addrX, addrY), nil, testClock)
		if _, err := svc.ProposeBurn(ctx, addrX, addrY, 0); !errors.Is(err, ErrAmountRequired) {
			t.Fatalf("err = %v, want %v", err, ErrAmountRequired)
		}
	})

	t.Run("target not an authority", func(t *testing.T) {
		t.Parallel()
		svc := NewService(newFakeStore(t, 1, 10, addrX), nil, testClock)
		if _, err := svc.ProposeBurn(ctx, addrX, addrW, 10); !errors.Is(err, ErrTargetNotAuthority) {
			t.Fatalf("err = %v, want %v", err, ErrTargetNotAuthority)
		}
	})
}

func TestProposeAddAuthorityValidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("null target", func(t *testing.T) {
		t.Parallel()
		svc := NewService(newFakeStore(t, 1, 10, addrX), nil, testClock)
		if _, err := svc.ProposeAddAuthority(ctx, addrX, ZeroAddress); !errors.Is(err, ErrTargetRequired) {
			t.Fatalf("err = %v, want %v", err, ErrTargetRequired)
		}
	})

	t.Run("duplicate target", func(t *testing.T) {
		t.Parallel()
		svc := NewService(newFakeStore(t, 1, 10, addrX, addrY), nil, testClock)
		if _, err := svc.ProposeAddAuthority(ctx, addrX, addrY); !errors.Is(err, ErrTargetAlreadyAuthority) {
			t.Fatalf("err = %v, want %v", err, ErrTargetAlreadyAuthority)
		}
	})
}

func TestProposeRemoveAuthorityValidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("unknown target", func(t *testing.T) {
		t.Parallel()
		svc := NewService(newFakeStore(t, 1, 10, addrX, addrY), nil, testClock)
		if _, err := svc.ProposeRemoveAuthority(ctx, addrX, addrW); !errors.Is(err, ErrTargetNotAuthority) {
			t.Fatalf("err = %v, want %v", err, ErrTargetNotAuthority)
		}
	})

	t.Run("last authority", func(t *testing.T) {
		t.Parallel()
		svc := NewService(newFakeStore(t, 1, 10, addrX), nil, testClock)
		if _, err := svc.ProposeRemoveAuthority(ctx, addrX, addrX); !errors.Is(err, ErrLastAuthority) {
			t.Fatalf("err = %v, want %v", err, ErrLastAuthority)
		}
	})
}

func TestProposeChangeRequiredApprovalValidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("zero quorum", func(t *testing.T) {
		t.Parallel()
		svc := NewService(newFakeStore(t, 1, 10, addrX, addrY), nil, testClock)
		if _, err := svc.ProposeChangeRequiredApproval(ctx, addrX, 0); !errors.Is(err, ErrQuorumOutOfRange) {
			t.Fatalf("err = %v, want %v", err, ErrQuorumOutOfRange)
		}
	})

	t.Run("above registry size", func(t *testing.T) {
		t.Parallel()
		svc := NewService(newFakeStore(t, 1, 10, addrX, addrY), nil, testClock)
		if _, err := svc.ProposeChangeRequiredApproval(ctx, addrX, 3); !errors.Is(err, ErrQuorumOutOfRange) {
			t.Fatalf("err = %v, want %v", err, ErrQuorumOutOfRange)
		}
	})

	t.Run("unchanged", func(t *testing.T) {
		t.Parallel()
		svc := NewService(newFakeStore(t, 2, 10, addrX, addrY), nil, testClock)
		if _, err := svc.ProposeChangeRequiredApproval(ctx, addrX, 2); !errors.Is(err, ErrQuorumUnchanged) {
			t.Fatalf("err = %v, want %v", err, ErrQuorumUnchanged)
		}
	})
}

func TestSessionIDsStrictlyIncrease(t *testing.T) {
	t.Parallel()

	store := newFakeStore(t, 1, 10, addrX)
	svc := NewService(store, nil, testClock)
	ctx := context.Background()

	first, err := svc.ProposeMintFinished(ctx, addrX)
	if err != nil {
		t.Fatalf("first proposal: %v", err)
	}
	if first.ID != 1 {
		t.Fatalf("first session id = %d, want 1", first.ID)
	}
	if _, err := svc.VoteReject(ctx, addrX); err != nil {
		t.Fatalf("resolve first session: %v", err)
	}

	second, err := svc.ProposeAddAuthority(ctx, addrX, addrY)
	if err != nil {
		t.Fatalf("second proposal: %v", err)
	}
	if second.ID != 2 {
		t.Fatalf("second session id = %d, want 2", second.ID)
	}
}

func TestVoteRequiresAuthority(t *testing.T) {
	t.Parallel()

	store := newFakeStore(t, 2, 10, addrX, addrY)
	svc := NewService(store, nil, testClock)
	ctx := context.Background()

	if _, err := svc.ProposeMintFinished(ctx, addrX); err != nil {
		t.Fatalf("propose: %v", err)
	}
	if _, err := svc.VoteAccept(ctx, addrW); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("outsider vote = %v, want %v", err, ErrNotAuthorized)
	}
}

func TestVoteWithoutPendingSession(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeStore(t, 1, 10, addrX), nil, testClock)
	if _, err := svc.VoteAccept(context.Background(), addrX); !errors.Is(err, ErrNoSessionPending) {
		t.Fatalf("vote with no session = %v, want %v", err, ErrNoSessionPending)
	}
}

func TestVoteTwiceFails(t *testing.T) {
	t.Parallel()

	store := newFakeStore(t, 3, 10, addrX, addrY, addrZ)
	svc := NewService(store, nil, testClock)
	ctx := context.Background()

	if _, err := svc.ProposeMintFinished(ctx, addrX); err != nil {
		t.Fatalf("propose: %v", err)
	}
	if _, err := svc.VoteAccept(ctx, addrX); err != nil {
		t.Fatalf("first vote: %v", err)
	}
	if _, err := svc.VoteAccept(ctx, addrX); !errors.Is(err, ErrAlreadyVoted) {
		t.Fatalf("second accept = %v, want %v", err, ErrAlreadyVoted)
	}
	// Switching direction does not grant a second vote either.
	if _, err := svc.VoteReject(ctx, addrX); !errors.Is(err, ErrAlreadyVoted) {
		t.Fatalf("reject after accept = %v, want %v", err, ErrAlreadyVoted)
	}
}

func TestCreatorDoesNotImplicitlyVote(t *testing.T) {
	t.Parallel()

	store := newFakeStore(t, 1, 10, addrX)
	svc := NewService(store, nil, testClock)
	ctx := context.Background()

	if _, err := svc.ProposeMint(ctx, addrX, addrY, 100); err != nil {
		t.Fatalf("propose: %v", err)
	}
	if store.state.Session.CountAccept != 0 {
		t.Fatalf("fresh tally = %d, want 0", store.state.Session.CountAccept)
	}
	if _, err := svc.VoteAccept(ctx, addrX); err != nil {
		t.Fatalf("creator voting on own proposal: %v", err)
	}
}

func TestScenarioSingleAuthorityMint(t *testing.T) {
	t.Parallel()

	store := newFakeStore(t, 1, 100, addrX)
	svc := NewService(store, nil, testClock)
	ctx := context.Background()

	if _, err := svc.ProposeMint(ctx, addrX, addrY, 100); err != nil {
		t.Fatalf("propose: %v", err)
	}
	result, err := svc.VoteAccept(ctx, addrX)
	if err != nil {
		t.Fatalf("vote: %v", err)
	}
	if !result.EffectDispatched {
		t.Fatal("tipping vote must dispatch the mint")
	}
	if result.Outcome != OutcomeAccepted {
		t.Fatalf("outcome = %v, want %v", result.Outcome, OutcomeAccepted)
	}
	if balance := store.balances[addrY]; balance != 100 {
		t.Fatalf("beneficiary balance = %d, want 100", balance)
	}
	if store.supply != 100 {
		t.Fatalf("total supply = %d, want 100", store.supply)
	}
	wantKinds(t, store.records, RecordSessionCreated, RecordVoteCast, RecordMintToken)

	// The resolved slot blocks any further vote by anyone.
	if _, err := svc.VoteAccept(ctx, addrX); !errors.Is(err, ErrNoSessionPending) {
		t.Fatalf("post-resolution vote = %v, want %v", err, ErrNoSessionPending)
	}
}

func TestScenarioRemoveAuthorityKeepsQuorum(t *testing.T) {
	t.Parallel()

	store := newFakeStore(t, 2, 100, addrX, addrY, addrZ)
	svc := NewService(store, nil, testClock)
	ctx := context.Background()

	if _, err := svc.ProposeRemoveAuthority(ctx, addrX, addrY); err != nil {
		t.Fatalf("propose: %v", err)
	}
	first, err := svc.VoteAccept(ctx, addrX)
	if err != nil {
		t.Fatalf("first vote: %v", err)
	}
	if first.EffectDispatched {
		t.Fatal("first vote must not dispatch below quorum")
	}
	second, err := svc.VoteAccept(ctx, addrZ)
	if err != nil {
		t.Fatalf("second vote: %v", err)
	}
	if !second.EffectDispatched {
		t.Fatal("second vote must dispatch the removal")
	}
	if store.state.Registry.Contains(addrY) {
		t.Fatal("target should be removed")
	}
	if got := store.state.Registry.Size(); got != 2 {
		t.Fatalf("registry size = %d, want 2", got)
	}
	if got := store.state.RequireAccept; got != 2 {
		t.Fatalf("quorum = %d, want unchanged 2", got)
	}
	wantKinds(t, store.records,
		RecordSessionCreated,
		RecordVoteCast,
		RecordVoteCast,
		RecordAuthorityRemoved,
	)
}

func TestScenarioRejectionFreesSlot(t *testing.T) {
	t.Parallel()

	store := newFakeStore(t, 3, 100, addrX, addrY, addrZ)
	svc := NewService(store, nil, testClock)
	ctx := context.Background()

	if _, err := svc.ProposeChangeRequiredApproval(ctx, addrX, 2); err != nil {
		t.Fatalf("propose: %v", err)
	}

	// With a full quorum of 3 a single rejection already makes acceptance
	// unreachable (margin 3-3=0), so the session resolves on the spot.
	result, err := svc.VoteReject(ctx, addrX)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if result.Outcome != OutcomeRejected {
		t.Fatalf("outcome = %v, want %v", result.Outcome, OutcomeRejected)
	}
	if result.EffectDispatched {
		t.Fatal("rejection must not dispatch an effect")
	}
	if _, err := svc.VoteReject(ctx, addrY); !errors.Is(err, ErrNoSessionPending) {
		t.Fatalf("vote on rejected session = %v, want %v", err, ErrNoSessionPending)
	}
	if got := store.state.RequireAccept; got != 3 {
		t.Fatalf("quorum = %d, want unchanged 3", got)
	}

	// The slot is free again.
	if _, err := svc.ProposeMintFinished(ctx, addrZ); err != nil {
		t.Fatalf("propose after rejection: %v", err)
	}
}

func TestRejectionWaitsForUnreachableQuorum(t *testing.T) {
	t.Parallel()

	store := newFakeStore(t, 2, 100, addrX, addrY, addrZ)
	svc := NewService(store, nil, testClock)
	ctx := context.Background()

	if _, err := svc.ProposeMintFinished(ctx, addrX); err != nil {
		t.Fatalf("propose: %v", err)
	}

	// One reject out of three leaves two possible accepts, enough for
	// quorum 2, so the session stays live.
	first, err := svc.VoteReject(ctx, addrX)
	if err != nil {
		t.Fatalf("first reject: %v", err)
	}
	if first.Outcome != OutcomePending {
		t.Fatalf("outcome after one reject = %v, want %v", first.Outcome, OutcomePending)
	}
	second, err := svc.VoteReject(ctx, addrY)
	if err != nil {
		t.Fatalf("second reject: %v", err)
	}
	if second.Outcome != OutcomeRejected {
		t.Fatalf("outcome after two rejects = %v, want %v", second.Outcome, OutcomeRejected)
	}
	if store.state.MintingFinished {
		t.Fatal("rejected proposal must not fire its effect")
	}
}

func TestScenarioExpiryFreesSlot(t *testing.T) {
	t.Parallel()

	store := newFakeStore(t, 2, 100, addrX, addrY)
	svc := NewService(store, nil, testClock)
	ctx := context.Background()

	if _, err := svc.ProposeMintFinished(ctx, addrX); err != nil {
		t.Fatalf("propose: %v", err)
	}

	// At exactly the window edge the session is still live.
	store.advance(ExpiryWindow)
	if _, err := svc.VoteAccept(ctx, addrX); err != nil {
		t.Fatalf("vote at window edge: %v", err)
	}

	// One block past the window the session is expired.
	store.advance(1)
	if _, err := svc.VoteAccept(ctx, addrY); !errors.Is(err, ErrNoSessionPending) {
		t.Fatalf("vote past expiry = %v, want %v", err, ErrNoSessionPending)
	}
	if store.state.MintingFinished {
		t.Fatal("expired session must not fire its effect")
	}

	// A new proposal supersedes the lapsed one.
	session, err := svc.ProposeAddAuthority(ctx, addrY, addrZ)
	if err != nil {
		t.Fatalf("propose after expiry: %v", err)
	}
	if session.ID != 2 {
		t.Fatalf("session id = %d, want 2", session.ID)
	}
}

func TestScenarioRemovalClampsQuorum(t *testing.T) {
	t.Parallel()

	store := newFakeStore(t, 2, 100, addrX, addrY)
	svc := NewService(store, nil, testClock)
	ctx := context.Background()

	if _, err := svc.ProposeRemoveAuthority(ctx, addrX, addrY); err != nil {
		t.Fatalf("propose: %v", err)
	}
	if _, err := svc.VoteAccept(ctx, addrX); err != nil {
		t.Fatalf("first vote: %v", err)
	}
	result, err := svc.VoteAccept(ctx, addrY)
	if err != nil {
		t.Fatalf("second vote: %v", err)
	}
	if !result.EffectDispatched {
		t.Fatal("second vote must dispatch the removal")
	}
	if got := store.state.Registry.Size(); got != 1 {
		t.Fatalf("registry size = %d, want 1", got)
	}
	if got := store.state.RequireAccept; got != 1 {
		t.Fatalf("quorum = %d, want clamped 1", got)
	}

	// The clamp is announced before the removal itself.
	wantKinds(t, store.records,
		RecordSessionCreated,
		RecordVoteCast,
		RecordVoteCast,
		RecordRequiredApprovalChanged,
		RecordAuthorityRemoved,
	)
	clamp := store.records[3]
	if clamp.OldRequireAccept != 2 || clamp.NewRequireAccept != 1 {
		t.Fatalf("clamp record = (%d,%d), want (2,1)", clamp.OldRequireAccept, clamp.NewRequireAccept)
	}
}

func TestChangeRequiredApprovalAdoptsNewQuorum(t *testing.T) {
	t.Parallel()

	store := newFakeStore(t, 2, 100, addrX, addrY, addrZ)
	svc := NewService(store, nil, testClock)
	ctx := context.Background()

	if _, err := svc.ProposeChangeRequiredApproval(ctx, addrX, 3); err != nil {
		t.Fatalf("propose: %v", err)
	}
	if _, err := svc.VoteAccept(ctx, addrX); err != nil {
		t.Fatalf("first vote: %v", err)
	}
	result, err := svc.VoteAccept(ctx, addrY)
	if err != nil {
		t.Fatalf("second vote: %v", err)
	}
	if !result.EffectDispatched {
		t.Fatal("second vote must dispatch the quorum change")
	}
	if got := store.state.RequireAccept; got != 3 {
		t.Fatalf("quorum = %d, want 3", got)
	}

	// The resolved session is rewritten to the new threshold and stays
	// resolved in both directions of a quorum move.
	if got := store.state.Session.CountAccept; got != 3 {
		t.Fatalf("stored tally = %d, want 3", got)
	}
	if got := store.state.Session.RequireAccept; got != 3 {
		t.Fatalf("stored threshold = %d, want 3", got)
	}
	if _, err := svc.VoteAccept(ctx, addrZ); !errors.Is(err, ErrNoSessionPending) {
		t.Fatalf("vote after change = %v, want %v", err, ErrNoSessionPending)
	}

	change := store.records[len(store.records)-1]
	if change.Kind != RecordRequiredApprovalChanged {
		t.Fatalf("last record = %v, want %v", change.Kind, RecordRequiredApprovalChanged)
	}
	if change.OldRequireAccept != 2 || change.NewRequireAccept != 3 {
		t.Fatalf("change record = (%d,%d), want (2,3)", change.OldRequireAccept, change.NewRequireAccept)
	}

	// The next session inherits the new quorum.
	session, err := svc.ProposeMintFinished(ctx, addrX)
	if err != nil {
		t.Fatalf("propose after change: %v", err)
	}
	if session.RequireAccept != 3 {
		t.Fatalf("inherited quorum = %d, want 3", session.RequireAccept)
	}
}

func TestChangeRequiredApprovalLoweringStaysResolved(t *testing.T) {
	t.Parallel()

	store := newFakeStore(t, 3, 100, addrX, addrY, addrZ)
	svc := NewService(store, nil, testClock)
	ctx := context.Background()

	if _, err := svc.ProposeChangeRequiredApproval(ctx, addrX, 1); err != nil {
		t.Fatalf("propose: %v", err)
	}
	for _, voter := range []Address{addrX, addrY} {
		if _, err := svc.VoteAccept(ctx, voter); err != nil {
			t.Fatalf("vote by %s: %v", voter, err)
		}
	}
	result, err := svc.VoteAccept(ctx, addrZ)
	if err != nil {
		t.Fatalf("tipping vote: %v", err)
	}
	if !result.EffectDispatched {
		t.Fatal("tipping vote must dispatch")
	}
	if got := store.state.RequireAccept; got != 1 {
		t.Fatalf("quorum = %d, want 1", got)
	}
	// No vote can reopen the lowered session.
	if _, err := svc.VoteAccept(ctx, addrX); !errors.Is(err, ErrNoSessionPending) {
		t.Fatalf("vote after lowering = %v, want %v", err, ErrNoSessionPending)
	}
}

func TestMintingFinishedIsMonotonic(t *testing.T) {
	t.Parallel()

	store := newFakeStore(t, 1, 100, addrX)
	svc := NewService(store, nil, testClock)
	ctx := context.Background()

	if _, err := svc.ProposeMintFinished(ctx, addrX); err != nil {
		t.Fatalf("propose: %v", err)
	}
	result, err := svc.VoteAccept(ctx, addrX)
	if err != nil {
		t.Fatalf("vote: %v", err)
	}
	if !result.EffectDispatched || !store.state.MintingFinished {
		t.Fatal("minting should be finished")
	}

	if _, err := svc.ProposeMint(ctx, addrX, addrY, 5); !errors.Is(err, ErrMintingFinished) {
		t.Fatalf("mint after finish = %v, want %v", err, ErrMintingFinished)
	}
	if _, err := svc.ProposeMintFinished(ctx, addrX); !errors.Is(err, ErrMintingFinished) {
		t.Fatalf("finish after finish = %v, want %v", err, ErrMintingFinished)
	}
}

func TestAddedAuthorityCannotVoteOnAdmittingSession(t *testing.T) {
	t.Parallel()

	store := newFakeStore(t, 1, 100, addrX)
	svc := NewService(store, nil, testClock)
	ctx := context.Background()

	admitting, err := svc.ProposeAddAuthority(ctx, addrX, addrY)
	if err != nil {
		t.Fatalf("propose: %v", err)
	}
	if _, err := svc.VoteAccept(ctx, addrX); err != nil {
		t.Fatalf("vote: %v", err)
	}

	entries := store.state.Registry.Entries()
	if len(entries) != 2 {
		t.Fatalf("registry size = %d, want 2", len(entries))
	}
	if entries[1].Address != addrY || entries[1].LastActed != admitting.ID {
		t.Fatalf("new member entry = %+v, want marked with session %d", entries[1], admitting.ID)
	}

	// On the next session the new member votes normally.
	if _, err := svc.ProposeMintFinished(ctx, addrX); err != nil {
		t.Fatalf("next proposal: %v", err)
	}
	if _, err := svc.VoteReject(ctx, addrY); err != nil {
		t.Fatalf("new member vote: %v", err)
	}
}

func TestBurnFailureRollsBackWholeVote(t *testing.T) {
	t.Parallel()

	store := newFakeStore(t, 1, 100, addrX, addrY)
	svc := NewService(store, nil, testClock)
	ctx := context.Background()

	// Target holds nothing, so the burn cannot apply.
	if _, err := svc.ProposeBurn(ctx, addrX, addrY, 50); err != nil {
		t.Fatalf("propose: %v", err)
	}
	recordsBefore := len(store.records)

	_, err := svc.VoteAccept(ctx, addrX)
	if apperrors.CodeOf(err) != apperrors.CodeInvariantViolation {
		t.Fatalf("tipping vote = %v, want invariant violation", err)
	}

	// The whole vote rolled back: no tally, no vote marker, no records.
	if got := store.state.Session.CountAccept; got != 0 {
		t.Fatalf("tally after rollback = %d, want 0", got)
	}
	last, err2 := store.state.Registry.Get(addrX)
	if err2 != nil {
		t.Fatalf("get voter: %v", err2)
	}
	if last == store.state.Session.ID {
		t.Fatal("voter marker must roll back with the failed vote")
	}
	if len(store.records) != recordsBefore {
		t.Fatal("failed vote must not journal records")
	}
}

func TestStatusReportsPendingSession(t *testing.T) {
	t.Parallel()

	store := newFakeStore(t, 2, 100, addrX, addrY)
	svc := NewService(store, staticDescriber{name: "Mint 100 to 0x00..0ab"}, testClock)
	ctx := context.Background()

	status, err := svc.Status(ctx)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.SessionName != NoSessionName || status.Pending {
		t.Fatalf("empty status = %+v, want none pending", status)
	}
	if status.ExpiresAt != 0 || status.CountAccept != 0 || status.CountReject != 0 {
		t.Fatalf("empty status carries session numbers: %+v", status)
	}
	if status.RequireAccept != 2 || status.AuthorityCount != 2 {
		t.Fatalf("quorum/size = %d/%d, want 2/2", status.RequireAccept, status.AuthorityCount)
	}

	if _, err := svc.ProposeMint(ctx, addrX, addrY, 100); err != nil {
		t.Fatalf("propose: %v", err)
	}
	if _, err := svc.VoteAccept(ctx, addrX); err != nil {
		t.Fatalf("vote: %v", err)
	}

	status, err = svc.Status(ctx)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !status.Pending {
		t.Fatal("expected pending session")
	}
	if status.SessionName != "Mint 100 to 0x00..0ab" {
		t.Fatalf("display name = %q", status.SessionName)
	}
	if status.ExpiresAt != 100+ExpiryWindow {
		t.Fatalf("expiry = %d, want %d", status.ExpiresAt, 100+ExpiryWindow)
	}
	if status.CountAccept != 1 || status.CountReject != 0 {
		t.Fatalf("tallies = %d/%d, want 1/0", status.CountAccept, status.CountReject)
	}

	// Resolution empties the session view again.
	if _, err := svc.VoteAccept(ctx, addrY); err != nil {
		t.Fatalf("tipping vote: %v", err)
	}
	status, err = svc.Status(ctx)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.Pending || status.SessionName != NoSessionName {
		t.Fatalf("post-resolution status = %+v, want none pending", status)
	}
	if status.Outcome != OutcomeAccepted {
		t.Fatalf("outcome = %v, want %v", status.Outcome, OutcomeAccepted)
	}
}

func TestAuthoritiesReportVotingState(t *testing.T) {
	t.Parallel()

	store := newFakeStore(t, 2, 100, addrX, addrY, addrZ)
	svc := NewService(store, nil, testClock)
	ctx := context.Background()

	if _, err := svc.ProposeMintFinished(ctx, addrX); err != nil {
		t.Fatalf("propose: %v", err)
	}
	if _, err := svc.VoteAccept(ctx, addrY); err != nil {
		t.Fatalf("vote: %v", err)
	}

	authorities, err := svc.Authorities(ctx)
	if err != nil {
		t.Fatalf("authorities: %v", err)
	}
	if len(authorities) != 3 {
		t.Fatalf("authorities = %d, want 3", len(authorities))
	}
	byAddress := map[Address]AuthorityStatus{}
	for _, entry := range authorities {
		byAddress[entry.Address] = entry
	}
	if !byAddress[addrY].VotedCurrent {
		t.Fatal("voter should be marked as having voted")
	}
	if byAddress[addrX].VotedCurrent || byAddress[addrZ].VotedCurrent {
		t.Fatal("non-voters should not be marked")
	}

	entry, err := svc.Authority(ctx, addrY)
	if err != nil {
		t.Fatalf("authority: %v", err)
	}
	if !entry.VotedCurrent {
		t.Fatal("single lookup should agree with the list")
	}
	if _, err := svc.Authority(ctx, addrW); !errors.Is(err, ErrAuthorityNotFound) {
		t.Fatalf("unknown authority = %v, want %v", err, ErrAuthorityNotFound)
	}
}

func TestRecordsPaging(t *testing.T) {
	t.Parallel()

	store := newFakeStore(t, 1, 100, addrX)
	svc := NewService(store, nil, testClock)
	ctx := context.Background()

	if _, err := svc.ProposeMint(ctx, addrX, addrY, 10); err != nil {
		t.Fatalf("propose: %v", err)
	}
	if _, err := svc.VoteAccept(ctx, addrX); err != nil {
		t.Fatalf("vote: %v", err)
	}

	all, err := svc.Records(ctx, 0, 0)
	if err != nil {
		t.Fatalf("records: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("records = %d, want 3", len(all))
	}
	tail, err := svc.Records(ctx, all[0].Seq, 10)
	if err != nil {
		t.Fatalf("records after seq: %v", err)
	}
	if len(tail) != 2 || tail[0].Seq != all[1].Seq {
		t.Fatalf("tail = %+v, want records after seq %d", tail, all[0].Seq)
	}
}

func TestServiceWithoutStore(t *testing.T) {
	t.Parallel()

	svc := NewService(nil, nil, testClock)
	if _, err := svc.Status(context.Background()); !errors.Is(err, ErrStoreNotConfigured) {
		t.Fatalf("status without store = %v, want %v", err, ErrStoreNotConfigured)
	}
	if _, err := svc.VoteAccept(context.Background(), addrX); !errors.Is(err, ErrStoreNotConfigured) {
		t.Fatalf("vote without store = %v, want %v", err, ErrStoreNotConfigured)
	}
}
