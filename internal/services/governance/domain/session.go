package domain

// ExpiryWindow is the block-height span after which an unresolved session is
// treated as lapsed: 5760 blocks, about one day at 15s per block.
const ExpiryWindow uint64 = 5760

// Session is the single pending governance proposal. Session ids are
// strictly increasing and never reused; the next creation overwrites the
// previous session with a fresh id.
type Session struct {
	ID            uint64
	Topic         Topic
	CreatedAt     uint64 // block height at creation
	ReferNumber   uint64 // amount or proposed quorum, by topic
	ReferAccount  Address
	CountAccept   uint64
	CountReject   uint64
	RequireAccept uint64 // quorum snapshot inherited at creation
}

// Outcome is the fate of a session under the resolution predicate.
type Outcome int

const (
	// OutcomeNone means no session exists.
	OutcomeNone Outcome = iota
	// OutcomePending means the session is still collecting votes.
	OutcomePending
	// OutcomeAccepted means the accept tally reached quorum.
	OutcomeAccepted
	// OutcomeRejected means rejections made quorum unreachable.
	OutcomeRejected
	// OutcomeExpired means the expiry window elapsed unresolved.
	OutcomeExpired
)

// String returns the wire name of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomePending:
		return "PENDING"
	case OutcomeAccepted:
		return "ACCEPTED"
	case OutcomeRejected:
		return "REJECTED"
	case OutcomeExpired:
		return "EXPIRED"
	default:
		return "NONE"
	}
}

// Accepted reports whether the accept tally reached the session quorum.
func (s Session) Accepted() bool {
	return s.CountAccept >= s.RequireAccept
}

// Rejected reports whether the reject tally already makes reaching quorum
// mathematically impossible given the authority count.
func (s Session) Rejected(authorityCount uint64) bool {
	var margin uint64
	if authorityCount >= s.RequireAccept {
		margin = authorityCount - s.RequireAccept
	}
	return s.CountReject > margin
}

// Expired reports whether more than ExpiryWindow blocks elapsed since the
// session was created.
func (s Session) Expired(height uint64) bool {
	return height > s.CreatedAt+ExpiryWindow
}

// ExpiresAt returns the last block height at which the session is still
// considered live.
func (s Session) ExpiresAt() uint64 {
	return s.CreatedAt + ExpiryWindow
}

// Resolve evaluates the resolution predicate and returns the session fate.
// Acceptance is checked first, then rejection, then expiry.
func (s Session) Resolve(height uint64, authorityCount uint64) Outcome {
	if s.Accepted() {
		return OutcomeAccepted
	}
	if s.Rejected(authorityCount) {
		return OutcomeRejected
	}
	if s.Expired(height) {
		return OutcomeExpired
	}
	return OutcomePending
}

// Resolved reports whether any resolution clause holds. A resolved session
// frees the proposal slot; it can never collect further votes.
func (s Session) Resolved(height uint64, authorityCount uint64) bool {
	return s.Resolve(height, authorityCount) != OutcomePending
}
