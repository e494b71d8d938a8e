package domain

// State is a committed snapshot of all durable governance state. Every
// operation evaluates its guards against one snapshot and commits all of its
// mutations together.
type State struct {
	Registry        *Registry
	Session         *Session // nil until the first proposal is created
	RequireAccept   uint64
	MintingFinished bool
	Height          uint64
}

// SessionPending reports whether a session exists and is not yet resolved.
// A pending session blocks creation; an absent or resolved one blocks votes.
func (st State) SessionPending() bool {
	if st.Session == nil {
		return false
	}
	return !st.Session.Resolved(st.Height, st.Registry.Size())
}

// SessionOutcome returns the current session fate, or OutcomeNone when no
// session was ever created.
func (st State) SessionOutcome() Outcome {
	if st.Session == nil {
		return OutcomeNone
	}
	return st.Session.Resolve(st.Height, st.Registry.Size())
}

// LedgerOpKind names a token ledger mutation.
type LedgerOpKind int

const (
	// LedgerMint credits an account and grows the total supply.
	LedgerMint LedgerOpKind = iota + 1
	// LedgerBurn debits an account and shrinks the total supply.
	LedgerBurn
)

// LedgerOp is one token ledger mutation carried by a decision. The store
// applies it with checked arithmetic inside the same transaction as the
// governance writes; a failed op aborts the whole operation.
type LedgerOp struct {
	Kind    LedgerOpKind
	Account Address
	Amount  uint64
}

// Decision is the full set of mutations one accepted operation commits:
// the updated session, the registry after any membership change, the global
// scalars, ledger movements, and the journal records in emission order.
type Decision struct {
	Session         Session
	Registry        *Registry
	RequireAccept   uint64
	MintingFinished bool
	Ledger          []LedgerOp
	Records         []Record
}
