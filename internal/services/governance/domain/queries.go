package domain

import "context"

const (
	defaultRecordPageSize = 50
	maxRecordPageSize     = 200
)

// Status is the read-only governance snapshot exposed to callers. Session
// fields are zeroed and SessionName is "None" when no proposal is pending.
type Status struct {
	SessionName     string
	Pending         bool
	Outcome         Outcome
	SessionID       uint64
	Topic           Topic
	ReferAccount    Address
	ReferNumber     uint64
	CountAccept     uint64
	CountReject     uint64
	ExpiresAt       uint64
	RequireAccept   uint64
	AuthorityCount  uint64
	MintingFinished bool
	Height          uint64
}

// NoSessionName is the display name reported while no proposal is pending.
const NoSessionName = "None"

// Status reports the current session, tallies, quorum, and registry size.
func (s *Service) Status(ctx context.Context) (Status, error) {
	if s == nil || s.store == nil {
		return Status{}, ErrStoreNotConfigured
	}
	state, err := s.store.LoadState(ctx)
	if err != nil {
		return Status{}, err
	}

	status := Status{
		SessionName:     NoSessionName,
		Outcome:         state.SessionOutcome(),
		RequireAccept:   state.RequireAccept,
		AuthorityCount:  state.Registry.Size(),
		MintingFinished: state.MintingFinished,
		Height:          state.Height,
	}
	if state.SessionPending() {
		session := *state.Session
		status.SessionName = s.describe.Describe(session)
		status.Pending = true
		status.SessionID = session.ID
		status.Topic = session.Topic
		status.ReferAccount = session.ReferAccount
		status.ReferNumber = session.ReferNumber
		status.CountAccept = session.CountAccept
		status.CountReject = session.CountReject
		status.ExpiresAt = session.ExpiresAt()
	}
	return status, nil
}

// AuthorityStatus is one registry entry with its stance on the pending
// session.
type AuthorityStatus struct {
	Address      Address
	LastActed    uint64
	VotedCurrent bool
}

// Authorities lists the registry in insertion order.
func (s *Service) Authorities(ctx context.Context) ([]AuthorityStatus, error) {
	if s == nil || s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	state, err := s.store.LoadState(ctx)
	if err != nil {
		return nil, err
	}

	var pendingID uint64
	if state.SessionPending() {
		pendingID = state.Session.ID
	}
	entries := state.Registry.Entries()
	out := make([]AuthorityStatus, 0, len(entries))
	for _, entry := range entries {
		out = append(out, AuthorityStatus{
			Address:      entry.Address,
			LastActed:    entry.LastActed,
			VotedCurrent: pendingID != 0 && entry.LastActed == pendingID,
		})
	}
	return out, nil
}

// Authority returns the registry entry for account.
func (s *Service) Authority(ctx context.Context, account Address) (AuthorityStatus, error) {
	entries, err := s.Authorities(ctx)
	if err != nil {
		return AuthorityStatus{}, err
	}
	for _, entry := range entries {
		if entry.Address == account {
			return entry, nil
		}
	}
	return AuthorityStatus{}, ErrAuthorityNotFound
}

// Balance returns the ledger balance of account. Unknown accounts hold zero.
func (s *Service) Balance(ctx context.Context, account Address) (uint64, error) {
	if s == nil || s.store == nil {
		return 0, ErrStoreNotConfigured
	}
	return s.store.Balance(ctx, account)
}

// TotalSupply returns the ledger total supply.
func (s *Service) TotalSupply(ctx context.Context) (uint64, error) {
	if s == nil || s.store == nil {
		return 0, ErrStoreNotConfigured
	}
	return s.store.TotalSupply(ctx)
}

// Records returns up to pageSize journal records with Seq greater than
// afterSeq, in Seq order.
func (s *Service) Records(ctx context.Context, afterSeq uint64, pageSize int) ([]Record, error) {
	if s == nil || s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	if pageSize <= 0 {
		pageSize = defaultRecordPageSize
	}
	if pageSize > maxRecordPageSize {
		pageSize = maxRecordPageSize
	}
	return s.store.ListRecords(ctx, afterSeq, pageSize)
}
