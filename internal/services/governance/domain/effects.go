package domain

import (
	"time"

	apperrors "github.com/signoria/signoria/internal/platform/errors"
)

// dispatchEffect executes the topic effect of the session that just reached
// its accept threshold, mutating the decision in place. It runs at most once
// per session: the resolution predicate guards every later vote entry, so no
// call can reach this path again for the same session.
func dispatchEffect(state State, decision *Decision, now time.Time) error {
	session := &decision.Session
	base := Record{Height: state.Height, RecordedAt: now, SessionID: session.ID}

	switch session.Topic {
	case TopicMint:
		// Recheck inside the dispatcher: a mint slipping past a finished
		// supply is an invariant violation, not a soft failure.
		if state.MintingFinished || decision.MintingFinished {
			return ErrMintAfterFinish
		}
		decision.Ledger = append(decision.Ledger, LedgerOp{
			Kind:    LedgerMint,
			Account: session.ReferAccount,
			Amount:  session.ReferNumber,
		})
		record := base
		record.Kind = RecordMintToken
		record.Account = session.ReferAccount
		record.Amount = session.ReferNumber
		decision.Records = append(decision.Records, record)

	case TopicMintFinished:
		decision.MintingFinished = true
		record := base
		record.Kind = RecordMintFinished
		decision.Records = append(decision.Records, record)

	case TopicBurn:
		decision.Ledger = append(decision.Ledger, LedgerOp{
			Kind:    LedgerBurn,
			Account: session.ReferAccount,
			Amount:  session.ReferNumber,
		})
		record := base
		record.Kind = RecordBurnToken
		record.Account = session.ReferAccount
		record.Amount = session.ReferNumber
		decision.Records = append(decision.Records, record)

	case TopicAddAuthority:
		// The new member is marked as having acted on this session so it
		// cannot retroactively vote on the proposal that admitted it.
		decision.Registry.Insert(session.ReferAccount, session.ID)
		record := base
		record.Kind = RecordAuthorityAdded
		record.Account = session.ReferAccount
		decision.Records = append(decision.Records, record)

	case TopicRemoveAuthority:
		if err := decision.Registry.Remove(session.ReferAccount); err != nil {
			return ErrRegistryCorrupted
		}
		if decision.Registry.Size() == 0 {
			return ErrRegistryCorrupted
		}
		if decision.Registry.Size() < decision.RequireAccept {
			old := decision.RequireAccept
			decision.RequireAccept = decision.Registry.Size()
			record := base
			record.Kind = RecordRequiredApprovalChanged
			record.OldRequireAccept = old
			record.NewRequireAccept = decision.RequireAccept
			decision.Records = append(decision.Records, record)
		}
		record := base
		record.Kind = RecordAuthorityRemoved
		record.Account = session.ReferAccount
		decision.Records = append(decision.Records, record)

	case TopicChangeRequiredApproval:
		old := decision.RequireAccept
		record := base
		record.Kind = RecordRequiredApprovalChanged
		record.OldRequireAccept = old
		record.NewRequireAccept = session.ReferNumber
		decision.Records = append(decision.Records, record)
		decision.RequireAccept = session.ReferNumber
		// The resolved session keeps its threshold and tally aligned with
		// the value it just installed. The write survives resolution on
		// purpose; consumers may depend on the stored sequence.
		session.RequireAccept = session.ReferNumber
		session.CountAccept = session.RequireAccept

	default:
		return apperrors.WithMetadata(apperrors.CodeInvariantViolation, "effect dispatched for unknown topic", map[string]string{
			"topic": session.Topic.String(),
		})
	}
	return nil
}
