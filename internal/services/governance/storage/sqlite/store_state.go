package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	apperrors "github.com/signoria/signoria/internal/platform/errors"
	"github.com/signoria/signoria/internal/services/governance/domain"
)

// maxLedgerValue caps persisted amounts at what an SQLite INTEGER column
// can hold without sign corruption.
const maxLedgerValue = math.MaxInt64

// LoadState reads the committed governance state: the authority registry
// in insertion order, the current session if one was ever created, the
// quorum, the minting flag, and the block height.
func (s *Store) LoadState(ctx context.Context) (domain.State, error) {
	if err := ctx.Err(); err != nil {
		return domain.State{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.State{}, domain.ErrStoreNotConfigured
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT require_accept, minting_finished, height,
       session_id, session_topic, session_created_at, session_refer_number,
       session_refer_account, session_count_accept, session_count_reject,
       session_require_accept
FROM governance_state
WHERE id = 1
`)
	var (
		requireAccept       int64
		mintingFinished     int64
		height              int64
		sessionID           int64
		sessionTopic        string
		sessionCreatedAt    int64
		sessionReferNumber  int64
		sessionReferAccount string
		sessionCountAccept  int64
		sessionCountReject  int64
		sessionRequire      int64
	)
	if err := row.Scan(
		&requireAccept,
		&mintingFinished,
		&height,
		&sessionID,
		&sessionTopic,
		&sessionCreatedAt,
		&sessionReferNumber,
		&sessionReferAccount,
		&sessionCountAccept,
		&sessionCountReject,
		&sessionRequire,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.State{}, domain.ErrStateNotSeeded
		}
		return domain.State{}, fmt.Errorf("load governance state: %w", err)
	}

	registry, err := s.loadRegistry(ctx)
	if err != nil {
		return domain.State{}, err
	}

	state := domain.State{
		Registry:        registry,
		RequireAccept:   uint64(requireAccept),
		MintingFinished: mintingFinished != 0,
		Height:          uint64(height),
	}
	if sessionID > 0 {
		topic, err := scanTopic(sessionTopic)
		if err != nil {
			return domain.State{}, fmt.Errorf("load session topic: %w", err)
		}
		state.Session = &domain.Session{
			ID:            uint64(sessionID),
			Topic:         topic,
			CreatedAt:     uint64(sessionCreatedAt),
			ReferNumber:   uint64(sessionReferNumber),
			ReferAccount:  domain.Address(sessionReferAccount),
			CountAccept:   uint64(sessionCountAccept),
			CountReject:   uint64(sessionCountReject),
			RequireAccept: uint64(sessionRequire),
		}
	}
	return state, nil
}

func (s *Store) loadRegistry(ctx context.Context) (*domain.Registry, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT address, last_acted
FROM authorities
ORDER BY position ASC
`)
	if err != nil {
		return nil, fmt.Errorf("load authorities: %w", err)
	}
	defer rows.Close()

	var entries []domain.AuthorityEntry
	for rows.Next() {
		var address string
		var lastActed int64
		if err := rows.Scan(&address, &lastActed); err != nil {
			return nil, fmt.Errorf("scan authority row: %w", err)
		}
		entries = append(entries, domain.AuthorityEntry{
			Address:   domain.Address(address),
			LastActed: uint64(lastActed),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate authority rows: %w", err)
	}
	return domain.NewRegistry(entries...), nil
}

// CommitDecision applies one engine decision atomically: ledger movements
// with checked arithmetic, the new session snapshot, the replaced
// authority registry, the global flags, and the journal records. Any
// failure rolls the whole decision back.
func (s *Store) CommitDecision(ctx context.Context, decision domain.Decision) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return domain.ErrStoreNotConfigured
	}
	if decision.Registry == nil {
		return fmt.Errorf("decision registry is required")
	}
	if decision.Session.ID == 0 {
		return fmt.Errorf("decision session id is required")
	}

	sessionReferNumber, err := toDBValue(decision.Session.ReferNumber)
	if err != nil {
		return err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin decision write: %w", err)
	}
	rollbackWith := func(cause error) error {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("%w: rollback decision write: %v", cause, rollbackErr)
		}
		return cause
	}

	supply, err := currentSupply(ctx, tx)
	if err != nil {
		return rollbackWith(err)
	}
	for _, op := range decision.Ledger {
		supply, err = applyLedgerOp(ctx, tx, op, supply)
		if err != nil {
			return rollbackWith(err)
		}
	}

	result, err := tx.ExecContext(ctx, `
UPDATE governance_state
SET require_accept = ?, minting_finished = ?, total_supply = ?,
    session_id = ?, session_topic = ?, session_created_at = ?,
    session_refer_number = ?, session_refer_account = ?,
    session_count_accept = ?, session_count_reject = ?, session_require_accept = ?
WHERE id = 1
`,
		int64(decision.RequireAccept),
		boolToInt(decision.MintingFinished),
		supply,
		int64(decision.Session.ID),
		decision.Session.Topic.String(),
		int64(decision.Session.CreatedAt),
		sessionReferNumber,
		decision.Session.ReferAccount.String(),
		int64(decision.Session.CountAccept),
		int64(decision.Session.CountReject),
		int64(decision.Session.RequireAccept),
	)
	if err != nil {
		return rollbackWith(fmt.Errorf("update governance state: %w", err))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return rollbackWith(fmt.Errorf("update governance state rows affected: %w", err))
	}
	if affected == 0 {
		return rollbackWith(domain.ErrStateNotSeeded)
	}

	if err := replaceAuthorities(ctx, tx, decision.Registry); err != nil {
		return rollbackWith(err)
	}
	for _, record := range decision.Records {
		if err := appendRecord(ctx, tx, record); err != nil {
			return rollbackWith(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit decision write: %w", err)
	}
	return nil
}

func currentSupply(ctx context.Context, tx *sql.Tx) (int64, error) {
	var supply int64
	if err := tx.QueryRowContext(ctx, `SELECT total_supply FROM governance_state WHERE id = 1`).Scan(&supply); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrStateNotSeeded
		}
		return 0, fmt.Errorf("load total supply: %w", err)
	}
	return supply, nil
}

// applyLedgerOp moves tokens for one effect and returns the new total
// supply. Arithmetic faults surface as invariant violations so the caller
// aborts the surrounding vote.
func applyLedgerOp(ctx context.Context, tx *sql.Tx, op domain.LedgerOp, supply int64) (int64, error) {
	if op.Account.IsZero() {
		return 0, apperrors.New(apperrors.CodeInvariantViolation, "ledger operation requires an account")
	}
	amount, err := toDBValue(op.Amount)
	if err != nil {
		return 0, err
	}

	var balance int64
	err = tx.QueryRowContext(ctx, `SELECT balance FROM balances WHERE address = ?`, op.Account.String()).Scan(&balance)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("load balance: %w", err)
	}

	var newBalance int64
	var newSupply int64
	switch op.Kind {
	case domain.LedgerMint:
		if balance > maxLedgerValue-amount || supply > maxLedgerValue-amount {
			return 0, apperrors.WithMetadata(apperrors.CodeInvariantViolation, "token mint overflows the ledger", map[string]string{
				"account": op.Account.String(),
			})
		}
		newBalance = balance + amount
		newSupply = supply + amount
	case domain.LedgerBurn:
		if balance < amount {
			return 0, apperrors.WithMetadata(apperrors.CodeInvariantViolation, "token burn exceeds the held balance", map[string]string{
				"account": op.Account.String(),
			})
		}
		newBalance = balance - amount
		newSupply = supply - amount
	default:
		return 0, apperrors.New(apperrors.CodeInvariantViolation, "unknown ledger operation")
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO balances (address, balance) VALUES (?, ?)
ON CONFLICT(address) DO UPDATE SET balance = excluded.balance
`, op.Account.String(), newBalance); err != nil {
		return 0, fmt.Errorf("write balance: %w", err)
	}
	return newSupply, nil
}

func replaceAuthorities(ctx context.Context, tx *sql.Tx, registry *domain.Registry) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM authorities`); err != nil {
		return fmt.Errorf("clear authorities: %w", err)
	}
	for position, entry := range registry.Entries() {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO authorities (address, position, last_acted) VALUES (?, ?, ?)
`, entry.Address.String(), position, int64(entry.LastActed)); err != nil {
			return fmt.Errorf("write authority: %w", err)
		}
	}
	return nil
}

func appendRecord(ctx context.Context, tx *sql.Tx, record domain.Record) error {
	if record.Kind == "" {
		return fmt.Errorf("journal record kind is required")
	}
	amount, err := toDBValue(record.Amount)
	if err != nil {
		return err
	}
	topic := ""
	if record.Topic != domain.TopicUnspecified {
		topic = record.Topic.String()
	}
	if _, err := tx.ExecContext(ctx, `
INSERT INTO journal (
    height, recorded_at, kind, session_id, topic, actor, choice, account,
    amount, old_require_accept, new_require_accept
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		int64(record.Height),
		toMillis(record.RecordedAt),
		string(record.Kind),
		int64(record.SessionID),
		topic,
		record.Actor.String(),
		string(record.Choice),
		record.Account.String(),
		amount,
		int64(record.OldRequireAccept),
		int64(record.NewRequireAccept),
	); err != nil {
		return fmt.Errorf("append journal record: %w", err)
	}
	return nil
}

func scanTopic(raw string) (domain.Topic, error) {
	if raw == "" || raw == "UNSPECIFIED" {
		return domain.TopicUnspecified, nil
	}
	return domain.ParseTopic(raw)
}

// toDBValue rejects unsigned values too large for an SQLite INTEGER.
func toDBValue(value uint64) (int64, error) {
	if value > maxLedgerValue {
		return 0, apperrors.New(apperrors.CodeInvariantViolation, "value exceeds ledger capacity")
	}
	return int64(value), nil
}

func boolToInt(value bool) int64 {
	if value {
		return 1
	}
	return 0
}
