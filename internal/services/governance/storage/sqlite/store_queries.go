package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/signoria/signoria/internal/services/governance/domain"
)

// Balance returns the token balance held by one account, zero when the
// account never received tokens.
func (s *Store) Balance(ctx context.Context, account domain.Address) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, domain.ErrStoreNotConfigured
	}
	var balance int64
	err := s.sqlDB.QueryRowContext(ctx, `SELECT balance FROM balances WHERE address = ?`, account.String()).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load balance: %w", err)
	}
	return uint64(balance), nil
}

// TotalSupply returns tokens minted minus tokens burned.
func (s *Store) TotalSupply(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, domain.ErrStoreNotConfigured
	}
	var supply int64
	err := s.sqlDB.QueryRowContext(ctx, `SELECT total_supply FROM governance_state WHERE id = 1`).Scan(&supply)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.ErrStateNotSeeded
	}
	if err != nil {
		return 0, fmt.Errorf("load total supply: %w", err)
	}
	return uint64(supply), nil
}

// Height returns the current block height.
func (s *Store) Height(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, domain.ErrStoreNotConfigured
	}
	var height int64
	err := s.sqlDB.QueryRowContext(ctx, `SELECT height FROM governance_state WHERE id = 1`).Scan(&height)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.ErrStateNotSeeded
	}
	if err != nil {
		return 0, fmt.Errorf("load height: %w", err)
	}
	return uint64(height), nil
}

// AdvanceHeight increments the block height by one and returns the new
// value.
func (s *Store) AdvanceHeight(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, domain.ErrStoreNotConfigured
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin height advance: %w", err)
	}
	rollbackWith := func(cause error) error {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("%w: rollback height advance: %v", cause, rollbackErr)
		}
		return cause
	}

	result, err := tx.ExecContext(ctx, `UPDATE governance_state SET height = height + 1 WHERE id = 1`)
	if err != nil {
		return 0, rollbackWith(fmt.Errorf("advance height: %w", err))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, rollbackWith(fmt.Errorf("advance height rows affected: %w", err))
	}
	if affected == 0 {
		return 0, rollbackWith(domain.ErrStateNotSeeded)
	}

	var height int64
	if err := tx.QueryRowContext(ctx, `SELECT height FROM governance_state WHERE id = 1`).Scan(&height); err != nil {
		return 0, rollbackWith(fmt.Errorf("load advanced height: %w", err))
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit height advance: %w", err)
	}
	return uint64(height), nil
}

// ListRecords returns journal records with seq greater than afterSeq in
// append order, up to limit rows.
func (s *Store) ListRecords(ctx context.Context, afterSeq uint64, limit int) ([]domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, domain.ErrStoreNotConfigured
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT seq, height, recorded_at, kind, session_id, topic, actor, choice,
       account, amount, old_require_accept, new_require_accept
FROM journal
WHERE seq > ?
ORDER BY seq ASC
LIMIT ?
`, int64(afterSeq), limit)
	if err != nil {
		return nil, fmt.Errorf("list journal records: %w", err)
	}
	defer rows.Close()

	records := make([]domain.Record, 0, limit)
	for rows.Next() {
		record, scanErr := scanRecord(rows.Scan)
		if scanErr != nil {
			return nil, fmt.Errorf("scan journal row: %w", scanErr)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal rows: %w", err)
	}
	return records, nil
}

// RelayCursor returns the seq of the last journal record the relay
// published, zero when the relay never ran.
func (s *Store) RelayCursor(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, domain.ErrStoreNotConfigured
	}
	var lastSeq int64
	err := s.sqlDB.QueryRowContext(ctx, `SELECT last_seq FROM relay_cursor WHERE id = 1`).Scan(&lastSeq)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load relay cursor: %w", err)
	}
	return uint64(lastSeq), nil
}

// SetRelayCursor stores the seq of the last published journal record.
func (s *Store) SetRelayCursor(ctx context.Context, seq uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return domain.ErrStoreNotConfigured
	}
	if _, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO relay_cursor (id, last_seq) VALUES (1, ?)
ON CONFLICT(id) DO UPDATE SET last_seq = excluded.last_seq
`, int64(seq)); err != nil {
		return fmt.Errorf("set relay cursor: %w", err)
	}
	return nil
}

type scanner func(dest ...any) error

func scanRecord(scan scanner) (domain.Record, error) {
	var record domain.Record
	var seq int64
	var height int64
	var recordedAt int64
	var kind string
	var sessionID int64
	var topic string
	var actor string
	var choice string
	var account string
	var amount int64
	var oldRequire int64
	var newRequire int64
	if err := scan(
		&seq,
		&height,
		&recordedAt,
		&kind,
		&sessionID,
		&topic,
		&actor,
		&choice,
		&account,
		&amount,
		&oldRequire,
		&newRequire,
	); err != nil {
		return domain.Record{}, err
	}

	parsedTopic, err := scanTopic(topic)
	if err != nil {
		return domain.Record{}, err
	}
	record.Seq = uint64(seq)
	record.Height = uint64(height)
	record.RecordedAt = fromMillis(recordedAt)
	record.Kind = domain.RecordKind(kind)
	record.SessionID = uint64(sessionID)
	record.Topic = parsedTopic
	record.Actor = domain.Address(actor)
	record.Choice = domain.VoteChoice(choice)
	record.Account = domain.Address(account)
	record.Amount = uint64(amount)
	record.OldRequireAccept = uint64(oldRequire)
	record.NewRequireAccept = uint64(newRequire)
	return record, nil
}
