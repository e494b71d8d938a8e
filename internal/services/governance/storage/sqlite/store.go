// Package sqlite provides SQLite-backed persistence for governance state.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/signoria/signoria/internal/platform/storage/sqlitemigrate"
	"github.com/signoria/signoria/internal/services/governance/storage"
	"github.com/signoria/signoria/internal/services/governance/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence for the governance engine.
type Store struct {
	sqlDB *sql.DB
}

var _ storage.Store = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a governance SQLite store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL&_pragma=foreign_keys(ON)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB}
	if err := store.runMigrations(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) runMigrations() error {
	return sqlitemigrate.ApplyMigrations(s.sqlDB, migrations.FS, "")
}

// Seeded reports whether genesis state has been written.
func (s *Store) Seeded(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if s == nil || s.sqlDB == nil {
		return false, fmt.Errorf("storage is not configured")
	}
	var count int
	if err := s.sqlDB.QueryRowContext(ctx, `SELECT COUNT(1) FROM governance_state`).Scan(&count); err != nil {
		return false, fmt.Errorf("check governance state: %w", err)
	}
	return count > 0, nil
}

// SeedGenesis writes the initial authority set, quorum, and block height.
// It fails when state already exists so a configured genesis can never
// overwrite a live database.
func (s *Store) SeedGenesis(ctx context.Context, genesis storage.Genesis) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if len(genesis.Authorities) == 0 {
		return fmt.Errorf("genesis requires at least one authority")
	}
	height, err := toDBValue(genesis.Height)
	if err != nil {
		return fmt.Errorf("genesis height: %w", err)
	}
	if genesis.RequireAccept == 0 || genesis.RequireAccept > uint64(len(genesis.Authorities)) {
		return fmt.Errorf("genesis quorum %d is out of range for %d authorities", genesis.RequireAccept, len(genesis.Authorities))
	}
	seen := make(map[string]bool, len(genesis.Authorities))
	for _, authority := range genesis.Authorities {
		if authority.IsZero() {
			return fmt.Errorf("genesis authority address is required")
		}
		if seen[authority.String()] {
			return fmt.Errorf("genesis authority %s is duplicated", authority)
		}
		seen[authority.String()] = true
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin genesis write: %w", err)
	}
	rollbackWith := func(cause error) error {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("%w: rollback genesis write: %v", cause, rollbackErr)
		}
		return cause
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO governance_state (id, require_accept, height) VALUES (1, ?, ?)
`, int64(genesis.RequireAccept), height); err != nil {
		if isUniqueConstraintError(err) {
			return rollbackWith(storage.ErrAlreadySeeded)
		}
		return rollbackWith(fmt.Errorf("insert governance state: %w", err))
	}
	for position, authority := range genesis.Authorities {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO authorities (address, position, last_acted) VALUES (?, ?, 0)
`, authority.String(), position); err != nil {
			return rollbackWith(fmt.Errorf("insert genesis authority: %w", err))
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit genesis write: %w", err)
	}
	return nil
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	value := strings.ToLower(err.Error())
	return strings.Contains(value, "unique constraint failed")
}
