// Package storage defines the persistence contracts shared by the
// governance engine, the block clock, and the notification relay.
package storage

import (
	"context"

	apperrors "github.com/signoria/signoria/internal/platform/errors"
	"github.com/signoria/signoria/internal/services/governance/domain"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// ErrAlreadySeeded indicates genesis state was written before.
var ErrAlreadySeeded = apperrors.New(apperrors.CodeInvalidArgument, "governance state is already seeded")

// Genesis is the initial authority set, quorum, and block height written
// to an empty store before the engine serves its first request.
type Genesis struct {
	Authorities   []domain.Address
	RequireAccept uint64
	Height        uint64
}

// HeightStore tracks the block height that drives session expiry.
type HeightStore interface {
	Height(ctx context.Context) (uint64, error)
	AdvanceHeight(ctx context.Context) (uint64, error)
}

// RelayStore exposes the journal tail and the relay bookmark so the
// notification relay can resume after a restart.
type RelayStore interface {
	ListRecords(ctx context.Context, afterSeq uint64, limit int) ([]domain.Record, error)
	RelayCursor(ctx context.Context) (uint64, error)
	SetRelayCursor(ctx context.Context, seq uint64) error
}

// Store is the full persistence surface the governance service wires
// together at startup.
type Store interface {
	domain.Store
	HeightStore
	RelayStore

	Seeded(ctx context.Context) (bool, error)
	SeedGenesis(ctx context.Context, genesis Genesis) error
	Close() error
}
