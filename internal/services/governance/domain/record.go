package domain

import "time"

// RecordKind names a journal record type.
type RecordKind string

const (
	// RecordSessionCreated marks a new proposal entering the slot.
	RecordSessionCreated RecordKind = "session_created"
	// RecordVoteCast marks one authority vote, accept or reject.
	RecordVoteCast RecordKind = "vote_cast"
	// RecordMintToken marks an executed mint effect.
	RecordMintToken RecordKind = "mint_token"
	// RecordMintFinished marks the supply being closed.
	RecordMintFinished RecordKind = "mint_finished"
	// RecordBurnToken marks an executed burn effect.
	RecordBurnToken RecordKind = "burn_token"
	// RecordAuthorityAdded marks a new authority admission.
	RecordAuthorityAdded RecordKind = "authority_added"
	// RecordAuthorityRemoved marks an authority removal.
	RecordAuthorityRemoved RecordKind = "authority_removed"
	// RecordRequiredApprovalChanged marks a quorum change, explicit or
	// clamped after a removal.
	RecordRequiredApprovalChanged RecordKind = "required_approval_changed"
)

// VoteChoice is the direction of a cast vote.
type VoteChoice string

const (
	// ChoiceAccept counts toward quorum.
	ChoiceAccept VoteChoice = "accept"
	// ChoiceReject counts toward making quorum unreachable.
	ChoiceReject VoteChoice = "reject"
)

// Record is one entry of the append-only governance journal. The engine
// writes records and never reads them back; consumers rely on Seq being
// dense and totally ordered.
//
// Fields beyond Kind and SessionID are populated per kind: Topic, Actor,
// Account and Amount for session_created; Actor and Choice for vote_cast;
// Account and Amount for mint and burn effects; Account for authority
// changes; OldRequireAccept and NewRequireAccept for quorum changes.
type Record struct {
	Seq        uint64 // assigned by the store on append
	Height     uint64
	RecordedAt time.Time
	Kind       RecordKind
	SessionID  uint64

	Topic            Topic
	Actor            Address
	Choice           VoteChoice
	Account          Address
	Amount           uint64
	OldRequireAccept uint64
	NewRequireAccept uint64
}
