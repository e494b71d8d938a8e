// Package notify relays governance journal records to NATS JetStream for
// off-process consumers. The journal is the source of truth; the relay
// publishes at-least-once in journal order and JetStream deduplicates by
// message id.
package notify

import (
	"context"
	"time"

	"github.com/signoria/signoria/internal/services/governance/domain"
)

const (
	// StreamName is the JetStream stream holding governance events.
	StreamName = "SIGNORIA_GOVERNANCE"
	// subjectPrefix namespaces one subject per record kind.
	subjectPrefix = "signoria.governance.events."
)

// EventSubject returns the NATS subject for one record kind.
func EventSubject(kind domain.RecordKind) string {
	return subjectPrefix + string(kind)
}

// StreamSubjects returns the subject filter covering all governance
// events.
func StreamSubjects() []string {
	return []string{subjectPrefix + ">"}
}

// Event is the wire form of one journal record.
type Event struct {
	Seq        uint64    `json:"seq"`
	Height     uint64    `json:"height"`
	RecordedAt time.Time `json:"recorded_at"`
	Kind       string    `json:"kind"`
	SessionID  uint64    `json:"session_id"`

	Topic            string `json:"topic,omitempty"`
	Actor            string `json:"actor,omitempty"`
	Choice           string `json:"choice,omitempty"`
	Account          string `json:"account,omitempty"`
	Amount           uint64 `json:"amount,omitempty"`
	OldRequireAccept uint64 `json:"old_require_accept,omitempty"`
	NewRequireAccept uint64 `json:"new_require_accept,omitempty"`
}

// EventFromRecord maps a journal record to its wire form.
func EventFromRecord(record domain.Record) Event {
	event := Event{
		Seq:              record.Seq,
		Height:           record.Height,
		RecordedAt:       record.RecordedAt,
		Kind:             string(record.Kind),
		SessionID:        record.SessionID,
		Actor:            record.Actor.String(),
		Choice:           string(record.Choice),
		Account:          record.Account.String(),
		Amount:           record.Amount,
		OldRequireAccept: record.OldRequireAccept,
		NewRequireAccept: record.NewRequireAccept,
	}
	if record.Topic != domain.TopicUnspecified {
		event.Topic = record.Topic.String()
	}
	return event
}

// Publisher delivers one event to an external sink.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}
