package notify

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/signoria/signoria/internal/services/governance/storage"
)

// DefaultPollInterval is how often the relay checks the journal for
// records it has not published yet.
const DefaultPollInterval = time.Second

// relayBatchSize caps how many records one poll reads from the journal.
const relayBatchSize = 64

// Relay drains the journal past the relay cursor and hands each record to
// the publisher in sequence order. The cursor advances only after a
// record is published, so a crash replays the tail rather than losing it.
type Relay struct {
	store     storage.RelayStore
	publisher Publisher
	interval  time.Duration
}

// NewRelay builds a relay polling at the given interval. A non-positive
// interval falls back to DefaultPollInterval.
func NewRelay(store storage.RelayStore, publisher Publisher, interval time.Duration) *Relay {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Relay{store: store, publisher: publisher, interval: interval}
}

// Start launches the relay loop in a goroutine. It returns a cancel
// function and a channel closed once the loop exits.
func (r *Relay) Start() (context.CancelFunc, chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	if r == nil || r.store == nil || r.publisher == nil {
		close(done)
		return cancel, done
	}
	go func() {
		defer close(done)
		r.Run(ctx)
	}()
	return cancel, done
}

// Run drains the journal once, then keeps polling until ctx is
// cancelled. Publish failures are logged and retried on the next poll.
func (r *Relay) Run(ctx context.Context) {
	if err := r.relayOnce(ctx); err != nil && ctx.Err() == nil {
		log.Printf("relay governance events failed: %v", err)
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.relayOnce(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Printf("relay governance events failed: %v", err)
			}
		}
	}
}

// relayOnce publishes every journal record past the cursor, advancing
// the cursor after each successful publish.
func (r *Relay) relayOnce(ctx context.Context) error {
	cursor, err := r.store.RelayCursor(ctx)
	if err != nil {
		return fmt.Errorf("load relay cursor: %w", err)
	}
	for {
		records, err := r.store.ListRecords(ctx, cursor, relayBatchSize)
		if err != nil {
			return fmt.Errorf("list records after %d: %w", cursor, err)
		}
		if len(records) == 0 {
			return nil
		}
		for _, record := range records {
			if err := r.publisher.Publish(ctx, EventFromRecord(record)); err != nil {
				return fmt.Errorf("publish record %d: %w", record.Seq, err)
			}
			if err := r.store.SetRelayCursor(ctx, record.Seq); err != nil {
				return fmt.Errorf("advance relay cursor to %d: %w", record.Seq, err)
			}
			cursor = record.Seq
		}
		if len(records) < relayBatchSize {
			return nil
		}
	}
}
