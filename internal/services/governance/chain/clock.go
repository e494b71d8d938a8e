// Package chain advances the persisted block height that drives session
// expiry. One tick is one block.
package chain

import (
	"context"
	"log"
	"time"

	"github.com/signoria/signoria/internal/services/governance/storage"
)

// DefaultBlockInterval approximates the block cadence the expiry window
// was sized for.
const DefaultBlockInterval = 15 * time.Second

// Clock periodically advances the block height.
type Clock struct {
	store    storage.HeightStore
	interval time.Duration
	onTick   func(height uint64)
}

// Option configures optional clock behavior.
type Option func(*Clock)

// WithOnTick registers an observer invoked with each new height.
func WithOnTick(onTick func(height uint64)) Option {
	return func(c *Clock) {
		c.onTick = onTick
	}
}

// NewClock returns a clock that advances the height every interval.
func NewClock(store storage.HeightStore, interval time.Duration, opts ...Option) *Clock {
	if interval <= 0 {
		interval = DefaultBlockInterval
	}
	clock := &Clock{store: store, interval: interval}
	for _, opt := range opts {
		if opt != nil {
			opt(clock)
		}
	}
	return clock
}

// Start runs the clock until the returned cancel function is called. The
// done channel closes after the loop exits.
func (c *Clock) Start() (context.CancelFunc, chan struct{}) {
	if c == nil || c.store == nil {
		return nil, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		c.Run(ctx)
	}()

	return cancel, done
}

// Run advances the height once per interval until the context ends.
// Advance failures are logged and retried on the next tick.
func (c *Clock) Run(ctx context.Context) {
	if c == nil || c.store == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			height, err := c.store.AdvanceHeight(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Printf("advance block height failed: %v", err)
				continue
			}
			if c.onTick != nil {
				c.onTick(height)
			}
		}
	}
}
