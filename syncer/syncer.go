// Package syncer drives periodic per-guild role sweeps.
package syncer

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"
)

// Syncer runs one loop per started guild and emits a sweep tick to the
// registered handler every interval. Guilds start with a random jitter so
// sweeps do not line up after a restart.
type Syncer struct {
	interval time.Duration
	handler  func(guildID string)
	started  sync.Map
}

func New(interval time.Duration) *Syncer {
	return &Syncer{interval: interval}
}

// OnSweep registers the handler invoked on every tick. Must be called before
// the first Start.
func (s *Syncer) OnSweep(handler func(guildID string)) {
	s.handler = handler
}

// Start launches the sweep loop for a guild. Starting an already started
// guild is a no-op.
func (s *Syncer) Start(guildID string) {
	ctx, cancel := context.WithCancel(context.Background())
	_, isLoaded := s.started.LoadOrStore(guildID, cancel)
	if !isLoaded {
		go s.sweepLoop(ctx, guildID)
	}
}

// Stop cancels the sweep loop for a guild, if one is running.
func (s *Syncer) Stop(guildID string) {
	cancel, isKnown := s.started.LoadAndDelete(guildID)
	if isKnown {
		cancel.(context.CancelFunc)()
	}
}

func (s *Syncer) sweepLoop(ctx context.Context, guildID string) {
	slog.Info("starting sweep loop", slog.String("guild", guildID))

	after := time.After(time.Duration(rand.Int63n(int64(s.interval))))
	for {
		select {
		case <-ctx.Done():
			slog.Info("sweep loop is stopped", slog.String("guild", guildID))
			return
		case <-after:
			s.handler(guildID)
			after = time.After(s.interval)
		}
	}
}
