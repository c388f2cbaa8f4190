package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/BrandonDHaskell/accesshub/internal/accesshub/store"
)

// HeartbeatPruner periodically deletes heartbeat history older than the
// retention period.  The hubs' heartbeatAt snapshots are never touched, so
// liveness is unaffected.
//
// A retention of 0 disables pruning entirely.
type HeartbeatPruner struct {
	store     store.HeartbeatStore
	retention time.Duration
	interval  time.Duration
	now       func() time.Time
	onPrune   func(deleted int64)
	logger    *log.Logger

	startOnce sync.Once
	cancel    context.CancelFunc
	done      chan struct{}
}

type PrunerConfig struct {
	// RetentionDays is how many days of heartbeat history to keep.
	// 0 means keep everything (pruner will not start).
	RetentionDays int

	// IntervalHours is how often the pruner runs.  Defaults to 6.
	IntervalHours int

	// Now defaults to time.Now.
	Now func() time.Time

	// OnPrune, if set, is called after every successful prune.
	OnPrune func(deleted int64)
}

// NewHeartbeatPruner creates a pruner but does not start it.
func NewHeartbeatPruner(s store.HeartbeatStore, cfg PrunerConfig, logger *log.Logger) *HeartbeatPruner {
	interval := time.Duration(cfg.IntervalHours) * time.Hour
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &HeartbeatPruner{
		store:     s,
		retention: time.Duration(cfg.RetentionDays) * 24 * time.Hour,
		interval:  interval,
		now:       now,
		onPrune:   cfg.OnPrune,
		logger:    logger,
		done:      make(chan struct{}),
	}
}

// Start runs an immediate prune, then repeats on the interval until ctx is
// cancelled or Stop is called.  Only the first call has any effect.
func (p *HeartbeatPruner) Start(ctx context.Context) {
	p.startOnce.Do(func() {
		if p.retention <= 0 {
			p.logger.Printf("heartbeat pruner disabled (retention=0)")
			close(p.done)
			return
		}

		ctx, p.cancel = context.WithCancel(ctx)
		go p.loop(ctx)

		p.logger.Printf("heartbeat pruner started (retention=%dd, interval=%s)",
			int(p.retention.Hours()/24), p.interval)
	})
}

// Stop signals the pruner to exit and waits for it.  It is safe to call
// more than once, and before Start.
func (p *HeartbeatPruner) Stop() {
	p.startOnce.Do(func() { close(p.done) })
	if p.cancel != nil {
		p.cancel()
	}
	<-p.done
}

func (p *HeartbeatPruner) loop(ctx context.Context) {
	defer close(p.done)

	p.PruneOnce(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.PruneOnce(ctx)
		}
	}
}

// PruneOnce deletes everything older than now minus retention and returns
// the number of rows removed.  Errors are logged, not returned.
func (p *HeartbeatPruner) PruneOnce(ctx context.Context) int64 {
	cutoff := p.now().UTC().Add(-p.retention)
	deleted, err := p.store.PruneOlderThan(ctx, cutoff)
	if err != nil {
		p.logger.Printf("heartbeat prune error: %v", err)
		return 0
	}
	if p.onPrune != nil {
		p.onPrune(deleted)
	}
	if deleted > 0 {
		p.logger.Printf("heartbeat prune: deleted %d rows older than %s",
			deleted, cutoff.Format(time.RFC3339))
	}
	return deleted
}
