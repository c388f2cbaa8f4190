package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/BrandonDHaskell/accesshub/internal/accesshub/service"
	"github.com/BrandonDHaskell/accesshub/internal/accesshub/store"
)

func TestHeartbeatPruner_DisabledWhenRetentionZero(t *testing.T) {
	e := newEnv(t)
	pruner := service.NewHeartbeatPruner(e.mem, service.PrunerConfig{
		RetentionDays: 0,
		IntervalHours: 1,
	}, silentLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pruner.Start(ctx)
	// Stop should return immediately without error.
	pruner.Stop()
}

func TestHeartbeatPruner_PrunesOldRecords(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	for _, age := range []time.Duration{40 * 24 * time.Hour, 24 * time.Hour} {
		if err := e.mem.RecordHeartbeat(ctx, store.HeartbeatRecord{
			HubID:      "alice-hub",
			ReceivedAt: t0.Add(-age),
		}); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	pruner := service.NewHeartbeatPruner(e.mem, service.PrunerConfig{
		RetentionDays: 30,
		Now:           e.clock.Now,
	}, silentLogger())

	if deleted := pruner.PruneOnce(ctx); deleted != 1 {
		t.Errorf("expected 1 pruned, got %d", deleted)
	}
	if n := len(e.mem.Heartbeats()); n != 1 {
		t.Errorf("expected 1 surviving heartbeat, got %d", n)
	}
	if deleted := pruner.PruneOnce(ctx); deleted != 0 {
		t.Errorf("second prune deleted %d", deleted)
	}
}

func TestHeartbeatPruner_StopIsIdempotent(t *testing.T) {
	e := newEnv(t)
	pruner := service.NewHeartbeatPruner(e.mem, service.PrunerConfig{
		RetentionDays: 30,
		IntervalHours: 1,
	}, silentLogger())

	ctx, cancel := context.WithCancel(context.Background())
	pruner.Start(ctx)

	cancel()
	// Multiple stops should not panic.
	pruner.Stop()
	pruner.Stop()
}

func TestHeartbeatPruner_StopWithoutStart(t *testing.T) {
	e := newEnv(t)
	pruner := service.NewHeartbeatPruner(e.mem, service.PrunerConfig{RetentionDays: 30}, silentLogger())

	done := make(chan struct{})
	go func() {
		pruner.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked without Start")
	}
}
