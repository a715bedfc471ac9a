package scheduler

import (
	"context"
	"testing"
	"time"

	checkoutdomain "github.com/tambiyash/image-lizard/internal/checkout/domain"
	"github.com/tambiyash/image-lizard/internal/checkout/store"
	"github.com/tambiyash/image-lizard/internal/clock"
	"go.uber.org/zap"
)

func newTestScheduler(t *testing.T, sessions checkoutdomain.SessionStore) (*Scheduler, *clock.FakeClock) {
	t.Helper()
	clk := clock.NewFakeClock(time.Now())
	return New(Params{
		Log:   zap.NewNop(),
		Clock: clk,
		Store: sessions,
	}), clk
}

func TestSweepPurgesExpiredSessions(t *testing.T) {
	sessions := store.NewMemoryStore()
	sched, clk := newTestScheduler(t, sessions)
	ctx := context.Background()

	if err := sessions.Put(ctx, checkoutdomain.Session{ID: "cs_test_short"}, time.Minute); err != nil {
		t.Fatalf("put session: %v", err)
	}
	if err := sessions.Put(ctx, checkoutdomain.Session{ID: "cs_test_long"}, 2*time.Hour); err != nil {
		t.Fatalf("put session: %v", err)
	}

	if removed := sched.sweepSessions(); removed != 0 {
		t.Fatalf("nothing expired yet, swept %d", removed)
	}

	clk.Advance(time.Hour)
	if removed := sched.sweepSessions(); removed != 1 {
		t.Fatalf("expected 1 expired session, swept %d", removed)
	}

	gone, err := sessions.Get(ctx, "cs_test_short")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if gone != nil {
		t.Fatal("expired session must be gone after sweep")
	}
	kept, err := sessions.Get(ctx, "cs_test_long")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if kept == nil {
		t.Fatal("unexpired session must survive the sweep")
	}
}

type ttlLessStore struct{}

func (ttlLessStore) Put(ctx context.Context, session checkoutdomain.Session, ttl time.Duration) error {
	return nil
}

func (ttlLessStore) Get(ctx context.Context, sessionID string) (*checkoutdomain.Session, error) {
	return nil, nil
}

func (ttlLessStore) Delete(ctx context.Context, sessionID string) error { return nil }

func TestSweepIgnoresSelfExpiringStores(t *testing.T) {
	sched, _ := newTestScheduler(t, ttlLessStore{})
	if removed := sched.sweepSessions(); removed != 0 {
		t.Fatalf("store without local expiry must not be swept, got %d", removed)
	}
}

func TestSweepIntervalDefault(t *testing.T) {
	cfg := Config{}.withDefaults()
	if cfg.SweepInterval != defaultSweepInterval {
		t.Fatalf("unexpected default interval %s", cfg.SweepInterval)
	}
}
