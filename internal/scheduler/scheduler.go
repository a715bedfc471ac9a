package scheduler

import (
	"time"

	checkoutdomain "github.com/tambiyash/image-lizard/internal/checkout/domain"
	"github.com/tambiyash/image-lizard/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// sweepable is implemented by session stores that keep expired entries
// around until something removes them. The redis store does not implement
// it; redis expires keys server side.
type sweepable interface {
	Sweep(now time.Time) int
}

type Params struct {
	fx.In

	Log    *zap.Logger
	Clock  clock.Clock
	Store  checkoutdomain.SessionStore
	Config Config `optional:"true"`
}

// Scheduler runs periodic maintenance jobs. The only job today is purging
// expired checkout sessions from the in-memory store so abandoned sessions
// do not accumulate between reads.
type Scheduler struct {
	log   *zap.Logger
	cfg   Config
	clock clock.Clock
	store checkoutdomain.SessionStore
}

func New(p Params) *Scheduler {
	return &Scheduler{
		log:   p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:   p.Config.withDefaults(),
		clock: p.Clock,
		store: p.Store,
	}
}

func (s *Scheduler) sweepSessions() int {
	target, ok := s.store.(sweepable)
	if !ok {
		return 0
	}
	removed := target.Sweep(s.clock.Now())
	if removed > 0 {
		s.log.Debug("purged expired checkout sessions", zap.Int("removed", removed))
	}
	return removed
}
