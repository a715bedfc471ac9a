package scheduler

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module runs the background sweeper for the lifetime of the app.
var Module = fx.Module("scheduler",
	fx.Provide(New),
	fx.Invoke(run),
)

func run(lc fx.Lifecycle, s *Scheduler) {
	if _, ok := s.store.(sweepable); !ok {
		s.log.Info("session store expires entries itself, sweeper idle")
		return
	}

	stop := make(chan struct{})
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer close(done)
				ticker := time.NewTicker(s.cfg.SweepInterval)
				defer ticker.Stop()
				for {
					select {
					case <-ticker.C:
						s.sweepSessions()
					case <-stop:
						return
					}
				}
			}()
			s.log.Info("session sweeper started",
				zap.Duration("interval", s.cfg.SweepInterval))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			close(stop)
			select {
			case <-done:
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		},
	})
}
