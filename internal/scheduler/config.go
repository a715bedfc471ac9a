package scheduler

import "time"

const defaultSweepInterval = 5 * time.Minute

// Config tunes the background sweeper.
type Config struct {
	// SweepInterval is how often expired checkout sessions are purged
	// from the in-memory store.
	SweepInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.SweepInterval <= 0 {
		c.SweepInterval = defaultSweepInterval
	}
	return c
}
