package jobs

import (
	"context"
	"time"

	"github.com/labstack/gommon/log"
)

type LimiterStore interface {
	Cleanup() int
}

// LimiterJanitor forgets rate limit buckets of clients that went quiet.
type LimiterJanitor struct {
	store    LimiterStore
	interval time.Duration
}

func NewLimiterJanitor(store LimiterStore, interval time.Duration) *LimiterJanitor {
	return &LimiterJanitor{store: store, interval: interval}
}

// Start blocks until ctx is done.
func (j *LimiterJanitor) Start(ctx context.Context) {
	if j.interval <= 0 {
		log.Warn("Limiter janitor disabled, no interval configured")
		return
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	log.Info("Limiter janitor cron started")

	for {
		select {
		case <-ctx.Done():
			log.Info("Stopping limiter janitor...")
			return
		case <-ticker.C:
			j.cleanup()
		}
	}
}

func (j *LimiterJanitor) cleanup() {
	removed := j.store.Cleanup()
	if removed > 0 {
		log.Debugf("Janitor: dropped %d idle rate limit buckets", removed)
	}
}
