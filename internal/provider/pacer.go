package provider

import (
	"context"
	"sync"
	"time"
)

// pacer enforces a minimum interval between outbound API calls. The free
// CoinGecko tier throttles hard; sequential pipeline fetches just need
// spacing, not a full token bucket.
type pacer struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time
}

func newPacer(interval time.Duration) *pacer {
	return &pacer{interval: interval}
}

// wait blocks until the next slot opens or ctx is cancelled.
func (p *pacer) wait(ctx context.Context) error {
	p.mu.Lock()
	now := time.Now()
	sleep := p.next.Sub(now)
	if sleep < 0 {
		sleep = 0
	}
	p.next = now.Add(sleep + p.interval)
	p.mu.Unlock()

	if sleep == 0 {
		return nil
	}
	timer := time.NewTimer(sleep)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
