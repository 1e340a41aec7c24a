package auth

import (
	"context"
	"crypto/rand"
	"math/big"
	"time"
)

// TimingConfig holds the padding applied to failed credential checks
type TimingConfig struct {
	BaseDelay time.Duration
	Jitter    time.Duration
}

// TimingDelay pads failed login attempts so that an unknown email and a wrong
// password take roughly the same time to answer.
type TimingDelay struct {
	config TimingConfig
}

func NewTimingDelay(config TimingConfig) *TimingDelay {
	return &TimingDelay{config: config}
}

// target returns BaseDelay plus a uniform random share of Jitter
func (td *TimingDelay) target() time.Duration {
	delay := td.config.BaseDelay
	if td.config.Jitter > 0 {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(td.config.Jitter)))
		if err == nil {
			delay += time.Duration(n.Int64())
		}
	}
	return delay
}

// WaitFrom sleeps until at least the target delay has elapsed since start.
// It returns early if ctx is cancelled. A nil receiver is a no-op.
func (td *TimingDelay) WaitFrom(ctx context.Context, start time.Time) {
	if td == nil {
		return
	}

	remaining := td.target() - time.Since(start)
	if remaining <= 0 {
		return
	}

	timer := time.NewTimer(remaining)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
