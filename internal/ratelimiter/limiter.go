package ratelimiter

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/notifyhub/opencdp-go/internal/domain"
)

// ChannelLimiters holds one token bucket limiter per channel.
// Burst is set equal to the rate so no extra burst capacity is allowed
// beyond the configured per-second maximum.
type ChannelLimiters struct {
	limiters map[domain.Channel]*rate.Limiter
}

// New creates a ChannelLimiters with ratePerSec tokens per second per
// channel. It returns nil when ratePerSec <= 0; a nil *ChannelLimiters never
// blocks.
func New(ratePerSec int) *ChannelLimiters {
	if ratePerSec <= 0 {
		return nil
	}
	r := rate.Limit(ratePerSec)

	limiters := make(map[domain.Channel]*rate.Limiter, len(domain.Channels))
	for _, ch := range domain.Channels {
		limiters[ch] = rate.NewLimiter(r, ratePerSec)
	}
	return &ChannelLimiters{limiters: limiters}
}

// Wait blocks until the channel's limiter grants a token.
// Returns a non-nil error only if ctx is cancelled, or its deadline is too
// close for a token to become available.
func (cl *ChannelLimiters) Wait(ctx context.Context, ch domain.Channel) error {
	if cl == nil {
		return nil
	}
	l, ok := cl.limiters[ch]
	if !ok {
		return fmt.Errorf("no limiter for channel %q", ch)
	}
	if err := l.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrRateLimited, err)
	}
	return nil
}
