package rate

import (
	"context"
	"fmt"
	"time"
)

// Counters is the slice of the cache the limiter needs.
type Counters interface {
	Set(ctx context.Context, namespace, key string, value interface{}, ttl time.Duration) error
	GetTTL(ctx context.Context, namespace, key string) (time.Duration, error)
	IncrWithExpire(ctx context.Context, namespace, key string, window time.Duration) (int64, error)
}

type Limiter struct {
	cache       Counters
	window      time.Duration
	maxInWindow int
	cooldown    time.Duration
}

func NewLimiter(cache Counters, window time.Duration, max int, cooldown time.Duration) *Limiter {
	return &Limiter{cache: cache, window: window, maxInWindow: max, cooldown: cooldown}
}

// CanRequest enforces a per-recipient cooldown between OTP requests plus a
// hard cap per window; exceeding the cap blocks for three windows.
func (l *Limiter) CanRequest(ctx context.Context, recipient, purpose string) error {
	blockKey := fmt.Sprintf("otp:block:%s:%s", recipient, purpose)
	lastKey := fmt.Sprintf("otp:last:%s:%s", recipient, purpose)
	countKey := fmt.Sprintf("otp:count:%s:%s", recipient, purpose)

	if ttl, _ := l.cache.GetTTL(ctx, "otp_rate", blockKey); ttl > 0 {
		return fmt.Errorf("too many OTP requests; please try again after %d seconds", int(ttl.Seconds()))
	}

	if ttl, _ := l.cache.GetTTL(ctx, "otp_rate", lastKey); ttl > 0 {
		return fmt.Errorf("please wait %d seconds before requesting another OTP", int(ttl.Seconds()))
	}

	cnt, err := l.cache.IncrWithExpire(ctx, "otp_rate", countKey, l.window)
	if err != nil {
		return err
	}

	if int(cnt) > l.maxInWindow {
		_ = l.cache.Set(ctx, "otp_rate", blockKey, "1", l.window*3)
		return fmt.Errorf("too many OTP requests; please try again after %d seconds", int((l.window * 3).Seconds()))
	}

	_ = l.cache.Set(ctx, "otp_rate", lastKey, "1", l.cooldown)

	return nil
}
