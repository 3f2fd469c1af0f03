// Package ratelimiter は外部 API 呼び出しの頻度を制限します。
package ratelimiter

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter は呼び出しの間隔を最低 interval 空けるトークンバケットです。
type RateLimiter struct {
	limiter  *rate.Limiter
	interval time.Duration
}

// NewRateLimiter は interval ごとに 1 回、burst 回まで連続で許可する RateLimiter を生成します。
// interval <= 0 の場合は無制限になります。
func NewRateLimiter(interval time.Duration, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &RateLimiter{
		limiter:  rate.NewLimiter(limit, burst),
		interval: interval,
	}
}

// Wait はトークンが得られるまで待機します。ctx がキャンセルされた場合はそのエラーを返します。
func (rl *RateLimiter) Wait(ctx context.Context) error {
	r := rl.limiter.Reserve()
	if !r.OK() {
		return rl.limiter.Wait(ctx)
	}
	delay := r.Delay()
	if delay == 0 {
		return nil
	}

	slog.Debug("rate limit: waiting", "delay", delay, "interval", rl.interval)
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		r.Cancel()
		return ctx.Err()
	}
}
