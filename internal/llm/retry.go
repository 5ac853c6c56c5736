package llm

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"
)

// RetryProvider repeats transient failures with exponential backoff.
// A rejected reply (ErrInvalidResponse) is only retried once per call.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
	logger *slog.Logger

	// jitter returns a value in [0,1); swapped out in tests.
	jitter func() float64
	sleep  func(ctx context.Context, d time.Duration) error
}

// WithRetry wraps p with retry logic. MaxAttempts below 1 means a single
// attempt with no retries.
func WithRetry(p Provider, cfg RetryConfig, logger *slog.Logger) Provider {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &RetryProvider{
		inner:  p,
		config: cfg,
		logger: logger,
		jitter: rand.Float64,
		sleep:  sleepCtx,
	}
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	attempts := max(r.config.MaxAttempts, 1)
	rejected := 0

	for attempt := 1; ; attempt++ {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}

		var invalid *ErrInvalidResponse
		if errors.As(err, &invalid) {
			rejected++
		}
		if attempt >= attempts || !IsTransient(err) || rejected > 1 {
			return nil, err
		}

		wait := r.backoff(attempt, err)
		r.logger.WarnContext(ctx, "llm call failed, retrying",
			"model", r.inner.ModelID(),
			"purpose", PurposeFrom(ctx),
			"attempt", attempt,
			"wait", wait,
			"err", err)

		if err := r.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

// backoff is the wait after the given 1-based attempt. A rate limit with a
// Retry-After hint wins over the computed schedule.
func (r *RetryProvider) backoff(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}

	mult := r.config.Multiplier
	if mult < 1 {
		mult = 1
	}
	wait := float64(r.config.InitialWait) * math.Pow(mult, float64(attempt-1))
	if r.config.MaxWait > 0 {
		wait = math.Min(wait, float64(r.config.MaxWait))
	}

	// ±20%
	wait *= 0.8 + 0.4*r.jitter()
	return time.Duration(wait)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
