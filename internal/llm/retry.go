package llm

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

// Retrying re-sends failed requests with capped exponential backoff.
// Only *Error failures are retried. Authentication and truncation failures
// are final and an invalid reply is retried once.
type Retrying struct {
	next Provider
	cfg  RetryConfig

	// jitter scales a computed wait; tests replace it to get exact waits.
	jitter func(time.Duration) time.Duration
}

// WithRetry wraps p. A MaxAttempts below one means a single attempt.
func WithRetry(p Provider, cfg RetryConfig) *Retrying {
	return &Retrying{next: p, cfg: cfg, jitter: spread}
}

func (r *Retrying) ModelID() string { return r.next.ModelID() }

func (r *Retrying) Generate(ctx context.Context, req Request) (*Response, error) {
	attempts := max(r.cfg.MaxAttempts, 1)
	invalid := 0
	for n := 0; ; n++ {
		resp, err := r.next.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}

		kind, ok := KindOf(err)
		if !ok || kind == KindAuth || kind == KindTruncated || n+1 >= attempts {
			return nil, err
		}
		if kind == KindInvalid {
			if invalid++; invalid > 1 {
				return nil, err
			}
		}

		t := time.NewTimer(r.wait(n, err))
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}
}

func (r *Retrying) wait(n int, err error) time.Duration {
	var e *Error
	if errors.As(err, &e) && e.RetryAfter > 0 {
		return e.RetryAfter
	}
	d := r.cfg.InitialWait
	for range n {
		d = time.Duration(float64(d) * r.cfg.Multiplier)
		if r.cfg.MaxWait > 0 && d >= r.cfg.MaxWait {
			d = r.cfg.MaxWait
			break
		}
	}
	return r.jitter(d)
}

// spread returns d adjusted by up to 20% either way.
func spread(d time.Duration) time.Duration {
	f := 0.8 + 0.4*rand.Float64()
	return time.Duration(float64(d) * f)
}
