package resolver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/md-check-link/internal/link"
)

// DefaultTimeout bounds a single request when none is configured.
const DefaultTimeout = 10 * time.Second

// Prober performs one HTTP request and reports its status code. Transport
// failures are returned as errors.
type Prober interface {
	Probe(ctx context.Context, method, url string, headers http.Header) (int, error)
}

// Sleeper waits for a duration or until ctx ends.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// Limiter paces requests per host.
type Limiter interface {
	Wait(ctx context.Context, url string) error
}

// Config configures a Resolver.
type Config struct {
	Timeout time.Duration
	Retry   RetryPolicy
	Headers Headers
	// Limiter is optional; nil sends requests unpaced.
	Limiter Limiter
}

// Result describes how a link resolved.
type Result struct {
	Status link.Status
	// StatusCode is the last HTTP status seen, 0 on transport failure.
	StatusCode int
	// Attempts counts HEAD probes, including rate-limited retries.
	Attempts int
	// UsedGET is set when the verdict came from the GET fallback.
	UsedGET bool
	Err     error
	Elapsed time.Duration
}

// Resolver verifies remote links.
type Resolver struct {
	prober  Prober
	sleeper Sleeper
	cfg     Config
	logger  *zap.Logger
}

// New builds a Resolver.
func New(prober Prober, sleeper Sleeper, cfg Config, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Resolver{prober: prober, sleeper: sleeper, cfg: cfg, logger: logger}
}

// Resolve returns the verdict for a remote link. It never panics or returns
// an error: every failure is folded into the error verdict.
func (r *Resolver) Resolve(ctx context.Context, l string) Result {
	start := time.Now()
	res := r.resolve(ctx, l)
	res.Elapsed = time.Since(start)
	return res
}

func (r *Resolver) resolve(ctx context.Context, l string) Result {
	headers := r.cfg.Headers.For(l)
	var res Result
	for attempt := 0; ; attempt++ {
		res.Attempts++
		code, err := r.probe(ctx, http.MethodHead, l, headers)
		if err != nil {
			return failed(res, err)
		}
		res.StatusCode = code

		switch code {
		case http.StatusOK:
			res.Status = link.StatusAlive
			return res
		case http.StatusTooManyRequests:
			if !r.cfg.Retry.ShouldRetry(attempt) {
				res.Status = link.StatusDead
				return res
			}
			wait := r.cfg.Retry.Backoff(attempt)
			r.logger.Debug("rate limited, backing off",
				zap.String("link", l),
				zap.Int("attempt", attempt),
				zap.Duration("wait", wait),
			)
			if err := r.sleep(ctx, wait); err != nil {
				return failed(res, err)
			}
		default:
			code, err = r.probe(ctx, http.MethodGet, l, headers)
			res.UsedGET = true
			if err != nil {
				return failed(res, err)
			}
			res.StatusCode = code
			if code == http.StatusOK {
				res.Status = link.StatusAlive
			} else {
				res.Status = link.StatusDead
			}
			return res
		}
	}
}

func (r *Resolver) probe(ctx context.Context, method, l string, headers http.Header) (int, error) {
	if r.cfg.Limiter != nil {
		if err := r.cfg.Limiter.Wait(ctx, l); err != nil {
			return 0, fmt.Errorf("pace %s: %w", method, err)
		}
	}
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()
	code, err := r.prober.Probe(ctx, method, l, headers)
	if err != nil {
		return 0, fmt.Errorf("probe: %w", err)
	}
	return code, nil
}

func (r *Resolver) sleep(ctx context.Context, d time.Duration) error {
	if r.sleeper == nil {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return fmt.Errorf("backoff canceled: %w", ctx.Err())
		case <-t.C:
			return nil
		}
	}
	if err := r.sleeper.Sleep(ctx, d); err != nil {
		return fmt.Errorf("backoff: %w", err)
	}
	return nil
}

func failed(res Result, err error) Result {
	res.Status = link.StatusError
	res.StatusCode = 0
	res.Err = err
	return res
}
