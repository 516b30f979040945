// Package resilience is the single chokepoint for calls to the external AI
// capability: a process-wide concurrency limit, paced and jittered admission,
// and quota-aware retry with a hard attempt ceiling.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// ErrExhaustedRetries is returned when every permitted attempt failed with a
// quota-marked error. Callers must degrade to their fallback path.
var ErrExhaustedRetries = errors.New("exhausted retries")

var quotaMarkers = []string{
	"429",
	"resource_exhausted",
	"quota",
	"rate limit",
	"too many requests",
}

// IsQuota reports whether err looks like a transient quota/throttling
// condition, recognized by inspecting the error text for known markers.
func IsQuota(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range quotaMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

type Executor struct {
	cfg     Config
	permits chan struct{}
	pacer   *rate.Limiter

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[any]
}

func NewExecutor(cfg Config) *Executor {
	cfg = cfg.normalize()
	pace := rate.Inf
	if cfg.PacingInterval > 0 {
		pace = rate.Every(cfg.PacingInterval)
	}
	return &Executor{
		cfg:      cfg,
		permits:  make(chan struct{}, cfg.MaxConcurrent),
		pacer:    rate.NewLimiter(pace, 1),
		breakers: make(map[string]*gobreaker.CircuitBreaker[any]),
	}
}

// Execute runs fn under the shared concurrency permit with paced, jittered
// admission. Quota-marked failures are retried with backoff scaled by the
// attempt index up to MaxAttempts, then surfaced as ErrExhaustedRetries.
// Any other error propagates immediately without retry.
func (e *Executor) Execute(ctx context.Context, operation string, fn func(context.Context) error) error {
	if fn == nil {
		return fmt.Errorf("resilience: operation callback is nil")
	}
	op := strings.TrimSpace(operation)
	if op == "" {
		op = "unknown"
	}

	if !e.cfg.BreakerEnabled {
		return e.executeWithRetry(ctx, op, fn)
	}

	breaker := e.circuitBreaker(op)
	_, err := breaker.Execute(func() (any, error) {
		return nil, e.executeWithRetry(ctx, op, fn)
	})
	return err
}

func (e *Executor) executeWithRetry(ctx context.Context, operation string, fn func(context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= e.cfg.MaxAttempts; attempt++ {
		err := e.attempt(ctx, fn)
		if err == nil {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !IsQuota(err) {
			return err
		}

		lastErr = err
		if attempt == e.cfg.MaxAttempts {
			break
		}

		backoff := time.Duration(attempt) * e.cfg.QuotaBackoffStep
		slog.Warn("quota_backoff",
			"operation", operation,
			"attempt", attempt,
			"max_attempts", e.cfg.MaxAttempts,
			"backoff_ms", float64(backoff.Microseconds())/1000.0,
			"error", err,
		)
		if err := sleepCtx(ctx, backoff); err != nil {
			return err
		}
	}

	return fmt.Errorf("%s: %w: %w", operation, ErrExhaustedRetries, lastErr)
}

// attempt holds one permit for the duration of a single outbound call.
func (e *Executor) attempt(ctx context.Context, fn func(context.Context) error) error {
	select {
	case e.permits <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-e.permits }()

	if err := e.pacer.Wait(ctx); err != nil {
		return err
	}
	if err := sleepCtx(ctx, e.jitter()); err != nil {
		return err
	}

	return fn(ctx)
}

func (e *Executor) jitter() time.Duration {
	window := e.cfg.JitterMax - e.cfg.JitterMin
	if window <= 0 {
		return e.cfg.JitterMin
	}
	return e.cfg.JitterMin + time.Duration(rand.Int63n(int64(window)))
}

func (e *Executor) circuitBreaker(operation string) *gobreaker.CircuitBreaker[any] {
	e.mu.Lock()
	defer e.mu.Unlock()

	if breaker, ok := e.breakers[operation]; ok {
		return breaker
	}

	settings := gobreaker.Settings{
		Name:        operation,
		MaxRequests: e.cfg.BreakerHalfOpenMaxCalls,
		Timeout:     e.cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < e.cfg.BreakerMinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= e.cfg.BreakerFailureRatio
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			slog.Warn("circuit_breaker_state_change", "operation", name, "from", from.String(), "to", to.String())
		},
	}

	breaker := gobreaker.NewCircuitBreaker[any](settings)
	e.breakers[operation] = breaker
	return breaker
}

func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
