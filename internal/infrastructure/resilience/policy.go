package resilience

import "time"

type Config struct {
	// MaxConcurrent bounds parallel outbound calls to the AI capability.
	MaxConcurrent int
	// PacingInterval is the base delay between admitted requests.
	PacingInterval time.Duration
	// JitterMin/JitterMax bound the random delay added before each attempt
	// to desynchronize concurrent callers.
	JitterMin time.Duration
	JitterMax time.Duration
	// MaxAttempts caps attempts for quota-marked failures.
	MaxAttempts int
	// QuotaBackoffStep scales the wait after a quota failure: attempt * step.
	QuotaBackoffStep time.Duration

	BreakerEnabled          bool
	BreakerMinRequests      uint32
	BreakerFailureRatio     float64
	BreakerOpenTimeout      time.Duration
	BreakerHalfOpenMaxCalls uint32
}

func DefaultConfig() Config {
	return Config{
		MaxConcurrent:    5,
		PacingInterval:   500 * time.Millisecond,
		JitterMin:        100 * time.Millisecond,
		JitterMax:        500 * time.Millisecond,
		MaxAttempts:      3,
		QuotaBackoffStep: 4 * time.Second,

		BreakerEnabled:          false,
		BreakerMinRequests:      10,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      30 * time.Second,
		BreakerHalfOpenMaxCalls: 2,
	}
}

func (c Config) normalize() Config {
	out := c
	def := DefaultConfig()

	if out.MaxConcurrent <= 0 {
		out.MaxConcurrent = def.MaxConcurrent
	}
	if out.PacingInterval < 0 {
		out.PacingInterval = def.PacingInterval
	}
	if out.JitterMin < 0 {
		out.JitterMin = 0
	}
	if out.JitterMax < out.JitterMin {
		out.JitterMax = out.JitterMin
	}
	if out.MaxAttempts <= 0 {
		out.MaxAttempts = def.MaxAttempts
	}
	if out.QuotaBackoffStep < 0 {
		out.QuotaBackoffStep = def.QuotaBackoffStep
	}

	if out.BreakerMinRequests == 0 {
		out.BreakerMinRequests = def.BreakerMinRequests
	}
	if out.BreakerFailureRatio <= 0 || out.BreakerFailureRatio > 1 {
		out.BreakerFailureRatio = def.BreakerFailureRatio
	}
	if out.BreakerOpenTimeout <= 0 {
		out.BreakerOpenTimeout = def.BreakerOpenTimeout
	}
	if out.BreakerHalfOpenMaxCalls == 0 {
		out.BreakerHalfOpenMaxCalls = def.BreakerHalfOpenMaxCalls
	}

	return out
}
