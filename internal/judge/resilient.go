package judge

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/fortify/bulkhead"
	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/ratelimit"

	"github.com/felixgeelhaar/academy/internal/domain"
)

// ResilientExecutor wraps an Executor with resilience patterns from
// fortify. Retries are deliberately absent: a failed run is reported to
// the learner, never repeated behind their back.
type ResilientExecutor struct {
	executor       Executor
	circuitBreaker circuitbreaker.CircuitBreaker[*domain.ExecutionResult]
	bulkhead       bulkhead.Bulkhead[*domain.ExecutionResult]
	rateLimit      ratelimit.RateLimiter
	logger         *slog.Logger
}

// ResilientConfig holds configuration for the resilient wrapper
type ResilientConfig struct {
	// EnableCircuitBreaker enables circuit breaker pattern
	EnableCircuitBreaker bool

	// EnableBulkhead enables concurrency limiting
	EnableBulkhead bool

	// EnableRateLimit enables rate limiting
	EnableRateLimit bool

	// MaxConcurrent for bulkhead (default: 4)
	MaxConcurrent int

	// RatePerSecond for rate limiting (default: 2)
	RatePerSecond int

	// Logger for resilience events
	Logger *slog.Logger
}

// DefaultResilientConfig returns sensible defaults for judge calls
func DefaultResilientConfig() ResilientConfig {
	return ResilientConfig{
		EnableCircuitBreaker: true,
		EnableBulkhead:       true,
		EnableRateLimit:      true,
		MaxConcurrent:        4,
		RatePerSecond:        2,
	}
}

// NewResilientExecutor wraps an executor with resilience patterns
func NewResilientExecutor(executor Executor, cfg ResilientConfig) *ResilientExecutor {
	re := &ResilientExecutor{
		executor: executor,
		logger:   cfg.Logger,
	}

	if cfg.EnableCircuitBreaker {
		re.circuitBreaker = circuitbreaker.New[*domain.ExecutionResult](circuitbreaker.Config{
			MaxRequests: 2,
			Interval:    10 * time.Second,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts circuitbreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
			OnStateChange: func(from, to circuitbreaker.State) {
				if re.logger != nil {
					re.logger.Warn("judge circuit breaker state change",
						"from", from.String(),
						"to", to.String())
				}
			},
		})
	}

	if cfg.EnableBulkhead {
		maxConcurrent := cfg.MaxConcurrent
		if maxConcurrent <= 0 {
			maxConcurrent = 4
		}
		re.bulkhead = bulkhead.New[*domain.ExecutionResult](bulkhead.Config{
			MaxConcurrent: maxConcurrent,
			MaxQueue:      maxConcurrent * 2,
			QueueTimeout:  30 * time.Second,
		})
	}

	if cfg.EnableRateLimit {
		rate := cfg.RatePerSecond
		if rate <= 0 {
			rate = 2
		}
		re.rateLimit = ratelimit.New(&ratelimit.Config{
			Rate:     rate,
			Burst:    rate * 3,
			Interval: time.Second,
		})
	}

	return re
}

// Execute applies rate limiting, bulkhead and circuit breaking around
// the wrapped executor's Execute.
func (e *ResilientExecutor) Execute(ctx context.Context, exerciseID int64, code, stdin string) (*domain.ExecutionResult, error) {
	if e.rateLimit != nil {
		if !e.rateLimit.Allow(ctx, "judge") {
			return nil, fmt.Errorf("rate limit exceeded for judge executions")
		}
	}

	operation := func(ctx context.Context) (*domain.ExecutionResult, error) {
		return e.executor.Execute(ctx, exerciseID, code, stdin)
	}

	if e.bulkhead != nil {
		inner := operation
		operation = func(ctx context.Context) (*domain.ExecutionResult, error) {
			return e.bulkhead.Execute(ctx, inner)
		}
	}

	if e.circuitBreaker != nil {
		return e.circuitBreaker.Execute(ctx, operation)
	}

	return operation(ctx)
}

// Close releases resources held by the resilient executor
func (e *ResilientExecutor) Close() error {
	if e.rateLimit != nil {
		return e.rateLimit.Close()
	}
	return nil
}
