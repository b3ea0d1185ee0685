package advices

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"strconv"
	"time"

	"github.com/AntonStoeckl/dynamic-aspects-go/aspect"
)

const (
	defaultMaxAttempts  = 3
	defaultBaseDelay    = 10 * time.Millisecond
	defaultJitterFactor = 0.3
	defaultMaxDelay     = 10 * time.Second

	metricRetryAttempts  = "aspect_retry_attempts_total"
	metricRetryDelay     = "aspect_retry_delay_seconds"
	metricRetryExhausted = "aspect_retry_exhausted_total"

	labelTarget         = "target"
	labelAttemptNumber  = "attempt_number"
	labelErrorType      = "error_type"
	labelFinalErrorType = "final_error_type"

	errorTypeNone             = "none"
	errorTypeContextCanceled  = "context_canceled"
	errorTypeDeadlineExceeded = "context_deadline_exceeded"
	errorTypeOther            = "other"
)

var (
	// ErrNilMetricsCollector is returned when a nil metrics collector is provided to WithMetrics.
	ErrNilMetricsCollector = errors.New("metrics collector must not be nil")

	// ErrEmptyMetricsTarget is returned when an empty target label is provided to WithMetrics.
	ErrEmptyMetricsTarget = errors.New("metrics target must not be empty")

	// ErrInvalidMaxAttempts is returned when max attempts are not positive.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")

	// ErrNegativeBaseDelay is returned when the base delay is negative.
	ErrNegativeBaseDelay = errors.New("base delay must not be negative")

	// ErrInvalidMaxDelay is returned when the maximum delay is not positive.
	ErrInvalidMaxDelay = errors.New("max delay must be positive")

	// ErrInvalidJitterFactor is returned when the jitter factor is not between 0.0 and 1.0.
	ErrInvalidJitterFactor = errors.New("jitter factor must be between 0.0 and 1.0")

	// ErrNilRetryPredicate is returned when a nil predicate is provided to WithRetryIf.
	ErrNilRetryPredicate = errors.New("retry predicate must not be nil")
)

// RetryPredicate reports whether a failed call should be attempted again.
type RetryPredicate func(err error) bool

type retryConfig struct {
	maxAttempts      int
	baseDelay        time.Duration
	maxDelay         time.Duration
	jitterFactor     float64
	retryable        RetryPredicate
	metricsCollector aspect.MetricsCollector
	target           string
}

// RetryOption configures Retry using the functional options pattern.
type RetryOption func(*retryConfig) error

// Retry returns an around wrapper that calls next again while it fails with a retryable error,
// up to the configured number of attempts.
//
// Retry schedule (default): 0 ms, 10 ms, 20 ms (with 30% jitter), each delay capped at 10 s.
//
// By default every error is retryable except context cancellation and deadline expiry, which
// fail fast. Arguments are passed unchanged to every attempt. When the attempts are exhausted,
// the last error is returned.
func Retry(options ...RetryOption) (aspect.AroundFunc, error) {
	config := &retryConfig{
		maxAttempts:  defaultMaxAttempts,
		baseDelay:    defaultBaseDelay,
		maxDelay:     defaultMaxDelay,
		jitterFactor: defaultJitterFactor,
		retryable:    isRetryableByDefault,
	}

	for _, option := range options {
		if err := option(config); err != nil {
			return nil, err
		}
	}

	return func(ctx context.Context, next aspect.NextFunc, _ any, args aspect.Args) (any, error) {
		return config.run(ctx, next, args)
	}, nil
}

func (c *retryConfig) run(ctx context.Context, next aspect.NextFunc, args aspect.Args) (any, error) {
	var lastErr error

	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := c.backoff(attempt)
			jitter := rand.Float64() * float64(delay) * c.jitterFactor //nolint:gosec // math/rand is sufficient for jitter
			backoffDelay := time.Duration(math.MaxInt64)
			if jitter < float64(math.MaxInt64-delay) {
				backoffDelay = delay + time.Duration(jitter)
			}

			c.recordDelay(ctx, attempt, backoffDelay)

			select {
			case <-time.After(backoffDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		result, err := next(ctx, args)
		if err == nil {
			return result, nil
		}

		lastErr = err
		if !c.retryable(err) {
			return nil, err
		}

		if attempt < c.maxAttempts-1 {
			c.recordAttempt(ctx, attempt+1, err)
		}
	}

	c.recordExhausted(ctx, lastErr)

	return nil, lastErr
}

// backoff returns baseDelay * 2^(attempt-1), capped at maxDelay.
func (c *retryConfig) backoff(attempt int) time.Duration {
	delay := c.baseDelay
	for i := 1; i < attempt; i++ {
		if delay > c.maxDelay/2 {
			return c.maxDelay
		}
		delay *= 2
	}

	return min(delay, c.maxDelay)
}

func isRetryableByDefault(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func errorType(err error) string {
	switch {
	case err == nil:
		return errorTypeNone
	case errors.Is(err, context.Canceled):
		return errorTypeContextCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return errorTypeDeadlineExceeded
	default:
		return errorTypeOther
	}
}

func (c *retryConfig) recordDelay(ctx context.Context, attempt int, delay time.Duration) {
	if c.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		labelTarget:        c.target,
		labelAttemptNumber: strconv.Itoa(attempt),
	}

	if contextualCollector, ok := c.metricsCollector.(aspect.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metricRetryDelay, delay, labels)
	} else {
		c.metricsCollector.RecordDuration(metricRetryDelay, delay, labels)
	}
}

func (c *retryConfig) recordAttempt(ctx context.Context, attempt int, err error) {
	if c.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		labelTarget:        c.target,
		labelAttemptNumber: strconv.Itoa(attempt),
		labelErrorType:     errorType(err),
	}

	if contextualCollector, ok := c.metricsCollector.(aspect.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metricRetryAttempts, labels)
	} else {
		c.metricsCollector.IncrementCounter(metricRetryAttempts, labels)
	}
}

func (c *retryConfig) recordExhausted(ctx context.Context, lastErr error) {
	if c.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		labelTarget:         c.target,
		labelFinalErrorType: errorType(lastErr),
	}

	if contextualCollector, ok := c.metricsCollector.(aspect.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metricRetryExhausted, labels)
	} else {
		c.metricsCollector.IncrementCounter(metricRetryExhausted, labels)
	}
}

// WithMaxAttempts sets the maximum number of attempts, including the first one.
func WithMaxAttempts(attempts int) RetryOption {
	return func(config *retryConfig) error {
		if attempts <= 0 {
			return ErrInvalidMaxAttempts
		}

		config.maxAttempts = attempts

		return nil
	}
}

// WithBaseDelay sets the base delay for exponential backoff.
// Actual delays: baseDelay, baseDelay*2, baseDelay*4, etc.
func WithBaseDelay(delay time.Duration) RetryOption {
	return func(config *retryConfig) error {
		if delay < 0 {
			return ErrNegativeBaseDelay
		}

		config.baseDelay = delay

		return nil
	}
}

// WithMaxDelay caps the backoff delay before jitter is added.
func WithMaxDelay(delay time.Duration) RetryOption {
	return func(config *retryConfig) error {
		if delay <= 0 {
			return ErrInvalidMaxDelay
		}

		config.maxDelay = delay

		return nil
	}
}

// WithJitterFactor sets the jitter added as a fraction of each backoff delay.
// Valid range: 0.0 (no jitter) to 1.0 (100% jitter).
func WithJitterFactor(factor float64) RetryOption {
	return func(config *retryConfig) error {
		if factor < 0.0 || factor > 1.0 {
			return ErrInvalidJitterFactor
		}

		config.jitterFactor = factor

		return nil
	}
}

// WithRetryIf replaces the default retry decision.
func WithRetryIf(predicate RetryPredicate) RetryOption {
	return func(config *retryConfig) error {
		if predicate == nil {
			return ErrNilRetryPredicate
		}

		config.retryable = predicate

		return nil
	}
}

// WithRetryableErrors retries only errors matching one of targets via errors.Is.
func WithRetryableErrors(targets ...error) RetryOption {
	return WithRetryIf(func(err error) bool {
		for _, target := range targets {
			if errors.Is(err, target) {
				return true
			}
		}

		return false
	})
}

// WithMetrics sets the metrics collector for retry instrumentation.
// target labels the metrics, typically the advised Target's String().
func WithMetrics(collector aspect.MetricsCollector, target string) RetryOption {
	return func(config *retryConfig) error {
		if collector == nil {
			return ErrNilMetricsCollector
		}

		if target == "" {
			return ErrEmptyMetricsTarget
		}

		config.metricsCollector = collector
		config.target = target

		return nil
	}
}
