package throttle

import (
	"fmt"
	"time"
)

// Config controls request pacing and backoff behavior.
type Config struct {
	// RequestsPerSecond is the sustained token refill rate. Must be positive.
	RequestsPerSecond float64

	// BurstLimit is the bucket capacity and also the maximum number of
	// in-flight acquisitions. Must be at least 1.
	BurstLimit int

	// BackoffBase is the first backoff delay after a throttle response.
	BackoffBase time.Duration

	// BackoffMax caps the backoff delay.
	BackoffMax time.Duration

	// BackoffMultiplier grows the delay after each consecutive throttle
	// response. Must be greater than 1.
	BackoffMultiplier float64

	// RetryAttempts is the number of throttle retries allowed before
	// OnThrottled starts reporting false. Zero disables retrying.
	RetryAttempts int
}

// DefaultConfig returns the pacing defaults: 5 requests/second with a burst
// of 10, and 1s..60s doubling backoff with 3 retries.
func DefaultConfig() Config {
	return Config{
		RequestsPerSecond: 5.0,
		BurstLimit:        10,
		BackoffBase:       time.Second,
		BackoffMax:        60 * time.Second,
		BackoffMultiplier: 2.0,
		RetryAttempts:     3,
	}
}

// Validate checks the configuration for values the limiter cannot run with.
func (c Config) Validate() error {
	if c.RequestsPerSecond <= 0 {
		return fmt.Errorf("requests per second must be positive, got %g", c.RequestsPerSecond)
	}
	if c.BurstLimit < 1 {
		return fmt.Errorf("burst limit must be at least 1, got %d", c.BurstLimit)
	}
	if c.BackoffBase <= 0 {
		return fmt.Errorf("backoff base must be positive, got %s", c.BackoffBase)
	}
	if c.BackoffBase > c.BackoffMax {
		return fmt.Errorf("backoff base %s exceeds backoff max %s", c.BackoffBase, c.BackoffMax)
	}
	if c.BackoffMultiplier <= 1 {
		return fmt.Errorf("backoff multiplier must be greater than 1, got %g", c.BackoffMultiplier)
	}
	if c.RetryAttempts < 0 {
		return fmt.Errorf("retry attempts must not be negative, got %d", c.RetryAttempts)
	}
	return nil
}
