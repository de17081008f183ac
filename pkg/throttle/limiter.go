// Package throttle paces outbound requests during API discovery.
//
// A Limiter combines three mechanisms behind one small surface:
//   - a token bucket capping the sustained request rate,
//   - a semaphore capping in-flight concurrency,
//   - exponential backoff driven by server throttle responses.
//
// The bucket and the backoff state are independent: draining tokens never
// grows the backoff, and a throttle response never touches the bucket.
package throttle

import (
	"context"
	"sync"
	"time"
)

// Limiter is a concurrency-bounded token bucket with throttle-response
// backoff. It is safe for concurrent use; Acquire and OnThrottled block
// only the calling goroutine.
type Limiter struct {
	cfg Config
	sem chan struct{}

	mu         sync.Mutex
	tokens     float64
	lastUpdate time.Time
	backoff    time.Duration

	requestsMade    int64
	requestsDelayed int64
	totalWait       time.Duration
	throttleHits    int64
	retries         int64
}

// New creates a Limiter for the given configuration. The bucket starts
// full. Invalid configurations are rejected here and never surface as
// mid-run errors.
func New(cfg Config) (*Limiter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Limiter{
		cfg:        cfg,
		sem:        make(chan struct{}, cfg.BurstLimit),
		tokens:     float64(cfg.BurstLimit),
		lastUpdate: time.Now(),
		backoff:    cfg.BackoffBase,
	}, nil
}

// refill adds tokens based on elapsed time. Caller must hold l.mu.
func (l *Limiter) refill(now time.Time) {
	elapsed := now.Sub(l.lastUpdate).Seconds()
	l.tokens += elapsed * l.cfg.RequestsPerSecond
	if l.tokens > float64(l.cfg.BurstLimit) {
		l.tokens = float64(l.cfg.BurstLimit)
	}
	l.lastUpdate = now
}

// Acquire blocks until an in-flight slot and a rate token are both held,
// or ctx is cancelled. On success the caller owns one slot and must call
// Release exactly once when the request completes. On cancellation the
// slot is returned before the error, so no Release is owed.
func (l *Limiter) Acquire(ctx context.Context) error {
	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := l.waitForToken(ctx); err != nil {
		<-l.sem
		return err
	}
	return nil
}

func (l *Limiter) waitForToken(ctx context.Context) error {
	for {
		l.mu.Lock()
		l.refill(time.Now())
		if l.tokens >= 1 {
			l.tokens--
			l.requestsMade++
			l.mu.Unlock()
			return nil
		}
		wait := time.Duration((1 - l.tokens) / l.cfg.RequestsPerSecond * float64(time.Second))
		l.requestsDelayed++
		l.totalWait += wait
		l.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			// Another waiter may have taken the refilled token; loop
			// and check again rather than assuming it is ours.
		}
	}
}

// Release returns the in-flight slot taken by a successful Acquire.
// Releasing without an outstanding acquisition is a no-op.
func (l *Limiter) Release() {
	select {
	case <-l.sem:
	default:
	}
}

// OnThrottled records a throttle response from the server and decides
// whether the caller should retry. The wait is the retryAfter hint when the
// server sent one; otherwise the current backoff delay, which then grows by
// the multiplier up to the ceiling. When the retry budget is already spent
// the call returns false immediately without waiting. Otherwise it sleeps
// for the wait and returns true.
func (l *Limiter) OnThrottled(retryAfter *time.Duration) bool {
	l.mu.Lock()
	l.throttleHits++

	var wait time.Duration
	if retryAfter != nil {
		wait = *retryAfter
	} else {
		wait = l.backoff
		next := time.Duration(float64(l.backoff) * l.cfg.BackoffMultiplier)
		if next > l.cfg.BackoffMax {
			next = l.cfg.BackoffMax
		}
		l.backoff = next
	}

	if l.retries >= int64(l.cfg.RetryAttempts) {
		l.mu.Unlock()
		return false
	}
	l.retries++
	l.totalWait += wait
	l.mu.Unlock()

	time.Sleep(wait)
	return true
}

// OnSuccess resets the backoff delay to its base and clears the
// consecutive retry count. Call it after any request that was not
// throttled.
func (l *Limiter) OnSuccess() {
	l.mu.Lock()
	l.backoff = l.cfg.BackoffBase
	l.retries = 0
	l.mu.Unlock()
}

// Available returns the current token count including time-based refill.
func (l *Limiter) Available() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	elapsed := time.Since(l.lastUpdate).Seconds()
	tokens := l.tokens + elapsed*l.cfg.RequestsPerSecond
	if tokens > float64(l.cfg.BurstLimit) {
		tokens = float64(l.cfg.BurstLimit)
	}
	return tokens
}

// InFlight returns the number of acquisitions not yet released.
func (l *Limiter) InFlight() int {
	return len(l.sem)
}

// CurrentBackoff returns the delay the next hint-less throttle response
// would wait for.
func (l *Limiter) CurrentBackoff() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.backoff
}
