package throttle

import (
	"context"
	"sync"
	"testing"
	"time"
)

// testConfig returns a config with millisecond-scale backoff so tests
// never sleep for real-world durations.
func testConfig() Config {
	return Config{
		RequestsPerSecond: 100,
		BurstLimit:        5,
		BackoffBase:       5 * time.Millisecond,
		BackoffMax:        40 * time.Millisecond,
		BackoffMultiplier: 2.0,
		RetryAttempts:     3,
	}
}

func TestDefaultConfig_Values(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()

	if cfg.RequestsPerSecond != 5.0 {
		t.Errorf("expected 5 requests/second, got %v", cfg.RequestsPerSecond)
	}
	if cfg.BurstLimit != 10 {
		t.Errorf("expected burst 10, got %d", cfg.BurstLimit)
	}
	if cfg.BackoffBase != time.Second {
		t.Errorf("expected 1s backoff base, got %v", cfg.BackoffBase)
	}
	if cfg.BackoffMax != 60*time.Second {
		t.Errorf("expected 60s backoff max, got %v", cfg.BackoffMax)
	}
	if cfg.BackoffMultiplier != 2.0 {
		t.Errorf("expected multiplier 2, got %v", cfg.BackoffMultiplier)
	}
	if cfg.RetryAttempts != 3 {
		t.Errorf("expected 3 retry attempts, got %d", cfg.RetryAttempts)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero rate", func(c *Config) { c.RequestsPerSecond = 0 }},
		{"negative rate", func(c *Config) { c.RequestsPerSecond = -1 }},
		{"zero burst", func(c *Config) { c.BurstLimit = 0 }},
		{"zero backoff base", func(c *Config) { c.BackoffBase = 0 }},
		{"base above max", func(c *Config) { c.BackoffBase = time.Minute; c.BackoffMax = time.Second }},
		{"multiplier of one", func(c *Config) { c.BackoffMultiplier = 1.0 }},
		{"negative retries", func(c *Config) { c.RetryAttempts = -1 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tc.mutate(&cfg)

			if _, err := New(cfg); err == nil {
				t.Errorf("expected New to reject config with %s", tc.name)
			}
		})
	}
}

func TestAcquire_ImmediateWhenTokensAvailable(t *testing.T) {
	t.Parallel()
	l, err := New(testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	start := time.Now()
	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer l.Release()

	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("Acquire took too long (%v), expected near-instant", elapsed)
	}
}

func TestAcquire_BucketStartsFull(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.RequestsPerSecond = 1 // no meaningful refill during the test
	cfg.BurstLimit = 3
	l, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := l.Acquire(ctx); err != nil {
			t.Fatalf("Acquire #%d: %v", i+1, err)
		}
		l.Release()
	}
	if avail := l.Available(); avail > 0.5 {
		t.Errorf("expected near-empty bucket after draining burst, got %v", avail)
	}
}

func TestAcquire_BlocksUntilRefill(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.RequestsPerSecond = 100
	cfg.BurstLimit = 1
	l, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := context.Background()
	if err := l.Acquire(ctx); err != nil {
		t.Fatalf("first Acquire: %v", err)
	}
	l.Release()

	start := time.Now()
	if err := l.Acquire(ctx); err != nil {
		t.Fatalf("second Acquire: %v", err)
	}
	l.Release()
	elapsed := time.Since(start)

	if elapsed < 5*time.Millisecond {
		t.Errorf("second Acquire returned too quickly (%v), expected some blocking", elapsed)
	}
}

func TestAcquire_NeverFasterThanRate(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.RequestsPerSecond = 50
	cfg.BurstLimit = 5
	l, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// 20 acquisitions against burst 5 at 50/s need at least
	// (20-5)/50 = 300ms of refill.
	ctx := context.Background()
	start := time.Now()
	for i := 0; i < 20; i++ {
		if err := l.Acquire(ctx); err != nil {
			t.Fatalf("Acquire #%d: %v", i+1, err)
		}
		l.Release()
	}
	elapsed := time.Since(start)

	if elapsed < 250*time.Millisecond {
		t.Errorf("20 acquisitions finished in %v, faster than the configured rate allows", elapsed)
	}
	if elapsed > 3*time.Second {
		t.Errorf("20 acquisitions took %v, expected well under 3s", elapsed)
	}
}

func TestAcquire_ReturnsContextErrorOnCancel(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.RequestsPerSecond = 0.5 // one token every 2 seconds
	cfg.BurstLimit = 1
	l, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("first Acquire: %v", err)
	}
	l.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err = l.Acquire(ctx)
	if err == nil {
		t.Fatal("expected context error, got nil")
	}
	if err != context.DeadlineExceeded {
		t.Errorf("expected DeadlineExceeded, got %v", err)
	}
	// The slot taken while waiting for a token must have been returned.
	if n := l.InFlight(); n != 0 {
		t.Errorf("expected 0 in-flight after cancelled Acquire, got %d", n)
	}
}

func TestAcquire_BoundsInFlightConcurrency(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.RequestsPerSecond = 1000 // tokens never the bottleneck
	cfg.BurstLimit = 2
	l, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := context.Background()
	if err := l.Acquire(ctx); err != nil {
		t.Fatalf("first Acquire: %v", err)
	}
	if err := l.Acquire(ctx); err != nil {
		t.Fatalf("second Acquire: %v", err)
	}
	if n := l.InFlight(); n != 2 {
		t.Fatalf("expected 2 in-flight, got %d", n)
	}

	// Third acquisition must block on the semaphore.
	blocked, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	if err := l.Acquire(blocked); err != context.DeadlineExceeded {
		t.Errorf("expected third Acquire to block until deadline, got %v", err)
	}

	// Releasing a slot unblocks the next acquisition.
	l.Release()
	if err := l.Acquire(ctx); err != nil {
		t.Errorf("Acquire after Release: %v", err)
	}

	l.Release()
	l.Release()
	if n := l.InFlight(); n != 0 {
		t.Errorf("expected 0 in-flight after releasing all, got %d", n)
	}
}

func TestRelease_WithoutAcquireIsNoOp(t *testing.T) {
	t.Parallel()
	l, err := New(testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	l.Release() // nothing outstanding

	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire after stray Release: %v", err)
	}
	if n := l.InFlight(); n != 1 {
		t.Errorf("expected 1 in-flight, got %d", n)
	}
	l.Release()
}

func TestAcquire_HandlesContention(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.RequestsPerSecond = 200
	cfg.BurstLimit = 5
	l, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	const n = 10
	var wg sync.WaitGroup
	errs := make([]error, n)

	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(idx int) {
			defer wg.Done()
			if err := l.Acquire(ctx); err != nil {
				errs[idx] = err
				return
			}
			l.Release()
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("goroutine %d got error: %v", i, err)
		}
	}
}

func TestAvailable_CappedAtBurst(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.RequestsPerSecond = 1000
	cfg.BurstLimit = 3
	l, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	time.Sleep(20 * time.Millisecond) // plenty of refill time

	if avail := l.Available(); avail > 3 {
		t.Errorf("expected available tokens capped at burst 3, got %v", avail)
	}
}

func TestOnThrottled_BackoffGrowsToCeiling(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.BackoffBase = 10 * time.Millisecond
	cfg.BackoffMax = 40 * time.Millisecond
	cfg.RetryAttempts = 0 // never sleeps, backoff still advances
	l, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	want := []time.Duration{
		20 * time.Millisecond,
		40 * time.Millisecond,
		40 * time.Millisecond, // clamped
		40 * time.Millisecond,
	}
	if got := l.CurrentBackoff(); got != 10*time.Millisecond {
		t.Fatalf("expected initial backoff 10ms, got %v", got)
	}
	for i, w := range want {
		if retry := l.OnThrottled(nil); retry {
			t.Fatalf("call %d: expected no retry with a zero retry budget", i+1)
		}
		if got := l.CurrentBackoff(); got != w {
			t.Errorf("after call %d: expected backoff %v, got %v", i+1, w, got)
		}
	}
}

func TestOnThrottled_UsesRetryAfterHint(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.BackoffBase = 10 * time.Millisecond
	l, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	hint := 5 * time.Millisecond
	start := time.Now()
	if !l.OnThrottled(&hint) {
		t.Fatal("expected retry with budget remaining")
	}
	if elapsed := time.Since(start); elapsed < 5*time.Millisecond {
		t.Errorf("expected at least the hinted 5ms wait, waited %v", elapsed)
	}
	// A server hint must not advance the backoff schedule.
	if got := l.CurrentBackoff(); got != 10*time.Millisecond {
		t.Errorf("expected backoff unchanged at 10ms, got %v", got)
	}
}

func TestOnThrottled_StopsAfterRetryBudget(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.BackoffBase = time.Millisecond
	cfg.BackoffMax = 2 * time.Millisecond
	cfg.RetryAttempts = 2
	l, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if !l.OnThrottled(nil) {
		t.Fatal("first throttle should allow a retry")
	}
	if !l.OnThrottled(nil) {
		t.Fatal("second throttle should allow a retry")
	}

	// Budget spent: must refuse immediately, even with a long hint.
	hint := 500 * time.Millisecond
	start := time.Now()
	if l.OnThrottled(&hint) {
		t.Error("third throttle should refuse once the budget is spent")
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("refusal should not wait, took %v", elapsed)
	}
}

func TestOnSuccess_ResetsBackoffAndRetries(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.BackoffBase = time.Millisecond
	cfg.BackoffMax = 8 * time.Millisecond
	cfg.RetryAttempts = 2
	l, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	l.OnThrottled(nil)
	l.OnThrottled(nil)
	if l.OnThrottled(nil) {
		t.Fatal("expected budget exhausted before reset")
	}

	l.OnSuccess()

	if got := l.CurrentBackoff(); got != time.Millisecond {
		t.Errorf("expected backoff reset to base, got %v", got)
	}
	if !l.OnThrottled(nil) {
		t.Error("expected retry budget restored after OnSuccess")
	}
}

func TestStats_TracksCounters(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.RequestsPerSecond = 100
	cfg.BurstLimit = 1
	cfg.BackoffBase = time.Millisecond
	l, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := context.Background()
	if err := l.Acquire(ctx); err != nil {
		t.Fatalf("first Acquire: %v", err)
	}
	l.Release()
	if err := l.Acquire(ctx); err != nil { // bucket empty, must wait
		t.Fatalf("second Acquire: %v", err)
	}
	l.Release()

	l.OnThrottled(nil)

	s := l.Stats()
	if s.RequestsMade != 2 {
		t.Errorf("expected 2 requests made, got %d", s.RequestsMade)
	}
	if s.RequestsDelayed < 1 {
		t.Errorf("expected at least 1 delayed request, got %d", s.RequestsDelayed)
	}
	if s.TotalWait <= 0 {
		t.Errorf("expected positive total wait, got %v", s.TotalWait)
	}
	if s.ThrottleHits != 1 {
		t.Errorf("expected 1 throttle hit, got %d", s.ThrottleHits)
	}
	if s.Retries != 1 {
		t.Errorf("expected 1 retry, got %d", s.Retries)
	}
	if s.AvgWaitPerRequest <= 0 {
		t.Errorf("expected positive average wait, got %v", s.AvgWaitPerRequest)
	}
}

func TestStats_ZeroRequestsHasZeroAverage(t *testing.T) {
	t.Parallel()
	l, err := New(testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	s := l.Stats()
	if s.AvgWaitPerRequest != 0 {
		t.Errorf("expected zero average with no requests, got %v", s.AvgWaitPerRequest)
	}
}
