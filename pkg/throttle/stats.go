package throttle

import (
	"encoding/json"
	"math"
	"time"
)

// Stats is a point-in-time snapshot of limiter activity.
type Stats struct {
	// RequestsMade counts successful token acquisitions.
	RequestsMade int64

	// RequestsDelayed counts waits imposed by an empty bucket.
	RequestsDelayed int64

	// TotalWait is the accumulated time spent waiting, both for tokens
	// and in throttle backoff.
	TotalWait time.Duration

	// ThrottleHits counts throttle responses reported via OnThrottled.
	ThrottleHits int64

	// Retries counts consecutive throttle retries since the last
	// OnSuccess.
	Retries int64

	// AvgWaitPerRequest is TotalWait divided by RequestsMade, zero when
	// nothing has been acquired yet.
	AvgWaitPerRequest time.Duration
}

// Stats returns a snapshot of the limiter counters. It never blocks on
// in-progress waits.
func (l *Limiter) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := Stats{
		RequestsMade:    l.requestsMade,
		RequestsDelayed: l.requestsDelayed,
		TotalWait:       l.totalWait,
		ThrottleHits:    l.throttleHits,
		Retries:         l.retries,
	}
	if s.RequestsMade > 0 {
		s.AvgWaitPerRequest = s.TotalWait / time.Duration(s.RequestsMade)
	}
	return s
}

// MarshalJSON renders durations as rounded seconds so snapshots read
// naturally in reports.
func (s Stats) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		RequestsMade      int64   `json:"requests_made"`
		RequestsDelayed   int64   `json:"requests_delayed"`
		TotalWaitSeconds  float64 `json:"total_wait_time_seconds"`
		RateLimitHits     int64   `json:"rate_limit_hits"`
		Retries           int64   `json:"retries"`
		AvgWaitPerRequest float64 `json:"avg_wait_per_request"`
	}{
		RequestsMade:      s.RequestsMade,
		RequestsDelayed:   s.RequestsDelayed,
		TotalWaitSeconds:  math.Round(s.TotalWait.Seconds()*100) / 100,
		RateLimitHits:     s.ThrottleHits,
		Retries:           s.Retries,
		AvgWaitPerRequest: math.Round(s.AvgWaitPerRequest.Seconds()*1000) / 1000,
	})
}

// UnmarshalJSON restores a snapshot serialized by MarshalJSON. Durations
// come back at the serialized precision.
func (s *Stats) UnmarshalJSON(data []byte) error {
	var aux struct {
		RequestsMade      int64   `json:"requests_made"`
		RequestsDelayed   int64   `json:"requests_delayed"`
		TotalWaitSeconds  float64 `json:"total_wait_time_seconds"`
		RateLimitHits     int64   `json:"rate_limit_hits"`
		Retries           int64   `json:"retries"`
		AvgWaitPerRequest float64 `json:"avg_wait_per_request"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*s = Stats{
		RequestsMade:      aux.RequestsMade,
		RequestsDelayed:   aux.RequestsDelayed,
		TotalWait:         time.Duration(aux.TotalWaitSeconds * float64(time.Second)),
		ThrottleHits:      aux.RateLimitHits,
		Retries:           aux.Retries,
		AvgWaitPerRequest: time.Duration(aux.AvgWaitPerRequest * float64(time.Second)),
	}
	return nil
}
