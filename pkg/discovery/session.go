package discovery

import (
	"encoding/json"
	"math"
	"time"

	"github.com/getdriftd/driftd/pkg/diff"
	"github.com/getdriftd/driftd/pkg/schema"
	"github.com/getdriftd/driftd/pkg/throttle"
)

// Result is the outcome of sampling one endpoint in one namespace. A
// Result never carries a hard failure: anything that went wrong for
// this endpoint lands in Err so the rest of the sweep is unaffected.
type Result struct {
	Path      string `json:"path"`
	Method    string `json:"method"`
	Namespace string `json:"namespace,omitempty"`

	// StatusCode is the last HTTP status the endpoint answered with,
	// zero when no response was received at all.
	StatusCode int `json:"status_code,omitempty"`

	// ResponseTime is the duration of the last completed request.
	ResponseTime time.Duration `json:"-"`

	// Schema is the inferred response schema, merged across samples.
	// Nil when no sample produced a JSON body.
	Schema *schema.Doc `json:"inferred_schema,omitempty"`

	// DiffReport compares Schema against the published response schema.
	// Nil when either side is missing.
	DiffReport *diff.Report `json:"diff_report,omitempty"`

	// Examples holds up to three raw response bodies for reporting.
	Examples []any `json:"examples,omitempty"`

	Err string `json:"error,omitempty"`
}

// Failed reports whether this endpoint produced no usable outcome.
func (r *Result) Failed() bool { return r.Err != "" }

// MarshalJSON renders the response time as milliseconds, the unit used
// throughout reports.
func (r Result) MarshalJSON() ([]byte, error) {
	type alias Result
	return json.Marshal(struct {
		alias
		ResponseTimeMS float64 `json:"response_time_ms,omitempty"`
	}{
		alias:          alias(r),
		ResponseTimeMS: roundMillis(r.ResponseTime),
	})
}

// UnmarshalJSON restores the response time from its millisecond form.
func (r *Result) UnmarshalJSON(data []byte) error {
	type alias Result
	aux := struct {
		*alias
		ResponseTimeMS float64 `json:"response_time_ms"`
	}{alias: (*alias)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.ResponseTime = time.Duration(aux.ResponseTimeMS * float64(time.Millisecond))
	return nil
}

func roundMillis(d time.Duration) float64 {
	return math.Round(d.Seconds()*1000*100) / 100
}

// Session is one complete sweep: which API was sampled, what came
// back per endpoint, and what the throttle observed along the way.
// Sessions serialize losslessly so reports can be re-rendered later.
type Session struct {
	ID          string    `json:"id"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at,omitzero"`

	BaseURL    string   `json:"api_url"`
	Namespaces []string `json:"namespaces"`

	Results []*Result `json:"results"`

	ThrottleStats throttle.Stats `json:"throttle"`

	// Errors lists sweep-level problems: contracts that failed to
	// load, filters that failed to evaluate. Per-endpoint failures
	// stay on their Result.
	Errors []string `json:"errors,omitempty"`
}

// Duration is the wall-clock span of the sweep. For a session still in
// flight it measures up to now.
func (s *Session) Duration() time.Duration {
	if s.StartedAt.IsZero() {
		return 0
	}
	end := s.CompletedAt
	if end.IsZero() {
		end = time.Now().UTC()
	}
	return end.Sub(s.StartedAt)
}

// Successful counts endpoints that produced a usable outcome.
func (s *Session) Successful() int {
	n := 0
	for _, r := range s.Results {
		if !r.Failed() {
			n++
		}
	}
	return n
}

// SuccessRate is the percentage of endpoints with a usable outcome,
// zero for an empty session.
func (s *Session) SuccessRate() float64 {
	if len(s.Results) == 0 {
		return 0
	}
	return float64(s.Successful()) / float64(len(s.Results)) * 100
}

// DiffReports collects the per-endpoint comparison reports, ready for
// diff.Summarize.
func (s *Session) DiffReports() []diff.Report {
	var reports []diff.Report
	for _, r := range s.Results {
		if r.DiffReport != nil {
			reports = append(reports, *r.DiffReport)
		}
	}
	return reports
}
