// Package diff walks a published schema and a discovered schema in
// lock-step and reports every discrepancy as typed data. Nothing here
// errors: absent fields and malformed fragments resolve to diff entries,
// never failures, so a sweep over hundreds of endpoints cannot abort on
// one bad comparison.
package diff

import "encoding/json"

// Severity classifies how consequential a discrepancy is.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Kind is the closed set of discrepancy classes.
type Kind string

const (
	// KindTypeMismatch: normalized types differ.
	KindTypeMismatch Kind = "type-mismatch"
	// KindFormatMismatch: discovered format set and differs.
	KindFormatMismatch Kind = "format-mismatch"
	// KindConstraintDiff: a bound or pattern differs.
	KindConstraintDiff Kind = "constraint-diff"
	// KindEnumDiff: discovered enum values missing from published.
	KindEnumDiff Kind = "enum-diff"
	// KindDefaultDiff: discovered default differs.
	KindDefaultDiff Kind = "default-diff"
	// KindRequiredDiff: discovered requires a field published does not.
	KindRequiredDiff Kind = "required-diff"
	// KindMissingField: field observed but not documented.
	KindMissingField Kind = "missing-field"
	// KindExtraField: field documented but never observed.
	KindExtraField Kind = "extra-field"
)

// Diff is one discrepancy between published and discovered schemas.
// Paths are slash-delimited into the schema tree, with "root" naming the
// top level and "[items]" marking array element positions.
type Diff struct {
	Path       string   `json:"path"`
	Kind       Kind     `json:"type"`
	Severity   Severity `json:"severity"`
	Published  any      `json:"published"`
	Discovered any      `json:"discovered"`
	Message    string   `json:"message"`
}

// Report collects the diffs for one endpoint comparison.
type Report struct {
	Endpoint string
	Method   string
	Diffs    []Diff
}

// Errors returns the error-severity diffs.
func (r Report) Errors() []Diff {
	return r.filter(SeverityError)
}

// Warnings returns the warning-severity diffs.
func (r Report) Warnings() []Diff {
	return r.filter(SeverityWarning)
}

func (r Report) filter(sev Severity) []Diff {
	var out []Diff
	for _, d := range r.Diffs {
		if d.Severity == sev {
			out = append(out, d)
		}
	}
	return out
}

// HasBreakingChanges reports whether any diff is error severity.
func (r Report) HasBreakingChanges() bool {
	for _, d := range r.Diffs {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// MarshalJSON includes the per-severity tallies alongside the diffs.
func (r Report) MarshalJSON() ([]byte, error) {
	diffs := r.Diffs
	if diffs == nil {
		diffs = []Diff{}
	}
	return json.Marshal(struct {
		Endpoint   string `json:"endpoint"`
		Method     string `json:"method"`
		TotalDiffs int    `json:"total_diffs"`
		Errors     int    `json:"errors"`
		Warnings   int    `json:"warnings"`
		Diffs      []Diff `json:"diffs"`
	}{
		Endpoint:   r.Endpoint,
		Method:     r.Method,
		TotalDiffs: len(r.Diffs),
		Errors:     len(r.Errors()),
		Warnings:   len(r.Warnings()),
		Diffs:      diffs,
	})
}

// UnmarshalJSON restores a report from its serialized form. The tallies
// are recomputed from the diffs, never trusted.
func (r *Report) UnmarshalJSON(data []byte) error {
	var aux struct {
		Endpoint string `json:"endpoint"`
		Method   string `json:"method"`
		Diffs    []Diff `json:"diffs"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.Endpoint = aux.Endpoint
	r.Method = aux.Method
	r.Diffs = aux.Diffs
	return nil
}
