// Package httputil has small HTTP client helpers shared by the sampler.
package httputil

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ohler55/ojg/oj"
)

// DefaultBodyLimit caps how much of a response body is read.
const DefaultBodyLimit = 10 << 20 // 10MB

// ParseRetryAfter interprets a Retry-After header value, which servers
// send either as delta-seconds or as an HTTP-date. Returns nil when the
// value is absent or unparseable.
func ParseRetryAfter(value string, now time.Time) *time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return nil
		}
		d := time.Duration(secs) * time.Second
		return &d
	}

	if at, err := http.ParseTime(value); err == nil {
		d := at.Sub(now)
		if d < 0 {
			d = 0
		}
		return &d
	}
	return nil
}

// ReadJSON decodes a JSON response body into a generic value, reading at
// most limit bytes. Integral numbers come back as int64.
func ReadJSON(body io.Reader, limit int64) (any, error) {
	raw, err := io.ReadAll(io.LimitReader(body, limit))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	var data any
	if err := oj.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("invalid JSON payload: %w", err)
	}
	return data, nil
}
