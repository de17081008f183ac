// Package report renders the artifacts of a discovery session: a
// discovered OpenAPI document, a JSON drift summary, the raw session for
// later re-rendering, and a human-readable markdown report.
package report

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/getdriftd/driftd/pkg/config"
	"github.com/getdriftd/driftd/pkg/diff"
	"github.com/getdriftd/driftd/pkg/discovery"
)

// Generator writes session artifacts. Fields may be adjusted before the
// first call; the zero value writes into the current directory.
type Generator struct {
	// OutputDir receives the machine-readable artifacts: openapi.json,
	// session.json, and diffs/summary.json.
	OutputDir string

	// ReportDir receives the markdown report.
	ReportDir string

	// IncludeExamples embeds one raw response body per operation in the
	// generated OpenAPI document.
	IncludeExamples bool

	// PrettyPrint indents JSON artifacts for human eyes.
	PrettyPrint bool
}

// New builds a Generator from output configuration.
func New(cfg config.Output) *Generator {
	return &Generator{
		OutputDir:       cfg.Dir,
		ReportDir:       cfg.ReportDir,
		IncludeExamples: cfg.IncludeExamples,
		PrettyPrint:     cfg.PrettyPrint,
	}
}

// Artifacts lists the files one generation pass wrote. Empty entries
// were skipped, not failed.
type Artifacts struct {
	OpenAPI     string `json:"openapi,omitempty"`
	DiffSummary string `json:"diff_summary,omitempty"`
	Session     string `json:"session,omitempty"`
	Markdown    string `json:"markdown,omitempty"`
}

// All generates every artifact for the session.
func (g *Generator) All(session *discovery.Session) (Artifacts, error) {
	var a Artifacts
	var err error
	if a.OpenAPI, err = g.OpenAPI(session); err != nil {
		return a, err
	}
	if a.DiffSummary, err = g.DiffSummary(session); err != nil {
		return a, err
	}
	if a.Session, err = g.SessionSummary(session); err != nil {
		return a, err
	}
	if a.Markdown, err = g.Markdown(session); err != nil {
		return a, err
	}
	return a, nil
}

// OpenAPI writes an OpenAPI 3.0 document assembled from the inferred
// schemas of every successfully sampled endpoint.
func (g *Generator) OpenAPI(session *discovery.Session) (string, error) {
	doc := map[string]any{
		"openapi": "3.0.3",
		"info": map[string]any{
			"title":           "Discovered API",
			"version":         time.Now().UTC().Format("200601021504"),
			"description":     "API specification discovered from live API exploration",
			"x-discovered-at": session.StartedAt.Format(time.RFC3339),
			"x-api-url":       session.BaseURL,
		},
		"servers":    servers(session.BaseURL),
		"paths":      g.paths(session),
		"components": map[string]any{"schemas": map[string]any{}},
	}

	path := filepath.Join(g.OutputDir, "openapi.json")
	if err := g.writeJSON(path, doc); err != nil {
		return "", fmt.Errorf("write openapi document: %w", err)
	}
	return path, nil
}

func servers(baseURL string) []any {
	if baseURL == "" {
		return []any{}
	}
	return []any{map[string]any{"url": baseURL}}
}

func (g *Generator) paths(session *discovery.Session) map[string]any {
	paths := map[string]any{}
	for _, res := range session.Results {
		if res.Schema == nil || res.Failed() {
			continue
		}
		method := strings.ToLower(res.Method)
		status := res.StatusCode
		if status == 0 {
			status = 200
		}

		media := map[string]any{"schema": res.Schema}
		if g.IncludeExamples && len(res.Examples) > 0 {
			media["example"] = res.Examples[0]
		}

		operation := map[string]any{
			"operationId": operationID(res.Method, res.Path),
			"responses": map[string]any{
				fmt.Sprint(status): map[string]any{
					"description": "Discovered response",
					"content":     map[string]any{"application/json": media},
				},
			},
		}
		if res.ResponseTime > 0 {
			operation["x-response-time-ms"] = millis(res.ResponseTime)
		}

		item, ok := paths[res.Path].(map[string]any)
		if !ok {
			item = map[string]any{}
			paths[res.Path] = item
		}
		item[method] = operation
	}
	return paths
}

// operationID derives a stable operation identifier from the method and
// path template.
func operationID(method, path string) string {
	return strings.ToLower(method) + "_" + strings.Trim(strings.ReplaceAll(path, "/", "_"), "_")
}

// DiffSummary writes the aggregated drift summary. When the session
// produced no comparisons at all the file is skipped and an empty path
// returned.
func (g *Generator) DiffSummary(session *discovery.Session) (string, error) {
	reports := session.DiffReports()
	if len(reports) == 0 {
		return "", nil
	}

	withDiffs := make([]diff.Report, 0, len(reports))
	for _, r := range reports {
		if len(r.Diffs) > 0 {
			withDiffs = append(withDiffs, r)
		}
	}

	payload := struct {
		GeneratedAt string        `json:"generated_at"`
		Summary     diff.Summary  `json:"summary"`
		Endpoints   []diff.Report `json:"endpoints"`
	}{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Summary:     diff.Summarize(reports),
		Endpoints:   withDiffs,
	}

	path := filepath.Join(g.OutputDir, "diffs", "summary.json")
	if err := g.writeJSON(path, payload); err != nil {
		return "", fmt.Errorf("write diff summary: %w", err)
	}
	return path, nil
}

// SessionSummary writes the full session, results included, so reports
// can be regenerated later without re-sampling.
func (g *Generator) SessionSummary(session *discovery.Session) (string, error) {
	payload := struct {
		*discovery.Session
		DurationSeconds float64 `json:"duration_seconds"`
		Statistics      struct {
			EndpointsTotal      int     `json:"endpoints_total"`
			EndpointsSuccessful int     `json:"endpoints_successful"`
			EndpointsFailed     int     `json:"endpoints_failed"`
			SuccessRate         float64 `json:"success_rate"`
		} `json:"statistics"`
	}{Session: session, DurationSeconds: session.Duration().Seconds()}
	payload.Statistics.EndpointsTotal = len(session.Results)
	payload.Statistics.EndpointsSuccessful = session.Successful()
	payload.Statistics.EndpointsFailed = len(session.Results) - session.Successful()
	payload.Statistics.SuccessRate = session.SuccessRate()

	path := filepath.Join(g.OutputDir, "session.json")
	if err := g.writeJSON(path, payload); err != nil {
		return "", fmt.Errorf("write session: %w", err)
	}
	return path, nil
}

// LoadSession reads a session.json written by SessionSummary.
func LoadSession(path string) (*discovery.Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	var session discovery.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("parse session %s: %w", path, err)
	}
	return &session, nil
}

func (g *Generator) writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var data []byte
	var err error
	if g.PrettyPrint {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func millis(d time.Duration) float64 {
	return math.Round(d.Seconds()*1000*100) / 100
}
