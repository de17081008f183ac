package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/getdriftd/driftd/pkg/diff"
	"github.com/getdriftd/driftd/pkg/discovery"
)

// Caps keep the markdown readable when a sweep covers hundreds of
// endpoints; the JSON artifacts stay complete.
const (
	maxNotableEndpoints = 20
	maxDiffsPerEndpoint = 5
	maxReportErrors     = 20
	maxEndpointRows     = 100
)

var titleCaser = cases.Title(language.English)

// Markdown writes the human-readable discovery report.
func (g *Generator) Markdown(session *discovery.Session) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "# API Discovery Report\n\n")
	fmt.Fprintf(&b, "**Generated**: %s\n", time.Now().UTC().Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "**API URL**: %s\n", session.BaseURL)
	fmt.Fprintf(&b, "**Duration**: %.1f seconds\n\n", session.Duration().Seconds())
	fmt.Fprintf(&b, "---\n\n")

	writeSummary(&b, session)
	writeThrottle(&b, session)
	writeDrift(&b, session)
	writeErrors(&b, session)
	writeEndpoints(&b, session)

	if err := os.MkdirAll(g.ReportDir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	path := filepath.Join(g.ReportDir, "discovery-report.md")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write markdown report: %w", err)
	}
	return path, nil
}

func writeSummary(b *strings.Builder, session *discovery.Session) {
	fmt.Fprintf(b, "## Summary\n\n")
	fmt.Fprintf(b, "| Metric | Value |\n")
	fmt.Fprintf(b, "|--------|-------|\n")
	fmt.Fprintf(b, "| Endpoints Explored | %d |\n", len(session.Results))
	fmt.Fprintf(b, "| Success Rate | %.1f%% |\n", session.SuccessRate())
	fmt.Fprintf(b, "| Namespaces | %s |\n\n", strings.Join(session.Namespaces, ", "))
}

func writeThrottle(b *strings.Builder, session *discovery.Session) {
	st := session.ThrottleStats
	if st.RequestsMade == 0 && st.ThrottleHits == 0 {
		return
	}

	rows := []struct {
		key   string
		value any
	}{
		{"requests_made", st.RequestsMade},
		{"requests_delayed", st.RequestsDelayed},
		{"total_wait_time_seconds", fmt.Sprintf("%.2f", st.TotalWait.Seconds())},
		{"rate_limit_hits", st.ThrottleHits},
		{"retries", st.Retries},
		{"avg_wait_per_request", fmt.Sprintf("%.3f", st.AvgWaitPerRequest.Seconds())},
	}

	fmt.Fprintf(b, "## Rate Limiting\n\n")
	fmt.Fprintf(b, "| Metric | Value |\n")
	fmt.Fprintf(b, "|--------|-------|\n")
	for _, row := range rows {
		fmt.Fprintf(b, "| %s | %v |\n", titleLabel(row.key), row.value)
	}
	fmt.Fprintf(b, "\n")
}

func writeDrift(b *strings.Builder, session *discovery.Session) {
	reports := session.DiffReports()
	if len(reports) == 0 {
		return
	}
	summary := diff.Summarize(reports)

	fmt.Fprintf(b, "## Schema Differences\n\n")
	fmt.Fprintf(b, "| Severity | Count |\n")
	fmt.Fprintf(b, "|----------|-------|\n")
	fmt.Fprintf(b, "| Errors | %d |\n", summary.ErrorCount)
	fmt.Fprintf(b, "| Warnings | %d |\n", summary.WarningCount)
	fmt.Fprintf(b, "| Total | %d |\n\n", summary.TotalDiffs)

	if len(summary.CountsByKind) > 0 {
		kinds := make([]string, 0, len(summary.CountsByKind))
		for k := range summary.CountsByKind {
			kinds = append(kinds, string(k))
		}
		sort.Strings(kinds)

		fmt.Fprintf(b, "| Kind | Count |\n")
		fmt.Fprintf(b, "|------|-------|\n")
		for _, k := range kinds {
			fmt.Fprintf(b, "| %s | %d |\n", titleLabel(k), summary.CountsByKind[diff.Kind(k)])
		}
		fmt.Fprintf(b, "\n")
	}

	fmt.Fprintf(b, "### Notable Discoveries\n\n")
	notable := 0
	for _, report := range reports {
		if len(report.Diffs) == 0 {
			continue
		}
		if notable++; notable > maxNotableEndpoints {
			break
		}
		fmt.Fprintf(b, "**%s %s**\n", report.Method, report.Endpoint)
		for i, d := range report.Diffs {
			if i == maxDiffsPerEndpoint {
				break
			}
			icon := "?"
			if d.Severity == diff.SeverityError {
				icon = "!"
			}
			fmt.Fprintf(b, "- [%s] %s\n", icon, d.Message)
		}
		fmt.Fprintf(b, "\n")
	}
}

func writeErrors(b *strings.Builder, session *discovery.Session) {
	if len(session.Errors) == 0 {
		return
	}
	fmt.Fprintf(b, "## Errors\n\n")
	for i, err := range session.Errors {
		if i == maxReportErrors {
			break
		}
		fmt.Fprintf(b, "- %s\n", err)
	}
	fmt.Fprintf(b, "\n")
}

func writeEndpoints(b *strings.Builder, session *discovery.Session) {
	fmt.Fprintf(b, "## Endpoints Explored\n\n")
	fmt.Fprintf(b, "| Endpoint | Method | Namespace | Status | Response Time |\n")
	fmt.Fprintf(b, "|----------|--------|-----------|--------|---------------|\n")
	for i, res := range session.Results {
		if i == maxEndpointRows {
			break
		}
		status := "OK"
		if res.Failed() {
			status = "Error"
		}
		rt := "-"
		if res.ResponseTime > 0 {
			rt = fmt.Sprintf("%.0fms", res.ResponseTime.Seconds()*1000)
		}
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s |\n", res.Path, res.Method, res.Namespace, status, rt)
	}
	fmt.Fprintf(b, "\n")
}

// titleLabel turns a snake_case or kebab-case key into a report label.
func titleLabel(key string) string {
	key = strings.NewReplacer("_", " ", "-", " ").Replace(key)
	return titleCaser.String(key)
}
