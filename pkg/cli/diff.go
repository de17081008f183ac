package cli

import (
	"fmt"

	"github.com/getdriftd/driftd/pkg/cli/internal/output"
	"github.com/getdriftd/driftd/pkg/diff"
	"github.com/getdriftd/driftd/pkg/spec"
	"github.com/spf13/cobra"
)

var diffIgnore []string

var diffCmd = &cobra.Command{
	Use:   "diff <published> <discovered>",
	Short: "Compare two OpenAPI documents for drift",
	Long: `Diff pairs the operations of two OpenAPI documents by method and path
and compares their JSON response schemas structurally. Operations
present in only one document, or without a JSON response schema, are
skipped. The command exits non-zero when breaking drift (a type
mismatch) is found.`,
	Example: `  # Compare the published contract against a discovery run
  driftd diff specs/published/api.yaml specs/discovered/openapi.json

  # Suppress drift on volatile fields
  driftd diff published.yaml discovered.json --ignore metadata/uid --ignore status/timestamp`,
	Args: cobra.ExactArgs(2),
	RunE: runDiffCmd,
}

func init() {
	diffCmd.Flags().StringSliceVar(&diffIgnore, "ignore", nil, "Field path suffix to ignore (repeatable)")
	rootCmd.AddCommand(diffCmd)
}

func runDiffCmd(cmd *cobra.Command, args []string) error {
	published, err := spec.LoadFile(args[0])
	if err != nil {
		return err
	}
	discovered, err := spec.LoadFile(args[1])
	if err != nil {
		return err
	}

	engine := diff.New()
	engine.IgnorePaths = diffIgnore

	reports, unmatched := compareDocuments(engine, published, discovered)
	summary := diff.Summarize(reports)

	if jsonOutput {
		if err := output.JSON(struct {
			Summary   diff.Summary  `json:"summary"`
			Unmatched int           `json:"unmatched_endpoints"`
			Endpoints []diff.Report `json:"endpoints"`
		}{summary, unmatched, reports}); err != nil {
			return err
		}
	} else {
		printDiffReports(reports, summary, unmatched)
	}

	if summary.HasBreakingChanges {
		return fmt.Errorf("%d breaking change(s) found", summary.ErrorCount)
	}
	return nil
}

// compareDocuments diffs every published operation that has a
// discovered counterpart with a JSON response schema on both sides.
// The second return counts published operations without one.
func compareDocuments(engine *diff.Engine, published, discovered *spec.Document) ([]diff.Report, int) {
	index := make(map[string]*spec.Endpoint)
	for _, ep := range discovered.Endpoints() {
		index[ep.Method+" "+ep.Path] = ep
	}

	var reports []diff.Report
	unmatched := 0
	for _, pub := range published.Endpoints() {
		disc, ok := index[pub.Method+" "+pub.Path]
		if !ok || pub.Response == nil || disc.Response == nil {
			unmatched++
			continue
		}
		reports = append(reports, diff.Report{
			Endpoint: pub.Path,
			Method:   pub.Method,
			Diffs:    engine.Compare(pub.Response, disc.Response, ""),
		})
	}
	return reports, unmatched
}

func printDiffReports(reports []diff.Report, summary diff.Summary, unmatched int) {
	for _, r := range reports {
		if len(r.Diffs) == 0 {
			continue
		}
		fmt.Printf("%s %s\n", r.Method, r.Endpoint)
		for _, d := range r.Diffs {
			fmt.Printf("  [%s] %s\n", d.Severity, d.Message)
		}
		fmt.Println()
	}

	fmt.Printf("%d diff(s) across %d endpoint(s): %d error(s), %d warning(s), %d info\n",
		summary.TotalDiffs, summary.TotalEndpoints, summary.ErrorCount, summary.WarningCount, summary.InfoCount)
	if unmatched > 0 {
		fmt.Printf("%d endpoint(s) had no comparable counterpart\n", unmatched)
	}
}
