package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getdriftd/driftd/pkg/cli/internal/output"
	"github.com/getdriftd/driftd/pkg/diff"
	"github.com/getdriftd/driftd/pkg/discovery"
	"github.com/getdriftd/driftd/pkg/logging"
	"github.com/getdriftd/driftd/pkg/report"
	"github.com/spf13/cobra"
)

// maxDryRunRows caps the endpoint listing printed by --dry-run.
const maxDryRunRows = 50

var (
	discoverConfig     string
	discoverNamespaces []string
	discoverEndpoint   string
	discoverDryRun     bool
	discoverOutputDir  string
	discoverReportDir  string
	discoverSamples    int
	discoverLogLevel   string
	discoverLogFormat  string
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Sample the live API and report schema drift",
	Long: `Discover sweeps every endpoint the published contracts describe,
samples live responses under the configured rate limit, infers a
schema from what the API actually returns, and diffs it against the
contract. Artifacts land under output.base_dir: a discovered OpenAPI
document, a drift summary, the raw session, and a Markdown report.`,
	Example: `  # Sweep using driftd.yaml from the working directory
  driftd discover

  # Restrict the sweep to one namespace and path subset
  driftd discover -n team-a -e /api/v1/widgets

  # Preview which endpoints a sweep would sample, without network calls
  driftd discover --dry-run`,
	Args: cobra.NoArgs,
	RunE: runDiscoverCmd,
}

func init() {
	discoverCmd.Flags().StringVarP(&discoverConfig, "config", "c", "", "Config file path (default: driftd.yaml if present)")
	discoverCmd.Flags().StringSliceVarP(&discoverNamespaces, "namespace", "n", nil, "Namespace(s) to sweep (overrides config)")
	discoverCmd.Flags().StringVarP(&discoverEndpoint, "endpoint", "e", "", "Only sample endpoints whose path contains this substring")
	discoverCmd.Flags().BoolVar(&discoverDryRun, "dry-run", false, "List the endpoints a sweep would sample and exit")
	discoverCmd.Flags().StringVar(&discoverOutputDir, "output-dir", "", "Override output.base_dir from the config")
	discoverCmd.Flags().StringVar(&discoverReportDir, "report-dir", "", "Override output.report_dir from the config")
	discoverCmd.Flags().IntVar(&discoverSamples, "samples", 0, "Samples per endpoint (overrides config)")
	discoverCmd.Flags().StringVar(&discoverLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	discoverCmd.Flags().StringVar(&discoverLogFormat, "log-format", "", "Log format: text or json")
	rootCmd.AddCommand(discoverCmd)
}

func runDiscoverCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(discoverConfig)
	if err != nil {
		return err
	}

	if len(discoverNamespaces) > 0 {
		cfg.Exploration.Namespaces = discoverNamespaces
	}
	if discoverSamples > 0 {
		cfg.Exploration.SamplesPerEndpoint = discoverSamples
	}
	if discoverOutputDir != "" {
		cfg.Output.Dir = discoverOutputDir
	}
	if discoverReportDir != "" {
		cfg.Output.ReportDir = discoverReportDir
	}
	if discoverLogLevel != "" {
		cfg.Log.Level = discoverLogLevel
	}
	if discoverLogFormat != "" {
		cfg.Log.Format = discoverLogFormat
	}

	log := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: logging.ParseFormat(cfg.Log.Format),
	})

	sampler, err := discovery.New(cfg,
		discovery.WithLogger(log),
		discovery.WithEndpointFilter(discoverEndpoint),
	)
	if err != nil {
		return err
	}

	if discoverDryRun {
		return printEndpoints(sampler)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session, runErr := sampler.Run(ctx)
	if session == nil {
		return runErr
	}

	artifacts, err := report.New(cfg.Output).All(session)
	if err != nil {
		return err
	}

	if jsonOutput {
		if err := output.JSON(struct {
			Session   *discovery.Session `json:"session"`
			Artifacts report.Artifacts   `json:"artifacts"`
		}{session, artifacts}); err != nil {
			return err
		}
	} else {
		printSessionSummary(session, artifacts)
	}

	if runErr != nil {
		return fmt.Errorf("sweep interrupted: %w", runErr)
	}
	if len(session.Errors) > 0 {
		return fmt.Errorf("discovery finished with %d error(s)", len(session.Errors))
	}
	return nil
}

// endpointRow is one line of dry-run output.
type endpointRow struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	OperationID string `json:"operation_id,omitempty"`
}

func printEndpoints(sampler *discovery.Sampler) error {
	endpoints, warnings, err := sampler.Endpoints()
	if err != nil {
		return err
	}
	for _, warning := range warnings {
		output.Warn("%s", warning)
	}

	if jsonOutput {
		rows := make([]endpointRow, 0, len(endpoints))
		for _, ep := range endpoints {
			rows = append(rows, endpointRow{Method: ep.Method, Path: ep.Path, OperationID: ep.OperationID})
		}
		return output.JSON(rows)
	}

	w := output.Table()
	fmt.Fprintln(w, "METHOD\tPATH\tOPERATION")
	for i, ep := range endpoints {
		if i == maxDryRunRows {
			fmt.Fprintf(w, "...\tand %d more\t\n", len(endpoints)-maxDryRunRows)
			break
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", ep.Method, ep.Path, ep.OperationID)
	}
	w.Flush() //nolint:errcheck

	fmt.Printf("\n%d endpoint(s) would be sampled\n", len(endpoints))
	return nil
}

func printSessionSummary(session *discovery.Session, artifacts report.Artifacts) {
	w := output.Table()
	fmt.Fprintf(w, "Session:\t%s\n", session.ID)
	fmt.Fprintf(w, "Endpoints:\t%d\n", len(session.Results))
	fmt.Fprintf(w, "Success rate:\t%.1f%%\n", session.SuccessRate())
	fmt.Fprintf(w, "Duration:\t%s\n", session.Duration().Round(time.Millisecond))
	fmt.Fprintf(w, "Requests made:\t%d\n", session.ThrottleStats.RequestsMade)
	if session.ThrottleStats.ThrottleHits > 0 {
		fmt.Fprintf(w, "Throttle hits:\t%d\n", session.ThrottleStats.ThrottleHits)
	}
	if reports := session.DiffReports(); len(reports) > 0 {
		summary := diff.Summarize(reports)
		fmt.Fprintf(w, "Drift found:\t%d diff(s), %d breaking\n", summary.TotalDiffs, summary.ErrorCount)
	}
	w.Flush() //nolint:errcheck

	for _, msg := range session.Errors {
		output.Warn("%s", msg)
	}

	fmt.Println()
	fmt.Println("Artifacts:")
	for _, path := range []string{artifacts.OpenAPI, artifacts.DiffSummary, artifacts.Session, artifacts.Markdown} {
		if path != "" {
			fmt.Printf("  %s\n", path)
		}
	}
}
