package cli

import (
	"fmt"
	"path/filepath"

	"github.com/getdriftd/driftd/pkg/cli/internal/output"
	"github.com/getdriftd/driftd/pkg/report"
	"github.com/spf13/cobra"
)

var (
	reportConfig    string
	reportSession   string
	reportOutputDir string
	reportReportDir string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Re-render reports from a saved discovery session",
	Long: `Report rebuilds every artifact from a session.json written by a
previous discover run: the discovered OpenAPI document, the drift
summary, and the Markdown report. Use it to tweak output settings
without re-sampling the API.`,
	Example: `  # Re-render using the session from the configured output directory
  driftd report

  # Re-render a specific session into a different directory
  driftd report --session runs/monday/session.json --output-dir runs/monday-v2`,
	Args: cobra.NoArgs,
	RunE: runReportCmd,
}

func init() {
	reportCmd.Flags().StringVarP(&reportConfig, "config", "c", "", "Config file path (default: driftd.yaml if present)")
	reportCmd.Flags().StringVarP(&reportSession, "session", "s", "", "Session file to render (default: <base_dir>/session.json)")
	reportCmd.Flags().StringVar(&reportOutputDir, "output-dir", "", "Override output.base_dir from the config")
	reportCmd.Flags().StringVar(&reportReportDir, "report-dir", "", "Override output.report_dir from the config")
	rootCmd.AddCommand(reportCmd)
}

func runReportCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(reportConfig)
	if err != nil {
		return err
	}
	if reportOutputDir != "" {
		cfg.Output.Dir = reportOutputDir
	}
	if reportReportDir != "" {
		cfg.Output.ReportDir = reportReportDir
	}

	sessionPath := reportSession
	if sessionPath == "" {
		sessionPath = filepath.Join(cfg.Output.Dir, "session.json")
	}

	session, err := report.LoadSession(sessionPath)
	if err != nil {
		return err
	}

	artifacts, err := report.New(cfg.Output).All(session)
	if err != nil {
		return err
	}

	if jsonOutput {
		return output.JSON(artifacts)
	}

	fmt.Printf("Rendered session %s (%d endpoints)\n", session.ID, len(session.Results))
	for _, path := range []string{artifacts.OpenAPI, artifacts.DiffSummary, artifacts.Session, artifacts.Markdown} {
		if path != "" {
			fmt.Printf("  %s\n", path)
		}
	}
	return nil
}
