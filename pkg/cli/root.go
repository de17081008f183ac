package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// jsonOutput switches command results to JSON; persistent flag
	// available to all subcommands.
	jsonOutput bool

	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// defaultConfigFile is what commands look for when --config is not given.
const defaultConfigFile = "driftd.yaml"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "driftd",
	Short: "driftd discovers API behavior drift from live responses",
	Long: `driftd samples live API endpoints under a strict rate limit, infers
response schemas from what actually comes back, and compares them
against the published OpenAPI contracts to surface drift.

Configuration comes from driftd.yaml (create one with 'driftd init');
the DRIFTD_API_URL and DRIFTD_API_TOKEN environment variables override
the file.`,
	SilenceUsage:  true,
	SilenceErrors: true, // We handle errors in Execute()
}

// Execute runs the root command and exits non-zero on error.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output command results in JSON format")
}
