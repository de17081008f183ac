package cli

import (
	"fmt"
	"strings"

	"github.com/getdriftd/driftd/pkg/cli/internal/output"
	"github.com/getdriftd/driftd/pkg/spec"
	"github.com/spf13/cobra"
)

var validateConfig string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration and published contracts",
	Long: `Validate loads the configuration and every published contract without
touching the network, and reports anything that would make a discover
run fail: invalid settings, a filter that does not compile, contracts
that do not parse, or an empty contracts directory.`,
	Example: `  # Check driftd.yaml and the contracts it points at
  driftd validate

  # Check an alternate config
  driftd validate -c staging.yaml`,
	Args: cobra.NoArgs,
	RunE: runValidateCmd,
}

func init() {
	validateCmd.Flags().StringVarP(&validateConfig, "config", "c", "", "Config file path (default: driftd.yaml if present)")
	rootCmd.AddCommand(validateCmd)
}

func runValidateCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(validateConfig)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	docs, loadErr := spec.LoadDir(cfg.Specs.Dir, cfg.Specs.Patterns)
	var problems []string
	if loadErr != nil {
		problems = strings.Split(loadErr.Error(), "\n")
	}
	endpoints := 0
	for _, doc := range docs {
		endpoints += len(doc.Endpoints())
	}

	if jsonOutput {
		if err := output.JSON(struct {
			ConfigValid bool     `json:"config_valid"`
			Contracts   int      `json:"contracts"`
			Endpoints   int      `json:"endpoints"`
			Problems    []string `json:"problems,omitempty"`
		}{true, len(docs), endpoints, problems}); err != nil {
			return err
		}
	} else {
		fmt.Println("Configuration is valid.")
		fmt.Printf("Contracts: %d document(s), %d endpoint(s) under %s\n", len(docs), endpoints, cfg.Specs.Dir)
		for _, problem := range problems {
			output.Warn("%s", problem)
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%d contract(s) failed to load", len(problems))
	}
	if len(docs) == 0 {
		return fmt.Errorf("no contracts found under %s", cfg.Specs.Dir)
	}
	return nil
}
