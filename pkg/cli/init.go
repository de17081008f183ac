package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/getdriftd/driftd/pkg/config"
	"github.com/spf13/cobra"
)

var (
	initOutput      string
	initForce       bool
	initInteractive bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter driftd configuration file",
	Long: `Init writes an annotated driftd.yaml with the default settings: the
rate limit, exploration bounds, contract locations, and output
directories. Edit api_url (or set DRIFTD_API_URL) before the first
sweep, or use --interactive to be prompted for the essentials.`,
	Example: `  # Create driftd.yaml in the working directory
  driftd init

  # Prompt for the API URL, contracts directory, and rate limit
  driftd init -i

  # Create a config under a different name, replacing any existing file
  driftd init -o staging.yaml --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := initOutput
		if path == "" {
			path = defaultConfigFile
		}

		if initInteractive {
			if err := runInteractiveInit(path, initForce); err != nil {
				return err
			}
		} else if err := config.WriteStarter(path, initForce); err != nil {
			return err
		}

		fmt.Printf("Created %s\n", path)
		fmt.Println()
		fmt.Println("Next steps:")
		fmt.Printf("  1. Set api_url in %s or export DRIFTD_API_URL\n", path)
		fmt.Println("  2. Drop the published OpenAPI contracts under specs/published/")
		fmt.Println("  3. Run 'driftd discover --dry-run' to preview the sweep")
		return nil
	},
}

func init() {
	initCmd.Flags().StringVarP(&initOutput, "output", "o", "", "Output filename (default: driftd.yaml)")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
	initCmd.Flags().BoolVarP(&initInteractive, "interactive", "i", false, "Prompt for the essential settings")
	rootCmd.AddCommand(initCmd)
}

// runInteractiveInit prompts for the settings everyone edits first and
// saves a config built on the defaults.
func runInteractiveInit(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	cfg := config.Default()
	apiURL := ""
	specsDir := cfg.Specs.Dir
	namespaces := strings.Join(cfg.Exploration.Namespaces, ", ")
	rps := strconv.FormatFloat(cfg.RateLimit.RequestsPerSecond, 'f', -1, 64)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Base URL of the API under discovery").
				Placeholder("https://api.example.com").
				Value(&apiURL),
			huh.NewInput().
				Title("Directory holding the published OpenAPI contracts").
				Value(&specsDir).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("contracts directory is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Namespaces to sweep (comma separated)").
				Value(&namespaces),
			huh.NewInput().
				Title("Requests per second").
				Value(&rps).
				Validate(func(s string) error {
					v, err := strconv.ParseFloat(s, 64)
					if err != nil || v <= 0 {
						return errors.New("must be a positive number")
					}
					return nil
				}),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	cfg.APIURL = strings.TrimRight(strings.TrimSpace(apiURL), "/")
	cfg.Specs.Dir = strings.TrimSpace(specsDir)
	if v, err := strconv.ParseFloat(rps, 64); err == nil {
		cfg.RateLimit.RequestsPerSecond = v
	}
	if list := splitList(namespaces); len(list) > 0 {
		cfg.Exploration.Namespaces = list
	}

	return config.Save(path, cfg)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
