// driftd CLI - Command-line interface for API behavior drift discovery
package main

import (
	"fmt"
	"os"

	"github.com/getdriftd/driftd/pkg/cli"
)

// Build-time variables set via ldflags
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// Command represents a registered CLI command.
type Command struct {
	Name     string
	Short    string
	Category string
	Run      func(args []string) error
	Hidden   bool
}

// Registry holds all registered commands.
type Registry struct {
	commands map[string]*Command
	ordered  []*Command
}

func newRegistry() *Registry {
	return &Registry{commands: make(map[string]*Command)}
}

func (r *Registry) register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	r.ordered = append(r.ordered, cmd)
}

func (r *Registry) lookup(name string) (*Command, bool) {
	cmd, ok := r.commands[name]
	return cmd, ok
}

func (r *Registry) isCommand(name string) bool {
	_, ok := r.commands[name]
	return ok
}

// buildRegistry creates the command registry with all CLI commands.
func buildRegistry() *Registry {
	reg := newRegistry()

	// Core
	reg.register(&Command{Name: "discover", Short: "Sample the live API and report schema drift (default command)", Category: "Core", Run: cli.RunDiscover})
	reg.register(&Command{Name: "init", Short: "Create a starter config file", Category: "Core", Run: cli.RunInit})
	reg.register(&Command{Name: "validate", Short: "Check config and contracts without touching the network", Category: "Core", Run: cli.RunValidate})

	// Analysis
	reg.register(&Command{Name: "diff", Short: "Compare two OpenAPI documents for drift", Category: "Analysis", Run: cli.RunDiff})
	reg.register(&Command{Name: "report", Short: "Re-render reports from a saved session", Category: "Analysis", Run: cli.RunReport})

	// Utilities
	reg.register(&Command{
		Name: "version", Short: "Show version information", Category: "Utilities",
		Run: func(args []string) error {
			return cli.RunVersion(cli.BuildInfo{Version: Version, Commit: Commit, BuildDate: BuildDate}, args)
		},
	})

	return reg
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	reg := buildRegistry()

	// Determine command and args
	command := ""
	var cmdArgs []string

	switch {
	case len(args) == 0:
		// No args at all, run discover
		command = "discover"
		cmdArgs = []string{}
	case args[0] == "" || args[0][0] == '-':
		first := args[0]
		// Flag passed directly (e.g., --help, --version, --dry-run),
		// handle global flags or run discover
		switch first {
		case "--help", "-h":
			printUsage(reg)
			return nil
		case "--version", "-v":
			return cli.RunVersion(cli.BuildInfo{
				Version:   Version,
				Commit:    Commit,
				BuildDate: BuildDate,
			}, nil)
		default:
			// Other flags, run discover with them
			command = "discover"
			cmdArgs = args
		}
	case reg.isCommand(args[0]):
		command = args[0]
		cmdArgs = args[1:]
	default:
		// driftd takes no positional arguments, so a bare word here is
		// a typo, not input for the default command
		return fmt.Errorf("unknown command: %s\n\nRun 'driftd --help' for usage", args[0])
	}

	cmd, ok := reg.lookup(command)
	if !ok {
		return fmt.Errorf("unknown command: %s\n\nRun 'driftd --help' for usage", command)
	}
	return cmd.Run(cmdArgs)
}

func printUsage(reg *Registry) {
	fmt.Print("driftd - API behavior drift discovery\n\n")
	fmt.Print("Usage:\n")
	fmt.Print("  driftd                         Run discovery with defaults\n")
	fmt.Print("  driftd <command> [flags]       Run a specific command\n")
	fmt.Print("  driftd --help                  Show this help message\n\n")

	// Group commands by category in display order.
	categories := []string{"Core", "Analysis", "Utilities"}

	groups := make(map[string][]*Command)
	for _, cmd := range reg.ordered {
		if !cmd.Hidden {
			groups[cmd.Category] = append(groups[cmd.Category], cmd)
		}
	}

	for _, cat := range categories {
		cmds := groups[cat]
		if len(cmds) == 0 {
			continue
		}
		fmt.Printf("%s:\n", cat)
		for _, cmd := range cmds {
			fmt.Printf("  %-24s %s\n", cmd.Name, cmd.Short)
		}
		fmt.Println()
	}

	fmt.Print(`Global Flags:
  -h, --help      Show this help message
  -v, --version   Show version information

Examples:
  # Create a starter config and run a sweep
  driftd init
  driftd discover

  # Preview which endpoints a sweep would sample
  driftd discover --dry-run

  # Sweep one namespace with more samples per endpoint
  driftd discover -n team-a --samples 5

  # Compare a published contract against discovery output
  driftd diff specs/published/api.yaml specs/discovered/openapi.json

  # Re-render reports from a saved session
  driftd report --session specs/discovered/session.json

  # Check config and contracts before a run
  driftd validate

Run 'driftd <command> --help' for more information on a command.
`)
}
