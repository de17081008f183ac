package cli

// Bridge functions let cmd/driftd's registry dispatch into the cobra
// command tree. Each one routes through rootCmd so persistent flags
// and help behave identically however a command is reached.

func runCommand(name string, args []string) error {
	rootCmd.SetArgs(append([]string{name}, args...))
	return rootCmd.Execute()
}

// RunDiscover handles the discover command.
func RunDiscover(args []string) error { return runCommand("discover", args) }

// RunDiff handles the diff command.
func RunDiff(args []string) error { return runCommand("diff", args) }

// RunReport handles the report command.
func RunReport(args []string) error { return runCommand("report", args) }

// RunInit handles the init command.
func RunInit(args []string) error { return runCommand("init", args) }

// RunValidate handles the validate command.
func RunValidate(args []string) error { return runCommand("validate", args) }

// RunVersion handles the version command, applying build metadata from
// main before printing.
func RunVersion(info BuildInfo, args []string) error {
	if info.Version != "" {
		Version = info.Version
	}
	if info.Commit != "" {
		Commit = info.Commit
	}
	if info.BuildDate != "" {
		BuildDate = info.BuildDate
	}
	return runCommand("version", args)
}
