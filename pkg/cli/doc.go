// Package cli provides the command-line interface for driftd.
//
// The cli package implements all commands for running API drift
// discovery:
//   - discover: Sample the live API and report schema drift
//   - diff: Compare two OpenAPI documents for drift
//   - report: Re-render reports from a saved discovery session
//   - init: Create a starter driftd.yaml configuration file
//   - validate: Check the configuration and published contracts offline
//   - version: Show driftd version
//
// Commands read their settings from driftd.yaml in the working
// directory unless --config names another file; the DRIFTD_API_URL and
// DRIFTD_API_TOKEN environment variables override the file in every
// command. The --json persistent flag switches output to JSON for
// scripting.
//
// Usage:
//
//	driftd init
//	driftd discover --dry-run
//	driftd discover -n team-a --samples 3
//	driftd diff specs/published/api.yaml specs/discovered/openapi.json
//	driftd report --session specs/discovered/session.json
//	driftd validate -c staging.yaml
package cli
