package cli

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/getdriftd/driftd/pkg/config"
)

func TestRunDiscover_DryRun(t *testing.T) {
	cfgPath := writeTestSetup(t, map[string]string{"ping.yaml": pingContract}, "")

	if err := RunDiscover([]string{"--dry-run", "-c", cfgPath}); err != nil {
		t.Fatalf("RunDiscover --dry-run failed: %v", err)
	}
}

func TestRunDiscover_MissingConfig(t *testing.T) {
	err := RunDiscover([]string{"--dry-run", "-c", filepath.Join(t.TempDir(), "absent.yaml")})
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
	if !errors.Is(err, config.ErrFileNotFound) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRunDiscover_NoContracts(t *testing.T) {
	cfgPath := writeTestSetup(t, nil, "")

	err := RunDiscover([]string{"--dry-run", "-c", cfgPath})
	if err == nil {
		t.Fatal("expected error for empty contracts directory")
	}
	if !strings.Contains(err.Error(), "no contracts found") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRunDiscover_EndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"ok": true}`)
	}))
	defer srv.Close()

	dir := t.TempDir()
	specsDir := filepath.Join(dir, "specs")
	if err := os.MkdirAll(specsDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(specsDir, "ping.yaml"), []byte(pingContract), 0o644); err != nil {
		t.Fatal(err)
	}

	outDir := filepath.Join(dir, "out")
	reportDir := filepath.Join(dir, "reports")
	cfgBody := fmt.Sprintf(`api_url: %s
specs:
  dir: %s
output:
  base_dir: %s
  report_dir: %s
rate_limit:
  requests_per_second: 500
  burst_limit: 50
exploration:
  namespaces: [system]
`, srv.URL, specsDir, outDir, reportDir)
	cfgPath := filepath.Join(dir, "driftd.yaml")
	if err := os.WriteFile(cfgPath, []byte(cfgBody), 0o644); err != nil {
		t.Fatal(err)
	}

	discoverDryRun = false // flag values persist across Execute calls
	if err := RunDiscover([]string{"-c", cfgPath}); err != nil {
		t.Fatalf("RunDiscover failed: %v", err)
	}

	artifacts := []string{
		filepath.Join(outDir, "openapi.json"),
		filepath.Join(outDir, "session.json"),
		filepath.Join(reportDir, "discovery-report.md"),
	}
	for _, path := range artifacts {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("missing artifact %s: %v", path, err)
		}
	}
}
