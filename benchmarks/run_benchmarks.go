// Package main runs the core driftd benchmarks and outputs results to JSON/Markdown.
// Run with: go run benchmarks/run_benchmarks.go
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// BenchmarkResults holds all benchmark data
type BenchmarkResults struct {
	Timestamp   string          `json:"timestamp"`
	Environment Environment     `json:"environment"`
	Areas       map[string]Area `json:"areas"`
	Summary     Summary         `json:"summary"`
}

type Environment struct {
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	CPU       string `json:"cpu"`
	NumCPU    int    `json:"num_cpu"`
	GoVersion string `json:"go_version"`
}

type Area struct {
	Benchmarks []Benchmark `json:"benchmarks"`
}

type Benchmark struct {
	Name        string  `json:"name"`
	NsPerOp     float64 `json:"ns_per_op"`
	OpsPerSec   float64 `json:"ops_per_sec"`
	BytesPerOp  int64   `json:"bytes_per_op"`
	AllocsPerOp int64   `json:"allocs_per_op"`
}

type Summary struct {
	Inference AreaSummary `json:"inference"`
	Diff      AreaSummary `json:"diff"`
	Throttle  AreaSummary `json:"throttle"`
}

type AreaSummary struct {
	ThroughputOpsPerSec float64 `json:"throughput_ops_per_sec"`
	LatencyNs           float64 `json:"latency_ns"`
	Claim               string  `json:"claim"`
}

func main() {
	fmt.Println("==========================================")
	fmt.Println("   DRIFTD BENCHMARK SUITE")
	fmt.Println("==========================================")
	fmt.Println()

	results := BenchmarkResults{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Environment: Environment{
			OS:        runtime.GOOS,
			Arch:      runtime.GOARCH,
			CPU:       getCPUInfo(),
			NumCPU:    runtime.NumCPU(),
			GoVersion: runtime.Version(),
		},
		Areas: make(map[string]Area),
	}

	fmt.Println("Running schema inference benchmarks...")
	results.Areas["schema"] = Area{Benchmarks: runBenchmarks("BenchmarkSchema", "./pkg/schema/...")}

	fmt.Println("Running diff benchmarks...")
	results.Areas["diff"] = Area{Benchmarks: runBenchmarks("BenchmarkDiff", "./pkg/diff/...")}

	fmt.Println("Running throttle benchmarks...")
	results.Areas["throttle"] = Area{Benchmarks: runBenchmarks("BenchmarkThrottle", "./pkg/throttle/...")}

	results.Summary = calculateSummary(results.Areas)

	jsonPath := "benchmarks/results/latest.json"
	writeJSON(results, jsonPath)
	fmt.Printf("\nJSON results: %s\n", jsonPath)

	mdPath := "benchmarks/results/LATEST.md"
	writeMarkdown(results, mdPath)
	fmt.Printf("Markdown results: %s\n", mdPath)

	printSummary(results)
}

func getCPUInfo() string {
	if runtime.GOOS == "linux" {
		data, err := os.ReadFile("/proc/cpuinfo")
		if err == nil {
			lines := strings.Split(string(data), "\n")
			for _, line := range lines {
				if strings.HasPrefix(line, "model name") {
					parts := strings.SplitN(line, ":", 2)
					if len(parts) == 2 {
						return strings.TrimSpace(parts[1])
					}
				}
			}
		}
	}
	return "unknown"
}

func runBenchmarks(pattern, pkg string) []Benchmark {
	cmd := exec.Command("go", "test", "-bench="+pattern, "-benchtime=2s", "-benchmem", pkg)
	output, _ := cmd.CombinedOutput()

	return parseBenchmarkOutput(string(output))
}

func parseBenchmarkOutput(output string) []Benchmark {
	var benchmarks []Benchmark

	// Pattern: BenchmarkName-N    iterations    ns/op    bytes/op    allocs/op
	re := regexp.MustCompile(`(Benchmark[\w/]+)-\d+\s+(\d+)\s+([\d.]+)\s+ns/op\s+(\d+)\s+B/op\s+(\d+)\s+allocs/op`)

	matches := re.FindAllStringSubmatch(output, -1)
	for _, match := range matches {
		if len(match) >= 6 {
			nsPerOp, _ := strconv.ParseFloat(match[3], 64)
			bytesPerOp, _ := strconv.ParseInt(match[4], 10, 64)
			allocsPerOp, _ := strconv.ParseInt(match[5], 10, 64)

			opsPerSec := 0.0
			if nsPerOp > 0 {
				opsPerSec = 1e9 / nsPerOp
			}

			benchmarks = append(benchmarks, Benchmark{
				Name:        match[1],
				NsPerOp:     nsPerOp,
				OpsPerSec:   opsPerSec,
				BytesPerOp:  bytesPerOp,
				AllocsPerOp: allocsPerOp,
			})
		}
	}

	return benchmarks
}

func calculateSummary(areas map[string]Area) Summary {
	summary := Summary{}

	if area, ok := areas["schema"]; ok {
		for _, b := range area.Benchmarks {
			if strings.Contains(b.Name, "InferLargeList") {
				summary.Inference.ThroughputOpsPerSec = b.OpsPerSec
				summary.Inference.LatencyNs = b.NsPerOp
			}
		}
		summary.Inference.Claim = fmt.Sprintf("%.0fK+ payloads/s", summary.Inference.ThroughputOpsPerSec/1000*0.8)
	}

	if area, ok := areas["diff"]; ok {
		for _, b := range area.Benchmarks {
			if strings.Contains(b.Name, "CompareDrifted") {
				summary.Diff.ThroughputOpsPerSec = b.OpsPerSec
				summary.Diff.LatencyNs = b.NsPerOp
			}
		}
		summary.Diff.Claim = fmt.Sprintf("%.0fK+ comparisons/s", summary.Diff.ThroughputOpsPerSec/1000*0.8)
	}

	if area, ok := areas["throttle"]; ok {
		for _, b := range area.Benchmarks {
			if strings.Contains(b.Name, "AcquireRelease") && !strings.Contains(b.Name, "Parallel") {
				summary.Throttle.LatencyNs = b.NsPerOp
			}
			if strings.Contains(b.Name, "Parallel") {
				summary.Throttle.ThroughputOpsPerSec = b.OpsPerSec
			}
		}
		summary.Throttle.Claim = fmt.Sprintf("<%.0fns gate overhead", summary.Throttle.LatencyNs+1)
	}

	return summary
}

func writeJSON(results BenchmarkResults, path string) {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		fmt.Printf("Error marshaling JSON: %v\n", err)
		return
	}
	os.WriteFile(path, data, 0644)
}

func writeMarkdown(results BenchmarkResults, path string) {
	var sb strings.Builder

	sb.WriteString("# Driftd Benchmark Results\n\n")
	sb.WriteString(fmt.Sprintf("**Generated**: %s\n\n", results.Timestamp))
	sb.WriteString("## Environment\n\n")
	sb.WriteString(fmt.Sprintf("- **OS**: %s/%s\n", results.Environment.OS, results.Environment.Arch))
	sb.WriteString(fmt.Sprintf("- **CPU**: %s (%d cores)\n", results.Environment.CPU, results.Environment.NumCPU))
	sb.WriteString(fmt.Sprintf("- **Go**: %s\n\n", results.Environment.GoVersion))

	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Area | Throughput | Latency | Claim |\n")
	sb.WriteString("|------|------------|---------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Schema inference | %.0f ops/s | %.2fμs | %s |\n",
		results.Summary.Inference.ThroughputOpsPerSec,
		results.Summary.Inference.LatencyNs/1000,
		results.Summary.Inference.Claim))
	sb.WriteString(fmt.Sprintf("| Schema diff | %.0f ops/s | %.2fμs | %s |\n",
		results.Summary.Diff.ThroughputOpsPerSec,
		results.Summary.Diff.LatencyNs/1000,
		results.Summary.Diff.Claim))
	sb.WriteString(fmt.Sprintf("| Throttle gate | %.0f ops/s | %.2fμs | %s |\n",
		results.Summary.Throttle.ThroughputOpsPerSec,
		results.Summary.Throttle.LatencyNs/1000,
		results.Summary.Throttle.Claim))
	sb.WriteString("\n")

	for name, area := range results.Areas {
		sb.WriteString(fmt.Sprintf("## %s\n\n", cases.Title(language.English).String(name)))
		sb.WriteString("| Benchmark | ops/sec | ns/op | B/op | allocs/op |\n")
		sb.WriteString("|-----------|---------|-------|------|----------|\n")
		for _, b := range area.Benchmarks {
			sb.WriteString(fmt.Sprintf("| %s | %.0f | %.0f | %d | %d |\n",
				b.Name, b.OpsPerSec, b.NsPerOp, b.BytesPerOp, b.AllocsPerOp))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Reproducing\n\n")
	sb.WriteString("```bash\n")
	sb.WriteString("go run benchmarks/run_benchmarks.go\n")
	sb.WriteString("# Or individual areas:\n")
	sb.WriteString("go test -bench=BenchmarkSchema -benchtime=2s -benchmem ./pkg/schema/...\n")
	sb.WriteString("go test -bench=BenchmarkDiff -benchtime=2s -benchmem ./pkg/diff/...\n")
	sb.WriteString("go test -bench=BenchmarkThrottle -benchtime=2s -benchmem ./pkg/throttle/...\n")
	sb.WriteString("```\n")

	os.WriteFile(path, []byte(sb.String()), 0644)
}

func printSummary(results BenchmarkResults) {
	fmt.Println()
	fmt.Println("==========================================")
	fmt.Println("              SUMMARY")
	fmt.Println("==========================================")
	fmt.Printf("Inference: %.0f payloads/s (%.2fμs latency)\n",
		results.Summary.Inference.ThroughputOpsPerSec,
		results.Summary.Inference.LatencyNs/1000)
	fmt.Printf("Diff:      %.0f comparisons/s (%.2fμs latency)\n",
		results.Summary.Diff.ThroughputOpsPerSec,
		results.Summary.Diff.LatencyNs/1000)
	fmt.Printf("Throttle:  %.0f ops/s (%.0fns gate overhead)\n",
		results.Summary.Throttle.ThroughputOpsPerSec,
		results.Summary.Throttle.LatencyNs)
	fmt.Println("==========================================")
}
