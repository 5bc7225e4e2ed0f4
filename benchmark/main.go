// Package main provides a performance benchmarking tool for the slipcheck CLI.
// It generates synthetic reference and candidate datasets at several sizes,
// measures execution times of the verification commands across those sizes,
// running each command multiple times and averaging, and writes CSV output
// for performance analysis and documentation.
//
// Prerequisites:
// - slipcheck binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory to place the generated datasets (default: a temp dir)
package main

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/slipcheck/slipcheck/internal/dataset"
	"github.com/slipcheck/slipcheck/schema"
)

// BenchmarkResult holds the timing of one command at one dataset size.
type BenchmarkResult struct {
	Size    int
	Command string
	AvgTime string
	MinTime string
	MaxTime string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir  string
	Timeout  time.Duration
	Workers  int
	Runs     int
	Sizes    []int
	Commands []string
}

func main() {
	var workDir string
	switch len(os.Args) {
	case 1:
		dir, err := os.MkdirTemp("", "slipcheck-benchmark-*")
		if err != nil {
			fmt.Printf("Failed to create work dir: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = os.RemoveAll(dir) }()
		workDir = dir
	case 2:
		workDir = os.Args[1]
	default:
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir:  workDir,
		Timeout:  5 * time.Minute,
		Workers:  8,
		Runs:     4,
		Sizes:    []int{100, 1000, 10000},
		Commands: []string{"verify", "tests", "groups", "report"},
	}

	if err := checkPrerequisites(); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results, err := runBenchmarks(config)
	if err != nil {
		fmt.Printf("Benchmark failed: %v\n", err)
		os.Exit(1)
	}

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(config, results)
}

// checkPrerequisites verifies that the slipcheck binary exists.
func checkPrerequisites() error {
	if _, err := exec.LookPath("slipcheck"); err != nil {
		return fmt.Errorf("slipcheck binary not found in PATH")
	}
	return nil
}

// runBenchmarks generates the datasets and times every command at every size.
func runBenchmarks(config BenchmarkConfig) ([]BenchmarkResult, error) {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: sizes %v, %d runs per command, %d workers, %v timeout\n",
		config.Sizes, config.Runs, config.Workers, config.Timeout)

	for _, size := range config.Sizes {
		fmt.Printf("Benchmarking %d analyses\n", size)

		refPath, candPath, err := generateDatasets(config.WorkDir, size)
		if err != nil {
			return nil, fmt.Errorf("generating datasets for size %d: %w", size, err)
		}

		for _, command := range config.Commands {
			result := runCommandSuite(config, size, command, refPath, candPath)
			results = append(results, result)
		}
	}

	return results, nil
}

// generateDatasets writes a synthetic reference file and a candidate file
// whose displacements carry a small deterministic jitter, so verification
// passes but still exercises the full comparison path.
func generateDatasets(workDir string, size int) (refPath, candPath string, err error) {
	rng := rand.New(rand.NewSource(int64(size)))
	methods := []schema.Method{schema.RigidMethod, schema.DecoupledMethod, schema.CoupledMethod}
	quakes := []string{"Northridge", "Loma Prieta", "Chi-Chi", "Kobe", "Imperial Valley"}

	refs := make([]schema.AnalysisRecord, 0, size)
	cands := make([]schema.AnalysisRecord, 0, size)
	for i := 0; i < size; i++ {
		normal := 1 + rng.Float64()*50
		inverse := normal * (0.3 + rng.Float64()*0.5)
		rec := schema.AnalysisRecord{
			AnalysisID: fmt.Sprintf("bench-%06d", i),
			GroundMotion: schema.GroundMotion{
				Earthquake:       quakes[i%len(quakes)],
				RecordStation:    fmt.Sprintf("Station %03d", i%200),
				TargetPGAg:       0.1 + rng.Float64()*0.7,
				GroundMotionFile: fmt.Sprintf("motion_%03d.txt", i%200),
			},
			Analysis: schema.AnalysisSettings{Method: methods[i%len(methods)]},
			SiteParams: schema.SiteParams{
				KyG: 0.05 + rng.Float64()*0.2,
			},
			Results: schema.EngineResults{
				NormalDisplacementCm:  normal,
				InverseDisplacementCm: inverse,
			},
		}
		refs = append(refs, rec)

		cand := rec
		jitter := 1 + (rng.Float64()-0.5)*0.002 // within 0.1%
		cand.Results.NormalDisplacementCm = normal * jitter
		cand.Results.InverseDisplacementCm = inverse * jitter
		cands = append(cands, cand)
	}

	dir := filepath.Join(workDir, fmt.Sprintf("size_%d", size))
	refPath = filepath.Join(dir, "results_slammer_v1.0.json.gz")
	candPath = filepath.Join(dir, "results_candidate_v1.0.json.gz")

	if err := writeDataset(refPath, "slammer", refs); err != nil {
		return "", "", err
	}
	if err := writeDataset(candPath, "candidate", cands); err != nil {
		return "", "", err
	}
	return refPath, candPath, nil
}

func writeDataset(path, program string, records []schema.AnalysisRecord) error {
	return dataset.Save(path, &schema.Dataset{
		SchemaVersion: schema.CurrentSchemaVersion,
		Metadata: schema.DatasetMetadata{
			SourceProgram: program,
			SourceVersion: "1.0",
			DateExtracted: time.Now().UTC().Format(time.RFC3339),
			TotalAnalyses: len(records),
		},
		Analyses: records,
	})
}

// runCommandSuite times one command over the configured number of runs.
func runCommandSuite(config BenchmarkConfig, size int, command, refPath, candPath string) BenchmarkResult {
	fmt.Printf("  Running %s (%d runs)\n", command, config.Runs)

	times := runBenchmark(config, command, refPath, candPath)
	if len(times) == 0 {
		return BenchmarkResult{Size: size, Command: command, AvgTime: "TIMEOUT", MinTime: "TIMEOUT", MaxTime: "TIMEOUT"}
	}

	var sum, minT, maxT float64
	minT = times[0]
	for _, t := range times {
		sum += t
		if t < minT {
			minT = t
		}
		if t > maxT {
			maxT = t
		}
	}
	avg := sum / float64(len(times))

	fmt.Printf("  %s: avg %.3fs, min %.3fs, max %.3fs\n", command, avg, minT, maxT)

	return BenchmarkResult{
		Size:    size,
		Command: command,
		AvgTime: fmt.Sprintf("%.3fs", avg),
		MinTime: fmt.Sprintf("%.3fs", minT),
		MaxTime: fmt.Sprintf("%.3fs", maxT),
	}
}

// runBenchmark executes a slipcheck command multiple times and returns the
// wall times of the successful runs.
func runBenchmark(config BenchmarkConfig, command, refPath, candPath string) []float64 {
	args := []string{
		command, refPath,
		"--candidate", candPath,
		"--workers", fmt.Sprintf("%d", config.Workers),
	}

	var times []float64
	for run := 1; run <= config.Runs; run++ {
		start := time.Now()

		cmd := exec.Command("slipcheck", args...)
		cmd.Dir = filepath.Dir(refPath)

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output, command) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			// Timeout - don't add to times
		}
	}
	return times
}

// isSuccess checks if command output indicates successful completion.
func isSuccess(output []byte, command string) bool {
	outputStr := string(output)
	if command == "verify" {
		return strings.Contains(outputStr, "All groups passed verification")
	}
	return len(outputStr) > 0
}

// saveResults writes benchmark results to a timestamped CSV file.
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/slipcheck_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"size", "cmd", "avg_time", "min_time", "max_time"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, result := range results {
		row := []string{
			fmt.Sprintf("%d", result.Size),
			result.Command,
			result.AvgTime,
			result.MinTime,
			result.MaxTime,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary.
func printSummary(config BenchmarkConfig, results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")

	for _, command := range config.Commands {
		fmt.Printf("%s:\n", command)
		for _, result := range results {
			if result.Command == command {
				fmt.Printf("  %-8d analyses: avg %s, min %s, max %s\n",
					result.Size, result.AvgTime, result.MinTime, result.MaxTime)
			}
		}
	}

	fmt.Printf("Benchmark script completed successfully\n")
}
