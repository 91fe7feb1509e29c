// Package main provides a performance benchmarking tool for the Benchtable CLI.
// It synthesizes result files of different sizes, times table generation for
// several output formats, running each test multiple times, treating the first
// successful run as cold and averaging the rest as warm, and generates CSV output
// for performance analysis and documentation.
//
// Prerequisites:
// - benchtable binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory that receives the synthetic result files and tables
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (history-less average, cold run and average of warm runs).
type BenchmarkResult struct {
	Size        string
	Format      string
	NoHistTime  string
	ColdTime    string
	WarmTime    string
	ResultFiles int
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir     string
	Timeout     time.Duration
	RunSets     int
	NoHistRuns  int
	HistoryRuns int
	TaskCounts  map[string]int
	Sizes       []string
	Formats     []string
}

func main() {
	// Parse command line arguments
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}
	workDir := os.Args[1]

	config := BenchmarkConfig{
		WorkDir:     workDir,
		Timeout:     5 * time.Minute,
		RunSets:     4,
		NoHistRuns:  3,
		HistoryRuns: 4,
		Sizes:       []string{"small", "medium", "large"},
		TaskCounts: map[string]int{
			"small":  100,
			"medium": 2000,
			"large":  20000,
		},
		Formats: []string{"csv", "html", "json", "parquet"},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(config, results)
}

// checkPrerequisites verifies that the benchtable binary and the work directory exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("benchtable"); err != nil {
		return fmt.Errorf("benchtable binary not found in PATH")
	}
	return os.MkdirAll(config.WorkDir, 0o755)
}

// runBenchmarks executes all benchmark tests across configured sizes
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d sizes, %d run-sets, %v timeout, no-history: %d runs, history: %d runs\n",
		len(config.Sizes), config.RunSets, config.Timeout, config.NoHistRuns, config.HistoryRuns)

	for _, size := range config.Sizes {
		sizeDir := filepath.Join(config.WorkDir, size)
		files, err := writeResultFiles(sizeDir, config.RunSets, config.TaskCounts[size])
		if err != nil {
			fmt.Printf("Skipping %s: %v\n", size, err)
			continue
		}
		fmt.Printf("Benchmarking %s (%d tasks)\n", size, config.TaskCounts[size])

		for _, format := range config.Formats {
			result := runBenchmarkSuite(config, size, sizeDir, format, files)
			results = append(results, result)
		}
	}

	return results
}

// writeResultFiles synthesizes one result file per run-set with the given number of tasks
func writeResultFiles(dir string, runSets, tasks int) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	statuses := []string{"true", "false(unreach-call)", "TIMEOUT", "unknown"}
	categories := []string{"correct", "correct", "error", "unknown"}

	var files []string
	for rs := range runSets {
		var b strings.Builder
		fmt.Fprintf(&b, "<?xml version=\"1.0\"?>\n<result benchmarkname=\"synthetic\" name=\"synthetic.rs%d\" tool=\"Tool\" version=\"1.%d\" timelimit=\"900 s\" memlimit=\"8 GB\">\n", rs, rs)
		for task := range tasks {
			// Shift outcomes between run-sets so the difference table is not empty
			outcome := (task + rs) % len(statuses)
			fmt.Fprintf(&b, "  <run name=\"../tasks/task%06d.c\" properties=\"unreach-call\">\n", task)
			fmt.Fprintf(&b, "    <column title=\"status\" value=\"%s\"/>\n", statuses[outcome])
			fmt.Fprintf(&b, "    <column title=\"category\" value=\"%s\" hidden=\"true\"/>\n", categories[outcome])
			fmt.Fprintf(&b, "    <column title=\"cputime\" value=\"%d.%03ds\"/>\n", (task*7+rs)%900, task%1000)
			fmt.Fprintf(&b, "    <column title=\"walltime\" value=\"%d.%03ds\"/>\n", (task*7+rs)%900+1, task%1000)
			b.WriteString("  </run>\n")
		}
		b.WriteString("</result>\n")

		file := filepath.Join(dir, fmt.Sprintf("synthetic.results.rs%d.xml", rs))
		if err := os.WriteFile(file, []byte(b.String()), 0o644); err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, nil
}

// runBenchmarkSuite runs both history-less and history benchmarks for a format
func runBenchmarkSuite(config BenchmarkConfig, size, dir, format string, files []string) BenchmarkResult {
	fmt.Printf("Running %s tables on %s\n", format, size)

	// Helper to run a benchmark phase
	runPhase := func(historyBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, dir, format, historyBackend, files, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avg := sum / float64(len(times))
			avgTime = fmt.Sprintf("%.3fs", avg)
		}
		return cold, avgTime
	}

	// Phase 1: No-history runs
	_, noHistAvg := runPhase("none", config.NoHistRuns, "No-history")

	// Phase 2: History runs
	coldTime, warmAvg := runPhase("sqlite", config.HistoryRuns, "History")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-history average: %s, Cold time: %s, Warm average: %s\n", noHistAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Size:        size,
		Format:      format,
		NoHistTime:  noHistAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
		ResultFiles: len(files),
	}
}

// runBenchmark executes benchtable generate multiple times and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, dir, format, historyBackend string, files []string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := []string{"generate", "--quiet", "--format", format, "--history-backend", historyBackend, "--outputpath", filepath.Join(dir, "out")}
	args = append(args, files...)

	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()

		cmd := exec.Command("benchtable", args...)
		cmd.Dir = dir

		done := make(chan bool)
		var cmdErr error

		go func() {
			_, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			// Timeout - don't add to times
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/benchtable_benchmark_%s.csv", timestamp)

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

	// Write header
	if err := writer.Write([]string{"size", "format", "result_files", "no_history_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write results
	for _, result := range results {
		record := []string{result.Size, result.Format, fmt.Sprint(result.ResultFiles), result.NoHistTime, result.ColdTime, result.WarmTime}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(config BenchmarkConfig, results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")

	for _, size := range config.Sizes {
		fmt.Printf("%s (%d tasks):\n", size, config.TaskCounts[size])
		for _, result := range results {
			if result.Size == size {
				fmt.Printf("  %-8s: No-history: %s, Cold: %s, Warm: %s\n", result.Format, result.NoHistTime, result.ColdTime, result.WarmTime)
			}
		}
	}

	fmt.Printf("Benchmark script completed successfully\n")
}
