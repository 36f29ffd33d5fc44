// Command benchmark_parser turns `go test -bench` output into a markdown
// report comparing the aging and LRU cache policies.
//
//	go test -bench . -benchmem ./pool/... | go run ./scripts -output bench.md
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// BenchmarkResult represents a parsed benchmark result.
type BenchmarkResult struct {
	Name        string
	Operation   string
	Workload    string
	Policy      string // "aging" or "lru"
	Iterations  int
	NsPerOp     float64
	BytesPerOp  int64
	AllocsPerOp int64
}

// ComparisonResult pairs the aging and LRU runs of one operation and workload.
type ComparisonResult struct {
	Operation   string
	Workload    string
	AgingNs     float64
	LRUNs       float64
	Speedup     float64 // LRUNs / AgingNs
	AgingMem    int64
	LRUMem      int64
	AgingAllocs int64
	LRUAllocs   int64
	Unpaired    string // policy of a result with no counterpart
}

var (
	inputFile = flag.String(
		"input",
		"",
		"Input file with benchmark output (stdin if not specified)",
	)
	outputFile = flag.String("output", "", "Output markdown file (stdout if not specified)")
	quiet      = flag.Bool("quiet", false, "Suppress progress output")
)

// benchmarkRegex matches lines such as
// BenchmarkAllocFree/aging/8000live-8    1000000    112.4 ns/op    0 B/op    0 allocs/op
var benchmarkRegex = regexp.MustCompile(
	`^(Benchmark\S+)\s+(\d+)\s+([\d.]+)\s+ns/op(?:\s+([\d.]+)\s+B/op)?(?:\s+([\d.]+)\s+allocs/op)?`,
)

func main() {
	flag.Parse()

	var in io.Reader = os.Stdin
	if *inputFile != "" {
		f, err := os.Open(*inputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening input file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	results := parseBenchmarks(bufio.NewScanner(in))
	if !*quiet {
		fmt.Fprintf(os.Stderr, "Parsed %d benchmark results\n", len(results))
	}

	comparisons := generateComparisons(results)
	if !*quiet {
		fmt.Fprintf(os.Stderr, "Generated %d comparisons\n", len(comparisons))
	}

	report := generateMarkdownReport(comparisons, time.Now())

	if *outputFile == "" {
		fmt.Fprint(os.Stdout, report)
		return
	}
	if err := os.WriteFile(*outputFile, []byte(report), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
		os.Exit(1)
	}
	if !*quiet {
		fmt.Fprintf(os.Stderr, "Report written to %s\n", *outputFile)
	}
}

func parseBenchmarks(scanner *bufio.Scanner) []BenchmarkResult {
	var results []BenchmarkResult

	for scanner.Scan() {
		line := scanner.Text()

		// Lines from `go test -json` carry the benchmark text in Output.
		var testEvent map[string]any
		if err := json.Unmarshal([]byte(line), &testEvent); err == nil {
			if output, ok := testEvent["Output"].(string); ok {
				line = output
			}
		}

		matches := benchmarkRegex.FindStringSubmatch(strings.TrimSpace(line))
		if matches == nil {
			continue
		}

		r, ok := parseName(matches[1])
		if !ok {
			continue
		}
		r.Iterations, _ = strconv.Atoi(matches[2])
		r.NsPerOp, _ = strconv.ParseFloat(matches[3], 64)
		if matches[4] != "" {
			r.BytesPerOp, _ = strconv.ParseInt(matches[4], 10, 64)
		}
		if matches[5] != "" {
			r.AllocsPerOp, _ = strconv.ParseInt(matches[5], 10, 64)
		}
		results = append(results, r)
	}

	return results
}

// parseName splits Benchmark<Operation>/<policy>[/<workload>]-<procs>.
func parseName(name string) (BenchmarkResult, bool) {
	parts := strings.Split(name, "/")
	if len(parts) < 2 {
		return BenchmarkResult{}, false
	}

	last := parts[len(parts)-1]
	if dash := strings.LastIndex(last, "-"); dash > 0 {
		if _, err := strconv.Atoi(last[dash+1:]); err == nil {
			parts[len(parts)-1] = last[:dash]
		}
	}

	r := BenchmarkResult{
		Name:      name,
		Operation: strings.TrimPrefix(parts[0], "Benchmark"),
		Policy:    parts[1],
	}
	if r.Policy != "aging" && r.Policy != "lru" {
		return BenchmarkResult{}, false
	}
	if len(parts) >= 3 {
		r.Workload = strings.Join(parts[2:], "/")
	}
	return r, true
}

func generateComparisons(results []BenchmarkResult) []ComparisonResult {
	type key struct {
		operation string
		workload  string
	}

	grouped := make(map[key]map[string]BenchmarkResult)
	for _, result := range results {
		k := key{result.Operation, result.Workload}
		if grouped[k] == nil {
			grouped[k] = make(map[string]BenchmarkResult)
		}
		grouped[k][result.Policy] = result
	}

	var comparisons []ComparisonResult
	for k, runs := range grouped {
		aging, hasAging := runs["aging"]
		lru, hasLRU := runs["lru"]

		c := ComparisonResult{Operation: k.operation, Workload: k.workload}
		switch {
		case hasAging && hasLRU:
			c.AgingNs, c.LRUNs = aging.NsPerOp, lru.NsPerOp
			c.AgingMem, c.LRUMem = aging.BytesPerOp, lru.BytesPerOp
			c.AgingAllocs, c.LRUAllocs = aging.AllocsPerOp, lru.AllocsPerOp
			if aging.NsPerOp > 0 {
				c.Speedup = lru.NsPerOp / aging.NsPerOp
			}
		case hasAging:
			c.Unpaired = "aging"
			c.AgingNs, c.AgingMem, c.AgingAllocs = aging.NsPerOp, aging.BytesPerOp, aging.AllocsPerOp
		default:
			c.Unpaired = "lru"
			c.LRUNs, c.LRUMem, c.LRUAllocs = lru.NsPerOp, lru.BytesPerOp, lru.AllocsPerOp
		}
		comparisons = append(comparisons, c)
	}

	sort.Slice(comparisons, func(i, j int) bool {
		if comparisons[i].Operation != comparisons[j].Operation {
			return comparisons[i].Operation < comparisons[j].Operation
		}
		return comparisons[i].Workload < comparisons[j].Workload
	})

	return comparisons
}

func generateMarkdownReport(comparisons []ComparisonResult, now time.Time) string {
	var sb strings.Builder

	sb.WriteString("# Cache Policy Benchmark Report\n\n")
	fmt.Fprintf(&sb, "Generated: %s\n\n", now.Format("2006-01-02 15:04:05"))

	agingFaster, lruFaster, unpaired := 0, 0, 0
	totalSpeedup := 0.0
	for _, c := range comparisons {
		switch {
		case c.Unpaired != "":
			unpaired++
		case c.Speedup > 1.0:
			agingFaster++
		case c.Speedup < 1.0:
			lruFaster++
		}
		if c.Unpaired == "" {
			totalSpeedup += c.Speedup
		}
	}
	paired := len(comparisons) - unpaired
	avgSpeedup := 0.0
	if paired > 0 {
		avgSpeedup = totalSpeedup / float64(paired)
	}

	sb.WriteString("## Summary\n\n")
	fmt.Fprintf(&sb, "- **Total benchmarks**: %d\n", len(comparisons))
	fmt.Fprintf(&sb, "- **Paired** (both policies): %d\n", paired)
	fmt.Fprintf(&sb, "  - aging faster: %d\n", agingFaster)
	fmt.Fprintf(&sb, "  - lru faster: %d\n", lruFaster)
	fmt.Fprintf(&sb, "  - Average lru/aging time: **%.2fx**\n", avgSpeedup)
	fmt.Fprintf(&sb, "- **Unpaired**: %d\n\n", unpaired)

	sb.WriteString("## Detailed Results\n\n")
	sb.WriteString("| Operation | Workload | aging (ns/op) | lru (ns/op) | lru/aging | Memory (B/op) | Allocs |\n")
	sb.WriteString("|-----------|----------|---------------|-------------|-----------|---------------|--------|\n")

	for _, c := range comparisons {
		switch c.Unpaired {
		case "aging":
			fmt.Fprintf(&sb, "| %s | %s | %s | *N/A* | *aging only* | %s | %s |\n",
				c.Operation, c.Workload, formatNumber(c.AgingNs),
				formatBytes(c.AgingMem), formatNumber(float64(c.AgingAllocs)))
		case "lru":
			fmt.Fprintf(&sb, "| %s | %s | *N/A* | %s | *lru only* | %s | %s |\n",
				c.Operation, c.Workload, formatNumber(c.LRUNs),
				formatBytes(c.LRUMem), formatNumber(float64(c.LRUAllocs)))
		default:
			style := "**"
			if c.Speedup < 1.0 {
				style = ""
			}
			fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s%.2fx%s | %s vs %s | %s vs %s |\n",
				c.Operation, c.Workload,
				formatNumber(c.AgingNs), formatNumber(c.LRUNs),
				style, c.Speedup, style,
				formatBytes(c.AgingMem), formatBytes(c.LRUMem),
				formatNumber(float64(c.AgingAllocs)), formatNumber(float64(c.LRUAllocs)))
		}
	}

	sb.WriteString("\n## Notes\n\n")
	sb.WriteString("- **lru/aging > 1.0**: aging is faster\n")
	sb.WriteString("- **lru/aging < 1.0**: lru is faster\n")
	sb.WriteString("- **Memory and allocations**: lower is better\n")

	return sb.String()
}

func formatNumber(n float64) string {
	if n >= 1000000 {
		return fmt.Sprintf("%.2fM", n/1000000)
	} else if n >= 1000 {
		return fmt.Sprintf("%.1fK", n/1000)
	}
	return fmt.Sprintf("%.0f", n)
}

func formatBytes(b int64) string {
	if b >= 1024*1024 {
		return fmt.Sprintf("%.2fMB", float64(b)/(1024*1024))
	} else if b >= 1024 {
		return fmt.Sprintf("%.1fKB", float64(b)/1024)
	}
	return fmt.Sprintf("%dB", b)
}
