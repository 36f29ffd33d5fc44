package main

import (
	"bufio"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleOutput = `goos: linux
goarch: amd64
pkg: github.com/joshuapare/objpool/pool
BenchmarkAllocFree/aging/empty-8         	 9000000	       120.0 ns/op	       0 B/op	       0 allocs/op
BenchmarkAllocFree/lru/empty-8           	 8000000	       150.0 ns/op	      16 B/op	       1 allocs/op
BenchmarkAllocFree/aging/8000live-8      	 5000000	       300.0 ns/op	       0 B/op	       0 allocs/op
BenchmarkAllocFree/lru/8000live-8        	 5000000	       240.0 ns/op	       0 B/op	       0 allocs/op
{"Action":"output","Output":"BenchmarkInsertEvict/lru/l1-8 \t 1000 \t 50.0 ns/op\n"}
BenchmarkSomethingElse-8                 	 1000000	      1000 ns/op
PASS
`

func TestParseBenchmarks(t *testing.T) {
	results := parseBenchmarks(bufio.NewScanner(strings.NewReader(sampleOutput)))
	require.Len(t, results, 5)

	first := results[0]
	assert.Equal(t, "AllocFree", first.Operation)
	assert.Equal(t, "aging", first.Policy)
	assert.Equal(t, "empty", first.Workload)
	assert.Equal(t, 9000000, first.Iterations)
	assert.InDelta(t, 120.0, first.NsPerOp, 1e-9)

	assert.Equal(t, int64(16), results[1].BytesPerOp)
	assert.Equal(t, int64(1), results[1].AllocsPerOp)

	last := results[4]
	assert.Equal(t, "InsertEvict", last.Operation)
	assert.Equal(t, "l1", last.Workload)
}

func TestParseName(t *testing.T) {
	tests := []struct {
		name     string
		ok       bool
		op       string
		policy   string
		workload string
	}{
		{"BenchmarkFreeAll/lru/4096oldest-16", true, "FreeAll", "lru", "4096oldest"},
		{"BenchmarkInsertEvict/aging/l2", true, "InsertEvict", "aging", "l2"},
		{"BenchmarkX/aging-4", true, "X", "aging", ""},
		{"BenchmarkX/fifo/a-4", false, "", "", ""},
		{"BenchmarkX-4", false, "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, ok := parseName(tt.name)
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.op, r.Operation)
			assert.Equal(t, tt.policy, r.Policy)
			assert.Equal(t, tt.workload, r.Workload)
		})
	}
}

func TestGenerateComparisons(t *testing.T) {
	results := parseBenchmarks(bufio.NewScanner(strings.NewReader(sampleOutput)))
	comps := generateComparisons(results)
	require.Len(t, comps, 3)

	// Sorted by operation, then workload.
	assert.Equal(t, "AllocFree", comps[0].Operation)
	assert.Equal(t, "8000live", comps[0].Workload)
	assert.InDelta(t, 0.8, comps[0].Speedup, 1e-9)
	assert.Equal(t, "empty", comps[1].Workload)
	assert.InDelta(t, 1.25, comps[1].Speedup, 1e-9)
	assert.Equal(t, "lru", comps[2].Unpaired)

	report := generateMarkdownReport(comps, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	assert.Contains(t, report, "Generated: 2026-01-02 03:04:05")
	assert.Contains(t, report, "- **Paired** (both policies): 2")
	assert.Contains(t, report, "| AllocFree | empty | 120 | 150 | **1.25x** | 0B vs 16B | 0 vs 1 |")
	assert.Contains(t, report, "| AllocFree | 8000live | 300 | 240 | 0.80x | 0B vs 0B | 0 vs 0 |")
	assert.Contains(t, report, "*lru only*")
}
