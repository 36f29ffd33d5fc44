package main

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/joshuapare/objpool/pkg/types"
	"github.com/joshuapare/objpool/pool/metrics"
)

var (
	benchOps         int
	benchLive        int
	benchSeed        uint64
	benchMetricsFile string
)

func init() {
	cmd := newBenchCmd()
	cmd.Flags().IntVarP(&benchOps, "ops", "n", 100000, "Number of allocations to perform")
	cmd.Flags().IntVar(&benchLive, "live", 4096, "Maximum number of live objects")
	cmd.Flags().Uint64Var(&benchSeed, "seed", 1, "Random seed for the workload")
	cmd.Flags().
		StringVar(&benchMetricsFile, "metrics-file", "", "Write Prometheus metrics to this file when done")
	rootCmd.AddCommand(cmd)
}

func newBenchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure allocation and free throughput",
		Long: `The bench command runs a random alloc/free workload over a bounded set of
live objects and reports throughput plus which tier served each free.

Example:
  poolctl bench
  poolctl bench -n 1000000 --live 16000 --policy lru
  poolctl bench --metrics-file pool.prom`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench()
		},
	}
	return cmd
}

// BenchReport summarizes a bench run.
type BenchReport struct {
	Ops       int         `json:"ops"`
	Elapsed   string      `json:"elapsed"`
	OpsPerSec float64     `json:"ops_per_sec"`
	L1HitRate float64     `json:"l1_hit_rate"`
	Stats     types.Stats `json:"stats"`
}

func runBench() error {
	p, err := newPool()
	if err != nil {
		return err
	}

	c := newChurn(p, benchLive, benchSeed)
	start := time.Now()
	for range benchOps {
		if err := c.step(); err != nil {
			return err
		}
	}
	elapsed := time.Since(start)
	if err := c.drain(); err != nil {
		return err
	}

	stats := p.Stats()
	rep := BenchReport{
		Ops:       benchOps,
		Elapsed:   elapsed.String(),
		OpsPerSec: float64(benchOps) / elapsed.Seconds(),
		L1HitRate: stats.L1HitRate(),
		Stats:     stats,
	}

	if benchMetricsFile != "" {
		reg := prometheus.NewRegistry()
		if err := reg.Register(metrics.NewCollector("bench", p)); err != nil {
			return err
		}
		if err := prometheus.WriteToTextfile(benchMetricsFile, reg); err != nil {
			return err
		}
		printVerbose("Wrote metrics to %s\n", benchMetricsFile)
	}

	if jsonOut {
		return printJSON(rep)
	}

	printInfo("%d allocs in %s (%.0f ops/s)\n", rep.Ops, rep.Elapsed, rep.OpsPerSec)
	printInfo("Frees: %d (L1 %d, L2 %d, scan %d), L1 hit rate %.1f%%\n",
		stats.Frees, stats.L1Hits, stats.L2Hits, stats.Scans, rep.L1HitRate*100)
	printVerbose("Constructed %d, reused %d, pages %d\n", stats.Constructs, stats.Reuses, stats.Pages)
	return nil
}
