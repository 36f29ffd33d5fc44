package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/objpool/internal/logger"
	"github.com/joshuapare/objpool/pool"
	"github.com/joshuapare/objpool/pool/cache"
)

var (
	// Global flags
	verbose  bool
	quiet    bool
	jsonOut  bool
	logAlloc bool
	policy   string
)

var rootCmd = &cobra.Command{
	Use:   "poolctl",
	Short: "Exercise and inspect the object pool allocator",
	Long: `poolctl drives the paged object pool through allocation workloads,
reports which cache tier served each free, and dumps pages and caches.

Capacities come from OBJPOOL_* environment variables (OBJPOOL_PAGE_SIZE,
OBJPOOL_PAGE_COUNT, OBJPOOL_DIVERSITY, OBJPOOL_L1_SIZE, OBJPOOL_L2_SIZE,
OBJPOOL_L1_POLICY, OBJPOOL_L2_POLICY).`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(logger.Options{Enabled: logAlloc, Level: slog.LevelDebug})
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().
		BoolVar(&logAlloc, "log-alloc", false, "Trace page and cache decisions to stderr")
	rootCmd.PersistentFlags().
		StringVar(&policy, "policy", "", "Cache eviction policy for both levels (aging, lru)")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newPool builds a pool from the environment plus global flags.
func newPool() (*pool.Pool, error) {
	cfg, err := pool.ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	if policy != "" {
		p, err := cache.ParsePolicy(policy)
		if err != nil {
			return nil, err
		}
		cfg.L1Policy, cfg.L2Policy = p, p
	}
	cfg.LogAlloc = logAlloc
	return pool.New(newFactory(), pool.WithConfig(cfg))
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
