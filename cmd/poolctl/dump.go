package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/objpool/pool"
	"github.com/joshuapare/objpool/pool/printer"
)

var (
	dumpPage      int
	dumpL1        bool
	dumpL2        bool
	dumpVects     int
	dumpFreeEvery int
	dumpEmpty     bool
)

func init() {
	cmd := newDumpCmd()
	cmd.Flags().IntVar(&dumpPage, "page", -1, "Dump a single page")
	cmd.Flags().BoolVar(&dumpL1, "l1", false, "Dump only the global L1 cache")
	cmd.Flags().BoolVar(&dumpL2, "l2", false, "Dump only the L2 cache of --page")
	cmd.Flags().IntVar(&dumpVects, "vects", 16, "Vects allocated before dumping")
	cmd.Flags().IntVar(&dumpFreeEvery, "free-every", 0, "Free every Nth Vect before dumping")
	cmd.Flags().BoolVar(&dumpEmpty, "show-empty", false, "Include empty cache positions")
	rootCmd.AddCommand(cmd)
}

func newDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Dump pages and caches after a small workload",
		Long: `The dump command allocates a few objects, optionally frees some of them,
and prints the resulting pages, slot caches and global cache.

Example:
  poolctl dump
  poolctl dump --vects 40 --free-every 3 --page 0
  poolctl dump --l1 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump()
		},
	}
	return cmd
}

func runDump() error {
	if dumpL2 && dumpPage < 0 {
		return fmt.Errorf("--l2 requires --page")
	}

	p, err := newPool()
	if err != nil {
		return err
	}
	if err := populate(p, dumpVects, dumpFreeEvery); err != nil {
		return err
	}

	opts := printer.DefaultOptions()
	opts.ShowEmptyCache = dumpEmpty
	if jsonOut {
		opts.Format = printer.FormatJSON
	}

	switch {
	case dumpL1:
		return p.DumpL1(os.Stdout, opts)
	case dumpL2:
		return p.DumpL2(os.Stdout, dumpPage, opts)
	case dumpPage >= 0:
		return p.DumpPage(os.Stdout, dumpPage, opts)
	default:
		return p.Dump(os.Stdout, opts)
	}
}

// populate allocates a Str, n Vects and an Object, then frees every
// freeEvery-th Vect.
func populate(p *pool.Pool, n, freeEvery int) error {
	if _, err := p.Alloc(strT); err != nil {
		return err
	}
	vects := make([]pool.Handle, 0, n)
	for range n {
		h, err := p.Alloc(vectT)
		if err != nil {
			return err
		}
		vects = append(vects, h)
	}
	if _, err := p.Alloc(objectT); err != nil {
		return err
	}
	if freeEvery <= 0 {
		return nil
	}
	for i := 0; i < len(vects); i += freeEvery {
		if err := p.Free(vects[i]); err != nil {
			return err
		}
	}
	return nil
}
