package main

import (
	"fmt"
	"reflect"
	"time"

	"github.com/spf13/cobra"

	"github.com/joshuapare/objpool/pkg/types"
	"github.com/joshuapare/objpool/pool"
)

var (
	runVects int
)

func init() {
	cmd := newRunCmd()
	cmd.Flags().IntVar(&runVects, "vects", 8000, "Vects allocated on each side of the probe object")
	rootCmd.AddCommand(cmd)
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the reference allocation scenario",
		Long: `The run command allocates a Str, a batch of Vects, one Object, and a
second batch of Vects, then frees the Object and reports how long the free
took and which lookup tier found it.

Example:
  poolctl run
  poolctl run --vects 100
  OBJPOOL_L1_SIZE=4 poolctl run --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario()
		},
	}
	return cmd
}

// RunReport is the outcome of the reference scenario.
type RunReport struct {
	Allocs    int         `json:"allocs"`
	Pages     int         `json:"pages"`
	InUse     int         `json:"in_use"`
	ObjectLoc string      `json:"object_loc"`
	FreeTier  string      `json:"free_tier"`
	FreeTime  string      `json:"free_time"`
	Stats     types.Stats `json:"stats"`
}

func runScenario() error {
	p, err := newPool()
	if err != nil {
		return err
	}

	rep, err := scenario(p, runVects)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(rep)
	}

	printInfo("Allocated %d objects across %d pages (%d in use)\n", rep.Allocs, rep.Pages, rep.InUse)
	printVerbose("Object was at %s\n", rep.ObjectLoc)
	printInfo("Freed Object in %s via %s\n", rep.FreeTime, rep.FreeTier)
	printVerbose("L1 hits: %d, L1 stale: %d, L1 misses: %d, L2 hits: %d, scans: %d\n",
		rep.Stats.L1Hits, rep.Stats.L1Stale, rep.Stats.L1Misses, rep.Stats.L2Hits, rep.Stats.Scans)
	return nil
}

func scenario(p *pool.Pool, vects int) (RunReport, error) {
	var rep RunReport

	alloc := func(t reflect.Type) (pool.Handle, error) {
		h, err := p.Alloc(t)
		if err != nil {
			return h, fmt.Errorf("allocation %d (%s): %w", rep.Allocs, t, err)
		}
		rep.Allocs++
		return h, nil
	}
	allocVects := func() error {
		for range vects {
			if _, err := alloc(vectT); err != nil {
				return err
			}
		}
		return nil
	}

	if _, err := alloc(strT); err != nil {
		return rep, err
	}
	if err := allocVects(); err != nil {
		return rep, err
	}
	obj, err := alloc(objectT)
	if err != nil {
		return rep, err
	}
	if err := allocVects(); err != nil {
		return rep, err
	}

	start := time.Now()
	tier, err := p.FreeTier(obj)
	elapsed := time.Since(start)
	if err != nil {
		return rep, fmt.Errorf("free object: %w", err)
	}

	rep.Pages = p.PageCount()
	rep.InUse = p.InUse()
	rep.ObjectLoc = obj.Loc().String()
	rep.FreeTier = tier.String()
	rep.FreeTime = elapsed.String()
	rep.Stats = p.Stats()
	return rep, nil
}
