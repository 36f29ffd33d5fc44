package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/objpool/pool/verify"
)

var (
	verifyOps   int
	verifyLive  int
	verifySeed  uint64
	verifyEvery int
)

func init() {
	cmd := newVerifyCmd()
	cmd.Flags().IntVarP(&verifyOps, "ops", "n", 20000, "Number of allocations to perform")
	cmd.Flags().IntVar(&verifyLive, "live", 2048, "Maximum number of live objects")
	cmd.Flags().Uint64Var(&verifySeed, "seed", 1, "Random seed for the workload")
	cmd.Flags().IntVar(&verifyEvery, "every", 1000, "Check invariants every N allocations")
	rootCmd.AddCommand(cmd)
}

func newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check pool invariants under a random workload",
		Long: `The verify command runs a random alloc/free workload and checks page,
type table and cache invariants at regular intervals and after draining.

Example:
  poolctl verify
  poolctl verify -n 200000 --every 100 --seed 42`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify()
		},
	}
	return cmd
}

// VerifyReport is the outcome of a verify run.
type VerifyReport struct {
	Ops    int    `json:"ops"`
	Checks int    `json:"checks"`
	Valid  bool   `json:"valid"`
	Error  string `json:"error,omitempty"`
}

func runVerify() error {
	if verifyEvery <= 0 {
		return fmt.Errorf("--every must be positive")
	}

	p, err := newPool()
	if err != nil {
		return err
	}

	rep := VerifyReport{Ops: verifyOps, Valid: true}
	check := func() error {
		rep.Checks++
		snap := p.Snapshot()
		if err := verify.AllInvariants(snap); err != nil {
			return err
		}
		return verify.UniqueHashes(snap)
	}

	c := newChurn(p, verifyLive, verifySeed)
	var failure error
	for i := 1; i <= verifyOps && failure == nil; i++ {
		if err := c.step(); err != nil {
			return err
		}
		if i%verifyEvery == 0 {
			failure = check()
			printVerbose("step %d: %d live\n", i, p.InUse())
		}
	}
	if failure == nil {
		if err := c.drain(); err != nil {
			return err
		}
		failure = check()
	}
	if failure != nil {
		rep.Valid = false
		rep.Error = failure.Error()
	}

	if jsonOut {
		if err := printJSON(rep); err != nil {
			return err
		}
	} else if rep.Valid {
		printInfo("OK: %d allocations, %d invariant checks\n", rep.Ops, rep.Checks)
	}
	if failure != nil {
		return fmt.Errorf("invariant violated: %w", failure)
	}
	return nil
}
