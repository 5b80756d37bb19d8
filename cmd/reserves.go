package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/veyl/fundcalc"
	"github.com/veyl/fundcalc/renderer"
)

// reservesCmd holds the flags for the 'reserves' subcommand.
type reservesCmd struct {
	candidatesFile string
	budget         string
	metric         string
	capPolicy      string
	capRatio       string
	record         bool
}

func (*reservesCmd) Name() string     { return "reserves" }
func (*reservesCmd) Synopsis() string { return "allocate a reserve budget over portfolio companies" }
func (*reservesCmd) Usage() string {
	return `fce reserves -candidates <file> -budget <amount> [-metric <m>] [-cap <p>] [-ratio <r>] [-record]

  Ranks candidates by the chosen MOIC variant and allocates the budget
  greedily in rank order, ties broken by company id. With -record, the
  resulting ledger is written to the audit store as a new version.
`
}

func (c *reservesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.candidatesFile, "candidates", "-", "Reserve candidates file (JSONL), '-' for stdin.")
	f.StringVar(&c.budget, "budget", "", "Reserve budget to allocate, in the default currency.")
	f.StringVar(&c.metric, "metric", "exit-moic", "Ranking metric (exit-moic, current-moic, incremental-moic).")
	f.StringVar(&c.capPolicy, "cap", "explicit", "Cap policy (fixed-percent, nav-ratio, explicit).")
	f.StringVar(&c.capRatio, "ratio", "0", "Cap fraction for the fixed-percent and nav-ratio policies.")
	f.BoolVar(&c.record, "record", false, "Record the resulting ledger in the audit store.")
}

func (c *reservesCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	budget, err := fundcalc.ParseRawMoney(c.budget, *defaultCurrency)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing budget: %v\n", err)
		return subcommands.ExitUsageError
	}

	var policy fundcalc.AllocationPolicy
	if policy.Metric, err = fundcalc.ParseRankMetric(c.metric); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	if policy.Cap, err = fundcalc.ParseCapPolicy(c.capPolicy); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	if policy.CapRatio, err = fundcalc.ParseRate(c.capRatio); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing cap ratio: %v\n", err)
		return subcommands.ExitUsageError
	}

	in, err := openInput(c.candidatesFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	defer in.Close()

	candidates, err := fundcalc.DecodeCandidates(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error decoding candidates: %v\n", err)
		return subcommands.ExitFailure
	}

	report, err := fundcalc.Allocate(candidates, budget, policy)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error allocating reserves: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.record {
		cfg, err := LoadFund()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading fund: %v\n", err)
			return subcommands.ExitFailure
		}
		rec, err := OpenRecorder()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening audit store: %v\n", err)
			return subcommands.ExitFailure
		}
		defer rec.Close()
		run, err := rec.RecordAllocation(cfg.Name, budget, policy, report)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error recording run: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Fprintf(os.Stderr, "Recorded run %s (version %d) for %q.\n", run.RunID, run.Version, run.Fund)
	}

	printMarkdown(renderer.ReservesMarkdown(budget, policy, report))
	return subcommands.ExitSuccess
}
