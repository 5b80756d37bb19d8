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

// feesCmd holds the flags for the 'fees' subcommand.
type feesCmd struct {
	years       int
	periodsFile string
}

func (*feesCmd) Name() string     { return "fees" }
func (*feesCmd) Synopsis() string { return "compute the management fee timeline of a fund" }
func (*feesCmd) Usage() string {
	return `fce fees [-years <n> | -periods <file>]

  Computes the yearly management fees owed under the fund's fee basis,
  headline rate and step-downs. For the called and fmv bases, per-year
  capital inputs must be supplied with -periods (one JSON object per
  line: {"year":1,"called":...,"fmv":...}).
`
}

func (c *feesCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.years, "years", 10, "Number of fund years to compute (committed basis only).")
	f.StringVar(&c.periodsFile, "periods", "", "Per-year basis inputs (JSONL), '-' for stdin. Overrides -years.")
}

func (c *feesCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := LoadFund()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading fund: %v\n", err)
		return subcommands.ExitFailure
	}

	var periods []fundcalc.FeePeriod
	if c.periodsFile != "" {
		in, err := openInput(c.periodsFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitUsageError
		}
		defer in.Close()
		periods, err = fundcalc.DecodePeriods(in)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error decoding fee periods: %v\n", err)
			return subcommands.ExitFailure
		}
	} else {
		if cfg.FeeBasis != fundcalc.BasisCommitted {
			fmt.Fprintf(os.Stderr, "The %s basis needs per-year inputs, use -periods.\n", cfg.FeeBasis)
			return subcommands.ExitUsageError
		}
		for y := 1; y <= c.years; y++ {
			periods = append(periods, fundcalc.FeePeriod{Year: y})
		}
	}

	tl, err := fundcalc.ComputeFeeTimeline(cfg, periods)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing fees: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.FeesMarkdown(cfg, periods, tl))
	return subcommands.ExitSuccess
}
