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

// waterfallCmd holds the flags for the 'waterfall' subcommand.
type waterfallCmd struct {
	eventsFile string
	strict     bool
}

func (*waterfallCmd) Name() string { return "waterfall" }
func (*waterfallCmd) Synopsis() string {
	return "run distribution events through the fund's waterfall"
}
func (*waterfallCmd) Usage() string {
	return `fce waterfall -events <file> [-strict]

  Allocates each distribution event across the waterfall tiers (return of
  capital, preferred return, GP catch-up, carry) in chronological order,
  then reports cumulative totals and any clawback owed.
`
}

func (c *waterfallCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.eventsFile, "events", "-", "Distribution events file (JSONL), '-' for stdin.")
	f.BoolVar(&c.strict, "strict", false, "Fail on a conservation violation instead of logging it.")
}

func (c *waterfallCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := LoadFund()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading fund: %v\n", err)
		return subcommands.ExitFailure
	}

	in, err := openInput(c.eventsFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	defer in.Close()

	events, err := fundcalc.DecodeEvents(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error decoding events: %v\n", err)
		return subcommands.ExitFailure
	}

	w, err := fundcalc.NewWaterfall(cfg, fundcalc.StandardTiers(cfg), c.strict)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building waterfall: %v\n", err)
		return subcommands.ExitFailure
	}
	for _, e := range events {
		if _, err := w.Process(e); err != nil {
			fmt.Fprintf(os.Stderr, "Error processing event on %s: %v\n", e.Date, err)
			return subcommands.ExitFailure
		}
	}

	printMarkdown(renderer.WaterfallMarkdown(cfg, w))
	return subcommands.ExitSuccess
}
