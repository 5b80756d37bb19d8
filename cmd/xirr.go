package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/veyl/fundcalc"
	"github.com/veyl/fundcalc/renderer"
)

// xirrCmd holds the flags for the 'xirr' subcommand.
type xirrCmd struct {
	flowsFile string
	guess     float64
	maxIter   int
	tolerance float64
	asJSON    bool
}

func (*xirrCmd) Name() string     { return "xirr" }
func (*xirrCmd) Synopsis() string { return "compute the annualized IRR of a cash-flow schedule" }
func (*xirrCmd) Usage() string {
	return `fce xirr -flows <file> [-guess <rate>] [-json]

  Computes the annualized internal rate of return of irregularly spaced
  cash flows (Actual/365). Reads one JSON cash flow per line, negative
  amounts are capital calls, positive are distributions.
`
}

func (c *xirrCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.flowsFile, "flows", "-", "Cash-flow schedule file (JSONL), '-' for stdin.")
	f.Float64Var(&c.guess, "guess", 0.1, "Initial rate guess for the solver.")
	f.IntVar(&c.maxIter, "max-iterations", 0, "Iteration ceiling per method (0 uses the default).")
	f.Float64Var(&c.tolerance, "tolerance", 0, "Convergence tolerance on NPV (0 uses the default).")
	f.BoolVar(&c.asJSON, "json", false, "Print the solution as JSON instead of a report.")
}

func (c *xirrCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	in, err := openInput(c.flowsFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	defer in.Close()

	s, err := fundcalc.DecodeFlows(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error decoding cash flows: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := s.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid schedule: %v\n", err)
		return subcommands.ExitUsageError
	}

	sol, err := fundcalc.Solve(s, fundcalc.SolverOptions{
		Guess:         c.guess,
		MaxIterations: c.maxIter,
		Tolerance:     c.tolerance,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error solving IRR: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.asJSON {
		b, err := json.MarshalIndent(sol, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding solution: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Println(string(b))
		return subcommands.ExitSuccess
	}

	printMarkdown(renderer.XIRRMarkdown(s, sol))
	return subcommands.ExitSuccess
}
