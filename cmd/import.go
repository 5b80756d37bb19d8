package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/veyl/fundcalc"
)

// importCmd holds the flags for the 'import' subcommand.
type importCmd struct {
	mapping fundcalc.ImportMapping
	output  string
}

func (*importCmd) Name() string { return "import" }
func (*importCmd) Synopsis() string {
	return "import reserve candidates from a third-party JSON export"
}
func (*importCmd) Usage() string {
	return `fce import [-root <path>] [-id <path>] ... <file>

  Reads an arbitrary JSON portfolio export and emits reserve candidates
  in the native JSONL form. Each field is located by a jsonpath
  expression evaluated relative to the company records selected by -root.

Usage Examples:
# Import from a CRM export where companies live under portfolio.positions.
$ fce import -root '$.portfolio.positions' -id '$.company' -invested '$.cost' export.json > candidates.jsonl

`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	def := fundcalc.DefaultImportMapping()
	f.StringVar(&c.mapping.Root, "root", def.Root, "Path selecting the company array.")
	f.StringVar(&c.mapping.ID, "id", def.ID, "Path to the company identifier.")
	f.StringVar(&c.mapping.Invested, "invested", def.Invested, "Path to invested capital.")
	f.StringVar(&c.mapping.CurrentValuation, "valuation", def.CurrentValuation, "Path to current valuation.")
	f.StringVar(&c.mapping.ExitMOIC, "moic", def.ExitMOIC, "Path to the expected exit MOIC.")
	f.StringVar(&c.mapping.PlannedReserve, "reserve", def.PlannedReserve, "Path to the planned reserve.")
	f.StringVar(&c.mapping.Cap, "cap", def.Cap, "Path to the allocation cap (optional in the export).")
	f.StringVar(&c.output, "o", "-", "Output file, '-' for stdout.")
}

func (c *importCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one export file expected.")
		return subcommands.ExitUsageError
	}

	in, err := openInput(f.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	defer in.Close()

	candidates, err := fundcalc.ImportCandidates(in, c.mapping, *defaultCurrency)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error importing candidates: %v\n", err)
		return subcommands.ExitFailure
	}

	out := os.Stdout
	if c.output != "-" {
		out, err = os.Create(c.output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating %q: %v\n", c.output, err)
			return subcommands.ExitFailure
		}
		defer out.Close()
	}

	if err := fundcalc.EncodeCandidates(out, candidates); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing candidates: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(os.Stderr, "Imported %d candidates.\n", len(candidates))
	return subcommands.ExitSuccess
}
