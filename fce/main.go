package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"

	"github.com/veyl/fundcalc/cmd"
)

func main() {
	// Shell completion, a no-op outside a completion request.
	completion().Complete("fce")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "documentation")
	commander.Register(commander.FlagsCommand(), "documentation")
	cmd.Register(commander)

	flag.Parse()

	// An unknown first argument may name an fce-<subcommand> extension.
	if args := flag.Args(); len(args) > 0 && !cmd.IsKnownCommand(args[0]) {
		if ran, code := cmd.RunExtension(args[0], args[1:]); ran {
			os.Exit(code)
		}
	}

	os.Exit(int(commander.Execute(context.Background())))
}

func completion() *complete.Command {
	jsonl := predict.Files("*.jsonl")
	globals := map[string]complete.Predictor{
		"fund-file": predict.Files("*.yaml"),
		"audit-db":  predict.Files("*.db"),
		"currency":  predict.Set{"USD", "EUR", "GBP"},
	}
	return &complete.Command{
		Flags: globals,
		Sub: map[string]*complete.Command{
			"xirr": {Flags: map[string]complete.Predictor{
				"flows":          jsonl,
				"guess":          predict.Something,
				"max-iterations": predict.Something,
				"tolerance":      predict.Something,
				"json":           predict.Nothing,
			}},
			"fees": {Flags: map[string]complete.Predictor{
				"years":   predict.Something,
				"periods": jsonl,
			}},
			"waterfall": {Flags: map[string]complete.Predictor{
				"events": jsonl,
				"strict": predict.Nothing,
			}},
			"reserves": {Flags: map[string]complete.Predictor{
				"candidates": jsonl,
				"budget":     predict.Something,
				"metric":     predict.Set{"exit-moic", "current-moic", "incremental-moic"},
				"cap":        predict.Set{"fixed-percent", "nav-ratio", "explicit"},
				"ratio":      predict.Something,
				"record":     predict.Nothing,
			}},
			"fmt": {Flags: map[string]complete.Predictor{
				"kind": predict.Set{"flows", "events", "candidates"},
			}, Args: jsonl},
			"import": {Flags: map[string]complete.Predictor{
				"root": predict.Something, "id": predict.Something,
				"invested": predict.Something, "valuation": predict.Something,
				"moic": predict.Something, "reserve": predict.Something,
				"cap": predict.Something, "o": jsonl,
			}, Args: predict.Files("*.json")},
			"topic": {Args: predict.Set{"readme", "xirr", "waterfall", "fees", "reserves"}},
		},
	}
}
