// Package cmd implements the CLI application to run fund economics reports.
package cmd

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"
	"github.com/veyl/fundcalc"
	"github.com/veyl/fundcalc/recorder"
)

// Environment variables overriding the global flag defaults, also passed
// down to extension binaries.
const (
	EnvFundFile        = "FCE_FUND_FILE"
	EnvAuditDB         = "FCE_AUDIT_DB"
	EnvDefaultCurrency = "FCE_CURRENCY"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&xirrCmd{}, "engines")
	c.Register(&feesCmd{}, "engines")
	c.Register(&waterfallCmd{}, "engines")
	c.Register(&reservesCmd{}, "engines")

	c.Register(&fmtCmd{}, "data")
	c.Register(&importCmd{}, "data")

	c.Register(&topicCmd{}, "documentation")

	for _, name := range []string{"xirr", "fees", "waterfall", "reserves", "fmt", "import", "topic"} {
		knownCommands[name] = true
	}
}

// knownCommands lets the main package distinguish a typo from an
// extension invocation.
var knownCommands = map[string]bool{}

// IsKnownCommand reports whether name is a registered subcommand.
func IsKnownCommand(name string) bool { return knownCommands[name] }

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var fundFile = flag.String("fund-file", envOr(EnvFundFile, "fund.yaml"), "Path to the fund configuration file (YAML)")
var auditFile = flag.String("audit-db", os.Getenv(EnvAuditDB), "Path to the SQLite audit store (empty disables recording)")
var defaultCurrency = flag.String("currency", envOr(EnvDefaultCurrency, "USD"), "Currency for amounts given on the command line")

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// LoadFund reads the fund configuration named by the global flag.
func LoadFund() (*fundcalc.FundConfig, error) {
	return fundcalc.LoadFundConfig(*fundFile)
}

// OpenRecorder opens the audit store named by the global flag, or a no-op
// recorder when none is configured.
func OpenRecorder() (recorder.Recorder, error) {
	if *auditFile == "" {
		return recorder.NewNoopRecorder(), nil
	}
	return recorder.NewSQLiteRecorder(*auditFile)
}

// openInput opens a data file for reading, with "-" standing for stdin.
func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open %q: %w", path, err)
	}
	return f, nil
}
