// Package recorder persists reserve allocation runs for audit.
package recorder

import (
	"time"

	"github.com/veyl/fundcalc"
)

// AllocationRun is one recorded allocation: the policy inputs, the emitted
// ledger rows, and the version the store assigned. Rows are immutable once
// recorded; a re-run produces a new version, never an update.
type AllocationRun struct {
	RunID       string // assigned by the store
	Fund        string
	Version     int64 // monotonically increasing per fund
	RecordedAt  time.Time
	Budget      fundcalc.Money
	Metric      string
	CapPolicy   string
	Rows        []fundcalc.AllocationLedgerRow
	Unallocated fundcalc.Money
}

// Recorder persists allocation runs for later audit.
type Recorder interface {
	// RecordAllocation stores one run and returns it with RunID, Version
	// and RecordedAt filled in.
	RecordAllocation(fund string, budget fundcalc.Money, policy fundcalc.AllocationPolicy, report *fundcalc.AllocationReport) (*AllocationRun, error)
	// Runs returns all recorded runs for a fund, oldest version first,
	// without their rows.
	Runs(fund string) ([]AllocationRun, error)
	// Run loads one full run, rows included.
	Run(runID string) (*AllocationRun, error)
	Close() error
}
