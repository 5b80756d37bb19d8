package fundcalc

import (
	"fmt"
	"sort"
)

// CashFlow is a single dated fund cash movement. Negative amounts are
// capital calls (money into investments), positive amounts are
// distributions back.
type CashFlow struct {
	Date   Date
	Amount Money
}

func (c CashFlow) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("date", c.Date)
	w.EmbedFrom(c.Amount)
	return w.MarshalJSON()
}

// Schedule is a valid cash-flow series: sorted ascending by date, with
// same-day flows aggregated into one entry.
//
// A Schedule is built once from raw flows and read-only afterwards.
type Schedule struct {
	flows []CashFlow
}

// NewSchedule builds a Schedule from raw flows. Flows are sorted
// ascending by date and same-day flows are merged (amounts summed) before
// any computation uses them, so input order never matters.
func NewSchedule(flows []CashFlow) *Schedule {
	sorted := make([]CashFlow, len(flows))
	copy(sorted, flows)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	merged := make([]CashFlow, 0, len(sorted))
	for _, f := range sorted {
		if n := len(merged); n > 0 && merged[n-1].Date == f.Date {
			merged[n-1].Amount = merged[n-1].Amount.Add(f.Amount)
			continue
		}
		merged = append(merged, f)
	}
	return &Schedule{flows: merged}
}

// Flows returns the normalized series in chronological order.
func (s *Schedule) Flows() []CashFlow { return s.flows }

// Len returns the number of (merged) flows.
func (s *Schedule) Len() int { return len(s.flows) }

// Start returns the date of the first flow. Zero date on an empty schedule.
func (s *Schedule) Start() Date {
	if len(s.flows) == 0 {
		return Date{}
	}
	return s.flows[0].Date
}

// Validate checks the root-finding preconditions: at least two flows and
// at least one sign change. Zero-amount flows carry no sign.
func (s *Schedule) Validate() error {
	if len(s.flows) < 2 {
		return fmt.Errorf("cash-flow series has %d flow(s), want at least 2", len(s.flows))
	}
	hasNegative, hasPositive := false, false
	for _, f := range s.flows {
		if f.Amount.IsNegative() {
			hasNegative = true
		}
		if f.Amount.IsPositive() {
			hasPositive = true
		}
	}
	if !hasNegative || !hasPositive {
		return fmt.Errorf("cash-flow series needs at least one investment (negative) and one distribution (positive)")
	}
	return nil
}
