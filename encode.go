package fundcalc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// This file persists the engine's inputs in JSONL, one record per line,
// human-readable and git-friendly: cash flows, distribution events, and
// reserve candidates all follow the same convention.

// flowLine is a specialized struct for decoding cash-flow lines.
type flowLine struct {
	Date     Date            `json:"date"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// DecodeFlows decodes a JSONL stream of cash flows and returns the
// normalized Schedule (sorted, same-day flows merged). Empty lines are
// skipped.
func DecodeFlows(r io.Reader) (*Schedule, error) {
	var flows []CashFlow
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var fl flowLine
		if err := json.Unmarshal(line, &fl); err != nil {
			return nil, fmt.Errorf("format error on line %d %q: %w", lineNo, string(line), err)
		}
		if fl.Date.IsZero() {
			return nil, fmt.Errorf("cash flow on line %d has no date", lineNo)
		}
		flows = append(flows, CashFlow{Date: fl.Date, Amount: M(fl.Amount, fl.Currency)})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return NewSchedule(flows), nil
}

// EncodeFlows writes the schedule in canonical JSONL form: chronological,
// same-day flows already merged, stable field order.
func EncodeFlows(w io.Writer, s *Schedule) error {
	for _, f := range s.Flows() {
		var jw jsonObjectWriter
		jw.Append("date", f.Date)
		jw.Append("amount", f.Amount.Decimal())
		jw.Optional("currency", f.Amount.Currency())
		b, err := jw.MarshalJSON()
		if err != nil {
			return fmt.Errorf("failed to encode cash flow on %s: %w", f.Date, err)
		}
		if _, err := fmt.Fprintf(w, "%s\n", b); err != nil {
			return err
		}
	}
	return nil
}

// eventLine is a specialized struct for decoding distribution events.
type eventLine struct {
	Date              Date            `json:"date"`
	Gross             decimal.Decimal `json:"gross"`
	CostBasisReturned decimal.Decimal `json:"costBasisReturned"`
	ProfitPortion     decimal.Decimal `json:"profitPortion"`
	Currency          string          `json:"currency"`
}

// DecodeEvents decodes a JSONL stream of distribution events, sorted
// ascending by date for chronological processing.
func DecodeEvents(r io.Reader) ([]DistributionEvent, error) {
	var events []DistributionEvent
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var el eventLine
		if err := json.Unmarshal(line, &el); err != nil {
			return nil, fmt.Errorf("format error on line %d %q: %w", lineNo, string(line), err)
		}
		if el.Date.IsZero() {
			return nil, fmt.Errorf("distribution event on line %d has no date", lineNo)
		}
		events = append(events, DistributionEvent{
			Date:              el.Date,
			Gross:             M(el.Gross, el.Currency),
			CostBasisReturned: M(el.CostBasisReturned, el.Currency),
			ProfitPortion:     M(el.ProfitPortion, el.Currency),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	sortEventsByDate(events)
	return events, nil
}

func sortEventsByDate(events []DistributionEvent) {
	// insertion sort keeps same-day events in input order
	for i := 1; i < len(events); i++ {
		for j := i; j > 0 && events[j].Date.Before(events[j-1].Date); j-- {
			events[j], events[j-1] = events[j-1], events[j]
		}
	}
}

// EncodeEvents writes distribution events in canonical JSONL form.
func EncodeEvents(w io.Writer, events []DistributionEvent) error {
	for _, e := range events {
		b, err := e.MarshalJSON()
		if err != nil {
			return fmt.Errorf("failed to encode event on %s: %w", e.Date, err)
		}
		if _, err := fmt.Fprintf(w, "%s\n", b); err != nil {
			return err
		}
	}
	return nil
}

// periodLine is a specialized struct for decoding fee periods.
type periodLine struct {
	Year     int             `json:"year"`
	Called   decimal.Decimal `json:"called"`
	FMV      decimal.Decimal `json:"fmv"`
	Currency string          `json:"currency"`
}

// DecodePeriods decodes a JSONL stream of fee periods, in input order.
func DecodePeriods(r io.Reader) ([]FeePeriod, error) {
	var out []FeePeriod
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var pl periodLine
		if err := json.Unmarshal(line, &pl); err != nil {
			return nil, fmt.Errorf("format error on line %d %q: %w", lineNo, string(line), err)
		}
		if pl.Year <= 0 {
			return nil, fmt.Errorf("fee period on line %d has no positive year", lineNo)
		}
		out = append(out, FeePeriod{
			Year:   pl.Year,
			Called: M(pl.Called, pl.Currency),
			FMV:    M(pl.FMV, pl.Currency),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// candidateLine is a specialized struct for decoding reserve candidates.
type candidateLine struct {
	ID               string           `json:"id"`
	Invested         decimal.Decimal  `json:"invested"`
	CurrentValuation decimal.Decimal  `json:"currentValuation"`
	ExitMOIC         decimal.Decimal  `json:"exitMoic"`
	PlannedReserve   decimal.Decimal  `json:"plannedReserve"`
	Cap              *decimal.Decimal `json:"cap"`
	Currency         string           `json:"currency"`
}

// DecodeCandidates decodes a JSONL stream of reserve candidates.
func DecodeCandidates(r io.Reader) ([]ReserveCandidate, error) {
	var out []ReserveCandidate
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var cl candidateLine
		if err := json.Unmarshal(line, &cl); err != nil {
			return nil, fmt.Errorf("format error on line %d %q: %w", lineNo, string(line), err)
		}
		if cl.ID == "" {
			return nil, fmt.Errorf("reserve candidate on line %d has no id", lineNo)
		}
		c := ReserveCandidate{
			ID:               cl.ID,
			Invested:         M(cl.Invested, cl.Currency),
			CurrentValuation: M(cl.CurrentValuation, cl.Currency),
			ExitMOIC:         cl.ExitMOIC,
			PlannedReserve:   M(cl.PlannedReserve, cl.Currency),
		}
		if cl.Cap != nil {
			cap := M(*cl.Cap, cl.Currency)
			c.Cap = &cap
		}
		out = append(out, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// EncodeCandidates writes reserve candidates in canonical JSONL form.
func EncodeCandidates(w io.Writer, candidates []ReserveCandidate) error {
	for _, c := range candidates {
		var jw jsonObjectWriter
		jw.Append("id", c.ID)
		jw.Append("invested", c.Invested.Decimal())
		jw.Append("currentValuation", c.CurrentValuation.Decimal())
		jw.Append("exitMoic", c.ExitMOIC)
		jw.Append("plannedReserve", c.PlannedReserve.Decimal())
		if c.Cap != nil {
			jw.Append("cap", c.Cap.Decimal())
		}
		jw.Optional("currency", c.Invested.Currency())
		b, err := jw.MarshalJSON()
		if err != nil {
			return fmt.Errorf("failed to encode candidate %q: %w", c.ID, err)
		}
		if _, err := fmt.Fprintf(w, "%s\n", b); err != nil {
			return err
		}
	}
	return nil
}
