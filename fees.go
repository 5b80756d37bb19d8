package fundcalc

import (
	"fmt"
	"log"
	"sort"
)

// FeeBasis defines what capital base a period's management fee is charged on.
type FeeBasis int

const (
	// BasisCommitted charges on total committed capital every period.
	BasisCommitted FeeBasis = iota
	// BasisCalled charges on capital called to date.
	BasisCalled
	// BasisFMV charges on the fair market value of the portfolio.
	BasisFMV
)

func (b FeeBasis) String() string {
	switch b {
	case BasisCommitted:
		return "committed"
	case BasisCalled:
		return "called"
	case BasisFMV:
		return "fmv"
	default:
		return "unknown"
	}
}

// ParseFeeBasis parses a string into a FeeBasis.
func ParseFeeBasis(s string) (FeeBasis, error) {
	switch s {
	case "committed":
		return BasisCommitted, nil
	case "called":
		return BasisCalled, nil
	case "fmv":
		return BasisFMV, nil
	default:
		return 0, fmt.Errorf("unknown fee basis: %q", s)
	}
}

// FeeStep lowers the fee rate from a fund year onward. Year 1 is the
// vintage year.
type FeeStep struct {
	EffectiveYear int
	Rate          Rate
}

// FeePeriod supplies the per-period inputs the basis resolution needs:
// capital called to date and portfolio fair value for that fund year.
type FeePeriod struct {
	Year   int // fund year, starting at 1
	Called Money
	FMV    Money
}

// FeeTimeline is the output of the fee engine. Total is always the exact
// decimal sum of Yearly, never a recomputed approximation.
type FeeTimeline struct {
	Yearly []Money
	Total  Money
}

// rateForYear resolves the applicable rate for a fund year, taking the
// latest step-down whose effective year has been reached.
func rateForYear(base Rate, steps []FeeStep, year int) Rate {
	sorted := make([]FeeStep, len(steps))
	copy(sorted, steps)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].EffectiveYear < sorted[j].EffectiveYear })

	rate := base
	for _, s := range sorted {
		if year >= s.EffectiveYear {
			rate = s.Rate
		}
	}
	return rate
}

// basisForPeriod resolves the capital base the fee applies to.
func basisForPeriod(cfg *FundConfig, p FeePeriod) Money {
	switch cfg.FeeBasis {
	case BasisCommitted:
		return cfg.Size
	case BasisCalled:
		return p.Called
	case BasisFMV:
		return p.FMV
	default:
		// closed enum, unreachable for validated config
		return Money{}
	}
}

// ComputeFeeTimeline computes the management fee owed for each given
// period. A zero-size fund or an empty period list is a valid degenerate
// case and yields a zero/empty timeline.
func ComputeFeeTimeline(cfg *FundConfig, periods []FeePeriod) (FeeTimeline, error) {
	if err := validateFeeConfig(cfg); err != nil {
		return FeeTimeline{}, err
	}

	tl := FeeTimeline{
		Yearly: make([]Money, 0, len(periods)),
		Total:  M(0, cfg.Size.Currency()),
	}
	for _, p := range periods {
		if p.Year < 1 {
			return FeeTimeline{}, fmt.Errorf("fee period year %d must be >= 1", p.Year)
		}
		rate := rateForYear(cfg.FeeRate, cfg.StepDowns, p.Year)
		fee := basisForPeriod(cfg, p).MulRate(rate)
		tl.Yearly = append(tl.Yearly, fee)
		tl.Total = tl.Total.Add(fee)
	}
	return tl, nil
}

// validateFeeConfig checks only the fields the fee engine reads, so the
// fee engine stays usable on partially-built configs (e.g. zero-size test
// funds).
func validateFeeConfig(cfg *FundConfig) error {
	if cfg.Size.IsNegative() {
		return fmt.Errorf("fund size must not be negative, got %s", cfg.Size)
	}
	if cfg.FeeRate.IsNegative() || cfg.FeeRate.GreaterThan(R(1)) {
		return fmt.Errorf("fee rate %s out of range, want a fraction in [0,1]", cfg.FeeRate.Decimal())
	}
	for _, s := range cfg.StepDowns {
		if s.EffectiveYear < 1 {
			return fmt.Errorf("fee step-down effective year %d must be >= 1", s.EffectiveYear)
		}
		if s.Rate.IsNegative() || s.Rate.GreaterThan(R(1)) {
			return fmt.Errorf("fee step-down rate %s out of range, want a fraction in [0,1]", s.Rate.Decimal())
		}
	}
	return nil
}

// ComputeFeeTimelines runs the fee engine over a batch of funds sharing
// one period table. A fund with invalid fee terms is skipped with a
// logged warning rather than aborting the batch; the returned map holds
// one timeline per fund that computed cleanly.
func ComputeFeeTimelines(cfgs []*FundConfig, periods []FeePeriod) map[string]FeeTimeline {
	out := make(map[string]FeeTimeline, len(cfgs))
	for _, cfg := range cfgs {
		tl, err := ComputeFeeTimeline(cfg, periods)
		if err != nil {
			log.Printf("skipping fee timeline for fund %q: %v", cfg.Name, err)
			continue
		}
		out[cfg.Name] = tl
	}
	return out
}
