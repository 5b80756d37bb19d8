package fundcalc

import (
	"testing"
	"time"
)

func feeFund(basis FeeBasis, rate Rate, steps ...FeeStep) *FundConfig {
	return &FundConfig{
		Name:      "Fund I",
		Size:      USD(100_000_000),
		Vintage:   NewDate(2020, time.January, 1),
		FeeBasis:  basis,
		FeeRate:   rate,
		StepDowns: steps,
	}
}

// periods returns a 10-year table with linearly increasing called capital
// and fair value, enough variety to distinguish the bases.
func feePeriods(n int) []FeePeriod {
	out := make([]FeePeriod, 0, n)
	for y := 1; y <= n; y++ {
		out = append(out, FeePeriod{
			Year:   y,
			Called: USD(10_000_000 * y),
			FMV:    USD(12_000_000 * y),
		})
	}
	return out
}

func TestComputeFeeTimeline_CommittedBasis(t *testing.T) {
	cfg := feeFund(BasisCommitted, R(0.02))
	tl, err := ComputeFeeTimeline(cfg, feePeriods(10))
	if err != nil {
		t.Fatalf("ComputeFeeTimeline() error = %v", err)
	}
	if len(tl.Yearly) != 10 {
		t.Fatalf("got %d yearly fees, want 10", len(tl.Yearly))
	}
	// 2% of $100M, every year
	for i, fee := range tl.Yearly {
		if !fee.Equal(USD(2_000_000)) {
			t.Errorf("year %d fee = %s, want $2M", i+1, fee)
		}
	}
	if !tl.Total.Equal(USD(20_000_000)) {
		t.Errorf("total = %s, want $20M", tl.Total)
	}
}

func TestComputeFeeTimeline_StepDown(t *testing.T) {
	cfg := feeFund(BasisCommitted, R(0.02), FeeStep{EffectiveYear: 6, Rate: R(0.015)})
	tl, err := ComputeFeeTimeline(cfg, feePeriods(10))
	if err != nil {
		t.Fatalf("ComputeFeeTimeline() error = %v", err)
	}
	if !tl.Yearly[4].Equal(USD(2_000_000)) {
		t.Errorf("year 5 fee = %s, want $2M (before step-down)", tl.Yearly[4])
	}
	if !tl.Yearly[5].Equal(USD(1_500_000)) {
		t.Errorf("year 6 fee = %s, want $1.5M (after step-down)", tl.Yearly[5])
	}
}

// TestComputeFeeTimeline_TotalIdentity checks that Total is the exact
// decimal sum of Yearly for every basis and step-down configuration.
func TestComputeFeeTimeline_TotalIdentity(t *testing.T) {
	configs := []*FundConfig{
		feeFund(BasisCommitted, R(0.02)),
		feeFund(BasisCalled, R(0.02)),
		feeFund(BasisFMV, R(0.025)),
		feeFund(BasisCommitted, R(0.02), FeeStep{EffectiveYear: 4, Rate: R(0.0175)}, FeeStep{EffectiveYear: 8, Rate: R(0.01)}),
		feeFund(BasisCalled, R(0.02), FeeStep{EffectiveYear: 2, Rate: R(0.005)}),
	}
	for _, cfg := range configs {
		tl, err := ComputeFeeTimeline(cfg, feePeriods(10))
		if err != nil {
			t.Fatalf("ComputeFeeTimeline(%s) error = %v", cfg.FeeBasis, err)
		}
		sum := USD(0)
		for _, fee := range tl.Yearly {
			sum = sum.Add(fee)
		}
		if !sum.Equal(tl.Total) {
			t.Errorf("basis %s: sum(yearly) = %s != total %s", cfg.FeeBasis, sum, tl.Total)
		}
	}
}

func TestComputeFeeTimeline_DegenerateCases(t *testing.T) {
	// zero-size fund is valid and yields zero fees, not an error
	zero := feeFund(BasisCommitted, R(0.02))
	zero.Size = USD(0)
	tl, err := ComputeFeeTimeline(zero, feePeriods(3))
	if err != nil {
		t.Fatalf("ComputeFeeTimeline() on zero-size fund error = %v", err)
	}
	if !tl.Total.IsZero() {
		t.Errorf("zero-size fund total = %s, want 0", tl.Total)
	}

	// no periods yields an empty timeline
	tl, err = ComputeFeeTimeline(feeFund(BasisCommitted, R(0.02)), nil)
	if err != nil {
		t.Fatalf("ComputeFeeTimeline() on empty periods error = %v", err)
	}
	if len(tl.Yearly) != 0 || !tl.Total.IsZero() {
		t.Errorf("empty periods timeline = %+v, want empty/zero", tl)
	}

	// single period is valid
	tl, err = ComputeFeeTimeline(feeFund(BasisCommitted, R(0.02)), feePeriods(1))
	if err != nil {
		t.Fatalf("ComputeFeeTimeline() on single period error = %v", err)
	}
	if !tl.Total.Equal(USD(2_000_000)) {
		t.Errorf("single period total = %s, want $2M", tl.Total)
	}
}

func TestComputeFeeTimeline_RejectsBadInput(t *testing.T) {
	bad := feeFund(BasisCommitted, R(0.02))
	bad.Size = USD(-1)
	if _, err := ComputeFeeTimeline(bad, feePeriods(1)); err == nil {
		t.Errorf("negative fund size expected an error")
	}

	if _, err := ComputeFeeTimeline(feeFund(BasisCommitted, R(2)), feePeriods(1)); err == nil {
		t.Errorf("fee rate above 1 expected an error")
	}

	if _, err := ComputeFeeTimeline(feeFund(BasisCommitted, R(0.02)), []FeePeriod{{Year: 0}}); err == nil {
		t.Errorf("period year 0 expected an error")
	}
}

func TestComputeFeeTimelines_SkipsInvalidFund(t *testing.T) {
	good := feeFund(BasisCommitted, R(0.02))
	bad := feeFund(BasisCommitted, R(3)) // out-of-range rate
	bad.Name = "Bad Fund"

	out := ComputeFeeTimelines([]*FundConfig{good, bad}, feePeriods(2))
	if _, ok := out[good.Name]; !ok {
		t.Errorf("valid fund missing from batch output")
	}
	if _, ok := out[bad.Name]; ok {
		t.Errorf("invalid fund should have been skipped, got %+v", out[bad.Name])
	}
}
