package renderer

import (
	"strings"
	"testing"
	"time"

	"github.com/veyl/fundcalc"
)

func testFund(t *testing.T) *fundcalc.FundConfig {
	t.Helper()
	cfg := &fundcalc.FundConfig{
		Name:     "Veyl Ventures III",
		Size:     fundcalc.USD(100_000_000),
		Vintage:  fundcalc.NewDate(2020, time.January, 1),
		FeeBasis: fundcalc.BasisCommitted,
		FeeRate:  fundcalc.R(0.02),
		Hurdle:   fundcalc.R(0.08),
		Carry:    fundcalc.R(0.20),
		Catchup:  fundcalc.CatchupFull,
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	return cfg
}

func TestXIRRMarkdown(t *testing.T) {
	s := fundcalc.NewSchedule([]fundcalc.CashFlow{
		{Date: fundcalc.NewDate(2020, time.January, 1), Amount: fundcalc.USD(-100)},
		{Date: fundcalc.NewDate(2021, time.January, 1), Amount: fundcalc.USD(121)},
	})
	sol, err := fundcalc.Solve(s, fundcalc.SolverOptions{})
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}

	got := XIRRMarkdown(s, sol)
	for _, want := range []string{
		"Net IRR as of 2021-01-01",
		"2 cash flows from 2020-01-01 to 2021-01-01.",
		"21.0000%",
		"newton",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("XIRRMarkdown() missing %q in:\n%s", want, got)
		}
	}
}

func TestXIRRMarkdown_NotConverged(t *testing.T) {
	s := fundcalc.NewSchedule([]fundcalc.CashFlow{
		{Date: fundcalc.NewDate(2020, time.January, 1), Amount: fundcalc.USD(-100)},
		{Date: fundcalc.NewDate(2021, time.January, 1), Amount: fundcalc.USD(50)},
		{Date: fundcalc.NewDate(2022, time.January, 1), Amount: fundcalc.USD(-100)},
	})
	sol, err := fundcalc.Solve(s, fundcalc.SolverOptions{})
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	got := XIRRMarkdown(s, sol)
	if !strings.Contains(got, "did not converge") {
		t.Errorf("XIRRMarkdown() missing the non-convergence note in:\n%s", got)
	}
}

func TestFeesMarkdown(t *testing.T) {
	cfg := testFund(t)
	periods := []fundcalc.FeePeriod{{Year: 1}, {Year: 2}}
	tl, err := fundcalc.ComputeFeeTimeline(cfg, periods)
	if err != nil {
		t.Fatalf("ComputeFeeTimeline() error = %v", err)
	}

	got := FeesMarkdown(cfg, periods, tl)
	for _, want := range []string{
		"Management Fees — Veyl Ventures III",
		"Basis: committed",
		tl.Yearly[0].String(),
		tl.Total.String(),
	} {
		if !strings.Contains(got, want) {
			t.Errorf("FeesMarkdown() missing %q in:\n%s", want, got)
		}
	}
}

func TestWaterfallMarkdown(t *testing.T) {
	cfg := testFund(t)
	w, err := fundcalc.NewWaterfall(cfg, fundcalc.StandardTiers(cfg), true)
	if err != nil {
		t.Fatalf("NewWaterfall() error = %v", err)
	}
	gross := fundcalc.USD(150_000_000)
	if _, err := w.Process(fundcalc.DistributionEvent{
		Date:              fundcalc.NewDate(2021, time.January, 1),
		Gross:             gross,
		CostBasisReturned: fundcalc.USD(100_000_000),
		ProfitPortion:     fundcalc.USD(50_000_000),
	}); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	got := WaterfallMarkdown(cfg, w)
	for _, want := range []string{
		"# Distribution Waterfall — Veyl Ventures III",
		"| Date | Gross | Recycled | ROC | Hurdle | Catch-up | Carry | LP Residual |",
		"| Capital returned | " + fundcalc.USD(100_000_000).String() + " |",
		"## Totals",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("WaterfallMarkdown() missing %q in:\n%s", want, got)
		}
	}
	if strings.Contains(got, "## Clawback") {
		t.Errorf("WaterfallMarkdown() rendered a clawback section with none owed:\n%s", got)
	}
}

func TestReservesMarkdown(t *testing.T) {
	budget := fundcalc.USD(10_000_000)
	candidates := []fundcalc.ReserveCandidate{
		{
			ID:               "alpha",
			Invested:         fundcalc.USD(2_000_000),
			CurrentValuation: fundcalc.USD(5_000_000),
			ExitMOIC:         fundcalc.R(3).Decimal(),
			PlannedReserve:   fundcalc.USD(20_000_000),
		},
	}
	policy := fundcalc.AllocationPolicy{Metric: fundcalc.RankExitMOIC, Cap: fundcalc.CapExplicit}
	report, err := fundcalc.Allocate(candidates, budget, policy)
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}

	got := ReservesMarkdown(budget, policy, report)
	for _, want := range []string{
		"# Reserve Allocation",
		"ranked by exit-moic",
		"| 1 | alpha |",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("ReservesMarkdown() missing %q in:\n%s", want, got)
		}
	}
	if strings.Contains(got, "no candidate with remaining capacity") {
		t.Errorf("ReservesMarkdown() reported an unallocated remainder with none left:\n%s", got)
	}
}
