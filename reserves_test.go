package fundcalc

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
)

func candidate(id string, invested, valuation, moic, planned float64) ReserveCandidate {
	return ReserveCandidate{
		ID:               id,
		Invested:         USD(invested),
		CurrentValuation: USD(valuation),
		ExitMOIC:         decimal.NewFromFloat(moic),
		PlannedReserve:   USD(planned),
	}
}

// TestAllocate_GreedyWithExplicitCaps is the canonical scenario: three
// candidates ranked 3.0x, 2.0x, 1.5x, a $10M budget and a $6M per-company
// cap give $6M, $4M, $0 with nothing left over.
func TestAllocate_GreedyWithExplicitCaps(t *testing.T) {
	cap := USD(6_000_000)
	candidates := []ReserveCandidate{
		candidate("alpha", 2_000_000, 5_000_000, 3.0, 3_000_000),
		candidate("bravo", 4_000_000, 6_000_000, 2.0, 2_000_000),
		candidate("charlie", 1_000_000, 1_200_000, 1.5, 1_000_000),
	}
	for i := range candidates {
		candidates[i].Cap = &cap
	}

	report, err := Allocate(candidates, USD(10_000_000), AllocationPolicy{
		Metric: RankExitMOIC,
		Cap:    CapExplicit,
	})
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}

	if len(report.Rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(report.Rows))
	}
	wantAlloc := []struct {
		id     string
		amount Money
	}{
		{"alpha", USD(6_000_000)},
		{"bravo", USD(4_000_000)},
		{"charlie", USD(0)},
	}
	for i, want := range wantAlloc {
		row := report.Rows[i]
		if row.CompanyID != want.id {
			t.Errorf("row %d company = %q, want %q", i, row.CompanyID, want.id)
		}
		if !row.Allocated.Equal(want.amount) {
			t.Errorf("row %d allocated = %s, want %s", i, row.Allocated, want.amount)
		}
		if row.Rank != i+1 {
			t.Errorf("row %d rank = %d, want %d", i, row.Rank, i+1)
		}
	}
	if !report.Unallocated.IsZero() {
		t.Errorf("unallocated = %s, want 0", report.Unallocated)
	}
}

func TestAllocate_ReportsUnallocatedRemainder(t *testing.T) {
	cap := USD(1_000_000)
	c := candidate("alpha", 1_000_000, 2_000_000, 2.0, 1_000_000)
	c.Cap = &cap

	report, err := Allocate([]ReserveCandidate{c}, USD(5_000_000), AllocationPolicy{
		Metric: RankExitMOIC,
		Cap:    CapExplicit,
	})
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	if !report.Rows[0].Allocated.Equal(USD(1_000_000)) {
		t.Errorf("allocated = %s, want $1M", report.Rows[0].Allocated)
	}
	// budget beyond total capacity is reported, never silently dropped
	if !report.Unallocated.Equal(USD(4_000_000)) {
		t.Errorf("unallocated = %s, want $4M", report.Unallocated)
	}
}

func TestAllocate_TieBrokenByID(t *testing.T) {
	candidates := []ReserveCandidate{
		candidate("zulu", 1_000_000, 2_000_000, 2.0, 500_000),
		candidate("alpha", 1_000_000, 2_000_000, 2.0, 500_000),
	}

	report, err := Allocate(candidates, USD(1_000_000), AllocationPolicy{
		Metric: RankExitMOIC,
		Cap:    CapFixedPercent,
		CapRatio: R(1),
	})
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	if report.Rows[0].CompanyID != "alpha" {
		t.Errorf("tie should rank %q first, got %q", "alpha", report.Rows[0].CompanyID)
	}
}

func TestAllocate_FixedPercentCap(t *testing.T) {
	candidates := []ReserveCandidate{
		candidate("alpha", 1_000_000, 3_000_000, 3.0, 1_000_000),
		candidate("bravo", 1_000_000, 2_000_000, 2.0, 1_000_000),
	}

	// each candidate capped at 40% of the $10M budget
	report, err := Allocate(candidates, USD(10_000_000), AllocationPolicy{
		Metric:   RankExitMOIC,
		Cap:      CapFixedPercent,
		CapRatio: R(0.4),
	})
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	if !report.Rows[0].Allocated.Equal(USD(4_000_000)) {
		t.Errorf("alpha allocated = %s, want $4M", report.Rows[0].Allocated)
	}
	if !report.Rows[1].Allocated.Equal(USD(4_000_000)) {
		t.Errorf("bravo allocated = %s, want $4M", report.Rows[1].Allocated)
	}
	if !report.Unallocated.Equal(USD(2_000_000)) {
		t.Errorf("unallocated = %s, want $2M", report.Unallocated)
	}
}

func TestAllocate_NAVRatioCap(t *testing.T) {
	candidates := []ReserveCandidate{
		candidate("alpha", 1_000_000, 8_000_000, 3.0, 1_000_000),
		candidate("bravo", 1_000_000, 2_000_000, 2.0, 1_000_000),
	}

	// each candidate capped at half its current valuation
	report, err := Allocate(candidates, USD(10_000_000), AllocationPolicy{
		Metric:   RankExitMOIC,
		Cap:      CapNAVRatio,
		CapRatio: R(0.5),
	})
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	if !report.Rows[0].Allocated.Equal(USD(4_000_000)) {
		t.Errorf("alpha allocated = %s, want $4M", report.Rows[0].Allocated)
	}
	if !report.Rows[1].Allocated.Equal(USD(1_000_000)) {
		t.Errorf("bravo allocated = %s, want $1M", report.Rows[1].Allocated)
	}
}

func TestAllocate_IncrementalMOICRanking(t *testing.T) {
	// bravo's planned reserve buys more incremental exit value per dollar
	// than alpha's even though alpha's exit multiple is higher
	alpha := candidate("alpha", 10_000_000, 40_000_000, 3.0, 10_000_000)
	bravo := candidate("bravo", 5_000_000, 6_000_000, 2.5, 5_000_000)

	report, err := Allocate([]ReserveCandidate{alpha, bravo}, USD(5_000_000), AllocationPolicy{
		Metric:   RankExitMOIC,
		Cap:      CapFixedPercent,
		CapRatio: R(1),
	})
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	if report.Rows[0].CompanyID != "alpha" {
		t.Fatalf("exit-moic ranks alpha first, got %q", report.Rows[0].CompanyID)
	}

	report, err = Allocate([]ReserveCandidate{alpha, bravo}, USD(5_000_000), AllocationPolicy{
		Metric:   RankIncrementalMOIC,
		Cap:      CapFixedPercent,
		CapRatio: R(1),
	})
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	// alpha: (3.0*20M - 40M)/10M = 2.0; bravo: (2.5*10M - 6M)/5M = 3.8
	if report.Rows[0].CompanyID != "bravo" {
		t.Errorf("incremental-moic ranks bravo first, got %q", report.Rows[0].CompanyID)
	}
}

func TestAllocate_Deterministic(t *testing.T) {
	candidates := []ReserveCandidate{
		candidate("delta", 3_000_000, 9_100_000, 2.71, 2_000_000),
		candidate("echo", 2_000_000, 4_000_000, 2.71, 1_500_000),
		candidate("foxtrot", 5_000_000, 5_500_000, 1.13, 3_000_000),
	}

	first, err := Allocate(candidates, USD(4_444_444.44), AllocationPolicy{
		Metric:   RankCurrentMOIC,
		Cap:      CapNAVRatio,
		CapRatio: R(0.33),
	})
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := Allocate(candidates, USD(4_444_444.44), AllocationPolicy{
			Metric:   RankCurrentMOIC,
			Cap:      CapNAVRatio,
			CapRatio: R(0.33),
		})
		if err != nil {
			t.Fatalf("Allocate() error = %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("Allocate() is not deterministic:\n%+v\n%+v", first, again)
		}
	}
}

func TestAllocate_RejectsBadInput(t *testing.T) {
	if _, err := Allocate(nil, USD(-1), AllocationPolicy{}); err == nil {
		t.Errorf("negative budget expected an error")
	}

	dup := []ReserveCandidate{
		candidate("alpha", 1, 1, 1, 1),
		candidate("alpha", 2, 2, 2, 2),
	}
	if _, err := Allocate(dup, USD(1), AllocationPolicy{}); err == nil {
		t.Errorf("duplicate candidate id expected an error")
	}

	if _, err := Allocate([]ReserveCandidate{candidate("", 1, 1, 1, 1)}, USD(1), AllocationPolicy{}); err == nil {
		t.Errorf("empty candidate id expected an error")
	}

	if _, err := Allocate(nil, USD(1), AllocationPolicy{Cap: CapFixedPercent, CapRatio: R(2)}); err == nil {
		t.Errorf("cap ratio above 1 expected an error")
	}
}
