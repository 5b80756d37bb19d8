package recorder

import (
	"path/filepath"
	"testing"

	"github.com/veyl/fundcalc"
)

func openTestRecorder(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRecorder() error = %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func testReport(t *testing.T) (fundcalc.Money, fundcalc.AllocationPolicy, *fundcalc.AllocationReport) {
	t.Helper()
	budget := fundcalc.USD(10_000_000)
	policy := fundcalc.AllocationPolicy{Metric: fundcalc.RankExitMOIC, Cap: fundcalc.CapExplicit}
	cap := fundcalc.USD(6_000_000)
	report, err := fundcalc.Allocate([]fundcalc.ReserveCandidate{
		{ID: "alpha", Invested: fundcalc.USD(2_000_000), ExitMOIC: fundcalc.R(3).Decimal(), PlannedReserve: fundcalc.USD(4_000_000), Cap: &cap},
		{ID: "bravo", Invested: fundcalc.USD(4_000_000), ExitMOIC: fundcalc.R(2).Decimal(), PlannedReserve: fundcalc.USD(2_000_000)},
	}, budget, policy)
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	return budget, policy, report
}

func TestRecordAllocation_VersionsAreMonotonic(t *testing.T) {
	r := openTestRecorder(t)
	budget, policy, report := testReport(t)

	first, err := r.RecordAllocation("Veyl Ventures III", budget, policy, report)
	if err != nil {
		t.Fatalf("RecordAllocation() error = %v", err)
	}
	second, err := r.RecordAllocation("Veyl Ventures III", budget, policy, report)
	if err != nil {
		t.Fatalf("RecordAllocation() error = %v", err)
	}
	other, err := r.RecordAllocation("Veyl Ventures IV", budget, policy, report)
	if err != nil {
		t.Fatalf("RecordAllocation() error = %v", err)
	}

	if first.Version != 1 || second.Version != 2 {
		t.Errorf("versions = %d, %d, want 1, 2", first.Version, second.Version)
	}
	if other.Version != 1 {
		t.Errorf("version for a different fund = %d, want 1", other.Version)
	}
	if first.RunID == second.RunID {
		t.Errorf("both runs got id %q, want distinct ids", first.RunID)
	}
}

func TestRunRoundTrip(t *testing.T) {
	r := openTestRecorder(t)
	budget, policy, report := testReport(t)

	recorded, err := r.RecordAllocation("Veyl Ventures III", budget, policy, report)
	if err != nil {
		t.Fatalf("RecordAllocation() error = %v", err)
	}

	got, err := r.Run(recorded.RunID)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got.Fund != "Veyl Ventures III" || got.Version != 1 {
		t.Errorf("Run() = fund %q version %d, want Veyl Ventures III version 1", got.Fund, got.Version)
	}
	if !got.Budget.Equal(budget) {
		t.Errorf("Budget = %s, want %s", got.Budget, budget)
	}
	if got.Metric != "exit-moic" || got.CapPolicy != "explicit" {
		t.Errorf("policy = %s/%s, want exit-moic/explicit", got.Metric, got.CapPolicy)
	}
	if len(got.Rows) != len(report.Rows) {
		t.Fatalf("got %d rows, want %d", len(got.Rows), len(report.Rows))
	}
	for i, row := range report.Rows {
		if got.Rows[i].CompanyID != row.CompanyID || !got.Rows[i].Allocated.Equal(row.Allocated) || got.Rows[i].Rank != row.Rank {
			t.Errorf("row %d = %+v, want %+v", i, got.Rows[i], row)
		}
	}
}

func TestRuns_ListsVersionsInOrder(t *testing.T) {
	r := openTestRecorder(t)
	budget, policy, report := testReport(t)

	for i := 0; i < 3; i++ {
		if _, err := r.RecordAllocation("Veyl Ventures III", budget, policy, report); err != nil {
			t.Fatalf("RecordAllocation() error = %v", err)
		}
	}

	runs, err := r.Runs("Veyl Ventures III")
	if err != nil {
		t.Fatalf("Runs() error = %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("got %d runs, want 3", len(runs))
	}
	for i, run := range runs {
		if run.Version != int64(i+1) {
			t.Errorf("run %d has version %d, want %d", i, run.Version, i+1)
		}
		if len(run.Rows) != 0 {
			t.Errorf("Runs() returned rows, want the run headers only")
		}
	}

	if runs, err := r.Runs("No Such Fund"); err != nil || len(runs) != 0 {
		t.Errorf("Runs() for an unknown fund = %v, %v, want empty, nil", runs, err)
	}
}
