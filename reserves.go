package fundcalc

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// ReserveCandidate is a portfolio-company snapshot entering an allocation
// run. Candidates are built from portfolio data at run time, consumed by
// one Allocate call, and discarded; no state survives between runs except
// the emitted ledger.
type ReserveCandidate struct {
	ID               string
	Invested         Money
	CurrentValuation Money
	ExitMOIC         decimal.Decimal // exit-probability-weighted multiple on invested capital
	PlannedReserve   Money
	Cap              *Money // explicit per-candidate ceiling, used by CapExplicit
}

// RankMetric selects the MOIC variant candidates are ranked by.
type RankMetric int

const (
	// RankExitMOIC ranks by the probability-weighted exit multiple.
	RankExitMOIC RankMetric = iota
	// RankCurrentMOIC ranks by current valuation over invested capital.
	RankCurrentMOIC
	// RankIncrementalMOIC ranks by expected additional exit value per
	// additional reserve dollar.
	RankIncrementalMOIC
)

func (m RankMetric) String() string {
	switch m {
	case RankExitMOIC:
		return "exit-moic"
	case RankCurrentMOIC:
		return "current-moic"
	case RankIncrementalMOIC:
		return "incremental-moic"
	default:
		return "unknown"
	}
}

// ParseRankMetric parses a string into a RankMetric.
func ParseRankMetric(s string) (RankMetric, error) {
	switch s {
	case "exit-moic":
		return RankExitMOIC, nil
	case "current-moic":
		return RankCurrentMOIC, nil
	case "incremental-moic":
		return RankIncrementalMOIC, nil
	default:
		return 0, fmt.Errorf("unknown ranking metric: %q", s)
	}
}

// CapPolicy selects how each candidate's allocation ceiling is computed.
type CapPolicy int

const (
	// CapFixedPercent caps each candidate at a fixed fraction of the budget.
	CapFixedPercent CapPolicy = iota
	// CapNAVRatio caps each candidate at a fraction of its current valuation.
	CapNAVRatio
	// CapExplicit uses the candidate's own Cap field (no ceiling when unset).
	CapExplicit
)

func (p CapPolicy) String() string {
	switch p {
	case CapFixedPercent:
		return "fixed-percent"
	case CapNAVRatio:
		return "nav-ratio"
	case CapExplicit:
		return "explicit"
	default:
		return "unknown"
	}
}

// ParseCapPolicy parses a string into a CapPolicy.
func ParseCapPolicy(s string) (CapPolicy, error) {
	switch s {
	case "fixed-percent":
		return CapFixedPercent, nil
	case "nav-ratio":
		return CapNAVRatio, nil
	case "explicit":
		return CapExplicit, nil
	default:
		return 0, fmt.Errorf("unknown cap policy: %q", s)
	}
}

// AllocationPolicy is the full policy for one allocation run.
type AllocationPolicy struct {
	Metric   RankMetric
	Cap      CapPolicy
	CapRatio Rate // fraction read by fixed-percent and nav-ratio policies
}

// AllocationLedgerRow is an immutable audit record of one allocation
// decision. Rows are never mutated after emission, only superseded by a
// new ledger version (versioning is owned by the caller, see recorder).
type AllocationLedgerRow struct {
	CompanyID string `json:"companyId"`
	Allocated Money  `json:"allocated"`
	Rank      int    `json:"rank"`
	Rationale string `json:"rationale"`
}

// AllocationReport is the outcome of one allocation run: the ordered
// ledger plus whatever budget no candidate could absorb. The remainder is
// reported, never silently dropped.
type AllocationReport struct {
	Rows        []AllocationLedgerRow
	Unallocated Money
}

// metric computes the ranking score of a candidate under the chosen MOIC variant.
func metric(c ReserveCandidate, m RankMetric) decimal.Decimal {
	switch m {
	case RankExitMOIC:
		return c.ExitMOIC
	case RankCurrentMOIC:
		if c.Invested.IsZero() {
			return decimal.Zero
		}
		return c.CurrentValuation.Ratio(c.Invested)
	case RankIncrementalMOIC:
		// expected additional exit value per additional reserve dollar:
		// a planned reserve of zero contributes nothing incremental
		if c.PlannedReserve.IsZero() {
			return decimal.Zero
		}
		futureValue := c.Invested.Add(c.PlannedReserve).MulDec(c.ExitMOIC)
		return futureValue.Sub(c.CurrentValuation).Ratio(c.PlannedReserve)
	default:
		return decimal.Zero
	}
}

// capFor computes the candidate's allocation ceiling under the policy.
// The second return is false when the candidate is uncapped.
func capFor(c ReserveCandidate, budget Money, p AllocationPolicy) (Money, bool) {
	switch p.Cap {
	case CapFixedPercent:
		return budget.MulRate(p.CapRatio), true
	case CapNAVRatio:
		return c.CurrentValuation.MulRate(p.CapRatio), true
	case CapExplicit:
		if c.Cap == nil {
			return Money{}, false
		}
		return *c.Cap, true
	default:
		return Money{}, false
	}
}

// Allocate distributes the reserve budget greedily over candidates ranked
// by the policy's MOIC variant, descending, ties broken by ascending ID.
// Identical inputs produce a bit-for-bit identical ledger.
func Allocate(candidates []ReserveCandidate, budget Money, policy AllocationPolicy) (*AllocationReport, error) {
	if budget.IsNegative() {
		return nil, fmt.Errorf("reserve budget must not be negative, got %s", budget)
	}
	if (policy.Cap == CapFixedPercent || policy.Cap == CapNAVRatio) &&
		(policy.CapRatio.IsNegative() || policy.CapRatio.GreaterThan(R(1))) {
		return nil, fmt.Errorf("cap ratio %s out of range, want a fraction in [0,1]", policy.CapRatio.Decimal())
	}
	seen := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		if c.ID == "" {
			return nil, fmt.Errorf("reserve candidate without an id")
		}
		if seen[c.ID] {
			return nil, fmt.Errorf("duplicate reserve candidate id %q", c.ID)
		}
		seen[c.ID] = true
	}

	ranked := make([]ReserveCandidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		mi, mj := metric(ranked[i], policy.Metric), metric(ranked[j], policy.Metric)
		if !mi.Equal(mj) {
			return mi.GreaterThan(mj)
		}
		return ranked[i].ID < ranked[j].ID
	})

	c := budget.Currency()
	remaining := budget
	report := &AllocationReport{Rows: make([]AllocationLedgerRow, 0, len(ranked))}

	for i, cand := range ranked {
		take := remaining
		capped, hasCap := capFor(cand, budget, policy)
		if hasCap {
			take = Min(take, maxZero(capped))
		}
		if take.IsNegative() {
			take = M(0, c)
		}
		remaining = remaining.Sub(take)

		report.Rows = append(report.Rows, AllocationLedgerRow{
			CompanyID: cand.ID,
			Allocated: take.Add(M(0, c)),
			Rank:      i + 1,
			Rationale: rationale(cand, policy, take, hasCap, capped),
		})
		if remaining.IsZero() {
			// emit zero rows for the rest so the ledger covers every candidate
			for j := i + 1; j < len(ranked); j++ {
				report.Rows = append(report.Rows, AllocationLedgerRow{
					CompanyID: ranked[j].ID,
					Allocated: M(0, c),
					Rank:      j + 1,
					Rationale: "budget exhausted",
				})
			}
			break
		}
	}

	report.Unallocated = remaining
	return report, nil
}

func rationale(c ReserveCandidate, p AllocationPolicy, take Money, hasCap bool, cap Money) string {
	score := metric(c, p.Metric)
	if take.IsZero() {
		return fmt.Sprintf("%s %s: no allocatable room", p.Metric, score.StringFixed(2))
	}
	if hasCap && take.Equal(cap) {
		return fmt.Sprintf("%s %s: capped at %s by %s policy", p.Metric, score.StringFixed(2), cap, p.Cap)
	}
	return fmt.Sprintf("%s %s: funded from remaining budget", p.Metric, score.StringFixed(2))
}
