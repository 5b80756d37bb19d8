package recorder

import (
	"time"

	"github.com/google/uuid"
	"github.com/veyl/fundcalc"
)

// NoopRecorder is a no-op implementation used when no audit store is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordAllocation(fund string, budget fundcalc.Money, policy fundcalc.AllocationPolicy, report *fundcalc.AllocationReport) (*AllocationRun, error) {
	return &AllocationRun{
		RunID:       uuid.NewString(),
		Fund:        fund,
		RecordedAt:  time.Now(),
		Budget:      budget,
		Metric:      policy.Metric.String(),
		CapPolicy:   policy.Cap.String(),
		Rows:        report.Rows,
		Unallocated: report.Unallocated,
	}, nil
}

func (n *NoopRecorder) Runs(_ string) ([]AllocationRun, error) { return nil, nil }
func (n *NoopRecorder) Run(_ string) (*AllocationRun, error)   { return nil, nil }
func (n *NoopRecorder) Close() error                           { return nil }
