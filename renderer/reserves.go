package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/veyl/fundcalc"
)

// ReservesMarkdown renders a reserve allocation ledger in rank order.
func ReservesMarkdown(budget fundcalc.Money, policy fundcalc.AllocationPolicy, report *fundcalc.AllocationReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Reserve Allocation\n\n")
	fmt.Fprintf(&b, "Budget %s, ranked by %s, cap policy %s.\n\n", budget, policy.Metric, policy.Cap)

	fmt.Fprintln(&b, "| Rank | Company | Allocated | Rationale |")
	fmt.Fprintln(&b, "|---:|:---|---:|:---|")
	for _, row := range report.Rows {
		fmt.Fprintf(&b, "| %d | %s | %s | %s |\n",
			row.Rank,
			row.CompanyID,
			row.Allocated,
			row.Rationale,
		)
	}

	ConditionalBlock(&b, func(w io.Writer) bool {
		if report.Unallocated.IsZero() {
			return false
		}
		fmt.Fprintf(w, "\n**%s** of the budget found no candidate with remaining capacity.\n", report.Unallocated)
		return true
	})

	return b.String()
}
