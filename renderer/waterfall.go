package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/veyl/fundcalc"
)

// WaterfallMarkdown renders a full waterfall run: the per-event tier
// breakdown, the cumulative totals, and the clawback section when one is
// owed.
func WaterfallMarkdown(cfg *fundcalc.FundConfig, w *fundcalc.Waterfall) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Distribution Waterfall — %s\n\n", cfg.Name)
	fmt.Fprintf(&b, "Hurdle %s, carry %s, catch-up %s.\n\n", cfg.Hurdle, cfg.Carry, cfg.Catchup)

	fmt.Fprint(&b, "## Events\n\n")
	fmt.Fprintln(&b, "| Date | Gross | Recycled | ROC | Hurdle | Catch-up | Carry | LP Residual |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|---:|---:|---:|---:|")
	for _, e := range w.Events() {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s |\n",
			e.Date,
			e.Gross,
			e.Recycled,
			e.ByTier[fundcalc.TierROC],
			e.ByTier[fundcalc.TierHurdle],
			e.ByTier[fundcalc.TierCatchup],
			e.ByTier[fundcalc.TierCarry],
			e.LPResidual,
		)
	}

	totals := w.Totals()
	fmt.Fprint(&b, "\n## Totals\n\n")
	fmt.Fprintln(&b, "| Metric | Amount |")
	fmt.Fprintln(&b, "|:---|---:|")
	fmt.Fprintf(&b, "| Capital returned | %s |\n", totals.CapitalReturned)
	fmt.Fprintf(&b, "| Preferred accrued | %s |\n", totals.PreferredAccrued)
	fmt.Fprintf(&b, "| Preferred paid | %s |\n", totals.HurdlePaid)
	fmt.Fprintf(&b, "| GP carry paid | %s |\n", totals.CarryPaid)
	fmt.Fprintf(&b, "| Profit distributed | %s |\n", totals.ProfitDistributed)
	fmt.Fprintf(&b, "| Recycled | %s |\n", totals.Recycled)

	ConditionalBlock(&b, func(w2 io.Writer) bool {
		cb := w.Clawback()
		if cb.IsZero() {
			return false
		}
		fmt.Fprint(w2, "\n## Clawback\n\n")
		fmt.Fprintf(w2, "The GP owes **%s** back to LPs: cumulative carry paid exceeds carry owed on realized profit to date.\n", cb)
		return true
	})

	return b.String()
}
