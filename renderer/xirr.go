package renderer

import (
	"bytes"
	"fmt"
	"strconv"

	md "github.com/nao1215/markdown"
	"github.com/veyl/fundcalc"
)

// XIRRMarkdown renders the outcome of a net-IRR run: the schedule extent
// and the solver verdict.
func XIRRMarkdown(s *fundcalc.Schedule, sol fundcalc.Solution) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	flows := s.Flows()
	last := flows[len(flows)-1].Date
	doc.H1(fmt.Sprintf("Net IRR as of %s", last))
	doc.PlainText(fmt.Sprintf("%d cash flows from %s to %s.", s.Len(), s.Start(), last))

	converged := "yes"
	if !sol.Converged {
		converged = "no"
	}
	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignRight,
		},
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"IRR", percent(sol.IRR)},
			{"Converged", converged},
			{"Method", sol.Method.String()},
			{"Iterations", strconv.Itoa(sol.Iterations)},
		},
	}
	doc.Table(table)

	if !sol.Converged {
		doc.PlainText("The solver did not converge: no rate in the admissible band zeroes the NPV of this schedule.")
	}

	return doc.String()
}
