package renderer

import (
	"bytes"
	"fmt"
	"strconv"

	md "github.com/nao1215/markdown"
	"github.com/veyl/fundcalc"
)

// FeesMarkdown renders a management-fee timeline, one row per fund year.
func FeesMarkdown(cfg *fundcalc.FundConfig, periods []fundcalc.FeePeriod, tl fundcalc.FeeTimeline) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Management Fees — %s", cfg.Name))
	doc.PlainText(fmt.Sprintf("Basis: %s, headline rate: %s.", cfg.FeeBasis, cfg.FeeRate))

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignRight,
			md.AlignRight,
		},
		Header: []string{"Year", "Fee"},
		Rows:   [][]string{},
	}
	for i, p := range periods {
		table.Rows = append(table.Rows, []string{
			strconv.Itoa(p.Year),
			tl.Yearly[i].String(),
		})
	}
	table.Rows = append(table.Rows, []string{"Total", tl.Total.String()})
	doc.Table(table)

	return doc.String()
}
