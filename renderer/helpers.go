// Package renderer turns engine results into markdown reports.
package renderer

import (
	"bytes"
	"io"

	"github.com/shopspring/decimal"
)

// ConditionalBlock lets you fully write a block and decide at the end to print it or not.
// If the block function returns true, the content is printed to w, otherwise it is discarded.
func ConditionalBlock(w io.Writer, block func(io.Writer) bool) {
	bw := &bytes.Buffer{}
	if block(bw) {
		io.Copy(w, bw)
	}
}

var hundred = decimal.NewFromInt(100)

// percent formats a decimal fraction (0.2137) as a display percentage ("21.3700%").
func percent(fraction decimal.Decimal) string {
	return fraction.Mul(hundred).StringFixed(4) + "%"
}
