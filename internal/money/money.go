// Package money formats currency amounts for display.
package money

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// Symbol prefixes every formatted amount. Multi-currency is not supported.
const Symbol = "$"

// Format renders d as "$1,234.56", rounding half away from zero to cents.
func Format(d decimal.Decimal) string {
	r := d.Round(2)
	sign := ""
	if r.IsNegative() {
		sign = "-"
		r = r.Abs()
	}
	whole := r.Truncate(0)
	cents := r.Sub(whole).StringFixed(2) // "0.xx"
	return sign + Symbol + humanize.BigComma(whole.BigInt()) + strings.TrimPrefix(cents, "0")
}

// Plain renders d with exactly two decimals and no symbol or grouping.
func Plain(d decimal.Decimal) string {
	return d.StringFixed(2)
}
