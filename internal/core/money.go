// Package core holds the ledger domain: models, money arithmetic, identifier
// generation and the monthly aggregation engine. Everything here is pure and
// storage-free; persistence and transport live one layer up.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// Financials are the four derived monetary fields of a transaction. They are
// always computed together so they can never drift apart.
type Financials struct {
	TotalRevenue  int64
	TotalCost     int64
	Profit        int64
	MarginPercent float64
}

// ComputeFinancials derives revenue, cost, profit and margin from a quantity
// and the per-unit prices. Margin is a percentage value (40 means 40%), zero
// when revenue is zero. No rounding happens here; formatting is a
// presentation concern.
//
// Inputs outside the domain (non-positive quantity, negative prices) are the
// caller's responsibility to reject first; see Transaction.Validate.
func ComputeFinancials(quantity, unitSalePrice, unitCostPrice int64) Financials {
	revenue := quantity * unitSalePrice
	cost := quantity * unitCostPrice
	profit := revenue - cost

	var margin float64
	if revenue > 0 {
		margin = float64(profit) / float64(revenue) * 100
	}

	return Financials{
		TotalRevenue:  revenue,
		TotalCost:     cost,
		Profit:        profit,
		MarginPercent: margin,
	}
}

// ParseRupiah converts a form string to a whole-rupiah amount. It accepts
// optional "Rp" prefixes and id-ID dot or comma grouping ("50.000"), and
// rejects anything negative or non-numeric.
//
// Examples:
//
//	ParseRupiah("50000")     -> 50000, nil
//	ParseRupiah("50.000")    -> 50000, nil
//	ParseRupiah("Rp 50.000") -> 50000, nil
//	ParseRupiah("-5")        -> 0, ErrNegativePrice
func ParseRupiah(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "Rp")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrNegativePrice
	}
	if strings.HasPrefix(s, "-") {
		return 0, ErrNegativePrice
	}
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", "")
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return 0, ErrNegativePrice
		}
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, ErrNegativePrice
	}
	return v, nil
}

// FormatRupiah renders an amount as "Rp 50.000" with id-ID thousand grouping.
func FormatRupiah(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}

	if neg {
		return "-Rp " + b.String()
	}
	return "Rp " + b.String()
}
