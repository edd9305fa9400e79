// Package core holds the domain model, the stats derivation pipeline
// and display formatting for the tracker client.
//
// Monetary values are decimal end to end: the API transports them as
// strings, this package keeps them as decimal.Decimal, and they become
// binary floats only inside the formatting helpers below.
package core

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// The original UI formats numbers for the Polish locale
// (space-grouped thousands, comma decimals).
var printer = message.NewPrinter(language.Polish)

// FormatAmount renders a signed amount with two decimals, e.g. "-1 234,56".
func FormatAmount(d decimal.Decimal) string {
	f, _ := d.Float64()
	return printer.Sprintf("%.2f", f)
}

// FormatMoney renders an amount with its currency code, e.g. "1 234,56 PLN".
func FormatMoney(d decimal.Decimal, currency string) string {
	return FormatAmount(d) + " " + currency
}

// FormatCount renders an integer with locale grouping, e.g. "12 345".
func FormatCount(n int64) string {
	return printer.Sprintf("%d", n)
}

// FormatDate renders an ISO date as DD.MM.YYYY, matching the original
// pl-PL date display. Anything unparsable passes through unchanged.
func FormatDate(iso string) string {
	if iso == "" {
		return ""
	}
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		// Timestamps carry a time part.
		t, err = time.Parse(time.RFC3339, iso)
		if err != nil {
			return iso
		}
	}
	return t.Format("02.01.2006")
}
