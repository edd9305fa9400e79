package core

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// UncategorizedLabel is the display bucket for rows without a category.
const UncategorizedLabel = "Uncategorized"

type (
	// Summary holds the KPI totals derived from the aggregate rows.
	// TotalExpense keeps the wire sign convention (<= 0), so the net
	// balance is income plus expense, never income minus expense.
	Summary struct {
		TotalIncome      decimal.Decimal
		TotalExpense     decimal.Decimal
		NetBalance       decimal.Decimal
		TransactionCount int64
	}

	// MonthlyPoint is one chart-ready bar pair. Expense is converted to
	// a positive magnitude here, at the presentation boundary only.
	MonthlyPoint struct {
		Month   string
		Label   string
		Income  decimal.Decimal
		Expense decimal.Decimal
	}

	// CategorySlice is one expense-breakdown slice. Percent is the share
	// of the expense-only total, not of the overall signed total.
	CategorySlice struct {
		Label   string
		Amount  decimal.Decimal
		Count   int64
		Percent float64
	}
)

// Summarize derives the KPI totals. Income and expense come from the
// monthly rows; the transaction count comes from the category rows —
// the two aggregates are independent views and must not be mixed.
func Summarize(monthly []MonthlyStat, categories []CategoryStat) Summary {
	var s Summary
	for _, m := range monthly {
		s.TotalIncome = s.TotalIncome.Add(m.Income)
		s.TotalExpense = s.TotalExpense.Add(m.Expense)
	}
	s.NetBalance = s.TotalIncome.Add(s.TotalExpense)
	for _, c := range categories {
		s.TransactionCount += c.Count
	}
	return s
}

// MonthlySeries maps monthly rows to chart points with humanized labels.
func MonthlySeries(monthly []MonthlyStat) []MonthlyPoint {
	points := make([]MonthlyPoint, 0, len(monthly))
	for _, m := range monthly {
		points = append(points, MonthlyPoint{
			Month:   m.Month,
			Label:   MonthLabel(m.Month),
			Income:  m.Income,
			Expense: m.Expense.Abs(),
		})
	}
	return points
}

// ExpenseSlices turns category rows into the expense breakdown: expense
// rows only (total < 0), absolute magnitudes, sorted descending, each
// slice's percentage computed against the filtered total. An empty
// result means "no expense data", which callers must render explicitly
// rather than as a degenerate chart.
func ExpenseSlices(categories []CategoryStat) []CategorySlice {
	slices := make([]CategorySlice, 0, len(categories))
	total := decimal.Zero
	for _, c := range categories {
		if !c.Total.IsNegative() {
			continue
		}
		label := UncategorizedLabel
		if c.Category != nil {
			label = *c.Category
		}
		amount := c.Total.Abs()
		total = total.Add(amount)
		slices = append(slices, CategorySlice{
			Label:  label,
			Amount: amount,
			Count:  c.Count,
		})
	}
	if len(slices) == 0 {
		return nil
	}
	sort.SliceStable(slices, func(i, j int) bool {
		return slices[i].Amount.GreaterThan(slices[j].Amount)
	})
	hundred := decimal.NewFromInt(100)
	for i := range slices {
		slices[i].Percent, _ = slices[i].Amount.Mul(hundred).Div(total).Float64()
	}
	return slices
}

// Years extracts the distinct year prefixes of the month keys, sorted
// descending. Fed by the unfiltered monthly aggregate so the year
// dropdown covers the whole history.
func Years(monthly []MonthlyStat) []string {
	seen := make(map[string]struct{}, len(monthly))
	years := make([]string, 0, len(monthly))
	for _, m := range monthly {
		if _, err := time.Parse("2006-01", m.Month); err != nil {
			continue
		}
		year := m.Month[:4]
		if _, ok := seen[year]; ok {
			continue
		}
		seen[year] = struct{}{}
		years = append(years, year)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(years)))
	return years
}

// MonthLabel humanizes a YYYY-MM key ("2024-03" -> "Mar 2024").
// Unparsable keys pass through unchanged.
func MonthLabel(month string) string {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return month
	}
	return t.Format("Jan 2006")
}
