package core

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func strPtr(s string) *string { return &s }

func TestSummarize(t *testing.T) {
	monthly := []MonthlyStat{
		{Month: "2024-01", Income: dec("1000.00"), Expense: dec("-400.00")},
	}
	categories := []CategoryStat{
		{Category: strPtr("Food"), Total: dec("-200.00"), Count: 5},
		{Category: nil, Total: dec("-100.00"), Count: 2},
	}

	s := Summarize(monthly, categories)

	assert.True(t, s.TotalIncome.Equal(dec("1000")), "total income = %s", s.TotalIncome)
	assert.True(t, s.TotalExpense.Equal(dec("-400")), "total expense = %s", s.TotalExpense)
	assert.True(t, s.NetBalance.Equal(dec("600")), "net balance = %s", s.NetBalance)
	// Count comes from the category rows, not the monthly rows.
	assert.Equal(t, int64(7), s.TransactionCount)
}

func TestSummarize_NetBalanceIsSum(t *testing.T) {
	// Expense is stored negative, so net = income + expense always holds
	// and expense never exceeds zero.
	monthly := []MonthlyStat{
		{Month: "2023-11", Income: dec("1500.50"), Expense: dec("-1200.25")},
		{Month: "2023-12", Income: dec("0.00"), Expense: dec("-99.99")},
		{Month: "2024-01", Income: dec("2500.00"), Expense: dec("0.00")},
	}

	s := Summarize(monthly, nil)

	assert.True(t, s.TotalExpense.LessThanOrEqual(decimal.Zero))
	assert.True(t, s.NetBalance.Equal(s.TotalIncome.Add(s.TotalExpense)))
	assert.True(t, s.NetBalance.Equal(dec("2700.26")), "net balance = %s", s.NetBalance)
}

func TestSummarize_DecimalExactness(t *testing.T) {
	// 0.1 summed ten times is exactly 1 in decimal arithmetic; a float64
	// accumulator would drift.
	monthly := make([]MonthlyStat, 10)
	for i := range monthly {
		monthly[i] = MonthlyStat{Month: "2024-01", Income: dec("0.1"), Expense: dec("-0.1")}
	}

	s := Summarize(monthly, nil)

	assert.True(t, s.TotalIncome.Equal(dec("1")))
	assert.True(t, s.NetBalance.IsZero())
}

func TestMonthlySeries(t *testing.T) {
	points := MonthlySeries([]MonthlyStat{
		{Month: "2024-01", Income: dec("1000.00"), Expense: dec("-400.00")},
		{Month: "2024-02", Income: dec("900.00"), Expense: dec("-650.50")},
	})

	require.Len(t, points, 2)
	assert.Equal(t, "Jan 2024", points[0].Label)
	assert.Equal(t, "Feb 2024", points[1].Label)
	// Expense flips to a positive magnitude only here, at the chart
	// boundary; the KPI totals upstream keep the negative sign.
	assert.True(t, points[0].Expense.Equal(dec("400.00")))
	assert.True(t, points[1].Expense.Equal(dec("650.50")))
	assert.True(t, points[0].Income.Equal(dec("1000.00")))
}

func TestMonthlySeries_Empty(t *testing.T) {
	assert.Empty(t, MonthlySeries(nil))
}

func TestExpenseSlices(t *testing.T) {
	slices := ExpenseSlices([]CategoryStat{
		{Category: strPtr("Food"), Total: dec("-200.00"), Count: 5},
		{Category: nil, Total: dec("-100.00"), Count: 2},
	})

	require.Len(t, slices, 2)
	assert.Equal(t, "Food", slices[0].Label)
	assert.Equal(t, UncategorizedLabel, slices[1].Label)
	assert.True(t, slices[0].Amount.Equal(dec("200.00")))
	assert.True(t, slices[1].Amount.Equal(dec("100.00")))
	assert.InDelta(t, 66.7, slices[0].Percent, 0.05)
	assert.InDelta(t, 33.3, slices[1].Percent, 0.05)
}

func TestExpenseSlices_ExcludesIncomeRows(t *testing.T) {
	slices := ExpenseSlices([]CategoryStat{
		{Category: strPtr("Salary"), Total: dec("5000.00"), Count: 2},
		{Category: strPtr("Refunds"), Total: dec("0.00"), Count: 1},
		{Category: strPtr("Rent"), Total: dec("-1800.00"), Count: 1},
	})

	require.Len(t, slices, 1)
	assert.Equal(t, "Rent", slices[0].Label)
	assert.InDelta(t, 100.0, slices[0].Percent, 0.001)
}

func TestExpenseSlices_PercentagesSumTo100(t *testing.T) {
	slices := ExpenseSlices([]CategoryStat{
		{Category: strPtr("a"), Total: dec("-33.33"), Count: 1},
		{Category: strPtr("b"), Total: dec("-33.33"), Count: 1},
		{Category: strPtr("c"), Total: dec("-33.34"), Count: 1},
		{Category: strPtr("d"), Total: dec("-0.07"), Count: 1},
	})

	var sum float64
	for _, s := range slices {
		sum += s.Percent
	}
	assert.InDelta(t, 100.0, sum, 1e-9)
}

func TestExpenseSlices_NoExpenseRows(t *testing.T) {
	// Income-only input yields nil, the explicit "no data" state.
	slices := ExpenseSlices([]CategoryStat{
		{Category: strPtr("Salary"), Total: dec("5000.00"), Count: 2},
	})
	assert.Nil(t, slices)
	assert.Nil(t, ExpenseSlices(nil))
}

func TestExpenseSlices_SortedByMagnitude(t *testing.T) {
	slices := ExpenseSlices([]CategoryStat{
		{Category: strPtr("small"), Total: dec("-10.00"), Count: 1},
		{Category: strPtr("big"), Total: dec("-300.00"), Count: 1},
		{Category: strPtr("mid"), Total: dec("-50.00"), Count: 1},
	})

	require.Len(t, slices, 3)
	assert.Equal(t, []string{"big", "mid", "small"}, []string{slices[0].Label, slices[1].Label, slices[2].Label})
}

func TestYears(t *testing.T) {
	years := Years([]MonthlyStat{
		{Month: "2022-05"},
		{Month: "2024-01"},
		{Month: "2024-12"},
		{Month: "2023-07"},
		{Month: "bogus"},
	})

	assert.Equal(t, []string{"2024", "2023", "2022"}, years)
}

func TestMonthLabel(t *testing.T) {
	assert.Equal(t, "Mar 2024", MonthLabel("2024-03"))
	assert.Equal(t, "not-a-month", MonthLabel("not-a-month"))
}
