package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"grosz/internal/core"
	"grosz/internal/querystate"
	"grosz/internal/services"
)

const chartBarWidth = 40

func (a *App) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "a":
		return a, a.merge(map[string]string{querystate.KeyAccount: a.nextAccount()})
	case "y":
		return a, a.merge(map[string]string{querystate.KeyYear: a.nextYear()})
	case "r":
		return a, tea.Batch(a.fetchDashboardCmd(), a.loadRefDataCmd())
	}
	return a, nil
}

// nextYear cycles all -> newest year -> ... -> oldest -> all.
func (a *App) nextYear() string {
	if len(a.years) == 0 {
		return ""
	}
	current := a.store.Location().Query.Get(querystate.KeyYear)
	if current == "" {
		return a.years[0]
	}
	for i, year := range a.years {
		if year == current {
			if i+1 < len(a.years) {
				return a.years[i+1]
			}
			return ""
		}
	}
	return ""
}

func (a *App) viewDashboard() string {
	state := a.dash.State()
	var b strings.Builder

	b.WriteString(titleStyle.Render("Dashboard"))
	b.WriteString("\n")
	b.WriteString(a.renderDashboardFilters())
	b.WriteString("\n\n")

	switch state.Phase {
	case services.PhaseLoading, services.PhaseIdle:
		// Stale numbers must never show during a refetch; the cards
		// stay blank until the current cycle lands.
		b.WriteString(a.tx.spin.View() + mutedStyle.Render(" Loading..."))
		b.WriteString("\n")
	case services.PhaseError:
		b.WriteString(errorStyle.Render(state.Err))
		b.WriteString("\n")
	default:
		b.WriteString(renderKPICards(state.Summary))
		b.WriteString("\n\n")
		b.WriteString(renderMonthlyChart(state.Series))
		b.WriteString("\n")
		b.WriteString(renderExpenseBreakdown(state.Slices))
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("a account · y year · r refresh · 1 transactions · 3 import · q quit"))
	return b.String()
}

func (a *App) renderDashboardFilters() string {
	f := querystate.DashboardFrom(a.store.Location())
	account := "all accounts"
	if f.Account != "" {
		account = f.Account
	}
	year := "all time"
	if f.Year != "" {
		year = f.Year
	}
	return badgeStyle.Render(account) + " " + badgeStyle.Render(year)
}

func renderKPICards(s core.Summary) string {
	income := cardStyle.Render(
		mutedStyle.Render("Income") + "\n" +
			incomeStyle.Render(core.FormatAmount(s.TotalIncome)))
	expense := cardStyle.Render(
		mutedStyle.Render("Expenses") + "\n" +
			expenseStyle.Render(core.FormatAmount(s.TotalExpense)))

	netStyle := incomeStyle
	if s.NetBalance.IsNegative() {
		netStyle = expenseStyle
	}
	net := cardStyle.Render(
		mutedStyle.Render("Net balance") + "\n" +
			netStyle.Render(core.FormatAmount(s.NetBalance)))
	count := cardStyle.Render(
		mutedStyle.Render("Transactions") + "\n" +
			core.FormatCount(s.TransactionCount))

	return lipgloss.JoinHorizontal(lipgloss.Top, income, expense, net, count)
}

// renderMonthlyChart draws income and expense magnitudes as paired
// horizontal bars, both scaled against the largest value in the series.
func renderMonthlyChart(series []core.MonthlyPoint) string {
	if len(series) == 0 {
		return mutedStyle.Render("No monthly data for the current filters.")
	}

	peak := decimal.Zero
	for _, p := range series {
		if p.Income.GreaterThan(peak) {
			peak = p.Income
		}
		if p.Expense.GreaterThan(peak) {
			peak = p.Expense
		}
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("Income vs expenses by month"))
	b.WriteString("\n")
	for _, p := range series {
		b.WriteString(fmt.Sprintf("%-9s %s %s\n", p.Label,
			incomeStyle.Render(bar(p.Income, peak)),
			mutedStyle.Render(core.FormatAmount(p.Income))))
		b.WriteString(fmt.Sprintf("%-9s %s %s\n", "",
			expenseStyle.Render(bar(p.Expense, peak)),
			mutedStyle.Render(core.FormatAmount(p.Expense.Neg()))))
	}
	return b.String()
}

func renderExpenseBreakdown(slices []core.CategorySlice) string {
	if slices == nil {
		return mutedStyle.Render("No expense data for the current filters.")
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("Expenses by category"))
	b.WriteString("\n")
	for _, s := range slices {
		b.WriteString(fmt.Sprintf("%-18s %s %5.1f%%  %s (%s)\n",
			truncate(s.Label, 18),
			expenseStyle.Render(percentBar(s.Percent)),
			s.Percent,
			core.FormatAmount(s.Amount),
			core.FormatCount(s.Count)))
	}
	return b.String()
}

func bar(value, peak decimal.Decimal) string {
	if peak.IsZero() || !value.IsPositive() {
		return ""
	}
	ratio, _ := value.Div(peak).Float64()
	n := int(ratio * chartBarWidth)
	if n < 1 {
		n = 1
	}
	return strings.Repeat("█", n)
}

func percentBar(percent float64) string {
	n := int(percent / 100 * chartBarWidth)
	if n < 1 {
		n = 1
	}
	return strings.Repeat("█", n)
}
