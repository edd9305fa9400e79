package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"grosz/internal/core"
	"grosz/internal/querystate"
	"grosz/internal/services"
)

type transactionsState struct {
	cursor     int
	editing    bool
	editCursor int

	searching   bool
	searchInput textinput.Model

	saving    bool
	nameInput textinput.Model

	detail *core.Transaction

	spin spinner.Model
}

func newTransactionsState() transactionsState {
	search := textinput.New()
	search.Placeholder = "counterparty or description..."
	search.CharLimit = 120

	name := textinput.New()
	name.Placeholder = "view name"
	name.CharLimit = 60

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return transactionsState{
		searchInput: search,
		nameInput:   name,
		spin:        spin,
	}
}

func (a *App) clampCursor() {
	rows := a.list.State().Rows
	if a.tx.cursor >= len(rows) {
		a.tx.cursor = max(0, len(rows)-1)
	}
}

func (a *App) updateTransactions(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	state := a.list.State()

	if a.tx.editing {
		return a.updateCategoryPicker(msg, state)
	}

	switch msg.String() {
	case "esc":
		a.tx.detail = nil
	case "o":
		if a.tx.cursor < len(state.Rows) {
			return a, a.detailCmd(state.Rows[a.tx.cursor].ID)
		}
	case "j", "down":
		if a.tx.cursor < len(state.Rows)-1 {
			a.tx.cursor++
		}
	case "k", "up":
		if a.tx.cursor > 0 {
			a.tx.cursor--
		}
	case "h", "left":
		if state.Page > 1 {
			return a, a.merge(map[string]string{querystate.KeyPage: strconv.Itoa(state.Page - 1)})
		}
	case "l", "right":
		if state.Page < a.list.TotalPages() {
			return a, a.merge(map[string]string{querystate.KeyPage: strconv.Itoa(state.Page + 1)})
		}
	case "a":
		return a, a.merge(map[string]string{querystate.KeyAccount: a.nextAccount()})
	case "f":
		return a, a.merge(map[string]string{querystate.KeyCategory: a.nextCategoryFilter(state)})
	case "/":
		a.tx.searching = true
		a.tx.searchInput.SetValue(querystate.FiltersFrom(a.store.Location()).Search)
		a.tx.searchInput.Focus()
	case "s":
		a.tx.saving = true
		a.tx.nameInput.SetValue("")
		a.tx.nameInput.Focus()
	case "x":
		return a, a.navigate(querystate.NewLocation(querystate.PathTransactions))
	case "r":
		return a, a.fetchListCmd()
	case "C":
		a.status = "categorizing..."
		return a, a.categorizeCmd()
	case "c", "enter":
		if len(state.Rows) > 0 && len(state.Categories) > 0 {
			a.tx.editing = true
			a.tx.editCursor = a.currentCategoryIndex(state)
		}
	}
	return a, nil
}

// updateCategoryPicker drives the inline category edit. Exactly one
// row is in edit mode at a time; the edit never changes the visible
// label, only a confirmed server row does.
func (a *App) updateCategoryPicker(msg tea.KeyMsg, state services.ListState) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.tx.editing = false
	case "j", "down":
		if a.tx.editCursor < len(state.Categories)-1 {
			a.tx.editCursor++
		}
	case "k", "up":
		if a.tx.editCursor > 0 {
			a.tx.editCursor--
		}
	case "enter":
		a.tx.editing = false
		if a.tx.cursor < len(state.Rows) && a.tx.editCursor < len(state.Categories) {
			row := state.Rows[a.tx.cursor]
			category := state.Categories[a.tx.editCursor]
			return a, a.commitCategoryCmd(row.ID, category.ID)
		}
	}
	return a, nil
}

func (a *App) updateTextEntry(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case a.tx.searching:
		switch msg.String() {
		case "enter":
			a.tx.searching = false
			a.tx.searchInput.Blur()
			return a, a.merge(map[string]string{querystate.KeySearch: a.tx.searchInput.Value()})
		case "esc":
			a.tx.searching = false
			a.tx.searchInput.Blur()
			return a, nil
		}
		var cmd tea.Cmd
		a.tx.searchInput, cmd = a.tx.searchInput.Update(msg)
		return a, cmd

	case a.tx.saving:
		switch msg.String() {
		case "enter":
			a.tx.saving = false
			a.tx.nameInput.Blur()
			if name := strings.TrimSpace(a.tx.nameInput.Value()); name != "" {
				return a, a.saveViewCmd(name)
			}
			return a, nil
		case "esc":
			a.tx.saving = false
			a.tx.nameInput.Blur()
			return a, nil
		}
		var cmd tea.Cmd
		a.tx.nameInput, cmd = a.tx.nameInput.Update(msg)
		return a, cmd

	default:
		return a.updateImport(msg)
	}
}

// nextAccount cycles all -> first account -> ... -> last -> all.
// Account names are unique and double as the filter value.
func (a *App) nextAccount() string {
	current := a.store.Location().Query.Get(querystate.KeyAccount)
	if len(a.accounts) == 0 {
		if state := a.list.State(); state.Accounts != nil {
			a.accounts = state.Accounts
		}
	}
	if len(a.accounts) == 0 {
		return ""
	}
	if current == "" {
		return a.accounts[0].Name
	}
	for i, acc := range a.accounts {
		if acc.Name == current {
			if i+1 < len(a.accounts) {
				return a.accounts[i+1].Name
			}
			return ""
		}
	}
	return ""
}

func (a *App) nextCategoryFilter(state services.ListState) string {
	if len(state.Categories) == 0 {
		return ""
	}
	current := a.store.Location().Query.Get(querystate.KeyCategory)
	if current == "" {
		return strconv.FormatInt(state.Categories[0].ID, 10)
	}
	for i, cat := range state.Categories {
		if strconv.FormatInt(cat.ID, 10) == current {
			if i+1 < len(state.Categories) {
				return strconv.FormatInt(state.Categories[i+1].ID, 10)
			}
			return ""
		}
	}
	return ""
}

// currentCategoryIndex positions the picker on the row's current
// category, or the top when uncategorized.
func (a *App) currentCategoryIndex(state services.ListState) int {
	if a.tx.cursor >= len(state.Rows) {
		return 0
	}
	row := state.Rows[a.tx.cursor]
	if row.CategoryID == nil {
		return 0
	}
	for i, cat := range state.Categories {
		if cat.ID == *row.CategoryID {
			return i
		}
	}
	return 0
}

func (a *App) viewTransactions() string {
	state := a.list.State()
	var b strings.Builder

	b.WriteString(titleStyle.Render("Transactions"))
	b.WriteString(mutedStyle.Render(fmt.Sprintf("  %s total", core.FormatCount(state.Total))))
	b.WriteString("\n")
	b.WriteString(a.renderFilterBar())
	b.WriteString("\n")

	switch state.Phase {
	case services.PhaseLoading, services.PhaseIdle:
		b.WriteString(a.tx.spin.View() + mutedStyle.Render(" Loading..."))
		b.WriteString("\n")
	case services.PhaseError:
		b.WriteString(errorStyle.Render(state.Err))
		b.WriteString("\n")
	default:
		b.WriteString(a.renderTable(state))
	}

	if a.tx.editing {
		b.WriteString("\n")
		b.WriteString(a.renderCategoryPicker(state))
	}
	if a.tx.detail != nil {
		b.WriteString("\n")
		b.WriteString(a.renderDetail(state, *a.tx.detail))
	}
	if a.tx.searching {
		b.WriteString("\nsearch: " + a.tx.searchInput.View())
	}
	if a.tx.saving {
		b.WriteString("\nsave view as: " + a.tx.nameInput.View())
	}

	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("Page %d of %d", state.Page, a.list.TotalPages())))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("j/k move · h/l page · o detail · a account · f category · / search · c edit · C categorize · s save view · v views · x clear · 2 dashboard · 3 import · q quit"))
	return b.String()
}

func (a *App) renderFilterBar() string {
	f := querystate.FiltersFrom(a.store.Location())
	var parts []string
	if f.Account != "" {
		parts = append(parts, badgeStyle.Render("account: "+f.Account))
	}
	if f.CategoryID != "" {
		label := f.CategoryID
		if state := a.list.State(); state.CategoryByID != nil {
			if id, err := strconv.ParseInt(f.CategoryID, 10, 64); err == nil {
				if cat, ok := state.CategoryByID[id]; ok {
					label = cat.Name
				}
			}
		}
		parts = append(parts, badgeStyle.Render("category: "+label))
	}
	if f.DateFrom != "" {
		parts = append(parts, badgeStyle.Render("from: "+f.DateFrom))
	}
	if f.DateTo != "" {
		parts = append(parts, badgeStyle.Render("to: "+f.DateTo))
	}
	if f.Search != "" {
		parts = append(parts, badgeStyle.Render("search: "+f.Search))
	}
	if len(parts) == 0 {
		return mutedStyle.Render("no filters")
	}
	return strings.Join(parts, " ")
}

func (a *App) renderTable(state services.ListState) string {
	if len(state.Rows) == 0 {
		return mutedStyle.Render("No transactions found.") + "\n"
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-10s  %-22s  %-28s  %14s  %-4s  %-16s  %-10s",
		"Date", "Counterparty", "Description", "Amount", "Cur", "Category", "Account")))
	b.WriteString("\n")

	for i, row := range state.Rows {
		line := fmt.Sprintf("%-10s  %-22s  %-28s  %14s  %-4s  %-16s  %-10s",
			core.FormatDate(row.TransactionDate),
			truncate(deref(row.Counterparty), 22),
			truncate(row.Description, 28),
			a.renderAmount(row),
			row.Currency,
			truncate(a.categoryLabel(state, row), 16),
			truncate(a.accountLabel(state, row), 10),
		)
		if i == a.tx.cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (a *App) renderAmount(row core.Transaction) string {
	formatted := core.FormatAmount(row.Amount)
	if row.IsExpense() {
		return expenseStyle.Render(formatted)
	}
	return incomeStyle.Render("+" + formatted)
}

// categoryLabel resolves via the identity map. A nil map means the
// reference lookup failed; the label degrades to unresolved instead of
// failing the view.
func (a *App) categoryLabel(state services.ListState, row core.Transaction) string {
	if row.CategoryID == nil {
		return core.UncategorizedLabel
	}
	if state.CategoryByID == nil {
		return "?"
	}
	if cat, ok := state.CategoryByID[*row.CategoryID]; ok {
		return cat.Name
	}
	return "?"
}

func (a *App) accountLabel(state services.ListState, row core.Transaction) string {
	if state.AccountByID == nil {
		return "?"
	}
	if acc, ok := state.AccountByID[row.AccountID]; ok {
		return acc.Name
	}
	return "?"
}

func (a *App) renderCategoryPicker(state services.ListState) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Pick category"))
	b.WriteString("\n")
	for i, cat := range state.Categories {
		line := cat.Name
		if i == a.tx.editCursor {
			line = selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("enter apply · esc cancel"))
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		Padding(0, 1).
		Render(b.String())
}

// renderDetail shows the bank-level fields the table truncates or
// omits entirely.
func (a *App) renderDetail(state services.ListState, tx core.Transaction) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Transaction #%d", tx.ID)))
	b.WriteString("\n")

	write := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(fmt.Sprintf("%-15s %s\n", mutedStyle.Render(label), value))
	}

	write("date", core.FormatDate(tx.TransactionDate))
	write("booked", core.FormatDate(optional(tx.BookingDate)))
	write("counterparty", optional(tx.Counterparty))
	write("description", tx.Description)
	write("amount", core.FormatMoney(tx.Amount, tx.Currency))
	write("category", a.categoryLabel(state, tx))
	write("source", optional(tx.CategorySource))
	write("bank category", optional(tx.BankCategory))
	write("bank reference", optional(tx.BankReference))
	write("bank type", optional(tx.BankType))
	write("state", optional(tx.State))
	write("imported", core.FormatDate(optional(tx.ImportedAt)))

	b.WriteString(helpStyle.Render("esc close"))
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		Padding(0, 1).
		Render(b.String())
}

func truncate(s string, w int) string {
	r := []rune(s)
	if len(r) <= w {
		return s
	}
	if w <= 1 {
		return string(r[:w])
	}
	return string(r[:w-1]) + "…"
}

// optional is the detail-pane variant of deref: absent fields are
// skipped rather than shown as "-".
func optional(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
