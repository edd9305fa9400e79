// Package tui renders the three client views in the terminal. It is a
// thin presentation boundary: all data shaping happens in the core and
// the services; this package only draws snapshots and translates key
// presses into navigations.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"grosz/internal/config"
	"grosz/internal/core"
	"grosz/internal/log"
	"grosz/internal/querystate"
	"grosz/internal/services"
	"grosz/internal/storage"
)

type screen int

const (
	screenTransactions screen = iota
	screenDashboard
	screenImport
	screenViews
)

// Messages carried back into the event loop from commands. Fetch
// results carry their generation token; Update hands them to the
// owning service, which discards stale ones.
type (
	listFetchedMsg struct {
		gen    uint64
		result *services.ListResult
		err    error
	}
	dashboardFetchedMsg struct {
		gen    uint64
		result *services.DashboardResult
		err    error
	}
	refDataMsg struct {
		accounts []core.Account
		years    []string
	}
	categoryCommittedMsg struct {
		rowID     int64
		confirmed bool
	}
	txDetailMsg struct {
		tx  core.Transaction
		err error
	}
	importDoneMsg struct {
		result core.ImportResult
		err    error
	}
	categorizeDoneMsg struct {
		n   int64
		err error
	}
	savedViewsMsg struct {
		views []storage.SavedView
		err   error
	}
	viewSavedMsg struct {
		name string
		err  error
	}
)

// App is the whole TUI program. One event loop, no parallel execution:
// every network round-trip runs as a command and comes back as one of
// the messages above.
type App struct {
	cfg      *config.Config
	store    *querystate.Store
	list     *services.ListService
	dash     *services.DashboardService
	editor   *services.CategoryEditor
	importer *services.ImportService
	views    *storage.SQLiteRepository
	logger   *log.Logger

	screen screen
	width  int
	height int
	status string

	accounts []core.Account
	years    []string

	tx    transactionsState
	imp   importState
	saved savedViewsState
}

// New wires the application model. The query-state store is the single
// source of truth for what is shown; the app subscribes to it so every
// navigation lands in the operational log.
func New(
	cfg *config.Config,
	store *querystate.Store,
	list *services.ListService,
	dash *services.DashboardService,
	editor *services.CategoryEditor,
	importer *services.ImportService,
	views *storage.SQLiteRepository,
	logger *log.Logger,
) *App {
	a := &App{
		cfg:      cfg,
		store:    store,
		list:     list,
		dash:     dash,
		editor:   editor,
		importer: importer,
		views:    views,
		logger:   logger.WithComponent(log.ComponentTUI),
	}
	a.tx = newTransactionsState()
	a.imp = newImportState()

	store.Subscribe(func(loc querystate.Location) {
		a.logger.Debug("Navigated",
			log.FieldOperation, log.OpNavigate,
			log.FieldLocation, loc.String())
	})
	return a
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.fetchForLocation(), a.tx.spin.Tick)
}

// navigate moves to loc and kicks off whatever fetches the new
// location needs.
func (a *App) navigate(loc querystate.Location) tea.Cmd {
	a.store.Navigate(loc)
	return a.fetchForLocation()
}

// merge merges query updates into the current location and refetches.
func (a *App) merge(updates map[string]string) tea.Cmd {
	a.store.Merge(updates)
	return a.fetchForLocation()
}

// fetchForLocation maps the current location onto a screen and issues
// its fetch cycle.
func (a *App) fetchForLocation() tea.Cmd {
	loc := a.store.Location()
	switch loc.Path {
	case querystate.PathDashboard:
		a.screen = screenDashboard
		return tea.Batch(a.fetchDashboardCmd(), a.loadRefDataCmd())
	case querystate.PathImport:
		a.screen = screenImport
		return nil
	default:
		a.screen = screenTransactions
		return a.fetchListCmd()
	}
}

func (a *App) fetchListCmd() tea.Cmd {
	filters := querystate.FiltersFrom(a.store.Location())
	gen := a.list.Begin()
	return func() tea.Msg {
		result, err := a.list.Fetch(context.Background(), filters)
		return listFetchedMsg{gen: gen, result: result, err: err}
	}
}

func (a *App) fetchDashboardCmd() tea.Cmd {
	filters := querystate.DashboardFrom(a.store.Location())
	gen := a.dash.Begin()
	return func() tea.Msg {
		result, err := a.dash.Fetch(context.Background(), filters)
		return dashboardFetchedMsg{gen: gen, result: result, err: err}
	}
}

// loadRefDataCmd loads the account list and selectable years for the
// dashboard filter controls. Failures degrade to empty dropdowns, same
// as the original client.
func (a *App) loadRefDataCmd() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		msg := refDataMsg{}
		if state := a.list.State(); state.Accounts != nil {
			msg.accounts = state.Accounts
		}
		if years, err := a.dash.Years(ctx); err == nil {
			msg.years = years
		}
		return msg
	}
}

func (a *App) commitCategoryCmd(rowID, categoryID int64) tea.Cmd {
	return func() tea.Msg {
		confirmed := a.editor.Commit(context.Background(), rowID, categoryID)
		return categoryCommittedMsg{rowID: rowID, confirmed: confirmed}
	}
}

func (a *App) detailCmd(id int64) tea.Cmd {
	return func() tea.Msg {
		tx, err := a.list.Detail(context.Background(), id)
		return txDetailMsg{tx: tx, err: err}
	}
}

func (a *App) importCmd(path string) tea.Cmd {
	return func() tea.Msg {
		result, err := a.importer.ImportFile(context.Background(), path)
		return importDoneMsg{result: result, err: err}
	}
}

func (a *App) categorizeCmd() tea.Cmd {
	return func() tea.Msg {
		n, err := a.importer.TriggerCategorize(context.Background())
		return categorizeDoneMsg{n: n, err: err}
	}
}

func (a *App) loadViewsCmd() tea.Cmd {
	return func() tea.Msg {
		views, err := a.views.ListViews(context.Background())
		return savedViewsMsg{views: views, err: err}
	}
}

func (a *App) saveViewCmd(name string) tea.Cmd {
	location := a.store.Location().String()
	return func() tea.Msg {
		_, err := a.views.SaveView(context.Background(), name, location)
		return viewSavedMsg{name: name, err: err}
	}
}

func (a *App) deleteViewCmd(id int64) tea.Cmd {
	return func() tea.Msg {
		if err := a.views.DeleteView(context.Background(), id); err != nil {
			return savedViewsMsg{err: err}
		}
		views, err := a.views.ListViews(context.Background())
		return savedViewsMsg{views: views, err: err}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.tx.spin, cmd = a.tx.spin.Update(msg)
		return a, cmd

	case listFetchedMsg:
		a.list.Complete(msg.gen, msg.result, msg.err)
		a.clampCursor()
		return a, nil

	case dashboardFetchedMsg:
		a.dash.Complete(msg.gen, msg.result, msg.err)
		return a, nil

	case refDataMsg:
		if msg.accounts != nil {
			a.accounts = msg.accounts
		}
		if msg.years != nil {
			a.years = msg.years
		}
		return a, nil

	case categoryCommittedMsg:
		// A failed commit surfaces nowhere here: the row keeps its
		// confirmed state and the editor already logged the failure.
		if msg.confirmed {
			a.status = "category updated"
		}
		return a, nil

	case txDetailMsg:
		if msg.err != nil {
			a.status = "detail: " + msg.err.Error()
			return a, nil
		}
		tx := msg.tx
		a.tx.detail = &tx
		return a, nil

	case categorizeDoneMsg:
		if msg.err != nil {
			a.status = "categorize failed: " + msg.err.Error()
		} else {
			a.status = core.FormatCount(msg.n) + " transactions categorized"
		}
		return a, a.fetchListCmd()

	case importDoneMsg:
		return a.updateImportDone(msg)

	case savedViewsMsg:
		a.saved.views = msg.views
		if msg.err != nil {
			a.status = "saved views: " + msg.err.Error()
		}
		if a.saved.cursor >= len(a.saved.views) {
			a.saved.cursor = max(0, len(a.saved.views)-1)
		}
		return a, nil

	case viewSavedMsg:
		if msg.err != nil {
			a.status = "save failed: " + msg.err.Error()
		} else {
			a.status = "view saved as " + msg.name
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKey(msg)
	}

	return a, nil
}

func (a *App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Text inputs swallow everything except their terminators.
	if a.tx.searching || a.tx.saving || (a.screen == screenImport && a.imp.input.Focused()) {
		return a.updateTextEntry(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "1":
		return a, a.navigate(a.locationFor(querystate.PathTransactions))
	case "2":
		return a, a.navigate(a.locationFor(querystate.PathDashboard))
	case "3":
		return a, a.navigate(a.locationFor(querystate.PathImport))
	case "v":
		a.screen = screenViews
		return a, a.loadViewsCmd()
	}

	switch a.screen {
	case screenTransactions:
		return a.updateTransactions(msg)
	case screenDashboard:
		return a.updateDashboard(msg)
	case screenImport:
		return a.updateImport(msg)
	case screenViews:
		return a.updateViews(msg)
	}
	return a, nil
}

// locationFor switches path while keeping only the query keys the
// target view understands, mirroring the original per-page parameter
// sets.
func (a *App) locationFor(path string) querystate.Location {
	current := a.store.Location()
	next := querystate.NewLocation(path)
	switch path {
	case querystate.PathDashboard:
		if account := current.Query.Get(querystate.KeyAccount); account != "" {
			next.Query.Set(querystate.KeyAccount, account)
		}
	case querystate.PathTransactions:
		if account := current.Query.Get(querystate.KeyAccount); account != "" {
			next.Query.Set(querystate.KeyAccount, account)
		}
	}
	return next
}

func (a *App) View() string {
	var body string
	switch a.screen {
	case screenTransactions:
		body = a.viewTransactions()
	case screenDashboard:
		body = a.viewDashboard()
	case screenImport:
		body = a.viewImport()
	case screenViews:
		body = a.viewSavedViews()
	}

	address := addressStyle.Render(a.store.Location().String())
	statusLine := ""
	if a.status != "" {
		statusLine = statusStyle.Render(a.status)
	}
	return lipgloss.JoinVertical(lipgloss.Left, address, body, statusLine)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
