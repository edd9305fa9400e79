package tui

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"grosz/internal/core"
	"grosz/internal/querystate"
	"grosz/internal/services"
)

func testApp(loc querystate.Location) *App {
	return &App{
		store: querystate.NewStore(loc),
		accounts: []core.Account{
			{ID: 1, Name: "Alior"},
			{ID: 2, Name: "Revolut"},
		},
		years: []string{"2025", "2024"},
	}
}

func TestNextAccount_CyclesThroughAllAndBack(t *testing.T) {
	loc := querystate.NewLocation(querystate.PathTransactions)
	a := testApp(loc)

	assert.Equal(t, "Alior", a.nextAccount())

	loc.Query.Set(querystate.KeyAccount, "Alior")
	a.store.Navigate(loc)
	assert.Equal(t, "Revolut", a.nextAccount())

	loc.Query.Set(querystate.KeyAccount, "Revolut")
	a.store.Navigate(loc)
	assert.Equal(t, "", a.nextAccount(), "last account cycles back to all")
}

func TestNextYear_CyclesNewestFirst(t *testing.T) {
	loc := querystate.NewLocation(querystate.PathDashboard)
	a := testApp(loc)

	assert.Equal(t, "2025", a.nextYear())

	loc.Query.Set(querystate.KeyYear, "2025")
	a.store.Navigate(loc)
	assert.Equal(t, "2024", a.nextYear())

	loc.Query.Set(querystate.KeyYear, "2024")
	a.store.Navigate(loc)
	assert.Equal(t, "", a.nextYear())
}

func TestNextCategoryFilter_UnknownCurrentResetsToAll(t *testing.T) {
	loc := querystate.NewLocation(querystate.PathTransactions)
	loc.Query.Set(querystate.KeyCategory, "999")
	a := testApp(loc)

	state := services.ListState{
		Categories: []core.Category{{ID: 1, Name: "Groceries"}, {ID: 2, Name: "Rent"}},
	}
	assert.Equal(t, "", a.nextCategoryFilter(state))
}

func TestCategoryLabel_DegradesWithoutLookup(t *testing.T) {
	a := testApp(querystate.NewLocation(querystate.PathTransactions))
	id := int64(7)

	row := core.Transaction{CategoryID: nil}
	assert.Equal(t, core.UncategorizedLabel, a.categoryLabel(services.ListState{}, row))

	row.CategoryID = &id
	assert.Equal(t, "?", a.categoryLabel(services.ListState{}, row),
		"nil lookup map renders unresolved, not a crash")

	state := services.ListState{CategoryByID: map[int64]core.Category{7: {ID: 7, Name: "Transport"}}}
	assert.Equal(t, "Transport", a.categoryLabel(state, row))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "exactly-te", truncate("exactly-te", 10))
	assert.Equal(t, "way too l…", truncate("way too long here", 10))
	assert.Equal(t, "żółć", truncate("żółć", 4), "runes, not bytes")
}

func TestBar_ScalesAgainstPeak(t *testing.T) {
	peak := decimal.NewFromInt(100)

	assert.Len(t, bar(decimal.NewFromInt(100), peak), len("█")*chartBarWidth)
	assert.Len(t, bar(decimal.NewFromInt(50), peak), len("█")*chartBarWidth/2)
	assert.Equal(t, "█", bar(decimal.NewFromInt(1), peak), "tiny values still visible")
	assert.Equal(t, "", bar(decimal.Zero, peak))
	assert.Equal(t, "", bar(decimal.NewFromInt(5), decimal.Zero), "zero peak draws nothing")
}
