package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"grosz/internal/querystate"
	"grosz/internal/storage"
)

type savedViewsState struct {
	views  []storage.SavedView
	cursor int
}

func (a *App) updateViews(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if a.saved.cursor < len(a.saved.views)-1 {
			a.saved.cursor++
		}
	case "k", "up":
		if a.saved.cursor > 0 {
			a.saved.cursor--
		}
	case "enter":
		if a.saved.cursor < len(a.saved.views) {
			view := a.saved.views[a.saved.cursor]
			loc, err := querystate.Parse(view.Location)
			if err != nil {
				a.status = "broken saved view: " + err.Error()
				return a, nil
			}
			return a, a.navigate(loc)
		}
	case "d":
		if a.saved.cursor < len(a.saved.views) {
			return a, a.deleteViewCmd(a.saved.views[a.saved.cursor].ID)
		}
	case "esc":
		return a, a.navigate(a.store.Location())
	}
	return a, nil
}

func (a *App) viewSavedViews() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Saved views"))
	b.WriteString("\n\n")

	if len(a.saved.views) == 0 {
		b.WriteString(mutedStyle.Render("No saved views yet. Press s on the transaction list to save the current filters."))
		b.WriteString("\n")
	} else {
		for i, view := range a.saved.views {
			line := fmt.Sprintf("%-24s %s", truncate(view.Name, 24), mutedStyle.Render(view.Location))
			if i == a.saved.cursor {
				line = selectedStyle.Render("> "+truncate(view.Name, 24)) + " " + mutedStyle.Render(view.Location)
			} else {
				line = "  " + line
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("j/k move · enter open · d delete · esc back · q quit"))
	return b.String()
}
