package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"grosz/internal/core"
)

// importState holds the upload form plus the terminal state of the last
// attempt. Success and failure are mutually exclusive: starting a new
// upload clears both.
type importState struct {
	input     textinput.Model
	uploading bool
	result    *core.ImportResult
	errMsg    string
}

func newImportState() importState {
	input := textinput.New()
	input.Placeholder = "/path/to/statement.csv"
	input.CharLimit = 256
	input.Width = 60
	return importState{input: input}
}

func (a *App) updateImport(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.imp.input.Focused() {
		switch msg.String() {
		case "enter":
			path := strings.TrimSpace(a.imp.input.Value())
			if path == "" {
				return a, nil
			}
			a.imp.input.Blur()
			a.imp.uploading = true
			a.imp.result = nil
			a.imp.errMsg = ""
			return a, a.importCmd(path)
		case "esc":
			a.imp.input.Blur()
			return a, nil
		}
		var cmd tea.Cmd
		a.imp.input, cmd = a.imp.input.Update(msg)
		return a, cmd
	}

	switch msg.String() {
	case "i", "enter":
		if !a.imp.uploading {
			a.imp.input.Focus()
			return a, textinput.Blink
		}
	case "C":
		a.status = "categorizing..."
		return a, a.categorizeCmd()
	}
	return a, nil
}

func (a *App) updateImportDone(msg importDoneMsg) (tea.Model, tea.Cmd) {
	a.imp.uploading = false
	if msg.err != nil {
		a.imp.result = nil
		a.imp.errMsg = msg.err.Error()
		return a, nil
	}
	result := msg.result
	a.imp.result = &result
	a.imp.errMsg = ""
	// A successful import changes the data behind the list; the next
	// visit must not show the pre-import page.
	return a, a.fetchListCmd()
}

func (a *App) viewImport() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Import bank statement"))
	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Render("The bank format is detected from the file name, so upload the statement as downloaded."))
	b.WriteString("\n\n")
	b.WriteString("file: " + a.imp.input.View())
	b.WriteString("\n\n")

	switch {
	case a.imp.uploading:
		b.WriteString(a.tx.spin.View() + mutedStyle.Render(" Uploading..."))
		b.WriteString("\n")
	case a.imp.errMsg != "":
		b.WriteString(errorStyle.Render("Import failed: " + a.imp.errMsg))
		b.WriteString("\n")
	case a.imp.result != nil:
		r := a.imp.result
		b.WriteString(successStyle.Render("Import complete"))
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("  rows read: %d\n  imported:  %d\n  skipped:   %d\n",
			r.TotalRows, r.Imported, r.Skipped))
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("i edit path · enter upload · C categorize · 1 transactions · 2 dashboard · q quit"))
	return b.String()
}
