package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"mealweek/internal/adapters/tui/styles"
	"mealweek/internal/drag"
	"mealweek/internal/ordering"
)

const minColumnWidth = 14

// View implements tea.Model.
func (a *App) View() string {
	if a.form != nil {
		return styles.App.Render(a.form.view())
	}
	var b strings.Builder
	first, last := a.week.Days[0].Date, a.week.Days[len(a.week.Days)-1].Date
	b.WriteString(styles.Title.Render(fmt.Sprintf("Haftalık Plan  %s – %s", first, last)))
	b.WriteString("\n")
	b.WriteString(a.renderBoard())
	b.WriteString("\n")
	b.WriteString(a.renderLibrary())
	b.WriteString("\n")
	b.WriteString(a.renderStatus())
	return styles.App.Render(b.String())
}

func (a *App) columnWidth() int {
	w := (a.width - 4) / len(a.week.Days)
	if w < minColumnWidth {
		return minColumnWidth
	}
	return w
}

func (a *App) renderBoard() string {
	width := a.columnWidth()
	cols := make([]string, 0, len(a.week.Days))
	for i, d := range a.week.Days {
		header := styles.DayHeader.Render(d.Label)
		if a.week.IsToday(d.Date) {
			header = styles.DayToday.Render(d.Label + " •")
		}
		lines := []string{header, styles.MutedText.Render(d.Date[5:])}
		for j, m := range d.Meals {
			line := styles.TypeBadge(m.Type) + " " + truncate(ordering.Capitalize(m.Name), width-6)
			if a.focus == paneBoard && i == a.day && j == a.row {
				line = styles.ItemSelected.Render(line)
			}
			lines = append(lines, line)
		}
		if len(d.Meals) == 0 {
			lines = append(lines, styles.MutedText.Render("—"))
		}
		style := styles.DayColumn
		if a.focus == paneBoard && i == a.day {
			style = styles.DayFocused
		}
		cols = append(cols, style.Width(width-2).Render(strings.Join(lines, "\n")))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func (a *App) renderLibrary() string {
	var b strings.Builder
	title := "Tarifler"
	if a.typeFilter != nil {
		title += " · " + a.typeFilter.Label()
	}
	if q := a.search.Value(); q != "" || a.searching {
		title += " · " + a.search.View()
	}
	if a.focus == paneLibrary {
		b.WriteString(styles.DayToday.Render(title))
	} else {
		b.WriteString(styles.DayHeader.Render(title))
	}
	b.WriteString("\n")
	if len(a.recipes) == 0 {
		b.WriteString(styles.MutedText.Render("No recipes."))
		return b.String()
	}
	for i, r := range a.recipes {
		line := styles.TypeBadge(r.Type) + " " + ordering.Capitalize(r.Name)
		if r.Favorite {
			line += " " + styles.Favorite.String()
		}
		if a.focus == paneLibrary && i == a.libRow {
			line = styles.ItemSelected.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (a *App) renderStatus() string {
	var parts []string
	if a.session.State == drag.StateDragging {
		carried := styles.ItemCarried.Render(a.session.Payload.Meal.Name)
		parts = append(parts, styles.StatusKey.Render(strings.ToUpper(a.session.Mode().String()))+carried)
		parts = append(parts, helpLine(Keys.Copy, Keys.Drop, Keys.Cancel))
	} else {
		parts = append(parts, helpLine(Keys.Pick, Keys.Add, Keys.Delete, Keys.Favorite, Keys.Yank, Keys.Pane, Keys.Search, Keys.Quit))
	}
	if a.message != "" {
		if a.messageErr {
			parts = append(parts, styles.ErrorMsg.Render(a.message))
		} else {
			parts = append(parts, styles.Success.Render(a.message))
		}
	}
	return strings.Join(parts, "\n")
}

func helpLine(bindings ...key.Binding) string {
	out := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		out = append(out, styles.HelpKey.Render(h.Key)+" "+styles.HelpDesc.Render(h.Desc))
	}
	return strings.Join(out, styles.HelpSeparator.String())
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n < 1 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
