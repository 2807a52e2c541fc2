package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"mealweek/internal/adapters/tui/styles"
)

const (
	fieldName = iota
	fieldType
)

// addForm collects a name and a meal type. date is empty for library recipes.
type addForm struct {
	date    string
	fields  [2]textinput.Model
	focused int
}

func newAddForm(date string) *addForm {
	f := &addForm{date: date}
	f.fields[fieldName] = textinput.New()
	f.fields[fieldName].Placeholder = "Mercimek Çorbası"
	f.fields[fieldName].CharLimit = 120
	f.fields[fieldType] = textinput.New()
	f.fields[fieldType].Placeholder = "breakfast | main | snack"
	f.fields[fieldType].SetValue("main")
	f.fields[fieldName].Focus()
	return f
}

func (f *addForm) next() {
	f.fields[f.focused].Blur()
	f.focused = (f.focused + 1) % len(f.fields)
	f.fields[f.focused].Focus()
}

func (f *addForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.fields[f.focused], cmd = f.fields[f.focused].Update(msg)
	return cmd
}

func (f *addForm) value(i int) string {
	return strings.TrimSpace(f.fields[i].Value())
}

func (f *addForm) view() string {
	title := "Yeni tarif"
	if f.date != "" {
		title = "Yeni yemek · " + f.date
	}
	var b strings.Builder
	b.WriteString(styles.Title.Render(title) + "\n")
	for i, label := range []string{"Ad", "Tür"} {
		b.WriteString(styles.InputLabel.Render(label) + "\n")
		style := styles.InputField
		if i == f.focused {
			style = styles.InputFocused
		}
		b.WriteString(style.Render(f.fields[i].View()) + "\n")
	}
	b.WriteString(styles.HelpKey.Render("tab") + " " + styles.HelpDesc.Render("next field") + "  ")
	b.WriteString(styles.HelpKey.Render("enter") + " " + styles.HelpDesc.Render("save") + "  ")
	b.WriteString(styles.HelpKey.Render("esc") + " " + styles.HelpDesc.Render("cancel"))
	return b.String()
}
