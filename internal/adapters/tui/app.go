// Package tui is the terminal week board: seven day columns, a recipe
// library, and keyboard drag and drop between them.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"mealweek/internal/core"
	"mealweek/internal/drag"
	"mealweek/internal/ordering"
	"mealweek/pkg/domain"
)

type pane int

const (
	paneBoard pane = iota
	paneLibrary
)

// App is the main TUI model.
type App struct {
	svc *core.Service
	ctx context.Context

	anchor  time.Time
	week    core.WeekView
	recipes []domain.Recipe

	focus  pane
	day    int
	row    int
	libRow int

	session    drag.Session
	dropping   bool
	form       *addForm
	search     textinput.Model
	searching  bool
	typeFilter *domain.MealType

	width      int
	height     int
	message    string
	messageErr bool

	copyText func(string) error
}

// NewApp creates the board for the week containing the service clock's today.
func NewApp(ctx context.Context, svc *core.Service) *App {
	search := textinput.New()
	search.Placeholder = "ara…"
	a := &App{
		svc:      svc,
		ctx:      ctx,
		anchor:   svc.Now(),
		search:   search,
		copyText: clipboard.WriteAll,
	}
	a.day = int(svc.Now().Weekday()+6) % ordering.DaysPerWeek
	a.reload()
	return a
}

type doneMsg struct {
	text    string
	err     error
	session *drag.Session
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd { return nil }

func (a *App) reload() {
	a.week = a.svc.Week(a.anchor)
	a.recipes = a.svc.FilteredRecipes(a.typeFilter, a.search.Value())
	a.clamp()
}

func (a *App) clamp() {
	meals := a.week.Days[a.day].Meals
	if a.row >= len(meals) {
		a.row = len(meals) - 1
	}
	if a.row < 0 {
		a.row = 0
	}
	if a.libRow >= len(a.recipes) {
		a.libRow = len(a.recipes) - 1
	}
	if a.libRow < 0 {
		a.libRow = 0
	}
}

func (a *App) selectedMeal() (domain.Meal, bool) {
	meals := a.week.Days[a.day].Meals
	if a.row < 0 || a.row >= len(meals) {
		return domain.Meal{}, false
	}
	return meals[a.row], true
}

func (a *App) selectedRecipe() (domain.Recipe, bool) {
	if a.libRow < 0 || a.libRow >= len(a.recipes) {
		return domain.Recipe{}, false
	}
	return a.recipes[a.libRow], true
}

func (a *App) setMessage(text string, isErr bool) {
	a.message = text
	a.messageErr = isErr
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		return a, nil
	case doneMsg:
		if msg.session != nil {
			a.session = *msg.session
			a.dropping = false
		}
		if msg.err != nil {
			a.setMessage(msg.err.Error(), true)
		} else {
			a.setMessage(msg.text, false)
		}
		a.reload()
		return a, nil
	case tea.KeyMsg:
		if a.form != nil {
			return a, a.updateForm(msg)
		}
		if a.searching {
			return a, a.updateSearch(msg)
		}
		return a.handleKey(msg)
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	dragging := a.session.State == drag.StateDragging
	switch {
	case key.Matches(msg, Keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, Keys.Left):
		a.focus = paneBoard
		a.day = (a.day + ordering.DaysPerWeek - 1) % ordering.DaysPerWeek
		a.clamp()
	case key.Matches(msg, Keys.Right):
		a.focus = paneBoard
		a.day = (a.day + 1) % ordering.DaysPerWeek
		a.clamp()
	case key.Matches(msg, Keys.Up):
		if a.focus == paneLibrary {
			a.libRow--
		} else {
			a.row--
		}
		a.clamp()
	case key.Matches(msg, Keys.Down):
		if a.focus == paneLibrary {
			a.libRow++
		} else {
			a.row++
		}
		a.clamp()
	case key.Matches(msg, Keys.PrevWeek):
		a.anchor = a.week.Prev()
		a.reload()
	case key.Matches(msg, Keys.NextWeek):
		a.anchor = a.week.Next()
		a.reload()
	case key.Matches(msg, Keys.Today):
		a.anchor = a.svc.Now()
		a.reload()
	case key.Matches(msg, Keys.Pane):
		if a.focus == paneBoard {
			a.focus = paneLibrary
		} else {
			a.focus = paneBoard
		}
	case key.Matches(msg, Keys.Cancel):
		if dragging {
			a.session, _ = drag.Cancel(a.session)
			a.setMessage("drag cancelled", false)
		}
	case key.Matches(msg, Keys.Copy):
		if dragging {
			a.session, _ = drag.Over(a.session, !a.session.Modifier)
		}
	case key.Matches(msg, Keys.Pick):
		return a, a.pick()
	case key.Matches(msg, Keys.Drop):
		if dragging {
			return a, a.drop()
		}
	case dragging:
		// Editing keys are inert while carrying a payload.
	case key.Matches(msg, Keys.Add):
		date := ""
		if a.focus == paneBoard {
			date = a.week.Days[a.day].Date
		}
		a.form = newAddForm(date)
		return a, textinput.Blink
	case key.Matches(msg, Keys.Delete):
		return a, a.deleteSelected()
	case key.Matches(msg, Keys.Favorite):
		if r, ok := a.selectedRecipe(); ok && a.focus == paneLibrary {
			return a, a.mutate(func(ctx context.Context) (string, error) {
				r, err := a.svc.ToggleFavorite(ctx, r.ID)
				return fmt.Sprintf("%s favorite: %t", r.Name, r.Favorite), err
			})
		}
	case key.Matches(msg, Keys.Filter):
		a.cycleFilter()
		a.reload()
	case key.Matches(msg, Keys.Search):
		a.focus = paneLibrary
		a.searching = true
		a.search.Focus()
		return a, textinput.Blink
	case key.Matches(msg, Keys.Yank):
		a.yank()
	}
	return a, nil
}

func (a *App) pick() tea.Cmd {
	if a.dropping {
		a.setMessage("drop in progress", true)
		return nil
	}
	var payload drag.Payload
	var err error
	if a.focus == paneLibrary {
		r, ok := a.selectedRecipe()
		if !ok {
			return nil
		}
		payload, err = a.svc.RecipePayload(r.ID)
	} else {
		m, ok := a.selectedMeal()
		if !ok {
			return nil
		}
		payload, err = a.svc.MealPayload(m.ID)
	}
	if err == nil {
		a.session, err = drag.Start(a.session, payload, false)
	}
	if err != nil {
		a.setMessage(err.Error(), true)
		return nil
	}
	a.setMessage("carrying "+payload.Meal.Name, false)
	return nil
}

func (a *App) drop() tea.Cmd {
	target := drag.DayTarget(a.week.Days[a.day].Date)
	if a.focus == paneLibrary {
		target = drag.LibraryTarget()
	}
	session := a.session
	mode := session.Mode()
	// The drop is applied asynchronously; release the carried payload now so
	// a repeated drop key cannot apply it twice.
	a.session = drag.Session{State: drag.StateIdle, Last: session.Last}
	a.dropping = true
	return func() tea.Msg {
		next, m, report, err := a.svc.Drop(a.ctx, session, target)
		if err != nil {
			return doneMsg{err: err, session: &next}
		}
		text := "nothing to do"
		switch {
		case target.Kind == drag.TargetLibrary && m.ID != "":
			text = "removed " + m.Name
		case m.ID != "":
			text = fmt.Sprintf("%s %s → %s", mode, m.Name, m.Date)
		}
		if err := report.Err(); err != nil {
			return doneMsg{err: fmt.Errorf("%s; %w", text, err), session: &next}
		}
		return doneMsg{text: text, session: &next}
	}
}

func (a *App) deleteSelected() tea.Cmd {
	if a.focus == paneLibrary {
		r, ok := a.selectedRecipe()
		if !ok {
			return nil
		}
		return a.mutate(func(ctx context.Context) (string, error) {
			return "deleted recipe " + r.Name, a.svc.DeleteRecipe(ctx, r.ID)
		})
	}
	m, ok := a.selectedMeal()
	if !ok {
		return nil
	}
	return a.mutate(func(ctx context.Context) (string, error) {
		return "deleted " + m.Name, a.svc.DeleteMeal(ctx, m.ID)
	})
}

func (a *App) mutate(fn func(context.Context) (string, error)) tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		text, err := fn(ctx)
		return doneMsg{text: text, err: err}
	}
}

func (a *App) cycleFilter() {
	types := domain.AllMealTypes()
	if a.typeFilter == nil {
		a.typeFilter = &types[0]
		return
	}
	for i, t := range types {
		if t == *a.typeFilter {
			if i+1 < len(types) {
				a.typeFilter = &types[i+1]
			} else {
				a.typeFilter = nil
			}
			return
		}
	}
	a.typeFilter = nil
}

func (a *App) yank() {
	var text string
	if a.focus == paneLibrary {
		if r, ok := a.selectedRecipe(); ok {
			text = r.Recipe
		}
	} else if m, ok := a.selectedMeal(); ok {
		text = m.Recipe
	}
	if text == "" {
		a.setMessage(ordering.RecipePlaceholder, true)
		return
	}
	if err := a.copyText(text); err != nil {
		a.setMessage("clipboard: "+err.Error(), true)
		return
	}
	a.setMessage("recipe copied", false)
}

func (a *App) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter, tea.KeyEsc:
		a.searching = false
		a.search.Blur()
		if msg.Type == tea.KeyEsc {
			a.search.SetValue("")
		}
		a.reload()
		return nil
	}
	var cmd tea.Cmd
	a.search, cmd = a.search.Update(msg)
	a.reload()
	return cmd
}

func (a *App) updateForm(msg tea.KeyMsg) tea.Cmd {
	f := a.form
	switch msg.Type {
	case tea.KeyEsc:
		a.form = nil
		return nil
	case tea.KeyTab:
		f.next()
		return nil
	case tea.KeyEnter:
		a.form = nil
		name, typ := f.value(fieldName), f.value(fieldType)
		if f.date == "" {
			return a.mutate(func(ctx context.Context) (string, error) {
				r, err := a.svc.CreateRecipe(ctx, core.RecipeInput{Name: name, Type: typ})
				return "added recipe " + r.Name, err
			})
		}
		return a.mutate(func(ctx context.Context) (string, error) {
			m, report, err := a.svc.CreateMeal(ctx, core.MealInput{Name: name, Type: typ, Date: f.date})
			if err != nil {
				return "", err
			}
			text := fmt.Sprintf("added %s on %s", m.Name, m.Date)
			if n := len(report.CreatedRecipes); n > 0 {
				text += fmt.Sprintf(" (+%d recipe)", n)
			}
			return text, report.Err()
		})
	}
	return f.update(msg)
}

// Run starts the board in the alternate screen and blocks until quit.
func Run(ctx context.Context, svc *core.Service, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	_, err := tea.NewProgram(NewApp(ctx, svc), opts...).Run()
	return err
}
