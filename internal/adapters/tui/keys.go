package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the board and library key bindings.
type KeyMap struct {
	Left     key.Binding
	Right    key.Binding
	Up       key.Binding
	Down     key.Binding
	PrevWeek key.Binding
	NextWeek key.Binding
	Today    key.Binding
	Pane     key.Binding
	Pick     key.Binding
	Copy     key.Binding
	Drop     key.Binding
	Cancel   key.Binding
	Add      key.Binding
	Delete   key.Binding
	Favorite key.Binding
	Filter   key.Binding
	Search   key.Binding
	Yank     key.Binding
	Quit     key.Binding
}

// Keys are the default bindings.
var Keys = KeyMap{
	Left:     key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "prev day")),
	Right:    key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "next day")),
	Up:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
	Down:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
	PrevWeek: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev week")),
	NextWeek: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next week")),
	Today:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "this week")),
	Pane:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "board/library")),
	Pick:     key.NewBinding(key.WithKeys("p", " "), key.WithHelp("p", "pick up")),
	Copy:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "toggle copy")),
	Drop:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "drop")),
	Cancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	Add:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
	Delete:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Favorite: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "favorite")),
	Filter:   key.NewBinding(key.WithKeys("T"), key.WithHelp("T", "type filter")),
	Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Yank:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy recipe")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}
