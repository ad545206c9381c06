package phone

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Notes   key.Binding
	Socials key.Binding
	Events  key.Binding
	Prev    key.Binding
	Next    key.Binding
	Open    key.Binding
	Link    key.Binding
	Back    key.Binding
	Reset   key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Notes:   key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "notes")),
		Socials: key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "socials")),
		Events:  key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "events")),
		Prev:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "previous")),
		Next:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next")),
		Open:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Link:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next link")),
		Back:    key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back")),
		Reset:   key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "forget what i've seen")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.Back, k.Prev, k.Next, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Notes, k.Socials, k.Events, k.Open, k.Back},
		{k.Prev, k.Next, k.Link, k.Reset, k.Help, k.Quit},
	}
}
