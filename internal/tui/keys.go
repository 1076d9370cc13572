package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Active   key.Binding
	Done     key.Binding
	Pending  key.Binding
	Adjusted key.Binding
	Blocked  key.Binding
	Verify   key.Binding
	Log      key.Binding
	Reload   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("↓/j", "down")),
		Active:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "active")),
		Done:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "done")),
		Pending:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pending")),
		Adjusted: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "adjust")),
		Blocked:  key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "block")),
		Verify:   key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "verify pass")),
		Log:      key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "log")),
		Reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Active, k.Done, k.Blocked, k.Log, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Pending, k.Active, k.Done},
		{k.Adjusted, k.Blocked, k.Verify},
		{k.Log, k.Reload, k.Help, k.Quit},
	}
}
