package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Pause  key.Binding
	Louder key.Binding
	Softer key.Binding
	Hype   key.Binding
	Calm   key.Binding
	Next   key.Binding
	Role   key.Binding
	Stop   key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Pause:  key.NewBinding(key.WithKeys(" ", "p"), key.WithHelp("space", "pause")),
		Louder: key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+/-", "intensity")),
		Softer: key.NewBinding(key.WithKeys("-", "_")),
		Hype:   key.NewBinding(key.WithKeys("M"), key.WithHelp("M/m", "crowd mood")),
		Calm:   key.NewBinding(key.WithKeys("m")),
		Next:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next song")),
		Role:   key.NewBinding(key.WithKeys("tab", "r"), key.WithHelp("tab", "pov")),
		Stop:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stop show")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.Louder, k.Hype, k.Next, k.Role, k.Stop, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Pause, k.Next, k.Stop},
		{k.Louder, k.Hype, k.Role},
		{k.Help, k.Quit},
	}
}
