package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	Enter      key.Binding
	Quit       key.Binding
	NextSug    key.Binding
	RemoveRow  key.Binding
	SetHome    key.Binding
	SortOffset key.Binding
	SortName   key.Binding
	PrevDay    key.Binding
	NextDay    key.Binding
	Today      key.Binding
	CopyLink   key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "ctrl+k"),
		key.WithHelp("up/C-k", "row up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "ctrl+j"),
		key.WithHelp("dn/C-j", "row down"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "add zone"),
	),
	Quit: key.NewBinding(
		key.WithKeys("esc", "ctrl+c"),
		key.WithHelp("esc", "quit"),
	),
	NextSug: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next suggestion"),
	),
	RemoveRow: key.NewBinding(
		key.WithKeys("ctrl+d"),
		key.WithHelp("C-d", "remove row"),
	),
	SetHome: key.NewBinding(
		key.WithKeys("ctrl+g"),
		key.WithHelp("C-g", "set home"),
	),
	SortOffset: key.NewBinding(
		key.WithKeys("ctrl+o"),
		key.WithHelp("C-o", "sort by offset"),
	),
	SortName: key.NewBinding(
		key.WithKeys("ctrl+n"),
		key.WithHelp("C-n", "sort by name"),
	),
	PrevDay: key.NewBinding(
		key.WithKeys("left"),
		key.WithHelp("left", "previous day"),
	),
	NextDay: key.NewBinding(
		key.WithKeys("right"),
		key.WithHelp("right", "next day"),
	),
	Today: key.NewBinding(
		key.WithKeys("ctrl+t"),
		key.WithHelp("C-t", "today"),
	),
	CopyLink: key.NewBinding(
		key.WithKeys("ctrl+y"),
		key.WithHelp("C-y", "copy link token"),
	),
}
