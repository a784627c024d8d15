package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keypad bindings with built-in help text. Digits and
// operators typed directly are resolved through calc.ParseKey and are not
// listed here.
type KeyMap struct {
	Quit       key.Binding
	ForceQuit  key.Binding
	Help       key.Binding
	Up         key.Binding
	Down       key.Binding
	Left       key.Binding
	Right      key.Binding
	Press      key.Binding
	Equals     key.Binding
	Clear      key.Binding
	SignToggle key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "force quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "right"),
		),
		Press: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "press focused"),
		),
		Equals: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter/=", "equals"),
		),
		Clear: key.NewBinding(
			key.WithKeys("esc", "delete", "c"),
			key.WithHelp("esc/c", "all clear"),
		),
		SignToggle: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "+/-"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Equals, k.Clear, k.SignToggle, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Press},
		{k.Equals, k.Clear, k.SignToggle},
		{k.Help, k.Quit, k.ForceQuit},
	}
}
