package popup

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Next  key.Binding
	Prev  key.Binding
	Run   key.Binding
	Close key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Next: key.NewBinding(
			key.WithKeys("right", "down", "tab"),
			key.WithHelp("→/tab", "next"),
		),
		Prev: key.NewBinding(
			key.WithKeys("left", "up", "shift+tab"),
			key.WithHelp("←/shift+tab", "previous"),
		),
		Run: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "run"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc", "q", "ctrl+c"),
			key.WithHelp("esc/q", "close"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Run, k.Close}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
