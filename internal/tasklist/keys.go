package tasklist

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Add       key.Binding
	AddAlt    key.Binding
	Focus     key.Binding
	Blur      key.Binding
	Up        key.Binding
	Down      key.Binding
	Toggle    key.Binding
	Delete    key.Binding
	Reload    key.Binding
	Edit      key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Add:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "add")),
		AddAlt:    key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "add")),
		Focus:     key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "switch focus")),
		Blur:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "to list")),
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle:    key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "toggle")),
		Delete:    key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
		Reload:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Edit:      key.NewBinding(key.WithKeys("a", "i"), key.WithHelp("a", "new task")),
		Quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		ForceQuit: key.NewBinding(key.WithKeys("ctrl+c")),
	}
}

// helpKeys adapts a fixed binding set to help.KeyMap.
type helpKeys []key.Binding

func (h helpKeys) ShortHelp() []key.Binding  { return h }
func (h helpKeys) FullHelp() [][]key.Binding { return [][]key.Binding{h} }

func (k keyMap) inputHelp() helpKeys {
	return helpKeys{k.Add, k.Blur, k.Focus}
}

func (k keyMap) listHelp() helpKeys {
	return helpKeys{k.Up, k.Down, k.Toggle, k.Delete, k.Edit, k.Reload, k.Quit}
}
