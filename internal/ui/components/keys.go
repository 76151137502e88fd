package components

import "charm.land/bubbles/v2/key"

// Shared bindings for list-like components.
var (
	keyUp     = key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "cima"))
	keyDown   = key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "baixo"))
	keyChoose = key.NewBinding(key.WithKeys("enter", "space"), key.WithHelp("enter", "escolher"))
)
