package explore

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	details     key.Binding
	connections key.Binding
	bridges     key.Binding
	notes       key.Binding
	hide        key.Binding
	showHidden  key.Binding
	favorite    key.Binding
	editTags    key.Binding
	direction   key.Binding
	scrollDown  key.Binding
	scrollUp    key.Binding
	submit      key.Binding
	cancel      key.Binding
	quit        key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		details: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "details"),
		),
		connections: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "connections"),
		),
		bridges: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "bridges"),
		),
		notes: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "notes"),
		),
		hide: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "hide/unhide"),
		),
		showHidden: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "show hidden"),
		),
		favorite: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "favorite"),
		),
		editTags: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "edit tags"),
		),
		direction: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "layout direction"),
		),
		scrollDown: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "scroll panels"),
		),
		scrollUp: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("ctrl+u", "scroll panels up"),
		),
		submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("↵", "save"),
		),
		cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) shortHelp() []key.Binding {
	return []key.Binding{k.details, k.connections, k.bridges, k.notes, k.hide, k.favorite, k.editTags}
}

func (k keyMap) fullHelp() []key.Binding {
	return []key.Binding{
		k.details, k.connections, k.bridges, k.notes,
		k.hide, k.showHidden, k.favorite, k.editTags,
		k.direction, k.scrollDown, k.scrollUp,
	}
}
