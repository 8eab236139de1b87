package ui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/umputun/junefeed/pkg/config"
)

// keymap holds the resolved bindings for every screen
type keymap struct {
	entries entriesKeymap
	entry   entryKeymap
	feeds   feedsKeymap
}

type entriesKeymap struct {
	Down       key.Binding
	Up         key.Binding
	Open       key.Binding
	ToggleRead key.Binding
	HideRead   key.Binding
	Refresh    key.Binding
	ShowFeeds  key.Binding
	Quit       key.Binding
}

type entryKeymap struct {
	Open       key.Binding
	ToggleRead key.Binding
	Back       key.Binding
}

type feedsKeymap struct {
	Down   key.Binding
	Up     key.Binding
	Remove key.Binding
	Back   key.Binding
}

// newKeymap resolves config keybindings into bubbles bindings
func newKeymap(kb config.Keybindings) keymap {
	bind := func(keys []string, help string) key.Binding {
		if len(keys) == 0 {
			return key.NewBinding(key.WithDisabled())
		}
		return key.NewBinding(key.WithKeys(keys...), key.WithHelp(keys[0], help))
	}

	return keymap{
		entries: entriesKeymap{
			Down:       bind(kb.Entries.Down, "down"),
			Up:         bind(kb.Entries.Up, "up"),
			Open:       bind(kb.Entries.Open, "open"),
			ToggleRead: bind(kb.Entries.ToggleRead, "read/unread"),
			HideRead:   bind(kb.Entries.HideRead, "toggle read items"),
			Refresh:    bind(kb.Entries.Refresh, "refresh"),
			ShowFeeds:  bind(kb.Entries.ShowFeeds, "feeds"),
			Quit:       bind(kb.Entries.Quit, "quit"),
		},
		entry: entryKeymap{
			Open:       bind(kb.Entry.Open, "open in browser"),
			ToggleRead: bind(kb.Entry.ToggleRead, "read/unread"),
			Back:       bind(kb.Entry.Back, "back"),
		},
		feeds: feedsKeymap{
			Down:   bind(kb.Feeds.Down, "down"),
			Up:     bind(kb.Feeds.Up, "up"),
			Remove: bind(kb.Feeds.Remove, "remove feed"),
			Back:   bind(kb.Feeds.Back, "back"),
		},
	}
}
