package config

// Keybindings maps reader actions to key lists, one section per screen.
// Any action left empty in the config file keeps its default keys.
type Keybindings struct {
	Entries EntriesKeys `yaml:"entries"`
	Entry   EntryKeys   `yaml:"entry"`
	Feeds   FeedsKeys   `yaml:"feeds"`
}

// EntriesKeys covers the main entry-list screen
type EntriesKeys struct {
	Down       []string `yaml:"down"`
	Up         []string `yaml:"up"`
	Open       []string `yaml:"open"`
	ToggleRead []string `yaml:"toggle_read"`
	HideRead   []string `yaml:"hide_read"`
	Refresh    []string `yaml:"refresh"`
	ShowFeeds  []string `yaml:"show_feeds"`
	Quit       []string `yaml:"quit"`
}

// EntryKeys covers the single-entry screen
type EntryKeys struct {
	Open       []string `yaml:"open"`
	ToggleRead []string `yaml:"toggle_read"`
	Back       []string `yaml:"back"`
}

// FeedsKeys covers the feed-list screen
type FeedsKeys struct {
	Down   []string `yaml:"down"`
	Up     []string `yaml:"up"`
	Remove []string `yaml:"remove"`
	Back   []string `yaml:"back"`
}

func (k *Keybindings) setDefaults() {
	def := func(keys *[]string, defaults ...string) {
		if len(*keys) == 0 {
			*keys = defaults
		}
	}

	def(&k.Entries.Down, "j", "down")
	def(&k.Entries.Up, "k", "up")
	def(&k.Entries.Open, "o", "enter")
	def(&k.Entries.ToggleRead, "m")
	def(&k.Entries.HideRead, "t")
	def(&k.Entries.Refresh, "r")
	def(&k.Entries.ShowFeeds, "f")
	def(&k.Entries.Quit, "q", "ctrl+c")

	def(&k.Entry.Open, "o")
	def(&k.Entry.ToggleRead, "m")
	def(&k.Entry.Back, "q", "esc")

	def(&k.Feeds.Down, "j", "down")
	def(&k.Feeds.Up, "k", "up")
	def(&k.Feeds.Remove, "d")
	def(&k.Feeds.Back, "q", "esc")
}
