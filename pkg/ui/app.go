// Package ui is the terminal layer: a bubbletea program rendering the
// projected item lists and translating keys into the engine's command set
// (mark read, mark unread, remove feed, request sync). It never mutates
// feed state through any other path.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-pkgz/lgr"

	"github.com/umputun/junefeed/pkg/config"
	"github.com/umputun/junefeed/pkg/domain"
)

// Engine runs sync cycles on demand
type Engine interface {
	Sync(ctx context.Context, configs []domain.FeedConfig) ([]domain.SyncResult, error)
}

// History is the mutation surface driven by user commands
type History interface {
	MarkRead(feedName, id string)
	MarkUnread(feedName, id string)
	RemoveFeed(feedName string)
	Save(ctx context.Context) error
}

// Views supplies the ordered item lists to render
type Views interface {
	Unread(feedName string) []domain.StoredItem
	All(feedName string) []domain.StoredItem
}

type screen int

const (
	screenEntries screen = iota
	screenEntry
	screenFeeds
)

// messages
type syncDoneMsg struct {
	results []domain.SyncResult
	err     error
}
type refreshTickMsg struct{}

// Model is the root bubbletea model
type Model struct {
	ctx     context.Context
	cfg     *config.Config
	engine  Engine
	history History
	views   Views
	keys    keymap

	screen     screen
	items      []domain.StoredItem
	cursor     int
	hideRead   bool
	selected   domain.StoredItem
	feedCursor int

	syncing bool
	spin    spinner.Model
	status  string
	width   int
	height  int
}

// NewModel creates the root model. The initial item list comes from the
// store as loaded; a sync starts immediately on Init.
func NewModel(ctx context.Context, cfg *config.Config, engine Engine, history History, views Views) Model {
	spin := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(selectedStyle))
	m := Model{
		ctx:      ctx,
		cfg:      cfg,
		engine:   engine,
		history:  history,
		views:    views,
		keys:     newKeymap(cfg.Keybindings),
		hideRead: true,
		spin:     spin,
		syncing:  true, // Init kicks off the first cycle right away
		height:   24,
		width:    80,
	}
	m.reloadItems()
	return m
}

// Run starts the terminal UI and blocks until the user quits
func Run(ctx context.Context, cfg *config.Config, engine Engine, history History, views Views) error {
	program := tea.NewProgram(NewModel(ctx, cfg, engine, history, views), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("terminal ui: %w", err)
	}
	return nil
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.startSync(), m.scheduleRefresh())
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case spinner.TickMsg:
		if !m.syncing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case refreshTickMsg:
		cmds := []tea.Cmd{m.scheduleRefresh()}
		if !m.syncing {
			m.syncing = true
			cmds = append(cmds, m.startSync())
		}
		return m, tea.Batch(cmds...)

	case syncDoneMsg:
		m.syncing = false
		m.status = m.syncStatus(msg)
		m.reloadItems()
		return m, nil

	case tea.KeyMsg:
		switch m.screen {
		case screenEntry:
			return m.updateEntry(msg)
		case screenFeeds:
			return m.updateFeeds(msg)
		default:
			return m.updateEntries(msg)
		}
	}
	return m, nil
}

func (m Model) updateEntries(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := m.keys.entries
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, keys.Open):
		if item, ok := m.selectedEntry(); ok {
			m.selected = item
			m.history.MarkRead(item.Feed, item.ID)
			m.saveHistory()
			m.screen = screenEntry
		}

	case key.Matches(msg, keys.ToggleRead):
		if item, ok := m.selectedEntry(); ok {
			if item.Read {
				m.history.MarkUnread(item.Feed, item.ID)
			} else {
				m.history.MarkRead(item.Feed, item.ID)
			}
			m.saveHistory()
			m.reloadItems()
		}

	case key.Matches(msg, keys.HideRead):
		m.hideRead = !m.hideRead
		m.cursor = 0
		m.reloadItems()

	case key.Matches(msg, keys.Refresh):
		if !m.syncing {
			m.syncing = true
			return m, m.startSync()
		}

	case key.Matches(msg, keys.ShowFeeds):
		m.feedCursor = 0
		m.screen = screenFeeds
	}
	return m, nil
}

func (m Model) updateEntry(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := m.keys.entry
	switch {
	case key.Matches(msg, keys.Back):
		m.screen = screenEntries
		m.reloadItems()

	case key.Matches(msg, keys.Open):
		openInBrowser(m.selected.Link)

	case key.Matches(msg, keys.ToggleRead):
		if m.selected.Read {
			m.history.MarkUnread(m.selected.Feed, m.selected.ID)
		} else {
			m.history.MarkRead(m.selected.Feed, m.selected.ID)
		}
		m.selected.Read = !m.selected.Read
		m.saveHistory()
	}
	return m, nil
}

func (m Model) updateFeeds(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := m.keys.feeds
	switch {
	case key.Matches(msg, keys.Back):
		m.screen = screenEntries
		m.reloadItems()

	case key.Matches(msg, keys.Down):
		if m.feedCursor < len(m.cfg.Feeds)-1 {
			m.feedCursor++
		}

	case key.Matches(msg, keys.Up):
		if m.feedCursor > 0 {
			m.feedCursor--
		}

	case key.Matches(msg, keys.Remove):
		if m.feedCursor >= len(m.cfg.Feeds) {
			break
		}
		name := m.cfg.Feeds[m.feedCursor].Name
		if err := m.cfg.RemoveFeed(name); err != nil {
			m.status = "remove failed: " + err.Error()
			break
		}
		m.history.RemoveFeed(name)
		m.saveHistory()
		if m.feedCursor >= len(m.cfg.Feeds) && m.feedCursor > 0 {
			m.feedCursor--
		}
		m.status = fmt.Sprintf("removed feed %q", name)
	}
	return m, nil
}

// View implements tea.Model
func (m Model) View() string {
	switch m.screen {
	case screenEntry:
		return m.viewEntry()
	case screenFeeds:
		return m.viewFeeds()
	default:
		return m.viewEntries()
	}
}

func (m Model) viewEntries() string {
	var b strings.Builder

	header := titleStyle.Render("junefeed")
	if m.syncing {
		header += " " + m.spin.View() + statusStyle.Render("refreshing...")
	}
	count := fmt.Sprintf("  %d items", len(m.items))
	if m.hideRead {
		count = fmt.Sprintf("  %d unread", len(m.items))
	}
	b.WriteString(header + mutedStyle.Render(count) + "\n\n")

	if len(m.items) == 0 {
		b.WriteString(mutedStyle.Render("nothing here, add feeds with 'junefeed add' or press r to refresh") + "\n")
	}

	visible := m.visibleRows()
	start, end := m.window(visible)
	for i := start; i < end; i++ {
		item := m.items[i]
		marker := "  "
		if i == m.cursor {
			marker = selectedStyle.Render("> ")
		}

		dot := mutedStyle.Render("  ")
		if !item.Read {
			dot = titleStyle.Render("* ")
		}

		line := marker + dot + feedStyle.Render(fmt.Sprintf("%-12.12s", item.Feed)) + " " + m.renderTitle(item, i == m.cursor)
		b.WriteString(line + "\n")
	}

	b.WriteString("\n" + m.footer())
	return b.String()
}

func (m Model) renderTitle(item domain.StoredItem, cur bool) string {
	title := item.Title
	if title == "" {
		title = item.Link
	}
	if cur {
		return selectedStyle.Render(title)
	}
	if item.Read {
		return mutedStyle.Render(title)
	}
	return textStyle.Render(title)
}

func (m Model) viewEntry() string {
	var b strings.Builder
	item := m.selected

	b.WriteString(titleStyle.Render(item.Title) + "\n")
	b.WriteString(linkStyle.Render(item.Link) + "\n")

	meta := feedStyle.Render(item.Feed)
	if item.Published != nil {
		meta += mutedStyle.Render("  " + item.Published.Local().Format("2006-01-02 15:04"))
	}
	b.WriteString(meta + "\n\n")

	summary := item.Summary
	if summary == "" {
		summary = mutedStyle.Render("no summary available")
	}
	b.WriteString(textStyle.Width(max(20, m.width-2)).Render(summary) + "\n")

	b.WriteString("\n" + statusStyle.Render("o open in browser  m read/unread  q back") + "\n")
	return b.String()
}

func (m Model) viewFeeds() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("feeds") + "\n\n")

	if len(m.cfg.Feeds) == 0 {
		b.WriteString(mutedStyle.Render("no feeds configured") + "\n")
	}

	for i, f := range m.cfg.Feeds {
		marker := "  "
		if i == m.feedCursor {
			marker = selectedStyle.Render("> ")
		}
		b.WriteString(marker + feedStyle.Render(fmt.Sprintf("%-12.12s", f.Name)) + " " + mutedStyle.Render(f.URL) + "\n")
	}

	b.WriteString("\n" + statusStyle.Render("d remove  q back") + "\n")
	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status) + "\n")
	}
	return b.String()
}

func (m Model) footer() string {
	help := statusStyle.Render("j/k move  o open  m read/unread  t toggle read  r refresh  f feeds  q quit")
	if m.status == "" {
		return help + "\n"
	}
	return help + "\n" + statusStyle.Render(m.status) + "\n"
}

// selectedEntry returns the item under the cursor
func (m Model) selectedEntry() (domain.StoredItem, bool) {
	if m.cursor >= 0 && m.cursor < len(m.items) {
		return m.items[m.cursor], true
	}
	return domain.StoredItem{}, false
}

// reloadItems re-derives the visible list from the projector and clamps
// the cursor, positional indices must stay stable between draws
func (m *Model) reloadItems() {
	if m.hideRead {
		m.items = m.views.Unread("")
	} else {
		m.items = m.views.All("")
	}
	if m.cursor >= len(m.items) {
		m.cursor = max(0, len(m.items)-1)
	}
}

// window computes the visible slice bounds, keeping the cursor in view.
// Derived from the cursor alone so the view stays a pure function of
// the model.
func (m Model) window(visible int) (start, end int) {
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end = start + visible
	if end > len(m.items) {
		end = len(m.items)
	}
	return start, end
}

func (m Model) visibleRows() int {
	rows := m.height - 6 // header, blank lines and footer
	if rows < 1 {
		rows = 1
	}
	return rows
}

// startSync returns the sync command; callers flip m.syncing themselves
// since the model is passed by value. The command runs in its own goroutine
// while the feeds screen can mutate the config, so it gets a snapshot of the
// feed list taken here, on the update goroutine.
func (m Model) startSync() tea.Cmd {
	feeds := make([]domain.FeedConfig, len(m.cfg.Feeds))
	copy(feeds, m.cfg.Feeds)
	sync := func() tea.Msg {
		results, err := m.engine.Sync(m.ctx, feeds)
		return syncDoneMsg{results: results, err: err}
	}
	return tea.Batch(m.spin.Tick, sync)
}

func (m Model) scheduleRefresh() tea.Cmd {
	return tea.Tick(m.cfg.Settings.UpdateInterval, func(time.Time) tea.Msg { return refreshTickMsg{} })
}

// syncStatus summarizes a finished cycle for the status line
func (m Model) syncStatus(msg syncDoneMsg) string {
	if msg.err != nil {
		// failed save is the one unrecoverable condition, keep it loud
		return errorStyle.Render("STATE NOT SAVED: " + msg.err.Error())
	}

	newItems, failed := 0, 0
	for _, r := range msg.results {
		newItems += len(r.NewItems)
		if r.Error != "" {
			failed++
		}
	}

	status := fmt.Sprintf("refreshed: %d new", newItems)
	if failed > 0 {
		status += fmt.Sprintf(", %d feeds failed", failed)
	}
	return status
}

func (m *Model) saveHistory() {
	if err := m.history.Save(m.ctx); err != nil {
		lgr.Printf("[ERROR] save history: %v", err)
		m.status = errorStyle.Render("STATE NOT SAVED: " + err.Error())
	}
}
