package review

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Paintersrp/citegraph/internal/paper"
	reviewsvc "github.com/Paintersrp/citegraph/internal/review"
	"github.com/Paintersrp/citegraph/internal/state"
)

type Model struct {
	state          *state.State
	queue          []reviewsvc.QueueItem
	updates        map[string]reviewsvc.Update
	opts           reviewsvc.QueueOptions
	keys           keyMap
	width          int
	height         int
	cursor         int
	visited        int
	status         string
	loading        bool
	ready          bool
	confirmingSave bool
	now            func() time.Time
}

type keyMap struct {
	up       key.Binding
	down     key.Binding
	level    key.Binding
	raise    key.Binding
	lower    key.Binding
	refresh  key.Binding
	complete key.Binding
	exit     key.Binding
}

type queueLoadedMsg struct {
	queue []reviewsvc.QueueItem
	err   error
}

type reviewSavedMsg struct {
	path    string
	updated int
	err     error
}

// ExitRequestedMsg indicates that the user requested to leave the review view.
type ExitRequestedMsg struct{}

func NewModel(st *state.State, opts reviewsvc.QueueOptions) (*Model, error) {
	if st == nil || st.Corpus == nil || st.Library == nil {
		return nil, fmt.Errorf("review model requires an open library")
	}
	if opts.Limit == 0 {
		opts.Limit = st.Library.Review.Limit
	}

	return &Model{
		state:   st,
		updates: make(map[string]reviewsvc.Update),
		opts:    opts,
		keys:    newKeyMap(),
		now:     time.Now,
	}, nil
}

func newKeyMap() keyMap {
	return keyMap{
		up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "previous paper"),
		),
		down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next paper"),
		),
		level: key.NewBinding(
			key.WithKeys("0", "1", "2", "3", "4"),
			key.WithHelp("0-4", "set familiarity"),
		),
		raise: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "raise importance"),
		),
		lower: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "lower importance"),
		),
		refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh queue"),
		),
		complete: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save session"),
		),
		exit: key.NewBinding(
			key.WithKeys("esc", "q"),
			key.WithHelp("esc", "exit review"),
		),
	}
}

func (m *Model) Init() tea.Cmd {
	return m.refreshQueue()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case queueLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.status = fmt.Sprintf("refresh failed: %v", msg.err)
			return m, nil
		}
		m.setQueue(msg.queue)
		if len(m.queue) == 0 {
			m.status = "No papers match the review filters."
		} else {
			m.status = fmt.Sprintf("Loaded review queue (%d papers)", len(m.queue))
		}
		return m, nil
	case reviewSavedMsg:
		m.confirmingSave = false
		if msg.err != nil {
			m.status = fmt.Sprintf("Failed to save review: %v", msg.err)
			return m, nil
		}
		m.updates = make(map[string]reviewsvc.Update)
		m.status = fmt.Sprintf("Saved %d updates to %s", msg.updated, m.relativePath(msg.path))
		return m, m.refreshQueue()
	case state.LibraryChangedMsg:
		if len(m.updates) == 0 {
			return m, m.refreshQueue()
		}
		return m, nil
	case tea.KeyMsg:
		if m.confirmingSave && msg.Type == tea.KeyEsc {
			m.confirmingSave = false
			m.status = "Canceled review save."
			return m, nil
		}
		_, cmd := m.handleKeys(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) View() string {
	if !m.ready && m.loading {
		return "Loading review queue..."
	}

	sections := []string{
		m.renderHeader(),
		m.renderQueue(),
		m.renderDetail(),
	}
	if m.status != "" {
		sections = append(sections, statusStyle.Render(m.status))
	}
	sections = append(sections, helpStyle.Render(
		"↑/↓ move · 0-4 familiarity · +/- importance · r refresh · ctrl+s save · esc exit"))
	return appStyle.Render(strings.Join(filterEmpty(sections), "\n\n"))
}

func (m *Model) handleKeys(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.up):
		m.move(-1)
		return true, nil
	case key.Matches(msg, m.keys.down):
		m.move(1)
		return true, nil
	case key.Matches(msg, m.keys.level):
		level := paper.FamiliarityLevels[int(msg.String()[0]-'0')]
		m.edit(func(u *reviewsvc.Update) { u.After = level })
		return true, nil
	case key.Matches(msg, m.keys.raise):
		m.edit(func(u *reviewsvc.Update) { u.ImportanceTo = min(5, max(1, u.ImportanceTo+1)) })
		return true, nil
	case key.Matches(msg, m.keys.lower):
		m.edit(func(u *reviewsvc.Update) { u.ImportanceTo = max(0, u.ImportanceTo-1) })
		return true, nil
	case key.Matches(msg, m.keys.refresh):
		if len(m.updates) > 0 {
			m.status = "Save or discard pending updates before refreshing."
			return true, nil
		}
		return true, m.refreshQueue()
	case key.Matches(msg, m.keys.complete):
		if !m.confirmingSave {
			m.confirmingSave = true
			m.status = "Press ctrl+s again to save the review session, or esc to cancel."
			return true, nil
		}
		m.confirmingSave = false
		m.status = "Saving review session..."
		return true, m.saveSession(m.pendingUpdates(), m.queue, m.visited, m.now())
	case key.Matches(msg, m.keys.exit):
		return true, exitRequestedCmd
	}
	return false, nil
}

func (m *Model) setQueue(queue []reviewsvc.QueueItem) {
	m.queue = queue
	m.ready = true
	m.cursor = 0
	m.visited = 0
	if len(queue) > 0 {
		m.visited = 1
	}
}

func (m *Model) move(delta int) {
	if len(m.queue) == 0 {
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.queue)-1)
	m.visited = max(m.visited, m.cursor+1)
}

// edit applies fn to the pending update of the selected paper, dropping the
// update again when it ends up unchanged.
func (m *Model) edit(fn func(u *reviewsvc.Update)) {
	if len(m.queue) == 0 {
		return
	}
	p := m.queue[m.cursor].Paper
	u, ok := m.updates[p.ID]
	if !ok {
		u = reviewsvc.Update{
			PaperID:        p.ID,
			Title:          p.Title,
			Before:         p.Familiarity,
			After:          p.Familiarity,
			ImportanceFrom: p.Importance,
			ImportanceTo:   p.Importance,
		}
	}
	fn(&u)
	if u.Changed() {
		m.updates[p.ID] = u
	} else {
		delete(m.updates, p.ID)
	}
	m.confirmingSave = false
	m.status = fmt.Sprintf("%d pending updates", len(m.updates))
}

// pendingUpdates returns the edits in queue order.
func (m *Model) pendingUpdates() []reviewsvc.Update {
	updates := make([]reviewsvc.Update, 0, len(m.updates))
	for _, item := range m.queue {
		if u, ok := m.updates[item.Paper.ID]; ok {
			updates = append(updates, u)
		}
	}
	return updates
}

func (m *Model) renderHeader() string {
	title := headerStyle.Render("Review")
	info := fmt.Sprintf("%d papers queued · %d pending updates", len(m.queue), len(m.updates))
	if m.loading {
		info += " (refreshing...)"
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, info)
}

func (m *Model) renderQueue() string {
	if len(m.queue) == 0 {
		return "Review queue: nothing to revisit."
	}
	var b strings.Builder
	for i, item := range m.queue {
		p := item.Paper
		level := p.Familiarity
		importance := p.Importance
		marker := " "
		if u, ok := m.updates[p.ID]; ok {
			level, importance = u.After, u.ImportanceTo
			marker = "*"
		}
		line := fmt.Sprintf("%2d.%s %s (%d) · %s · importance %s",
			i+1, marker, p.Title, p.Year, level.Label(), importanceText(importance))
		if i == m.cursor {
			line = selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) renderDetail() string {
	if len(m.queue) == 0 {
		return ""
	}
	item := m.queue[m.cursor]
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", item.Paper.Citation())
	fmt.Fprintf(&b, "Why now: %s", item.Reason)
	if len(item.Paper.Tags) > 0 {
		fmt.Fprintf(&b, "\nTags: %s", strings.Join(item.Paper.Tags, ", "))
	}
	return b.String()
}

func (m *Model) refreshQueue() tea.Cmd {
	if m == nil || m.state == nil {
		return nil
	}
	m.loading = true
	st := m.state
	opts := m.opts
	return func() tea.Msg {
		queue, err := buildQueue(st, opts)
		return queueLoadedMsg{queue: queue, err: err}
	}
}

func (m *Model) saveSession(
	updates []reviewsvc.Update,
	queue []reviewsvc.QueueItem,
	visited int,
	ts time.Time,
) tea.Cmd {
	st := m.state
	queue = append([]reviewsvc.QueueItem(nil), queue...)
	return func() tea.Msg {
		path, err := persistSession(st, updates, queue, visited, ts)
		return reviewSavedMsg{path: path, updated: len(updates), err: err}
	}
}

func (m *Model) relativePath(path string) string {
	if m.state == nil || m.state.Dir == "" {
		return path
	}
	if rel, ok := strings.CutPrefix(path, m.state.Dir); ok {
		return strings.TrimLeft(rel, "/\\")
	}
	return path
}

func buildQueue(st *state.State, opts reviewsvc.QueueOptions) ([]reviewsvc.QueueItem, error) {
	if st == nil || st.Corpus == nil {
		return nil, errors.New("library is not open")
	}
	snap, err := st.Corpus.AcquireSnapshot(context.Background())
	if err != nil {
		return nil, err
	}
	return reviewsvc.BuildQueue(snap.Papers, opts), nil
}

func persistSession(
	st *state.State,
	updates []reviewsvc.Update,
	queue []reviewsvc.QueueItem,
	visited int,
	ts time.Time,
) (string, error) {
	if st == nil || st.Corpus == nil || st.Library == nil {
		return "", errors.New("library is not open")
	}

	ctx := context.Background()
	reviewed := reviewsvc.ReviewedIDs(queue, updates, visited)
	if err := reviewsvc.ApplySession(ctx, st.Corpus, updates, reviewed, ts); err != nil {
		return "", err
	}

	dir, err := reviewsvc.EnsureLogDir(st.Dir, st.Library.Review.Directory)
	if err != nil {
		return "", err
	}
	return reviewsvc.WriteMarkdownLog(dir, updates, queue, ts)
}

func importanceText(rating int) string {
	if rating <= 0 {
		return "unrated"
	}
	return fmt.Sprintf("%d/5", rating)
}

func filterEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}

var exitRequestedCmd tea.Cmd = func() tea.Msg { return ExitRequestedMsg{} }
