// Package explore is the interactive paper explorer: a filterable paper list
// beside toggleable panels for details, connections, bridge suggestions and
// notes.
package explore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Paintersrp/citegraph/internal/graph"
	"github.com/Paintersrp/citegraph/internal/layout"
	"github.com/Paintersrp/citegraph/internal/paper"
	"github.com/Paintersrp/citegraph/internal/render"
	corpussvc "github.com/Paintersrp/citegraph/internal/services/corpus"
	"github.com/Paintersrp/citegraph/internal/state"
	"github.com/Paintersrp/citegraph/internal/tagsync"
	"github.com/Paintersrp/citegraph/pkg/logger"
)

const (
	bridgeLimit       = 5
	heartbeatInterval = 5 * time.Second
	listWidthRatio    = 0.4
)

type Model struct {
	state   *state.State
	list    list.Model
	panels  viewport.Model
	input   textinput.Model
	keys    keyMap
	tags    *tagsync.Reconciler
	results chan tagsync.Result

	snap       corpussvc.Snapshot
	adj        *graph.Adjacency
	selected   string
	editing    bool
	showHidden bool
	loaded     bool
	width      int
	height     int
	status     string
}

type snapshotLoadedMsg struct {
	snap corpussvc.Snapshot
	err  error
}

type tagResultMsg struct {
	result tagsync.Result
}

type mutationDoneMsg struct {
	action string
	err    error
}

func NewModel(st *state.State) (*Model, error) {
	if st == nil || st.Corpus == nil || st.View == nil {
		return nil, fmt.Errorf("explorer requires an open library")
	}

	keys := newKeyMap()
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = selectedItemStyle
	delegate.Styles.SelectedDesc = selectedItemStyle

	l := list.New(nil, delegate, 0, 0)
	l.Title = fmt.Sprintf("Papers · %s", st.LibraryName)
	l.Styles.Title = titleStyle
	l.AdditionalShortHelpKeys = keys.shortHelp
	l.AdditionalFullHelpKeys = keys.fullHelp

	input := textinput.New()
	input.Placeholder = "comma separated tags"
	input.Prompt = "Tags: "

	m := &Model{
		state:    st,
		list:     l,
		panels:   viewport.New(0, 0),
		input:    input,
		keys:     keys,
		results:  make(chan tagsync.Result, 8),
		selected: st.View.Selected,
	}
	if st.Watcher != nil {
		st.Watcher.SetHeartbeat(st.CorpusHeartbeatCmd, heartbeatInterval)
	}
	return m, nil
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.loadSnapshot(), m.waitForTagResult(), m.watch())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case snapshotLoadedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("load failed: %v", msg.err)
			return m, nil
		}
		m.applySnapshot(msg.snap)
		m.refreshStatusLine()
		return m, nil

	case tagResultMsg:
		m.handleTagResult(msg.result)
		return m, m.waitForTagResult()

	case mutationDoneMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("%s failed: %v", msg.action, msg.err)
			return m, nil
		}
		m.status = msg.action
		return m, m.loadSnapshot()

	case state.LibraryChangedMsg:
		m.status = fmt.Sprintf("reloaded after change to %s", msg.Path)
		return m, tea.Batch(m.loadSnapshot(), m.watch())

	case state.LibraryWatcherErrMsg:
		m.status = fmt.Sprintf("watcher error: %v", msg.Err)
		return m, m.watch()

	// Heartbeats arrive through the watcher, so each one re-arms it.
	case state.CorpusStatsMsg:
		return m, m.watch()

	case tea.KeyMsg:
		if m.editing {
			return m, m.updateTagInput(msg)
		}
		if m.list.FilterState() != list.Filtering {
			if handled, cmd := m.handleKeys(msg); handled {
				return m, cmd
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	m.syncSelection()
	return m, cmd
}

func (m *Model) View() string {
	if !m.loaded {
		return appStyle.Render("Loading library...")
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		m.list.View(),
		panelStyle.Render(m.panels.View()),
	)

	footer := []string{}
	if m.editing {
		footer = append(footer, inputStyle.Render(m.input.View()))
	}
	if m.status != "" {
		footer = append(footer, statusStyle(m.status))
	}
	if line := m.state.RootStatus.Line(); line != "" {
		footer = append(footer, footerStyle.Render(line))
	}

	return appStyle.Render(lipgloss.JoinVertical(lipgloss.Left, append([]string{body}, footer...)...))
}

func (m *Model) handleKeys(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return true, m.shutdown()
	case key.Matches(msg, m.keys.details):
		return true, m.togglePanel(state.PanelDetails)
	case key.Matches(msg, m.keys.connections):
		return true, m.togglePanel(state.PanelConnections)
	case key.Matches(msg, m.keys.bridges):
		return true, m.togglePanel(state.PanelBridges)
	case key.Matches(msg, m.keys.notes):
		return true, m.togglePanel(state.PanelNotes)
	case key.Matches(msg, m.keys.hide):
		return true, m.toggleHidden()
	case key.Matches(msg, m.keys.showHidden):
		m.showHidden = !m.showHidden
		m.rebuildItems()
		return true, nil
	case key.Matches(msg, m.keys.favorite):
		return true, m.toggleFavorite()
	case key.Matches(msg, m.keys.editTags):
		return true, m.startTagEdit()
	case key.Matches(msg, m.keys.direction):
		return true, m.toggleDirection()
	case key.Matches(msg, m.keys.scrollDown):
		m.panels.HalfViewDown()
		return true, nil
	case key.Matches(msg, m.keys.scrollUp):
		m.panels.HalfViewUp()
		return true, nil
	}
	return false, nil
}

func (m *Model) loadSnapshot() tea.Cmd {
	svc := m.state.Corpus
	return func() tea.Msg {
		snap, err := svc.AcquireSnapshot(context.Background())
		return snapshotLoadedMsg{snap: snap, err: err}
	}
}

func (m *Model) refreshStatusLine() {
	if cmd := m.state.CorpusHeartbeatCmd(); cmd != nil {
		cmd()
	}
}

func (m *Model) watch() tea.Cmd {
	if m.state.Watcher == nil {
		return nil
	}
	return m.state.Watcher.Next()
}

func (m *Model) waitForTagResult() tea.Cmd {
	results := m.results
	return func() tea.Msg {
		res, ok := <-results
		if !ok {
			return nil
		}
		return tagResultMsg{result: res}
	}
}

func (m *Model) applySnapshot(snap corpussvc.Snapshot) {
	first := !m.loaded
	m.snap = snap
	m.adj = graph.BuildAdjacency(snap.Relationships)
	m.loaded = true

	m.state.View.Prune(func(id string) bool {
		_, ok := snap.Paper(id)
		return ok
	})

	// A reconciler with unsynced edits keeps its local view; otherwise the
	// server view is refreshed from the new snapshot.
	if m.tags == nil || len(m.tags.Pending()) == 0 {
		if m.tags != nil {
			_ = m.tags.Close()
		}
		results := m.results
		m.tags = tagsync.New(m.state.Corpus, tagsync.FromPapers(snap.Papers), tagsync.Options{
			OnResult: func(res tagsync.Result) {
				select {
				case results <- res:
				default:
				}
			},
		})
	}

	m.rebuildItems()
	if first && m.selected != "" {
		m.selectID(m.selected)
	}
	m.syncSelection()
	m.refreshPanels()
}

func (m *Model) rebuildItems() {
	hidden := m.state.View.HiddenSet()
	var tags func(string) []string
	if m.tags != nil {
		tags = m.tags.Tags
	}
	items := buildItems(m.snap.Papers, m.adj, hidden, tags, m.showHidden)
	m.list.SetItems(items)
	if m.selected != "" {
		m.selectID(m.selected)
	}
}

func (m *Model) selectID(id string) {
	for i, item := range m.list.Items() {
		if pi, ok := item.(PaperItem); ok && pi.paper.ID == id {
			m.list.Select(i)
			return
		}
	}
}

func (m *Model) selectedPaper() (paper.Paper, bool) {
	item, ok := m.list.SelectedItem().(PaperItem)
	if !ok {
		return paper.Paper{}, false
	}
	return item.paper, true
}

func (m *Model) syncSelection() {
	p, ok := m.selectedPaper()
	if !ok || p.ID == m.selected {
		return
	}
	m.selected = p.ID
	m.state.View.Selected = p.ID
	m.refreshPanels()
}

func (m *Model) togglePanel(panel state.Panel) tea.Cmd {
	verb := "closed"
	if m.state.View.TogglePanel(panel) {
		verb = "opened"
	}
	m.refreshPanels()
	m.status = fmt.Sprintf("%s panel %s", panel, verb)
	return m.saveView()
}

func (m *Model) toggleHidden() tea.Cmd {
	p, ok := m.selectedPaper()
	if !ok {
		return nil
	}
	if m.state.View.IsHidden(p.ID) {
		m.state.View.Unhide(p.ID)
		m.status = fmt.Sprintf("%s is visible in the graph", p.ID)
	} else {
		m.state.View.Hide(p.ID)
		m.status = fmt.Sprintf("%s is hidden from the graph", p.ID)
	}
	m.rebuildItems()
	m.syncSelection()
	return m.saveView()
}

func (m *Model) toggleDirection() tea.Cmd {
	if m.state.View.Direction == layout.LeftRight {
		m.state.View.Direction = layout.TopBottom
	} else {
		m.state.View.Direction = layout.LeftRight
	}
	m.status = fmt.Sprintf("graph layout direction %s", m.state.View.Direction)
	return m.saveView()
}

func (m *Model) toggleFavorite() tea.Cmd {
	p, ok := m.selectedPaper()
	if !ok {
		return nil
	}
	svc := m.state.Corpus
	return func() tea.Msg {
		updated, err := svc.ToggleFavorite(context.Background(), p.ID)
		action := fmt.Sprintf("unfavorited %s", p.ID)
		if updated.Favorite {
			action = fmt.Sprintf("favorited %s", p.ID)
		}
		return mutationDoneMsg{action: action, err: err}
	}
}

func (m *Model) saveView() tea.Cmd {
	st := m.state
	return func() tea.Msg {
		if err := st.SaveView(); err != nil {
			return mutationDoneMsg{action: "saving view", err: err}
		}
		return nil
	}
}

func (m *Model) startTagEdit() tea.Cmd {
	p, ok := m.selectedPaper()
	if !ok || m.tags == nil {
		return nil
	}
	m.editing = true
	m.input.SetValue(strings.Join(m.tags.Tags(p.ID), ", "))
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) updateTagInput(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.cancel):
		m.editing = false
		m.input.Blur()
		m.status = "tag edit canceled"
		return nil
	case key.Matches(msg, m.keys.submit):
		m.editing = false
		m.input.Blur()
		if p, ok := m.selectedPaper(); ok {
			tags := paper.NormalizeTags(strings.Split(m.input.Value(), ","))
			m.tags.SetTags(p.ID, tags)
			m.status = fmt.Sprintf("tags for %s queued: %s", p.ID, strings.Join(tags, ", "))
			m.rebuildItems()
			m.refreshPanels()
		}
		return nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) handleTagResult(res tagsync.Result) {
	switch {
	case res.Err != nil:
		m.status = fmt.Sprintf("tag sync failed: %v", res.Err)
	case res.Stale:
		m.status = "tag sync superseded by newer edits"
	case len(res.Changes) > 0:
		m.status = fmt.Sprintf("synced tags for %d papers", len(res.Changes))
	}
}

func (m *Model) shutdown() tea.Cmd {
	if m.tags != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := m.tags.Flush(ctx); err != nil {
			m.status = fmt.Sprintf("tag sync failed: %v", err)
		}
		cancel()
		_ = m.tags.Close()
	}
	if err := m.state.SaveView(); err != nil {
		m.status = fmt.Sprintf("saving view failed: %v", err)
		logger.Warn("saving view failed", "dir", m.state.Dir, "err", err)
	}
	return tea.Quit
}

func (m *Model) resize() {
	h, v := appStyle.GetFrameSize()
	width := m.width - h
	height := m.height - v - 2
	listWidth := int(float64(width) * listWidthRatio)
	m.list.SetSize(listWidth, height)
	m.panels.Width = max(width-listWidth-2, 10)
	m.panels.Height = max(height, 3)
	m.input.Width = max(width-10, 10)
	m.refreshPanels()
}

func (m *Model) refreshPanels() {
	p, ok := m.selectedPaper()
	if !ok {
		m.panels.SetContent("No paper selected.")
		return
	}
	if m.tags != nil {
		p.Tags = m.tags.Tags(p.ID)
	}

	var sections []string
	for _, panel := range m.state.View.Panels {
		sections = append(sections, m.renderPanel(panel, p))
	}
	if len(sections) == 0 {
		sections = append(sections, "All panels closed. Press 1-4 to open one.")
	}
	m.panels.SetContent(strings.Join(sections, "\n\n"))
	m.panels.GotoTop()
}

func (m *Model) renderPanel(panel state.Panel, p paper.Paper) string {
	title := panelTitleStyle.Render(strings.ToUpper(string(panel)))
	var body string
	switch panel {
	case state.PanelDetails:
		body = renderDetails(p, m.adj)
	case state.PanelConnections:
		body = m.renderConnections(p)
	case state.PanelBridges:
		body = m.renderBridges(p)
	case state.PanelNotes:
		body = m.renderNotes(p)
	}
	return title + "\n" + body
}

func renderDetails(p paper.Paper, adj *graph.Adjacency) string {
	lines := []string{
		p.Citation(),
		fmt.Sprintf("ID: %s", p.ID),
		fmt.Sprintf("Category: %s", p.Category),
		fmt.Sprintf("Familiarity: %s", p.Familiarity.Label()),
	}
	if p.Importance > 0 {
		lines = append(lines, fmt.Sprintf("Importance: %d/5", p.Importance))
	}
	if len(p.Tags) > 0 {
		lines = append(lines, "Tags: "+strings.Join(p.Tags, ", "))
	}
	if adj != nil {
		lines = append(lines, fmt.Sprintf("Neighbors: %d", adj.Degree(p.ID)))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderConnections(p paper.Paper) string {
	connections, err := m.state.Corpus.Connections(context.Background(), p.ID)
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	if len(connections) == 0 {
		return "No connections."
	}
	var b strings.Builder
	for _, c := range connections {
		arrow := "→"
		if c.Direction == graph.Incoming {
			arrow = "←"
		}
		line := fmt.Sprintf("%s %s %s (%d) [%d]", arrow, c.Relationship.Type.Label(), c.Other.Title, c.Other.Year, c.Relationship.Strength)
		b.WriteString(render.Truncate(line, m.panels.Width-2) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) renderBridges(p paper.Paper) string {
	bridges, err := m.state.Corpus.Bridges(context.Background(), p.ID, bridgeLimit, m.state.Weights())
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	if len(bridges) == 0 {
		return "No bridge suggestions."
	}
	var b strings.Builder
	for i, br := range bridges {
		fmt.Fprintf(&b, "%d. %s (%d) · %.2f\n", i+1, br.Paper.Title, br.Paper.Year, br.Score)
		b.WriteString(render.Truncate("   "+strings.Join(br.Reasons, "; "), m.panels.Width-2) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) renderNotes(p paper.Paper) string {
	notes := strings.TrimSpace(p.Notes)
	if notes == "" {
		return "No notes."
	}
	out, err := render.Terminal(notes, m.panels.Width-2)
	if err != nil {
		return notes
	}
	return strings.TrimSpace(out)
}

// Run opens the explorer in the alternate screen.
func Run(st *state.State) error {
	m, err := NewModel(st)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
