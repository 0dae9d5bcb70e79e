package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/vidctl/internal/formatter"
	"github.com/desertthunder/vidctl/internal/player"
	"github.com/desertthunder/vidctl/internal/playlist"
	"github.com/desertthunder/vidctl/internal/reconcile"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PlaylistView ViewState = iota
	ConfirmDeleteView
)

// Model represents the TUI application state.
//
// Mutating flows run one at a time: while one is in flight (busy) the keys
// that would start another are ignored, which is what serializes playlist
// mutations. Poller updates interleave freely; they only overwrite the
// snapshot and status facets, last write wins.
type Model struct {
	ctx    context.Context
	rec    *reconcile.Reconciler
	poller *reconcile.Poller

	view          ViewState
	width         int
	height        int
	videoList     list.Model
	snap          playlist.Snapshot
	status        *player.Status
	errText       string
	busy          bool
	pendingDelete string
	help          help.Model
	keys          keyMap
}

// flowDoneMsg reports the end of a user-initiated flow.
type flowDoneMsg struct {
	snap playlist.Snapshot
	err  error
}

// pollMsg carries one poller observation.
type pollMsg reconcile.Update

// pollerClosedMsg signals that the poller channel drained after Stop.
type pollerClosedMsg struct{}

// NewModel creates a new TUI model with the provided dependencies.
// The poller must already be started; the model consumes its updates.
func NewModel(ctx context.Context, rec *reconcile.Reconciler, poller *reconcile.Poller) *Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Device Playlist"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)

	return &Model{
		ctx:       ctx,
		rec:       rec,
		poller:    poller,
		view:      PlaylistView,
		videoList: l,
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Init fetches the playlist and begins consuming poller updates.
func (m *Model) Init() tea.Cmd {
	m.busy = true
	return tea.Batch(m.refresh(), m.waitForPoll())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.videoList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PlaylistView:
			return m.handlePlaylistKeys(msg)
		case ConfirmDeleteView:
			return m.handleConfirmKeys(msg)
		}

	case flowDoneMsg:
		m.busy = false
		m.snap = msg.snap
		m.status = m.rec.LastStatus()
		if msg.err != nil {
			m.errText = msg.err.Error()
		} else {
			m.errText = ""
		}
		m.syncList()
		return m, nil

	case pollMsg:
		m.snap = msg.Snapshot
		if msg.Err != nil {
			// Fail-soft: keep showing the last-known state.
			m.errText = msg.Err.Error()
		} else {
			m.status = msg.Status
			m.errText = ""
		}
		m.syncList()
		return m, m.waitForPoll()

	case pollerClosedMsg:
		return m, nil
	}

	var cmd tea.Cmd
	m.videoList, cmd = m.videoList.Update(msg)
	return m, cmd
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case ConfirmDeleteView:
		return m.renderConfirm()
	default:
		return m.renderPlaylist()
	}
}

func (m *Model) handlePlaylistKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "q" || msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// One mutating flow at a time; ignore the rest until it lands.
	if m.busy {
		return m, nil
	}

	switch msg.String() {
	case "enter":
		if v, ok := m.selected(); ok {
			return m.start(m.command(player.CmdPlay, v.Filename))
		}
	case " ":
		return m.start(m.command(player.CmdPause, ""))
	case "s":
		return m.start(m.command(player.CmdStop, ""))
	case "n":
		return m.start(m.command(player.CmdNext, ""))
	case "p":
		return m.start(m.command(player.CmdPrevious, ""))
	case "r":
		return m.start(m.refresh())
	case "d", "x":
		if v, ok := m.selected(); ok {
			m.pendingDelete = v.Filename
			m.view = ConfirmDeleteView
		}
		return m, nil
	case "K", "shift+up":
		return m.moveSelected(-1)
	case "J", "shift+down":
		return m.moveSelected(1)
	}

	var cmd tea.Cmd
	m.videoList, cmd = m.videoList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y":
		filename := m.pendingDelete
		m.pendingDelete = ""
		m.view = PlaylistView
		return m.start(m.delete(filename))
	case "n", "esc", "q":
		m.pendingDelete = ""
		m.view = PlaylistView
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

// moveSelected swaps the selected video with its neighbor and hands the
// resulting filename order to the reconciler, the keyboard stand-in for a
// drag reorder.
func (m *Model) moveSelected(delta int) (tea.Model, tea.Cmd) {
	i := m.videoList.Index()
	j := i + delta
	if i < 0 || i >= len(m.snap.Items) || j < 0 || j >= len(m.snap.Items) {
		return m, nil
	}

	order := m.snap.Filenames()
	order[i], order[j] = order[j], order[i]
	m.videoList.Select(j)

	return m.start(m.reorder(order))
}

// start marks a flow in flight and returns its command.
func (m *Model) start(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	m.busy = true
	return m, cmd
}

func (m *Model) selected() (player.Video, bool) {
	if item, ok := m.videoList.SelectedItem().(videoItem); ok {
		return item.video, true
	}
	return player.Video{}, false
}

// syncList rebuilds list items from the snapshot, keeping the cursor on the
// same position where possible.
func (m *Model) syncList() {
	items := make([]list.Item, len(m.snap.Items))
	for i, v := range m.snap.Items {
		items[i] = videoItem{video: v, playing: i == m.snap.PlayingIndex}
	}

	idx := m.videoList.Index()
	m.videoList.SetItems(items)
	if idx >= len(items) {
		idx = len(items) - 1
	}
	if idx >= 0 {
		m.videoList.Select(idx)
	}
}

func (m *Model) refresh() tea.Cmd {
	return func() tea.Msg {
		snap, err := m.rec.Refresh(m.ctx)
		return flowDoneMsg{snap: snap, err: err}
	}
}

func (m *Model) command(cmd player.Command, filename string) tea.Cmd {
	return func() tea.Msg {
		snap, err := m.rec.Command(m.ctx, cmd, filename)
		return flowDoneMsg{snap: snap, err: err}
	}
}

func (m *Model) reorder(order []string) tea.Cmd {
	return func() tea.Msg {
		snap, err := m.rec.Reorder(m.ctx, order)
		return flowDoneMsg{snap: snap, err: err}
	}
}

func (m *Model) delete(filename string) tea.Cmd {
	return func() tea.Msg {
		snap, err := m.rec.Delete(m.ctx, filename)
		return flowDoneMsg{snap: snap, err: err}
	}
}

func (m *Model) waitForPoll() tea.Cmd {
	return func() tea.Msg {
		update, ok := <-m.poller.Updates()
		if !ok {
			return pollerClosedMsg{}
		}
		return pollMsg(update)
	}
}

func (m *Model) renderPlaylist() string {
	statusLine := formatter.StatusLine(m.status)
	switch {
	case m.status == nil:
		statusLine = styles.warn.Render(statusLine)
	case m.status.IsBlackScreen():
		statusLine = styles.warn.Render(statusLine)
	case m.status.IsPlaying:
		statusLine = styles.ok.Render(statusLine)
	}

	if m.busy {
		statusLine += styles.help.Render("  …working")
	}

	errLine := ""
	if m.errText != "" {
		errLine = "\n" + styles.err.Render("Error: "+m.errText)
	}

	helpView := m.help.ShortHelpView(m.keys.ShortHelp())

	return fmt.Sprintf("%s\n\n%s%s\n\n%s", m.videoList.View(), statusLine, errLine, helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Delete '%s' from the device?", m.pendingDelete))
	info := "\nThe file is removed remotely; this cannot be undone.\n"

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no, m.keys.quit})

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}
