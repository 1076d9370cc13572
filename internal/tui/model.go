package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/imkarma/isc/internal/criteria"
	"github.com/imkarma/isc/internal/store"
)

// screen is the active top-level view.
type screen int

const (
	screenTable screen = iota // Criteria rows (main)
	screenLog                 // Evolution log
)

// popup is a modal dialog drawn over the current screen.
type popup int

const (
	popupNone   popup = iota
	popupReason       // Reason for ADJUSTED/BLOCKED
)

// Model is the top-level bubbletea model.
type Model struct {
	store  *store.Store
	engine criteria.Engine
	width  int
	height int

	screen screen
	popup  popup

	table   *criteria.Table
	loadErr error
	cursor  int

	// Reason dialog.
	reasonInput  textinput.Model
	reasonStatus criteria.RowStatus

	logViewport viewport.Model
	keys        keyMap
	help        help.Model

	// Live reload; nil when the watcher could not start.
	changes <-chan struct{}

	statusMsg string

	quitting bool
}

// New creates a TUI model over s. changes may be nil.
func New(s *store.Store, changes <-chan struct{}) Model {
	ri := textinput.New()
	ri.Placeholder = "Reason (optional)..."
	ri.CharLimit = 200
	ri.Width = 50

	return Model{
		store:       s,
		engine:      criteria.New(s),
		screen:      screenTable,
		reasonInput: ri,
		logViewport: viewport.New(80, 20),
		keys:        defaultKeyMap(),
		help:        help.New(),
		changes:     changes,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadTable(), waitForChange(m.changes))
}

type tableLoadedMsg struct {
	table *criteria.Table
	err   error
}

type mutationDoneMsg struct {
	table  *criteria.Table
	status string
	err    error
}

type fileChangedMsg struct{}

func (m Model) loadTable() tea.Cmd {
	return func() tea.Msg {
		t, err := m.store.Load()
		return tableLoadedMsg{table: t, err: err}
	}
}

// mutate reloads the table from disk, applies fn and saves through the
// engine, so the write never starts from a stale in-memory copy.
func (m Model) mutate(fn func(e criteria.Engine, t *criteria.Table) (string, error)) tea.Cmd {
	return func() tea.Msg {
		t, err := m.store.Current()
		if err != nil {
			return mutationDoneMsg{err: err}
		}
		status, err := fn(m.engine, t)
		return mutationDoneMsg{table: t, status: status, err: err}
	}
}

// waitForChange blocks until the watcher reports a change.
func waitForChange(changes <-chan struct{}) tea.Cmd {
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return fileChangedMsg{}
	}
}

func (m *Model) setStatus(msg string) {
	m.statusMsg = msg
}

func (m *Model) clampCursor() {
	n := 0
	if m.table != nil {
		n = len(m.table.Rows)
	}
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) selectedRow() *criteria.Row {
	if m.table == nil || m.cursor >= len(m.table.Rows) {
		return nil
	}
	r := m.table.Rows[m.cursor]
	return &r
}
