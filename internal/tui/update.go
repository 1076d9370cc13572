package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/imkarma/isc/internal/criteria"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.popup != popupNone {
			return m.handlePopupKey(msg)
		}
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		vw := m.width - 4
		vh := m.height - 6
		if vw < 20 {
			vw = 20
		}
		if vh < 6 {
			vh = 6
		}
		m.logViewport.Width = vw
		m.logViewport.Height = vh
		return m, nil

	case tableLoadedMsg:
		m.loadErr = msg.err
		if msg.err == nil {
			m.table = msg.table
		}
		m.clampCursor()
		m.refreshLog()
		return m, nil

	case mutationDoneMsg:
		if msg.err != nil {
			m.setStatus("Error: " + msg.err.Error())
			return m, nil
		}
		m.table = msg.table
		m.loadErr = nil
		m.clampCursor()
		m.refreshLog()
		m.setStatus(msg.status)
		return m, nil

	case fileChangedMsg:
		return m, tea.Batch(m.loadTable(), waitForChange(m.changes))
	}

	if m.screen == screenLog {
		var cmd tea.Cmd
		m.logViewport, cmd = m.logViewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) refreshLog() {
	if m.table == nil {
		m.logViewport.SetContent("")
		return
	}
	m.logViewport.SetContent(criteria.RenderLog(m.table))
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.screen == screenTable {
			m.quitting = true
			return m, tea.Quit
		}
		m.screen = screenTable
		return m, nil
	case msg.String() == "esc":
		m.screen = screenTable
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Reload):
		return m, m.loadTable()
	case key.Matches(msg, m.keys.Log):
		if m.screen == screenLog {
			m.screen = screenTable
		} else {
			m.screen = screenLog
			m.logViewport.GotoBottom()
		}
		return m, nil
	}

	if m.screen == screenLog {
		var cmd tea.Cmd
		m.logViewport, cmd = m.logViewport.Update(msg)
		return m, cmd
	}
	return m.handleTableKey(msg)
}

func (m Model) handleTableKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.cursor--
		m.clampCursor()
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.cursor++
		m.clampCursor()
		return m, nil
	}

	row := m.selectedRow()
	if row == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Pending):
		return m, m.setStatusCmd(row.ID, criteria.StatusPending, "")
	case key.Matches(msg, m.keys.Active):
		return m, m.setStatusCmd(row.ID, criteria.StatusActive, "")
	case key.Matches(msg, m.keys.Done):
		return m, m.setStatusCmd(row.ID, criteria.StatusDone, "")
	case key.Matches(msg, m.keys.Adjusted):
		return m.openReason(criteria.StatusAdjusted)
	case key.Matches(msg, m.keys.Blocked):
		return m.openReason(criteria.StatusBlocked)
	case key.Matches(msg, m.keys.Verify):
		id := row.ID
		return m, m.mutate(func(e criteria.Engine, t *criteria.Table) (string, error) {
			if _, err := e.SetVerifyResult(t, id, criteria.VerifyPass, ""); err != nil {
				return "", err
			}
			return fmt.Sprintf("Row %d verified: PASS", id), nil
		})
	}
	return m, nil
}

func (m Model) setStatusCmd(id int, status criteria.RowStatus, reason string) tea.Cmd {
	return m.mutate(func(e criteria.Engine, t *criteria.Table) (string, error) {
		r, err := e.UpdateRowStatus(t, id, status, reason)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Row %d: %s", r.ID, r.Status), nil
	})
}

func (m Model) openReason(status criteria.RowStatus) (tea.Model, tea.Cmd) {
	m.popup = popupReason
	m.reasonStatus = status
	m.reasonInput.Reset()
	m.reasonInput.Focus()
	return m, textinput.Blink
}

func (m Model) handlePopupKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.popup = popupNone
		m.reasonInput.Blur()
		return m, nil
	case "enter":
		m.popup = popupNone
		m.reasonInput.Blur()
		row := m.selectedRow()
		if row == nil {
			return m, nil
		}
		reason := strings.TrimSpace(m.reasonInput.Value())
		return m, m.setStatusCmd(row.ID, m.reasonStatus, reason)
	}

	var cmd tea.Cmd
	m.reasonInput, cmd = m.reasonInput.Update(msg)
	return m, cmd
}
