package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/imkarma/isc/internal/criteria"
)

var (
	clrSubtle    = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#666666"}
	clrHighlight = lipgloss.AdaptiveColor{Light: "#0F766E", Dark: "#2DD4BF"}
	clrGreen     = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	clrYellow    = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#F59E0B"}
	clrRed       = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"}
	clrBlue      = lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#60A5FA"}
	clrWhite     = lipgloss.AdaptiveColor{Light: "#333333", Dark: "#DDDDDD"}
	clrDim       = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#555555"}
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(clrHighlight)
	dimStyle    = lipgloss.NewStyle().Foreground(clrDim)
	subtleStyle = lipgloss.NewStyle().Foreground(clrSubtle)

	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(clrHighlight)

	popupStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(clrHighlight).
			Padding(1, 2)

	statusStyle = lipgloss.NewStyle().Foreground(clrGreen).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(clrRed).Bold(true)
)

var statusColors = map[criteria.RowStatus]lipgloss.AdaptiveColor{
	criteria.StatusPending:  clrWhite,
	criteria.StatusActive:   clrBlue,
	criteria.StatusDone:     clrGreen,
	criteria.StatusAdjusted: clrYellow,
	criteria.StatusBlocked:  clrRed,
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.screen {
	case screenTable:
		content = m.viewTable()
	case screenLog:
		content = m.viewLog()
	}

	if m.popup == popupReason {
		content += "\n" + m.viewReasonPopup()
	}
	return content
}

func (m Model) viewTable() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("🎯 ideal state criteria") + "\n")

	if m.loadErr != nil {
		b.WriteString(errorStyle.Render("  "+m.loadErr.Error()) + "\n")
		b.WriteString(m.footer())
		return b.String()
	}
	if m.table == nil {
		b.WriteString(dimStyle.Render("  No current ISC. Run: isc create -r \"request\"") + "\n\n")
		b.WriteString(m.footer())
		return b.String()
	}

	t := m.table
	sum := criteria.Summarize(t)
	b.WriteString(fmt.Sprintf("  %s\n", t.Request))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %s • phase %s • iteration %d • %d/%d done • %d parallelizable",
		t.Effort, t.Phase, t.Iteration, sum.Done, sum.Total, sum.Parallelizable)) + "\n\n")

	if len(t.Rows) == 0 {
		b.WriteString(dimStyle.Render("  No rows yet. Run: isc add -d \"criterion\"") + "\n")
	}
	for i, r := range t.Rows {
		b.WriteString(m.renderRow(r, i == m.cursor) + "\n")
	}

	b.WriteString("\n" + m.footer())
	return b.String()
}

func (m Model) renderRow(r criteria.Row, selected bool) string {
	cursor := "  "
	if selected {
		cursor = selectedStyle.Render("▸ ")
	}
	status := lipgloss.NewStyle().Foreground(statusColors[r.Status]).Render(fmt.Sprintf("%-12s", criteria.StatusDisplay(r.Status)))
	desc := criteria.DescriptionDisplay(r)
	if selected {
		desc = selectedStyle.Render(desc)
	}
	capability := subtleStyle.Render(criteria.CapabilityDisplay(r))
	return fmt.Sprintf("%s%3d  %s  %s  %s %s", cursor, r.ID, status, desc,
		dimStyle.Render(string(r.Source)), capability)
}

func (m Model) viewLog() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("evolution log") + "\n\n")
	b.WriteString(m.logViewport.View() + "\n\n")
	b.WriteString(m.footer())
	return b.String()
}

func (m Model) viewReasonPopup() string {
	var b strings.Builder
	label := "Adjust"
	color := clrYellow
	if m.reasonStatus == criteria.StatusBlocked {
		label = "Block"
		color = clrRed
	}
	title := lipgloss.NewStyle().Bold(true).Foreground(color).Render(label + " row")
	b.WriteString(title + "\n\n")
	b.WriteString(m.reasonInput.View() + "\n\n")
	b.WriteString(dimStyle.Render("enter save • esc cancel"))
	return m.popupBoxStyle().Render(b.String())
}

func (m Model) popupBoxStyle() lipgloss.Style {
	w := 60
	if m.width > 0 {
		w = m.width - 12
		if w < 42 {
			w = 42
		}
		if w > 84 {
			w = 84
		}
	}
	return popupStyle.Width(w)
}

func (m Model) footer() string {
	var b strings.Builder
	if m.statusMsg != "" {
		style := statusStyle
		if strings.HasPrefix(m.statusMsg, "Error") {
			style = errorStyle
		}
		b.WriteString("  " + style.Render(m.statusMsg) + "\n")
	}
	b.WriteString("  " + m.help.View(m.keys))
	return b.String()
}
