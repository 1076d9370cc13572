package criteria

import (
	"fmt"
	"strings"
)

// StatusIcons maps each status to its display glyph.
var StatusIcons = map[RowStatus]string{
	StatusPending:  "⏳",
	StatusActive:   "🔄",
	StatusDone:     "✅",
	StatusAdjusted: "🔧",
	StatusBlocked:  "🚫",
}

// ParallelMarker is appended to the capability of rows that may run in parallel.
const ParallelMarker = "×"

// Legend explains the capability glyphs under a rendered table.
const Legend = "**Legend:** 🔬 Research | 💡 Thinking | 🗣️ Debate | 🔍 Analysis | 🤖 Execution | ✅ Verify | × Parallel"

// Summarize counts rows by status. Parallelizable counts PENDING rows
// marked parallel.
func Summarize(t *Table) Summary {
	s := Summary{Total: len(t.Rows)}
	for _, r := range t.Rows {
		switch r.Status {
		case StatusPending:
			s.Pending++
			if r.Parallel {
				s.Parallelizable++
			}
		case StatusActive:
			s.Active++
		case StatusDone:
			s.Done++
		case StatusAdjusted:
			s.Adjusted++
		case StatusBlocked:
			s.Blocked++
		}
	}
	return s
}

// DescriptionDisplay is the description with any adjusted/blocked reasons appended.
func DescriptionDisplay(r Row) string {
	desc := r.Description
	if r.AdjustedReason != "" {
		desc += fmt.Sprintf(" *(adjusted: %s)*", r.AdjustedReason)
	}
	if r.BlockedReason != "" {
		desc += fmt.Sprintf(" *(blocked: %s)*", r.BlockedReason)
	}
	return desc
}

// CapabilityDisplay is "<glyph> <short name>", with the parallel marker
// for parallel rows, or "—" when nothing is assigned.
func CapabilityDisplay(r Row) string {
	if r.Capability == nil {
		return "—"
	}
	out := r.Capability.Icon() + " " + r.Capability.ShortName()
	if r.Parallel {
		out += ParallelMarker
	}
	return out
}

// StatusDisplay is "<glyph> <STATUS>".
func StatusDisplay(s RowStatus) string {
	return StatusIcons[s] + " " + string(s)
}

// RenderTable renders the table as a markdown report.
func RenderTable(t *Table) string {
	var b strings.Builder
	b.WriteString("## 🎯 IDEAL STATE CRITERIA\n\n")
	fmt.Fprintf(&b, "**Request:** %s\n", t.Request)
	fmt.Fprintf(&b, "**Effort:** %s | **Phase:** %s | **Iteration:** %d\n\n", t.Effort, t.Phase, t.Iteration)
	b.WriteString("| # | What Ideal Looks Like | Source | Capability | Status |\n")
	b.WriteString("|---|----------------------|--------|------------|--------|\n")
	for _, r := range t.Rows {
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s |\n",
			r.ID, DescriptionDisplay(r), r.Source, CapabilityDisplay(r), StatusDisplay(r.Status))
	}
	b.WriteString("\n" + Legend + "\n")
	return b.String()
}

// RenderLog returns the stored log entries, one per line.
func RenderLog(t *Table) string {
	var b strings.Builder
	for _, entry := range t.Log {
		b.WriteString(entry)
		b.WriteByte('\n')
	}
	return b.String()
}
