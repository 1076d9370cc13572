package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/imkarma/isc/internal/config"
	"github.com/imkarma/isc/internal/criteria"
)

var (
	showOutput    string
	summaryOutput string
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the current criteria table",
	RunE:  runShow,
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the evolution log",
	RunE:  runLog,
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show a status summary",
	RunE:  runSummary,
}

func init() {
	showCmd.Flags().StringVarP(&showOutput, "output", "o", "", "Output format: text, markdown, raw (default from isc.yaml)")
	summaryCmd.Flags().StringVarP(&summaryOutput, "output", "o", "text", "Output format: text, raw")
}

func runShow(cmd *cobra.Command, args []string) error {
	s, t, err := mustTable()
	if err != nil {
		return err
	}
	defer s.Close()

	format := showOutput
	if format == "" {
		format = s.cfg.OutputFormat()
	}

	out := cmd.OutOrStdout()
	switch format {
	case config.OutputRaw, "json":
		return printJSON(out, t)
	case config.OutputMarkdown:
		fmt.Fprint(out, criteria.RenderTable(t))
	case config.OutputText:
		fmt.Fprintln(out, renderStyled(t))
	default:
		return fmt.Errorf("--output must be text, markdown, or raw, got %q: %w", format, criteria.ErrInvalidArgument)
	}
	return nil
}

func runLog(cmd *cobra.Command, args []string) error {
	s, t, err := mustTable()
	if err != nil {
		return err
	}
	defer s.Close()

	out := cmd.OutOrStdout()
	fmt.Fprint(out, "## Evolution Log\n\n")
	fmt.Fprint(out, criteria.RenderLog(t))
	return nil
}

// summaryView is the raw summary output: counts plus phase and iteration.
type summaryView struct {
	criteria.Summary
	Phase     string `json:"phase"`
	Iteration int    `json:"iteration"`
}

func runSummary(cmd *cobra.Command, args []string) error {
	s, t, err := mustTable()
	if err != nil {
		return err
	}
	defer s.Close()

	sum := criteria.Summarize(t)
	out := cmd.OutOrStdout()
	switch summaryOutput {
	case config.OutputRaw, "json":
		return printJSON(out, summaryView{Summary: sum, Phase: t.Phase, Iteration: t.Iteration})
	case config.OutputText:
	default:
		return fmt.Errorf("--output must be text or raw, got %q: %w", summaryOutput, criteria.ErrInvalidArgument)
	}

	fmt.Fprintf(out, "%sISC Summary: %s%s\n", colorBold, t.Request, colorReset)
	fmt.Fprintf(out, "Phase: %s | Iteration: %d\n", t.Phase, t.Iteration)
	fmt.Fprintf(out, "Total: %d | Pending: %d | Active: %d\n", sum.Total, sum.Pending, sum.Active)
	fmt.Fprintf(out, "Done: %s%d%s | Adjusted: %s%d%s | Blocked: %s%d%s\n",
		colorGreen, sum.Done, colorReset,
		colorYellow, sum.Adjusted, colorReset,
		colorRed, sum.Blocked, colorReset)
	fmt.Fprintf(out, "Parallelizable: %s%d%s\n", colorCyan, sum.Parallelizable, colorReset)
	return nil
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var (
	clrGreen  = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	clrYellow = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#F59E0B"}
	clrRed    = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"}
	clrBlue   = lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#60A5FA"}
	clrWhite  = lipgloss.AdaptiveColor{Light: "#333333", Dark: "#DDDDDD"}
	clrDim    = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#555555"}

	titleStyle  = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(clrDim)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

var statusColors = map[criteria.RowStatus]lipgloss.AdaptiveColor{
	criteria.StatusPending:  clrWhite,
	criteria.StatusActive:   clrBlue,
	criteria.StatusDone:     clrGreen,
	criteria.StatusAdjusted: clrYellow,
	criteria.StatusBlocked:  clrRed,
}

// renderStyled draws the table for a terminal.
func renderStyled(t *criteria.Table) string {
	rows := make([][]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		status := lipgloss.NewStyle().Foreground(statusColors[r.Status]).Render(criteria.StatusDisplay(r.Status))
		rows = append(rows, []string{
			strconv.Itoa(r.ID),
			criteria.DescriptionDisplay(r),
			string(r.Source),
			criteria.CapabilityDisplay(r),
			status,
		})
	}

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("#", "What Ideal Looks Like", "Source", "Capability", "Status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	header := titleStyle.Render("🎯 IDEAL STATE CRITERIA") + "\n" +
		fmt.Sprintf("Request: %s\n", t.Request) +
		dimStyle.Render(fmt.Sprintf("Effort: %s | Phase: %s | Iteration: %d", t.Effort, t.Phase, t.Iteration))
	return header + "\n" + tbl.String() + "\n" + dimStyle.Render(criteria.Legend)
}
