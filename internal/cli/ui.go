package cli

import (
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/imkarma/isc/internal/tui"
)

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Open interactive table view",
	Long:  "Opens an interactive view of the current table. Rows can be moved between statuses and the view reloads when another process saves the table.",
	RunE:  runUI,
}

func runUI(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := os.MkdirAll(s.store.Dir(), 0755); err != nil {
		return fmt.Errorf("create %s: %w", s.store.Dir(), err)
	}

	changes, stop, err := tui.Watch(s.store.Path())
	if err != nil {
		// The view still works, it just won't pick up external saves.
		log.Printf("watch disabled: %v", err)
	} else {
		defer stop()
	}

	p := tea.NewProgram(tui.New(s.store, changes), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
