package cli

import (
	"fmt"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/imkarma/isc/internal/store"
)

var archivesJSON bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Archive and clear the current table",
	RunE:  runClear,
}

var archivesCmd = &cobra.Command{
	Use:   "archives",
	Short: "List archived tables",
	RunE:  runArchives,
}

func init() {
	archivesCmd.Flags().BoolVar(&archivesJSON, "json", false, "Output JSON")
}

func runClear(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	out := cmd.OutOrStdout()
	path, err := s.store.ArchiveAndClear()
	if err != nil {
		return err
	}
	if path == "" {
		fmt.Fprintln(out, "No current ISC to clear.")
		return nil
	}
	fmt.Fprintf(out, "Archived to: %s\n", path)
	fmt.Fprintln(out, "Current ISC cleared.")
	return nil
}

func runArchives(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	entries, err := listArchives(s.store)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if archivesJSON {
		return printJSON(out, entries)
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "No archives.")
		return nil
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(out)
	tw.AppendHeader(table.Row{"#", "Archived", "Request", "Effort", "Phase", "Iter", "Done", "File"})
	for _, e := range entries {
		archived := ""
		if !e.ArchivedAt.IsZero() {
			archived = e.ArchivedAt.Local().Format("2006-01-02 15:04")
		}
		tw.AppendRow(table.Row{e.ID, archived, e.Request, e.Effort, e.Phase, e.Iteration,
			fmt.Sprintf("%d/%d", e.Done, e.Rows), filepath.Base(e.Path)})
	}
	tw.Render()
	return nil
}

// listArchives prefers the catalog and falls back to the archive files
// on disk when the catalog is disabled.
func listArchives(s *store.Store) ([]store.ArchiveEntry, error) {
	if c := s.Catalog(); c != nil {
		return c.List()
	}
	paths, err := s.Archives()
	if err != nil {
		return nil, err
	}
	entries := make([]store.ArchiveEntry, 0, len(paths))
	for i := len(paths) - 1; i >= 0; i-- {
		entries = append(entries, store.ArchiveEntry{Path: paths[i]})
	}
	return entries, nil
}
