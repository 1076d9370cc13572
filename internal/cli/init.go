package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/imkarma/isc/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the data directory",
	Long:  "Creates the data directory with a default isc.yaml.",
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	dir := dataDir()
	cfgPath := config.Path(dir)

	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("already initialized (%s exists)", cfgPath)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	if err := config.Save(cfgPath, config.DefaultConfig()); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	fmt.Fprintf(out, "Initialized %s\n", dir)
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  1. Run: isc create -r \"what you want\"")
	fmt.Fprintln(out, "  2. Run: isc add -d \"what ideal looks like\" -s EXPLICIT")
	fmt.Fprintln(out, "  3. Run: isc show")
	return nil
}
