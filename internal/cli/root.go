package cli

import (
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "isc",
	Short: "Ideal State Criteria tables",
	Long: "isc tracks progress toward an ideal state as a table of verifiable criteria.\n" +
		"Rows move PENDING → ACTIVE → DONE, or aside to ADJUSTED/BLOCKED; every change is logged.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if viper.GetBool("verbose") {
			log.SetOutput(cmd.ErrOrStderr())
		} else {
			log.SetOutput(io.Discard)
		}
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("dir", "", "data directory (default $ISC_DIR, then $PAI_DIR/MEMORY/Work)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log diagnostics to stderr")
	_ = viper.BindPFlag("dir", rootCmd.PersistentFlags().Lookup("dir"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(capabilityCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(phaseCmd)
	rootCmd.AddCommand(iterateCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(archivesCmd)
	rootCmd.AddCommand(uiCmd)
}

func initConfig() {
	viper.SetEnvPrefix("ISC")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	_ = viper.BindEnv("pai_dir", "PAI_DIR")
	_ = viper.BindEnv("home", "HOME")
	if home, err := os.UserHomeDir(); err == nil {
		viper.SetDefault("home", home)
	}
}
