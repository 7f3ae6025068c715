// Package commands implements the taverley CLI commands using cobra.
package commands

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version is set at build time
	Version = "0.2.0"
)

var rootCmd = &cobra.Command{
	Use:   "taverley",
	Short: "Skilling task rotation for idle accounts",
	Long: `Taverley rotates a bot account through a roster of skilling tasks,
traveling between training areas and switching whenever the timer fires.

Configure tasks in taverley.yaml and let the rotation run.`,
	Version: Version,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to taverley.yaml (default: search . and ~/.config/taverley)")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable verbose output")
}
