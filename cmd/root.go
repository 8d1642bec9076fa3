package cmd

import (
	"fmt"
	"os"

	"mzview/server"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mzview",
	Short: "mzview is an mzML chromatogram viewer service.",
	Long: `mzview loads mzML mass-spectrometry files, derives total-ion and
extracted-ion chromatograms, and renders PDF/Excel reports. Running it
without a subcommand starts the HTTP server.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
