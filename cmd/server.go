package cmd

import (
	"mzview/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the mzview HTTP server",
	Long:  `Start the HTTP server that serves the viewer UI and the run/report API.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
