package main

import (
	"fmt"
	"os"

	"github.com/danmuck/synctrack/internal/observability"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

func main() {
	observability.InitLogger("synctrack")

	rootCmd := &cobra.Command{
		Use:   "synctrack",
		Short: "Sync-tracker client that mirrors a controller's playback row and tracks",
		Long: `synctrack connects to a sync-tracker controller, requests the configured
tracks and follows the controller's row and pause state.

Examples:
synctrack run --config synctrack.toml
synctrack run --address localhost:1338 --track camera:x --track camera:y
synctrack version`,
		SilenceUsage: true,
	}
	rootCmd.AddCommand(newRunCommand(), newVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "synctrack: %v\n", err)
		os.Exit(1)
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the client version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
