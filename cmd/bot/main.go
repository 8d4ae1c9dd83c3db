package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "coursebot",
	Short: "Telegram bot serving engineering course materials",
	Long: "Serves course files through inline menus, collects feedback and shared files, " +
		"and lets the owner broadcast announcements. Runs the bot when no subcommand is given.",
	SilenceUsage: true,
	RunE:         runServe,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
