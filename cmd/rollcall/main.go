package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rollcall.app/bot/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rollcall",
		Short: "Admin CLI for the rollcall check-in daemon",
		Long: `rollcall drives a running check-in daemon over its admin API: fire
triggers out of schedule and inspect a chat's state for a day.`,
	}

	rootCmd.PersistentFlags().String("addr", "http://localhost:8080", "Base URL of the rollcall daemon")
	rootCmd.PersistentFlags().String("admin-key", "", "Admin API key (falls back to ADMIN_API_KEY)")

	rootCmd.AddCommand(cli.TriggerCmd())
	rootCmd.AddCommand(cli.StatusCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
