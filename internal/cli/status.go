package cli

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"rollcall.app/bot/internal/http/dto"
)

// StatusCmd returns the status command.
func StatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status [chat-id]",
		Short: "Show a chat's check-in state for a day",
		Long: `Display the reminder count and the responded/unresponded split for one
chat. Defaults to the current day in the daemon's reference timezone.

Examples:
  rollcall status -- -1001234567890
  rollcall status --date 2026-08-27 -- -1001234567890`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chatID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid chat id %q", args[0])
			}
			addr, _ := cmd.Flags().GetString("addr")
			key, _ := cmd.Flags().GetString("admin-key")
			date, _ := cmd.Flags().GetString("date")

			path := fmt.Sprintf("/admin/chats/%d/status", chatID)
			if date != "" {
				path += "?date=" + url.QueryEscape(date)
			}

			var resp dto.ChatStatusResponse
			if err := newAPIClient(addr, key).do("GET", path, &resp); err != nil {
				return fmt.Errorf("failed to fetch status: %w", err)
			}

			displayChatStatus(resp)
			return nil
		},
	}

	cmd.Flags().StringP("date", "d", "", "Day to inspect (YYYY-MM-DD, daemon timezone)")

	return cmd
}

func displayChatStatus(s dto.ChatStatusResponse) {
	fmt.Printf("Chat %d on %s\n\n", s.ChatID, s.Date)

	fmt.Printf("Reminders sent: %d\n", s.ReminderCount)
	if s.LastReminder != nil {
		fmt.Printf("Last reminder:  %s\n", *s.LastReminder)
	}
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "USER\tSTATE")
	for _, id := range s.Responded {
		fmt.Fprintf(w, "%d\t%s\n", id, color.New(color.FgGreen).Sprint("responded"))
	}
	for _, id := range s.Unresponded {
		fmt.Fprintf(w, "%d\t%s\n", id, color.New(color.FgYellow).Sprint("pending"))
	}
	w.Flush()

	if len(s.Unresponded) == 0 {
		fmt.Printf("\n%s everyone has responded\n", color.New(color.FgGreen).Sprint("✓"))
	}
}
