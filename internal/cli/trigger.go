package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"rollcall.app/bot/internal/http/dto"
)

// TriggerCmd returns the trigger command.
func TriggerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trigger",
		Short: "Fire a check-in trigger out of schedule",
		Long: `Enqueue an opening or follow-up trigger immediately instead of waiting
for the cron schedule. The daemon processes it like a scheduled one, so
the reminder cap and the responded set still apply.`,
	}

	cmd.AddCommand(triggerOpeningCmd())
	cmd.AddCommand(triggerFollowUpCmd())

	return cmd
}

func triggerOpeningCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "opening",
		Short: "Post the opening prompt to every tracked chat",
		RunE: func(cmd *cobra.Command, args []string) error {
			return fireTrigger(cmd, "/admin/trigger/opening")
		},
	}
}

func triggerFollowUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "followup",
		Short: "Remind participants who have not responded today",
		RunE: func(cmd *cobra.Command, args []string) error {
			return fireTrigger(cmd, "/admin/trigger/followup")
		},
	}
}

func fireTrigger(cmd *cobra.Command, path string) error {
	addr, _ := cmd.Flags().GetString("addr")
	key, _ := cmd.Flags().GetString("admin-key")

	var resp dto.TriggerResponse
	if err := newAPIClient(addr, key).do("POST", path, &resp); err != nil {
		return fmt.Errorf("failed to enqueue trigger: %w", err)
	}

	fmt.Printf("%s %s trigger enqueued\n", color.New(color.FgGreen).Sprint("✓"), resp.Kind)
	return nil
}
