package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avandyck/shepherd/internal/dates"
	"github.com/avandyck/shepherd/internal/models"
)

var followupsAll bool

var followupsCmd = &cobra.Command{
	Use:   "followups",
	Short: "List and manage follow-up reminders",
	Long: `List pending follow-up reminders, oldest due date first.

Examples:
  shepherd followups
  shepherd followups --all
  shepherd followups done <id>
  shepherd followups cancel <id>`,
	Args: cobra.NoArgs,
	RunE: runFollowups,
}

var followupsDoneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Mark a follow-up as completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setFollowupStatus(args[0], models.FollowUpDone, "completed")
	},
}

var followupsCancelCmd = &cobra.Command{
	Use:   "cancel <id>",
	Short: "Cancel a follow-up",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setFollowupStatus(args[0], models.FollowUpCancelled, "cancelled")
	},
}

func init() {
	followupsCmd.Flags().BoolVar(&followupsAll, "all", false, "include completed and cancelled follow-ups")
	followupsCmd.AddCommand(followupsDoneCmd)
	followupsCmd.AddCommand(followupsCancelCmd)
}

func runFollowups(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	statuses := []models.FollowUpStatus{models.FollowUpPending}
	if followupsAll {
		statuses = append(statuses, models.FollowUpDone, models.FollowUpCancelled)
	}

	total := 0
	for _, status := range statuses {
		items, err := backend.ListFollowUps(ctx, tenantID, status)
		if err != nil {
			return fmt.Errorf("list follow-ups: %w", err)
		}
		for _, f := range items {
			name := "(unlinked)"
			if f.EntityID != "" {
				if entity, err := backend.GetEntity(ctx, tenantID, f.EntityID); err == nil {
					name = entity.DisplayName
				}
			}
			fmt.Printf("%s  [%s] %s: %s (due %s)\n", f.ID, status, name, f.Topic, dates.FormatDay(f.DueDate))
			total++
		}
	}

	if total == 0 {
		fmt.Println("No follow-ups.")
	}
	return nil
}

func setFollowupStatus(id string, status models.FollowUpStatus, verb string) error {
	if err := backend.SetFollowUpStatus(context.Background(), tenantID, id, status); err != nil {
		return fmt.Errorf("update follow-up: %w", err)
	}
	fmt.Printf("Follow-up %s %s.\n", id, verb)
	return nil
}
