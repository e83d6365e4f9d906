package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var correctCmd = &cobra.Command{
	Use:   "correct <evidence-id> <correction>",
	Short: "Attach a correction to a logged note",
	Long: `Attach a correction to a logged note. The original text and
extracted facts stay untouched; the correction supersedes them when
the note is shown.

Example:
  shepherd correct 3f2a... "Her mom is recovering, not her sister"`,
	Args: cobra.ExactArgs(2),
	RunE: runCorrect,
}

func runCorrect(cmd *cobra.Command, args []string) error {
	a, err := getAssistant()
	if err != nil {
		return err
	}
	if err := a.LogFactCorrection(context.Background(), tenantID, args[0], args[1]); err != nil {
		return fmt.Errorf("attach correction: %w", err)
	}
	fmt.Println("Correction attached.")
	return nil
}
