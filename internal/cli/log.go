package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var logCmd = &cobra.Command{
	Use:   "log <note>",
	Short: "Log an interaction note",
	Long: `Log an interaction note without opening a chat session.

The note is summarized, structured facts are extracted, and mentioned
people are linked to the roster. New names create roster entries.

Examples:
  shepherd log "Talked with Sarah, her mom is recovering well"
  shepherd log "Coffee with Mike, he started a new job at the hospital"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLog,
}

func runLog(cmd *cobra.Command, args []string) error {
	a, err := getAssistant()
	if err != nil {
		return err
	}

	note := strings.Join(args, " ")
	if !strings.HasPrefix(strings.ToLower(note), "log") {
		note = "Log: " + note
	}

	reply, err := a.HandleMessage(context.Background(), uuid.NewString(), tenantID, userName, note)
	if err != nil {
		return fmt.Errorf("log note: %w", err)
	}
	fmt.Println(reply)
	return nil
}
