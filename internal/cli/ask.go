package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var askOutputFile string

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a single question and print the answer",
	Long: `Ask a single question and print the answer.

The question runs through the full pipeline: notes and documents are
searched, the directory is queried when the question needs schedule or
contact data, and the answer is grounded in what was found.

Examples:
  shepherd ask "Who's serving this Sunday?"
  shepherd ask "What's Sarah's phone number?"
  shepherd ask "When is Mike blocked out?" -o answer.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askOutputFile, "output", "o", "", "write the answer to a file")
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := getAssistant()
	if err != nil {
		return err
	}

	ctx := context.Background()
	reply, err := a.HandleMessage(ctx, uuid.NewString(), tenantID, userName, args[0])
	if err != nil {
		return fmt.Errorf("answer question: %w", err)
	}

	if askOutputFile != "" {
		if err := os.WriteFile(askOutputFile, []byte(reply+"\n"), 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Printf("Answer written to %s\n", askOutputFile)
		return nil
	}

	fmt.Println(reply)
	return nil
}
