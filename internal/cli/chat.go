package cli

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/avandyck/shepherd/internal/config"
	"github.com/avandyck/shepherd/internal/tui"
)

var chatSession string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Start an interactive chat session with the assistant.

Each run opens a fresh conversation unless --session names an existing
one. Logging an interaction inside the chat always starts a new topic.

Examples:
  shepherd chat
  shepherd chat --memory
  shepherd chat --session standup`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatSession, "session", "", "resume a named session instead of starting fresh")
}

func runChat(cmd *cobra.Command, args []string) error {
	// Stderr log lines would tear the chat display apart.
	if closeLogs != nil {
		_ = closeLogs()
	}
	logger, closeLogs = config.SetupFileLogger(cfg.LogFile, cfg.LogLevel)
	slog.SetDefault(logger)

	a, err := getAssistant()
	if err != nil {
		return err
	}

	sessionID := chatSession
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	return tui.Run(a, sessionID, tenantID, userName)
}
