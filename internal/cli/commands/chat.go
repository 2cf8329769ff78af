package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lvyanru/venue-chat/internal/cli/tui"
	"github.com/lvyanru/venue-chat/internal/cli/ui"
)

// chatCmd is the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "start interactive chat with the assistant",
	Long: `Start an interactive chat session with the venue assistant.

Features:
  • Replies stream in as they are written
  • Venue lists, ride bookings and confirmations rendered inline
  • The conversation is saved and restored on the next start`,
	Example: `  # Start interactive chat
  $ venuectl chat

  # Keyboard controls:
  • Enter sends the message
  • Esc stops a reply in progress, or quits when idle
  • /more expands the latest venue list, /book N books venue N
  • /clear starts a new conversation`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.SilenceUsage = true
}

func runChat(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return startupFailed(err)
	}

	ctx := cmd.Context()
	if err := a.session.Restore(ctx); err != nil {
		// a broken snapshot must not lock the user out
		ui.PrintWarning("could not restore the previous conversation: %v", err)
		a.logger.Warn("snapshot restore failed", "error", err)
	}

	program := tui.NewChatProgram(ctx, a.session, a.cfg.Chat.MarkdownStyle)
	if err := program.Run(ctx); err != nil {
		return fmt.Errorf("failed to run chat TUI: %w", err)
	}

	return nil
}
