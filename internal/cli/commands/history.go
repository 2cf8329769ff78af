package commands

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lvyanru/venue-chat/internal/cli/ui"
)

var historyJSON bool

// historyCmd is the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "show the saved conversation",
	Long: `Show the conversation saved by the last chat or ask command.

The saved conversation holds the messages, the backend session ID and
whether your profile was already sent.`,
	Example: `  # Print the transcript
  $ venuectl history

  # Dump the raw snapshot
  $ venuectl history --json

  # Forget the conversation
  $ venuectl history clear`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

// historyClearCmd is the history clear command
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "forget the saved conversation",
	Args:  cobra.NoArgs,
	RunE:  runHistoryClear,
}

func init() {
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Print the raw snapshot as JSON")
	historyCmd.AddCommand(historyClearCmd)

	historyCmd.SilenceUsage = true
	historyClearCmd.SilenceUsage = true
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return startupFailed(err)
	}

	if err := a.session.Restore(cmd.Context()); err != nil {
		ui.PrintError("failed to load the saved conversation: %v", err)
		return fmt.Errorf("history load failed")
	}

	if historyJSON {
		data, err := sonic.ConfigStd.MarshalIndent(a.session.Snapshot(), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal snapshot: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	messages := a.session.Messages()
	if len(messages) == 0 {
		ui.PrintInfo("No saved conversation.")
		return nil
	}

	style := a.cfg.Chat.MarkdownStyle
	if color.NoColor {
		style = "notty"
	}
	renderer := ui.NewRenderer(askWidth, style)
	fmt.Fprintln(cmd.OutOrStdout(), renderer.Transcript(messages))
	fmt.Fprintln(cmd.OutOrStdout())

	if id := a.session.SessionID(); id != "" {
		ui.PrintInfo("Session %s · %d messages", id, len(messages))
	}
	return nil
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return startupFailed(err)
	}

	if err := a.session.Clear(cmd.Context()); err != nil {
		ui.PrintError("failed to delete the saved conversation: %v", err)
		return fmt.Errorf("history clear failed")
	}

	ui.PrintSuccess("Conversation cleared. The next message starts a new session.")
	return nil
}
