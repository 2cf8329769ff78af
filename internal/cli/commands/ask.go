package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lvyanru/venue-chat/internal/cli/ui"
	"github.com/lvyanru/venue-chat/internal/domain"
	"github.com/lvyanru/venue-chat/internal/session"
)

const askWidth = 80

var askNew bool

// askCmd is the ask command
var askCmd = &cobra.Command{
	Use:   "ask <message>",
	Short: "send one message and print the reply",
	Long: `Send a single message to the assistant and print the reply.

The message continues the saved conversation unless --new is given. Press
Ctrl+C to stop a reply in progress; the partial reply is kept.`,
	Example: `  # Continue the saved conversation
  $ venuectl ask "any rock bars near me?"

  # Start over
  $ venuectl ask --new "jazz tonight in Milano"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askNew, "new", false, "Start a new conversation")

	askCmd.SilenceUsage = true
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return startupFailed(err)
	}
	ctx := cmd.Context()

	if askNew {
		if err := a.session.Clear(ctx); err != nil {
			ui.PrintWarning("could not delete the saved conversation: %v", err)
		}
	} else if err := a.session.Restore(ctx); err != nil {
		ui.PrintWarning("could not restore the previous conversation: %v", err)
	}

	style := a.cfg.Chat.MarkdownStyle
	if color.NoColor {
		style = "notty"
	}
	printer := &replyPrinter{
		out:      cmd.OutOrStdout(),
		status:   cmd.ErrOrStderr(),
		renderer: ui.NewRenderer(askWidth, style),
		live:     !color.NoColor,
	}
	a.session.SetObserver(printer)

	// ctx is cancelled on Ctrl+C; the turn then finalizes as interrupted
	err = a.session.Send(ctx, strings.Join(args, " "))
	printer.clearStatus()

	switch {
	case err == nil:
		return nil
	case domain.IsProfileIncomplete(err):
		fmt.Fprintln(cmd.ErrOrStderr(), "\nRun 'venuectl profile edit' to complete your profile.")
		return fmt.Errorf("profile incomplete")
	case domain.IsServerError(err), domain.IsTransportError(err):
		// already printed as part of the reply
		return fmt.Errorf("request failed")
	}
	ui.PrintDomainError(err)
	return fmt.Errorf("request failed")
}

// replyPrinter prints assistant entries as the session appends them
type replyPrinter struct {
	session.NopObserver

	out      io.Writer
	status   io.Writer
	renderer *ui.Renderer
	live     bool

	statusShown bool
}

var statusColor = color.New(color.Faint)

// Progress shows a one-line typing indicator on terminals
func (p *replyPrinter) Progress(text string) {
	if !p.live {
		return
	}
	if text == "" {
		p.clearStatus()
		return
	}
	statusColor.Fprintf(p.status, "\r\033[K… typing (%d chars)", len([]rune(text)))
	p.statusShown = true
}

// MessageAppended prints every entry but the user's own message
func (p *replyPrinter) MessageAppended(_ int, msg domain.Message) {
	if msg.Role == domain.RoleUser {
		return
	}
	p.clearStatus()
	fmt.Fprintln(p.out, p.renderer.Message(msg))
	fmt.Fprintln(p.out)
}

func (p *replyPrinter) clearStatus() {
	if p.statusShown {
		fmt.Fprint(p.status, "\r\033[K")
		p.statusShown = false
	}
}
