package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lvyanru/venue-chat/internal/cli/ui"
)

const version = "0.1.0"

// configFile is the --config flag shared by every command
var configFile string

// rootCmd is the root command
var rootCmd = &cobra.Command{
	Use:     "venuectl",
	Short:   "Venue recommendation chat CLI",
	Version: version,
	Long: `A command-line client for the venue recommendation assistant.

Chat with the assistant to find live music venues, book tables, order rides
and buy presale tickets. Replies stream in as they are written, venue lists
can be expanded in place and the conversation survives restarts.`,
	Example: `  # Tell the assistant where you are and what you like
  $ venuectl profile edit

  # Start interactive chat
  $ venuectl chat

  # Ask a single question
  $ venuectl ask "jazz near Navigli tonight"

  # Show or forget the saved conversation
  $ venuectl history
  $ venuectl history clear`,
}

// Execute executes the root command
func Execute(ctx context.Context) error {
	rootCmd.SetVersionTemplate(formatVersion())
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	// Disable default completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (default ~/.venuectl/config.yaml)")

	// Add subcommands
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(profileCmd)

	// Set custom template with bold uppercase headers
	rootCmd.SetUsageTemplate(usageTemplate())
	rootCmd.SetHelpTemplate(usageTemplate())
}

func usageTemplate() string {
	return `{{if .Long}}{{.Long}}

{{end}}` + ui.Styles.Bold.Render("USAGE") + `
  {{.UseLine}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}

{{if .HasExample}}` + ui.Styles.Bold.Render("EXAMPLES") + `
{{.Example}}

{{end}}{{if .HasAvailableSubCommands}}` + ui.Styles.Bold.Render("COMMANDS") + `{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}

{{end}}{{if .HasAvailableLocalFlags}}` + ui.Styles.Bold.Render("OPTIONS") + `
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}{{if .HasAvailableInheritedFlags}}` + ui.Styles.Bold.Render("GLOBAL OPTIONS") + `
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}{{if .HasAvailableSubCommands}}Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`
}

// formatVersion formats the version output
func formatVersion() string {
	return fmt.Sprintf("venuectl version %s\n", version)
}
