package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/QuangHuy54/IntelligentChatbot/internal/cli/client"
	"github.com/QuangHuy54/IntelligentChatbot/internal/cli/config"
	"github.com/QuangHuy54/IntelligentChatbot/internal/cli/ui"
)

const version = "0.1.0"

// serverOverride takes precedence over the saved server for one invocation
var serverOverride string

// rootCmd is the root command
var rootCmd = &cobra.Command{
	Use:     "chatctl",
	Short:   "Chatbot CLI",
	Version: version,
	Long: `A command-line client for the chatbot server. Chat with the spreadsheet
and image assistant, upload files and browse recorded threads.`,
	Example: `  # Point the CLI at a server
  $ chatctl config set-server http://localhost:8000

  # Upload a spreadsheet, then chat about it
  $ chatctl upload sales.xlsx
  $ chatctl chat

  # Replay a scripted conversation
  $ chatctl send -f conversation.yaml

  # Get help on a specific command
  $ chatctl threads --help`,
}

// Execute executes the root command
func Execute() error {
	rootCmd.SetVersionTemplate(formatVersion())
	return rootCmd.Execute()
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVarP(&serverOverride, "server", "s", "", "Server address (overrides saved config)")

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(threadsCmd)

	rootCmd.SetUsageTemplate(usageTemplate())
	rootCmd.SetHelpTemplate(usageTemplate())
}

// newClient builds an API client for the configured server
func newClient() (*client.APIClient, error) {
	server := serverOverride
	if server == "" {
		cfg, err := config.Load()
		if err != nil {
			ui.PrintError("failed to load config: %v", err)
			return nil, fmt.Errorf("config load failed")
		}
		server = cfg.Server
	}

	apiClient, err := client.NewAPIClient(server)
	if err != nil {
		ui.PrintError("failed to create client: %v", err)
		return nil, fmt.Errorf("client creation failed")
	}
	return apiClient, nil
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

{{end}}{{if .HasAvailableSubCommands}}Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`
}

// formatVersion formats the version output
func formatVersion() string {
	return fmt.Sprintf("chatctl version %s\n", version)
}
