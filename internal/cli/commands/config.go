package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/QuangHuy54/IntelligentChatbot/internal/cli/client"
	"github.com/QuangHuy54/IntelligentChatbot/internal/cli/config"
	"github.com/QuangHuy54/IntelligentChatbot/internal/cli/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "manage CLI configuration",
}

var setServerCmd = &cobra.Command{
	Use:   "set-server [url]",
	Short: "set the chatbot server address",
	Long: `Save the chatbot server address to ~/.chatctl/config.json.

If url is not provided you are prompted for it. The server is probed with a
health check before the address is saved.`,
	Example: `  $ chatctl config set-server http://localhost:8000
  $ chatctl config set-server`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSetServer,
}

var viewConfigCmd = &cobra.Command{
	Use:   "view",
	Short: "show the saved configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			ui.PrintError("failed to load config: %v", err)
			return fmt.Errorf("config load failed")
		}
		path, _ := config.GetConfigPath()
		ui.PrintBold("Server:  %s", cfg.Server)
		ui.PrintInfo("Config file: %s", path)
		return nil
	},
}

var skipProbe bool

func init() {
	setServerCmd.Flags().BoolVar(&skipProbe, "no-check", false, "Save without probing the server")
	setServerCmd.SilenceUsage = true

	configCmd.AddCommand(setServerCmd)
	configCmd.AddCommand(viewConfigCmd)
}

func runSetServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		ui.PrintError("failed to load config: %v", err)
		return fmt.Errorf("config load failed")
	}

	server := ""
	if len(args) > 0 {
		server = args[0]
	} else {
		prompt := &survey.Input{
			Message: "Server URL:",
			Default: cfg.Server,
		}
		if err := survey.AskOne(prompt, &server, survey.WithValidator(survey.Required)); err != nil {
			ui.PrintError("failed to read server: %v", err)
			return fmt.Errorf("input failed")
		}
	}

	apiClient, err := client.NewAPIClient(server)
	if err != nil {
		ui.PrintError("invalid server: %v", err)
		return fmt.Errorf("invalid server")
	}

	if !skipProbe {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		ui.PrintInfo("Connecting to %s...", apiClient.Server())
		if _, err := apiClient.Health(ctx); err != nil {
			ui.PrintErrorBox("Server Unreachable", err.Error())
			return fmt.Errorf("health check failed")
		}
	}

	cfg.Server = apiClient.Server()
	if err := cfg.Save(); err != nil {
		ui.PrintError("failed to save config: %v", err)
		return fmt.Errorf("config save failed")
	}

	configPath, _ := config.GetConfigPath()
	ui.PrintSuccessBox("✓ Server Saved", fmt.Sprintf(`Server:         %s
Config saved:   %s`, cfg.Server, configPath))
	return nil
}
