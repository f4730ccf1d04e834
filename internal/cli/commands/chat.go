package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/QuangHuy54/IntelligentChatbot/internal/cli/tui"
	"github.com/QuangHuy54/IntelligentChatbot/internal/cli/ui"
)

var chatThreadID string

// chatCmd is the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "start an interactive chat",
	Long: `Start an interactive chat session with the assistant.

Features:
  • Streaming replies, generated charts shown as links
  • Multi-turn context kept for the whole session
  • /attach <file> uploads a spreadsheet or image for the next message`,
	Example: `  # Start interactive chat
  $ chatctl chat

  # Record the exchange in an existing thread
  $ chatctl chat --thread 3f1c2a...

  # Keyboard controls:
  • Enter sends the message
  • Esc quits the session`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatThreadID, "thread", "t", "", "Thread to record the conversation in")
	chatCmd.SilenceUsage = true
}

func runChat(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		ui.PrintError("unexpected argument: %s", args[0])
		fmt.Println("\nRun 'chatctl chat' to start interactive session.")
		return fmt.Errorf("invalid arguments")
	}

	apiClient, err := newClient()
	if err != nil {
		return err
	}

	program := tui.NewChatProgram(apiClient, chatThreadID)
	if err := program.Run(); err != nil {
		return fmt.Errorf("failed to run chat TUI: %w", err)
	}

	return nil
}
