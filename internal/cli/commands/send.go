package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/QuangHuy54/IntelligentChatbot/internal/cli/loader"
	"github.com/QuangHuy54/IntelligentChatbot/internal/cli/types"
	"github.com/QuangHuy54/IntelligentChatbot/internal/cli/ui"
)

var (
	sendFile     string
	sendThreadID string
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "send a scripted conversation and print the reply",
	Long: `Send a conversation loaded from a YAML file and stream the reply to stdout.

The file lists messages with optional file and image URLs:

  messages:
    - content: Summarize the sales sheet
      files: [http://localhost:8000/uploads/sales.xlsx]`,
	Example: `  $ chatctl send -f conversation.yaml
  $ chatctl send -f conversation.yaml --thread 3f1c2a...`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runSend,
}

func init() {
	sendCmd.Flags().StringVarP(&sendFile, "file", "f", "", "Conversation YAML file (required)")
	sendCmd.Flags().StringVarP(&sendThreadID, "thread", "t", "", "Thread to record the exchange in (overrides the file)")
	_ = sendCmd.MarkFlagRequired("file")
}

func runSend(cmd *cobra.Command, args []string) error {
	conv, err := loader.LoadFromFile(sendFile)
	if err != nil {
		ui.PrintError("failed to load %s: %v", sendFile, err)
		return fmt.Errorf("load failed")
	}
	req := conv.ToChatRequest()
	if sendThreadID != "" {
		req.ThreadID = sendThreadID
	}

	apiClient, err := newClient()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Println(ui.ConversationBanner(apiClient.Server(), req))

	eventCh, errCh, err := apiClient.ChatStreaming(ctx, req)
	if err != nil {
		ui.PrintErrorBox("Chat Failed", err.Error())
		return fmt.Errorf("chat failed")
	}

	var last types.StreamEvent
	for ev := range eventCh {
		last = ev
		switch ev.Type {
		case types.EventTextDelta:
			fmt.Print(ev.TextDelta)
		case types.EventImage:
			fmt.Println()
			color.Cyan("🖼  %s", ev.Image)
		case types.EventFinish:
			fmt.Println()
		case types.EventError:
			fmt.Println()
			ui.PrintError("%s", ev.Error)
		}
	}
	if err := <-errCh; err != nil {
		ui.PrintError("stream failed: %v", err)
		return fmt.Errorf("stream failed")
	}

	switch last.Type {
	case types.EventFinish:
		return nil
	case types.EventError:
		return fmt.Errorf("assistant reported an error")
	default:
		ui.PrintWarning("stream ended without a finish event")
		return fmt.Errorf("incomplete stream")
	}
}
