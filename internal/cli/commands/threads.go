package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/QuangHuy54/IntelligentChatbot/internal/cli/ui"
)

var threadsLimit int

var threadsCmd = &cobra.Command{
	Use:   "threads",
	Short: "browse recorded conversation threads",
	Example: `  $ chatctl threads list
  $ chatctl threads create "Q3 sales review"
  $ chatctl threads show 3f1c2a...`,
}

var threadsListCmd = &cobra.Command{
	Use:          "list",
	Short:        "list recent threads",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		apiClient, err := newClient()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		threads, err := apiClient.ListThreads(ctx, threadsLimit)
		if err != nil {
			ui.PrintError("failed to list threads: %v", err)
			return fmt.Errorf("list failed")
		}
		fmt.Println(ui.RenderThreadList(threads))
		return nil
	},
}

var threadsCreateCmd = &cobra.Command{
	Use:          "create [title]",
	Short:        "create an empty thread",
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		title := ""
		if len(args) > 0 {
			title = args[0]
		}
		apiClient, err := newClient()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		thread, err := apiClient.CreateThread(ctx, title)
		if err != nil {
			ui.PrintError("failed to create thread: %v", err)
			return fmt.Errorf("create failed")
		}
		ui.PrintSuccess("thread %s created", thread.ID)
		ui.PrintInfo("Run 'chatctl chat --thread %s' to use it.", thread.ID)
		return nil
	},
}

var threadsShowCmd = &cobra.Command{
	Use:          "show <id>",
	Short:        "show a thread and its messages",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		apiClient, err := newClient()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		thread, err := apiClient.GetThread(ctx, args[0])
		if err != nil {
			ui.PrintError("failed to get thread: %v", err)
			return fmt.Errorf("get failed")
		}
		messages, err := apiClient.ListMessages(ctx, args[0])
		if err != nil {
			ui.PrintError("failed to list messages: %v", err)
			return fmt.Errorf("get failed")
		}
		fmt.Println(ui.RenderThread(*thread, messages))
		return nil
	},
}

func init() {
	threadsListCmd.Flags().IntVarP(&threadsLimit, "limit", "l", 0, "Maximum number of threads (server default when 0)")

	threadsCmd.AddCommand(threadsListCmd)
	threadsCmd.AddCommand(threadsCreateCmd)
	threadsCmd.AddCommand(threadsShowCmd)
}
