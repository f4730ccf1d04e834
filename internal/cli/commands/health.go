package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/QuangHuy54/IntelligentChatbot/internal/cli/ui"
)

var healthCmd = &cobra.Command{
	Use:          "health",
	Short:        "check that the server is up",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		apiClient, err := newClient()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		status, err := apiClient.Health(ctx)
		if err != nil {
			ui.PrintError("%s is unreachable: %v", apiClient.Server(), err)
			return fmt.Errorf("health check failed")
		}
		ui.PrintSuccess("%s is %s", apiClient.Server(), status.Status)
		return nil
	},
}
