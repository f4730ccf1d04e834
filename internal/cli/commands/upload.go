package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/QuangHuy54/IntelligentChatbot/internal/cli/ui"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "upload a spreadsheet or image",
	Long: `Upload a file to the server's upload directory.

Spreadsheets (xlsx, xls, csv) and images (png, jpg, jpeg, gif, webp) are
recognized; the printed URL can be attached to chat messages.`,
	Example: `  $ chatctl upload sales.xlsx
  $ chatctl upload chart.png`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runUpload,
}

func runUpload(cmd *cobra.Command, args []string) error {
	path := args[0]
	f, err := os.Open(path)
	if err != nil {
		ui.PrintError("failed to open file: %v", err)
		return fmt.Errorf("open failed")
	}
	defer f.Close()

	apiClient, err := newClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	result, err := apiClient.Upload(ctx, filepath.Base(path), f)
	if err != nil {
		ui.PrintErrorBox("Upload Failed", err.Error())
		return fmt.Errorf("upload failed")
	}

	ui.PrintSuccessBox("✓ Uploaded "+filepath.Base(path), ui.FormatUpload(*result))
	return nil
}
