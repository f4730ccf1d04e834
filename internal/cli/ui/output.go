package ui

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/QuangHuy54/IntelligentChatbot/internal/cli/types"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
	boldColor    = color.New(color.Bold)
)

// PrintSuccess prints a success message
func PrintSuccess(format string, args ...interface{}) {
	successColor.Printf("✓ %s\n", fmt.Sprintf(format, args...))
}

// PrintError prints an error message
func PrintError(format string, args ...interface{}) {
	errorColor.Printf("✗ %s\n", fmt.Sprintf(format, args...))
}

// PrintWarning prints a warning message
func PrintWarning(format string, args ...interface{}) {
	warningColor.Printf("⚠ %s\n", fmt.Sprintf(format, args...))
}

// PrintInfo prints an info message
func PrintInfo(format string, args ...interface{}) {
	infoColor.Printf("ℹ %s\n", fmt.Sprintf(format, args...))
}

// PrintBold prints a bold message
func PrintBold(format string, args ...interface{}) {
	boldColor.Println(fmt.Sprintf(format, args...))
}

// ConversationBanner summarizes where a scripted conversation is sent.
func ConversationBanner(server string, req types.ChatRequest) string {
	lines := []string{
		Styles.Thread.Render("📊  Spreadsheet & Image Assistant"),
		"",
		formatKeyValue("Server:  ", server),
		formatKeyValue("Messages:", fmt.Sprintf("%d", len(req.Messages))),
	}
	if n := countAttachments(req); n > 0 {
		lines = append(lines, formatKeyValue("Files:   ", fmt.Sprintf("%d", n)))
	}
	if req.ThreadID != "" {
		lines = append(lines, formatKeyValue("Thread:  ", req.ThreadID))
	}
	return Styles.Banner.Render(strings.Join(lines, "\n"))
}

func countAttachments(req types.ChatRequest) int {
	n := 0
	for _, m := range req.Messages {
		n += len(m.Attachments)
	}
	return n
}

// PrintSuccessBox prints a success message in a box
func PrintSuccessBox(title, content string) {
	fmt.Println(Styles.SuccessBox.Render(successColor.Sprint(title) + "\n\n" + content))
}

// PrintErrorBox prints an error message in a box
func PrintErrorBox(title, content string) {
	fmt.Println(Styles.ErrorBox.Render(errorColor.Sprint(title) + "\n\n" + content))
}
