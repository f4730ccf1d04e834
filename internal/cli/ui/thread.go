package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss/tree"
	"github.com/mattn/go-runewidth"

	"github.com/QuangHuy54/IntelligentChatbot/internal/cli/types"
)

const (
	timeLayout       = "2006-01-02 15:04"
	titleColumnWidth = 40
	previewWidth     = 72
)

// RenderThreadList renders threads as aligned columns, most recent first.
func RenderThreadList(threads []types.Thread) string {
	if len(threads) == 0 {
		return Styles.Key.Render("No threads found")
	}

	idWidth := len("ID")
	for _, t := range threads {
		idWidth = max(idWidth, len(t.ID))
	}

	var b strings.Builder
	b.WriteString(Styles.Header.Render(fmt.Sprintf("%-*s", idWidth, "ID")))
	b.WriteString("  ")
	b.WriteString(Styles.Header.Render(runewidth.FillRight("TITLE", titleColumnWidth)))
	b.WriteString("  ")
	b.WriteString(Styles.Header.Render("UPDATED"))

	for _, t := range threads {
		title := t.Title
		if title == "" {
			title = "(untitled)"
		}
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("%-*s", idWidth, t.ID))
		b.WriteString("  ")
		b.WriteString(runewidth.FillRight(runewidth.Truncate(title, titleColumnWidth, "…"), titleColumnWidth))
		b.WriteString("  ")
		b.WriteString(Styles.Key.Render(formatTime(t.UpdatedAt)))
	}
	return b.String()
}

// RenderThread renders a thread and its messages as a tree. Images are shown
// as child nodes of the message that produced them.
func RenderThread(thread types.Thread, messages []types.ThreadMessage) string {
	title := thread.Title
	if title == "" {
		title = "(untitled)"
	}
	root := tree.Root(fmt.Sprintf("%s %s", Styles.Thread.Render(title), Styles.Key.Render("("+thread.ID+")")))

	if len(messages) == 0 {
		root.Child(Styles.Key.Render("(no messages)"))
		return root.String()
	}

	for _, m := range messages {
		node := tree.New().Root(fmt.Sprintf("%s %s %s",
			roleLabel(m.Role),
			Styles.Key.Render(formatTime(m.CreatedAt)),
			preview(m.Text),
		))
		for _, img := range m.Images {
			node.Child(formatKeyValue("image:", Styles.Image.Render(img)))
		}
		root.Child(node)
	}
	return root.String()
}

func roleLabel(role string) string {
	switch role {
	case "user":
		return Styles.User.Render("You")
	case "assistant":
		return Styles.Assistant.Render("Assistant")
	default:
		return Styles.Key.Render(role)
	}
}

// preview flattens text to one line of bounded display width
func preview(text string) string {
	flat := strings.Join(strings.Fields(text), " ")
	if flat == "" {
		return Styles.Key.Render("(empty)")
	}
	return runewidth.Truncate(flat, previewWidth, "…")
}

// formatKeyValue formats a key-value pair
func formatKeyValue(key, value string) string {
	return fmt.Sprintf("%s %s",
		Styles.Key.Render(key),
		value,
	)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}

// FormatUpload describes an upload result on one line per field
func FormatUpload(result types.UploadResult) string {
	lines := []string{
		formatKeyValue("Type:  ", result.Type),
		formatKeyValue("URL:   ", result.URL),
	}
	if result.Width != nil && result.Height != nil {
		lines = append(lines, formatKeyValue("Size:  ", fmt.Sprintf("%dx%d", *result.Width, *result.Height)))
	}
	return strings.Join(lines, "\n")
}
