package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/QuangHuy54/IntelligentChatbot/internal/cli/types"
)

func TestRenderThreadList(t *testing.T) {
	assert.Contains(t, RenderThreadList(nil), "No threads found")

	out := RenderThreadList([]types.Thread{
		{ID: "t1", Title: "Quarterly sales", UpdatedAt: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)},
		{ID: "t2"},
	})
	assert.Contains(t, out, "Quarterly sales")
	assert.Contains(t, out, "(untitled)")
	assert.Contains(t, out, "t2")
}

func TestRenderThread(t *testing.T) {
	out := RenderThread(types.Thread{ID: "t1", Title: "Sales"}, []types.ThreadMessage{
		{Role: "user", Text: "Plot\nrevenue"},
		{Role: "assistant", Text: "Here it is", Images: []string{"http://localhost:8000/outputs/a.png"}},
	})
	assert.Contains(t, out, "Sales")
	assert.Contains(t, out, "Plot revenue")
	assert.Contains(t, out, "http://localhost:8000/outputs/a.png")

	assert.Contains(t, RenderThread(types.Thread{ID: "t2"}, nil), "(no messages)")
}

func TestFormatUpload(t *testing.T) {
	w, h := 640, 480
	out := FormatUpload(types.UploadResult{Type: "image", URL: "http://x/uploads/a.png", Width: &w, Height: &h})
	assert.Contains(t, out, "640x480")

	out = FormatUpload(types.UploadResult{Type: "excel", URL: "http://x/uploads/a.xlsx"})
	assert.NotContains(t, out, "Size")
}

func TestConversationBanner(t *testing.T) {
	req := types.ChatRequest{
		ThreadID: "t1",
		Messages: []types.ChatMessage{{
			Role:        "user",
			Content:     "Summarize",
			Attachments: []types.Attachment{types.FileAttachment("sales.xlsx", "http://x/uploads/sales.xlsx")},
		}},
	}
	out := ConversationBanner("http://localhost:8000", req)
	assert.Contains(t, out, "http://localhost:8000")
	assert.Contains(t, out, "t1")
	assert.Contains(t, out, "Files")

	assert.NotContains(t, ConversationBanner("http://localhost:8000", types.ChatRequest{}), "Thread")
}
