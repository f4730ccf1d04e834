package usecase

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/require"

	"github.com/QuangHuy54/IntelligentChatbot/internal/domain/entity"
)

func newTestNormalizer(t *testing.T) *MessageNormalizer {
	t.Helper()
	return NewMessageNormalizer(NewAttachmentResolver("excel-container", t.TempDir(), testLogger()), testLogger())
}

func TestMessageNormalizer_PlainUserMessage(t *testing.T) {
	n := newTestNormalizer(t)

	got := n.Normalize(context.Background(), []entity.RawMessage{
		{Role: entity.RoleUser, Content: entity.TextContent("Hello")},
	})
	require.Equal(t, []entity.CanonicalMessage{
		{Role: entity.RoleUser, Parts: []entity.ContentPart{entity.TextPart{Text: "Hello"}}},
	}, got)
}

func TestMessageNormalizer_UserKeepsPartOrder(t *testing.T) {
	n := newTestNormalizer(t)

	got := n.Normalize(context.Background(), []entity.RawMessage{{
		Content: entity.PartsContent(
			entity.RawContentPart{Type: entity.PartText, Text: "first"},
			entity.RawContentPart{Type: "image"},
			entity.RawContentPart{Type: entity.PartText, Text: "second"},
		),
		Attachments: []entity.Attachment{
			imageAttachment("remote", "https://example.com/a.png"),
			fileAttachment("data.xlsx", "http://localhost:8000/uploads/data.xlsx"),
			imageAttachment("inline", "QUJD"),
		},
	}})

	require.Len(t, got, 1)
	require.Equal(t, entity.RoleUser, got[0].Role)
	require.Len(t, got[0].Parts, 5)
	require.Equal(t, entity.TextPart{Text: "first"}, got[0].Parts[0])
	require.Equal(t, entity.TextPart{Text: "second"}, got[0].Parts[1])
	require.Equal(t, entity.RemoteImagePart{URL: "https://example.com/a.png"}, got[0].Parts[2])
	require.Contains(t, got[0].Parts[3].(entity.TextPart).Text, "http://excel-container:8000/uploads/data.xlsx")
	require.Equal(t, entity.InlineImagePart{Data: "QUJD", MimeType: "image/jpeg"}, got[0].Parts[4])
}

func TestMessageNormalizer_NonUserRolesCollapse(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "uploads"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "uploads", "a.png"), []byte("png"), 0o644))
	n := NewMessageNormalizer(NewAttachmentResolver("excel-container", root, testLogger()), testLogger())

	got := n.Normalize(context.Background(), []entity.RawMessage{
		{
			Role:    entity.RoleAssistant,
			Content: entity.PartsContent(entity.RawContentPart{Type: entity.PartText, Text: "Here"}, entity.RawContentPart{Type: entity.PartText, Text: "it is"}),
			Attachments: []entity.Attachment{
				imageAttachment("a.png", "http://localhost:8000/uploads/a.png", "https://example.com/b.png"),
				imageAttachment("gone.png", "http://localhost:8000/uploads/gone.png"),
			},
		},
		{Role: entity.RoleSystem, Content: entity.TextContent("Be brief.")},
	})

	require.Equal(t, []entity.CanonicalMessage{
		{Role: entity.RoleAssistant, Parts: []entity.ContentPart{
			entity.TextPart{Text: "Here it is [Failed to load local image: gone.png]"},
		}},
		{Role: entity.RoleSystem, Parts: []entity.ContentPart{entity.TextPart{Text: "Be brief."}}},
	}, got)
}

func TestMessageNormalizer_DropsEmptyAndUnknown(t *testing.T) {
	n := newTestNormalizer(t)

	got := n.Normalize(context.Background(), []entity.RawMessage{
		{Role: entity.RoleUser, Content: entity.TextContent("")},
		{Role: entity.RoleUser, Content: entity.PartsContent()},
		{Role: "tool", Content: entity.TextContent("tool output")},
		{Role: entity.RoleAssistant, Attachments: []entity.Attachment{imageAttachment("x", "https://example.com/x.png")}},
		{Role: entity.RoleUser, Content: entity.TextContent("kept")},
	})

	require.Equal(t, []entity.CanonicalMessage{
		{Role: entity.RoleUser, Parts: []entity.ContentPart{entity.TextPart{Text: "kept"}}},
	}, got)
}

func TestMessageNormalizer_PreservesOrderWithoutDedup(t *testing.T) {
	n := newTestNormalizer(t)

	raw := []entity.RawMessage{
		{Role: entity.RoleSystem, Content: entity.TextContent("sys")},
		{Role: entity.RoleUser, Content: entity.TextContent("q")},
		{Role: entity.RoleAssistant, Content: entity.TextContent("a")},
		{Role: entity.RoleUser, Content: entity.TextContent("q")},
	}
	got := n.Normalize(context.Background(), raw)

	require.Len(t, got, len(raw))
	for i := range raw {
		require.Equal(t, raw[i].Role, got[i].Role)
		require.Equal(t, raw[i].Content.Text, got[i].Text())
	}
}

func TestMessageNormalizer_UnrecognizedContentKeepsAttachments(t *testing.T) {
	n := newTestNormalizer(t)

	var raw []entity.RawMessage
	require.NoError(t, sonic.UnmarshalString(`[
		{"role":"user","content":"first"},
		{"content":{"text":"x"},"attachments":[
			{"type":"file","name":"data.xlsx","content":[{"type":"text","text":"http://localhost:8000/uploads/data.xlsx"}]}
		]},
		{"role":"assistant","content":42},
		{"role":"assistant","content":"done"}
	]`, &raw))

	got := n.Normalize(context.Background(), raw)

	require.Len(t, got, 3)
	require.Equal(t, "first", got[0].Text())
	require.Equal(t, entity.RoleUser, got[1].Role)
	require.Len(t, got[1].Parts, 1)
	require.Contains(t, got[1].Parts[0].(entity.TextPart).Text, "[Attached File: data.xlsx]")
	require.Contains(t, got[1].Parts[0].(entity.TextPart).Text, "http://excel-container:8000/uploads/data.xlsx")
	require.Equal(t, entity.CanonicalMessage{
		Role:  entity.RoleAssistant,
		Parts: []entity.ContentPart{entity.TextPart{Text: "done"}},
	}, got[2])
}
