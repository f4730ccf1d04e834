package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/QuangHuy54/IntelligentChatbot/internal/cli/types"
)

const conversation = `
threadId: t-1
messages:
  - content: Summarize the sales sheet
    files:
      - http://localhost:8000/uploads/sales.xlsx
  - role: assistant
    content: Revenue grew 12%.
  - role: user
    content: What does this chart show?
    images:
      - http://localhost:8000/uploads/chart.png?v=2
`

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conv.yaml")
	require.NoError(t, os.WriteFile(path, []byte(conversation), 0o600))

	conv, err := LoadFromFile(path)
	require.NoError(t, err)

	req := conv.ToChatRequest()
	assert.Equal(t, "t-1", req.ThreadID)
	require.Len(t, req.Messages, 3)

	assert.Equal(t, "user", req.Messages[0].Role)
	assert.Equal(t, []types.Attachment{
		types.FileAttachment("sales.xlsx", "http://localhost:8000/uploads/sales.xlsx"),
	}, req.Messages[0].Attachments)

	assert.Equal(t, "assistant", req.Messages[1].Role)
	assert.Empty(t, req.Messages[1].Attachments)

	assert.Equal(t, []types.Attachment{
		types.ImageAttachment("chart.png", "http://localhost:8000/uploads/chart.png?v=2"),
	}, req.Messages[2].Attachments)
}

func TestParse_Invalid(t *testing.T) {
	tests := map[string]string{
		"no messages":  "threadId: x\n",
		"bad role":     "messages:\n  - role: tool\n    content: hi\n",
		"empty entry":  "messages:\n  - role: user\n",
		"not yaml map": "- just\n- a list\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "failed to read file")
}
