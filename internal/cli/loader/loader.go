package loader

import (
	"fmt"
	"os"
	"path"
	"strings"

	"sigs.k8s.io/yaml"

	"github.com/QuangHuy54/IntelligentChatbot/internal/cli/types"
)

// ConversationFile is a scripted conversation loaded from YAML:
//
//	threadId: 3f1c...        # optional
//	messages:
//	  - role: user
//	    content: Summarize the sales sheet
//	    files: [http://localhost:8000/uploads/sales.xlsx]
//	    images: [http://localhost:8000/uploads/chart.png]
type ConversationFile struct {
	ThreadID string         `json:"threadId,omitempty"`
	Messages []MessageEntry `json:"messages"`
}

// MessageEntry is one message of a conversation file
type MessageEntry struct {
	Role    string   `json:"role,omitempty"`
	Content string   `json:"content,omitempty"`
	Files   []string `json:"files,omitempty"`
	Images  []string `json:"images,omitempty"`
}

var validRoles = map[string]bool{"user": true, "assistant": true, "system": true}

// LoadFromFile loads a conversation from a YAML (or JSON) file.
func LoadFromFile(filepath string) (*ConversationFile, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a conversation document.
func Parse(data []byte) (*ConversationFile, error) {
	var conv ConversationFile
	if err := yaml.Unmarshal(data, &conv); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	if len(conv.Messages) == 0 {
		return nil, fmt.Errorf("'messages' must not be empty")
	}
	for i, m := range conv.Messages {
		if m.Role != "" && !validRoles[m.Role] {
			return nil, fmt.Errorf("messages[%d]: invalid role '%s', must be user, assistant or system", i, m.Role)
		}
		if strings.TrimSpace(m.Content) == "" && len(m.Files) == 0 && len(m.Images) == 0 {
			return nil, fmt.Errorf("messages[%d]: content, files or images is required", i)
		}
	}

	return &conv, nil
}

// ToChatRequest converts the file into the chat request body. Attachment
// names are taken from the last URL path segment.
func (c *ConversationFile) ToChatRequest() types.ChatRequest {
	req := types.ChatRequest{
		ThreadID: c.ThreadID,
		Messages: make([]types.ChatMessage, 0, len(c.Messages)),
	}
	for _, m := range c.Messages {
		role := m.Role
		if role == "" {
			role = "user"
		}
		msg := types.ChatMessage{Role: role, Content: m.Content}
		for _, u := range m.Files {
			msg.Attachments = append(msg.Attachments, types.FileAttachment(nameFromURL(u), u))
		}
		for _, u := range m.Images {
			msg.Attachments = append(msg.Attachments, types.ImageAttachment(nameFromURL(u), u))
		}
		req.Messages = append(req.Messages, msg)
	}
	return req
}

func nameFromURL(u string) string {
	u = strings.SplitN(u, "?", 2)[0]
	name := path.Base(u)
	if name == "." || name == "/" || strings.HasPrefix(u, "data:") {
		return ""
	}
	return name
}
