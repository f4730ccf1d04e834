package entity

import (
	"bytes"

	"github.com/bytedance/sonic"
)

// Chat roles understood by the normalizer.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Attachment and sub-part kinds sent by the chat UI.
const (
	AttachmentFile  = "file"
	AttachmentImage = "image"

	PartText  = "text"
	PartImage = "image"
)

// DefaultAttachmentName is used when an attachment carries no display name.
const DefaultAttachmentName = "file"

// RawMessage is one chat turn exactly as the UI sent it.
type RawMessage struct {
	Role        string       `json:"role,omitempty"`
	Content     RawContent   `json:"content"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// EffectiveRole returns the role, defaulting to user.
func (m RawMessage) EffectiveRole() string {
	if m.Role == "" {
		return RoleUser
	}
	return m.Role
}

// RawContent holds message content that arrives either as a plain string or
// as a list of typed parts.
type RawContent struct {
	Text  string
	Parts []RawContentPart
	// IsParts is set when the content was a list, even an empty one.
	IsParts bool
	// Unrecognized is set when the content had another shape. Such content
	// carries no text.
	Unrecognized bool
}

// RawContentPart is one element of list-shaped content. Only "text" parts are
// meaningful; others are ignored.
type RawContentPart struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// TextContent builds string-shaped content.
func TextContent(s string) RawContent {
	return RawContent{Text: s}
}

// PartsContent builds list-shaped content.
func PartsContent(parts ...RawContentPart) RawContent {
	return RawContent{Parts: parts, IsParts: true}
}

// UnmarshalJSON accepts a string, an array of parts, or null. Any other
// shape decodes to empty content marked Unrecognized, so the rest of the
// message (its attachments) is still usable.
func (c *RawContent) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*c = RawContent{}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	switch data[0] {
	case '"':
		return sonic.Unmarshal(data, &c.Text)
	case '[':
		var parts []RawContentPart
		if err := sonic.Unmarshal(data, &parts); err != nil {
			c.Unrecognized = true
			return nil
		}
		c.Parts, c.IsParts = parts, true
		return nil
	default:
		c.Unrecognized = true
		return nil
	}
}

// MarshalJSON writes the content back in the shape it arrived in.
func (c RawContent) MarshalJSON() ([]byte, error) {
	if c.IsParts {
		if c.Parts == nil {
			return []byte("[]"), nil
		}
		return sonic.Marshal(c.Parts)
	}
	return sonic.Marshal(c.Text)
}

// TextSegments returns the non-empty inline text fragments in order.
func (c RawContent) TextSegments() []string {
	if !c.IsParts {
		if c.Text == "" {
			return nil
		}
		return []string{c.Text}
	}
	var out []string
	for _, p := range c.Parts {
		if p.Type == PartText && p.Text != "" {
			out = append(out, p.Text)
		}
	}
	return out
}

// Attachment is a file or image the user attached to a turn.
type Attachment struct {
	Type    string           `json:"type"`
	Name    string           `json:"name,omitempty"`
	Content []AttachmentPart `json:"content,omitempty"`
}

// DisplayName returns the name, defaulting to "file".
func (a Attachment) DisplayName() string {
	if a.Name == "" {
		return DefaultAttachmentName
	}
	return a.Name
}

// AttachmentPart is a sub-part of an attachment: a text part carrying a URL
// for files, or an image part carrying a URL or base64 payload for images.
type AttachmentPart struct {
	Type  string `json:"type"`
	Text  string `json:"text,omitempty"`
	Image string `json:"image,omitempty"`
}
