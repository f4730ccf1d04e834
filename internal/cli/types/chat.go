package types

// Attachment types understood by the server.
const (
	AttachmentFile  = "file"
	AttachmentImage = "image"
)

// ChatMessage is one UI message. Content is sent as a plain string.
type ChatMessage struct {
	Role        string       `json:"role"` // user, assistant, system
	Content     string       `json:"content"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Attachment references an uploaded file or image
type Attachment struct {
	Type    string           `json:"type"`
	Name    string           `json:"name,omitempty"`
	Content []AttachmentPart `json:"content"`
}

// AttachmentPart carries a URL: in Text for files, in Image for images.
type AttachmentPart struct {
	Type  string `json:"type"`
	Text  string `json:"text,omitempty"`
	Image string `json:"image,omitempty"`
}

// FileAttachment builds a spreadsheet attachment pointing at url.
func FileAttachment(name, url string) Attachment {
	return Attachment{
		Type:    AttachmentFile,
		Name:    name,
		Content: []AttachmentPart{{Type: "text", Text: url}},
	}
}

// ImageAttachment builds an image attachment pointing at url.
func ImageAttachment(name, url string) Attachment {
	return Attachment{
		Type:    AttachmentImage,
		Name:    name,
		Content: []AttachmentPart{{Type: "image", Image: url}},
	}
}

// ChatRequest represents a chat request
type ChatRequest struct {
	ThreadID string        `json:"threadId,omitempty"`
	Messages []ChatMessage `json:"messages"`
}

// Stream event types
const (
	EventTextDelta = "text-delta"
	EventImage     = "image"
	EventFinish    = "finish"
	EventError     = "error"
)

// StreamEvent is one data payload of the chat stream
type StreamEvent struct {
	Type         string `json:"type"`
	TextDelta    string `json:"textDelta,omitempty"`
	Image        string `json:"image,omitempty"`
	FinishReason string `json:"finishReason,omitempty"`
	Error        string `json:"error,omitempty"`
}

// IsTerminal reports whether the stream ends after e.
func (e StreamEvent) IsTerminal() bool {
	return e.Type == EventFinish || e.Type == EventError
}
