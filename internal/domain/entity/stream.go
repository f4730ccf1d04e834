package entity

// EventType identifies a wire event.
type EventType string

const (
	EventTextDelta EventType = "text-delta"
	EventImage     EventType = "image"
	EventFinish    EventType = "finish"
	EventError     EventType = "error"
)

// FinishReasonStop is the only finish reason emitted.
const FinishReasonStop = "stop"

// StreamEvent is one event of a chat response stream. Only the field that
// matches Type is set.
type StreamEvent struct {
	Type         EventType
	Text         string
	ImageURL     string
	FinishReason string
	Message      string
}

// TextDeltaEvent builds a text-delta event.
func TextDeltaEvent(text string) StreamEvent {
	return StreamEvent{Type: EventTextDelta, Text: text}
}

// ImageEvent builds an image event.
func ImageEvent(url string) StreamEvent {
	return StreamEvent{Type: EventImage, ImageURL: url}
}

// FinishEvent builds the terminal success event.
func FinishEvent() StreamEvent {
	return StreamEvent{Type: EventFinish, FinishReason: FinishReasonStop}
}

// ErrorEvent builds the terminal failure event.
func ErrorEvent(message string) StreamEvent {
	return StreamEvent{Type: EventError, Message: message}
}

// IsTerminal reports whether no event may follow e.
func (e StreamEvent) IsTerminal() bool {
	return e.Type == EventFinish || e.Type == EventError
}

// ArtifactKindImage is the only artifact kind that gets persisted.
const ArtifactKindImage = "image"

// Artifact is a binary payload produced by a tool call.
type Artifact struct {
	Kind     string
	MimeType string
	// Data is base64 encoded.
	Data string
}

// AgentChunk is one unit yielded by an agent session.
type AgentChunk struct {
	// ID identifies the producing message; artifacts are stored under it.
	ID   string
	Text string
	// ToolCallID is set on tool-result chunks, whose text is meant for the
	// model only.
	ToolCallID string
	Artifacts  []Artifact
}

// IsToolResult reports whether the chunk carries a tool result.
func (c AgentChunk) IsToolResult() bool {
	return c.ToolCallID != ""
}

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	ID   string
	Name string
	// Arguments is the raw JSON object produced by the model.
	Arguments string
}

// ToolResult is what a tool invocation hands back to the model.
type ToolResult struct {
	ToolCallID string
	Content    string
	Artifacts  []Artifact
	IsError    bool
}

// Tool describes a tool offered to the model.
type Tool struct {
	Name        string
	Description string
	// InputSchema is the JSON schema of the arguments.
	InputSchema map[string]any
}
