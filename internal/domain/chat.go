package domain

import (
	"context"
	"iter"

	"github.com/QuangHuy54/IntelligentChatbot/internal/domain/entity"
)

// ============ Usecase-level request types ============

// ChatRequest is a chat turn after HTTP decoding.
type ChatRequest struct {
	// ThreadID optionally names the thread the exchange is recorded in.
	ThreadID string
	Messages []entity.RawMessage
}

// ============ Agent interfaces ============

// AgentRuntime opens agent sessions. Each Open performs tool discovery.
type AgentRuntime interface {
	Open(ctx context.Context) (AgentSession, error)
}

// AgentSession streams chunks for one conversation. The sequence ends
// normally or with exactly one non-nil error as its last element. Close must
// be called once the caller is done, even after an early stop.
type AgentSession interface {
	Stream(ctx context.Context, messages []entity.CanonicalMessage) iter.Seq2[entity.AgentChunk, error]
	Close() error
}

// ToolClient lists and invokes tools on the configured tool servers.
type ToolClient interface {
	Tools() []entity.Tool
	CallTool(ctx context.Context, call entity.ToolCall) (entity.ToolResult, error)
	Close() error
}

// ToolConnector connects to every configured tool server.
type ToolConnector interface {
	Connect(ctx context.Context) (ToolClient, error)
}

// ============ Storage interfaces ============

// ArtifactStore persists tool artifacts. It returns the full path of the
// written file, or ErrArtifactSkipped for artifacts it does not handle.
type ArtifactStore interface {
	Persist(ctx context.Context, artifact entity.Artifact, baseName string) (string, error)
}

// ============ Usecase interfaces ============

// ChatUsecase runs one chat exchange.
type ChatUsecase interface {
	// ChatStreaming validates the request and returns the event channel. The
	// channel is closed after a terminal event or when ctx is done.
	ChatStreaming(ctx context.Context, req *ChatRequest) (<-chan entity.StreamEvent, error)
}
