package dto

import (
	"github.com/QuangHuy54/IntelligentChatbot/internal/domain"
	"github.com/QuangHuy54/IntelligentChatbot/internal/domain/entity"
)

// ============ Chat request (HTTP) ============

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	ThreadID string              `json:"threadId,omitempty"` // optional, records the exchange
	Messages []entity.RawMessage `json:"messages"`
}

// ToDomain converts to the usecase request.
func (r *ChatRequest) ToDomain() *domain.ChatRequest {
	return &domain.ChatRequest{
		ThreadID: r.ThreadID,
		Messages: r.Messages,
	}
}

// ============ Stream events (SSE data payloads) ============

// StreamEvent is one `data:` payload of the chat stream.
type StreamEvent struct {
	Type         string `json:"type"`
	TextDelta    string `json:"textDelta,omitempty"`
	Image        string `json:"image,omitempty"`
	FinishReason string `json:"finishReason,omitempty"`
	Error        string `json:"error,omitempty"`
}

// ToStreamEvent maps a domain event onto its wire shape.
func ToStreamEvent(e entity.StreamEvent) StreamEvent {
	out := StreamEvent{Type: string(e.Type)}
	switch e.Type {
	case entity.EventTextDelta:
		out.TextDelta = e.Text
	case entity.EventImage:
		out.Image = e.ImageURL
	case entity.EventFinish:
		out.FinishReason = e.FinishReason
	case entity.EventError:
		out.Error = e.Message
	}
	return out
}
