package dto

import (
	"time"

	"github.com/QuangHuy54/IntelligentChatbot/internal/domain/entity"
)

// CreateThreadRequest is the body of POST /api/threads.
type CreateThreadRequest struct {
	Title string `json:"title,omitempty"`
}

// ThreadResponse thread information (HTTP)
type ThreadResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MessageResponse one recorded message (HTTP)
type MessageResponse struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Images    []string  `json:"images,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ToThreadResponse converts entity.Thread
func ToThreadResponse(t *entity.Thread) *ThreadResponse {
	if t == nil {
		return nil
	}
	return &ThreadResponse{
		ID:        t.ID,
		Title:     t.Title,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// ToThreadResponses converts a list of threads
func ToThreadResponses(threads []*entity.Thread) []*ThreadResponse {
	out := make([]*ThreadResponse, 0, len(threads))
	for _, t := range threads {
		out = append(out, ToThreadResponse(t))
	}
	return out
}

// ToMessageResponses converts recorded messages
func ToMessageResponses(msgs []*entity.StoredMessage) []*MessageResponse {
	out := make([]*MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, &MessageResponse{
			ID:        m.ID,
			Role:      m.Role,
			Text:      m.Text,
			Images:    m.Images,
			CreatedAt: m.CreatedAt,
		})
	}
	return out
}
