package domain

import (
	"context"

	"github.com/QuangHuy54/IntelligentChatbot/internal/domain/entity"
)

// ============ Repository interface ============

// ThreadRepository stores conversations and their messages.
type ThreadRepository interface {
	CreateThread(ctx context.Context, thread *entity.Thread) error

	// GetThread returns ErrNotFound for unknown ids.
	GetThread(ctx context.Context, id string) (*entity.Thread, error)

	// ListThreads returns threads, most recently updated first.
	ListThreads(ctx context.Context, limit int) ([]*entity.Thread, error)

	// AppendMessages records messages and bumps the thread's UpdatedAt.
	AppendMessages(ctx context.Context, threadID string, messages []*entity.StoredMessage) error

	// ListMessages returns messages oldest first.
	ListMessages(ctx context.Context, threadID string) ([]*entity.StoredMessage, error)
}

// ============ Usecase interface ============

// ThreadUsecase thread management
type ThreadUsecase interface {
	CreateThread(ctx context.Context, title string) (*entity.Thread, error)
	GetThread(ctx context.Context, id string) (*entity.Thread, error)
	ListThreads(ctx context.Context, limit int) ([]*entity.Thread, error)
	ListMessages(ctx context.Context, threadID string) ([]*entity.StoredMessage, error)
}
