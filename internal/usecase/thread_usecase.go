package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/QuangHuy54/IntelligentChatbot/internal/domain"
	"github.com/QuangHuy54/IntelligentChatbot/internal/domain/entity"
)

const (
	defaultThreadTitle = "New chat"
	maxThreadTitle     = 200
	defaultThreadLimit = 50
	maxThreadLimit     = 200
)

// threadUsecase implements domain.ThreadUsecase.
type threadUsecase struct {
	repo   domain.ThreadRepository
	logger *slog.Logger
}

// NewThreadUsecase creates the thread usecase.
func NewThreadUsecase(repo domain.ThreadRepository, logger *slog.Logger) domain.ThreadUsecase {
	return &threadUsecase{
		repo:   repo,
		logger: logger,
	}
}

// CreateThread starts a new conversation. An empty title gets a default.
func (u *threadUsecase) CreateThread(ctx context.Context, title string) (*entity.Thread, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = defaultThreadTitle
	}
	if utf8.RuneCountInString(title) > maxThreadTitle {
		return nil, domain.NewInvalidInputError("title is too long (max 200 characters)")
	}

	now := time.Now().UTC()
	thread := &entity.Thread{
		ID:        uuid.NewString(),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.repo.CreateThread(ctx, thread); err != nil {
		return nil, err
	}

	u.logger.InfoContext(ctx, "thread created", "thread_id", thread.ID)
	return thread, nil
}

// GetThread returns one thread.
func (u *threadUsecase) GetThread(ctx context.Context, id string) (*entity.Thread, error) {
	if err := validateThreadID(id); err != nil {
		return nil, err
	}
	return u.repo.GetThread(ctx, id)
}

// ListThreads returns the most recently updated threads. limit <= 0 means
// the default page size; larger values are capped.
func (u *threadUsecase) ListThreads(ctx context.Context, limit int) ([]*entity.Thread, error) {
	switch {
	case limit <= 0:
		limit = defaultThreadLimit
	case limit > maxThreadLimit:
		limit = maxThreadLimit
	}
	return u.repo.ListThreads(ctx, limit)
}

// ListMessages returns the recorded messages of an existing thread.
func (u *threadUsecase) ListMessages(ctx context.Context, threadID string) ([]*entity.StoredMessage, error) {
	if err := validateThreadID(threadID); err != nil {
		return nil, err
	}
	if _, err := u.repo.GetThread(ctx, threadID); err != nil {
		return nil, err
	}
	return u.repo.ListMessages(ctx, threadID)
}

func validateThreadID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.NewInvalidInputError("thread id must be a UUID")
	}
	return nil
}
