package mocks

import (
	"context"

	"github.com/QuangHuy54/IntelligentChatbot/internal/domain/entity"
)

// MockThreadRepository is a mock implementation of domain.ThreadRepository
type MockThreadRepository struct {
	CreateThreadFunc   func(ctx context.Context, thread *entity.Thread) error
	GetThreadFunc      func(ctx context.Context, id string) (*entity.Thread, error)
	ListThreadsFunc    func(ctx context.Context, limit int) ([]*entity.Thread, error)
	AppendMessagesFunc func(ctx context.Context, threadID string, messages []*entity.StoredMessage) error
	ListMessagesFunc   func(ctx context.Context, threadID string) ([]*entity.StoredMessage, error)
}

// CreateThread mocks the CreateThread method
func (m *MockThreadRepository) CreateThread(ctx context.Context, thread *entity.Thread) error {
	if m.CreateThreadFunc != nil {
		return m.CreateThreadFunc(ctx, thread)
	}
	return nil
}

// GetThread mocks the GetThread method
func (m *MockThreadRepository) GetThread(ctx context.Context, id string) (*entity.Thread, error) {
	if m.GetThreadFunc != nil {
		return m.GetThreadFunc(ctx, id)
	}
	return &entity.Thread{ID: id}, nil
}

// ListThreads mocks the ListThreads method
func (m *MockThreadRepository) ListThreads(ctx context.Context, limit int) ([]*entity.Thread, error) {
	if m.ListThreadsFunc != nil {
		return m.ListThreadsFunc(ctx, limit)
	}
	return []*entity.Thread{}, nil
}

// AppendMessages mocks the AppendMessages method
func (m *MockThreadRepository) AppendMessages(ctx context.Context, threadID string, messages []*entity.StoredMessage) error {
	if m.AppendMessagesFunc != nil {
		return m.AppendMessagesFunc(ctx, threadID, messages)
	}
	return nil
}

// ListMessages mocks the ListMessages method
func (m *MockThreadRepository) ListMessages(ctx context.Context, threadID string) ([]*entity.StoredMessage, error) {
	if m.ListMessagesFunc != nil {
		return m.ListMessagesFunc(ctx, threadID)
	}
	return []*entity.StoredMessage{}, nil
}

// MockThreadUsecase is a mock implementation of domain.ThreadUsecase
type MockThreadUsecase struct {
	CreateThreadFunc func(ctx context.Context, title string) (*entity.Thread, error)
	GetThreadFunc    func(ctx context.Context, id string) (*entity.Thread, error)
	ListThreadsFunc  func(ctx context.Context, limit int) ([]*entity.Thread, error)
	ListMessagesFunc func(ctx context.Context, threadID string) ([]*entity.StoredMessage, error)
}

// CreateThread mocks the CreateThread method
func (m *MockThreadUsecase) CreateThread(ctx context.Context, title string) (*entity.Thread, error) {
	if m.CreateThreadFunc != nil {
		return m.CreateThreadFunc(ctx, title)
	}
	return &entity.Thread{ID: "thread-1", Title: title}, nil
}

// GetThread mocks the GetThread method
func (m *MockThreadUsecase) GetThread(ctx context.Context, id string) (*entity.Thread, error) {
	if m.GetThreadFunc != nil {
		return m.GetThreadFunc(ctx, id)
	}
	return &entity.Thread{ID: id}, nil
}

// ListThreads mocks the ListThreads method
func (m *MockThreadUsecase) ListThreads(ctx context.Context, limit int) ([]*entity.Thread, error) {
	if m.ListThreadsFunc != nil {
		return m.ListThreadsFunc(ctx, limit)
	}
	return []*entity.Thread{}, nil
}

// ListMessages mocks the ListMessages method
func (m *MockThreadUsecase) ListMessages(ctx context.Context, threadID string) ([]*entity.StoredMessage, error) {
	if m.ListMessagesFunc != nil {
		return m.ListMessagesFunc(ctx, threadID)
	}
	return []*entity.StoredMessage{}, nil
}
