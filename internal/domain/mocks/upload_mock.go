package mocks

import (
	"context"
	"io"

	"github.com/QuangHuy54/IntelligentChatbot/internal/domain/entity"
)

// MockUploadStore is a mock implementation of domain.UploadStore
type MockUploadStore struct {
	SaveFunc func(ctx context.Context, name string, r io.Reader) (string, error)
}

// Save mocks the Save method
func (m *MockUploadStore) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, name, r)
	}
	return "uploads/" + name, nil
}

// MockUploadUsecase is a mock implementation of domain.UploadUsecase
type MockUploadUsecase struct {
	UploadFunc func(ctx context.Context, name string, r io.Reader) (*entity.UploadResult, error)
}

// Upload mocks the Upload method
func (m *MockUploadUsecase) Upload(ctx context.Context, name string, r io.Reader) (*entity.UploadResult, error) {
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, name, r)
	}
	return &entity.UploadResult{Type: entity.UploadUnknown, URL: "http://localhost:8000/uploads/" + name}, nil
}
