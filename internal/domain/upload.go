package domain

import (
	"context"
	"io"

	"github.com/QuangHuy54/IntelligentChatbot/internal/domain/entity"
)

// UploadStore writes uploaded files under their original names.
type UploadStore interface {
	// Save writes r to the store and returns the full path.
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}

// UploadUsecase stores an upload and classifies it.
type UploadUsecase interface {
	Upload(ctx context.Context, name string, r io.Reader) (*entity.UploadResult, error)
}
