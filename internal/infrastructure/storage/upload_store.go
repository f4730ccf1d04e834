package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/QuangHuy54/IntelligentChatbot/internal/domain"
)

// UploadStore keeps uploaded files under their original names.
type UploadStore struct {
	dir    string
	logger *slog.Logger
}

var _ domain.UploadStore = (*UploadStore)(nil)

// NewUploadStore creates a store rooted at dir.
func NewUploadStore(dir string, logger *slog.Logger) *UploadStore {
	return &UploadStore{dir: dir, logger: logger}
}

// Save streams r into {dir}/{name}. The content is written to a temporary
// file first and renamed, so readers never observe a partial upload. An
// existing file with the same name is replaced.
func (s *UploadStore) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	if name != filepath.Base(name) || name == "." || name == ".." {
		return "", domain.NewInvalidInputError(fmt.Sprintf("invalid file name %q", name))
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", domain.NewInternalError(fmt.Errorf("storage: create upload dir: %w", err))
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", domain.NewInternalError(fmt.Errorf("storage: create temp file: %w", err))
	}
	defer os.Remove(tmp.Name())

	written, err := io.Copy(tmp, r)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", domain.NewInternalError(fmt.Errorf("storage: write upload: %w", err))
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", domain.NewInternalError(fmt.Errorf("storage: chmod upload: %w", err))
	}

	path := filepath.Join(s.dir, name)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", domain.NewInternalError(fmt.Errorf("storage: store upload: %w", err))
	}

	s.logger.DebugContext(ctx, "upload stored", "path", path, "bytes", written)
	return path, nil
}
