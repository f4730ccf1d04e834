package usecase

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/QuangHuy54/IntelligentChatbot/internal/domain"
	"github.com/QuangHuy54/IntelligentChatbot/internal/domain/entity"
)

var (
	spreadsheetExts = map[string]bool{"xlsx": true, "xls": true, "csv": true}
	imageExts       = map[string]bool{"png": true, "jpg": true, "jpeg": true, "gif": true, "webp": true}
)

// uploadUsecase implements domain.UploadUsecase.
type uploadUsecase struct {
	store         domain.UploadStore
	uploadBaseURL string
	logger        *slog.Logger
}

// NewUploadUsecase creates the upload usecase. Stored files are reachable
// under uploadBaseURL.
func NewUploadUsecase(store domain.UploadStore, uploadBaseURL string, logger *slog.Logger) domain.UploadUsecase {
	return &uploadUsecase{
		store:         store,
		uploadBaseURL: strings.TrimRight(uploadBaseURL, "/"),
		logger:        logger,
	}
}

// Upload saves the file under its base name (last write wins) and classifies
// it by extension.
func (u *uploadUsecase) Upload(ctx context.Context, name string, r io.Reader) (*entity.UploadResult, error) {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "" || name == "." || name == "/" || name == ".." {
		return nil, domain.NewInvalidInputError("file name is required")
	}

	path, err := u.store.Save(ctx, name, r)
	if err != nil {
		return nil, err
	}

	result := &entity.UploadResult{
		Type: entity.UploadUnknown,
		URL:  u.uploadBaseURL + "/" + url.PathEscape(name),
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	switch {
	case spreadsheetExts[ext]:
		result.Type = entity.UploadExcel
	case imageExts[ext]:
		result.Type = entity.UploadImage
		width, height, err := imageDimensions(path)
		if err != nil {
			u.logger.WarnContext(ctx, "failed to read image dimensions", "file", name, "error", err)
		}
		result.Width, result.Height = width, height
	}

	u.logger.InfoContext(ctx, "file uploaded", "file", name, "type", result.Type)
	return result, nil
}
