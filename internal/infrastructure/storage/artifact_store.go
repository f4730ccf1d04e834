package storage

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/QuangHuy54/IntelligentChatbot/internal/domain"
	"github.com/QuangHuy54/IntelligentChatbot/internal/domain/entity"
)

const (
	extMissingMIME = ".png"
	extUnknownMIME = ".bin"
)

// preferredExt pins the extension for common image types; the system MIME
// table may list several (".jpe", ".jfif", ...) in arbitrary order.
var preferredExt = map[string]string{
	"image/png":     ".png",
	"image/jpeg":    ".jpg",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
	"image/bmp":     ".bmp",
	"image/tiff":    ".tiff",
}

// ArtifactStore writes tool-produced images into a flat output directory.
type ArtifactStore struct {
	dir    string
	logger *slog.Logger
}

var _ domain.ArtifactStore = (*ArtifactStore)(nil)

// NewArtifactStore creates a store rooted at dir. The directory is created
// on first write.
func NewArtifactStore(dir string, logger *slog.Logger) *ArtifactStore {
	return &ArtifactStore{dir: dir, logger: logger}
}

// Persist decodes the artifact and writes {dir}/{baseName}{ext}, replacing
// any previous file of that name. Non-image or empty artifacts return
// domain.ErrArtifactSkipped.
func (s *ArtifactStore) Persist(ctx context.Context, artifact entity.Artifact, baseName string) (string, error) {
	if artifact.Kind != entity.ArtifactKindImage || artifact.Data == "" {
		return "", domain.ErrArtifactSkipped
	}

	data, err := decodeBase64(artifact.Data)
	if err != nil {
		return "", fmt.Errorf("storage: decode artifact %s: %w", baseName, err)
	}

	ext := ExtensionForMIME(artifact.MimeType)
	if artifact.MimeType == "" {
		s.logger.WarnContext(ctx, "artifact has no mime type, defaulting extension", "id", baseName, "ext", ext)
	} else if ext == extUnknownMIME {
		s.logger.WarnContext(ctx, "unknown artifact mime type", "id", baseName, "mime_type", artifact.MimeType)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("storage: create output dir: %w", err)
	}
	path := filepath.Join(s.dir, safeName(baseName)+ext)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("storage: write artifact: %w", err)
	}

	s.logger.InfoContext(ctx, "artifact saved", "path", path, "bytes", len(data))
	return path, nil
}

// ExtensionForMIME maps a MIME type to a file extension: ".png" when the
// type is missing, ".bin" when it is unknown.
func ExtensionForMIME(mimeType string) string {
	if mimeType == "" {
		return extMissingMIME
	}
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return extUnknownMIME
	}
	if ext, ok := preferredExt[mediaType]; ok {
		return ext
	}
	exts, err := mime.ExtensionsByType(mediaType)
	if err != nil || len(exts) == 0 {
		return extUnknownMIME
	}
	return exts[0]
}

func decodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if data, err := base64.StdEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
}

// safeName keeps the artifact inside the output directory.
func safeName(name string) string {
	name = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == 0 {
			return '_'
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		return "artifact"
	}
	return name
}
