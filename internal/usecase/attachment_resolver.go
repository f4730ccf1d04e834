package usecase

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/QuangHuy54/IntelligentChatbot/internal/domain/entity"
)

const (
	defaultImageMIME = "image/jpeg"

	fileHintFormat     = "\n[Attached File: %s]\n[URL: %s]\n This is excel file, can used further to analyze."
	imageFailureFormat = "[Failed to load local image: %s]"
)

var loopbackHosts = map[string]bool{
	"localhost": true,
	"127.0.0.1": true,
	"::1":       true,
}

// AttachmentResolver turns attachments into canonical content parts. It never
// fails: unusable attachments degrade to a text placeholder or to nothing.
type AttachmentResolver struct {
	containerName string
	localRoot     string
	logger        *slog.Logger
}

// NewAttachmentResolver creates a resolver. File URLs pointing at a loopback
// host are rewritten to containerName; local image URLs are read from under
// localRoot.
func NewAttachmentResolver(containerName, localRoot string, logger *slog.Logger) *AttachmentResolver {
	if localRoot == "" {
		localRoot = "."
	}
	return &AttachmentResolver{
		containerName: containerName,
		localRoot:     localRoot,
		logger:        logger,
	}
}

// Resolve returns the parts for one attachment, in sub-part order.
func (r *AttachmentResolver) Resolve(ctx context.Context, att entity.Attachment) []entity.ContentPart {
	if len(att.Content) == 0 {
		return nil
	}
	switch att.Type {
	case entity.AttachmentFile:
		return r.resolveFile(ctx, att)
	case entity.AttachmentImage:
		return r.resolveImage(ctx, att)
	default:
		r.logger.DebugContext(ctx, "ignoring attachment of unknown type", "type", att.Type, "name", att.Name)
		return nil
	}
}

func (r *AttachmentResolver) resolveFile(ctx context.Context, att entity.Attachment) []entity.ContentPart {
	first := att.Content[0]
	if first.Type != entity.PartText || first.Text == "" {
		r.logger.WarnContext(ctx, "file attachment has no url", "name", att.DisplayName())
		return nil
	}
	fileURL := r.rewriteHost(first.Text)
	return []entity.ContentPart{
		entity.TextPart{Text: fmt.Sprintf(fileHintFormat, att.DisplayName(), fileURL)},
	}
}

// rewriteHost points loopback URLs at the tool container, keeping scheme,
// port and path.
func (r *AttachmentResolver) rewriteHost(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return strings.Replace(raw, "localhost", r.containerName, 1)
	}
	if !loopbackHosts[strings.ToLower(u.Hostname())] {
		return raw
	}
	if port := u.Port(); port != "" {
		u.Host = net.JoinHostPort(r.containerName, port)
	} else {
		u.Host = r.containerName
	}
	return u.String()
}

func (r *AttachmentResolver) resolveImage(ctx context.Context, att entity.Attachment) []entity.ContentPart {
	var parts []entity.ContentPart
	for _, sub := range att.Content {
		if sub.Type != entity.PartImage {
			r.logger.DebugContext(ctx, "ignoring image sub-part", "type", sub.Type, "name", att.DisplayName())
			continue
		}
		data := sub.Image
		switch {
		case data == "":
		case strings.HasPrefix(data, "http://"):
			parts = append(parts, r.loadLocalImage(ctx, att.DisplayName(), data))
		case strings.HasPrefix(data, "https://"):
			parts = append(parts, entity.RemoteImagePart{URL: data})
		default:
			parts = append(parts, entity.InlineImagePart{Data: data, MimeType: defaultImageMIME})
		}
	}
	return parts
}

func (r *AttachmentResolver) loadLocalImage(ctx context.Context, name, rawURL string) entity.ContentPart {
	failed := entity.TextPart{Text: fmt.Sprintf(imageFailureFormat, name)}

	path, err := r.localPath(rawURL)
	if err != nil {
		r.logger.WarnContext(ctx, "cannot map image url to a local file", "url", rawURL, "error", err)
		return failed
	}
	data, err := os.ReadFile(path)
	if err != nil {
		r.logger.WarnContext(ctx, "failed to read local image", "path", path, "error", err)
		return failed
	}
	return entity.InlineImagePart{
		Data:     base64.StdEncoding.EncodeToString(data),
		MimeType: mimeFromExt(filepath.Ext(path)),
	}
}

// localPath maps the URL path under localRoot, refusing paths that escape it.
func (r *AttachmentResolver) localPath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	rel := strings.TrimLeft(u.Path, "/")
	if rel == "" {
		return "", fmt.Errorf("empty path")
	}
	path := filepath.Join(r.localRoot, filepath.FromSlash(rel))
	within, err := filepath.Rel(r.localRoot, path)
	if err != nil || within == ".." || strings.HasPrefix(within, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes %q", u.Path, r.localRoot)
	}
	return path, nil
}

func mimeFromExt(ext string) string {
	t := mime.TypeByExtension(strings.ToLower(ext))
	if t == "" {
		return defaultImageMIME
	}
	if mediaType, _, err := mime.ParseMediaType(t); err == nil {
		return mediaType
	}
	return t
}
