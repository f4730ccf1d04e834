package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/QuangHuy54/IntelligentChatbot/internal/domain"
	"github.com/QuangHuy54/IntelligentChatbot/internal/domain/entity"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestArtifactStore_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "outputs")
	store := NewArtifactStore(dir, testLogger())
	payload := base64.StdEncoding.EncodeToString([]byte("\x89PNG\r\n\x1a\nchart"))

	path, err := store.Persist(context.Background(), entity.Artifact{
		Kind: entity.ArtifactKindImage, MimeType: "image/png", Data: payload,
	}, "run-42")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "run-42.png"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, payload, base64.StdEncoding.EncodeToString(data))
}

func TestArtifactStore_Overwrites(t *testing.T) {
	dir := t.TempDir()
	store := NewArtifactStore(dir, testLogger())
	ctx := context.Background()

	first := entity.Artifact{Kind: entity.ArtifactKindImage, MimeType: "image/png", Data: base64.StdEncoding.EncodeToString([]byte("one"))}
	second := entity.Artifact{Kind: entity.ArtifactKindImage, MimeType: "image/png", Data: base64.StdEncoding.EncodeToString([]byte("two"))}

	p1, err := store.Persist(ctx, first, "same")
	require.NoError(t, err)
	p2, err := store.Persist(ctx, second, "same")
	require.NoError(t, err)
	require.Equal(t, p1, p2)

	data, err := os.ReadFile(p2)
	require.NoError(t, err)
	require.Equal(t, "two", string(data))
}

func TestArtifactStore_Skipped(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "never-created")
	store := NewArtifactStore(dir, testLogger())

	for _, a := range []entity.Artifact{
		{Kind: "audio", MimeType: "audio/wav", Data: "AAAA"},
		{Kind: entity.ArtifactKindImage, MimeType: "image/png"},
	} {
		_, err := store.Persist(context.Background(), a, "x")
		require.ErrorIs(t, err, domain.ErrArtifactSkipped)
	}
	_, err := os.Stat(dir)
	require.True(t, errors.Is(err, os.ErrNotExist))
}

func TestArtifactStore_BadBase64(t *testing.T) {
	store := NewArtifactStore(t.TempDir(), testLogger())
	_, err := store.Persist(context.Background(), entity.Artifact{Kind: entity.ArtifactKindImage, Data: "%%%not-base64"}, "x")
	require.Error(t, err)
	require.NotErrorIs(t, err, domain.ErrArtifactSkipped)
}

func TestArtifactStore_UnsafeName(t *testing.T) {
	dir := t.TempDir()
	store := NewArtifactStore(dir, testLogger())
	path, err := store.Persist(context.Background(), entity.Artifact{
		Kind: entity.ArtifactKindImage, MimeType: "image/jpeg", Data: base64.StdEncoding.EncodeToString([]byte("j")),
	}, "../escape")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, ".._escape.jpg"), path)
}

func TestExtensionForMIME(t *testing.T) {
	tests := []struct {
		mime string
		want string
	}{
		{"", ".png"},
		{"image/png", ".png"},
		{"image/jpeg", ".jpg"},
		{"image/gif", ".gif"},
		{"image/webp", ".webp"},
		{"image/svg+xml", ".svg"},
		{"image/png; charset=binary", ".png"},
		{"application/x-made-up", ".bin"},
		{"not a mime", ".bin"},
	}
	for _, tt := range tests {
		t.Run(tt.mime, func(t *testing.T) {
			require.Equal(t, tt.want, ExtensionForMIME(tt.mime))
		})
	}
}

func TestUploadStore_Save(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	store := NewUploadStore(dir, testLogger())
	ctx := context.Background()

	path, err := store.Save(ctx, "data.xlsx", strings.NewReader("v1"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "data.xlsx"), path)

	_, err = store.Save(ctx, "data.xlsx", strings.NewReader("v2"))
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "v2", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	_, err = store.Save(ctx, "../x.csv", strings.NewReader("x"))
	require.True(t, domain.IsInvalidInput(err))
}
