package usecase

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/QuangHuy54/IntelligentChatbot/internal/domain"
	"github.com/QuangHuy54/IntelligentChatbot/internal/domain/entity"
	"github.com/QuangHuy54/IntelligentChatbot/internal/domain/mocks"
)

// dirStore writes into a temp dir, standing in for the file store.
func dirStore(t *testing.T) *mocks.MockUploadStore {
	dir := t.TempDir()
	return &mocks.MockUploadStore{
		SaveFunc: func(_ context.Context, name string, r io.Reader) (string, error) {
			data, err := io.ReadAll(r)
			if err != nil {
				return "", err
			}
			path := filepath.Join(dir, name)
			return path, os.WriteFile(path, data, 0o644)
		},
	}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.White)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestUploadUsecase_Classify(t *testing.T) {
	tests := []struct {
		name string
		file string
		body []byte
		want entity.UploadResult
	}{
		{
			name: "spreadsheet",
			file: "Sales.XLSX",
			body: []byte("PK..."),
			want: entity.UploadResult{Type: entity.UploadExcel, URL: "http://localhost:8000/uploads/Sales.XLSX"},
		},
		{
			name: "csv",
			file: "data.csv",
			body: []byte("a,b\n1,2\n"),
			want: entity.UploadResult{Type: entity.UploadExcel, URL: "http://localhost:8000/uploads/data.csv"},
		},
		{
			name: "png with dimensions",
			file: "chart.png",
			body: pngBytes(t, 32, 16),
			want: entity.UploadResult{Type: entity.UploadImage, URL: "http://localhost:8000/uploads/chart.png", Width: 32, Height: 16},
		},
		{
			name: "undecodable image",
			file: "broken.jpg",
			body: []byte("not a jpeg"),
			want: entity.UploadResult{Type: entity.UploadImage, URL: "http://localhost:8000/uploads/broken.jpg"},
		},
		{
			name: "unknown",
			file: "notes.txt",
			body: []byte("hello"),
			want: entity.UploadResult{Type: entity.UploadUnknown, URL: "http://localhost:8000/uploads/notes.txt"},
		},
		{
			name: "path stripped and escaped",
			file: "../../my report.csv",
			body: []byte("x"),
			want: entity.UploadResult{Type: entity.UploadExcel, URL: "http://localhost:8000/uploads/my%20report.csv"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := NewUploadUsecase(dirStore(t), "http://localhost:8000/uploads/", testLogger())
			got, err := uc.Upload(context.Background(), tt.file, bytes.NewReader(tt.body))
			require.NoError(t, err)
			require.Equal(t, tt.want, *got)
		})
	}
}

func TestUploadUsecase_Errors(t *testing.T) {
	uc := NewUploadUsecase(dirStore(t), "http://localhost:8000/uploads", testLogger())
	_, err := uc.Upload(context.Background(), "", bytes.NewReader(nil))
	require.True(t, domain.IsInvalidInput(err))

	failing := &mocks.MockUploadStore{
		SaveFunc: func(context.Context, string, io.Reader) (string, error) {
			return "", domain.NewInternalError(os.ErrPermission)
		},
	}
	uc = NewUploadUsecase(failing, "http://localhost:8000/uploads", testLogger())
	_, err = uc.Upload(context.Background(), "a.csv", bytes.NewReader(nil))
	require.True(t, domain.IsInternalError(err))
}
