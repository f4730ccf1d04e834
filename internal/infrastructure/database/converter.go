package database

import (
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/QuangHuy54/IntelligentChatbot/internal/domain/entity"
)

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanThread converts a threads row into entity.Thread
func scanThread(s scanner) (*entity.Thread, error) {
	var t entity.Thread
	if err := s.Scan(&t.ID, &t.Title, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.CreatedAt = normalizeTime(t.CreatedAt)
	t.UpdatedAt = normalizeTime(t.UpdatedAt)
	return &t, nil
}

// scanMessage converts a thread_messages row into entity.StoredMessage
func scanMessage(s scanner) (*entity.StoredMessage, error) {
	var (
		m      entity.StoredMessage
		images string
	)
	if err := s.Scan(&m.ID, &m.ThreadID, &m.Role, &m.Text, &images, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.CreatedAt = normalizeTime(m.CreatedAt)
	decoded, err := decodeImages(images)
	if err != nil {
		return nil, err
	}
	m.Images = decoded
	return &m, nil
}

// encodeImages stores image URLs as a JSON array.
func encodeImages(images []string) (string, error) {
	if len(images) == 0 {
		return "[]", nil
	}
	s, err := sonic.MarshalString(images)
	if err != nil {
		return "", fmt.Errorf("encode images: %w", err)
	}
	return s, nil
}

func decodeImages(raw string) ([]string, error) {
	if raw == "" || raw == "[]" {
		return nil, nil
	}
	var images []string
	if err := sonic.UnmarshalString(raw, &images); err != nil {
		return nil, fmt.Errorf("decode images: %w", err)
	}
	return images, nil
}
