package dynamo

import (
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/QuangHuy54/IntelligentChatbot/internal/domain/entity"
)

func threadItem(t *entity.Thread) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":        &types.AttributeValueMemberS{Value: threadPK(t.ID)},
		"SK":        &types.AttributeValueMemberS{Value: skMeta},
		"threadId":  &types.AttributeValueMemberS{Value: t.ID},
		"title":     &types.AttributeValueMemberS{Value: t.Title},
		"createdAt": &types.AttributeValueMemberS{Value: formatTime(t.CreatedAt)},
		"updatedAt": &types.AttributeValueMemberS{Value: formatTime(t.UpdatedAt)},
	}
}

func messageItem(threadID string, m *entity.StoredMessage) map[string]types.AttributeValue {
	images := make([]types.AttributeValue, 0, len(m.Images))
	for _, img := range m.Images {
		images = append(images, &types.AttributeValueMemberS{Value: img})
	}
	return map[string]types.AttributeValue{
		"PK":        &types.AttributeValueMemberS{Value: threadPK(threadID)},
		"SK":        &types.AttributeValueMemberS{Value: msgSK(m)},
		"messageId": &types.AttributeValueMemberS{Value: m.ID},
		"role":      &types.AttributeValueMemberS{Value: m.Role},
		"text":      &types.AttributeValueMemberS{Value: m.Text},
		"images":    &types.AttributeValueMemberL{Value: images},
		"createdAt": &types.AttributeValueMemberS{Value: formatTime(m.CreatedAt)},
	}
}

func itemToThread(item map[string]types.AttributeValue) (*entity.Thread, error) {
	id, err := strAttr(item, "threadId")
	if err != nil {
		return nil, err
	}
	title, _ := strAttr(item, "title") // allow empty
	createdAt, err := timeAttr(item, "createdAt")
	if err != nil {
		return nil, err
	}
	updatedAt, err := timeAttr(item, "updatedAt")
	if err != nil {
		return nil, err
	}
	return &entity.Thread{ID: id, Title: title, CreatedAt: createdAt, UpdatedAt: updatedAt}, nil
}

func itemToMessage(item map[string]types.AttributeValue) (*entity.StoredMessage, error) {
	id, err := strAttr(item, "messageId")
	if err != nil {
		return nil, err
	}
	role, err := strAttr(item, "role")
	if err != nil {
		return nil, err
	}
	text, _ := strAttr(item, "text") // allow empty
	createdAt, err := timeAttr(item, "createdAt")
	if err != nil {
		return nil, err
	}

	var images []string
	if v, ok := item["images"].(*types.AttributeValueMemberL); ok {
		for _, el := range v.Value {
			if s, ok := el.(*types.AttributeValueMemberS); ok {
				images = append(images, s.Value)
			}
		}
	}

	return &entity.StoredMessage{
		ID:        id,
		Role:      role,
		Text:      text,
		Images:    images,
		CreatedAt: createdAt,
	}, nil
}

func strAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", fmt.Errorf("missing attribute %q", key)
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("attribute %q is not a string", key)
	}
	return s.Value, nil
}

func timeAttr(item map[string]types.AttributeValue, key string) (time.Time, error) {
	s, err := strAttr(item, key)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse attribute %q: %w", key, err)
	}
	return t.UTC(), nil
}
