package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/QuangHuy54/IntelligentChatbot/internal/domain/entity"
)

// MessageNormalizer converts a raw chat history into canonical messages.
type MessageNormalizer struct {
	resolver *AttachmentResolver
	logger   *slog.Logger
}

// NewMessageNormalizer creates a normalizer backed by resolver.
func NewMessageNormalizer(resolver *AttachmentResolver, logger *slog.Logger) *MessageNormalizer {
	return &MessageNormalizer{
		resolver: resolver,
		logger:   logger,
	}
}

// Normalize keeps message order. User messages keep every part; assistant
// and system messages are collapsed to their text. Messages left without
// parts, or with an unsupported role, are dropped.
func (n *MessageNormalizer) Normalize(ctx context.Context, raw []entity.RawMessage) []entity.CanonicalMessage {
	out := make([]entity.CanonicalMessage, 0, len(raw))
	for i, msg := range raw {
		role := msg.EffectiveRole()
		if role != entity.RoleUser && role != entity.RoleAssistant && role != entity.RoleSystem {
			n.logger.DebugContext(ctx, "dropping message with unsupported role", "index", i, "role", role)
			continue
		}

		if msg.Content.Unrecognized {
			n.logger.DebugContext(ctx, "ignoring content of unrecognized shape", "index", i, "role", role)
		}

		parts := n.collectParts(ctx, msg)
		if len(parts) == 0 {
			continue
		}

		if role == entity.RoleUser {
			out = append(out, entity.CanonicalMessage{Role: role, Parts: parts})
			continue
		}

		texts := textsOf(parts)
		if len(texts) == 0 {
			n.logger.DebugContext(ctx, "dropping non-user message without text", "index", i, "role", role)
			continue
		}
		out = append(out, entity.CanonicalMessage{
			Role:  role,
			Parts: []entity.ContentPart{entity.TextPart{Text: strings.Join(texts, " ")}},
		})
	}
	return out
}

func (n *MessageNormalizer) collectParts(ctx context.Context, msg entity.RawMessage) []entity.ContentPart {
	var parts []entity.ContentPart
	for _, text := range msg.Content.TextSegments() {
		parts = append(parts, entity.TextPart{Text: text})
	}
	for _, att := range msg.Attachments {
		parts = append(parts, n.resolver.Resolve(ctx, att)...)
	}
	return parts
}

func textsOf(parts []entity.ContentPart) []string {
	var texts []string
	for _, p := range parts {
		if t, ok := p.(entity.TextPart); ok {
			texts = append(texts, t.Text)
		}
	}
	return texts
}
