package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/QuangHuy54/IntelligentChatbot/internal/domain"
	"github.com/QuangHuy54/IntelligentChatbot/internal/domain/entity"
)

const recordTimeout = 5 * time.Second

// chatUsecase implements domain.ChatUsecase.
// It normalizes the history, drives the translator on a per-request
// goroutine and records finished exchanges when a thread is given.
type chatUsecase struct {
	normalizer *MessageNormalizer
	translator *StreamTranslator
	threads    domain.ThreadRepository
	logger     *slog.Logger
}

// NewChatUsecase creates the chat usecase.
//
// Parameters:
//   - normalizer: converts raw UI messages to canonical messages
//   - translator: turns an agent session into wire events
//   - threads: conversation history, only used for requests with a thread id
//   - logger: structured logger
func NewChatUsecase(
	normalizer *MessageNormalizer,
	translator *StreamTranslator,
	threads domain.ThreadRepository,
	logger *slog.Logger,
) domain.ChatUsecase {
	return &chatUsecase{
		normalizer: normalizer,
		translator: translator,
		threads:    threads,
		logger:     logger,
	}
}

// ChatStreaming validates the request and starts streaming.
//
// Events are produced on a dedicated goroutine so blocking work (tool calls,
// artifact writes) never runs on the caller's goroutine. The returned channel
// is closed after the terminal event, or as soon as ctx is done.
func (u *chatUsecase) ChatStreaming(ctx context.Context, req *domain.ChatRequest) (<-chan entity.StreamEvent, error) {
	if err := u.validateChatRequest(ctx, req); err != nil {
		return nil, err
	}

	messages := u.normalizer.Normalize(ctx, req.Messages)
	if len(messages) == 0 {
		return nil, domain.NewInvalidInputError("messages contain no usable content")
	}

	u.logger.InfoContext(ctx, "chat stream started",
		"messages", len(req.Messages),
		"canonical_messages", len(messages),
		"thread_id", req.ThreadID)

	out := make(chan entity.StreamEvent)
	go func() {
		defer close(out)

		var tr transcript
		for ev := range u.translator.Translate(ctx, messages) {
			tr.observe(ev)
			select {
			case out <- ev:
			case <-ctx.Done():
				u.logger.InfoContext(ctx, "client disconnected, stopping stream")
				return
			}
		}

		if req.ThreadID != "" && tr.finished {
			u.record(ctx, req, &tr)
		}
	}()

	return out, nil
}

func (u *chatUsecase) validateChatRequest(ctx context.Context, req *domain.ChatRequest) error {
	if req == nil || len(req.Messages) == 0 {
		return domain.NewInvalidInputError("messages is required")
	}
	if req.ThreadID == "" {
		return nil
	}
	if _, err := uuid.Parse(req.ThreadID); err != nil {
		return domain.NewInvalidInputError("threadId must be a UUID")
	}
	if _, err := u.threads.GetThread(ctx, req.ThreadID); err != nil {
		return err
	}
	return nil
}

// record stores the latest user turn and the assistant reply. Failures are
// logged only: the client already has its answer.
func (u *chatUsecase) record(ctx context.Context, req *domain.ChatRequest, t *transcript) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	now := time.Now().UTC()
	var stored []*entity.StoredMessage
	if last := req.Messages[len(req.Messages)-1]; last.EffectiveRole() == entity.RoleUser {
		stored = append(stored, &entity.StoredMessage{
			ID:        uuid.NewString(),
			ThreadID:  req.ThreadID,
			Role:      entity.RoleUser,
			Text:      strings.Join(last.Content.TextSegments(), " "),
			Images:    attachmentURLs(last.Attachments),
			CreatedAt: now,
		})
	}
	stored = append(stored, &entity.StoredMessage{
		ID:        uuid.NewString(),
		ThreadID:  req.ThreadID,
		Role:      entity.RoleAssistant,
		Text:      t.text.String(),
		Images:    t.images,
		CreatedAt: now.Add(time.Millisecond),
	})

	if err := u.threads.AppendMessages(ctx, req.ThreadID, stored); err != nil {
		u.logger.ErrorContext(ctx, "failed to record chat exchange", "thread_id", req.ThreadID, "error", err)
		return
	}
	u.logger.DebugContext(ctx, "chat exchange recorded", "thread_id", req.ThreadID, "messages", len(stored))
}

// transcript accumulates what the client was shown.
type transcript struct {
	text     strings.Builder
	images   []string
	finished bool
}

func (t *transcript) observe(ev entity.StreamEvent) {
	switch ev.Type {
	case entity.EventTextDelta:
		t.text.WriteString(ev.Text)
	case entity.EventImage:
		t.images = append(t.images, ev.ImageURL)
	case entity.EventFinish:
		t.finished = true
	}
}

// attachmentURLs lists the URLs a user attached, skipping inline payloads.
func attachmentURLs(atts []entity.Attachment) []string {
	var urls []string
	for _, att := range atts {
		for _, p := range att.Content {
			v := p.Image
			if att.Type == entity.AttachmentFile {
				v = p.Text
			}
			if strings.HasPrefix(v, "http://") || strings.HasPrefix(v, "https://") {
				urls = append(urls, v)
			}
		}
	}
	return urls
}
