package handler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/cloudwego/hertz/pkg/protocol/sse"

	"github.com/QuangHuy54/IntelligentChatbot/internal/domain"
	"github.com/QuangHuy54/IntelligentChatbot/internal/domain/entity"
	"github.com/QuangHuy54/IntelligentChatbot/internal/handler/dto"
	"github.com/QuangHuy54/IntelligentChatbot/internal/middleware"
)

// eventSink receives SSE events. WriteEvent flushes each event.
type eventSink interface {
	WriteEvent(id, event string, data []byte) error
	Close() error
}

// newEventSink is replaced in tests.
var newEventSink = func(c *app.RequestContext) eventSink {
	return sse.NewWriter(c)
}

// ChatHandler streams chat responses
type ChatHandler struct {
	usecase domain.ChatUsecase
	logger  *slog.Logger
}

// NewChatHandler creates the chat handler
func NewChatHandler(usecase domain.ChatUsecase, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		usecase: usecase,
		logger:  logger,
	}
}

// Chat streams the assistant's reply as server-sent events
//
//	@Summary		Stream a chat reply
//	@Description	Each SSE data payload is one JSON event: text-delta, image, finish or error. Request errors are reported as a single error event with status 200.
//	@Tags			Chat
//	@Accept			json
//	@Produce		text/event-stream
//	@Param			request	body		dto.ChatRequest		true	"Conversation so far"
//	@Success		200		{object}	dto.StreamEvent		"one event per data line"
//	@Router			/api/chat [post]
func (h *ChatHandler) Chat(ctx context.Context, c *app.RequestContext) {
	logger := h.logger.With("request_id", middleware.GetRequestID(c))

	var req dto.ChatRequest
	if err := c.BindJSON(&req); err != nil {
		logger.WarnContext(ctx, "failed to bind chat request", "error", err)
		h.writeSingleError(c, logger, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	logger.InfoContext(ctx, "chat request received",
		"messages", len(req.Messages),
		"thread_id", req.ThreadID,
	)

	// Cancelled when the handler returns so a producer blocked on a gone
	// client is released.
	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	events, err := h.usecase.ChatStreaming(streamCtx, req.ToDomain())
	if err != nil {
		logger.WarnContext(ctx, "chat request rejected", "error", err)
		h.writeSingleError(c, logger, domain.UserMessage(err))
		return
	}

	c.SetStatusCode(consts.StatusOK)
	sink := newEventSink(c)
	defer sink.Close()

	for ev := range events {
		if err := writeEvent(sink, ev); err != nil {
			logger.WarnContext(ctx, "client went away", "error", err)
			return
		}
		if ev.Type == entity.EventError {
			logger.ErrorContext(ctx, "chat stream failed", "error", ev.Message)
		}
	}
}

func (h *ChatHandler) writeSingleError(c *app.RequestContext, logger *slog.Logger, message string) {
	c.SetStatusCode(consts.StatusOK)
	sink := newEventSink(c)
	defer sink.Close()
	if err := writeEvent(sink, entity.ErrorEvent(message)); err != nil {
		logger.Warn("failed to write error event", "error", err)
	}
}

func writeEvent(sink eventSink, ev entity.StreamEvent) error {
	data, err := sonic.Marshal(dto.ToStreamEvent(ev))
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return sink.WriteEvent("", "", data)
}
