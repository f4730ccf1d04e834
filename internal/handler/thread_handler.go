package handler

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"

	"github.com/QuangHuy54/IntelligentChatbot/internal/domain"
	"github.com/QuangHuy54/IntelligentChatbot/internal/handler/dto"
)

// ThreadHandler conversation history handler
type ThreadHandler struct {
	usecase domain.ThreadUsecase
	logger  *slog.Logger
}

// NewThreadHandler creates the thread handler
func NewThreadHandler(usecase domain.ThreadUsecase, logger *slog.Logger) *ThreadHandler {
	return &ThreadHandler{
		usecase: usecase,
		logger:  logger,
	}
}

// Create starts a new thread
//
//	@Summary		Create thread
//	@Tags			Threads
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.CreateThreadRequest	false	"Thread title"
//	@Success		201		{object}	Response{data=dto.ThreadResponse}
//	@Failure		400		{object}	Response
//	@Router			/api/threads [post]
func (h *ThreadHandler) Create(ctx context.Context, c *app.RequestContext) {
	var req dto.CreateThreadRequest
	if len(c.Request.Body()) > 0 {
		if err := c.BindJSON(&req); err != nil {
			h.logger.WarnContext(ctx, "failed to bind request", "error", err)
			ErrorResponse(c, domain.NewInvalidInputError("invalid request body"))
			return
		}
	}

	thread, err := h.usecase.CreateThread(ctx, req.Title)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create thread", "error", err)
		ErrorResponse(c, err)
		return
	}

	CreatedResponse(c, dto.ToThreadResponse(thread))
}

// List returns recent threads
//
//	@Summary		List threads
//	@Tags			Threads
//	@Produce		json
//	@Param			limit	query		int	false	"Page size (default 50, max 200)"
//	@Success		200		{object}	Response{data=ListResponse}
//	@Router			/api/threads [get]
func (h *ThreadHandler) List(ctx context.Context, c *app.RequestContext) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			ErrorResponse(c, domain.NewInvalidInputError("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	threads, err := h.usecase.ListThreads(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list threads", "error", err)
		ErrorResponse(c, err)
		return
	}

	SuccessResponse(c, ListResponse{
		Items:      dto.ToThreadResponses(threads),
		TotalCount: len(threads),
	})
}

// Get returns one thread
//
//	@Summary		Get thread
//	@Tags			Threads
//	@Produce		json
//	@Param			id	path		string	true	"Thread ID"
//	@Success		200	{object}	Response{data=dto.ThreadResponse}
//	@Failure		404	{object}	Response
//	@Router			/api/threads/{id} [get]
func (h *ThreadHandler) Get(ctx context.Context, c *app.RequestContext) {
	thread, err := h.usecase.GetThread(ctx, c.Param("id"))
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	SuccessResponse(c, dto.ToThreadResponse(thread))
}

// Messages returns the recorded messages of a thread
//
//	@Summary		List thread messages
//	@Tags			Threads
//	@Produce		json
//	@Param			id	path		string	true	"Thread ID"
//	@Success		200	{object}	Response{data=ListResponse}
//	@Failure		404	{object}	Response
//	@Router			/api/threads/{id}/messages [get]
func (h *ThreadHandler) Messages(ctx context.Context, c *app.RequestContext) {
	msgs, err := h.usecase.ListMessages(ctx, c.Param("id"))
	if err != nil {
		ErrorResponse(c, err)
		return
	}
	SuccessResponse(c, ListResponse{
		Items:      dto.ToMessageResponses(msgs),
		TotalCount: len(msgs),
	})
}
