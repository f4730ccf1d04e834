package handler

import (
	"context"
	"log/slog"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/QuangHuy54/IntelligentChatbot/internal/domain"
	"github.com/QuangHuy54/IntelligentChatbot/internal/handler/dto"
	"github.com/QuangHuy54/IntelligentChatbot/internal/middleware"
)

// uploadField is the multipart field holding the file.
const uploadField = "file"

// UploadHandler accepts file uploads from the chat UI
type UploadHandler struct {
	usecase domain.UploadUsecase
	logger  *slog.Logger
}

// NewUploadHandler creates the upload handler
func NewUploadHandler(usecase domain.UploadUsecase, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{
		usecase: usecase,
		logger:  logger,
	}
}

// Upload stores a file and reports how it was classified
//
//	@Summary		Upload a file
//	@Description	Saves the file under the upload directory. Images report their dimensions.
//	@Tags			Upload
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file				true	"File to upload"
//	@Success		200		{object}	dto.UploadResponse
//	@Failure		400		{object}	Response
//	@Failure		500		{object}	Response
//	@Router			/upload [post]
func (h *UploadHandler) Upload(ctx context.Context, c *app.RequestContext) {
	fh, err := c.FormFile(uploadField)
	if err != nil {
		h.logger.WarnContext(ctx, "upload without file", "request_id", middleware.GetRequestID(c), "error", err)
		ErrorResponse(c, domain.NewInvalidInputError("multipart field 'file' is required"))
		return
	}

	f, err := fh.Open()
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to open uploaded file", "error", err)
		ErrorResponse(c, domain.NewInternalError(err))
		return
	}
	defer f.Close()

	result, err := h.usecase.Upload(ctx, fh.Filename, f)
	if err != nil {
		h.logger.ErrorContext(ctx, "upload failed", "request_id", middleware.GetRequestID(c), "filename", fh.Filename, "error", err)
		ErrorResponse(c, err)
		return
	}

	c.JSON(consts.StatusOK, dto.ToUploadResponse(result))
}
