package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// HealthHandler health check handler
type HealthHandler struct{}

// NewHealthHandler creates the health check handler
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// Health liveness probe
//
//	@Summary		Health check
//	@Description	Reports that the process is serving requests
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Router			/health [get]
func (h *HealthHandler) Health(ctx context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, utils.H{
		"status": "healthy",
	})
}
