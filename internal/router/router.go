package router

import (
	"log/slog"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/route"
	"github.com/hertz-contrib/swagger"
	swaggerFiles "github.com/swaggo/files"

	"github.com/QuangHuy54/IntelligentChatbot/internal/handler"
	"github.com/QuangHuy54/IntelligentChatbot/internal/middleware"
)

// Handlers groups the HTTP handlers served by the router.
type Handlers struct {
	Chat   *handler.ChatHandler
	Upload *handler.UploadHandler
	Thread *handler.ThreadHandler
	Health *handler.HealthHandler
}

// StaticDirs are the directories exposed read-only over HTTP.
type StaticDirs struct {
	Uploads string
	Outputs string
}

// Setup sets up all routes
func Setup(h *server.Hertz, logger *slog.Logger, handlers Handlers, dirs StaticDirs) {
	Register(h.Engine, logger, handlers, dirs)
}

// Register installs middleware and routes on an engine.
func Register(e *route.Engine, logger *slog.Logger, handlers Handlers, dirs StaticDirs) {
	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.Logger(logger))
	e.Use(middleware.CORS())

	// Swagger API documentation
	// Access at: http://localhost:8000/swagger/index.html
	e.GET("/swagger/*any", swagger.WrapHandler(swaggerFiles.Handler))

	e.GET("/health", handlers.Health.Health)
	e.POST("/upload", handlers.Upload.Upload)

	// Generated and uploaded files, addressed by file name
	e.StaticFS("/uploads", staticFS(dirs.Uploads))
	e.StaticFS("/outputs", staticFS(dirs.Outputs))

	api := e.Group("/api")
	{
		api.POST("/chat", handlers.Chat.Chat)

		threads := api.Group("/threads")
		{
			threads.POST("", handlers.Thread.Create)
			threads.GET("", handlers.Thread.List)
			threads.GET("/:id", handlers.Thread.Get)
			threads.GET("/:id/messages", handlers.Thread.Messages)
		}
	}
}

func staticFS(root string) *app.FS {
	return &app.FS{
		Root:               root,
		PathRewrite:        app.NewPathSlashesStripper(1),
		GenerateIndexPages: false,
		Compress:           false,
	}
}
