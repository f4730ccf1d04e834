package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/network/netpoll"
	"github.com/spf13/cobra"

	_ "github.com/QuangHuy54/IntelligentChatbot/docs" // swagger docs
	"github.com/QuangHuy54/IntelligentChatbot/internal/config"
	"github.com/QuangHuy54/IntelligentChatbot/internal/handler"
	"github.com/QuangHuy54/IntelligentChatbot/internal/infrastructure/agent"
	"github.com/QuangHuy54/IntelligentChatbot/internal/infrastructure/llm/openai"
	"github.com/QuangHuy54/IntelligentChatbot/internal/infrastructure/mcp"
	"github.com/QuangHuy54/IntelligentChatbot/internal/infrastructure/storage"
	"github.com/QuangHuy54/IntelligentChatbot/internal/router"
	"github.com/QuangHuy54/IntelligentChatbot/internal/usecase"
	"github.com/QuangHuy54/IntelligentChatbot/pkg/logger"
)

//	@title			IntelligentChatbot API
//	@version		0.1.0
//	@description	Chat backend streaming agent replies that use spreadsheet and image tools

//	@contact.name	API Support

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8000
//	@BasePath	/

var (
	cfgFile string
	version = "0.1.0"
)

var rootCmd = &cobra.Command{
	Use:   "chatbot-server",
	Short: "Chat backend for spreadsheet and image analysis",
	Long: `chatbot-server bridges the chat UI to an LLM agent that calls tools on
MCP servers, streaming replies to the browser as server-sent events.`,
	Version: version,
	Run:     runServer,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to config file (default ./configs/config.yaml)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func runServer(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logCloser, err := logger.Setup(cfg.Log)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logCloser.Close()

	slog.Info("chatbot server starting...",
		"version", version,
		"config", cfgFile,
	)

	hlog.SetLogger(logger.NewHertzSlogAdapter(slog.Default()))
	if cfg.Server.Mode == "debug" {
		hlog.SetLevel(hlog.LevelDebug)
	} else {
		hlog.SetLevel(hlog.LevelInfo)
	}

	for _, dir := range []string{cfg.Storage.UploadDir, cfg.Storage.OutputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			slog.Error("failed to create storage directory", "dir", dir, "error", err)
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	deps, err := newAWSDeps(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize AWS clients", "error", err)
		os.Exit(1)
	}

	// Conversation history
	threads, err := newThreadStore(ctx, cfg, deps, slog.Default())
	if err != nil {
		slog.Error("failed to initialize thread store", "driver", cfg.ThreadStore.Driver, "error", err)
		os.Exit(1)
	}
	defer threads.Close()
	slog.Info("thread store ready", "driver", cfg.ThreadStore.Driver)

	// Agent
	keys, err := apiKeySource(cfg, deps)
	if err != nil {
		slog.Error("failed to configure llm api key", "error", err)
		os.Exit(1)
	}
	model := openai.NewClient(
		openai.WithBaseURL(cfg.LLM.BaseURL),
		openai.WithHTTPClient(&http.Client{Timeout: cfg.LLM.Timeout}),
		openai.WithAPIKeySource(keys),
	)
	temperature := cfg.LLM.Temperature
	runtime := agent.NewRuntime(
		mcp.NewConnector(cfg.MCP, slog.Default()),
		model,
		agent.Options{
			Model:        cfg.LLM.Model,
			Temperature:  &temperature,
			MaxTokens:    cfg.LLM.MaxTokens,
			SystemPrompt: cfg.Agent.SystemPrompt,
			MaxSteps:     cfg.Agent.MaxSteps,
		},
		slog.Default(),
	)

	// Chat
	resolver := usecase.NewAttachmentResolver(cfg.Attachments.ContainerName, cfg.Storage.LocalRoot, slog.Default())
	normalizer := usecase.NewMessageNormalizer(resolver, slog.Default())
	translator := usecase.NewStreamTranslator(
		runtime,
		storage.NewArtifactStore(cfg.Storage.OutputDir, slog.Default()),
		cfg.OutputBaseURL(),
		slog.Default(),
	)
	chatUsecase := usecase.NewChatUsecase(normalizer, translator, threads.repo, slog.Default())

	// Uploads and history
	uploadUsecase := usecase.NewUploadUsecase(
		storage.NewUploadStore(cfg.Storage.UploadDir, slog.Default()),
		cfg.UploadURL(""),
		slog.Default(),
	)
	threadUsecase := usecase.NewThreadUsecase(threads.repo, slog.Default())

	handlers := router.Handlers{
		Chat:   handler.NewChatHandler(chatUsecase, slog.Default()),
		Upload: handler.NewUploadHandler(uploadUsecase, slog.Default()),
		Thread: handler.NewThreadHandler(threadUsecase, slog.Default()),
		Health: handler.NewHealthHandler(),
	}
	slog.Info("handlers initialized",
		"mcp_servers", len(cfg.MCP.Servers),
		"model", cfg.LLM.Model,
	)

	h := server.Default(
		server.WithHostPorts(cfg.GetServerAddr()),
		server.WithReadTimeout(cfg.GetReadTimeout()),
		server.WithWriteTimeout(cfg.GetWriteTimeout()),
		server.WithMaxRequestBodySize(cfg.Server.MaxRequestBodySize*1024*1024),
		server.WithTransport(netpoll.NewTransporter),
	)

	router.Setup(h, slog.Default(), handlers, router.StaticDirs{
		Uploads: cfg.Storage.UploadDir,
		Outputs: cfg.Storage.OutputDir,
	})

	slog.Info("server started successfully",
		"address", cfg.GetServerAddr(),
		"public_base_url", cfg.Server.PublicBaseURL,
		"mode", cfg.Server.Mode,
	)

	// Graceful shutdown
	go func() {
		if err := h.Run(); err != nil {
			slog.Error("server run failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := h.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}

	slog.Info("server stopped gracefully")
}
