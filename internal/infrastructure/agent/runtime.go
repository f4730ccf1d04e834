package agent

import (
	"context"
	"log/slog"

	"github.com/QuangHuy54/IntelligentChatbot/internal/domain"
	"github.com/QuangHuy54/IntelligentChatbot/internal/infrastructure/llm/openai"
)

const defaultMaxSteps = 25

// ChatModel streams one chat completion.
type ChatModel interface {
	StreamChatWithTools(ctx context.Context, req openai.ChatRequest, onDelta func(string) error) (openai.ChatResponse, error)
}

// Options configures the tool loop.
type Options struct {
	Model        string
	Temperature  *float64
	MaxTokens    int
	SystemPrompt string
	MaxSteps     int
}

// Runtime opens agent sessions backed by a chat model and the tool servers.
type Runtime struct {
	connector  domain.ToolConnector
	model      ChatModel
	opts       Options
	middleware []ToolMiddleware
	logger     *slog.Logger
}

// NewRuntime creates a runtime. RecoverToolErrors is always the outermost
// tool middleware; extra middleware runs inside it.
func NewRuntime(connector domain.ToolConnector, model ChatModel, opts Options, logger *slog.Logger, mws ...ToolMiddleware) *Runtime {
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = defaultMaxSteps
	}
	chain := append([]ToolMiddleware{RecoverToolErrors(logger)}, mws...)
	return &Runtime{
		connector:  connector,
		model:      model,
		opts:       opts,
		middleware: chain,
		logger:     logger,
	}
}

// Open connects to the tool servers and returns a session over the tools
// they advertise.
func (r *Runtime) Open(ctx context.Context) (domain.AgentSession, error) {
	client, err := r.connector.Connect(ctx)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("agent session opened", "tools", len(client.Tools()))

	return &Session{
		client: client,
		model:  r.model,
		opts:   r.opts,
		invoke: Chain(client.CallTool, r.middleware...),
		logger: r.logger,
	}, nil
}
