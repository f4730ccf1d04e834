package mcp

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/url"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/QuangHuy54/IntelligentChatbot/internal/config"
	"github.com/QuangHuy54/IntelligentChatbot/internal/domain"
	"github.com/QuangHuy54/IntelligentChatbot/internal/domain/entity"
)

const (
	clientName    = "intelligent-chatbot"
	clientVersion = "1.0.0"
)

// transportBuilder is overridden in tests to stub the transport factory.
var transportBuilder = buildTransport

// Connector dials every configured tool server.
type Connector struct {
	servers map[string]config.MCPServerConfig
	timeout time.Duration
	logger  *slog.Logger
}

// NewConnector creates a connector for the given servers.
func NewConnector(cfg config.MCPConfig, logger *slog.Logger) *Connector {
	return &Connector{
		servers: cfg.Servers,
		timeout: cfg.ConnectTimeout,
		logger:  logger,
	}
}

// Connect opens one session per server and discovers their tools. Any
// failure closes the sessions opened so far.
func (c *Connector) Connect(ctx context.Context) (domain.ToolClient, error) {
	if len(c.servers) == 0 {
		return nil, domain.NewUnavailableError("tool server", fmt.Errorf("no tool servers configured"))
	}

	connectCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		connectCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	impl := mcpsdk.NewClient(&mcpsdk.Implementation{Name: clientName, Version: clientVersion}, nil)
	client := &Client{routes: make(map[string]*mcpsdk.ClientSession), logger: c.logger}

	// Sorted so tool name collisions resolve the same way on every connect.
	names := make([]string, 0, len(c.servers))
	for name := range c.servers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		// The command of a stdio server outlives the connect timeout.
		transport, err := transportBuilder(ctx, c.servers[name])
		if err != nil {
			_ = client.Close()
			return nil, domain.NewUnavailableError("tool server "+name, err)
		}
		session, err := impl.Connect(connectCtx, transport, nil)
		if err != nil {
			_ = client.Close()
			return nil, domain.NewUnavailableError("tool server "+name, err)
		}
		client.sessions = append(client.sessions, session)

		count := 0
		for tool, err := range session.Tools(connectCtx, nil) {
			if err != nil {
				_ = client.Close()
				return nil, domain.NewUnavailableError("tool server "+name, fmt.Errorf("list tools: %w", err))
			}
			if _, dup := client.routes[tool.Name]; dup {
				c.logger.Warn("duplicate tool name, keeping first", "tool", tool.Name, "server", name)
				continue
			}
			client.routes[tool.Name] = session
			client.tools = append(client.tools, toTool(tool))
			count++
		}
		c.logger.Debug("connected to tool server", "server", name, "tools", count)
	}

	return client, nil
}

// Client routes tool calls to the session that advertised the tool.
type Client struct {
	sessions []*mcpsdk.ClientSession
	routes   map[string]*mcpsdk.ClientSession
	tools    []entity.Tool
	logger   *slog.Logger
}

// Tools returns the discovered tools.
func (c *Client) Tools() []entity.Tool {
	return c.tools
}

// CallTool invokes a tool. Protocol failures are returned as errors; a tool
// that reports its own failure yields a result with IsError set.
func (c *Client) CallTool(ctx context.Context, call entity.ToolCall) (entity.ToolResult, error) {
	session, ok := c.routes[call.Name]
	if !ok {
		return entity.ToolResult{}, domain.NewNotFoundError("Tool", call.Name)
	}

	args := map[string]any{}
	if raw := strings.TrimSpace(call.Arguments); raw != "" {
		if err := sonic.UnmarshalString(raw, &args); err != nil {
			return entity.ToolResult{}, domain.NewInvalidInputError(fmt.Sprintf("arguments for %s are not a JSON object: %v", call.Name, err))
		}
	}

	res, err := session.CallTool(ctx, &mcpsdk.CallToolParams{Name: call.Name, Arguments: args})
	if err != nil {
		return entity.ToolResult{}, fmt.Errorf("call tool %s: %w", call.Name, err)
	}
	return toToolResult(call.ID, res), nil
}

// Close closes every session.
func (c *Client) Close() error {
	var firstErr error
	for _, s := range c.sessions {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.sessions = nil
	return firstErr
}

func toTool(t *mcpsdk.Tool) entity.Tool {
	if t == nil {
		return entity.Tool{}
	}
	return entity.Tool{
		Name:        t.Name,
		Description: t.Description,
		InputSchema: schemaMap(t.InputSchema),
	}
}

// schemaMap converts whatever the SDK decoded into a plain JSON object.
func schemaMap(schema any) map[string]any {
	if schema == nil {
		return map[string]any{"type": "object", "properties": map[string]any{}}
	}
	if m, ok := schema.(map[string]any); ok {
		return m
	}
	raw, err := sonic.Marshal(schema)
	if err != nil {
		return map[string]any{"type": "object"}
	}
	var m map[string]any
	if err := sonic.Unmarshal(raw, &m); err != nil || m == nil {
		return map[string]any{"type": "object"}
	}
	return m
}

func toToolResult(callID string, res *mcpsdk.CallToolResult) entity.ToolResult {
	out := entity.ToolResult{ToolCallID: callID}
	if res == nil {
		return out
	}
	out.IsError = res.IsError

	var texts []string
	for _, content := range res.Content {
		switch c := content.(type) {
		case *mcpsdk.TextContent:
			if c.Text != "" {
				texts = append(texts, c.Text)
			}
		case *mcpsdk.ImageContent:
			if len(c.Data) == 0 {
				continue
			}
			out.Artifacts = append(out.Artifacts, entity.Artifact{
				Kind:     entity.ArtifactKindImage,
				MimeType: c.MIMEType,
				Data:     base64.StdEncoding.EncodeToString(c.Data),
			})
		}
	}
	out.Content = strings.Join(texts, "\n")
	return out
}

func buildTransport(ctx context.Context, srv config.MCPServerConfig) (mcpsdk.Transport, error) {
	switch strings.ToLower(strings.TrimSpace(srv.Transport)) {
	case "", "streamable_http":
		endpoint, err := normalizeHTTPURL(srv.URL)
		if err != nil {
			return nil, err
		}
		return &mcpsdk.StreamableClientTransport{Endpoint: endpoint}, nil
	case "sse":
		endpoint, err := normalizeHTTPURL(srv.URL)
		if err != nil {
			return nil, err
		}
		return &mcpsdk.SSEClientTransport{Endpoint: endpoint}, nil
	case "stdio":
		fields := strings.Fields(srv.Command)
		if len(fields) == 0 {
			return nil, fmt.Errorf("stdio command is empty")
		}
		return &mcpsdk.CommandTransport{Command: exec.CommandContext(ctx, fields[0], fields[1:]...)}, nil
	default:
		return nil, fmt.Errorf("unsupported transport %q", srv.Transport)
	}
}

func normalizeHTTPURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("endpoint is empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("endpoint %q is missing host", raw)
	}
	return u.String(), nil
}
