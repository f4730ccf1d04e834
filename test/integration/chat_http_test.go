//go:build integration
// +build integration

package integration

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/QuangHuy54/IntelligentChatbot/internal/config"
	"github.com/QuangHuy54/IntelligentChatbot/internal/handler"
	"github.com/QuangHuy54/IntelligentChatbot/internal/infrastructure/agent"
	"github.com/QuangHuy54/IntelligentChatbot/internal/infrastructure/llm/openai"
	"github.com/QuangHuy54/IntelligentChatbot/internal/infrastructure/mcp"
	"github.com/QuangHuy54/IntelligentChatbot/internal/infrastructure/memory"
	"github.com/QuangHuy54/IntelligentChatbot/internal/infrastructure/storage"
	"github.com/QuangHuy54/IntelligentChatbot/internal/router"
	"github.com/QuangHuy54/IntelligentChatbot/internal/usecase"
)

var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// TestChatHTTP_SSE runs the whole server against a scripted model and a real
// tool server over streamable HTTP.
// Run with: go test -tags integration ./test/integration/...
func TestChatHTTP_SSE(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	workDir := t.TempDir()

	toolServer := newToolServer(t)
	defer toolServer.Close()
	model := newScriptedModel(t)
	defer model.Close()

	port := getEnvOrDefault("CHATBOT_TEST_PORT", "18080")
	baseURL := "http://127.0.0.1:" + port
	cfg := &config.Config{
		Server: config.ServerConfig{
			Host:          "127.0.0.1",
			PublicBaseURL: baseURL,
		},
		Storage: config.StorageConfig{
			UploadDir: filepath.Join(workDir, "uploads"),
			OutputDir: filepath.Join(workDir, "outputs"),
			LocalRoot: workDir,
		},
		MCP: config.MCPConfig{
			Servers: map[string]config.MCPServerConfig{
				"excel": {Transport: "streamable_http", URL: toolServer.URL},
			},
			ConnectTimeout: 10 * time.Second,
		},
	}

	runtime := agent.NewRuntime(
		mcp.NewConnector(cfg.MCP, logger),
		openai.NewClient(openai.WithBaseURL(model.URL), openai.WithAPIKeySource(openai.StaticKey("test-key"))),
		agent.Options{Model: "test-model", MaxSteps: 5},
		logger,
	)
	threads := memory.NewThreadRepository()
	resolver := usecase.NewAttachmentResolver("excel-container", cfg.Storage.LocalRoot, logger)
	chatUC := usecase.NewChatUsecase(
		usecase.NewMessageNormalizer(resolver, logger),
		usecase.NewStreamTranslator(runtime, storage.NewArtifactStore(cfg.Storage.OutputDir, logger), cfg.OutputBaseURL(), logger),
		threads,
		logger,
	)
	uploadUC := usecase.NewUploadUsecase(storage.NewUploadStore(cfg.Storage.UploadDir, logger), cfg.UploadURL(""), logger)
	threadUC := usecase.NewThreadUsecase(threads, logger)

	h := server.New(server.WithHostPorts("127.0.0.1:" + port))
	router.Setup(h, logger, router.Handlers{
		Chat:   handler.NewChatHandler(chatUC, logger),
		Upload: handler.NewUploadHandler(uploadUC, logger),
		Thread: handler.NewThreadHandler(threadUC, logger),
		Health: handler.NewHealthHandler(),
	}, router.StaticDirs{Uploads: cfg.Storage.UploadDir, Outputs: cfg.Storage.OutputDir})

	go func() {
		if err := h.Run(); err != nil {
			logger.Error("server failed", "error", err)
		}
	}()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = h.Shutdown(ctx)
	}()
	waitForHealthy(t, baseURL)

	client := &http.Client{Timeout: 60 * time.Second}

	t.Run("tool call produces image and text", func(t *testing.T) {
		events := postChat(t, client, baseURL, `{"messages":[{"role":"user","content":"Plot revenue"}]}`)

		require.NotEmpty(t, events)
		assert.Equal(t, "image", events[0]["type"])
		imageURL, _ := events[0]["image"].(string)
		assert.True(t, strings.HasPrefix(imageURL, baseURL+"/outputs/"), imageURL)

		var text strings.Builder
		for _, ev := range events {
			if ev["type"] == "text-delta" {
				text.WriteString(ev["textDelta"].(string))
			}
		}
		assert.Equal(t, "Here is the chart.", text.String())
		assert.Equal(t, map[string]any{"type": "finish", "finishReason": "stop"}, events[len(events)-1])

		// The persisted artifact is served back
		resp, err := client.Get(imageURL)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, pngBytes, body)
	})

	t.Run("invalid body yields a single error event", func(t *testing.T) {
		events := postChat(t, client, baseURL, `{"messages":`)
		require.Len(t, events, 1)
		assert.Equal(t, "error", events[0]["type"])
	})

	t.Run("exchange is recorded in thread", func(t *testing.T) {
		resp, err := client.Post(baseURL+"/api/threads", "application/json", strings.NewReader(`{"title":"Revenue"}`))
		require.NoError(t, err)
		var created struct {
			Data struct {
				ID string `json:"id"`
			} `json:"data"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
		resp.Body.Close()
		require.NotEmpty(t, created.Data.ID)

		postChat(t, client, baseURL, fmt.Sprintf(`{"threadId":%q,"messages":[{"content":"Plot revenue"}]}`, created.Data.ID))

		resp, err = client.Get(baseURL + "/api/threads/" + created.Data.ID + "/messages")
		require.NoError(t, err)
		defer resp.Body.Close()
		var listed struct {
			Data struct {
				Items []struct {
					Role   string   `json:"role"`
					Text   string   `json:"text"`
					Images []string `json:"images"`
				} `json:"items"`
			} `json:"data"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
		require.Len(t, listed.Data.Items, 2)
		assert.Equal(t, "user", listed.Data.Items[0].Role)
		assert.Equal(t, "assistant", listed.Data.Items[1].Role)
		assert.Equal(t, "Here is the chart.", listed.Data.Items[1].Text)
		assert.Len(t, listed.Data.Items[1].Images, 1)
	})
}

func newToolServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := mcpsdk.NewServer(&mcpsdk.Implementation{Name: "excel", Version: "test"}, nil)
	srv.AddTool(&mcpsdk.Tool{
		Name:        "plot",
		Description: "Render a chart",
		InputSchema: map[string]any{"type": "object", "properties": map[string]any{}},
	}, func(context.Context, *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		return &mcpsdk.CallToolResult{
			Content: []mcpsdk.Content{
				&mcpsdk.TextContent{Text: "chart ready"},
				&mcpsdk.ImageContent{Data: pngBytes, MIMEType: "image/png"},
			},
		}, nil
	})
	mcpHandler := mcpsdk.NewStreamableHTTPHandler(func(*http.Request) *mcpsdk.Server { return srv }, nil)
	return httptest.NewServer(mcpHandler)
}

// newScriptedModel answers the first completion of a conversation with a
// plot tool call and the follow-up with text.
func newScriptedModel(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Role string `json:"role"`
			} `json:"messages"`
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &req)

		w.Header().Set("Content-Type", "text/event-stream")
		last := req.Messages[len(req.Messages)-1].Role
		if last != "tool" {
			fmt.Fprint(w, `data: {"id":"c1","choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"id":"call_1","type":"function","function":{"name":"plot","arguments":"{}"}}]}}]}`+"\n\n")
			fmt.Fprint(w, `data: {"id":"c1","choices":[{"index":0,"delta":{},"finish_reason":"tool_calls"}]}`+"\n\n")
		} else {
			fmt.Fprint(w, `data: {"id":"c2","choices":[{"index":0,"delta":{"content":"Here is "}}]}`+"\n\n")
			fmt.Fprint(w, `data: {"id":"c2","choices":[{"index":0,"delta":{"content":"the chart."}}]}`+"\n\n")
			fmt.Fprint(w, `data: {"id":"c2","choices":[{"index":0,"delta":{},"finish_reason":"stop"}]}`+"\n\n")
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
}

func waitForHealthy(t *testing.T, baseURL string) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(baseURL + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatal("server did not become healthy")
}

// postChat sends a chat request and decodes every SSE data payload.
func postChat(t *testing.T, client *http.Client, baseURL, body string) []map[string]any {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, baseURL+"/api/chat", bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	var events []map[string]any
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		var ev map[string]any
		require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(strings.TrimPrefix(line, "data:"))), &ev))
		events = append(events, ev)
	}
	require.NoError(t, scanner.Err())
	return events
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
