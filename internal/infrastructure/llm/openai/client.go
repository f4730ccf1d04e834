package openai

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	maxLineSize    = 4 << 20
)

// HTTPStatusError captures non-2xx upstream responses.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("openai: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

// HTTPStatusCode returns the upstream status.
func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Client is a streaming client for OpenAI-compatible chat completions.
type Client struct {
	baseURL    string
	httpClient *http.Client
	keys       APIKeySource
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSpace(baseURL)
	}
}

// WithHTTPClient sets the HTTP client. Its Timeout bounds a whole streamed
// completion.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithAPIKeySource sets where the API key comes from.
func WithAPIKeySource(src APIKeySource) Option {
	return func(c *Client) {
		c.keys = src
	}
}

// NewClient creates a client. Without WithAPIKeySource every request fails.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func chatURL(baseURL string) string {
	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	if strings.HasSuffix(base, "/v1") {
		return base + "/chat/completions"
	}
	return base + "/v1/chat/completions"
}

// StreamChatWithTools sends a streaming completion. Text deltas are passed to
// onDelta as they arrive; an error from onDelta aborts the request. Tool call
// fragments are accumulated and returned in the response.
func (c *Client) StreamChatWithTools(ctx context.Context, req ChatRequest, onDelta func(string) error) (ChatResponse, error) {
	if req.Model == "" {
		return ChatResponse{}, errors.New("openai: model must not be empty")
	}
	if c.keys == nil {
		return ChatResponse{}, errors.New("openai: api key is not configured")
	}
	apiKey, err := c.keys.APIKey(ctx)
	if err != nil {
		return ChatResponse{}, err
	}

	body, err := sonic.Marshal(wireRequest{
		Model:       req.Model,
		Messages:    req.Messages,
		Tools:       req.Tools,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Stream:      true,
	})
	if err != nil {
		return ChatResponse{}, fmt.Errorf("openai: marshal request: %w", err)
	}

	url := chatURL(c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return ChatResponse{}, fmt.Errorf("openai: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	res, err := c.httpClient.Do(httpReq)
	if err != nil {
		return ChatResponse{}, fmt.Errorf("openai: request failed: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return ChatResponse{}, &HTTPStatusError{
			StatusCode: res.StatusCode,
			URL:        url,
			Body:       strings.TrimSpace(string(buf)),
		}
	}

	return readStream(res.Body, onDelta)
}

// readStream consumes an SSE body of chat.completion.chunk objects.
func readStream(r io.Reader, onDelta func(string) error) (ChatResponse, error) {
	var (
		resp    ChatResponse
		content strings.Builder
		calls   = map[int]*ToolCall{}
		sawDone bool
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "[DONE]" {
			sawDone = true
			break
		}

		var chunk streamChunk
		if err := sonic.UnmarshalString(data, &chunk); err != nil {
			return ChatResponse{}, fmt.Errorf("openai: decode stream chunk: %w", err)
		}
		if chunk.Error != nil {
			return ChatResponse{}, fmt.Errorf("openai: stream error: %s", chunk.Error.Message)
		}
		if resp.ID == "" {
			resp.ID = chunk.ID
		}

		for _, choice := range chunk.Choices {
			if choice.Index != 0 {
				continue
			}
			if delta := choice.Delta.Content; delta != "" {
				content.WriteString(delta)
				if onDelta != nil {
					if err := onDelta(delta); err != nil {
						return ChatResponse{}, err
					}
				}
			}
			for _, tc := range choice.Delta.ToolCalls {
				call, ok := calls[tc.Index]
				if !ok {
					call = &ToolCall{Type: "function"}
					calls[tc.Index] = call
				}
				if tc.ID != "" {
					call.ID = tc.ID
				}
				if tc.Type != "" {
					call.Type = tc.Type
				}
				call.Function.Name += tc.Function.Name
				call.Function.Arguments += tc.Function.Arguments
			}
			if choice.FinishReason != nil {
				resp.FinishReason = *choice.FinishReason
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return ChatResponse{}, fmt.Errorf("openai: read stream: %w", err)
	}
	if !sawDone && resp.FinishReason == "" {
		return ChatResponse{}, errors.New("openai: stream ended unexpectedly")
	}

	resp.Content = content.String()
	resp.ToolCalls = orderedCalls(calls)
	if len(resp.ToolCalls) > 0 && resp.FinishReason == "" {
		resp.FinishReason = "tool_calls"
	}
	return resp, nil
}

func orderedCalls(calls map[int]*ToolCall) []ToolCall {
	if len(calls) == 0 {
		return nil
	}
	indexes := make([]int, 0, len(calls))
	for i := range calls {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)
	out := make([]ToolCall, 0, len(indexes))
	for _, i := range indexes {
		out = append(out, *calls[i])
	}
	return out
}
