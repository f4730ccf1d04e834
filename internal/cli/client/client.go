package client

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/network/standard"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/QuangHuy54/IntelligentChatbot/internal/cli/types"
)

// APIClient wraps Hertz Client for HTTP communication with the chat server
type APIClient struct {
	client *client.Client
	server string
}

// NewAPIClient creates a new API client
func NewAPIClient(server string) (*APIClient, error) {
	normalizedServer, err := normalizeServerURL(server)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}

	// Use standard library dialer for streaming support
	// netpoll doesn't support streaming well, causing panics
	c, err := client.NewClient(
		client.WithDialTimeout(10*time.Second),
		client.WithMaxIdleConnDuration(60*time.Second),
		client.WithResponseBodyStream(true),
		client.WithDialer(standard.NewDialer()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return &APIClient{
		client: c,
		server: normalizedServer,
	}, nil
}

// Server returns the normalized server address
func (c *APIClient) Server() string {
	return c.server
}

// normalizeServerURL normalizes server URL to ensure it has a scheme and no trailing slash
func normalizeServerURL(server string) (string, error) {
	if !strings.Contains(server, "://") {
		server = "http://" + server
	}

	u, err := url.Parse(server)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid server URL")
	}

	// Return scheme://host (no path, no trailing slash)
	return fmt.Sprintf("%s://%s", u.Scheme, u.Host), nil
}

// Health checks the server liveness endpoint
func (c *APIClient) Health(ctx context.Context) (*types.HealthStatus, error) {
	var status types.HealthStatus
	if err := c.doJSON(ctx, consts.MethodGet, endpointHealth, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Upload sends a file as multipart field "file"
func (c *APIClient) Upload(ctx context.Context, name string, r io.Reader) (*types.UploadResult, error) {
	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer func() {
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
	}()

	req.SetMethod(consts.MethodPost)
	req.SetRequestURI(c.server + endpointUpload)
	req.SetFileReader("file", name, r)

	if err := c.client.Do(ctx, req, resp); err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	body, err := readBody(resp)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != consts.StatusOK {
		return nil, statusError("upload", resp.StatusCode(), body)
	}

	var result types.UploadResult
	if err := sonic.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &result, nil
}

// CreateThread starts a new server-side thread
func (c *APIClient) CreateThread(ctx context.Context, title string) (*types.Thread, error) {
	var resp types.APIResponse[types.Thread]
	if err := c.doJSON(ctx, consts.MethodPost, endpointThreads, types.CreateThreadRequest{Title: title}, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// ListThreads lists recent threads. limit <= 0 uses the server default.
func (c *APIClient) ListThreads(ctx context.Context, limit int) ([]types.Thread, error) {
	path := endpointThreads
	if limit > 0 {
		path = fmt.Sprintf("%s?limit=%d", path, limit)
	}
	var resp types.APIResponse[types.ListData[types.Thread]]
	if err := c.doJSON(ctx, consts.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data.Items, nil
}

// GetThread fetches one thread
func (c *APIClient) GetThread(ctx context.Context, id string) (*types.Thread, error) {
	var resp types.APIResponse[types.Thread]
	if err := c.doJSON(ctx, consts.MethodGet, fmt.Sprintf(endpointThreadByID, url.PathEscape(id)), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// ListMessages fetches the recorded messages of a thread
func (c *APIClient) ListMessages(ctx context.Context, id string) ([]types.ThreadMessage, error) {
	var resp types.APIResponse[types.ListData[types.ThreadMessage]]
	if err := c.doJSON(ctx, consts.MethodGet, fmt.Sprintf(endpointThreadMessages, url.PathEscape(id)), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data.Items, nil
}

// doJSON sends an optional JSON body and decodes a JSON response into out
func (c *APIClient) doJSON(ctx context.Context, method, path string, in, out any) error {
	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer func() {
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
	}()

	req.SetMethod(method)
	req.SetRequestURI(c.server + path)
	if in != nil {
		bodyBytes, err := sonic.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		req.Header.SetContentTypeBytes([]byte("application/json"))
		req.SetBody(bodyBytes)
	}

	if err := c.client.Do(ctx, req, resp); err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	body, err := readBody(resp)
	if err != nil {
		return err
	}
	statusCode := resp.StatusCode()
	if statusCode < 200 || statusCode >= 300 {
		return statusError(strings.ToLower(method)+" "+path, statusCode, body)
	}

	if err := sonic.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

// readBody drains the response; with body streaming enabled Body() alone may
// be empty.
func readBody(resp *protocol.Response) ([]byte, error) {
	if stream := resp.BodyStream(); stream != nil {
		body, err := io.ReadAll(stream)
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}
		return body, nil
	}
	return resp.Body(), nil
}

// statusError prefers the server's message over the raw body
func statusError(op string, statusCode int, body []byte) error {
	var envelope types.APIResponse[any]
	if err := sonic.Unmarshal(body, &envelope); err == nil && envelope.Message != "" {
		return fmt.Errorf("%s failed (HTTP %d): %s", op, statusCode, envelope.Message)
	}
	return fmt.Errorf("%s failed with HTTP status: %d, body: %s", op, statusCode, strings.TrimSpace(string(body)))
}

// ChatStreaming posts the conversation and streams the reply events. The
// event channel is closed after a terminal event or when the stream ends.
func (c *APIClient) ChatStreaming(ctx context.Context, chatReq types.ChatRequest) (<-chan types.StreamEvent, <-chan error, error) {
	if len(chatReq.Messages) == 0 {
		return nil, nil, fmt.Errorf("chat request requires at least one message")
	}

	// Copy messages to avoid data races when caller mutates the slice while streaming
	safeMessages := make([]types.ChatMessage, len(chatReq.Messages))
	copy(safeMessages, chatReq.Messages)
	chatReq.Messages = safeMessages

	bodyBytes, err := sonic.Marshal(chatReq)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()

	req.SetMethod(consts.MethodPost)
	req.SetRequestURI(c.server + endpointChat)
	req.Header.SetContentTypeBytes([]byte("application/json"))
	req.Header.Set("Accept", "text/event-stream")
	req.SetBody(bodyBytes)

	if err := c.client.Do(ctx, req, resp); err != nil {
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
		return nil, nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode() != consts.StatusOK {
		statusCode := resp.StatusCode()
		body, _ := readBody(resp)
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
		return nil, nil, statusError("chat", statusCode, body)
	}

	eventCh := make(chan types.StreamEvent, 10)
	errCh := make(chan error, 1)

	go func() {
		defer func() {
			close(eventCh)
			close(errCh)
			protocol.ReleaseRequest(req)
			protocol.ReleaseResponse(resp)
		}()

		bodyStream := resp.BodyStream()
		if bodyStream == nil {
			errCh <- fmt.Errorf("body stream is nil")
			return
		}

		parseSSEStream(ctx, bodyStream, eventCh, errCh)
	}()

	return eventCh, errCh, nil
}

// parseSSEStream reads data lines as they arrive and forwards each decoded
// event. It returns after a terminal event.
func parseSSEStream(ctx context.Context, reader io.Reader, eventCh chan<- types.StreamEvent, errCh chan<- error) {
	scanner := bufio.NewScanner(reader)

	// Image events may carry long URLs; text deltas are small
	const maxScanTokenSize = 1024 * 1024 // 1MB
	buf := make([]byte, maxScanTokenSize)
	scanner.Buffer(buf, maxScanTokenSize)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines or comments
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		dataStr := strings.TrimSpace(strings.TrimPrefix(line, "data:"))

		var ev types.StreamEvent
		if err := sonic.UnmarshalString(dataStr, &ev); err != nil {
			errCh <- fmt.Errorf("failed to parse event: %w", err)
			return
		}

		select {
		case eventCh <- ev:
		case <-ctx.Done():
			return
		}
		if ev.IsTerminal() {
			return
		}
	}

	if err := scanner.Err(); err != nil && err != io.EOF {
		errCh <- fmt.Errorf("scanner error: %w", err)
	}
}
