package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/QuangHuy54/IntelligentChatbot/internal/cli/types"
)

func TestNormalizeServerURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "localhost:8000", want: "http://localhost:8000"},
		{in: "http://localhost:8000/", want: "http://localhost:8000"},
		{in: "https://chat.example.com/api", want: "https://chat.example.com"},
		{in: "http://", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := normalizeServerURL(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func collect(t *testing.T, body string) ([]types.StreamEvent, error) {
	t.Helper()
	eventCh := make(chan types.StreamEvent, 16)
	errCh := make(chan error, 1)
	parseSSEStream(context.Background(), strings.NewReader(body), eventCh, errCh)
	close(eventCh)
	close(errCh)

	var events []types.StreamEvent
	for ev := range eventCh {
		events = append(events, ev)
	}
	return events, <-errCh
}

func TestParseSSEStream(t *testing.T) {
	body := ": keepalive\n\n" +
		"data: {\"type\":\"text-delta\",\"textDelta\":\"Hel\"}\n\n" +
		"data:{\"type\":\"text-delta\",\"textDelta\":\"lo\"}\n\n" +
		"event: ignored\n" +
		"data: {\"type\":\"image\",\"image\":\"http://localhost:8000/outputs/a.png\"}\n\n" +
		"data: {\"type\":\"finish\",\"finishReason\":\"stop\"}\n\n" +
		"data: {\"type\":\"text-delta\",\"textDelta\":\"after finish\"}\n\n"

	events, err := collect(t, body)
	require.NoError(t, err)
	assert.Equal(t, []types.StreamEvent{
		{Type: types.EventTextDelta, TextDelta: "Hel"},
		{Type: types.EventTextDelta, TextDelta: "lo"},
		{Type: types.EventImage, Image: "http://localhost:8000/outputs/a.png"},
		{Type: types.EventFinish, FinishReason: "stop"},
	}, events)
}

func TestParseSSEStream_MalformedEvent(t *testing.T) {
	events, err := collect(t, "data: {\"type\":\"text-delta\",\"textDelta\":\"a\"}\n\ndata: {oops\n\n")
	assert.Len(t, events, 1)
	assert.ErrorContains(t, err, "failed to parse event")
}

func TestAPIClient_AgainstServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/health":
			fmt.Fprint(w, `{"status":"healthy"}`)
		case r.URL.Path == "/api/threads" && r.Method == http.MethodGet:
			assert.Equal(t, "5", r.URL.Query().Get("limit"))
			fmt.Fprint(w, `{"code":"SUCCESS","message":"ok","data":{"items":[{"id":"t1","title":"Sales"}],"totalCount":1}}`)
		case r.URL.Path == "/api/threads/missing":
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"code":"NOT_FOUND","message":"Thread 'missing' not found"}`)
		case r.URL.Path == "/api/chat":
			w.Header().Set("Content-Type", "text/event-stream")
			fmt.Fprint(w, "data: {\"type\":\"text-delta\",\"textDelta\":\"Hi\"}\n\n")
			fmt.Fprint(w, "data: {\"type\":\"finish\",\"finishReason\":\"stop\"}\n\n")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c, err := NewAPIClient(srv.URL)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	status, err := c.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "healthy", status.Status)

	threads, err := c.ListThreads(ctx, 5)
	require.NoError(t, err)
	require.Len(t, threads, 1)
	assert.Equal(t, "Sales", threads[0].Title)

	_, err = c.GetThread(ctx, "missing")
	assert.ErrorContains(t, err, "Thread 'missing' not found")

	eventCh, errCh, err := c.ChatStreaming(ctx, types.ChatRequest{
		Messages: []types.ChatMessage{{Role: "user", Content: "Hello"}},
	})
	require.NoError(t, err)
	var events []types.StreamEvent
	for ev := range eventCh {
		events = append(events, ev)
	}
	assert.NoError(t, <-errCh)
	assert.Equal(t, []types.StreamEvent{
		{Type: types.EventTextDelta, TextDelta: "Hi"},
		{Type: types.EventFinish, FinishReason: "stop"},
	}, events)
}

func TestChatStreaming_RequiresMessages(t *testing.T) {
	c, err := NewAPIClient("localhost:8000")
	require.NoError(t, err)
	_, _, err = c.ChatStreaming(context.Background(), types.ChatRequest{})
	assert.Error(t, err)
}
