package mocks

import (
	"context"
	"iter"

	"github.com/QuangHuy54/IntelligentChatbot/internal/domain"
	"github.com/QuangHuy54/IntelligentChatbot/internal/domain/entity"
)

// MockAgentRuntime is a mock implementation of domain.AgentRuntime
type MockAgentRuntime struct {
	OpenFunc func(ctx context.Context) (domain.AgentSession, error)
}

// Open mocks the Open method
func (m *MockAgentRuntime) Open(ctx context.Context) (domain.AgentSession, error) {
	if m.OpenFunc != nil {
		return m.OpenFunc(ctx)
	}
	return &MockAgentSession{}, nil
}

// MockAgentSession is a mock implementation of domain.AgentSession. Without
// StreamFunc it replays Chunks and then Err, if set.
type MockAgentSession struct {
	StreamFunc func(ctx context.Context, messages []entity.CanonicalMessage) iter.Seq2[entity.AgentChunk, error]
	CloseFunc  func() error

	Chunks []entity.AgentChunk
	Err    error

	Received    []entity.CanonicalMessage
	CloseCalled int
}

// Stream mocks the Stream method
func (m *MockAgentSession) Stream(ctx context.Context, messages []entity.CanonicalMessage) iter.Seq2[entity.AgentChunk, error] {
	m.Received = messages
	if m.StreamFunc != nil {
		return m.StreamFunc(ctx, messages)
	}
	return func(yield func(entity.AgentChunk, error) bool) {
		for _, c := range m.Chunks {
			if !yield(c, nil) {
				return
			}
		}
		if m.Err != nil {
			yield(entity.AgentChunk{}, m.Err)
		}
	}
}

// Close mocks the Close method
func (m *MockAgentSession) Close() error {
	m.CloseCalled++
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// MockToolClient is a mock implementation of domain.ToolClient
type MockToolClient struct {
	ToolList     []entity.Tool
	CallToolFunc func(ctx context.Context, call entity.ToolCall) (entity.ToolResult, error)
	CloseCalled  int
}

// Tools mocks the Tools method
func (m *MockToolClient) Tools() []entity.Tool {
	return m.ToolList
}

// CallTool mocks the CallTool method
func (m *MockToolClient) CallTool(ctx context.Context, call entity.ToolCall) (entity.ToolResult, error) {
	if m.CallToolFunc != nil {
		return m.CallToolFunc(ctx, call)
	}
	return entity.ToolResult{ToolCallID: call.ID}, nil
}

// Close mocks the Close method
func (m *MockToolClient) Close() error {
	m.CloseCalled++
	return nil
}

// MockToolConnector is a mock implementation of domain.ToolConnector
type MockToolConnector struct {
	Client      domain.ToolClient
	ConnectFunc func(ctx context.Context) (domain.ToolClient, error)
}

// Connect mocks the Connect method
func (m *MockToolConnector) Connect(ctx context.Context) (domain.ToolClient, error) {
	if m.ConnectFunc != nil {
		return m.ConnectFunc(ctx)
	}
	if m.Client != nil {
		return m.Client, nil
	}
	return &MockToolClient{}, nil
}

// MockArtifactStore is a mock implementation of domain.ArtifactStore
type MockArtifactStore struct {
	PersistFunc func(ctx context.Context, artifact entity.Artifact, baseName string) (string, error)
}

// Persist mocks the Persist method
func (m *MockArtifactStore) Persist(ctx context.Context, artifact entity.Artifact, baseName string) (string, error) {
	if m.PersistFunc != nil {
		return m.PersistFunc(ctx, artifact, baseName)
	}
	return "outputs/" + baseName + ".png", nil
}

// MockChatUsecase is a mock implementation of domain.ChatUsecase
type MockChatUsecase struct {
	ChatStreamingFunc func(ctx context.Context, req *domain.ChatRequest) (<-chan entity.StreamEvent, error)
}

// ChatStreaming mocks the ChatStreaming method
func (m *MockChatUsecase) ChatStreaming(ctx context.Context, req *domain.ChatRequest) (<-chan entity.StreamEvent, error) {
	if m.ChatStreamingFunc != nil {
		return m.ChatStreamingFunc(ctx, req)
	}
	ch := make(chan entity.StreamEvent, 1)
	ch <- entity.FinishEvent()
	close(ch)
	return ch, nil
}
