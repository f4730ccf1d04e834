package usecase

import (
	"context"
	"errors"
	"iter"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/QuangHuy54/IntelligentChatbot/internal/domain"
	"github.com/QuangHuy54/IntelligentChatbot/internal/domain/entity"
	"github.com/QuangHuy54/IntelligentChatbot/internal/domain/mocks"
)

func newTestChatUsecase(t *testing.T, session *mocks.MockAgentSession, threads domain.ThreadRepository) domain.ChatUsecase {
	t.Helper()
	if threads == nil {
		threads = &mocks.MockThreadRepository{}
	}
	return NewChatUsecase(newTestNormalizer(t), newTestTranslator(session, &recordingStore{}), threads, testLogger())
}

func drain(t *testing.T, ch <-chan entity.StreamEvent) []entity.StreamEvent {
	t.Helper()
	var events []entity.StreamEvent
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return events
			}
			events = append(events, ev)
		case <-timeout:
			t.Fatal("stream did not close")
		}
	}
}

func TestChatStreaming_HelloScenario(t *testing.T) {
	session := &mocks.MockAgentSession{Chunks: []entity.AgentChunk{{ID: "a", Text: "Hi there"}}}
	uc := newTestChatUsecase(t, session, nil)

	ch, err := uc.ChatStreaming(context.Background(), &domain.ChatRequest{
		Messages: []entity.RawMessage{{Role: entity.RoleUser, Content: entity.TextContent("Hello")}},
	})
	require.NoError(t, err)

	events := drain(t, ch)
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	require.Equal(t, entity.FinishEvent(), last)
	for _, ev := range events[:len(events)-1] {
		require.Equal(t, entity.EventTextDelta, ev.Type)
	}
	require.Equal(t, []entity.CanonicalMessage{
		{Role: entity.RoleUser, Parts: []entity.ContentPart{entity.TextPart{Text: "Hello"}}},
	}, session.Received)
}

func TestChatStreaming_Validation(t *testing.T) {
	threadID := uuid.NewString()
	threads := &mocks.MockThreadRepository{
		GetThreadFunc: func(_ context.Context, id string) (*entity.Thread, error) {
			return nil, domain.NewNotFoundError("Thread", id)
		},
	}
	uc := newTestChatUsecase(t, &mocks.MockAgentSession{}, threads)
	hello := []entity.RawMessage{{Content: entity.TextContent("Hello")}}

	tests := []struct {
		name  string
		req   *domain.ChatRequest
		check func(error) bool
	}{
		{"nil request", nil, domain.IsInvalidInput},
		{"no messages", &domain.ChatRequest{}, domain.IsInvalidInput},
		{"nothing usable", &domain.ChatRequest{Messages: []entity.RawMessage{{Role: "tool", Content: entity.TextContent("x")}}}, domain.IsInvalidInput},
		{"bad thread id", &domain.ChatRequest{ThreadID: "abc", Messages: hello}, domain.IsInvalidInput},
		{"unknown thread", &domain.ChatRequest{ThreadID: threadID, Messages: hello}, domain.IsNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch, err := uc.ChatStreaming(context.Background(), tt.req)
			require.Nil(t, ch)
			require.Error(t, err)
			require.True(t, tt.check(err), "unexpected error: %v", err)
		})
	}
}

func TestChatStreaming_RecordsFinishedExchange(t *testing.T) {
	threadID := uuid.NewString()
	var (
		recordedID string
		recorded   []*entity.StoredMessage
	)
	threads := &mocks.MockThreadRepository{
		AppendMessagesFunc: func(_ context.Context, id string, msgs []*entity.StoredMessage) error {
			recordedID, recorded = id, msgs
			return nil
		},
	}
	session := &mocks.MockAgentSession{Chunks: []entity.AgentChunk{
		{ID: "a", Text: "Here is "},
		{ID: "t", ToolCallID: "c1", Text: "raw tool output", Artifacts: []entity.Artifact{pngArtifact()}},
		{ID: "a", Text: "your chart"},
	}}
	uc := newTestChatUsecase(t, session, threads)

	ch, err := uc.ChatStreaming(context.Background(), &domain.ChatRequest{
		ThreadID: threadID,
		Messages: []entity.RawMessage{
			{Role: entity.RoleAssistant, Content: entity.TextContent("earlier")},
			{
				Role:        entity.RoleUser,
				Content:     entity.TextContent("Plot this"),
				Attachments: []entity.Attachment{fileAttachment("d.xlsx", "http://localhost:8000/uploads/d.xlsx")},
			},
		},
	})
	require.NoError(t, err)
	drain(t, ch)

	require.Equal(t, threadID, recordedID)
	require.Len(t, recorded, 2)
	require.Equal(t, entity.RoleUser, recorded[0].Role)
	require.Equal(t, "Plot this", recorded[0].Text)
	require.Equal(t, []string{"http://localhost:8000/uploads/d.xlsx"}, recorded[0].Images)
	require.Equal(t, entity.RoleAssistant, recorded[1].Role)
	require.Equal(t, "Here is your chart", recorded[1].Text)
	require.Equal(t, []string{"http://localhost:8000/outputs/t.png"}, recorded[1].Images)
}

func TestChatStreaming_ErrorIsNotRecorded(t *testing.T) {
	appended := false
	threads := &mocks.MockThreadRepository{
		AppendMessagesFunc: func(context.Context, string, []*entity.StoredMessage) error {
			appended = true
			return nil
		},
	}
	session := &mocks.MockAgentSession{Err: errors.New("boom")}
	uc := newTestChatUsecase(t, session, threads)

	ch, err := uc.ChatStreaming(context.Background(), &domain.ChatRequest{
		ThreadID: uuid.NewString(),
		Messages: []entity.RawMessage{{Content: entity.TextContent("Hello")}},
	})
	require.NoError(t, err)

	require.Equal(t, []entity.StreamEvent{entity.ErrorEvent("boom")}, drain(t, ch))
	require.False(t, appended)
}

func TestChatStreaming_ClientDisconnect(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	session := &mocks.MockAgentSession{
		StreamFunc: func(ctx context.Context, _ []entity.CanonicalMessage) iter.Seq2[entity.AgentChunk, error] {
			return func(yield func(entity.AgentChunk, error) bool) {
				for {
					if !yield(entity.AgentChunk{ID: "a", Text: "tick"}, nil) {
						return
					}
					if ctx.Err() != nil {
						yield(entity.AgentChunk{}, ctx.Err())
						return
					}
				}
			}
		},
	}
	uc := newTestChatUsecase(t, session, nil)

	ch, err := uc.ChatStreaming(ctx, &domain.ChatRequest{Messages: []entity.RawMessage{{Content: entity.TextContent("Hello")}}})
	require.NoError(t, err)

	require.Equal(t, entity.TextDeltaEvent("tick"), <-ch)
	cancel()

	for ev := range ch {
		require.NotEqual(t, entity.EventFinish, ev.Type)
		require.NotEqual(t, entity.EventError, ev.Type)
	}
	require.Equal(t, 1, session.CloseCalled)
}
