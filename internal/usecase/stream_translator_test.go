package usecase

import (
	"context"
	"errors"
	"iter"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/QuangHuy54/IntelligentChatbot/internal/domain"
	"github.com/QuangHuy54/IntelligentChatbot/internal/domain/entity"
	"github.com/QuangHuy54/IntelligentChatbot/internal/domain/mocks"
)

var helloMessages = []entity.CanonicalMessage{
	{Role: entity.RoleUser, Parts: []entity.ContentPart{entity.TextPart{Text: "Hello"}}},
}

type recordingStore struct {
	mu    sync.Mutex
	names []string
	err   error
}

func (s *recordingStore) Persist(_ context.Context, artifact entity.Artifact, baseName string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if artifact.Kind != entity.ArtifactKindImage || artifact.Data == "" {
		return "", domain.ErrArtifactSkipped
	}
	if s.err != nil {
		return "", s.err
	}
	s.names = append(s.names, baseName)
	return "/srv/outputs/" + baseName + ".png", nil
}

func newTestTranslator(session *mocks.MockAgentSession, store domain.ArtifactStore) *StreamTranslator {
	runtime := &mocks.MockAgentRuntime{
		OpenFunc: func(context.Context) (domain.AgentSession, error) { return session, nil },
	}
	return NewStreamTranslator(runtime, store, "http://localhost:8000/outputs/", testLogger())
}

func pngArtifact() entity.Artifact {
	return entity.Artifact{Kind: entity.ArtifactKindImage, MimeType: "image/png", Data: "iVBORw0KGgo="}
}

func TestStreamTranslator_TextThenFinish(t *testing.T) {
	session := &mocks.MockAgentSession{Chunks: []entity.AgentChunk{
		{ID: "m1", Text: "Hel"},
		{ID: "m1", Text: ""},
		{ID: "m1", Text: "lo"},
	}}
	tr := newTestTranslator(session, &recordingStore{})

	events := slices.Collect(tr.Translate(context.Background(), helloMessages))

	require.Equal(t, []entity.StreamEvent{
		entity.TextDeltaEvent("Hel"),
		entity.TextDeltaEvent("lo"),
		entity.FinishEvent(),
	}, events)
	require.Equal(t, helloMessages, session.Received)
	require.Equal(t, 1, session.CloseCalled)
}

func TestStreamTranslator_ToolResultsAndArtifacts(t *testing.T) {
	store := &recordingStore{}
	session := &mocks.MockAgentSession{Chunks: []entity.AgentChunk{
		{ID: "a1", Text: "Let me chart that."},
		{ID: "tool-1", ToolCallID: "call_1", Text: "chart rendered", Artifacts: []entity.Artifact{pngArtifact(), pngArtifact()}},
		{ID: "tool-2", ToolCallID: "call_2", Artifacts: []entity.Artifact{{Kind: "audio", Data: "AAAA"}}},
		{ID: "a2", Text: "Done", Artifacts: []entity.Artifact{pngArtifact()}},
	}}
	tr := newTestTranslator(session, store)

	events := slices.Collect(tr.Translate(context.Background(), helloMessages))

	require.Equal(t, []entity.StreamEvent{
		entity.TextDeltaEvent("Let me chart that."),
		entity.ImageEvent("http://localhost:8000/outputs/tool-1.png"),
		entity.ImageEvent("http://localhost:8000/outputs/tool-1-1.png"),
		entity.ImageEvent("http://localhost:8000/outputs/a2.png"),
		entity.TextDeltaEvent("Done"),
		entity.FinishEvent(),
	}, events)
	require.Equal(t, []string{"tool-1", "tool-1-1", "a2"}, store.names)
}

func TestStreamTranslator_PersistFailureDropsImage(t *testing.T) {
	store := &recordingStore{err: errors.New("disk full")}
	session := &mocks.MockAgentSession{Chunks: []entity.AgentChunk{
		{ID: "t", ToolCallID: "c", Artifacts: []entity.Artifact{pngArtifact()}},
		{ID: "a", Text: "ok"},
	}}

	events := slices.Collect(newTestTranslator(session, store).Translate(context.Background(), helloMessages))
	require.Equal(t, []entity.StreamEvent{entity.TextDeltaEvent("ok"), entity.FinishEvent()}, events)
}

func TestStreamTranslator_StreamErrorEndsWithSingleError(t *testing.T) {
	session := &mocks.MockAgentSession{
		Chunks: []entity.AgentChunk{{ID: "a", Text: "partial"}},
		Err:    errors.New("model endpoint returned 500"),
	}

	events := slices.Collect(newTestTranslator(session, &recordingStore{}).Translate(context.Background(), helloMessages))

	require.Equal(t, []entity.StreamEvent{
		entity.TextDeltaEvent("partial"),
		entity.ErrorEvent("model endpoint returned 500"),
	}, events)
	require.Equal(t, 1, session.CloseCalled)
}

func TestStreamTranslator_OpenFailure(t *testing.T) {
	runtime := &mocks.MockAgentRuntime{
		OpenFunc: func(context.Context) (domain.AgentSession, error) {
			return nil, errors.New("tool server unreachable")
		},
	}
	tr := NewStreamTranslator(runtime, &recordingStore{}, "http://localhost:8000/outputs", testLogger())

	events := slices.Collect(tr.Translate(context.Background(), helloMessages))
	require.Equal(t, []entity.StreamEvent{entity.ErrorEvent("tool server unreachable")}, events)
}

func TestStreamTranslator_EarlyStopClosesSession(t *testing.T) {
	session := &mocks.MockAgentSession{Chunks: []entity.AgentChunk{
		{ID: "a", Text: "one"},
		{ID: "a", Text: "two"},
	}}
	tr := newTestTranslator(session, &recordingStore{})

	for ev := range tr.Translate(context.Background(), helloMessages) {
		require.Equal(t, entity.TextDeltaEvent("one"), ev)
		break
	}
	require.Equal(t, 1, session.CloseCalled)
}

func TestStreamTranslator_CancelledContextEmitsNothingMore(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	session := &mocks.MockAgentSession{
		StreamFunc: func(ctx context.Context, _ []entity.CanonicalMessage) iter.Seq2[entity.AgentChunk, error] {
			return func(yield func(entity.AgentChunk, error) bool) {
				if !yield(entity.AgentChunk{ID: "a", Text: "before"}, nil) {
					return
				}
				cancel()
				yield(entity.AgentChunk{}, ctx.Err())
			}
		},
	}

	events := slices.Collect(newTestTranslator(session, &recordingStore{}).Translate(ctx, helloMessages))
	require.Equal(t, []entity.StreamEvent{entity.TextDeltaEvent("before")}, events)
	require.Equal(t, 1, session.CloseCalled)
}
