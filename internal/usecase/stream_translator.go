package usecase

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/QuangHuy54/IntelligentChatbot/internal/domain"
	"github.com/QuangHuy54/IntelligentChatbot/internal/domain/entity"
)

// StreamTranslator maps agent chunks to wire events.
type StreamTranslator struct {
	runtime       domain.AgentRuntime
	artifacts     domain.ArtifactStore
	outputBaseURL string
	logger        *slog.Logger
}

// NewStreamTranslator creates a translator. Persisted artifacts are
// announced under outputBaseURL.
func NewStreamTranslator(
	runtime domain.AgentRuntime,
	artifacts domain.ArtifactStore,
	outputBaseURL string,
	logger *slog.Logger,
) *StreamTranslator {
	return &StreamTranslator{
		runtime:       runtime,
		artifacts:     artifacts,
		outputBaseURL: strings.TrimRight(outputBaseURL, "/"),
		logger:        logger,
	}
}

// Translate opens an agent session for messages and yields events in chunk
// order. The sequence ends with exactly one finish or error event, unless
// the consumer stops early or ctx is cancelled. The session is closed on
// every path.
func (t *StreamTranslator) Translate(ctx context.Context, messages []entity.CanonicalMessage) iter.Seq[entity.StreamEvent] {
	return func(yield func(entity.StreamEvent) bool) {
		session, err := t.runtime.Open(ctx)
		if err != nil {
			t.logger.ErrorContext(ctx, "failed to open agent session", "error", err)
			yield(entity.ErrorEvent(err.Error()))
			return
		}
		defer func() {
			if err := session.Close(); err != nil {
				t.logger.WarnContext(ctx, "failed to close agent session", "error", err)
			}
		}()

		for chunk, err := range session.Stream(ctx, messages) {
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				t.logger.ErrorContext(ctx, "agent stream failed", "error", err)
				yield(entity.ErrorEvent(err.Error()))
				return
			}

			chunkID := chunk.ID
			if chunkID == "" && len(chunk.Artifacts) > 0 {
				chunkID = uuid.NewString()
			}
			for i, artifact := range chunk.Artifacts {
				ev, ok := t.persist(ctx, artifactBaseName(chunkID, i), artifact)
				if ok && !yield(ev) {
					return
				}
			}

			if chunk.Text != "" && !chunk.IsToolResult() {
				if !yield(entity.TextDeltaEvent(chunk.Text)) {
					return
				}
			}
		}

		if ctx.Err() != nil {
			return
		}
		yield(entity.FinishEvent())
	}
}

func (t *StreamTranslator) persist(ctx context.Context, baseName string, artifact entity.Artifact) (entity.StreamEvent, bool) {
	path, err := t.artifacts.Persist(ctx, artifact, baseName)
	if err != nil {
		if errors.Is(err, domain.ErrArtifactSkipped) {
			t.logger.DebugContext(ctx, "artifact skipped", "id", baseName, "kind", artifact.Kind)
		} else {
			t.logger.ErrorContext(ctx, "failed to persist artifact", "id", baseName, "error", err)
		}
		return entity.StreamEvent{}, false
	}
	return entity.ImageEvent(t.outputBaseURL + "/" + url.PathEscape(filepath.Base(path))), true
}

// artifactBaseName names the i-th artifact of a chunk. The first artifact
// uses the chunk id as is.
func artifactBaseName(chunkID string, i int) string {
	if i == 0 {
		return chunkID
	}
	return fmt.Sprintf("%s-%d", chunkID, i)
}
