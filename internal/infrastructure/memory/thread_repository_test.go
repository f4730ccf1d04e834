package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/QuangHuy54/IntelligentChatbot/internal/domain"
	"github.com/QuangHuy54/IntelligentChatbot/internal/domain/entity"
)

func TestThreadRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewThreadRepository()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, repo.CreateThread(ctx, &entity.Thread{ID: "a", Title: "A", CreatedAt: base, UpdatedAt: base}))
	require.NoError(t, repo.CreateThread(ctx, &entity.Thread{ID: "b", Title: "B", CreatedAt: base.Add(time.Minute), UpdatedAt: base.Add(time.Minute)}))
	require.True(t, domain.IsInvalidInput(repo.CreateThread(ctx, &entity.Thread{ID: "a"})))

	threads, err := repo.ListThreads(ctx, 0)
	require.NoError(t, err)
	require.Len(t, threads, 2)
	assert.Equal(t, "b", threads[0].ID)

	images := []string{"http://localhost:8000/outputs/x.png"}
	require.NoError(t, repo.AppendMessages(ctx, "a", []*entity.StoredMessage{
		{ID: "m2", Role: entity.RoleAssistant, Text: "second", Images: images, CreatedAt: base.Add(2 * time.Hour)},
		{ID: "m1", Role: entity.RoleUser, Text: "first", CreatedAt: base.Add(time.Hour)},
	}))
	images[0] = "mutated"

	threads, err = repo.ListThreads(ctx, 1)
	require.NoError(t, err)
	require.Len(t, threads, 1)
	assert.Equal(t, "a", threads[0].ID, "appending bumps the thread to the top")

	msgs, err := repo.ListMessages(ctx, "a")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "m1", msgs[0].ID)
	assert.Equal(t, "a", msgs[1].ThreadID)
	assert.Equal(t, []string{"http://localhost:8000/outputs/x.png"}, msgs[1].Images)

	got, err := repo.GetThread(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, base.Add(2*time.Hour), got.UpdatedAt)
}

func TestThreadRepository_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewThreadRepository()

	_, err := repo.GetThread(ctx, "missing")
	assert.True(t, domain.IsNotFound(err))

	err = repo.AppendMessages(ctx, "missing", []*entity.StoredMessage{{ID: "m"}})
	assert.True(t, domain.IsNotFound(err))

	msgs, err := repo.ListMessages(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}
