package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/QuangHuy54/IntelligentChatbot/internal/domain"
	"github.com/QuangHuy54/IntelligentChatbot/internal/domain/entity"
	"github.com/QuangHuy54/IntelligentChatbot/internal/domain/mocks"
)

func TestThreadUsecase_CreateThread(t *testing.T) {
	tests := []struct {
		name      string
		title     string
		wantTitle string
		wantErr   bool
	}{
		{name: "explicit title", title: "  Q3 revenue  ", wantTitle: "Q3 revenue"},
		{name: "default title", title: "", wantTitle: "New chat"},
		{name: "too long", title: strings.Repeat("x", 201), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var created *entity.Thread
			repo := &mocks.MockThreadRepository{
				CreateThreadFunc: func(_ context.Context, th *entity.Thread) error {
					created = th
					return nil
				},
			}
			uc := NewThreadUsecase(repo, testLogger())

			thread, err := uc.CreateThread(context.Background(), tt.title)
			if tt.wantErr {
				require.True(t, domain.IsInvalidInput(err))
				require.Nil(t, created)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantTitle, thread.Title)
			require.Same(t, thread, created)
			_, parseErr := uuid.Parse(thread.ID)
			require.NoError(t, parseErr)
			require.False(t, thread.CreatedAt.IsZero())
		})
	}
}

func TestThreadUsecase_ListThreadsLimit(t *testing.T) {
	var got []int
	repo := &mocks.MockThreadRepository{
		ListThreadsFunc: func(_ context.Context, limit int) ([]*entity.Thread, error) {
			got = append(got, limit)
			return nil, nil
		},
	}
	uc := NewThreadUsecase(repo, testLogger())

	for _, limit := range []int{0, -1, 10, 1000} {
		_, err := uc.ListThreads(context.Background(), limit)
		require.NoError(t, err)
	}
	require.Equal(t, []int{50, 50, 10, 200}, got)
}

func TestThreadUsecase_ListMessages(t *testing.T) {
	known := uuid.NewString()
	repo := &mocks.MockThreadRepository{
		GetThreadFunc: func(_ context.Context, id string) (*entity.Thread, error) {
			if id != known {
				return nil, domain.NewNotFoundError("Thread", id)
			}
			return &entity.Thread{ID: id}, nil
		},
		ListMessagesFunc: func(_ context.Context, id string) ([]*entity.StoredMessage, error) {
			return []*entity.StoredMessage{{ThreadID: id, Role: entity.RoleUser, Text: "hi"}}, nil
		},
	}
	uc := NewThreadUsecase(repo, testLogger())
	ctx := context.Background()

	msgs, err := uc.ListMessages(ctx, known)
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	_, err = uc.ListMessages(ctx, uuid.NewString())
	require.True(t, domain.IsNotFound(err))

	_, err = uc.ListMessages(ctx, "not-a-uuid")
	require.True(t, domain.IsInvalidInput(err))

	_, err = uc.GetThread(ctx, "")
	require.True(t, domain.IsInvalidInput(err))
}
