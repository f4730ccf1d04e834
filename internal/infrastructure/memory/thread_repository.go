package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/QuangHuy54/IntelligentChatbot/internal/domain"
	"github.com/QuangHuy54/IntelligentChatbot/internal/domain/entity"
)

// ThreadRepository keeps threads in process memory. History is lost on
// restart.
type ThreadRepository struct {
	mu       sync.RWMutex
	threads  map[string]*entity.Thread
	messages map[string][]*entity.StoredMessage
}

// NewThreadRepository creates an empty repository.
func NewThreadRepository() *ThreadRepository {
	return &ThreadRepository{
		threads:  make(map[string]*entity.Thread),
		messages: make(map[string][]*entity.StoredMessage),
	}
}

func (r *ThreadRepository) CreateThread(_ context.Context, thread *entity.Thread) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.threads[thread.ID]; exists {
		return domain.NewInvalidInputError("thread already exists")
	}
	cp := *thread
	r.threads[thread.ID] = &cp
	return nil
}

func (r *ThreadRepository) GetThread(_ context.Context, id string) (*entity.Thread, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.threads[id]
	if !ok {
		return nil, domain.NewNotFoundError("Thread", id)
	}
	cp := *t
	return &cp, nil
}

func (r *ThreadRepository) ListThreads(_ context.Context, limit int) ([]*entity.Thread, error) {
	r.mu.RLock()
	out := make([]*entity.Thread, 0, len(r.threads))
	for _, t := range r.threads {
		cp := *t
		out = append(out, &cp)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *ThreadRepository) AppendMessages(_ context.Context, threadID string, messages []*entity.StoredMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.threads[threadID]
	if !ok {
		return domain.NewNotFoundError("Thread", threadID)
	}
	for _, m := range messages {
		cp := *m
		cp.ThreadID = threadID
		cp.Images = slices.Clone(m.Images)
		r.messages[threadID] = append(r.messages[threadID], &cp)
		if cp.CreatedAt.After(t.UpdatedAt) {
			t.UpdatedAt = cp.CreatedAt
		}
	}
	return nil
}

func (r *ThreadRepository) ListMessages(_ context.Context, threadID string) ([]*entity.StoredMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored := r.messages[threadID]
	out := make([]*entity.StoredMessage, 0, len(stored))
	for _, m := range stored {
		cp := *m
		cp.Images = slices.Clone(m.Images)
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
