package repo

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/BuzzLyutic/taskboard-api/internal/model"
)

// MemoryTaskRepo keeps tasks in process memory. It follows the same filter,
// ordering and owner rules as the database stores.
type MemoryTaskRepo struct {
	mu    sync.RWMutex
	tasks map[string]model.Task
	now   func() time.Time
}

func NewMemoryTaskRepo() *MemoryTaskRepo {
	return &MemoryTaskRepo{
		tasks: make(map[string]model.Task),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (r *MemoryTaskRepo) Create(ctx context.Context, t model.Task) (model.Task, error) {
	if err := ctx.Err(); err != nil {
		return model.Task{}, unavailable("create", err)
	}

	now := r.now()
	t.ID = uuid.NewString()
	t.CreatedAt = now
	t.UpdatedAt = now

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[t.ID] = t

	return t, nil
}

func (r *MemoryTaskRepo) Get(ctx context.Context, id, ownerID string) (model.Task, error) {
	if err := ctx.Err(); err != nil {
		return model.Task{}, unavailable("get", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return model.Task{}, ErrorNotFound
	}
	return t, nil
}

func (r *MemoryTaskRepo) List(ctx context.Context, q model.TaskQuery) ([]model.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("list", err)
	}

	matched := r.match(q)
	slices.SortFunc(matched, func(a, b model.Task) int {
		c := compareBy(q.SortBy, a, b)
		if c == 0 {
			c = strings.Compare(a.ID, b.ID)
		}
		if q.SortOrder == model.SortAsc {
			return c
		}
		return -c
	})

	start := min(q.Offset(), len(matched))
	end := min(start+q.Limit, len(matched))
	return slices.Clone(matched[start:end]), nil
}

func (r *MemoryTaskRepo) Count(ctx context.Context, q model.TaskQuery) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, unavailable("count", err)
	}
	return int64(len(r.match(q))), nil
}

func (r *MemoryTaskRepo) Update(ctx context.Context, id, ownerID string, patch model.UpdateTaskInput) (model.Task, error) {
	if err := ctx.Err(); err != nil {
		return model.Task{}, unavailable("update", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return model.Task{}, ErrorNotFound
	}

	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Priority != nil {
		t.Priority = *patch.Priority
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if now := r.now(); now.After(t.UpdatedAt) {
		t.UpdatedAt = now
	}

	r.tasks[id] = t
	return t, nil
}

func (r *MemoryTaskRepo) Delete(ctx context.Context, id, ownerID string) error {
	if err := ctx.Err(); err != nil {
		return unavailable("delete", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return ErrorNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *MemoryTaskRepo) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (r *MemoryTaskRepo) match(q model.TaskQuery) []model.Task {
	search := strings.ToLower(q.Search)

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Task, 0)
	for _, t := range r.tasks {
		if t.OwnerID != q.OwnerID {
			continue
		}
		if q.Status != nil && t.Status != *q.Status {
			continue
		}
		if q.Priority != nil && t.Priority != *q.Priority {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(t.Title), search) &&
			!strings.Contains(strings.ToLower(t.Description), search) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func compareBy(field model.SortField, a, b model.Task) int {
	switch field {
	case model.SortByUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case model.SortByTitle:
		return strings.Compare(a.Title, b.Title)
	case model.SortByPriority:
		return cmp.Compare(a.Priority, b.Priority)
	case model.SortByStatus:
		return cmp.Compare(a.Status, b.Status)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}
