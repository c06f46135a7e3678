package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/BuzzLyutic/taskboard-api/internal/model"
)

var (
	ErrorNotFound    = errors.New("not found")
	ErrorUnavailable = errors.New("store unavailable")
)

// TaskRepository is the store behind the task service. Every read and write
// is scoped to an owner; a record owned by someone else is reported as not found.
type TaskRepository interface {
	Create(ctx context.Context, t model.Task) (model.Task, error)
	Get(ctx context.Context, id, ownerID string) (model.Task, error)
	List(ctx context.Context, q model.TaskQuery) ([]model.Task, error)
	Count(ctx context.Context, q model.TaskQuery) (int64, error)
	Update(ctx context.Context, id, ownerID string, patch model.UpdateTaskInput) (model.Task, error)
	Delete(ctx context.Context, id, ownerID string) error
	Ping(ctx context.Context) error
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrorUnavailable, op, err)
}
