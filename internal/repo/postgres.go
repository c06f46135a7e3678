package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/taskboard-api/internal/model"
)

const taskColumns = `id::text, owner_id, title, description, priority, status, created_at, updated_at`

// Whitelisted ORDER BY columns; sort keys never reach SQL any other way.
// Text columns sort by byte order, the same as the Mongo and memory stores.
var pgSortColumns = map[model.SortField]string{
	model.SortByCreatedAt: "created_at",
	model.SortByUpdatedAt: "updated_at",
	model.SortByTitle:     `title COLLATE "C"`,
	model.SortByPriority:  `priority COLLATE "C"`,
	model.SortByStatus:    `status COLLATE "C"`,
}

type TaskRepo struct { // PostgreSQL-backed task store
	pool *pgxpool.Pool
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo {
	return &TaskRepo{
		pool: pool,
	}
}

func (r *TaskRepo) Create(ctx context.Context, t model.Task) (model.Task, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO tasks (id, owner_id, title, description, priority, status)
		VALUES ($1::uuid, $2, $3, $4, $5, $6)
		RETURNING `+taskColumns,
		uuid.NewString(), t.OwnerID, t.Title, t.Description, string(t.Priority), string(t.Status),
	)
	created, err := scanTask(row)
	if err != nil {
		return model.Task{}, r.mapError("create", err)
	}
	return created, nil
}

func (r *TaskRepo) Get(ctx context.Context, id, ownerID string) (model.Task, error) {
	if _, err := uuid.Parse(id); err != nil {
		return model.Task{}, ErrorNotFound
	}

	row := r.pool.QueryRow(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE id = $1::uuid AND owner_id = $2
	`, id, ownerID)
	t, err := scanTask(row)
	if err != nil {
		return model.Task{}, r.mapError("get", err)
	}
	return t, nil
}

const pgFilter = `
		WHERE owner_id = $1
		  AND ($2::text IS NULL OR status = $2)
		  AND ($3::text IS NULL OR priority = $3)
		  AND ($4::text IS NULL OR title ILIKE $4 OR description ILIKE $4)`

func (r *TaskRepo) List(ctx context.Context, q model.TaskQuery) ([]model.Task, error) {
	column, ok := pgSortColumns[q.SortBy]
	if !ok {
		column = "created_at"
	}
	dir := "DESC"
	if q.SortOrder == model.SortAsc {
		dir = "ASC"
	}

	query := `SELECT ` + taskColumns + ` FROM tasks` + pgFilter +
		fmt.Sprintf("\n\t\tORDER BY %s %s, id %s\n\t\tLIMIT $5 OFFSET $6", column, dir, dir)

	args := append(filterArgs(q), q.Limit, q.Offset())
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapError("list", err)
	}
	defer rows.Close()

	tasks := make([]model.Task, 0, q.Limit)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, r.mapError("list", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapError("list", err)
	}
	return tasks, nil
}

func (r *TaskRepo) Count(ctx context.Context, q model.TaskQuery) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tasks`+pgFilter, filterArgs(q)...).Scan(&total)
	if err != nil {
		return 0, r.mapError("count", err)
	}
	return total, nil
}

func (r *TaskRepo) Update(ctx context.Context, id, ownerID string, patch model.UpdateTaskInput) (model.Task, error) {
	if _, err := uuid.Parse(id); err != nil {
		return model.Task{}, ErrorNotFound
	}

	// Owner is part of the match so a concurrent delete or a foreign id both end in ErrNoRows.
	row := r.pool.QueryRow(ctx, `
		UPDATE tasks
		SET title = COALESCE($3, title),
		    description = COALESCE($4, description),
		    priority = COALESCE($5, priority),
		    status = COALESCE($6, status),
		    updated_at = GREATEST(now(), updated_at)
		WHERE id = $1::uuid AND owner_id = $2
		RETURNING `+taskColumns,
		id, ownerID, patch.Title, patch.Description, enumArg(patch.Priority), enumArg(patch.Status),
	)
	t, err := scanTask(row)
	if err != nil {
		return model.Task{}, r.mapError("update", err)
	}
	return t, nil
}

func (r *TaskRepo) Delete(ctx context.Context, id, ownerID string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrorNotFound
	}

	cmd, err := r.pool.Exec(ctx, "DELETE FROM tasks WHERE id = $1::uuid AND owner_id = $2", id, ownerID)
	if err != nil {
		return r.mapError("delete", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrorNotFound
	}
	return nil
}

func (r *TaskRepo) Ping(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

func (r *TaskRepo) mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrorNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "22P02" { // invalid_text_representation
		return ErrorNotFound
	}
	return unavailable(op, err)
}

func scanTask(row pgx.Row) (model.Task, error) {
	var t model.Task
	var priority, status string
	err := row.Scan(&t.ID, &t.OwnerID, &t.Title, &t.Description, &priority, &status, &t.CreatedAt, &t.UpdatedAt)
	t.Priority = model.Priority(priority)
	t.Status = model.Status(status)
	return t, err
}

func filterArgs(q model.TaskQuery) []any {
	var search *string
	if q.Search != "" {
		pattern := "%" + escapeLike(q.Search) + "%"
		search = &pattern
	}
	return []any{q.OwnerID, enumArg(q.Status), enumArg(q.Priority), search}
}

func enumArg[T ~string](v *T) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
