package repo

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BuzzLyutic/taskboard-api/internal/model"
)

const (
	ownerA = "user_aaaaaaaaaaaaaaaa"
	ownerB = "user_bbbbbbbbbbbbbbbb"
)

// runRepositoryContract checks the behaviour every TaskRepository must share.
// newRepo must return an empty store.
func runRepositoryContract(t *testing.T, newRepo func(t *testing.T) TaskRepository) {
	ctx := context.Background()

	seed := func(t *testing.T, r TaskRepository, owner string, n int, mod func(i int, task *model.Task)) []model.Task {
		t.Helper()
		out := make([]model.Task, 0, n)
		for i := 0; i < n; i++ {
			task := model.Task{
				Title:    fmt.Sprintf("Task %02d", i),
				Priority: model.PriorityMedium,
				Status:   model.StatusPending,
				OwnerID:  owner,
			}
			if mod != nil {
				mod(i, &task)
			}
			created, err := r.Create(ctx, task)
			require.NoError(t, err)
			out = append(out, created)
		}
		return out
	}

	query := func(owner string) model.TaskQuery {
		return model.TaskQuery{
			OwnerID:   owner,
			SortBy:    model.SortByCreatedAt,
			SortOrder: model.SortDesc,
			Page:      1,
			Limit:     10,
		}
	}

	t.Run("create and get round trip", func(t *testing.T) {
		r := newRepo(t)
		created, err := r.Create(ctx, model.Task{
			Title:       "Buy milk",
			Description: "2 litres",
			Priority:    model.PriorityHigh,
			Status:      model.StatusPending,
			OwnerID:     ownerA,
		})
		require.NoError(t, err)
		require.NotEmpty(t, created.ID)
		assert.False(t, created.CreatedAt.IsZero())
		assert.Equal(t, created.CreatedAt, created.UpdatedAt)

		got, err := r.Get(ctx, created.ID, ownerA)
		require.NoError(t, err)
		assert.Equal(t, "Buy milk", got.Title)
		assert.Equal(t, model.PriorityHigh, got.Priority)
		assert.Equal(t, model.StatusPending, got.Status)
		assert.Equal(t, ownerA, got.OwnerID)
		assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("get is owner scoped", func(t *testing.T) {
		r := newRepo(t)
		created := seed(t, r, ownerA, 1, nil)[0]

		_, err := r.Get(ctx, created.ID, ownerB)
		assert.ErrorIs(t, err, ErrorNotFound)

		_, err = r.Get(ctx, "not-an-id", ownerA)
		assert.ErrorIs(t, err, ErrorNotFound)
	})

	t.Run("pagination and totals", func(t *testing.T) {
		r := newRepo(t)
		seed(t, r, ownerA, 15, nil)

		q := query(ownerA)
		first, err := r.List(ctx, q)
		require.NoError(t, err)
		assert.Len(t, first, 10)

		total, err := r.Count(ctx, q)
		require.NoError(t, err)
		assert.Equal(t, int64(15), total)

		q.Page = 2
		second, err := r.List(ctx, q)
		require.NoError(t, err)
		assert.Len(t, second, 5)

		seen := map[string]bool{}
		for _, task := range append(first, second...) {
			assert.Equal(t, ownerA, task.OwnerID)
			assert.False(t, seen[task.ID], "task %s returned twice", task.ID)
			seen[task.ID] = true
		}
		assert.Len(t, seen, 15)

		q.Page = 3
		third, err := r.List(ctx, q)
		require.NoError(t, err)
		assert.Empty(t, third)

		other, err := r.List(ctx, query(ownerB))
		require.NoError(t, err)
		assert.Empty(t, other)

		otherTotal, err := r.Count(ctx, query(ownerB))
		require.NoError(t, err)
		assert.Zero(t, otherTotal)
	})

	t.Run("search matches title or description case-insensitively", func(t *testing.T) {
		r := newRepo(t)
		titles := []string{"Complete Laravel project", "Write tests", "Review 100% coverage"}
		seed(t, r, ownerA, len(titles), func(i int, task *model.Task) {
			task.Title = titles[i]
			if i == 1 {
				task.Description = "cover the LARAVEL-free parts"
			}
		})
		seed(t, r, ownerB, 1, func(_ int, task *model.Task) { task.Title = "Laravel for B" })

		q := query(ownerA)
		q.Search = "laravel"
		found, err := r.List(ctx, q)
		require.NoError(t, err)
		assert.Len(t, found, 2)

		q.Search = "Complete Laravel"
		found, err = r.List(ctx, q)
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "Complete Laravel project", found[0].Title)

		q.Search = "100%"
		found, err = r.List(ctx, q)
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "Review 100% coverage", found[0].Title)

		q.Search = "(.*"
		found, err = r.List(ctx, q)
		require.NoError(t, err)
		assert.Empty(t, found)
	})

	t.Run("status and priority filters", func(t *testing.T) {
		r := newRepo(t)
		seed(t, r, ownerA, 6, func(i int, task *model.Task) {
			if i%2 == 0 {
				task.Status = model.StatusCompleted
			}
			if i < 2 {
				task.Priority = model.PriorityHigh
			}
		})

		completed := model.StatusCompleted
		high := model.PriorityHigh

		q := query(ownerA)
		q.Status = &completed
		total, err := r.Count(ctx, q)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)

		q.Priority = &high
		found, err := r.List(ctx, q)
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, model.StatusCompleted, found[0].Status)
		assert.Equal(t, model.PriorityHigh, found[0].Priority)
	})

	t.Run("sort with identity tie-breaker pages stably", func(t *testing.T) {
		r := newRepo(t)
		seed(t, r, ownerA, 7, func(i int, task *model.Task) {
			task.Title = "Same"
			if i == 3 {
				task.Title = "Alpha"
			}
		})

		q := query(ownerA)
		q.SortBy = model.SortByTitle
		q.SortOrder = model.SortAsc
		q.Limit = 2

		var collected []model.Task
		for page := 1; page <= 4; page++ {
			q.Page = page
			items, err := r.List(ctx, q)
			require.NoError(t, err)
			collected = append(collected, items...)
		}
		require.Len(t, collected, 7)
		assert.Equal(t, "Alpha", collected[0].Title)

		ids := map[string]bool{}
		for _, task := range collected {
			ids[task.ID] = true
		}
		assert.Len(t, ids, 7)

		q.Page = 1
		q.Limit = 10
		again, err := r.List(ctx, q)
		require.NoError(t, err)
		assert.Equal(t, collected, again)
	})

	t.Run("title sort is byte order in every store", func(t *testing.T) {
		r := newRepo(t)
		titles := []string{"cherry", "Banana", "apple", "Zebra"}
		seed(t, r, ownerA, len(titles), func(i int, task *model.Task) { task.Title = titles[i] })

		q := query(ownerA)
		q.SortBy = model.SortByTitle
		q.SortOrder = model.SortAsc

		items, err := r.List(ctx, q)
		require.NoError(t, err)
		got := make([]string, 0, len(items))
		for _, task := range items {
			got = append(got, task.Title)
		}
		assert.Equal(t, []string{"Banana", "Zebra", "apple", "cherry"}, got)
	})

	t.Run("update is partial and owner scoped", func(t *testing.T) {
		r := newRepo(t)
		created := seed(t, r, ownerA, 1, func(_ int, task *model.Task) { task.Description = "keep me" })[0]

		title := "Renamed"
		done := model.StatusCompleted
		updated, err := r.Update(ctx, created.ID, ownerA, model.UpdateTaskInput{Title: &title, Status: &done})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", updated.Title)
		assert.Equal(t, model.StatusCompleted, updated.Status)
		assert.Equal(t, "keep me", updated.Description)
		assert.Equal(t, model.PriorityMedium, updated.Priority)
		assert.Equal(t, ownerA, updated.OwnerID)
		assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

		_, err = r.Update(ctx, created.ID, ownerB, model.UpdateTaskInput{Title: &title})
		assert.ErrorIs(t, err, ErrorNotFound)

		got, err := r.Get(ctx, created.ID, ownerA)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Title)
	})

	t.Run("delete is owner scoped", func(t *testing.T) {
		r := newRepo(t)
		created := seed(t, r, ownerA, 1, nil)[0]

		assert.ErrorIs(t, r.Delete(ctx, created.ID, ownerB), ErrorNotFound)
		require.NoError(t, r.Delete(ctx, created.ID, ownerA))
		assert.ErrorIs(t, r.Delete(ctx, created.ID, ownerA), ErrorNotFound)

		_, err := r.Get(ctx, created.ID, ownerA)
		assert.ErrorIs(t, err, ErrorNotFound)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, newRepo(t).Ping(ctx))
	})
}
