package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/BuzzLyutic/taskboard-api/internal/model"
	"github.com/BuzzLyutic/taskboard-api/internal/testutil"
)

func TestMongoTaskRepo_Contract(t *testing.T) {
	db, cleanup := testutil.SetupMongo(t)
	defer cleanup()

	r := NewMongoTaskRepo(db)
	require.NoError(t, r.EnsureIndexes(context.Background()))

	runRepositoryContract(t, func(t *testing.T) TaskRepository {
		_, err := db.Collection(TasksCollection).DeleteMany(context.Background(), bson.M{})
		require.NoError(t, err)
		return r
	})

	t.Run("dollar-prefixed values are stored literally", func(t *testing.T) {
		created, err := r.Create(context.Background(), model.Task{Title: "x", OwnerID: ownerA,
			Priority: model.PriorityLow, Status: model.StatusPending})
		require.NoError(t, err)

		title := "$status"
		updated, err := r.Update(context.Background(), created.ID, ownerA, model.UpdateTaskInput{Title: &title})
		require.NoError(t, err)
		assert.Equal(t, "$status", updated.Title)
	})
}

func TestMongoFilter(t *testing.T) {
	done := model.StatusCompleted
	f := mongoFilter(model.TaskQuery{OwnerID: ownerA, Status: &done, Search: "a.b"})

	assert.Equal(t, ownerA, f["userId"])
	assert.Equal(t, "completed", f["status"])
	assert.NotContains(t, f, "priority")
	require.Contains(t, f, "$or")

	clauses := f["$or"].(bson.A)
	assert.Len(t, clauses, 2)
}
