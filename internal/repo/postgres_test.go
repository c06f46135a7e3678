package repo

import (
	"testing"

	"github.com/BuzzLyutic/taskboard-api/internal/testutil"
)

func TestTaskRepo_Contract(t *testing.T) {
	pool, cleanup := testutil.SetupPostgres(t)
	defer cleanup()

	runRepositoryContract(t, func(t *testing.T) TaskRepository {
		testutil.TruncateTasks(t, pool)
		return NewTaskRepo(pool)
	})
}

func TestEscapeLike(t *testing.T) {
	tests := map[string]string{
		"plain":   "plain",
		"100%":    `100\%`,
		"snake_x": `snake\_x`,
		`a\b`:     `a\\b`,
	}
	for in, want := range tests {
		if got := escapeLike(in); got != want {
			t.Errorf("escapeLike(%q) = %q, want %q", in, got, want)
		}
	}
}
