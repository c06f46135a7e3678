package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnums_Valid(t *testing.T) {
	assert.True(t, PriorityLow.Valid())
	assert.True(t, PriorityHigh.Valid())
	assert.False(t, Priority("urgent").Valid())
	assert.False(t, Priority("").Valid())

	assert.True(t, StatusPending.Valid())
	assert.True(t, StatusCompleted.Valid())
	assert.False(t, Status("processing").Valid())
}

func TestTaskQuery_Offset(t *testing.T) {
	assert.Equal(t, 0, TaskQuery{Page: 1, Limit: 10}.Offset())
	assert.Equal(t, 20, TaskQuery{Page: 3, Limit: 10}.Offset())
	assert.Equal(t, 99, TaskQuery{Page: 100, Limit: 1}.Offset())
}

func TestNewTaskPage(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		total     int64
		wantPages int
	}{
		{name: "empty", limit: 10, total: 0, wantPages: 0},
		{name: "exact", limit: 10, total: 20, wantPages: 2},
		{name: "remainder", limit: 10, total: 15, wantPages: 2},
		{name: "single item", limit: 100, total: 1, wantPages: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := NewTaskPage(nil, TaskQuery{Page: 1, Limit: tt.limit}, tt.total)

			assert.Equal(t, tt.wantPages, page.TotalPages)
			assert.Equal(t, tt.total, page.Total)
			assert.NotNil(t, page.Items)
		})
	}
}

func TestUpdateTaskInput_Empty(t *testing.T) {
	assert.True(t, UpdateTaskInput{}.Empty())

	title := "x"
	assert.False(t, UpdateTaskInput{Title: &title}.Empty())
}
