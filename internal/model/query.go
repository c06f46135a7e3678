package model

type SortField string

const (
	SortByCreatedAt SortField = "createdAt"
	SortByUpdatedAt SortField = "updatedAt"
	SortByTitle     SortField = "title"
	SortByPriority  SortField = "priority"
	SortByStatus    SortField = "status"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// ListParams are the raw list filters as the client sent them.
// Page and Limit are pointers so an absent value can be told apart from zero.
type ListParams struct {
	Status    string
	Priority  string
	Search    string
	SortBy    string
	SortOrder string
	Page      *int
	Limit     *int
}

// TaskQuery is a validated, owner-scoped list request ready for a store.
type TaskQuery struct {
	OwnerID   string
	Status    *Status
	Priority  *Priority
	Search    string
	SortBy    SortField
	SortOrder SortOrder
	Page      int
	Limit     int
}

func (q TaskQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

type TaskPage struct {
	Items      []Task
	Page       int
	Limit      int
	Total      int64
	TotalPages int
}

func NewTaskPage(items []Task, q TaskQuery, total int64) TaskPage {
	if items == nil {
		items = []Task{}
	}
	pages := 0
	if q.Limit > 0 {
		pages = int((total + int64(q.Limit) - 1) / int64(q.Limit))
	}
	return TaskPage{
		Items:      items,
		Page:       q.Page,
		Limit:      q.Limit,
		Total:      total,
		TotalPages: pages,
	}
}
