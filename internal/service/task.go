package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/BuzzLyutic/taskboard-api/internal/model"
	"github.com/BuzzLyutic/taskboard-api/internal/repo"
)

var (
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
)

// listInput is ListParams after defaults, in a shape the validator can check.
type listInput struct {
	Status    string `json:"status" validate:"omitempty,oneof=pending completed"`
	Priority  string `json:"priority" validate:"omitempty,oneof=low medium high"`
	Search    string `json:"search" validate:"text"`
	SortBy    string `json:"sortBy" validate:"oneof=createdAt updatedAt title priority status"`
	SortOrder string `json:"sortOrder" validate:"oneof=asc desc"`
	Page      int    `json:"page" validate:"min=1"`
	Limit     int    `json:"limit" validate:"task_limit"`
}

type TaskService struct {
	repo     repo.TaskRepository
	validate *validator.Validate
}

func NewTaskService(repo repo.TaskRepository) *TaskService {
	return &TaskService{repo: repo, validate: newValidator()}
}

// newValidator returns a validator that reports fields by their JSON names
// and knows the task_* aliases and the text rule.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Stores reject NUL bytes and invalid UTF-8; catch them here as bad input.
	if err := v.RegisterValidation("text", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return utf8.ValidString(s) && !strings.ContainsRune(s, 0)
	}); err != nil {
		panic(err)
	}
	v.RegisterAlias("task_title", fmt.Sprintf("required,max=%d,text", model.MaxTitleLength))
	v.RegisterAlias("task_description", fmt.Sprintf("max=%d,text", model.MaxDescriptionLength))
	v.RegisterAlias("task_limit", fmt.Sprintf("min=1,max=%d", model.MaxLimit))
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// List returns one page of the owner's tasks matching params.
func (s *TaskService) List(ctx context.Context, ownerID string, params model.ListParams) (model.TaskPage, error) {
	if ownerID == "" {
		return model.TaskPage{}, ErrUnauthorized
	}

	q, err := s.BuildQuery(ownerID, params)
	if err != nil {
		return model.TaskPage{}, err
	}

	items, err := s.repo.List(ctx, q)
	if err != nil {
		return model.TaskPage{}, err
	}
	total, err := s.repo.Count(ctx, q)
	if err != nil {
		return model.TaskPage{}, err
	}
	return model.NewTaskPage(items, q, total), nil
}

// BuildQuery applies defaults to params and rejects anything outside the allowed values.
func (s *TaskService) BuildQuery(ownerID string, params model.ListParams) (model.TaskQuery, error) {
	in := listInput{
		Status:    params.Status,
		Priority:  params.Priority,
		Search:    params.Search,
		SortBy:    params.SortBy,
		SortOrder: params.SortOrder,
		Page:      model.DefaultPage,
		Limit:     model.DefaultLimit,
	}
	if in.SortBy == "" {
		in.SortBy = string(model.SortByCreatedAt)
	}
	if in.SortOrder == "" {
		in.SortOrder = string(model.SortDesc)
	}
	if params.Page != nil {
		in.Page = *params.Page
	}
	if params.Limit != nil {
		in.Limit = *params.Limit
	}

	if err := s.validate.Struct(in); err != nil {
		return model.TaskQuery{}, validationError(err)
	}
	// offset = (page-1)*limit has to fit in an int
	if in.Page-1 > math.MaxInt/in.Limit {
		return model.TaskQuery{}, fmt.Errorf("%w: page is too large", ErrValidation)
	}

	q := model.TaskQuery{
		OwnerID:   ownerID,
		Search:    in.Search,
		SortBy:    model.SortField(in.SortBy),
		SortOrder: model.SortOrder(in.SortOrder),
		Page:      in.Page,
		Limit:     in.Limit,
	}
	if in.Status != "" {
		status := model.Status(in.Status)
		q.Status = &status
	}
	if in.Priority != "" {
		priority := model.Priority(in.Priority)
		q.Priority = &priority
	}
	return q, nil
}

func (s *TaskService) Get(ctx context.Context, ownerID, id string) (model.Task, error) {
	if ownerID == "" {
		return model.Task{}, ErrUnauthorized
	}
	return s.repo.Get(ctx, id, ownerID)
}

func (s *TaskService) Create(ctx context.Context, ownerID string, in model.CreateTaskInput) (model.Task, error) {
	if ownerID == "" {
		return model.Task{}, ErrUnauthorized
	}

	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if err := s.validate.Struct(in); err != nil {
		return model.Task{}, validationError(err)
	}

	t := model.Task{
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		Status:      in.Status,
		OwnerID:     ownerID,
	}
	if t.Priority == "" {
		t.Priority = model.PriorityMedium
	}
	if t.Status == "" {
		t.Status = model.StatusPending
	}
	return s.repo.Create(ctx, t)
}

// Update applies the fields present in in. Ownership is checked by the store
// in the same operation that writes the record.
func (s *TaskService) Update(ctx context.Context, ownerID, id string, in model.UpdateTaskInput) (model.Task, error) {
	if ownerID == "" {
		return model.Task{}, ErrUnauthorized
	}
	if err := s.validateUpdate(&in); err != nil {
		return model.Task{}, err
	}
	// nothing to write, and updatedAt must not move
	if in.Empty() {
		return s.repo.Get(ctx, id, ownerID)
	}
	return s.repo.Update(ctx, id, ownerID, in)
}

func (s *TaskService) Delete(ctx context.Context, ownerID, id string) error {
	if ownerID == "" {
		return ErrUnauthorized
	}
	return s.repo.Delete(ctx, id, ownerID)
}

func (s *TaskService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func (s *TaskService) validateUpdate(in *model.UpdateTaskInput) error {
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		in.Title = &title
		if err := s.validate.Var(title, "task_title"); err != nil {
			return fieldError("title", err)
		}
	}
	if in.Description != nil {
		desc := strings.TrimSpace(*in.Description)
		in.Description = &desc
		if err := s.validate.Var(desc, "task_description"); err != nil {
			return fieldError("description", err)
		}
	}
	if in.Priority != nil && !in.Priority.Valid() {
		return fmt.Errorf("%w: priority must be one of low, medium, high", ErrValidation)
	}
	if in.Status != nil && !in.Status.Valid() {
		return fmt.Errorf("%w: status must be one of pending, completed", ErrValidation)
	}
	return nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return fmt.Errorf("%w: %s", ErrValidation, describe(verrs[0].Field(), verrs[0]))
}

func fieldError(field string, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %s: %v", ErrValidation, field, err)
	}
	return fmt.Errorf("%w: %s", ErrValidation, describe(field, verrs[0]))
}

func describe(field string, fe validator.FieldError) string {
	switch fe.ActualTag() {
	case "required":
		return field + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "text":
		return field + " must be valid UTF-8 without NUL characters"
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.ActualTag())
	}
}
