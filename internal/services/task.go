package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/taskcourse/apiserver/internal/apperr"
	"github.com/taskcourse/apiserver/internal/policy"
	"github.com/taskcourse/apiserver/internal/store"
	"github.com/taskcourse/apiserver/types"
)

// TaskRepository defines persistence operations for tasks.
type TaskRepository interface {
	ListByOwner(ctx context.Context, ownerID int, opts store.TaskListOptions) ([]types.Task, int, error)
	Get(ctx context.Context, id int) (types.Task, error)
	HasOpenWithTitle(ctx context.Context, ownerID int, title string, excludeID int) (bool, error)
	Create(ctx context.Context, task types.Task) (types.Task, error)
	Update(ctx context.Context, task types.Task) (types.Task, error)
	Delete(ctx context.Context, id int) error
}

// TaskService encapsulates task use-cases. Tasks are strictly owner
// scoped: every operation acts on the caller's own tasks, and the
// existence check always precedes the ownership check so a missing id
// is reported as not found rather than forbidden.
type TaskService struct {
	repo TaskRepository
}

func NewTaskService(repo TaskRepository) *TaskService {
	return &TaskService{repo: repo}
}

// CreateTaskInput carries the fields of a task creation request.
type CreateTaskInput struct {
	Title       string
	Description string
	Status      string
	DueDate     *time.Time
}

// UpdateTaskInput carries the mutable task fields. Nil fields are left
// unchanged.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *string
	DueDate     *time.Time
}

// ListTasksInput narrows and orders a task listing.
type ListTasksInput struct {
	Page   int
	Limit  int
	Search string
	SortBy string
}

const (
	defaultTaskLimit = 10
	maxTaskLimit     = 100
)

func (s *TaskService) Create(ctx context.Context, caller policy.Caller, in CreateTaskInput) (types.Task, error) {
	if decision := policy.Decide(caller, policy.ActionTaskCreate, policy.Resource{Kind: policy.KindTask, OwnerID: caller.ID}); !decision.Allowed {
		return types.Task{}, apperr.New(apperr.Forbidden, decision.Reason)
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return types.Task{}, apperr.New(apperr.BadRequest, "Title must not be empty")
	}

	status := in.Status
	if status == "" {
		status = types.TaskStatusPending
	}
	if !types.ValidTaskStatus(status) {
		return types.Task{}, apperr.New(apperr.BadRequest, "Invalid task status")
	}

	// Only one open task per title and owner. Completed tasks don't
	// block reuse of their title.
	if status != types.TaskStatusCompleted {
		duplicate, err := s.repo.HasOpenWithTitle(ctx, caller.ID, title, 0)
		if err != nil {
			return types.Task{}, apperr.Wrap(apperr.Internal, "Failed to create task", err)
		}
		if duplicate {
			return types.Task{}, apperr.Newf(apperr.Conflict, "An open task titled %q already exists", title)
		}
	}

	task, err := s.repo.Create(ctx, types.Task{
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Status:      status,
		DueDate:     in.DueDate,
		CreatedBy:   caller.ID,
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return types.Task{}, apperr.Newf(apperr.Conflict, "An open task titled %q already exists", title)
		}
		return types.Task{}, apperr.Wrap(apperr.Internal, "Failed to create task", err)
	}
	return task, nil
}

// List returns the caller's tasks, paginated and optionally filtered
// by a title search.
func (s *TaskService) List(ctx context.Context, caller policy.Caller, in ListTasksInput) ([]types.Task, int, error) {
	if decision := policy.Decide(caller, policy.ActionTaskList, policy.Resource{Kind: policy.KindTask, OwnerID: caller.ID}); !decision.Allowed {
		return nil, 0, apperr.New(apperr.Forbidden, decision.Reason)
	}

	if in.Page < 1 {
		in.Page = 1
	}
	if in.Limit < 1 {
		in.Limit = defaultTaskLimit
	}
	if in.Limit > maxTaskLimit {
		in.Limit = maxTaskLimit
	}

	tasks, total, err := s.repo.ListByOwner(ctx, caller.ID, store.TaskListOptions{
		Offset: (in.Page - 1) * in.Limit,
		Limit:  in.Limit,
		Search: strings.TrimSpace(in.Search),
		SortBy: in.SortBy,
	})
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.Internal, "Failed to list tasks", err)
	}
	return tasks, total, nil
}

func (s *TaskService) Get(ctx context.Context, caller policy.Caller, id int) (types.Task, error) {
	return s.getOwned(ctx, caller, id, policy.ActionTaskRead)
}

func (s *TaskService) Update(ctx context.Context, caller policy.Caller, id int, in UpdateTaskInput) (types.Task, error) {
	task, err := s.getOwned(ctx, caller, id, policy.ActionTaskUpdate)
	if err != nil {
		return types.Task{}, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return types.Task{}, apperr.New(apperr.BadRequest, "Title must not be empty")
		}
		task.Title = title
	}
	if in.Description != nil {
		task.Description = strings.TrimSpace(*in.Description)
	}
	if in.Status != nil {
		if !types.ValidTaskStatus(*in.Status) {
			return types.Task{}, apperr.New(apperr.BadRequest, "Invalid task status")
		}
		task.Status = *in.Status
	}
	if in.DueDate != nil {
		task.DueDate = in.DueDate
	}

	// Renaming or reopening must not collide with another open task.
	if task.Open() {
		duplicate, err := s.repo.HasOpenWithTitle(ctx, caller.ID, task.Title, task.ID)
		if err != nil {
			return types.Task{}, apperr.Wrap(apperr.Internal, "Failed to update task", err)
		}
		if duplicate {
			return types.Task{}, apperr.Newf(apperr.Conflict, "An open task titled %q already exists", task.Title)
		}
	}

	updated, err := s.repo.Update(ctx, task)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return types.Task{}, apperr.Newf(apperr.NotFound, "Task with ID %d not found", id)
		case errors.Is(err, store.ErrConflict):
			return types.Task{}, apperr.Newf(apperr.Conflict, "An open task titled %q already exists", task.Title)
		}
		return types.Task{}, apperr.Wrap(apperr.Internal, "Failed to update task", err)
	}
	return updated, nil
}

func (s *TaskService) Remove(ctx context.Context, caller policy.Caller, id int) (types.Task, error) {
	task, err := s.getOwned(ctx, caller, id, policy.ActionTaskDelete)
	if err != nil {
		return types.Task{}, err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Task{}, apperr.Newf(apperr.NotFound, "Task with ID %d not found", id)
		}
		return types.Task{}, apperr.Wrap(apperr.Internal, "Failed to delete task", err)
	}
	return task, nil
}

// getOwned loads a task and verifies the caller may act on it.
// Existence is checked before ownership.
func (s *TaskService) getOwned(ctx context.Context, caller policy.Caller, id int, action policy.Action) (types.Task, error) {
	task, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Task{}, apperr.Newf(apperr.NotFound, "Task with ID %d not found", id)
		}
		return types.Task{}, apperr.Wrap(apperr.Internal, "Failed to fetch task", err)
	}

	if decision := policy.Decide(caller, action, policy.Resource{Kind: policy.KindTask, OwnerID: task.CreatedBy}); !decision.Allowed {
		return types.Task{}, apperr.New(apperr.Forbidden, decision.Reason)
	}
	return task, nil
}
