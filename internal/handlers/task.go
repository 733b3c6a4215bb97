package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/taskcourse/apiserver/internal/services"
	"github.com/taskcourse/apiserver/types"
)

// TaskHandler provides HTTP handlers for the caller's own tasks.
type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// TaskRouter registers task routes on the given router. Every route
// requires an authenticated caller.
func TaskRouter(r chi.Router, taskService *services.TaskService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewTaskHandler(taskService)

	r.Use(authMiddleware)
	r.Post("/", handler.CreateTask)
	r.Get("/", handler.ListTasks)
	r.Route("/{taskID}", func(r chi.Router) {
		r.Get("/", handler.GetTask)
		r.Put("/", handler.UpdateTask)
		r.Delete("/", handler.DeleteTask)
	})
}

type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
	DueDate     string `json:"due_date,omitempty"`
}

type UpdateTaskRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
}

type TaskPayload struct {
	Task types.Task `json:"task"`
}

type TaskListPayload struct {
	Tasks []types.Task `json:"tasks"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
	Total int          `json:"total"`
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFromContext(r.Context())
	if err != nil {
		writeError(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	dueDate, ok := parseDueDate(req.DueDate)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "Invalid due date")
		return
	}

	task, err := h.taskService.Create(r.Context(), caller, services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		DueDate:     dueDate,
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusCreated, "Task successfully created", TaskPayload{Task: task})
}

func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFromContext(r.Context())
	if err != nil {
		writeError(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	in, ok := parseTaskListQuery(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "Invalid pagination parameters")
		return
	}

	tasks, total, err := h.taskService.List(r.Context(), caller, in)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	if in.Page < 1 {
		in.Page = 1
	}
	if in.Limit < 1 {
		in.Limit = 10
	}
	writeSuccess(w, http.StatusOK, "Tasks retrieved successfully", TaskListPayload{
		Tasks: tasks,
		Page:  in.Page,
		Limit: in.Limit,
		Total: total,
	})
}

func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFromContext(r.Context())
	if err != nil {
		writeError(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, ok := parseID(r, "taskID")
	if !ok {
		writeError(w, r, http.StatusBadRequest, "Invalid task ID format")
		return
	}

	task, err := h.taskService.Get(r.Context(), caller, id)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Task retrieved successfully", TaskPayload{Task: task})
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFromContext(r.Context())
	if err != nil {
		writeError(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, ok := parseID(r, "taskID")
	if !ok {
		writeError(w, r, http.StatusBadRequest, "Invalid task ID format")
		return
	}

	var req UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	in := services.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	}
	if req.DueDate != nil {
		dueDate, ok := parseDueDate(*req.DueDate)
		if !ok {
			writeError(w, r, http.StatusBadRequest, "Invalid due date")
			return
		}
		in.DueDate = dueDate
	}

	task, err := h.taskService.Update(r.Context(), caller, id, in)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Task updated successfully", TaskPayload{Task: task})
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFromContext(r.Context())
	if err != nil {
		writeError(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, ok := parseID(r, "taskID")
	if !ok {
		writeError(w, r, http.StatusBadRequest, "Invalid task ID format")
		return
	}

	task, err := h.taskService.Remove(r.Context(), caller, id)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Task deleted successfully", TaskPayload{Task: task})
}

func parseDueDate(raw string) (*time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, false
	}
	return &parsed, true
}

func parseTaskListQuery(r *http.Request) (services.ListTasksInput, bool) {
	in := services.ListTasksInput{
		Search: r.URL.Query().Get("search"),
		SortBy: r.URL.Query().Get("sort_by"),
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("page")); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return services.ListTasksInput{}, false
		}
		in.Page = page
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return services.ListTasksInput{}, false
		}
		in.Limit = limit
	}
	return in, true
}
