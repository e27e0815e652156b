package api

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/phrazzld/taskhive/internal/api/shared"
	"github.com/phrazzld/taskhive/internal/domain"
	"github.com/phrazzld/taskhive/internal/platform/todos"
	"github.com/phrazzld/taskhive/internal/service"
)

// TaskHandler handles the task CRUD endpoints plus the assigned-tasks,
// statistics, and external-merge views. Every endpoint requires an
// authenticated user with a company.
type TaskHandler struct {
	taskService *service.TaskService
	todosClient *todos.Client
	validator   *validator.Validate
}

// NewTaskHandler creates a new TaskHandler with the given dependencies.
func NewTaskHandler(taskService *service.TaskService, todosClient *todos.Client) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		todosClient: todosClient,
		validator:   validator.New(),
	}
}

// Create handles POST /tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, companyID, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	detail, err := h.taskService.Create(r.Context(), userID, companyID, service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		AssignedTo:  req.AssignedTo,
	})
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to create task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, detail)
}

// List handles GET /tasks.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	_, companyID, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	details, err := h.taskService.List(r.Context(), companyID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to list tasks", err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, details)
}

// Get handles GET /tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	_, companyID, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	taskID, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return
	}

	detail, err := h.taskService.Get(r.Context(), taskID, companyID)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to load task")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, detail)
}

// Update handles PUT /tasks/{id}.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	_, companyID, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	taskID, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return
	}

	var req UpdateTaskRequest
	if err := DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	detail, err := h.taskService.Update(r.Context(), taskID, companyID, service.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		AssignedTo:  req.AssignedTo,
	})
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to update task")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, detail)
}

// Delete handles DELETE /tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	_, companyID, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	taskID, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return
	}

	if err := h.taskService.Delete(r.Context(), taskID, companyID); err != nil {
		h.respondServiceError(w, r, err, "Failed to delete task")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MyTasks handles GET /tasks/my_tasks: tasks assigned to the caller.
func (h *TaskHandler) MyTasks(w http.ResponseWriter, r *http.Request) {
	userID, companyID, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	details, err := h.taskService.MyTasks(r.Context(), userID, companyID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to list tasks", err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, details)
}

// Statistics handles GET /tasks/statistics.
func (h *TaskHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	_, companyID, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	stats, err := h.taskService.Statistics(r.Context(), companyID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to compute statistics", err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}

// ExternalTasks handles GET /external-tasks: the caller's local tasks
// merged with the external todo feed.
func (h *TaskHandler) ExternalTasks(w http.ResponseWriter, r *http.Request) {
	_, companyID, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	fetched, err := h.todosClient.FetchTodos(r.Context(), todos.DefaultFetchLimit)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to fetch external data", err)
		return
	}

	local, err := h.taskService.List(r.Context(), companyID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to list tasks", err)
		return
	}
	if len(local) > todos.DefaultFetchLimit {
		local = local[:todos.DefaultFetchLimit]
	}

	external := toExternalEntries(fetched)
	shared.RespondWithJSON(w, r, http.StatusOK, ExternalTasksResponse{
		LocalTasks:    local,
		ExternalTasks: external,
		MergedCount:   len(local) + len(external),
	})
}

// respondServiceError maps service-layer errors to HTTP responses.
func (h *TaskHandler) respondServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrTaskNotFound):
		shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
	case errors.Is(err, service.ErrAssigneeNotFound):
		shared.RespondWithError(w, r, http.StatusBadRequest, "Assignee not found")
	case errors.Is(err, service.ErrCrossCompanyAssignment):
		shared.RespondWithError(w, r, http.StatusBadRequest, "Cannot assign task to user from different company")
	case errors.Is(err, domain.ErrValidation):
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task data: "+err.Error())
	default:
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, fallback, err)
	}
}
