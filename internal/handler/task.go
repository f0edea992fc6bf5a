package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"akasha-terminal-api/internal/service"
	"akasha-terminal-api/pkg/apierror"
	"akasha-terminal-api/pkg/response"
)

// TaskHandler handles task HTTP requests.
type TaskHandler struct {
	taskService *service.TaskService
}

// NewTaskHandler creates a new task handler.
func NewTaskHandler(taskService *service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// Status handles GET /api/v1/users/{user_id}/tasks
func (h *TaskHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")

	statuses, err := h.taskService.Status(r.Context(), userID)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, statuses)
}

// Assign handles POST /api/v1/users/{user_id}/tasks/assign
func (h *TaskHandler) Assign(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")

	added, err := h.taskService.Assign(r.Context(), userID)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, map[string]interface{}{"user_id": userID, "assigned": added})
}

type actionRequest struct {
	Action string `json:"action"`
	Times  int    `json:"times"`
}

// RecordAction handles POST /api/v1/users/{user_id}/actions
func (h *TaskHandler) RecordAction(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")

	req := actionRequest{Times: 1}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON body"))
		return
	}
	if req.Action == "" {
		response.Error(w, apierror.ValidationError("action is required"))
		return
	}

	report, err := h.taskService.RecordAction(r.Context(), userID, req.Action, req.Times)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, report)
}

// Work handles POST /api/v1/users/{user_id}/work
func (h *TaskHandler) Work(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")

	report, err := h.taskService.Work(r.Context(), userID)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, report)
}
