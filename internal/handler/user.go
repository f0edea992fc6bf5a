package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"akasha-terminal-api/internal/service"
	"akasha-terminal-api/pkg/apierror"
	"akasha-terminal-api/pkg/response"
)

// UserHandler handles profile and sign-in HTTP requests.
type UserHandler struct {
	userService *service.UserService
	taskService *service.TaskService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(userService *service.UserService, taskService *service.TaskService) *UserHandler {
	return &UserHandler{userService: userService, taskService: taskService}
}

// Get handles GET /api/v1/users/{user_id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")

	rec, err := h.userService.Get(r.Context(), userID)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, rec)
}

type nicknameRequest struct {
	Nickname string `json:"nickname"`
}

// SetNickname handles PUT /api/v1/users/{user_id}/nickname
func (h *UserHandler) SetNickname(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")

	var req nicknameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON body"))
		return
	}

	rec, err := h.userService.SetNickname(r.Context(), userID, req.Nickname)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, rec.Profile)
}

type moneyRequest struct {
	Amount int `json:"amount"`
}

// GrantMoney handles POST /api/v1/users/{user_id}/money
func (h *UserHandler) GrantMoney(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")

	var req moneyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON body"))
		return
	}

	rec, err := h.userService.GrantMoney(r.Context(), userID, req.Amount)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, map[string]interface{}{"user_id": userID, "money": rec.Home.Money})
}

// SignIn handles POST /api/v1/users/{user_id}/signin
func (h *UserHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")

	res, err := h.userService.SignIn(r.Context(), userID)
	if err != nil {
		response.Error(w, err)
		return
	}

	if h.taskService != nil {
		_, _ = h.taskService.RecordAction(r.Context(), userID, service.ActionSign, 1)
	}

	response.OK(w, res)
}

// Delete handles DELETE /api/v1/users/{user_id}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")

	if err := h.userService.Delete(r.Context(), userID); err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, map[string]interface{}{"user_id": userID, "deleted": true})
}
