package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"akasha-terminal-api/internal/service"
	"akasha-terminal-api/pkg/apierror"
	"akasha-terminal-api/pkg/response"
)

// BattleHandler handles duel HTTP requests.
type BattleHandler struct {
	battleService *service.BattleService
	taskService   *service.TaskService
}

// NewBattleHandler creates a new battle handler.
func NewBattleHandler(battleService *service.BattleService, taskService *service.TaskService) *BattleHandler {
	return &BattleHandler{battleService: battleService, taskService: taskService}
}

type duelRequest struct {
	TargetID string `json:"target_id"`
}

// Duel handles POST /api/v1/users/{user_id}/duels
func (h *BattleHandler) Duel(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")

	var req duelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON body"))
		return
	}
	if req.TargetID == "" {
		response.Error(w, apierror.ValidationError("target_id is required"))
		return
	}

	res, err := h.battleService.Duel(r.Context(), userID, req.TargetID)
	if err != nil {
		response.Error(w, err)
		return
	}

	if h.taskService != nil {
		_, _ = h.taskService.RecordAction(r.Context(), userID, service.ActionDuel, 1)
	}

	response.OK(w, res)
}

// Cooldown handles GET /api/v1/users/{user_id}/duels/cooldown
func (h *BattleHandler) Cooldown(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")

	remaining, err := h.battleService.CooldownRemaining(r.Context(), userID)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, map[string]interface{}{
		"user_id":           userID,
		"ready":             remaining <= 0,
		"remaining_seconds": int(remaining / time.Second),
	})
}
