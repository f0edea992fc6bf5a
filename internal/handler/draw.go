package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"akasha-terminal-api/internal/service"
	"akasha-terminal-api/pkg/apierror"
	"akasha-terminal-api/pkg/response"
)

// DrawHandler handles gacha HTTP requests.
type DrawHandler struct {
	drawService *service.DrawService
	taskService *service.TaskService
}

// NewDrawHandler creates a new draw handler.
func NewDrawHandler(drawService *service.DrawService, taskService *service.TaskService) *DrawHandler {
	return &DrawHandler{drawService: drawService, taskService: taskService}
}

type drawRequest struct {
	Count int `json:"count"`
}

// Draw handles POST /api/v1/users/{user_id}/draws
func (h *DrawHandler) Draw(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")

	req := drawRequest{Count: 1}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, apierror.BadRequest("invalid JSON body"))
			return
		}
	}

	summary, err := h.drawService.ExecuteBatch(r.Context(), userID, req.Count)
	if err != nil {
		response.Error(w, err)
		return
	}

	if h.taskService != nil {
		if _, err := h.taskService.RecordAction(r.Context(), userID, service.ActionDraw, req.Count); err != nil {
			// Task bookkeeping must not fail a draw the user already got.
			response.OK(w, summary)
			return
		}
	}

	response.OK(w, summary)
}

// History handles GET /api/v1/users/{user_id}/draws
func (h *DrawHandler) History(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(w, apierror.BadRequest("limit must be a number"))
			return
		}
		limit = n
	}

	events, err := h.drawService.RecentDraws(r.Context(), userID, limit)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, map[string]interface{}{
		"user_id": userID,
		"draws":   events,
		"count":   len(events),
	})
}

type grantRequest struct {
	Amount int `json:"amount"`
}

// GrantFates handles POST /api/v1/users/{user_id}/fates
func (h *DrawHandler) GrantFates(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")

	var req grantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON body"))
		return
	}

	rec, err := h.drawService.GrantFates(r.Context(), userID, req.Amount)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, map[string]interface{}{
		"user_id": userID,
		"fates":   rec.Weapons.Fates,
	})
}

// Armory handles GET /api/v1/users/{user_id}/armory
func (h *DrawHandler) Armory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")

	report, err := h.drawService.Armory(r.Context(), userID)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, report)
}
