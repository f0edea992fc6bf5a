package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"akasha-terminal-api/internal/service"
	"akasha-terminal-api/pkg/apierror"
	"akasha-terminal-api/pkg/response"
)

// SynthesisHandler handles crafting HTTP requests.
type SynthesisHandler struct {
	synthService *service.SynthesisService
	taskService  *service.TaskService
}

// NewSynthesisHandler creates a new synthesis handler.
func NewSynthesisHandler(synthService *service.SynthesisService, taskService *service.TaskService) *SynthesisHandler {
	return &SynthesisHandler{synthService: synthService, taskService: taskService}
}

// Recipes handles GET /api/v1/synthesis/recipes
func (h *SynthesisHandler) Recipes(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.synthService.Recipes())
}

type craftRequest struct {
	RecipeID string `json:"recipe_id"`
}

// Craft handles POST /api/v1/users/{user_id}/synthesis/craft
func (h *SynthesisHandler) Craft(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")

	var req craftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON body"))
		return
	}

	out, err := h.synthService.Craft(r.Context(), userID, req.RecipeID)
	if err != nil {
		response.Error(w, err)
		return
	}

	if h.taskService != nil {
		_, _ = h.taskService.RecordAction(r.Context(), userID, service.ActionCraft, 1)
	}

	response.OK(w, out)
}

type decomposeRequest struct {
	ItemID string `json:"item_id"`
}

// Decompose handles POST /api/v1/users/{user_id}/synthesis/decompose
func (h *SynthesisHandler) Decompose(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")

	var req decomposeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON body"))
		return
	}

	out, err := h.synthService.Decompose(r.Context(), userID, req.ItemID)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, out)
}

// UpgradeWorkshop handles POST /api/v1/users/{user_id}/synthesis/workshop
func (h *SynthesisHandler) UpgradeWorkshop(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")

	rec, err := h.synthService.UpgradeWorkshop(r.Context(), userID)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, map[string]interface{}{
		"user_id":        userID,
		"workshop_level": rec.Home.Workshop,
		"money_left":     rec.Home.Money,
	})
}
