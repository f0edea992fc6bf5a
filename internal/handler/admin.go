package handler

import (
	"net/http"

	"akasha-terminal-api/internal/repository"
	"akasha-terminal-api/internal/service"
	"akasha-terminal-api/pkg/response"
)

// AdminHandler exposes operational statistics.
type AdminHandler struct {
	userService *service.UserService
	history     repository.HistoryRepository
}

// NewAdminHandler creates a new admin handler. history may be nil.
func NewAdminHandler(userService *service.UserService, history repository.HistoryRepository) *AdminHandler {
	return &AdminHandler{userService: userService, history: history}
}

// GetStats handles GET /api/v1/admin/stats
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats := make(map[string]interface{})

	ids, err := h.userService.List(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	stats["total_users"] = len(ids)

	if h.history != nil {
		histStats, err := h.history.GetStats(r.Context())
		if err == nil {
			stats["history"] = histStats
		} else {
			stats["history_error"] = err.Error()
		}
	}

	response.OK(w, stats)
}

// ListUsers handles GET /api/v1/admin/users
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ids, err := h.userService.List(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, map[string]interface{}{
		"users": ids,
		"count": len(ids),
	})
}
