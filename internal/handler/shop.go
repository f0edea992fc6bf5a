package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"akasha-terminal-api/internal/service"
	"akasha-terminal-api/pkg/apierror"
	"akasha-terminal-api/pkg/response"
)

// ShopHandler handles storefront HTTP requests.
type ShopHandler struct {
	shopService *service.ShopService
	taskService *service.TaskService
}

// NewShopHandler creates a new shop handler.
func NewShopHandler(shopService *service.ShopService, taskService *service.TaskService) *ShopHandler {
	return &ShopHandler{shopService: shopService, taskService: taskService}
}

// Catalog handles GET /api/v1/shop
func (h *ShopHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.shopService.Catalog())
}

type buyRequest struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// Buy handles POST /api/v1/users/{user_id}/shop/buy
func (h *ShopHandler) Buy(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")

	req := buyRequest{Quantity: 1}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON body"))
		return
	}

	receipt, err := h.shopService.Buy(r.Context(), userID, req.ItemID, req.Quantity)
	if err != nil {
		response.Error(w, err)
		return
	}

	if h.taskService != nil {
		_, _ = h.taskService.RecordAction(r.Context(), userID, service.ActionBuy, req.Quantity)
	}

	response.OK(w, receipt)
}

type useRequest struct {
	ItemID string `json:"item_id"`
}

// Use handles POST /api/v1/users/{user_id}/shop/use
func (h *ShopHandler) Use(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")

	var req useRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON body"))
		return
	}

	out, err := h.shopService.Use(r.Context(), userID, req.ItemID)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, out)
}

// Backpack handles GET /api/v1/users/{user_id}/backpack
func (h *ShopHandler) Backpack(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")

	bp, err := h.shopService.Backpack(r.Context(), userID)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, bp)
}

type giftRequest struct {
	ToID     string `json:"to_id"`
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// Gift handles POST /api/v1/users/{user_id}/shop/gift
func (h *ShopHandler) Gift(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")

	req := giftRequest{Quantity: 1}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON body"))
		return
	}

	out, err := h.shopService.Gift(r.Context(), userID, req.ToID, req.ItemID, req.Quantity)
	if err != nil {
		response.Error(w, err)
		return
	}

	if h.taskService != nil {
		_, _ = h.taskService.RecordAction(r.Context(), userID, service.ActionGift, req.Quantity)
	}

	response.OK(w, out)
}
