package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"rental-backend/internal/cache"
	"rental-backend/internal/models"
	"rental-backend/internal/services"
	"rental-backend/pkg/utils"
)

type GatewayHandler struct {
	Service *services.GatewayService
}

func NewGatewayHandler(service *services.GatewayService) *GatewayHandler {
	return &GatewayHandler{Service: service}
}

// GetStatus tells the payment page whether online collection is on
func (h *GatewayHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"enabled": h.Service.Enabled(),
		"key_id":  h.Service.KeyID(),
	})
}

func (h *GatewayHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req models.CreateGatewayOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	order, err := h.Service.CreateOrder(r.Context(), &req)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, order)
}

// Webhook receives gateway event deliveries. Always unauthenticated; the
// HMAC signature is the authentication.
func (h *GatewayHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Failed to read body")
		return
	}

	signature := r.Header.Get("X-Razorpay-Signature")
	if err := h.Service.HandleWebhook(r.Context(), body, signature); err != nil {
		utils.ServiceError(w, err)
		return
	}

	cache.InvalidatePattern(r.Context(), "ledger:lease:*")
	utils.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
