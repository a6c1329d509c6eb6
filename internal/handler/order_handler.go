package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"storefront/internal/middleware"
	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OrderHandler handles order and payment HTTP requests.
type OrderHandler struct {
	orders   service.OrderService
	payments service.PaymentService
	logger   zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(orders service.OrderService, payments service.PaymentService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		orders:   orders,
		payments: payments,
		logger:   logger.With().Str("handler", "order").Logger(),
	}
}

// Create handles POST /api/orders requests.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required", h.logger)
		return
	}

	var req model.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	resp, err := h.orders.PlaceOrder(r.Context(), userID, &req)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, struct {
		OrderID uuid.UUID `json:"orderId"`
		*model.OrderResponse
	}{
		OrderID:       resp.Order.ID,
		OrderResponse: resp,
	})
}

// GetByID handles GET /api/orders/{id} requests. An order is visible only to
// the user who placed it.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required", h.logger)
		return
	}

	orderID, err := h.orderIDFromPath(r.URL.Path)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID format", h.logger)
		return
	}

	resp, err := h.orders.GetByID(r.Context(), orderID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to retrieve order", h.logger)
		return
	}

	if resp == nil || resp.Order.UserID != userID {
		writeError(w, http.StatusNotFound, "order not found", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Pay handles PUT /api/orders/{id}/pay requests: the mock payment
// confirmation callback.
func (h *OrderHandler) Pay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	orderID, err := h.orderIDFromPath(strings.TrimSuffix(r.URL.Path, "/pay"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID format", h.logger)
		return
	}

	var req model.PaymentRequest
	if r.Body != nil {
		// An empty or malformed body is tolerated: payment metadata is
		// optional in the mock gateway contract.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	invoice, err := h.payments.MarkPaid(r.Context(), orderID, &req)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, invoice)
}

// Deliver handles PUT /api/orders/{id}/deliver requests (privileged).
func (h *OrderHandler) Deliver(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	orderID, err := h.orderIDFromPath(strings.TrimSuffix(r.URL.Path, "/deliver"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID format", h.logger)
		return
	}

	if err := h.payments.MarkDelivered(r.Context(), orderID); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "delivered"})
}

// Delete handles DELETE /api/orders/{id} requests (privileged). Cancelling a
// paid order restores its stock; delivered orders are refused.
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	orderID, err := h.orderIDFromPath(r.URL.Path)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID format", h.logger)
		return
	}

	if err := h.orders.CancelOrder(r.Context(), orderID); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func (h *OrderHandler) orderIDFromPath(path string) (uuid.UUID, error) {
	idStr := strings.TrimPrefix(path, "/api/orders/")
	return uuid.Parse(idStr)
}
