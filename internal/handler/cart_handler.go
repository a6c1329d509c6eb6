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

// cartCookieName carries the guest cart id between requests.
const cartCookieName = "cart_id"

// CartHandler handles cart HTTP requests for both users and guests.
type CartHandler struct {
	service service.CartService
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(service service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

// Get handles GET /api/cart requests.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	cart, err := h.resolveCart(w, r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to resolve cart", h.logger)
		return
	}

	priced, err := h.service.GetPricedCart(r.Context(), cart.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to price cart", h.logger)
		return
	}
	priced.UserID = cart.UserID

	writeJSON(w, http.StatusOK, priced)
}

// AddItem handles POST /api/cart/items requests.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	var req model.CartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	cart, err := h.resolveCart(w, r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to resolve cart", h.logger)
		return
	}

	if err := h.service.AddItem(r.Context(), cart.ID, &req); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "added"})
}

// UpdateItem handles PUT /api/cart/items/{productId} requests. A quantity of
// zero removes the line.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	productID := strings.TrimPrefix(r.URL.Path, "/api/cart/items/")
	if productID == "" {
		writeError(w, http.StatusBadRequest, "product ID is required", h.logger)
		return
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	cart, err := h.resolveCart(w, r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to resolve cart", h.logger)
		return
	}

	if err := h.service.SetItemQuantity(r.Context(), cart.ID, productID, req.Quantity); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// RemoveItem handles DELETE /api/cart/items/{productId} requests.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	productID := strings.TrimPrefix(r.URL.Path, "/api/cart/items/")
	if productID == "" {
		writeError(w, http.StatusBadRequest, "product ID is required", h.logger)
		return
	}

	cart, err := h.resolveCart(w, r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to resolve cart", h.logger)
		return
	}

	if err := h.service.RemoveItem(r.Context(), cart.ID, productID); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// Merge handles POST /api/cart/merge requests, called once after login to
// fold the guest cart named by the cookie into the user's cart.
func (h *CartHandler) Merge(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required", h.logger)
		return
	}

	guestCartID := h.guestCartID(r)
	if guestCartID == nil {
		writeError(w, http.StatusBadRequest, "no guest cart to merge", h.logger)
		return
	}

	cart, err := h.service.MergeGuestIntoUser(r.Context(), *guestCartID, userID)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	// The guest cart is gone; drop the cookie.
	http.SetCookie(w, &http.Cookie{
		Name:     cartCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	writeJSON(w, http.StatusOK, cart)
}

// resolveCart finds the caller's cart, minting a guest cart (and cookie)
// when needed.
func (h *CartHandler) resolveCart(w http.ResponseWriter, r *http.Request) (*model.Cart, error) {
	var userID *uuid.UUID
	if id, ok := middleware.UserID(r.Context()); ok {
		userID = &id
	}

	guestCartID := h.guestCartID(r)

	cart, err := h.service.Resolve(r.Context(), userID, guestCartID)
	if err != nil {
		return nil, err
	}

	if cart.IsGuest() && (guestCartID == nil || *guestCartID != cart.ID) {
		http.SetCookie(w, &http.Cookie{
			Name:     cartCookieName,
			Value:    cart.ID.String(),
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	return cart, nil
}

func (h *CartHandler) guestCartID(r *http.Request) *uuid.UUID {
	cookie, err := r.Cookie(cartCookieName)
	if err != nil {
		return nil
	}

	id, err := uuid.Parse(cookie.Value)
	if err != nil {
		return nil
	}

	return &id
}
