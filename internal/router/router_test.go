package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/handler"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func newTestRouter() http.Handler {
	logger := zerolog.Nop()
	return New(
		handler.NewProductHandler(nil, logger),
		handler.NewCartHandler(nil, logger),
		handler.NewOrderHandler(nil, nil, logger),
		"admin-key",
		logger,
	)
}

func TestRouter_Health(t *testing.T) {
	r := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "healthy"}`, rec.Body.String())
}

func TestRouter_UnknownPath(t *testing.T) {
	r := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/nothing", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_Preflight(t *testing.T) {
	r := newTestRouter()

	req := httptest.NewRequest(http.MethodOptions, "/api/orders", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_PrivilegedRoutesRequireAPIKey(t *testing.T) {
	r := newTestRouter()
	orderID := uuid.New().String()

	tests := []struct {
		name   string
		method string
		path   string
	}{
		{
			name:   "Deliver",
			method: http.MethodPut,
			path:   "/api/orders/" + orderID + "/deliver",
		},
		{
			name:   "Delete",
			method: http.MethodDelete,
			path:   "/api/orders/" + orderID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRouter_MalformedUserHeaderRejected(t *testing.T) {
	r := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set("X-User-ID", "not-a-uuid")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
