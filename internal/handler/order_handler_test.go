package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/middleware"
	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderService is a mock implementation of service.OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) PlaceOrder(ctx context.Context, userID uuid.UUID, req *model.OrderRequest) (*model.OrderResponse, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderResponse), args.Error(1)
}

func (m *MockOrderService) GetByID(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderResponse), args.Error(1)
}

func (m *MockOrderService) CancelOrder(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockPaymentService is a mock implementation of service.PaymentService.
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) MarkPaid(ctx context.Context, orderID uuid.UUID, req *model.PaymentRequest) (*model.Invoice, error) {
	args := m.Called(ctx, orderID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invoice), args.Error(1)
}

func (m *MockPaymentService) MarkDelivered(ctx context.Context, orderID uuid.UUID) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

// serveAs routes the request through the user-context middleware so handlers
// see the same context they would in production.
func serveAs(h http.HandlerFunc, req *http.Request, userID *uuid.UUID) *httptest.ResponseRecorder {
	if userID != nil {
		req.Header.Set("X-User-ID", userID.String())
	}
	rec := httptest.NewRecorder()
	middleware.UserContext(zerolog.Nop())(h).ServeHTTP(rec, req)
	return rec
}

func TestOrderHandler_Create(t *testing.T) {
	logger := zerolog.Nop()
	userID := uuid.New()
	orderID := uuid.New()

	reqBody := `{
		"orderItems": [{"product_id": "P001", "name": "Tote Bag", "price": 50, "quantity": 2}],
		"shippingAddress": {"address": "1 Main St", "city": "Springfield", "postalCode": "12345", "country": "US"},
		"paymentMethod": "card",
		"voucher_code": "WELCOME10"
	}`

	resp := &model.OrderResponse{
		Order: &model.Order{ID: orderID, UserID: userID, TotalPrice: 109},
		Items: []model.OrderItem{{ProductID: "P001", Price: 50, Quantity: 2}},
	}

	orders := new(MockOrderService)
	orders.On("PlaceOrder", mock.Anything, userID, mock.AnythingOfType("*model.OrderRequest")).Return(resp, nil)

	h := NewOrderHandler(orders, new(MockPaymentService), logger)

	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewBufferString(reqBody))
	rec := serveAs(h.Create, req, &userID)

	require.Equal(t, http.StatusCreated, rec.Code)

	var body struct {
		OrderID uuid.UUID    `json:"orderId"`
		Order   *model.Order `json:"order"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, orderID, body.OrderID)
	assert.Equal(t, 109.0, body.Order.TotalPrice)
}

func TestOrderHandler_Create_RequiresAuth(t *testing.T) {
	logger := zerolog.Nop()
	h := NewOrderHandler(new(MockOrderService), new(MockPaymentService), logger)

	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewBufferString(`{}`))
	rec := serveAs(h.Create, req, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOrderHandler_Create_DomainErrors(t *testing.T) {
	logger := zerolog.Nop()
	userID := uuid.New()

	tests := []struct {
		name         string
		err          error
		expectedCode int
	}{
		{
			name:         "Insufficient stock",
			err:          model.ErrInsufficientStock,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Voucher exhausted",
			err:          model.ErrVoucherExhausted,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Empty order",
			err:          model.ErrEmptyOrder,
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders := new(MockOrderService)
			orders.On("PlaceOrder", mock.Anything, userID, mock.Anything).Return(nil, tt.err)

			h := NewOrderHandler(orders, new(MockPaymentService), logger)

			req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewBufferString(`{"orderItems":[]}`))
			rec := serveAs(h.Create, req, &userID)

			assert.Equal(t, tt.expectedCode, rec.Code)
		})
	}
}

func TestOrderHandler_GetByID(t *testing.T) {
	logger := zerolog.Nop()
	userID := uuid.New()
	orderID := uuid.New()

	resp := &model.OrderResponse{
		Order: &model.Order{ID: orderID, UserID: userID, TotalPrice: 109},
	}

	orders := new(MockOrderService)
	orders.On("GetByID", mock.Anything, orderID).Return(resp, nil)

	h := NewOrderHandler(orders, new(MockPaymentService), logger)

	req := httptest.NewRequest(http.MethodGet, "/api/orders/"+orderID.String(), nil)
	rec := serveAs(h.GetByID, req, &userID)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOrderHandler_GetByID_OtherUsersOrderHidden(t *testing.T) {
	logger := zerolog.Nop()
	owner := uuid.New()
	requester := uuid.New()
	orderID := uuid.New()

	resp := &model.OrderResponse{
		Order: &model.Order{ID: orderID, UserID: owner},
	}

	orders := new(MockOrderService)
	orders.On("GetByID", mock.Anything, orderID).Return(resp, nil)

	h := NewOrderHandler(orders, new(MockPaymentService), logger)

	req := httptest.NewRequest(http.MethodGet, "/api/orders/"+orderID.String(), nil)
	rec := serveAs(h.GetByID, req, &requester)

	// Existence is not revealed to other users.
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOrderHandler_GetByID_InvalidID(t *testing.T) {
	logger := zerolog.Nop()
	userID := uuid.New()

	h := NewOrderHandler(new(MockOrderService), new(MockPaymentService), logger)

	req := httptest.NewRequest(http.MethodGet, "/api/orders/not-a-uuid", nil)
	rec := serveAs(h.GetByID, req, &userID)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrderHandler_Pay(t *testing.T) {
	logger := zerolog.Nop()
	orderID := uuid.New()

	invoice := &model.Invoice{
		ID:            uuid.New(),
		OrderID:       &orderID,
		InvoiceNumber: "INV-20260828-CAFEF00D",
		Total:         109,
	}

	payments := new(MockPaymentService)
	payments.On("MarkPaid", mock.Anything, orderID, mock.AnythingOfType("*model.PaymentRequest")).Return(invoice, nil)

	h := NewOrderHandler(new(MockOrderService), payments, logger)

	body := `{"payment_status": "COMPLETED", "payment_email": "buyer@example.com"}`
	req := httptest.NewRequest(http.MethodPut, "/api/orders/"+orderID.String()+"/pay", bytes.NewBufferString(body))
	rec := serveAs(h.Pay, req, nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var got model.Invoice
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, invoice.InvoiceNumber, got.InvoiceNumber)
}

func TestOrderHandler_Pay_OrderNotFound(t *testing.T) {
	logger := zerolog.Nop()
	orderID := uuid.New()

	payments := new(MockPaymentService)
	payments.On("MarkPaid", mock.Anything, orderID, mock.Anything).Return(nil, model.ErrOrderNotFound)

	h := NewOrderHandler(new(MockOrderService), payments, logger)

	req := httptest.NewRequest(http.MethodPut, "/api/orders/"+orderID.String()+"/pay", nil)
	rec := serveAs(h.Pay, req, nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOrderHandler_Deliver(t *testing.T) {
	logger := zerolog.Nop()
	orderID := uuid.New()

	payments := new(MockPaymentService)
	payments.On("MarkDelivered", mock.Anything, orderID).Return(nil)

	h := NewOrderHandler(new(MockOrderService), payments, logger)

	req := httptest.NewRequest(http.MethodPut, "/api/orders/"+orderID.String()+"/deliver", nil)
	rec := serveAs(h.Deliver, req, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOrderHandler_Delete(t *testing.T) {
	logger := zerolog.Nop()
	orderID := uuid.New()

	orders := new(MockOrderService)
	orders.On("CancelOrder", mock.Anything, orderID).Return(nil)

	h := NewOrderHandler(orders, new(MockPaymentService), logger)

	req := httptest.NewRequest(http.MethodDelete, "/api/orders/"+orderID.String(), nil)
	rec := serveAs(h.Delete, req, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOrderHandler_Delete_DeliveredRefused(t *testing.T) {
	logger := zerolog.Nop()
	orderID := uuid.New()

	orders := new(MockOrderService)
	orders.On("CancelOrder", mock.Anything, orderID).Return(model.ErrOrderDelivered)

	h := NewOrderHandler(orders, new(MockPaymentService), logger)

	req := httptest.NewRequest(http.MethodDelete, "/api/orders/"+orderID.String(), nil)
	rec := serveAs(h.Delete, req, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body model.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, model.ErrCodeOrderDelivered, body.Error)
}
