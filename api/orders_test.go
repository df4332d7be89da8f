package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"bistrobook/internal/domain"
	"bistrobook/internal/repository"
	"bistrobook/internal/service/order"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockOrderUseCase is a mock implementation of order.OrderUseCase
type MockOrderUseCase struct {
	mock.Mock
}

func (m *MockOrderUseCase) PlaceOrder(ctx context.Context, input order.PlaceOrderInput) (*order.PlacedOrder, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.PlacedOrder), args.Error(1)
}

func (m *MockOrderUseCase) Get(ctx context.Context, id int64) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderUseCase) List(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderUseCase) UpdateStatus(ctx context.Context, id int64, status string) (*domain.Order, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderUseCase) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func TestOrderHandler_create(t *testing.T) {
	mockService := &MockOrderUseCase{}
	handler := NewOrderHandler(mockService, testLogger())

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	req := createOrderRequest{
		FirstName: "Maria",
		LastName:  "Lindqvist",
		Email:     "maria@example.com",
		Phone:     "0739876543",
		Items:     []order.OrderItemInput{{MenuItemID: 12, Quantity: 2}},
	}
	body, _ := json.Marshal(req)
	c.Request = httptest.NewRequest("POST", "/orders", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	placed := &order.PlacedOrder{
		Order: domain.Order{
			ID:         100,
			CustomerID: 42,
			Status:     domain.StatusPending,
			Lines: []domain.OrderLine{
				{OrderID: 100, MenuItemID: 12, Quantity: 2, PriceAtOrder: decimal.RequireFromString("79.00")},
			},
		},
		Total: decimal.RequireFromString("158.00"),
	}

	mockService.On("PlaceOrder", c.Request.Context(), mock.MatchedBy(func(in order.PlaceOrderInput) bool {
		return in.UserID == nil && in.Email == "maria@example.com" && len(in.Items) == 1
	})).Return(placed, nil)

	handler.create(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response orderResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, int64(100), response.ID)
	assert.Equal(t, "158.00", response.Total)
	assert.Len(t, response.Items, 1)
	assert.Equal(t, "79.00", response.Items[0].PriceAtOrder)

	mockService.AssertExpectations(t)
}

func TestOrderHandler_create_unknownItem(t *testing.T) {
	mockService := &MockOrderUseCase{}
	handler := NewOrderHandler(mockService, testLogger())

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	req := createOrderRequest{
		FirstName: "Maria",
		LastName:  "Lindqvist",
		Email:     "maria@example.com",
		Phone:     "0739876543",
		Items:     []order.OrderItemInput{{MenuItemID: 9999, Quantity: 1}},
	}
	body, _ := json.Marshal(req)
	c.Request = httptest.NewRequest("POST", "/orders", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	mockService.On("PlaceOrder", c.Request.Context(), mock.Anything).
		Return(nil, domain.NotFoundf("menu items not found: 9999"))

	handler.create(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "9999")
}

func TestOrderHandler_get(t *testing.T) {
	mockService := &MockOrderUseCase{}
	handler := NewOrderHandler(mockService, testLogger())

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "100"}}
	c.Request = httptest.NewRequest("GET", "/orders/100", nil)

	found := &domain.Order{
		ID: 100, CustomerID: 42, Status: domain.StatusPending,
		Lines: []domain.OrderLine{{MenuItemID: 12, Quantity: 2, PriceAtOrder: decimal.RequireFromString("79.00")}},
	}
	mockService.On("Get", c.Request.Context(), int64(100)).Return(found, nil)

	handler.get(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response orderResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, int64(100), response.ID)
	assert.Equal(t, "158.00", response.Total)
}

func TestOrderHandler_list_withFilters(t *testing.T) {
	mockService := &MockOrderUseCase{}
	handler := NewOrderHandler(mockService, testLogger())

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Request = httptest.NewRequest("GET", "/orders?customer_id=42&status=pending", nil)

	customerID := int64(42)
	status := domain.StatusPending
	orders := []domain.Order{
		{ID: 100, CustomerID: 42, Status: domain.StatusPending, Lines: []domain.OrderLine{
			{MenuItemID: 12, Quantity: 2, PriceAtOrder: decimal.RequireFromString("79.00")},
		}},
	}
	mockService.On("List", c.Request.Context(), repository.OrderFilter{CustomerID: &customerID, Status: &status}).
		Return(orders, nil)

	handler.list(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response []orderResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Len(t, response, 1)
	assert.Equal(t, "158.00", response[0].Total)

	mockService.AssertExpectations(t)
}

func TestOrderHandler_list_badStatus(t *testing.T) {
	mockService := &MockOrderUseCase{}
	handler := NewOrderHandler(mockService, testLogger())

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Request = httptest.NewRequest("GET", "/orders?status=sideways", nil)

	handler.list(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestOrderHandler_remove(t *testing.T) {
	mockService := &MockOrderUseCase{}
	handler := NewOrderHandler(mockService, testLogger())

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "100"}}
	c.Request = httptest.NewRequest("DELETE", "/orders/100", nil)

	mockService.On("Delete", c.Request.Context(), int64(100)).Return(nil)

	handler.remove(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestOrderHandler_remove_notFound(t *testing.T) {
	mockService := &MockOrderUseCase{}
	handler := NewOrderHandler(mockService, testLogger())

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "101"}}
	c.Request = httptest.NewRequest("DELETE", "/orders/101", nil)

	mockService.On("Delete", c.Request.Context(), int64(101)).Return(domain.NotFoundf("order 101 not found"))

	handler.remove(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
