package api

import (
	"net/http"
	"strconv"
	"time"

	"bistrobook/internal/auth"
	"bistrobook/internal/domain"
	"bistrobook/internal/repository"
	"bistrobook/internal/service/order"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type OrderHandler struct {
	service order.OrderUseCase
	log     *logrus.Logger
}

type createOrderRequest struct {
	FirstName string                 `json:"first_name"`
	LastName  string                 `json:"last_name"`
	Email     string                 `json:"email"`
	Phone     string                 `json:"phone"`
	BookingID *int64                 `json:"booking_id"`
	Items     []order.OrderItemInput `json:"items"`
}

type orderLineResponse struct {
	MenuItemID   int64  `json:"menu_item_id"`
	Quantity     int    `json:"quantity"`
	PriceAtOrder string `json:"price_at_order"`
}

type orderResponse struct {
	ID         int64               `json:"id"`
	CustomerID int64               `json:"customer_id"`
	BookingID  *int64              `json:"booking_id,omitempty"`
	Status     string              `json:"status"`
	Items      []orderLineResponse `json:"items"`
	Total      string              `json:"total,omitempty"`
	CreatedAt  string              `json:"created_at"`
}

func NewOrderHandler(service order.OrderUseCase, log *logrus.Logger) *OrderHandler {
	return &OrderHandler{service: service, log: log}
}

func (h *OrderHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.GET("/", h.list)
	router.GET("/:id", h.get)
	router.PATCH("/:id/status", h.updateStatus)
	router.DELETE("/:id", h.remove)
}

func (h *OrderHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, h.log, domain.Validationf("invalid order id"))
		return
	}

	found, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	resp := toOrderResponse(found)
	resp.Total = found.Total().StringFixed(2)
	c.JSON(http.StatusOK, resp)
}

func (h *OrderHandler) create(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, domain.Validationf("invalid request body: %v", err))
		return
	}

	placed, err := h.service.PlaceOrder(c.Request.Context(), order.PlaceOrderInput{
		UserID:    auth.CallerUserID(c),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		BookingID: req.BookingID,
		Items:     req.Items,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	resp := toOrderResponse(&placed.Order)
	resp.Total = placed.Total.StringFixed(2)
	c.JSON(http.StatusCreated, resp)
}

func (h *OrderHandler) list(c *gin.Context) {
	var filter repository.OrderFilter
	if v := c.Query("customer_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			respondError(c, h.log, domain.Validationf("invalid customer_id"))
			return
		}
		filter.CustomerID = &id
	}
	if v := c.Query("status"); v != "" {
		status, err := domain.ParseStatus(v)
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		filter.Status = &status
	}

	orders, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	resp := make([]orderResponse, len(orders))
	for i := range orders {
		r := toOrderResponse(&orders[i])
		r.Total = orders[i].Total().StringFixed(2)
		resp[i] = r
	}
	c.JSON(http.StatusOK, resp)
}

func (h *OrderHandler) updateStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, h.log, domain.Validationf("invalid order id"))
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Status == "" {
		respondError(c, h.log, domain.Validationf("status is required"))
		return
	}

	updated, err := h.service.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(updated))
}

func (h *OrderHandler) remove(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, h.log, domain.Validationf("invalid order id"))
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "order_id": id})
}

func toOrderResponse(o *domain.Order) orderResponse {
	lines := make([]orderLineResponse, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = orderLineResponse{
			MenuItemID:   l.MenuItemID,
			Quantity:     l.Quantity,
			PriceAtOrder: l.PriceAtOrder.StringFixed(2),
		}
	}
	return orderResponse{
		ID:         o.ID,
		CustomerID: o.CustomerID,
		BookingID:  o.BookingID,
		Status:     string(o.Status),
		Items:      lines,
		CreatedAt:  o.CreatedAt.Format(time.RFC3339),
	}
}
