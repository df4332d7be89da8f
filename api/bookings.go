package api

import (
	"net/http"
	"strconv"
	"time"

	"bistrobook/internal/domain"
	"bistrobook/internal/service/booking"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type BookingHandler struct {
	service booking.BookingUseCase
	log     *logrus.Logger
}

type createBookingRequest struct {
	TableID     int64     `json:"table_id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	BookingTime time.Time `json:"booking_time"`
	Guests      int       `json:"guests"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type bookingResponse struct {
	ID          int64  `json:"id"`
	CustomerID  int64  `json:"customer_id"`
	TableID     int64  `json:"table_id"`
	BookingTime string `json:"booking_time"`
	Guests      int    `json:"guests"`
	Status      string `json:"status"`
}

func NewBookingHandler(service booking.BookingUseCase, log *logrus.Logger) *BookingHandler {
	return &BookingHandler{service: service, log: log}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.GET("/:id", h.get)
	router.PATCH("/:id/status", h.updateStatus)
}

func (h *BookingHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, h.log, domain.Validationf("invalid booking id"))
		return
	}

	found, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(found))
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, domain.Validationf("invalid request body: %v", err))
		return
	}

	created, err := h.service.PlaceBooking(c.Request.Context(), booking.PlaceBookingInput{
		TableID:     req.TableID,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Phone:       req.Phone,
		BookingTime: req.BookingTime,
		Guests:      req.Guests,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, toBookingResponse(created))
}

func (h *BookingHandler) updateStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, h.log, domain.Validationf("invalid booking id"))
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

	c.JSON(http.StatusOK, toBookingResponse(updated))
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	return bookingResponse{
		ID:          b.ID,
		CustomerID:  b.CustomerID,
		TableID:     b.TableID,
		BookingTime: b.BookingTime.Format(time.RFC3339),
		Guests:      b.Guests,
		Status:      string(b.Status),
	}
}
