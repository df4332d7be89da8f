package api

import (
	"net/http"

	"bistrobook/internal/domain"
	"bistrobook/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type TableHandler struct {
	repo repository.TableRepository
	log  *logrus.Logger
}

type createTableRequest struct {
	TableNumber int    `json:"table_number"`
	Seats       int    `json:"seats"`
	Available   *bool  `json:"available"`
	Locale      string `json:"locale"`
	Location    string `json:"location"`
}

type tableResponse struct {
	ID          int64  `json:"id"`
	TableNumber int    `json:"table_number"`
	Seats       int    `json:"seats"`
	Available   bool   `json:"available"`
	Location    string `json:"location,omitempty"`
}

func NewTableHandler(repo repository.TableRepository, log *logrus.Logger) *TableHandler {
	return &TableHandler{repo: repo, log: log}
}

func (h *TableHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
}

func (h *TableHandler) RegisterAdmin(router *gin.RouterGroup) {
	router.POST("/", h.create)
}

func (h *TableHandler) list(c *gin.Context) {
	locale := c.Query("locale")
	if locale == "" {
		locale = "sv"
	}
	tables, err := h.repo.List(c.Request.Context(), locale)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	resp := make([]tableResponse, len(tables))
	for i, t := range tables {
		resp[i] = tableResponse{
			ID:          t.ID,
			TableNumber: t.TableNumber,
			Seats:       t.Seats,
			Available:   t.Available,
			Location:    t.Location,
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TableHandler) create(c *gin.Context) {
	var req createTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, domain.Validationf("invalid request body: %v", err))
		return
	}
	if req.TableNumber <= 0 || req.Seats <= 0 {
		respondError(c, h.log, domain.Validationf("table_number and seats must be positive"))
		return
	}

	available := true
	if req.Available != nil {
		available = *req.Available
	}
	locale := req.Locale
	if locale == "" {
		locale = "sv"
	}
	table := &domain.Table{
		TableNumber: req.TableNumber,
		Seats:       req.Seats,
		Available:   available,
		Location:    req.Location,
	}
	if err := h.repo.Create(c.Request.Context(), table, locale); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, tableResponse{
		ID:          table.ID,
		TableNumber: table.TableNumber,
		Seats:       table.Seats,
		Available:   table.Available,
		Location:    table.Location,
	})
}
