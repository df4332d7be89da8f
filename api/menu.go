package api

import (
	"net/http"
	"strconv"

	"bistrobook/internal/domain"
	"bistrobook/internal/repository"
	"bistrobook/internal/service/menu"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type MenuHandler struct {
	service menu.MenuUseCase
	log     *logrus.Logger
}

type categoryRequest struct {
	Locale      string `json:"locale"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type itemRequest struct {
	CategoryID  int64  `json:"category_id"`
	Price       string `json:"price"`
	Available   *bool  `json:"available"`
	Locale      string `json:"locale"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type menuItemResponse struct {
	ID          int64  `json:"id"`
	CategoryID  int64  `json:"category_id"`
	Price       string `json:"price"`
	Available   bool   `json:"available"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type menuCategoryResponse struct {
	ID          int64              `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Items       []menuItemResponse `json:"items"`
}

func NewMenuHandler(service menu.MenuUseCase, log *logrus.Logger) *MenuHandler {
	return &MenuHandler{service: service, log: log}
}

// Register wires the public read endpoint; RegisterAdmin wires the CRUD
// surface behind authentication.
func (h *MenuHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.get)
}

func (h *MenuHandler) RegisterAdmin(router *gin.RouterGroup) {
	router.POST("/categories", h.createCategory)
	router.PUT("/categories/:id", h.updateCategory)
	router.DELETE("/categories/:id", h.deleteCategory)
	router.POST("/items", h.createItem)
	router.PUT("/items/:id", h.updateItem)
	router.DELETE("/items/:id", h.deleteItem)
}

func (h *MenuHandler) get(c *gin.Context) {
	categories, err := h.service.Menu(c.Request.Context(), c.Query("locale"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	resp := make([]menuCategoryResponse, len(categories))
	for i, cat := range categories {
		items := make([]menuItemResponse, len(cat.Items))
		for j, item := range cat.Items {
			items[j] = toItemResponse(&item)
		}
		resp[i] = menuCategoryResponse{
			ID:          cat.ID,
			Name:        cat.Name,
			Description: cat.Description,
			Items:       items,
		}
	}
	c.JSON(http.StatusOK, gin.H{"categories": resp})
}

func (h *MenuHandler) createCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, domain.Validationf("invalid request body: %v", err))
		return
	}

	created, err := h.service.CreateCategory(c.Request.Context(), repository.Translation{
		Locale:      req.Locale,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, menuCategoryResponse{ID: created.ID, Name: created.Name, Description: created.Description})
}

func (h *MenuHandler) updateCategory(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, h.log, domain.Validationf("invalid category id"))
		return
	}

	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, domain.Validationf("invalid request body: %v", err))
		return
	}

	updated, err := h.service.UpdateCategory(c.Request.Context(), id, repository.Translation{
		Locale:      req.Locale,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, menuCategoryResponse{ID: updated.ID, Name: updated.Name, Description: updated.Description})
}

func (h *MenuHandler) deleteCategory(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, h.log, domain.Validationf("invalid category id"))
		return
	}
	if err := h.service.DeleteCategory(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "category_id": id})
}

func (h *MenuHandler) createItem(c *gin.Context) {
	input, err := h.parseItem(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	created, err := h.service.CreateItem(c.Request.Context(), *input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, toItemResponse(created))
}

func (h *MenuHandler) updateItem(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, h.log, domain.Validationf("invalid item id"))
		return
	}

	input, err := h.parseItem(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	updated, err := h.service.UpdateItem(c.Request.Context(), id, *input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toItemResponse(updated))
}

func (h *MenuHandler) deleteItem(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, h.log, domain.Validationf("invalid item id"))
		return
	}
	if err := h.service.DeleteItem(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "item_id": id})
}

func (h *MenuHandler) parseItem(c *gin.Context) (*menu.ItemInput, error) {
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, domain.Validationf("invalid request body: %v", err)
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		return nil, domain.Validationf("invalid price %q", req.Price)
	}
	available := true
	if req.Available != nil {
		available = *req.Available
	}
	return &menu.ItemInput{
		CategoryID:  req.CategoryID,
		Price:       price,
		Available:   available,
		Locale:      req.Locale,
		Name:        req.Name,
		Description: req.Description,
	}, nil
}

func toItemResponse(item *domain.MenuItem) menuItemResponse {
	return menuItemResponse{
		ID:          item.ID,
		CategoryID:  item.CategoryID,
		Price:       item.Price.StringFixed(2),
		Available:   item.Available,
		Name:        item.Name,
		Description: item.Description,
	}
}
