package handler

import (
	catalogapp "github.com/evardgh/apdatebookkeeping-REAL/internal/application/catalog"
	"github.com/gin-gonic/gin"
)

// CatalogHandler handles items and categories
type CatalogHandler struct {
	BaseHandler
	catalogService *catalogapp.Service
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalogService *catalogapp.Service) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// ListItems lists catalog items, optionally of one type
// GET /items
func (h *CatalogHandler) ListItems(c *gin.Context) {
	ownerID, ok := h.owner(c)
	if !ok {
		return
	}
	var filter catalogapp.ItemListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	items, err := h.catalogService.ListItems(c.Request.Context(), ownerID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// CreateCategory creates a category
// POST /categories
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	ownerID, ok := h.owner(c)
	if !ok {
		return
	}
	var req catalogapp.CreateCategoryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	category, err := h.catalogService.CreateCategory(c.Request.Context(), ownerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, category)
}

// ListCategories lists categories, optionally of one type
// GET /categories
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	ownerID, ok := h.owner(c)
	if !ok {
		return
	}
	categories, err := h.catalogService.ListCategories(c.Request.Context(), ownerID, c.Query("type"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{
		"categories":    categories,
		"expense_types": h.catalogService.ExpenseTypes(),
	})
}
