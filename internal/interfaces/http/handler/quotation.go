package handler

import (
	documentapp "github.com/evardgh/apdatebookkeeping-REAL/internal/application/document"
	"github.com/gin-gonic/gin"
)

// QuotationHandler handles quotations and invoices
type QuotationHandler struct {
	BaseHandler
	quotationService *documentapp.QuotationService
}

// NewQuotationHandler creates a new QuotationHandler
func NewQuotationHandler(quotationService *documentapp.QuotationService) *QuotationHandler {
	return &QuotationHandler{quotationService: quotationService}
}

// ComputeTotals prices a list of lines without storing anything
// POST /quotations/totals
func (h *QuotationHandler) ComputeTotals(c *gin.Context) {
	var req documentapp.ComputeTotalsRequest
	if !h.bindJSON(c, &req) {
		return
	}
	totals, err := h.quotationService.ComputeTotals(req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, totals)
}

// Create creates a draft quotation
// POST /quotations
func (h *QuotationHandler) Create(c *gin.Context) {
	ownerID, ok := h.owner(c)
	if !ok {
		return
	}
	var req documentapp.CreateQuotationRequest
	if !h.bindJSON(c, &req) {
		return
	}
	q, err := h.quotationService.Create(c.Request.Context(), ownerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, q)
}

// GetByID returns a quotation
// GET /quotations/:id
func (h *QuotationHandler) GetByID(c *gin.Context) {
	ownerID, ok := h.owner(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "quotation")
	if !ok {
		return
	}
	q, err := h.quotationService.GetByID(c.Request.Context(), ownerID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, q)
}

// List lists quotations
// GET /quotations
func (h *QuotationHandler) List(c *gin.Context) {
	ownerID, ok := h.owner(c)
	if !ok {
		return
	}
	var filter documentapp.QuotationListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	quotations, total, err := h.quotationService.List(c.Request.Context(), ownerID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, quotations, total, filter.Page, filter.PageSize)
}

// Update revises a quotation and recomputes its totals
// PUT /quotations/:id
func (h *QuotationHandler) Update(c *gin.Context) {
	ownerID, ok := h.owner(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "quotation")
	if !ok {
		return
	}
	var req documentapp.UpdateQuotationRequest
	if !h.bindJSON(c, &req) {
		return
	}
	q, err := h.quotationService.Update(c.Request.Context(), ownerID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, q)
}

// ChangeStatus moves a quotation to another status
// PUT /quotations/:id/status
func (h *QuotationHandler) ChangeStatus(c *gin.Context) {
	ownerID, ok := h.owner(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "quotation")
	if !ok {
		return
	}
	var req documentapp.ChangeStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	q, err := h.quotationService.ChangeStatus(c.Request.Context(), ownerID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, q)
}

// Delete removes a quotation. Invoices converted from it keep their link.
// DELETE /quotations/:id
func (h *QuotationHandler) Delete(c *gin.Context) {
	ownerID, ok := h.owner(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "quotation")
	if !ok {
		return
	}
	if err := h.quotationService.Delete(c.Request.Context(), ownerID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Convert issues an invoice from a quotation
// POST /quotations/:id/convert
func (h *QuotationHandler) Convert(c *gin.Context) {
	ownerID, ok := h.owner(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "quotation")
	if !ok {
		return
	}
	conversion, err := h.quotationService.ConvertToTransaction(c.Request.Context(), ownerID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, conversion)
}

// CreateInvoice issues an invoice from scratch
// POST /invoices
func (h *QuotationHandler) CreateInvoice(c *gin.Context) {
	ownerID, ok := h.owner(c)
	if !ok {
		return
	}
	var req documentapp.CreateInvoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}
	txn, err := h.quotationService.CreateInvoice(c.Request.Context(), ownerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, txn)
}
