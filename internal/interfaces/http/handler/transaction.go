package handler

import (
	"errors"
	"net/http"

	financeapp "github.com/evardgh/apdatebookkeeping-REAL/internal/application/finance"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ReceiptFormField is the multipart field carrying the receipt image
const ReceiptFormField = "receipt"

// TransactionHandler handles transactions, payments, orders and receipts
type TransactionHandler struct {
	BaseHandler
	transactionService *financeapp.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService *financeapp.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// Create records a transaction
// POST /transactions
func (h *TransactionHandler) Create(c *gin.Context) {
	ownerID, ok := h.owner(c)
	if !ok {
		return
	}
	var req financeapp.CreateTransactionRequest
	if !h.bindJSON(c, &req) {
		return
	}
	txn, err := h.transactionService.Create(c.Request.Context(), ownerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, txn)
}

// GetByID returns a transaction
// GET /transactions/:id
func (h *TransactionHandler) GetByID(c *gin.Context) {
	ownerID, ok := h.owner(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "transaction")
	if !ok {
		return
	}
	txn, err := h.transactionService.GetByID(c.Request.Context(), ownerID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, txn)
}

// List lists transactions
// GET /transactions
func (h *TransactionHandler) List(c *gin.Context) {
	ownerID, ok := h.owner(c)
	if !ok {
		return
	}
	var filter financeapp.TransactionListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	txns, total, err := h.transactionService.List(c.Request.Context(), ownerID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, txns, total, filter.Page, filter.PageSize)
}

// ListOverdue lists unsettled transactions past their due date
// GET /transactions/overdue
func (h *TransactionHandler) ListOverdue(c *gin.Context) {
	ownerID, ok := h.owner(c)
	if !ok {
		return
	}
	var filter financeapp.TransactionListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	txns, total, err := h.transactionService.ListOverdue(c.Request.Context(), ownerID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, txns, total, filter.Page, filter.PageSize)
}

// Update changes descriptive fields of a transaction
// PUT /transactions/:id
func (h *TransactionHandler) Update(c *gin.Context) {
	ownerID, ok := h.owner(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "transaction")
	if !ok {
		return
	}
	var req financeapp.UpdateTransactionRequest
	if !h.bindJSON(c, &req) {
		return
	}
	txn, err := h.transactionService.Update(c.Request.Context(), ownerID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, txn)
}

// Delete removes a transaction
// DELETE /transactions/:id
func (h *TransactionHandler) Delete(c *gin.Context) {
	ownerID, ok := h.owner(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "transaction")
	if !ok {
		return
	}
	if err := h.transactionService.Delete(c.Request.Context(), ownerID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ApplyPayment records money received
// POST /transactions/:id/payments
func (h *TransactionHandler) ApplyPayment(c *gin.Context) {
	ownerID, ok := h.owner(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "transaction")
	if !ok {
		return
	}
	var req financeapp.ApplyPaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	txn, err := h.transactionService.ApplyPayment(c.Request.Context(), ownerID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, txn)
}

// Void cancels an unsettled transaction
// POST /transactions/:id/void
func (h *TransactionHandler) Void(c *gin.Context) {
	ownerID, ok := h.owner(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "transaction")
	if !ok {
		return
	}
	txn, err := h.transactionService.Void(c.Request.Context(), ownerID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, txn)
}

// UpdateOrder changes order fulfillment fields
// PUT /transactions/:id/order
func (h *TransactionHandler) UpdateOrder(c *gin.Context) {
	ownerID, ok := h.owner(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "transaction")
	if !ok {
		return
	}
	var req financeapp.UpdateOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}
	txn, err := h.transactionService.UpdateOrder(c.Request.Context(), ownerID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, txn)
}

// UploadReceipt attaches a receipt image sent as multipart field "receipt"
// POST /transactions/:id/receipt
func (h *TransactionHandler) UploadReceipt(c *gin.Context) {
	ownerID, ok := h.owner(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "transaction")
	if !ok {
		return
	}

	header, err := c.FormFile(ReceiptFormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.Error(c, dto.ErrCodeRequestTooLarge, "Receipt exceeds maximum allowed size")
			return
		}
		h.BadRequest(c, "Missing receipt file")
		return
	}
	file, err := header.Open()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer file.Close()

	receipt, err := h.transactionService.UploadReceipt(c.Request.Context(), ownerID, id, file)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, receipt)
}

// ReceiptURL returns a presigned download link
// GET /transactions/:id/receipt
func (h *TransactionHandler) ReceiptURL(c *gin.Context) {
	ownerID, ok := h.owner(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "transaction")
	if !ok {
		return
	}
	link, err := h.transactionService.ReceiptURL(c.Request.Context(), ownerID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, link)
}
