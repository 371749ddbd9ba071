package handler

import (
	"strconv"

	intakeapp "github.com/evardgh/apdatebookkeeping-REAL/internal/application/intake"
	"github.com/gin-gonic/gin"
)

// IntakeHandler turns parsed voice or text input into records
type IntakeHandler struct {
	BaseHandler
	intakeService *intakeapp.Service
}

// NewIntakeHandler creates a new IntakeHandler
func NewIntakeHandler(intakeService *intakeapp.Service) *IntakeHandler {
	return &IntakeHandler{intakeService: intakeService}
}

// Transaction resolves the named entities of a partial transaction and
// returns the draft. With ?commit=true the draft is recorded as well.
// POST /intake/transactions
func (h *IntakeHandler) Transaction(c *gin.Context) {
	ownerID, ok := h.owner(c)
	if !ok {
		return
	}
	commit, err := strconv.ParseBool(c.DefaultQuery("commit", "false"))
	if err != nil {
		h.BadRequest(c, "commit must be true or false")
		return
	}
	var req intakeapp.PartialTransaction
	if !h.bindJSON(c, &req) {
		return
	}

	if !commit {
		draft, err := h.intakeService.PrepareTransaction(c.Request.Context(), ownerID, req)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, draft)
		return
	}

	resp, err := h.intakeService.SubmitTransaction(c.Request.Context(), ownerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Document resolves the client of a partial quotation or invoice and
// prices its lines
// POST /intake/documents
func (h *IntakeHandler) Document(c *gin.Context) {
	ownerID, ok := h.owner(c)
	if !ok {
		return
	}
	var req intakeapp.PartialDocument
	if !h.bindJSON(c, &req) {
		return
	}
	draft, err := h.intakeService.PrepareDocument(c.Request.Context(), ownerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, draft)
}
