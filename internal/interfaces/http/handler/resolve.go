package handler

import (
	resolverapp "github.com/evardgh/apdatebookkeeping-REAL/internal/application/resolver"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/partner"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared/valueobject"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ResolveRequest names the entity to find or create. The remaining
// fields only apply when a new entity is created.
type ResolveRequest struct {
	Name      string           `json:"name" binding:"required,max=200"`
	Email     string           `json:"email" binding:"omitempty,email,max=200"`
	Phone     string           `json:"phone" binding:"max=50"`
	Service   string           `json:"service" binding:"max=200"`
	Type      string           `json:"type" binding:"omitempty,oneof=income expense"`
	Nature    string           `json:"nature" binding:"omitempty,oneof=service product"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

// ResolveHandler exposes find-or-create for clients, vendors and items
type ResolveHandler struct {
	BaseHandler
	resolver *resolverapp.Service
}

// NewResolveHandler creates a new ResolveHandler
func NewResolveHandler(resolver *resolverapp.Service) *ResolveHandler {
	return &ResolveHandler{resolver: resolver}
}

// Client resolves a client name
// POST /resolve/clients
func (h *ResolveHandler) Client(c *gin.Context) {
	h.resolve(c, resolverapp.KindClient)
}

// Vendor resolves a vendor name
// POST /resolve/vendors
func (h *ResolveHandler) Vendor(c *gin.Context) {
	h.resolve(c, resolverapp.KindVendor)
}

// Item resolves a catalog item by name and type. Type defaults to expense.
// POST /resolve/items
func (h *ResolveHandler) Item(c *gin.Context) {
	h.resolve(c, resolverapp.KindItem)
}

func (h *ResolveHandler) resolve(c *gin.Context, kind resolverapp.Kind) {
	ownerID, ok := h.owner(c)
	if !ok {
		return
	}
	var req ResolveRequest
	if !h.bindJSON(c, &req) {
		return
	}

	extra := resolverapp.Extra{
		Contact:   partner.Contact{Email: req.Email, Phone: req.Phone},
		Service:   req.Service,
		ItemType:  valueobject.TransactionType(req.Type),
		Nature:    valueobject.Nature(req.Nature),
		UnitPrice: req.UnitPrice,
	}
	if kind == resolverapp.KindItem {
		if extra.ItemType == "" {
			extra.ItemType = valueobject.TransactionTypeExpense
		}
		if extra.Nature == "" {
			extra.Nature = valueobject.NatureService
		}
	}

	res, err := h.resolver.Resolve(c.Request.Context(), kind, ownerID, req.Name, extra)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if res.Created {
		h.Created(c, res)
		return
	}
	h.Success(c, res)
}
