package handler

import (
	partnerapp "github.com/evardgh/apdatebookkeeping-REAL/internal/application/partner"
	"github.com/gin-gonic/gin"
)

// ClientHandler handles client endpoints
type ClientHandler struct {
	BaseHandler
	clientService *partnerapp.ClientService
}

// NewClientHandler creates a new ClientHandler
func NewClientHandler(clientService *partnerapp.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// Create creates a client
// POST /clients
func (h *ClientHandler) Create(c *gin.Context) {
	ownerID, ok := h.owner(c)
	if !ok {
		return
	}
	var req partnerapp.CreateClientRequest
	if !h.bindJSON(c, &req) {
		return
	}
	client, err := h.clientService.Create(c.Request.Context(), ownerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, client)
}

// GetByID returns a client
// GET /clients/:id
func (h *ClientHandler) GetByID(c *gin.Context) {
	ownerID, ok := h.owner(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "client")
	if !ok {
		return
	}
	client, err := h.clientService.GetByID(c.Request.Context(), ownerID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, client)
}

// List lists clients with paging and name search
// GET /clients
func (h *ClientHandler) List(c *gin.Context) {
	ownerID, ok := h.owner(c)
	if !ok {
		return
	}
	var filter partnerapp.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	clients, total, err := h.clientService.List(c.Request.Context(), ownerID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, clients, total, filter.Page, filter.PageSize)
}

// Update changes a client
// PUT /clients/:id
func (h *ClientHandler) Update(c *gin.Context) {
	ownerID, ok := h.owner(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "client")
	if !ok {
		return
	}
	var req partnerapp.UpdateClientRequest
	if !h.bindJSON(c, &req) {
		return
	}
	client, err := h.clientService.Update(c.Request.Context(), ownerID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, client)
}

// Delete removes a client
// DELETE /clients/:id
func (h *ClientHandler) Delete(c *gin.Context) {
	ownerID, ok := h.owner(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "client")
	if !ok {
		return
	}
	if err := h.clientService.Delete(c.Request.Context(), ownerID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// VendorHandler handles vendor endpoints
type VendorHandler struct {
	BaseHandler
	vendorService *partnerapp.VendorService
}

// NewVendorHandler creates a new VendorHandler
func NewVendorHandler(vendorService *partnerapp.VendorService) *VendorHandler {
	return &VendorHandler{vendorService: vendorService}
}

// Create creates a vendor
// POST /vendors
func (h *VendorHandler) Create(c *gin.Context) {
	ownerID, ok := h.owner(c)
	if !ok {
		return
	}
	var req partnerapp.CreateVendorRequest
	if !h.bindJSON(c, &req) {
		return
	}
	vendor, err := h.vendorService.Create(c.Request.Context(), ownerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, vendor)
}

// GetByID returns a vendor
// GET /vendors/:id
func (h *VendorHandler) GetByID(c *gin.Context) {
	ownerID, ok := h.owner(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "vendor")
	if !ok {
		return
	}
	vendor, err := h.vendorService.GetByID(c.Request.Context(), ownerID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, vendor)
}

// List lists vendors
// GET /vendors
func (h *VendorHandler) List(c *gin.Context) {
	ownerID, ok := h.owner(c)
	if !ok {
		return
	}
	var filter partnerapp.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	vendors, total, err := h.vendorService.List(c.Request.Context(), ownerID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, vendors, total, filter.Page, filter.PageSize)
}

// Update changes a vendor
// PUT /vendors/:id
func (h *VendorHandler) Update(c *gin.Context) {
	ownerID, ok := h.owner(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "vendor")
	if !ok {
		return
	}
	var req partnerapp.UpdateVendorRequest
	if !h.bindJSON(c, &req) {
		return
	}
	vendor, err := h.vendorService.Update(c.Request.Context(), ownerID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, vendor)
}

// Delete removes a vendor
// DELETE /vendors/:id
func (h *VendorHandler) Delete(c *gin.Context) {
	ownerID, ok := h.owner(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "vendor")
	if !ok {
		return
	}
	if err := h.vendorService.Delete(c.Request.Context(), ownerID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
