package handler

import (
	businessapp "github.com/evardgh/apdatebookkeeping-REAL/internal/application/business"
	"github.com/gin-gonic/gin"
)

// BusinessHandler handles businesses, onboarding and owner settings
type BusinessHandler struct {
	BaseHandler
	businessService *businessapp.Service
}

// NewBusinessHandler creates a new BusinessHandler
func NewBusinessHandler(businessService *businessapp.Service) *BusinessHandler {
	return &BusinessHandler{businessService: businessService}
}

// Onboarding reports whether the owner still has to create a business
// GET /onboarding
func (h *BusinessHandler) Onboarding(c *gin.Context) {
	ownerID, ok := h.owner(c)
	if !ok {
		return
	}
	resp, err := h.businessService.Onboarding(c.Request.Context(), ownerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Create creates a business
// POST /businesses
func (h *BusinessHandler) Create(c *gin.Context) {
	ownerID, ok := h.owner(c)
	if !ok {
		return
	}
	var req businessapp.BusinessRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.businessService.Create(c.Request.Context(), ownerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List lists the owner's businesses
// GET /businesses
func (h *BusinessHandler) List(c *gin.Context) {
	ownerID, ok := h.owner(c)
	if !ok {
		return
	}
	resp, err := h.businessService.List(c.Request.Context(), ownerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetByID returns one business
// GET /businesses/:id
func (h *BusinessHandler) GetByID(c *gin.Context) {
	ownerID, ok := h.owner(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "business")
	if !ok {
		return
	}
	resp, err := h.businessService.GetByID(c.Request.Context(), ownerID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update replaces a business profile
// PUT /businesses/:id
func (h *BusinessHandler) Update(c *gin.Context) {
	ownerID, ok := h.owner(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "business")
	if !ok {
		return
	}
	var req businessapp.BusinessRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.businessService.Update(c.Request.Context(), ownerID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetSettings returns theme and PIN state
// GET /settings
func (h *BusinessHandler) GetSettings(c *gin.Context) {
	ownerID, ok := h.owner(c)
	if !ok {
		return
	}
	resp, err := h.businessService.GetSettings(c.Request.Context(), ownerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// SetTheme switches between light and dark
// PUT /settings/theme
func (h *BusinessHandler) SetTheme(c *gin.Context) {
	ownerID, ok := h.owner(c)
	if !ok {
		return
	}
	var req businessapp.SetThemeRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.businessService.SetTheme(c.Request.Context(), ownerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// EnablePIN sets the app lock PIN
// POST /settings/pin
func (h *BusinessHandler) EnablePIN(c *gin.Context) {
	ownerID, ok := h.owner(c)
	if !ok {
		return
	}
	var req businessapp.PINRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.businessService.EnablePIN(c.Request.Context(), ownerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// DisablePIN removes the app lock PIN
// DELETE /settings/pin
func (h *BusinessHandler) DisablePIN(c *gin.Context) {
	ownerID, ok := h.owner(c)
	if !ok {
		return
	}
	resp, err := h.businessService.DisablePIN(c.Request.Context(), ownerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// VerifyPIN checks a PIN against the stored hash
// POST /settings/pin/verify
func (h *BusinessHandler) VerifyPIN(c *gin.Context) {
	ownerID, ok := h.owner(c)
	if !ok {
		return
	}
	var req businessapp.PINRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.businessService.VerifyPIN(c.Request.Context(), ownerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
