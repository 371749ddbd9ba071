package business

import (
	"time"

	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/business"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BusinessRequest represents a request to create or update a business.
// An update replaces the whole profile.
type BusinessRequest struct {
	Name             string          `json:"name" binding:"required,min=1,max=200"`
	Currency         string          `json:"currency" binding:"omitempty,len=3"`
	TaxRate          decimal.Decimal `json:"tax_rate"`
	PaymentTermsDays *int            `json:"payment_terms_days" binding:"omitempty,min=0,max=365"`
	InvoiceNotes     string          `json:"invoice_notes" binding:"max=2000"`
	Logo             string          `json:"logo" binding:"max=500"`
	Phone            string          `json:"phone" binding:"max=50"`
	Email            string          `json:"email" binding:"omitempty,email,max=200"`
	Address          string          `json:"address" binding:"max=500"`
	Website          string          `json:"website" binding:"max=200"`
}

func (r BusinessRequest) profile() business.Profile {
	return business.Profile{
		Name:             r.Name,
		Currency:         r.Currency,
		TaxRate:          r.TaxRate,
		PaymentTermsDays: r.PaymentTermsDays,
		InvoiceNotes:     r.InvoiceNotes,
		Logo:             r.Logo,
		Phone:            r.Phone,
		Email:            r.Email,
		Address:          r.Address,
		Website:          r.Website,
	}
}

// BusinessResponse represents a business in API responses
type BusinessResponse struct {
	ID               uuid.UUID       `json:"id"`
	Name             string          `json:"name"`
	Currency         string          `json:"currency"`
	TaxRate          decimal.Decimal `json:"tax_rate"`
	PaymentTermsDays *int            `json:"payment_terms_days,omitempty"`
	InvoiceNotes     string          `json:"invoice_notes,omitempty"`
	Logo             string          `json:"logo,omitempty"`
	Phone            string          `json:"phone,omitempty"`
	Email            string          `json:"email,omitempty"`
	Address          string          `json:"address,omitempty"`
	Website          string          `json:"website,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	Version          int             `json:"version"`
}

// ToBusinessResponse converts a domain Business to BusinessResponse
func ToBusinessResponse(b *business.Business) BusinessResponse {
	return BusinessResponse{
		ID:               b.ID,
		Name:             b.Name,
		Currency:         string(b.Currency),
		TaxRate:          b.TaxRate,
		PaymentTermsDays: b.PaymentTermsDays,
		InvoiceNotes:     b.InvoiceNotes,
		Logo:             b.Logo,
		Phone:            b.Phone,
		Email:            b.Email,
		Address:          b.Address,
		Website:          b.Website,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
		Version:          b.Version,
	}
}

// OnboardingResponse reports whether the owner still has to create a business
type OnboardingResponse struct {
	NeedsOnboarding bool  `json:"needs_onboarding"`
	BusinessCount   int64 `json:"business_count"`
}

// SetThemeRequest represents a theme change
type SetThemeRequest struct {
	Theme string `json:"theme" binding:"required,oneof=light dark"`
}

// PINRequest carries a four digit PIN
type PINRequest struct {
	PIN string `json:"pin" binding:"required"`
}

// SettingsResponse represents settings in API responses. The PIN hash
// never leaves the service.
type SettingsResponse struct {
	Theme      string `json:"theme"`
	PINEnabled bool   `json:"pin_enabled"`
}

// PINVerificationResponse is the result of a PIN check
type PINVerificationResponse struct {
	Valid bool `json:"valid"`
}

// ToSettingsResponse converts domain Settings to SettingsResponse
func ToSettingsResponse(s *business.Settings) SettingsResponse {
	return SettingsResponse{Theme: string(s.Theme), PINEnabled: s.PINEnabled}
}
