package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/interfaces/http/dto"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", shared.NewNotFoundError("Transaction", uuid.New()), http.StatusNotFound, dto.ErrCodeNotFound},
		{"validation", shared.NewValidationError("bad"), http.StatusBadRequest, dto.ErrCodeValidation},
		{"invalid payment", shared.NewInvalidPaymentError("too much"), http.StatusUnprocessableEntity, dto.ErrCodeInvalidPayment},
		{"invalid state", shared.NewInvalidStateError("voided"), http.StatusUnprocessableEntity, dto.ErrCodeInvalidState},
		{"wrapped domain error", fmt.Errorf("save: %w", shared.NewDomainError(shared.CodeConcurrencyConflict, "stale")), http.StatusConflict, dto.ErrCodeConcurrencyConflict},
		{"unknown error", errors.New("disk on fire"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Set(middleware.RequestIDKey, "req-1")

			h.HandleError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			env := decode[any](t, w)
			assert.False(t, env.Success)
			assert.Equal(t, tt.code, env.Error.Code)
			assert.Equal(t, "req-1", env.Error.RequestID)
		})
	}
}

func TestBaseHandler_HandleErrorHidesInternalMessage(t *testing.T) {
	h := &BaseHandler{}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	h.HandleError(c, errors.New("pq: password authentication failed"))

	assert.NotContains(t, w.Body.String(), "password")
}

func TestBaseHandler_OwnerRequired(t *testing.T) {
	h := &BaseHandler{}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	_, ok := h.owner(c)

	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestToSnake(t *testing.T) {
	tests := map[string]string{
		"Name":                 "name",
		"BusinessID":           "business_id",
		"PageSize":             "page_size",
		"Items[0].UnitPrice":   "items[0].unit_price",
		"Order.TrackingNumber": "order.tracking_number",
	}
	for in, want := range tests {
		assert.Equal(t, want, toSnake(in), in)
	}
}
