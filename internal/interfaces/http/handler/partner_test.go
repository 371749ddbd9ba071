package handler

import (
	"net/http"
	"testing"

	catalogapp "github.com/evardgh/apdatebookkeeping-REAL/internal/application/catalog"
	partnerapp "github.com/evardgh/apdatebookkeeping-REAL/internal/application/partner"
	resolverapp "github.com/evardgh/apdatebookkeeping-REAL/internal/application/resolver"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientHandler_CRUD(t *testing.T) {
	api := newTestAPI(t)
	id := api.createClient(t, "Acme Co")
	api.createClient(t, "Bluebird LLC")

	rec := api.do(http.MethodPost, "/clients", map[string]any{"name": "ACME co"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, dto.ErrCodeAlreadyExists, decode[any](t, rec).Error.Code)

	rec = api.do(http.MethodGet, "/clients?search=acme", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]partnerapp.ClientResponse](t, rec)
	require.Len(t, list.Data, 1)
	assert.Equal(t, id, list.Data[0].ID)
	require.NotNil(t, list.Meta)
	assert.Equal(t, int64(1), list.Meta.Total)

	rec = api.do(http.MethodDelete, "/clients/"+id.String(), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = api.do(http.MethodGet, "/clients/"+id.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestClientHandler_ListRejectsBadPaging(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodGet, "/clients?page_size=500", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decode[any](t, rec)
	require.Len(t, env.Error.Details, 1)
	assert.Equal(t, "page_size", env.Error.Details[0].Field)
}

func TestResolveHandler_FindOrCreate(t *testing.T) {
	api := newTestAPI(t)
	existing := api.createClient(t, "Acme Co")

	rec := api.do(http.MethodPost, "/resolve/clients", map[string]any{"name": "  acme CO "})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	found := decode[resolverapp.Resolution](t, rec).Data
	assert.Equal(t, existing, found.ID)
	assert.False(t, found.Created)
	assert.Equal(t, "Acme Co", found.Name)

	rec = api.do(http.MethodPost, "/resolve/clients", map[string]any{"name": "Northwind"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, decode[resolverapp.Resolution](t, rec).Data.Created)

	rec = api.do(http.MethodPost, "/resolve/clients", map[string]any{"name": "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResolveHandler_ItemsAreKeyedByType(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodPost, "/resolve/items", map[string]any{"name": "Paper", "type": "expense", "unit_price": "4.50"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	expense := decode[resolverapp.Resolution](t, rec).Data

	rec = api.do(http.MethodPost, "/resolve/items", map[string]any{"name": "paper", "type": "income", "nature": "product"})
	require.Equal(t, http.StatusCreated, rec.Code)
	income := decode[resolverapp.Resolution](t, rec).Data
	assert.NotEqual(t, expense.ID, income.ID)

	rec = api.do(http.MethodPost, "/resolve/items", map[string]any{"name": "PAPER"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, expense.ID, decode[resolverapp.Resolution](t, rec).Data.ID)

	rec = api.do(http.MethodGet, "/items?type=expense", nil)
	items := decode[[]catalogapp.ItemResponse](t, rec).Data
	require.Len(t, items, 1)
	assert.Equal(t, "Paper", items[0].Name)
	require.NotNil(t, items[0].UnitPrice)
	assert.Equal(t, "4.5", items[0].UnitPrice.String())
}
