package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	businessapp "github.com/evardgh/apdatebookkeeping-REAL/internal/application/business"
	catalogapp "github.com/evardgh/apdatebookkeeping-REAL/internal/application/catalog"
	documentapp "github.com/evardgh/apdatebookkeeping-REAL/internal/application/document"
	financeapp "github.com/evardgh/apdatebookkeeping-REAL/internal/application/finance"
	intakeapp "github.com/evardgh/apdatebookkeeping-REAL/internal/application/intake"
	partnerapp "github.com/evardgh/apdatebookkeeping-REAL/internal/application/partner"
	resolverapp "github.com/evardgh/apdatebookkeeping-REAL/internal/application/resolver"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/infrastructure/cache"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/infrastructure/config"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/infrastructure/persistence"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/infrastructure/storage"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/interfaces/http/dto"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testAPI serves the handlers over real services on in-memory SQLite.
// Every request is authenticated as owner.
type testAPI struct {
	engine   *gin.Engine
	owner    uuid.UUID
	receipts *storage.MemoryReceiptStorage
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	db, err := persistence.NewDatabase(&config.DatabaseConfig{Driver: "sqlite", SQLitePath: ":memory:"}, nil)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate())
	t.Cleanup(func() { _ = db.Close() })

	log := zap.NewNop()
	locker := cache.NewInMemoryOwnerLocker()
	sequence := cache.NewInMemoryNumberSequence()

	businessRepo := persistence.NewGormBusinessRepository(db.DB)
	clientRepo := persistence.NewGormClientRepository(db.DB)
	vendorRepo := persistence.NewGormVendorRepository(db.DB)
	itemRepo := persistence.NewGormItemRepository(db.DB)
	txnRepo := persistence.NewGormTransactionRepository(db.DB)

	receipts := storage.NewMemoryReceiptStorage()
	transactions := financeapp.NewTransactionService(txnRepo, businessRepo, clientRepo, vendorRepo, sequence, locker, financeapp.DefaultConfig(), log)
	transactions.SetReceiptStorage(receipts)
	resolver := resolverapp.NewService(clientRepo, vendorRepo, itemRepo, locker, log)
	quotations := documentapp.NewQuotationService(
		persistence.NewGormQuotationRepository(db.DB), businessRepo, clientRepo,
		sequence, locker, transactions, txnRepo, "", log,
	)

	api := &testAPI{engine: gin.New(), owner: uuid.New(), receipts: receipts}
	api.engine.Use(middleware.RequestID(), func(c *gin.Context) {
		c.Set(middleware.OwnerIDKey, api.owner)
		c.Next()
	})

	b := NewBusinessHandler(businessapp.NewService(businessRepo, persistence.NewGormSettingsRepository(db.DB), log))
	api.engine.GET("/onboarding", b.Onboarding)
	api.engine.POST("/businesses", b.Create)
	api.engine.GET("/businesses", b.List)
	api.engine.GET("/businesses/:id", b.GetByID)
	api.engine.GET("/settings", b.GetSettings)
	api.engine.PUT("/settings/theme", b.SetTheme)
	api.engine.POST("/settings/pin", b.EnablePIN)
	api.engine.POST("/settings/pin/verify", b.VerifyPIN)

	cl := NewClientHandler(partnerapp.NewClientService(clientRepo, log))
	api.engine.POST("/clients", cl.Create)
	api.engine.GET("/clients", cl.List)
	api.engine.GET("/clients/:id", cl.GetByID)
	api.engine.DELETE("/clients/:id", cl.Delete)

	r := NewResolveHandler(resolver)
	api.engine.POST("/resolve/clients", r.Client)
	api.engine.POST("/resolve/items", r.Item)

	cat := NewCatalogHandler(catalogapp.NewService(itemRepo, persistence.NewGormCategoryRepository(db.DB)))
	api.engine.GET("/items", cat.ListItems)

	tx := NewTransactionHandler(transactions)
	api.engine.POST("/transactions", tx.Create)
	api.engine.GET("/transactions", tx.List)
	api.engine.GET("/transactions/:id", tx.GetByID)
	api.engine.POST("/transactions/:id/payments", tx.ApplyPayment)
	api.engine.POST("/transactions/:id/void", tx.Void)
	api.engine.POST("/transactions/:id/receipt", tx.UploadReceipt)
	api.engine.GET("/transactions/:id/receipt", tx.ReceiptURL)

	q := NewQuotationHandler(quotations)
	api.engine.POST("/quotations/totals", q.ComputeTotals)
	api.engine.POST("/quotations", q.Create)
	api.engine.PUT("/quotations/:id/status", q.ChangeStatus)
	api.engine.POST("/quotations/:id/convert", q.Convert)
	api.engine.POST("/invoices", q.CreateInvoice)

	in := NewIntakeHandler(intakeapp.NewService(resolver, transactions, "", log))
	api.engine.POST("/intake/transactions", in.Transaction)
	api.engine.POST("/intake/documents", in.Document)

	return api
}

func (a *testAPI) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.engine.ServeHTTP(rec, req)
	return rec
}

// envelope decodes the response envelope with data into T
type envelope[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data"`
	Error   *dto.ErrorInfo `json:"error"`
	Meta    *dto.Meta      `json:"meta"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func (a *testAPI) createBusiness(t *testing.T) uuid.UUID {
	t.Helper()
	rec := a.do(http.MethodPost, "/businesses", map[string]any{
		"name": "Harbor Studio", "currency": "USD", "tax_rate": "15",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[businessapp.BusinessResponse](t, rec).Data.ID
}

func (a *testAPI) createClient(t *testing.T, name string) uuid.UUID {
	t.Helper()
	rec := a.do(http.MethodPost, "/clients", map[string]any{"name": name})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[partnerapp.ClientResponse](t, rec).Data.ID
}
