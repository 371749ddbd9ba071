package router

import (
	"github.com/evardgh/apdatebookkeeping-REAL/internal/interfaces/http/handler"
)

// Handlers are the endpoint implementations mounted by Routes
type Handlers struct {
	Business    *handler.BusinessHandler
	Client      *handler.ClientHandler
	Vendor      *handler.VendorHandler
	Resolve     *handler.ResolveHandler
	Catalog     *handler.CatalogHandler
	Transaction *handler.TransactionHandler
	Quotation   *handler.QuotationHandler
	Intake      *handler.IntakeHandler
}

// Routes returns the bookkeeping API grouped by resource
func Routes(h Handlers) []RouteRegistrar {
	onboarding := NewDomainGroup("onboarding", "/onboarding").
		GET("", h.Business.Onboarding)

	businesses := NewDomainGroup("businesses", "/businesses").
		POST("", h.Business.Create).
		GET("", h.Business.List).
		GET("/:id", h.Business.GetByID).
		PUT("/:id", h.Business.Update)

	settings := NewDomainGroup("settings", "/settings").
		GET("", h.Business.GetSettings).
		PUT("/theme", h.Business.SetTheme).
		POST("/pin", h.Business.EnablePIN).
		DELETE("/pin", h.Business.DisablePIN).
		POST("/pin/verify", h.Business.VerifyPIN)

	clients := NewDomainGroup("clients", "/clients").
		POST("", h.Client.Create).
		GET("", h.Client.List).
		GET("/:id", h.Client.GetByID).
		PUT("/:id", h.Client.Update).
		DELETE("/:id", h.Client.Delete)

	vendors := NewDomainGroup("vendors", "/vendors").
		POST("", h.Vendor.Create).
		GET("", h.Vendor.List).
		GET("/:id", h.Vendor.GetByID).
		PUT("/:id", h.Vendor.Update).
		DELETE("/:id", h.Vendor.Delete)

	resolve := NewDomainGroup("resolve", "/resolve").
		POST("/clients", h.Resolve.Client).
		POST("/vendors", h.Resolve.Vendor).
		POST("/items", h.Resolve.Item)

	items := NewDomainGroup("items", "/items").
		GET("", h.Catalog.ListItems)

	categories := NewDomainGroup("categories", "/categories").
		POST("", h.Catalog.CreateCategory).
		GET("", h.Catalog.ListCategories)

	transactions := NewDomainGroup("transactions", "/transactions").
		POST("", h.Transaction.Create).
		GET("", h.Transaction.List).
		GET("/overdue", h.Transaction.ListOverdue).
		GET("/:id", h.Transaction.GetByID).
		PUT("/:id", h.Transaction.Update).
		DELETE("/:id", h.Transaction.Delete).
		POST("/:id/payments", h.Transaction.ApplyPayment).
		POST("/:id/void", h.Transaction.Void).
		PUT("/:id/order", h.Transaction.UpdateOrder).
		POST("/:id/receipt", h.Transaction.UploadReceipt).
		GET("/:id/receipt", h.Transaction.ReceiptURL)

	quotations := NewDomainGroup("quotations", "/quotations").
		POST("/totals", h.Quotation.ComputeTotals).
		POST("", h.Quotation.Create).
		GET("", h.Quotation.List).
		GET("/:id", h.Quotation.GetByID).
		PUT("/:id", h.Quotation.Update).
		DELETE("/:id", h.Quotation.Delete).
		PUT("/:id/status", h.Quotation.ChangeStatus).
		POST("/:id/convert", h.Quotation.Convert)

	invoices := NewDomainGroup("invoices", "/invoices").
		POST("", h.Quotation.CreateInvoice)

	intake := NewDomainGroup("intake", "/intake").
		POST("/transactions", h.Intake.Transaction).
		POST("/documents", h.Intake.Document)

	return []RouteRegistrar{
		onboarding, businesses, settings, clients, vendors, resolve,
		items, categories, transactions, quotations, invoices, intake,
	}
}
