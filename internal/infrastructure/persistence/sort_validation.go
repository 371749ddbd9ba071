package persistence

import (
	"strings"

	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared"
	"gorm.io/gorm"
)

// ValidateSortOrder normalizes the sort order to ASC or DESC, defaulting to DESC
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField when whitelisted, else defaultField
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed != "" && allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CounterpartySortFields contains allowed sort fields for clients and vendors
var CounterpartySortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"name":       true,
}

// ItemSortFields contains allowed sort fields for catalog items
var ItemSortFields = map[string]bool{
	"created_at": true,
	"name":       true,
	"unit_price": true,
}

// QuotationSortFields contains allowed sort fields for quotations
var QuotationSortFields = map[string]bool{
	"created_at":       true,
	"date":             true,
	"expiry_date":      true,
	"total":            true,
	"quotation_number": true,
	"status":           true,
}

// TransactionSortFields contains allowed sort fields for transactions
var TransactionSortFields = map[string]bool{
	"created_at":         true,
	"date":               true,
	"due_date":           true,
	"amount":             true,
	"name":               true,
	"transaction_number": true,
}

// page applies ordering and paging from a filter
func page(query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultField string) *gorm.DB {
	filter = filter.Normalize()
	field := ValidateSortField(filter.OrderBy, allowed, defaultField)
	query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))
	if field != "id" {
		// stable order across pages
		query = query.Order("id ASC")
	}
	return query.Offset(filter.Offset()).Limit(filter.PageSize)
}

// searchName filters on a case-insensitive substring of name
func searchName(query *gorm.DB, search string) *gorm.DB {
	search = strings.TrimSpace(search)
	if search == "" {
		return query
	}
	return query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
}
