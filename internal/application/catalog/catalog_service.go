// Package catalog lists reusable items and manages transaction categories.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/catalog"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemListFilter represents filter options for listing items
type ItemListFilter struct {
	Type     string `form:"type" binding:"omitempty,oneof=income expense"`
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ItemResponse represents a catalog item in API responses
type ItemResponse struct {
	ID        uuid.UUID        `json:"id"`
	Name      string           `json:"name"`
	Type      string           `json:"type"`
	Nature    string           `json:"nature"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// CreateCategoryRequest represents a request to create a category
type CreateCategoryRequest struct {
	Name        string  `json:"name" binding:"required,min=1,max=100"`
	Type        string  `json:"type" binding:"required,oneof=income expense"`
	ExpenseType *string `json:"expense_type"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	ExpenseType *string   `json:"expense_type,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToItemResponse converts a domain Item to ItemResponse
func ToItemResponse(it *catalog.Item) ItemResponse {
	return ItemResponse{
		ID:        it.ID,
		Name:      it.Name,
		Type:      string(it.Type),
		Nature:    string(it.Nature),
		UnitPrice: it.UnitPrice,
		CreatedAt: it.CreatedAt,
	}
}

// ToCategoryResponse converts a domain Category to CategoryResponse
func ToCategoryResponse(c *catalog.Category) CategoryResponse {
	resp := CategoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		Type:      string(c.Type),
		CreatedAt: c.CreatedAt,
	}
	if c.ExpenseType != nil {
		et := string(*c.ExpenseType)
		resp.ExpenseType = &et
	}
	return resp
}

// Service exposes read access to items and CRUD for categories.
// Items are created by the resolver only.
type Service struct {
	itemRepo     catalog.ItemRepository
	categoryRepo catalog.CategoryRepository
}

// NewService creates a new catalog Service
func NewService(itemRepo catalog.ItemRepository, categoryRepo catalog.CategoryRepository) *Service {
	return &Service{itemRepo: itemRepo, categoryRepo: categoryRepo}
}

// ListItems lists items, optionally restricted to one type
func (s *Service) ListItems(ctx context.Context, ownerID uuid.UUID, filter ItemListFilter) ([]ItemResponse, error) {
	itemType, err := parseOptionalType(filter.Type)
	if err != nil {
		return nil, err
	}
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  "name",
		OrderDir: "asc",
		Search:   filter.Search,
	}.Normalize()

	items, err := s.itemRepo.FindAll(ctx, ownerID, itemType, domainFilter)
	if err != nil {
		return nil, err
	}
	out := make([]ItemResponse, len(items))
	for i := range items {
		out[i] = ToItemResponse(&items[i])
	}
	return out, nil
}

// GetItem retrieves an item
func (s *Service) GetItem(ctx context.Context, ownerID, id uuid.UUID) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	resp := ToItemResponse(item)
	return &resp, nil
}

// CreateCategory creates a category. A (name, type) pair that already
// exists fails with ALREADY_EXISTS.
func (s *Service) CreateCategory(ctx context.Context, ownerID uuid.UUID, req CreateCategoryRequest) (*CategoryResponse, error) {
	categoryType := valueobject.TransactionType(req.Type)
	var expenseType *catalog.ExpenseType
	if req.ExpenseType != nil && *req.ExpenseType != "" {
		et := catalog.ExpenseType(*req.ExpenseType)
		expenseType = &et
	}

	category, err := catalog.NewCategory(ownerID, req.Name, categoryType, expenseType)
	if err != nil {
		return nil, err
	}
	if err := s.categoryRepo.Save(ctx, category); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.NewDomainError(shared.CodeAlreadyExists,
				fmt.Sprintf("Category %q already exists for %s", category.Name, category.Type))
		}
		return nil, err
	}

	resp := ToCategoryResponse(category)
	return &resp, nil
}

// ListCategories lists categories, optionally restricted to one type
func (s *Service) ListCategories(ctx context.Context, ownerID uuid.UUID, categoryType string) ([]CategoryResponse, error) {
	t, err := parseOptionalType(categoryType)
	if err != nil {
		return nil, err
	}
	categories, err := s.categoryRepo.FindAll(ctx, ownerID, t)
	if err != nil {
		return nil, err
	}
	out := make([]CategoryResponse, len(categories))
	for i := range categories {
		out[i] = ToCategoryResponse(&categories[i])
	}
	return out, nil
}

// ExpenseTypes returns the expense type labels in display order
func (s *Service) ExpenseTypes() []string {
	out := make([]string, len(catalog.AllExpenseTypes))
	for i, et := range catalog.AllExpenseTypes {
		out[i] = string(et)
	}
	return out
}

func parseOptionalType(raw string) (valueobject.TransactionType, error) {
	if raw == "" {
		return "", nil
	}
	t := valueobject.TransactionType(raw)
	if !t.IsValid() {
		return "", shared.NewValidationError(fmt.Sprintf("Invalid type: %s", raw))
	}
	return t, nil
}
