package catalog

import (
	"fmt"

	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// ExpenseType groups expense categories for reporting
type ExpenseType string

const (
	ExpenseTypeOperating    ExpenseType = "Operating Expenses"
	ExpenseTypeCostOfGoods  ExpenseType = "Cost of Goods Sold"
	ExpenseTypeOther        ExpenseType = "Other Expenses"
	ExpenseTypeNonOperating ExpenseType = "Non-Operating Expenses"
)

// AllExpenseTypes lists the expense types in display order
var AllExpenseTypes = []ExpenseType{
	ExpenseTypeOperating,
	ExpenseTypeCostOfGoods,
	ExpenseTypeOther,
	ExpenseTypeNonOperating,
}

// IsValid checks if the expense type is valid
func (e ExpenseType) IsValid() bool {
	for _, t := range AllExpenseTypes {
		if t == e {
			return true
		}
	}
	return false
}

// Category labels transactions of one type
type Category struct {
	shared.OwnedAggregateRoot
	Name        string
	NameKey     string
	Type        valueobject.TransactionType
	ExpenseType *ExpenseType
}

// NewCategory creates a category. Expense types only apply to expense categories.
func NewCategory(ownerID uuid.UUID, name string, categoryType valueobject.TransactionType, expenseType *ExpenseType) (*Category, error) {
	name = valueobject.CleanName(name)
	if name == "" {
		return nil, shared.NewValidationError("Category name cannot be empty")
	}
	if len(name) > 100 {
		return nil, shared.NewValidationError("Category name cannot exceed 100 characters")
	}
	if !categoryType.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("Invalid category type: %s", categoryType))
	}
	if expenseType != nil {
		if categoryType != valueobject.TransactionTypeExpense {
			return nil, shared.NewValidationError("Expense type is only allowed on expense categories")
		}
		if !expenseType.IsValid() {
			return nil, shared.NewValidationError(fmt.Sprintf("Invalid expense type: %s", *expenseType))
		}
	}

	return &Category{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(ownerID),
		Name:               name,
		NameKey:            valueobject.NameKey(name),
		Type:               categoryType,
		ExpenseType:        expenseType,
	}, nil
}
