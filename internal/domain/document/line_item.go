package document

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem is one priced line of a quotation or invoice
type LineItem struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// Amount returns quantity × unit price rounded to two places
func (l LineItem) Amount() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice).Round(2)
}

// NewLineItem creates a validated line item with a fresh ID
func NewLineItem(name, description string, quantity, unitPrice decimal.Decimal) (LineItem, error) {
	item := LineItem{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		Quantity:    quantity,
		UnitPrice:   unitPrice,
	}
	return item, item.Validate()
}

// Validate checks a single line
func (l LineItem) Validate() error {
	if l.Name == "" {
		return shared.NewValidationError("Line item name cannot be empty")
	}
	if !l.Quantity.IsPositive() {
		return shared.NewValidationError(fmt.Sprintf("Quantity of %q must be positive", l.Name))
	}
	if l.UnitPrice.IsNegative() {
		return shared.NewValidationError(fmt.Sprintf("Unit price of %q cannot be negative", l.Name))
	}
	return nil
}

// LineItems is an ordered list of lines stored as JSON
type LineItems []LineItem

// Validate checks every line and assigns IDs to lines that have none
func (items LineItems) Validate() error {
	for i := range items {
		items[i].Name = strings.TrimSpace(items[i].Name)
		items[i].Description = strings.TrimSpace(items[i].Description)
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
		if err := items[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a copy that does not share the backing array
func (items LineItems) Clone() LineItems {
	if items == nil {
		return LineItems{}
	}
	out := make(LineItems, len(items))
	copy(out, items)
	return out
}

// Value implements driver.Valuer for database storage
func (items LineItems) Value() (driver.Value, error) {
	if items == nil {
		return "[]", nil
	}
	b, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for database retrieval
func (items *LineItems) Scan(value any) error {
	if value == nil {
		*items = LineItems{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into LineItems", value)
	}
	return json.Unmarshal(data, items)
}
