package finance

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment is money received against a transaction.
// Payments are append-only and never modified after creation.
type Payment struct {
	ID     uuid.UUID       `json:"id"`
	Date   time.Time       `json:"date"`
	Amount decimal.Decimal `json:"amount"`
	Method PaymentMethod   `json:"method"`
}

// Payments is the ordered payment history stored as JSON
type Payments []Payment

// Total sums all payment amounts
func (p Payments) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, payment := range p {
		sum = sum.Add(payment.Amount)
	}
	return sum
}

// Value implements driver.Valuer for database storage
func (p Payments) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for database retrieval
func (p *Payments) Scan(value any) error {
	if value == nil {
		*p = Payments{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Payments", value)
	}
	return json.Unmarshal(data, p)
}
