package valueobject

import (
	"strings"

	"golang.org/x/text/cases"
)

// TransactionType distinguishes money coming in from money going out
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// IsValid checks if the transaction type is valid
func (t TransactionType) IsValid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// String returns the string representation
func (t TransactionType) String() string {
	return string(t)
}

// Nature tells whether a record is about a service or a physical product
type Nature string

const (
	NatureService Nature = "service"
	NatureProduct Nature = "product"
)

// IsValid checks if the nature is valid
func (n Nature) IsValid() bool {
	return n == NatureService || n == NatureProduct
}

// String returns the string representation
func (n Nature) String() string {
	return string(n)
}

// CleanName trims surrounding whitespace from a user supplied name
func CleanName(name string) string {
	return strings.TrimSpace(name)
}

// NameKey returns the comparison key for a name: trimmed and case folded.
// Two names with the same key refer to the same entity. A Caser is
// stateful, so a fresh one is built per call.
func NameKey(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}
