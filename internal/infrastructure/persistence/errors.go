package persistence

import (
	"errors"
	"fmt"
	"strings"

	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared"
	"gorm.io/gorm"
)

// isUniqueViolation recognizes unique constraint failures from both drivers.
// TranslateError covers most cases; the message check catches drivers or
// mocks that do not translate.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}

// alreadyExists converts a unique violation into the domain error
func alreadyExists(resource, name string) error {
	return shared.NewDomainError(shared.CodeAlreadyExists, fmt.Sprintf("%s %q already exists", resource, name))
}

// notFound maps gorm.ErrRecordNotFound to the domain error and wraps the rest
func notFound(err error, resource string, id fmt.Stringer) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.NewNotFoundError(resource, id)
	}
	return fmt.Errorf("find %s %s: %w", strings.ToLower(resource), id, err)
}

// staleVersion reports a lost update
func staleVersion(resource string, id fmt.Stringer) error {
	return shared.NewDomainError(shared.CodeConcurrencyConflict,
		fmt.Sprintf("%s %s was modified concurrently, reload and retry", resource, id))
}
