package partner

import (
	"regexp"
	"strings"

	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared/valueobject"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Contact holds the optional reachability details of a counterparty
type Contact struct {
	Email string
	Phone string
}

// Normalize trims the contact fields and validates the email
func (c Contact) Normalize() (Contact, error) {
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
	if c.Email != "" && !emailRegex.MatchString(c.Email) {
		return c, shared.NewValidationError("Invalid email format")
	}
	if len(c.Phone) > 50 {
		return c, shared.NewValidationError("Phone cannot exceed 50 characters")
	}
	return c, nil
}

func validateName(kind, name string) (string, error) {
	name = valueobject.CleanName(name)
	if name == "" {
		return "", shared.NewValidationError(kind + " name cannot be empty")
	}
	if len(name) > 200 {
		return "", shared.NewValidationError(kind + " name cannot exceed 200 characters")
	}
	return name, nil
}
