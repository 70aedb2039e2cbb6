// Package services contains stateless domain services for the inventory bounded
// context: name rules, the on-hand fold and the visibility/access policy.
// They operate purely on domain types and have no external dependencies
// beyond the domain layer and value libraries.
package services

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/ghuser/larder/services/inventory/domain/models"
)

// ValidateName enforces business rules for Name beyond the structural
// constraints enforced by the Name constructor (length 1–255).
//
// Business rules:
//   - No leading or trailing whitespace
//   - No control characters (Unicode category Cc)
//   - No consecutive spaces
//   - Must not be only whitespace characters
func ValidateName(name models.Name) error {
	s := name.String()

	if s != strings.TrimSpace(s) {
		return fmt.Errorf("name must not have leading or trailing whitespace")
	}

	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("name must not be only whitespace")
	}

	for _, r := range s {
		if unicode.IsControl(r) {
			return fmt.Errorf("name must not contain control characters")
		}
	}

	if strings.Contains(s, "  ") {
		return fmt.Errorf("name must not contain consecutive spaces")
	}

	return nil
}

// ValidateContact checks the optional contact fields. Empty values are allowed.
func ValidateContact(c models.Contact) error {
	if c.Email != "" {
		if _, err := mail.ParseAddress(c.Email); err != nil {
			return fmt.Errorf("email %q is not a valid address", c.Email)
		}
	}
	for _, r := range c.Phone {
		if unicode.IsControl(r) {
			return fmt.Errorf("phone must not contain control characters")
		}
	}
	return nil
}

// ValidateItem performs cross-field validation on an Item before it is
// persisted, both on creation and after a patch has been applied.
func ValidateItem(item *models.Item) error {
	if item == nil {
		return fmt.Errorf("item cannot be nil")
	}
	if item.ID == uuid.Nil {
		return fmt.Errorf("id must be set")
	}
	if err := ValidateName(item.Name); err != nil {
		return fmt.Errorf("invalid name: %w", err)
	}
	if !item.Unit.IsValid() {
		return fmt.Errorf("invalid unit %q", item.Unit)
	}
	if item.SKU != nil && strings.TrimSpace(*item.SKU) != *item.SKU {
		return fmt.Errorf("sku must not have leading or trailing whitespace")
	}
	if item.MinStock != nil {
		if item.MinStock.IsNegative() {
			return fmt.Errorf("min stock must not be negative")
		}
		if err := models.CheckAmount(*item.MinStock); err != nil {
			return fmt.Errorf("min stock: %w", err)
		}
	}
	return nil
}
