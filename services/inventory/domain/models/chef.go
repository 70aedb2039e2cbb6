package models

import (
	"time"

	"github.com/google/uuid"
)

// Chef is a tenant kitchen. Its ID doubles as the owner key for movements.
type Chef struct {
	ID       uuid.UUID
	Name     Name
	Contact  Contact
	IsActive bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewChef constructs an active Chef with generated ID.
func NewChef(name Name, contact Contact) (*Chef, error) {
	now := time.Now().UTC()
	return &Chef{
		ID:        uuid.New(),
		Name:      name,
		Contact:   contact,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ChefPatch is a partial update; nil fields are left untouched.
type ChefPatch struct {
	Name     *Name
	Contact  ContactPatch
	IsActive *bool
}

// Apply merges the patch into the chef and bumps UpdatedAt.
func (c *Chef) Apply(p ChefPatch) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	c.Contact.apply(p.Contact)
	if p.IsActive != nil {
		c.IsActive = *p.IsActive
	}
	c.UpdatedAt = time.Now().UTC()
}
