package models

import (
	"time"

	"github.com/google/uuid"
)

// Vendor is a supplier. Vendors are owned like movements: ChefID nil means a
// warehouse vendor managed by the founder, otherwise the vendor belongs to
// exactly one chef and is invisible to the others.
type Vendor struct {
	ID       uuid.UUID
	ChefID   *uuid.UUID
	Name     Name
	Contact  Contact
	IsActive bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewVendor constructs an active Vendor owned by owner.
func NewVendor(owner Owner, name Name, contact Contact) (*Vendor, error) {
	now := time.Now().UTC()
	return &Vendor{
		ID:        uuid.New(),
		ChefID:    owner.ChefPtr(),
		Name:      name,
		Contact:   contact,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Owner returns the vendor's owner.
func (v Vendor) Owner() Owner {
	return OwnerFromPtr(v.ChefID)
}

// ContactPatch is a partial update of contact fields.
type ContactPatch struct {
	Phone   *string
	Email   *string
	Address *string
}

func (c *Contact) apply(p ContactPatch) {
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Address != nil {
		c.Address = *p.Address
	}
}

// VendorPatch is a partial update; nil fields are left untouched. Ownership
// is immutable.
type VendorPatch struct {
	Name     *Name
	Contact  ContactPatch
	IsActive *bool
}

// Apply merges the patch into the vendor and bumps UpdatedAt.
func (v *Vendor) Apply(p VendorPatch) {
	if p.Name != nil {
		v.Name = *p.Name
	}
	v.Contact.apply(p.Contact)
	if p.IsActive != nil {
		v.IsActive = *p.IsActive
	}
	v.UpdatedAt = time.Now().UTC()
}

// Clone returns a deep copy.
func (v Vendor) Clone() Vendor {
	if v.ChefID != nil {
		id := *v.ChefID
		v.ChefID = &id
	}
	return v
}
