package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is a catalog entry for a trackable good or container.
type Item struct {
	ID       uuid.UUID
	Name     Name
	Unit     Unit
	SKU      *string
	MinStock *decimal.Decimal // low-stock threshold; nil disables the signal
	IsActive bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewItem constructs an active Item with generated ID and current timestamp.
func NewItem(name Name, unit Unit, sku *string, minStock *decimal.Decimal) (*Item, error) {
	now := time.Now().UTC()
	return &Item{
		ID:        uuid.New(),
		Name:      name,
		Unit:      unit,
		SKU:       sku,
		MinStock:  minStock,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ItemPatch is a partial update; nil fields are left untouched.
type ItemPatch struct {
	Name          *Name
	Unit          *Unit
	SKU           *string // empty string clears the SKU
	MinStock      *decimal.Decimal
	ClearMinStock bool
	IsActive      *bool
}

// Apply merges the patch into the item and bumps UpdatedAt.
func (i *Item) Apply(p ItemPatch) {
	if p.Name != nil {
		i.Name = *p.Name
	}
	if p.Unit != nil {
		i.Unit = *p.Unit
	}
	if p.SKU != nil {
		if *p.SKU == "" {
			i.SKU = nil
		} else {
			sku := *p.SKU
			i.SKU = &sku
		}
	}
	if p.ClearMinStock {
		i.MinStock = nil
	} else if p.MinStock != nil {
		m := *p.MinStock
		i.MinStock = &m
	}
	if p.IsActive != nil {
		i.IsActive = *p.IsActive
	}
	i.UpdatedAt = time.Now().UTC()
}

// Clone returns a deep copy so stored rows never alias caller-held values.
func (i Item) Clone() Item {
	if i.SKU != nil {
		sku := *i.SKU
		i.SKU = &sku
	}
	if i.MinStock != nil {
		m := *i.MinStock
		i.MinStock = &m
	}
	return i
}

// ItemIndex is a read-only id -> Item projection, rebuilt from the catalog
// whenever it is requested.
type ItemIndex map[uuid.UUID]Item

// NewItemIndex projects a list of items by id.
func NewItemIndex(items []Item) ItemIndex {
	idx := make(ItemIndex, len(items))
	for _, it := range items {
		idx[it.ID] = it
	}
	return idx
}

// Label returns the item's display name, falling back to the raw id for items
// that were deleted from the catalog but are still referenced by movements.
func (idx ItemIndex) Label(id uuid.UUID) string {
	if it, ok := idx[id]; ok {
		return it.Name.String()
	}
	return "unknown item (" + id.String() + ")"
}
