package models

import (
	"fmt"

	"github.com/google/uuid"
)

// OwnerWarehouse is the textual form of the warehouse owner used in query
// strings, cache keys and logs.
const OwnerWarehouse = "warehouse"

// Owner is the ownership half of the ledger partition key: either the shared
// warehouse (zero value) or one chef. Owner is comparable and safe to use as a
// map key.
type Owner struct {
	ChefID uuid.UUID
}

// Warehouse returns the warehouse owner.
func Warehouse() Owner {
	return Owner{}
}

// ChefOwner returns the owner for the given chef. uuid.Nil yields the warehouse.
func ChefOwner(chefID uuid.UUID) Owner {
	return Owner{ChefID: chefID}
}

// OwnerFromPtr maps a nullable chef id (nil = warehouse) to an Owner.
func OwnerFromPtr(chefID *uuid.UUID) Owner {
	if chefID == nil {
		return Warehouse()
	}
	return ChefOwner(*chefID)
}

// ParseOwner accepts "warehouse" (or an empty string) and chef UUIDs.
func ParseOwner(s string) (Owner, error) {
	if s == "" || s == OwnerWarehouse {
		return Warehouse(), nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return Owner{}, fmt.Errorf("owner must be %q or a chef id: %w", OwnerWarehouse, err)
	}
	return ChefOwner(id), nil
}

// IsWarehouse reports whether the owner is the warehouse.
func (o Owner) IsWarehouse() bool {
	return o.ChefID == uuid.Nil
}

// ChefPtr returns the chef id, or nil for the warehouse.
func (o Owner) ChefPtr() *uuid.UUID {
	if o.IsWarehouse() {
		return nil
	}
	id := o.ChefID
	return &id
}

func (o Owner) String() string {
	if o.IsWarehouse() {
		return OwnerWarehouse
	}
	return o.ChefID.String()
}

// OwnerKey partitions the movement ledger: on-hand is folded per key.
type OwnerKey struct {
	ItemID uuid.UUID
	Owner  Owner
}

// NewOwnerKey builds the partition key for an item under an owner.
func NewOwnerKey(itemID uuid.UUID, owner Owner) OwnerKey {
	return OwnerKey{ItemID: itemID, Owner: owner}
}

// String renders the key as "<itemID>:<owner>".
func (k OwnerKey) String() string {
	return k.ItemID.String() + ":" + k.Owner.String()
}
