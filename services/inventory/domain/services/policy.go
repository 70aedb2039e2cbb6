package services

import (
	"github.com/ghuser/larder/services/inventory/domain/models"
)

// The visibility/access policy. Every function is a pure predicate or filter
// over its inputs: founders see and manage everything, home chefs are confined
// to their own kitchen and never see warehouse rows.

// CanManageCatalog reports whether user may create, update or delete items
// and chefs.
func CanManageCatalog(user models.CurrentUser) bool {
	return user.IsFounder()
}

// CanAccessOwner reports whether user may read or write ledger rows of owner.
func CanAccessOwner(user models.CurrentUser, owner models.Owner) bool {
	if user.IsFounder() {
		return true
	}
	return !owner.IsWarehouse() && user.ChefID != nil && *user.ChefID == owner.ChefID
}

// CanViewOverview reports whether user may list movements across all owners.
func CanViewOverview(user models.CurrentUser) bool {
	return user.IsFounder()
}

// CanManageVendor reports whether user may update or delete vendor.
func CanManageVendor(user models.CurrentUser, vendor models.Vendor) bool {
	return CanAccessOwner(user, vendor.Owner())
}

// VisibleMovements returns the subset of movements user may see, preserving order.
func VisibleMovements(user models.CurrentUser, all []models.StockMovement) []models.StockMovement {
	return filter(all, func(m models.StockMovement) bool {
		return CanAccessOwner(user, m.Owner())
	})
}

// VisibleAudit returns the subset of audit entries user may see, preserving
// order. Chefs only see chef-scope entries of their own kitchen.
func VisibleAudit(user models.CurrentUser, all []models.AuditEntry) []models.AuditEntry {
	return filter(all, func(e models.AuditEntry) bool {
		if user.IsFounder() {
			return true
		}
		return e.Scope == models.ScopeChef && CanAccessOwner(user, models.OwnerFromPtr(e.ChefID))
	})
}

// VisibleVendors returns the vendors user may see.
func VisibleVendors(user models.CurrentUser, all []models.Vendor) []models.Vendor {
	return filter(all, func(v models.Vendor) bool {
		return CanManageVendor(user, v)
	})
}

// VisibleChefs returns the chef rows user may see: all for a founder, only
// their own for a chef.
func VisibleChefs(user models.CurrentUser, all []models.Chef) []models.Chef {
	return filter(all, func(c models.Chef) bool {
		return CanAccessOwner(user, models.ChefOwner(c.ID))
	})
}

func filter[T any](in []T, keep func(T) bool) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}
