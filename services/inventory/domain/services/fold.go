package services

import (
	"github.com/shopspring/decimal"

	"github.com/ghuser/larder/services/inventory/domain/models"
)

// OnHand folds the movements matching key into a balance:
//
//	on-hand(item, owner) = Σ sign(kind)·quantity
//
// with sign(IN)=+1, sign(OUT)=-1 and sign(ADJUST)=0. Movements for other keys
// are ignored, so callers may pass an unfiltered slice. Decimal addition is
// exact, so the result does not depend on the order of movements.
func OnHand(movements []models.StockMovement, key models.OwnerKey) decimal.Decimal {
	total := decimal.Zero
	for _, m := range movements {
		if m.Key() != key {
			continue
		}
		total = total.Add(m.Signed())
	}
	return total
}

// OnHandByKey folds every key present in movements in a single pass.
func OnHandByKey(movements []models.StockMovement) map[models.OwnerKey]decimal.Decimal {
	totals := make(map[models.OwnerKey]decimal.Decimal)
	for _, m := range movements {
		k := m.Key()
		totals[k] = totals[k].Add(m.Signed())
	}
	return totals
}

// IsLow reports whether an item with a minimum-stock threshold is under it.
func IsLow(item models.Item, onHand decimal.Decimal) bool {
	return item.MinStock != nil && onHand.LessThan(*item.MinStock)
}
