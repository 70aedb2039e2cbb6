package services

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/larder/services/inventory/domain/models"
)

func mv(item uuid.UUID, owner models.Owner, kind models.MovementKind, qty string) models.StockMovement {
	return models.StockMovement{
		ID:       uuid.New(),
		ItemID:   item,
		Kind:     kind,
		Quantity: decimal.RequireFromString(qty),
		ChefID:   owner.ChefPtr(),
	}
}

func TestOnHand_SumsSignedQuantities(t *testing.T) {
	item := uuid.New()
	w := models.Warehouse()
	key := models.NewOwnerKey(item, w)

	tests := []struct {
		name string
		ms   []models.StockMovement
		want string
	}{
		{"empty ledger", nil, "0"},
		{"in only", []models.StockMovement{mv(item, w, models.KindIn, "10")}, "10"},
		{"in and out", []models.StockMovement{mv(item, w, models.KindIn, "10"), mv(item, w, models.KindOut, "2.5")}, "7.5"},
		{"adjust contributes nothing", []models.StockMovement{mv(item, w, models.KindIn, "4"), mv(item, w, models.KindAdjust, "100")}, "4"},
		{"out beyond on-hand goes negative", []models.StockMovement{mv(item, w, models.KindIn, "1"), mv(item, w, models.KindOut, "3")}, "-2"},
		{"large out after small in", []models.StockMovement{mv(item, w, models.KindIn, "10"), mv(item, w, models.KindOut, "100")}, "-90"},
		{"decimal fractions stay exact", []models.StockMovement{mv(item, w, models.KindIn, "0.1"), mv(item, w, models.KindIn, "0.2")}, "0.3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OnHand(tt.ms, key)
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Fatalf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestOnHand_IndependentOfOrder(t *testing.T) {
	item := uuid.New()
	w := models.Warehouse()
	key := models.NewOwnerKey(item, w)

	ms := []models.StockMovement{
		mv(item, w, models.KindIn, "12.125"),
		mv(item, w, models.KindOut, "0.375"),
		mv(item, w, models.KindIn, "0.1"),
		mv(item, w, models.KindAdjust, "3"),
		mv(item, w, models.KindOut, "7.7"),
		mv(item, w, models.KindIn, "1e-6"),
	}
	want := OnHand(ms, key)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		shuffled := append([]models.StockMovement(nil), ms...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		if got := OnHand(shuffled, key); !got.Equal(want) {
			t.Fatalf("permutation %d: got %s, want %s", i, got, want)
		}
	}
}

func TestOnHand_PartitionsByOwner(t *testing.T) {
	item := uuid.New()
	chefA, chefB := models.ChefOwner(uuid.New()), models.ChefOwner(uuid.New())

	ms := []models.StockMovement{
		mv(item, models.Warehouse(), models.KindIn, "100"),
		mv(item, chefA, models.KindIn, "5"),
		mv(item, chefB, models.KindIn, "7"),
		mv(item, chefB, models.KindOut, "2"),
		mv(uuid.New(), chefA, models.KindIn, "50"),
	}

	cases := map[models.OwnerKey]string{
		models.NewOwnerKey(item, models.Warehouse()): "100",
		models.NewOwnerKey(item, chefA):              "5",
		models.NewOwnerKey(item, chefB):              "5",
	}
	for key, want := range cases {
		if got := OnHand(ms, key); !got.Equal(decimal.RequireFromString(want)) {
			t.Errorf("%s: got %s, want %s", key, got, want)
		}
	}

	byKey := OnHandByKey(ms)
	for key, want := range cases {
		if got := byKey[key]; !got.Equal(decimal.RequireFromString(want)) {
			t.Errorf("OnHandByKey %s: got %s, want %s", key, got, want)
		}
	}
	if len(byKey) != 4 {
		t.Errorf("expected 4 keys, got %d", len(byKey))
	}
}

func TestIsLow(t *testing.T) {
	threshold := decimal.NewFromInt(5)
	withMin := models.Item{MinStock: &threshold}

	if !IsLow(withMin, decimal.RequireFromString("4.99")) {
		t.Error("below the threshold is low")
	}
	if IsLow(withMin, decimal.NewFromInt(5)) {
		t.Error("at the threshold is not low")
	}
	if IsLow(models.Item{}, decimal.NewFromInt(-10)) {
		t.Error("items without a threshold are never low")
	}
}
