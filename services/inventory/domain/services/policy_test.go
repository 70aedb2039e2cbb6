package services

import (
	"testing"

	"github.com/google/uuid"

	"github.com/ghuser/larder/services/inventory/domain/models"
)

func founder(t *testing.T) models.CurrentUser {
	t.Helper()
	u, err := models.NewCurrentUser(uuid.New(), models.RoleFounder, nil)
	if err != nil {
		t.Fatalf("founder: %v", err)
	}
	return u
}

func chef(t *testing.T, chefID uuid.UUID) models.CurrentUser {
	t.Helper()
	u, err := models.NewCurrentUser(uuid.New(), models.RoleHomeChef, &chefID)
	if err != nil {
		t.Fatalf("chef: %v", err)
	}
	return u
}

func TestCanAccessOwner(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	f, chefA := founder(t), chef(t, a)

	tests := []struct {
		name  string
		user  models.CurrentUser
		owner models.Owner
		want  bool
	}{
		{"founder warehouse", f, models.Warehouse(), true},
		{"founder any chef", f, models.ChefOwner(b), true},
		{"chef own kitchen", chefA, models.ChefOwner(a), true},
		{"chef other kitchen", chefA, models.ChefOwner(b), false},
		{"chef warehouse", chefA, models.Warehouse(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanAccessOwner(tt.user, tt.owner); got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFounderOnlyCapabilities(t *testing.T) {
	f, c := founder(t), chef(t, uuid.New())
	if !CanManageCatalog(f) || CanManageCatalog(c) {
		t.Error("catalog management is founder-only")
	}
	if !CanViewOverview(f) || CanViewOverview(c) {
		t.Error("overview is founder-only")
	}
}

func TestVisibleMovements_IsolatesChefs(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	item := uuid.New()
	all := []models.StockMovement{
		mv(item, models.Warehouse(), models.KindIn, "1"),
		mv(item, models.ChefOwner(a), models.KindIn, "2"),
		mv(item, models.ChefOwner(b), models.KindIn, "3"),
		mv(item, models.ChefOwner(a), models.KindOut, "1"),
	}

	if got := VisibleMovements(founder(t), all); len(got) != len(all) {
		t.Fatalf("founder sees %d of %d", len(got), len(all))
	}

	got := VisibleMovements(chef(t, a), all)
	if len(got) != 2 {
		t.Fatalf("chef A sees %d movements, want 2", len(got))
	}
	for _, m := range got {
		if m.Owner() != models.ChefOwner(a) {
			t.Fatalf("chef A sees a movement of %s", m.Owner())
		}
	}
	if got[0].ID != all[1].ID || got[1].ID != all[3].ID {
		t.Error("filtering must preserve order")
	}
}

func TestVisibleAudit(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	all := []models.AuditEntry{
		{ID: uuid.New(), Scope: models.ScopeFounder},
		{ID: uuid.New(), Scope: models.ScopeChef, ChefID: &a},
		{ID: uuid.New(), Scope: models.ScopeChef, ChefID: &b},
	}

	if got := VisibleAudit(founder(t), all); len(got) != 3 {
		t.Fatalf("founder sees %d entries, want 3", len(got))
	}
	got := VisibleAudit(chef(t, a), all)
	if len(got) != 1 || got[0].ID != all[1].ID {
		t.Fatalf("chef A must see only its own entry, got %+v", got)
	}
}

func TestVisibleVendorsAndChefs(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	vendors := []models.Vendor{
		{ID: uuid.New()},
		{ID: uuid.New(), ChefID: &a},
		{ID: uuid.New(), ChefID: &b},
	}
	chefs := []models.Chef{{ID: a}, {ID: b}}

	if got := VisibleVendors(chef(t, a), vendors); len(got) != 1 || got[0].ID != vendors[1].ID {
		t.Fatalf("chef A vendors: %+v", got)
	}
	if got := VisibleVendors(founder(t), vendors); len(got) != 3 {
		t.Fatalf("founder vendors: %d", len(got))
	}
	if got := VisibleChefs(chef(t, b), chefs); len(got) != 1 || got[0].ID != b {
		t.Fatalf("chef B chefs: %+v", got)
	}
}
