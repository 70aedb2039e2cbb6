package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ghuser/larder/pkg/app"
	"github.com/ghuser/larder/pkg/cache"
	"github.com/ghuser/larder/pkg/config"
	"github.com/ghuser/larder/pkg/logger"
	"github.com/ghuser/larder/services/inventory/application/services"
	"github.com/ghuser/larder/services/inventory/domain/models"
	"github.com/ghuser/larder/services/inventory/domain/repositories"
	"github.com/ghuser/larder/services/inventory/infrastructure/persistence/memory"
)

// fixture is a founder, two chefs and one item on a fresh memory store.
type fixture struct {
	svcs    *services.Services
	founder models.CurrentUser
	chefA   models.CurrentUser
	chefB   models.CurrentUser
	item    *models.Item
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	svcs := services.NewWithRepositories(
		services.MemoryRepositories(memory.NewStore()),
		cache.NewLocalOnHandCache(),
		cache.NewLocalLocker(),
		&app.Application{Logger: logger.New(&config.Config{LogLevel: "error"})},
	)

	founder, err := models.NewCurrentUser(uuid.New(), models.RoleFounder, nil)
	require.NoError(t, err)

	f := &fixture{svcs: svcs, founder: founder}
	f.chefA = f.newChef(t, "Kitchen A")
	f.chefB = f.newChef(t, "Kitchen B")

	minStock := 5.0
	f.item, err = svcs.Catalog.CreateItem(ctx, founder, services.ItemInput{Name: "Flour", Unit: "kg", MinStock: &minStock})
	require.NoError(t, err)
	return f
}

func (f *fixture) newChef(t *testing.T, name string) models.CurrentUser {
	t.Helper()
	chef, err := f.svcs.Catalog.CreateChef(context.Background(), f.founder, services.ChefInput{Name: name})
	require.NoError(t, err)
	user, err := models.NewCurrentUser(uuid.New(), models.RoleHomeChef, &chef.ID)
	require.NoError(t, err)
	return user
}

// movements returns every movement in the ledger.
func (f *fixture) movements(t *testing.T) []models.StockMovement {
	t.Helper()
	all, err := f.svcs.Ledger.Overview(context.Background(), f.founder, repositories.QueryOpts{})
	require.NoError(t, err)
	return all
}

// audit returns every audit entry, most recent first.
func (f *fixture) audit(t *testing.T) []models.AuditEntry {
	t.Helper()
	all, err := f.svcs.Audit.List(context.Background(), f.founder, repositories.QueryOpts{})
	require.NoError(t, err)
	return all
}

func (f *fixture) record(t *testing.T, user models.CurrentUser, kind string, qty float64, owner models.Owner) *models.StockMovement {
	t.Helper()
	m, err := f.svcs.Ledger.Record(context.Background(), user, services.RecordMovementInput{
		ItemID: f.item.ID, Kind: kind, Quantity: qty, Owner: owner,
	})
	require.NoError(t, err)
	return m
}

func (f *fixture) onHand(t *testing.T, owner models.Owner) string {
	t.Helper()
	v, err := f.svcs.Ledger.OnHand(context.Background(), f.founder, models.NewOwnerKey(f.item.ID, owner))
	require.NoError(t, err)
	return v.String()
}
