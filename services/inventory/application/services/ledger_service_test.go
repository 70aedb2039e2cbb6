package services_test

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghuser/larder/services/inventory/application/services"
	"github.com/ghuser/larder/services/inventory/domain"
	"github.com/ghuser/larder/services/inventory/domain/models"
	"github.com/ghuser/larder/services/inventory/domain/repositories"
)

func TestLedger_RecordUpdatesOnHandAndAudit(t *testing.T) {
	f := newFixture(t)
	auditBefore := len(f.audit(t))

	f.record(t, f.founder, "IN", 10, models.Warehouse())
	assert.Equal(t, "10", f.onHand(t, models.Warehouse()))

	m := f.record(t, f.founder, "OUT", 2.5, models.Warehouse())
	assert.Equal(t, "7.5", f.onHand(t, models.Warehouse()))

	f.record(t, f.founder, "ADJUST", 100, models.Warehouse())
	assert.Equal(t, "7.5", f.onHand(t, models.Warehouse()), "ADJUST must not move the balance")

	entries := f.audit(t)
	require.Len(t, entries, auditBefore+3)
	assert.Equal(t, models.ActionMovementRecorded, entries[1].Action)
	require.NotNil(t, entries[1].RefID)
	assert.Equal(t, m.ID, *entries[1].RefID)
	assert.Equal(t, models.ScopeFounder, entries[1].Scope)
	assert.Equal(t, "2.5", entries[1].Meta["quantity"])
}

func TestLedger_RecordRejectsInvalidInputWithoutWriting(t *testing.T) {
	f := newFixture(t)
	auditBefore := len(f.audit(t))
	nan := math.NaN()
	negative := -1.0
	hugeCost := 1e15

	tests := []struct {
		name string
		user models.CurrentUser
		in   services.RecordMovementInput
		want error
	}{
		{"missing item", f.founder, services.RecordMovementInput{Kind: "IN", Quantity: 1}, domain.ErrValidation},
		{"unknown kind", f.founder, services.RecordMovementInput{ItemID: f.item.ID, Kind: "MOVE", Quantity: 1}, domain.ErrInvalidKind},
		{"zero quantity", f.founder, services.RecordMovementInput{ItemID: f.item.ID, Kind: "IN", Quantity: 0}, domain.ErrInvalidQuantity},
		{"negative quantity", f.founder, services.RecordMovementInput{ItemID: f.item.ID, Kind: "OUT", Quantity: -3}, domain.ErrInvalidQuantity},
		{"NaN quantity", f.founder, services.RecordMovementInput{ItemID: f.item.ID, Kind: "IN", Quantity: nan}, domain.ErrInvalidQuantity},
		{"infinite quantity", f.founder, services.RecordMovementInput{ItemID: f.item.ID, Kind: "IN", Quantity: math.Inf(1)}, domain.ErrInvalidQuantity},
		{"quantity below storage scale", f.founder, services.RecordMovementInput{ItemID: f.item.ID, Kind: "IN", Quantity: 1e-7}, domain.ErrInvalidQuantity},
		{"quantity with seven decimals", f.founder, services.RecordMovementInput{ItemID: f.item.ID, Kind: "IN", Quantity: 1.0000004}, domain.ErrInvalidQuantity},
		{"quantity overflowing storage", f.founder, services.RecordMovementInput{ItemID: f.item.ID, Kind: "IN", Quantity: 1e15}, domain.ErrInvalidQuantity},
		{"unit cost overflowing storage", f.founder, services.RecordMovementInput{ItemID: f.item.ID, Kind: "IN", Quantity: 1, UnitCost: &hugeCost}, domain.ErrInvalidCost},
		{"negative unit cost", f.founder, services.RecordMovementInput{ItemID: f.item.ID, Kind: "IN", Quantity: 1, UnitCost: &negative}, domain.ErrInvalidCost},
		{"chef into warehouse", f.chefA, services.RecordMovementInput{ItemID: f.item.ID, Kind: "IN", Quantity: 1, Owner: models.Warehouse()}, domain.ErrOwnerForbidden},
		{"chef into other kitchen", f.chefA, services.RecordMovementInput{ItemID: f.item.ID, Kind: "IN", Quantity: 1, Owner: f.chefB.Owner()}, domain.ErrOwnerForbidden},
		{"validation before policy", f.chefA, services.RecordMovementInput{ItemID: f.item.ID, Kind: "IN", Quantity: 0, Owner: models.Warehouse()}, domain.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svcs.Ledger.Record(context.Background(), tt.user, tt.in)
			require.ErrorIs(t, err, tt.want)
		})
	}

	assert.Empty(t, f.movements(t))
	assert.Len(t, f.audit(t), auditBefore)
}

func TestLedger_ChefsAreIsolated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.record(t, f.chefA, "IN", 4, f.chefA.Owner())
	f.record(t, f.chefB, "IN", 9, f.chefB.Owner())
	f.record(t, f.founder, "IN", 50, models.Warehouse())

	own, err := f.svcs.Ledger.MovementsFor(ctx, f.chefA, f.chefA.Owner(), repositories.QueryOpts{})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, f.chefA.Owner(), own[0].Owner())

	_, err = f.svcs.Ledger.MovementsFor(ctx, f.chefA, f.chefB.Owner(), repositories.QueryOpts{})
	require.ErrorIs(t, err, domain.ErrOwnerForbidden)

	_, err = f.svcs.Ledger.MovementsFor(ctx, f.chefA, models.Warehouse(), repositories.QueryOpts{})
	require.ErrorIs(t, err, domain.ErrPermission)

	_, err = f.svcs.Ledger.OnHand(ctx, f.chefB, models.NewOwnerKey(f.item.ID, f.chefA.Owner()))
	require.ErrorIs(t, err, domain.ErrOwnerForbidden)

	_, err = f.svcs.Ledger.Overview(ctx, f.chefA, repositories.QueryOpts{})
	require.ErrorIs(t, err, domain.ErrOverviewForbidden)

	assert.Equal(t, "4", f.onHand(t, f.chefA.Owner()))
	assert.Equal(t, "9", f.onHand(t, f.chefB.Owner()))
	assert.Equal(t, "50", f.onHand(t, models.Warehouse()))

	chefAudit, err := f.svcs.Audit.List(ctx, f.chefA, repositories.QueryOpts{})
	require.NoError(t, err)
	require.Len(t, chefAudit, 1)
	assert.Equal(t, f.chefA.ChefID, chefAudit[0].ChefID)
}

func TestLedger_OverviewIsMostRecentFirstAndPaginated(t *testing.T) {
	f := newFixture(t)
	first := f.record(t, f.founder, "IN", 1, models.Warehouse())
	f.record(t, f.chefA, "IN", 2, f.chefA.Owner())
	last := f.record(t, f.founder, "IN", 3, models.Warehouse())

	all := f.movements(t)
	require.Len(t, all, 3)
	assert.Equal(t, last.ID, all[0].ID)
	assert.Equal(t, first.ID, all[2].ID)

	page, err := f.svcs.Ledger.Overview(context.Background(), f.founder, repositories.QueryOpts{Limit: 1, Offset: 2})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, first.ID, page[0].ID)
}

func TestLedger_ReverseOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.record(t, f.founder, "IN", 10, models.Warehouse())

	rev, err := f.svcs.Ledger.Reverse(ctx, f.founder, m.ID, "typo")
	require.NoError(t, err)
	assert.Equal(t, models.KindOut, rev.Kind)
	require.NotNil(t, rev.ReversesID)
	assert.Equal(t, m.ID, *rev.ReversesID)
	assert.Equal(t, "0", f.onHand(t, models.Warehouse()))

	_, err = f.svcs.Ledger.Reverse(ctx, f.founder, m.ID, "again")
	require.ErrorIs(t, err, domain.ErrMovementAlreadyReversed)

	_, err = f.svcs.Ledger.Reverse(ctx, f.founder, rev.ID, "undo the undo")
	require.ErrorIs(t, err, domain.ErrMovementAlreadyReversed)

	_, err = f.svcs.Ledger.Reverse(ctx, f.founder, uuid.New(), "")
	require.ErrorIs(t, err, domain.ErrNotFound)

	assert.Len(t, f.movements(t), 2)
	assert.Equal(t, models.ActionMovementReversed, f.audit(t)[0].Action)
}

func TestLedger_ReverseConcurrentCallsAppendOnce(t *testing.T) {
	f := newFixture(t)
	m := f.record(t, f.founder, "IN", 10, models.Warehouse())

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.svcs.Ledger.Reverse(context.Background(), f.founder, m.ID, ""); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Len(t, f.movements(t), 2)
}

func TestLedger_ReverseOfOtherKitchenIsForbidden(t *testing.T) {
	f := newFixture(t)
	m := f.record(t, f.chefA, "IN", 3, f.chefA.Owner())

	_, err := f.svcs.Ledger.Reverse(context.Background(), f.chefB, m.ID, "")
	require.ErrorIs(t, err, domain.ErrOwnerForbidden)
	assert.Len(t, f.movements(t), 1)
}

func TestLedger_CountStock(t *testing.T) {
	ctx := context.Background()

	t.Run("shortfall records OUT", func(t *testing.T) {
		f := newFixture(t)
		f.record(t, f.founder, "IN", 10, models.Warehouse())

		res, err := f.svcs.Ledger.CountStock(ctx, f.founder, services.CountInput{ItemID: f.item.ID, Owner: models.Warehouse(), Counted: 7})
		require.NoError(t, err)
		assert.Equal(t, "10", res.OnHandBefore.String())
		assert.Equal(t, "-3", res.Delta.String())
		require.NotNil(t, res.Movement)
		assert.Equal(t, models.KindOut, res.Movement.Kind)
		assert.Equal(t, "3", res.Movement.Quantity.String())
		assert.Equal(t, "7", f.onHand(t, models.Warehouse()))
		assert.Equal(t, models.ActionStockCounted, f.audit(t)[0].Action)
	})

	t.Run("surplus records IN", func(t *testing.T) {
		f := newFixture(t)
		res, err := f.svcs.Ledger.CountStock(ctx, f.chefA, services.CountInput{ItemID: f.item.ID, Owner: f.chefA.Owner(), Counted: 2.25})
		require.NoError(t, err)
		require.NotNil(t, res.Movement)
		assert.Equal(t, models.KindIn, res.Movement.Kind)
		assert.Equal(t, "2.25", f.onHand(t, f.chefA.Owner()))
	})

	t.Run("match records ADJUST marker", func(t *testing.T) {
		f := newFixture(t)
		f.record(t, f.founder, "IN", 4, models.Warehouse())
		res, err := f.svcs.Ledger.CountStock(ctx, f.founder, services.CountInput{ItemID: f.item.ID, Owner: models.Warehouse(), Counted: 4})
		require.NoError(t, err)
		require.NotNil(t, res.Movement)
		assert.Equal(t, models.KindAdjust, res.Movement.Kind)
		assert.Equal(t, "4", f.onHand(t, models.Warehouse()))
	})

	t.Run("zero on empty key records nothing", func(t *testing.T) {
		f := newFixture(t)
		auditBefore := len(f.audit(t))
		res, err := f.svcs.Ledger.CountStock(ctx, f.founder, services.CountInput{ItemID: f.item.ID, Owner: models.Warehouse(), Counted: 0})
		require.NoError(t, err)
		assert.Nil(t, res.Movement)
		assert.Empty(t, f.movements(t))
		assert.Len(t, f.audit(t), auditBefore)
	})

	t.Run("rejections", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svcs.Ledger.CountStock(ctx, f.founder, services.CountInput{ItemID: f.item.ID, Counted: -1})
		require.ErrorIs(t, err, domain.ErrValidation)
		_, err = f.svcs.Ledger.CountStock(ctx, f.founder, services.CountInput{Counted: 1})
		require.ErrorIs(t, err, domain.ErrValidation)
		_, err = f.svcs.Ledger.CountStock(ctx, f.founder, services.CountInput{ItemID: f.item.ID, Counted: 1.0000004})
		require.ErrorIs(t, err, domain.ErrValidation)
		_, err = f.svcs.Ledger.CountStock(ctx, f.chefA, services.CountInput{ItemID: f.item.ID, Owner: f.chefB.Owner(), Counted: 1})
		require.ErrorIs(t, err, domain.ErrOwnerForbidden)
		assert.Empty(t, f.movements(t))
	})
}

func TestLedger_LowStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svcs.Catalog.CreateItem(ctx, f.founder, services.ItemInput{Name: "Salt", Unit: "g"})
	require.NoError(t, err)
	one := 1.0
	butter, err := f.svcs.Catalog.CreateItem(ctx, f.founder, services.ItemInput{Name: "Butter", Unit: "kg", MinStock: &one})
	require.NoError(t, err)

	f.record(t, f.chefA, "IN", 3, f.chefA.Owner())
	f.record(t, f.founder, "IN", 20, models.Warehouse())

	lines, err := f.svcs.Ledger.LowStock(ctx, f.chefA, f.chefA.Owner())
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "Butter", lines[0].Item.Name.String())
	assert.Equal(t, "0", lines[0].OnHand.String())
	assert.Equal(t, "Flour", lines[1].Item.Name.String())
	assert.Equal(t, "3", lines[1].OnHand.String())

	_, err = f.svcs.Ledger.Record(ctx, f.chefA, services.RecordMovementInput{ItemID: butter.ID, Kind: "IN", Quantity: 1, Owner: f.chefA.Owner()})
	require.NoError(t, err)

	lines, err = f.svcs.Ledger.LowStock(ctx, f.chefA, f.chefA.Owner())
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, f.item.ID, lines[0].Item.ID)

	warehouse, err := f.svcs.Ledger.LowStock(ctx, f.founder, models.Warehouse())
	require.NoError(t, err)
	require.Len(t, warehouse, 1)
	assert.Equal(t, butter.ID, warehouse[0].Item.ID)

	_, err = f.svcs.Ledger.LowStock(ctx, f.chefA, models.Warehouse())
	require.ErrorIs(t, err, domain.ErrOwnerForbidden)
}

func TestLedger_ImportIsAtomic(t *testing.T) {
	ctx := context.Background()

	t.Run("valid batch", func(t *testing.T) {
		f := newFixture(t)
		auditBefore := len(f.audit(t))
		ms, err := f.svcs.Ledger.Import(ctx, f.founder, []services.RecordMovementInput{
			{ItemID: f.item.ID, Kind: "IN", Quantity: 10.5, Owner: models.Warehouse()},
			{ItemID: f.item.ID, Kind: "OUT", Quantity: 3, Owner: models.Warehouse()},
			{ItemID: f.item.ID, Kind: "IN", Quantity: 2, Owner: f.chefA.Owner()},
		})
		require.NoError(t, err)
		require.Len(t, ms, 3)
		assert.Equal(t, "7.5", f.onHand(t, models.Warehouse()))
		assert.Equal(t, "2", f.onHand(t, f.chefA.Owner()))

		entries := f.audit(t)
		require.Len(t, entries, auditBefore+3)
		assert.Equal(t, "import", entries[0].Meta["source"])
	})

	t.Run("one invalid row applies nothing", func(t *testing.T) {
		f := newFixture(t)
		auditBefore := len(f.audit(t))
		_, err := f.svcs.Ledger.Import(ctx, f.founder, []services.RecordMovementInput{
			{ItemID: f.item.ID, Kind: "IN", Quantity: 10, Owner: models.Warehouse()},
			{ItemID: f.item.ID, Kind: "IN", Quantity: -1, Owner: models.Warehouse()},
		})
		require.ErrorIs(t, err, domain.ErrInvalidQuantity)
		assert.Contains(t, err.Error(), "movement 1")
		assert.Empty(t, f.movements(t))
		assert.Len(t, f.audit(t), auditBefore)
	})

	t.Run("one forbidden row applies nothing", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svcs.Ledger.Import(ctx, f.chefA, []services.RecordMovementInput{
			{ItemID: f.item.ID, Kind: "IN", Quantity: 1, Owner: f.chefA.Owner()},
			{ItemID: f.item.ID, Kind: "IN", Quantity: 1, Owner: f.chefB.Owner()},
		})
		require.ErrorIs(t, err, domain.ErrOwnerForbidden)
		assert.Empty(t, f.movements(t))
	})

	t.Run("empty batch", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svcs.Ledger.Import(ctx, f.founder, nil)
		require.ErrorIs(t, err, domain.ErrEmptyBatch)
	})
}

func TestLedger_CachedBalanceIsInvalidatedOnAppend(t *testing.T) {
	f := newFixture(t)
	f.record(t, f.founder, "IN", 5, models.Warehouse())

	assert.Equal(t, "5", f.onHand(t, models.Warehouse()))
	assert.Equal(t, "5", f.onHand(t, models.Warehouse()))

	m := f.record(t, f.founder, "OUT", 2, models.Warehouse())
	assert.Equal(t, "3", f.onHand(t, models.Warehouse()))

	_, err := f.svcs.Ledger.Reverse(context.Background(), f.founder, m.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "5", f.onHand(t, models.Warehouse()))
}

func TestLedger_StatusSkipsPolicyAndReportsDeletedItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.record(t, f.chefA, "IN", 2, f.chefA.Owner())

	line, err := f.svcs.Ledger.Status(ctx, models.NewOwnerKey(f.item.ID, f.chefA.Owner()))
	require.NoError(t, err)
	assert.Equal(t, "2", line.OnHand.String())
	assert.Equal(t, f.chefA.Owner(), line.Owner)

	require.NoError(t, f.svcs.Catalog.DeleteItem(ctx, f.founder, f.item.ID))
	_, err = f.svcs.Ledger.Status(ctx, models.NewOwnerKey(f.item.ID, f.chefA.Owner()))
	require.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestLedger_ReturnedMovementCannotRewriteTheLedger(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	m := f.record(t, f.chefA, "IN", 10, f.chefA.Owner())
	id, createdAt := m.ID, m.CreatedAt

	m.Quantity = m.Quantity.Mul(m.Quantity)
	m.Kind = models.KindOut
	*m.ChefID = *f.chefB.ChefID
	m.CreatedAt = m.CreatedAt.Add(-time.Hour)

	own, err := f.svcs.Ledger.MovementsFor(ctx, f.chefA, f.chefA.Owner(), repositories.QueryOpts{})
	require.NoError(t, err)
	require.Len(t, own, 1)
	stored := own[0]
	assert.Equal(t, id, stored.ID)
	assert.Equal(t, models.KindIn, stored.Kind)
	assert.Equal(t, "10", stored.Quantity.String())
	assert.Equal(t, f.chefA.ChefID, stored.ChefID)
	assert.True(t, createdAt.Equal(stored.CreatedAt))

	assert.Equal(t, "10", f.onHand(t, f.chefA.Owner()))
	assert.Equal(t, "0", f.onHand(t, f.chefB.Owner()))

	// Mutating a listed copy is just as harmless.
	own[0].Quantity = own[0].Quantity.Neg()
	assert.Equal(t, "10", f.onHand(t, f.chefA.Owner()))
}

func TestLedger_ImportWithFixedIDsIsAppliedOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	auditBefore := len(f.audit(t))

	batch := []services.RecordMovementInput{
		{ID: uuid.New(), ItemID: f.item.ID, Kind: "IN", Quantity: 10, Owner: models.Warehouse()},
		{ID: uuid.New(), ItemID: f.item.ID, Kind: "OUT", Quantity: 3, Owner: models.Warehouse()},
	}
	first, err := f.svcs.Ledger.Import(ctx, f.founder, batch)
	require.NoError(t, err)
	again, err := f.svcs.Ledger.Import(ctx, f.founder, batch)
	require.NoError(t, err)

	require.Len(t, again, 2)
	for i := range first {
		assert.Equal(t, batch[i].ID, first[i].ID)
		assert.Equal(t, first[i].ID, again[i].ID)
	}
	assert.Equal(t, "7", f.onHand(t, models.Warehouse()))
	assert.Len(t, f.movements(t), 2)
	assert.Len(t, f.audit(t), auditBefore+2)
}
