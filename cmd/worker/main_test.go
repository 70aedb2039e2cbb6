package main

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghuser/larder/pkg/app"
	"github.com/ghuser/larder/pkg/cache"
	"github.com/ghuser/larder/pkg/config"
	"github.com/ghuser/larder/pkg/events"
	"github.com/ghuser/larder/pkg/logger"
	appsvcs "github.com/ghuser/larder/services/inventory/application/services"
	inventoryEvents "github.com/ghuser/larder/services/inventory/domain/events"
	"github.com/ghuser/larder/services/inventory/domain/models"
	"github.com/ghuser/larder/services/inventory/infrastructure/persistence/memory"
)

// warnRecorder keeps the messages passed to WarnContext.
type warnRecorder struct {
	logger.Logger
	mu    sync.Mutex
	warns []string
}

func (w *warnRecorder) WarnContext(_ context.Context, msg string, _ ...any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.warns = append(w.warns, msg)
}

func newRecorder() *warnRecorder {
	return &warnRecorder{Logger: logger.New(&config.Config{LogLevel: "error"})}
}

func movementMessage(t *testing.T, m models.StockMovement) *message.Message {
	t.Helper()
	payload, err := json.Marshal(inventoryEvents.NewMovementRecorded(m))
	require.NoError(t, err)
	return message.NewMessage(watermill.NewUUID(), payload)
}

func setup(t *testing.T) (*appsvcs.Services, models.CurrentUser, *models.Item) {
	t.Helper()
	svcs := appsvcs.NewWithRepositories(
		appsvcs.MemoryRepositories(memory.NewStore()),
		cache.NewLocalOnHandCache(),
		cache.NewLocalLocker(),
		&app.Application{Logger: logger.New(&config.Config{LogLevel: "error"})},
	)
	founder, err := models.NewCurrentUser(uuid.New(), models.RoleFounder, nil)
	require.NoError(t, err)
	minStock := 5.0
	item, err := svcs.Catalog.CreateItem(context.Background(), founder, appsvcs.ItemInput{Name: "Butter", Unit: "kg", MinStock: &minStock})
	require.NoError(t, err)
	return svcs, founder, item
}

func TestHandleMovementRecorded_WarnsBelowMinimum(t *testing.T) {
	tests := []struct {
		name     string
		quantity float64
		wantWarn bool
	}{
		{"below minimum", 3, true},
		{"at minimum", 5, false},
		{"above minimum", 12, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			svcs, founder, item := setup(t)
			m, err := svcs.Ledger.Record(ctx, founder, appsvcs.RecordMovementInput{
				ItemID: item.ID, Kind: "IN", Quantity: tt.quantity, Owner: models.Warehouse(),
			})
			require.NoError(t, err)

			rec := newRecorder()
			err = handleMovementRecorded(svcs.Ledger, rec)(ctx, movementMessage(t, *m))
			require.NoError(t, err)

			if tt.wantWarn {
				assert.Equal(t, []string{"stock below minimum"}, rec.warns)
			} else {
				assert.Empty(t, rec.warns)
			}
		})
	}
}

func TestHandleMovementRecorded_DeletedItemIsSkipped(t *testing.T) {
	ctx := context.Background()
	svcs, founder, item := setup(t)
	m, err := svcs.Ledger.Record(ctx, founder, appsvcs.RecordMovementInput{
		ItemID: item.ID, Kind: "IN", Quantity: 1, Owner: models.Warehouse(),
	})
	require.NoError(t, err)
	require.NoError(t, svcs.Catalog.DeleteItem(ctx, founder, item.ID))

	rec := newRecorder()
	assert.NoError(t, handleMovementRecorded(svcs.Ledger, rec)(ctx, movementMessage(t, *m)))
	assert.Empty(t, rec.warns)
}

func TestHandleMovementRecorded_MalformedPayloadIsDropped(t *testing.T) {
	svcs, _, _ := setup(t)
	msg := message.NewMessage(watermill.NewUUID(), []byte("{not json"))
	err := handleMovementRecorded(svcs.Ledger, newRecorder())(context.Background(), msg)
	require.Error(t, err)
	assert.True(t, events.IsPermanent(err), "malformed payloads are never retried")
}

type failingStatus struct{ err error }

func (f failingStatus) Status(context.Context, models.OwnerKey) (appsvcs.StockLine, error) {
	return appsvcs.StockLine{}, f.err
}

func TestHandleMovementRecorded_StoreErrorIsRetried(t *testing.T) {
	boom := errors.New("connection reset")
	m := models.StockMovement{ID: uuid.New(), ItemID: uuid.New(), Kind: models.KindIn}

	err := handleMovementRecorded(failingStatus{err: boom}, newRecorder())(context.Background(), movementMessage(t, m))
	assert.ErrorIs(t, err, boom)
	assert.False(t, events.IsPermanent(err))
}
