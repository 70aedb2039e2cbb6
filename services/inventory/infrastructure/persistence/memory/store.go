// Package memory implements the inventory repositories on an in-process
// store. It backs STORAGE_DRIVER=memory and the application service tests.
//
// A transaction holds the store's write lock from start to finish and keeps
// an undo journal; a failed transaction replays the journal backwards, so
// other readers never observe its writes.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/ghuser/larder/services/inventory/domain/models"
)

// Store owns every inventory table. Create one with NewStore and share it
// between the repositories of one process.
type Store struct {
	mu sync.RWMutex

	items     map[uuid.UUID]models.Item
	vendors   map[uuid.UUID]models.Vendor
	chefs     map[uuid.UUID]models.Chef
	movements []models.StockMovement // append order
	audit     []models.AuditEntry    // append order
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		items:   make(map[uuid.UUID]models.Item),
		vendors: make(map[uuid.UUID]models.Vendor),
		chefs:   make(map[uuid.UUID]models.Chef),
	}
}

type txKey struct{}

type txState struct {
	store *Store
	undo  []func()
}

func (t *txState) rollback() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

// RunInTx runs fn with exclusive access to the store. A nested call joins the
// outer transaction. An error or panic from fn undoes every write fn made.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := &txState{store: s}
	defer func() {
		if r := recover(); r != nil {
			t.rollback()
			panic(r)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, t)); err != nil {
		t.rollback()
		return err
	}
	return nil
}

func (s *Store) inTx(ctx context.Context) bool {
	t, ok := ctx.Value(txKey{}).(*txState)
	return ok && t.store == s
}

// read runs fn under the read lock, or directly when ctx already holds the
// write lock through a transaction.
func (s *Store) read(ctx context.Context, fn func()) {
	if s.inTx(ctx) {
		fn()
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn()
}

// write runs fn inside the ctx transaction, or a transaction of its own, and
// records the undo func it returns.
func (s *Store) write(ctx context.Context, fn func() (undo func(), err error)) error {
	return s.RunInTx(ctx, func(ctx context.Context) error {
		undo, err := fn()
		if err != nil {
			return err
		}
		t := ctx.Value(txKey{}).(*txState)
		t.undo = append(t.undo, undo)
		return nil
	})
}
