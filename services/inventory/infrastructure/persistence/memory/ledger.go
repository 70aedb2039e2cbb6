package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ghuser/larder/services/inventory/domain"
	"github.com/ghuser/larder/services/inventory/domain/models"
)

// MovementRepository implements repositories.MovementRepository on a Store.
// Stored movements are never modified; callers only ever receive copies.
type MovementRepository struct{ s *Store }

// NewMovementRepository returns a MovementRepository backed by s.
func NewMovementRepository(s *Store) *MovementRepository { return &MovementRepository{s: s} }

// Append adds m to the ledger. A second compensating entry for the same
// movement is rejected with ErrMovementAlreadyReversed.
func (r *MovementRepository) Append(ctx context.Context, m *models.StockMovement) error {
	return r.s.write(ctx, func() (func(), error) {
		for _, existing := range r.s.movements {
			if existing.ID == m.ID {
				return nil, fmt.Errorf("movement %s: %w", m.ID, domain.ErrAlreadyExists)
			}
			if m.ReversesID != nil && existing.ReversesID != nil && *existing.ReversesID == *m.ReversesID {
				return nil, domain.ErrMovementAlreadyReversed
			}
		}
		n := len(r.s.movements)
		r.s.movements = append(r.s.movements, m.Clone())
		return func() { r.s.movements = r.s.movements[:n] }, nil
	})
}

// GetByID returns a copy of the movement, or ErrMovementNotFound.
func (r *MovementRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.StockMovement, error) {
	return r.find(ctx, func(m models.StockMovement) bool { return m.ID == id }, id)
}

// FindReversal returns the compensating entry of id, or ErrMovementNotFound.
func (r *MovementRepository) FindReversal(ctx context.Context, id uuid.UUID) (*models.StockMovement, error) {
	return r.find(ctx, func(m models.StockMovement) bool {
		return m.ReversesID != nil && *m.ReversesID == id
	}, id)
}

func (r *MovementRepository) find(ctx context.Context, match func(models.StockMovement) bool, id uuid.UUID) (*models.StockMovement, error) {
	var (
		found models.StockMovement
		ok    bool
	)
	r.s.read(ctx, func() {
		for _, m := range r.s.movements {
			if match(m) {
				found, ok = m.Clone(), true
				return
			}
		}
	})
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrMovementNotFound, id)
	}
	return &found, nil
}

// ListByKey returns the movements of one (item, owner) partition in append order.
func (r *MovementRepository) ListByKey(ctx context.Context, key models.OwnerKey) ([]models.StockMovement, error) {
	return r.collect(ctx, func(m models.StockMovement) bool { return m.Key() == key }, false), nil
}

// ListByOwner returns the movements of owner, most recent first.
func (r *MovementRepository) ListByOwner(ctx context.Context, owner models.Owner) ([]models.StockMovement, error) {
	return r.collect(ctx, func(m models.StockMovement) bool { return m.Owner() == owner }, true), nil
}

// ListAll returns every movement, most recent first.
func (r *MovementRepository) ListAll(ctx context.Context) ([]models.StockMovement, error) {
	return r.collect(ctx, func(models.StockMovement) bool { return true }, true), nil
}

// collect copies matching movements. Append order is creation order, so
// newestFirst only has to walk the slice backwards.
func (r *MovementRepository) collect(ctx context.Context, keep func(models.StockMovement) bool, newestFirst bool) []models.StockMovement {
	out := []models.StockMovement{}
	r.s.read(ctx, func() {
		n := len(r.s.movements)
		for i := range n {
			m := r.s.movements[i]
			if newestFirst {
				m = r.s.movements[n-1-i]
			}
			if keep(m) {
				out = append(out, m.Clone())
			}
		}
	})
	return out
}

// AuditRepository implements repositories.AuditRepository on a Store.
type AuditRepository struct{ s *Store }

// NewAuditRepository returns an AuditRepository backed by s.
func NewAuditRepository(s *Store) *AuditRepository { return &AuditRepository{s: s} }

// Append adds e to the audit log.
func (r *AuditRepository) Append(ctx context.Context, e *models.AuditEntry) error {
	return r.s.write(ctx, func() (func(), error) {
		n := len(r.s.audit)
		r.s.audit = append(r.s.audit, e.Clone())
		return func() { r.s.audit = r.s.audit[:n] }, nil
	})
}

// List returns every entry, most recent first.
func (r *AuditRepository) List(ctx context.Context) ([]models.AuditEntry, error) {
	var out []models.AuditEntry
	r.s.read(ctx, func() {
		out = make([]models.AuditEntry, 0, len(r.s.audit))
		for i := len(r.s.audit) - 1; i >= 0; i-- {
			out = append(out, r.s.audit[i].Clone())
		}
	})
	return out, nil
}
