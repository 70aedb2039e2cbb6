package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/ghuser/larder/services/inventory/domain/models"
)

// QueryOpts contains pagination parameters for list queries.
type QueryOpts struct {
	Limit  int // Maximum number of records to return; 0 means no limit
	Offset int // Number of records to skip
}

// Paginate applies opts to an already filtered slice.
func Paginate[T any](rows []T, opts QueryOpts) []T {
	if opts.Offset >= len(rows) {
		return []T{}
	}
	rows = rows[max(opts.Offset, 0):]
	if opts.Limit > 0 && opts.Limit < len(rows) {
		rows = rows[:opts.Limit]
	}
	return rows
}

// Transactor runs fn atomically: every repository call made with the ctx passed
// to fn either commits together or not at all.
type Transactor interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ItemRepository is the persistence interface for catalog items.
// The domain layer owns these interfaces; infrastructure implements them.
type ItemRepository interface {
	Save(ctx context.Context, item *models.Item) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
	List(ctx context.Context) ([]models.Item, error)
	Update(ctx context.Context, item *models.Item) error

	// Delete removes the catalog row. Movements referencing it are untouched.
	Delete(ctx context.Context, id uuid.UUID) error
}

// VendorRepository is the persistence interface for vendors.
type VendorRepository interface {
	Save(ctx context.Context, vendor *models.Vendor) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
	List(ctx context.Context) ([]models.Vendor, error)
	Update(ctx context.Context, vendor *models.Vendor) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ChefRepository is the persistence interface for chefs.
type ChefRepository interface {
	Save(ctx context.Context, chef *models.Chef) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Chef, error)
	List(ctx context.Context) ([]models.Chef, error)
	Update(ctx context.Context, chef *models.Chef) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// MovementRepository is the append-only store of stock movements.
// There is intentionally no Update or Delete.
type MovementRepository interface {
	Append(ctx context.Context, m *models.StockMovement) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.StockMovement, error)

	// ListByKey returns every movement of one (item, owner) partition.
	ListByKey(ctx context.Context, key models.OwnerKey) ([]models.StockMovement, error)

	// ListByOwner returns the movements of one owner, most recent first.
	ListByOwner(ctx context.Context, owner models.Owner) ([]models.StockMovement, error)

	// ListAll returns every movement of every owner, most recent first.
	ListAll(ctx context.Context) ([]models.StockMovement, error)

	// FindReversal returns the compensating entry of id, or ErrMovementNotFound.
	FindReversal(ctx context.Context, id uuid.UUID) (*models.StockMovement, error)
}

// AuditRepository is the append-only store of audit entries.
type AuditRepository interface {
	Append(ctx context.Context, e *models.AuditEntry) error

	// List returns every entry, most recent first.
	List(ctx context.Context) ([]models.AuditEntry, error)
}
