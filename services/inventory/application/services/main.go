package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/ghuser/larder/pkg/app"
	"github.com/ghuser/larder/pkg/cache"
	"github.com/ghuser/larder/pkg/config"
	"github.com/ghuser/larder/services/inventory/domain/repositories"
	"github.com/ghuser/larder/services/inventory/infrastructure/persistence/memory"
	"github.com/ghuser/larder/services/inventory/infrastructure/persistence/postgres"
)

// OnHandCache memoizes folded balances per owner key. Every write bumps the
// key's version; a value is only stored if the version it was computed under
// is still current, so a fold that raced an append is never cached.
type OnHandCache interface {
	Version(ctx context.Context, key string) (int64, error)
	Get(ctx context.Context, key string) (decimal.Decimal, bool, error)
	SetIfVersion(ctx context.Context, key string, version int64, value decimal.Decimal) error
	Invalidate(ctx context.Context, key string) error
}

// KeyLocker serializes read-modify-write operations on one owner key.
type KeyLocker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// Repositories bundles the persistence ports of the inventory context.
type Repositories struct {
	Tx        repositories.Transactor
	Items     repositories.ItemRepository
	Vendors   repositories.VendorRepository
	Chefs     repositories.ChefRepository
	Movements repositories.MovementRepository
	Audit     repositories.AuditRepository
}

// MemoryRepositories returns Repositories backed by one in-memory store.
func MemoryRepositories(store *memory.Store) Repositories {
	return Repositories{
		Tx:        store,
		Items:     memory.NewItemRepository(store),
		Vendors:   memory.NewVendorRepository(store),
		Chefs:     memory.NewChefRepository(store),
		Movements: memory.NewMovementRepository(store),
		Audit:     memory.NewAuditRepository(store),
	}
}

// Services is the application-layer service container for this bounded context.
// It wires domain services with their infrastructure implementations.
type Services struct {
	Catalog *CatalogService
	Ledger  *LedgerService
	Audit   *AuditService
}

// New wires all inventory application services with infrastructure from the
// Application container. Postgres is used unless the memory driver is
// configured; Redis backs the on-hand cache and key locks when available.
func New(a *app.Application) *Services {
	var repos Repositories
	if a.Db == nil || (a.Config != nil && a.Config.StorageDriver == config.StorageMemory) {
		repos = MemoryRepositories(memory.NewStore())
	} else {
		repos = Repositories{
			Tx:        a.Db,
			Items:     postgres.NewItemRepository(a.Db),
			Vendors:   postgres.NewVendorRepository(a.Db),
			Chefs:     postgres.NewChefRepository(a.Db),
			Movements: postgres.NewMovementRepository(a.Db, a.EventBus),
			Audit:     postgres.NewAuditRepository(a.Db),
		}
	}

	var (
		onHand OnHandCache = cache.NewLocalOnHandCache()
		locker KeyLocker   = cache.NewLocalLocker()
	)
	if a.Redis != nil {
		onHand = cache.NewOnHandCache(a.Redis)
		locker = cache.NewRedisLocker(a.Redis)
	}

	return NewWithRepositories(repos, onHand, locker, a)
}

// NewWithRepositories wires the services on explicit repositories, cache and
// locker. Tests use it with the memory store.
func NewWithRepositories(repos Repositories, onHand OnHandCache, locker KeyLocker, a *app.Application) *Services {
	audit := NewAuditService(repos.Audit)
	return &Services{
		Catalog: NewCatalogService(repos, audit, a.Logger),
		Ledger:  NewLedgerService(repos, audit, onHand, locker, a.Logger),
		Audit:   audit,
	}
}
