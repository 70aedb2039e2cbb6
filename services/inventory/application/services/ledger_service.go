package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"github.com/ghuser/larder/pkg/logger"
	"github.com/ghuser/larder/services/inventory/domain"
	"github.com/ghuser/larder/services/inventory/domain/models"
	"github.com/ghuser/larder/services/inventory/domain/repositories"
	domainsvcs "github.com/ghuser/larder/services/inventory/domain/services"
)

const lowStockConcurrency = 8

// RecordMovementInput is a caller's request to append one movement.
type RecordMovementInput struct {
	// ID is optional. Import callers that may retry set it so a replayed
	// batch is recognized instead of appended again.
	ID       uuid.UUID
	ItemID   uuid.UUID
	VendorID *uuid.UUID
	Kind     string
	Quantity float64
	UnitCost *float64
	Owner    models.Owner
	Note     string
}

// CountInput is a physical stock count for one (item, owner) key.
type CountInput struct {
	ItemID  uuid.UUID
	Owner   models.Owner
	Counted float64
	Note    string
}

// CountResult reports how a physical count was reconciled against the ledger.
// Movement is nil when nothing had to be recorded.
type CountResult struct {
	OnHandBefore decimal.Decimal
	Counted      decimal.Decimal
	Delta        decimal.Decimal
	Movement     *models.StockMovement
}

// StockLine is the balance of one item under one owner.
type StockLine struct {
	Item   models.Item
	Owner  models.Owner
	OnHand decimal.Decimal
}

// LedgerService is the movement ledger: it appends immutable movements and
// is the only component that folds them into on-hand balances.
type LedgerService struct {
	tx        repositories.Transactor
	movements repositories.MovementRepository
	items     repositories.ItemRepository
	audit     *AuditService
	cache     OnHandCache
	locker    KeyLocker
	log       logger.Logger
	metrics   ledgerMetrics
}

// NewLedgerService returns a LedgerService. cache and locker must not be nil;
// use the in-process implementations from pkg/cache when Redis is absent.
func NewLedgerService(repos Repositories, audit *AuditService, cache OnHandCache, locker KeyLocker, log logger.Logger) *LedgerService {
	return &LedgerService{
		tx:        repos.Tx,
		movements: repos.Movements,
		items:     repos.Items,
		audit:     audit,
		cache:     cache,
		locker:    locker,
		log:       log,
		metrics:   newLedgerMetrics(),
	}
}

// Record validates in, checks the caller may write to in.Owner, and appends
// one movement together with its audit entry. Validation runs before the
// policy check so malformed input is always reported as such.
func (s *LedgerService) Record(ctx context.Context, user models.CurrentUser, in RecordMovementInput) (*models.StockMovement, error) {
	m, err := s.build(user, in)
	if err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.movements.Append(ctx, m); err != nil {
			return fmt.Errorf("append movement: %w", err)
		}
		_, err := s.audit.LogFor(ctx, user, models.ActionMovementRecorded, &m.ID, movementMeta(m))
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, m.Key())
	s.metrics.record(ctx, m)
	s.log.InfoContext(ctx, "movement recorded",
		"movement_id", m.ID,
		"item_id", m.ItemID,
		"owner", m.Owner().String(),
		"kind", m.Kind,
		"quantity", m.Quantity.String(),
	)
	return m, nil
}

// OnHand returns the folded balance of key.
func (s *LedgerService) OnHand(ctx context.Context, user models.CurrentUser, key models.OwnerKey) (decimal.Decimal, error) {
	if !domainsvcs.CanAccessOwner(user, key.Owner) {
		return decimal.Zero, domain.ErrOwnerForbidden
	}
	return s.onHand(ctx, key)
}

// Status returns the balance of key together with its catalog row. It skips
// the access policy and is meant for trusted internal consumers such as the
// event worker. A deleted item yields ErrItemNotFound.
func (s *LedgerService) Status(ctx context.Context, key models.OwnerKey) (StockLine, error) {
	item, err := s.items.GetByID(ctx, key.ItemID)
	if err != nil {
		return StockLine{}, fmt.Errorf("get item: %w", err)
	}
	onHand, err := s.onHand(ctx, key)
	if err != nil {
		return StockLine{}, err
	}
	return StockLine{Item: *item, Owner: key.Owner, OnHand: onHand}, nil
}

// onHand serves the balance from the cache when the cached value was written
// under the current version, and otherwise folds the key's movements.
func (s *LedgerService) onHand(ctx context.Context, key models.OwnerKey) (decimal.Decimal, error) {
	ck := key.String()

	version, verr := s.cache.Version(ctx, ck)
	if verr != nil {
		s.log.WarnContext(ctx, "on-hand cache version lookup failed", "key", ck, "error", verr)
	} else if v, ok, err := s.cache.Get(ctx, ck); err != nil {
		s.log.WarnContext(ctx, "on-hand cache read failed", "key", ck, "error", err)
	} else if ok {
		return v, nil
	}

	movements, err := s.movements.ListByKey(ctx, key)
	if err != nil {
		return decimal.Zero, fmt.Errorf("list movements: %w", err)
	}
	s.metrics.fold(ctx, len(movements))
	total := domainsvcs.OnHand(movements, key)

	if verr == nil {
		if err := s.cache.SetIfVersion(ctx, ck, version, total); err != nil {
			s.log.WarnContext(ctx, "on-hand cache write failed", "key", ck, "error", err)
		}
	}
	return total, nil
}

// MovementsFor returns the movements of owner, most recent first.
func (s *LedgerService) MovementsFor(ctx context.Context, user models.CurrentUser, owner models.Owner, opts repositories.QueryOpts) ([]models.StockMovement, error) {
	if !domainsvcs.CanAccessOwner(user, owner) {
		return nil, domain.ErrOwnerForbidden
	}
	movements, err := s.movements.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	return repositories.Paginate(movements, opts), nil
}

// Overview returns every movement of every owner, most recent first. Founder only.
func (s *LedgerService) Overview(ctx context.Context, user models.CurrentUser, opts repositories.QueryOpts) ([]models.StockMovement, error) {
	if !domainsvcs.CanViewOverview(user) {
		return nil, domain.ErrOverviewForbidden
	}
	movements, err := s.movements.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	return repositories.Paginate(movements, opts), nil
}

// Reverse appends the compensating entry of movement id. A movement can be
// reversed once; a compensating entry cannot be reversed.
func (s *LedgerService) Reverse(ctx context.Context, user models.CurrentUser, id uuid.UUID, note string) (*models.StockMovement, error) {
	original, err := s.movements.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get movement: %w", err)
	}
	if !domainsvcs.CanAccessOwner(user, original.Owner()) {
		return nil, domain.ErrOwnerForbidden
	}
	if original.IsReversal() {
		return nil, domain.ErrMovementAlreadyReversed
	}

	key := original.Key()
	unlock, err := s.locker.Lock(ctx, key.String())
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", key, err)
	}
	defer unlock()

	var reversal *models.StockMovement
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		_, err := s.movements.FindReversal(ctx, original.ID)
		switch {
		case err == nil:
			return domain.ErrMovementAlreadyReversed
		case !errors.Is(err, domain.ErrMovementNotFound):
			return fmt.Errorf("find reversal: %w", err)
		}

		rev, err := original.Reverse(user.ID, note)
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrMovementAlreadyReversed, err)
		}
		if err := s.movements.Append(ctx, rev); err != nil {
			return fmt.Errorf("append movement: %w", err)
		}
		meta := movementMeta(rev)
		meta["reverses"] = original.ID.String()
		if _, err := s.audit.LogFor(ctx, user, models.ActionMovementReversed, &rev.ID, meta); err != nil {
			return err
		}
		reversal = rev
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, key)
	s.metrics.record(ctx, reversal)
	return reversal, nil
}

// CountStock reconciles a physical count against the ledger. The difference
// is recorded as IN or OUT; a count that matches a non-zero balance is
// recorded as an ADJUST marker. Holds the key lock so the balance cannot move
// between the read and the append.
func (s *LedgerService) CountStock(ctx context.Context, user models.CurrentUser, in CountInput) (*CountResult, error) {
	if in.ItemID == uuid.Nil {
		return nil, fmt.Errorf("%w: item_id is required", domain.ErrValidation)
	}
	counted, err := models.AmountFromFloat(in.Counted)
	if err != nil {
		return nil, fmt.Errorf("%w: counted %w", domain.ErrValidation, err)
	}
	if !domainsvcs.CanAccessOwner(user, in.Owner) {
		return nil, domain.ErrOwnerForbidden
	}

	key := models.NewOwnerKey(in.ItemID, in.Owner)
	unlock, err := s.locker.Lock(ctx, key.String())
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", key, err)
	}
	defer unlock()

	result := &CountResult{Counted: counted}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		movements, err := s.movements.ListByKey(ctx, key)
		if err != nil {
			return fmt.Errorf("list movements: %w", err)
		}
		result.OnHandBefore = domainsvcs.OnHand(movements, key)
		result.Delta = counted.Sub(result.OnHandBefore)

		var kind models.MovementKind
		var qty decimal.Decimal
		switch {
		case result.Delta.IsPositive():
			kind, qty = models.KindIn, result.Delta
		case result.Delta.IsNegative():
			kind, qty = models.KindOut, result.Delta.Neg()
		case counted.IsPositive():
			kind, qty = models.KindAdjust, counted
		default:
			return nil
		}

		m, err := models.NewStockMovement(models.MovementParams{
			ItemID:    in.ItemID,
			Kind:      kind,
			Quantity:  qty,
			Owner:     in.Owner,
			Note:      in.Note,
			CreatedBy: user.ID,
		})
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrValidation, err)
		}
		if err := s.movements.Append(ctx, m); err != nil {
			return fmt.Errorf("append movement: %w", err)
		}
		meta := movementMeta(m)
		meta["on_hand_before"] = result.OnHandBefore.String()
		meta["counted"] = counted.String()
		meta["delta"] = result.Delta.String()
		if _, err := s.audit.LogFor(ctx, user, models.ActionStockCounted, &m.ID, meta); err != nil {
			return err
		}
		result.Movement = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Movement != nil {
		s.invalidate(ctx, key)
		s.metrics.record(ctx, result.Movement)
	}
	return result, nil
}

// LowStock returns the items of owner whose minimum-stock threshold is set
// and whose balance is below it, ordered by item name.
func (s *LedgerService) LowStock(ctx context.Context, user models.CurrentUser, owner models.Owner) ([]StockLine, error) {
	if !domainsvcs.CanAccessOwner(user, owner) {
		return nil, domain.ErrOwnerForbidden
	}
	items, err := s.items.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	var (
		mu    sync.Mutex
		lines []StockLine
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(lowStockConcurrency)
	for _, item := range items {
		if item.MinStock == nil {
			continue
		}
		g.Go(func() error {
			onHand, err := s.onHand(gctx, models.NewOwnerKey(item.ID, owner))
			if err != nil {
				return err
			}
			if domainsvcs.IsLow(item, onHand) {
				mu.Lock()
				lines = append(lines, StockLine{Item: item, Owner: owner, OnHand: onHand})
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(lines, func(i, j int) bool { return lines[i].Item.Name < lines[j].Item.Name })
	return lines, nil
}

// Import replays a batch of movements. Every entry is validated and
// authorized before anything is written; the batch is then appended in one
// transaction with one audit entry per movement. Any failure applies nothing.
func (s *LedgerService) Import(ctx context.Context, user models.CurrentUser, batch []RecordMovementInput) ([]*models.StockMovement, error) {
	if len(batch) == 0 {
		return nil, domain.ErrEmptyBatch
	}

	movements := make([]*models.StockMovement, 0, len(batch))
	for i, in := range batch {
		m, err := s.build(user, in)
		if err != nil {
			return nil, fmt.Errorf("movement %d: %w", i, err)
		}
		movements = append(movements, m)
	}

	var applied []*models.StockMovement
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if batch[0].ID != uuid.Nil {
			var err error
			if applied, err = s.appliedBatch(ctx, movements); err != nil || applied != nil {
				return err
			}
		}
		for i, m := range movements {
			if err := s.movements.Append(ctx, m); err != nil {
				return fmt.Errorf("movement %d: append: %w", i, err)
			}
			meta := movementMeta(m)
			meta["source"] = "import"
			if _, err := s.audit.LogFor(ctx, user, models.ActionMovementRecorded, &m.ID, meta); err != nil {
				return fmt.Errorf("movement %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if applied != nil {
		s.log.InfoContext(ctx, "import batch already applied", "count", len(applied), "actor_id", user.ID)
		return applied, nil
	}

	seen := make(map[models.OwnerKey]struct{}, len(movements))
	for _, m := range movements {
		s.metrics.record(ctx, m)
		if _, ok := seen[m.Key()]; ok {
			continue
		}
		seen[m.Key()] = struct{}{}
		s.invalidate(ctx, m.Key())
	}

	s.log.InfoContext(ctx, "movements imported", "count", len(movements), "actor_id", user.ID)
	return movements, nil
}

// appliedBatch returns the stored movements of batch when its first id is
// already in the ledger, or nil when the batch is new. Batches are appended
// in one transaction, so the first id decides for all of them.
func (s *LedgerService) appliedBatch(ctx context.Context, batch []*models.StockMovement) ([]*models.StockMovement, error) {
	if _, err := s.movements.GetByID(ctx, batch[0].ID); err != nil {
		if errors.Is(err, domain.ErrMovementNotFound) {
			return nil, nil
		}
		return nil, err
	}
	out := make([]*models.StockMovement, len(batch))
	for i, m := range batch {
		stored, err := s.movements.GetByID(ctx, m.ID)
		if err != nil {
			return nil, fmt.Errorf("movement %d: %w", i, err)
		}
		out[i] = stored
	}
	return out, nil
}

// build turns input into a movement, reporting validation errors before
// policy errors.
func (s *LedgerService) build(user models.CurrentUser, in RecordMovementInput) (*models.StockMovement, error) {
	if in.ItemID == uuid.Nil {
		return nil, fmt.Errorf("%w: item_id is required", domain.ErrValidation)
	}
	kind, err := models.ParseMovementKind(in.Kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidKind, err)
	}
	qty, err := models.QuantityFromFloat(in.Quantity)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidQuantity, err)
	}
	var cost *decimal.Decimal
	if in.UnitCost != nil {
		d, err := models.AmountFromFloat(*in.UnitCost)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidCost, err)
		}
		cost = &d
	}

	if !domainsvcs.CanAccessOwner(user, in.Owner) {
		return nil, domain.ErrOwnerForbidden
	}

	m, err := models.NewStockMovement(models.MovementParams{
		ID:        in.ID,
		ItemID:    in.ItemID,
		VendorID:  in.VendorID,
		Kind:      kind,
		Quantity:  qty,
		UnitCost:  cost,
		Owner:     in.Owner,
		Note:      in.Note,
		CreatedBy: user.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	return m, nil
}

// invalidate drops the cached balance of key after a committed append. A
// failure only costs a stale read until the cache entry expires, so it is
// logged rather than returned.
func (s *LedgerService) invalidate(ctx context.Context, key models.OwnerKey) {
	if err := s.cache.Invalidate(ctx, key.String()); err != nil {
		s.log.ErrorContext(ctx, "on-hand cache invalidation failed", "key", key.String(), "error", err)
	}
}

func movementMeta(m *models.StockMovement) map[string]any {
	meta := map[string]any{
		"item_id":  m.ItemID.String(),
		"owner":    m.Owner().String(),
		"kind":     string(m.Kind),
		"quantity": m.Quantity.String(),
	}
	if m.VendorID != nil {
		meta["vendor_id"] = m.VendorID.String()
	}
	return meta
}

type ledgerMetrics struct {
	recorded metric.Int64Counter
	foldSize metric.Int64Histogram
}

func newLedgerMetrics() ledgerMetrics {
	meter := otel.Meter("larder/inventory")
	// Instrument creation only fails on invalid names; the returned
	// instruments are still usable no-ops in that case.
	recorded, _ := meter.Int64Counter("larder.movements.recorded",
		metric.WithDescription("Stock movements appended to the ledger"))
	foldSize, _ := meter.Int64Histogram("larder.onhand.fold_size",
		metric.WithDescription("Movements folded per on-hand cache miss"))
	return ledgerMetrics{recorded: recorded, foldSize: foldSize}
}

func (lm ledgerMetrics) record(ctx context.Context, m *models.StockMovement) {
	scope := "chef"
	if m.Owner().IsWarehouse() {
		scope = "warehouse"
	}
	lm.recorded.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", string(m.Kind)),
		attribute.String("owner_scope", scope),
	))
}

func (lm ledgerMetrics) fold(ctx context.Context, n int) {
	lm.foldSize.Record(ctx, int64(n))
}
