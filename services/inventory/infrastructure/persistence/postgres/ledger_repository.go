package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/larder/pkg/database"
	pkgevents "github.com/ghuser/larder/pkg/events"
	"github.com/ghuser/larder/services/inventory/domain"
	"github.com/ghuser/larder/services/inventory/domain/events"
	"github.com/ghuser/larder/services/inventory/domain/models"
)

type movementRow struct {
	ID         uuid.UUID        `db:"id"`
	ItemID     uuid.UUID        `db:"item_id"`
	VendorID   *uuid.UUID       `db:"vendor_id"`
	Kind       string           `db:"kind"`
	Quantity   decimal.Decimal  `db:"quantity"`
	UnitCost   *decimal.Decimal `db:"unit_cost"`
	Note       string           `db:"note"`
	ChefID     *uuid.UUID       `db:"chef_id"`
	ReversesID *uuid.UUID       `db:"reverses_id"`
	CreatedBy  uuid.UUID        `db:"created_by"`
	CreatedAt  time.Time        `db:"created_at"`
}

var movementColumns = []string{
	"id", "item_id", "vendor_id", "kind", "quantity", "unit_cost",
	"note", "chef_id", "reverses_id", "created_by", "created_at",
}

func (r movementRow) toModel() models.StockMovement {
	return models.StockMovement{
		ID:         r.ID,
		ItemID:     r.ItemID,
		VendorID:   r.VendorID,
		Kind:       models.MovementKind(r.Kind),
		Quantity:   r.Quantity,
		UnitCost:   r.UnitCost,
		Note:       r.Note,
		ChefID:     r.ChefID,
		ReversesID: r.ReversesID,
		CreatedBy:  r.CreatedBy,
		CreatedAt:  r.CreatedAt,
	}
}

func toMovements(rows []movementRow) []models.StockMovement {
	out := make([]models.StockMovement, len(rows))
	for i, row := range rows {
		out[i] = row.toModel()
	}
	return out
}

// ownerPredicate matches the rows of owner. The warehouse is stored as NULL.
func ownerPredicate(owner models.Owner) sq.Eq {
	if owner.IsWarehouse() {
		return sq.Eq{"chef_id": nil}
	}
	return sq.Eq{"chef_id": owner.ChefID}
}

// MovementRepository implements repositories.MovementRepository against
// PostgreSQL. Append writes a MovementRecordedEvent to the outbox in the
// same transaction when a bus is configured.
type MovementRepository struct {
	db  *database.Database
	bus *pkgevents.EventBus
}

// NewMovementRepository returns a MovementRepository backed by db. bus may be nil.
func NewMovementRepository(db *database.Database, bus *pkgevents.EventBus) *MovementRepository {
	return &MovementRepository{db: db, bus: bus}
}

// Append inserts m. A second compensating entry for the same movement fails
// with ErrMovementAlreadyReversed.
func (r *MovementRepository) Append(ctx context.Context, m *models.StockMovement) error {
	return r.db.WithTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		_, err := exec(ctx, r.db, psql.Insert(tableMovements).
			Columns(movementColumns...).
			Values(m.ID, m.ItemID, nullUUID(m.VendorID), string(m.Kind), m.Quantity.String(),
				nullDecimal(m.UnitCost), m.Note, nullUUID(m.ChefID), nullUUID(m.ReversesID),
				m.CreatedBy, m.CreatedAt))
		if err != nil {
			return mapError(err, "movement", m.ID, domain.ErrMovementNotFound)
		}
		if r.bus == nil {
			return nil
		}

		msg, err := pkgevents.NewJSONMessage(events.NewMovementRecorded(*m))
		if err != nil {
			return err
		}
		return r.bus.PublishTx(ctx, tx, events.TopicMovementRecorded, msg)
	})
}

// GetByID returns the movement, or ErrMovementNotFound.
func (r *MovementRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.StockMovement, error) {
	return r.getOne(ctx, sq.Eq{"id": id}, id)
}

// FindReversal returns the compensating entry of id, or ErrMovementNotFound.
func (r *MovementRepository) FindReversal(ctx context.Context, id uuid.UUID) (*models.StockMovement, error) {
	return r.getOne(ctx, sq.Eq{"reverses_id": id}, id)
}

func (r *MovementRepository) getOne(ctx context.Context, where sq.Eq, id uuid.UUID) (*models.StockMovement, error) {
	var row movementRow
	err := selectOne(ctx, r.db, &row, psql.Select(movementColumns...).From(tableMovements).Where(where))
	if err != nil {
		return nil, mapError(err, "movement", id, domain.ErrMovementNotFound)
	}
	m := row.toModel()
	return &m, nil
}

// ListByKey returns one (item, owner) partition in append order.
func (r *MovementRepository) ListByKey(ctx context.Context, key models.OwnerKey) ([]models.StockMovement, error) {
	return r.list(ctx, psql.Select(movementColumns...).From(tableMovements).
		Where(sq.Eq{"item_id": key.ItemID}).
		Where(ownerPredicate(key.Owner)).
		OrderBy("seq ASC"))
}

// ListByOwner returns the movements of owner, most recent first.
func (r *MovementRepository) ListByOwner(ctx context.Context, owner models.Owner) ([]models.StockMovement, error) {
	return r.list(ctx, psql.Select(movementColumns...).From(tableMovements).
		Where(ownerPredicate(owner)).
		OrderBy("seq DESC"))
}

// ListAll returns every movement, most recent first.
func (r *MovementRepository) ListAll(ctx context.Context) ([]models.StockMovement, error) {
	return r.list(ctx, psql.Select(movementColumns...).From(tableMovements).OrderBy("seq DESC"))
}

func (r *MovementRepository) list(ctx context.Context, b sq.SelectBuilder) ([]models.StockMovement, error) {
	var rows []movementRow
	if err := selectAll(ctx, r.db, &rows, b); err != nil {
		return nil, mapError(err, "movement", uuid.Nil, domain.ErrMovementNotFound)
	}
	return toMovements(rows), nil
}

type auditRow struct {
	ID        uuid.UUID  `db:"id"`
	ActorID   uuid.UUID  `db:"actor_id"`
	Action    string     `db:"action"`
	Scope     string     `db:"scope"`
	ChefID    *uuid.UUID `db:"chef_id"`
	RefID     *uuid.UUID `db:"ref_id"`
	Meta      []byte     `db:"meta"`
	CreatedAt time.Time  `db:"created_at"`
}

var auditColumns = []string{"id", "actor_id", "action", "scope", "chef_id", "ref_id", "meta", "created_at"}

func (r auditRow) toModel() (models.AuditEntry, error) {
	e := models.AuditEntry{
		ID:        r.ID,
		ActorID:   r.ActorID,
		Action:    models.Action(r.Action),
		Scope:     models.Scope(r.Scope),
		ChefID:    r.ChefID,
		RefID:     r.RefID,
		CreatedAt: r.CreatedAt,
	}
	if len(r.Meta) > 0 {
		if err := json.Unmarshal(r.Meta, &e.Meta); err != nil {
			return models.AuditEntry{}, fmt.Errorf("audit entry %s meta: %w", r.ID, err)
		}
	}
	return e, nil
}

// AuditRepository implements repositories.AuditRepository against PostgreSQL.
type AuditRepository struct {
	db *database.Database
}

// NewAuditRepository returns an AuditRepository backed by db.
func NewAuditRepository(db *database.Database) *AuditRepository {
	return &AuditRepository{db: db}
}

// Append inserts e.
func (r *AuditRepository) Append(ctx context.Context, e *models.AuditEntry) error {
	var meta any
	if e.Meta != nil {
		raw, err := json.Marshal(e.Meta)
		if err != nil {
			return fmt.Errorf("marshal audit meta: %w", err)
		}
		meta = string(raw)
	}
	_, err := exec(ctx, r.db, psql.Insert(tableAudit).
		Columns(auditColumns...).
		Values(e.ID, e.ActorID, string(e.Action), string(e.Scope), nullUUID(e.ChefID),
			nullUUID(e.RefID), meta, e.CreatedAt))
	return mapError(err, "audit entry", e.ID, domain.ErrNotFound)
}

// List returns every entry, most recent first.
func (r *AuditRepository) List(ctx context.Context) ([]models.AuditEntry, error) {
	var rows []auditRow
	err := selectAll(ctx, r.db, &rows, psql.Select(auditColumns...).From(tableAudit).OrderBy("seq DESC"))
	if err != nil {
		return nil, mapError(err, "audit entry", uuid.Nil, domain.ErrNotFound)
	}
	out := make([]models.AuditEntry, 0, len(rows))
	for _, row := range rows {
		e, err := row.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
