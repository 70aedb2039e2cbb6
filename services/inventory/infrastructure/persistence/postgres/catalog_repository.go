package postgres

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/larder/pkg/database"
	"github.com/ghuser/larder/services/inventory/domain"
	"github.com/ghuser/larder/services/inventory/domain/models"
)

// --- items ---

type itemRow struct {
	ID        uuid.UUID        `db:"id"`
	Name      string           `db:"name"`
	Unit      string           `db:"unit"`
	SKU       *string          `db:"sku"`
	MinStock  *decimal.Decimal `db:"min_stock"`
	IsActive  bool             `db:"is_active"`
	CreatedAt time.Time        `db:"created_at"`
	UpdatedAt time.Time        `db:"updated_at"`
}

var itemColumns = []string{"id", "name", "unit", "sku", "min_stock", "is_active", "created_at", "updated_at"}

func (r itemRow) toModel() models.Item {
	return models.Item{
		ID:        r.ID,
		Name:      models.Name(r.Name),
		Unit:      models.Unit(r.Unit),
		SKU:       r.SKU,
		MinStock:  r.MinStock,
		IsActive:  r.IsActive,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// ItemRepository implements repositories.ItemRepository against PostgreSQL.
type ItemRepository struct {
	db *database.Database
}

// NewItemRepository returns an ItemRepository backed by db.
func NewItemRepository(db *database.Database) *ItemRepository {
	return &ItemRepository{db: db}
}

// Save inserts item. A duplicate SKU yields ErrAlreadyExists.
func (r *ItemRepository) Save(ctx context.Context, item *models.Item) error {
	_, err := exec(ctx, r.db, psql.Insert(tableItems).
		Columns(itemColumns...).
		Values(item.ID, item.Name.String(), string(item.Unit), nullString(item.SKU),
			nullDecimal(item.MinStock), item.IsActive, item.CreatedAt, item.UpdatedAt))
	return mapError(err, "item", item.ID, domain.ErrItemNotFound)
}

// GetByID returns the item, or ErrItemNotFound.
func (r *ItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	var row itemRow
	err := selectOne(ctx, r.db, &row, psql.Select(itemColumns...).From(tableItems).Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, mapError(err, "item", id, domain.ErrItemNotFound)
	}
	item := row.toModel()
	return &item, nil
}

// List returns every item ordered by name.
func (r *ItemRepository) List(ctx context.Context) ([]models.Item, error) {
	var rows []itemRow
	if err := selectAll(ctx, r.db, &rows, psql.Select(itemColumns...).From(tableItems).OrderBy("name ASC")); err != nil {
		return nil, mapError(err, "item", uuid.Nil, domain.ErrItemNotFound)
	}
	items := make([]models.Item, len(rows))
	for i, row := range rows {
		items[i] = row.toModel()
	}
	return items, nil
}

// Update persists every mutable column of item.
func (r *ItemRepository) Update(ctx context.Context, item *models.Item) error {
	n, err := exec(ctx, r.db, psql.Update(tableItems).
		Set("name", item.Name.String()).
		Set("unit", string(item.Unit)).
		Set("sku", nullString(item.SKU)).
		Set("min_stock", nullDecimal(item.MinStock)).
		Set("is_active", item.IsActive).
		Set("updated_at", item.UpdatedAt).
		Where(sq.Eq{"id": item.ID}))
	if err != nil {
		return mapError(err, "item", item.ID, domain.ErrItemNotFound)
	}
	if n == 0 {
		return mapError(errNoRows, "item", item.ID, domain.ErrItemNotFound)
	}
	return nil
}

// Delete removes the item row. Movements referencing it are untouched.
func (r *ItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, tableItems, "item", id, domain.ErrItemNotFound)
}

// --- vendors ---

type vendorRow struct {
	ID        uuid.UUID  `db:"id"`
	ChefID    *uuid.UUID `db:"chef_id"`
	Name      string     `db:"name"`
	Phone     string     `db:"phone"`
	Email     string     `db:"email"`
	Address   string     `db:"address"`
	IsActive  bool       `db:"is_active"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
}

var vendorColumns = []string{"id", "chef_id", "name", "phone", "email", "address", "is_active", "created_at", "updated_at"}

func (r vendorRow) toModel() models.Vendor {
	return models.Vendor{
		ID:        r.ID,
		ChefID:    r.ChefID,
		Name:      models.Name(r.Name),
		Contact:   models.Contact{Phone: r.Phone, Email: r.Email, Address: r.Address},
		IsActive:  r.IsActive,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// VendorRepository implements repositories.VendorRepository against PostgreSQL.
type VendorRepository struct {
	db *database.Database
}

// NewVendorRepository returns a VendorRepository backed by db.
func NewVendorRepository(db *database.Database) *VendorRepository {
	return &VendorRepository{db: db}
}

// Save inserts vendor.
func (r *VendorRepository) Save(ctx context.Context, v *models.Vendor) error {
	_, err := exec(ctx, r.db, psql.Insert(tableVendors).
		Columns(vendorColumns...).
		Values(v.ID, nullUUID(v.ChefID), v.Name.String(), v.Contact.Phone, v.Contact.Email,
			v.Contact.Address, v.IsActive, v.CreatedAt, v.UpdatedAt))
	return mapError(err, "vendor", v.ID, domain.ErrVendorNotFound)
}

// GetByID returns the vendor, or ErrVendorNotFound.
func (r *VendorRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	var row vendorRow
	err := selectOne(ctx, r.db, &row, psql.Select(vendorColumns...).From(tableVendors).Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, mapError(err, "vendor", id, domain.ErrVendorNotFound)
	}
	v := row.toModel()
	return &v, nil
}

// List returns every vendor of every owner ordered by name.
func (r *VendorRepository) List(ctx context.Context) ([]models.Vendor, error) {
	var rows []vendorRow
	if err := selectAll(ctx, r.db, &rows, psql.Select(vendorColumns...).From(tableVendors).OrderBy("name ASC")); err != nil {
		return nil, mapError(err, "vendor", uuid.Nil, domain.ErrVendorNotFound)
	}
	out := make([]models.Vendor, len(rows))
	for i, row := range rows {
		out[i] = row.toModel()
	}
	return out, nil
}

// Update persists the mutable columns of vendor. Ownership never changes.
func (r *VendorRepository) Update(ctx context.Context, v *models.Vendor) error {
	n, err := exec(ctx, r.db, psql.Update(tableVendors).
		Set("name", v.Name.String()).
		Set("phone", v.Contact.Phone).
		Set("email", v.Contact.Email).
		Set("address", v.Contact.Address).
		Set("is_active", v.IsActive).
		Set("updated_at", v.UpdatedAt).
		Where(sq.Eq{"id": v.ID}))
	if err != nil {
		return mapError(err, "vendor", v.ID, domain.ErrVendorNotFound)
	}
	if n == 0 {
		return mapError(errNoRows, "vendor", v.ID, domain.ErrVendorNotFound)
	}
	return nil
}

// Delete removes the vendor row.
func (r *VendorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, tableVendors, "vendor", id, domain.ErrVendorNotFound)
}

// --- chefs ---

type chefRow struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	Phone     string    `db:"phone"`
	Email     string    `db:"email"`
	Address   string    `db:"address"`
	IsActive  bool      `db:"is_active"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

var chefColumns = []string{"id", "name", "phone", "email", "address", "is_active", "created_at", "updated_at"}

func (r chefRow) toModel() models.Chef {
	return models.Chef{
		ID:        r.ID,
		Name:      models.Name(r.Name),
		Contact:   models.Contact{Phone: r.Phone, Email: r.Email, Address: r.Address},
		IsActive:  r.IsActive,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// ChefRepository implements repositories.ChefRepository against PostgreSQL.
type ChefRepository struct {
	db *database.Database
}

// NewChefRepository returns a ChefRepository backed by db.
func NewChefRepository(db *database.Database) *ChefRepository {
	return &ChefRepository{db: db}
}

// Save inserts chef.
func (r *ChefRepository) Save(ctx context.Context, c *models.Chef) error {
	_, err := exec(ctx, r.db, psql.Insert(tableChefs).
		Columns(chefColumns...).
		Values(c.ID, c.Name.String(), c.Contact.Phone, c.Contact.Email, c.Contact.Address,
			c.IsActive, c.CreatedAt, c.UpdatedAt))
	return mapError(err, "chef", c.ID, domain.ErrChefNotFound)
}

// GetByID returns the chef, or ErrChefNotFound.
func (r *ChefRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Chef, error) {
	var row chefRow
	err := selectOne(ctx, r.db, &row, psql.Select(chefColumns...).From(tableChefs).Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, mapError(err, "chef", id, domain.ErrChefNotFound)
	}
	c := row.toModel()
	return &c, nil
}

// List returns every chef ordered by name.
func (r *ChefRepository) List(ctx context.Context) ([]models.Chef, error) {
	var rows []chefRow
	if err := selectAll(ctx, r.db, &rows, psql.Select(chefColumns...).From(tableChefs).OrderBy("name ASC")); err != nil {
		return nil, mapError(err, "chef", uuid.Nil, domain.ErrChefNotFound)
	}
	out := make([]models.Chef, len(rows))
	for i, row := range rows {
		out[i] = row.toModel()
	}
	return out, nil
}

// Update persists the mutable columns of chef.
func (r *ChefRepository) Update(ctx context.Context, c *models.Chef) error {
	n, err := exec(ctx, r.db, psql.Update(tableChefs).
		Set("name", c.Name.String()).
		Set("phone", c.Contact.Phone).
		Set("email", c.Contact.Email).
		Set("address", c.Contact.Address).
		Set("is_active", c.IsActive).
		Set("updated_at", c.UpdatedAt).
		Where(sq.Eq{"id": c.ID}))
	if err != nil {
		return mapError(err, "chef", c.ID, domain.ErrChefNotFound)
	}
	if n == 0 {
		return mapError(errNoRows, "chef", c.ID, domain.ErrChefNotFound)
	}
	return nil
}

// Delete removes the chef row. Movements owned by the chef are kept.
func (r *ChefRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, tableChefs, "chef", id, domain.ErrChefNotFound)
}

func deleteByID(ctx context.Context, db *database.Database, table, entity string, id uuid.UUID, notFound error) error {
	n, err := exec(ctx, db, psql.Delete(table).Where(sq.Eq{"id": id}))
	if err != nil {
		return mapError(err, entity, id, notFound)
	}
	if n == 0 {
		return mapError(errNoRows, entity, id, notFound)
	}
	return nil
}
