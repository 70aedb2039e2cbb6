package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ghuser/larder/services/inventory/domain"
	"github.com/ghuser/larder/services/inventory/domain/models"
)

// ItemRepository implements repositories.ItemRepository on a Store.
type ItemRepository struct{ s *Store }

// NewItemRepository returns an ItemRepository backed by s.
func NewItemRepository(s *Store) *ItemRepository { return &ItemRepository{s: s} }

// Save inserts item. A duplicate id or SKU yields ErrAlreadyExists.
func (r *ItemRepository) Save(ctx context.Context, item *models.Item) error {
	return r.s.write(ctx, func() (func(), error) {
		if _, ok := r.s.items[item.ID]; ok {
			return nil, fmt.Errorf("item %s: %w", item.ID, domain.ErrAlreadyExists)
		}
		if err := r.checkSKU(item); err != nil {
			return nil, err
		}
		r.s.items[item.ID] = item.Clone()
		return func() { delete(r.s.items, item.ID) }, nil
	})
}

// GetByID returns a copy of the item, or ErrItemNotFound.
func (r *ItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	var (
		item models.Item
		ok   bool
	)
	r.s.read(ctx, func() {
		item, ok = r.s.items[id]
		item = item.Clone()
	})
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrItemNotFound, id)
	}
	return &item, nil
}

// List returns copies of every item in no particular order.
func (r *ItemRepository) List(ctx context.Context) ([]models.Item, error) {
	var out []models.Item
	r.s.read(ctx, func() {
		out = make([]models.Item, 0, len(r.s.items))
		for _, it := range r.s.items {
			out = append(out, it.Clone())
		}
	})
	return out, nil
}

// Update replaces the stored item.
func (r *ItemRepository) Update(ctx context.Context, item *models.Item) error {
	return r.s.write(ctx, func() (func(), error) {
		prev, ok := r.s.items[item.ID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrItemNotFound, item.ID)
		}
		if err := r.checkSKU(item); err != nil {
			return nil, err
		}
		r.s.items[item.ID] = item.Clone()
		return func() { r.s.items[item.ID] = prev }, nil
	})
}

// Delete removes the item row.
func (r *ItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.s.write(ctx, func() (func(), error) {
		prev, ok := r.s.items[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrItemNotFound, id)
		}
		delete(r.s.items, id)
		return func() { r.s.items[id] = prev }, nil
	})
}

func (r *ItemRepository) checkSKU(item *models.Item) error {
	if item.SKU == nil {
		return nil
	}
	for id, other := range r.s.items {
		if id != item.ID && other.SKU != nil && *other.SKU == *item.SKU {
			return fmt.Errorf("item sku %q: %w", *item.SKU, domain.ErrAlreadyExists)
		}
	}
	return nil
}

// VendorRepository implements repositories.VendorRepository on a Store.
type VendorRepository struct{ s *Store }

// NewVendorRepository returns a VendorRepository backed by s.
func NewVendorRepository(s *Store) *VendorRepository { return &VendorRepository{s: s} }

// Save inserts vendor.
func (r *VendorRepository) Save(ctx context.Context, vendor *models.Vendor) error {
	return r.s.write(ctx, func() (func(), error) {
		if _, ok := r.s.vendors[vendor.ID]; ok {
			return nil, fmt.Errorf("vendor %s: %w", vendor.ID, domain.ErrAlreadyExists)
		}
		r.s.vendors[vendor.ID] = vendor.Clone()
		return func() { delete(r.s.vendors, vendor.ID) }, nil
	})
}

// GetByID returns a copy of the vendor, or ErrVendorNotFound.
func (r *VendorRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	var (
		v  models.Vendor
		ok bool
	)
	r.s.read(ctx, func() {
		v, ok = r.s.vendors[id]
		v = v.Clone()
	})
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrVendorNotFound, id)
	}
	return &v, nil
}

// List returns copies of every vendor of every owner.
func (r *VendorRepository) List(ctx context.Context) ([]models.Vendor, error) {
	var out []models.Vendor
	r.s.read(ctx, func() {
		out = make([]models.Vendor, 0, len(r.s.vendors))
		for _, v := range r.s.vendors {
			out = append(out, v.Clone())
		}
	})
	return out, nil
}

// Update replaces the stored vendor.
func (r *VendorRepository) Update(ctx context.Context, vendor *models.Vendor) error {
	return r.s.write(ctx, func() (func(), error) {
		prev, ok := r.s.vendors[vendor.ID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrVendorNotFound, vendor.ID)
		}
		r.s.vendors[vendor.ID] = vendor.Clone()
		return func() { r.s.vendors[vendor.ID] = prev }, nil
	})
}

// Delete removes the vendor row.
func (r *VendorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.s.write(ctx, func() (func(), error) {
		prev, ok := r.s.vendors[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrVendorNotFound, id)
		}
		delete(r.s.vendors, id)
		return func() { r.s.vendors[id] = prev }, nil
	})
}

// ChefRepository implements repositories.ChefRepository on a Store.
type ChefRepository struct{ s *Store }

// NewChefRepository returns a ChefRepository backed by s.
func NewChefRepository(s *Store) *ChefRepository { return &ChefRepository{s: s} }

// Save inserts chef.
func (r *ChefRepository) Save(ctx context.Context, chef *models.Chef) error {
	return r.s.write(ctx, func() (func(), error) {
		if _, ok := r.s.chefs[chef.ID]; ok {
			return nil, fmt.Errorf("chef %s: %w", chef.ID, domain.ErrAlreadyExists)
		}
		r.s.chefs[chef.ID] = *chef
		return func() { delete(r.s.chefs, chef.ID) }, nil
	})
}

// GetByID returns a copy of the chef, or ErrChefNotFound.
func (r *ChefRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Chef, error) {
	var (
		c  models.Chef
		ok bool
	)
	r.s.read(ctx, func() { c, ok = r.s.chefs[id] })
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrChefNotFound, id)
	}
	return &c, nil
}

// List returns copies of every chef.
func (r *ChefRepository) List(ctx context.Context) ([]models.Chef, error) {
	var out []models.Chef
	r.s.read(ctx, func() {
		out = make([]models.Chef, 0, len(r.s.chefs))
		for _, c := range r.s.chefs {
			out = append(out, c)
		}
	})
	return out, nil
}

// Update replaces the stored chef.
func (r *ChefRepository) Update(ctx context.Context, chef *models.Chef) error {
	return r.s.write(ctx, func() (func(), error) {
		prev, ok := r.s.chefs[chef.ID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrChefNotFound, chef.ID)
		}
		r.s.chefs[chef.ID] = *chef
		return func() { r.s.chefs[chef.ID] = prev }, nil
	})
}

// Delete removes the chef row. Movements owned by the chef are kept.
func (r *ChefRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.s.write(ctx, func() (func(), error) {
		prev, ok := r.s.chefs[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrChefNotFound, id)
		}
		delete(r.s.chefs, id)
		return func() { r.s.chefs[id] = prev }, nil
	})
}
