package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/larder/pkg/logger"
	"github.com/ghuser/larder/services/inventory/domain"
	"github.com/ghuser/larder/services/inventory/domain/models"
	"github.com/ghuser/larder/services/inventory/domain/repositories"
	domainsvcs "github.com/ghuser/larder/services/inventory/domain/services"
)

// ItemInput holds the fields of a new item.
type ItemInput struct {
	Name     string
	Unit     string
	SKU      *string
	MinStock *float64
}

// ItemPatchInput holds a partial item update. A nil field is left untouched.
type ItemPatchInput struct {
	Name          *string
	Unit          *string
	SKU           *string
	MinStock      *float64
	ClearMinStock bool
	IsActive      *bool
}

// ContactInput holds optional contact fields.
type ContactInput struct {
	Phone   *string
	Email   *string
	Address *string
}

// VendorInput holds the fields of a new vendor. ChefID is honored for
// founders only; a chef always creates vendors for its own kitchen.
type VendorInput struct {
	Name    string
	ChefID  *uuid.UUID
	Contact ContactInput
}

// VendorPatchInput holds a partial vendor update.
type VendorPatchInput struct {
	Name     *string
	Contact  ContactInput
	IsActive *bool
}

// ChefInput holds the fields of a new chef.
type ChefInput struct {
	Name    string
	Contact ContactInput
}

// ChefPatchInput holds a partial chef update.
type ChefPatchInput struct {
	Name     *string
	Contact  ContactInput
	IsActive *bool
}

// CatalogService owns items, vendors and chefs. Every successful mutation
// appends exactly one audit entry in the same transaction.
type CatalogService struct {
	tx      repositories.Transactor
	items   repositories.ItemRepository
	vendors repositories.VendorRepository
	chefs   repositories.ChefRepository
	audit   *AuditService
	log     logger.Logger
}

// NewCatalogService returns a CatalogService wired with the given repositories.
func NewCatalogService(repos Repositories, audit *AuditService, log logger.Logger) *CatalogService {
	return &CatalogService{
		tx:      repos.Tx,
		items:   repos.Items,
		vendors: repos.Vendors,
		chefs:   repos.Chefs,
		audit:   audit,
		log:     log,
	}
}

// --- items ---

// CreateItem validates and persists a new active item. Founder only.
func (s *CatalogService) CreateItem(ctx context.Context, user models.CurrentUser, in ItemInput) (*models.Item, error) {
	if !domainsvcs.CanManageCatalog(user) {
		return nil, domain.ErrCatalogForbidden
	}

	name, err := parseName(in.Name)
	if err != nil {
		return nil, err
	}
	unit, err := models.ParseUnit(in.Unit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidUnit, err)
	}
	minStock, err := optionalDecimal(in.MinStock)
	if err != nil {
		return nil, fmt.Errorf("%w: min_stock: %w", domain.ErrValidation, err)
	}

	sku := in.SKU
	if sku != nil && *sku == "" {
		sku = nil
	}

	item, err := models.NewItem(name, unit, sku, minStock)
	if err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	if err := domainsvcs.ValidateItem(item); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.items.Save(ctx, item); err != nil {
			return fmt.Errorf("save item: %w", err)
		}
		_, err := s.audit.LogFor(ctx, user, models.ActionItemCreated, &item.ID, map[string]any{
			"name": item.Name.String(),
			"unit": string(item.Unit),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "item created", "item_id", item.ID, "actor_id", user.ID)
	return item, nil
}

// GetItem returns one item. Any authenticated user may read the catalog.
func (s *CatalogService) GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// ListItems returns the catalog ordered by name.
func (s *CatalogService) ListItems(ctx context.Context) ([]models.Item, error) {
	items, err := s.items.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

// ItemIndex returns a fresh id -> item projection of the current catalog.
func (s *CatalogService) ItemIndex(ctx context.Context) (models.ItemIndex, error) {
	items, err := s.items.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("index items: %w", err)
	}
	return models.NewItemIndex(items), nil
}

// UpdateItem merges patch into an existing item. Founder only.
func (s *CatalogService) UpdateItem(ctx context.Context, user models.CurrentUser, id uuid.UUID, in ItemPatchInput) (*models.Item, error) {
	if !domainsvcs.CanManageCatalog(user) {
		return nil, domain.ErrCatalogForbidden
	}

	patch := models.ItemPatch{SKU: in.SKU, ClearMinStock: in.ClearMinStock, IsActive: in.IsActive}
	if in.Name != nil {
		name, err := parseName(*in.Name)
		if err != nil {
			return nil, err
		}
		patch.Name = &name
	}
	if in.Unit != nil {
		unit, err := models.ParseUnit(*in.Unit)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidUnit, err)
		}
		patch.Unit = &unit
	}
	minStock, err := optionalDecimal(in.MinStock)
	if err != nil {
		return nil, fmt.Errorf("%w: min_stock: %w", domain.ErrValidation, err)
	}
	patch.MinStock = minStock

	var updated *models.Item
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		item, err := s.items.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("get item: %w", err)
		}
		item.Apply(patch)
		if err := domainsvcs.ValidateItem(item); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrValidation, err)
		}
		if err := s.items.Update(ctx, item); err != nil {
			return fmt.Errorf("update item: %w", err)
		}
		if _, err := s.audit.LogFor(ctx, user, models.ActionItemUpdated, &item.ID, nil); err != nil {
			return err
		}
		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteItem removes an item from the catalog. Movements that reference it
// stay in the ledger and render through ItemIndex.Label. Founder only.
func (s *CatalogService) DeleteItem(ctx context.Context, user models.CurrentUser, id uuid.UUID) error {
	if !domainsvcs.CanManageCatalog(user) {
		return domain.ErrCatalogForbidden
	}
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.items.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete item: %w", err)
		}
		_, err := s.audit.LogFor(ctx, user, models.ActionItemDeleted, &id, nil)
		return err
	})
}

// --- vendors ---

// CreateVendor persists a new vendor. Founders pick the owner (nil ChefID is a
// warehouse vendor); chefs always create vendors for their own kitchen.
func (s *CatalogService) CreateVendor(ctx context.Context, user models.CurrentUser, in VendorInput) (*models.Vendor, error) {
	owner := user.Owner()
	if user.IsFounder() {
		owner = models.OwnerFromPtr(in.ChefID)
	} else if in.ChefID != nil && !domainsvcs.CanAccessOwner(user, models.ChefOwner(*in.ChefID)) {
		return nil, domain.ErrVendorForbidden
	}

	name, err := parseName(in.Name)
	if err != nil {
		return nil, err
	}
	var contact models.Contact
	contact.Phone, contact.Email, contact.Address = deref(in.Contact.Phone), deref(in.Contact.Email), deref(in.Contact.Address)
	if err := domainsvcs.ValidateContact(contact); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	vendor, err := models.NewVendor(owner, name, contact)
	if err != nil {
		return nil, fmt.Errorf("create vendor: %w", err)
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.vendors.Save(ctx, vendor); err != nil {
			return fmt.Errorf("save vendor: %w", err)
		}
		_, err := s.audit.LogFor(ctx, user, models.ActionVendorCreated, &vendor.ID, map[string]any{
			"name":  vendor.Name.String(),
			"owner": owner.String(),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return vendor, nil
}

// ListVendors returns the vendors visible to user, ordered by name.
func (s *CatalogService) ListVendors(ctx context.Context, user models.CurrentUser) ([]models.Vendor, error) {
	all, err := s.vendors.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list vendors: %w", err)
	}
	visible := domainsvcs.VisibleVendors(user, all)
	sort.SliceStable(visible, func(i, j int) bool { return visible[i].Name < visible[j].Name })
	return visible, nil
}

// UpdateVendor merges patch into a vendor the user may manage.
func (s *CatalogService) UpdateVendor(ctx context.Context, user models.CurrentUser, id uuid.UUID, in VendorPatchInput) (*models.Vendor, error) {
	patch := models.VendorPatch{
		Contact:  models.ContactPatch(in.Contact),
		IsActive: in.IsActive,
	}
	if in.Name != nil {
		name, err := parseName(*in.Name)
		if err != nil {
			return nil, err
		}
		patch.Name = &name
	}

	var updated *models.Vendor
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		vendor, err := s.vendors.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("get vendor: %w", err)
		}
		if !domainsvcs.CanManageVendor(user, *vendor) {
			return domain.ErrVendorForbidden
		}
		vendor.Apply(patch)
		if err := domainsvcs.ValidateContact(vendor.Contact); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrValidation, err)
		}
		if err := s.vendors.Update(ctx, vendor); err != nil {
			return fmt.Errorf("update vendor: %w", err)
		}
		if _, err := s.audit.LogFor(ctx, user, models.ActionVendorUpdated, &vendor.ID, nil); err != nil {
			return err
		}
		updated = vendor
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteVendor removes a vendor the user may manage.
func (s *CatalogService) DeleteVendor(ctx context.Context, user models.CurrentUser, id uuid.UUID) error {
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		vendor, err := s.vendors.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("get vendor: %w", err)
		}
		if !domainsvcs.CanManageVendor(user, *vendor) {
			return domain.ErrVendorForbidden
		}
		if err := s.vendors.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete vendor: %w", err)
		}
		_, err = s.audit.LogFor(ctx, user, models.ActionVendorDeleted, &id, nil)
		return err
	})
}

// --- chefs ---

// CreateChef persists a new chef (tenant kitchen). Founder only.
func (s *CatalogService) CreateChef(ctx context.Context, user models.CurrentUser, in ChefInput) (*models.Chef, error) {
	if !domainsvcs.CanManageCatalog(user) {
		return nil, domain.ErrCatalogForbidden
	}
	name, err := parseName(in.Name)
	if err != nil {
		return nil, err
	}
	var contact models.Contact
	contact.Phone, contact.Email, contact.Address = deref(in.Contact.Phone), deref(in.Contact.Email), deref(in.Contact.Address)
	if err := domainsvcs.ValidateContact(contact); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	chef, err := models.NewChef(name, contact)
	if err != nil {
		return nil, fmt.Errorf("create chef: %w", err)
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.chefs.Save(ctx, chef); err != nil {
			return fmt.Errorf("save chef: %w", err)
		}
		_, err := s.audit.LogFor(ctx, user, models.ActionChefCreated, &chef.ID, map[string]any{
			"name": chef.Name.String(),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return chef, nil
}

// ListChefs returns the chef rows visible to user, ordered by name.
func (s *CatalogService) ListChefs(ctx context.Context, user models.CurrentUser) ([]models.Chef, error) {
	all, err := s.chefs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list chefs: %w", err)
	}
	visible := domainsvcs.VisibleChefs(user, all)
	sort.SliceStable(visible, func(i, j int) bool { return visible[i].Name < visible[j].Name })
	return visible, nil
}

// UpdateChef merges patch into an existing chef. Founder only.
func (s *CatalogService) UpdateChef(ctx context.Context, user models.CurrentUser, id uuid.UUID, in ChefPatchInput) (*models.Chef, error) {
	if !domainsvcs.CanManageCatalog(user) {
		return nil, domain.ErrCatalogForbidden
	}
	patch := models.ChefPatch{
		Contact:  models.ContactPatch(in.Contact),
		IsActive: in.IsActive,
	}
	if in.Name != nil {
		name, err := parseName(*in.Name)
		if err != nil {
			return nil, err
		}
		patch.Name = &name
	}

	var updated *models.Chef
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		chef, err := s.chefs.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("get chef: %w", err)
		}
		chef.Apply(patch)
		if err := domainsvcs.ValidateContact(chef.Contact); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrValidation, err)
		}
		if err := s.chefs.Update(ctx, chef); err != nil {
			return fmt.Errorf("update chef: %w", err)
		}
		if _, err := s.audit.LogFor(ctx, user, models.ActionChefUpdated, &chef.ID, nil); err != nil {
			return err
		}
		updated = chef
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteChef removes a chef row. Its movements remain in the ledger. Founder only.
func (s *CatalogService) DeleteChef(ctx context.Context, user models.CurrentUser, id uuid.UUID) error {
	if !domainsvcs.CanManageCatalog(user) {
		return domain.ErrCatalogForbidden
	}
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.chefs.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete chef: %w", err)
		}
		_, err := s.audit.LogFor(ctx, user, models.ActionChefDeleted, &id, nil)
		return err
	})
}

// parseName applies both the structural and the business name rules.
func parseName(s string) (models.Name, error) {
	name, err := models.NewName(s)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrInvalidName, err)
	}
	if err := domainsvcs.ValidateName(name); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrInvalidName, err)
	}
	return name, nil
}

// optionalDecimal converts an optional non-negative amount into a Decimal.
func optionalDecimal(f *float64) (*decimal.Decimal, error) {
	if f == nil {
		return nil, nil
	}
	d, err := models.AmountFromFloat(*f)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
