package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/larder/pkg/errhttp"
	"github.com/ghuser/larder/pkg/httpx"
	pkgvalidator "github.com/ghuser/larder/pkg/validator"
	appsvcs "github.com/ghuser/larder/services/inventory/application/services"
	"github.com/ghuser/larder/services/inventory/domain/models"
)

// CreateItemRequest is the request body for POST /items.
type CreateItemRequest struct {
	Name     string   `json:"name"                validate:"required,max=255"                example:"Flour"`
	Unit     string   `json:"unit"                validate:"required,oneof=kg g l ml count" example:"kg"`
	SKU      *string  `json:"sku,omitempty"       validate:"omitempty,max=64"                example:"FL-001"`
	MinStock *float64 `json:"min_stock,omitempty" validate:"omitempty,gte=0"                 example:"5"`
} // @name CreateItemRequest

// UpdateItemRequest is the request body for PATCH /items/{id}. Absent fields
// are left untouched; an empty sku clears it.
type UpdateItemRequest struct {
	Name          *string  `json:"name,omitempty"      validate:"omitempty,max=255"`
	Unit          *string  `json:"unit,omitempty"      validate:"omitempty,oneof=kg g l ml count"`
	SKU           *string  `json:"sku,omitempty"       validate:"omitempty,max=64"`
	MinStock      *float64 `json:"min_stock,omitempty" validate:"omitempty,gte=0"`
	ClearMinStock bool     `json:"clear_min_stock,omitempty"`
	IsActive      *bool    `json:"is_active,omitempty"`
} // @name UpdateItemRequest

// ItemResponse is one catalog item.
type ItemResponse struct {
	ID        uuid.UUID        `json:"id"`
	Name      string           `json:"name"                example:"Flour"`
	Unit      string           `json:"unit"                example:"kg"`
	SKU       *string          `json:"sku,omitempty"`
	MinStock  *decimal.Decimal `json:"min_stock,omitempty" swaggertype:"string" example:"5"`
	IsActive  bool             `json:"is_active"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
} // @name ItemResponse

func itemResponse(i models.Item) ItemResponse {
	return ItemResponse{
		ID:        i.ID,
		Name:      i.Name.String(),
		Unit:      string(i.Unit),
		SKU:       i.SKU,
		MinStock:  i.MinStock,
		IsActive:  i.IsActive,
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
	}
}

// CreateVendorRequest is the request body for POST /vendors.
type CreateVendorRequest struct {
	Name   string     `json:"name"              validate:"required,max=255" example:"Millers Co"`
	ChefID *uuid.UUID `json:"chef_id,omitempty"`
	ContactRequest
} // @name CreateVendorRequest

// UpdateVendorRequest is the request body for PATCH /vendors/{id}.
type UpdateVendorRequest struct {
	Name     *string `json:"name,omitempty"      validate:"omitempty,max=255"`
	IsActive *bool   `json:"is_active,omitempty"`
	ContactRequest
} // @name UpdateVendorRequest

// VendorResponse is one vendor.
type VendorResponse struct {
	ID        uuid.UUID       `json:"id"`
	Owner     string          `json:"owner"   example:"warehouse"`
	Name      string          `json:"name"    example:"Millers Co"`
	Contact   ContactResponse `json:"contact"`
	IsActive  bool            `json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
} // @name VendorResponse

func vendorResponse(v models.Vendor) VendorResponse {
	return VendorResponse{
		ID:        v.ID,
		Owner:     v.Owner().String(),
		Name:      v.Name.String(),
		Contact:   contactResponse(v.Contact),
		IsActive:  v.IsActive,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}

// CreateChefRequest is the request body for POST /chefs.
type CreateChefRequest struct {
	Name string `json:"name" validate:"required,max=255" example:"Ana's Kitchen"`
	ContactRequest
} // @name CreateChefRequest

// UpdateChefRequest is the request body for PATCH /chefs/{id}.
type UpdateChefRequest struct {
	Name     *string `json:"name,omitempty"      validate:"omitempty,max=255"`
	IsActive *bool   `json:"is_active,omitempty"`
	ContactRequest
} // @name UpdateChefRequest

// ChefResponse is one chef.
type ChefResponse struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name" example:"Ana's Kitchen"`
	Contact   ContactResponse `json:"contact"`
	IsActive  bool            `json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
} // @name ChefResponse

func chefResponse(c models.Chef) ChefResponse {
	return ChefResponse{
		ID:        c.ID,
		Name:      c.Name.String(),
		Contact:   contactResponse(c.Contact),
		IsActive:  c.IsActive,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// CatalogHandler serves items, vendors and chefs.
type CatalogHandler struct {
	svc *appsvcs.Services
}

// NewCatalogHandler returns a CatalogHandler backed by the given services.
func NewCatalogHandler(svc *appsvcs.Services) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// CreateItem creates a catalog item.
//
//	@Summary		Create item
//	@Description	Adds an item to the shared catalog. Founder only.
//	@Tags			items
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateItemRequest	true	"Item"
//	@Success		201		{object}	ItemResponse
//	@Header			201		{string}	Location	"URL of the new item"
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		403		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		413		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/items [post]
func (h *CatalogHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[CreateItemRequest](w, r)
	if !ok {
		return
	}

	item, err := h.svc.Catalog.CreateItem(r.Context(), user, appsvcs.ItemInput{
		Name:     req.Name,
		Unit:     req.Unit,
		SKU:      req.SKU,
		MinStock: req.MinStock,
	})
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.Created(w, "/api/items/"+item.ID.String(), itemResponse(*item))
}

// ListItems lists the catalog.
//
//	@Summary	List items
//	@Tags		items
//	@Produce	json
//	@Success	200	{array}		ItemResponse
//	@Failure	401	{object}	ErrorResponse
//	@Router		/items [get]
func (h *CatalogHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(w, r); !ok {
		return
	}
	items, err := h.svc.Catalog.ListItems(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	out := make([]ItemResponse, len(items))
	for i, it := range items {
		out[i] = itemResponse(it)
	}
	httpx.JSON(w, http.StatusOK, out)
}

// GetItem returns one item.
//
//	@Summary	Get item
//	@Tags		items
//	@Produce	json
//	@Param		id	path		string	true	"Item ID"
//	@Success	200	{object}	ItemResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/items/{id} [get]
func (h *CatalogHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(w, r); !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	item, err := h.svc.Catalog.GetItem(r.Context(), id)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, itemResponse(*item))
}

// UpdateItem patches an item.
//
//	@Summary	Update item
//	@Tags		items
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string				true	"Item ID"
//	@Param		request	body		UpdateItemRequest	true	"Changes"
//	@Success	200		{object}	ItemResponse
//	@Failure	403		{object}	ErrorResponse
//	@Failure	404		{object}	ErrorResponse
//	@Failure	422		{object}	ErrorResponse
//	@Router		/items/{id} [patch]
func (h *CatalogHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[UpdateItemRequest](w, r)
	if !ok {
		return
	}

	item, err := h.svc.Catalog.UpdateItem(r.Context(), user, id, appsvcs.ItemPatchInput{
		Name:          req.Name,
		Unit:          req.Unit,
		SKU:           req.SKU,
		MinStock:      req.MinStock,
		ClearMinStock: req.ClearMinStock,
		IsActive:      req.IsActive,
	})
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, itemResponse(*item))
}

// DeleteItem removes an item from the catalog. Its movements are kept.
//
//	@Summary	Delete item
//	@Tags		items
//	@Param		id	path	string	true	"Item ID"
//	@Success	204
//	@Failure	403	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/items/{id} [delete]
func (h *CatalogHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Catalog.DeleteItem(r.Context(), user, id); err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.NoContent(w)
}

// CreateVendor creates a vendor owned by the caller, or by chef_id for founders.
//
//	@Summary	Create vendor
//	@Tags		vendors
//	@Accept		json
//	@Produce	json
//	@Param		request	body		CreateVendorRequest	true	"Vendor"
//	@Success	201		{object}	VendorResponse
//	@Failure	403		{object}	ErrorResponse
//	@Failure	422		{object}	ErrorResponse
//	@Router		/vendors [post]
func (h *CatalogHandler) CreateVendor(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[CreateVendorRequest](w, r)
	if !ok {
		return
	}

	v, err := h.svc.Catalog.CreateVendor(r.Context(), user, appsvcs.VendorInput{
		Name:    req.Name,
		ChefID:  req.ChefID,
		Contact: req.ContactRequest.input(),
	})
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, vendorResponse(*v))
}

// ListVendors lists the vendors visible to the caller.
//
//	@Summary	List vendors
//	@Tags		vendors
//	@Produce	json
//	@Success	200	{array}	VendorResponse
//	@Router		/vendors [get]
func (h *CatalogHandler) ListVendors(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	vendors, err := h.svc.Catalog.ListVendors(r.Context(), user)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	out := make([]VendorResponse, len(vendors))
	for i, v := range vendors {
		out[i] = vendorResponse(v)
	}
	httpx.JSON(w, http.StatusOK, out)
}

// UpdateVendor patches a vendor.
//
//	@Summary	Update vendor
//	@Tags		vendors
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string				true	"Vendor ID"
//	@Param		request	body		UpdateVendorRequest	true	"Changes"
//	@Success	200		{object}	VendorResponse
//	@Failure	403		{object}	ErrorResponse
//	@Failure	404		{object}	ErrorResponse
//	@Router		/vendors/{id} [patch]
func (h *CatalogHandler) UpdateVendor(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[UpdateVendorRequest](w, r)
	if !ok {
		return
	}

	v, err := h.svc.Catalog.UpdateVendor(r.Context(), user, id, appsvcs.VendorPatchInput{
		Name:     req.Name,
		Contact:  req.ContactRequest.input(),
		IsActive: req.IsActive,
	})
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, vendorResponse(*v))
}

// DeleteVendor removes a vendor.
//
//	@Summary	Delete vendor
//	@Tags		vendors
//	@Param		id	path	string	true	"Vendor ID"
//	@Success	204
//	@Failure	403	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/vendors/{id} [delete]
func (h *CatalogHandler) DeleteVendor(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Catalog.DeleteVendor(r.Context(), user, id); err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.NoContent(w)
}

// CreateChef registers a chef. Founder only.
//
//	@Summary	Create chef
//	@Tags		chefs
//	@Accept		json
//	@Produce	json
//	@Param		request	body		CreateChefRequest	true	"Chef"
//	@Success	201		{object}	ChefResponse
//	@Failure	403		{object}	ErrorResponse
//	@Failure	422		{object}	ErrorResponse
//	@Router		/chefs [post]
func (h *CatalogHandler) CreateChef(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[CreateChefRequest](w, r)
	if !ok {
		return
	}

	c, err := h.svc.Catalog.CreateChef(r.Context(), user, appsvcs.ChefInput{
		Name:    req.Name,
		Contact: req.ContactRequest.input(),
	})
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, chefResponse(*c))
}

// ListChefs lists the chefs visible to the caller: all for founders, self for chefs.
//
//	@Summary	List chefs
//	@Tags		chefs
//	@Produce	json
//	@Success	200	{array}	ChefResponse
//	@Router		/chefs [get]
func (h *CatalogHandler) ListChefs(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	chefs, err := h.svc.Catalog.ListChefs(r.Context(), user)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	out := make([]ChefResponse, len(chefs))
	for i, c := range chefs {
		out[i] = chefResponse(c)
	}
	httpx.JSON(w, http.StatusOK, out)
}

// UpdateChef patches a chef. Founder only.
//
//	@Summary	Update chef
//	@Tags		chefs
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string				true	"Chef ID"
//	@Param		request	body		UpdateChefRequest	true	"Changes"
//	@Success	200		{object}	ChefResponse
//	@Failure	403		{object}	ErrorResponse
//	@Failure	404		{object}	ErrorResponse
//	@Router		/chefs/{id} [patch]
func (h *CatalogHandler) UpdateChef(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[UpdateChefRequest](w, r)
	if !ok {
		return
	}

	c, err := h.svc.Catalog.UpdateChef(r.Context(), user, id, appsvcs.ChefPatchInput{
		Name:     req.Name,
		Contact:  req.ContactRequest.input(),
		IsActive: req.IsActive,
	})
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, chefResponse(*c))
}

// DeleteChef removes a chef. The chef's movements stay in the ledger.
//
//	@Summary	Delete chef
//	@Tags		chefs
//	@Param		id	path	string	true	"Chef ID"
//	@Success	204
//	@Failure	403	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/chefs/{id} [delete]
func (h *CatalogHandler) DeleteChef(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Catalog.DeleteChef(r.Context(), user, id); err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.NoContent(w)
}
