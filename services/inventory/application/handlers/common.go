package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/larder/pkg/auth"
	"github.com/ghuser/larder/pkg/errhttp"
	"github.com/ghuser/larder/pkg/httpx"
	appsvcs "github.com/ghuser/larder/services/inventory/application/services"
	"github.com/ghuser/larder/services/inventory/domain"
	"github.com/ghuser/larder/services/inventory/domain/models"
	"github.com/ghuser/larder/services/inventory/domain/repositories"
)

const maxPageSize = 500

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	Error string `json:"error" example:"item not found: 123e4567-e89b-12d3-a456-426614174000"`
} // @name ErrorResponse

// ContactRequest holds optional contact fields shared by vendors and chefs.
type ContactRequest struct {
	Phone   *string `json:"phone,omitempty"   validate:"omitempty,max=32"  example:"+1 555 0100"`
	Email   *string `json:"email,omitempty"   validate:"omitempty,email"   example:"orders@millers.example"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=500" example:"12 Mill Lane"`
} // @name ContactRequest

func (c ContactRequest) input() appsvcs.ContactInput {
	return appsvcs.ContactInput{Phone: c.Phone, Email: c.Email, Address: c.Address}
}

// ContactResponse is the contact block of vendor and chef responses.
type ContactResponse struct {
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
} // @name ContactResponse

func contactResponse(c models.Contact) ContactResponse {
	return ContactResponse{Phone: c.Phone, Email: c.Email, Address: c.Address}
}

// MovementResponse is one ledger entry.
type MovementResponse struct {
	ID         uuid.UUID        `json:"id"`
	ItemID     uuid.UUID        `json:"item_id"`
	ItemName   string           `json:"item_name"             example:"Flour"`
	VendorID   *uuid.UUID       `json:"vendor_id,omitempty"`
	Kind       string           `json:"kind"                  example:"IN"`
	Quantity   decimal.Decimal  `json:"quantity"              swaggertype:"string" example:"12.5"`
	UnitCost   *decimal.Decimal `json:"unit_cost,omitempty"   swaggertype:"string" example:"1.20"`
	Note       string           `json:"note,omitempty"`
	Owner      string           `json:"owner"                 example:"warehouse"`
	ReversesID *uuid.UUID       `json:"reverses_id,omitempty"`
	CreatedBy  uuid.UUID        `json:"created_by"`
	CreatedAt  time.Time        `json:"created_at"`
} // @name MovementResponse

func movementResponse(m models.StockMovement, idx models.ItemIndex) MovementResponse {
	return MovementResponse{
		ID:         m.ID,
		ItemID:     m.ItemID,
		ItemName:   idx.Label(m.ItemID),
		VendorID:   m.VendorID,
		Kind:       string(m.Kind),
		Quantity:   m.Quantity,
		UnitCost:   m.UnitCost,
		Note:       m.Note,
		Owner:      m.Owner().String(),
		ReversesID: m.ReversesID,
		CreatedBy:  m.CreatedBy,
		CreatedAt:  m.CreatedAt,
	}
}

func movementResponses(ms []models.StockMovement, idx models.ItemIndex) []MovementResponse {
	out := make([]MovementResponse, len(ms))
	for i, m := range ms {
		out[i] = movementResponse(m, idx)
	}
	return out
}

// currentUser resolves the authenticated identity into a domain user and
// writes 401 when it is missing or malformed.
func currentUser(w http.ResponseWriter, r *http.Request) (models.CurrentUser, bool) {
	id, err := auth.IdentityFromCtx(r.Context())
	if err != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "authentication required")
		return models.CurrentUser{}, false
	}
	user, err := models.NewCurrentUser(id.UserID, models.Role(id.Role), id.ChefID)
	if err != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid identity: "+err.Error())
		return models.CurrentUser{}, false
	}
	return user, true
}

// pathID parses the {id} URL parameter and writes 400 when it is not a UUID.
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// ownerParam reads the owner query parameter. An absent parameter selects
// the caller's own scope; an unparsable one answers 422 like an invalid
// owner in a request body.
func ownerParam(w http.ResponseWriter, r *http.Request, user models.CurrentUser) (models.Owner, bool) {
	raw := r.URL.Query().Get("owner")
	if raw == "" {
		return user.Owner(), true
	}
	owner, err := models.ParseOwner(raw)
	if err != nil {
		errhttp.WriteError(w, fmt.Errorf("%w: owner: %w", domain.ErrValidation, err))
		return models.Owner{}, false
	}
	return owner, true
}

// queryOpts reads limit and offset. limit is capped at maxPageSize.
func queryOpts(w http.ResponseWriter, r *http.Request) (repositories.QueryOpts, bool) {
	var opts repositories.QueryOpts
	q := r.URL.Query()
	for _, p := range []struct {
		name string
		dst  *int
	}{{"limit", &opts.Limit}, {"offset", &opts.Offset}} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			httpx.JSONError(w, http.StatusBadRequest, p.name+" must be a non-negative integer")
			return repositories.QueryOpts{}, false
		}
		*p.dst = n
	}
	if opts.Limit == 0 || opts.Limit > maxPageSize {
		opts.Limit = maxPageSize
	}
	return opts, true
}
