package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/larder/pkg/errhttp"
	"github.com/ghuser/larder/pkg/httpx"
	pkgvalidator "github.com/ghuser/larder/pkg/validator"
	appsvcs "github.com/ghuser/larder/services/inventory/application/services"
	"github.com/ghuser/larder/services/inventory/application/workflows"
	"github.com/ghuser/larder/services/inventory/domain/models"
)

func init() {
	pkgvalidator.MustRegisterStringRule("owner", `Must be "warehouse" or a chef id`, func(s string) bool {
		_, err := models.ParseOwner(s)
		return err == nil
	})
}

// RecordMovementRequest is the request body for POST /movements. Owner is
// "warehouse" or a chef id and defaults to the caller's own scope.
type RecordMovementRequest struct {
	ItemID   uuid.UUID  `json:"item_id"             validate:"required"`
	VendorID *uuid.UUID `json:"vendor_id,omitempty"`
	Kind     string     `json:"kind"                validate:"required,oneof=IN OUT ADJUST" example:"IN"`
	Quantity float64    `json:"quantity"            validate:"required,gt=0"                example:"12.5"`
	UnitCost *float64   `json:"unit_cost,omitempty" validate:"omitempty,gte=0"              example:"1.2"`
	Owner    string     `json:"owner,omitempty"     validate:"omitempty,owner"              example:"warehouse"`
	Note     string     `json:"note,omitempty"      validate:"max=1000"`
} // @name RecordMovementRequest

func (req RecordMovementRequest) row(user models.CurrentUser) workflows.ImportRow {
	owner := req.Owner
	if owner == "" {
		owner = user.Owner().String()
	}
	return workflows.ImportRow{
		ItemID:   req.ItemID,
		VendorID: req.VendorID,
		Kind:     req.Kind,
		Quantity: req.Quantity,
		UnitCost: req.UnitCost,
		Owner:    owner,
		Note:     req.Note,
	}
}

// ReverseMovementRequest is the request body for POST /movements/{id}/reverse.
type ReverseMovementRequest struct {
	Note string `json:"note,omitempty" validate:"max=1000" example:"entered twice"`
} // @name ReverseMovementRequest

// ImportMovementsRequest is the request body for POST /movements/import.
type ImportMovementsRequest struct {
	Rows []RecordMovementRequest `json:"rows" validate:"required,min=1,max=1000,dive"`
} // @name ImportMovementsRequest

// ImportAcceptedResponse is returned when the import runs as a workflow.
type ImportAcceptedResponse struct {
	WorkflowID string `json:"workflow_id" example:"import-3f1c..."`
} // @name ImportAcceptedResponse

// ImportResponse is returned when the import was applied synchronously.
type ImportResponse struct {
	MovementIDs []uuid.UUID `json:"movement_ids"`
} // @name ImportResponse

// CountRequest is the request body for POST /stock/count.
type CountRequest struct {
	ItemID  uuid.UUID `json:"item_id"         validate:"required"`
	Owner   string    `json:"owner,omitempty" validate:"omitempty,owner" example:"warehouse"`
	Counted float64   `json:"counted"         validate:"gte=0" example:"9"`
	Note    string    `json:"note,omitempty"  validate:"max=1000"`
} // @name CountRequest

// CountResponse reports how a count was reconciled.
type CountResponse struct {
	OnHandBefore decimal.Decimal   `json:"on_hand_before" swaggertype:"string" example:"10"`
	Counted      decimal.Decimal   `json:"counted"        swaggertype:"string" example:"9"`
	Delta        decimal.Decimal   `json:"delta"          swaggertype:"string" example:"-1"`
	Movement     *MovementResponse `json:"movement,omitempty"`
} // @name CountResponse

// OnHandResponse is the balance of one (item, owner) key.
type OnHandResponse struct {
	ItemID uuid.UUID       `json:"item_id"`
	Owner  string          `json:"owner"   example:"warehouse"`
	OnHand decimal.Decimal `json:"on_hand" swaggertype:"string" example:"7.5"`
} // @name OnHandResponse

// StockLineResponse is one row of the low-stock report.
type StockLineResponse struct {
	ItemID   uuid.UUID        `json:"item_id"`
	ItemName string           `json:"item_name" example:"Flour"`
	Unit     string           `json:"unit"      example:"kg"`
	Owner    string           `json:"owner"     example:"warehouse"`
	OnHand   decimal.Decimal  `json:"on_hand"   swaggertype:"string" example:"2"`
	MinStock *decimal.Decimal `json:"min_stock" swaggertype:"string" example:"5"`
} // @name StockLineResponse

// AuditEntryResponse is one audit log entry.
type AuditEntryResponse struct {
	ID        uuid.UUID      `json:"id"`
	ActorID   uuid.UUID      `json:"actor_id"`
	Action    string         `json:"action" example:"movement.recorded"`
	Scope     string         `json:"scope"  example:"founder"`
	ChefID    *uuid.UUID     `json:"chef_id,omitempty"`
	RefID     *uuid.UUID     `json:"ref_id,omitempty"`
	Meta      map[string]any `json:"meta,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
} // @name AuditEntryResponse

// ImportStarter submits an import batch for asynchronous processing.
type ImportStarter interface {
	StartImport(ctx context.Context, req workflows.ImportRequest) (string, error)
}

// LedgerHandler serves movements, stock queries and the audit log.
type LedgerHandler struct {
	svc     *appsvcs.Services
	imports ImportStarter
}

// NewLedgerHandler returns a LedgerHandler. imports may be nil, in which case
// imports are applied within the request.
func NewLedgerHandler(svc *appsvcs.Services, imports ImportStarter) *LedgerHandler {
	return &LedgerHandler{svc: svc, imports: imports}
}

func (h *LedgerHandler) itemIndex(w http.ResponseWriter, r *http.Request) (models.ItemIndex, bool) {
	idx, err := h.svc.Catalog.ItemIndex(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return nil, false
	}
	return idx, true
}

// RecordMovement appends one movement.
//
//	@Summary		Record movement
//	@Description	Appends an IN, OUT or ADJUST movement for an (item, owner) key.
//	@Tags			movements
//	@Accept			json
//	@Produce		json
//	@Param			request	body		RecordMovementRequest	true	"Movement"
//	@Success		201		{object}	MovementResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		403		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/movements [post]
func (h *LedgerHandler) RecordMovement(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[RecordMovementRequest](w, r)
	if !ok {
		return
	}
	inputs, err := workflows.Inputs([]workflows.ImportRow{req.row(user)})
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	m, err := h.svc.Ledger.Record(r.Context(), user, inputs[0])
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	idx, ok := h.itemIndex(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusCreated, movementResponse(*m, idx))
}

// ListMovements lists the movements of one owner.
//
//	@Summary	List movements
//	@Tags		movements
//	@Produce	json
//	@Param		owner	query		string	false	"warehouse or a chef id; defaults to the caller's scope"
//	@Param		limit	query		int		false	"page size (max 500)"
//	@Param		offset	query		int		false	"rows to skip"
//	@Success	200		{array}		MovementResponse
//	@Failure	403		{object}	ErrorResponse
//	@Failure	422		{object}	ErrorResponse
//	@Router		/movements [get]
func (h *LedgerHandler) ListMovements(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	owner, ok := ownerParam(w, r, user)
	if !ok {
		return
	}
	opts, ok := queryOpts(w, r)
	if !ok {
		return
	}

	ms, err := h.svc.Ledger.MovementsFor(r.Context(), user, owner, opts)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	idx, ok := h.itemIndex(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, movementResponses(ms, idx))
}

// Overview lists every movement of every owner. Founder only.
//
//	@Summary	Movement overview
//	@Tags		movements
//	@Produce	json
//	@Param		limit	query		int	false	"page size (max 500)"
//	@Param		offset	query		int	false	"rows to skip"
//	@Success	200		{array}		MovementResponse
//	@Failure	403		{object}	ErrorResponse
//	@Router		/movements/overview [get]
func (h *LedgerHandler) Overview(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	opts, ok := queryOpts(w, r)
	if !ok {
		return
	}

	ms, err := h.svc.Ledger.Overview(r.Context(), user, opts)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	idx, ok := h.itemIndex(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, movementResponses(ms, idx))
}

// ReverseMovement appends the compensating entry of a movement.
//
//	@Summary	Reverse movement
//	@Tags		movements
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string					true	"Movement ID"
//	@Param		request	body		ReverseMovementRequest	false	"Reason"
//	@Success	201		{object}	MovementResponse
//	@Failure	403		{object}	ErrorResponse
//	@Failure	404		{object}	ErrorResponse
//	@Failure	422		{object}	ErrorResponse
//	@Router		/movements/{id}/reverse [post]
func (h *LedgerHandler) ReverseMovement(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var note string
	if r.ContentLength != 0 {
		req, ok := pkgvalidator.ValidateRequest[ReverseMovementRequest](w, r)
		if !ok {
			return
		}
		note = req.Note
	}

	m, err := h.svc.Ledger.Reverse(r.Context(), user, id, note)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	idx, ok := h.itemIndex(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusCreated, movementResponse(*m, idx))
}

// ImportMovements appends a batch of movements atomically. With Temporal
// enabled the batch runs as a workflow and 202 is returned.
//
//	@Summary	Import movements
//	@Tags		movements
//	@Accept		json
//	@Produce	json
//	@Param		request	body		ImportMovementsRequest	true	"Batch"
//	@Success	201		{object}	ImportResponse
//	@Success	202		{object}	ImportAcceptedResponse
//	@Failure	403		{object}	ErrorResponse
//	@Failure	422		{object}	ErrorResponse
//	@Router		/movements/import [post]
func (h *LedgerHandler) ImportMovements(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[ImportMovementsRequest](w, r)
	if !ok {
		return
	}

	rows := make([]workflows.ImportRow, len(req.Rows))
	for i, row := range req.Rows {
		rows[i] = row.row(user)
	}

	if h.imports != nil {
		id, err := h.imports.StartImport(r.Context(), workflows.ImportRequest{
			Actor: workflows.ActorFrom(user),
			Rows:  rows,
		})
		if err != nil {
			errhttp.WriteError(w, err)
			return
		}
		httpx.JSON(w, http.StatusAccepted, ImportAcceptedResponse{WorkflowID: id})
		return
	}

	inputs, err := workflows.Inputs(rows)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	ms, err := h.svc.Ledger.Import(r.Context(), user, inputs)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	resp := ImportResponse{MovementIDs: make([]uuid.UUID, len(ms))}
	for i, m := range ms {
		resp.MovementIDs[i] = m.ID
	}
	httpx.JSON(w, http.StatusCreated, resp)
}

// OnHand returns the folded balance of one (item, owner) key.
//
//	@Summary	On-hand balance
//	@Tags		stock
//	@Produce	json
//	@Param		item_id	query		string	true	"Item ID"
//	@Param		owner	query		string	false	"warehouse or a chef id"
//	@Success	200		{object}	OnHandResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	403		{object}	ErrorResponse
//	@Failure	422		{object}	ErrorResponse
//	@Router		/stock/on-hand [get]
func (h *LedgerHandler) OnHand(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	itemID, err := uuid.Parse(r.URL.Query().Get("item_id"))
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "item_id must be a UUID")
		return
	}
	owner, ok := ownerParam(w, r, user)
	if !ok {
		return
	}

	onHand, err := h.svc.Ledger.OnHand(r.Context(), user, models.NewOwnerKey(itemID, owner))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, OnHandResponse{ItemID: itemID, Owner: owner.String(), OnHand: onHand})
}

// LowStock lists the active items of one owner below their minimum.
//
//	@Summary	Low-stock report
//	@Tags		stock
//	@Produce	json
//	@Param		owner	query		string	false	"warehouse or a chef id"
//	@Success	200		{array}		StockLineResponse
//	@Failure	403		{object}	ErrorResponse
//	@Failure	422		{object}	ErrorResponse
//	@Router		/stock/low [get]
func (h *LedgerHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	owner, ok := ownerParam(w, r, user)
	if !ok {
		return
	}

	lines, err := h.svc.Ledger.LowStock(r.Context(), user, owner)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	out := make([]StockLineResponse, len(lines))
	for i, l := range lines {
		out[i] = StockLineResponse{
			ItemID:   l.Item.ID,
			ItemName: l.Item.Name.String(),
			Unit:     string(l.Item.Unit),
			Owner:    l.Owner.String(),
			OnHand:   l.OnHand,
			MinStock: l.Item.MinStock,
		}
	}
	httpx.JSON(w, http.StatusOK, out)
}

// CountStock reconciles a physical count against the ledger.
//
//	@Summary		Count stock
//	@Description	Records the IN/OUT correction needed to match the counted quantity, or an ADJUST marker when nothing changed.
//	@Tags			stock
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CountRequest	true	"Count"
//	@Success		200		{object}	CountResponse
//	@Failure		403		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/stock/count [post]
func (h *LedgerHandler) CountStock(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[CountRequest](w, r)
	if !ok {
		return
	}
	owner := user.Owner()
	if req.Owner != "" {
		parsed, err := models.ParseOwner(req.Owner)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		owner = parsed
	}

	res, err := h.svc.Ledger.CountStock(r.Context(), user, appsvcs.CountInput{
		ItemID:  req.ItemID,
		Owner:   owner,
		Counted: req.Counted,
		Note:    req.Note,
	})
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	resp := CountResponse{OnHandBefore: res.OnHandBefore, Counted: res.Counted, Delta: res.Delta}
	if res.Movement != nil {
		idx, ok := h.itemIndex(w, r)
		if !ok {
			return
		}
		m := movementResponse(*res.Movement, idx)
		resp.Movement = &m
	}
	httpx.JSON(w, http.StatusOK, resp)
}

// ListAudit lists the audit entries visible to the caller, most recent first.
//
//	@Summary	Audit log
//	@Tags		audit
//	@Produce	json
//	@Param		limit	query	int	false	"page size (max 500)"
//	@Param		offset	query	int	false	"rows to skip"
//	@Success	200		{array}	AuditEntryResponse
//	@Router		/audit [get]
func (h *LedgerHandler) ListAudit(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	opts, ok := queryOpts(w, r)
	if !ok {
		return
	}

	entries, err := h.svc.Audit.List(r.Context(), user, opts)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	out := make([]AuditEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = AuditEntryResponse{
			ID:        e.ID,
			ActorID:   e.ActorID,
			Action:    string(e.Action),
			Scope:     string(e.Scope),
			ChefID:    e.ChefID,
			RefID:     e.RefID,
			Meta:      e.Meta,
			CreatedAt: e.CreatedAt,
		}
	}
	httpx.JSON(w, http.StatusOK, out)
}
