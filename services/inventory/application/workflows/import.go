// Package workflows runs bulk movement imports on Temporal. The workflow
// wraps one activity that appends the whole batch atomically through the
// ledger service.
package workflows

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/ghuser/larder/services/inventory/application/services"
	"github.com/ghuser/larder/services/inventory/domain"
	"github.com/ghuser/larder/services/inventory/domain/models"
)

const (
	ImportWorkflowName  = "inventory.import"
	importActivityName  = "inventory.import.apply"
	errTypeRejected     = "ImportRejected"
	importActivityLimit = 2 * time.Minute
)

// Actor is the serializable form of the caller identity.
type Actor struct {
	UserID uuid.UUID  `json:"user_id"`
	Role   string     `json:"role"`
	ChefID *uuid.UUID `json:"chef_id,omitempty"`
}

// ActorFrom converts a resolved caller into an Actor.
func ActorFrom(u models.CurrentUser) Actor {
	return Actor{UserID: u.ID, Role: string(u.Role), ChefID: u.ChefID}
}

// User restores the caller identity.
func (a Actor) User() (models.CurrentUser, error) {
	u, err := models.NewCurrentUser(a.UserID, models.Role(a.Role), a.ChefID)
	if err != nil {
		return models.CurrentUser{}, fmt.Errorf("%w: %w", domain.ErrInvalidUser, err)
	}
	return u, nil
}

// ImportRow is one movement of an import batch. Owner is "warehouse" or a chef id.
type ImportRow struct {
	ItemID   uuid.UUID  `json:"item_id"`
	VendorID *uuid.UUID `json:"vendor_id,omitempty"`
	Kind     string     `json:"kind"`
	Quantity float64    `json:"quantity"`
	UnitCost *float64   `json:"unit_cost,omitempty"`
	Owner    string     `json:"owner"`
	Note     string     `json:"note,omitempty"`
}

// ImportRequest is the workflow input.
type ImportRequest struct {
	Actor Actor       `json:"actor"`
	Rows  []ImportRow `json:"rows"`
}

// ImportResult lists the appended movements in batch order.
type ImportResult struct {
	MovementIDs []uuid.UUID `json:"movement_ids"`
}

// Inputs converts rows into ledger inputs. An unparsable owner fails the
// whole batch.
func Inputs(rows []ImportRow) ([]services.RecordMovementInput, error) {
	out := make([]services.RecordMovementInput, 0, len(rows))
	for i, row := range rows {
		owner, err := models.ParseOwner(row.Owner)
		if err != nil {
			return nil, fmt.Errorf("movement %d: %w: %w", i, domain.ErrValidation, err)
		}
		out = append(out, services.RecordMovementInput{
			ItemID:   row.ItemID,
			VendorID: row.VendorID,
			Kind:     row.Kind,
			Quantity: row.Quantity,
			UnitCost: row.UnitCost,
			Owner:    owner,
			Note:     row.Note,
		})
	}
	return out, nil
}

// ImportWorkflow applies req in a single activity. Rejected batches fail
// without retry.
func ImportWorkflow(ctx workflow.Context, req ImportRequest) (ImportResult, error) {
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: importActivityLimit,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        time.Second,
			BackoffCoefficient:     2,
			MaximumAttempts:        5,
			NonRetryableErrorTypes: []string{errTypeRejected},
		},
	})

	workflow.GetLogger(ctx).Info("import started", "rows", len(req.Rows))

	var res ImportResult
	if err := workflow.ExecuteActivity(ctx, importActivityName, req).Get(ctx, &res); err != nil {
		return ImportResult{}, err
	}
	return res, nil
}

// Activities holds the activity implementations.
type Activities struct {
	Ledger *services.LedgerService
}

// ApplyImport appends the batch. Validation, permission and lookup failures
// are returned as non-retryable.
//
// Movement ids are derived from the workflow id, so an attempt retried after
// its commit returns the stored batch instead of appending it again.
func (a *Activities) ApplyImport(ctx context.Context, req ImportRequest) (ImportResult, error) {
	user, err := req.Actor.User()
	if err != nil {
		return ImportResult{}, rejected(err)
	}
	inputs, err := Inputs(req.Rows)
	if err != nil {
		return ImportResult{}, rejected(err)
	}
	workflowID := activity.GetInfo(ctx).WorkflowExecution.ID
	for i := range inputs {
		inputs[i].ID = MovementID(workflowID, i)
	}

	movements, err := a.Ledger.Import(ctx, user, inputs)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrPermission) || errors.Is(err, domain.ErrNotFound) {
			return ImportResult{}, rejected(err)
		}
		return ImportResult{}, err
	}

	res := ImportResult{MovementIDs: make([]uuid.UUID, len(movements))}
	for i, m := range movements {
		res.MovementIDs[i] = m.ID
	}
	return res, nil
}

// importNamespace scopes the name-based ids of imported movements.
var importNamespace = uuid.MustParse("6f1c2d3e-8a47-5b9c-9e0d-4c3b2a190817")

// MovementID is the id of row i of the import run by workflowID.
func MovementID(workflowID string, i int) uuid.UUID {
	return uuid.NewSHA1(importNamespace, fmt.Appendf(nil, "%s/%d", workflowID, i))
}

func rejected(err error) error {
	return temporal.NewNonRetryableApplicationError(err.Error(), errTypeRejected, err)
}

// Registry is the registration surface shared by worker.Worker and the
// test workflow environment.
type Registry interface {
	RegisterWorkflowWithOptions(w any, options workflow.RegisterOptions)
	RegisterActivityWithOptions(a any, options activity.RegisterOptions)
}

// Register registers the import workflow and its activity on r.
func Register(r Registry, ledger *services.LedgerService) {
	r.RegisterWorkflowWithOptions(ImportWorkflow, workflow.RegisterOptions{Name: ImportWorkflowName})
	acts := &Activities{Ledger: ledger}
	r.RegisterActivityWithOptions(acts.ApplyImport, activity.RegisterOptions{Name: importActivityName})
}

// Starter starts import workflows.
type Starter struct {
	client    client.Client
	taskQueue string
}

// NewStarter returns a Starter submitting to taskQueue.
func NewStarter(c client.Client, taskQueue string) *Starter {
	return &Starter{client: c, taskQueue: taskQueue}
}

// StartImport submits req and returns the workflow id without waiting for it.
func (s *Starter) StartImport(ctx context.Context, req ImportRequest) (string, error) {
	run, err := s.client.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        "import-" + uuid.NewString(),
		TaskQueue: s.taskQueue,
	}, ImportWorkflowName, req)
	if err != nil {
		return "", fmt.Errorf("start import workflow: %w", err)
	}
	return run.GetID(), nil
}
