package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ghuser/larder/services/inventory/domain"
	"github.com/ghuser/larder/services/inventory/domain/models"
	"github.com/ghuser/larder/services/inventory/domain/repositories"
	domainsvcs "github.com/ghuser/larder/services/inventory/domain/services"
)

// AuditService is the audit recorder. It is called explicitly by the other
// services after a state change succeeds, inside the same transaction, and
// never reads its own entries to make decisions.
type AuditService struct {
	repo repositories.AuditRepository
}

// NewAuditService returns an AuditService backed by repo.
func NewAuditService(repo repositories.AuditRepository) *AuditService {
	return &AuditService{repo: repo}
}

// Log appends one audit entry. It fails only on a malformed actor, action or
// scope, which is reported as a validation error.
func (s *AuditService) Log(ctx context.Context, p models.AuditParams) (*models.AuditEntry, error) {
	if p.ActorID == uuid.Nil {
		return nil, domain.ErrInvalidActor
	}
	if !p.Action.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidAction, p.Action)
	}
	entry, err := models.NewAuditEntry(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	if err := s.repo.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("append audit entry: %w", err)
	}
	return entry, nil
}

// LogFor appends an entry for an action performed by user, deriving scope and
// owner chef id from the user's role. A founder acting on a kitchen's stock is
// recorded in founder scope; the affected owner is in meta["owner"].
func (s *AuditService) LogFor(ctx context.Context, user models.CurrentUser, action models.Action, refID *uuid.UUID, meta map[string]any) (*models.AuditEntry, error) {
	return s.Log(ctx, models.AuditParams{
		ActorID: user.ID,
		Action:  action,
		Scope:   user.Scope(),
		ChefID:  user.Owner().ChefPtr(),
		RefID:   refID,
		Meta:    meta,
	})
}

// List returns the entries visible to user, most recent first.
func (s *AuditService) List(ctx context.Context, user models.CurrentUser, opts repositories.QueryOpts) ([]models.AuditEntry, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	return repositories.Paginate(domainsvcs.VisibleAudit(user, all), opts), nil
}
