package models

import (
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"
)

// Action tags an audit entry. The set is closed.
type Action string

const (
	ActionItemCreated      Action = "item.created"
	ActionItemUpdated      Action = "item.updated"
	ActionItemDeleted      Action = "item.deleted"
	ActionVendorCreated    Action = "vendor.created"
	ActionVendorUpdated    Action = "vendor.updated"
	ActionVendorDeleted    Action = "vendor.deleted"
	ActionChefCreated      Action = "chef.created"
	ActionChefUpdated      Action = "chef.updated"
	ActionChefDeleted      Action = "chef.deleted"
	ActionMovementRecorded Action = "movement.recorded"
	ActionMovementReversed Action = "movement.reversed"
	ActionStockCounted     Action = "stock.counted"
)

var validActions = []Action{
	ActionItemCreated,
	ActionItemUpdated,
	ActionItemDeleted,
	ActionVendorCreated,
	ActionVendorUpdated,
	ActionVendorDeleted,
	ActionChefCreated,
	ActionChefUpdated,
	ActionChefDeleted,
	ActionMovementRecorded,
	ActionMovementReversed,
	ActionStockCounted,
}

// IsValid reports whether the action belongs to the known set.
func (a Action) IsValid() bool {
	for _, candidate := range validActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// Scope is the audience an audit entry belongs to.
type Scope string

const (
	ScopeFounder Scope = "founder"
	ScopeChef    Scope = "chef"
)

// IsValid reports whether the scope is known.
func (s Scope) IsValid() bool {
	return s == ScopeFounder || s == ScopeChef
}

// AuditEntry is an immutable record of one state-changing action.
type AuditEntry struct {
	ID        uuid.UUID
	ActorID   uuid.UUID
	Action    Action
	Scope     Scope
	ChefID    *uuid.UUID // nil for founder scope
	RefID     *uuid.UUID
	Meta      map[string]any
	CreatedAt time.Time
}

// AuditParams carries the caller-controlled fields of a new audit entry.
type AuditParams struct {
	ActorID uuid.UUID
	Action  Action
	Scope   Scope
	ChefID  *uuid.UUID
	RefID   *uuid.UUID
	Meta    map[string]any
}

// NewAuditEntry validates p and stamps identity and creation time.
func NewAuditEntry(p AuditParams) (*AuditEntry, error) {
	if p.ActorID == uuid.Nil {
		return nil, fmt.Errorf("actor must be set")
	}
	if !p.Action.IsValid() {
		return nil, fmt.Errorf("unknown action %q", p.Action)
	}
	if !p.Scope.IsValid() {
		return nil, fmt.Errorf("unknown scope %q", p.Scope)
	}
	if p.Scope == ScopeFounder && p.ChefID != nil {
		return nil, fmt.Errorf("founder-scope entries carry no chef id")
	}
	if p.Scope == ScopeChef && (p.ChefID == nil || *p.ChefID == uuid.Nil) {
		return nil, fmt.Errorf("chef-scope entries require a chef id")
	}
	e := &AuditEntry{
		ID:        uuid.New(),
		ActorID:   p.ActorID,
		Action:    p.Action,
		Scope:     p.Scope,
		Meta:      maps.Clone(p.Meta),
		CreatedAt: time.Now().UTC(),
	}
	if p.ChefID != nil {
		id := *p.ChefID
		e.ChefID = &id
	}
	if p.RefID != nil {
		id := *p.RefID
		e.RefID = &id
	}
	return e, nil
}

// Clone returns a deep copy. Meta is copied one level deep.
func (e AuditEntry) Clone() AuditEntry {
	if e.ChefID != nil {
		id := *e.ChefID
		e.ChefID = &id
	}
	if e.RefID != nil {
		id := *e.RefID
		e.RefID = &id
	}
	e.Meta = maps.Clone(e.Meta)
	return e
}
