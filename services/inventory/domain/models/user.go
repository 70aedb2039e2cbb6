package models

import (
	"fmt"

	"github.com/google/uuid"
)

// Role is the caller's role as asserted by the external auth collaborator.
type Role string

const (
	RoleFounder  Role = "founder"
	RoleHomeChef Role = "home_chef"
)

// IsValid reports whether the role is known.
func (r Role) IsValid() bool {
	return r == RoleFounder || r == RoleHomeChef
}

// CurrentUser is the identity every operation is evaluated against.
// ChefID is nil for founders and set for home chefs.
type CurrentUser struct {
	ID     uuid.UUID
	Role   Role
	ChefID *uuid.UUID
}

// NewCurrentUser validates the identity tuple handed over by authentication.
func NewCurrentUser(id uuid.UUID, role Role, chefID *uuid.UUID) (CurrentUser, error) {
	if id == uuid.Nil {
		return CurrentUser{}, fmt.Errorf("user id must be set")
	}
	if !role.IsValid() {
		return CurrentUser{}, fmt.Errorf("invalid role %q", role)
	}
	if role == RoleHomeChef && (chefID == nil || *chefID == uuid.Nil) {
		return CurrentUser{}, fmt.Errorf("home chef identity requires a chef id")
	}
	if role == RoleFounder {
		chefID = nil
	}
	return CurrentUser{ID: id, Role: role, ChefID: chefID}, nil
}

// IsFounder reports whether the user holds the founder role.
func (u CurrentUser) IsFounder() bool {
	return u.Role == RoleFounder
}

// Owner returns the owner the user acts as by default: the warehouse for a
// founder, the user's own kitchen for a chef.
func (u CurrentUser) Owner() Owner {
	if u.IsFounder() {
		return Warehouse()
	}
	return OwnerFromPtr(u.ChefID)
}

// Scope returns the audit scope the user's actions are recorded under.
func (u CurrentUser) Scope() Scope {
	if u.IsFounder() {
		return ScopeFounder
	}
	return ScopeChef
}
