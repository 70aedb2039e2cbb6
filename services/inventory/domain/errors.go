package domain

import (
	"errors"
	"fmt"
)

// Error kinds for the inventory domain. Every specific sentinel below wraps
// exactly one of them, so callers can match either with errors.Is().
var (
	// ErrValidation indicates malformed input: a missing field, a bad quantity
	// or an unknown enumerated value.
	ErrValidation = errors.New("validation error")

	// ErrNotFound indicates the operation targets an unknown entity id.
	ErrNotFound = errors.New("not found")

	// ErrPermission indicates the access policy denied the mutation or read scope.
	ErrPermission = errors.New("permission denied")

	// ErrAlreadyExists indicates a unique constraint (e.g. item SKU) was violated.
	ErrAlreadyExists = errors.New("already exists")
)

// Validation failures.
var (
	ErrInvalidName     = fmt.Errorf("%w: invalid name", ErrValidation)
	ErrInvalidUnit     = fmt.Errorf("%w: invalid unit", ErrValidation)
	ErrInvalidQuantity = fmt.Errorf("%w: quantity must be a finite positive number", ErrValidation)
	ErrInvalidKind     = fmt.Errorf("%w: movement kind must be one of IN, OUT, ADJUST", ErrValidation)
	ErrInvalidActor    = fmt.Errorf("%w: actor is required", ErrValidation)
	ErrInvalidAction   = fmt.Errorf("%w: unknown audit action", ErrValidation)
	ErrInvalidUser     = fmt.Errorf("%w: invalid user identity", ErrValidation)
	ErrInvalidCost     = fmt.Errorf("%w: unit cost must be a finite non-negative number", ErrValidation)
	ErrEmptyBatch      = fmt.Errorf("%w: import batch is empty", ErrValidation)

	// ErrMovementAlreadyReversed is returned when a movement already has a
	// compensating entry, or is itself a compensating entry.
	ErrMovementAlreadyReversed = fmt.Errorf("%w: movement cannot be reversed again", ErrValidation)
)

// Lookup failures.
var (
	ErrItemNotFound     = fmt.Errorf("item %w", ErrNotFound)
	ErrVendorNotFound   = fmt.Errorf("vendor %w", ErrNotFound)
	ErrChefNotFound     = fmt.Errorf("chef %w", ErrNotFound)
	ErrMovementNotFound = fmt.Errorf("movement %w", ErrNotFound)
)

// Policy failures.
var (
	ErrCatalogForbidden  = fmt.Errorf("%w: catalog management requires the founder role", ErrPermission)
	ErrVendorForbidden   = fmt.Errorf("%w: vendor belongs to another owner", ErrPermission)
	ErrOwnerForbidden    = fmt.Errorf("%w: owner is outside the caller's scope", ErrPermission)
	ErrOverviewForbidden = fmt.Errorf("%w: overview requires the founder role", ErrPermission)
)
