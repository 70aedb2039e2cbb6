package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelErrors_WrapTheirKind(t *testing.T) {
	tests := []struct {
		err  error
		kind error
	}{
		{ErrInvalidName, ErrValidation},
		{ErrInvalidQuantity, ErrValidation},
		{ErrInvalidKind, ErrValidation},
		{ErrEmptyBatch, ErrValidation},
		{ErrMovementAlreadyReversed, ErrValidation},
		{ErrItemNotFound, ErrNotFound},
		{ErrMovementNotFound, ErrNotFound},
		{ErrOwnerForbidden, ErrPermission},
		{ErrOverviewForbidden, ErrPermission},
		{ErrCatalogForbidden, ErrPermission},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if !errors.Is(tt.err, tt.kind) {
				t.Fatalf("%v must match %v", tt.err, tt.kind)
			}
			wrapped := fmt.Errorf("record movement: %w", tt.err)
			if !errors.Is(wrapped, tt.err) || !errors.Is(wrapped, tt.kind) {
				t.Fatal("wrapping must keep both the sentinel and its kind")
			}
		})
	}
}

func TestSentinelErrors_KindsAreDistinct(t *testing.T) {
	if errors.Is(ErrItemNotFound, ErrValidation) || errors.Is(ErrOwnerForbidden, ErrNotFound) {
		t.Fatal("a sentinel must wrap exactly one kind")
	}
}

func TestSentinelErrors_Messages(t *testing.T) {
	if ErrItemNotFound.Error() != "item not found" {
		t.Fatalf("unexpected message: %q", ErrItemNotFound.Error())
	}
	if ErrOverviewForbidden.Error() != "permission denied: overview requires the founder role" {
		t.Fatalf("unexpected message: %q", ErrOverviewForbidden.Error())
	}
}
