package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestWithIdentity_IdentityFromCtx(t *testing.T) {
	chefID := uuid.New()
	want := Identity{UserID: uuid.New(), Role: "home_chef", ChefID: &chefID}
	ctx := WithIdentity(context.Background(), want)

	got, err := IdentityFromCtx(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.UserID != want.UserID || got.Role != want.Role || *got.ChefID != chefID {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestIdentityFromCtx_EmptyContext(t *testing.T) {
	_, err := IdentityFromCtx(context.Background())
	if !errors.Is(err, ErrIdentityNotFound) {
		t.Fatalf("expected ErrIdentityNotFound, got %v", err)
	}
}

func TestIdentityFromCtx_NilUserID(t *testing.T) {
	ctx := WithIdentity(context.Background(), Identity{Role: "founder"})
	_, err := IdentityFromCtx(ctx)
	if !errors.Is(err, ErrIdentityNotFound) {
		t.Fatalf("expected ErrIdentityNotFound for uuid.Nil, got %v", err)
	}
}
