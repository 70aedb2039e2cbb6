package models

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func validParams() MovementParams {
	cost := decimal.RequireFromString("1.20")
	vendor := uuid.New()
	return MovementParams{
		ItemID:    uuid.New(),
		VendorID:  &vendor,
		Kind:      KindIn,
		Quantity:  decimal.RequireFromString("12.5"),
		UnitCost:  &cost,
		Owner:     ChefOwner(uuid.New()),
		Note:      "weekly delivery",
		CreatedBy: uuid.New(),
	}
}

func TestNewStockMovement(t *testing.T) {
	t.Run("stamps identity and keeps the owner", func(t *testing.T) {
		p := validParams()
		m, err := NewStockMovement(p)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if m.ID == uuid.Nil {
			t.Fatal("expected non-zero ID")
		}
		if m.CreatedAt.IsZero() {
			t.Fatal("expected CreatedAt to be set")
		}
		if m.Owner() != p.Owner {
			t.Fatalf("owner: got %v, want %v", m.Owner(), p.Owner)
		}
		if m.ReversesID != nil {
			t.Fatal("a new movement is not a reversal")
		}
	})

	t.Run("copies pointer inputs", func(t *testing.T) {
		p := validParams()
		m, err := NewStockMovement(p)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		*p.VendorID = uuid.New()
		*p.UnitCost = decimal.NewFromInt(99)
		if *m.VendorID == *p.VendorID {
			t.Fatal("VendorID aliases the caller's value")
		}
		if m.UnitCost.Equal(*p.UnitCost) {
			t.Fatal("UnitCost aliases the caller's value")
		}
	})

	tests := []struct {
		name   string
		mutate func(*MovementParams)
	}{
		{"missing item", func(p *MovementParams) { p.ItemID = uuid.Nil }},
		{"unknown kind", func(p *MovementParams) { p.Kind = "MOVE" }},
		{"zero quantity", func(p *MovementParams) { p.Quantity = decimal.Zero }},
		{"negative quantity", func(p *MovementParams) { p.Quantity = decimal.NewFromInt(-1) }},
		{"negative cost", func(p *MovementParams) { c := decimal.NewFromInt(-1); p.UnitCost = &c }},
		{"missing actor", func(p *MovementParams) { p.CreatedBy = uuid.Nil }},
	}
	for _, tt := range tests {
		t.Run("rejects "+tt.name, func(t *testing.T) {
			p := validParams()
			tt.mutate(&p)
			if _, err := NewStockMovement(p); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestMovementKind_SignAndOpposite(t *testing.T) {
	tests := []struct {
		kind     MovementKind
		sign     int64
		opposite MovementKind
	}{
		{KindIn, 1, KindOut},
		{KindOut, -1, KindIn},
		{KindAdjust, 0, KindAdjust},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if got := tt.kind.Sign(); got != tt.sign {
				t.Errorf("Sign: got %d, want %d", got, tt.sign)
			}
			if got := tt.kind.Opposite(); got != tt.opposite {
				t.Errorf("Opposite: got %s, want %s", got, tt.opposite)
			}
		})
	}
}

func TestParseMovementKind(t *testing.T) {
	for _, s := range []string{"IN", "OUT", "ADJUST"} {
		if _, err := ParseMovementKind(s); err != nil {
			t.Errorf("ParseMovementKind(%q): %v", s, err)
		}
	}
	for _, s := range []string{"", "in", "TRANSFER"} {
		if _, err := ParseMovementKind(s); err == nil {
			t.Errorf("ParseMovementKind(%q): expected error", s)
		}
	}
}

func TestQuantityFromFloat(t *testing.T) {
	tests := []struct {
		in      float64
		want    string
		wantErr bool
	}{
		{in: 0.1, want: "0.1"},
		{in: 2.5, want: "2.5"},
		{in: 0.000001, want: "0.000001"},
		{in: 99999999999999.5, want: "99999999999999.5"},
		{in: 0, wantErr: true},
		{in: -0.5, wantErr: true},
		{in: math.NaN(), wantErr: true},
		{in: math.Inf(1), wantErr: true},
		{in: math.Inf(-1), wantErr: true},
		{in: 1e-7, wantErr: true},
		{in: 1.0000004, wantErr: true},
		{in: 1e14, wantErr: true},
		{in: 1e15, wantErr: true},
	}
	for _, tt := range tests {
		got, err := QuantityFromFloat(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("QuantityFromFloat(%v) = %s, expected error", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("QuantityFromFloat(%v): unexpected error: %v", tt.in, err)
			continue
		}
		if got.String() != tt.want {
			t.Errorf("QuantityFromFloat(%v) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestAmountFromFloat_AllowsZero(t *testing.T) {
	got, err := AmountFromFloat(0)
	if err != nil || !got.IsZero() {
		t.Fatalf("AmountFromFloat(0) = %s, %v", got, err)
	}
	if _, err := AmountFromFloat(0.0000005); err == nil {
		t.Error("expected an error for seven decimal places")
	}
}

func TestNewStockMovement_RejectsUnstorablePrecision(t *testing.T) {
	p := validParams()
	p.Quantity = decimal.RequireFromString("1.0000004")
	if _, err := NewStockMovement(p); err == nil {
		t.Error("expected an error for a quantity with seven decimal places")
	}
	p = validParams()
	cost := decimal.RequireFromString("100000000000000")
	p.UnitCost = &cost
	if _, err := NewStockMovement(p); err == nil {
		t.Error("expected an error for a unit cost with fifteen integer digits")
	}
}

func TestStockMovement_Reverse(t *testing.T) {
	orig, err := NewStockMovement(validParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	actor := uuid.New()

	rev, err := orig.Reverse(actor, "double entry")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rev.Kind != KindOut {
		t.Errorf("kind: got %s, want OUT", rev.Kind)
	}
	if !rev.Quantity.Equal(orig.Quantity) || rev.Key() != orig.Key() {
		t.Error("reversal must keep the magnitude and key")
	}
	if rev.ReversesID == nil || *rev.ReversesID != orig.ID {
		t.Fatal("reversal must reference the original")
	}
	if rev.CreatedBy != actor {
		t.Error("reversal is attributed to the reversing actor")
	}
	if !orig.Signed().Add(rev.Signed()).IsZero() {
		t.Error("a movement and its reversal must cancel out")
	}

	if _, err := rev.Reverse(actor, ""); err == nil {
		t.Fatal("reversing a reversal must fail")
	}
}

func TestStockMovement_CloneIsDeep(t *testing.T) {
	orig, err := NewStockMovement(validParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cp := orig.Clone()
	*cp.ChefID = uuid.New()
	*cp.VendorID = uuid.New()
	*cp.UnitCost = decimal.NewFromInt(7)

	if *orig.ChefID == *cp.ChefID || *orig.VendorID == *cp.VendorID || orig.UnitCost.Equal(*cp.UnitCost) {
		t.Fatal("Clone must not share pointer fields with the original")
	}
}
