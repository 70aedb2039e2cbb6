package models

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementKind is the direction of a stock movement.
type MovementKind string

const (
	KindIn     MovementKind = "IN"
	KindOut    MovementKind = "OUT"
	KindAdjust MovementKind = "ADJUST" // count confirmation marker; contributes 0 to on-hand
)

var validMovementKinds = []MovementKind{KindIn, KindOut, KindAdjust}

// IsValid reports whether the value is a known movement kind.
func (k MovementKind) IsValid() bool {
	for _, candidate := range validMovementKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseMovementKind converts raw input into a MovementKind.
func ParseMovementKind(value string) (MovementKind, error) {
	for _, candidate := range validMovementKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid movement kind %q", value)
}

// Sign is the multiplier the kind applies to a quantity in the on-hand fold.
func (k MovementKind) Sign() int64 {
	switch k {
	case KindIn:
		return 1
	case KindOut:
		return -1
	default:
		return 0
	}
}

// Opposite returns the kind of the compensating entry for k.
func (k MovementKind) Opposite() MovementKind {
	switch k {
	case KindIn:
		return KindOut
	case KindOut:
		return KindIn
	default:
		return KindAdjust
	}
}

// Stored amounts (quantities, costs, counts, thresholds) are NUMERIC(20, 6):
// at most six fractional and fourteen integer digits.
const (
	AmountScale         = 6
	AmountIntegerDigits = 14
)

var amountLimit = decimal.New(1, AmountIntegerDigits)

// CheckAmount reports whether d fits the stored amount precision exactly.
func CheckAmount(d decimal.Decimal) error {
	if !d.Equal(d.Round(AmountScale)) {
		return fmt.Errorf("%s has more than %d decimal places", d, AmountScale)
	}
	if d.Abs().GreaterThanOrEqual(amountLimit) {
		return fmt.Errorf("%s has more than %d integer digits", d, AmountIntegerDigits)
	}
	return nil
}

// AmountFromFloat converts a caller-supplied non-negative amount into a
// Decimal. NaN, ±Inf, negative values and values outside the stored
// precision are rejected.
func AmountFromFloat(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, fmt.Errorf("must be finite, got %v", f)
	}
	if f < 0 {
		return decimal.Zero, fmt.Errorf("must not be negative, got %v", f)
	}
	d := decimal.NewFromFloat(f)
	if err := CheckAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// QuantityFromFloat is AmountFromFloat for movement magnitudes, which must
// also be positive.
func QuantityFromFloat(f float64) (decimal.Decimal, error) {
	d, err := AmountFromFloat(f)
	if err != nil {
		return decimal.Zero, fmt.Errorf("quantity %w", err)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("quantity must be positive, got %v", f)
	}
	return d, nil
}

// StockMovement is an immutable ledger entry. Once appended, no field changes;
// corrections are new entries (see Reverse).
type StockMovement struct {
	ID         uuid.UUID
	ItemID     uuid.UUID
	VendorID   *uuid.UUID
	Kind       MovementKind
	Quantity   decimal.Decimal // magnitude only; direction lives in Kind
	UnitCost   *decimal.Decimal
	Note       string
	ChefID     *uuid.UUID // owner; nil is the warehouse
	ReversesID *uuid.UUID // set on compensating entries
	CreatedBy  uuid.UUID
	CreatedAt  time.Time
}

// MovementParams carries the caller-controlled fields of a new movement.
// A zero ID is replaced by a random one.
type MovementParams struct {
	ID        uuid.UUID
	ItemID    uuid.UUID
	VendorID  *uuid.UUID
	Kind      MovementKind
	Quantity  decimal.Decimal
	UnitCost  *decimal.Decimal
	Owner     Owner
	Note      string
	CreatedBy uuid.UUID
}

// NewStockMovement validates p and stamps identity and creation time.
func NewStockMovement(p MovementParams) (*StockMovement, error) {
	if p.ItemID == uuid.Nil {
		return nil, fmt.Errorf("item_id must be set")
	}
	if !p.Kind.IsValid() {
		return nil, fmt.Errorf("invalid movement kind %q", p.Kind)
	}
	if !p.Quantity.IsPositive() {
		return nil, fmt.Errorf("quantity must be positive, got %s", p.Quantity)
	}
	if err := CheckAmount(p.Quantity); err != nil {
		return nil, fmt.Errorf("quantity: %w", err)
	}
	if p.UnitCost != nil {
		if p.UnitCost.IsNegative() {
			return nil, fmt.Errorf("unit cost must not be negative, got %s", p.UnitCost)
		}
		if err := CheckAmount(*p.UnitCost); err != nil {
			return nil, fmt.Errorf("unit cost: %w", err)
		}
	}
	if p.CreatedBy == uuid.Nil {
		return nil, fmt.Errorf("created_by must be set")
	}
	id := p.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	m := &StockMovement{
		ID:        id,
		ItemID:    p.ItemID,
		Kind:      p.Kind,
		Quantity:  p.Quantity,
		Note:      p.Note,
		ChefID:    p.Owner.ChefPtr(),
		CreatedBy: p.CreatedBy,
		CreatedAt: time.Now().UTC(),
	}
	if p.VendorID != nil {
		id := *p.VendorID
		m.VendorID = &id
	}
	if p.UnitCost != nil {
		c := *p.UnitCost
		m.UnitCost = &c
	}
	return m, nil
}

// Owner returns the movement's owner.
func (m StockMovement) Owner() Owner {
	return OwnerFromPtr(m.ChefID)
}

// Key returns the ledger partition key of the movement.
func (m StockMovement) Key() OwnerKey {
	return NewOwnerKey(m.ItemID, m.Owner())
}

// Signed returns the movement's contribution to on-hand.
func (m StockMovement) Signed() decimal.Decimal {
	return m.Quantity.Mul(decimal.NewFromInt(m.Kind.Sign()))
}

// IsReversal reports whether m compensates an earlier movement.
func (m StockMovement) IsReversal() bool {
	return m.ReversesID != nil
}

// Reverse builds the compensating entry for m: same item, owner, vendor and
// magnitude with the opposite kind. Reversals themselves cannot be reversed.
func (m StockMovement) Reverse(actor uuid.UUID, note string) (*StockMovement, error) {
	if m.IsReversal() {
		return nil, fmt.Errorf("movement %s is a reversal", m.ID)
	}
	rev, err := NewStockMovement(MovementParams{
		ItemID:    m.ItemID,
		VendorID:  m.VendorID,
		Kind:      m.Kind.Opposite(),
		Quantity:  m.Quantity,
		UnitCost:  m.UnitCost,
		Owner:     m.Owner(),
		Note:      note,
		CreatedBy: actor,
	})
	if err != nil {
		return nil, err
	}
	id := m.ID
	rev.ReversesID = &id
	return rev, nil
}

// Clone returns a deep copy so callers cannot reach stored pointer fields.
func (m StockMovement) Clone() StockMovement {
	if m.VendorID != nil {
		id := *m.VendorID
		m.VendorID = &id
	}
	if m.UnitCost != nil {
		c := *m.UnitCost
		m.UnitCost = &c
	}
	if m.ChefID != nil {
		id := *m.ChefID
		m.ChefID = &id
	}
	if m.ReversesID != nil {
		id := *m.ReversesID
		m.ReversesID = &id
	}
	return m
}
