package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/larder/services/inventory/domain/models"
)

// TopicMovementRecorded is the Watermill topic published when a movement is appended.
const TopicMovementRecorded = "inventory.movement.recorded"

// MovementRecordedEvent is published in the same transaction that appends a
// StockMovement. Consumers subscribe via EventBus.Subscribe(ctx, events.TopicMovementRecorded).
type MovementRecordedEvent struct {
	EventID    uuid.UUID  `json:"event_id"` // Unique publish-time identifier for deduplication
	Version    int        `json:"version"`  // Schema version; increment on breaking changes
	MovementID uuid.UUID  `json:"movement_id"`
	ItemID     uuid.UUID  `json:"item_id"`
	ChefID     *uuid.UUID `json:"chef_id"` // null for warehouse movements
	Kind       string     `json:"kind"`
	Quantity   string     `json:"quantity"` // decimal string, magnitude only
	ReversesID *uuid.UUID `json:"reverses_id,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// MovementRecordedVersion is the current schema version of MovementRecordedEvent.
const MovementRecordedVersion = 1

// NewMovementRecorded builds the event for an appended movement.
func NewMovementRecorded(m models.StockMovement) MovementRecordedEvent {
	m = m.Clone()
	return MovementRecordedEvent{
		EventID:    uuid.New(),
		Version:    MovementRecordedVersion,
		MovementID: m.ID,
		ItemID:     m.ItemID,
		ChefID:     m.ChefID,
		Kind:       string(m.Kind),
		Quantity:   m.Quantity.String(),
		ReversesID: m.ReversesID,
		OccurredAt: m.CreatedAt,
	}
}

// Owner returns the owner of the movement the event describes.
func (e MovementRecordedEvent) Owner() models.Owner {
	return models.OwnerFromPtr(e.ChefID)
}
