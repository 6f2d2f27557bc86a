package events

import (
	"time"

	"github.com/google/uuid"
)

// Kafka topics this service produces to or consumes from.
const (
	TopicReservationEvents = "reservation.events"
	TopicSpaceEvents       = "space.events"
)

// Event types carried in the CloudEvent envelope.
const (
	ReservationRequested        = "reservation.requested"
	ReservationConflictDetected = "reservation.conflict_detected"
	ReservationStatusChanged    = "reservation.status_changed"
	ReservationConflictResolved = "reservation.conflict_resolved"
	ReservationOverduePromoted  = "reservation.overdue_promoted"

	SpaceDeactivated = "space.deactivated"
)

// ReservationRequestedEvent is published when a new booking is created.
type ReservationRequestedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	Reference  string    `json:"reference"`
	SpaceID    uuid.UUID `json:"space_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ConflictDetectedEvent is published when a creation-time check finds
// the new booking overlapping live siblings.
type ConflictDetectedEvent struct {
	BookingID  uuid.UUID   `json:"booking_id"`
	SpaceID    uuid.UUID   `json:"space_id"`
	PeerIDs    []uuid.UUID `json:"peer_ids"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// StatusChangedEvent is published after every committed transition.
// Downstream notification delivery consumes (booking, old, new); a
// delivery failure never rolls back the transition.
type StatusChangedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	Reference  string    `json:"reference"`
	SpaceID    uuid.UUID `json:"space_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	OldStatus  string    `json:"old_status"`
	NewStatus  string    `json:"new_status"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ConflictResolvedEvent is published when an operator confirms one
// booking out of a conflicting set and its siblings are cancelled.
type ConflictResolvedEvent struct {
	ConfirmedID  uuid.UUID   `json:"confirmed_id"`
	CancelledIDs []uuid.UUID `json:"cancelled_ids"`
	SpaceID      uuid.UUID   `json:"space_id"`
	OperatorID   uuid.UUID   `json:"operator_id"`
	OccurredAt   time.Time   `json:"occurred_at"`
}

// OverduePromotedEvent is published for each booking the sweep promotes.
type OverduePromotedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	Reference  string    `json:"reference"`
	SpaceID    uuid.UUID `json:"space_id"`
	OldStatus  string    `json:"old_status"`
	NewStatus  string    `json:"new_status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// SpaceDeactivatedEvent is consumed from the space catalog service; it
// triggers cascade cancellation of the space's live bookings.
type SpaceDeactivatedEvent struct {
	SpaceID    uuid.UUID `json:"space_id"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
