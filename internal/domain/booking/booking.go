package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/atriumhq/service-reservation/pkg/domain"
)

const referenceChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Booking is the aggregate root for a space reservation. Exactly one
// status is active at any time, and statusChangedAt always reflects
// the most recent transition.
type Booking struct {
	id         uuid.UUID
	reference  string
	spaceID    uuid.UUID
	customerID uuid.UUID
	startTime  time.Time
	endTime    time.Time

	status          BookingStatus
	statusChangedAt time.Time
	cancelReason    string
	notes           string

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// generateReference creates a booking reference in the format "RV-XXXXXX".
func generateReference() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(referenceChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate booking reference: %w", err)
		}
		result[i] = referenceChars[n.Int64()]
	}
	return "RV-" + string(result), nil
}

// NewBooking creates a new Booking in status Pending. The creation-time
// conflict check may move it to Conflict via FlagConflict before it is
// first persisted.
func NewBooking(spaceID, customerID uuid.UUID, startTime, endTime time.Time, notes string) (*Booking, error) {
	if spaceID == uuid.Nil {
		return nil, domain.NewValidationError("space ID is required")
	}
	if customerID == uuid.Nil {
		return nil, domain.NewValidationError("customer ID is required")
	}
	if !startTime.Before(endTime) {
		return nil, domain.NewValidationError("start time must be before end time")
	}

	reference, err := generateReference()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Booking{
		id:              uuid.New(),
		reference:       reference,
		spaceID:         spaceID,
		customerID:      customerID,
		startTime:       startTime.UTC(),
		endTime:         endTime.UTC(),
		status:          StatusPending,
		statusChangedAt: now,
		notes:           notes,
		version:         1,
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

// Reconstruct rebuilds a Booking from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	reference string,
	spaceID, customerID uuid.UUID,
	startTime, endTime time.Time,
	status BookingStatus,
	statusChangedAt time.Time,
	cancelReason, notes string,
	version int64,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:              id,
		reference:       reference,
		spaceID:         spaceID,
		customerID:      customerID,
		startTime:       startTime,
		endTime:         endTime,
		status:          status,
		statusChangedAt: statusChangedAt,
		cancelReason:    cancelReason,
		notes:           notes,
		version:         version,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// Reference returns the human-readable booking reference.
func (b *Booking) Reference() string { return b.reference }

// SpaceID returns the reserved space's ID.
func (b *Booking) SpaceID() uuid.UUID { return b.spaceID }

// CustomerID returns the reserving customer's ID.
func (b *Booking) CustomerID() uuid.UUID { return b.customerID }

// StartTime returns the start of the reservation window.
func (b *Booking) StartTime() time.Time { return b.startTime }

// EndTime returns the end of the reservation window.
func (b *Booking) EndTime() time.Time { return b.endTime }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// StatusChangedAt returns the timestamp of the most recent transition.
func (b *Booking) StatusChangedAt() time.Time { return b.statusChangedAt }

// CancelReason returns the cancellation reason, if any.
func (b *Booking) CancelReason() string { return b.cancelReason }

// Notes returns any additional notes for the booking.
func (b *Booking) Notes() string { return b.notes }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// setStatus records a transition. Status and statusChangedAt move together.
func (b *Booking) setStatus(to BookingStatus) {
	now := time.Now().UTC()
	b.status = to
	b.statusChangedAt = now
	b.updatedAt = now
}

// Apply performs an operator-triggered transition. An event not legal
// from the current status returns an InvalidStateError and leaves the
// booking unchanged.
func (b *Booking) Apply(event Event, reason string) error {
	to, err := NextStatus(b.status, event)
	if err != nil {
		return err
	}
	if to == StatusCancelled || to == StatusNoShow || to == StatusAbandoned {
		b.cancelReason = reason
	}
	b.setStatus(to)
	return nil
}

// Confirm transitions the booking to Confirmed.
func (b *Booking) Confirm() error { return b.Apply(EventConfirm, "") }

// Cancel transitions the booking to Cancelled with the given reason.
func (b *Booking) Cancel(reason string) error { return b.Apply(EventCancel, reason) }

// CheckIn transitions the booking to CheckedIn.
func (b *Booking) CheckIn() error { return b.Apply(EventCheckIn, "") }

// Complete transitions the booking to Completed.
func (b *Booking) Complete() error { return b.Apply(EventComplete, "") }

// FlagConflict marks a Pending booking as Conflict. It is invoked only
// by the creation-time conflict check when a newly requested window
// overlaps this booking; it is not an operator event.
func (b *Booking) FlagConflict() error {
	if b.status != StatusPending {
		return domain.NewInvalidStateError(string(b.status), "flag-conflict")
	}
	b.setStatus(StatusConflict)
	return nil
}

// Promote applies a clock-driven overdue transition. Only the three
// promotion pairs are legal; anything else is a sweep programming error.
func (b *Booking) Promote(to BookingStatus) error {
	expected, ok := promotionTransitions[b.status]
	if !ok || expected != to {
		return domain.NewInvalidStateError(string(b.status), "promote:"+string(to))
	}
	b.setStatus(to)
	return nil
}

// Overlaps reports whether the booking's window intersects
// [startTime, endTime) under half-open semantics: a booking ending
// exactly when another starts is not an overlap.
func (b *Booking) Overlaps(startTime, endTime time.Time) bool {
	return b.startTime.Before(endTime) && startTime.Before(b.endTime)
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}
