package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// BookingRepository defines the persistence contract for booking aggregates.
type BookingRepository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByReference retrieves a booking by its human-readable reference.
	FindByReference(ctx context.Context, reference string) (*Booking, error)

	// FindByCustomerID retrieves bookings belonging to a customer with pagination.
	FindByCustomerID(ctx context.Context, customerID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// FindBySpaceID retrieves bookings for a space with pagination.
	FindBySpaceID(ctx context.Context, spaceID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// ListAll retrieves all bookings with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Booking, int64, error)

	// CountByStatus returns booking counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// FindOverlapping returns the live (non-terminal) bookings for the
	// space whose windows intersect [startTime, endTime) under half-open
	// semantics, excluding excludeID.
	FindOverlapping(ctx context.Context, spaceID uuid.UUID, startTime, endTime time.Time, excludeID uuid.UUID) ([]*Booking, error)

	// FindActive returns every booking in a non-terminal status.
	FindActive(ctx context.Context) ([]*Booking, error)

	// FindActiveBySpace returns every non-terminal booking for a space.
	FindActiveBySpace(ctx context.Context, spaceID uuid.UUID) ([]*Booking, error)

	// Save persists a new booking.
	Save(ctx context.Context, booking *Booking) error

	// Update persists changes to an existing booking with optimistic locking.
	Update(ctx context.Context, booking *Booking) error

	// PromoteStatus performs a single conditional status update guarded
	// by the observed (status, statusChangedAt) pair. It returns false,
	// without error, when the guard no longer matches — another actor
	// transitioned the booking first.
	PromoteStatus(ctx context.Context, id uuid.UUID, from, to BookingStatus, observedChangedAt, now time.Time) (bool, error)

	// InTx runs fn against a repository bound to a single transaction.
	// Every write inside fn commits or rolls back together.
	InTx(ctx context.Context, fn func(repo BookingRepository) error) error
}
