package application

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	bookingDomain "github.com/atriumhq/service-reservation/internal/domain/booking"
	spaceDomain "github.com/atriumhq/service-reservation/internal/domain/space"
	"github.com/atriumhq/service-reservation/pkg/domain"
	"github.com/atriumhq/service-reservation/pkg/kafka"
)

// fakeBookingRepo is an in-memory BookingRepository. Reads return
// detached clones, like rows hydrated from a database, so mutations on
// a loaded aggregate are invisible until Update is called.
type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*bookingDomain.Booking

	// beforePromote, when set, runs before the PromoteStatus guard is
	// evaluated. Tests use it to interleave a concurrent transition.
	beforePromote func(repo *fakeBookingRepo, id uuid.UUID)
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[uuid.UUID]*bookingDomain.Booking)}
}

func cloneBooking(b *bookingDomain.Booking) *bookingDomain.Booking {
	return bookingDomain.Reconstruct(
		b.ID(), b.Reference(), b.SpaceID(), b.CustomerID(),
		b.StartTime(), b.EndTime(),
		b.Status(), b.StatusChangedAt(),
		b.CancelReason(), b.Notes(),
		b.Version(), b.CreatedAt(), b.UpdatedAt(),
	)
}

func (f *fakeBookingRepo) mustGet(id uuid.UUID) (*bookingDomain.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("booking", id.String())
	}
	return b, nil
}

func (f *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, err := f.mustGet(id)
	if err != nil {
		return nil, err
	}
	return cloneBooking(b), nil
}

func (f *fakeBookingRepo) FindByReference(_ context.Context, reference string) (*bookingDomain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.Reference() == reference {
			return cloneBooking(b), nil
		}
	}
	return nil, domain.NewNotFoundError("booking", reference)
}

func (f *fakeBookingRepo) FindByCustomerID(_ context.Context, customerID uuid.UUID, _, _ int) ([]*bookingDomain.Booking, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*bookingDomain.Booking
	for _, b := range f.bookings {
		if b.CustomerID() == customerID {
			out = append(out, cloneBooking(b))
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeBookingRepo) FindBySpaceID(_ context.Context, spaceID uuid.UUID, _, _ int) ([]*bookingDomain.Booking, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*bookingDomain.Booking
	for _, b := range f.bookings {
		if b.SpaceID() == spaceID {
			out = append(out, cloneBooking(b))
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeBookingRepo) ListAll(_ context.Context, _, _ int) ([]*bookingDomain.Booking, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*bookingDomain.Booking
	for _, b := range f.bookings {
		out = append(out, cloneBooking(b))
	}
	return out, int64(len(out)), nil
}

func (f *fakeBookingRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[string]int64)
	for _, b := range f.bookings {
		counts[b.Status().String()]++
	}
	return counts, nil
}

func (f *fakeBookingRepo) FindOverlapping(_ context.Context, spaceID uuid.UUID, startTime, endTime time.Time, excludeID uuid.UUID) ([]*bookingDomain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*bookingDomain.Booking
	for _, b := range f.bookings {
		if b.ID() == excludeID || b.SpaceID() != spaceID {
			continue
		}
		if !b.Status().IsActive() {
			continue
		}
		if b.Overlaps(startTime, endTime) {
			out = append(out, cloneBooking(b))
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) FindActive(_ context.Context) ([]*bookingDomain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*bookingDomain.Booking
	for _, b := range f.bookings {
		if b.Status().IsActive() {
			out = append(out, cloneBooking(b))
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) FindActiveBySpace(_ context.Context, spaceID uuid.UUID) ([]*bookingDomain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*bookingDomain.Booking
	for _, b := range f.bookings {
		if b.SpaceID() == spaceID && b.Status().IsActive() {
			out = append(out, cloneBooking(b))
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) Save(_ context.Context, booking *bookingDomain.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bookings[booking.ID()] = cloneBooking(booking)
	return nil
}

func (f *fakeBookingRepo) Update(_ context.Context, booking *bookingDomain.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, err := f.mustGet(booking.ID())
	if err != nil {
		return err
	}
	if stored.Version() != booking.Version()-1 {
		return domain.NewConflictError("booking was modified by another session")
	}
	f.bookings[booking.ID()] = cloneBooking(booking)
	return nil
}

func (f *fakeBookingRepo) PromoteStatus(_ context.Context, id uuid.UUID, from, to bookingDomain.BookingStatus, observedChangedAt, _ time.Time) (bool, error) {
	if f.beforePromote != nil {
		f.beforePromote(f, id)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	stored, err := f.mustGet(id)
	if err != nil {
		return false, err
	}
	if stored.Status() != from || !stored.StatusChangedAt().Equal(observedChangedAt) {
		return false, nil
	}
	if err := stored.Promote(to); err != nil {
		return false, err
	}
	stored.IncrementVersion()
	return true, nil
}

// InTx runs fn against the same store. The fake has no rollback; tests
// relying on atomicity assert through the service's error paths only.
func (f *fakeBookingRepo) InTx(_ context.Context, fn func(repo bookingDomain.BookingRepository) error) error {
	return fn(f)
}

// statusOf reads the persisted status of a booking.
func (f *fakeBookingRepo) statusOf(id uuid.UUID) bookingDomain.BookingStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bookings[id].Status()
}

// fakeSpaceRepo is an in-memory SpaceRepository.
type fakeSpaceRepo struct {
	mu     sync.Mutex
	spaces map[uuid.UUID]*spaceDomain.Space
}

func newFakeSpaceRepo() *fakeSpaceRepo {
	return &fakeSpaceRepo{spaces: make(map[uuid.UUID]*spaceDomain.Space)}
}

func (f *fakeSpaceRepo) FindByID(_ context.Context, id uuid.UUID) (*spaceDomain.Space, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sp, ok := f.spaces[id]
	if !ok {
		return nil, domain.NewNotFoundError("space", id.String())
	}
	return sp, nil
}

func (f *fakeSpaceRepo) ListActive(_ context.Context, _, _ int) ([]*spaceDomain.Space, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*spaceDomain.Space
	for _, sp := range f.spaces {
		if sp.IsActive() {
			out = append(out, sp)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeSpaceRepo) Save(_ context.Context, sp *spaceDomain.Space) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.spaces[sp.ID()] = sp
	return nil
}

func (f *fakeSpaceRepo) Update(_ context.Context, sp *spaceDomain.Space) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.spaces[sp.ID()] = sp
	return nil
}

// fakePublisher records every published event in order.
type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

type publishedEvent struct {
	topic string
	event kafka.CloudEvent
}

func (f *fakePublisher) PublishEvent(_ context.Context, topic string, event kafka.CloudEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{topic: topic, event: event})
	return nil
}

// ofType returns the published events with the given CloudEvent type.
func (f *fakePublisher) ofType(eventType string) []kafka.CloudEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []kafka.CloudEvent
	for _, pe := range f.events {
		if pe.event.Type == eventType {
			out = append(out, pe.event)
		}
	}
	return out
}
