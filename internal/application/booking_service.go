package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/atriumhq/service-reservation/internal/domain/booking"
	spaceDomain "github.com/atriumhq/service-reservation/internal/domain/space"
	"github.com/atriumhq/service-reservation/internal/events"
	"github.com/atriumhq/service-reservation/pkg/domain"
	"github.com/atriumhq/service-reservation/pkg/kafka"
)

const eventSource = "service-reservation"

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	SpaceID   uuid.UUID `json:"space_id" binding:"required"`
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
	Notes     string    `json:"notes"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID              uuid.UUID `json:"id"`
	Reference       string    `json:"reference"`
	SpaceID         uuid.UUID `json:"space_id"`
	CustomerID      uuid.UUID `json:"customer_id"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	Status          string    `json:"status"`
	StatusChangedAt time.Time `json:"status_changed_at"`
	CancelReason    string    `json:"cancel_reason,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	Version         int64     `json:"version"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ResolveResultDTO is the outcome of a conflict resolution.
type ResolveResultDTO struct {
	Confirmed BookingDTO   `json:"confirmed"`
	Cancelled []BookingDTO `json:"cancelled"`
}

// WindowDTO is an occupied time window on a space.
type WindowDTO struct {
	BookingID uuid.UUID `json:"booking_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Status    string    `json:"status"`
}

// BookingService is the orchestrator for the booking lifecycle. All
// request handlers, the space-event consumer and the overdue sweeper go
// through it; it owns transaction boundaries.
type BookingService struct {
	repo     bookingDomain.BookingRepository
	spaces   spaceDomain.SpaceRepository
	policy   bookingDomain.OverduePolicy
	producer kafka.Publisher
	logger   *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	repo bookingDomain.BookingRepository,
	spaces spaceDomain.SpaceRepository,
	policy bookingDomain.OverduePolicy,
	producer kafka.Publisher,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		repo:     repo,
		spaces:   spaces,
		policy:   policy,
		producer: producer,
		logger:   logger,
	}
}

// CreateBooking creates a booking for the given customer. The
// creation-time conflict check decides the initial status: Pending when
// the window is free, Conflict when it overlaps live siblings — in
// which case any still-Pending sibling is flagged Conflict too, inside
// the same transaction.
func (s *BookingService) CreateBooking(ctx context.Context, customerID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	sp, err := s.spaces.FindByID(ctx, req.SpaceID)
	if err != nil {
		return nil, err
	}
	if !sp.IsActive() {
		return nil, domain.NewValidationError("space is not accepting bookings")
	}

	bk, err := bookingDomain.NewBooking(req.SpaceID, customerID, req.StartTime, req.EndTime, req.Notes)
	if err != nil {
		return nil, err
	}

	var peerIDs []uuid.UUID
	err = s.repo.InTx(ctx, func(repo bookingDomain.BookingRepository) error {
		overlaps, err := repo.FindOverlapping(ctx, bk.SpaceID(), bk.StartTime(), bk.EndTime(), bk.ID())
		if err != nil {
			return err
		}

		if len(overlaps) > 0 {
			if err := bk.FlagConflict(); err != nil {
				return err
			}
			for _, peer := range overlaps {
				peerIDs = append(peerIDs, peer.ID())
				if peer.Status() != bookingDomain.StatusPending {
					continue
				}
				if err := peer.FlagConflict(); err != nil {
					return err
				}
				peer.IncrementVersion()
				if err := repo.Update(ctx, peer); err != nil {
					return err
				}
			}
		}

		return repo.Save(ctx, bk)
	})
	if err != nil {
		return nil, err
	}

	s.publishRequested(ctx, bk)
	if len(peerIDs) > 0 {
		s.publishEvent(ctx, events.ReservationConflictDetected, bk.ID().String(), events.ConflictDetectedEvent{
			BookingID:  bk.ID(),
			SpaceID:    bk.SpaceID(),
			PeerIDs:    peerIDs,
			OccurredAt: time.Now().UTC(),
		})
	}

	result := toBookingDTO(bk)
	return &result, nil
}

// Transition performs an operator-triggered lifecycle event on a single
// booking. Confirming a Pending or Conflict booking goes through
// ResolveByConfirming instead, so the cascade applies.
func (s *BookingService) Transition(ctx context.Context, bookingID uuid.UUID, event bookingDomain.Event, operatorID uuid.UUID, reason string) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	oldStatus := bk.Status()

	if err := bk.Apply(event, reason); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.publishStatusChanged(ctx, bk, oldStatus, reason)

	s.logger.Info("booking transitioned",
		zap.String("booking_id", bk.ID().String()),
		zap.String("event", string(event)),
		zap.String("from", string(oldStatus)),
		zap.String("to", string(bk.Status())),
		zap.String("operator_id", operatorID.String()),
	)

	result := toBookingDTO(bk)
	return &result, nil
}

// ResolveByConfirming confirms the target booking and cancels every
// still-live overlapping sibling, atomically. Either the confirmation
// and all cascade cancellations commit together or none do; a
// half-applied resolution would leave the space double-booked.
func (s *BookingService) ResolveByConfirming(ctx context.Context, bookingID, operatorID uuid.UUID) (*ResolveResultDTO, error) {
	type cancelledPeer struct {
		booking *bookingDomain.Booking
		from    bookingDomain.BookingStatus
	}

	var (
		confirmed *bookingDomain.Booking
		oldStatus bookingDomain.BookingStatus
		cancelled []cancelledPeer
	)

	err := s.repo.InTx(ctx, func(repo bookingDomain.BookingRepository) error {
		bk, err := repo.FindByID(ctx, bookingID)
		if err != nil {
			return err
		}

		if bk.Status().IsTerminal() {
			// The target was concurrently closed by another actor;
			// the caller must re-read and decide again.
			return domain.NewConflictError("booking was moved to " + bk.Status().String() + " by another session")
		}
		if bk.Status() != bookingDomain.StatusPending && bk.Status() != bookingDomain.StatusConflict {
			return domain.NewInvalidStateError(string(bk.Status()), string(bookingDomain.EventConfirm))
		}

		overlaps, err := repo.FindOverlapping(ctx, bk.SpaceID(), bk.StartTime(), bk.EndTime(), bk.ID())
		if err != nil {
			return err
		}

		oldStatus = bk.Status()
		if err := bk.Confirm(); err != nil {
			return err
		}
		bk.IncrementVersion()
		if err := repo.Update(ctx, bk); err != nil {
			return err
		}

		reason := fmt.Sprintf("superseded by confirmed booking %s", bk.ID())
		for _, peer := range overlaps {
			if peer.Status().IsTerminal() {
				// No longer a conflict by definition; skip silently.
				continue
			}
			from := peer.Status()
			if err := cancelPeer(ctx, repo, peer, reason); err != nil {
				return fmt.Errorf("conflict cascade failed for booking %s: %w", peer.ID(), err)
			}
			cancelled = append(cancelled, cancelledPeer{booking: peer, from: from})
		}

		confirmed = bk
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishStatusChanged(ctx, confirmed, oldStatus, "")
	cancelledIDs := make([]uuid.UUID, len(cancelled))
	cancelledDTOs := make([]BookingDTO, len(cancelled))
	for i, peer := range cancelled {
		cancelledIDs[i] = peer.booking.ID()
		cancelledDTOs[i] = toBookingDTO(peer.booking)
		s.publishStatusChanged(ctx, peer.booking, peer.from, peer.booking.CancelReason())
	}

	s.publishEvent(ctx, events.ReservationConflictResolved, confirmed.ID().String(), events.ConflictResolvedEvent{
		ConfirmedID:  confirmed.ID(),
		CancelledIDs: cancelledIDs,
		SpaceID:      confirmed.SpaceID(),
		OperatorID:   operatorID,
		OccurredAt:   time.Now().UTC(),
	})

	s.logger.Info("conflict resolved",
		zap.String("confirmed_id", confirmed.ID().String()),
		zap.Int("cancelled", len(cancelled)),
		zap.String("operator_id", operatorID.String()),
	)

	return &ResolveResultDTO{
		Confirmed: toBookingDTO(confirmed),
		Cancelled: cancelledDTOs,
	}, nil
}

// cancelPeer cancels a live sibling during a cascade. Pending siblings
// are rejected (the table's Pending exit to Cancelled); everything else
// goes through cancel.
func cancelPeer(ctx context.Context, repo bookingDomain.BookingRepository, peer *bookingDomain.Booking, reason string) error {
	event := bookingDomain.EventCancel
	if peer.Status() == bookingDomain.StatusPending {
		event = bookingDomain.EventReject
	}
	if err := peer.Apply(event, reason); err != nil {
		return err
	}
	peer.IncrementVersion()
	return repo.Update(ctx, peer)
}

// CancelByCustomer cancels the customer's own booking. Pending
// bookings exit through reject, everything else through cancel.
func (s *BookingService) CancelByCustomer(ctx context.Context, bookingID, customerID uuid.UUID, reason string) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if bk.CustomerID() != customerID {
		return nil, domain.NewForbiddenError("booking does not belong to this user")
	}

	event := bookingDomain.EventCancel
	if bk.Status() == bookingDomain.StatusPending {
		event = bookingDomain.EventReject
	}
	return s.Transition(ctx, bookingID, event, customerID, reason)
}

// CancelActiveForSpace cancels every live booking for a space. Used by
// the space-event cascade when a space is deactivated. Bookings
// concurrently moved to a terminal state are skipped.
func (s *BookingService) CancelActiveForSpace(ctx context.Context, spaceID uuid.UUID, reason string) (int, error) {
	active, err := s.repo.FindActiveBySpace(ctx, spaceID)
	if err != nil {
		return 0, err
	}

	cancelled := 0
	for _, bk := range active {
		oldStatus := bk.Status()
		if err := cancelPeer(ctx, s.repo, bk, reason); err != nil {
			s.logger.Warn("skipping booking during space cascade",
				zap.String("booking_id", bk.ID().String()),
				zap.Error(err),
			)
			continue
		}
		cancelled++
		s.publishStatusChanged(ctx, bk, oldStatus, reason)
	}
	return cancelled, nil
}

// Sweep runs one pass of the overdue promotion engine against now. Each
// eligible booking gets a single conditional update guarded by the
// (status, statusChangedAt) observed during the scan; a guard miss
// skips that booking this sweep. Returns the number of promotions.
func (s *BookingService) Sweep(ctx context.Context, now time.Time) (int, error) {
	active, err := s.repo.FindActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to scan active bookings: %w", err)
	}

	promoted := 0
	for _, bk := range active {
		to, due := s.policy.PromotionFor(bk, now)
		if !due {
			continue
		}

		applied, err := s.repo.PromoteStatus(ctx, bk.ID(), bk.Status(), to, bk.StatusChangedAt(), now)
		if err != nil {
			return promoted, fmt.Errorf("failed to promote booking %s: %w", bk.ID(), err)
		}
		if !applied {
			// Another actor transitioned the booking during the scan.
			s.logger.Debug("sweep skipped stale booking",
				zap.String("booking_id", bk.ID().String()),
			)
			continue
		}

		promoted++
		s.publishEvent(ctx, events.ReservationOverduePromoted, bk.ID().String(), events.OverduePromotedEvent{
			BookingID:  bk.ID(),
			Reference:  bk.Reference(),
			SpaceID:    bk.SpaceID(),
			OldStatus:  string(bk.Status()),
			NewStatus:  string(to),
			OccurredAt: now,
		})
	}

	return promoted, nil
}

// GetBooking retrieves a single booking by ID.
func (s *BookingService) GetBooking(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// GetBookingByReference retrieves a single booking by its reference code.
func (s *BookingService) GetBookingByReference(ctx context.Context, reference string) (*BookingDTO, error) {
	bk, err := s.repo.FindByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// GetCustomerBookings retrieves paginated bookings for a customer.
func (s *BookingService) GetCustomerBookings(ctx context.Context, customerID uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.repo.FindByCustomerID(ctx, customerID, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(toBookingDTOs(bookings), total, page, limit)
	return &result, nil
}

// GetSpaceBookings retrieves paginated bookings for a space (operator view).
func (s *BookingService) GetSpaceBookings(ctx context.Context, spaceID uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.repo.FindBySpaceID(ctx, spaceID, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(toBookingDTOs(bookings), total, page, limit)
	return &result, nil
}

// GetConflictPeers returns the live bookings overlapping the given
// booking's window. The set is computed on demand; it changes as
// sibling bookings change state and is never persisted.
func (s *BookingService) GetConflictPeers(ctx context.Context, bookingID uuid.UUID) ([]BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	overlaps, err := s.repo.FindOverlapping(ctx, bk.SpaceID(), bk.StartTime(), bk.EndTime(), bk.ID())
	if err != nil {
		return nil, err
	}
	return toBookingDTOs(overlaps), nil
}

// GetAvailability returns the occupied windows on a space between from and to.
func (s *BookingService) GetAvailability(ctx context.Context, spaceID uuid.UUID, from, to time.Time) ([]WindowDTO, error) {
	if !from.Before(to) {
		return nil, domain.NewValidationError("from must be before to")
	}
	if _, err := s.spaces.FindByID(ctx, spaceID); err != nil {
		return nil, err
	}

	occupied, err := s.repo.FindOverlapping(ctx, spaceID, from, to, uuid.Nil)
	if err != nil {
		return nil, err
	}

	windows := make([]WindowDTO, len(occupied))
	for i, bk := range occupied {
		windows[i] = WindowDTO{
			BookingID: bk.ID(),
			StartTime: bk.StartTime(),
			EndTime:   bk.EndTime(),
			Status:    string(bk.Status()),
		}
	}
	return windows, nil
}

// --- Admin methods ---

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// ListAllBookings returns a paginated list of all bookings (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, page, limit int) ([]BookingDTO, int64, error) {
	bookings, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	return toBookingDTOs(bookings), total, nil
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}

	return &BookingStatsDTO{
		TotalBookings: total,
		ByStatus:      counts,
	}, nil
}

// --- Helpers ---

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:              bk.ID(),
		Reference:       bk.Reference(),
		SpaceID:         bk.SpaceID(),
		CustomerID:      bk.CustomerID(),
		StartTime:       bk.StartTime(),
		EndTime:         bk.EndTime(),
		Status:          string(bk.Status()),
		StatusChangedAt: bk.StatusChangedAt(),
		CancelReason:    bk.CancelReason(),
		Notes:           bk.Notes(),
		Version:         bk.Version(),
		CreatedAt:       bk.CreatedAt(),
		UpdatedAt:       bk.UpdatedAt(),
	}
}

func toBookingDTOs(bookings []*bookingDomain.Booking) []BookingDTO {
	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos
}

func (s *BookingService) publishRequested(ctx context.Context, bk *bookingDomain.Booking) {
	s.publishEvent(ctx, events.ReservationRequested, bk.ID().String(), events.ReservationRequestedEvent{
		BookingID:  bk.ID(),
		Reference:  bk.Reference(),
		SpaceID:    bk.SpaceID(),
		CustomerID: bk.CustomerID(),
		StartTime:  bk.StartTime(),
		EndTime:    bk.EndTime(),
		Status:     string(bk.Status()),
		OccurredAt: time.Now().UTC(),
	})
}

func (s *BookingService) publishStatusChanged(ctx context.Context, bk *bookingDomain.Booking, oldStatus bookingDomain.BookingStatus, reason string) {
	s.publishEvent(ctx, events.ReservationStatusChanged, bk.ID().String(), events.StatusChangedEvent{
		BookingID:  bk.ID(),
		Reference:  bk.Reference(),
		SpaceID:    bk.SpaceID(),
		CustomerID: bk.CustomerID(),
		OldStatus:  string(oldStatus),
		NewStatus:  string(bk.Status()),
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	})
}

// publishEvent sends a CloudEvent to the reservation topic. Publish
// failures are logged and never affect the committed transition.
func (s *BookingService) publishEvent(ctx context.Context, eventType, key string, data interface{}) {
	cloudEvent, err := kafka.NewCloudEvent(eventSource, eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.producer.PublishEvent(ctx, events.TopicReservationEvents, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("event_type", eventType),
			zap.String("key", key),
			zap.Error(err),
		)
	}
}
