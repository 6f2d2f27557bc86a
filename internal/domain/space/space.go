package space

import (
	"time"

	"github.com/google/uuid"

	"github.com/atriumhq/service-reservation/pkg/domain"
)

// SpaceStatus represents the lifecycle state of a space listing.
type SpaceStatus string

const (
	SpaceStatusActive   SpaceStatus = "active"
	SpaceStatusInactive SpaceStatus = "inactive"
)

// Space is the aggregate root for a bookable space.
type Space struct {
	id              uuid.UUID
	name            string
	description     string
	location        string
	capacity        int
	hourlyRateCents int64
	currency        string
	status          SpaceStatus
	version         int64
	createdAt       time.Time
	updatedAt       time.Time
}

// NewSpace creates a new active space listing with validated fields.
func NewSpace(name, description, location string, capacity int, hourlyRateCents int64, currency string) (*Space, error) {
	if name == "" {
		return nil, domain.NewValidationError("space name is required")
	}
	if location == "" {
		return nil, domain.NewValidationError("space location is required")
	}
	if capacity <= 0 {
		return nil, domain.NewValidationError("space capacity must be positive")
	}
	if hourlyRateCents < 0 {
		return nil, domain.NewValidationError("hourly rate cannot be negative")
	}
	if currency == "" {
		currency = "USD"
	}

	now := time.Now().UTC()
	return &Space{
		id:              uuid.New(),
		name:            name,
		description:     description,
		location:        location,
		capacity:        capacity,
		hourlyRateCents: hourlyRateCents,
		currency:        currency,
		status:          SpaceStatusActive,
		version:         1,
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

// Reconstruct rebuilds a Space from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	name, description, location string,
	capacity int,
	hourlyRateCents int64,
	currency string,
	status SpaceStatus,
	version int64,
	createdAt, updatedAt time.Time,
) *Space {
	return &Space{
		id:              id,
		name:            name,
		description:     description,
		location:        location,
		capacity:        capacity,
		hourlyRateCents: hourlyRateCents,
		currency:        currency,
		status:          status,
		version:         version,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

// --- Getters ---

func (s *Space) ID() uuid.UUID          { return s.id }
func (s *Space) Name() string           { return s.name }
func (s *Space) Description() string    { return s.description }
func (s *Space) Location() string       { return s.location }
func (s *Space) Capacity() int          { return s.capacity }
func (s *Space) HourlyRateCents() int64 { return s.hourlyRateCents }
func (s *Space) Currency() string       { return s.currency }
func (s *Space) Status() SpaceStatus    { return s.status }
func (s *Space) Version() int64         { return s.version }
func (s *Space) CreatedAt() time.Time   { return s.createdAt }
func (s *Space) UpdatedAt() time.Time   { return s.updatedAt }

// --- Behavior ---

// Update applies partial updates to the space listing.
func (s *Space) Update(name, description, location string, capacity int, hourlyRateCents int64) {
	if name != "" {
		s.name = name
	}
	if description != "" {
		s.description = description
	}
	if location != "" {
		s.location = location
	}
	if capacity > 0 {
		s.capacity = capacity
	}
	if hourlyRateCents >= 0 {
		s.hourlyRateCents = hourlyRateCents
	}
	s.version++
	s.updatedAt = time.Now().UTC()
}

// Deactivate takes the space off the platform. Live bookings for the
// space are cancelled separately by the space-event cascade.
func (s *Space) Deactivate() {
	s.status = SpaceStatusInactive
	s.version++
	s.updatedAt = time.Now().UTC()
}

// IsActive returns true if the space can accept new bookings.
func (s *Space) IsActive() bool {
	return s.status == SpaceStatusActive
}
