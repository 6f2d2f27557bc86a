package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	spaceDomain "github.com/atriumhq/service-reservation/internal/domain/space"
	"github.com/atriumhq/service-reservation/internal/events"
	"github.com/atriumhq/service-reservation/pkg/domain"
	"github.com/atriumhq/service-reservation/pkg/kafka"
)

// CreateSpaceRequest holds the data needed to list a new space.
type CreateSpaceRequest struct {
	Name            string `json:"name" binding:"required"`
	Description     string `json:"description"`
	Location        string `json:"location" binding:"required"`
	Capacity        int    `json:"capacity" binding:"required"`
	HourlyRateCents int64  `json:"hourly_rate_cents"`
	Currency        string `json:"currency"`
}

// UpdateSpaceRequest holds partial updates for a space listing.
type UpdateSpaceRequest struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	Location        string `json:"location"`
	Capacity        int    `json:"capacity"`
	HourlyRateCents int64  `json:"hourly_rate_cents"`
}

// SpaceDTO is the response representation of a space.
type SpaceDTO struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	Location        string    `json:"location"`
	Capacity        int       `json:"capacity"`
	HourlyRateCents int64     `json:"hourly_rate_cents"`
	Currency        string    `json:"currency"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// SpaceService manages the space catalog.
type SpaceService struct {
	repo     spaceDomain.SpaceRepository
	producer kafka.Publisher
	logger   *zap.Logger
}

// NewSpaceService creates a new SpaceService.
func NewSpaceService(repo spaceDomain.SpaceRepository, producer kafka.Publisher, logger *zap.Logger) *SpaceService {
	return &SpaceService{repo: repo, producer: producer, logger: logger}
}

// CreateSpace lists a new space.
func (s *SpaceService) CreateSpace(ctx context.Context, req CreateSpaceRequest) (*SpaceDTO, error) {
	sp, err := spaceDomain.NewSpace(req.Name, req.Description, req.Location, req.Capacity, req.HourlyRateCents, req.Currency)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, sp); err != nil {
		return nil, err
	}

	result := toSpaceDTO(sp)
	return &result, nil
}

// UpdateSpace applies partial updates to a space listing.
func (s *SpaceService) UpdateSpace(ctx context.Context, spaceID uuid.UUID, req UpdateSpaceRequest) (*SpaceDTO, error) {
	sp, err := s.repo.FindByID(ctx, spaceID)
	if err != nil {
		return nil, err
	}

	sp.Update(req.Name, req.Description, req.Location, req.Capacity, req.HourlyRateCents)
	if err := s.repo.Update(ctx, sp); err != nil {
		return nil, err
	}

	result := toSpaceDTO(sp)
	return &result, nil
}

// DeactivateSpace takes a space off the platform and publishes the
// event that cascades cancellation of its live bookings.
func (s *SpaceService) DeactivateSpace(ctx context.Context, spaceID uuid.UUID) (*SpaceDTO, error) {
	sp, err := s.repo.FindByID(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	if !sp.IsActive() {
		return nil, domain.NewValidationError("space is already inactive")
	}

	sp.Deactivate()
	if err := s.repo.Update(ctx, sp); err != nil {
		return nil, err
	}

	cloudEvent, err := kafka.NewCloudEvent(eventSource, events.SpaceDeactivated, events.SpaceDeactivatedEvent{
		SpaceID:    sp.ID(),
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		s.logger.Error("failed to create space deactivated event", zap.Error(err))
	} else if err := s.producer.PublishEvent(ctx, events.TopicSpaceEvents, cloudEvent); err != nil {
		s.logger.Error("failed to publish space deactivated event",
			zap.String("space_id", sp.ID().String()),
			zap.Error(err),
		)
	}

	result := toSpaceDTO(sp)
	return &result, nil
}

// GetSpace retrieves a single space by ID.
func (s *SpaceService) GetSpace(ctx context.Context, spaceID uuid.UUID) (*SpaceDTO, error) {
	sp, err := s.repo.FindByID(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	result := toSpaceDTO(sp)
	return &result, nil
}

// ListSpaces retrieves paginated active spaces.
func (s *SpaceService) ListSpaces(ctx context.Context, page, limit int) (*domain.PaginatedResult[SpaceDTO], error) {
	spaces, total, err := s.repo.ListActive(ctx, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]SpaceDTO, len(spaces))
	for i, sp := range spaces {
		dtos[i] = toSpaceDTO(sp)
	}
	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

func toSpaceDTO(sp *spaceDomain.Space) SpaceDTO {
	return SpaceDTO{
		ID:              sp.ID(),
		Name:            sp.Name(),
		Description:     sp.Description(),
		Location:        sp.Location(),
		Capacity:        sp.Capacity(),
		HourlyRateCents: sp.HourlyRateCents(),
		Currency:        sp.Currency(),
		Status:          string(sp.Status()),
		CreatedAt:       sp.CreatedAt(),
		UpdatedAt:       sp.UpdatedAt(),
	}
}
