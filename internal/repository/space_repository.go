package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	spaceDomain "github.com/atriumhq/service-reservation/internal/domain/space"
	"github.com/atriumhq/service-reservation/pkg/domain"
)

// SpaceModel is the GORM model for the spaces table.
type SpaceModel struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name            string    `gorm:"type:varchar(200);not null"`
	Description     string    `gorm:"type:text"`
	Location        string    `gorm:"type:varchar(300);not null"`
	Capacity        int       `gorm:"not null"`
	HourlyRateCents int64     `gorm:"not null;default:0"`
	Currency        string    `gorm:"not null;size:3;default:'USD'"`
	Status          string    `gorm:"type:varchar(20);not null;default:'active';index"`
	Version         int64     `gorm:"not null;default:1"`
	CreatedAt       time.Time `gorm:"not null"`
	UpdatedAt       time.Time `gorm:"not null"`
}

func (SpaceModel) TableName() string { return "spaces" }

// GormSpaceRepository implements SpaceRepository using GORM.
type GormSpaceRepository struct {
	db *gorm.DB
}

// NewGormSpaceRepository creates a new GormSpaceRepository.
func NewGormSpaceRepository(db *gorm.DB) *GormSpaceRepository {
	return &GormSpaceRepository{db: db}
}

// FindByID retrieves a space by its unique identifier.
func (r *GormSpaceRepository) FindByID(ctx context.Context, id uuid.UUID) (*spaceDomain.Space, error) {
	var model SpaceModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Space", id.String())
		}
		return nil, fmt.Errorf("failed to find space by ID: %w", err)
	}
	return toDomainSpace(&model), nil
}

// ListActive retrieves active spaces with pagination.
func (r *GormSpaceRepository) ListActive(ctx context.Context, page, limit int) ([]*spaceDomain.Space, int64, error) {
	query := r.db.WithContext(ctx).Model(&SpaceModel{}).Where("status = ?", string(spaceDomain.SpaceStatusActive))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count spaces: %w", err)
	}

	var models []SpaceModel
	offset := (page - 1) * limit
	if err := query.
		Order("name ASC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list spaces: %w", err)
	}

	spaces := make([]*spaceDomain.Space, len(models))
	for i := range models {
		spaces[i] = toDomainSpace(&models[i])
	}
	return spaces, total, nil
}

// Save persists a new space.
func (r *GormSpaceRepository) Save(ctx context.Context, sp *spaceDomain.Space) error {
	if err := r.db.WithContext(ctx).Create(toSpaceModel(sp)).Error; err != nil {
		return fmt.Errorf("failed to save space: %w", err)
	}
	return nil
}

// Update persists changes to an existing space with optimistic locking.
func (r *GormSpaceRepository) Update(ctx context.Context, sp *spaceDomain.Space) error {
	model := toSpaceModel(sp)

	expectedVersion := sp.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&SpaceModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"name":              model.Name,
			"description":       model.Description,
			"location":          model.Location,
			"capacity":          model.Capacity,
			"hourly_rate_cents": model.HourlyRateCents,
			"currency":          model.Currency,
			"status":            model.Status,
			"version":           model.Version,
			"updated_at":        model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update space: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("space was modified by another session")
	}
	return nil
}

func toSpaceModel(sp *spaceDomain.Space) *SpaceModel {
	return &SpaceModel{
		ID:              sp.ID(),
		Name:            sp.Name(),
		Description:     sp.Description(),
		Location:        sp.Location(),
		Capacity:        sp.Capacity(),
		HourlyRateCents: sp.HourlyRateCents(),
		Currency:        sp.Currency(),
		Status:          string(sp.Status()),
		Version:         sp.Version(),
		CreatedAt:       sp.CreatedAt(),
		UpdatedAt:       sp.UpdatedAt(),
	}
}

func toDomainSpace(m *SpaceModel) *spaceDomain.Space {
	return spaceDomain.Reconstruct(
		m.ID,
		m.Name,
		m.Description,
		m.Location,
		m.Capacity,
		m.HourlyRateCents,
		m.Currency,
		spaceDomain.SpaceStatus(m.Status),
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
