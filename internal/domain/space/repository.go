package space

import (
	"context"

	"github.com/google/uuid"
)

// SpaceRepository defines persistence operations for space listings.
type SpaceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Space, error)
	ListActive(ctx context.Context, page, limit int) ([]*Space, int64, error)
	Save(ctx context.Context, space *Space) error
	Update(ctx context.Context, space *Space) error
}
