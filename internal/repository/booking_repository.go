package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	bookingDomain "github.com/atriumhq/service-reservation/internal/domain/booking"
	"github.com/atriumhq/service-reservation/pkg/domain"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	Reference       string    `gorm:"uniqueIndex;not null;size:20"`
	SpaceID         uuid.UUID `gorm:"type:uuid;index:idx_bookings_space_window;not null"`
	CustomerID      uuid.UUID `gorm:"type:uuid;index;not null"`
	StartTime       time.Time `gorm:"index:idx_bookings_space_window;not null"`
	EndTime         time.Time `gorm:"not null"`
	Status          string    `gorm:"not null;size:30;index"`
	StatusChangedAt time.Time `gorm:"not null"`
	CancelReason    string    `gorm:"size:500"`
	Notes           string    `gorm:"size:1000"`
	Version         int64     `gorm:"not null;default:1"`
	CreatedAt       time.Time `gorm:"not null"`
	UpdatedAt       time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// activeStatusStrings is the live-status filter used by the overlap and
// sweep queries.
var activeStatusStrings = func() []string {
	statuses := make([]string, len(bookingDomain.ActiveStatuses))
	for i, s := range bookingDomain.ActiveStatuses {
		statuses[i] = string(s)
	}
	return statuses
}()

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByReference retrieves a booking by its booking reference.
func (r *GormBookingRepository) FindByReference(ctx context.Context, reference string) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", reference)
		}
		return nil, fmt.Errorf("failed to find booking by reference: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByCustomerID retrieves bookings for a specific customer with pagination.
func (r *GormBookingRepository) FindByCustomerID(ctx context.Context, customerID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.findPage(ctx, "customer_id = ?", []interface{}{customerID}, page, limit)
}

// FindBySpaceID retrieves bookings for a specific space with pagination.
func (r *GormBookingRepository) FindBySpaceID(ctx context.Context, spaceID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.findPage(ctx, "space_id = ?", []interface{}{spaceID}, page, limit)
}

// ListAll retrieves all bookings with pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.findPage(ctx, "", nil, page, limit)
}

func (r *GormBookingRepository) findPage(ctx context.Context, where string, args []interface{}, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	query := r.db.WithContext(ctx).Model(&BookingModel{})
	if where != "" {
		query = query.Where(where, args...)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	bookings, err := toDomainBookings(models)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// FindOverlapping returns the live bookings for the space whose windows
// intersect [startTime, endTime). Half-open comparison: a booking ending
// exactly at startTime does not match.
func (r *GormBookingRepository) FindOverlapping(ctx context.Context, spaceID uuid.UUID, startTime, endTime time.Time, excludeID uuid.UUID) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	query := r.db.WithContext(ctx).
		Where("space_id = ?", spaceID).
		Where("status IN ?", activeStatusStrings).
		Where("start_time < ? AND ? < end_time", endTime, startTime)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Order("start_time ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find overlapping bookings: %w", err)
	}
	return toDomainBookings(models)
}

// FindActive returns every booking in a non-terminal status.
func (r *GormBookingRepository) FindActive(ctx context.Context) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("status IN ?", activeStatusStrings).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find active bookings: %w", err)
	}
	return toDomainBookings(models)
}

// FindActiveBySpace returns every non-terminal booking for a space.
func (r *GormBookingRepository) FindActiveBySpace(ctx context.Context, spaceID uuid.UUID) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("space_id = ? AND status IN ?", spaceID, activeStatusStrings).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find active bookings for space: %w", err)
	}
	return toDomainBookings(models)
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)

	// Only update if the version matches (current version - 1 since
	// IncrementVersion was called before Update).
	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":            model.Status,
			"status_changed_at": model.StatusChangedAt,
			"cancel_reason":     model.CancelReason,
			"notes":             model.Notes,
			"version":           model.Version,
			"updated_at":        model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another session")
	}

	return nil
}

// PromoteStatus performs the sweep's conditional status update. The
// guard is the (status, status_changed_at) pair observed during the
// scan; a non-matching row means another actor got there first and the
// promotion is skipped.
func (r *GormBookingRepository) PromoteStatus(ctx context.Context, id uuid.UUID, from, to bookingDomain.BookingStatus, observedChangedAt, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND status = ? AND status_changed_at = ?", id, string(from), observedChangedAt).
		Updates(map[string]interface{}{
			"status":            string(to),
			"status_changed_at": now,
			"updated_at":        now,
			"version":           gorm.Expr("version + 1"),
		})

	if result.Error != nil {
		return false, fmt.Errorf("failed to promote booking status: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// InTx runs fn against a repository bound to a single transaction.
func (r *GormBookingRepository) InTx(ctx context.Context, fn func(repo bookingDomain.BookingRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormBookingRepository{db: tx})
	})
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
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

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}

	return bookingDomain.Reconstruct(
		m.ID,
		m.Reference,
		m.SpaceID,
		m.CustomerID,
		m.StartTime,
		m.EndTime,
		status,
		m.StatusChangedAt,
		m.CancelReason,
		m.Notes,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainBookings(models []BookingModel) ([]*bookingDomain.Booking, error) {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bk, err := toDomainBooking(&models[i])
		if err != nil {
			return nil, err
		}
		bookings[i] = bk
	}
	return bookings, nil
}
