package deliveryrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// GormDeliveryRepository implements DeliveryRepository using GORM.
type GormDeliveryRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormDeliveryRepository creates a new GORM delivery repository.
func NewGormDeliveryRepository(db *gorm.DB, tracker aggregateTracker) *GormDeliveryRepository {
	return &GormDeliveryRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new delivery to the database.
func (r *GormDeliveryRepository) Add(ctx context.Context, aggregate *delivery.Delivery) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("%w: %s", ports.ErrDuplicateOrderNumber, dto.OrderNumber)
		}
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Update writes the aggregate conditionally: the row is only touched when its
// stored version is exactly one less than the aggregate's. Zero rows affected
// means another writer got there first and the caller gets
// errs.ErrConcurrencyConflict; the row is never overwritten unconditionally.
func (r *GormDeliveryRepository) Update(ctx context.Context, aggregate *delivery.Delivery) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).
		Model(&DeliveryDTO{}).
		Where("id = ? AND version = ?", dto.ID, dto.Version-1).
		Select("*").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.NewConcurrencyConflictError("deliveryId", aggregate.ID().String())
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves a delivery by ID.
func (r *GormDeliveryRepository) Get(ctx context.Context, id kernel.UUID) (*delivery.Delivery, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto DeliveryDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("deliveryId", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetByOrderNumber retrieves a delivery by its human-facing order number.
func (r *GormDeliveryRepository) GetByOrderNumber(ctx context.Context, orderNumber string) (*delivery.Delivery, error) {
	var dto DeliveryDTO
	if err := r.db.WithContext(ctx).First(&dto, "order_number = ?", orderNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("orderNumber", orderNumber)
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetAllActive retrieves every delivery in a non-terminal status.
func (r *GormDeliveryRepository) GetAllActive(ctx context.Context) ([]*delivery.Delivery, error) {
	var dtos []DeliveryDTO
	err := r.db.WithContext(ctx).
		Find(&dtos, "status NOT IN ?", []string{
			delivery.StatusCompleted.String(),
			delivery.StatusCancelled.String(),
		}).Error
	if err != nil {
		return nil, err
	}

	return toDomainAll(dtos)
}

// GetAllInStatusOlderThan retrieves deliveries that entered the given status
// strictly before the cutoff. Only statuses with a timeline column are
// queryable this way; the expiry sweep uses it for published records.
func (r *GormDeliveryRepository) GetAllInStatusOlderThan(
	ctx context.Context,
	status delivery.Status,
	cutoff time.Time,
) ([]*delivery.Delivery, error) {
	column, err := statusTimestampColumn(status)
	if err != nil {
		return nil, err
	}

	var dtos []DeliveryDTO
	err = r.db.WithContext(ctx).
		Where("status = ?", status.String()).
		Where(column+" < ?", cutoff).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	return toDomainAll(dtos)
}

// GetAllByCourier retrieves the deliveries assigned to a courier.
func (r *GormDeliveryRepository) GetAllByCourier(ctx context.Context, courierID kernel.UUID) ([]*delivery.Delivery, error) {
	if err := courierID.Validate(); err != nil {
		return nil, err
	}

	var dtos []DeliveryDTO
	if err := r.db.WithContext(ctx).Find(&dtos, "courier_id = ?", courierID.Bytes()).Error; err != nil {
		return nil, err
	}

	return toDomainAll(dtos)
}

func toDomainAll(dtos []DeliveryDTO) ([]*delivery.Delivery, error) {
	aggregates := make([]*delivery.Delivery, 0, len(dtos))
	for _, dto := range dtos {
		aggregate, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		aggregates = append(aggregates, aggregate)
	}
	return aggregates, nil
}

func statusTimestampColumn(status delivery.Status) (string, error) {
	switch status {
	case delivery.StatusPublished:
		return "published_at", nil
	case delivery.StatusClaimed:
		return "claimed_at", nil
	case delivery.StatusPickedUp:
		return "picked_up_at", nil
	case delivery.StatusInTransit:
		return "in_transit_at", nil
	case delivery.StatusDelivered:
		return "delivered_at", nil
	default:
		return "", errs.NewValueIsInvalidError("status")
	}
}
