package queries

import (
	"context"
	"database/sql"
	"time"

	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetActiveDeliveriesQueryHandler reads the active delivery board from the database.
type GetActiveDeliveriesQueryHandler struct {
	db *gorm.DB
}

// NewGetActiveDeliveriesQueryHandler creates a handler for the active delivery board.
// Requires a GORM database connection for query execution.
func NewGetActiveDeliveriesQueryHandler(db *gorm.DB) GetActiveDeliveriesQueryHandler {
	return GetActiveDeliveriesQueryHandler{db: db}
}

// Handle retrieves every delivery that is not completed or cancelled,
// oldest first.
func (h GetActiveDeliveriesQueryHandler) Handle(
	ctx context.Context,
	query GetActiveDeliveriesQuery,
) ([]GetActiveDeliveriesQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	deliveries := make([]GetActiveDeliveriesQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			order_number,
			status,
			version,
			courier_id,
			pickup_zone,
			dropoff_zone,
			final_price,
			created_at
		FROM deliveries
		WHERE status NOT IN (?, ?)
		ORDER BY created_at
	`, delivery.StatusCompleted.String(), delivery.StatusCancelled.String()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			resp      GetActiveDeliveriesQueryResponse
			id        uuid.UUID
			courierID uuid.NullUUID
			price     sql.NullString
			createdAt time.Time
		)

		err = rows.Scan(
			&id,
			&resp.OrderNumber,
			&resp.Status,
			&resp.Version,
			&courierID,
			&resp.PickupZone,
			&resp.DropoffZone,
			&price,
			&createdAt,
		)
		if err != nil {
			return nil, err
		}

		deliveryID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		resp.ID = deliveryID
		resp.CreatedAt = createdAt

		if courierID.Valid {
			assigned, cErr := kernel.UUIDFromBytes(courierID.UUID[:])
			if cErr != nil {
				return nil, cErr
			}
			resp.CourierID = &assigned
		}
		if price.Valid {
			resp.FinalPrice = price.String
		}

		deliveries = append(deliveries, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return deliveries, nil
}
