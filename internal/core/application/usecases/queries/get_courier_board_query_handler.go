package queries

import (
	"context"

	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetCourierBoardQueryHandler reads the courier roster with per-courier load.
type GetCourierBoardQueryHandler struct {
	db *gorm.DB
}

// NewGetCourierBoardQueryHandler creates a handler for the courier board.
func NewGetCourierBoardQueryHandler(db *gorm.DB) GetCourierBoardQueryHandler {
	return GetCourierBoardQueryHandler{db: db}
}

// Handle retrieves every enrolled courier together with the number of
// deliveries they are currently executing. Sorted by name for stable output.
func (h GetCourierBoardQueryHandler) Handle(
	ctx context.Context,
	query GetCourierBoardQuery,
) ([]GetCourierBoardQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	couriers := make([]GetCourierBoardQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			c.id,
			c.name,
			c.vehicle_type,
			c.active,
			c.available,
			c.rating,
			c.completed_count,
			c.assigned_count,
			COUNT(d.id) AS current_load
		FROM couriers c
		LEFT JOIN deliveries d
			ON d.courier_id = c.id
			AND d.status IN (?, ?, ?)
		GROUP BY
			c.id, c.name, c.vehicle_type, c.active, c.available,
			c.rating, c.completed_count, c.assigned_count
		ORDER BY c.name
	`,
		delivery.StatusClaimed.String(),
		delivery.StatusPickedUp.String(),
		delivery.StatusInTransit.String(),
	).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			resp GetCourierBoardQueryResponse
			id   uuid.UUID
		)

		err = rows.Scan(
			&id,
			&resp.Name,
			&resp.VehicleType,
			&resp.Active,
			&resp.Available,
			&resp.Rating,
			&resp.CompletedCount,
			&resp.AssignedCount,
			&resp.CurrentLoad,
		)
		if err != nil {
			return nil, err
		}

		courierID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		resp.ID = courierID

		couriers = append(couriers, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return couriers, nil
}
