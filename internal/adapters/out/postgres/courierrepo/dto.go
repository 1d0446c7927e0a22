// Package courierrepo provides data transfer objects and mapping functions for courier persistence.
// This package implements the repository pattern for the courier domain aggregate, handling
// the conversion between domain entities and database representations.
package courierrepo

import (
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// CourierDTO represents the database structure for persisting courier aggregates.
// Fleet state (availability, track record) lives in the same row as the
// courier identity so claims and recommendations read it in one query.
type CourierDTO struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name           string    `gorm:"type:varchar(255);not null"`
	Phone          string    `gorm:"type:varchar(32);not null"`
	VehicleType    string    `gorm:"type:varchar(16);not null;index"`
	Active         bool      `gorm:"not null"`
	Available      bool      `gorm:"not null;index"`
	Latitude       float64   `gorm:"type:double precision;not null"`
	Longitude      float64   `gorm:"type:double precision;not null"`
	Rating         float64   `gorm:"type:double precision;not null"`
	CompletedCount int       `gorm:"type:int;not null"`
	AssignedCount  int       `gorm:"type:int;not null"`
}

// TableName specifies the database table name for courier entities.
// Overrides GORM's default naming convention to use "couriers" instead of "courier_dtos".
func (CourierDTO) TableName() string {
	return "couriers"
}

// fromDomain converts a courier domain aggregate to its database representation.
func fromDomain(courier *courier.Courier) CourierDTO {
	return CourierDTO{
		ID:             courier.ID().Bytes(),
		Name:           courier.Name(),
		Phone:          courier.Phone(),
		VehicleType:    courier.VehicleType().String(),
		Active:         courier.IsActive(),
		Available:      courier.IsAvailable(),
		Latitude:       courier.Location().Latitude(),
		Longitude:      courier.Location().Longitude(),
		Rating:         courier.Rating(),
		CompletedCount: courier.CompletedCount(),
		AssignedCount:  courier.AssignedCount(),
	}
}

// toDomain converts a database DTO to a courier domain aggregate.
// Reconstructs the aggregate with its persisted state using RestoreCourier.
func toDomain(dto CourierDTO) (*courier.Courier, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	vehicleType, err := kernel.VehicleTypeFromString(dto.VehicleType)
	if err != nil {
		return nil, err
	}

	location, err := kernel.NewGeoPoint(dto.Latitude, dto.Longitude)
	if err != nil {
		return nil, err
	}

	return courier.RestoreCourier(
		id,
		dto.Name,
		dto.Phone,
		vehicleType,
		dto.Active,
		dto.Available,
		location,
		dto.Rating,
		dto.CompletedCount,
		dto.AssignedCount,
	)
}
