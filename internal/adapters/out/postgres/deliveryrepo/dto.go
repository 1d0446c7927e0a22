// Package deliveryrepo provides data transfer objects and mapping functions
// for delivery persistence. It implements the repository pattern for the
// delivery aggregate, handling the conversion between domain entities and
// database rows, including the optimistic-lock version column.
package deliveryrepo

import (
	"time"

	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DeliveryDTO represents the database structure for persisting delivery
// aggregates. The version column backs the optimistic concurrency predicate;
// the order number carries a unique index.
type DeliveryDTO struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	OrderNumber string     `gorm:"type:varchar(32);uniqueIndex"`
	Status      string     `gorm:"type:varchar(16);index"`
	Version     int64      `gorm:"type:bigint"`
	CourierID   *uuid.UUID `gorm:"type:uuid;index"`

	Pickup  AddressDTO `gorm:"embedded;embeddedPrefix:pickup_"`
	Dropoff AddressDTO `gorm:"embedded;embeddedPrefix:dropoff_"`

	VehicleType   string `gorm:"type:varchar(16)"`
	WeightKg      float64
	Description   string `gorm:"type:varchar(255)"`
	Priority      string `gorm:"type:varchar(16)"`
	NightDelivery bool

	BasePrice       *decimal.Decimal `gorm:"type:numeric(12,2)"`
	DistanceFee     *decimal.Decimal `gorm:"type:numeric(12,2)"`
	NightSurcharge  *decimal.Decimal `gorm:"type:numeric(12,2)"`
	VAT             *decimal.Decimal `gorm:"type:numeric(12,2)"`
	FinalPrice      *decimal.Decimal `gorm:"type:numeric(12,2)"`
	CourierEarnings *decimal.Decimal `gorm:"type:numeric(12,2)"`
	CompanyEarnings *decimal.Decimal `gorm:"type:numeric(12,2)"`
	DistanceKm      *decimal.Decimal `gorm:"type:numeric(10,2)"`
	DistanceSource  *string          `gorm:"type:varchar(16)"`

	CreatedAt    time.Time `gorm:"index"`
	PublishedAt  *time.Time
	ClaimedAt    *time.Time
	PickedUpAt   *time.Time
	InTransitAt  *time.Time
	DeliveredAt  *time.Time
	CompletedAt  *time.Time
	CancelledAt  *time.Time
	CancelReason string `gorm:"type:varchar(255)"`
}

// TableName specifies the database table name for delivery entities.
func (DeliveryDTO) TableName() string {
	return "deliveries"
}

// AddressDTO represents an embedded address within the delivery table.
type AddressDTO struct {
	Street       string  `gorm:"type:varchar(255)"`
	Zone         string  `gorm:"type:varchar(64)"`
	ContactName  string  `gorm:"type:varchar(128)"`
	ContactPhone string  `gorm:"type:varchar(32)"`
	Latitude     float64 `gorm:"type:double precision"`
	Longitude    float64 `gorm:"type:double precision"`
}

// fromDomain converts a delivery aggregate to its database representation.
func fromDomain(aggregate *delivery.Delivery) DeliveryDTO {
	s := aggregate.Snapshot()

	var courierID *uuid.UUID
	if s.CourierID != nil {
		raw := s.CourierID.Bytes()
		courierID = &raw
	}

	dto := DeliveryDTO{
		ID:            s.ID.Bytes(),
		OrderNumber:   s.OrderNumber,
		Status:        s.Status.String(),
		Version:       s.Version,
		CourierID:     courierID,
		Pickup:        addressFromDomain(s.Pickup),
		Dropoff:       addressFromDomain(s.Dropoff),
		VehicleType:   s.VehicleType.String(),
		WeightKg:      s.Package.WeightKg(),
		Description:   s.Package.Description(),
		Priority:      s.Priority.String(),
		NightDelivery: s.NightDelivery,
		CreatedAt:     s.Timeline.CreatedAt,
		PublishedAt:   s.Timeline.PublishedAt,
		ClaimedAt:     s.Timeline.ClaimedAt,
		PickedUpAt:    s.Timeline.PickedUpAt,
		InTransitAt:   s.Timeline.InTransitAt,
		DeliveredAt:   s.Timeline.DeliveredAt,
		CompletedAt:   s.Timeline.CompletedAt,
		CancelledAt:   s.Timeline.CancelledAt,
		CancelReason:  s.CancelReason,
	}

	if s.Pricing != nil {
		basePrice := s.Pricing.BasePrice()
		distanceFee := s.Pricing.DistanceFee()
		nightSurcharge := s.Pricing.NightSurcharge()
		vat := s.Pricing.VAT()
		finalPrice := s.Pricing.FinalPrice()
		courierEarnings := s.Pricing.CourierEarnings()
		companyEarnings := s.Pricing.CompanyEarnings()
		distanceKm := s.Pricing.DistanceKm()
		distanceSource := string(s.Pricing.DistanceSource())

		dto.BasePrice = &basePrice
		dto.DistanceFee = &distanceFee
		dto.NightSurcharge = &nightSurcharge
		dto.VAT = &vat
		dto.FinalPrice = &finalPrice
		dto.CourierEarnings = &courierEarnings
		dto.CompanyEarnings = &companyEarnings
		dto.DistanceKm = &distanceKm
		dto.DistanceSource = &distanceSource
	}

	return dto
}

func addressFromDomain(a delivery.Address) AddressDTO {
	return AddressDTO{
		Street:       a.Street(),
		Zone:         a.Zone(),
		ContactName:  a.ContactName(),
		ContactPhone: a.ContactPhone(),
		Latitude:     a.Point().Latitude(),
		Longitude:    a.Point().Longitude(),
	}
}

// toDomain converts a database row to a delivery aggregate.
// The aggregate's invariants are re-validated by RestoreDelivery.
func toDomain(dto DeliveryDTO) (*delivery.Delivery, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	status, err := delivery.StatusFromString(dto.Status)
	if err != nil {
		return nil, err
	}
	vehicleType, err := kernel.VehicleTypeFromString(dto.VehicleType)
	if err != nil {
		return nil, err
	}
	priority, err := delivery.PriorityFromString(dto.Priority)
	if err != nil {
		return nil, err
	}

	pickup, err := addressToDomain(dto.Pickup)
	if err != nil {
		return nil, err
	}
	dropoff, err := addressToDomain(dto.Dropoff)
	if err != nil {
		return nil, err
	}
	pkg, err := delivery.NewPackage(dto.WeightKg, dto.Description)
	if err != nil {
		return nil, err
	}

	var courierID *kernel.UUID
	if dto.CourierID != nil {
		cID, courierErr := kernel.UUIDFromBytes((*dto.CourierID)[:])
		if courierErr != nil {
			return nil, courierErr
		}
		courierID = &cID
	}

	var pricing *delivery.PricingBreakdown
	if dto.FinalPrice != nil {
		breakdown, pricingErr := delivery.NewPricingBreakdown(
			derefDecimal(dto.BasePrice),
			derefDecimal(dto.DistanceFee),
			derefDecimal(dto.NightSurcharge),
			derefDecimal(dto.VAT),
			derefDecimal(dto.FinalPrice),
			derefDecimal(dto.CourierEarnings),
			derefDecimal(dto.CompanyEarnings),
			derefDecimal(dto.DistanceKm),
			delivery.DistanceSource(derefString(dto.DistanceSource)),
		)
		if pricingErr != nil {
			return nil, pricingErr
		}
		pricing = &breakdown
	}

	return delivery.RestoreDelivery(delivery.Snapshot{
		ID:            id,
		OrderNumber:   dto.OrderNumber,
		Pickup:        pickup,
		Dropoff:       dropoff,
		VehicleType:   vehicleType,
		Package:       pkg,
		Priority:      priority,
		NightDelivery: dto.NightDelivery,
		Pricing:       pricing,
		CourierID:     courierID,
		Status:        status,
		Version:       dto.Version,
		Timeline: delivery.Timeline{
			CreatedAt:   dto.CreatedAt,
			PublishedAt: dto.PublishedAt,
			ClaimedAt:   dto.ClaimedAt,
			PickedUpAt:  dto.PickedUpAt,
			InTransitAt: dto.InTransitAt,
			DeliveredAt: dto.DeliveredAt,
			CompletedAt: dto.CompletedAt,
			CancelledAt: dto.CancelledAt,
		},
		CancelReason: dto.CancelReason,
	})
}

func addressToDomain(a AddressDTO) (delivery.Address, error) {
	point, err := kernel.NewGeoPoint(a.Latitude, a.Longitude)
	if err != nil {
		return delivery.Address{}, err
	}
	return delivery.NewAddress(a.Street, a.Zone, a.ContactName, a.ContactPhone, point)
}

func derefDecimal(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
