package commands_test

import (
	"context"
	"sync"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// fakeStore is an in-memory registry shared by fake units of work.
// The delivery update applies the same version predicate the real registry
// does, which is what the concurrency tests exercise.
type fakeStore struct {
	mu         sync.Mutex
	deliveries map[string]delivery.Snapshot
	couriers   map[string]*courier.Courier
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		deliveries: make(map[string]delivery.Snapshot),
		couriers:   make(map[string]*courier.Courier),
	}
}

func (s *fakeStore) Create() commands.UoW { return &fakeUoW{store: s} }

// fakeDeliveryFactory adapts the store to handlers that only need deliveries.
type fakeDeliveryFactory struct{ store *fakeStore }

func (f fakeDeliveryFactory) Create() commands.DeliveryUoW { return &fakeUoW{store: f.store} }

// fakeCourierFactory adapts the store to handlers that only need couriers.
type fakeCourierFactory struct{ store *fakeStore }

func (f fakeCourierFactory) Create() commands.CourierUoW { return &fakeUoW{store: f.store} }

type fakeUoW struct{ store *fakeStore }

func (u *fakeUoW) Begin(context.Context) error    { return nil }
func (u *fakeUoW) Commit(context.Context) error   { return nil }
func (u *fakeUoW) Rollback(context.Context) error { return nil }

func (u *fakeUoW) DeliveryRepository() ports.DeliveryRepository {
	return &fakeDeliveryRepository{store: u.store}
}

func (u *fakeUoW) CourierRepository() ports.CourierRepository {
	return &fakeCourierRepository{store: u.store}
}

type fakeDeliveryRepository struct{ store *fakeStore }

func (r *fakeDeliveryRepository) Add(_ context.Context, aggregate *delivery.Delivery) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.deliveries[aggregate.ID().String()] = aggregate.Snapshot()
	return nil
}

func (r *fakeDeliveryRepository) Update(_ context.Context, aggregate *delivery.Delivery) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored, ok := r.store.deliveries[aggregate.ID().String()]
	if !ok {
		return errs.NewObjectNotFoundError("deliveryId", aggregate.ID().String())
	}
	if stored.Version != aggregate.Version()-1 {
		return errs.NewConcurrencyConflictError("deliveryId", aggregate.ID().String())
	}
	r.store.deliveries[aggregate.ID().String()] = aggregate.Snapshot()
	return nil
}

func (r *fakeDeliveryRepository) Get(_ context.Context, id kernel.UUID) (*delivery.Delivery, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored, ok := r.store.deliveries[id.String()]
	if !ok {
		return nil, errs.NewObjectNotFoundError("deliveryId", id.String())
	}
	return delivery.RestoreDelivery(stored)
}

func (r *fakeDeliveryRepository) GetByOrderNumber(_ context.Context, orderNumber string) (*delivery.Delivery, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, stored := range r.store.deliveries {
		if stored.OrderNumber == orderNumber {
			return delivery.RestoreDelivery(stored)
		}
	}
	return nil, errs.NewObjectNotFoundError("orderNumber", orderNumber)
}

func (r *fakeDeliveryRepository) GetAllActive(_ context.Context) ([]*delivery.Delivery, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var result []*delivery.Delivery
	for _, stored := range r.store.deliveries {
		if stored.Status.IsTerminal() {
			continue
		}
		aggregate, err := delivery.RestoreDelivery(stored)
		if err != nil {
			return nil, err
		}
		result = append(result, aggregate)
	}
	return result, nil
}

func (r *fakeDeliveryRepository) GetAllInStatusOlderThan(
	_ context.Context,
	status delivery.Status,
	cutoff time.Time,
) ([]*delivery.Delivery, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var result []*delivery.Delivery
	for _, stored := range r.store.deliveries {
		if stored.Status != status {
			continue
		}
		enteredAt := statusEnteredAt(stored, status)
		if enteredAt == nil || !enteredAt.Before(cutoff) {
			continue
		}
		aggregate, err := delivery.RestoreDelivery(stored)
		if err != nil {
			return nil, err
		}
		result = append(result, aggregate)
	}
	return result, nil
}

func (r *fakeDeliveryRepository) GetAllByCourier(_ context.Context, courierID kernel.UUID) ([]*delivery.Delivery, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var result []*delivery.Delivery
	for _, stored := range r.store.deliveries {
		if stored.CourierID == nil || !stored.CourierID.IsEqual(courierID) {
			continue
		}
		aggregate, err := delivery.RestoreDelivery(stored)
		if err != nil {
			return nil, err
		}
		result = append(result, aggregate)
	}
	return result, nil
}

func statusEnteredAt(s delivery.Snapshot, status delivery.Status) *time.Time {
	switch status {
	case delivery.StatusPublished:
		return s.Timeline.PublishedAt
	case delivery.StatusClaimed:
		return s.Timeline.ClaimedAt
	default:
		return nil
	}
}

type fakeCourierRepository struct{ store *fakeStore }

func (r *fakeCourierRepository) Add(_ context.Context, aggregate *courier.Courier) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.couriers[aggregate.ID().String()] = cloneCourier(aggregate)
	return nil
}

func (r *fakeCourierRepository) Update(_ context.Context, aggregate *courier.Courier) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.couriers[aggregate.ID().String()]; !ok {
		return errs.NewObjectNotFoundError("courierId", aggregate.ID().String())
	}
	r.store.couriers[aggregate.ID().String()] = cloneCourier(aggregate)
	return nil
}

func (r *fakeCourierRepository) Get(_ context.Context, id kernel.UUID) (*courier.Courier, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored, ok := r.store.couriers[id.String()]
	if !ok {
		return nil, errs.NewObjectNotFoundError("courierId", id.String())
	}
	return cloneCourier(stored), nil
}

func (r *fakeCourierRepository) GetAllAvailable(
	_ context.Context,
	vehicleType kernel.VehicleType,
) ([]*courier.Courier, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var result []*courier.Courier
	for _, stored := range r.store.couriers {
		if stored.IsAvailable() && stored.VehicleType() == vehicleType {
			result = append(result, cloneCourier(stored))
		}
	}
	return result, nil
}

func (r *fakeCourierRepository) GetAll(_ context.Context) ([]*courier.Courier, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var result []*courier.Courier
	for _, stored := range r.store.couriers {
		result = append(result, cloneCourier(stored))
	}
	return result, nil
}

func cloneCourier(c *courier.Courier) *courier.Courier {
	clone, err := courier.RestoreCourier(
		c.ID(), c.Name(), c.Phone(), c.VehicleType(),
		c.IsActive(), c.IsAvailable(), c.Location(), c.Rating(),
		c.CompletedCount(), c.AssignedCount())
	if err != nil {
		panic(err)
	}
	return clone
}
