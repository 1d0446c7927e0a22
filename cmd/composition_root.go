package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"dispatch/internal/adapters/out/geo"
	"dispatch/internal/adapters/out/notify"
	"dispatch/internal/adapters/out/postgres"
	"dispatch/internal/core/application/notification"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/clock"

	"gorm.io/gorm"
)

// CompositionRoot wires the application graph: shared services built once,
// handlers created per consumer through the Create* methods.
type CompositionRoot struct {
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory

	pricing     *services.PricingEngine
	recommender services.CourierRecommender
	notifier    *notification.Dispatcher

	clock    clock.Clock
	logger   *slog.Logger
	claimTTL time.Duration
}

// NewCompositionRoot builds the shared services from configuration.
// Fails when a pricing rate is out of range or an adapter endpoint is invalid.
func NewCompositionRoot(configs Config, gormDB *gorm.DB, logger *slog.Logger) (*CompositionRoot, error) {
	claimTTL, err := configs.ParseClaimTTL()
	if err != nil {
		return nil, err
	}

	zones, err := configs.ParseZoneTariffs()
	if err != nil {
		return nil, err
	}
	vatRate, err := configs.ParseVATRate()
	if err != nil {
		return nil, err
	}
	nightFee, err := configs.ParseNightFee()
	if err != nil {
		return nil, err
	}
	courierShare, err := configs.ParseCourierShare()
	if err != nil {
		return nil, err
	}

	distances, err := createDistanceProvider(configs)
	if err != nil {
		return nil, err
	}

	pricing, err := services.NewPricingEngine(zones, vatRate, nightFee, courierShare, distances)
	if err != nil {
		return nil, fmt.Errorf("failed to create pricing engine: %w", err)
	}

	gateway, err := notify.NewWebhookGateway(configs.NotifyEndpoint, 0, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification gateway: %w", err)
	}

	return &CompositionRoot{
		gormDB:      gormDB,
		uowFactory:  postgres.NewGormUnitOfWorkFactory(gormDB),
		pricing:     pricing,
		recommender: services.NewCourierRecommender(),
		notifier:    notification.NewDispatcher(gateway, configs.OperatorContact, logger),
		clock:       clock.RealClock{},
		logger:      logger,
		claimTTL:    claimTTL,
	}, nil
}

// createDistanceProvider builds the routing client, or nil when no routing
// service is configured. A nil provider makes the pricing engine use its
// straight-line fallback for every distance.
func createDistanceProvider(configs Config) (ports.DistanceProvider, error) {
	if configs.RoutingBaseURL == "" {
		return nil, nil
	}
	client, err := geo.NewRoutingClient(configs.RoutingBaseURL, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to create routing client: %w", err)
	}
	return client, nil
}

// ClaimTTL is the publication window used by the sweep endpoint and the
// expiry sweeper job.
func (c *CompositionRoot) ClaimTTL() time.Duration {
	return c.claimTTL
}

func (c *CompositionRoot) CreateCreateDeliveryCommandHandler() commands.CreateDeliveryCommandHandler {
	var f commands.DeliveryUoWFactory = FuncDeliveryUoWFactory(func() commands.DeliveryUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateDeliveryCommandHandler(f, c.pricing, c.clock, c.notifier)
}

func (c *CompositionRoot) CreateClaimDeliveryCommandHandler() commands.ClaimDeliveryCommandHandler {
	return commands.NewClaimDeliveryCommandHandler(c.createUoWFactory(), c.clock, c.notifier)
}

func (c *CompositionRoot) CreateAdvanceDeliveryCommandHandler() commands.AdvanceDeliveryCommandHandler {
	return commands.NewAdvanceDeliveryCommandHandler(c.createUoWFactory(), c.clock, c.notifier)
}

func (c *CompositionRoot) CreateCompleteDeliveryCommandHandler() commands.CompleteDeliveryCommandHandler {
	return commands.NewCompleteDeliveryCommandHandler(c.createUoWFactory(), c.clock, c.notifier)
}

func (c *CompositionRoot) CreateCancelDeliveryCommandHandler() commands.CancelDeliveryCommandHandler {
	return commands.NewCancelDeliveryCommandHandler(c.createUoWFactory(), c.clock, c.notifier)
}

func (c *CompositionRoot) CreateSweepExpiredCommandHandler() commands.SweepExpiredCommandHandler {
	var f commands.DeliveryUoWFactory = FuncDeliveryUoWFactory(func() commands.DeliveryUoW {
		return c.uowFactory.Create()
	})
	return commands.NewSweepExpiredCommandHandler(f, c.clock, c.notifier, c.logger)
}

func (c *CompositionRoot) CreateCreateCourierCommandHandler() commands.CreateCourierCommandHandler {
	return commands.NewCreateCourierCommandHandler(c.createCourierUoWFactory())
}

func (c *CompositionRoot) CreateReportCourierStatusCommandHandler() commands.ReportCourierStatusCommandHandler {
	return commands.NewReportCourierStatusCommandHandler(c.createCourierUoWFactory())
}

func (c *CompositionRoot) CreateGetActiveDeliveriesQueryHandler() queries.GetActiveDeliveriesQueryHandler {
	return queries.NewGetActiveDeliveriesQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetCourierBoardQueryHandler() queries.GetCourierBoardQueryHandler {
	return queries.NewGetCourierBoardQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateRecommendCouriersQueryHandler() (queries.RecommendCouriersQueryHandler, error) {
	return queries.NewRecommendCouriersQueryHandler(c.uowFactory, c.recommender)
}

func (c *CompositionRoot) createUoWFactory() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) createCourierUoWFactory() commands.CourierUoWFactory {
	return FuncCourierUoWFactory(func() commands.CourierUoW {
		return c.uowFactory.Create()
	})
}

type FuncCourierUoWFactory func() commands.CourierUoW

func (f FuncCourierUoWFactory) Create() commands.CourierUoW {
	return f()
}

type FuncDeliveryUoWFactory func() commands.DeliveryUoW

func (f FuncDeliveryUoWFactory) Create() commands.DeliveryUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
