package postgres_test

import (
	"context"
	"testing"
	"time"

	postgres_adapter "dispatch/internal/adapters/out/postgres"
	"dispatch/internal/adapters/out/postgres/courierrepo"
	"dispatch/internal/adapters/out/postgres/deliveryrepo"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// UnitOfWorkIntegrationTestSuite provides integration testing for the
// GORM-based Unit of Work implementation with a real PostgreSQL database.
type UnitOfWorkIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	factory   ports.UnitOfWorkFactory
}

// SetupSuite initializes PostgreSQL container and database connection for all tests.
// Runs database migrations to prepare schema for unit of work operations.
func (suite *UnitOfWorkIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	// Start PostgreSQL container
	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2)),
	)
	suite.Require().NoError(err)
	suite.container = container

	// Connect to database
	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	// Run migrations
	err = db.AutoMigrate(&deliveryrepo.DeliveryDTO{}, &courierrepo.CourierDTO{})
	suite.Require().NoError(err)

	// Create factory
	suite.factory = postgres_adapter.NewGormUnitOfWorkFactory(db)
}

// SetupTest ensures clean database state before each test.
// Truncates all tables to prevent test interference.
func (suite *UnitOfWorkIntegrationTestSuite) SetupTest() {
	err := suite.db.Exec("TRUNCATE TABLE deliveries, couriers").Error
	suite.Require().NoError(err)
}

// TearDownSuite cleans up PostgreSQL container after all tests complete.
func (suite *UnitOfWorkIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		err := suite.container.Terminate(context.Background())
		suite.Require().NoError(err)
	}
}

// TestUnitOfWorkFactory_Create verifies factory creates unit of work instances
// with proper initialization and isolation between instances.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWorkFactory_Create() {
	uow1 := suite.factory.Create()
	uow2 := suite.factory.Create()

	suite.NotSame(uow1, uow2, "Factory should create separate instances")

	suite.NotNil(uow1.DeliveryRepository(), "First instance should provide delivery repository")
	suite.NotNil(uow1.CourierRepository(), "First instance should provide courier repository")
	suite.NotNil(uow2.DeliveryRepository(), "Second instance should provide delivery repository")
	suite.NotNil(uow2.CourierRepository(), "Second instance should provide courier repository")
}

// TestUnitOfWork_TransactionLifecycle verifies proper transaction management
// including begin, commit, and rollback operations.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionLifecycle() {
	ctx := context.Background()
	uow := suite.factory.Create()

	err := uow.Begin(ctx)
	suite.Require().NoError(err, "Should begin transaction successfully")

	err = uow.Begin(ctx)
	suite.Require().NoError(err, "Multiple begin calls should be safe")

	err = uow.Commit(ctx)
	suite.Require().NoError(err, "Should commit transaction successfully")

	err = uow.Begin(ctx)
	suite.Require().NoError(err)

	err = uow.Rollback(ctx)
	suite.Require().NoError(err, "Should rollback transaction successfully")
}

// TestUnitOfWork_TransactionErrors verifies error handling for invalid transaction operations.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionErrors() {
	ctx := context.Background()
	uow := suite.factory.Create()

	err := uow.Commit(ctx)
	suite.Require().Error(err, "Should error when committing without active transaction")

	err = uow.Rollback(ctx)
	suite.Require().Error(err, "Should error when rolling back without active transaction")
}

// TestUnitOfWork_SingleRepositoryTransaction verifies repository operations
// within a single transaction boundary work correctly.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_SingleRepositoryTransaction() {
	ctx := context.Background()
	uow := suite.factory.Create()

	testDelivery := suite.createPublishedDelivery()

	err := uow.Begin(ctx)
	suite.Require().NoError(err)

	err = uow.DeliveryRepository().Add(ctx, testDelivery)
	suite.Require().NoError(err)

	retrieved, err := uow.DeliveryRepository().Get(ctx, testDelivery.ID())
	suite.Require().NoError(err)
	suite.Equal(testDelivery.ID(), retrieved.ID())

	err = uow.Commit(ctx)
	suite.Require().NoError(err)

	// Verify delivery persists after commit using new unit of work
	newUow := suite.factory.Create()
	retrieved, err = newUow.DeliveryRepository().Get(ctx, testDelivery.ID())
	suite.Require().NoError(err)
	suite.Equal(testDelivery.ID(), retrieved.ID())
	suite.Equal(delivery.StatusPublished, retrieved.Status())
	suite.Equal(testDelivery.OrderNumber(), retrieved.OrderNumber())
}

// TestUnitOfWork_ClaimWorkflow verifies the claim flow lands the delivery
// assignment and the courier's counters in a single transaction.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_ClaimWorkflow() {
	ctx := context.Background()
	uow := suite.factory.Create()

	testDelivery := suite.createPublishedDelivery()
	testCourier := suite.createTestCourier()

	err := uow.Begin(ctx)
	suite.Require().NoError(err)

	err = uow.DeliveryRepository().Add(ctx, testDelivery)
	suite.Require().NoError(err)

	err = uow.CourierRepository().Add(ctx, testCourier)
	suite.Require().NoError(err)

	_, err = testDelivery.Claim(testCourier.ID(), time.Now().UTC())
	suite.Require().NoError(err)
	err = uow.DeliveryRepository().Update(ctx, testDelivery)
	suite.Require().NoError(err)

	err = testCourier.RecordAssignment()
	suite.Require().NoError(err)
	err = uow.CourierRepository().Update(ctx, testCourier)
	suite.Require().NoError(err)

	err = uow.Commit(ctx)
	suite.Require().NoError(err)

	// Verify both aggregates persisted consistently
	newUow := suite.factory.Create()

	retrievedDelivery, err := newUow.DeliveryRepository().Get(ctx, testDelivery.ID())
	suite.Require().NoError(err)
	suite.Equal(delivery.StatusClaimed, retrievedDelivery.Status())
	suite.Require().NotNil(retrievedDelivery.Courier())
	suite.Equal(testCourier.ID(), *retrievedDelivery.Courier())

	retrievedCourier, err := newUow.CourierRepository().Get(ctx, testCourier.ID())
	suite.Require().NoError(err)
	suite.Equal(1, retrievedCourier.AssignedCount())
}

// TestUnitOfWork_TransactionRollback verifies rollback discards all changes
// made within the transaction across multiple repositories.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionRollback() {
	ctx := context.Background()
	uow := suite.factory.Create()

	testDelivery := suite.createPublishedDelivery()
	testCourier := suite.createTestCourier()

	err := uow.Begin(ctx)
	suite.Require().NoError(err)

	err = uow.DeliveryRepository().Add(ctx, testDelivery)
	suite.Require().NoError(err)

	err = uow.CourierRepository().Add(ctx, testCourier)
	suite.Require().NoError(err)

	// Verify entities exist within transaction
	_, err = uow.DeliveryRepository().Get(ctx, testDelivery.ID())
	suite.Require().NoError(err)

	_, err = uow.CourierRepository().Get(ctx, testCourier.ID())
	suite.Require().NoError(err)

	err = uow.Rollback(ctx)
	suite.Require().NoError(err)

	// Verify entities do not exist after rollback using new unit of work
	newUow := suite.factory.Create()

	_, err = newUow.DeliveryRepository().Get(ctx, testDelivery.ID())
	suite.Require().Error(err, "Delivery should not exist after rollback")

	_, err = newUow.CourierRepository().Get(ctx, testCourier.ID())
	suite.Require().Error(err, "Courier should not exist after rollback")
}

// TestUnitOfWork_VersionConflict verifies the conditional update detects a
// stale aggregate that lost a race to another writer.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_VersionConflict() {
	ctx := context.Background()

	testDelivery := suite.createPublishedDelivery()
	winner := suite.createTestCourier()
	loser := suite.createTestCourier()

	seedUow := suite.factory.Create()
	err := seedUow.DeliveryRepository().Add(ctx, testDelivery)
	suite.Require().NoError(err)

	// Two readers load the same published snapshot
	firstCopy, err := suite.factory.Create().DeliveryRepository().Get(ctx, testDelivery.ID())
	suite.Require().NoError(err)
	secondCopy, err := suite.factory.Create().DeliveryRepository().Get(ctx, testDelivery.ID())
	suite.Require().NoError(err)

	// First writer wins
	_, err = firstCopy.Claim(winner.ID(), time.Now().UTC())
	suite.Require().NoError(err)
	err = suite.factory.Create().DeliveryRepository().Update(ctx, firstCopy)
	suite.Require().NoError(err)

	// Second writer operated on a stale version and must be rejected
	_, err = secondCopy.Claim(loser.ID(), time.Now().UTC())
	suite.Require().NoError(err)
	err = suite.factory.Create().DeliveryRepository().Update(ctx, secondCopy)
	suite.Require().ErrorIs(err, errs.ErrConcurrencyConflict)

	// Stored state belongs to the winner
	stored, err := suite.factory.Create().DeliveryRepository().Get(ctx, testDelivery.ID())
	suite.Require().NoError(err)
	suite.Require().NotNil(stored.Courier())
	suite.Equal(winner.ID(), *stored.Courier())
}

// TestUnitOfWork_RepositoryIsolation verifies that repositories obtained
// from different unit of work instances operate independently.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_RepositoryIsolation() {
	ctx := context.Background()

	uow1 := suite.factory.Create()
	uow2 := suite.factory.Create()

	delivery1 := suite.createPublishedDelivery()
	delivery2 := suite.createPublishedDelivery()

	err := uow1.Begin(ctx)
	suite.Require().NoError(err)

	err = uow2.Begin(ctx)
	suite.Require().NoError(err)

	err = uow1.DeliveryRepository().Add(ctx, delivery1)
	suite.Require().NoError(err)

	err = uow2.DeliveryRepository().Add(ctx, delivery2)
	suite.Require().NoError(err)

	// Each transaction should only see its own changes
	_, err = uow1.DeliveryRepository().Get(ctx, delivery1.ID())
	suite.Require().NoError(err, "UOW1 should see delivery1")

	_, err = uow1.DeliveryRepository().Get(ctx, delivery2.ID())
	suite.Require().Error(err, "UOW1 should not see delivery2")

	_, err = uow2.DeliveryRepository().Get(ctx, delivery2.ID())
	suite.Require().NoError(err, "UOW2 should see delivery2")

	_, err = uow2.DeliveryRepository().Get(ctx, delivery1.ID())
	suite.Require().Error(err, "UOW2 should not see delivery1")

	err = uow1.Commit(ctx)
	suite.Require().NoError(err)

	err = uow2.Rollback(ctx)
	suite.Require().NoError(err)

	// Verify only delivery1 persisted
	newUow := suite.factory.Create()
	_, err = newUow.DeliveryRepository().Get(ctx, delivery1.ID())
	suite.Require().NoError(err, "Delivery1 should persist after commit")

	_, err = newUow.DeliveryRepository().Get(ctx, delivery2.ID())
	suite.Require().Error(err, "Delivery2 should not persist after rollback")
}

// TestUnitOfWork_WithoutTransaction verifies that repositories work correctly
// without explicit transaction boundaries for immediate operations.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_WithoutTransaction() {
	ctx := context.Background()
	uow := suite.factory.Create()

	testDelivery := suite.createPublishedDelivery()

	// Add delivery without beginning transaction (should auto-commit)
	err := uow.DeliveryRepository().Add(ctx, testDelivery)
	suite.Require().NoError(err)

	retrieved, err := uow.DeliveryRepository().Get(ctx, testDelivery.ID())
	suite.Require().NoError(err)
	suite.Equal(testDelivery.ID(), retrieved.ID())

	// Verify with new unit of work instance
	newUow := suite.factory.Create()
	retrieved, err = newUow.DeliveryRepository().Get(ctx, testDelivery.ID())
	suite.Require().NoError(err)
	suite.Equal(testDelivery.ID(), retrieved.ID())
}

// TestUnitOfWork_DeliveryLifecycleWorkflow walks a delivery from publication
// through completion within transactions, crediting the courier at the end.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_DeliveryLifecycleWorkflow() {
	ctx := context.Background()
	uow := suite.factory.Create()
	now := time.Now().UTC()

	err := uow.Begin(ctx)
	suite.Require().NoError(err)

	testDelivery := suite.createPublishedDelivery()
	err = uow.DeliveryRepository().Add(ctx, testDelivery)
	suite.Require().NoError(err)

	testCourier := suite.createTestCourier()
	err = uow.CourierRepository().Add(ctx, testCourier)
	suite.Require().NoError(err)

	_, err = testDelivery.Claim(testCourier.ID(), now)
	suite.Require().NoError(err)
	err = testCourier.RecordAssignment()
	suite.Require().NoError(err)

	_, err = testDelivery.Advance(testCourier.ID(), delivery.StatusPickedUp, now.Add(time.Minute))
	suite.Require().NoError(err)
	_, err = testDelivery.Advance(testCourier.ID(), delivery.StatusInTransit, now.Add(2*time.Minute))
	suite.Require().NoError(err)
	_, err = testDelivery.Advance(testCourier.ID(), delivery.StatusDelivered, now.Add(3*time.Minute))
	suite.Require().NoError(err)

	_, err = testDelivery.Complete(delivery.OperatorActor(kernel.NewUUID()), now.Add(4*time.Minute))
	suite.Require().NoError(err)
	err = testCourier.RecordCompletion()
	suite.Require().NoError(err)

	err = uow.DeliveryRepository().Update(ctx, testDelivery)
	suite.Require().NoError(err)
	err = uow.CourierRepository().Update(ctx, testCourier)
	suite.Require().NoError(err)

	err = uow.Commit(ctx)
	suite.Require().NoError(err)

	// Verify final state using a new unit of work
	newUow := suite.factory.Create()

	retrievedDelivery, err := newUow.DeliveryRepository().Get(ctx, testDelivery.ID())
	suite.Require().NoError(err)
	suite.Equal(delivery.StatusCompleted, retrievedDelivery.Status())
	suite.Require().NotNil(retrievedDelivery.Courier())
	suite.Equal(testCourier.ID(), *retrievedDelivery.Courier())
	suite.NotNil(retrievedDelivery.Timeline().CompletedAt)

	retrievedCourier, err := newUow.CourierRepository().Get(ctx, testCourier.ID())
	suite.Require().NoError(err)
	suite.Equal(1, retrievedCourier.AssignedCount())
	suite.Equal(1, retrievedCourier.CompletedCount())

	// Completed deliveries no longer show up as active
	active, err := newUow.DeliveryRepository().GetAllActive(ctx)
	suite.Require().NoError(err)
	suite.Empty(active)
}

// TestUnitOfWork_ExpiredLookup verifies the sweep query only returns published
// deliveries that entered the status strictly before the cutoff.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_ExpiredLookup() {
	ctx := context.Background()
	uow := suite.factory.Create()

	stale := suite.createPublishedDeliveryAt(time.Now().UTC().Add(-time.Hour))
	fresh := suite.createPublishedDeliveryAt(time.Now().UTC())

	err := uow.DeliveryRepository().Add(ctx, stale)
	suite.Require().NoError(err)
	err = uow.DeliveryRepository().Add(ctx, fresh)
	suite.Require().NoError(err)

	cutoff := time.Now().UTC().Add(-15 * time.Minute)
	expired, err := uow.DeliveryRepository().GetAllInStatusOlderThan(ctx, delivery.StatusPublished, cutoff)
	suite.Require().NoError(err)
	suite.Require().Len(expired, 1)
	suite.Equal(stale.ID(), expired[0].ID())
}

// createPublishedDelivery creates a priced, published delivery for testing purposes.
func (suite *UnitOfWorkIntegrationTestSuite) createPublishedDelivery() *delivery.Delivery {
	return suite.createPublishedDeliveryAt(time.Now().UTC())
}

func (suite *UnitOfWorkIntegrationTestSuite) createPublishedDeliveryAt(at time.Time) *delivery.Delivery {
	pickupPoint, err := kernel.NewGeoPoint(33.5138, 36.2765)
	suite.Require().NoError(err)
	dropoffPoint, err := kernel.NewGeoPoint(33.5102, 36.2913)
	suite.Require().NoError(err)

	pickup, err := delivery.NewAddress("12 Straight Street", "Damascus", "Layla Haddad", "+963-11-555-0101", pickupPoint)
	suite.Require().NoError(err)
	dropoff, err := delivery.NewAddress("7 Qassaa Avenue", "Damascus", "Omar Nassar", "+963-11-555-0102", dropoffPoint)
	suite.Require().NoError(err)

	pkg, err := delivery.NewPackage(2.5, "documents")
	suite.Require().NoError(err)

	aggregate, err := delivery.NewDelivery(
		kernel.NewUUID(),
		delivery.NewOrderNumber(at),
		pickup,
		dropoff,
		kernel.VehicleMotorbike,
		pkg,
		delivery.PriorityNormal,
		false,
		at,
	)
	suite.Require().NoError(err)

	pricing, err := delivery.NewPricingBreakdown(
		decimal.NewFromInt(50),
		decimal.NewFromInt(62),
		decimal.Zero,
		decimal.RequireFromString("16.80"),
		decimal.NewFromInt(112),
		decimal.RequireFromString("78.40"),
		decimal.RequireFromString("33.60"),
		decimal.RequireFromString("12.40"),
		delivery.DistanceSourceRouting,
	)
	suite.Require().NoError(err)
	suite.Require().NoError(aggregate.AttachPricing(pricing))

	_, err = aggregate.Publish(at)
	suite.Require().NoError(err)

	return aggregate
}

// createTestCourier creates a valid courier for testing purposes.
func (suite *UnitOfWorkIntegrationTestSuite) createTestCourier() *courier.Courier {
	location, err := kernel.NewGeoPoint(33.52, 36.28)
	suite.Require().NoError(err)

	testCourier, err := courier.NewCourier(
		kernel.NewUUID(), "Samir Aswad", "+963-94-555-0199", kernel.VehicleMotorbike, location)
	suite.Require().NoError(err)
	return testCourier
}

func TestUnitOfWorkIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(UnitOfWorkIntegrationTestSuite))
}
