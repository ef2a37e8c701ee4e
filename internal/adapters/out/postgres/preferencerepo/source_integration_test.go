package preferencerepo_test

import (
	"context"
	"testing"
	"time"

	"dispatch/internal/adapters/out/postgres/orderrepo"
	"dispatch/internal/adapters/out/postgres/preferencerepo"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// noopTracker satisfies the order repository's tracker dependency.
type noopTracker struct{}

func (noopTracker) TrackAggregate(kernel.UUID, any) {}

// PreferenceSourceIntegrationTestSuite exercises the history-derived
// preference source against a real PostgreSQL container.
type PreferenceSourceIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	source    *preferencerepo.GormPreferenceSource
	orderRepo *orderrepo.GormOrderRepository
}

func (suite *PreferenceSourceIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&orderrepo.OrderDTO{}))

	suite.source = preferencerepo.NewGormPreferenceSource(db)
	suite.orderRepo = orderrepo.NewGormOrderRepository(db, noopTracker{})
}

func (suite *PreferenceSourceIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE orders").Error)
}

func (suite *PreferenceSourceIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *PreferenceSourceIntegrationTestSuite) TestPreferred_NoHistory_ReturnsNil() {
	outletID, driverID, err := suite.source.Preferred(context.Background(), kernel.NewUUID())

	suite.Require().NoError(err)
	suite.Nil(outletID)
	suite.Nil(driverID)
}

func (suite *PreferenceSourceIntegrationTestSuite) TestPreferred_MostFrequentOutletAndDriverWin() {
	ctx := context.Background()
	customerID := kernel.NewUUID()

	favoriteOutlet := kernel.NewUUID()
	otherOutlet := kernel.NewUUID()
	favoriteDriver := kernel.NewUUID()
	otherDriver := kernel.NewUUID()

	suite.addDeliveredOrder(ctx, customerID, favoriteOutlet, favoriteDriver)
	suite.addDeliveredOrder(ctx, customerID, favoriteOutlet, favoriteDriver)
	suite.addDeliveredOrder(ctx, customerID, otherOutlet, otherDriver)

	outletID, driverID, err := suite.source.Preferred(ctx, customerID)

	suite.Require().NoError(err)
	suite.Require().NotNil(outletID)
	suite.Require().NotNil(driverID)
	suite.True(outletID.IsEqual(favoriteOutlet))
	suite.True(driverID.IsEqual(favoriteDriver))
}

func (suite *PreferenceSourceIntegrationTestSuite) TestPreferred_IgnoresUndeliveredOrders() {
	ctx := context.Background()
	customerID := kernel.NewUUID()

	pendingOutlet := kernel.NewUUID()
	suite.addRoutedOrder(ctx, customerID, pendingOutlet, kernel.NewUUID(), order.OutForDelivery)

	outletID, driverID, err := suite.source.Preferred(ctx, customerID)

	suite.Require().NoError(err)
	suite.Nil(outletID)
	suite.Nil(driverID)
}

func (suite *PreferenceSourceIntegrationTestSuite) TestPreferred_ScopedToCustomer() {
	ctx := context.Background()
	customerID := kernel.NewUUID()
	neighborID := kernel.NewUUID()

	neighborOutlet := kernel.NewUUID()
	suite.addDeliveredOrder(ctx, neighborID, neighborOutlet, kernel.NewUUID())

	outletID, driverID, err := suite.source.Preferred(ctx, customerID)

	suite.Require().NoError(err)
	suite.Nil(outletID)
	suite.Nil(driverID)
}

func (suite *PreferenceSourceIntegrationTestSuite) TestPreferred_ZeroValueCustomerID_Rejected() {
	_, _, err := suite.source.Preferred(context.Background(), kernel.UUID{})

	suite.Require().Error(err)
}

func (suite *PreferenceSourceIntegrationTestSuite) addDeliveredOrder(
	ctx context.Context,
	customerID kernel.UUID,
	outletID kernel.UUID,
	driverID kernel.UUID,
) {
	suite.addRoutedOrder(ctx, customerID, outletID, driverID, order.Delivered)
}

func (suite *PreferenceSourceIntegrationTestSuite) addRoutedOrder(
	ctx context.Context,
	customerID kernel.UUID,
	outletID kernel.UUID,
	driverID kernel.UUID,
	status order.Status,
) {
	destination, err := kernel.NewGeoPoint(-1.2921, 36.8219)
	suite.Require().NoError(err)

	testOrder, err := order.NewOrder(kernel.NewUUID(), customerID, destination, 950)
	suite.Require().NoError(err)
	suite.Require().NoError(testOrder.AssignDriver(outletID, driverID, "preference"))
	testOrder.SetEstimatedArrival(time.Now().UTC())
	suite.Require().NoError(testOrder.UpdateStatus(status, "", ""))

	suite.Require().NoError(suite.orderRepo.Add(ctx, testOrder))
}

func TestPreferenceSourceIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(PreferenceSourceIntegrationTestSuite))
}
