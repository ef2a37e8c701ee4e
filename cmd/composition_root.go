package cmd

import (
	"log/slog"

	httpin "dispatch/internal/adapters/in/http"
	"dispatch/internal/adapters/in/ws"
	"dispatch/internal/adapters/out/notify"
	"dispatch/internal/adapters/out/postgres"
	"dispatch/internal/adapters/out/postgres/orderrepo"
	"dispatch/internal/adapters/out/postgres/preferencerepo"
	"dispatch/internal/adapters/out/redis/decisioncache"
	"dispatch/internal/adapters/out/redis/trackingstate"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CompositionRoot wires the adapters into the application handlers. Shared
// infrastructure (hub, caches, notifier) is built once; handlers are built
// per call site.
type CompositionRoot struct {
	config     Config
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory

	decisions     ports.RoutingDecisionCache
	trackingState ports.TrackingStateStore
	preferences   ports.PreferenceSource
	notifier      ports.Notifier
	hub           *ws.Hub
	logger        *slog.Logger
}

// NewCompositionRoot builds the object graph over the opened connections.
func NewCompositionRoot(config Config, gormDB *gorm.DB, redisClient *redis.Client, logger *slog.Logger) *CompositionRoot {
	root := &CompositionRoot{
		config:        config,
		gormDB:        gormDB,
		uowFactory:    postgres.NewGormUnitOfWorkFactory(gormDB),
		decisions:     decisioncache.NewRedisDecisionCache(redisClient, 0),
		trackingState: trackingstate.NewRedisTrackingStateStore(redisClient, 0),
		preferences:   preferencerepo.NewGormPreferenceSource(gormDB),
		notifier:      notify.NewSlogNotifier(logger),
		logger:        logger,
	}

	root.hub = ws.NewHub(
		root.CreateUpdateAgentLocationCommandHandler(),
		root.CreateSetAgentStatusCommandHandler(),
		orderrepo.NewDirectory(gormDB),
		logger,
	)

	return root
}

// Hub returns the realtime hub, which doubles as the core's publisher.
func (c *CompositionRoot) Hub() *ws.Hub {
	return c.hub
}

// CreateRouteOrderCommandHandler builds the routing orchestrator.
func (c *CompositionRoot) CreateRouteOrderCommandHandler() commands.RouteOrderCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewRouteOrderCommandHandler(
		f,
		services.NewRegistry(),
		c.decisions,
		c.preferences,
		c.hub,
		c.config.DefaultAlgorithm,
		c.logger,
	)
}

// CreateBatchRouteOrdersCommandHandler builds the batch routing handler.
func (c *CompositionRoot) CreateBatchRouteOrdersCommandHandler() commands.BatchRouteOrdersCommandHandler {
	return commands.NewBatchRouteOrdersCommandHandler(c.CreateRouteOrderCommandHandler())
}

// CreateUpdateOrderStatusCommandHandler builds the status transition handler.
func (c *CompositionRoot) CreateUpdateOrderStatusCommandHandler() commands.UpdateOrderStatusCommandHandler {
	var f commands.TrackingUoWFactory = FuncTrackingUoWFactory(func() commands.TrackingUoW {
		return c.uowFactory.Create()
	})
	return commands.NewUpdateOrderStatusCommandHandler(f, c.trackingState, c.notifier, c.hub, c.logger)
}

// CreateUpdateAgentLocationCommandHandler builds the tracking ingestion
// handler.
func (c *CompositionRoot) CreateUpdateAgentLocationCommandHandler() commands.UpdateAgentLocationCommandHandler {
	var f commands.TrackingUoWFactory = FuncTrackingUoWFactory(func() commands.TrackingUoW {
		return c.uowFactory.Create()
	})
	return commands.NewUpdateAgentLocationCommandHandler(f, c.trackingState, c.notifier, c.hub, c.logger)
}

// CreateSetAgentStatusCommandHandler builds the agent availability handler.
func (c *CompositionRoot) CreateSetAgentStatusCommandHandler() commands.SetAgentStatusCommandHandler {
	var f commands.AgentUoWFactory = FuncAgentUoWFactory(func() commands.AgentUoW {
		return c.uowFactory.Create()
	})
	return commands.NewSetAgentStatusCommandHandler(f, c.logger)
}

// CreateSweepOverdueOrdersCommandHandler builds the overdue sweep handler.
func (c *CompositionRoot) CreateSweepOverdueOrdersCommandHandler() commands.SweepOverdueOrdersCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewSweepOverdueOrdersCommandHandler(f, c.hub, c.logger)
}

// CreateGetOrderTrackingQueryHandler builds the tracking read handler.
func (c *CompositionRoot) CreateGetOrderTrackingQueryHandler() queries.GetOrderTrackingQueryHandler {
	return queries.NewGetOrderTrackingQueryHandler(c.gormDB)
}

// CreateGetActiveDeliveriesQueryHandler builds the active-deliveries read
// handler.
func (c *CompositionRoot) CreateGetActiveDeliveriesQueryHandler() queries.GetActiveDeliveriesQueryHandler {
	return queries.NewGetActiveDeliveriesQueryHandler(c.gormDB)
}

// CreateHTTPServer builds the echo-facing server over the handlers.
func (c *CompositionRoot) CreateHTTPServer() *httpin.Server {
	return httpin.NewServer(
		c.CreateRouteOrderCommandHandler(),
		c.CreateBatchRouteOrdersCommandHandler(),
		c.CreateUpdateOrderStatusCommandHandler(),
		c.CreateGetOrderTrackingQueryHandler(),
		c.CreateGetActiveDeliveriesQueryHandler(),
	)
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncAgentUoWFactory func() commands.AgentUoW

func (f FuncAgentUoWFactory) Create() commands.AgentUoW {
	return f()
}

type FuncTrackingUoWFactory func() commands.TrackingUoW

func (f FuncTrackingUoWFactory) Create() commands.TrackingUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
