package commands_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/agent"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/outlet"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"

	"github.com/stretchr/testify/mock"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetOverdue(ctx context.Context, now time.Time) ([]*order.Order, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetActiveWithDrivers(ctx context.Context) ([]*order.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

type MockOutletRepository struct{ mock.Mock }

func (m *MockOutletRepository) Get(ctx context.Context, id kernel.UUID) (*outlet.Outlet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*outlet.Outlet), args.Error(1)
}

func (m *MockOutletRepository) ListEligible(ctx context.Context) ([]*outlet.Outlet, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outlet.Outlet), args.Error(1)
}

func (m *MockOutletRepository) CountActiveOrders(ctx context.Context, outletID kernel.UUID) (int, error) {
	args := m.Called(ctx, outletID)
	return args.Int(0), args.Error(1)
}

type MockAgentRepository struct{ mock.Mock }

func (m *MockAgentRepository) Add(ctx context.Context, a *agent.Agent) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAgentRepository) Update(ctx context.Context, a *agent.Agent) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAgentRepository) Get(ctx context.Context, id kernel.UUID) (*agent.Agent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*agent.Agent), args.Error(1)
}

func (m *MockAgentRepository) ListEligible(ctx context.Context, outletID kernel.UUID) ([]*agent.Agent, error) {
	args := m.Called(ctx, outletID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*agent.Agent), args.Error(1)
}

func (m *MockAgentRepository) CountActiveDeliveries(ctx context.Context, agentID kernel.UUID) (int, error) {
	args := m.Called(ctx, agentID)
	return args.Int(0), args.Error(1)
}

type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

func (m *MockUoW) OutletRepository() ports.OutletRepository {
	args := m.Called()
	return args.Get(0).(ports.OutletRepository)
}

func (m *MockUoW) AgentRepository() ports.AgentRepository {
	args := m.Called()
	return args.Get(0).(ports.AgentRepository)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type MockTrackingUoWFactory struct{ mock.Mock }

func (m *MockTrackingUoWFactory) Create() commands.TrackingUoW {
	args := m.Called()
	return args.Get(0).(commands.TrackingUoW)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

type MockAgentUoWFactory struct{ mock.Mock }

func (m *MockAgentUoWFactory) Create() commands.AgentUoW {
	args := m.Called()
	return args.Get(0).(commands.AgentUoW)
}

type MockTrackingStateStore struct{ mock.Mock }

func (m *MockTrackingStateStore) Flags(ctx context.Context, orderID kernel.UUID) (services.GeofenceFlags, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(services.GeofenceFlags), args.Error(1)
}

func (m *MockTrackingStateStore) MarkApproaching(ctx context.Context, orderID kernel.UUID) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *MockTrackingStateStore) MarkArrived(ctx context.Context, orderID kernel.UUID) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *MockTrackingStateStore) LastETA(ctx context.Context, orderID kernel.UUID) (*time.Time, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

func (m *MockTrackingStateStore) PutETA(ctx context.Context, orderID kernel.UUID, eta time.Time) error {
	args := m.Called(ctx, orderID, eta)
	return args.Error(0)
}

func (m *MockTrackingStateStore) Clear(ctx context.Context, orderID kernel.UUID) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) Notify(ctx context.Context, customerID kernel.UUID, templateKey string, data map[string]any) error {
	args := m.Called(ctx, customerID, templateKey, data)
	return args.Error(0)
}

type MockDecisionCache struct{ mock.Mock }

func (m *MockDecisionCache) Put(ctx context.Context, decision ports.RoutingDecision) error {
	args := m.Called(ctx, decision)
	return args.Error(0)
}

func (m *MockDecisionCache) Get(ctx context.Context, orderID kernel.UUID) (*ports.RoutingDecision, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.RoutingDecision), args.Error(1)
}

type MockPreferenceSource struct{ mock.Mock }

func (m *MockPreferenceSource) Preferred(ctx context.Context, customerID kernel.UUID) (*kernel.UUID, *kernel.UUID, error) {
	args := m.Called(ctx, customerID)
	var outletID, driverID *kernel.UUID
	if args.Get(0) != nil {
		outletID = args.Get(0).(*kernel.UUID)
	}
	if args.Get(1) != nil {
		driverID = args.Get(1).(*kernel.UUID)
	}
	return outletID, driverID, args.Error(2)
}

// publishedMessage is one call captured by RecordingPublisher.
type publishedMessage struct {
	Topic   string
	Message ports.OutboundMessage
}

// RecordingPublisher captures published messages for assertions. Publish has
// no failure mode, so a recorder reads better than a mock here.
type RecordingPublisher struct {
	mu        sync.Mutex
	published []publishedMessage
}

func (p *RecordingPublisher) Publish(topic string, message ports.OutboundMessage) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, publishedMessage{Topic: topic, Message: message})
}

// Published returns the captured messages in publish order.
func (p *RecordingPublisher) Published() []publishedMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]publishedMessage, len(p.published))
	copy(out, p.published)
	return out
}

// OfKind returns the captured messages with the given kind discriminator.
func (p *RecordingPublisher) OfKind(kind string) []publishedMessage {
	var out []publishedMessage
	for _, m := range p.Published() {
		if m.Message.Kind() == kind {
			out = append(out, m)
		}
	}
	return out
}
