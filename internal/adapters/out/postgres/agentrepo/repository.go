package agentrepo

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/model/agent"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormAgentRepository implements AgentRepository using GORM.
type GormAgentRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormAgentRepository creates a new GORM agent repository.
func NewGormAgentRepository(db *gorm.DB, tracker aggregateTracker) *GormAgentRepository {
	return &GormAgentRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new agent to the database.
func (r *GormAgentRepository) Add(ctx context.Context, aggregate *agent.Agent) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update saves an existing agent to the database.
func (r *GormAgentRepository) Update(ctx context.Context, aggregate *agent.Agent) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&AgentDTO{}).Where("id = ?", dto.ID).Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves an agent by ID.
func (r *GormAgentRepository) Get(ctx context.Context, id kernel.UUID) (*agent.Agent, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto AgentDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("agent", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// ListEligible retrieves the active agents attached to an outlet, sorted by
// name. Availability filtering happens in the domain.
func (r *GormAgentRepository) ListEligible(ctx context.Context, outletID kernel.UUID) ([]*agent.Agent, error) {
	if err := outletID.Validate(); err != nil {
		return nil, err
	}

	var dtos []AgentDTO
	err := r.db.WithContext(ctx).
		Where("home_outlet_id = ?", outletID.Bytes()).
		Where("active = ?", true).
		Order("name").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	agents := make([]*agent.Agent, 0, len(dtos))
	for _, dto := range dtos {
		a, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		agents = append(agents, a)
	}

	return agents, nil
}

// CountActiveDeliveries returns the agent's load: the count of non-terminal
// orders currently assigned to them.
func (r *GormAgentRepository) CountActiveDeliveries(ctx context.Context, agentID kernel.UUID) (int, error) {
	if err := agentID.Validate(); err != nil {
		return 0, err
	}

	var count int64
	err := r.db.WithContext(ctx).
		Table("orders").
		Where("driver_id = ?", agentID.Bytes()).
		Where("status NOT IN ?", order.TerminalStatusStrings()).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return int(count), nil
}
